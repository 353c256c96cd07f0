// Package api exposes the dream journal over HTTP: CRUD for entries plus the
// render endpoint that runs the inference pipeline.
package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/smehra/dreamfilm/internal/lake"
	"github.com/smehra/dreamfilm/internal/model"
	"github.com/smehra/dreamfilm/internal/store"
)

// DreamRenderer runs the inference pipeline for one dream. Implemented by
// *render.Renderer; tests substitute a fake.
type DreamRenderer interface {
	Render(ctx context.Context, dream *model.Dream) (*model.RenderResponse, error)
}

// allowedOrigins is the CORS allow-list for the local frontend dev server.
var allowedOrigins = []string{
	"http://127.0.0.1:5173",
	"http://localhost:5173",
}

// Server holds the API dependencies. The lake writer may be nil, in which
// case raw events are simply not archived.
type Server struct {
	store    store.DreamStore
	lake     *lake.Writer
	renderer DreamRenderer
}

// NewServer wires the API from its collaborators.
func NewServer(st store.DreamStore, lk *lake.Writer, renderer DreamRenderer) *Server {
	return &Server{store: st, lake: lk, renderer: renderer}
}

// Routes builds the chi router for the service.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)

	r.Get("/health", s.handleHealth)
	r.Route("/dreams", func(r chi.Router) {
		r.Post("/", s.handleCreateDream)
		r.Get("/", s.handleListDreams)
		r.Get("/{dreamID}", s.handleGetDream)
		r.Post("/{dreamID}/render", s.handleRenderDream)
	})

	return r
}

// corsMiddleware mirrors the original frontend allow-list: the Vite dev
// server origins, any method, any header.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		for _, allowed := range allowedOrigins {
			if origin == allowed {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "*")
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				break
			}
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
