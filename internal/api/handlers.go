package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/smehra/dreamfilm/internal/enrich"
	"github.com/smehra/dreamfilm/internal/model"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleCreateDream validates the payload, assigns identity and timestamp,
// persists the entry, and archives it to the data lake best-effort.
func (s *Server) handleCreateDream(w http.ResponseWriter, r *http.Request) {
	var payload model.DreamCreate
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := payload.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	dream := &model.Dream{
		DreamCreate: payload,
		ID:          uuid.NewString(),
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.store.Put(r.Context(), dream); err != nil {
		log.Error().Err(err).Str("dreamId", dream.ID).Msg("Failed to persist dream")
		writeError(w, http.StatusInternalServerError, "failed to store dream")
		return
	}

	// Lake archival never blocks the create path.
	if s.lake != nil {
		if err := s.lake.WriteRaw(r.Context(), dream); err != nil {
			log.Error().Err(err).Str("dreamId", dream.ID).Msg("Failed to write dream to data lake")
		}
	}

	writeJSON(w, http.StatusOK, dream)
}

func (s *Server) handleListDreams(w http.ResponseWriter, r *http.Request) {
	dreams, err := s.store.List(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list dreams")
		writeError(w, http.StatusInternalServerError, "failed to list dreams")
		return
	}
	if dreams == nil {
		dreams = []*model.Dream{}
	}
	writeJSON(w, http.StatusOK, dreams)
}

func (s *Server) handleGetDream(w http.ResponseWriter, r *http.Request) {
	dream, ok := s.lookupDream(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, dream)
}

// handleRenderDream runs the inference pipeline synchronously. Text-stage
// failures surface as upstream errors; a missing video never fails the call.
func (s *Server) handleRenderDream(w http.ResponseWriter, r *http.Request) {
	dream, ok := s.lookupDream(w, r)
	if !ok {
		return
	}

	resp, err := s.renderer.Render(r.Context(), dream)
	if err != nil {
		var validationErr *model.ValidationError
		if errors.As(err, &validationErr) {
			writeError(w, http.StatusBadRequest, validationErr.Error())
			return
		}

		var formatErr *enrich.BackendFormatError
		var parseErr *enrich.BackendParseError
		if errors.As(err, &formatErr) || errors.As(err, &parseErr) {
			log.Error().Err(err).Str("dreamId", dream.ID).Msg("Text model backend failed")
			writeError(w, http.StatusBadGateway, "text model returned an unusable response")
			return
		}

		log.Error().Err(err).Str("dreamId", dream.ID).Msg("Render failed")
		writeError(w, http.StatusInternalServerError, "render failed")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// lookupDream resolves the {dreamID} path parameter, writing a 404 when the
// entry does not exist.
func (s *Server) lookupDream(w http.ResponseWriter, r *http.Request) (*model.Dream, bool) {
	id := chi.URLParam(r, "dreamID")
	dream, err := s.store.Get(r.Context(), id)
	if err != nil {
		log.Error().Err(err).Str("dreamId", id).Msg("Failed to load dream")
		writeError(w, http.StatusInternalServerError, "failed to load dream")
		return nil, false
	}
	if dream == nil {
		writeError(w, http.StatusNotFound, "Dream not found")
		return nil, false
	}
	return dream, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
