package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/smehra/dreamfilm/internal/enrich"
	"github.com/smehra/dreamfilm/internal/model"
	"github.com/smehra/dreamfilm/internal/store"
)

// fakeRenderer returns a canned response or error.
type fakeRenderer struct {
	resp  *model.RenderResponse
	err   error
	calls int
}

func (f *fakeRenderer) Render(_ context.Context, dream *model.Dream) (*model.RenderResponse, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	resp := *f.resp
	resp.Dream = dream
	return &resp, nil
}

func newTestServer(renderer DreamRenderer) (*Server, *store.MemoryStore) {
	st := store.NewMemoryStore()
	return NewServer(st, nil, renderer), st
}

func seedDream(t *testing.T, st *store.MemoryStore, id string) *model.Dream {
	t.Helper()
	dream := &model.Dream{
		DreamCreate: model.DreamCreate{Narrative: "a hallway"},
		ID:          id,
		CreatedAt:   time.Now().UTC(),
	}
	if err := st.Put(context.Background(), dream); err != nil {
		t.Fatalf("seed dream: %v", err)
	}
	return dream
}

func doRequest(s *Server, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rr := httptest.NewRecorder()
	s.Routes().ServeHTTP(rr, req)
	return rr
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(&fakeRenderer{})
	rr := doRequest(s, http.MethodGet, "/health", "")

	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rr.Code)
	}
}

func TestCreateDream(t *testing.T) {
	s, st := newTestServer(&fakeRenderer{})

	rr := doRequest(s, http.MethodPost, "/dreams", `{"narrative": "a hallway", "mood": -3, "title": "Hall"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var dream model.Dream
	if err := json.Unmarshal(rr.Body.Bytes(), &dream); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if dream.ID == "" {
		t.Error("expected an assigned ID")
	}
	if dream.CreatedAt.IsZero() {
		t.Error("expected an assigned creation timestamp")
	}
	if dream.Mood == nil || *dream.Mood != -3 {
		t.Errorf("mood not round-tripped: %+v", dream.Mood)
	}

	stored, err := st.Get(context.Background(), dream.ID)
	if err != nil || stored == nil {
		t.Fatalf("dream not persisted: %v", err)
	}
}

func TestCreateDreamMissingNarrative(t *testing.T) {
	s, _ := newTestServer(&fakeRenderer{})

	rr := doRequest(s, http.MethodPost, "/dreams", `{"title": "No narrative"}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rr.Code)
	}
}

func TestCreateDreamInvalidJSON(t *testing.T) {
	s, _ := newTestServer(&fakeRenderer{})

	rr := doRequest(s, http.MethodPost, "/dreams", `{"narrative":`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rr.Code)
	}
}

func TestGetDream(t *testing.T) {
	s, st := newTestServer(&fakeRenderer{})
	seedDream(t, st, "d1")

	rr := doRequest(s, http.MethodGet, "/dreams/d1", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	rr = doRequest(s, http.MethodGet, "/dreams/missing", "")
	if rr.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rr.Code)
	}
}

func TestListDreams(t *testing.T) {
	s, st := newTestServer(&fakeRenderer{})

	rr := doRequest(s, http.MethodGet, "/dreams", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if body := strings.TrimSpace(rr.Body.String()); body != "[]" {
		t.Errorf("expected empty array, got %s", body)
	}

	seedDream(t, st, "d1")
	seedDream(t, st, "d2")

	rr = doRequest(s, http.MethodGet, "/dreams", "")
	var dreams []*model.Dream
	if err := json.Unmarshal(rr.Body.Bytes(), &dreams); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(dreams) != 2 {
		t.Errorf("got %d dreams, want 2", len(dreams))
	}
}

func TestRenderDream(t *testing.T) {
	renderer := &fakeRenderer{resp: &model.RenderResponse{
		MovieScript:    "SCENE: a hallway",
		Psychoanalysis: "A reading.",
		StyleProfile:   &model.StyleProfile{CameraStyle: "static frames"},
		VideoURL:       "https://signed.example/v.mp4",
	}}
	s, st := newTestServer(renderer)
	seedDream(t, st, "d1")

	rr := doRequest(s, http.MethodPost, "/dreams/d1/render", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp model.RenderResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Dream == nil || resp.Dream.ID != "d1" {
		t.Errorf("expected rendered dream d1, got %+v", resp.Dream)
	}
	if resp.VideoURL != "https://signed.example/v.mp4" {
		t.Errorf("got video url %q", resp.VideoURL)
	}
}

func TestRenderDreamNotFound(t *testing.T) {
	renderer := &fakeRenderer{}
	s, _ := newTestServer(renderer)

	rr := doRequest(s, http.MethodPost, "/dreams/missing/render", "")
	if rr.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rr.Code)
	}
	if renderer.calls != 0 {
		t.Error("renderer must not run for a missing dream")
	}
}

func TestRenderDreamBackendFailure(t *testing.T) {
	renderer := &fakeRenderer{err: &enrich.BackendParseError{Raw: "{"}}
	s, st := newTestServer(renderer)
	seedDream(t, st, "d1")

	rr := doRequest(s, http.MethodPost, "/dreams/d1/render", "")
	if rr.Code != http.StatusBadGateway {
		t.Errorf("expected status 502, got %d", rr.Code)
	}
}

func TestCORSPreflightAllowsFrontend(t *testing.T) {
	s, _ := newTestServer(&fakeRenderer{})

	req := httptest.NewRequest(http.MethodOptions, "/dreams", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rr := httptest.NewRecorder()
	s.Routes().ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Errorf("expected status 204, got %d", rr.Code)
	}
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("got allow-origin %q", got)
	}
}
