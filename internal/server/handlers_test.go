package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/floatchat/floatchat/internal/config"
	"github.com/floatchat/floatchat/internal/embedding"
	"github.com/floatchat/floatchat/internal/ingest"
	"github.com/floatchat/floatchat/internal/models"
	"github.com/floatchat/floatchat/internal/rag"
	"github.com/floatchat/floatchat/internal/store"
	"github.com/floatchat/floatchat/internal/vector"
)

type echoGenerator struct{}

func (echoGenerator) Generate(ctx context.Context, system, prompt string) (string, error) {
	return "generated answer", nil
}

func testServer(t *testing.T) *Server {
	t.Helper()
	return testServerWith(t, echoGenerator{})
}

func testServerWith(t *testing.T, gen rag.Generator) *Server {
	t.Helper()
	dir := t.TempDir()
	profiles, err := store.NewProfileStore(filepath.Join(dir, "floatchat.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { profiles.Close() })

	embedder := embedding.NewMockEmbedder(8)
	idx, err := vector.NewMemoryIndex(8)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { idx.Close() })

	pipeline, err := ingest.NewPipeline(ingest.Config{ChunkSize: 1200, ChunkOverlap: 200},
		embedder, idx, profiles, nil)
	if err != nil {
		t.Fatal(err)
	}
	responder := rag.NewResponder(embedder, idx, gen, nil)

	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	return NewServer(pipeline, responder, profiles, idx, cfg, zap.NewNop())
}

func TestHandleIngestAndAsk(t *testing.T) {
	srv := testServer(t)
	router := srv.Router()

	dataDir := t.TempDir()
	path := filepath.Join(dataDir, "notes.txt")
	if err := os.WriteFile(path, []byte("Surface salinity near the equator is about 35 PSU."), 0644); err != nil {
		t.Fatal(err)
	}

	body, _ := json.Marshal(IngestRequest{Path: dataDir})
	r := httptest.NewRequest(http.MethodPost, "/api/v1/ingest", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("ingest status = %d, body = %s", w.Code, w.Body.String())
	}
	var res ingest.Result
	if err := json.NewDecoder(w.Body).Decode(&res); err != nil {
		t.Fatal(err)
	}
	if res.Status != "ingested" || res.AddedChunks != 1 {
		t.Fatalf("result = %+v", res)
	}

	askBody, _ := json.Marshal(AskRequest{Query: "What is the surface salinity?"})
	r = httptest.NewRequest(http.MethodPost, "/api/v1/ask", bytes.NewReader(askBody))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("ask status = %d, body = %s", w.Code, w.Body.String())
	}
	var answer rag.Answer
	if err := json.NewDecoder(w.Body).Decode(&answer); err != nil {
		t.Fatal(err)
	}
	if answer.Answer != "generated answer" {
		t.Errorf("answer = %q", answer.Answer)
	}
	if len(answer.Contexts) != 1 {
		t.Errorf("contexts = %v", answer.Contexts)
	}
}

func TestHandleAsk_EmptyIndexReturnsNoInformation(t *testing.T) {
	srv := testServer(t)
	router := srv.Router()

	body, _ := json.Marshal(AskRequest{Query: "anything"})
	r := httptest.NewRequest(http.MethodPost, "/api/v1/ask", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var answer rag.Answer
	if err := json.NewDecoder(w.Body).Decode(&answer); err != nil {
		t.Fatal(err)
	}
	if answer.Answer != rag.NoInformationAnswer {
		t.Errorf("answer = %q", answer.Answer)
	}
	if len(answer.Contexts) != 0 {
		t.Errorf("contexts = %v", answer.Contexts)
	}
}

func TestHandleAsk_BadRequests(t *testing.T) {
	srv := testServer(t)
	router := srv.Router()

	tests := []struct {
		name string
		body string
	}{
		{name: "malformed json", body: "{not json"},
		{name: "missing query", body: `{"top_k": 3}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/api/v1/ask", bytes.NewReader([]byte(tt.body)))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, r)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}
}

func TestHandleGetProfile(t *testing.T) {
	srv := testServer(t)
	router := srv.Router()

	err := srv.profiles.SaveProfiles(context.Background(), []models.Profile{{
		FloatID:     models.FloatIDForProfile(0),
		Timestamp:   time.Date(1950, 1, 1, 0, 0, 0, 0, time.UTC),
		Latitude:    22.5,
		Longitude:   35.1,
		SurfaceTemp: 20.0,
		SurfaceSal:  35.0,
	}})
	if err != nil {
		t.Fatal(err)
	}

	r := httptest.NewRequest(http.MethodGet, "/api/v1/profiles/grid_profile_0", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var p models.Profile
	if err := json.NewDecoder(w.Body).Decode(&p); err != nil {
		t.Fatal(err)
	}
	if p.FloatID != "grid_profile_0" || p.SurfaceTemp != 20.0 {
		t.Errorf("profile = %+v", p)
	}

	r = httptest.NewRequest(http.MethodGet, "/api/v1/profiles/grid_profile_99", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, r)
	if w.Code != http.StatusNotFound {
		t.Errorf("missing profile status = %d, want 404", w.Code)
	}
}

func TestHandleStatus(t *testing.T) {
	srv := testServer(t)
	router := srv.Router()

	r := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var out struct {
		Profiles int            `json:"profiles"`
		Chunks   int            `json:"chunks"`
		Config   map[string]any `json:"config"`
	}
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out.Config["collection"] != "argo_profiles" {
		t.Errorf("config = %v", out.Config)
	}
}

func TestHandleHealth(t *testing.T) {
	srv := testServer(t)
	r := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d", w.Code)
	}
}

type deadlineGenerator struct{ hasDeadline bool }

func (g *deadlineGenerator) Generate(ctx context.Context, system, prompt string) (string, error) {
	_, g.hasDeadline = ctx.Deadline()
	return "ok", nil
}

func TestRouterEnforcesRequestDeadline(t *testing.T) {
	gen := &deadlineGenerator{}
	srv := testServerWith(t, gen)
	router := srv.Router()

	dataDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dataDir, "notes.txt"), []byte("thermocline depth varies seasonally"), 0644); err != nil {
		t.Fatal(err)
	}
	body, _ := json.Marshal(IngestRequest{Path: dataDir})
	r := httptest.NewRequest(http.MethodPost, "/api/v1/ingest", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("ingest status = %d", w.Code)
	}

	askBody, _ := json.Marshal(AskRequest{Query: "thermocline?"})
	r = httptest.NewRequest(http.MethodPost, "/api/v1/ask", bytes.NewReader(askBody))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("ask status = %d, body = %s", w.Code, w.Body.String())
	}
	if !gen.hasDeadline {
		t.Error("request context reached the generator without a deadline")
	}
}
