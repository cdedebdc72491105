package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/floatchat/floatchat/internal/rag"
)

// IngestRequest triggers an ingestion run. Path defaults to the configured
// data directory.
type IngestRequest struct {
	Path string `json:"path"`
}

// AskRequest is a question against the ingested data.
type AskRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req IngestRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	path := req.Path
	if path == "" {
		path = s.config.Ingest.DataDir
	}
	s.logger.Debug("ingest request", zap.String("path", path))

	res := s.pipeline.Ingest(r.Context(), path)
	status := http.StatusOK
	if res.Status != "ingested" {
		status = http.StatusUnprocessableEntity
		s.logger.Warn("ingestion failed", zap.String("path", path), zap.String("details", res.Details))
	}
	s.respondJSON(w, status, res)
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Query == "" {
		s.respondError(w, http.StatusBadRequest, "query is required")
		return
	}
	topK := req.TopK
	if topK <= 0 {
		topK = s.config.Query.TopK
	}
	s.logger.Debug("ask request", zap.String("query", req.Query), zap.Int("top_k", topK))

	answer, err := s.responder.Answer(r.Context(), req.Query, rag.Options{
		TopK:            topK,
		MaxContextChars: s.config.Query.MaxContextChars,
	})
	if err != nil {
		var genErr *rag.GenerationError
		if errors.As(err, &genErr) {
			s.logger.Error("generation failed", zap.Error(err))
			s.respondError(w, http.StatusBadGateway, err.Error())
			return
		}
		s.logger.Error("answer failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, answer)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	profile, err := s.profiles.GetProfile(r.Context(), id)
	if err != nil {
		s.respondError(w, http.StatusNotFound, "profile not found")
		return
	}
	s.respondJSON(w, http.StatusOK, profile)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	profileCount, err := s.profiles.CountProfiles(ctx)
	if err != nil {
		s.logger.Error("status: count profiles failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	vectorCount, err := s.index.Count(ctx)
	if err != nil {
		s.logger.Error("status: count vectors failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{
		"profiles": profileCount,
		"chunks":   vectorCount,
		"config": map[string]any{
			"collection":    s.config.Vector.Collection,
			"vector_type":   s.config.Vector.Type,
			"embed_model":   s.config.Ollama.EmbedModel,
			"gen_model":     s.config.Ollama.GenModel,
			"chunk_size":    s.config.Ingest.ChunkSize,
			"chunk_overlap": s.config.Ingest.ChunkOverlap,
			"top_k":         s.config.Query.TopK,
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
