// Package server provides the HTTP API for FloatChat.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/floatchat/floatchat/internal/config"
	"github.com/floatchat/floatchat/internal/ingest"
	"github.com/floatchat/floatchat/internal/rag"
	"github.com/floatchat/floatchat/internal/store"
	"github.com/floatchat/floatchat/internal/vector"
)

// Server is the HTTP server for the FloatChat API.
type Server struct {
	pipeline  *ingest.Pipeline
	responder *rag.Responder
	profiles  *store.ProfileStore
	index     vector.Index
	config    *config.Config
	logger    *zap.Logger
	server    *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(
	pipeline *ingest.Pipeline,
	responder *rag.Responder,
	profiles *store.ProfileStore,
	index vector.Index,
	cfg *config.Config,
	logger *zap.Logger,
) *Server {
	return &Server{
		pipeline:  pipeline,
		responder: responder,
		profiles:  profiles,
		index:     index,
		config:    cfg,
		logger:    logger,
	}
}

// Router builds the chi router with all API routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	// Grid ingestion can take minutes on large files.
	r.Use(middleware.Timeout(5 * time.Minute))

	r.Post("/api/v1/ingest", s.handleIngest)
	r.Post("/api/v1/ask", s.handleAsk)
	r.Get("/api/v1/profiles/{id}", s.handleGetProfile)
	r.Get("/api/v1/status", s.handleStatus)
	r.Get("/health", s.handleHealth)

	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
