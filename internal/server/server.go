// Package server provides the HTTP API for Substream.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/substream/substream/internal/config"
	"github.com/substream/substream/internal/model"
	"github.com/substream/substream/internal/recommend"
	"github.com/substream/substream/internal/search"
	"github.com/substream/substream/internal/storage"
)

// Server is the HTTP server for the Substream API.
type Server struct {
	engine      *search.Engine
	recommender *recommend.Recommender
	model       *model.Service
	storage     storage.Storage
	config      *config.Config
	logger      *zap.Logger
	sessions    *sessionStore
	server      *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(
	engine *search.Engine,
	recommender *recommend.Recommender,
	svc *model.Service,
	store storage.Storage,
	cfg *config.Config,
	logger *zap.Logger,
) *Server {
	return &Server{
		engine:      engine,
		recommender: recommender,
		model:       svc,
		storage:     store,
		config:      cfg,
		logger:      logger,
		sessions:    newSessionStore(),
	}
}

// Router builds the chi router with all API routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Get("/health", s.handleHealth)
	r.Get("/api/v1/status", s.handleStatus)

	r.Get("/api/v1/search", s.handleSearch)
	r.Get("/api/v1/search/vector", s.handleVectorSearch)
	r.Get("/api/v1/series", s.handleListSeries)
	r.Get("/api/v1/series/{id}", s.handleGetSeries)
	r.Get("/api/v1/series/{id}/similar", s.handleSimilar)
	r.Get("/api/v1/recommend/{name}", s.handleRecommendContent)
	r.Post("/api/v1/rebuild", s.handleRebuild)

	r.Post("/api/v1/signup", s.handleSignup)
	r.Post("/api/v1/login", s.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Post("/api/v1/logout", s.handleLogout)
		r.Get("/api/v1/recommendations", s.handleRecommendUser)
		r.Get("/api/v1/ratings", s.handleListRatings)
		r.Put("/api/v1/ratings", s.handleUpsertRating)
		r.Delete("/api/v1/ratings/{name}", s.handleDeleteRating)
		r.Get("/api/v1/watchlist", s.handleListWatchlist)
		r.Post("/api/v1/watchlist/{id}", s.handleAddWatchlist)
		r.Delete("/api/v1/watchlist/{id}", s.handleRemoveWatchlist)
	})

	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
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

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
