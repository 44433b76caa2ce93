// Package apiserver provides the JSON API HTTP server
package apiserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/pictura/v1/internal/infrastructure/config"
	"github.com/pictura/v1/internal/infrastructure/http/handlers"
	"github.com/pictura/v1/internal/infrastructure/http/middleware"
	"github.com/pictura/v1/internal/infrastructure/monitoring"
	"github.com/pictura/v1/internal/ports/inbound"
	"github.com/pictura/v1/internal/ports/outbound"
	"go.uber.org/zap"
)

// APIServer serves the JSON API
type APIServer struct {
	config            *config.Config
	logger            *zap.Logger
	server            *http.Server
	router            *chi.Mux
	generationService inbound.GenerationService
	feedService       inbound.FeedService
	likeService       inbound.LikeService
	accountService    inbound.AccountService
	tokenService      outbound.TokenService
	metrics           *monitoring.MetricsCollector
}

// NewAPIServer creates a new API server instance
func NewAPIServer(
	cfg *config.Config,
	log *zap.Logger,
	generationService inbound.GenerationService,
	feedService inbound.FeedService,
	likeService inbound.LikeService,
	accountService inbound.AccountService,
	tokenService outbound.TokenService,
	metrics *monitoring.MetricsCollector,
) *APIServer {
	server := &APIServer{
		config:            cfg,
		logger:            log,
		generationService: generationService,
		feedService:       feedService,
		likeService:       likeService,
		accountService:    accountService,
		tokenService:      tokenService,
		metrics:           metrics,
	}

	server.router = server.setupRoutes()
	server.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      server.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return server
}

func (s *APIServer) setupRoutes() *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(s.logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Security())
	r.Use(middleware.CORS())
	r.Use(chimiddleware.Compress(5))
	r.Use(middleware.JSONOnly())
	if s.metrics != nil {
		r.Use(s.metrics.HTTPMiddleware())
	}

	r.Get("/health", s.handleHealthCheck)
	if s.metrics != nil && s.config.Monitoring.EnableMetrics {
		r.Handle("/metrics", s.metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		s.setupAPIV1Routes(r)
	})

	return r
}

func (s *APIServer) setupAPIV1Routes(r chi.Router) {
	genH := handlers.NewGenerationHandlers(s.generationService, s.logger)
	feedH := handlers.NewFeedHandlers(s.feedService, s.logger)
	likeH := handlers.NewLikeHandlers(s.likeService, s.logger)
	authH := handlers.NewAuthHandlers(s.accountService, s.logger)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/check", authH.CheckEmail)
		r.Post("/send-otp", authH.SendOTP)
		r.Post("/verify-otp", authH.VerifyOTP)
		r.Post("/register", authH.Register)
		r.Post("/login", authH.Login)
		r.Post("/logout", authH.Logout)
	})

	// Public reads carry an optional viewer identity for per-viewer
	// like decoration.
	r.Group(func(r chi.Router) {
		r.Use(middleware.OptionalAuthenticate(s.tokenService))
		r.Get("/feed", feedH.Fetch)
		r.Get("/likes", likeH.Get)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthenticateAPI(s.tokenService))
		r.Post("/generate", genH.Generate)
		r.Get("/generations/{id}", genH.GetByID)
		r.Post("/likes", likeH.Toggle)
	})
}

// Start starts the API HTTP server
func (s *APIServer) Start() error {
	s.logger.Info("Starting API server",
		zap.String("address", s.server.Addr),
		zap.String("environment", s.config.App.Environment),
	)

	return s.server.ListenAndServe()
}

// Router returns the configured router, used by tests
func (s *APIServer) Router() http.Handler {
	return s.router
}

// Shutdown gracefully shuts down the API server
func (s *APIServer) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down API server")
	return s.server.Shutdown(ctx)
}

func (s *APIServer) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    "healthy",
		"service":   "pictura-api",
		"version":   s.config.App.Version,
		"timestamp": time.Now().Unix(),
	})
}
