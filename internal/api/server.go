package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/newthinker/tickertalk/internal/api/handler"
	"github.com/newthinker/tickertalk/internal/api/middleware"
	"github.com/newthinker/tickertalk/internal/metrics"
	"github.com/newthinker/tickertalk/internal/session"
)

// Server is the HTTP front end for chat sessions.
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	mux        *mux.Router
}

// Config holds server configuration.
type Config struct {
	Host         string
	Port         int
	APIKey       string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	MetricsPath  string // empty disables the scrape endpoint
}

// Dependencies holds what the handlers need.
type Dependencies struct {
	Sessions  *session.Store
	Functions handler.Catalogue
	Charts    handler.ChartOpener
	Metrics   *metrics.Registry
}

// NewServer creates a new HTTP server.
func NewServer(cfg Config, deps Dependencies, logger *zap.Logger) (*Server, error) {
	if deps.Sessions == nil {
		return nil, fmt.Errorf("session store is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 15 * time.Second
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 2 * time.Minute
	}

	router := mux.NewRouter()
	s := &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
		mux:    router,
	}

	s.setupRoutes(cfg, deps)
	return s, nil
}

func (s *Server) setupRoutes(cfg Config, deps Dependencies) {
	s.mux.Use(metrics.LoggingMiddleware(s.logger))
	s.mux.Use(metrics.HTTPMiddleware(deps.Metrics))

	s.mux.HandleFunc("/api/health", s.handleHealth).Methods(http.MethodGet)
	if cfg.MetricsPath != "" && deps.Metrics != nil {
		s.mux.Handle(cfg.MetricsPath, promhttp.HandlerFor(deps.Metrics.Registry, promhttp.HandlerOpts{})).
			Methods(http.MethodGet)
	}

	v1 := s.mux.PathPrefix("/api/v1").Subrouter()
	v1.Use(middleware.APIKeyAuth(cfg.APIKey))

	sessions := handler.NewSessionsHandler(deps.Sessions, s.logger)
	v1.HandleFunc("/sessions", sessions.Create).Methods(http.MethodPost)
	v1.HandleFunc("/sessions/{id}", sessions.Get).Methods(http.MethodGet)
	v1.HandleFunc("/sessions/{id}", sessions.Delete).Methods(http.MethodDelete)
	v1.HandleFunc("/sessions/{id}/messages", sessions.Messages).Methods(http.MethodGet)
	v1.HandleFunc("/sessions/{id}/messages", sessions.Submit).Methods(http.MethodPost)

	if deps.Functions != nil {
		functions := handler.NewFunctionsHandler(deps.Functions)
		v1.HandleFunc("/functions", functions.List).Methods(http.MethodGet)
	}
	if deps.Charts != nil {
		charts := handler.NewChartsHandler(deps.Charts)
		v1.HandleFunc("/charts/{scope}/{file}", charts.Get).Methods(http.MethodGet)
	}
}

// Handler exposes the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
