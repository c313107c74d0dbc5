// Package api exposes the reconciliation backend over HTTP for the
// dashboard and for operators.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/efix-securitizadora/recon-backend/internal/api/handlers"
	"github.com/efix-securitizadora/recon-backend/internal/api/middleware"
	"github.com/efix-securitizadora/recon-backend/internal/application/recon"
	"github.com/efix-securitizadora/recon-backend/internal/infrastructure/storage"
)

// Config holds API server configuration.
type Config struct {
	Port           int
	AllowedOrigins []string
}

// DefaultConfig returns sensible defaults for the API server.
func DefaultConfig() Config {
	return Config{
		Port:           8080,
		AllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
	}
}

// Server is the HTTP API server.
type Server struct {
	config       Config
	router       chi.Router
	httpServer   *http.Server
	logger       *slog.Logger
	repo         storage.Repository
	reconService *recon.Service
	balance      handlers.BalanceSource
}

// NewServer creates a new API server.
// If reconService is nil, the reconciliation and statement endpoints are
// not registered; if balance is nil, the balance endpoint is not.
func NewServer(cfg Config, repo storage.Repository, reconService *recon.Service, balance handlers.BalanceSource, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		config:       cfg,
		router:       chi.NewRouter(),
		logger:       logger,
		repo:         repo,
		reconService: reconService,
		balance:      balance,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures global middleware.
func (s *Server) setupMiddleware() {
	corsConfig := middleware.CORSConfig{
		AllowedOrigins: s.config.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}
	s.router.Use(middleware.CORS(corsConfig))

	s.router.Use(middleware.Logging(s.logger))
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Health check (no /api prefix - for load balancers)
	bankHealth, _ := s.balance.(handlers.BankHealth)
	healthHandler := handlers.NewHealthHandler(s.repo, bankHealth)
	s.router.Get("/health", healthHandler.ServeHTTP)

	s.router.Route("/api", func(r chi.Router) {
		// Receivables
		receivablesHandler := handlers.NewReceivablesHandler(s.repo)
		r.Get("/receivables", receivablesHandler.List)
		r.Post("/receivables", receivablesHandler.Create)
		r.Post("/receivables/seed", receivablesHandler.Seed)
		r.Get("/receivables/{id}", receivablesHandler.Get)

		// Operation parameters
		paramsHandler := handlers.NewParamsHandler(s.repo)
		r.Get("/params", paramsHandler.Get)
		r.Put("/params", paramsHandler.Update)

		// Reconciliation
		if s.reconService != nil {
			reconcileHandler := handlers.NewReconcileHandler(s.repo, s.reconService)
			r.Post("/reconcile", reconcileHandler.Run)
			r.Get("/reconcile/last", reconcileHandler.LastRun)
			r.Get("/reconcile/runs", reconcileHandler.Runs)
			r.Post("/settle", reconcileHandler.Settle)

			// Bank passthrough
			statementsHandler := handlers.NewStatementsHandler(s.reconService, s.balance)
			r.Get("/statements", statementsHandler.List)
			if s.balance != nil {
				r.Get("/balance", statementsHandler.GetBalance)
			}
		}
	})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting API server", "addr", addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down API server")

	if s.httpServer == nil {
		return nil
	}

	return s.httpServer.Shutdown(ctx)
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}
