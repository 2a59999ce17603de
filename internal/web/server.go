// Package web provides the HTTP server and JSON API for the legal-matrix
// engine.
package web

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Bernah2o/legalmatrix/internal/config"
	"github.com/Bernah2o/legalmatrix/internal/core"
)

// Server is the HTTP server over the engine service.
type Server struct {
	service *core.Service
	cfg     *config.Config
	router  *chi.Mux
	server  *http.Server
}

// NewServer creates a new Server instance.
func NewServer(service *core.Service, cfg *config.Config) *Server {
	s := &Server{
		service: service,
		cfg:     cfg,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		// Import pipeline
		r.Post("/imports/preview", s.handlePreview)
		r.Post("/imports", s.handleImport)
		r.Get("/imports", s.handleListImportRuns)
		r.Get("/imports/{runID}", s.handleGetImportRun)

		// Regulation catalog
		r.Get("/regulations", s.handleListRegulations)
		r.Get("/regulations/{id}/versions", s.handleRegulationVersions)

		// Sector catalog
		r.Get("/sectors", s.handleListSectors)

		// Per-organization applicability and compliance
		r.Post("/organizations/{orgID}/sync", s.handleSyncOrganization)
		r.Get("/organizations/{orgID}/applicable", s.handleApplicableRegulations)
		r.Get("/organizations/{orgID}/compliance", s.handleListCompliance)
		r.Get("/organizations/{orgID}/stats", s.handleOrganizationStats)
		r.Put("/compliance/{id}", s.handleUpdateCompliance)
		r.Get("/compliance/{id}/versions", s.handleComplianceVersions)
	})
}

// Start begins listening on addr. Blocks until the server stops.
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
