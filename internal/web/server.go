// Package web provides the HTTP server and handlers for chart workspaces.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JonMunkholm/chartbind/internal/config"
	"github.com/JonMunkholm/chartbind/internal/core"
	"github.com/JonMunkholm/chartbind/internal/render"
	mw "github.com/JonMunkholm/chartbind/internal/web/middleware"
)

// Server is the HTTP server for the chart workspace application.
type Server struct {
	cfg        *config.Config
	service    *core.Service
	renderOpts render.Options
	router     *chi.Mux
	server     *http.Server
}

// NewServer creates a new Server instance.
func NewServer(service *core.Service, cfg *config.Config, renderOpts render.Options) *Server {
	s := &Server{
		cfg:        cfg,
		service:    service,
		renderOpts: renderOpts,
		router:     chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	s.server = &http.Server{
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(mw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(mw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	if s.cfg.Server.RequestTimeout > 0 {
		s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
	}

	// Security hardening
	s.router.Use(securityHeaders(s.cfg.Security.EnableCSP))

	if s.cfg.Rate.Enabled {
		limiter := newRateLimiter(s.cfg.Rate.RequestsPerMinute, s.cfg.Rate.Burst)
		s.router.Use(limiter.middleware)
	}

	s.router.Use(clientContext)
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Handle("/metrics", promhttp.Handler())

	// Pages
	s.router.Get("/", s.handleNewWorkspacePage)
	s.router.Route("/w/{id}", func(r chi.Router) {
		r.Get("/", s.handleWorkspacePage)
		r.Post("/paste", s.handlePastePage)
		r.With(s.exportLimit()).Get("/chart.{format}", s.handleExport)
	})

	// API routes
	s.router.Route("/api", func(r chi.Router) {
		r.Use(mw.APIKeyAuth(&s.cfg.Security))

		r.Get("/chart-kinds", s.handleChartKinds)
		r.Post("/workspaces", s.handleCreateWorkspace)

		r.Route("/workspaces/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetWorkspace)
			r.Delete("/", s.handleDeleteWorkspace)
			r.Get("/view", s.handleView)
			r.Get("/audit", s.handleAudit)

			// Dataset edits
			r.Put("/cells", s.handleSetCell)
			r.Post("/rows", s.handleAddRow)
			r.Delete("/rows/{row}", s.handleDeleteRow)
			r.Post("/columns", s.handleAddColumn)
			r.Delete("/columns/{column}", s.handleDeleteColumn)
			r.Patch("/columns/{column}", s.handleRenameColumn)
			r.Post("/sort", s.handleSort)
			r.Post("/reset", s.handleReset)

			// Import
			r.Post("/paste", s.handlePaste)
			r.Post("/import", s.handleImportFile)

			// Roles and settings
			r.Put("/axis", s.handleSetAxis)
			r.Post("/series/toggle", s.handleToggleSeries)
			r.Patch("/settings", s.handleUpdateSettings)

			// Export
			r.With(s.exportLimit()).Get("/export/{format}", s.handleExport)
		})
	})
}

// exportLimit returns the stricter per-IP limiter for export routes.
func (s *Server) exportLimit() func(http.Handler) http.Handler {
	if !s.cfg.Rate.Enabled {
		return func(next http.Handler) http.Handler { return next }
	}
	return newRateLimiter(s.cfg.Rate.ExportLimit, max(1, s.cfg.Rate.ExportLimit/4)).middleware
}

// Start begins listening for HTTP requests.
func (s *Server) Start(addr string) error {
	s.server.Addr = addr
	slog.Info("starting server", "addr", addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"workspaces": s.service.WorkspaceCount(),
		"renders":    s.service.RenderStatus(),
		"time":       time.Now().UTC(),
	})
}

// securityHeaders adds security headers to all responses.
func securityHeaders(enableCSP bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Prevent MIME type sniffing
			w.Header().Set("X-Content-Type-Options", "nosniff")

			// Prevent clickjacking
			w.Header().Set("X-Frame-Options", "DENY")

			if enableCSP {
				w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:")
			}

			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

			next.ServeHTTP(w, r)
		})
	}
}

// writeJSON encodes v as JSON with the given status.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
