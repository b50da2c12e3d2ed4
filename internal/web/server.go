// Package web serves a compiled register catalog over HTTP.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/JonMunkholm/regdef/internal/catalog"
	"github.com/JonMunkholm/regdef/internal/config"
	regmw "github.com/JonMunkholm/regdef/internal/web/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// CatalogStore persists catalogs. Satisfied by *store.Store.
type CatalogStore interface {
	SaveCatalog(ctx context.Context, c *catalog.Catalog) (int64, error)
	ListCatalogs(ctx context.Context) ([]catalog.Summary, error)
	DeleteCatalog(ctx context.Context, id uuid.UUID) (int64, error)
}

// Options configures a Server.
type Options struct {
	Server config.ServerConfig
	Reader config.ReaderConfig // Dialect and locale for compile requests
	Store  CatalogStore        // Optional; enables saving on apply and /api/catalogs
}

// Server is the HTTP server for one served catalog.
type Server struct {
	cfg     config.ServerConfig
	reader  config.ReaderConfig
	store   CatalogStore
	catalog atomic.Pointer[catalog.Catalog]
	router  *chi.Mux
	server  *http.Server
}

// NewServer creates a Server serving c.
func NewServer(c *catalog.Catalog, opts Options) *Server {
	s := &Server{
		cfg:    opts.Server,
		reader: opts.Reader,
		store:  opts.Store,
		router: chi.NewRouter(),
	}
	s.catalog.Store(c)
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(regmw.Logger)
	s.router.Use(middleware.Recoverer)
	if s.cfg.RequestTimeout > 0 {
		s.router.Use(middleware.Timeout(s.cfg.RequestTimeout))
	}
	s.router.Use(securityHeaders)
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Get("/", s.handleIndex)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/catalog", s.handleCatalog)
		r.Get("/registers", s.handleRegisters)
		r.Get("/registers/{address}", s.handleRegister)
		r.Get("/types", s.handleTypes)
		r.Post("/compile", s.handleCompile)
		r.Get("/catalogs", s.handleListCatalogs)
		r.Delete("/catalogs/{id}", s.handleDeleteCatalog)
	})
}

// Catalog returns the catalog currently served.
func (s *Server) Catalog() *catalog.Catalog {
	return s.catalog.Load()
}

// SetCatalog replaces the served catalog.
func (s *Server) SetCatalog(c *catalog.Catalog) {
	s.catalog.Store(c)
}

// Start begins listening for HTTP requests. It returns
// http.ErrServerClosed after Shutdown.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}

	slog.Info("starting server", "addr", s.server.Addr, "registers", s.Catalog().Len())
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")

		// The catalog page has no scripts and only inline styles
		w.Header().Set("Content-Security-Policy", "default-src 'none'; style-src 'unsafe-inline'")

		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		next.ServeHTTP(w, r)
	})
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
