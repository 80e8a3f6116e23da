// Package server assembles the HTTP surface: middleware pipeline, CORS,
// per-IP rate limiting, health probe, and the feature route registrations.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"slackbridge/internal/apperr"
	"slackbridge/internal/auth"
	"slackbridge/internal/config"
	"slackbridge/internal/messages"
	"slackbridge/internal/respond"
	"slackbridge/internal/slack"
)

// maxBodyBytes caps inbound request bodies.
const maxBodyBytes = 10 << 20 // 10 MB

// Server is the slackbridge HTTP server.
type Server struct {
	cfg        *config.Config
	client     *slack.Client
	rw         *respond.Writer
	logger     *slog.Logger
	version    string
	router     chi.Router
	httpServer *http.Server
}

// New creates a server with all routes registered.
func New(cfg *config.Config, client *slack.Client, rw *respond.Writer, logger *slog.Logger, version string) *Server {
	s := &Server{
		cfg:     cfg,
		client:  client,
		rw:      rw,
		logger:  logger,
		version: version,
	}
	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(limitBody)

	// CORS restricted to the configured frontend origin.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{s.cfg.FrontendURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Per-IP rate limit, applied before the auth gate.
	r.Use(httprate.Limit(
		s.cfg.RateLimitRequests,
		s.cfg.RateLimitWindow,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			s.rw.Error(w, r, apperr.New(apperr.CodeRateLimited,
				"Too many requests from this IP, please try again later."))
		}),
	))

	r.Get("/health", s.handleHealth)

	auth.RegisterRoutes(r, s.client, s.cfg, s.rw)
	messages.RegisterRoutes(r, s.client, s.rw)

	r.NotFound(s.handleNotFound)
	r.MethodNotAllowed(s.handleNotFound)

	return r
}

func limitBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.rw.JSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"message":   "slackbridge is running",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   s.version,
	})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.rw.JSON(w, http.StatusNotFound, map[string]any{
		"success": false,
		"error":   apperr.CodeNotFound,
		"message": fmt.Sprintf("Route %s %s not found", r.Method, r.URL.Path),
	})
}

// Router returns the chi router, mainly for tests.
func (s *Server) Router() chi.Router { return s.router }

// Start begins listening on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	s.logger.Info("slackbridge listening", "addr", addr, "env", s.cfg.Environment)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
