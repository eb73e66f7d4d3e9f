// Package api exposes the HTTP surface: webhook ingress, ticket lookup,
// remediation stats, health, and metrics.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Balaji2106/demo-autoremediation/internal/infra/storage"
	"github.com/Balaji2106/demo-autoremediation/internal/ingest"
)

// Config holds HTTP server settings.
type Config struct {
	Port   int    `yaml:"port"`
	APIKey string `yaml:"api_key"`
}

// Server is the HTTP front of the service.
type Server struct {
	cfg     Config
	ingest  *ingest.Service
	tickets storage.TicketRepository
	audit   storage.AuditRepository
	log     *slog.Logger
	httpSrv *http.Server
}

// NewServer creates the HTTP server.
func NewServer(
	cfg Config,
	ing *ingest.Service,
	tickets storage.TicketRepository,
	audit storage.AuditRepository,
	log *slog.Logger,
) *Server {
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	s := &Server{cfg: cfg, ingest: ing, tickets: tickets, audit: audit, log: log}
	s.httpSrv = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  90 * time.Second,
	}
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.requireAPIKey)

		r.Post("/webhooks/{source}", s.handleWebhook)
		r.Get("/tickets/{ticketID}", s.handleGetTicket)
		r.Get("/tickets/run/{runID}", s.handleGetTicketByRun)
		r.Post("/tickets/{ticketID}/ack", s.handleAcknowledge)
		r.Get("/remediation/stats", s.handleStats)
	})

	return r
}

// Start begins serving. It blocks until the listener fails or Stop is
// called.
func (s *Server) Start() error {
	s.log.Info("http server listening", "addr", s.httpSrv.Addr)
	if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

// requireAPIKey rejects requests without the configured key. An empty
// configured key disables the check for local development.
func (s *Server) requireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.APIKey != "" && r.Header.Get("X-API-Key") != s.cfg.APIKey {
			jsonError(w, http.StatusUnauthorized, errCodeUnauthorized, "invalid or missing API key")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}
