// Package api exposes the HTTP surface: the command endpoint the floor
// terminals post to, the dashboard read endpoints, and the operational
// endpoints (health, metrics).
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tpt-cnclog/mfg-dashboard/board"
	"github.com/tpt-cnclog/mfg-dashboard/engine"
	"github.com/tpt-cnclog/mfg-dashboard/rowstore"
)

// Server is the HTTP server over the engine and the board.
type Server struct {
	eng    *engine.Engine
	board  *board.Board
	store  rowstore.Store
	log    *slog.Logger
	server *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.log = l }
}

// New creates a Server listening on addr. gatherer mounts /metrics; pass nil
// to skip it.
func New(addr string, eng *engine.Engine, b *board.Board, store rowstore.Store, gatherer prometheus.Gatherer, opts ...Option) *Server {
	s := &Server{
		eng:   eng,
		board: b,
		store: store,
		log:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/command", s.handleCommand)
	mux.HandleFunc("GET /v1/steps", s.handleSteps)
	mux.HandleFunc("GET /v1/board/active", s.handleBoardActive)
	mux.HandleFunc("GET /v1/board/version", s.handleBoardVersion)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	if gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.cors(s.logged(mux)),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler returns the full middleware-wrapped handler, for tests.
func (s *Server) Handler() http.Handler { return s.server.Handler }

// Start serves until Shutdown. Returns http.ErrServerClosed on clean stop.
func (s *Server) Start() error {
	s.log.Info("http server listening", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("http server shutting down")
	return s.server.Shutdown(ctx)
}

// cors allows the dashboard, which is served from a separate origin, to poll
// the read endpoints.
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logged(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()
		w.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(w, r)

		s.log.Debug("request",
			"id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"elapsed", time.Since(start).String())
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error("response encode failed", "error", err)
	}
}
