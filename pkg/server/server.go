// Package server exposes the treemap layout engine as a JSON HTTP API.
//
// # Endpoints
//
//	GET  /healthz                  liveness and build information
//	POST /v1/layout                flat layout: items + rect + mode → blocks
//	POST /v1/layout/hierarchical   grouped layout: + group_by + margin → groups + items
//
// Every response carries an X-Request-ID header; a client-supplied id is
// echoed back, otherwise a UUID is generated. Request bodies are capped at
// [DefaultMaxBodyBytes]. Errors are returned as
//
//	{"error": {"code": "INVALID_WEIGHT_MODE", "message": "..."}, "request_id": "..."}
//
// with the status chosen by [errors.HTTPStatus].
//
// Layouts are computed through a [pipeline.Runner], so a shared Redis or
// Mongo cache deduplicates identical requests across instances.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/vidtree/pkg/pipeline"
)

const (
	// DefaultAddr is the listen address used when none is configured.
	DefaultAddr = ":8080"

	// DefaultMaxBodyBytes caps request bodies.
	DefaultMaxBodyBytes = 8 << 20

	// RequestIDHeader carries the request id on requests and responses.
	RequestIDHeader = "X-Request-ID"

	shutdownTimeout = 10 * time.Second
)

// Server serves the layout API.
type Server struct {
	runner  *pipeline.Runner
	logger  *log.Logger
	maxBody int64
	router  chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithMaxBodyBytes overrides the request body limit.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBody = n
		}
	}
}

// New creates a server that computes layouts with runner. A nil runner gets
// an uncached one; a nil logger discards output.
func New(runner *pipeline.Runner, logger *log.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, logger)
	}
	s := &Server{runner: runner, logger: logger, maxBody: DefaultMaxBodyBytes}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestID)

	r.With(s.instrument("/healthz")).Get("/healthz", s.handleHealth)
	r.Route("/v1/layout", func(r chi.Router) {
		r.Use(s.limitBody)
		r.With(s.instrument("/v1/layout")).Post("/", s.handleLayout)
		r.With(s.instrument("/v1/layout/hierarchical")).Post("/hierarchical", s.handleHierarchical)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "NOT_FOUND", "no route for "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, "UNSUPPORTED", r.Method+" is not allowed on "+r.URL.Path)
	})
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
