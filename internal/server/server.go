// Package server exposes the render pipeline over HTTP.
//
// Routes:
//
//	GET  /healthz             liveness probe
//	GET  /version             build information
//	POST /v1/validate         check a dataset and settings
//	POST /v1/frames           render one frame (svg, png, pdf or json)
//	POST /v1/timeline/plan    sample a timeline into frame indices
//
// Every response carries an X-Request-ID header. Errors are JSON objects
// {"code": ..., "message": ...} whose HTTP status follows the error code.
package server

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/barrace/pkg/errors"
	"github.com/matzehuels/barrace/pkg/pipeline"
)

const (
	// DefaultAddr is the listen address used when none is given.
	DefaultAddr = "127.0.0.1:8080"

	// DefaultMaxBodyBytes bounds request bodies.
	DefaultMaxBodyBytes = 16 << 20

	// DefaultRequestTimeout bounds the work done for a single request.
	DefaultRequestTimeout = 60 * time.Second

	shutdownTimeout = 10 * time.Second
)

// Server serves the HTTP API.
type Server struct {
	runner  *pipeline.Runner
	logger  *log.Logger
	maxBody int64
	timeout time.Duration
	router  chi.Router
}

type Option func(*Server)

func WithLogger(l *log.Logger) Option { return func(s *Server) { s.logger = l } }

// WithMaxBodyBytes bounds request bodies; larger requests get 413.
func WithMaxBodyBytes(n int64) Option { return func(s *Server) { s.maxBody = n } }

// WithRequestTimeout bounds the work done for a single request.
func WithRequestTimeout(d time.Duration) Option { return func(s *Server) { s.timeout = d } }

// New builds a server rendering through runner.
func New(runner *pipeline.Runner, opts ...Option) *Server {
	s := &Server{
		runner:  runner,
		maxBody: DefaultMaxBodyBytes,
		timeout: DefaultRequestTimeout,
	}
	for _, o := range opts {
		o(s)
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}
	s.router = s.routes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.timeout))

	r.Get("/healthz", s.handleHealth)
	r.Get("/version", s.handleVersion)

	r.Route("/v1", func(r chi.Router) {
		r.Use(s.limitBody)
		r.Post("/validate", s.handleValidate)
		r.Post("/frames", s.handleFrames)
		r.Post("/timeline/plan", s.handlePlan)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, errors.New(errors.ErrCodeNotFound, "no route for %s", r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", r.Method+" not allowed on "+r.URL.Path)
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
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
	if err := <-errc; !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
