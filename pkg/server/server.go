// Package server exposes the layout pipeline over HTTP.
//
// # Routes
//
//	GET    /healthz                      liveness and build info
//	POST   /v1/layout                    document → layout JSON
//	POST   /v1/render?format=svg         document → artifact (svg, json, dot, overview)
//	GET    /v1/diagrams/{id}             stored record (?format=svg for the image)
//	POST   /v1/diagrams/{id}/render      re-render a stored layout (svg or json)
//	DELETE /v1/diagrams/{id}             remove a stored record
//
// Request bodies are JSON documents as accepted by [diagram.ParseDocument].
// Errors are returned as {"error": "...", "code": "..."} with a status
// derived from the error code; see [StatusFor].
package server

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/lifeline/pkg/config"
	"github.com/matzehuels/lifeline/pkg/errors"
	"github.com/matzehuels/lifeline/pkg/pipeline"
	"github.com/matzehuels/lifeline/pkg/storage"
)

// MaxBodySize bounds request documents.
const MaxBodySize = 4 << 20

// Deps holds the dependencies of a Server.
type Deps struct {
	Runner *pipeline.Runner
	Store  storage.Store
	Config config.Config // layout config for every request; zero means default
	Logger *log.Logger
}

// Server serves the HTTP API.
type Server struct {
	deps Deps
}

// New creates a Server. A nil Runner gets an uncached one and a nil Store
// an in-memory one.
func New(deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if deps.Runner == nil {
		deps.Runner = pipeline.NewRunner(nil, nil, deps.Logger)
	}
	if deps.Store == nil {
		deps.Store = storage.NewMemoryStore()
	}
	if deps.Config == (config.Config{}) {
		deps.Config = config.Default()
	}
	return &Server{deps: deps}
}

// Handler returns the HTTP handler for all routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.deps.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/layout", s.handleLayout)
		r.Post("/render", s.handleRender)
		r.Get("/diagrams/{id}", s.handleGetDiagram)
		r.Delete("/diagrams/{id}", s.handleDeleteDiagram)
		r.Post("/diagrams/{id}/render", s.handleRenderStored)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "no such route", errors.ErrCodeNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
	})
	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.deps.Logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.deps.Logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
