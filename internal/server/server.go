// Package server exposes the pipeline and the chart store over HTTP.
//
// Routes:
//
//	GET    /health              liveness probe
//	POST   /render              chart document in, one artifact out
//	POST   /route               route a single link of a chart
//	GET    /charts              list stored charts
//	POST   /charts              store a chart, 201 with its id
//	GET    /charts/{id}         stored chart as JSON or YAML
//	PUT    /charts/{id}         replace a stored chart
//	DELETE /charts/{id}         remove a stored chart
//	GET    /charts/{id}/svg     render a stored chart as SVG
//	GET    /charts/{id}/render  render a stored chart in any format
//
// Render options are query parameters (format, viz, selected, grid,
// interactive, detailed, title, zoom, scroll_x, scroll_y, width,
// px_per_unit, cell_size, scale, refresh). Errors are JSON objects carrying
// the pkg/errors code and the request id.
package server

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/lanechart/pkg/pipeline"
	"github.com/matzehuels/lanechart/pkg/store"
)

// Defaults for Options fields left zero.
const (
	DefaultRequestTimeout = 30 * time.Second
	DefaultMaxBodyBytes   = 4 << 20
	shutdownTimeout       = 10 * time.Second
)

// Options configure a Server.
type Options struct {
	Runner *pipeline.Runner
	Store  store.Store
	Logger *log.Logger

	// Defaults are the pipeline options query parameters are applied to.
	Defaults pipeline.Options

	RequestTimeout time.Duration
	MaxBodyBytes   int64
}

// Server serves the HTTP API.
type Server struct {
	runner   *pipeline.Runner
	store    store.Store
	logger   *log.Logger
	defaults pipeline.Options
	timeout  time.Duration
	maxBody  int64
}

// New creates a server. A nil Runner gets an uncached runner, a nil Store an
// in-memory store and a nil Logger log.Default().
func New(opts Options) *Server {
	s := &Server{
		runner:   opts.Runner,
		store:    opts.Store,
		logger:   opts.Logger,
		defaults: opts.Defaults,
		timeout:  opts.RequestTimeout,
		maxBody:  opts.MaxBodyBytes,
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	if s.runner == nil {
		s.runner = pipeline.NewRunner(nil, nil, s.logger)
	}
	if s.store == nil {
		s.store = store.NewMemoryStore()
	}
	if s.timeout <= 0 {
		s.timeout = DefaultRequestTimeout
	}
	if s.maxBody <= 0 {
		s.maxBody = DefaultMaxBodyBytes
	}
	return s
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)
	r.Use(securityHeaders)
	r.Use(s.limits)

	r.Get("/health", s.handleHealth)
	r.Post("/render", s.handleRender)
	r.Post("/route", s.handleRoute)

	r.Route("/charts", func(r chi.Router) {
		r.Get("/", s.handleListCharts)
		r.Post("/", s.handleCreateChart)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetChart)
			r.Put("/", s.handlePutChart)
			r.Delete("/", s.handleDeleteChart)
			r.Get("/svg", s.handleChartSVG)
			r.Get("/render", s.handleRenderChart)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.fail(w, r, notFound("no route for %s %s", r.Method, r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeStatusError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", r.Method+" not allowed")
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
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
	if err := <-errc; err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
