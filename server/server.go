// Package server exposes the dashboard over HTTP.
//
// Routes:
//
//	GET /                                        HTML dashboard
//	GET /health                                  liveness and dataset size
//	GET /api/views                               available views
//	GET /api/options                             selectable seasons and day types
//	GET /api/views/{view}                        rendered page as JSON
//	GET /api/views/{view}/charts/{index}.{fmt}   one chart as svg or png
//	GET /api/views/{view}/export.{fmt}           chart data as csv or xlsx
//	GET /metrics                                 Prometheus metrics
//
// The selection comes from repeated "season" and "weekend" query
// parameters. A missing parameter selects every value; a parameter that is
// present but empty ("season=") selects nothing.
package server

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"golang.org/x/text/language"

	"github.com/YuminosukeSato/bikedash/dashboard"
	"github.com/YuminosukeSato/bikedash/dataset"
	"github.com/YuminosukeSato/bikedash/metrics"
	"github.com/YuminosukeSato/bikedash/pkg/errors"
	"github.com/YuminosukeSato/bikedash/pkg/log"
)

// Server serves one dataset file through a dataset.Cache.
type Server struct {
	cache     *dataset.Cache
	path      string
	lang      language.Tag
	logger    log.Logger
	metrics   *metrics.Metrics
	accessLog io.Writer
	router    *mux.Router
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(l log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics enables request metrics and the /metrics route.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithLanguage sets the label language used when a request expresses no
// preference.
func WithLanguage(tag language.Tag) Option {
	return func(s *Server) {
		s.lang = tag
	}
}

// WithAccessLog writes an Apache-style access log to w.
func WithAccessLog(w io.Writer) Option {
	return func(s *Server) {
		s.accessLog = w
	}
}

// New creates a Server for the CSV file at path.
func New(cache *dataset.Cache, path string, opts ...Option) *Server {
	s := &Server{
		cache:  cache,
		path:   path,
		lang:   language.English,
		logger: log.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(log.ComponentKey, "server")
	s.router = s.routes()
	return s
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()

	handle := func(route string, h http.HandlerFunc) {
		r.Handle(route, s.metrics.WrapHandler(route, h)).Methods(http.MethodGet)
	}
	handle("/", s.handleIndex)
	handle("/health", s.handleHealth)
	handle("/api/views", s.handleViews)
	handle("/api/options", s.handleOptions)
	handle("/api/views/{view}", s.handlePage)
	handle("/api/views/{view}/charts/{index:[0-9]+}.{format:[a-z]+}", s.handleChart)
	handle("/api/views/{view}/export.{format:[a-z]+}", s.handleExport)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	}

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, errors.NewValidationError("path", "no such route", r.URL.Path))
	})
	return r
}

// Handler returns the full middleware chain: request IDs, panic recovery,
// compression and, when configured, the access log.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.router
	h = handlers.CompressHandler(h)
	h = handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{s.logger}),
		handlers.PrintRecoveryStack(false),
	)(h)
	h = requestID(h)
	if s.accessLog != nil {
		h = handlers.LoggingHandler(s.accessLog, h)
	}
	return h
}

// HTTPConfig holds the listener settings used by Run.
type HTTPConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, cfg HTTPConfig) error {
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.Handler(),
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "listen")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown")
	}
	return nil
}

// dashboardFor builds a dashboard over the current dataset in the language
// the request asks for.
func (s *Server) dashboardFor(r *http.Request) (*dashboard.Dashboard, error) {
	ds, err := s.cache.Get(s.path)
	if err != nil {
		return nil, err
	}
	lang := dashboard.MatchLanguage(
		r.URL.Query().Get("lang"),
		r.Header.Get("Accept-Language"),
		s.lang.String(),
	)
	opts := []dashboard.Option{
		dashboard.WithLanguage(lang),
		dashboard.WithLogger(loggerFrom(r.Context(), s.logger)),
	}
	if s.metrics != nil {
		opts = append(opts, dashboard.WithObserver(s.metrics))
	}
	return dashboard.New(ds, opts...), nil
}
