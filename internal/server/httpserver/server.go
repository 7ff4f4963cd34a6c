// Package httpserver serves content items, their social metadata and the
// canonical URL updater over HTTP.
package httpserver

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"git.home.luguber.info/inful/sociallike/internal/canonical"
	"git.home.luguber.info/inful/sociallike/internal/config"
	"git.home.luguber.info/inful/sociallike/internal/content"
	"git.home.luguber.info/inful/sociallike/internal/foundation/errors"
	"git.home.luguber.info/inful/sociallike/internal/history"
	"git.home.luguber.info/inful/sociallike/internal/logfields"
	"git.home.luguber.info/inful/sociallike/internal/metrics"
	"git.home.luguber.info/inful/sociallike/internal/registry"
	smw "git.home.luguber.info/inful/sociallike/internal/server/middleware"
)

// TriggerWeb identifies batches started from the updater view.
const TriggerWeb = "web"

// Deps are the services behind the views.
type Deps struct {
	Content  *content.Repository
	Registry registry.Registry
	Updater  *canonical.Updater

	// Optional.
	History        *history.Recorder
	Projection     *history.Projection
	Metrics        metrics.Recorder
	MetricsHandler http.Handler
}

// Options configures the HTTP surface.
type Options struct {
	SiteTitle string
	// PublicURL is the server URL used when a request is not virtually hosted.
	// Empty means derive it from the request Host header.
	PublicURL   string
	MetricsPath string
}

// Server owns the HTTP listener and view dispatch.
type Server struct {
	cfg          config.ServerConfig
	deps         Deps
	opts         Options
	logger       *slog.Logger
	errorAdapter *errors.HTTPErrorAdapter
	views        map[string]view
	pages        *pages
	started      time.Time

	httpServer *http.Server
	mchain     func(http.Handler) http.Handler
}

// New constructs a server. It does not listen until Start.
func New(cfg config.ServerConfig, deps Deps, opts Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.NoopRecorder{}
	}
	s := &Server{
		cfg:          cfg,
		deps:         deps,
		opts:         opts,
		logger:       logger,
		errorAdapter: errors.NewHTTPErrorAdapter(logger),
		pages:        mustParsePages(),
		started:      time.Now(),
	}
	s.views = s.registerViews()
	s.mchain = smw.Chain(logger, s.errorAdapter, deps.Metrics)
	return s
}

// Handler returns the root handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	if s.deps.MetricsHandler != nil && s.opts.MetricsPath != "" {
		mux.Handle("GET "+s.opts.MetricsPath, labeled("metrics", s.deps.MetricsHandler))
	}
	mux.HandleFunc("/", s.handleTraversal)
	return s.mchain(mux)
}

// Start binds the listen address and serves in the background.
func (s *Server) Start(ctx context.Context) error {
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", s.cfg.Addr)
	if err != nil {
		return errors.WrapError(err, errors.CategoryRuntime, "http listen failed").
			WithContext("addr", s.cfg.Addr).
			Build()
	}
	return s.Serve(ln)
}

// Serve serves on ln in the background.
func (s *Server) Serve(ln net.Listener) error {
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadTimeout:       s.cfg.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      s.cfg.WriteTimeout,
	}
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server stopped", logfields.Error(err))
		}
	}()
	s.logger.Info("HTTP server started", slog.String("addr", ln.Addr().String()))
	return nil
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return errors.WrapError(err, errors.CategoryRuntime, "http server shutdown").Build()
	}
	return nil
}

func labeled(name string, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		smw.SetView(r, name)
		h.ServeHTTP(w, r)
	})
}
