// Package app wires configured backends into the services used by the CLI
// commands and the HTTP server.
package app

import (
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/sociallike/internal/canonical"
	"git.home.luguber.info/inful/sociallike/internal/config"
	"git.home.luguber.info/inful/sociallike/internal/content"
	"git.home.luguber.info/inful/sociallike/internal/content/mdstore"
	"git.home.luguber.info/inful/sociallike/internal/content/sqlitestore"
	"git.home.luguber.info/inful/sociallike/internal/foundation/errors"
	"git.home.luguber.info/inful/sociallike/internal/history"
	"git.home.luguber.info/inful/sociallike/internal/logfields"
	"git.home.luguber.info/inful/sociallike/internal/metrics"
	"git.home.luguber.info/inful/sociallike/internal/notify"
	"git.home.luguber.info/inful/sociallike/internal/registry"
	"git.home.luguber.info/inful/sociallike/internal/scheduler"
	"git.home.luguber.info/inful/sociallike/internal/server/httpserver"
)

// App holds the services built from a Config.
type App struct {
	Config     *config.Config
	Logger     *slog.Logger
	Content    *content.Repository
	Registry   *registry.Store
	Updater    *canonical.Updater
	History    *history.Recorder
	Projection *history.Projection
	Metrics    metrics.Recorder
	Prometheus *prom.Registry

	fileRegistry *registry.FileBackend
	closers      []func() error
}

// NewLogger builds the process logger. verbose forces debug level.
func NewLogger(cfg config.LoggingConfig, w io.Writer, verbose bool) *slog.Logger {
	level := cfg.Level.SlogLevel()
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == config.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Open builds every configured service. Close releases them.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{Config: cfg, Logger: logger, Metrics: metrics.NoopRecorder{}}
	if err := a.open(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) open(ctx context.Context) error {
	cfg := a.Config

	if cfg.Metrics.Enabled {
		a.Prometheus = prom.NewRegistry()
		a.Metrics = metrics.NewPrometheusRecorder(a.Prometheus)
	}

	store, err := openContentStore(cfg.Storage)
	if err != nil {
		return err
	}
	a.closers = append(a.closers, store.Close)
	a.Content = content.NewRepository(store, cfg.Site.ID, content.WithLogger(a.Logger))

	if err := a.openRegistry(ctx); err != nil {
		return err
	}
	a.Registry.OnChange(func(iface, name string) {
		a.Metrics.IncRegistryWrite(name)
		a.Logger.Debug("Registry record changed", logfields.Interface(iface), logfields.Record(name))
	})

	var observers []canonical.Observer
	if cfg.History.Enabled {
		if err := ensureParentDir(cfg.History.Path); err != nil {
			return err
		}
		hs, err := history.NewSQLiteStore(cfg.History.Path)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, hs.Close)
		a.Projection = history.NewProjection(hs, 0)
		if err := a.Projection.Rebuild(ctx); err != nil {
			return err
		}
		a.History = history.NewRecorder(hs, a.Projection)
		observers = append(observers, a.History)
	}
	if cfg.Notify.Log {
		observers = append(observers, notify.NewLogNotifier(a.Logger))
	}
	if cfg.Notify.NATS.URL != "" {
		n, err := notify.ConnectNATS(cfg.Notify.NATS,
			notify.WithNotifyRecorder(a.Metrics),
			notify.WithNotifyLogger(a.Logger))
		if err != nil {
			return err
		}
		a.closers = append(a.closers, n.Close)
		observers = append(observers, n)
	}

	a.Updater = canonical.NewUpdater(a.Content,
		canonical.WithPortalTypes(a.enabledPortalTypes),
		canonical.WithObservers(observers...),
		canonical.WithRecorder(a.Metrics),
		canonical.WithLogger(a.Logger))
	return nil
}

// enabledPortalTypes limits batches to the types that get social metadata.
func (a *App) enabledPortalTypes(ctx context.Context) ([]string, error) {
	s, err := registry.LoadSettings(ctx, a.Registry)
	if err != nil {
		return nil, err
	}
	return s.EnabledPortalTypes, nil
}

func openContentStore(cfg config.StorageConfig) (content.Store, error) {
	switch cfg.Backend {
	case config.StorageSQLite:
		if err := ensureParentDir(cfg.Path); err != nil {
			return nil, err
		}
		return sqlitestore.Open(cfg.Path)
	case config.StorageMarkdown:
		return mdstore.Open(cfg.Path)
	default:
		return content.NewMemoryStore(), nil
	}
}

func (a *App) openRegistry(ctx context.Context) error {
	rc := a.Config.Registry
	switch rc.Backend {
	case config.RegistryFile:
		store, backend, err := registry.NewFileRegistry(rc.Path, registry.WithFileLogger(a.Logger))
		if err != nil {
			return err
		}
		a.Registry, a.fileRegistry = store, backend
		a.closers = append(a.closers, backend.Close)
	case config.RegistryRedis:
		store, backend, err := registry.NewRedisRegistry(ctx, registry.RedisOptions{
			Addr:      rc.Redis.Addr,
			Password:  rc.Redis.Password,
			DB:        rc.Redis.DB,
			KeyPrefix: rc.Redis.KeyPrefix,
		})
		if err != nil {
			return err
		}
		a.Registry = store
		a.closers = append(a.closers, backend.Close)
	default:
		a.Registry = registry.NewMemoryRegistry()
	}
	return nil
}

// WatchRegistry reloads a file registry when its file changes. It returns
// immediately for other backends or when watching is disabled.
func (a *App) WatchRegistry(ctx context.Context) error {
	if a.fileRegistry == nil || !a.Config.Registry.Watch {
		return nil
	}
	return a.fileRegistry.Watch(ctx)
}

// Scheduler builds a scheduler with the configured jobs.
func (a *App) Scheduler() (*scheduler.Scheduler, error) {
	opts := []scheduler.Option{scheduler.WithLogger(a.Logger)}
	if a.History != nil {
		opts = append(opts, scheduler.WithBatchRecorder(a.History))
	}
	s, err := scheduler.New(a.Updater, a.Registry, opts...)
	if err != nil {
		return nil, err
	}
	if err := s.Load(a.Config.Schedule); err != nil {
		_ = s.Stop()
		return nil, err
	}
	return s, nil
}

// Server builds the HTTP server.
func (a *App) Server() *httpserver.Server {
	deps := httpserver.Deps{
		Content:    a.Content,
		Registry:   a.Registry,
		Updater:    a.Updater,
		History:    a.History,
		Projection: a.Projection,
		Metrics:    a.Metrics,
	}
	opts := httpserver.Options{SiteTitle: a.Config.Site.Title, PublicURL: a.Config.Server.PublicURL}
	if a.Prometheus != nil {
		deps.MetricsHandler = metrics.HTTPHandler(a.Prometheus)
		opts.MetricsPath = a.Config.Metrics.Path
	}
	return httpserver.New(a.Config.Server, deps, opts, a.Logger)
}

// Close releases backends in reverse order of opening.
func (a *App) Close() error {
	var errs []error
	for _, c := range slices.Backward(a.closers) {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return stderrors.Join(errs...)
}

func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return errors.WrapError(err, errors.CategoryStorage, "create data directory").
			WithContext("path", dir).
			Build()
	}
	return nil
}
