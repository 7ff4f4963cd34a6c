package registry

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/sociallike/internal/foundation/errors"
	"git.home.luguber.info/inful/sociallike/internal/logfields"
)

// FileBackend keeps records in a YAML document of the form
//
//	social_like:
//	  canonical_domain: https://example.org
//
// Values are cached in memory; Save rewrites the file and Watch reloads the
// cache when the file changes on disk.
type FileBackend struct {
	mem      *MemoryBackend
	path     string
	writeMu  sync.Mutex
	debounce time.Duration
	logger   *slog.Logger

	watcher  *fsnotify.Watcher
	reloaded func()
}

// FileOption configures a FileBackend.
type FileOption func(*FileBackend)

// WithDebounce sets how long Watch waits for writes to settle before reloading.
func WithDebounce(d time.Duration) FileOption {
	return func(f *FileBackend) { f.debounce = d }
}

// WithFileLogger sets the logger.
func WithFileLogger(l *slog.Logger) FileOption {
	return func(f *FileBackend) { f.logger = l }
}

// WithReloadHook runs fn after every reload triggered by the watcher.
func WithReloadHook(fn func()) FileOption {
	return func(f *FileBackend) { f.reloaded = fn }
}

// NewFileBackend opens the registry file at path. A missing file is treated
// as empty and created on the first Save.
func NewFileBackend(path string, opts ...FileOption) (*FileBackend, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryRegistry, "resolve registry path").Build()
	}
	f := &FileBackend{
		mem:      NewMemoryBackend(),
		path:     abs,
		debounce: 500 * time.Millisecond,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if err := f.Reload(); err != nil {
		return nil, err
	}
	return f, nil
}

// NewFileRegistry returns a Registry persisted to a YAML file.
func NewFileRegistry(path string, opts ...FileOption) (*Store, *FileBackend, error) {
	backend, err := NewFileBackend(path, opts...)
	if err != nil {
		return nil, nil, err
	}
	return NewStore(backend), backend, nil
}

// Path returns the absolute file path.
func (f *FileBackend) Path() string { return f.path }

func (f *FileBackend) Load(ctx context.Context, iface, name string) (any, bool, error) {
	return f.mem.Load(ctx, iface, name)
}

// Save writes the file first and updates the cache only once the new file
// is in place, so a failed write leaves both unchanged.
func (f *FileBackend) Save(_ context.Context, iface, name string, value any) error {
	f.writeMu.Lock()
	defer f.writeMu.Unlock()

	next := f.mem.snapshot()
	if next[iface] == nil {
		next[iface] = map[string]any{}
	}
	next[iface][name] = cloneValue(value)

	data, err := yaml.Marshal(next)
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "encode registry").Build()
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		_ = os.Remove(tmp)
		return errors.WrapError(err, errors.CategoryRegistry, "write registry file").
			WithContext("path", f.path).
			Build()
	}
	if err := os.Rename(tmp, f.path); err != nil {
		_ = os.Remove(tmp)
		return errors.WrapError(err, errors.CategoryRegistry, "replace registry file").
			WithContext("path", f.path).
			Build()
	}
	f.mem.replace(next)
	return nil
}

// Reload replaces the cache with the file contents.
func (f *FileBackend) Reload() error {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		f.mem.replace(map[string]map[string]any{})
		return nil
	}
	if err != nil {
		return errors.WrapError(err, errors.CategoryRegistry, "read registry file").
			WithContext("path", f.path).
			Build()
	}
	values := map[string]map[string]any{}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return errors.WrapError(err, errors.CategoryRegistry, "decode registry file").
			WithContext("path", f.path).
			Build()
	}
	if values == nil {
		values = map[string]map[string]any{}
	}
	f.mem.replace(values)
	return nil
}

// Watch reloads the cache whenever the file is written, created or renamed
// into place. It returns once the watch is established; the watch ends when
// ctx is done or Close is called.
func (f *FileBackend) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.WrapError(err, errors.CategoryRegistry, "create registry watcher").Build()
	}
	// Watch the directory: editors and Save replace the file by rename.
	if err := w.Add(filepath.Dir(f.path)); err != nil {
		_ = w.Close()
		return errors.WrapError(err, errors.CategoryRegistry, "watch registry directory").
			WithContext("path", f.path).
			Build()
	}
	f.watcher = w
	f.logger.Info("Watching registry file", logfields.Path(f.path))
	go f.watchLoop(ctx, w)
	return nil
}

// Close stops the watcher, if any.
func (f *FileBackend) Close() error {
	if f.watcher == nil {
		return nil
	}
	return f.watcher.Close()
}

func (f *FileBackend) watchLoop(ctx context.Context, w *fsnotify.Watcher) {
	name := filepath.Base(f.path)
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			_ = w.Close()
			return
		case event, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(f.debounce, f.reload)
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			f.logger.Error("Registry watcher error", logfields.Error(err))
		}
	}
}

func (f *FileBackend) reload() {
	f.writeMu.Lock()
	err := f.Reload()
	f.writeMu.Unlock()
	if err != nil {
		f.logger.Error("Failed to reload registry file", logfields.Path(f.path), logfields.Error(err))
		return
	}
	f.logger.Info("Registry file reloaded", logfields.Path(f.path))
	if f.reloaded != nil {
		f.reloaded()
	}
}
