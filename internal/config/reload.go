package config

import (
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Reloader keeps the active configuration and replaces it when the file
// changes or (on Unix) SIGHUP arrives. The file's directory is watched so
// that editors saving by rename and ConfigMap-style symlink swaps are seen.
type Reloader struct {
	mu        sync.RWMutex
	reloadMu  sync.Mutex
	current   *Config
	path      string
	logger    *slog.Logger
	callbacks []func(*Config)
	watcher   *fsnotify.Watcher
	stopCh    chan struct{}
	stopOnce  sync.Once
}

// NewReloader creates a Reloader for the given config file path.
func NewReloader(path string, initial *Config, logger *slog.Logger) *Reloader {
	if path != "" {
		path = filepath.Clean(path)
	}
	return &Reloader{
		current: initial,
		path:    path,
		logger:  logger,
		stopCh:  make(chan struct{}),
	}
}

// Current returns the active configuration (thread-safe).
func (r *Reloader) Current() *Config {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// OnReload registers a callback that is invoked with the new config
// after a successful reload.
func (r *Reloader) OnReload(fn func(*Config)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.callbacks = append(r.callbacks, fn)
}

// Start begins watching the config file and listening for SIGHUP (on Unix).
// Must be called at most once, and only with a non-empty path.
func (r *Reloader) Start() {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		r.logger.Error("failed to create file watcher", "error", err)
		return
	}

	dir := filepath.Dir(r.path)
	if err := watcher.Add(dir); err != nil {
		r.logger.Error("failed to watch config directory", "dir", dir, "error", err)
		watcher.Close()
		return
	}
	r.watcher = watcher

	r.logger.Info("config file watcher started", "path", r.path)

	go r.watchLoop()

	r.registerSignalHandler()
}

// Stop terminates the file watcher and signal handler. It is safe to call
// more than once.
func (r *Reloader) Stop() {
	r.stopOnce.Do(func() {
		close(r.stopCh)
		if r.watcher != nil {
			r.watcher.Close()
		}
	})
}

// Reload loads the config from disk, validates it, and if valid swaps it
// in and notifies all registered callbacks. Returns true if the reload
// succeeded. Concurrent calls from the watcher, SIGHUP and the admin API
// run one at a time so callbacks see configs in load order.
func (r *Reloader) Reload() bool {
	r.reloadMu.Lock()
	defer r.reloadMu.Unlock()

	r.logger.Info("reloading configuration", "path", r.path)

	newCfg, err := Load(r.path)
	if err != nil {
		r.logger.Error("config reload failed: invalid config, keeping current",
			"path", r.path, "error", err)
		return false
	}

	r.mu.Lock()
	old := r.current
	r.current = newCfg
	callbacks := make([]func(*Config), len(r.callbacks))
	copy(callbacks, r.callbacks)
	r.mu.Unlock()

	r.logChanges(old, newCfg)

	for _, cb := range callbacks {
		cb(newCfg)
	}

	r.logger.Info("configuration reloaded successfully")
	return true
}

// affects reports whether a directory event may have changed the file.
// Symlink swaps only touch sibling entries, hence any create counts.
func (r *Reloader) affects(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) == r.path {
		return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
	}
	return event.Op&fsnotify.Create != 0
}

// watchLoop coalesces bursts of events (editors write several per save)
// into a single reload.
func (r *Reloader) watchLoop() {
	var debounce *time.Timer

	for {
		select {
		case event, ok := <-r.watcher.Events:
			if !ok {
				return
			}
			if !r.affects(event) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(300*time.Millisecond, func() {
				r.Reload()
			})
		case err, ok := <-r.watcher.Errors:
			if !ok {
				return
			}
			r.logger.Error("config watcher error", "error", err)
		case <-r.stopCh:
			if debounce != nil {
				debounce.Stop()
			}
			return
		}
	}
}

// logChanges logs a summary of what changed between the old and new config.
// Listener settings are only read at startup, so changes to them are
// reported as requiring a restart.
func (r *Reloader) logChanges(old, new *Config) {
	if old.Logging.Level != new.Logging.Level {
		r.logger.Info("log level changed",
			"old", old.Logging.Level,
			"new", new.Logging.Level,
		)
	}

	if old.ServiceAddress() != new.ServiceAddress() {
		r.logger.Info("soap service address changed",
			"old", old.ServiceAddress(),
			"new", new.ServiceAddress(),
		)
	}

	if old.Server.Addr() != new.Server.Addr() {
		r.logger.Warn("listen address changed; restart required to take effect",
			"old", old.Server.Addr(),
			"new", new.Server.Addr(),
		)
	}

	if old.Logging.Output != new.Logging.Output || old.Logging.Format != new.Logging.Format {
		r.logger.Warn("log output changed; restart required to take effect",
			"old_output", old.Logging.Output,
			"new_output", new.Logging.Output,
			"old_format", old.Logging.Format,
			"new_format", new.Logging.Format,
		)
	}

	for _, w := range new.Warnings {
		r.logger.Warn("config warning", "warning", w)
	}
}
