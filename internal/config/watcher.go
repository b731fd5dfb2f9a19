package config

import (
	"fmt"
	"path/filepath"
	"reflect"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// ConfigWatcher reloads the configuration when a file in the config
// directory changes and hands the new value to registered callbacks. Only
// development watches files; elsewhere it just holds the initial config.
type ConfigWatcher struct {
	loader    *Loader
	config    *Config
	callbacks []func(*Config)
	mu        sync.RWMutex
	logger    *zap.Logger
	watcher   *fsnotify.Watcher
	debounce  time.Duration
	stopCh    chan struct{}
	stopOnce  sync.Once
}

// NewConfigWatcher starts watching loader's directory when initial is a
// development config.
func NewConfigWatcher(loader *Loader, initial *Config, logger *zap.Logger) (*ConfigWatcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &ConfigWatcher{
		loader:   loader,
		config:   initial,
		logger:   logger,
		debounce: 500 * time.Millisecond,
		stopCh:   make(chan struct{}),
	}

	if !initial.IsDevelopment() {
		logger.Info("Configuration hot reloading disabled", zap.String("environment", string(initial.Environment)))
		return w, nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fsw.Add(loader.basePath); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", loader.basePath, err)
	}
	w.watcher = fsw
	go w.watchLoop()

	logger.Info("Configuration hot reloading enabled", zap.String("dir", loader.basePath))
	return w, nil
}

func (w *ConfigWatcher) watchLoop() {
	defer w.watcher.Close()

	var debounceTimer *time.Timer
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 || !isConfigFile(event.Name) {
				continue
			}
			w.logger.Debug("Configuration file changed",
				zap.String("file", event.Name),
				zap.String("operation", event.Op.String()),
			)
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(w.debounce, w.Reload)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("File watcher error", zap.Error(err))

		case <-w.stopCh:
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return
		}
	}
}

// Reload loads the configuration again and notifies callbacks when it
// changed. An invalid result keeps the current configuration.
func (w *ConfigWatcher) Reload() {
	next, err := w.loader.Load()
	if err != nil {
		w.logger.Error("Keeping previous configuration", zap.Error(err))
		return
	}

	w.mu.Lock()
	prev := w.config
	if configsEqual(prev, next) {
		w.mu.Unlock()
		return
	}
	w.config = next
	callbacks := append([]func(*Config){}, w.callbacks...)
	w.mu.Unlock()

	w.logConfigChanges(prev, next)
	for i, cb := range callbacks {
		w.notify(i, cb, next)
	}
}

func (w *ConfigWatcher) notify(idx int, cb func(*Config), cfg *Config) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("Configuration callback panicked", zap.Int("callback_index", idx), zap.Any("panic", r))
		}
	}()
	cb(cfg)
}

// OnChange registers a callback for later reloads.
func (w *ConfigWatcher) OnChange(callback func(*Config)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, callback)
}

// GetConfig returns the current configuration.
func (w *ConfigWatcher) GetConfig() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.config
}

// Stop ends file watching. It is safe to call more than once.
func (w *ConfigWatcher) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
}

func configsEqual(a, b *Config) bool {
	ac, bc := *a, *b
	ac.LoadedFrom, bc.LoadedFrom = nil, nil
	return reflect.DeepEqual(ac, bc)
}

func (w *ConfigWatcher) logConfigChanges(old, next *Config) {
	var changes []string
	if old.Logging.Level != next.Logging.Level {
		changes = append(changes, fmt.Sprintf("log level: %s -> %s", old.Logging.Level, next.Logging.Level))
	}
	if old.Stylist.Delay != next.Stylist.Delay {
		changes = append(changes, fmt.Sprintf("stylist delay: %s -> %s", old.Stylist.Delay, next.Stylist.Delay))
	}
	if old.Stylist.ChatDelay != next.Stylist.ChatDelay {
		changes = append(changes, fmt.Sprintf("chat delay: %s -> %s", old.Stylist.ChatDelay, next.Stylist.ChatDelay))
	}
	if old.TryOn.Delay != next.TryOn.Delay {
		changes = append(changes, fmt.Sprintf("try-on delay: %s -> %s", old.TryOn.Delay, next.TryOn.Delay))
	}
	if old.Gateway.Driver != next.Gateway.Driver {
		changes = append(changes, "gateway driver changed; restart to apply")
	}
	w.logger.Info("Configuration reloaded", zap.Strings("changes", changes))
}

func isConfigFile(path string) bool {
	switch filepath.Ext(path) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}
