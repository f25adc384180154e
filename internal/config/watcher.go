package config

import (
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/Pranati-2/DeepReal/internal/bus"
)

// Watcher reloads the config file when it changes on disk, hands the new
// config to a callback, and announces the reload on the event bus. Invalid
// edits are logged and skipped; the previous config stays current.
type Watcher struct {
	path     string
	onChange func(old, new *Config)
	events   *bus.EventBus
	logger   zerolog.Logger

	watcher *fsnotify.Watcher
	mu      sync.RWMutex
	current *Config
	done    chan struct{}
	once    sync.Once
}

// NewWatcher loads the config at path and starts watching its directory.
// The bus and callback may each be nil.
func NewWatcher(path string, logger zerolog.Logger, eventBus *bus.EventBus, onChange func(old, new *Config)) (*Watcher, error) {
	cfg, err := LoadFile(path)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Watch the directory: editors often replace the file, which drops a
	// watch registered on the file itself.
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{
		path:     path,
		onChange: onChange,
		events:   eventBus,
		logger:   logger.With().Str("component", "config").Logger(),
		watcher:  fsw,
		current:  cfg,
		done:     make(chan struct{}),
	}
	go w.watchLoop()
	return w, nil
}

// Current returns the most recently loaded valid config.
func (w *Watcher) Current() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// Stop ends watching and releases the fsnotify handle.
func (w *Watcher) Stop() {
	w.once.Do(func() {
		close(w.done)
		w.watcher.Close()
	})
}

func (w *Watcher) watchLoop() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Name != w.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				w.reload()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn().Err(err).Msg("config watcher error")
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := LoadFile(w.path)
	if err != nil {
		w.logger.Warn().Err(err).Str("path", w.path).Msg("config reload failed, keeping previous")
		return
	}

	w.mu.Lock()
	old := w.current
	w.current = cfg
	w.mu.Unlock()

	w.logger.Info().Str("path", w.path).Msg("configuration reloaded")
	if w.events != nil {
		w.events.Publish(bus.Event{
			Type: bus.EventTypeConfigReloaded,
			Data: map[string]any{"path": w.path},
		})
	}
	if w.onChange != nil {
		w.onChange(old, cfg)
	}
}
