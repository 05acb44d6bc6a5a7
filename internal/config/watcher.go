package config

import (
	"context"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

const (
	debounceDelay = 200 * time.Millisecond
	readdDelay    = 50 * time.Millisecond
)

// Watcher watches the config file for changes and triggers callbacks.
// Editors and config management tools write atomically (write temp +
// rename), so remove/rename events re-add the path.
type Watcher struct {
	fsWatcher  *fsnotify.Watcher
	callbacks  []func()
	mu         sync.RWMutex
	debounce   map[string]*time.Timer
	debounceMu sync.Mutex
}

// NewWatcher creates a new file watcher.
func NewWatcher() (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		fsWatcher: fsw,
		debounce:  make(map[string]*time.Timer),
	}, nil
}

// OnChange registers a callback invoked after a debounced file change.
func (w *Watcher) OnChange(fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.callbacks = append(w.callbacks, fn)
}

// Watch starts watching the given file until the context is cancelled.
func (w *Watcher) Watch(ctx context.Context, path string) {
	logger := zerolog.Ctx(ctx)

	if err := w.fsWatcher.Add(path); err != nil {
		logger.Warn().Err(err).Str("file", path).Msg("failed to watch config file")
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				_ = w.fsWatcher.Close()

				return

			case event, ok := <-w.fsWatcher.Events:
				if !ok {
					return
				}

				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
					event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
					logger.Debug().
						Str("file", event.Name).
						Str("op", event.Op.String()).
						Msg("config change detected")

					w.debounceCallback(event.Name)

					if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
						time.Sleep(readdDelay) // wait for file recreation
						_ = w.fsWatcher.Add(event.Name)
					}
				}

			case err, ok := <-w.fsWatcher.Errors:
				if !ok {
					return
				}

				logger.Warn().Err(err).Msg("fsnotify error")
			}
		}
	}()
}

// debounceCallback fires callbacks only after debounceDelay of inactivity.
func (w *Watcher) debounceCallback(file string) {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if timer, ok := w.debounce[file]; ok {
		timer.Stop()
	}

	w.debounce[file] = time.AfterFunc(debounceDelay, func() {
		w.mu.RLock()
		callbacks := make([]func(), len(w.callbacks))
		copy(callbacks, w.callbacks)
		w.mu.RUnlock()

		for _, fn := range callbacks {
			fn()
		}
	})
}
