package scenestore

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"motionedit/logger"
)

const debounceWindow = 200 * time.Millisecond

// Watcher reports scene names whose files changed on disk, debounced so an
// editor's write-then-rename shows up as a single change.
type Watcher struct {
	fs      *fsnotify.Watcher
	changes chan string
	done    chan struct{}

	mu      sync.Mutex
	pending map[string]*time.Timer
	closed  bool

	closeOnce sync.Once
}

// Watch starts watching the store's directory.
func Watch(store *Store) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fs.Add(store.Dir()); err != nil {
		fs.Close()
		return nil, err
	}

	w := &Watcher{
		fs:      fs,
		changes: make(chan string, 16),
		done:    make(chan struct{}),
		pending: make(map[string]*time.Timer),
	}
	go w.loop()
	return w, nil
}

// Changes delivers debounced scene names. The channel closes when the
// watcher closes.
func (w *Watcher) Changes() <-chan string {
	return w.changes
}

// Close stops watching. Unconditional and idempotent.
func (w *Watcher) Close() {
	w.closeOnce.Do(func() {
		close(w.done)
		w.fs.Close()

		w.mu.Lock()
		w.closed = true
		for name, timer := range w.pending {
			timer.Stop()
			delete(w.pending, name)
		}
		close(w.changes)
		w.mu.Unlock()
	})
}

func (w *Watcher) loop() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			name := sceneName(event.Name)
			if name == "" {
				continue
			}
			w.schedule(name)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			logger.Warn("Scene watcher error", "error", err)
		}
	}
}

// schedule arms (or re-arms) the debounce timer for one scene.
func (w *Watcher) schedule(name string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}

	if timer, ok := w.pending[name]; ok {
		timer.Reset(debounceWindow)
		return
	}
	w.pending[name] = time.AfterFunc(debounceWindow, func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		delete(w.pending, name)
		if w.closed {
			return
		}
		select {
		case w.changes <- name:
		default:
		}
	})
}

func sceneName(path string) string {
	base := filepath.Base(path)
	if !strings.HasSuffix(base, ".json") || strings.HasPrefix(base, ".") {
		return ""
	}
	return strings.TrimSuffix(base, ".json")
}
