package catalog

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ReloadEvent reports the outcome of a reload triggered by a file change
type ReloadEvent struct {
	Snapshot *Snapshot // Nil when the reload failed
	Err      error
}

// Watcher reloads a catalog file into a Store whenever the file changes on disk.
// The parent directory is watched, since editors commonly replace files instead of writing them in place
type Watcher struct {
	File    string
	Reloads <-chan ReloadEvent // Read-only external channel

	store    *Store
	debounce time.Duration
	reloads  chan ReloadEvent // Internal write channel
	done     chan struct{}
	watcher  *fsnotify.Watcher
	started  bool
	stop     sync.Once
}

func NewWatcher(file string, store *Store, debounce time.Duration) (*Watcher, error) {
	absolute, err := filepath.Abs(file)
	if err != nil {
		return nil, err
	}

	if debounce <= 0 {
		debounce = 100 * time.Millisecond
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ch := make(chan ReloadEvent, 16)
	return &Watcher{
		File:     absolute,
		Reloads:  ch,
		store:    store,
		debounce: debounce,
		reloads:  ch,
		done:     make(chan struct{}),
		watcher:  fw,
	}, nil
}

func (w *Watcher) Start() error {
	if err := w.watcher.Add(filepath.Dir(w.File)); err != nil {
		return err
	}

	w.started = true
	go w.loop()
	return nil
}

// Stop closes the watcher and waits for the loop, if started, to exit before closing Reloads. Later calls do nothing
func (w *Watcher) Stop() {
	w.stop.Do(func() {
		w.watcher.Close()
		if w.started {
			<-w.done
		}
		close(w.reloads)
	})
}

func (w *Watcher) loop() {
	defer close(w.done)

	var pending time.Time
	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				if !pending.IsZero() {
					w.reload()
				}
				return
			}

			if filepath.Clean(event.Name) != w.File {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				pending = time.Now()
			}

		case <-ticker.C:
			if !pending.IsZero() && time.Since(pending) >= w.debounce {
				pending = time.Time{}
				w.reload()
			}

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// Watch errors are non-fatal; the current snapshot stays in place
		}
	}
}

func (w *Watcher) reload() {
	snapshot, err := w.store.Reload(w.File)
	select {
	case w.reloads <- ReloadEvent{Snapshot: snapshot, Err: err}:
	default:
		// Nobody is listening; the store already reflects the outcome
	}
}
