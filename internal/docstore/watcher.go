package docstore

import (
	"context"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounceWindow is how long the reload watcher waits after the last
// filesystem event before reloading. Index rebuilds touch many files in a
// burst; reloading once per burst is enough.
const DefaultDebounceWindow = 500 * time.Millisecond

// ReloadWatcher reloads a document store when its corpus directory changes
// on disk. It watches the directory non-recursively: a rebuild always
// rewrites the manifest at the top level, which is the signal that matters.
type ReloadWatcher struct {
	store    *BM25DocumentStore
	fsw      *fsnotify.Watcher
	debounce time.Duration
	onReload func()
}

// NewReloadWatcher creates a watcher bound to the store's corpus directory.
// onReload, if non-nil, runs after every successful reload; retrievers use
// it to drop cached results. Call Run to start watching.
func NewReloadWatcher(s *BM25DocumentStore, onReload func()) (*ReloadWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(s.Options().Path); err != nil {
		fsw.Close()
		return nil, err
	}
	return &ReloadWatcher{
		store:    s,
		fsw:      fsw,
		debounce: DefaultDebounceWindow,
		onReload: onReload,
	}, nil
}

// Run watches until the context is cancelled. Watch errors are logged and
// watching continues; a reload failure keeps the previous index serving.
func (w *ReloadWatcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return ctx.Err()

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				fire = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			slog.Warn("corpus_watch_error", "error", err)

		case <-fire:
			timer = nil
			fire = nil
			if err := w.store.Reload(); err != nil {
				slog.Warn("corpus_reload_failed",
					"path", w.store.Options().Path, "error", err)
				continue
			}
			if w.onReload != nil {
				w.onReload()
			}
		}
	}
}
