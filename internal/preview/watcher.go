package preview

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher monitors the source document's directory and triggers rebuilds
// with debouncing, so editor save bursts collapse into one rebuild.
type Watcher struct {
	watcher      *fsnotify.Watcher
	rebuild      func()
	debounceTime time.Duration
}

// NewWatcher watches the directory containing sourcePath (more reliable
// than watching the file directly; editors often replace files on save).
// Includes living next to the source are covered by the same watch.
func NewWatcher(sourcePath string, rebuild func()) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(sourcePath)); err != nil {
		_ = w.Close()
		return nil, err
	}
	return &Watcher{
		watcher:      w,
		rebuild:      rebuild,
		debounceTime: 300 * time.Millisecond,
	}, nil
}

// Run processes filesystem events until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) {
	var timer *time.Timer
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			slog.Debug("Source change detected", "file", event.Name, "op", event.Op.String())
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounceTime, w.rebuild)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("File watcher error", "error", err)
		}
	}
}

// Close releases the underlying fsnotify watcher.
func (w *Watcher) Close() error { return w.watcher.Close() }
