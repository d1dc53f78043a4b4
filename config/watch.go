package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/miosa/osa-transcript/msg"
)

// DefaultDebounce coalesces the burst of events editors produce on save.
const DefaultDebounce = 150 * time.Millisecond

// Watch notifies s with msg.ConfigChanged whenever the file at path is
// written, created or renamed into place. The parent directory is watched so
// atomic saves are seen. It returns once the watcher is running; the
// goroutine exits when ctx is cancelled.
func Watch(ctx context.Context, path string, debounce time.Duration, s msg.Sender) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	dir := filepath.Dir(path)
	if err := w.Add(dir); err != nil {
		w.Close()
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	go watchLoop(ctx, w, filepath.Clean(path), debounce, s)
	return nil
}

func watchLoop(ctx context.Context, w *fsnotify.Watcher, path string, debounce time.Duration, s msg.Sender) {
	defer w.Close()

	timer := time.NewTimer(debounce)
	timer.Stop()
	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return

		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != path {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				timer.Reset(debounce)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			s.Send(msg.ConfigWatchError{Err: err})

		case <-timer.C:
			s.Send(msg.ConfigChanged{Path: path})
		}
	}
}
