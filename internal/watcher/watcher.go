// Package watcher reports edits made to the book file by other programs.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long Watch waits for a burst of events to settle.
const DefaultDebounce = 200 * time.Millisecond

// Watch watches the directory holding path and calls onChange once a burst
// of write, create or rename events on that file has settled. It returns
// when ctx is cancelled.
//
// The directory is watched rather than the file so that editors which
// replace the file by rename keep being seen.
func Watch(ctx context.Context, path string, logger *slog.Logger, onChange func()) error {
	return watch(ctx, path, DefaultDebounce, logger, onChange)
}

func watch(ctx context.Context, path string, debounce time.Duration, logger *slog.Logger, onChange func()) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("watcher: resolve %s: %w", path, err)
	}
	dir, name := filepath.Dir(abs), filepath.Base(abs)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watcher: new: %w", err)
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watcher: add %s: %w", dir, err)
	}

	logger.Info("watcher: started", slog.String("path", abs))

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-fire:
			fire = nil
			onChange()

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != name {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			logger.Debug("watcher: event", slog.String("op", ev.Op.String()))
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
