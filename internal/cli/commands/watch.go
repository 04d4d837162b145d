package commands

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce is how long watch waits for changes to settle.
const watchDebounce = 100 * time.Millisecond

// watch calls run once, then again whenever a Kotlin source or Starlark
// script under paths changes, until ctx is done.
func watch(ctx context.Context, logger *slog.Logger, paths []string, run func(context.Context)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if len(paths) == 0 {
		paths = []string{"."}
	}
	for _, p := range paths {
		if err := watchPath(watcher, p); err != nil {
			return fmt.Errorf("failed to watch %s: %w", p, err)
		}
	}

	run(ctx)
	logger.Info("watching for changes", slog.Int("dirs", len(watcher.WatchList())))

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = watchPath(watcher, event.Name)
					continue
				}
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			if !isWatchedFile(event.Name) {
				continue
			}
			logger.Debug("change detected", slog.String("file", event.Name))
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				timer.Reset(watchDebounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			run(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", slog.String("error", err.Error()))
		}
	}
}

// watchPath adds p, or for a file its directory, to the watcher. Hidden
// and build directories are skipped.
func watchPath(watcher *fsnotify.Watcher, p string) error {
	info, err := os.Stat(p)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return watcher.Add(filepath.Dir(p))
	}
	return filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		name := d.Name()
		if path != p && (strings.HasPrefix(name, ".") || name == "build") {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}

func isWatchedFile(name string) bool {
	switch filepath.Ext(name) {
	case ".kt", ".kts", ".star":
		return true
	}
	return false
}
