package commands

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/sitegen/internal/config"
	"git.home.luguber.info/inful/sitegen/internal/errors"
	"git.home.luguber.info/inful/sitegen/internal/logfields"
	"git.home.luguber.info/inful/sitegen/internal/metrics"
	"github.com/fsnotify/fsnotify"
)

// debounceInterval coalesces editor write bursts into one recompile.
const debounceInterval = 300 * time.Millisecond

// watch recompiles whenever the content or layout directories change.
// Failed recompiles are reported but keep the watch alive; only an
// interrupt ends the loop.
func (c *CompileCmd) watch(ctx context.Context, cfg *config.Config, rec metrics.Recorder, adapter *errors.CLIErrorAdapter) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	for _, dir := range []string{cfg.ContentDir, cfg.LayoutsDir} {
		if err := addRecursive(watcher, dir); err != nil {
			slog.Warn("Cannot watch directory", "dir", dir, logfields.Error(err))
		}
	}
	slog.Info("Watching for changes", "content", cfg.ContentDir, "layouts", cfg.LayoutsDir)

	var debounce <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					_ = addRecursive(watcher, ev.Name)
				}
			}
			if ev.Op.Has(fsnotify.Write) || ev.Op.Has(fsnotify.Create) ||
				ev.Op.Has(fsnotify.Remove) || ev.Op.Has(fsnotify.Rename) {
				debounce = time.After(debounceInterval)
			}

		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("Watcher error", logfields.Error(werr))

		case <-debounce:
			debounce = nil
			if err := c.runOnce(ctx, cfg, rec, adapter); err != nil {
				if errors.IsInterrupt(err) {
					return err
				}
				slog.Warn("Recompilation failed, still watching", logfields.Error(err))
			}
		}
	}
}

func addRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}
