package web

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	sglog "github.com/sourcegraph/log"

	"github.com/pjkack/bore"
)

// WatchSolution reloads the workspace whenever the solution file
// changes on disk. Each change triggers a whole load that replaces the
// index; a failed reload keeps the previous one. Blocks until ctx is
// done.
func WatchSolution(ctx context.Context, ws *bore.Workspace, slnPath string, policy bore.ExcludePolicy, logger sglog.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch the directory: editors replace files by rename, which
	// drops a watch on the file itself.
	if err := watcher.Add(filepath.Dir(slnPath)); err != nil {
		return err
	}

	var last time.Time
	if fi, err := os.Stat(slnPath); err == nil {
		last = fi.ModTime()
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-watcher.Events:
			fi, err := os.Stat(slnPath)
			if err != nil || fi.ModTime() == last {
				continue
			}
			last = fi.ModTime()
			if err := ws.Load(slnPath, policy); err != nil {
				logger.Warn("reload failed",
					sglog.String("solution", slnPath),
					sglog.Error(err))
				continue
			}
			logger.Info("reloaded solution",
				sglog.String("status", ws.Status()))
		case err := <-watcher.Errors:
			if err != nil {
				logger.Warn("watcher error", sglog.Error(err))
			}
		}
	}
}
