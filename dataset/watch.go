package dataset

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/YuminosukeSato/bikedash/pkg/errors"
	"github.com/YuminosukeSato/bikedash/pkg/log"
)

// Watch reloads path into cache whenever the file is written or replaced.
// The parent directory is watched so that editors that save by rename are
// noticed too. Watch blocks until ctx is done or the watcher fails.
//
// A failed reload is logged and the previous dataset keeps serving.
func Watch(ctx context.Context, cache *Cache, path string, logger log.Logger) error {
	if logger == nil {
		logger = log.Nop()
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "create file watcher")
	}
	defer watcher.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrapf(err, "resolve %s", path)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return errors.Wrapf(err, "watch %s", filepath.Dir(abs))
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if _, err := cache.Reload(path); err != nil {
				logger.Error("dataset reload failed", err,
					log.OperationKey, log.OperationReload,
					log.PathKey, path,
				)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return errors.Wrap(err, "file watcher")
		}
	}
}
