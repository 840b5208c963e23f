package repository

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/kankokujin/kankokujin-no-map/pkg/logger"
)

// DefaultSettle is how long Watch waits after the last change before it
// calls onChange.
const DefaultSettle = 250 * time.Millisecond

// Watch calls onChange after path is written, created or renamed into place,
// once the file has been quiet for settle. The parent directory is watched
// because atomic writes replace the file. Watch blocks until ctx is done.
func Watch(ctx context.Context, path string, settle time.Duration, onChange func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	target := filepath.Clean(path)
	if err := w.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(target), err)
	}
	if settle <= 0 {
		settle = DefaultSettle
	}

	log := logger.Get().Named("watch")
	timer := time.NewTimer(settle)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			log.Debug(ctx, "data file changed", logger.String("path", target), logger.String("op", ev.Op.String()))
			timer.Reset(settle)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn(ctx, "watch error", logger.Error(err))
		case <-timer.C:
			onChange()
		}
	}
}
