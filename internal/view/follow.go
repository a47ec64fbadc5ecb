package view

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Follower watches the store file and invokes onChange whenever new data is
// written. The parent directory is watched rather than the file itself so
// rename-and-replace writes are still seen.
type Follower struct {
	watcher *fsnotify.Watcher
	logger  *slog.Logger
	done    chan struct{}
}

// NewFollower starts watching the store at storePath. Call Stop to clean up.
func NewFollower(storePath string, logger *slog.Logger, onChange func()) (*Follower, error) {
	if logger == nil {
		logger = slog.Default()
	}

	absPath, err := filepath.Abs(storePath)
	if err != nil {
		return nil, fmt.Errorf("resolve store path: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create store watcher: %w", err)
	}
	dir := filepath.Dir(absPath)
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watch directory %s: %w", dir, err)
	}

	f := &Follower{
		watcher: w,
		logger:  logger.With("component", "view.Follower"),
		done:    make(chan struct{}),
	}
	go f.loop(absPath, onChange)
	return f, nil
}

func (f *Follower) loop(target string, onChange func()) {
	defer close(f.done)

	// SQLite may write the main file, the WAL or the rollback journal; any
	// of them means the table changed.
	targets := map[string]bool{
		target:              true,
		target + "-wal":     true,
		target + "-journal": true,
	}

	for {
		select {
		case event, ok := <-f.watcher.Events:
			if !ok {
				return
			}
			absEvent, _ := filepath.Abs(event.Name)
			if !targets[absEvent] {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				onChange()
			}

		case err, ok := <-f.watcher.Errors:
			if !ok {
				return
			}
			f.logger.Error("store watch error", "error", err)
		}
	}
}

// Stop shuts down the watcher and waits for the event loop to exit.
func (f *Follower) Stop() {
	_ = f.watcher.Close()
	<-f.done
}
