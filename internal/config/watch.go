package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/valksor/go-taskenv/internal/log"
)

// Watch invalidates cached resolutions whenever the projects file changes on
// disk, until ctx is done. The store directory is created if missing because
// fsnotify can only watch existing directories. ready, when non-nil, is
// closed once the watch is registered.
func (m *Manager) Watch(ctx context.Context, ready chan<- struct{}) error {
	dir := m.StoreDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Watch the directory, not the file: atomic saves replace the inode.
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	if ready != nil {
		close(ready)
	}

	target := filepath.Clean(m.ProjectsPath())
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				log.Debug("projects file changed", "op", ev.Op.String())
				m.Invalidate()
			}
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("projects watcher error", log.Err(werr))
		}
	}
}
