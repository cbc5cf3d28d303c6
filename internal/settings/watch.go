package settings

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch signals on the returned channel whenever another process changes the
// settings file, and after a write that had to replay this store's updates
// over such a change. By the time a signal arrives the store has already
// re-read the file, so Load returns the merged values. Writes made by this
// store alone are not reported. The channel is closed when ctx is done or
// the store is closed.
func (s *FileStore) Watch(ctx context.Context) (<-chan struct{}, error) {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create settings dir: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("settings watcher: %w", err)
	}
	// The file is replaced by rename on every write, so watch the directory.
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	if s.stopWatcher != nil {
		s.stopWatcher()
	}
	s.stopWatcher = cancel
	s.mu.Unlock()

	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.rebased:
				signal(out)
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != s.path {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				changed, err := s.reload()
				if err != nil {
					slog.Warn("settings reload failed", "path", s.path, "err", err)
					continue
				}
				if !changed {
					continue
				}
				slog.Debug("settings changed externally", "path", s.path)
				signal(out)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				slog.Warn("settings watcher error", "err", err)
			}
		}
	}()
	return out, nil
}

func signal(ch chan<- struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
