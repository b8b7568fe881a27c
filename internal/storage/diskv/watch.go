package diskv

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/julianstephens/pillbox/internal/logger"
	"github.com/julianstephens/pillbox/internal/storage"
)

const watchDebounce = 100 * time.Millisecond

// Watch streams a Change for each collection file rewritten under the base
// directory until ctx is cancelled. Bursts of writes to the same key are
// coalesced. The channel is closed when the watcher stops.
func (s *Store) Watch(ctx context.Context) (<-chan storage.Change, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(s.basePath); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", s.basePath, err)
	}

	changes := make(chan storage.Change, 16)
	d := newDebouncer(watchDebounce, func(key string) {
		select {
		case changes <- storage.Change{Key: key}:
		default:
			// Consumer is behind; it reloads everything on the next change anyway.
		}
	})

	go func() {
		defer close(changes)
		defer watcher.Close()
		defer d.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("diskv watcher error", "error", err)
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if evt.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				d.Add(filepath.Base(evt.Name))
			}
		}
	}()

	return changes, nil
}

// debouncer delivers each pending key once per quiet period.
type debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	timer   *time.Timer
	pending map[string]struct{}
	send    func(string)
	stopped bool
}

func newDebouncer(delay time.Duration, send func(string)) *debouncer {
	return &debouncer{
		delay:   delay,
		pending: map[string]struct{}{},
		send:    send,
	}
}

func (d *debouncer) Add(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.pending[key] = struct{}{}
	if d.timer == nil {
		d.timer = time.AfterFunc(d.delay, d.flush)
	}
}

// flush holds the lock while sending so Stop cannot race a send; send must not block.
func (d *debouncer) flush() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	for key := range d.pending {
		d.send(key)
	}
	d.pending = map[string]struct{}{}
	d.timer = nil
}

func (d *debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
