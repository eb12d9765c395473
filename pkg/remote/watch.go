package remote

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// throttleDelay coalesces bursts of file writes, such as a batch commit, into
// one snapshot.
const throttleDelay = 50 * time.Millisecond

func (s *diskStore) Watch(ctx context.Context, userID string, c Collection) (<-chan Snapshot, error) {
	if err := validUser(userID); err != nil {
		return nil, err
	}
	dir := s.collectionDir(userID, c)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("remote: ensure %s: %w", dir, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("remote: create watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("remote: watch %s: %w", dir, err)
	}

	out := newLatest()
	load := func() {
		docs, err := s.List(ctx, userID, c)
		if err != nil {
			if ctx.Err() == nil {
				slog.Warn("remote: list for snapshot", "user", userID, "collection", c, "err", err)
			}
			return
		}
		out.send(Snapshot{Collection: c, Docs: docs})
	}
	// Subscribe before the first read so nothing written in between is lost.
	load()

	go func() {
		throttle := newThrottle(throttleDelay)
		defer func() {
			throttle.Stop()
			if err := watcher.Close(); err != nil {
				slog.Warn("remote: watcher close", "err", err)
			}
			out.close()
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				// Resync in full; the error may mean dropped events.
				slog.Warn("remote: watcher", "collection", c, "err", err)
				throttle.Enqueue(load)
			case _, ok := <-watcher.Events:
				if !ok {
					return
				}
				throttle.Enqueue(load)
			}
		}
	}()

	return out.ch, nil
}

// latest is a one slot channel where a newer snapshot replaces an unread one.
type latest struct {
	mu     sync.Mutex
	ch     chan Snapshot
	closed bool
}

func newLatest() *latest {
	return &latest{ch: make(chan Snapshot, 1)}
}

func (l *latest) send(snap Snapshot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	select {
	case <-l.ch:
	default:
	}
	l.ch <- snap
}

func (l *latest) close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.closed {
		l.closed = true
		close(l.ch)
	}
}

// throttle runs the queued func once per burst of Enqueue calls.
type throttle struct {
	mu    sync.Mutex
	timer *time.Timer
	delay time.Duration
	// run serializes flushes so snapshots leave in the order they were read.
	run sync.Mutex
}

func newThrottle(delay time.Duration) *throttle {
	return &throttle{delay: delay}
}

func (t *throttle) Enqueue(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer == nil {
		t.timer = time.AfterFunc(t.delay, func() {
			t.mu.Lock()
			t.timer = nil
			t.mu.Unlock()

			t.run.Lock()
			defer t.run.Unlock()
			fn()
		})
	}
}

func (t *throttle) Stop() {
	t.mu.Lock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.mu.Unlock()
}
