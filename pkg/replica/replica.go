// Package replica keeps the local state in step with the remote store for one
// signed in user. Remote snapshots replace local tables wholesale; local
// changes are applied first and then written through.
package replica

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"tableflip.dev/newday/pkg/day"
	"tableflip.dev/newday/pkg/remote"
	"tableflip.dev/newday/pkg/state"
	"tableflip.dev/newday/pkg/task"
)

var (
	// ErrPersist wraps remote write failures. The local change has already
	// been applied and is not rolled back; the next snapshot corrects it.
	ErrPersist = errors.New("replica: remote write failed")
	// ErrNoSession is returned by Ready when Start was never called.
	ErrNoSession = errors.New("replica: no active session")
)

// Option configures a Replica.
type Option func(*Replica)

// WithLogger sets the logger; slog.Default() otherwise.
func WithLogger(l *slog.Logger) Option {
	return func(r *Replica) { r.log = l }
}

// WithErrorHandler registers fn for remote failures. See OnError.
func WithErrorHandler(fn func(error)) Option {
	return func(r *Replica) { r.onError = fn }
}

// Replica is the sync adapter between a State and a remote.Store.
type Replica struct {
	store remote.Store
	st    *state.State
	log   *slog.Logger

	// session guards Start and Stop.
	session sync.Mutex
	userID  string
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	ready   chan struct{}

	// applyMu orders snapshot application against session changes; gen
	// identifies the live session.
	applyMu sync.Mutex
	gen     uint64

	errMu   sync.Mutex
	onError func(error)
}

// New returns a Replica with no session. Changes applied before Start stay
// local.
func New(store remote.Store, st *state.State, opts ...Option) *Replica {
	r := &Replica{store: store, st: st, log: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// State returns the local state this replica maintains.
func (r *Replica) State() *state.State { return r.st }

// UserID returns the user of the active session, or "".
func (r *Replica) UserID() string {
	r.session.Lock()
	defer r.session.Unlock()
	return r.userID
}

// OnError replaces the remote failure callback. The callback runs on the
// goroutine that issued the write.
func (r *Replica) OnError(fn func(error)) {
	r.errMu.Lock()
	defer r.errMu.Unlock()
	r.onError = fn
}

// Start opens a session for userID, replacing any existing one. The previous
// session's subscriptions are torn down before anything else happens, and the
// local state is cleared when the user changes.
func (r *Replica) Start(ctx context.Context, userID string) error {
	r.session.Lock()
	defer r.session.Unlock()

	previous := r.userID
	r.stopLocked()
	if previous != "" && previous != userID {
		r.st.Clear()
	}

	r.applyMu.Lock()
	r.gen++
	gen := r.gen
	r.applyMu.Unlock()

	sctx, cancel := context.WithCancel(ctx)
	feeds := make([]<-chan remote.Snapshot, 0, 3)
	for _, c := range remote.Collections() {
		ch, err := r.store.Watch(sctx, userID, c)
		if err != nil {
			cancel()
			return fmt.Errorf("replica: watch %s: %w", c, err)
		}
		feeds = append(feeds, ch)
	}

	ready := make(chan struct{})
	var pending sync.WaitGroup
	pending.Add(len(feeds))
	go func() {
		pending.Wait()
		close(ready)
	}()

	for _, feed := range feeds {
		r.wg.Add(1)
		go func(feed <-chan remote.Snapshot) {
			defer r.wg.Done()
			first := true
			for snap := range feed {
				r.applySnapshot(gen, userID, snap)
				if first {
					first = false
					pending.Done()
				}
			}
			if first {
				pending.Done()
			}
		}(feed)
	}

	r.userID = userID
	r.cancel = cancel
	r.ready = ready
	r.log.Debug("replica: session started", "user", userID)
	return nil
}

// Stop cancels the subscriptions and waits for them to drain. The local
// state is kept.
func (r *Replica) Stop() {
	r.session.Lock()
	defer r.session.Unlock()
	r.stopLocked()
}

// SignOut stops the session and clears the local state.
func (r *Replica) SignOut() {
	r.session.Lock()
	defer r.session.Unlock()
	r.stopLocked()
	r.st.Clear()
}

func (r *Replica) stopLocked() {
	if r.cancel == nil {
		return
	}
	// Bump the generation first so a snapshot already in flight is dropped.
	r.applyMu.Lock()
	r.gen++
	r.applyMu.Unlock()

	r.cancel()
	r.wg.Wait()
	r.log.Debug("replica: session stopped", "user", r.userID)
	r.cancel = nil
	r.userID = ""
	r.ready = nil
}

// Ready blocks until every collection has delivered its first snapshot.
func (r *Replica) Ready(ctx context.Context) error {
	r.session.Lock()
	ready := r.ready
	r.session.Unlock()
	if ready == nil {
		return ErrNoSession
	}
	select {
	case <-ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Replica) applySnapshot(gen uint64, userID string, snap remote.Snapshot) {
	r.applyMu.Lock()
	defer r.applyMu.Unlock()
	if gen != r.gen {
		return
	}

	var err error
	switch snap.Collection {
	case remote.Tasks:
		var items []task.Task
		items, err = remote.Decode[task.Task](snap.Docs)
		r.st.Tasks.SetAll(items)
	case remote.Days:
		var items []day.Day
		items, err = remote.Decode[day.Day](snap.Docs)
		r.st.Days.SetAll(items)
	case remote.DayTasks:
		var items []day.DayTask
		items, err = remote.Decode[day.DayTask](snap.Docs)
		r.st.DayTasks.SetAll(items)
	}
	if err != nil {
		r.log.Warn("replica: skipped undecodable documents", "user", userID, "collection", snap.Collection, "err", err)
	}
}
