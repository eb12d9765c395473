package replica

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"tableflip.dev/newday/pkg/day"
	"tableflip.dev/newday/pkg/remote"
	"tableflip.dev/newday/pkg/state"
	"tableflip.dev/newday/pkg/task"
)

var t0 = time.Date(2025, 10, 11, 9, 0, 0, 0, time.UTC)

var quiet = WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

type failingStore struct {
	*remote.Memory
	err error
}

func (f *failingStore) Commit(ctx context.Context, userID string, writes ...remote.Write) error {
	if f.err != nil {
		return f.err
	}
	return f.Memory.Commit(ctx, userID, writes...)
}

func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func started(t *testing.T, store remote.Store, user string) (*Replica, *state.State) {
	t.Helper()
	st := state.New()
	r := New(store, st, quiet)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := r.Start(context.Background(), user); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(r.Stop)
	if err := r.Ready(ctx); err != nil {
		t.Fatalf("ready: %v", err)
	}
	return r, st
}

func TestSnapshotReplacesLocalState(t *testing.T) {
	ctx := context.Background()
	store := remote.NewMemory()
	remoteTask := task.New("remote", task.Other, t0)
	if err := store.Commit(ctx, "u1", remote.Set(remote.Tasks, remoteTask.ID, remoteTask)); err != nil {
		t.Fatalf("seed: %v", err)
	}

	st := state.New()
	st.Tasks.UpsertOne(task.New("local only", task.Quick, t0))
	r := New(store, st, quiet)
	if err := r.Start(ctx, "u1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer r.Stop()
	if err := r.Ready(ctx); err != nil {
		t.Fatalf("ready: %v", err)
	}

	all := st.Tasks.All()
	if len(all) != 1 || all[0].ID != remoteTask.ID {
		t.Fatalf("tasks after snapshot = %+v", all)
	}
}

func TestApplyWritesLocalThenRemote(t *testing.T) {
	ctx := context.Background()
	store := remote.NewMemory()
	r, st := started(t, store, "u1")

	d := day.NewDay(t0)
	tk := task.New("write tests", task.Most, t0)
	tk.Notes = "with notes"
	link := day.Link(d.ID, tk.ID, t0)
	if err := r.Apply(ctx, Changeset{PutDays: []day.Day{d}, PutTasks: []task.Task{tk}, PutDayTasks: []day.DayTask{link}}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if _, ok := st.Tasks.Get(tk.ID); !ok {
		t.Fatalf("local task missing right after Apply")
	}

	text := "write more tests"
	if err := r.UpdateTasks(ctx, task.Patch{ID: tk.ID, Text: &text}); err != nil {
		t.Fatalf("update: %v", err)
	}

	raw, err := store.Get(ctx, "u1", remote.Tasks, tk.ID)
	if err != nil {
		t.Fatalf("remote get: %v", err)
	}
	got, err := remote.Decode[task.Task]([]json.RawMessage{raw})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got[0].Text != text || got[0].Notes != "with notes" || got[0].Type != task.Most {
		t.Fatalf("merge clobbered fields: %+v", got[0])
	}

	eventually(t, "snapshot with the link", func() bool { return st.DayTasks.Len() == 1 })

	if err := r.RemoveDayTasks(ctx, link.ID); err != nil {
		t.Fatalf("remove links: %v", err)
	}
	if err := r.RemoveTasks(ctx, tk.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := store.Get(ctx, "u1", remote.Tasks, tk.ID); !errors.Is(err, remote.ErrNotFound) {
		t.Fatalf("remote task survived delete: %v", err)
	}
	eventually(t, "empty tables", func() bool { return st.Tasks.Len() == 0 && st.DayTasks.Len() == 0 })
}

func TestApplyRemoteFailureKeepsLocalChange(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("backend down")
	store := &failingStore{Memory: remote.NewMemory()}
	r, st := started(t, store, "u1")

	var reported error
	r.OnError(func(err error) { reported = err })
	store.err = boom

	tk := task.New("offline", task.Other, t0)
	err := r.PutTasks(ctx, tk)
	if !errors.Is(err, ErrPersist) || !errors.Is(err, boom) {
		t.Fatalf("err = %v, want ErrPersist wrapping backend error", err)
	}
	if !errors.Is(reported, ErrPersist) {
		t.Fatalf("OnError got %v", reported)
	}
	if _, ok := st.Tasks.Get(tk.ID); !ok {
		t.Fatalf("local change was rolled back")
	}
}

func TestApplyWithoutSessionStaysLocal(t *testing.T) {
	store := remote.NewMemory()
	st := state.New()
	r := New(store, st, quiet)

	d := day.NewDay(t0)
	if err := r.PutDay(context.Background(), d); err != nil {
		t.Fatalf("put day: %v", err)
	}
	if st.Days.Len() != 1 {
		t.Fatalf("local day missing")
	}
	if !errors.Is(r.Ready(context.Background()), ErrNoSession) {
		t.Fatalf("Ready without session should fail")
	}
}

func TestUserSwitchDropsPreviousUser(t *testing.T) {
	ctx := context.Background()
	store := remote.NewMemory()
	a := task.New("alice", task.Other, t0)
	b := task.New("bob", task.Other, t0)
	if err := store.Commit(ctx, "alice", remote.Set(remote.Tasks, a.ID, a)); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := store.Commit(ctx, "bob", remote.Set(remote.Tasks, b.ID, b)); err != nil {
		t.Fatalf("seed: %v", err)
	}

	r, st := started(t, store, "alice")
	if err := r.Start(ctx, "bob"); err != nil {
		t.Fatalf("restart: %v", err)
	}
	if err := r.Ready(ctx); err != nil {
		t.Fatalf("ready: %v", err)
	}
	if r.UserID() != "bob" {
		t.Fatalf("user = %q", r.UserID())
	}

	late := task.New("alice again", task.Other, t0)
	if err := store.Commit(ctx, "alice", remote.Set(remote.Tasks, late.ID, late)); err != nil {
		t.Fatalf("commit: %v", err)
	}
	time.Sleep(20 * time.Millisecond)

	all := st.Tasks.All()
	if len(all) != 1 || all[0].ID != b.ID {
		t.Fatalf("tasks after switch = %+v", all)
	}

	r.SignOut()
	if st.Tasks.Len() != 0 || r.UserID() != "" {
		t.Fatalf("SignOut left state behind")
	}
}

func TestStartFailsForInvalidUser(t *testing.T) {
	r := New(remote.NewMemory(), state.New(), quiet)
	if err := r.Start(context.Background(), "a/b"); !errors.Is(err, remote.ErrInvalidUser) {
		t.Fatalf("err = %v", err)
	}
}
