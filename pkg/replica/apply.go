package replica

import (
	"context"
	"fmt"

	"tableflip.dev/newday/pkg/day"
	"tableflip.dev/newday/pkg/remote"
	"tableflip.dev/newday/pkg/task"
)

// Changeset is a batch of local mutations that is persisted as one commit.
type Changeset struct {
	PutTasks       []task.Task
	PatchTasks     []task.Patch
	RemoveTasks    []string
	PutDays        []day.Day
	PutDayTasks    []day.DayTask
	RemoveDayTasks []string
}

// Empty reports whether cs changes nothing.
func (cs Changeset) Empty() bool {
	return len(cs.PutTasks)+len(cs.PatchTasks)+len(cs.RemoveTasks)+
		len(cs.PutDays)+len(cs.PutDayTasks)+len(cs.RemoveDayTasks) == 0
}

// Apply writes cs to the local state, then commits it to the remote store.
// Patches for tasks missing locally are dropped. The local write always
// happens; a remote failure is reported through OnError and returned wrapped
// in ErrPersist. Without a session the change is local only.
func (r *Replica) Apply(ctx context.Context, cs Changeset) error {
	if cs.Empty() {
		return nil
	}
	writes := r.applyLocal(cs)

	userID := r.UserID()
	if userID == "" || len(writes) == 0 {
		return nil
	}
	if err := r.store.Commit(ctx, userID, writes...); err != nil {
		err = fmt.Errorf("%w: %w", ErrPersist, err)
		r.log.Error("replica: commit", "user", userID, "writes", len(writes), "err", err)
		r.reportError(err)
		return err
	}
	return nil
}

func (r *Replica) applyLocal(cs Changeset) []remote.Write {
	var writes []remote.Write

	if len(cs.PutDays) > 0 {
		r.st.Days.UpsertMany(cs.PutDays)
		for _, d := range cs.PutDays {
			writes = append(writes, remote.Set(remote.Days, d.ID, d))
		}
	}

	if len(cs.PutTasks) > 0 {
		r.st.Tasks.UpsertMany(cs.PutTasks)
		for _, t := range cs.PutTasks {
			writes = append(writes, remote.Set(remote.Tasks, t.ID, t))
		}
	}

	if len(cs.PatchTasks) > 0 {
		patched := make([]task.Task, 0, len(cs.PatchTasks))
		for _, p := range cs.PatchTasks {
			current, ok := r.st.Tasks.Get(p.ID)
			if !ok {
				r.log.Debug("replica: patch for unknown task", "task", p.ID)
				continue
			}
			patched = append(patched, p.Apply(current))
			writes = append(writes, remote.Merge(remote.Tasks, p.ID, p.Fields()))
		}
		r.st.Tasks.UpsertMany(patched)
	}

	if len(cs.PutDayTasks) > 0 {
		r.st.DayTasks.UpsertMany(cs.PutDayTasks)
		for _, dt := range cs.PutDayTasks {
			writes = append(writes, remote.Set(remote.DayTasks, dt.ID, dt))
		}
	}

	if len(cs.RemoveDayTasks) > 0 {
		r.st.DayTasks.RemoveMany(cs.RemoveDayTasks)
		for _, id := range cs.RemoveDayTasks {
			writes = append(writes, remote.Delete(remote.DayTasks, id))
		}
	}

	if len(cs.RemoveTasks) > 0 {
		r.st.Tasks.RemoveMany(cs.RemoveTasks)
		for _, id := range cs.RemoveTasks {
			writes = append(writes, remote.Delete(remote.Tasks, id))
		}
	}
	return writes
}

func (r *Replica) reportError(err error) {
	r.errMu.Lock()
	fn := r.onError
	r.errMu.Unlock()
	if fn != nil {
		fn(err)
	}
}

// PutTasks inserts or replaces tasks.
func (r *Replica) PutTasks(ctx context.Context, tasks ...task.Task) error {
	return r.Apply(ctx, Changeset{PutTasks: tasks})
}

// UpdateTasks merges patches into existing tasks.
func (r *Replica) UpdateTasks(ctx context.Context, patches ...task.Patch) error {
	return r.Apply(ctx, Changeset{PatchTasks: patches})
}

// RemoveTasks deletes tasks by id. Their day links are left alone.
func (r *Replica) RemoveTasks(ctx context.Context, ids ...string) error {
	return r.Apply(ctx, Changeset{RemoveTasks: ids})
}

// PutDay inserts a day.
func (r *Replica) PutDay(ctx context.Context, d day.Day) error {
	return r.Apply(ctx, Changeset{PutDays: []day.Day{d}})
}

// PutDayTasks inserts day links.
func (r *Replica) PutDayTasks(ctx context.Context, links ...day.DayTask) error {
	return r.Apply(ctx, Changeset{PutDayTasks: links})
}

// RemoveDayTasks deletes day links by id.
func (r *Replica) RemoveDayTasks(ctx context.Context, ids ...string) error {
	return r.Apply(ctx, Changeset{RemoveDayTasks: ids})
}
