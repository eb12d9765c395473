package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"tableflip.dev/newday/pkg/apikey"
	"tableflip.dev/newday/pkg/remote"
	"tableflip.dev/newday/pkg/replica"
	"tableflip.dev/newday/pkg/state"
	"tableflip.dev/newday/pkg/task"
)

var t0 = time.Date(2025, 10, 11, 9, 0, 0, 0, time.UTC)

// clock advances one minute per call so creation order is unambiguous.
type clock struct{ now time.Time }

func (c *clock) Now() time.Time {
	c.now = c.now.Add(time.Minute)
	return c.now
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newLocalService returns a service without a remote session; every change
// stays in the local state.
func newLocalService() *Service {
	store := remote.NewMemory()
	svc := New(store, replica.New(store, state.New(), replica.WithLogger(quietLogger())))
	svc.Now = (&clock{now: t0}).Now
	return svc
}

func mustAdd(t *testing.T, svc *Service, text string, typ task.Type) task.Task {
	t.Helper()
	tk, err := svc.AddTask(context.Background(), AddTaskOptions{Text: text, Type: typ})
	if err != nil {
		t.Fatalf("add %q: %v", text, err)
	}
	return tk
}

func TestBuyMilkScenario(t *testing.T) {
	ctx := context.Background()
	svc := newLocalService()
	st := svc.Replica.State()

	if _, err := svc.NewDay(ctx); err != nil {
		t.Fatalf("first rollover: %v", err)
	}
	if st.Days.Len() != 1 || st.DayTasks.Len() != 0 {
		t.Fatalf("after first rollover: %d days, %d links", st.Days.Len(), st.DayTasks.Len())
	}
	first, _ := svc.CurrentDay()

	milk := mustAdd(t, svc, "Buy milk", task.Other)
	if st.Tasks.Len() != 1 || st.DayTasks.Len() != 1 {
		t.Fatalf("after add: %d tasks, %d links", st.Tasks.Len(), st.DayTasks.Len())
	}
	if link := st.DayTasks.All()[0]; link.DayID != first.ID || link.TaskID != milk.ID {
		t.Fatalf("link = %+v", link)
	}

	done, err := svc.ToggleComplete(ctx, milk.ID)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	stored, _ := st.Tasks.Get(milk.ID)
	if !done.Complete || !stored.Complete || stored.Completed == nil {
		t.Fatalf("stored after toggle = %+v", stored)
	}

	res, err := svc.NewDay(ctx)
	if err != nil {
		t.Fatalf("second rollover: %v", err)
	}
	current, _ := svc.CurrentDay()
	if current.ID != res.Day.ID || current.ID == first.ID {
		t.Fatalf("current day = %s, want the new day %s", current.ID, res.Day.ID)
	}
	if got := svc.Select.TasksForDay(res.Day.ID); len(got) != 0 {
		t.Fatalf("completed task carried: %+v", got)
	}
	for _, dt := range st.DayTasks.All() {
		if dt.DayID == res.Day.ID {
			t.Fatalf("new day has a link: %+v", dt)
		}
	}
}

func TestRolloverDemotesMostOverCap(t *testing.T) {
	ctx := context.Background()
	svc := newLocalService()
	if _, err := svc.NewDay(ctx); err != nil {
		t.Fatalf("rollover: %v", err)
	}
	var most []task.Task
	for i := 0; i < 4; i++ {
		most = append(most, mustAdd(t, svc, "important", task.Most))
	}

	res, err := svc.NewDay(ctx)
	if err != nil {
		t.Fatalf("rollover: %v", err)
	}
	carried := svc.Select.TasksForDay(res.Day.ID)
	counts := map[task.Type]int{}
	for _, tk := range carried {
		counts[tk.Type]++
	}
	if len(carried) != 4 || counts[task.Most] != 3 || counts[task.Other] != 1 {
		t.Fatalf("carried %d tasks, counts %v", len(carried), counts)
	}
	if tk, _ := svc.Replica.State().Tasks.Get(most[3].ID); tk.Type != task.Other {
		t.Fatalf("newest Most task not demoted: %+v", tk)
	}
	if svc.Replica.State().Tasks.Len() != 4 {
		t.Fatalf("tasks were deleted")
	}
}

func TestAddTaskValidation(t *testing.T) {
	ctx := context.Background()
	svc := newLocalService()

	if _, err := svc.AddTask(ctx, AddTaskOptions{Text: "no day"}); !errors.Is(err, ErrNoDays) {
		t.Fatalf("no day err = %v", err)
	}
	if _, err := svc.NewDay(ctx); err != nil {
		t.Fatalf("rollover: %v", err)
	}

	tests := []struct {
		name string
		opts AddTaskOptions
		want error
	}{
		{name: "blank", opts: AddTaskOptions{Text: "  "}, want: task.ErrInvalid},
		{name: "long text", opts: AddTaskOptions{Text: strings.Repeat("x", 1001)}, want: task.ErrInvalid},
		{name: "long notes", opts: AddTaskOptions{Text: "x", Notes: strings.Repeat("n", 5001)}, want: task.ErrInvalid},
		{name: "bad type", opts: AddTaskOptions{Text: "x", Type: "Someday"}, want: task.ErrInvalid},
		{name: "unknown day", opts: AddTaskOptions{Text: "x", DayID: "nope"}, want: ErrDayNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.AddTask(ctx, tt.opts); !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
	if n := svc.Replica.State().Tasks.Len(); n != 0 {
		t.Fatalf("rejected input wrote %d tasks", n)
	}

	tk, err := svc.AddTask(ctx, AddTaskOptions{Text: "  trimmed  ", Notes: " n "})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if tk.Text != "trimmed" || tk.Notes != "n" || tk.Type != task.Other {
		t.Fatalf("task = %+v", tk)
	}
}

func TestMoveTaskEnforcesMostCap(t *testing.T) {
	ctx := context.Background()
	svc := newLocalService()
	if _, err := svc.NewDay(ctx); err != nil {
		t.Fatalf("rollover: %v", err)
	}
	var most []task.Task
	for i := 0; i < 3; i++ {
		most = append(most, mustAdd(t, svc, "m", task.Most))
	}
	quick := mustAdd(t, svc, "q", task.Quick)

	moved, demoted, err := svc.MoveTask(ctx, quick.ID, task.Most)
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if moved.Type != task.Most {
		t.Fatalf("moved = %+v", moved)
	}
	if len(demoted) != 1 || demoted[0].ID != most[0].ID || demoted[0].Type != task.Other {
		t.Fatalf("demoted = %+v, want the oldest Most task", demoted)
	}
	view, err := svc.DayView("")
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if n := len(view.Section(task.Most)); n != 3 {
		t.Fatalf("most section has %d tasks", n)
	}

	same, demoted, err := svc.MoveTask(ctx, quick.ID, task.Most)
	if err != nil || len(demoted) != 0 || same.Type != task.Most {
		t.Fatalf("no-op move = %+v, %v, %v", same, demoted, err)
	}
	if _, _, err := svc.MoveTask(ctx, quick.ID, "Later"); !errors.Is(err, task.ErrInvalid) {
		t.Fatalf("bad type err = %v", err)
	}
}

func TestMoveTaskIgnoresCompletedMost(t *testing.T) {
	ctx := context.Background()
	svc := newLocalService()
	if _, err := svc.NewDay(ctx); err != nil {
		t.Fatalf("rollover: %v", err)
	}
	var most []task.Task
	for i := 0; i < 3; i++ {
		most = append(most, mustAdd(t, svc, "m", task.Most))
	}
	for _, tk := range most[:2] {
		if _, err := svc.ToggleComplete(ctx, tk.ID); err != nil {
			t.Fatalf("complete: %v", err)
		}
	}
	other := mustAdd(t, svc, "o", task.Other)

	moved, demoted, err := svc.MoveTask(ctx, other.ID, task.Most)
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if moved.Type != task.Most || len(demoted) != 0 {
		t.Fatalf("moved = %+v, demoted = %+v", moved, demoted)
	}
	st := svc.Replica.State()
	var open int
	for _, tk := range most {
		got, _ := st.Tasks.Get(tk.ID)
		if got.Type != task.Most {
			t.Fatalf("task %s became %s", got.ID, got.Type)
		}
		if !got.Complete {
			open++
		}
	}
	if got, _ := st.Tasks.Get(other.ID); !got.Complete {
		open++
	}
	if open != 2 {
		t.Fatalf("open Most tasks = %d, want 2", open)
	}
}

func TestEditAndDelete(t *testing.T) {
	ctx := context.Background()
	svc := newLocalService()
	if _, err := svc.NewDay(ctx); err != nil {
		t.Fatalf("rollover: %v", err)
	}
	tk := mustAdd(t, svc, "draft", task.Other)
	if _, err := svc.NewDay(ctx); err != nil {
		t.Fatalf("rollover: %v", err)
	}
	if n := svc.Replica.State().DayTasks.Len(); n != 2 {
		t.Fatalf("links = %d, want 2 after carry", n)
	}

	text, notes := "final", "ship friday"
	edited, err := svc.EditTask(ctx, tk.ID[:20], &text, &notes)
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if edited.Text != "final" || edited.Notes != "ship friday" || !edited.Updated.After(tk.Updated.Time) {
		t.Fatalf("edited = %+v", edited)
	}
	blank := ""
	if _, err := svc.EditTask(ctx, tk.ID, &blank, nil); !errors.Is(err, task.ErrInvalid) {
		t.Fatalf("blank edit err = %v", err)
	}

	if _, err := svc.DeleteTask(ctx, tk.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	st := svc.Replica.State()
	if st.Tasks.Len() != 0 || st.DayTasks.Len() != 0 {
		t.Fatalf("delete left %d tasks, %d links", st.Tasks.Len(), st.DayTasks.Len())
	}
	if _, err := svc.DeleteTask(ctx, tk.ID); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("second delete err = %v", err)
	}
}

func TestFindTask(t *testing.T) {
	svc := newLocalService()
	st := svc.Replica.State()
	st.Tasks.UpsertMany([]task.Task{
		{ID: "01abc", Text: "a", Type: task.Other},
		{ID: "01abd", Text: "b", Type: task.Other},
	})

	if tk, err := svc.FindTask("01ABC"); err != nil || tk.Text != "a" {
		t.Fatalf("exact = %+v, %v", tk, err)
	}
	if tk, err := svc.FindTask("01abd"); err != nil || tk.Text != "b" {
		t.Fatalf("exact = %+v, %v", tk, err)
	}
	if _, err := svc.FindTask("01ab"); !errors.Is(err, ErrAmbiguousID) {
		t.Fatalf("ambiguous err = %v", err)
	}
	if _, err := svc.FindTask("zz"); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("missing err = %v", err)
	}
}

func TestFindTaskMixedCaseID(t *testing.T) {
	ctx := context.Background()
	svc := newLocalService()
	const id = "V1StGXR8_Z5jdHi6B-myT"
	svc.Replica.State().Tasks.UpsertMany([]task.Task{
		{ID: id, Text: "imported", Type: task.Other},
		{ID: "v1zzzz", Text: "other", Type: task.Other},
	})

	for _, in := range []string{id, "V1StGXR8", "v1stgxr8_z5", " " + id + " "} {
		tk, err := svc.FindTask(in)
		if err != nil || tk.ID != id {
			t.Fatalf("FindTask(%q) = %+v, %v", in, tk, err)
		}
	}
	if _, err := svc.FindTask("v1"); !errors.Is(err, ErrAmbiguousID) {
		t.Fatalf("ambiguous err = %v", err)
	}

	done, err := svc.ToggleComplete(ctx, id)
	if err != nil || !done.Complete {
		t.Fatalf("toggle = %+v, %v", done, err)
	}
	if got, _ := svc.Replica.State().Tasks.Get(id); !got.Complete {
		t.Fatalf("stored task not completed: %+v", got)
	}
}

func TestDaysAndReport(t *testing.T) {
	ctx := context.Background()
	svc := newLocalService()
	for i := 0; i < 3; i++ {
		if _, err := svc.NewDay(ctx); err != nil {
			t.Fatalf("rollover: %v", err)
		}
	}
	days := svc.Days(2)
	current, _ := svc.CurrentDay()
	if len(days) != 2 || days[0].ID != current.ID {
		t.Fatalf("Days(2) = %+v", days)
	}

	a := mustAdd(t, svc, "a", task.Quick)
	b := mustAdd(t, svc, "b", task.Most)
	mustAdd(t, svc, "open", task.Most)
	for _, id := range []string{b.ID, a.ID} {
		if _, err := svc.ToggleComplete(ctx, id); err != nil {
			t.Fatalf("toggle: %v", err)
		}
	}

	res := svc.Report(t0.Add(24*time.Hour), t0)
	if res.Total != 2 || !res.Since.Equal(t0) {
		t.Fatalf("report = %+v", res)
	}
	var got []task.Type
	for _, sec := range res.Sections {
		got = append(got, sec.Type)
	}
	if diff := cmp.Diff([]task.Type{task.Most, task.Quick}, got); diff != "" {
		t.Fatalf("sections (-want +got):\n%s", diff)
	}
}

func TestAPIKeys(t *testing.T) {
	ctx := context.Background()
	store := remote.NewMemory()
	rep := replica.New(store, state.New(), replica.WithLogger(quietLogger()))
	svc := New(store, rep)

	if _, err := svc.IssueAPIKey(ctx); !errors.Is(err, replica.ErrNoSession) {
		t.Fatalf("no session err = %v", err)
	}
	if err := rep.Start(ctx, "u1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer rep.Stop()

	if ok, err := svc.HasAPIKey(ctx); err != nil || ok {
		t.Fatalf("HasAPIKey before issue = %v, %v", ok, err)
	}
	key, err := svc.IssueAPIKey(ctx)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	user, err := store.UserByAPIKeyHash(ctx, apikey.Hash(key))
	if err != nil || user != "u1" {
		t.Fatalf("lookup = %q, %v", user, err)
	}
	p, _ := store.Profile(ctx, "u1")
	if p.APIKeyHash == key || p.CreatedAt == nil {
		t.Fatalf("profile = %+v", p)
	}
	if ok, _ := svc.HasAPIKey(ctx); !ok {
		t.Fatalf("HasAPIKey after issue = false")
	}
	if err := svc.RevokeAPIKey(ctx); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if _, err := store.UserByAPIKeyHash(ctx, apikey.Hash(key)); !errors.Is(err, remote.ErrNotFound) {
		t.Fatalf("revoked key still resolves: %v", err)
	}
}

func TestSyncedAddReachesRemote(t *testing.T) {
	ctx := context.Background()
	store := remote.NewMemory()
	rep := replica.New(store, state.New(), replica.WithLogger(quietLogger()))
	svc := New(store, rep)
	if err := rep.Start(ctx, "u1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer rep.Stop()
	if err := rep.Ready(ctx); err != nil {
		t.Fatalf("ready: %v", err)
	}

	res, err := svc.NewDay(ctx)
	if err != nil {
		t.Fatalf("rollover: %v", err)
	}
	tk, err := svc.AddTask(ctx, AddTaskOptions{Text: "synced", DayID: res.Day.ID})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	for c, want := range map[remote.Collection]int{remote.Days: 1, remote.Tasks: 1, remote.DayTasks: 1} {
		docs, err := store.List(ctx, "u1", c)
		if err != nil || len(docs) != want {
			t.Fatalf("%s: %d docs, %v", c, len(docs), err)
		}
	}
	if _, err := store.Get(ctx, "u1", remote.Tasks, tk.ID); err != nil {
		t.Fatalf("task doc: %v", err)
	}
}
