package selector

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"tableflip.dev/newday/pkg/day"
	"tableflip.dev/newday/pkg/state"
	"tableflip.dev/newday/pkg/task"
	"tableflip.dev/newday/pkg/timeutil"
)

var t0 = time.Date(2025, 10, 11, 9, 0, 0, 0, time.UTC)

func mk(id string, typ task.Type, offset time.Duration) task.Task {
	return task.Task{ID: id, Text: id, Type: typ, Created: timeutil.At(t0.Add(offset))}
}

func link(id, dayID, taskID string) day.DayTask {
	return day.DayTask{ID: id, DayID: dayID, TaskID: taskID, Created: timeutil.At(t0)}
}

func ids(tasks []task.Task) []string {
	var out []string
	for _, tk := range tasks {
		out = append(out, tk.ID)
	}
	return out
}

func fixture() *state.State {
	st := state.New()
	st.Days.SetAll([]day.Day{
		{ID: "d1", Created: timeutil.At(t0)},
		{ID: "d2", Created: timeutil.At(t0.Add(24 * time.Hour))},
	})
	st.Tasks.SetAll([]task.Task{
		mk("a", task.Most, 0),
		mk("b", task.Other, time.Minute),
		mk("c", task.Quick, 2*time.Minute),
		mk("d", task.Most, 3*time.Minute),
	})
	st.DayTasks.SetAll([]day.DayTask{
		link("l1", "d1", "a"),
		link("l2", "d1", "b"),
		link("l3", "d2", "a"),
		link("l4", "d2", "c"),
		link("l5", "d2", "c"),
		link("l6", "d2", "gone"),
	})
	return st
}

func TestTasksForDay(t *testing.T) {
	sel := New(fixture())

	tests := []struct {
		day  string
		want []string
	}{
		{day: "d1", want: []string{"a", "b"}},
		{day: "d2", want: []string{"a", "c"}},
		{day: "unknown", want: nil},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, ids(sel.TasksForDay(tt.day))); diff != "" {
			t.Fatalf("TasksForDay(%s) (-want +got):\n%s", tt.day, diff)
		}
	}
}

func TestMemoizedUntilInputChanges(t *testing.T) {
	st := fixture()
	sel := New(st)

	first := sel.TasksOfType(task.Most)
	second := sel.TasksOfType(task.Most)
	if &first[0] != &second[0] {
		t.Fatalf("unchanged input recomputed TasksOfType")
	}
	forDay := sel.TasksForDay("d2")
	st.Days.UpsertOne(day.Day{ID: "d3", Created: timeutil.At(t0.Add(48 * time.Hour))})
	if again := sel.TasksForDay("d2"); &again[0] != &forDay[0] {
		t.Fatalf("a days change should not invalidate TasksForDay")
	}

	st.Tasks.UpsertOne(mk("e", task.Most, 4*time.Minute))
	third := sel.TasksOfType(task.Most)
	if diff := cmp.Diff([]string{"a", "d", "e"}, ids(third)); diff != "" {
		t.Fatalf("after upsert (-want +got):\n%s", diff)
	}
}

func TestSetAllDropsFromEverySelector(t *testing.T) {
	st := fixture()
	sel := New(st)

	// Warm every cache.
	sel.TasksOfType(task.Most)
	sel.TasksForDay("d2")
	sel.IncompleteTasks()
	sel.DayView("d2")

	st.Tasks.SetAll([]task.Task{mk("c", task.Quick, 2*time.Minute), mk("d", task.Most, 3*time.Minute)})

	check := func(name string, got []task.Task) {
		for _, tk := range got {
			if tk.ID == "a" {
				t.Fatalf("%s still returns dropped task a", name)
			}
		}
	}
	check("TasksOfType", sel.TasksOfType(task.Most))
	check("TasksForDay", sel.TasksForDay("d2"))
	check("IncompleteTasks", sel.IncompleteTasks())
	view, _ := sel.DayView("d2")
	for _, sec := range view.Sections {
		check("DayView", sec.Tasks)
	}
}

func TestCurrentDay(t *testing.T) {
	st := state.New()
	sel := New(st)
	if _, ok := sel.CurrentDay(); ok {
		t.Fatalf("CurrentDay with no days reported one")
	}
	st.Days.SetAll(fixture().Days.All())
	d, ok := sel.CurrentDay()
	if !ok || d.ID != "d2" {
		t.Fatalf("CurrentDay = %v, %v", d.ID, ok)
	}
}

func TestCompletion(t *testing.T) {
	st := fixture()
	b, _ := st.Tasks.Get("b")
	st.Tasks.UpsertOne(b.Toggle(t0))
	sel := New(st)

	if diff := cmp.Diff([]string{"b"}, ids(sel.CompletedTasks())); diff != "" {
		t.Fatalf("completed (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a", "c", "d"}, ids(sel.IncompleteTasks())); diff != "" {
		t.Fatalf("incomplete (-want +got):\n%s", diff)
	}
}

func TestDayView(t *testing.T) {
	st := fixture()
	st.DayTasks.UpsertOne(link("l7", "d1", "d"))
	a, _ := st.Tasks.Get("a")
	st.Tasks.UpsertOne(a.Toggle(t0))
	sel := New(st)

	view, ok := sel.DayView("d1")
	if !ok {
		t.Fatalf("DayView(d1) missing")
	}
	if len(view.Sections) != 4 {
		t.Fatalf("sections = %d", len(view.Sections))
	}
	if diff := cmp.Diff([]string{"d", "a"}, ids(view.Section(task.Most))); diff != "" {
		t.Fatalf("most (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"b"}, ids(view.Section(task.Other))); diff != "" {
		t.Fatalf("other (-want +got):\n%s", diff)
	}
	if _, ok := sel.DayView("nope"); ok {
		t.Fatalf("DayView for unknown day")
	}

	cur, ok := sel.CurrentView()
	if !ok || cur.Day.ID != "d2" {
		t.Fatalf("CurrentView = %v, %v", cur.Day.ID, ok)
	}
}
