// Package app holds the planner operations shared by the CLI, the terminal UI
// and the ingestion server.
package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"tableflip.dev/newday/pkg/day"
	"tableflip.dev/newday/pkg/remote"
	"tableflip.dev/newday/pkg/replica"
	"tableflip.dev/newday/pkg/rollover"
	"tableflip.dev/newday/pkg/selector"
	"tableflip.dev/newday/pkg/task"
	"tableflip.dev/newday/pkg/timeutil"
)

var (
	ErrTaskNotFound = errors.New("app: task not found")
	ErrDayNotFound  = errors.New("app: day not found")
	ErrNoDays       = errors.New("app: no days yet, start one with new-day")
	ErrAmbiguousID  = errors.New("app: id prefix matches more than one task")
)

// Service provides high-level planner operations over a synced replica.
type Service struct {
	Replica *replica.Replica
	Store   remote.Store
	Select  *selector.Selectors

	// SeedPlaceholders fills empty Most Important slots on rollover.
	SeedPlaceholders bool
	// Now is the clock; time.Now when nil.
	Now func() time.Time
}

// New wires a service around rep, which must have been built over store.
func New(store remote.Store, rep *replica.Replica) *Service {
	return &Service{
		Replica: rep,
		Store:   store,
		Select:  selector.New(rep.State()),
	}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// AddTaskOptions describe a new task. Type defaults to Other and DayID to the
// current day.
type AddTaskOptions struct {
	DayID string
	Text  string
	Notes string
	Type  task.Type
}

// AddTask creates a task and places it in a day. The returned error may wrap
// replica.ErrPersist, in which case the task exists locally.
func (s *Service) AddTask(ctx context.Context, opts AddTaskOptions) (task.Task, error) {
	text := strings.TrimSpace(opts.Text)
	notes := strings.TrimSpace(opts.Notes)
	if err := task.ValidateText(text); err != nil {
		return task.Task{}, err
	}
	if err := task.ValidateNotes(notes); err != nil {
		return task.Task{}, err
	}
	typ := opts.Type
	if typ == "" {
		typ = task.Other
	}
	if !typ.Valid() {
		return task.Task{}, fmt.Errorf("%w: unknown task type %q", task.ErrInvalid, typ)
	}

	d, err := s.resolveDay(opts.DayID)
	if err != nil {
		return task.Task{}, err
	}

	now := s.now()
	tk := task.New(text, typ, now)
	tk.Notes = notes
	err = s.Replica.Apply(ctx, replica.Changeset{
		PutTasks:    []task.Task{tk},
		PutDayTasks: []day.DayTask{day.Link(d.ID, tk.ID, now)},
	})
	return tk, err
}

func (s *Service) resolveDay(id string) (day.Day, error) {
	if id == "" {
		d, ok := s.Select.CurrentDay()
		if !ok {
			return day.Day{}, ErrNoDays
		}
		return d, nil
	}
	d, ok := s.Replica.State().Days.Get(id)
	if !ok {
		return day.Day{}, fmt.Errorf("%w: %s", ErrDayNotFound, id)
	}
	return d, nil
}

// EditTask replaces the text and/or notes of a task. Nil leaves a field alone.
func (s *Service) EditTask(ctx context.Context, id string, text, notes *string) (task.Task, error) {
	tk, err := s.FindTask(id)
	if err != nil {
		return task.Task{}, err
	}
	p := task.Patch{ID: tk.ID}
	if text != nil {
		v := strings.TrimSpace(*text)
		if err := task.ValidateText(v); err != nil {
			return task.Task{}, err
		}
		p.Text = &v
	}
	if notes != nil {
		v := strings.TrimSpace(*notes)
		if err := task.ValidateNotes(v); err != nil {
			return task.Task{}, err
		}
		p.Notes = &v
	}
	if p.Text == nil && p.Notes == nil {
		return tk, nil
	}
	p.Updated = timeutil.Ptr(s.now())
	return p.Apply(tk), s.Replica.UpdateTasks(ctx, p)
}

// ToggleComplete flips the completion of a task.
func (s *Service) ToggleComplete(ctx context.Context, id string) (task.Task, error) {
	tk, err := s.FindTask(id)
	if err != nil {
		return task.Task{}, err
	}
	toggled := tk.Toggle(s.now())
	return toggled, s.Replica.UpdateTasks(ctx, task.PatchFromToggle(toggled))
}

// DeleteTask removes a task together with every day link pointing at it.
func (s *Service) DeleteTask(ctx context.Context, id string) (task.Task, error) {
	tk, err := s.FindTask(id)
	if err != nil {
		return task.Task{}, err
	}
	var links []string
	for _, dt := range s.Replica.State().DayTasks.All() {
		if dt.TaskID == tk.ID {
			links = append(links, dt.ID)
		}
	}
	return tk, s.Replica.Apply(ctx, replica.Changeset{
		RemoveDayTasks: links,
		RemoveTasks:    []string{tk.ID},
	})
}

// MoveTask changes the category of a task. Moving into Most Important when
// the task's day already has MostCap open ones demotes the oldest open one to
// Other in the same batch. Completed tasks keep their category.
func (s *Service) MoveTask(ctx context.Context, id string, typ task.Type) (task.Task, []task.Task, error) {
	if !typ.Valid() {
		return task.Task{}, nil, fmt.Errorf("%w: unknown task type %q", task.ErrInvalid, typ)
	}
	tk, err := s.FindTask(id)
	if err != nil {
		return task.Task{}, nil, err
	}
	if tk.Type == typ {
		return tk, nil, nil
	}

	now := s.now()
	patches := []task.Patch{task.Retype(tk.ID, typ, now)}
	var demoted []task.Task
	if typ == task.Most {
		if d, ok := s.dayOf(tk.ID); ok {
			var most []task.Task
			for _, other := range s.Select.TasksForDay(d.ID) {
				if other.Type == task.Most && !other.Complete && other.ID != tk.ID {
					most = append(most, other)
				}
			}
			task.ByCreated(most)
			for i := 0; len(most)-i >= task.MostCap; i++ {
				p := task.Retype(most[i].ID, task.Other, now)
				patches = append(patches, p)
				demoted = append(demoted, p.Apply(most[i]))
			}
		}
	}
	return patches[0].Apply(tk), demoted, s.Replica.UpdateTasks(ctx, patches...)
}

// dayOf returns the newest day a task is linked to.
func (s *Service) dayOf(taskID string) (day.Day, bool) {
	st := s.Replica.State()
	var days []day.Day
	for _, dt := range st.DayTasks.All() {
		if dt.TaskID != taskID {
			continue
		}
		if d, ok := st.Days.Get(dt.DayID); ok {
			days = append(days, d)
		}
	}
	return day.Latest(days)
}

// NewDay starts a new day, carrying the open tasks of the current one.
func (s *Service) NewDay(ctx context.Context) (rollover.Result, error) {
	var current []task.Task
	if d, ok := s.Select.CurrentDay(); ok {
		current = s.Select.TasksForDay(d.ID)
	}
	res := rollover.Plan(current, s.Replica.State().Days.All(), rollover.Options{
		Now:              s.now(),
		SeedPlaceholders: s.SeedPlaceholders,
	})
	return res, s.Replica.Apply(ctx, replica.Changeset{
		PutDays:     []day.Day{res.Day},
		PutTasks:    res.Placeholders,
		PatchTasks:  res.Demoted,
		PutDayTasks: res.Links,
	})
}

// CurrentDay returns the newest day.
func (s *Service) CurrentDay() (day.Day, bool) {
	return s.Select.CurrentDay()
}

// Days lists up to limit days, newest first. limit <= 0 lists all.
func (s *Service) Days(limit int) []day.Day {
	return day.Recent(s.Replica.State().Days.All(), limit)
}

// DayView returns the tasks of a day grouped by category. An empty id means
// the current day.
func (s *Service) DayView(dayID string) (selector.DayView, error) {
	d, err := s.resolveDay(dayID)
	if err != nil {
		return selector.DayView{}, err
	}
	view, ok := s.Select.DayView(d.ID)
	if !ok {
		return selector.DayView{}, fmt.Errorf("%w: %s", ErrDayNotFound, d.ID)
	}
	return view, nil
}

// FindTask resolves an exact id or a unique id prefix.
func (s *Service) FindTask(prefix string) (task.Task, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return task.Task{}, ErrTaskNotFound
	}
	tasks := s.Replica.State().Tasks
	if tk, ok := tasks.Get(prefix); ok {
		return tk, nil
	}
	// Prefixes match case-insensitively, imported ids are mixed case.
	var matches []task.Task
	for _, tk := range tasks.All() {
		if len(tk.ID) >= len(prefix) && strings.EqualFold(tk.ID[:len(prefix)], prefix) {
			matches = append(matches, tk)
		}
	}
	switch len(matches) {
	case 0:
		return task.Task{}, fmt.Errorf("%w: %s", ErrTaskNotFound, prefix)
	case 1:
		return matches[0], nil
	}
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m.ID)
	}
	sort.Strings(ids)
	return task.Task{}, fmt.Errorf("%w: %s (%s)", ErrAmbiguousID, prefix, strings.Join(ids, ", "))
}
