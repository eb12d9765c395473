// Package selector derives read models from the local state. Every query is
// memoized per argument and recomputed only when the tables it reads have
// changed, so repeated calls with unchanged input return the identical slice.
package selector

import (
	"sync"

	"tableflip.dev/newday/pkg/day"
	"tableflip.dev/newday/pkg/state"
	"tableflip.dev/newday/pkg/task"
)

// versions identifies the table versions a cached value was computed from.
type versions struct {
	tasks, days, dayTasks uint64
}

type entry[V any] struct {
	at    versions
	value V
}

// memo caches one value per argument. It is unbounded; the argument space is
// the handful of types and the days a client looks at.
type memo[K comparable, V any] struct {
	entries map[K]entry[V]
}

func (m *memo[K, V]) get(key K, at versions, compute func() V) V {
	if e, ok := m.entries[key]; ok && e.at == at {
		return e.value
	}
	if m.entries == nil {
		m.entries = make(map[K]entry[V])
	}
	v := compute()
	m.entries[key] = entry[V]{at: at, value: v}
	return v
}

// Section is one category of a day.
type Section struct {
	Type  task.Type   `json:"type" yaml:"type"`
	Title string      `json:"title" yaml:"title"`
	Tasks []task.Task `json:"tasks" yaml:"tasks"`
}

// DayView is a day with its tasks grouped by category.
type DayView struct {
	Day      day.Day   `json:"day" yaml:"day"`
	Sections []Section `json:"sections" yaml:"sections"`
}

// Selectors memoizes queries over one State.
type Selectors struct {
	st *state.State

	mu         sync.Mutex
	ofType     memo[task.Type, []task.Task]
	forDay     memo[string, []task.Task]
	current    memo[struct{}, currentDay]
	completion memo[bool, []task.Task]
	views      memo[string, DayView]
}

type currentDay struct {
	day day.Day
	ok  bool
}

// New returns selectors reading st.
func New(st *state.State) *Selectors {
	return &Selectors{st: st}
}

func (s *Selectors) versions() versions {
	return versions{
		tasks:    s.st.Tasks.Version(),
		days:     s.st.Days.Version(),
		dayTasks: s.st.DayTasks.Version(),
	}
}

// TasksOfType returns every task of typ, oldest first.
func (s *Selectors) TasksOfType(typ task.Type) []task.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	at := versions{tasks: s.st.Tasks.Version()}
	return s.ofType.get(typ, at, func() []task.Task {
		var out []task.Task
		for _, tk := range s.st.Tasks.All() {
			if tk.Type == typ {
				out = append(out, tk)
			}
		}
		return out
	})
}

// TasksForDay returns the tasks linked to dayID, oldest first. Links to tasks
// that no longer exist are skipped and a task linked twice appears once.
func (s *Selectors) TasksForDay(dayID string) []task.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tasksForDayLocked(dayID)
}

func (s *Selectors) tasksForDayLocked(dayID string) []task.Task {
	at := versions{tasks: s.st.Tasks.Version(), dayTasks: s.st.DayTasks.Version()}
	return s.forDay.get(dayID, at, func() []task.Task {
		linked := make(map[string]struct{})
		for _, dt := range s.st.DayTasks.All() {
			if dt.DayID == dayID {
				linked[dt.TaskID] = struct{}{}
			}
		}
		if len(linked) == 0 {
			return nil
		}
		var out []task.Task
		for _, tk := range s.st.Tasks.All() {
			if _, ok := linked[tk.ID]; ok {
				out = append(out, tk)
			}
		}
		return out
	})
}

// CurrentDay returns the most recently created day.
func (s *Selectors) CurrentDay() (day.Day, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.currentLocked()
	return c.day, c.ok
}

func (s *Selectors) currentLocked() currentDay {
	at := versions{days: s.st.Days.Version()}
	return s.current.get(struct{}{}, at, func() currentDay {
		d, ok := day.Latest(s.st.Days.All())
		return currentDay{day: d, ok: ok}
	})
}

// CompletedTasks returns every complete task.
func (s *Selectors) CompletedTasks() []task.Task {
	return s.byCompletion(true)
}

// IncompleteTasks returns every open task.
func (s *Selectors) IncompleteTasks() []task.Task {
	return s.byCompletion(false)
}

func (s *Selectors) byCompletion(complete bool) []task.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	at := versions{tasks: s.st.Tasks.Version()}
	return s.completion.get(complete, at, func() []task.Task {
		var out []task.Task
		for _, tk := range s.st.Tasks.All() {
			if tk.Complete == complete {
				out = append(out, tk)
			}
		}
		return out
	})
}

// DayView groups the tasks of dayID by category. Each group lists open tasks
// first. The bool is false when the day does not exist.
func (s *Selectors) DayView(dayID string) (DayView, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.st.Days.Get(dayID)
	if !ok {
		return DayView{}, false
	}
	return s.views.get(dayID, s.versions(), func() DayView {
		tasks := s.tasksForDayLocked(dayID)
		view := DayView{Day: d}
		for _, typ := range task.AllTypes() {
			sec := Section{Type: typ, Title: typ.Title()}
			for _, tk := range tasks {
				if tk.Type == typ {
					sec.Tasks = append(sec.Tasks, tk)
				}
			}
			task.SortForList(sec.Tasks)
			view.Sections = append(view.Sections, sec)
		}
		return view
	}), true
}

// CurrentView is DayView for the current day.
func (s *Selectors) CurrentView() (DayView, bool) {
	d, ok := s.CurrentDay()
	if !ok {
		return DayView{}, false
	}
	return s.DayView(d.ID)
}

// Section returns the tasks of typ in the view.
func (v DayView) Section(typ task.Type) []task.Task {
	for _, sec := range v.Sections {
		if sec.Type == typ {
			return sec.Tasks
		}
	}
	return nil
}
