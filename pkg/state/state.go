package state

import (
	"sync"

	"tableflip.dev/newday/pkg/day"
	"tableflip.dev/newday/pkg/task"
)

// State bundles the three per-user tables.
type State struct {
	Tasks    *Table[task.Task]
	Days     *Table[day.Day]
	DayTasks *Table[day.DayTask]

	mu   sync.Mutex
	subs map[int]chan struct{}
	next int
}

// New returns empty tables.
func New() *State {
	s := &State{subs: make(map[int]chan struct{})}
	s.Tasks = NewTable[task.Task](s.broadcast)
	s.Days = NewTable[day.Day](s.broadcast)
	s.DayTasks = NewTable[day.DayTask](s.broadcast)
	return s
}

// Subscribe returns a channel that receives a tick after mutations. Ticks are
// coalesced: a slow reader sees one pending tick, not one per change. Call the
// returned func to stop receiving; the channel is closed.
func (s *State) Subscribe() (<-chan struct{}, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.next
	s.next++
	ch := make(chan struct{}, 1)
	s.subs[id] = ch
	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
}

// Clear empties every table; used when the signed in user goes away.
func (s *State) Clear() {
	s.Tasks.SetAll(nil)
	s.Days.SetAll(nil)
	s.DayTasks.SetAll(nil)
}

func (s *State) broadcast() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
