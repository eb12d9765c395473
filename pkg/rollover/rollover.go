// Package rollover decides what a new day starts with.
package rollover

import (
	"time"

	"tableflip.dev/newday/pkg/day"
	"tableflip.dev/newday/pkg/task"
)

// Options tune a rollover.
type Options struct {
	// Now is the wall clock time of the rollover.
	Now time.Time
	// SeedPlaceholders fills empty Most Important slots with blank tasks.
	SeedPlaceholders bool
}

// Result is the set of writes a rollover produces. Applying it never deletes
// anything.
type Result struct {
	Day day.Day `json:"day" yaml:"day"`
	// Links places every carried task and placeholder in Day.
	Links []day.DayTask `json:"links" yaml:"links"`
	// Carried are the open tasks moved forward, already demoted where needed.
	Carried []task.Task `json:"carried" yaml:"carried"`
	// Demoted lists Most Important tasks over the cap that became Other.
	Demoted []task.Patch `json:"demoted,omitempty" yaml:"demoted,omitempty"`
	// Placeholders are blank Most Important tasks created for the new day.
	Placeholders []task.Task `json:"placeholders,omitempty" yaml:"placeholders,omitempty"`
}

// Plan builds a new day after days and carries the open tasks of current into
// it. current is the task set of the day being closed.
func Plan(current []task.Task, days []day.Day, opts Options) Result {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	created := now
	if latest, ok := day.Latest(days); ok && !created.After(latest.Created.Time) {
		created = latest.Created.Add(time.Millisecond)
	}
	res := Result{Day: day.NewDay(created)}

	var open []task.Task
	for _, tk := range current {
		if !tk.Complete {
			open = append(open, tk)
		}
	}
	task.ByCreated(open)

	most := 0
	for _, tk := range open {
		if tk.Type == task.Most {
			most++
			if most > task.MostCap {
				p := task.Retype(tk.ID, task.Other, now)
				res.Demoted = append(res.Demoted, p)
				tk = p.Apply(tk)
			}
		}
		res.Carried = append(res.Carried, tk)
		res.Links = append(res.Links, day.Link(res.Day.ID, tk.ID, now))
	}

	if opts.SeedPlaceholders {
		for i := most; i < task.MostCap; i++ {
			p := task.Placeholder(now)
			res.Placeholders = append(res.Placeholders, p)
			res.Links = append(res.Links, day.Link(res.Day.ID, p.ID, now))
		}
	}
	return res
}
