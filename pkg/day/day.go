// Package day defines Day records and the DayTask join rows that make a task
// visible in a day.
package day

import (
	"sort"
	"time"

	"tableflip.dev/newday/pkg/ident"
	"tableflip.dev/newday/pkg/timeutil"
)

// Day is one planning day. Days are never edited after creation; the current
// day is the one created last.
type Day struct {
	ID      string             `json:"id" yaml:"id"`
	Created timeutil.Timestamp `json:"created" yaml:"created"`
}

// DayTask links a task to a day. A task carried across days gets one row per
// day.
type DayTask struct {
	ID      string             `json:"id" yaml:"id"`
	DayID   string             `json:"dayId" yaml:"dayId"`
	TaskID  string             `json:"taskId" yaml:"taskId"`
	Created timeutil.Timestamp `json:"created" yaml:"created"`
}

// NewDay builds a day created at now.
func NewDay(now time.Time) Day {
	return Day{ID: ident.New(), Created: timeutil.At(now)}
}

// Link builds the row placing taskID in dayID.
func Link(dayID, taskID string, now time.Time) DayTask {
	return DayTask{ID: ident.New(), DayID: dayID, TaskID: taskID, Created: timeutil.At(now)}
}

func (d Day) Key() string              { return d.ID }
func (d Day) CreatedAt() time.Time     { return d.Created.Time }
func (d DayTask) Key() string          { return d.ID }
func (d DayTask) CreatedAt() time.Time { return d.Created.Time }

// Latest returns the day with the greatest creation time. Ties go to the
// larger id so the answer does not depend on input order.
func Latest(days []Day) (Day, bool) {
	if len(days) == 0 {
		return Day{}, false
	}
	best := days[0]
	for _, d := range days[1:] {
		if d.Created.After(best.Created.Time) || (d.Created.Equal(best.Created.Time) && d.ID > best.ID) {
			best = d
		}
	}
	return best, true
}

// Recent returns up to limit days, newest first. A limit <= 0 returns all.
func Recent(days []Day, limit int) []Day {
	out := make([]Day, len(days))
	copy(out, days)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Created.Equal(out[j].Created.Time) {
			return out[i].Created.After(out[j].Created.Time)
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Label is the human heading for a day.
func (d Day) Label() string {
	return d.Created.Local().Format("Monday, January 2, 2006")
}
