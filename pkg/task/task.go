// Package task defines the Task record, its categories and partial updates.
package task

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"tableflip.dev/newday/pkg/ident"
	"tableflip.dev/newday/pkg/timeutil"
)

const (
	// MaxTextLength bounds Task.Text.
	MaxTextLength = 1000
	// MaxNotesLength bounds Task.Notes.
	MaxNotesLength = 5000
)

// ErrInvalid marks user input that was rejected before any store mutation.
var ErrInvalid = errors.New("task: invalid")

// Task is a to-do item.
type Task struct {
	ID        string              `json:"id" yaml:"id"`
	Text      string              `json:"text" yaml:"text"`
	Notes     string              `json:"notes,omitempty" yaml:"notes,omitempty"`
	Created   timeutil.Timestamp  `json:"created" yaml:"created"`
	Updated   timeutil.Timestamp  `json:"updated" yaml:"updated"`
	Completed *timeutil.Timestamp `json:"completed,omitempty" yaml:"completed,omitempty"`
	Complete  bool                `json:"complete" yaml:"complete"`
	Type      Type                `json:"type" yaml:"type"`
}

// New builds an incomplete task with a fresh id.
func New(text string, typ Type, now time.Time) Task {
	return Task{
		ID:      ident.New(),
		Text:    text,
		Created: timeutil.At(now),
		Updated: timeutil.At(now),
		Type:    typ,
	}
}

// Placeholder builds a blank Most Important slot.
func Placeholder(now time.Time) Task {
	return New("", Most, now)
}

// Key returns the task id; used by the normalized tables.
func (t Task) Key() string { return t.ID }

// CreatedAt returns the creation time; used for table ordering.
func (t Task) CreatedAt() time.Time { return t.Created.Time }

// Toggle flips completion. Completing stamps Completed, reopening clears it.
func (t Task) Toggle(now time.Time) Task {
	t.Complete = !t.Complete
	if t.Complete {
		t.Completed = timeutil.Ptr(now)
	} else {
		t.Completed = nil
	}
	t.Updated = timeutil.At(now)
	return t
}

// ValidateText checks user supplied task text.
func ValidateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: text is required", ErrInvalid)
	}
	if utf8.RuneCountInString(text) > MaxTextLength {
		return fmt.Errorf("%w: text exceeds maximum length of %d characters", ErrInvalid, MaxTextLength)
	}
	return nil
}

// ValidateNotes checks user supplied notes.
func ValidateNotes(notes string) error {
	if utf8.RuneCountInString(notes) > MaxNotesLength {
		return fmt.Errorf("%w: notes exceed maximum length of %d characters", ErrInvalid, MaxNotesLength)
	}
	return nil
}

// SortForList orders tasks for display: incomplete first, then by creation.
func SortForList(tasks []Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if a.Complete != b.Complete {
			return !a.Complete
		}
		if !a.Created.Equal(b.Created.Time) {
			return a.Created.Before(b.Created.Time)
		}
		return a.ID < b.ID
	})
}

// ByCreated orders tasks oldest first.
func ByCreated(tasks []Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		if !tasks[i].Created.Equal(tasks[j].Created.Time) {
			return tasks[i].Created.Before(tasks[j].Created.Time)
		}
		return tasks[i].ID < tasks[j].ID
	})
}
