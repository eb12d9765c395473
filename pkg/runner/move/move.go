// Package move provides the runner that changes a task's category.
package move

import (
	"context"
	"io"

	"github.com/fatih/color"

	"tableflip.dev/newday/pkg/app"
	"tableflip.dev/newday/pkg/printers"
	"tableflip.dev/newday/pkg/task"
)

type Move struct {
	Service *app.Service
	ID      string
	Type    string

	ShowID bool
	Output string
	Out    io.Writer
}

type result struct {
	Task    task.Task   `json:"task" yaml:"task"`
	Demoted []task.Task `json:"demoted,omitempty" yaml:"demoted,omitempty"`
}

func (m *Move) Do(ctx context.Context) error {
	typ, err := task.ParseType(m.Type)
	if err != nil {
		return err
	}
	tk, err := m.Service.FindTask(m.ID)
	if err != nil {
		return err
	}
	moved, demoted, err := m.Service.MoveTask(ctx, tk.ID, typ)
	if err != nil {
		return err
	}
	if m.Output != "" && m.Output != "text" {
		return printers.Encode(m.Out, m.Output, result{Task: moved, Demoted: demoted})
	}

	out := m.Out
	if out == nil {
		out = color.Output
	}
	pp := printers.PrettyPrint{ShowID: m.ShowID, Out: out}
	pp.TitleWithCount(typ.Title(), 1)
	pp.Tasks(moved)
	if len(demoted) > 0 {
		_, _ = color.New(color.FgYellow).Fprintf(out, "%s is full, moved to %s:\n", task.Most.Title(), task.Other.Title())
		pp.Tasks(demoted...)
	}
	return nil
}
