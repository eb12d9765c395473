// Package add provides the runner that adds a task to a day.
package add

import (
	"context"
	"io"

	"tableflip.dev/newday/pkg/app"
	"tableflip.dev/newday/pkg/printers"
	"tableflip.dev/newday/pkg/runner/show"
	"tableflip.dev/newday/pkg/task"
)

type Add struct {
	Service *app.Service

	Text  string
	Notes string
	// Type is a category name or alias; Other when empty.
	Type  string
	DayID string

	ShowID bool
	Output string
	Out    io.Writer
}

func (n *Add) Do(ctx context.Context) error {
	opts := app.AddTaskOptions{
		DayID: n.DayID,
		Text:  n.Text,
		Notes: n.Notes,
	}
	if n.Type != "" {
		typ, err := task.ParseType(n.Type)
		if err != nil {
			return err
		}
		opts.Type = typ
	}

	tk, err := n.Service.AddTask(ctx, opts)
	if err != nil {
		return err
	}
	if n.Output != "" && n.Output != "text" {
		return printers.Encode(n.Out, n.Output, tk)
	}

	view, err := n.Service.DayView(n.DayID)
	if err != nil {
		return err
	}
	return show.Print(n.Out, view, n.ShowID, n.Output)
}
