// Package complete provides the runner logic for toggling task completion.
package complete

import (
	"context"
	"io"

	"tableflip.dev/newday/pkg/app"
	"tableflip.dev/newday/pkg/printers"
	"tableflip.dev/newday/pkg/runner/show"
	"tableflip.dev/newday/pkg/task"
)

// Complete toggles each task in IDs. Ids may be unique prefixes.
type Complete struct {
	Service *app.Service
	IDs     []string

	ShowID bool
	Output string
	Out    io.Writer
}

// Do toggles the configured tasks then prints the current day.
func (n *Complete) Do(ctx context.Context) error {
	toggled := make([]task.Task, 0, len(n.IDs))
	for _, id := range n.IDs {
		tk, err := n.Service.FindTask(id)
		if err != nil {
			return err
		}
		if tk, err = n.Service.ToggleComplete(ctx, tk.ID); err != nil {
			return err
		}
		toggled = append(toggled, tk)
	}
	if n.Output != "" && n.Output != "text" {
		return printers.Encode(n.Out, n.Output, toggled)
	}

	view, err := n.Service.DayView("")
	if err != nil {
		return err
	}
	return show.Print(n.Out, view, n.ShowID, n.Output)
}
