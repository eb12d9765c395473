// Package newday provides the runner that rolls the planner over to a new
// day.
package newday

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"

	"tableflip.dev/newday/pkg/app"
	"tableflip.dev/newday/pkg/printers"
	"tableflip.dev/newday/pkg/runner/show"
	"tableflip.dev/newday/pkg/task"
)

type NewDay struct {
	Service *app.Service

	ShowID bool
	Output string
	Out    io.Writer
}

func (n *NewDay) Do(ctx context.Context) error {
	res, err := n.Service.NewDay(ctx)
	if err != nil {
		return err
	}
	if n.Output != "" && n.Output != "text" {
		return printers.Encode(n.Out, n.Output, res)
	}

	out := n.Out
	if out == nil {
		out = color.Output
	}
	faint := color.New(color.Faint)
	_, _ = fmt.Fprintf(out, "Started %s\n", color.New(color.Bold).Sprint(res.Day.Label()))
	_, _ = faint.Fprintf(out, "carried %d open tasks", len(res.Carried))
	if len(res.Demoted) > 0 {
		_, _ = faint.Fprintf(out, ", %d moved out of %s", len(res.Demoted), task.Most.Title())
	}
	if len(res.Placeholders) > 0 {
		_, _ = faint.Fprintf(out, ", %d empty slots added", len(res.Placeholders))
	}
	_, _ = fmt.Fprintln(out)

	view, err := n.Service.DayView(res.Day.ID)
	if err != nil {
		return err
	}
	return show.Print(out, view, n.ShowID, n.Output)
}
