// Package remove provides the runner that deletes tasks.
package remove

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"

	"tableflip.dev/newday/pkg/app"
	"tableflip.dev/newday/pkg/printers"
	"tableflip.dev/newday/pkg/task"
)

// Remove deletes each task in IDs along with its day links.
type Remove struct {
	Service *app.Service
	IDs     []string

	Output string
	Out    io.Writer
}

func (r *Remove) Do(ctx context.Context) error {
	out := r.Out
	if out == nil {
		out = color.Output
	}
	removed := make([]task.Task, 0, len(r.IDs))
	for _, id := range r.IDs {
		tk, err := r.Service.FindTask(id)
		if err != nil {
			return err
		}
		if tk, err = r.Service.DeleteTask(ctx, tk.ID); err != nil {
			return err
		}
		removed = append(removed, tk)
	}
	if r.Output != "" && r.Output != "text" {
		return printers.Encode(out, r.Output, removed)
	}
	faint := color.New(color.Faint)
	for _, tk := range removed {
		_, _ = fmt.Fprintf(out, "removed %s %s\n", faint.Sprint(tk.ID), tk.Text)
	}
	return nil
}
