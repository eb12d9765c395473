// Package edit provides the runner that rewrites a task's text or notes.
package edit

import (
	"context"
	"errors"
	"io"

	"tableflip.dev/newday/pkg/app"
	"tableflip.dev/newday/pkg/printers"
)

// Edit changes the text and/or notes of the task matching ID. Nil fields are
// left alone.
type Edit struct {
	Service *app.Service
	ID      string
	Text    *string
	Notes   *string

	ShowID bool
	Output string
	Out    io.Writer
}

func (e *Edit) Do(ctx context.Context) error {
	if e.Text == nil && e.Notes == nil {
		return errors.New("nothing to edit, pass --text or --notes")
	}
	tk, err := e.Service.FindTask(e.ID)
	if err != nil {
		return err
	}
	tk, err = e.Service.EditTask(ctx, tk.ID, e.Text, e.Notes)
	if err != nil {
		return err
	}
	if e.Output != "" && e.Output != "text" {
		return printers.Encode(e.Out, e.Output, tk)
	}
	pp := printers.PrettyPrint{ShowID: e.ShowID, Out: e.Out}
	pp.TitleWithCount(tk.Type.Title(), 1)
	pp.Tasks(tk)
	return nil
}
