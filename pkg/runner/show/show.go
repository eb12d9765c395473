// Package show provides the runner that prints a day.
package show

import (
	"context"
	"io"

	"github.com/fatih/color"

	"tableflip.dev/newday/pkg/app"
	"tableflip.dev/newday/pkg/printers"
	"tableflip.dev/newday/pkg/selector"
)

// Show prints the tasks of one day grouped by category.
type Show struct {
	Service *app.Service
	// DayID selects the day; the current day when empty.
	DayID  string
	ShowID bool
	Output string
	Out    io.Writer
}

// Do looks up the day and prints it.
func (s *Show) Do(_ context.Context) error {
	view, err := s.Service.DayView(s.DayID)
	if err != nil {
		return err
	}
	return Print(s.Out, view, s.ShowID, s.Output)
}

// Print renders view as text, json or yaml. A nil w prints to color.Output.
func Print(w io.Writer, view selector.DayView, showID bool, format string) error {
	if w == nil {
		w = color.Output
	}
	if format != "" && format != "text" {
		return printers.Encode(w, format, view)
	}
	pp := printers.PrettyPrint{ShowID: showID, Out: w}
	pp.NewLine()
	pp.DayView(view)
	return nil
}
