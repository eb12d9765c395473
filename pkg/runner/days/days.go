// Package days provides the runner that lists recent days.
package days

import (
	"context"
	"io"

	"tableflip.dev/newday/pkg/app"
	"tableflip.dev/newday/pkg/printers"
)

type Days struct {
	Service *app.Service
	// Limit caps the listing; all days when <= 0.
	Limit int

	Output string
	Out    io.Writer
}

func (d *Days) Do(_ context.Context) error {
	days := d.Service.Days(d.Limit)
	if d.Output != "" && d.Output != "text" {
		return printers.Encode(d.Out, d.Output, days)
	}
	current := ""
	if cur, ok := d.Service.CurrentDay(); ok {
		current = cur.ID
	}
	pp := printers.PrettyPrint{Out: d.Out}
	pp.Days(days, current)
	return nil
}
