// Package report provides the runner that lists recently completed tasks.
package report

import (
	"context"
	"io"
	"time"

	"tableflip.dev/newday/pkg/app"
	"tableflip.dev/newday/pkg/printers"
	"tableflip.dev/newday/pkg/timeutil"
)

type Report struct {
	Service *app.Service
	// Last is a window like "3d" or "1w2d".
	Last string

	Output string
	Out    io.Writer
}

func (r *Report) Do(_ context.Context) error {
	window, err := timeutil.ParseWindow(r.Last)
	if err != nil {
		return err
	}
	until := time.Now()
	if r.Service.Now != nil {
		until = r.Service.Now()
	}
	res := r.Service.Report(until.Add(-window), until)

	if r.Output != "" && r.Output != "text" {
		return printers.Encode(r.Out, r.Output, res)
	}
	pp := printers.PrettyPrint{Out: r.Out}
	pp.Report(res)
	return nil
}
