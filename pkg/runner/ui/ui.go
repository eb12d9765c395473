// Package ui provides the runner for the full screen planner.
package ui

import (
	"context"
	"errors"
	"os"

	"github.com/mattn/go-isatty"

	"tableflip.dev/newday/pkg/app"
	"tableflip.dev/newday/pkg/tui"
)

// ErrNoTerminal is returned when stdin or stdout is not a terminal.
var ErrNoTerminal = errors.New("ui: stdin and stdout must be a terminal")

type UI struct {
	Service *app.Service
}

func (u *UI) Do(ctx context.Context) error {
	if !isTerminal(os.Stdin.Fd()) || !isTerminal(os.Stdout.Fd()) {
		return ErrNoTerminal
	}
	return tui.Run(ctx, u.Service)
}

func isTerminal(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
