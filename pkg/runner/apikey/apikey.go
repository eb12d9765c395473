// Package apikey provides the runner that manages the ingestion API key of the
// signed in user.
package apikey

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"

	"tableflip.dev/newday/pkg/app"
	"tableflip.dev/newday/pkg/printers"
)

// Action selects what the runner does.
type Action string

const (
	Status Action = "status"
	Issue  Action = "issue"
	Revoke Action = "revoke"
)

type APIKey struct {
	Service *app.Service
	Action  Action

	Output string
	Out    io.Writer
}

type result struct {
	HasAPIKey bool   `json:"hasApiKey" yaml:"hasApiKey"`
	APIKey    string `json:"apiKey,omitempty" yaml:"apiKey,omitempty"`
}

func (a *APIKey) Do(ctx context.Context) error {
	var res result
	switch a.Action {
	case Issue:
		key, err := a.Service.IssueAPIKey(ctx)
		if err != nil {
			return err
		}
		res = result{HasAPIKey: true, APIKey: key}
	case Revoke:
		if err := a.Service.RevokeAPIKey(ctx); err != nil {
			return err
		}
	case Status, "":
		has, err := a.Service.HasAPIKey(ctx)
		if err != nil {
			return err
		}
		res.HasAPIKey = has
	default:
		return fmt.Errorf("unknown apikey action %q", a.Action)
	}

	if a.Output != "" && a.Output != "text" {
		return printers.Encode(a.Out, a.Output, res)
	}
	out := a.Out
	if out == nil {
		out = color.Output
	}
	switch {
	case res.APIKey != "":
		_, _ = fmt.Fprintln(out, res.APIKey)
		_, _ = color.New(color.FgYellow).Fprintln(out, "Store this key now, it will not be shown again.")
	case res.HasAPIKey:
		_, _ = fmt.Fprintln(out, "An API key is active.")
	default:
		_, _ = fmt.Fprintln(out, "No API key.")
	}
	return nil
}
