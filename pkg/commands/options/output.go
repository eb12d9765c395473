package options

import (
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// OutputOptions
type OutputOptions struct {
	Format string
}

func AddOutputArg(cmd *cobra.Command, po *OutputOptions) {
	cmd.Flags().StringVarP(&po.Format, "output", "o", "text",
		"Output format. One of 'text', 'json' or 'yaml'.")
}

func (o *OutputOptions) Validate() error {
	switch o.Format {
	case "", "text", "json", "yaml":
		return nil
	}
	return fmt.Errorf("unknown output format %q, want text, json or yaml", o.Format)
}

// HandleError prints err as a JSON object when JSON output was requested, so
// scripts always get parseable output.
func (o *OutputOptions) HandleError(err error) error {
	if o.Format == "json" && err != nil {
		out := map[string]string{
			"error": err.Error(),
		}
		b, err := json.Marshal(out)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(color.Output, string(b))
		return nil
	}
	return err
}
