package commands

import (
	"context"

	"github.com/spf13/cobra"

	"tableflip.dev/newday/pkg/app"
	"tableflip.dev/newday/pkg/commands/options"
	"tableflip.dev/newday/pkg/runner/report"
	"tableflip.dev/newday/pkg/timeutil"
)

func addReport(topLevel *cobra.Command) {
	oo := &options.OutputOptions{}
	var last string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Display recently completed tasks grouped by category",
		Long: `Report lists completed tasks grouped by category within the specified time window.

Examples:
  newday report
  newday report --last 3d
  newday report --last 1w2d`,
		Args: cobra.NoArgs,
		PreRunE: func(_ *cobra.Command, _ []string) error {
			return oo.Validate()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			err := withService(cmd.Context(), func(ctx context.Context, svc *app.Service) error {
				r := report.Report{
					Service: svc,
					Last:    last,
					Output:  oo.Format,
				}
				return r.Do(ctx)
			})
			return oo.HandleError(err)
		},
	}

	cmd.Flags().StringVar(&last, "last", timeutil.DefaultWindow, "time window to include (for example 3d, 1w)")
	options.AddOutputArg(cmd, oo)

	topLevel.AddCommand(cmd)
}
