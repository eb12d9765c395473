package commands

import (
	"context"

	"github.com/spf13/cobra"

	"tableflip.dev/newday/pkg/app"
	"tableflip.dev/newday/pkg/commands/options"
	"tableflip.dev/newday/pkg/runner/days"
)

func addDays(topLevel *cobra.Command) {
	oo := &options.OutputOptions{}
	limit := 10

	cmd := &cobra.Command{
		Use:   "days",
		Short: "List recent days, newest first.",
		Example: `
newday days
newday days --limit 0 -o json
`,
		Args: cobra.NoArgs,
		PreRunE: func(_ *cobra.Command, _ []string) error {
			return oo.Validate()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			err := withService(cmd.Context(), func(ctx context.Context, svc *app.Service) error {
				d := days.Days{
					Service: svc,
					Limit:   limit,
					Output:  oo.Format,
				}
				return d.Do(ctx)
			})
			return oo.HandleError(err)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", limit, "How many days to list. 0 lists all.")
	options.AddOutputArg(cmd, oo)

	topLevel.AddCommand(cmd)
}
