package commands

import (
	"context"

	"github.com/spf13/cobra"

	"tableflip.dev/newday/pkg/app"
	"tableflip.dev/newday/pkg/commands/options"
	"tableflip.dev/newday/pkg/runner/show"
)

func addShow(topLevel *cobra.Command) {
	io := &options.IDOptions{}
	do := &options.DayOptions{}
	oo := &options.OutputOptions{}

	cmd := &cobra.Command{
		Use:     "show",
		Aliases: []string{"today", "ls"},
		Short:   "Show the tasks of a day.",
		Example: `
newday show
newday show --day <day id> -o yaml
`,
		Args: cobra.NoArgs,
		PreRunE: func(_ *cobra.Command, _ []string) error {
			return oo.Validate()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			err := withService(cmd.Context(), func(ctx context.Context, svc *app.Service) error {
				s := show.Show{
					Service: svc,
					DayID:   do.DayID,
					ShowID:  io.ShowID,
					Output:  oo.Format,
				}
				return s.Do(ctx)
			})
			return oo.HandleError(err)
		},
	}

	options.AddShowIDArgs(cmd, io)
	options.AddDayArgs(cmd, do)
	options.AddOutputArg(cmd, oo)

	topLevel.AddCommand(cmd)
}
