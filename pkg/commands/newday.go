package commands

import (
	"context"

	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"

	"tableflip.dev/newday/pkg/app"
	"tableflip.dev/newday/pkg/commands/options"
	"tableflip.dev/newday/pkg/runner/newday"
)

func addNewDay(topLevel *cobra.Command) {
	io := &options.IDOptions{}
	oo := &options.OutputOptions{}

	cmd := &cobra.Command{
		Use:     "new-day",
		Aliases: []string{"rollover"},
		Short:   "Start a new day and carry open tasks into it.",
		Long: base.Wrap80("Start a new day. Every open task of the current day is carried into the " +
			"new one; completed tasks stay behind. Most Important keeps at most three " +
			"tasks, the rest move to Other."),
		Example: `
newday new-day
`,
		Args: cobra.NoArgs,
		PreRunE: func(_ *cobra.Command, _ []string) error {
			return oo.Validate()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			err := withService(cmd.Context(), func(ctx context.Context, svc *app.Service) error {
				n := newday.NewDay{
					Service: svc,
					ShowID:  io.ShowID,
					Output:  oo.Format,
				}
				return n.Do(ctx)
			})
			return oo.HandleError(err)
		},
	}

	options.AddShowIDArgs(cmd, io)
	options.AddOutputArg(cmd, oo)

	topLevel.AddCommand(cmd)
}
