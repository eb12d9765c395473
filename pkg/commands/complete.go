package commands

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"tableflip.dev/newday/pkg/app"
	"tableflip.dev/newday/pkg/commands/options"
	"tableflip.dev/newday/pkg/runner/complete"
)

func addComplete(topLevel *cobra.Command) {
	io := &options.IDOptions{}
	oo := &options.OutputOptions{}
	var ids []string

	cmd := &cobra.Command{
		Use:     "complete",
		Aliases: []string{"completed", "done", "x"},
		Short:   "Toggle completion of tasks.",
		Example: `
newday complete <task id> [<task id>...]
`,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) < 1 {
				return errors.New("requires a task id")
			}
			ids = args
			return oo.Validate()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			err := withService(cmd.Context(), func(ctx context.Context, svc *app.Service) error {
				c := complete.Complete{
					Service: svc,
					IDs:     ids,
					ShowID:  io.ShowID,
					Output:  oo.Format,
				}
				return c.Do(ctx)
			})
			return oo.HandleError(err)
		},
	}

	options.AddShowIDArgs(cmd, io)
	options.AddOutputArg(cmd, oo)

	topLevel.AddCommand(cmd)
}
