package commands

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"tableflip.dev/newday/pkg/app"
	"tableflip.dev/newday/pkg/commands/options"
	"tableflip.dev/newday/pkg/runner/remove"
)

func addRemove(topLevel *cobra.Command) {
	oo := &options.OutputOptions{}
	var ids []string

	cmd := &cobra.Command{
		Use:     "rm",
		Aliases: []string{"remove", "delete"},
		Short:   "Delete tasks.",
		Example: `
newday rm <task id> [<task id>...]
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
				r := remove.Remove{
					Service: svc,
					IDs:     ids,
					Output:  oo.Format,
				}
				return r.Do(ctx)
			})
			return oo.HandleError(err)
		},
	}

	options.AddOutputArg(cmd, oo)

	topLevel.AddCommand(cmd)
}
