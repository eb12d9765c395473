package commands

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"

	"tableflip.dev/newday/pkg/app"
	"tableflip.dev/newday/pkg/commands/options"
	"tableflip.dev/newday/pkg/runner/move"
)

func addMove(topLevel *cobra.Command) {
	io := &options.IDOptions{}
	oo := &options.OutputOptions{}
	var id, typ string

	cmd := &cobra.Command{
		Use:   "move",
		Short: "Move a task to another category.",
		Long: base.Wrap80("Move a task to another category. Moving a task into Most Important when " +
			"three are already open there moves the oldest of them to Other."),
		Example: `
newday move <task id> most
newday move <task id> pdp
`,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) != 2 {
				return errors.New("requires a task id and a category")
			}
			id, typ = args[0], args[1]
			return oo.Validate()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			err := withService(cmd.Context(), func(ctx context.Context, svc *app.Service) error {
				m := move.Move{
					Service: svc,
					ID:      id,
					Type:    typ,
					ShowID:  io.ShowID,
					Output:  oo.Format,
				}
				return m.Do(ctx)
			})
			return oo.HandleError(err)
		},
	}

	options.AddShowIDArgs(cmd, io)
	options.AddOutputArg(cmd, oo)

	topLevel.AddCommand(cmd)
}
