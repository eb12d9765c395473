package commands

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/newday/pkg/app"
	"tableflip.dev/newday/pkg/commands/options"
	"tableflip.dev/newday/pkg/runner/add"
)

func addAdd(topLevel *cobra.Command) {
	io := &options.IDOptions{}
	do := &options.DayOptions{}
	to := &options.TaskOptions{}
	oo := &options.OutputOptions{}
	var text string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a task to a day.",
		Example: `
newday add buy milk
newday add --type most ship the release --notes "tag after CI is green"
newday add --type quick --day <day id> reply to Sam
`,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) < 1 {
				return errors.New("requires the task text")
			}
			text = strings.Join(args, " ")
			return oo.Validate()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			err := withService(cmd.Context(), func(ctx context.Context, svc *app.Service) error {
				a := add.Add{
					Service: svc,
					Text:    text,
					Notes:   to.Notes,
					Type:    to.Type,
					DayID:   do.DayID,
					ShowID:  io.ShowID,
					Output:  oo.Format,
				}
				return a.Do(ctx)
			})
			return oo.HandleError(err)
		},
	}

	options.AddShowIDArgs(cmd, io)
	options.AddDayArgs(cmd, do)
	options.AddTypeArgs(cmd, to)
	options.AddNotesArgs(cmd, to)
	options.AddOutputArg(cmd, oo)

	topLevel.AddCommand(cmd)
}
