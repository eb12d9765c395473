package commands

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"tableflip.dev/newday/pkg/app"
	"tableflip.dev/newday/pkg/commands/options"
	"tableflip.dev/newday/pkg/runner/edit"
)

func addEdit(topLevel *cobra.Command) {
	io := &options.IDOptions{}
	oo := &options.OutputOptions{}
	var id, text, notes string

	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Change the text or notes of a task.",
		Example: `
newday edit <task id> --text "buy oat milk"
newday edit <task id> --notes ""
`,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("requires a task id")
			}
			id = args[0]
			return oo.Validate()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			e := edit.Edit{
				ID:     id,
				ShowID: io.ShowID,
				Output: oo.Format,
			}
			if cmd.Flags().Changed("text") {
				e.Text = &text
			}
			if cmd.Flags().Changed("notes") {
				e.Notes = &notes
			}
			err := withService(cmd.Context(), func(ctx context.Context, svc *app.Service) error {
				e.Service = svc
				return e.Do(ctx)
			})
			return oo.HandleError(err)
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "New text for the task.")
	cmd.Flags().StringVarP(&notes, "notes", "n", "", "New notes for the task. Empty clears them.")
	options.AddShowIDArgs(cmd, io)
	options.AddOutputArg(cmd, oo)

	topLevel.AddCommand(cmd)
}
