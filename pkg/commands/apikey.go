package commands

import (
	"context"

	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"

	"tableflip.dev/newday/pkg/app"
	"tableflip.dev/newday/pkg/commands/options"
	"tableflip.dev/newday/pkg/runner/apikey"
)

func addAPIKey(topLevel *cobra.Command) {
	oo := &options.OutputOptions{}

	cmd := &cobra.Command{
		Use:   "apikey [status|issue|revoke]",
		Short: "Manage the key used by the ingestion API.",
		Long: base.Wrap80("Manage the key external tools use to add tasks through the ingestion " +
			"API. Only a hash of the key is stored, so an issued key is printed once."),
		Example: `
newday apikey
newday apikey issue
newday apikey revoke
`,
		ValidArgs: []string{string(apikey.Status), string(apikey.Issue), string(apikey.Revoke)},
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.MaximumNArgs(1)(cmd, args); err != nil {
				return err
			}
			return cobra.OnlyValidArgs(cmd, args)
		},
		PreRunE: func(_ *cobra.Command, _ []string) error {
			return oo.Validate()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			action := apikey.Status
			if len(args) == 1 {
				action = apikey.Action(args[0])
			}
			err := withService(cmd.Context(), func(ctx context.Context, svc *app.Service) error {
				a := apikey.APIKey{
					Service: svc,
					Action:  action,
					Output:  oo.Format,
				}
				return a.Do(ctx)
			})
			return oo.HandleError(err)
		},
	}

	options.AddOutputArg(cmd, oo)

	topLevel.AddCommand(cmd)
}
