package commands

import (
	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"
)

var (
	verbose bool
)

func New() *cobra.Command {

	cmd := &cobra.Command{
		Use: "newday",
		Short: base.Wrap80("Plan each day around the few things that matter most. " +
			"Tasks are grouped as Most Important, Other, Quick and Pass/Delegate/Postpone, " +
			"and open tasks roll over when a new day starts."),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log sync and server activity to stderr.")

	AddCommands(cmd)
	return cmd
}

func AddCommands(topLevel *cobra.Command) {
	addUI(topLevel)
	addShow(topLevel)
	addAdd(topLevel)
	addEdit(topLevel)
	addComplete(topLevel)
	addMove(topLevel)
	addRemove(topLevel)
	addNewDay(topLevel)
	addDays(topLevel)
	addAPIKey(topLevel)
	addReport(topLevel)
	addServe(topLevel)
	addVersion(topLevel)
}
