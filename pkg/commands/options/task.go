package options

import (
	"github.com/spf13/cobra"
)

// TaskOptions
type TaskOptions struct {
	Type  string
	Notes string
}

func AddTypeArgs(cmd *cobra.Command, o *TaskOptions) {
	cmd.Flags().StringVarP(&o.Type, "type", "t", "",
		`Category of the task: most, other, quick or pdp.`)
}

func AddNotesArgs(cmd *cobra.Command, o *TaskOptions) {
	cmd.Flags().StringVarP(&o.Notes, "notes", "n", "",
		"Free-form notes for the task.")
}
