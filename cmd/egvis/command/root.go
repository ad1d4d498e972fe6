// Package command builds the egvis CLI's cobra command tree: a thin,
// scriptable front-end that only ever touches Timeline/Snapshot values,
// never the core's mutable state.
package command

import "github.com/spf13/cobra"

// NewRootCommand assembles the egvis command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "egvis",
		Short: "Drive and inspect equality-saturation preset runs",
	}

	root.AddCommand(newRunCommand())
	root.AddCommand(newValidateCommand())
	root.AddCommand(newStepCommand())
	root.AddCommand(newExportCommand())
	root.AddCommand(newWatchCommand())

	return root
}
