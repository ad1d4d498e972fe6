package command

import (
	"fmt"

	"github.com/spf13/cobra"

	egvis "github.com/zontasticality/egraph-vis"
)

func newRunCommand() *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "run <preset.json>",
		Short: "Load a preset and run it to halt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := loadPresetBytes(args[0], flags.onlyRule)
			if err != nil {
				return err
			}

			e := egvis.NewEngine()
			if err := e.LoadPreset(data, flags.options()); err != nil {
				return err
			}

			timeline, err := e.RunUntilHalt()
			if err != nil {
				return err
			}

			digest, err := timeline.Digest()
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "preset: %s\nimplementation: %s\nsteps: %d\nhalted: %s\ndigest: %s\n",
				timeline.PresetID, timeline.Implementation, len(timeline.States), timeline.HaltedReason, digest)

			if flags.debug {
				e.Tracer().WriteTo(cmd.ErrOrStderr())
			}
			return nil
		},
	}

	addRunFlags(cmd, &flags)
	return cmd
}
