package command

import (
	"bufio"
	"fmt"

	"github.com/spf13/cobra"

	egvis "github.com/zontasticality/egraph-vis"
)

func newStepCommand() *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "step <preset.json>",
		Short: "Walk a preset run one phase boundary at a time, pausing for Enter",
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

			out := cmd.OutOrStdout()
			in := bufio.NewScanner(cmd.InOrStdin())

			for {
				snap, err := e.Step()
				if err != nil {
					return err
				}
				if snap == nil {
					break
				}
				fmt.Fprintf(out, "[%s] phase=%s classes=%d diff_events=%d\n",
					snap.ID, snap.Phase, len(snap.EClasses), len(snap.Metadata.DiffEvents))
				if snap.Phase == "done" {
					break
				}
				fmt.Fprint(out, "press Enter to continue...")
				in.Scan()
			}
			return nil
		},
	}

	addRunFlags(cmd, &flags)
	return cmd
}
