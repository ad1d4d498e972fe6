package command

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	egvis "github.com/zontasticality/egraph-vis"
	"github.com/zontasticality/egraph-vis/internal/preset"
)

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <preset.json>",
		Short: "Validate a preset without running it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return egvis.Wrap(egvis.ErrIO, "read preset file "+args[0], err)
			}
			p, err := preset.Load(data)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: preset %q (%d rewrite rules)\n", p.ID, len(p.Rewrites))
			return nil
		},
	}
}
