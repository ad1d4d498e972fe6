package command

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	egvis "github.com/zontasticality/egraph-vis"
)

func newExportCommand() *cobra.Command {
	var flags runFlags
	var format string

	cmd := &cobra.Command{
		Use:   "export <preset.json> <out-file>",
		Short: "Run a preset to halt and write its timeline to a file",
		Args:  cobra.ExactArgs(2),
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

			var encoded []byte
			switch format {
			case "cbor":
				encoded, err = timeline.EncodeCBOR()
			case "json":
				encoded, err = json.MarshalIndent(timeline, "", "  ")
				if err != nil {
					err = egvis.Wrap(egvis.ErrEncode, "encode timeline as JSON", err)
				}
			default:
				return egvis.New(egvis.ErrIO, "unknown export format "+format+" (want cbor or json)")
			}
			if err != nil {
				return err
			}

			if err := os.WriteFile(args[1], encoded, 0o644); err != nil {
				return egvis.Wrap(egvis.ErrIO, "write timeline export "+args[1], err)
			}
			return nil
		},
	}

	addRunFlags(cmd, &flags)
	cmd.Flags().StringVar(&format, "format", "cbor", "export format: cbor or json")
	return cmd
}
