package command

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	egvis "github.com/zontasticality/egraph-vis"
)

// newWatchCommand re-runs a preset to halt on every save, a dev-loop for
// iterating on a rule set without re-invoking the CLI by hand.
func newWatchCommand() *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "watch <preset.json>",
		Short: "Re-run a preset to halt every time its file changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			dir := filepath.Dir(path)

			watcher, err := fsnotify.NewWatcher()
			if err != nil {
				return egvis.Wrap(egvis.ErrIO, "create file watcher", err)
			}
			defer watcher.Close()

			if err := watcher.Add(dir); err != nil {
				return egvis.Wrap(egvis.ErrIO, "watch directory "+dir, err)
			}

			runOnce := func() {
				data, err := loadPresetBytes(path, flags.onlyRule)
				if err != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), err)
					return
				}
				e := egvis.NewEngine()
				if err := e.LoadPreset(data, flags.options()); err != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), err)
					return
				}
				timeline, err := e.RunUntilHalt()
				if err != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), err)
					return
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d steps, halted %s\n", path, len(timeline.States), timeline.HaltedReason)
			}

			runOnce()
			for {
				select {
				case event, ok := <-watcher.Events:
					if !ok {
						return nil
					}
					if filepath.Clean(event.Name) != filepath.Clean(path) {
						continue
					}
					if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
						runOnce()
					}
				case err, ok := <-watcher.Errors:
					if !ok {
						return nil
					}
					fmt.Fprintln(cmd.ErrOrStderr(), err)
				}
			}
		},
	}

	addRunFlags(cmd, &flags)
	return cmd
}
