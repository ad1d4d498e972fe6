// Command egvis is a scriptable front-end to the equality-saturation core:
// it loads a preset file, drives it to completion (or one phase at a time),
// and prints or exports the resulting Timeline. It never reaches into the
// core's mutable state - only Timeline/Snapshot values - the same
// collaborator boundary the core package itself enforces.
package main

import (
	"fmt"
	"os"

	"github.com/zontasticality/egraph-vis/cmd/egvis/command"
)

func main() {
	if err := command.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
