package command

import (
	"encoding/json"
	"os"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/spf13/cobra"

	egvis "github.com/zontasticality/egraph-vis"
	"github.com/zontasticality/egraph-vis/internal/preset"
)

// runFlags are the options shared by run/step/export/watch: everything in
// egvis.RunOptions plus --only-rule, a CLI-only convenience that disables
// every rewrite rule but the named one.
type runFlags struct {
	impl         string
	iterationCap int
	debug        bool
	onlyRule     string
}

func addRunFlags(cmd *cobra.Command, f *runFlags) {
	cmd.Flags().StringVar(&f.impl, "impl", "", "override the preset's default_impl (naive|deferred)")
	cmd.Flags().IntVar(&f.iterationCap, "iteration-cap", 0, "override the preset's iteration_cap")
	cmd.Flags().BoolVar(&f.debug, "debug", false, "record phase/iteration trace events")
	cmd.Flags().StringVar(&f.onlyRule, "only-rule", "", "disable every rewrite rule except this one")
}

func (f runFlags) options() egvis.RunOptions {
	return egvis.RunOptions{DefaultImpl: f.impl, IterationCap: f.iterationCap, Debug: f.debug}
}

// loadPresetBytes reads path and, if onlyRule is set, re-encodes the preset
// with every other rewrite rule disabled. A name not found among the
// preset's rules fails with a PresetValidation error, carrying a
// fuzzy-matched suggestion in Context when one is found.
func loadPresetBytes(path string, onlyRule string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, egvis.Wrap(egvis.ErrIO, "read preset file "+path, err)
	}
	if onlyRule == "" {
		return data, nil
	}

	p, err := preset.Load(data)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(p.Rewrites))
	found := false
	for i, r := range p.Rewrites {
		names[i] = r.Name
		if r.Name == onlyRule {
			found = true
		}
	}
	if !found {
		notFound := egvis.NewPresetValidation("no rewrite rule named %q in preset %q", onlyRule, p.ID)
		if suggestion := closestRuleName(onlyRule, names); suggestion != "" {
			notFound = notFound.WithContext("suggestion", suggestion)
		}
		return nil, notFound
	}

	for i := range p.Rewrites {
		p.Rewrites[i].Enabled = p.Rewrites[i].Name == onlyRule
	}
	return json.Marshal(p)
}

// closestRuleName finds the closest rule name to a typo'd --only-rule value,
// grounded in runtime/planner.findClosestMatch.
func closestRuleName(target string, candidates []string) string {
	if len(candidates) == 0 {
		return ""
	}
	ranks := fuzzy.RankFindFold(target, candidates)
	if len(ranks) == 0 {
		return ""
	}
	return ranks[0].Target
}
