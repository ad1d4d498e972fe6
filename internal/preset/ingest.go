package preset

import (
	"github.com/zontasticality/egraph-vis/internal/egraph"
	"github.com/zontasticality/egraph-vis/internal/pattern"
)

// Ingest seeds g with p's root term, assigning deterministic ids by walking
// root depth-first and adding leaves before parents. Any names
// in InitialLeaves are added first, in list order, so a preset may pin a
// stable id order for leaves it wants to compare across runs; Root's walk
// then reuses those via hashcons instead of reallocating them.
func Ingest(p *Preset, g *egraph.EGraph) (egraph.NodeId, error) {
	for _, name := range p.InitialLeaves {
		if _, err := g.Add(egraph.ENode{Op: name}); err != nil {
			return 0, err
		}
	}

	var walk func(pattern.Pattern) (egraph.NodeId, error)
	walk = func(pat pattern.Pattern) (egraph.NodeId, error) {
		args := make([]egraph.NodeId, len(pat.Args))
		for i, a := range pat.Args {
			id, err := walk(a)
			if err != nil {
				return 0, err
			}
			args[i] = id
		}
		return g.Add(egraph.ENode{Op: pat.Op, Args: args})
	}

	return walk(p.Root)
}
