package pattern

import (
	"github.com/zontasticality/egraph-vis/internal/egraph"
)

// Match finds every substitution under which pat matches some e-node in the
// e-class currently at classID (which is canonicalized first). A variable
// pattern matches every e-node in the class, binding (or consistency-
// checking) that variable to the class's canonical id. A structural pattern
// matches the subset of member e-nodes whose op and arity agree, recursing
// into each argument position and inner-joining the per-position
// substitutions so a variable reused within the pattern must bind
// consistently.
func Match(g *egraph.EGraph, pat Pattern, classID egraph.NodeId) ([]Substitution, error) {
	canon, err := g.Find(classID)
	if err != nil {
		return nil, err
	}

	if pat.IsVariable() {
		return []Substitution{{pat.Var: canon}}, nil
	}

	class, ok := g.Class(canon)
	if !ok {
		return nil, nil
	}

	nodes, err := egraph.SortedCanonicalNodes(g, class)
	if err != nil {
		return nil, err
	}

	var results []Substitution
	for _, n := range nodes {
		if n.Op != pat.Op || len(n.Args) != len(pat.Args) {
			continue
		}

		combos := []Substitution{{}}
		for i, argPat := range pat.Args {
			argMatches, err := Match(g, argPat, n.Args[i])
			if err != nil {
				return nil, err
			}
			if len(argMatches) == 0 {
				combos = nil
				break
			}
			var next []Substitution
			for _, base := range combos {
				for _, m := range argMatches {
					if merged, ok := join(base, m); ok {
						next = append(next, merged)
					}
				}
			}
			combos = next
			if len(combos) == 0 {
				break
			}
		}
		results = append(results, combos...)
	}

	return results, nil
}
