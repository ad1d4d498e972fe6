package egraph

import "sort"

// SortedCanonicalNodes returns class's member nodes with every arg resolved
// to its current canonical id, sorted by op then lexicographically by args -
// the deterministic class-local order the pattern matcher and the snapshot
// builder both rely on.
func SortedCanonicalNodes(g *EGraph, class *EClass) ([]ENode, error) {
	out := make([]ENode, 0, len(class.Nodes))
	for _, n := range class.Nodes {
		args := make([]NodeId, len(n.Args))
		for i, a := range n.Args {
			c, err := g.Find(a)
			if err != nil {
				return nil, err
			}
			args[i] = c
		}
		out = append(out, ENode{Op: n.Op, Args: args})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Op != out[j].Op {
			return out[i].Op < out[j].Op
		}
		ai, aj := out[i].Args, out[j].Args
		for k := 0; k < len(ai) && k < len(aj); k++ {
			if ai[k] != aj[k] {
				return ai[k] < aj[k]
			}
		}
		return len(ai) < len(aj)
	})
	return out, nil
}
