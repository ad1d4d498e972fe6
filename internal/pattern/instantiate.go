package pattern

import (
	egvis "github.com/zontasticality/egraph-vis"
	"github.com/zontasticality/egraph-vis/internal/egraph"
)

// Instantiate recursively adds e-nodes for rhs, substituting variables by
// their bound canonical ids. Returns UnboundPatternVariable if rhs
// references a variable subst does not bind - this should be unreachable
// for rules that passed Validate at preset load, but Instantiate checks
// defensively since it is also reachable from direct API use.
func Instantiate(g *egraph.EGraph, ruleName string, rhs Pattern, subst Substitution) (egraph.NodeId, error) {
	if rhs.IsVariable() {
		id, ok := subst[rhs.Var]
		if !ok {
			return 0, egvis.NewUnboundPatternVariable(ruleName, rhs.Var)
		}
		return id, nil
	}

	args := make([]egraph.NodeId, len(rhs.Args))
	for i, a := range rhs.Args {
		id, err := Instantiate(g, ruleName, a, subst)
		if err != nil {
			return 0, err
		}
		args[i] = id
	}
	return g.Add(egraph.ENode{Op: rhs.Op, Args: args})
}

// ValidateRule checks that every variable appearing in rhs is bound by lhs.
// A rule introducing a fresh RHS variable has no well-defined e-class to
// bind it to, so it's rejected at load time rather than guessed at.
func ValidateRule(ruleName string, lhs, rhs Pattern) error {
	bound := make(map[string]bool)
	for _, v := range lhs.Variables() {
		bound[v] = true
	}
	for _, v := range rhs.Variables() {
		if !bound[v] {
			return egvis.NewUnboundPatternVariable(ruleName, v)
		}
	}
	return nil
}
