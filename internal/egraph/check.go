package egraph

import "sort"

// Violation describes a single broken invariant, for diagnostic reporting
// only - check_congruence/check_hashcons never mutate the graph.
type Violation struct {
	Kind   string
	Detail string
}

// CheckHashcons verifies invariant 2 (hashcons completeness): for every
// e-node present in any e-class, hashcons[canonical_key(enode)] must equal
// Find(containing class id).
func (g *EGraph) CheckHashcons() ([]Violation, error) {
	var violations []Violation
	for _, cid := range g.CanonicalIDs() {
		class := g.classes[cid]
		for _, n := range class.Nodes {
			canonArgs, err := g.canonicalizeArgs(n.Args)
			if err != nil {
				return nil, err
			}
			key := canonicalKey(n.Op, canonArgs)
			mapped, ok := g.hashcons[key]
			if !ok {
				violations = append(violations, Violation{
					Kind:   "hashcons_missing",
					Detail: "key " + key + " has no hashcons entry",
				})
				continue
			}
			mappedCanon, err := g.uf.Find(mapped)
			if err != nil {
				return nil, err
			}
			if mappedCanon != cid {
				violations = append(violations, Violation{
					Kind:   "hashcons_mismatch",
					Detail: "key " + key + " maps to a different class than its owner",
				})
			}
		}
	}
	sort.Slice(violations, func(i, j int) bool { return violations[i].Detail < violations[j].Detail })
	return violations, nil
}

// CheckCongruence verifies invariant 1: any two e-nodes that canonicalize to
// the same key must belong to the same e-class.
func (g *EGraph) CheckCongruence() ([]Violation, error) {
	owners := make(map[string]NodeId)
	var violations []Violation
	for _, cid := range g.CanonicalIDs() {
		class := g.classes[cid]
		for _, n := range class.Nodes {
			canonArgs, err := g.canonicalizeArgs(n.Args)
			if err != nil {
				return nil, err
			}
			key := canonicalKey(n.Op, canonArgs)
			if owner, ok := owners[key]; ok {
				if owner != cid {
					violations = append(violations, Violation{
						Kind:   "congruence_split",
						Detail: "key " + key + " appears in more than one e-class",
					})
				}
			} else {
				owners[key] = cid
			}
		}
	}
	sort.Slice(violations, func(i, j int) bool { return violations[i].Detail < violations[j].Detail })
	return violations, nil
}
