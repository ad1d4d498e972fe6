package egraph

import "sort"

// resolvedParent is a parent entry after re-canonicalizing its owning class
// id and its node's args against the current union-find state.
type resolvedParent struct {
	key      string
	parentID NodeId
	node     ENode
}

// repairClass restores congruence for the class currently at canonical id:
// re-canonicalize the class's parent entries, merge any that now collide on
// the same canonical key, and rebuild the parent map from
// the result. Returns the canonical ids of any classes that were merged as
// a side effect (these need a further repair pass - Naive folds this into
// its own fixpoint loop, Deferred pushes them back onto the worklist).
//
// Shared between both strategies: Naive calls this from Merge's tail for
// every union (eager upward merging); Deferred calls it once per
// deduplicated worklist entry inside Rebuild.
func (g *EGraph) repairClass(id NodeId) ([]NodeId, error) {
	cid, err := g.uf.Find(id)
	if err != nil {
		return nil, err
	}
	class, ok := g.classes[cid]
	if !ok {
		// Already absorbed into another class earlier in this same pass.
		return nil, nil
	}

	resolved := make([]resolvedParent, 0, len(class.Parents))
	for _, pe := range class.Parents {
		// Drop the stale hashcons entry keyed by whatever this parent
		// canonicalized to last time, before recomputing it.
		staleKey := canonicalKey(pe.ENode.Op, pe.ENode.Args)
		delete(g.hashcons, staleKey)

		canonArgs, err := g.canonicalizeArgs(pe.ENode.Args)
		if err != nil {
			return nil, err
		}
		node := ENode{Op: pe.ENode.Op, Args: canonArgs}
		key := canonicalKey(node.Op, node.Args)

		parentID, err := g.uf.Find(pe.ParentID)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, resolvedParent{key: key, parentID: parentID, node: node})
	}

	sort.Slice(resolved, func(i, j int) bool {
		if resolved[i].key != resolved[j].key {
			return resolved[i].key < resolved[j].key
		}
		return resolved[i].parentID < resolved[j].parentID
	})

	newParents := make(map[string]ParentEntry, len(resolved))
	var further []NodeId

	i := 0
	for i < len(resolved) {
		j := i
		groupKey := resolved[i].key
		repID, err := g.uf.Find(resolved[i].parentID)
		if err != nil {
			return nil, err
		}
		repNode := resolved[i].node
		merged := false

		for j+1 < len(resolved) && resolved[j+1].key == groupKey {
			j++
			other, err := g.uf.Find(resolved[j].parentID)
			if err != nil {
				return nil, err
			}
			if other != repID {
				repID, err = g.unionClasses(repID, other)
				if err != nil {
					return nil, err
				}
				merged = true
			}
		}

		final, err := g.uf.Find(repID)
		if err != nil {
			return nil, err
		}
		g.hashcons[groupKey] = final
		newParents[parentMapKey(final, groupKey)] = ParentEntry{ParentID: final, ENode: repNode}
		if merged {
			further = append(further, final)
		}
		i = j + 1
	}

	// The class under repair may itself have been absorbed into one of its
	// own parents during the merges above (a self-referential term). If so,
	// fold the freshly-rebuilt parent map into the new canonical class
	// rather than discarding whatever it already accumulated via the
	// ordinary union path.
	finalCid, err := g.uf.Find(cid)
	if err != nil {
		return nil, err
	}
	if finalCid == cid {
		class.Parents = newParents
	} else if dest, ok := g.classes[finalCid]; ok {
		for k, v := range newParents {
			dest.Parents[k] = v
		}
	}

	return further, nil
}
