package egraph

import (
	"sort"

	"github.com/zontasticality/egraph-vis/internal/invariant"
	"github.com/zontasticality/egraph-vis/internal/unionfind"
)

// Strategy selects which invariant-maintenance discipline an EGraph uses.
// Naive and Deferred share every type and the Add/Find code path; they
// differ only in Merge's tail and in whether Rebuild performs work - a
// strategy tag and a state-owned worklist, not type-level polymorphism.
type Strategy int

const (
	Naive Strategy = iota
	Deferred
)

func (s Strategy) String() string {
	if s == Naive {
		return "naive"
	}
	return "deferred"
}

// EGraph owns the union-find, the hash-consed term store, and the e-class
// table with its parent index. Callers observe it through Find, the
// diagnostic checks, and the read accessors (Class, Hashcons, ...) used by
// the pattern matcher and the snapshot builder; Class and Hashcons return
// the graph's own internal state, which callers must not mutate.
type EGraph struct {
	strategy Strategy
	uf       *unionfind.UnionFind
	classes  map[NodeId]*EClass
	hashcons map[string]NodeId
	worklist map[NodeId]struct{}
}

// New creates an empty EGraph using the given strategy.
func New(strategy Strategy) *EGraph {
	return &EGraph{
		strategy: strategy,
		uf:       unionfind.New(),
		classes:  make(map[NodeId]*EClass),
		hashcons: make(map[string]NodeId),
		worklist: make(map[NodeId]struct{}),
	}
}

// Strategy reports the graph's invariant-maintenance strategy.
func (g *EGraph) Strategy() Strategy { return g.strategy }

// Find returns the canonical representative of id.
func (g *EGraph) Find(id NodeId) (NodeId, error) {
	return g.uf.Find(id)
}

// canonicalizeArgs resolves every arg to its current canonical id.
func (g *EGraph) canonicalizeArgs(args []NodeId) ([]NodeId, error) {
	out := make([]NodeId, len(args))
	for i, a := range args {
		c, err := g.uf.Find(a)
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}

// Add canonicalizes n's args, hashcons-deduplicates, and otherwise allocates
// a fresh singleton class, registering a parent-map entry in every child
// class. Returns the (already-canonical) id of the containing class.
func (g *EGraph) Add(n ENode) (NodeId, error) {
	canonArgs, err := g.canonicalizeArgs(n.Args)
	if err != nil {
		return 0, err
	}
	canon := ENode{Op: n.Op, Args: canonArgs}
	key := canonicalKey(canon.Op, canon.Args)

	if existing, ok := g.hashcons[key]; ok {
		return g.uf.Find(existing)
	}

	id := g.uf.Len()
	g.uf.MakeSet(id)
	g.classes[id] = newEClass(canon)
	g.hashcons[key] = id

	for _, child := range canonArgs {
		childClass, ok := g.classes[child]
		invariant.Precondition(ok, "Add: canonicalized arg %d has no e-class", child)
		childClass.Parents[parentMapKey(id, key)] = ParentEntry{ParentID: id, ENode: canon}
	}

	invariant.Postcondition(g.uf.Len() == id+1, "Add must allocate exactly one fresh id")
	return id, nil
}

// Merge unions a and b's e-classes. A no-op (no union-find mutation, no
// worklist entry) when they are already equivalent - including merge(a, a).
// In the Naive strategy, congruence is restored eagerly before Merge
// returns; in Deferred, the new canonical id is queued for the next
// Rebuild.
func (g *EGraph) Merge(a, b NodeId) (NodeId, error) {
	fa, err := g.uf.Find(a)
	if err != nil {
		return 0, err
	}
	fb, err := g.uf.Find(b)
	if err != nil {
		return 0, err
	}
	if fa == fb {
		return fa, nil
	}

	winner, err := g.unionClasses(fa, fb)
	if err != nil {
		return 0, err
	}

	switch g.strategy {
	case Naive:
		if err := g.runToFixpoint([]NodeId{winner}); err != nil {
			return 0, err
		}
	case Deferred:
		g.worklist[winner] = struct{}{}
	}
	return g.uf.Find(winner)
}

// unionClasses performs the raw union: union-find merge, node-list
// concatenation, and parent-map concatenation. It never repairs congruence
// itself - callers (Merge, repairClass) decide when and how to propagate.
func (g *EGraph) unionClasses(a, b NodeId) (NodeId, error) {
	invariant.Precondition(a != b, "unionClasses requires two distinct classes")

	winner, err := g.uf.Union(a, b)
	if err != nil {
		return 0, err
	}
	loser := a
	if winner == a {
		loser = b
	}

	wc, ok := g.classes[winner]
	invariant.Precondition(ok, "unionClasses: winner %d has no e-class", winner)
	lc, ok := g.classes[loser]
	invariant.Precondition(ok, "unionClasses: loser %d has no e-class", loser)

	wc.Nodes = append(wc.Nodes, lc.Nodes...)
	for k, v := range lc.Parents {
		if _, exists := wc.Parents[k]; !exists {
			wc.Parents[k] = v
		}
	}
	delete(g.classes, loser)

	return winner, nil
}

// Rebuild drains and repairs the worklist to a fixed point. A declared
// no-op for Naive, which maintains congruence eagerly inside Merge - it
// still exists so callers may call it uniformly and snapshot emission
// remains symmetric across strategies.
func (g *EGraph) Rebuild() error {
	if g.strategy != Deferred {
		return nil
	}
	for len(g.worklist) > 0 {
		ids := g.drainWorklistDeduped()
		var next []NodeId
		for _, id := range ids {
			further, err := g.repairClass(id)
			if err != nil {
				return err
			}
			next = append(next, further...)
		}
		g.worklist = make(map[NodeId]struct{})
		for _, id := range next {
			g.worklist[id] = struct{}{}
		}
	}
	return nil
}

// drainWorklistDeduped empties the worklist, canonicalizing each id via Find
// to deduplicate - the key efficiency of batching Deferred repairs.
func (g *EGraph) drainWorklistDeduped() []NodeId {
	seen := make(map[NodeId]bool, len(g.worklist))
	ids := make([]NodeId, 0, len(g.worklist))
	for id := range g.worklist {
		c, err := g.uf.Find(id)
		invariant.ExpectNoError(err, "worklist must only ever contain previously-valid ids")
		if !seen[c] {
			seen[c] = true
			ids = append(ids, c)
		}
	}
	g.worklist = make(map[NodeId]struct{})
	sort.Ints(ids)
	return ids
}

// runToFixpoint drives repairClass to quiescence starting from seed ids -
// the Naive strategy's eager equivalent of Rebuild's worklist loop.
func (g *EGraph) runToFixpoint(seed []NodeId) error {
	pending := seed
	for len(pending) > 0 {
		seen := make(map[NodeId]bool, len(pending))
		var ids []NodeId
		for _, id := range pending {
			c, err := g.uf.Find(id)
			if err != nil {
				return err
			}
			if !seen[c] {
				seen[c] = true
				ids = append(ids, c)
			}
		}
		sort.Ints(ids)
		var next []NodeId
		for _, id := range ids {
			further, err := g.repairClass(id)
			if err != nil {
				return err
			}
			next = append(next, further...)
		}
		pending = next
	}
	return nil
}

// WorklistIDs returns the current Deferred worklist, canonicalized,
// deduplicated, and sorted ascending - used by the snapshot builder.
func (g *EGraph) WorklistIDs() []NodeId {
	seen := make(map[NodeId]bool, len(g.worklist))
	ids := make([]NodeId, 0, len(g.worklist))
	for id := range g.worklist {
		c, err := g.uf.Find(id)
		invariant.ExpectNoError(err, "worklist must only ever contain previously-valid ids")
		if !seen[c] {
			seen[c] = true
			ids = append(ids, c)
		}
	}
	sort.Ints(ids)
	return ids
}

// AllIDs returns every id ever allocated, ascending.
func (g *EGraph) AllIDs() []NodeId {
	n := g.uf.Len()
	ids := make([]NodeId, n)
	for i := 0; i < n; i++ {
		ids[i] = i
	}
	return ids
}

// Class returns the e-class stored at canonical id, or (nil, false) if id is
// not itself canonical (it has been fused into another class).
func (g *EGraph) Class(canonicalID NodeId) (*EClass, bool) {
	c, ok := g.classes[canonicalID]
	return c, ok
}

// CanonicalIDs returns every currently-canonical class id, ascending.
func (g *EGraph) CanonicalIDs() []NodeId {
	ids := make([]NodeId, 0, len(g.classes))
	for id := range g.classes {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Hashcons returns the current canonical-key -> class-id map. Callers must
// not mutate the returned map.
func (g *EGraph) Hashcons() map[string]NodeId {
	return g.hashcons
}
