package snapshot

import (
	"fmt"
	"sort"

	"github.com/zontasticality/egraph-vis/internal/egraph"
	"github.com/zontasticality/egraph-vis/internal/saturation"
)

// Builder produces the successive Snapshots of one preset run, threading
// copy-on-write structural sharing against the previous Snapshot it built.
type Builder struct {
	presetID       string
	implementation string
	stepIndex      int

	prevUF        map[egraph.NodeId]*UFEntry
	prevClasses   map[egraph.NodeId]*EClassView
	prevHashcons  map[string]*HashconsEntry
	prevCanonical map[egraph.NodeId]bool
	prevAllocated int
}

// NewBuilder starts a fresh Builder for one (preset, implementation) run.
func NewBuilder(presetID string, implementation string) *Builder {
	return &Builder{
		presetID:       presetID,
		implementation: implementation,
		prevUF:         make(map[egraph.NodeId]*UFEntry),
		prevClasses:    make(map[egraph.NodeId]*EClassView),
		prevHashcons:   make(map[string]*HashconsEntry),
		prevCanonical:  make(map[egraph.NodeId]bool),
	}
}

// BuildInit takes the seed snapshot, immediately after preset ingestion.
func (b *Builder) BuildInit(g *egraph.EGraph) *Snapshot {
	return b.build(g, PhaseInit, Metadata{})
}

// BuildRead takes the snapshot at the end of Read, carrying the full match
// set as match_summaries (no mutation happens during Read, so no add/merge
// diff events are possible at this boundary).
func (b *Builder) BuildRead(g *egraph.EGraph, matches []saturation.Match) *Snapshot {
	return b.build(g, PhaseRead, Metadata{MatchSummaries: summarizeMatches(matches)})
}

// BuildWrite takes the snapshot after Write, attributing each applied
// rewrite as a "rewrite" diff event in addition to the structural add/merge
// events computed by comparing against the prior snapshot.
func (b *Builder) BuildWrite(g *egraph.EGraph, applied []saturation.AppliedRewrite) *Snapshot {
	snap := b.build(g, PhaseWrite, Metadata{})
	for _, a := range applied {
		snap.Metadata.DiffEvents = append(snap.Metadata.DiffEvents, DiffEvent{
			Kind:     DiffRewrite,
			RuleName: a.Match.RuleName,
			ClassID:  a.Match.ClassID,
			Merged:   a.Merged,
		})
	}
	return snap
}

// BuildRebuild takes the snapshot after Rebuild, attaching diagnostic
// invariant-check results.
func (b *Builder) BuildRebuild(g *egraph.EGraph, results []InvariantResult) *Snapshot {
	return b.build(g, PhaseRebuild, Metadata{InvariantResults: results})
}

// BuildDone takes the terminal snapshot, recording why the run halted.
func (b *Builder) BuildDone(g *egraph.EGraph, haltedReason string) *Snapshot {
	return b.build(g, PhaseDone, Metadata{HaltedReason: haltedReason})
}

func (b *Builder) build(g *egraph.EGraph, phase Phase, meta Metadata) *Snapshot {
	uf, newCanonical, addEvents := b.buildUnionFind(g)
	classes := b.buildClasses(g, newCanonical)
	hashcons := b.buildHashcons(g)
	worklist := g.WorklistIDs()

	mergeEvents := diffMerges(b.prevCanonical, newCanonical, uf)
	meta.DiffEvents = append(append(addEvents, mergeEvents...), meta.DiffEvents...)

	snap := &Snapshot{
		ID:             fmt.Sprintf("%s:%d", b.presetID, b.stepIndex),
		StepIndex:      b.stepIndex,
		Phase:          phase,
		Implementation: b.implementation,
		UnionFind:      uf,
		EClasses:       classes,
		Hashcons:       hashcons,
		Worklist:       worklist,
		Metadata:       meta,
	}

	b.stepIndex++
	b.prevCanonical = newCanonical
	b.prevAllocated = len(uf)
	b.prevUF = indexUF(uf)
	b.prevClasses = indexClasses(classes)
	b.prevHashcons = indexHashcons(hashcons)

	return snap
}

// buildUnionFind renders the union_find array, reusing *UFEntry pointers
// unchanged since the prior snapshot, and emits "add" diff events for ids
// allocated since then.
func (b *Builder) buildUnionFind(g *egraph.EGraph) ([]*UFEntry, map[egraph.NodeId]bool, []DiffEvent) {
	ids := g.AllIDs()
	out := make([]*UFEntry, len(ids))
	canonical := make(map[egraph.NodeId]bool, len(ids))
	var events []DiffEvent

	for _, id := range ids {
		c, err := g.Find(id)
		if err != nil {
			// AllIDs only ever returns ids Find accepts.
			panic(err)
		}
		entry := UFEntry{ID: id, Canonical: c, IsCanonical: c == id}
		if c == id {
			canonical[id] = true
		}
		if prev, ok := b.prevUF[id]; ok && *prev == entry {
			out[id] = prev
		} else {
			out[id] = &entry
		}
		if id >= b.prevAllocated {
			events = append(events, DiffEvent{Kind: DiffAdd, NodeID: id})
		}
	}
	return out, canonical, events
}

// buildClasses renders the eclasses array, reusing *EClassView pointers
// unchanged since the prior snapshot.
func (b *Builder) buildClasses(g *egraph.EGraph, canonical map[egraph.NodeId]bool) []*EClassView {
	worklistSet := make(map[egraph.NodeId]bool)
	for _, id := range g.WorklistIDs() {
		worklistSet[id] = true
	}

	ids := make([]egraph.NodeId, 0, len(canonical))
	for id := range canonical {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	out := make([]*EClassView, 0, len(ids))
	for _, id := range ids {
		class, ok := g.Class(id)
		if !ok {
			continue
		}
		view := renderClass(g, id, class, worklistSet[id])
		if prev, ok := b.prevClasses[id]; ok && classViewEqual(prev, view) {
			out = append(out, prev)
		} else {
			out = append(out, view)
		}
	}
	return out
}

func renderClass(g *egraph.EGraph, id egraph.NodeId, class *egraph.EClass, inWorklist bool) *EClassView {
	nodes, err := egraph.SortedCanonicalNodes(g, class)
	if err != nil {
		panic(err)
	}
	nodeViews := make([]NodeView, len(nodes))
	for i, n := range nodes {
		nodeViews[i] = NodeView{Op: n.Op, Args: n.Args}
	}

	parents := egraph.SortedParents(class)
	parentViews := make([]ParentView, len(parents))
	for i, p := range parents {
		parentViews[i] = ParentView{ParentID: p.ParentID, Node: NodeView{Op: p.ENode.Op, Args: p.ENode.Args}}
	}

	return &EClassView{ID: id, Nodes: nodeViews, Parents: parentViews, InWorklist: inWorklist}
}

// buildHashcons renders the hashcons array, reusing *HashconsEntry pointers
// unchanged since the prior snapshot.
func (b *Builder) buildHashcons(g *egraph.EGraph) []*HashconsEntry {
	hc := g.Hashcons()
	keys := make([]string, 0, len(hc))
	for k := range hc {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]*HashconsEntry, len(keys))
	for i, k := range keys {
		entry := HashconsEntry{Key: k, Canonical: hc[k]}
		if prev, ok := b.prevHashcons[k]; ok && *prev == entry {
			out[i] = prev
		} else {
			out[i] = &entry
		}
	}
	return out
}

// diffMerges compares two canonical-id sets and reports, for every id that
// was canonical before but no longer is, which class absorbed it. The
// absorbing class is read from the fresh union_find rows (uf, indexed by id)
// built in the same call to build.
func diffMerges(prevCanonical, newCanonical map[egraph.NodeId]bool, uf []*UFEntry) []DiffEvent {
	var ids []egraph.NodeId
	for id := range prevCanonical {
		if !newCanonical[id] {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	events := make([]DiffEvent, len(ids))
	for i, id := range ids {
		events[i] = DiffEvent{Kind: DiffMerge, From: id, Into: uf[id].Canonical}
	}
	return events
}

func summarizeMatches(matches []saturation.Match) []MatchSummary {
	counts := make(map[string]int)
	var order []string
	for _, m := range matches {
		if _, seen := counts[m.RuleName]; !seen {
			order = append(order, m.RuleName)
		}
		counts[m.RuleName]++
	}
	out := make([]MatchSummary, len(order))
	for i, name := range order {
		out[i] = MatchSummary{RuleName: name, Count: counts[name]}
	}
	return out
}

func classViewEqual(a, b *EClassView) bool {
	if a.ID != b.ID || a.InWorklist != b.InWorklist {
		return false
	}
	if len(a.Nodes) != len(b.Nodes) || len(a.Parents) != len(b.Parents) {
		return false
	}
	for i := range a.Nodes {
		if a.Nodes[i].Op != b.Nodes[i].Op || len(a.Nodes[i].Args) != len(b.Nodes[i].Args) {
			return false
		}
		for j := range a.Nodes[i].Args {
			if a.Nodes[i].Args[j] != b.Nodes[i].Args[j] {
				return false
			}
		}
	}
	for i := range a.Parents {
		if a.Parents[i].ParentID != b.Parents[i].ParentID || a.Parents[i].Node.Op != b.Parents[i].Node.Op {
			return false
		}
		if len(a.Parents[i].Node.Args) != len(b.Parents[i].Node.Args) {
			return false
		}
		for j := range a.Parents[i].Node.Args {
			if a.Parents[i].Node.Args[j] != b.Parents[i].Node.Args[j] {
				return false
			}
		}
	}
	return true
}

func indexUF(entries []*UFEntry) map[egraph.NodeId]*UFEntry {
	out := make(map[egraph.NodeId]*UFEntry, len(entries))
	for _, e := range entries {
		out[e.ID] = e
	}
	return out
}

func indexClasses(views []*EClassView) map[egraph.NodeId]*EClassView {
	out := make(map[egraph.NodeId]*EClassView, len(views))
	for _, v := range views {
		out[v.ID] = v
	}
	return out
}

func indexHashcons(entries []*HashconsEntry) map[string]*HashconsEntry {
	out := make(map[string]*HashconsEntry, len(entries))
	for _, e := range entries {
		out[e.Key] = e
	}
	return out
}
