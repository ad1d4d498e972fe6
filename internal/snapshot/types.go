// Package snapshot builds the immutable, deterministically-ordered views of
// an e-graph emitted at every phase boundary, and assembles them into a
// Timeline a viewer can render or replay.
package snapshot

import "github.com/zontasticality/egraph-vis/internal/egraph"

// Phase names the point in the saturation cycle a Snapshot was taken at.
// Init and Done bracket the saturation.Phase values with the seed state and
// the terminal state.
type Phase string

const (
	PhaseInit    Phase = "init"
	PhaseRead    Phase = "read"
	PhaseWrite   Phase = "write"
	PhaseRebuild Phase = "rebuild"
	PhaseDone    Phase = "done"
)

// UFEntry is one row of a snapshot's union_find array.
type UFEntry struct {
	ID          egraph.NodeId `json:"id" cbor:"id"`
	Canonical   egraph.NodeId `json:"canonical" cbor:"canonical"`
	IsCanonical bool          `json:"is_canonical" cbor:"is_canonical"`
}

// NodeView is one e-node with its args already canonicalized.
type NodeView struct {
	Op   string          `json:"op" cbor:"op"`
	Args []egraph.NodeId `json:"args" cbor:"args"`
}

// ParentView summarizes one parent-pointer entry: the canonical id of the
// class that owns the application, and the application itself.
type ParentView struct {
	ParentID egraph.NodeId `json:"parent_id" cbor:"parent_id"`
	Node     NodeView      `json:"node" cbor:"node"`
}

// EClassView is one e-class's view-model row.
type EClassView struct {
	ID         egraph.NodeId `json:"id" cbor:"id"`
	Nodes      []NodeView    `json:"nodes" cbor:"nodes"`
	Parents    []ParentView  `json:"parents" cbor:"parents"`
	InWorklist bool          `json:"in_worklist" cbor:"in_worklist"`
}

// HashconsEntry is one row of a snapshot's hashcons array.
type HashconsEntry struct {
	Key       string        `json:"key" cbor:"key"`
	Canonical egraph.NodeId `json:"canonical" cbor:"canonical"`
}

// DiffKind types one entry of a snapshot's diff-event log.
type DiffKind string

const (
	DiffAdd     DiffKind = "add"
	DiffMerge   DiffKind = "merge"
	DiffRewrite DiffKind = "rewrite"
)

// DiffEvent is one change attributed between the prior snapshot and this one.
type DiffEvent struct {
	Kind DiffKind `json:"kind" cbor:"kind"`
	// NodeID is set for "add": the newly-allocated id.
	NodeID egraph.NodeId `json:"node_id,omitempty" cbor:"node_id,omitempty"`
	// From/Into are set for "merge": From's class was absorbed into Into's.
	From egraph.NodeId `json:"from,omitempty" cbor:"from,omitempty"`
	Into egraph.NodeId `json:"into,omitempty" cbor:"into,omitempty"`
	// RuleName/ClassID are set for "rewrite": which rule fired over which
	// class, and whether it produced a merge.
	RuleName string        `json:"rule_name,omitempty" cbor:"rule_name,omitempty"`
	ClassID  egraph.NodeId `json:"class_id,omitempty" cbor:"class_id,omitempty"`
	Merged   bool          `json:"merged,omitempty" cbor:"merged,omitempty"`
}

// MatchSummary tallies how many substitutions each rule produced during the
// Read phase that preceded this snapshot.
type MatchSummary struct {
	RuleName string `json:"rule_name" cbor:"rule_name"`
	Count    int    `json:"count" cbor:"count"`
}

// InvariantResult mirrors one egraph.Violation found by a diagnostic check
// run at snapshot time (Rebuild boundaries only - see Builder.BuildRebuild).
type InvariantResult struct {
	Kind   string `json:"kind" cbor:"kind"`
	Detail string `json:"detail" cbor:"detail"`
}

// Metadata carries everything about a snapshot that isn't the e-graph's
// shape: what changed since the prior snapshot, what Read found, what the
// diagnostic checks reported, and (at Done) why the run halted.
type Metadata struct {
	DiffEvents       []DiffEvent       `json:"diff_events" cbor:"diff_events"`
	MatchSummaries   []MatchSummary    `json:"match_summaries,omitempty" cbor:"match_summaries,omitempty"`
	InvariantResults []InvariantResult `json:"invariant_results,omitempty" cbor:"invariant_results,omitempty"`
	SelectionHints   []egraph.NodeId   `json:"selection_hints,omitempty" cbor:"selection_hints,omitempty"`
	HaltedReason     string            `json:"halted_reason,omitempty" cbor:"halted_reason,omitempty"`
}

// Snapshot is an immutable view of the e-graph at one phase boundary. Its
// three big arrays are built by Builder with copy-on-write structural
// sharing: a row unchanged since the prior snapshot is the same *UFEntry /
// *EClassView / *HashconsEntry pointer, so a viewer may use pointer equality
// as a fast path before falling back to a deep comparison.
type Snapshot struct {
	ID             string           `json:"id" cbor:"id"`
	StepIndex      int              `json:"step_index" cbor:"step_index"`
	Phase          Phase            `json:"phase" cbor:"phase"`
	Implementation string           `json:"implementation" cbor:"implementation"`
	UnionFind      []*UFEntry       `json:"union_find" cbor:"union_find"`
	EClasses       []*EClassView    `json:"eclasses" cbor:"eclasses"`
	Hashcons       []*HashconsEntry `json:"hashcons" cbor:"hashcons"`
	Worklist       []egraph.NodeId  `json:"worklist" cbor:"worklist"`
	Metadata       Metadata         `json:"metadata" cbor:"metadata"`
}
