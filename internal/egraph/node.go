// Package egraph implements the hash-consed, congruence-closed e-graph at
// the heart of the equality-saturation core: TermStore/hashcons, the e-class
// table and parent index, and both invariant-maintenance strategies (Naive
// eager upward merging, Deferred worklist + repair) behind one shared
// repair routine, per the "strategy polymorphism" design note.
package egraph

import (
	"sort"
	"strconv"
	"strings"
)

// NodeId is an opaque, monotonically-assigned identifier. An id is canonical
// when Find(id) == id.
type NodeId = int

// ENode is a function application op(args...).  Two e-nodes are structurally
// equal when Op matches and Args match element-wise; equality here is never
// canonicalized implicitly - callers canonicalize via Find when it matters.
type ENode struct {
	Op   string
	Args []NodeId
}

// Clone returns a copy of n with its own backing array, so callers may
// safely mutate the returned args without aliasing the original node.
func (n ENode) Clone() ENode {
	args := make([]NodeId, len(n.Args))
	copy(args, n.Args)
	return ENode{Op: n.Op, Args: args}
}

// canonicalKey derives the deterministic hashcons/parent-map key for an
// e-node whose Args are assumed already canonicalized by the caller.
func canonicalKey(op string, args []NodeId) string {
	var b strings.Builder
	b.WriteString(op)
	b.WriteByte('(')
	for i, a := range args {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(a))
	}
	b.WriteByte(')')
	return b.String()
}

// ParentEntry records that ENode (an application with the owning class as
// one of its arguments) lives in the class identified by ParentID.
type ParentEntry struct {
	ParentID NodeId
	ENode    ENode
}

// parentMapKey combines a parent's canonical id and its canonical key so
// structurally equal parent records are deduplicated by value, not by
// reference identity (see spec design note on parent tracking).
func parentMapKey(parentID NodeId, key string) string {
	return strconv.Itoa(parentID) + "|" + key
}

// EClass is named by its canonical NodeId. Nodes are stored as they looked
// at insertion time, not re-canonicalized by merges or repairs; callers
// canonicalize args via Find when they need the current picture (e.g. when
// building a snapshot).
type EClass struct {
	Nodes   []ENode
	Parents map[string]ParentEntry
}

func newEClass(n ENode) *EClass {
	return &EClass{
		Nodes:   []ENode{n},
		Parents: make(map[string]ParentEntry),
	}
}

// sortedParentKeys returns a class's parent-map keys in ascending order,
// the deterministic iteration order required throughout the core.
func sortedParentKeys(parents map[string]ParentEntry) []string {
	keys := make([]string, 0, len(parents))
	for k := range parents {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// CanonicalKey is the exported form of canonicalKey, for callers (the
// pattern matcher, the snapshot builder) that need to derive a node's
// current hashcons/parent-map key without reaching into package internals.
func CanonicalKey(op string, args []NodeId) string {
	return canonicalKey(op, args)
}

// SortedParents returns class's parent entries in ascending parent-map key
// order, the deterministic order the snapshot builder renders them in.
func SortedParents(class *EClass) []ParentEntry {
	keys := sortedParentKeys(class.Parents)
	out := make([]ParentEntry, len(keys))
	for i, k := range keys {
		out[i] = class.Parents[k]
	}
	return out
}
