// Package unionfind implements a disjoint-set over dense non-negative
// integer ids, with path compression and union by rank.
package unionfind

import (
	egvis "github.com/zontasticality/egraph-vis"
	"github.com/zontasticality/egraph-vis/internal/invariant"
)

// UnionFind is a disjoint-set forest over ids in [0, N). Ids are never
// removed once made; MakeSet only ever appends.
type UnionFind struct {
	parent []int
	rank   []int
}

// New returns an empty UnionFind with no sets.
func New() *UnionFind {
	return &UnionFind{}
}

// Len reports the number of ids ever allocated via MakeSet.
func (u *UnionFind) Len() int {
	return len(u.parent)
}

// MakeSet allocates a new singleton set. The caller must allocate ids
// densely starting at 0 (TermStore's contract) - MakeSet panics if id does
// not equal the next dense id, since a gap would mean the caller and the
// union-find have diverged on id allocation.
func (u *UnionFind) MakeSet(id int) {
	invariant.Precondition(id == len(u.parent), "MakeSet must be called with the next dense id %d, got %d", len(u.parent), id)
	u.parent = append(u.parent, id)
	u.rank = append(u.rank, 0)
}

// Find returns the canonical representative of id's set, compressing the
// path traversed along the way. Returns UnknownId if id was never made.
func (u *UnionFind) Find(id int) (int, error) {
	if id < 0 || id >= len(u.parent) {
		return 0, egvis.NewUnknownID(id)
	}
	return u.find(id), nil
}

// find is the panic-free internal fast path used once an id is known valid.
func (u *UnionFind) find(id int) int {
	root := id
	for u.parent[root] != root {
		root = u.parent[root]
	}
	// Path compression: point every visited node directly at root.
	for u.parent[id] != root {
		next := u.parent[id]
		u.parent[id] = root
		id = next
	}
	return root
}

// Equiv reports whether a and b are in the same set.
func (u *UnionFind) Equiv(a, b int) (bool, error) {
	ra, err := u.Find(a)
	if err != nil {
		return false, err
	}
	rb, err := u.Find(b)
	if err != nil {
		return false, err
	}
	return ra == rb, nil
}

// Union merges the sets containing a and b by rank, returning the new root.
// Idempotent when a and b are already equivalent.
func (u *UnionFind) Union(a, b int) (int, error) {
	ra, err := u.Find(a)
	if err != nil {
		return 0, err
	}
	rb, err := u.Find(b)
	if err != nil {
		return 0, err
	}
	if ra == rb {
		return ra, nil
	}

	if u.rank[ra] < u.rank[rb] {
		ra, rb = rb, ra
	}
	u.parent[rb] = ra
	if u.rank[ra] == u.rank[rb] {
		u.rank[ra]++
	}

	invariant.Invariant(u.find(a) == u.find(b), "union(%d, %d) must leave both ids equivalent", a, b)
	return ra, nil
}
