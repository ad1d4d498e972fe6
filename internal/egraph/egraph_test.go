package egraph_test

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zontasticality/egraph-vis/internal/egraph"
)

func rebuild(t *testing.T, g *egraph.EGraph) {
	t.Helper()
	require.NoError(t, g.Rebuild())
}

// strategies is the pair every universal property must hold under.
func strategies() []egraph.Strategy {
	return []egraph.Strategy{egraph.Naive, egraph.Deferred}
}

// TestCongruenceLeaf is spec scenario 1: add a, b, f(a), f(b); merge(a,b);
// rebuild. Expect exactly two classes, {a,b} and {f(a),f(b)}, and
// find(f(a)) == find(f(b)).
func TestCongruenceLeaf(t *testing.T) {
	for _, strat := range strategies() {
		t.Run(strat.String(), func(t *testing.T) {
			g := egraph.New(strat)

			a, err := g.Add(egraph.ENode{Op: "a"})
			require.NoError(t, err)
			b, err := g.Add(egraph.ENode{Op: "b"})
			require.NoError(t, err)
			fa, err := g.Add(egraph.ENode{Op: "f", Args: []egraph.NodeId{a}})
			require.NoError(t, err)
			fb, err := g.Add(egraph.ENode{Op: "f", Args: []egraph.NodeId{b}})
			require.NoError(t, err)

			_, err = g.Merge(a, b)
			require.NoError(t, err)
			rebuild(t, g)

			assert.Len(t, g.CanonicalIDs(), 2)

			cfa, err := g.Find(fa)
			require.NoError(t, err)
			cfb, err := g.Find(fb)
			require.NoError(t, err)
			assert.Equal(t, cfa, cfb)

			violations, err := g.CheckCongruence()
			require.NoError(t, err)
			assert.Empty(t, violations)
			violations, err = g.CheckHashcons()
			require.NoError(t, err)
			assert.Empty(t, violations)
		})
	}
}

// TestNestedCongruence is spec scenario 2.
func TestNestedCongruence(t *testing.T) {
	for _, strat := range strategies() {
		t.Run(strat.String(), func(t *testing.T) {
			g := egraph.New(strat)

			a, err := g.Add(egraph.ENode{Op: "a"})
			require.NoError(t, err)
			b, err := g.Add(egraph.ENode{Op: "b"})
			require.NoError(t, err)
			ga, err := g.Add(egraph.ENode{Op: "g", Args: []egraph.NodeId{a}})
			require.NoError(t, err)
			gb, err := g.Add(egraph.ENode{Op: "g", Args: []egraph.NodeId{b}})
			require.NoError(t, err)
			fga, err := g.Add(egraph.ENode{Op: "f", Args: []egraph.NodeId{ga}})
			require.NoError(t, err)
			fgb, err := g.Add(egraph.ENode{Op: "f", Args: []egraph.NodeId{gb}})
			require.NoError(t, err)

			_, err = g.Merge(a, b)
			require.NoError(t, err)
			rebuild(t, g)

			cga, _ := g.Find(ga)
			cgb, _ := g.Find(gb)
			assert.Equal(t, cga, cgb)

			cfga, _ := g.Find(fga)
			cfgb, _ := g.Find(fgb)
			assert.Equal(t, cfga, cfgb)
		})
	}
}

// TestSelfCycle is spec scenario 3: add a, f(a); merge(a, f(a)); rebuild.
// Expect one class containing both, and Rebuild must terminate.
func TestSelfCycle(t *testing.T) {
	for _, strat := range strategies() {
		t.Run(strat.String(), func(t *testing.T) {
			g := egraph.New(strat)

			a, err := g.Add(egraph.ENode{Op: "a"})
			require.NoError(t, err)
			fa, err := g.Add(egraph.ENode{Op: "f", Args: []egraph.NodeId{a}})
			require.NoError(t, err)

			_, err = g.Merge(a, fa)
			require.NoError(t, err)
			rebuild(t, g)

			assert.Len(t, g.CanonicalIDs(), 1)
			ca, _ := g.Find(a)
			cfa, _ := g.Find(fa)
			assert.Equal(t, ca, cfa)

			violations, err := g.CheckCongruence()
			require.NoError(t, err)
			assert.Empty(t, violations)
		})
	}
}

// TestBatchMerges is spec scenario 5: 50 leaves plus one parent per leaf;
// merge all leaves into leaf 0; rebuild. Expect exactly two classes.
func TestBatchMerges(t *testing.T) {
	for _, strat := range strategies() {
		t.Run(strat.String(), func(t *testing.T) {
			g := egraph.New(strat)

			const n = 50
			leaves := make([]egraph.NodeId, n)
			parents := make([]egraph.NodeId, n)
			for i := 0; i < n; i++ {
				leaf, err := g.Add(egraph.ENode{Op: "leaf" + strconv.Itoa(i)})
				require.NoError(t, err)
				leaves[i] = leaf
				parent, err := g.Add(egraph.ENode{Op: "f", Args: []egraph.NodeId{leaf}})
				require.NoError(t, err)
				parents[i] = parent
			}

			for i := 1; i < n; i++ {
				_, err := g.Merge(leaves[0], leaves[i])
				require.NoError(t, err)
			}
			rebuild(t, g)

			assert.Len(t, g.CanonicalIDs(), 2)

			first, err := g.Find(parents[0])
			require.NoError(t, err)
			for _, p := range parents[1:] {
				c, err := g.Find(p)
				require.NoError(t, err)
				assert.Equal(t, first, c)
			}
		})
	}
}

// TestMergeSameIDIsNoop covers merge(a, a) being observationally a no-op.
func TestMergeSameIDIsNoop(t *testing.T) {
	for _, strat := range strategies() {
		t.Run(strat.String(), func(t *testing.T) {
			g := egraph.New(strat)
			a, err := g.Add(egraph.ENode{Op: "a"})
			require.NoError(t, err)

			before := len(g.CanonicalIDs())
			res, err := g.Merge(a, a)
			require.NoError(t, err)
			assert.Equal(t, a, res)
			assert.Len(t, g.CanonicalIDs(), before)
			assert.Empty(t, g.WorklistIDs())
		})
	}
}

// TestAddIsIdempotent covers "adding the same e-node twice returns the same
// canonical id and creates no new class."
func TestAddIsIdempotent(t *testing.T) {
	for _, strat := range strategies() {
		t.Run(strat.String(), func(t *testing.T) {
			g := egraph.New(strat)
			a, err := g.Add(egraph.ENode{Op: "a"})
			require.NoError(t, err)
			before := len(g.CanonicalIDs())

			again, err := g.Add(egraph.ENode{Op: "a"})
			require.NoError(t, err)
			assert.Equal(t, a, again)
			assert.Len(t, g.CanonicalIDs(), before)
		})
	}
}

// TestFindIsIdempotent covers find(find(x)) == find(x) for every allocated x.
func TestFindIsIdempotent(t *testing.T) {
	g := egraph.New(egraph.Deferred)
	a, _ := g.Add(egraph.ENode{Op: "a"})
	b, _ := g.Add(egraph.ENode{Op: "b"})
	_, err := g.Merge(a, b)
	require.NoError(t, err)
	require.NoError(t, g.Rebuild())

	for _, id := range g.AllIDs() {
		f1, err := g.Find(id)
		require.NoError(t, err)
		f2, err := g.Find(f1)
		require.NoError(t, err)
		assert.Equal(t, f1, f2)
	}
}

// TestUnknownIDFails covers the UnknownId contract violation.
func TestUnknownIDFails(t *testing.T) {
	g := egraph.New(egraph.Naive)
	_, err := g.Find(42)
	require.Error(t, err)
}

// TestNaiveAndDeferredConverge is the universal "both strategies yield
// identical state" property, run over the nested-congruence scenario.
func TestNaiveAndDeferredConverge(t *testing.T) {
	build := func(g *egraph.EGraph) (root egraph.NodeId) {
		a, _ := g.Add(egraph.ENode{Op: "a"})
		b, _ := g.Add(egraph.ENode{Op: "b"})
		ga, _ := g.Add(egraph.ENode{Op: "g", Args: []egraph.NodeId{a}})
		gb, _ := g.Add(egraph.ENode{Op: "g", Args: []egraph.NodeId{b}})
		_, _ = g.Add(egraph.ENode{Op: "f", Args: []egraph.NodeId{ga}})
		root, _ = g.Add(egraph.ENode{Op: "f", Args: []egraph.NodeId{gb}})
		_, err := g.Merge(a, b)
		require.NoError(t, err)
		return root
	}

	naive := egraph.New(egraph.Naive)
	nroot := build(naive)
	require.NoError(t, naive.Rebuild())

	deferred := egraph.New(egraph.Deferred)
	droot := build(deferred)
	require.NoError(t, deferred.Rebuild())

	assert.Equal(t, len(naive.CanonicalIDs()), len(deferred.CanonicalIDs()))

	nf, _ := naive.Find(nroot)
	df, _ := deferred.Find(droot)
	// Ids are assigned identically since both graphs saw the same Add/Merge
	// sequence, so canonical ids (not just class shape) must agree too.
	assert.Equal(t, nf, df)
}
