package snapshot_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zontasticality/egraph-vis/internal/egraph"
	"github.com/zontasticality/egraph-vis/internal/saturation"
	"github.com/zontasticality/egraph-vis/internal/snapshot"
)

// TestIdenticalRunsProduceStructurallyEqualSnapshots uses go-cmp rather than
// assert.Equal: a full Snapshot tree diff is far more legible than a
// field-by-field comparison once EClasses/Hashcons grow past a few rows.
func TestIdenticalRunsProduceStructurallyEqualSnapshots(t *testing.T) {
	build := func() *snapshot.Snapshot {
		g := egraph.New(egraph.Deferred)
		a, _ := g.Add(egraph.ENode{Op: "a"})
		b, _ := g.Add(egraph.ENode{Op: "b"})
		_, _ = g.Add(egraph.ENode{Op: "f", Args: []egraph.NodeId{a, b}})
		return snapshot.NewBuilder("demo", "deferred").BuildInit(g)
	}

	s1, s2 := build(), build()
	if diff := cmp.Diff(s1, s2); diff != "" {
		t.Fatalf("snapshots diverged for identical input (-got +want):\n%s", diff)
	}
}

func TestBuildInitRendersSeedState(t *testing.T) {
	g := egraph.New(egraph.Deferred)
	a, err := g.Add(egraph.ENode{Op: "a"})
	require.NoError(t, err)

	b := snapshot.NewBuilder("demo", "deferred")
	snap := b.BuildInit(g)

	assert.Equal(t, "demo:0", snap.ID)
	assert.Equal(t, snapshot.PhaseInit, snap.Phase)
	require.Len(t, snap.UnionFind, 1)
	assert.Equal(t, a, snap.UnionFind[0].ID)
	assert.True(t, snap.UnionFind[0].IsCanonical)
	require.Len(t, snap.EClasses, 1)
	assert.Equal(t, a, snap.EClasses[0].ID)
	require.Len(t, snap.Metadata.DiffEvents, 1)
	assert.Equal(t, snapshot.DiffAdd, snap.Metadata.DiffEvents[0].Kind)
}

func TestUnchangedRowsKeepPointerIdentityAcrossSnapshots(t *testing.T) {
	g := egraph.New(egraph.Deferred)
	a, err := g.Add(egraph.ENode{Op: "a"})
	require.NoError(t, err)
	_, err = g.Add(egraph.ENode{Op: "b"})
	require.NoError(t, err)

	b := snapshot.NewBuilder("demo", "deferred")
	first := b.BuildInit(g)

	// No mutation between snapshots: a's row must be the exact same pointer.
	second := b.BuildRead(g, nil)

	var firstA, secondA *snapshot.UFEntry
	for _, e := range first.UnionFind {
		if e.ID == a {
			firstA = e
		}
	}
	for _, e := range second.UnionFind {
		if e.ID == a {
			secondA = e
		}
	}
	require.NotNil(t, firstA)
	require.NotNil(t, secondA)
	assert.Same(t, firstA, secondA)

	var firstClassA, secondClassA *snapshot.EClassView
	for _, c := range first.EClasses {
		if c.ID == a {
			firstClassA = c
		}
	}
	for _, c := range second.EClasses {
		if c.ID == a {
			secondClassA = c
		}
	}
	require.NotNil(t, firstClassA)
	require.NotNil(t, secondClassA)
	assert.Same(t, firstClassA, secondClassA)
}

func TestMergeProducesDiffEventAndBreaksSharing(t *testing.T) {
	g := egraph.New(egraph.Deferred)
	a, _ := g.Add(egraph.ENode{Op: "a"})
	c, _ := g.Add(egraph.ENode{Op: "c"})

	b := snapshot.NewBuilder("demo", "deferred")
	b.BuildInit(g)

	_, err := g.Merge(a, c)
	require.NoError(t, err)
	require.NoError(t, g.Rebuild())

	after := b.BuildRebuild(g, nil)

	foundMerge := false
	for _, ev := range after.Metadata.DiffEvents {
		if ev.Kind == snapshot.DiffMerge {
			foundMerge = true
		}
	}
	assert.True(t, foundMerge)

	fA, _ := g.Find(a)
	fC, _ := g.Find(c)
	assert.Equal(t, fA, fC)
}

func TestWriteAttributesRewriteDiffEvents(t *testing.T) {
	g := egraph.New(egraph.Naive)
	a, _ := g.Add(egraph.ENode{Op: "a"})

	b := snapshot.NewBuilder("demo", "naive")
	b.BuildInit(g)

	applied := []saturation.AppliedRewrite{
		{Match: saturation.Match{RuleName: "dup"}, ResultID: a, Merged: false},
	}
	snap := b.BuildWrite(g, applied)

	require.Len(t, snap.Metadata.DiffEvents, 1)
	assert.Equal(t, snapshot.DiffRewrite, snap.Metadata.DiffEvents[0].Kind)
	assert.Equal(t, "dup", snap.Metadata.DiffEvents[0].RuleName)
}

func TestTimelineDigestIsDeterministic(t *testing.T) {
	build := func() *snapshot.Timeline {
		g := egraph.New(egraph.Deferred)
		a, _ := g.Add(egraph.ENode{Op: "a"})
		two, _ := g.Add(egraph.ENode{Op: "2"})
		_, _ = g.Add(egraph.ENode{Op: "*", Args: []egraph.NodeId{a, two}})

		b := snapshot.NewBuilder("demo", "deferred")
		tl := &snapshot.Timeline{PresetID: "demo", Implementation: "deferred", HaltedReason: "Saturated"}
		tl.Append(b.BuildInit(g))
		tl.Append(b.BuildDone(g, "Saturated"))
		return tl
	}

	d1, err := build().Digest()
	require.NoError(t, err)
	d2, err := build().Digest()
	require.NoError(t, err)
	assert.Equal(t, d1, d2)
}

func TestTimelineCBORRoundTrip(t *testing.T) {
	g := egraph.New(egraph.Deferred)
	_, err := g.Add(egraph.ENode{Op: "a"})
	require.NoError(t, err)

	b := snapshot.NewBuilder("demo", "deferred")
	tl := &snapshot.Timeline{PresetID: "demo", Implementation: "deferred", HaltedReason: "Saturated"}
	tl.Append(b.BuildInit(g))

	data, err := tl.EncodeCBOR()
	require.NoError(t, err)

	decoded, err := snapshot.DecodeTimelineCBOR(data)
	require.NoError(t, err)
	assert.Equal(t, tl.PresetID, decoded.PresetID)
	require.Len(t, decoded.States, 1)
	assert.Equal(t, tl.States[0].ID, decoded.States[0].ID)
}
