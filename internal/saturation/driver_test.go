package saturation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zontasticality/egraph-vis/internal/egraph"
	"github.com/zontasticality/egraph-vis/internal/pattern"
	"github.com/zontasticality/egraph-vis/internal/saturation"
)

// runToHalt advances d until it reports Done, returning every PhaseResult
// observed along the way.
func runToHalt(t *testing.T, d *saturation.Driver, g *egraph.EGraph, rules []pattern.Rule) []saturation.PhaseResult {
	t.Helper()
	var results []saturation.PhaseResult
	for !d.Done() {
		res, err := d.Advance(g, rules)
		require.NoError(t, err)
		results = append(results, res)
		if res.Phase == saturation.PhaseDone {
			break
		}
	}
	return results
}

// eggPaperRules builds the four rewrite rules from spec scenario 4:
//
//	*(?x,2) -> <<(?x,1)
//	/(?x,?x) -> 1
//	*(?x,1) -> ?x
//	/(*(?x,?y),?z) -> *(?x, /(?y,?z))
func eggPaperRules() []pattern.Rule {
	return []pattern.Rule{
		{
			Name:    "mul-to-shift",
			LHS:     pattern.Op("*", pattern.Var("?x"), pattern.Op("2")),
			RHS:     pattern.Op("<<", pattern.Var("?x"), pattern.Op("1")),
			Enabled: true,
		},
		{
			Name:    "div-self",
			LHS:     pattern.Op("/", pattern.Var("?x"), pattern.Var("?x")),
			RHS:     pattern.Op("1"),
			Enabled: true,
		},
		{
			Name:    "mul-one",
			LHS:     pattern.Op("*", pattern.Var("?x"), pattern.Op("1")),
			RHS:     pattern.Var("?x"),
			Enabled: true,
		},
		{
			Name: "div-distribute",
			LHS: pattern.Op("/", pattern.Op("*", pattern.Var("?x"), pattern.Var("?y")), pattern.Var("?z")),
			RHS: pattern.Op("*", pattern.Var("?x"), pattern.Op("/", pattern.Var("?y"), pattern.Var("?z"))),
			Enabled: true,
		},
	}
}

func TestEggPaperExampleSaturates(t *testing.T) {
	for _, strat := range []egraph.Strategy{egraph.Naive, egraph.Deferred} {
		t.Run(strat.String(), func(t *testing.T) {
			g := egraph.New(strat)
			a, err := g.Add(egraph.ENode{Op: "a"})
			require.NoError(t, err)
			two, err := g.Add(egraph.ENode{Op: "2"})
			require.NoError(t, err)
			mul, err := g.Add(egraph.ENode{Op: "*", Args: []egraph.NodeId{a, two}})
			require.NoError(t, err)
			root, err := g.Add(egraph.ENode{Op: "/", Args: []egraph.NodeId{mul, two}})
			require.NoError(t, err)

			rules := eggPaperRules()
			d := saturation.NewDriver(saturation.Options{IterationCap: 50})
			results := runToHalt(t, d, g, rules)

			last := results[len(results)-1]
			assert.Equal(t, saturation.Saturated, last.HaltedReason)

			fRoot, err := g.Find(root)
			require.NoError(t, err)
			fA, err := g.Find(a)
			require.NoError(t, err)
			assert.Equal(t, fA, fRoot)
		})
	}
}

func TestIterationCapHalts(t *testing.T) {
	g := egraph.New(egraph.Deferred)
	seed, err := g.Add(egraph.ENode{Op: "leaf"})
	require.NoError(t, err)
	_, err = g.Add(egraph.ENode{Op: "f", Args: []egraph.NodeId{seed}})
	require.NoError(t, err)

	// f(?x) -> f(g(?x)) never saturates: each iteration wraps one more g
	// around the newest argument, so every Write adds brand new nodes.
	rules := []pattern.Rule{
		{
			Name:    "grow",
			LHS:     pattern.Op("f", pattern.Var("?x")),
			RHS:     pattern.Op("f", pattern.Op("g", pattern.Var("?x"))),
			Enabled: true,
		},
	}

	d := saturation.NewDriver(saturation.Options{IterationCap: 5})
	var iterationBoundaries int
	for !d.Done() {
		res, err := d.Advance(g, rules)
		require.NoError(t, err)
		if res.Phase == saturation.PhaseRebuild {
			iterationBoundaries++
		}
		if res.Phase == saturation.PhaseDone {
			assert.Equal(t, saturation.IterationCap, res.HaltedReason)
		}
	}
	assert.Equal(t, 5, iterationBoundaries)
	_ = seed
}

func TestSaturatedMeansNoFurtherMatches(t *testing.T) {
	g := egraph.New(egraph.Deferred)
	a, _ := g.Add(egraph.ENode{Op: "a"})
	_, err := g.Add(egraph.ENode{Op: "f", Args: []egraph.NodeId{a}})
	require.NoError(t, err)

	rules := []pattern.Rule{
		{Name: "noop", LHS: pattern.Op("nonexistent"), RHS: pattern.Op("nonexistent"), Enabled: true},
	}

	d := saturation.NewDriver(saturation.Options{IterationCap: 10})
	results := runToHalt(t, d, g, rules)
	last := results[len(results)-1]
	assert.Equal(t, saturation.Saturated, last.HaltedReason)
}

func TestCancelHaltsImmediately(t *testing.T) {
	g := egraph.New(egraph.Deferred)
	_, err := g.Add(egraph.ENode{Op: "a"})
	require.NoError(t, err)

	rules := []pattern.Rule{
		{Name: "grow", LHS: pattern.Var("?x"), RHS: pattern.Op("f", pattern.Var("?x")), Enabled: true},
	}

	canceled := false
	d := saturation.NewDriver(saturation.Options{IterationCap: 100, CancelFn: func() bool { return canceled }})

	res, err := d.Advance(g, rules)
	require.NoError(t, err)
	assert.Equal(t, saturation.PhaseRead, res.Phase)

	canceled = true
	res, err = d.Advance(g, rules)
	require.NoError(t, err)
	assert.Equal(t, saturation.PhaseDone, res.Phase)
	assert.Equal(t, saturation.Canceled, res.HaltedReason)
	assert.True(t, d.Done())
}
