// Package saturation runs the Read -> Write -> Rebuild fixed-point loop,
// one phase boundary per Advance call so a caller (the engine, or an
// interactive CLI) can suspend between any two phases.
package saturation

import (
	"github.com/zontasticality/egraph-vis/internal/egraph"
	"github.com/zontasticality/egraph-vis/internal/invariant"
	"github.com/zontasticality/egraph-vis/internal/pattern"
)

// Phase names a point in the Read/Write/Rebuild cycle.
type Phase string

const (
	PhaseRead    Phase = "read"
	PhaseWrite   Phase = "write"
	PhaseRebuild Phase = "rebuild"
	PhaseDone    Phase = "done"
)

// HaltedReason is set once the driver reaches PhaseDone.
type HaltedReason string

const (
	Saturated    HaltedReason = "Saturated"
	IterationCap HaltedReason = "IterationCap"
	Canceled     HaltedReason = "Canceled"
)

// DefaultIterationCap matches the preset format's documented default.
const DefaultIterationCap = 250

// Match is one (rule, class, substitution) triple produced by Read.
type Match struct {
	RuleIndex int
	RuleName  string
	ClassID   egraph.NodeId
	Subst     pattern.Substitution
}

// AppliedRewrite records the outcome of instantiating and merging one Match
// during Write, so callers (the snapshot builder) can attribute a "rewrite"
// diff event to the rule and class that produced it.
type AppliedRewrite struct {
	Match    Match
	ResultID egraph.NodeId
	Merged   bool
}

// PhaseResult is what a single Advance call produces.
type PhaseResult struct {
	Phase          Phase
	IterationIndex int // 1-based index of the iteration this phase belongs to
	Matches        []Match
	Applied        []AppliedRewrite
	MergesApplied  int
	NewNodes       int
	Halted         bool
	HaltedReason   HaltedReason
}

// Options configures a Driver.
type Options struct {
	IterationCap int
	// CancelFn is polled at every phase boundary; when it returns true the
	// driver halts with HaltedReason Canceled before doing any phase work.
	CancelFn func() bool
}

type phaseState int

const (
	stateRead phaseState = iota
	stateWrite
	stateRebuild
	stateDone
)

// Driver runs one preset's saturation loop. It is strategy-agnostic: Naive
// and Deferred e-graphs are driven identically, since Rebuild is a no-op
// for Naive and real work for Deferred.
type Driver struct {
	opts         Options
	state        phaseState
	iteration    int
	lastMatches  []Match
	mergesThisIt int
	newNodesThis int
	haltedReason HaltedReason
}

// NewDriver creates a Driver ready to advance through PhaseRead first.
func NewDriver(opts Options) *Driver {
	if opts.IterationCap <= 0 {
		opts.IterationCap = DefaultIterationCap
	}
	return &Driver{opts: opts, state: stateRead}
}

// Done reports whether the driver has reached PhaseDone.
func (d *Driver) Done() bool { return d.state == stateDone }

// HaltedReason reports the halt reason once Done is true.
func (d *Driver) HaltedReason() HaltedReason { return d.haltedReason }

// Advance performs exactly one phase boundary's worth of work.
func (d *Driver) Advance(g *egraph.EGraph, rules []pattern.Rule) (PhaseResult, error) {
	if d.state == stateDone {
		return PhaseResult{Phase: PhaseDone, Halted: true, HaltedReason: d.haltedReason}, nil
	}
	if d.opts.CancelFn != nil && d.opts.CancelFn() {
		d.state = stateDone
		d.haltedReason = Canceled
		return PhaseResult{Phase: PhaseDone, Halted: true, HaltedReason: Canceled}, nil
	}

	switch d.state {
	case stateRead:
		return d.advanceRead(g, rules)
	case stateWrite:
		return d.advanceWrite(g, rules)
	case stateRebuild:
		return d.advanceRebuild(g)
	default:
		invariant.Invariant(false, "unreachable driver phase state %d", d.state)
		return PhaseResult{}, nil
	}
}

func (d *Driver) advanceRead(g *egraph.EGraph, rules []pattern.Rule) (PhaseResult, error) {
	if d.iteration >= d.opts.IterationCap {
		d.state = stateDone
		d.haltedReason = IterationCap
		return PhaseResult{Phase: PhaseDone, Halted: true, HaltedReason: IterationCap}, nil
	}

	matches, err := enumerateMatches(g, rules)
	if err != nil {
		return PhaseResult{}, err
	}
	d.lastMatches = matches
	d.state = stateWrite

	return PhaseResult{
		Phase:          PhaseRead,
		IterationIndex: d.iteration + 1,
		Matches:        matches,
	}, nil
}

func (d *Driver) advanceWrite(g *egraph.EGraph, rules []pattern.Rule) (PhaseResult, error) {
	before := len(g.AllIDs())
	merges := 0
	applied := make([]AppliedRewrite, 0, len(d.lastMatches))

	for _, m := range d.lastMatches {
		rule := rules[m.RuleIndex]
		target, err := g.Find(m.ClassID)
		if err != nil {
			return PhaseResult{}, err
		}
		instantiated, err := pattern.Instantiate(g, rule.Name, rule.RHS, m.Subst)
		if err != nil {
			return PhaseResult{}, err
		}
		actual, err := g.Find(instantiated)
		if err != nil {
			return PhaseResult{}, err
		}
		merged := target != actual
		if merged {
			if _, err := g.Merge(target, actual); err != nil {
				return PhaseResult{}, err
			}
			merges++
		}
		applied = append(applied, AppliedRewrite{Match: m, ResultID: actual, Merged: merged})
	}

	after := len(g.AllIDs())
	d.mergesThisIt = merges
	d.newNodesThis = after - before
	d.state = stateRebuild

	return PhaseResult{
		Phase:          PhaseWrite,
		IterationIndex: d.iteration + 1,
		Applied:        applied,
		MergesApplied:  merges,
		NewNodes:       after - before,
	}, nil
}

func (d *Driver) advanceRebuild(g *egraph.EGraph) (PhaseResult, error) {
	if err := g.Rebuild(); err != nil {
		return PhaseResult{}, err
	}
	d.iteration++

	noop := len(d.lastMatches) == 0 || (d.mergesThisIt == 0 && d.newNodesThis == 0)
	if noop {
		d.state = stateDone
		d.haltedReason = Saturated
		return PhaseResult{Phase: PhaseDone, Halted: true, HaltedReason: Saturated}, nil
	}

	d.state = stateRead
	return PhaseResult{Phase: PhaseRebuild, IterationIndex: d.iteration}, nil
}

// enumerateMatches produces (rule, class, substitution) triples in a fixed
// deterministic order: rules in declared order, classes in ascending
// canonical id. Pattern.Match already returns a class's substitutions in
// deterministic class-local node order.
func enumerateMatches(g *egraph.EGraph, rules []pattern.Rule) ([]Match, error) {
	var out []Match
	ids := g.CanonicalIDs()

	for ruleIdx, rule := range rules {
		if !rule.Enabled {
			continue
		}
		for _, id := range ids {
			subs, err := pattern.Match(g, rule.LHS, id)
			if err != nil {
				return nil, err
			}
			for _, s := range subs {
				out = append(out, Match{RuleIndex: ruleIdx, RuleName: rule.Name, ClassID: id, Subst: s})
			}
		}
	}
	return out, nil
}
