package egvis

import (
	"strconv"

	"github.com/zontasticality/egraph-vis/internal/egraph"
	"github.com/zontasticality/egraph-vis/internal/pattern"
	"github.com/zontasticality/egraph-vis/internal/preset"
	"github.com/zontasticality/egraph-vis/internal/saturation"
	"github.com/zontasticality/egraph-vis/internal/snapshot"
	"github.com/zontasticality/egraph-vis/internal/trace"
)

// RunOptions overrides a preset's own options for one run. A zero value
// inherits everything from the loaded preset; non-zero fields win.
type RunOptions struct {
	DefaultImpl  string // "naive" | "deferred"; empty inherits the preset's
	IterationCap int    // 0 inherits the preset's
	Debug        bool   // when true, Rebuild snapshots carry invariant-check results
	CancelFn     func() bool
}

// Engine loads a preset, then either steps through its saturation run one
// phase boundary at a time or runs it to completion, observing only
// Snapshot/Timeline values - never the mutable e-graph underneath.
type Engine struct {
	g        *egraph.EGraph
	driver   *saturation.Driver
	builder  *snapshot.Builder
	timeline *snapshot.Timeline
	rules    []pattern.Rule
	debug    bool
	tracer   *trace.Sink
	rootID   egraph.NodeId
}

// NewEngine creates an Engine with no preset loaded.
func NewEngine() *Engine {
	return &Engine{}
}

// LoadPreset decodes, validates, and ingests a preset, seeding a fresh
// e-graph and driver. May raise ErrPresetValidation (or ErrSchema/ErrIO for
// a malformed document) before any snapshot is emitted.
func (e *Engine) LoadPreset(data []byte, opts RunOptions) error {
	p, err := preset.Load(data)
	if err != nil {
		return err
	}

	impl := p.Options.DefaultImpl
	if opts.DefaultImpl != "" {
		impl = opts.DefaultImpl
	}
	strategy := egraph.Deferred
	if impl == "naive" {
		strategy = egraph.Naive
	}

	iterCap := p.Options.IterationCap
	if opts.IterationCap > 0 {
		iterCap = opts.IterationCap
	}

	g := egraph.New(strategy)
	rootID, err := preset.Ingest(p, g)
	if err != nil {
		return err
	}

	e.g = g
	e.rootID = rootID
	e.rules = p.Rewrites
	e.debug = opts.Debug
	e.tracer = trace.NewSink(opts.Debug)
	e.driver = saturation.NewDriver(saturation.Options{IterationCap: iterCap, CancelFn: opts.CancelFn})
	e.builder = snapshot.NewBuilder(p.ID, strategy.String())
	e.timeline = &snapshot.Timeline{PresetID: p.ID, Implementation: strategy.String()}
	e.timeline.Append(e.builder.BuildInit(g))
	return nil
}

// RootID returns the canonical id of the preset's ingested root term.
func (e *Engine) RootID() (egraph.NodeId, error) {
	return e.g.Find(e.rootID)
}

// Tracer exposes the debug-event sink for callers (the CLI) that want to
// render it; empty/no-op when RunOptions.Debug was false.
func (e *Engine) Tracer() *trace.Sink { return e.tracer }

// Step advances exactly one phase boundary, returning the Snapshot it
// produced, or (nil, nil) if the run has already halted.
func (e *Engine) Step() (*snapshot.Snapshot, error) {
	if e.driver.Done() {
		return nil, nil
	}

	res, err := e.driver.Advance(e.g, e.rules)
	if err != nil {
		return nil, err
	}
	e.tracer.Record(trace.Event{
		Iteration: res.IterationIndex,
		Phase:     string(res.Phase),
		Message:   phaseMessage(res),
	})

	var snap *snapshot.Snapshot
	switch res.Phase {
	case saturation.PhaseRead:
		snap = e.builder.BuildRead(e.g, res.Matches)
	case saturation.PhaseWrite:
		snap = e.builder.BuildWrite(e.g, res.Applied)
	case saturation.PhaseRebuild:
		var results []snapshot.InvariantResult
		if e.debug {
			results, err = e.runChecks()
			if err != nil {
				return nil, err
			}
		}
		snap = e.builder.BuildRebuild(e.g, results)
	case saturation.PhaseDone:
		snap = e.builder.BuildDone(e.g, string(res.HaltedReason))
		e.timeline.HaltedReason = string(res.HaltedReason)
	}

	e.timeline.Append(snap)
	return snap, nil
}

// RunUntilHalt steps the engine to completion and returns the full Timeline.
func (e *Engine) RunUntilHalt() (*snapshot.Timeline, error) {
	for !e.driver.Done() {
		if _, err := e.Step(); err != nil {
			return nil, err
		}
	}
	return e.timeline, nil
}

// GetTimeline returns the timeline published so far (complete once the
// driver has halted).
func (e *Engine) GetTimeline() *snapshot.Timeline {
	return e.timeline
}

func (e *Engine) runChecks() ([]snapshot.InvariantResult, error) {
	var out []snapshot.InvariantResult
	hashcons, err := e.g.CheckHashcons()
	if err != nil {
		return nil, err
	}
	for _, v := range hashcons {
		out = append(out, snapshot.InvariantResult{Kind: v.Kind, Detail: v.Detail})
	}
	congruence, err := e.g.CheckCongruence()
	if err != nil {
		return nil, err
	}
	for _, v := range congruence {
		out = append(out, snapshot.InvariantResult{Kind: v.Kind, Detail: v.Detail})
	}
	return out, nil
}

func phaseMessage(res saturation.PhaseResult) string {
	switch res.Phase {
	case saturation.PhaseRead:
		return itoaSuffix(len(res.Matches), "match", "matches") + " found"
	case saturation.PhaseWrite:
		return itoaSuffix(res.MergesApplied, "merge", "merges") + " applied, " + itoaSuffix(res.NewNodes, "new node", "new nodes") + " created"
	case saturation.PhaseRebuild:
		return "rebuild complete"
	case saturation.PhaseDone:
		return "halted: " + string(res.HaltedReason)
	default:
		return ""
	}
}

func itoaSuffix(n int, singular, plural string) string {
	word := plural
	if n == 1 {
		word = singular
	}
	return strconv.Itoa(n) + " " + word
}
