package colonize

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/matzehuels/spacecol/pkg/field"
	"github.com/matzehuels/spacecol/pkg/tree"
)

// Phase is the lifecycle state of a Simulation.
type Phase int

const (
	PhaseSeeding Phase = iota
	PhaseGrowing
	PhaseTerminated
)

func (p Phase) String() string {
	switch p {
	case PhaseSeeding:
		return "seeding"
	case PhaseGrowing:
		return "growing"
	case PhaseTerminated:
		return "terminated"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Reason explains why a run terminated.
type Reason string

const (
	ReasonNone       Reason = ""
	ReasonExhausted  Reason = "exhausted"
	ReasonNodeCap    Reason = "node_cap"
	ReasonEmptyField Reason = "empty_field"
)

// ErrNotSeeded is returned by Tick before Seed has succeeded.
var ErrNotSeeded = errors.New("simulation has not been seeded")

// Stats are counters accumulated over a run.
type Stats struct {
	Nodes             int
	Roots             int
	InitialAttractors int
	TotalAttractors   int // initial plus every expansion
	Live              int
	PrunedProximity   int
	PrunedStagnation  int
	Expansions        int
}

// Result is the terminal output of a run.
type Result struct {
	Tree   *tree.Tree
	Edges  []tree.Segment
	Ticks  int
	Reason Reason
	Stats  Stats
}

// Option configures a Simulation.
type Option func(*Simulation)

// WithRand sets the random source.
func WithRand(rng *rand.Rand) Option {
	return func(s *Simulation) { s.rng = rng }
}

// WithSeed derives the random source from a seed.
func WithSeed(seed uint64) Option {
	return func(s *Simulation) { s.rng = NewRand(seed) }
}

// WithObserver sets the event observer.
func WithObserver(o Observer) Option {
	return func(s *Simulation) { s.obs = o }
}

// WithIndex overrides the nearest-node index chosen by Config.Index.
func WithIndex(idx NearestIndex) Option {
	return func(s *Simulation) { s.index = idx }
}

// NewRand returns the PCG source used for a seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x5851f42d4c957f2d))
}

// Simulation runs the growth loop for one generator.
type Simulation struct {
	cfg   Config
	gen   field.Generator
	rng   *rand.Rand
	obs   Observer
	index NearestIndex

	engine  *Engine
	pruner  *Pruner
	tracker *Tracker

	tree     *tree.Tree
	live     []field.Attractor
	phase    Phase
	reason   Reason
	ticks    int
	progress float64
	lastSnap int
	stats    Stats
}

// New validates cfg against gen and prepares a simulation in PhaseSeeding.
func New(cfg Config, gen field.Generator, opts ...Option) (*Simulation, error) {
	if err := cfg.validateFor(gen); err != nil {
		return nil, err
	}
	if cfg.StatusInterval == 0 {
		cfg.StatusInterval = DefaultStatusInterval
	}
	s := &Simulation{cfg: cfg, gen: gen, lastSnap: -1}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = NewRand(0)
	}
	if s.obs == nil {
		s.obs = NopObserver{}
	}
	if s.index == nil {
		s.index = cfg.newIndex(gen.Dims())
	}
	s.tracker = NewTracker()
	s.engine = &Engine{StepSize: cfg.StepSize, MaxNodes: cfg.MaxNodes, Index: s.index}
	s.pruner = &Pruner{
		KillDistance:    cfg.KillDistance,
		StagnationLimit: cfg.StagnationLimit,
		NewNodesOnly:    cfg.NewNodesOnly,
		Tracker:         s.tracker,
	}
	return s, nil
}

// Phase returns the current phase.
func (s *Simulation) Phase() Phase { return s.phase }

// Reason returns the termination reason, or ReasonNone while running.
func (s *Simulation) Reason() Reason { return s.reason }

// Ticks returns the number of completed ticks.
func (s *Simulation) Ticks() int { return s.ticks }

// Tree returns the growing tree. It must not be modified by callers.
func (s *Simulation) Tree() *tree.Tree { return s.tree }

// Live returns a copy of the live attractor set.
func (s *Simulation) Live() []field.Attractor {
	return append([]field.Attractor(nil), s.live...)
}

// Tracker exposes the stagnation state of live attractors.
func (s *Simulation) Tracker() *Tracker { return s.tracker }

// Progress returns the last reported progress fraction.
func (s *Simulation) Progress() float64 { return s.progress }

// Seed builds the roots and the initial field. Generator failures are
// returned before any tick runs. An empty field terminates the run at once
// with ReasonEmptyField.
func (s *Simulation) Seed() error {
	if s.phase != PhaseSeeding {
		return fmt.Errorf("seed: simulation is %s", s.phase)
	}
	atts, err := s.gen.Generate(s.rng)
	if err != nil {
		return err
	}

	s.tree = tree.New(s.gen.Dims())
	seeds := s.seeds()
	for i, sd := range seeds {
		prev := s.tree.AddRoot(sd.Pos)
		dir := sd.Dir
		if r3.Norm(dir) == 0 {
			continue
		}
		dir = r3.Unit(dir)
		// Segments stop short of the cap, leaving room for the roots still to come.
		budget := sd.Steps
		if s.cfg.MaxNodes > 0 {
			budget = min(budget, s.cfg.MaxNodes-s.tree.Len()-(len(seeds)-i-1))
		}
		for range max(budget, 0) {
			pos := r3.Add(s.tree.Pos(prev), r3.Scale(s.cfg.StepSize, dir))
			if prev, err = s.tree.Add(pos, prev); err != nil {
				return err
			}
		}
	}
	s.index.Sync(s.tree)

	s.live = atts
	s.stats.Roots = len(s.tree.Roots())
	s.stats.InitialAttractors = len(atts)
	s.stats.TotalAttractors = len(atts)
	s.phase = PhaseGrowing
	s.obs.OnStatus(fmt.Sprintf("seeded %d nodes, %d %s attractors", s.tree.Len(), len(atts), s.gen.Kind()))

	if len(atts) == 0 {
		s.terminate(ReasonEmptyField)
	}
	return nil
}

func (s *Simulation) seeds() []field.Seed {
	if len(s.cfg.Seeds) > 0 {
		return s.cfg.Seeds
	}
	if a, ok := s.gen.(field.Anchored); ok {
		return []field.Seed{a.Anchor()}
	}
	return []field.Seed{{}}
}

// Tick runs one association, growth and pruning cycle. It returns true once
// the run has terminated.
func (s *Simulation) Tick() (bool, error) {
	switch s.phase {
	case PhaseSeeding:
		return false, ErrNotSeeded
	case PhaseTerminated:
		return true, nil
	}

	if exp, ok := s.gen.(field.Expander); ok {
		if more := exp.Expand(len(s.live), s.rng); len(more) > 0 {
			s.live = append(s.live, more...)
			s.stats.TotalAttractors += len(more)
			s.stats.Expansions++
			s.obs.OnStatus(fmt.Sprintf("field expanded by %d attractors", len(more)))
		}
	}
	if s.checkDone() {
		return true, nil
	}

	s.ticks++
	step := s.engine.Step(s.tree, s.live)
	var rep PruneReport
	s.live, rep = s.pruner.Prune(s.tree, s.index, s.live, step)
	s.stats.PrunedProximity += rep.Proximity
	s.stats.PrunedStagnation += rep.Stagnation

	if s.cfg.StatusInterval > 0 && s.ticks%s.cfg.StatusInterval == 0 {
		s.obs.OnStatus(fmt.Sprintf("tick %d: %d nodes, %d attractors", s.ticks, s.tree.Len(), len(s.live)))
	}
	s.reportProgress()
	if s.cfg.FrameInterval > 0 && s.ticks%s.cfg.FrameInterval == 0 {
		s.snapshot()
	}

	_, expanding := s.gen.(field.Expander)
	if !expanding || s.atCap() {
		return s.checkDone(), nil
	}
	return false, nil
}

func (s *Simulation) atCap() bool {
	return s.cfg.MaxNodes > 0 && s.tree.Len() >= s.cfg.MaxNodes
}

// checkDone terminates the run if a termination condition holds.
func (s *Simulation) checkDone() bool {
	switch {
	case s.atCap():
		s.terminate(ReasonNodeCap)
	case len(s.live) == 0:
		s.terminate(ReasonExhausted)
	default:
		return false
	}
	return true
}

// Run seeds the simulation if needed and ticks until it terminates. The
// context is checked once per tick; on cancellation the partial result is
// discarded and the context error is returned.
func (s *Simulation) Run(ctx context.Context) (Result, error) {
	if s.phase == PhaseSeeding {
		if err := s.Seed(); err != nil {
			return Result{}, err
		}
	}
	for {
		if err := ctx.Err(); err != nil {
			return Result{}, fmt.Errorf("growth stopped after %d ticks: %w", s.ticks, err)
		}
		done, err := s.Tick()
		if err != nil {
			return Result{}, err
		}
		if done {
			return s.result(), nil
		}
	}
}

func (s *Simulation) terminate(r Reason) {
	s.phase = PhaseTerminated
	s.reason = r
	s.progress = 1
	s.obs.OnProgress(1)
	if s.cfg.FrameInterval > 0 && s.lastSnap != s.ticks {
		s.snapshot()
	}
	s.obs.OnStatus(fmt.Sprintf("terminated (%s) after %d ticks with %d nodes", r, s.ticks, s.tree.Len()))
	s.obs.OnComplete(s.result())
}

func (s *Simulation) snapshot() {
	s.lastSnap = s.ticks
	s.obs.OnSnapshot(s.ticks, s.tree.Edges())
}

// reportProgress emits a monotonic fraction in [0,1]: the share of attractors
// consumed, or the share of the node cap used when that is larger.
func (s *Simulation) reportProgress() {
	var f float64
	_, expanding := s.gen.(field.Expander)
	if !expanding && s.stats.InitialAttractors > 0 {
		f = 1 - float64(len(s.live))/float64(s.stats.InitialAttractors)
	}
	if s.cfg.MaxNodes > 0 {
		f = math.Max(f, float64(s.tree.Len())/float64(s.cfg.MaxNodes))
	}
	f = math.Min(1, math.Max(f, s.progress))
	s.progress = f
	s.obs.OnProgress(f)
}

func (s *Simulation) result() Result {
	st := s.stats
	st.Nodes = s.tree.Len()
	st.Live = len(s.live)
	return Result{
		Tree:   s.tree,
		Edges:  s.tree.Edges(),
		Ticks:  s.ticks,
		Reason: s.reason,
		Stats:  st,
	}
}
