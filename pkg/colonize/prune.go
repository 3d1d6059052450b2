package colonize

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/matzehuels/spacecol/pkg/field"
	"github.com/matzehuels/spacecol/pkg/tree"
)

// Stagnation is the tracking state of one attractor.
type Stagnation struct {
	Nearest int // nearest node at the last observation
	Count   int // consecutive observations with that nearest node
}

// Tracker keeps the stagnation state of live attractors, keyed by id.
type Tracker struct {
	states map[int]Stagnation
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{states: make(map[int]Stagnation)}
}

// Observe records that attractor id currently has nearest node idx and
// returns the updated consecutive count: 1 when the nearest node changed (or
// on first sight), the previous count plus one otherwise.
func (t *Tracker) Observe(id, idx int) int {
	s, ok := t.states[id]
	if ok && s.Nearest == idx {
		s.Count++
	} else {
		s = Stagnation{Nearest: idx, Count: 1}
	}
	t.states[id] = s
	return s.Count
}

// State returns the tracking state of id.
func (t *Tracker) State(id int) (Stagnation, bool) {
	s, ok := t.states[id]
	return s, ok
}

// Forget discards the state of id.
func (t *Tracker) Forget(id int) { delete(t.states, id) }

// Len returns the number of tracked attractors.
func (t *Tracker) Len() int { return len(t.states) }

// PruneReport summarises one pruning pass.
type PruneReport struct {
	Proximity  int
	Stagnation int
	Removed    []int // ids, in input order
}

// Pruner removes reached and stagnant attractors.
type Pruner struct {
	KillDistance    float64
	StagnationLimit int // 0 disables the stagnation rule
	NewNodesOnly    bool
	Tracker         *Tracker
}

// Prune first updates the tracker for every live attractor using the
// association in step, then removes attractors whose count reached
// StagnationLimit or whose nearest node (over the post-growth tree, or over
// the nodes created by step when NewNodesOnly is set) is within KillDistance.
// The survivors keep their input order.
func (p *Pruner) Prune(t *tree.Tree, idx NearestIndex, live []field.Attractor, step StepResult) ([]field.Attractor, PruneReport) {
	if p.Tracker == nil {
		p.Tracker = NewTracker()
	}
	counts := make([]int, len(live))
	for i, a := range live {
		counts[i] = p.Tracker.Observe(a.ID, step.Nearest[i])
	}

	kill2 := p.KillDistance * p.KillDistance
	var rep PruneReport
	survivors := live[:0:0]
	for i, a := range live {
		switch {
		case p.StagnationLimit > 0 && counts[i] >= p.StagnationLimit:
			rep.Stagnation++
		case p.nearest2(t, idx, a.Pos, step) <= kill2:
			rep.Proximity++
		default:
			survivors = append(survivors, a)
			continue
		}
		rep.Removed = append(rep.Removed, a.ID)
		p.Tracker.Forget(a.ID)
	}
	return survivors, rep
}

func (p *Pruner) nearest2(t *tree.Tree, idx NearestIndex, pos r3.Vec, step StepResult) float64 {
	if !p.NewNodesOnly {
		_, d := idx.Nearest(pos)
		return d
	}
	best := math.Inf(1)
	for i := step.First; i < step.First+step.Created; i++ {
		best = math.Min(best, r3.Norm2(r3.Sub(pos, t.Pos(i))))
	}
	return best
}
