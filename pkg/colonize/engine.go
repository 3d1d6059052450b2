package colonize

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/matzehuels/spacecol/pkg/field"
	"github.com/matzehuels/spacecol/pkg/tree"
)

// zeroMean is the magnitude below which a mean direction counts as zero.
const zeroMean = 1e-12

// StepResult describes one growth pass.
type StepResult struct {
	// Nearest holds, for each live attractor (same order as the input), the
	// index of its nearest node in the pre-step tree.
	Nearest []int
	// First is the index of the first node created by this step; the new
	// nodes occupy [First, First+Created).
	First   int
	Created int
	// Capped reports that growth stopped early because of MaxNodes.
	Capped bool
}

// Engine performs the association and growth passes of a tick.
type Engine struct {
	StepSize float64
	MaxNodes int // 0 means uncapped
	Index    NearestIndex

	// dense per-node accumulators, reused across steps
	sum   []r3.Vec
	count []int
}

// Step associates every live attractor with its nearest node and grows one
// child per attracted node. All reads use the pre-step tree; the new nodes
// are appended as a single batch at the end.
func (e *Engine) Step(t *tree.Tree, live []field.Attractor) StepResult {
	if e.Index == nil {
		e.Index = &BruteForce{}
	}
	e.Index.Sync(t)

	n := t.Len()
	e.reset(n)

	res := StepResult{Nearest: make([]int, len(live)), First: n}
	for i, a := range live {
		idx, _ := e.Index.Nearest(a.Pos)
		res.Nearest[i] = idx
		if idx < 0 {
			continue
		}
		dir := r3.Sub(a.Pos, t.Pos(idx))
		norm := r3.Norm(dir)
		if norm == 0 {
			continue
		}
		e.sum[idx] = r3.Add(e.sum[idx], r3.Scale(1/norm, dir))
		e.count[idx]++
	}

	var batch []tree.Node
	for idx := 0; idx < n; idx++ {
		if e.count[idx] == 0 {
			continue
		}
		mean := r3.Scale(1/float64(e.count[idx]), e.sum[idx])
		norm := r3.Norm(mean)
		if norm < zeroMean {
			continue
		}
		if e.MaxNodes > 0 && n+len(batch) >= e.MaxNodes {
			res.Capped = true
			break
		}
		pos := r3.Add(t.Pos(idx), r3.Scale(e.StepSize/norm, mean))
		batch = append(batch, tree.Node{Pos: pos, Parent: idx})
	}

	if err := t.Append(batch); err != nil {
		panic(fmt.Sprintf("colonize: growth batch references a node outside the pre-step tree: %v", err))
	}
	e.Index.Sync(t)
	res.Created = len(batch)
	return res
}

func (e *Engine) reset(n int) {
	if cap(e.sum) < n {
		e.sum = make([]r3.Vec, n, 2*n)
		e.count = make([]int, n, 2*n)
		return
	}
	e.sum = e.sum[:n]
	e.count = e.count[:n]
	clear(e.sum)
	clear(e.count)
}
