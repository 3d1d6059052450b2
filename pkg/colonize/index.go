package colonize

import (
	"math"

	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/matzehuels/spacecol/pkg/tree"
)

// NearestIndex answers exact nearest-node queries over a growing tree.
type NearestIndex interface {
	// Sync makes every node of t visible to Nearest. Trees only grow, so
	// implementations may add just the nodes appended since the last call.
	Sync(t *tree.Tree)
	// Nearest returns the index of the node closest to p and the squared
	// distance to it. It returns -1 when the index is empty.
	Nearest(p r3.Vec) (int, float64)
}

// BruteForce scans every node. Ties go to the lowest node index.
type BruteForce struct {
	t *tree.Tree
}

func (b *BruteForce) Sync(t *tree.Tree) { b.t = t }

func (b *BruteForce) Nearest(p r3.Vec) (int, float64) {
	best, bestD := -1, math.Inf(1)
	if b.t == nil {
		return best, bestD
	}
	for i, n := range b.t.Nodes() {
		if d := r3.Norm2(r3.Sub(p, n.Pos)); d < bestD {
			best, bestD = i, d
		}
	}
	return best, bestD
}

// KDTree is an incrementally built k-d tree over node positions. It returns
// the same nearest distance as BruteForce; among equidistant nodes the one
// returned may differ.
type KDTree struct {
	dims int
	kd   kdtree.Tree
	n    int
}

// NewKDTree creates an empty k-d tree for 2D or 3D points.
func NewKDTree(dims int) *KDTree {
	if dims != 3 {
		dims = 2
	}
	return &KDTree{dims: dims}
}

func (k *KDTree) Sync(t *tree.Tree) {
	for ; k.n < t.Len(); k.n++ {
		k.kd.Insert(kdPoint{pos: t.Pos(k.n), idx: k.n, dims: k.dims}, false)
	}
}

func (k *KDTree) Nearest(p r3.Vec) (int, float64) {
	if k.n == 0 {
		return -1, math.Inf(1)
	}
	c, d := k.kd.Nearest(kdPoint{pos: p, idx: -1, dims: k.dims})
	if c == nil {
		return -1, math.Inf(1)
	}
	return c.(kdPoint).idx, d
}

// kdPoint adapts a node position to kdtree.Comparable with squared
// Euclidean distance.
type kdPoint struct {
	pos  r3.Vec
	idx  int
	dims int
}

func (p kdPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(kdPoint)
	switch d {
	case 0:
		return p.pos.X - q.pos.X
	case 1:
		return p.pos.Y - q.pos.Y
	default:
		return p.pos.Z - q.pos.Z
	}
}

func (p kdPoint) Dims() int { return p.dims }

func (p kdPoint) Distance(c kdtree.Comparable) float64 {
	return r3.Norm2(r3.Sub(p.pos, c.(kdPoint).pos))
}
