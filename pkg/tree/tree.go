package tree

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// NoParent is the parent index of a root node.
const NoParent = -1

var (
	// ErrUnknownParent is returned by [Tree.Add] and [Tree.Append] when the
	// parent index does not refer to a node that already exists.
	ErrUnknownParent = errors.New("unknown parent node")

	// ErrParentOrder is returned by [Tree.Validate] when a node's parent index
	// is not strictly smaller than its own index.
	ErrParentOrder = errors.New("parent index must precede child index")

	// ErrCycle is returned by [Tree.Validate] when a parent chain does not reach
	// a root within Len() hops.
	ErrCycle = errors.New("parent chain does not terminate at a root")

	// ErrInvalidDims is returned by [Tree.Validate] for trees that are neither
	// 2D nor 3D, or 2D trees holding a node with a non-zero Z coordinate.
	ErrInvalidDims = errors.New("invalid dimensionality")
)

// Node is a single point of the growth forest.
type Node struct {
	Pos    r3.Vec // Position; Z is zero for 2D trees
	Parent int    // Index of the parent node, or NoParent for roots
}

// IsRoot reports whether the node has no parent.
func (n Node) IsRoot() bool { return n.Parent == NoParent }

// Segment is one parent-to-child edge of the tree, expressed in positions.
type Segment struct {
	From r3.Vec // Parent position
	To   r3.Vec // Child position
}

// Length returns the Euclidean length of the segment.
func (s Segment) Length() float64 { return r3.Norm(r3.Sub(s.To, s.From)) }

// Tree is an append-only arena of nodes forming a forest.
//
// The zero value is a usable empty 2D tree.
type Tree struct {
	dims  int
	nodes []Node
}

// New creates an empty tree for points of the given dimensionality (2 or 3).
// Any other value is treated as 2.
func New(dims int) *Tree {
	if dims != 3 {
		dims = 2
	}
	return &Tree{dims: dims}
}

// Dims returns 2 or 3.
func (t *Tree) Dims() int {
	if t.dims == 3 {
		return 3
	}
	return 2
}

// Len returns the number of nodes.
func (t *Tree) Len() int { return len(t.nodes) }

// Node returns the node at index i. It panics if i is out of range.
func (t *Tree) Node(i int) Node { return t.nodes[i] }

// Pos returns the position of node i.
func (t *Tree) Pos(i int) r3.Vec { return t.nodes[i].Pos }

// Nodes returns the node slice. Callers must not modify it.
func (t *Tree) Nodes() []Node { return t.nodes }

// AddRoot appends a root node and returns its index.
func (t *Tree) AddRoot(pos r3.Vec) int {
	t.nodes = append(t.nodes, Node{Pos: t.flatten(pos), Parent: NoParent})
	return len(t.nodes) - 1
}

// Add appends a node whose parent is an existing node and returns its index.
func (t *Tree) Add(pos r3.Vec, parent int) (int, error) {
	if parent < 0 || parent >= len(t.nodes) {
		return 0, fmt.Errorf("add node: %w: %d", ErrUnknownParent, parent)
	}
	t.nodes = append(t.nodes, Node{Pos: t.flatten(pos), Parent: parent})
	return len(t.nodes) - 1, nil
}

// Append adds a batch of nodes whose parents all exist before the call.
// Parents may not point into the batch itself, so a batch built from the
// pre-append state always keeps the forest invariant. Either every node is
// appended or none is.
func (t *Tree) Append(batch []Node) error {
	n := len(t.nodes)
	for _, nd := range batch {
		if nd.Parent < 0 || nd.Parent >= n {
			return fmt.Errorf("append batch: %w: %d", ErrUnknownParent, nd.Parent)
		}
	}
	for _, nd := range batch {
		t.nodes = append(t.nodes, Node{Pos: t.flatten(nd.Pos), Parent: nd.Parent})
	}
	return nil
}

func (t *Tree) flatten(p r3.Vec) r3.Vec {
	if t.Dims() == 2 {
		p.Z = 0
	}
	return p
}

// Roots returns the indices of all root nodes in ascending order.
func (t *Tree) Roots() []int {
	var out []int
	for i, n := range t.nodes {
		if n.IsRoot() {
			out = append(out, i)
		}
	}
	return out
}

// Children returns the indices of the direct children of node i.
// Children are derived by scanning, they are not stored.
func (t *Tree) Children(i int) []int {
	var out []int
	for j := i + 1; j < len(t.nodes); j++ {
		if t.nodes[j].Parent == i {
			out = append(out, j)
		}
	}
	return out
}

// Leaves returns the indices of nodes without children.
func (t *Tree) Leaves() []int {
	hasChild := make([]bool, len(t.nodes))
	for _, n := range t.nodes {
		if n.Parent != NoParent {
			hasChild[n.Parent] = true
		}
	}
	var out []int
	for i, c := range hasChild {
		if !c {
			out = append(out, i)
		}
	}
	return out
}

// Depth returns the number of parent hops from node i to its root.
func (t *Tree) Depth(i int) int {
	d := 0
	for p := t.nodes[i].Parent; p != NoParent; p = t.nodes[p].Parent {
		d++
	}
	return d
}

// Edges returns one segment per non-root node, ordered by child index.
// The returned slice is freshly allocated and safe to hand to other goroutines.
func (t *Tree) Edges() []Segment {
	out := make([]Segment, 0, len(t.nodes))
	for _, n := range t.nodes {
		if n.IsRoot() {
			continue
		}
		out = append(out, Segment{From: t.nodes[n.Parent].Pos, To: n.Pos})
	}
	return out
}

// Bounds returns the axis-aligned bounding box of all nodes.
// An empty tree yields the zero box.
func (t *Tree) Bounds() r3.Box {
	if len(t.nodes) == 0 {
		return r3.Box{}
	}
	b := r3.Box{
		Min: r3.Vec{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)},
		Max: r3.Vec{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)},
	}
	for _, n := range t.nodes {
		b.Min.X = math.Min(b.Min.X, n.Pos.X)
		b.Min.Y = math.Min(b.Min.Y, n.Pos.Y)
		b.Min.Z = math.Min(b.Min.Z, n.Pos.Z)
		b.Max.X = math.Max(b.Max.X, n.Pos.X)
		b.Max.Y = math.Max(b.Max.Y, n.Pos.Y)
		b.Max.Z = math.Max(b.Max.Z, n.Pos.Z)
	}
	return b
}

// Clone returns a deep copy of the tree.
func (t *Tree) Clone() *Tree {
	c := &Tree{dims: t.dims, nodes: make([]Node, len(t.nodes))}
	copy(c.nodes, t.nodes)
	return c
}

// Validate checks the forest invariant. It verifies parent ordering, walks
// every parent chain with a hop bound of Len(), and checks that 2D trees stay
// on the Z=0 plane.
func (t *Tree) Validate() error {
	if t.dims != 0 && t.dims != 2 && t.dims != 3 {
		return fmt.Errorf("%w: %d", ErrInvalidDims, t.dims)
	}
	n := len(t.nodes)
	for i, nd := range t.nodes {
		if nd.Parent != NoParent && (nd.Parent < 0 || nd.Parent >= n) {
			return fmt.Errorf("node %d: %w: %d", i, ErrUnknownParent, nd.Parent)
		}
		if nd.Parent >= i {
			return fmt.Errorf("node %d: %w (parent %d)", i, ErrParentOrder, nd.Parent)
		}
		if t.Dims() == 2 && nd.Pos.Z != 0 {
			return fmt.Errorf("node %d: %w: z=%g in 2D tree", i, ErrInvalidDims, nd.Pos.Z)
		}
		hops, p := 0, nd.Parent
		for p != NoParent {
			if hops++; hops > n {
				return fmt.Errorf("node %d: %w", i, ErrCycle)
			}
			p = t.nodes[p].Parent
		}
	}
	return nil
}

// FromNodes builds a tree from a decoded node list and validates it.
func FromNodes(dims int, nodes []Node) (*Tree, error) {
	t := &Tree{dims: dims, nodes: append([]Node(nil), nodes...)}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}
