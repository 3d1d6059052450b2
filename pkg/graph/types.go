package graph

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/matzehuels/spacecol/pkg/tree"
)

// Tree is the canonical serialisation format for growth trees.
type Tree struct {
	Dims   int    `json:"dims" bson:"dims"`
	Ticks  int    `json:"ticks,omitempty" bson:"ticks,omitempty"`
	Reason string `json:"reason,omitempty" bson:"reason,omitempty"`
	Nodes  []Node `json:"nodes" bson:"nodes"`
}

// Node is one serialised tree node.
type Node struct {
	ID     int        `json:"id" bson:"id"`
	Parent int        `json:"parent" bson:"parent"` // -1 for roots
	Pos    [3]float64 `json:"pos" bson:"pos"`
}

// Vec returns the node position as a vector.
func (n Node) Vec() r3.Vec { return r3.Vec{X: n.Pos[0], Y: n.Pos[1], Z: n.Pos[2]} }

// FromTree converts an in-memory tree to its serialised form.
// Ticks and Reason are left for the caller to fill in.
func FromTree(t *tree.Tree) Tree {
	out := Tree{Dims: t.Dims(), Nodes: make([]Node, t.Len())}
	for i, n := range t.Nodes() {
		out.Nodes[i] = Node{
			ID:     i,
			Parent: n.Parent,
			Pos:    [3]float64{n.Pos.X, n.Pos.Y, n.Pos.Z},
		}
	}
	return out
}

// ToTree rebuilds the in-memory tree, validating IDs and the forest
// invariants along the way.
func ToTree(g Tree) (*tree.Tree, error) {
	nodes := make([]tree.Node, len(g.Nodes))
	for i, n := range g.Nodes {
		if n.ID != i {
			return nil, fmt.Errorf("node %d: id %d out of sequence", i, n.ID)
		}
		nodes[i] = tree.Node{Pos: n.Vec(), Parent: n.Parent}
	}
	return tree.FromNodes(g.Dims, nodes)
}
