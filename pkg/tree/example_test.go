package tree_test

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/matzehuels/spacecol/pkg/tree"
)

func Example() {
	t := tree.New(2)
	root := t.AddRoot(r3.Vec{X: 0, Y: 0})
	a, _ := t.Add(r3.Vec{X: 0, Y: 5}, root)
	t.Add(r3.Vec{X: 3, Y: 9}, a)
	t.Add(r3.Vec{X: -3, Y: 9}, a)

	fmt.Println("nodes:", t.Len())
	fmt.Println("leaves:", t.Leaves())
	for _, s := range t.Edges() {
		fmt.Printf("(%g,%g) -> (%g,%g)\n", s.From.X, s.From.Y, s.To.X, s.To.Y)
	}
	fmt.Println("valid:", t.Validate() == nil)
	// Output:
	// nodes: 4
	// leaves: [2 3]
	// (0,0) -> (0,5)
	// (0,5) -> (3,9)
	// (0,5) -> (-3,9)
	// valid: true
}
