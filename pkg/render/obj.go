package render

import (
	"bufio"
	"fmt"
	"io"

	"github.com/matzehuels/spacecol/pkg/tree"
)

// WriteOBJ exports the tree as Wavefront OBJ polylines: one vertex per node
// and one line element per parent-child edge. Indices are 1-based.
func WriteOBJ(t *tree.Tree, w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# spacecol tree: %d nodes, %d roots\n", t.Len(), len(t.Roots()))
	for _, n := range t.Nodes() {
		fmt.Fprintf(bw, "v %g %g %g\n", n.Pos.X, n.Pos.Y, n.Pos.Z)
	}
	for i, n := range t.Nodes() {
		if n.IsRoot() {
			continue
		}
		fmt.Fprintf(bw, "l %d %d\n", n.Parent+1, i+1)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write obj: %w", err)
	}
	return nil
}
