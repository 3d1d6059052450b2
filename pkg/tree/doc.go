// Package tree provides the growth forest produced by a space colonization run.
//
// # Overview
//
// A [Tree] is an arena of [Node] values. Each node stores its position and the
// index of its parent inside the same arena, or [NoParent] for roots. Nodes are
// only ever appended: they are never moved, re-parented or deleted, so an index
// handed out by [Tree.Add] stays valid for the lifetime of the tree.
//
// # Forest Invariant
//
// A node's parent index is always strictly smaller than its own index. Because
// of this ordering rule no node can be its own ancestor, and every parent chain
// reaches a root in at most Len() hops. [Tree.Add] and [Tree.Append] enforce the
// rule on insertion; [Tree.Validate] re-checks it for trees decoded from disk.
//
// # Basic Usage
//
//	t := tree.New(2)
//	root := t.AddRoot(r3.Vec{X: 0, Y: 0})
//	child, _ := t.Add(r3.Vec{X: 0, Y: 5}, root)
//	for _, s := range t.Edges() {
//	    fmt.Println(s.From, "->", s.To)
//	}
//
// [Tree.Edges] returns the ordered segment list consumed by renderers and
// exporters: one [Segment] per non-root node, in node-index order.
//
// # Concurrency
//
// A Tree is not safe for concurrent mutation. Snapshots handed to other
// goroutines should be taken with [Tree.Edges] or [Tree.Clone].
package tree
