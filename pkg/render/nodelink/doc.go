// Package nodelink renders the topology of a growth tree as a Graphviz
// diagram.
//
// Where the sinks in package render draw branches at their grown positions,
// a node-link diagram drops geometry and shows only the parent-child
// structure, one rank per depth. It is useful for inspecting branching
// structure of small trees and for checking that a forest has the expected
// number of roots.
//
// # Usage
//
//	dot := nodelink.ToDOT(t, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// With [Options.Detailed] each node label carries its depth and position.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering; no Graphviz installation is required.
package nodelink
