// Package graph provides the JSON wire format for finished growth trees.
//
// The format is used for saved tree files, API responses, cache entries and
// archive records. It is human-readable and round-trips exactly: a tree read
// back from its own output has the same nodes, parents and positions.
//
// # Format
//
//	{
//	  "dims": 2,
//	  "ticks": 57,
//	  "reason": "exhausted",
//	  "nodes": [
//	    {"id": 0, "parent": -1, "pos": [400, 1000, 0]},
//	    {"id": 1, "parent": 0, "pos": [400, 995, 0]}
//	  ]
//	}
//
// Node IDs are arena indices and must equal the node's position in the list.
// A parent of -1 marks a root; any other parent must precede the node.
//
// Common operations:
//
//	t, _ := graph.ReadTreeFile("tree.json")          // File → tree.Tree
//	graph.WriteTreeFile(graph.FromTree(t), "t.json") // Tree → File
//	data, _ := graph.MarshalTree(graph.FromTree(t))  // Tree → []byte
//	g, _ := graph.UnmarshalTree(data)                // []byte → Tree
//
// # Concurrency
//
// All functions are safe for concurrent reads but not concurrent writes.
package graph
