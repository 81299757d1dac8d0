// Package dag provides the character reference graph of a parsed file.
//
// # Overview
//
// Every definition tag in a file introduces a character, and characters
// reference each other: the main timeline and sprites place characters at
// depths, and shapes reference bitmaps through their fill styles. This
// package models those references as a directed graph rooted at the main
// timeline (node [RootID]).
//
// A well-formed file yields an acyclic graph, because a definition can only
// reference characters that appear earlier in the tag stream. Hand-crafted
// or corrupt files can still smuggle a cycle in, so [Graph.Validate] detects
// them rather than assuming them away.
//
// # Basic Usage
//
// Create a graph with [New], add characters with [Graph.AddNode], and
// references with [Graph.AddEdge]:
//
//	g := dag.New(nil)
//	g.AddNode(dag.Node{ID: dag.RootID, Kind: "timeline"})
//	g.AddNode(dag.Node{ID: 1, Kind: "shape"})
//	g.AddEdge(dag.Edge{From: dag.RootID, To: 1, Kind: dag.EdgePlacement})
//
// Query structure with [Graph.Children], [Graph.Parents], [Graph.Reachable],
// and [Graph.Orphans]. The graph feeds the DOT renderer and the inspection
// command's dependency listings.
//
// # Concurrency
//
// Graph instances are not safe for concurrent use. Callers must synchronize
// access if multiple goroutines read or modify the same graph.
package dag
