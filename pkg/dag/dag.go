package dag

import (
	"errors"
	"maps"
	"slices"
)

var (
	// ErrDuplicateNodeID is returned by [Graph.AddNode] when a node with the
	// same character ID already exists in the graph.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned by [Graph.AddEdge] when the From node
	// does not exist.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Graph.AddEdge] when the To node
	// does not exist in the graph.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrGraphHasCycle is returned by [Graph.Validate] when a reference cycle
	// is detected. A well-formed file never has one, since a definition can
	// only reference characters defined before it, but nothing stops a
	// hand-crafted file from trying.
	ErrGraphHasCycle = errors.New("graph contains a reference cycle")
)

// Metadata stores arbitrary key-value pairs attached to nodes or the graph.
// Metadata maps are never nil after insertion.
type Metadata map[string]any

// EdgeKind classifies why one character references another.
type EdgeKind int

const (
	// EdgePlacement is a timeline placement: a sprite (or the root timeline,
	// node 0) places the target character at some depth.
	EdgePlacement EdgeKind = iota
	// EdgeFill is a bitmap fill: a shape's fill style references a bitmap
	// character.
	EdgeFill
)

func (k EdgeKind) String() string {
	switch k {
	case EdgePlacement:
		return "place"
	case EdgeFill:
		return "fill"
	}
	return "unknown"
}

// RootID is the pseudo character ID used for the main timeline node.
// Character IDs in a file start at 1, so 0 is free.
const RootID uint16 = 0

// Node is one character in the reference graph.
type Node struct {
	ID    uint16   // character ID; RootID for the main timeline
	Kind  string   // definition kind ("shape", "sprite", "bitmap", ...)
	Label string   // display label; defaults to the kind plus ID
	Meta  Metadata // arbitrary key-value metadata (never nil after AddNode)
}

// Edge is a directed reference between two characters.
type Edge struct {
	From uint16
	To   uint16
	Kind EdgeKind
	Meta Metadata
}

// Graph is the directed character reference graph of one file: which
// definitions place or fill which others. Well-formed files yield an acyclic
// graph rooted at the main timeline.
//
// The zero value is not usable; use New. Graph is not safe for concurrent
// use without external synchronization.
type Graph struct {
	nodes    map[uint16]*Node
	edges    []Edge
	outgoing map[uint16][]uint16
	incoming map[uint16][]uint16
	meta     Metadata
}

// New creates an empty Graph with optional graph-level metadata.
func New(meta Metadata) *Graph {
	if meta == nil {
		meta = Metadata{}
	}
	return &Graph{
		nodes:    make(map[uint16]*Node),
		outgoing: make(map[uint16][]uint16),
		incoming: make(map[uint16][]uint16),
		meta:     meta,
	}
}

// Meta returns the graph-level metadata map. Never nil.
func (g *Graph) Meta() Metadata { return g.meta }

// AddNode adds a character to the graph. Returns ErrDuplicateNodeID if the
// ID is already present. The node's Meta field is initialized to an empty
// map if nil.
func (g *Graph) AddNode(n Node) error {
	if _, exists := g.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	if n.Meta == nil {
		n.Meta = Metadata{}
	}
	node := &n
	g.nodes[node.ID] = node
	return nil
}

// AddEdge adds a directed reference between two existing nodes.
// Returns ErrUnknownSourceNode or ErrUnknownTargetNode when an endpoint is
// missing. Multiple edges between the same pair are allowed; a sprite can
// place the same character at several depths.
func (g *Graph) AddEdge(e Edge) error {
	if _, ok := g.nodes[e.From]; !ok {
		return ErrUnknownSourceNode
	}
	if _, ok := g.nodes[e.To]; !ok {
		return ErrUnknownTargetNode
	}
	if e.Meta == nil {
		e.Meta = Metadata{}
	}
	g.edges = append(g.edges, e)
	g.outgoing[e.From] = append(g.outgoing[e.From], e.To)
	g.incoming[e.To] = append(g.incoming[e.To], e.From)
	return nil
}

// Nodes returns all nodes sorted by character ID. The returned slice
// contains pointers to the actual node structs.
func (g *Graph) Nodes() []*Node {
	ids := slices.Sorted(maps.Keys(g.nodes))
	nodes := make([]*Node, 0, len(ids))
	for _, id := range ids {
		nodes = append(nodes, g.nodes[id])
	}
	return nodes
}

// Edges returns a copy of all edges in insertion order.
func (g *Graph) Edges() []Edge { return slices.Clone(g.edges) }

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Children returns the IDs this node references. Read-only view.
func (g *Graph) Children(id uint16) []uint16 { return g.outgoing[id] }

// Parents returns the IDs that reference this node. Read-only view.
func (g *Graph) Parents(id uint16) []uint16 { return g.incoming[id] }

// OutDegree returns the number of outgoing references from the node.
func (g *Graph) OutDegree(id uint16) int { return len(g.outgoing[id]) }

// InDegree returns the number of incoming references to the node.
func (g *Graph) InDegree(id uint16) int { return len(g.incoming[id]) }

// Node returns the node with the given ID and true, or nil and false.
func (g *Graph) Node(id uint16) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Orphans returns defined characters nothing references, excluding the root
// timeline node. These are dictionary entries no timeline ever places.
// Sorted by ID.
func (g *Graph) Orphans() []*Node {
	var orphans []*Node
	for _, n := range g.Nodes() {
		if n.ID != RootID && len(g.incoming[n.ID]) == 0 {
			orphans = append(orphans, n)
		}
	}
	return orphans
}

// Reachable returns the set of character IDs reachable from the given node,
// including the node itself when it exists. This is the dependency closure
// an export of that character needs.
func (g *Graph) Reachable(id uint16) map[uint16]bool {
	seen := make(map[uint16]bool)
	if _, ok := g.nodes[id]; !ok {
		return seen
	}
	var walk func(uint16)
	walk = func(cur uint16) {
		if seen[cur] {
			return
		}
		seen[cur] = true
		for _, child := range g.outgoing[cur] {
			walk(child)
		}
	}
	walk(id)
	return seen
}

// Validate checks that the graph is acyclic and returns ErrGraphHasCycle
// otherwise. Cycle detection runs in O(N+E) time using depth-first search
// with white/gray/black coloring.
func (g *Graph) Validate() error {
	const (
		white = iota
		gray
		black
	)

	color := make(map[uint16]int, len(g.nodes))
	var hasCycle bool

	var dfs func(id uint16)
	dfs = func(id uint16) {
		color[id] = gray
		for _, child := range g.outgoing[id] {
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				hasCycle = true
				return
			}
		}
		color[id] = black
	}

	for id := range g.nodes {
		if color[id] == white {
			dfs(id)
			if hasCycle {
				return ErrGraphHasCycle
			}
		}
	}
	return nil
}
