package dag

import (
	"errors"
	"testing"
)

func buildGraph(t *testing.T) *Graph {
	t.Helper()
	g := New(nil)
	nodes := []Node{
		{ID: RootID, Kind: "timeline"},
		{ID: 1, Kind: "bitmap"},
		{ID: 2, Kind: "shape"},
		{ID: 3, Kind: "sprite"},
		{ID: 4, Kind: "shape"},
	}
	for _, n := range nodes {
		if err := g.AddNode(n); err != nil {
			t.Fatalf("AddNode(%d): %v", n.ID, err)
		}
	}
	edges := []Edge{
		{From: RootID, To: 3, Kind: EdgePlacement},
		{From: 3, To: 2, Kind: EdgePlacement},
		{From: 2, To: 1, Kind: EdgeFill},
	}
	for _, e := range edges {
		if err := g.AddEdge(e); err != nil {
			t.Fatalf("AddEdge(%d->%d): %v", e.From, e.To, err)
		}
	}
	return g
}

func TestGraph_Counts(t *testing.T) {
	g := buildGraph(t)
	if got := g.NodeCount(); got != 5 {
		t.Errorf("NodeCount = %d, want 5", got)
	}
	if got := g.EdgeCount(); got != 3 {
		t.Errorf("EdgeCount = %d, want 3", got)
	}
	if got := g.OutDegree(3); got != 1 {
		t.Errorf("OutDegree(3) = %d, want 1", got)
	}
	if got := g.InDegree(1); got != 1 {
		t.Errorf("InDegree(1) = %d, want 1", got)
	}
}

func TestGraph_DuplicateAndUnknown(t *testing.T) {
	g := buildGraph(t)
	if err := g.AddNode(Node{ID: 2}); !errors.Is(err, ErrDuplicateNodeID) {
		t.Errorf("duplicate node: err = %v, want ErrDuplicateNodeID", err)
	}
	if err := g.AddEdge(Edge{From: 99, To: 1}); !errors.Is(err, ErrUnknownSourceNode) {
		t.Errorf("unknown source: err = %v, want ErrUnknownSourceNode", err)
	}
	if err := g.AddEdge(Edge{From: 1, To: 99}); !errors.Is(err, ErrUnknownTargetNode) {
		t.Errorf("unknown target: err = %v, want ErrUnknownTargetNode", err)
	}
}

func TestGraph_NodesSortedByID(t *testing.T) {
	g := buildGraph(t)
	nodes := g.Nodes()
	for i := 1; i < len(nodes); i++ {
		if nodes[i-1].ID >= nodes[i].ID {
			t.Fatalf("nodes not sorted: %d before %d", nodes[i-1].ID, nodes[i].ID)
		}
	}
}

func TestGraph_Orphans(t *testing.T) {
	g := buildGraph(t)
	orphans := g.Orphans()
	if len(orphans) != 1 || orphans[0].ID != 4 {
		t.Fatalf("orphans = %v, want just character 4", orphans)
	}
}

func TestGraph_Reachable(t *testing.T) {
	g := buildGraph(t)
	got := g.Reachable(3)
	want := map[uint16]bool{3: true, 2: true, 1: true}
	if len(got) != len(want) {
		t.Fatalf("reachable(3) = %v, want %v", got, want)
	}
	for id := range want {
		if !got[id] {
			t.Errorf("reachable(3) missing %d", id)
		}
	}
	if got := g.Reachable(99); len(got) != 0 {
		t.Errorf("reachable(99) = %v, want empty", got)
	}
}

func TestGraph_ValidateCycle(t *testing.T) {
	g := buildGraph(t)
	if err := g.Validate(); err != nil {
		t.Fatalf("acyclic graph: %v", err)
	}
	// Sprite 3 placing itself through shape 2 closes a loop.
	if err := g.AddEdge(Edge{From: 1, To: 3, Kind: EdgePlacement}); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}
	if err := g.Validate(); !errors.Is(err, ErrGraphHasCycle) {
		t.Errorf("cyclic graph: err = %v, want ErrGraphHasCycle", err)
	}
}
