package graphdot

import (
	"strings"
	"testing"

	"github.com/halfdome/swfkit/pkg/dag"
)

func buildGraph(t *testing.T) *dag.Graph {
	t.Helper()
	g := dag.New(dag.Metadata{})
	nodes := []dag.Node{
		{ID: dag.RootID, Kind: "timeline", Label: "main timeline"},
		{ID: 1, Kind: "shape"},
		{ID: 2, Kind: "sprite", Label: "button_up"},
		{ID: 3, Kind: "bitmap"},
	}
	for _, n := range nodes {
		if err := g.AddNode(n); err != nil {
			t.Fatalf("AddNode(%d): %v", n.ID, err)
		}
	}
	edges := []dag.Edge{
		{From: dag.RootID, To: 2, Kind: dag.EdgePlacement},
		{From: 2, To: 1, Kind: dag.EdgePlacement},
		{From: 1, To: 3, Kind: dag.EdgeFill},
	}
	for _, e := range edges {
		if err := g.AddEdge(e); err != nil {
			t.Fatalf("AddEdge(%d->%d): %v", e.From, e.To, err)
		}
	}
	return g
}

func TestToDOT_ContainsNodesAndEdges(t *testing.T) {
	g := buildGraph(t)
	dot := ToDOT(g, Options{})

	for _, want := range []string{
		"digraph characters {",
		`0 [label="main timeline"`,
		`1 [label="shape 1"`,
		`2 [label="button_up"`,
		`3 [label="bitmap 3"`,
		"0 -> 2;",
		"2 -> 1;",
		"1 -> 3 [style=dashed];",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
}

func TestToDOT_KindColors(t *testing.T) {
	g := buildGraph(t)
	dot := ToDOT(g, Options{})

	if !strings.Contains(dot, "fillcolor=gold") {
		t.Errorf("timeline node missing gold fill:\n%s", dot)
	}
	if !strings.Contains(dot, "fillcolor=lightblue") {
		t.Errorf("sprite node missing lightblue fill:\n%s", dot)
	}
	// Shapes use the default white fill and carry no explicit attribute.
	if strings.Contains(dot, `1 [label="shape 1", fillcolor`) {
		t.Errorf("shape node should not set a fill color:\n%s", dot)
	}
}

func TestToDOT_DetailedLabels(t *testing.T) {
	g := buildGraph(t)
	dot := ToDOT(g, Options{Detailed: true})

	if !strings.Contains(dot, `label="main timeline\nin: 0 out: 1"`) {
		t.Errorf("root degree label missing:\n%s", dot)
	}
	if !strings.Contains(dot, `label="shape 1\nin: 1 out: 1"`) {
		t.Errorf("shape degree label missing:\n%s", dot)
	}
}

func TestToDOT_Deterministic(t *testing.T) {
	g := buildGraph(t)
	a := ToDOT(g, Options{})
	b := ToDOT(g, Options{})
	if a != b {
		t.Error("DOT output differs between runs")
	}
}
