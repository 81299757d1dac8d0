// Package graphdot renders character reference graphs as Graphviz DOT and,
// through the embedded graphviz engine, as SVG.
package graphdot

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"

	"github.com/halfdome/swfkit/pkg/dag"
)

// Options configures DOT generation.
type Options struct {
	// Detailed includes degree counts and metadata in node labels.
	// When false, only the kind and id are shown.
	Detailed bool
}

// kindColor maps definition kinds to node fill colors.
var kindColor = map[string]string{
	"timeline":   "gold",
	"sprite":     "lightblue",
	"shape":      "white",
	"morphshape": "lavender",
	"bitmap":     "palegreen",
	"raw":        "lightgrey",
}

// ToDOT converts a reference graph to Graphviz DOT. Placement edges are
// solid, bitmap fill edges dashed. The result renders with [RenderSVG] or
// any external dot binary.
func ToDOT(g *dag.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph characters {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes() {
		fmt.Fprintf(&buf, "  %d [label=%q%s];\n", n.ID, nodeLabel(g, n, opts.Detailed), nodeAttrs(n))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		attr := ""
		if e.Kind == dag.EdgeFill {
			attr = " [style=dashed]"
		}
		fmt.Fprintf(&buf, "  %d -> %d%s;\n", e.From, e.To, attr)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeLabel(g *dag.Graph, n *dag.Node, detailed bool) string {
	label := n.Label
	if label == "" {
		label = fmt.Sprintf("%s %d", n.Kind, n.ID)
	}
	if !detailed {
		return label
	}
	return fmt.Sprintf("%s\nin: %d out: %d", label, g.InDegree(n.ID), g.OutDegree(n.ID))
}

func nodeAttrs(n *dag.Node) string {
	if c, ok := kindColor[n.Kind]; ok && c != "white" {
		return fmt.Sprintf(", fillcolor=%s", c)
	}
	return ""
}

// RenderSVG renders a DOT graph to SVG using the embedded graphviz engine.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	return render(ctx, dot, graphviz.SVG)
}

// RenderPNG renders a DOT graph to PNG using the embedded graphviz engine.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return render(ctx, dot, graphviz.PNG)
}

func render(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
