package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/spacecol/pkg/tree"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed includes depth and position in node labels.
	// When false, nodes are unlabelled points.
	Detailed bool
}

// ToDOT converts a tree to Graphviz DOT format. Roots are drawn as filled
// boxes, leaves with a double outline.
func ToDOT(t *tree.Tree, opts Options) string {
	leaf := make([]bool, t.Len())
	for _, i := range t.Leaves() {
		leaf[i] = true
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	if opts.Detailed {
		buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=10];\n")
	} else {
		buf.WriteString("  node [shape=point, width=0.08];\n")
	}
	buf.WriteString("  edge [arrowhead=none];\n")
	buf.WriteString("  ranksep=0.2;\n")
	buf.WriteString("  nodesep=0.1;\n")
	buf.WriteString("\n")

	for i, n := range t.Nodes() {
		fmt.Fprintf(&buf, "  n%d [%s];\n", i, fmtAttrs(t, i, n, leaf[i], opts.Detailed))
	}

	buf.WriteString("\n")
	for i, n := range t.Nodes() {
		if !n.IsRoot() {
			fmt.Fprintf(&buf, "  n%d -> n%d;\n", n.Parent, i)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtAttrs(t *tree.Tree, i int, n tree.Node, leaf, detailed bool) string {
	var attrs string
	if detailed {
		label := fmt.Sprintf("#%d d=%d\n(%.1f, %.1f", i, t.Depth(i), n.Pos.X, n.Pos.Y)
		if t.Dims() == 3 {
			label += fmt.Sprintf(", %.1f", n.Pos.Z)
		}
		attrs = fmt.Sprintf("label=%q", label+")")
	} else {
		attrs = `label=""`
	}
	switch {
	case n.IsRoot():
		attrs += ", color=firebrick, fillcolor=firebrick"
		if detailed {
			attrs += ", fontcolor=white"
		}
	case leaf:
		attrs += ", peripheries=2"
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
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
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces the Graphviz root element, which carries pt
// units and a translated viewBox, with a plain pixel-sized one.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
