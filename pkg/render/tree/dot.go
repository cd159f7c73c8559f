package tree

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/clustermap/pkg/cluster"
	"github.com/matzehuels/clustermap/pkg/render"
)

// Options configures the tree diagram.
type Options struct {
	// Detailed labels internal nodes with their merge height and size.
	Detailed bool
	// Horizontal lays the tree out left to right instead of top down.
	Horizontal bool
	// Cut colors leaves and subtrees below the cut by cluster.
	Cut *cluster.Cut
}

// ToDOT converts a linkage to Graphviz DOT source. labels name the leaves by
// original index; nil means positional names. Leaves are emitted in
// dendrogram leaf order so Graphviz keeps them in that order.
func ToDOT(l cluster.Linkage, labels []string, opts Options) string {
	n := l.N()
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	if opts.Horizontal {
		buf.WriteString("  rankdir=LR;\n")
	} else {
		buf.WriteString("  rankdir=TB;\n")
	}
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  ordering=out;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.15,0.05\"];\n")
	buf.WriteString("  edge [arrowhead=none];\n")
	buf.WriteString("\n")

	clusterOf := leafClusters(l, opts.Cut)
	k := 0
	if opts.Cut != nil {
		k = opts.Cut.K
	}

	for _, leaf := range l.Leaves() {
		attrs := fmt.Sprintf("label=%q", leafLabel(labels, leaf))
		if id := clusterOf[leaf]; id > 0 {
			attrs += fmt.Sprintf(", fillcolor=%q", render.ClusterColor(id, k).Hex())
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", nodeID(leaf), attrs)
	}
	for i, m := range l {
		id := n + i
		label := ""
		if opts.Detailed {
			label = fmt.Sprintf("h=%.3g\\nn=%d", m.Distance, m.Size)
		}
		fmt.Fprintf(&buf, "  %q [shape=point, width=0.08, xlabel=\"%s\"];\n", nodeID(id), label)
	}

	buf.WriteString("\n")
	for i, m := range l {
		id := n + i
		for _, child := range [2]int{m.A, m.B} {
			attrs := ""
			if c := clusterOf[child]; c > 0 && clusterOf[id] == c {
				attrs = fmt.Sprintf(" [color=%q, penwidth=2]", render.ClusterColor(c, k).Hex())
			}
			fmt.Fprintf(&buf, "  %q -> %q%s;\n", nodeID(id), nodeID(child), attrs)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// leafClusters assigns every node id the cluster its whole subtree belongs
// to, or 0 when the subtree spans several clusters.
func leafClusters(l cluster.Linkage, cut *cluster.Cut) []int {
	n := l.N()
	out := make([]int, 2*n-1)
	if cut == nil || len(cut.Labels) != n {
		return out
	}
	copy(out, cut.Labels)
	for i, m := range l {
		if a, b := out[m.A], out[m.B]; a == b {
			out[n+i] = a
		}
	}
	return out
}

func nodeID(id int) string { return "n" + strconv.Itoa(id) }

func leafLabel(labels []string, leaf int) string {
	if leaf < len(labels) {
		return labels[leaf]
	}
	return strconv.Itoa(leaf)
}

// RenderSVG renders DOT source to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	out, err := renderFormat(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

// RenderPNG renders DOT source to PNG using Graphviz.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return renderFormat(ctx, dot, graphviz.PNG)
}

func renderFormat(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
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

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the SVG scales with its
// container.
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

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
