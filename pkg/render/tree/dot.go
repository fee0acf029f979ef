// Package tree renders the nesting structure of a package as a diagram.
//
// Archives are drawn as folders, boot files are highlighted, and edges point
// from each archive to its members:
//
//	root, err := walker.Inspect(ctx, reader, reader.Name())
//	dot := tree.ToDOT(root, tree.Options{})
//	svg, err := tree.RenderSVG(ctx, dot)
package tree

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/fwmeta/pkg/archive"
	"github.com/matzehuels/fwmeta/pkg/render"
)

// Options configures tree rendering.
type Options struct {
	// HideFiles omits members that are neither archives nor boot files.
	HideFiles bool
	// Sizes adds uncompressed sizes to labels.
	Sizes bool
}

// ToDOT converts an archive tree to Graphviz DOT format.
// Node IDs are assigned in depth-first order, so the output is stable.
func ToDOT(root *archive.Node, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("\n")

	var edges []string
	next := 0
	var visit func(n *archive.Node) string
	visit = func(n *archive.Node) string {
		id := fmt.Sprintf("n%d", next)
		next++
		fmt.Fprintf(&buf, "  %s [%s];\n", id, strings.Join(fmtAttrs(n, opts), ", "))
		for _, c := range n.Children {
			if opts.HideFiles && c.Kind == archive.KindFile {
				continue
			}
			edges = append(edges, fmt.Sprintf("  %s -> %s;\n", id, visit(c)))
		}
		return id
	}
	visit(root)

	buf.WriteString("\n")
	for _, e := range edges {
		buf.WriteString(e)
	}
	buf.WriteString("}\n")
	return buf.String()
}

func fmtAttrs(n *archive.Node, opts Options) []string {
	label := n.Name
	if opts.Sizes && n.Depth > 0 {
		label = fmt.Sprintf("%s\n%s", n.Name, humanSize(n.Size))
	}
	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch n.Kind {
	case archive.KindArchive:
		attrs = append(attrs, "shape=folder", "fillcolor=\"#e8f0fe\"")
	case archive.KindBoot:
		attrs = append(attrs, "fillcolor=\"#fde68a\"", "penwidth=2")
	default:
		attrs = append(attrs, "fontcolor=grey40")
	}
	return attrs
}

func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
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
	return buf.Bytes(), nil
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
