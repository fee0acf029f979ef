// Package render converts rendered diagrams between output formats.
//
// Diagrams are produced as SVG (see [tree] for archive nesting trees). The
// [ToPDF] and [ToPNG] functions convert SVG to other formats using the
// external rsvg-convert tool from librsvg.
//
//	dot := tree.ToDOT(root, tree.Options{})
//	svg, err := tree.RenderSVG(ctx, dot)
//	png, err := render.ToPNG(ctx, svg, 2.0) // 2x scale
//
// [tree]: github.com/matzehuels/fwmeta/pkg/render/tree
package render
