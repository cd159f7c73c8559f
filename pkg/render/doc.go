// Package render draws a composed clustermap figure.
//
// # Overview
//
// A [compose.Figure] describes what goes where; this package turns it into
// pixels or vectors on a gonum/plot canvas:
//
//   - [Draw] paints a figure onto any [draw.Canvas]
//   - [RenderSVG], [RenderPNG] and [RenderPDF] wrap the vgsvg, vgimg and
//     vgpdf backends
//   - [RenderJSON] exports the figure's data for other tools
//
// Regions are drawn in the figure's creation order: left dendrogram, top
// dendrogram, heatmap, colorbar.
//
//	f, err := compose.Compose(ctx, x, compose.Options{NumRowClusters: 3})
//	svg, err := render.RenderSVG(f)
//	png, err := render.RenderPNG(f, render.WithDPI(300))
//
// # Dendrograms
//
// Dendrogram links below the tree cut take their cluster's color from an
// evenly spaced HCL palette ([ClusterColor]); links above the cut are drawn
// in a neutral gray. Leaves sit at the centers of the heatmap rows and
// columns they belong to.
//
// # Tree view
//
// The [tree] subpackage renders a linkage as a Graphviz diagram instead of
// a heatmap figure.
package render
