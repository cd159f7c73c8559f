// Package tree renders a hierarchical clustering as a Graphviz diagram.
//
// Where the heatmap figure shows the dendrogram squeezed next to the data,
// this view lays out the merge tree on its own: leaves as labeled boxes in
// dendrogram leaf order, merges as points, optionally annotated with merge
// height and cluster size.
//
//	dot := tree.ToDOT(linkage, labels, tree.Options{Detailed: true, Cut: &cut})
//	svg, err := tree.RenderSVG(ctx, dot)
//
// With a cut, leaves and the links inside each cluster take the same colors
// as the heatmap figure.
package tree
