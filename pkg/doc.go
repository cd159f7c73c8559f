// Package pkg provides the core libraries for clustermap, a clustered heatmap
// composer.
//
// # Overview
//
// Clustermap takes a numeric matrix, clusters its rows (and optionally its
// columns) hierarchically, and draws the reordered matrix as a heatmap with
// the dendrograms aligned to it. The pkg directory is organized as:
//
//  1. [cluster] - Distances, agglomerative linkage, leaf order and tree cuts
//  2. [layout] - Figure grid arithmetic in normalized coordinates
//  3. [compose] - Clustering plus layout into a [compose.Figure]
//  4. [render] - SVG, PNG, PDF and JSON output of a figure
//  5. [pipeline] - Cached compose and render, shared by the CLI and server
//
// # Architecture
//
// The typical data flow:
//
//	CSV/TSV/JSON matrix
//	         ↓
//	    [io] package (import into a labelled dataset)
//	         ↓
//	    [cluster] package (linkage + leaf order per axis)
//	         ↓
//	    [compose] package (figure regions, reordered labels, color scale)
//	         ↓
//	    [render] package
//	         ↓
//	    SVG/PNG/PDF/JSON output
//
// # Quick Start
//
//	import (
//	    "context"
//	    "github.com/matzehuels/clustermap/pkg/compose"
//	    "github.com/matzehuels/clustermap/pkg/io"
//	    "github.com/matzehuels/clustermap/pkg/render"
//	)
//
//	ds, _ := io.Import("expression.csv")
//	f, _ := compose.Compose(context.Background(), ds.Data, compose.Options{
//	    RowLabels:      ds.RowLabels,
//	    ColLabels:      ds.ColLabels,
//	    NumRowClusters: 3,
//	    TopDendrogram:  true,
//	})
//	svg, _ := render.RenderSVG(f)
//
// # Supporting Packages
//
// [cache] - File, Redis and null caches for linkages and rendered artifacts.
//
// [render/tree] - Standalone dendrograms as Graphviz DOT, rendered with
// go-graphviz.
//
// [errors] - Coded errors (validation, clustering, input) shared by every
// entry point.
//
// [observability] - Hooks for clustering, composition, rendering, cache and
// HTTP events.
//
// [cluster]: https://pkg.go.dev/github.com/matzehuels/clustermap/pkg/cluster
// [layout]: https://pkg.go.dev/github.com/matzehuels/clustermap/pkg/layout
// [compose]: https://pkg.go.dev/github.com/matzehuels/clustermap/pkg/compose
// [render]: https://pkg.go.dev/github.com/matzehuels/clustermap/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/clustermap/pkg/pipeline
// [io]: https://pkg.go.dev/github.com/matzehuels/clustermap/pkg/io
// [cache]: https://pkg.go.dev/github.com/matzehuels/clustermap/pkg/cache
// [render/tree]: https://pkg.go.dev/github.com/matzehuels/clustermap/pkg/render/tree
// [errors]: https://pkg.go.dev/github.com/matzehuels/clustermap/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/clustermap/pkg/observability
package pkg
