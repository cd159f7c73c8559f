// Package compose arranges a clustered heatmap figure.
//
// [Compose] clusters the rows (and optionally the columns) of a matrix,
// reorders the matrix and its labels by the dendrogram leaf order, and lays
// out the regions of the figure: left dendrogram, top dendrogram, heatmap and
// colorbar. The result is a [Figure] holding a handle per region plus the
// linkages, leaf orders and cluster assignments, which callers may inspect
// or restyle before passing it to package render.
//
// Each axis computes its leaf order exactly once; the same permutation
// reorders the heatmap and positions the dendrogram leaves, so rows and
// columns always line up with their tree.
//
// Validation happens before any clustering. A request for more clusters
// than leaves is clamped and reported in [Figure.Adjustments].
package compose

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/charmbracelet/log"
	"gonum.org/v1/gonum/mat"

	"github.com/matzehuels/clustermap/pkg/cluster"
	"github.com/matzehuels/clustermap/pkg/errors"
	"github.com/matzehuels/clustermap/pkg/layout"
	"github.com/matzehuels/clustermap/pkg/observability"
)

// Compose builds the figure for x. The matrix and the label slices in opts
// are not modified.
func Compose(ctx context.Context, x mat.Matrix, opts Options) (f *Figure, err error) {
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := validateMatrix(x); err != nil {
		return nil, err
	}
	r, c := x.Dims()
	if err := errors.ValidateLabels("row", opts.RowLabels, r); err != nil {
		return nil, err
	}
	if err := errors.ValidateLabels("column", opts.ColLabels, c); err != nil {
		return nil, err
	}

	logger := opts.Logger
	start := time.Now()
	observability.Pipeline().OnComposeStart(ctx, r, c)
	defer func() {
		observability.Pipeline().OnComposeComplete(ctx, time.Since(start), err)
	}()

	rowLinker := opts.RowLinker
	if rowLinker == nil {
		rowLinker = cluster.Agglomerative{Metric: opts.Metric, Method: opts.Method}
	}
	rows, err := clusterAxis(ctx, AxisRows, rowLinker, x, opts.NumRowClusters, logger)
	if err != nil {
		return nil, err
	}
	rows.Labels = permute(labelsOrIndex(opts.RowLabels, r), rows.Leaves)

	var cols Axis
	if opts.TopDendrogram || opts.NumColClusters > 0 {
		colLinker := opts.ColLinker
		if colLinker == nil {
			colLinker = cluster.Agglomerative{Metric: opts.Metric, Method: opts.Method}
		}
		cols, err = clusterAxis(ctx, AxisCols, colLinker, x.T(), opts.NumColClusters, logger)
		if err != nil {
			return nil, err
		}
	} else {
		cols = Axis{Name: AxisCols, Leaves: identity(c)}
	}
	cols.Labels = permute(labelsOrIndex(opts.ColLabels, c), cols.Leaves)

	f = &Figure{
		Rows:           rows,
		Cols:           cols,
		Data:           reorder(x, rows.Leaves, cols.Leaves),
		Title:          opts.Title,
		LabelFontSize:  opts.LabelFontSize,
		XLabelRotation: *opts.XLabelRotation,
		YLabelRotation: opts.YLabelRotation,
		Width:          opts.Width,
		Height:         opts.Height,
	}
	for _, a := range []*Axis{&f.Rows, &f.Cols} {
		if a.Adjustment != nil {
			f.Adjustments = append(f.Adjustments, *a.Adjustment)
		}
	}

	values := f.Data.RawMatrix().Data
	lo, hi := valueRange(values)
	if opts.VMin != nil {
		lo = *opts.VMin
	}
	if opts.VMax != nil {
		hi = *opts.VMax
	}
	if lo > hi {
		return nil, errors.Validation("color scale is empty: vmin %v > vmax %v", lo, hi)
	}
	f.Scale = newScale(lo, hi, opts.Colormap)
	if opts.Histogram && !opts.HideColorbar {
		h := NewHistogram(values)
		f.Histogram = &h
	}

	grid, err := layout.Build(layoutOptions(f, opts))
	if err != nil {
		return nil, err
	}
	f.Grid = grid

	// Region creation order: dendrograms, heatmap, colorbar.
	if grid.HasLeftDendrogram {
		f.LeftDendrogram = &Region{Name: RegionLeftDendrogram, Bounds: grid.LeftDendrogram, LineWidth: 1}
	}
	if grid.HasTopDendrogram {
		f.TopDendrogram = &Region{Name: RegionTopDendrogram, Bounds: grid.TopDendrogram, LineWidth: 1}
	}
	f.Heatmap = &Region{Name: RegionHeatmap, Bounds: grid.Heatmap}
	if grid.HasColorbar {
		f.Colorbar = &Region{Name: RegionColorbar, Bounds: grid.Colorbar, Frame: true, LineWidth: 0.5}
	}

	logger.Debug("composed figure",
		"rows", r, "cols", c,
		"method", opts.Method, "metric", opts.Metric,
		"row_clusters", len(distinct(rows.Clusters())),
		"col_clusters", len(distinct(cols.Clusters())),
		"duration", time.Since(start))
	return f, nil
}

func validateMatrix(x mat.Matrix) error {
	if x == nil {
		return errors.Validation("matrix is required")
	}
	r, c := x.Dims()
	if r == 0 || c == 0 {
		return errors.Validation("matrix must be non-empty in both dimensions, got %dx%d", r, c)
	}
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if v := x.At(i, j); math.IsNaN(v) || math.IsInf(v, 0) {
				return errors.Validation("matrix value at (%d, %d) is not finite: %v", i, j, v)
			}
		}
	}
	return nil
}

func clusterAxis(ctx context.Context, name string, linker cluster.Linker, m mat.Matrix, k int, logger *log.Logger) (a Axis, err error) {
	n, _ := m.Dims()
	if err := ctx.Err(); err != nil {
		return Axis{}, err
	}
	start := time.Now()
	observability.Pipeline().OnClusterStart(ctx, name, n)
	defer func() {
		observability.Pipeline().OnClusterComplete(ctx, name, n, time.Since(start), err)
	}()

	l, err := linker.Link(m)
	if err != nil {
		return Axis{}, fmt.Errorf("%s linkage: %w", name, err)
	}
	if err := l.Validate(n); err != nil {
		return Axis{}, errors.Clustering("%s linkage is malformed: %s", name, errors.UserMessage(err))
	}

	a = Axis{Name: name, Clustered: true, Linkage: l, Leaves: l.Leaves()}
	if k > 1 {
		cut, err := l.Cut(k)
		if err != nil {
			return Axis{}, err
		}
		a.Cut = &cut
		if cut.Clamped() {
			a.Adjustment = &Adjustment{Axis: name, Requested: cut.Requested, Applied: cut.K}
			logger.Warn("cluster count clamped", "axis", name, "requested", cut.Requested, "applied", cut.K)
		}
	}
	d, err := l.Dendrogram(a.Leaves, a.Cut)
	if err != nil {
		return Axis{}, err
	}
	a.Dendrogram = &d
	return a, nil
}

func layoutOptions(f *Figure, opts Options) layout.Options {
	lo := layout.Options{
		Width:           opts.Width,
		Height:          opts.Height,
		DendrogramRatio: opts.DendrogramRatio,
		LeftDendrogram:  !opts.HideLeftDendrogram,
		TopDendrogram:   opts.TopDendrogram,
		Colorbar:        !opts.HideColorbar,
		Histogram:       f.Histogram != nil,
		RowLabelWidth:   labelGutter(f.Rows.Labels, opts.LabelFontSize, opts.YLabelRotation, false),
		ColLabelHeight:  labelGutter(f.Cols.Labels, opts.LabelFontSize, *opts.XLabelRotation, true),
	}
	if lo.Colorbar {
		lo.ColorbarPad = opts.ColorbarPad
		lo.ColorbarTickWidth = tickGutter(f.Scale.Ticks, opts.LabelFontSize)
		if f.Histogram != nil {
			lo.ColorbarCaptionHeight = 3*lineHeight*opts.LabelFontSize + tickPad
		}
	}
	if opts.Title != "" {
		lo.TitleHeight = lineHeight*DefaultTitleFontSize + tickPad
	}
	return lo
}

// reorder copies x with rows and columns permuted into display order.
func reorder(x mat.Matrix, rows, cols []int) *mat.Dense {
	out := mat.NewDense(len(rows), len(cols), nil)
	for i, ri := range rows {
		for j, cj := range cols {
			out.Set(i, j, x.At(ri, cj))
		}
	}
	return out
}

func permute(labels []string, order []int) []string {
	out := make([]string, len(order))
	for p, i := range order {
		out[p] = labels[i]
	}
	return out
}

func labelsOrIndex(labels []string, n int) []string {
	if labels == nil {
		return positionalLabels(n)
	}
	return labels
}

func identity(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func valueRange(values []float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo, hi = min(lo, v), max(hi, v)
	}
	return lo, hi
}

func distinct(ids []int) map[int]struct{} {
	out := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out
}
