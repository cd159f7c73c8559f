// Package layout computes the region grid of a clustered heatmap figure.
//
// The figure is partitioned into rectangles: the heatmap body, a row
// dendrogram on its left, a column dendrogram on top, a colorbar strip on
// the right and gutters for tick labels and the title. The arithmetic keeps
// the dendrograms aligned with the heatmap so that every leaf sits exactly
// next to its heatmap row or column:
//
//   - the left dendrogram spans the heatmap's vertical extent,
//   - the top dendrogram spans the heatmap's horizontal extent,
//   - no two regions overlap and all lie inside the unit square.
//
// Horizontally, from left to right:
//
//	margin | left dendrogram | heatmap | row labels | pad | colorbar | ticks | margin
//
// Vertically, from bottom to top:
//
//	margin | column labels | heatmap | top dendrogram | title | margin
//
// All input sizes are in points; the resulting [Grid] is fractional.
package layout

import (
	"github.com/matzehuels/clustermap/pkg/errors"
)

const eps = 1e-9

// Default sizes in points (1in = 72pt).
const (
	DefaultWidth           = 864 // 12in
	DefaultHeight          = 576 // 8in
	DefaultMargin          = 12
	DefaultDendrogramRatio = 0.15
	DefaultColorbarPad     = 36 // 0.5in
	ColorbarWidth          = 14.4
	HistogramColorbarWidth = 32.4
)

// Options describes which regions exist and how large the fixed-size ones
// are.
type Options struct {
	// Width and Height of the whole figure in points.
	Width, Height float64
	// Margin around the figure in points.
	Margin float64

	// DendrogramRatio is the fraction of the figure width (left dendrogram)
	// or height (top dendrogram) given to each dendrogram.
	DendrogramRatio float64

	LeftDendrogram bool
	TopDendrogram  bool
	Colorbar       bool
	// Histogram widens the colorbar strip to make room for the overlay.
	Histogram bool

	// ColorbarPad separates the row label gutter from the colorbar. Nil
	// means DefaultColorbarPad; zero puts the colorbar right after the labels.
	ColorbarPad *float64
	// RowLabelWidth is the gutter right of the heatmap.
	RowLabelWidth float64
	// ColLabelHeight is the gutter below the heatmap.
	ColLabelHeight float64
	// ColorbarTickWidth is the gutter right of the colorbar.
	ColorbarTickWidth float64
	// ColorbarCaptionHeight is the space below the colorbar for the histogram
	// axis labels.
	ColorbarCaptionHeight float64
	// TitleHeight reserves a band above everything else; 0 disables it.
	TitleHeight float64
}

// SetDefaults fills zero-valued sizes with their defaults.
func (o *Options) SetDefaults() {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Margin == 0 {
		o.Margin = DefaultMargin
	}
	if o.DendrogramRatio == 0 {
		o.DendrogramRatio = DefaultDendrogramRatio
	}
	if o.ColorbarPad == nil {
		pad := float64(DefaultColorbarPad)
		o.ColorbarPad = &pad
	}
}

// Grid is the computed set of regions. Regions that are not present have
// the zero Rect.
type Grid struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	Heatmap        Rect `json:"heatmap"`
	LeftDendrogram Rect `json:"left_dendrogram"`
	TopDendrogram  Rect `json:"top_dendrogram"`
	Colorbar       Rect `json:"colorbar"`
	RowLabels      Rect `json:"row_labels"`
	ColLabels      Rect `json:"col_labels"`
	Title          Rect `json:"title"`

	HasLeftDendrogram bool `json:"has_left_dendrogram"`
	HasTopDendrogram  bool `json:"has_top_dendrogram"`
	HasColorbar       bool `json:"has_colorbar"`
	HasTitle          bool `json:"has_title"`
}

// Regions returns the present regions keyed by name.
func (g Grid) Regions() map[string]Rect {
	out := map[string]Rect{
		"heatmap":    g.Heatmap,
		"row_labels": g.RowLabels,
		"col_labels": g.ColLabels,
	}
	if g.HasLeftDendrogram {
		out["left_dendrogram"] = g.LeftDendrogram
	}
	if g.HasTopDendrogram {
		out["top_dendrogram"] = g.TopDendrogram
	}
	if g.HasColorbar {
		out["colorbar"] = g.Colorbar
	}
	if g.HasTitle {
		out["title"] = g.Title
	}
	return out
}

// Build computes the grid. It fails with a validation error when the
// options leave no room for the heatmap.
func Build(opts Options) (Grid, error) {
	opts.SetDefaults()
	if err := opts.validate(); err != nil {
		return Grid{}, err
	}

	w, h := opts.Width, opts.Height
	g := Grid{
		Width:             w,
		Height:            h,
		HasLeftDendrogram: opts.LeftDendrogram,
		HasTopDendrogram:  opts.TopDendrogram,
		HasColorbar:       opts.Colorbar,
		HasTitle:          opts.TitleHeight > 0,
	}

	// Horizontal pass, in points.
	left := opts.Margin
	var dendLeft, dendRight float64
	if opts.LeftDendrogram {
		dendLeft = left
		left += opts.DendrogramRatio * w
		dendRight = left
	}
	right := w - opts.Margin
	var cbLeft, cbRight float64
	if opts.Colorbar {
		right -= opts.ColorbarTickWidth
		cbRight = right
		right -= colorbarWidth(opts.Histogram)
		cbLeft = right
		right -= *opts.ColorbarPad
	}
	right -= opts.RowLabelWidth
	heatLeft, heatRight := left, right

	// Vertical pass.
	bottom := opts.Margin + opts.ColLabelHeight
	if opts.Colorbar {
		bottom = max(bottom, opts.Margin+opts.ColorbarCaptionHeight)
	}
	top := h - opts.Margin
	var titleBottom, titleTop float64
	if g.HasTitle {
		titleTop = top
		top -= opts.TitleHeight
		titleBottom = top
	}
	var dendBottom, dendTop float64
	if opts.TopDendrogram {
		dendTop = top
		top -= opts.DendrogramRatio * h
		dendBottom = top
	}
	heatBottom, heatTop := bottom, top

	if heatRight-heatLeft <= eps || heatTop-heatBottom <= eps {
		return Grid{}, errors.Validation("figure %gx%gpt leaves no room for the heatmap", w, h)
	}

	g.Heatmap = frac(heatLeft, heatBottom, heatRight, heatTop, w, h)
	g.RowLabels = frac(heatRight, heatBottom, heatRight+opts.RowLabelWidth, heatTop, w, h)
	g.ColLabels = frac(heatLeft, heatBottom-opts.ColLabelHeight, heatRight, heatBottom, w, h)
	if opts.LeftDendrogram {
		g.LeftDendrogram = frac(dendLeft, heatBottom, dendRight, heatTop, w, h)
	}
	if opts.TopDendrogram {
		g.TopDendrogram = frac(heatLeft, dendBottom, heatRight, dendTop, w, h)
	}
	if opts.Colorbar {
		g.Colorbar = frac(cbLeft, heatBottom, cbRight, heatTop, w, h)
	}
	if g.HasTitle {
		g.Title = frac(opts.Margin, titleBottom, w-opts.Margin, titleTop, w, h)
	}
	return g, nil
}

func (o Options) validate() error {
	switch {
	case o.Width <= 0 || o.Height <= 0:
		return errors.Validation("figure size must be positive, got %gx%g", o.Width, o.Height)
	case o.Margin < 0:
		return errors.Validation("margin must be non-negative, got %g", o.Margin)
	case o.DendrogramRatio <= 0 || o.DendrogramRatio >= 0.5:
		return errors.Validation("dendrogram ratio must be in (0, 0.5), got %g", o.DendrogramRatio)
	case *o.ColorbarPad < 0 || o.RowLabelWidth < 0 || o.ColLabelHeight < 0 ||
		o.ColorbarTickWidth < 0 || o.ColorbarCaptionHeight < 0 || o.TitleHeight < 0:
		return errors.Validation("gutter sizes must be non-negative")
	}
	return nil
}

func colorbarWidth(histogram bool) float64 {
	if histogram {
		return HistogramColorbarWidth
	}
	return ColorbarWidth
}

func frac(l, b, r, t, w, h float64) Rect {
	return Rect{Left: l / w, Bottom: b / h, Right: r / w, Top: t / h}
}
