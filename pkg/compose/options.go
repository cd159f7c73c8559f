package compose

import (
	"io"
	"math"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/clustermap/pkg/cluster"
	"github.com/matzehuels/clustermap/pkg/errors"
	"github.com/matzehuels/clustermap/pkg/layout"
)

// Default values for Options.
const (
	DefaultLabelFontSize  = 8.0
	DefaultXLabelRotation = -45.0
	DefaultColormap       = "smooth-blue-red"
	DefaultTitleFontSize  = 12.0
)

// Options configures a composed figure. The zero value is usable: it yields
// a row dendrogram, heatmap and colorbar with positional labels and average
// linkage over euclidean distances.
type Options struct {
	// RowLabels and ColLabels annotate the matrix axes. Nil means positional
	// labels ("0", "1", ...); otherwise the length must match.
	RowLabels []string `json:"row_labels,omitempty"`
	ColLabels []string `json:"col_labels,omitempty"`

	// NumRowClusters and NumColClusters request a tree cut. 0 or 1 draws the
	// dendrogram without cutting it.
	NumRowClusters int `json:"num_row_clusters,omitempty"`
	NumColClusters int `json:"num_col_clusters,omitempty"`

	// RowLinker and ColLinker override the built-in clustering. ColLinker
	// receives the transposed matrix.
	RowLinker cluster.Linker `json:"-"`
	ColLinker cluster.Linker `json:"-"`

	// Metric and Method configure the built-in clustering.
	Metric cluster.Metric `json:"metric,omitempty"`
	Method cluster.Method `json:"method,omitempty"`

	// TopDendrogram clusters the columns and draws their tree on top.
	TopDendrogram bool `json:"top_dendrogram,omitempty"`
	// HideLeftDendrogram keeps the row clustering but omits its drawing.
	HideLeftDendrogram bool `json:"hide_left_dendrogram,omitempty"`
	// HideColorbar omits the colorbar strip.
	HideColorbar bool `json:"hide_colorbar,omitempty"`
	// Histogram overlays a histogram of the matrix values on the colorbar.
	Histogram bool `json:"histogram,omitempty"`

	// LabelFontSize is the tick label size in points.
	LabelFontSize float64 `json:"label_font_size,omitempty"`
	// XLabelRotation rotates column labels, in degrees. Nil means -45.
	XLabelRotation *float64 `json:"x_label_rotation,omitempty"`
	// YLabelRotation rotates row labels, in degrees.
	YLabelRotation float64 `json:"y_label_rotation,omitempty"`

	// Colormap names the color scale, see Colormaps.
	Colormap string `json:"colormap,omitempty"`
	// VMin and VMax pin the color scale; nil means the data range.
	VMin *float64 `json:"vmin,omitempty"`
	VMax *float64 `json:"vmax,omitempty"`

	// DendrogramRatio is the share of the figure given to each dendrogram.
	DendrogramRatio float64 `json:"dendrogram_ratio,omitempty"`
	// ColorbarPad separates the colorbar from the row labels, in points.
	// Nil means 36 (half an inch); zero is honored.
	ColorbarPad *float64 `json:"colorbar_pad,omitempty"`
	// Width and Height of the figure in points.
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
	// Title is drawn above the figure when set.
	Title string `json:"title,omitempty"`

	// Logger receives debug and warning messages. Nil discards them.
	Logger *log.Logger `json:"-"`
}

// Float returns a pointer to v, for the optional fields of Options.
func Float(v float64) *float64 { return &v }

// SetDefaults fills zero-valued fields with their defaults.
func (o *Options) SetDefaults() {
	if o.Metric == "" {
		o.Metric = cluster.DefaultMetric
	}
	if o.Method == "" {
		o.Method = cluster.DefaultMethod
	}
	if o.LabelFontSize == 0 {
		o.LabelFontSize = DefaultLabelFontSize
	}
	if o.XLabelRotation == nil {
		o.XLabelRotation = Float(DefaultXLabelRotation)
	}
	if o.Colormap == "" {
		o.Colormap = DefaultColormap
	}
	if o.DendrogramRatio == 0 {
		o.DendrogramRatio = layout.DefaultDendrogramRatio
	}
	if o.ColorbarPad == nil {
		o.ColorbarPad = Float(layout.DefaultColorbarPad)
	}
	if o.Width == 0 {
		o.Width = layout.DefaultWidth
	}
	if o.Height == 0 {
		o.Height = layout.DefaultHeight
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
}

// Validate checks option values that do not depend on the matrix and
// normalizes metric and method names. Label lengths are checked by Compose.
func (o *Options) Validate() error {
	if o.NumRowClusters < 0 {
		return errors.Validation("num_row_clusters must be non-negative, got %d", o.NumRowClusters)
	}
	if o.NumColClusters < 0 {
		return errors.Validation("num_col_clusters must be non-negative, got %d", o.NumColClusters)
	}
	metric, err := cluster.ParseMetric(string(o.Metric))
	if err != nil {
		return err
	}
	method, err := cluster.ParseMethod(string(o.Method))
	if err != nil {
		return err
	}
	o.Metric, o.Method = metric, method
	if o.LabelFontSize < 0 || isBad(o.LabelFontSize) {
		return errors.Validation("label font size must be non-negative, got %v", o.LabelFontSize)
	}
	if o.XLabelRotation != nil && isBad(*o.XLabelRotation) {
		return errors.Validation("x label rotation must be finite")
	}
	if isBad(o.YLabelRotation) {
		return errors.Validation("y label rotation must be finite")
	}
	if o.Colormap != "" && !ValidColormaps[o.Colormap] {
		return errors.Validation("unknown colormap %q (valid: %v)", o.Colormap, Colormaps())
	}
	if o.VMin != nil && isBad(*o.VMin) || o.VMax != nil && isBad(*o.VMax) {
		return errors.Validation("vmin and vmax must be finite")
	}
	if o.VMin != nil && o.VMax != nil && *o.VMin > *o.VMax {
		return errors.Validation("vmin %v is greater than vmax %v", *o.VMin, *o.VMax)
	}
	if o.ColorbarPad != nil && (*o.ColorbarPad < 0 || isBad(*o.ColorbarPad)) {
		return errors.Validation("colorbar pad must be non-negative, got %v", *o.ColorbarPad)
	}
	if o.Width < 0 || o.Height < 0 {
		return errors.Validation("figure size must be positive, got %vx%v", o.Width, o.Height)
	}
	return nil
}

func isBad(v float64) bool { return math.IsNaN(v) || math.IsInf(v, 0) }
