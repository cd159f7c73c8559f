package compose

import (
	"gonum.org/v1/gonum/mat"

	"github.com/matzehuels/clustermap/pkg/cluster"
	"github.com/matzehuels/clustermap/pkg/layout"
)

// Region names, also the creation order of the regions.
const (
	RegionLeftDendrogram = "left_dendrogram"
	RegionTopDendrogram  = "top_dendrogram"
	RegionHeatmap        = "heatmap"
	RegionColorbar       = "colorbar"
)

// Axis names.
const (
	AxisRows = "rows"
	AxisCols = "cols"
)

// Region is a handle on one drawn area of the figure. Callers may change the
// exported styling fields before rendering.
type Region struct {
	Name   string      `json:"name"`
	Bounds layout.Rect `json:"bounds"`
	// Title is drawn above the region when set.
	Title string `json:"title,omitempty"`
	// Frame draws the region's outline.
	Frame bool `json:"frame,omitempty"`
	// LineWidth is the stroke width in points for dendrogram links and the
	// frame.
	LineWidth float64 `json:"line_width"`
	// Hidden skips the region when rendering while keeping its space.
	Hidden bool `json:"hidden,omitempty"`
}

// Adjustment reports a clamped cluster count.
type Adjustment struct {
	Axis      string `json:"axis"`
	Requested int    `json:"requested"`
	Applied   int    `json:"applied"`
}

// Axis holds everything derived from clustering one matrix axis.
type Axis struct {
	Name string `json:"name"`
	// Clustered is false when the axis kept its input order.
	Clustered bool            `json:"clustered"`
	Linkage   cluster.Linkage `json:"linkage,omitempty"`
	// Leaves is the display order: position p shows original index Leaves[p].
	Leaves []int `json:"leaves"`
	// Cut is set when more than one cluster was requested.
	Cut *cluster.Cut `json:"cut,omitempty"`
	// Dendrogram is the tree geometry in leaf units, nil when not clustered.
	Dendrogram *cluster.Dendrogram `json:"dendrogram,omitempty"`
	// Labels in display order.
	Labels []string `json:"labels"`
	// Adjustment is set when the requested cluster count was clamped.
	Adjustment *Adjustment `json:"adjustment,omitempty"`
}

// Clusters returns the cluster id of each original index, or nil when the
// axis was not cut.
func (a Axis) Clusters() []int {
	if a.Cut == nil {
		return nil
	}
	return a.Cut.Labels
}

// Figure is the composed figure: region handles plus the derived clustering.
// It is a plain description; drawing happens in package render.
type Figure struct {
	// Region handles. TopDendrogram and Colorbar are nil when absent;
	// LeftDendrogram is nil when hidden.
	Heatmap        *Region `json:"heatmap"`
	LeftDendrogram *Region `json:"left_dendrogram,omitempty"`
	TopDendrogram  *Region `json:"top_dendrogram,omitempty"`
	Colorbar       *Region `json:"colorbar,omitempty"`

	Rows Axis `json:"rows"`
	Cols Axis `json:"cols"`

	// Data is the input matrix with rows and columns in display order.
	Data *mat.Dense `json:"-"`

	Scale     Scale       `json:"scale"`
	Histogram *Histogram  `json:"histogram,omitempty"`
	Grid      layout.Grid `json:"grid"`

	Adjustments []Adjustment `json:"adjustments,omitempty"`

	// Text settings.
	Title          string  `json:"title,omitempty"`
	LabelFontSize  float64 `json:"label_font_size"`
	XLabelRotation float64 `json:"x_label_rotation"`
	YLabelRotation float64 `json:"y_label_rotation"`

	// Width and Height in points.
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Regions returns the present regions in creation order.
func (f *Figure) Regions() []*Region {
	var out []*Region
	for _, r := range []*Region{f.LeftDendrogram, f.TopDendrogram, f.Heatmap, f.Colorbar} {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

// Region returns the region with the given name, or nil.
func (f *Figure) Region(name string) *Region {
	for _, r := range f.Regions() {
		if r.Name == name {
			return r
		}
	}
	return nil
}

// Value returns the displayed value at display row i and column j.
func (f *Figure) Value(i, j int) float64 { return f.Data.At(i, j) }

// Dims returns the number of rows and columns.
func (f *Figure) Dims() (int, int) { return f.Data.Dims() }
