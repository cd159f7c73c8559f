package render

import (
	"encoding/json"

	"gonum.org/v1/gonum/mat"

	"github.com/matzehuels/clustermap/pkg/compose"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	data    bool
	linkage bool
}

// WithJSONData includes the reordered matrix values.
func WithJSONData() JSONOption { return func(r *jsonRenderer) { r.data = true } }

// WithJSONLinkage includes the raw merge lists of both axes.
func WithJSONLinkage() JSONOption { return func(r *jsonRenderer) { r.linkage = true } }

type jsonOutput struct {
	Width       float64              `json:"width"`
	Height      float64              `json:"height"`
	Title       string               `json:"title,omitempty"`
	Regions     []jsonRegion         `json:"regions"`
	Rows        jsonAxis             `json:"rows"`
	Cols        jsonAxis             `json:"cols"`
	Scale       compose.Scale        `json:"scale"`
	Histogram   *compose.Histogram   `json:"histogram,omitempty"`
	Adjustments []compose.Adjustment `json:"adjustments,omitempty"`
	Data        [][]float64          `json:"data,omitempty"`
}

type jsonRegion struct {
	Name   string  `json:"name"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Title  string  `json:"title,omitempty"`
	Hidden bool    `json:"hidden,omitempty"`
}

type jsonAxis struct {
	Clustered bool     `json:"clustered"`
	Leaves    []int    `json:"leaves"`
	Labels    []string `json:"labels"`
	Clusters  []int    `json:"clusters,omitempty"`
	Threshold *float64 `json:"threshold,omitempty"`
	Linkage   any      `json:"linkage,omitempty"`
}

// RenderJSON exports the figure as a pretty-printed JSON document: region
// boxes in points (origin bottom-left), leaf orders, labels in display order,
// cluster assignments by original index, the color scale and, optionally,
// the data and linkages.
func RenderJSON(f *compose.Figure, opts ...JSONOption) ([]byte, error) {
	if f == nil {
		return nil, errNoFigure
	}
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	out := jsonOutput{
		Width:       f.Width,
		Height:      f.Height,
		Title:       f.Title,
		Rows:        r.axis(f.Rows),
		Cols:        r.axis(f.Cols),
		Scale:       f.Scale,
		Histogram:   f.Histogram,
		Adjustments: f.Adjustments,
	}
	for _, region := range f.Regions() {
		b := region.Bounds.Scale(f.Width, f.Height)
		out.Regions = append(out.Regions, jsonRegion{
			Name:   region.Name,
			X:      b.Left,
			Y:      b.Bottom,
			Width:  b.Width(),
			Height: b.Height(),
			Title:  region.Title,
			Hidden: region.Hidden,
		})
	}
	if r.data {
		out.Data = rowsOf(f.Data)
	}
	return json.MarshalIndent(out, "", "  ")
}

func (r jsonRenderer) axis(a compose.Axis) jsonAxis {
	ja := jsonAxis{
		Clustered: a.Clustered,
		Leaves:    a.Leaves,
		Labels:    a.Labels,
		Clusters:  a.Clusters(),
	}
	if a.Cut != nil {
		t := a.Cut.Threshold
		ja.Threshold = &t
	}
	if r.linkage && a.Linkage != nil {
		ja.Linkage = a.Linkage
	}
	return ja
}

func rowsOf(m *mat.Dense) [][]float64 {
	r, _ := m.Dims()
	out := make([][]float64, r)
	for i := range out {
		out[i] = mat.Row(nil, i, m)
	}
	return out
}
