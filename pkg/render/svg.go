package render

import (
	"bytes"
	"fmt"

	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgsvg"

	"github.com/matzehuels/clustermap/pkg/compose"
)

// RenderSVG draws the figure as an SVG document sized f.Width x f.Height
// points.
func RenderSVG(f *compose.Figure, opts ...Option) ([]byte, error) {
	if f == nil {
		return nil, errNoFigure
	}
	c := vgsvg.New(vg.Points(f.Width), vg.Points(f.Height))
	if err := Draw(draw.New(c), f, opts...); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := c.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write svg: %w", err)
	}
	return buf.Bytes(), nil
}
