package render

import (
	"bytes"
	"fmt"

	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgpdf"

	"github.com/matzehuels/clustermap/pkg/compose"
)

// RenderPDF draws the figure as a single-page PDF.
func RenderPDF(f *compose.Figure, opts ...Option) ([]byte, error) {
	if f == nil {
		return nil, errNoFigure
	}
	c := vgpdf.New(vg.Points(f.Width), vg.Points(f.Height))
	if err := Draw(draw.New(c), f, opts...); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := c.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}
