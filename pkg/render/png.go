package render

import (
	"bytes"
	"fmt"

	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/matzehuels/clustermap/pkg/compose"
	"github.com/matzehuels/clustermap/pkg/errors"
)

// DefaultDPI is the PNG resolution used unless WithDPI says otherwise.
const DefaultDPI = 144

var errNoFigure = errors.New(errors.ErrCodeInvalidInput, "figure is nil")

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	opts []Option
	dpi  float64
}

// WithPNGOptions passes drawing options through to Draw.
func WithPNGOptions(opts ...Option) PNGOption {
	return func(r *pngRenderer) { r.opts = opts }
}

// WithDPI sets the PNG resolution (default 144, twice the point grid).
func WithDPI(dpi float64) PNGOption {
	return func(r *pngRenderer) {
		if dpi > 0 {
			r.dpi = dpi
		}
	}
}

// RenderPNG rasterizes the figure.
func RenderPNG(f *compose.Figure, opts ...PNGOption) ([]byte, error) {
	if f == nil {
		return nil, errNoFigure
	}
	r := pngRenderer{dpi: DefaultDPI}
	for _, opt := range opts {
		opt(&r)
	}
	c := vgimg.NewWith(
		vgimg.UseWH(vg.Points(f.Width), vg.Points(f.Height)),
		vgimg.UseDPI(int(r.dpi)),
	)
	if err := Draw(draw.New(c), f, r.opts...); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
