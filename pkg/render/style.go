package render

import (
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// Option configures how a figure is drawn.
type Option func(*renderer)

type renderer struct {
	background    color.Color
	linkColor     color.Color
	textColor     color.Color
	clusterColors []color.Color
	gradientSteps int
}

func newRenderer(opts []Option) renderer {
	r := renderer{
		background:    color.White,
		linkColor:     color.Gray{Y: 0x55},
		textColor:     color.Black,
		gradientSteps: 256,
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// WithBackground sets the figure background. Nil leaves it transparent.
func WithBackground(c color.Color) Option { return func(r *renderer) { r.background = c } }

// WithLinkColor sets the color of dendrogram links above the tree cut.
func WithLinkColor(c color.Color) Option { return func(r *renderer) { r.linkColor = c } }

// WithTextColor sets the color of labels and titles.
func WithTextColor(c color.Color) Option { return func(r *renderer) { r.textColor = c } }

// WithClusterColors overrides the cluster palette. Cluster id i uses
// colors[(i-1) % len(colors)].
func WithClusterColors(colors ...color.Color) Option {
	return func(r *renderer) { r.clusterColors = colors }
}

// WithGradientSteps sets the number of bands used to draw the colorbar.
func WithGradientSteps(n int) Option {
	return func(r *renderer) {
		if n > 0 {
			r.gradientSteps = n
		}
	}
}

// ClusterColor returns the color of cluster id (1-based) out of k clusters.
// Hues are spread evenly around the HCL circle at fixed chroma and
// luminance, so the colors stay distinguishable and equally bright.
func ClusterColor(id, k int) colorful.Color {
	if k < 1 {
		k = 1
	}
	hue := 30 + 360*float64((id-1)%k)/float64(k)
	return colorful.Hcl(hue, 0.6, 0.55).Clamped()
}

func (r renderer) clusterColor(id, k int) color.Color {
	if id == 0 {
		return r.linkColor
	}
	if len(r.clusterColors) > 0 {
		return r.clusterColors[(id-1)%len(r.clusterColors)]
	}
	return ClusterColor(id, k)
}
