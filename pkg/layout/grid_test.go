package layout

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/clustermap/pkg/errors"
)

func fullOptions() Options {
	return Options{
		Width:                 864,
		Height:                576,
		LeftDendrogram:        true,
		TopDendrogram:         true,
		Colorbar:              true,
		RowLabelWidth:         30,
		ColLabelHeight:        25,
		ColorbarTickWidth:     20,
		ColorbarCaptionHeight: 20,
		TitleHeight:           18,
	}
}

func TestBuildAlignment(t *testing.T) {
	g, err := Build(fullOptions())
	require.NoError(t, err)

	assert.Equal(t, g.Heatmap.Bottom, g.LeftDendrogram.Bottom)
	assert.Equal(t, g.Heatmap.Top, g.LeftDendrogram.Top)
	assert.Equal(t, g.Heatmap.Left, g.LeftDendrogram.Right)

	assert.Equal(t, g.Heatmap.Left, g.TopDendrogram.Left)
	assert.Equal(t, g.Heatmap.Right, g.TopDendrogram.Right)
	assert.Equal(t, g.Heatmap.Top, g.TopDendrogram.Bottom)

	assert.Equal(t, g.Heatmap.Bottom, g.Colorbar.Bottom)
	assert.Equal(t, g.Heatmap.Top, g.Colorbar.Top)
}

func TestBuildSizes(t *testing.T) {
	g, err := Build(fullOptions())
	require.NoError(t, err)

	assert.InDelta(t, DefaultDendrogramRatio, g.LeftDendrogram.Width(), 1e-12)
	assert.InDelta(t, DefaultDendrogramRatio, g.TopDendrogram.Height(), 1e-12)
	assert.InDelta(t, ColorbarWidth/864, g.Colorbar.Width(), 1e-12)
	assert.InDelta(t, (30.0+DefaultColorbarPad)/864, g.Colorbar.Left-g.Heatmap.Right, 1e-12)

	opts := fullOptions()
	opts.Histogram = true
	g, err = Build(opts)
	require.NoError(t, err)
	assert.InDelta(t, HistogramColorbarWidth/864, g.Colorbar.Width(), 1e-12)
}

func pad(v float64) *float64 { return &v }

func TestBuildColorbarPad(t *testing.T) {
	opts := fullOptions()
	opts.ColorbarPad = pad(0)
	g, err := Build(opts)
	require.NoError(t, err)
	assert.InDelta(t, 30.0/864, g.Colorbar.Left-g.Heatmap.Right, 1e-12)

	opts.ColorbarPad = pad(-1)
	_, err = Build(opts)
	assert.True(t, errors.IsValidation(err))
}

func TestBuildNoOverlap(t *testing.T) {
	variants := map[string]func(*Options){
		"full":          func(*Options) {},
		"no top":        func(o *Options) { o.TopDendrogram = false },
		"no left":       func(o *Options) { o.LeftDendrogram = false },
		"no colorbar":   func(o *Options) { o.Colorbar = false },
		"histogram":     func(o *Options) { o.Histogram = true },
		"no title":      func(o *Options) { o.TitleHeight = 0 },
		"small figure":  func(o *Options) { o.Width, o.Height = 300, 200 },
		"ratio 0.3":     func(o *Options) { o.DendrogramRatio = 0.3 },
		"bare heatmap":  func(o *Options) { *o = Options{} },
		"wide gutters":  func(o *Options) { o.RowLabelWidth, o.ColLabelHeight = 200, 150 },
		"tall caption":  func(o *Options) { o.ColorbarCaptionHeight = 60 },
		"large padding": func(o *Options) { o.ColorbarPad = pad(100) },
		"no padding":    func(o *Options) { o.ColorbarPad = pad(0) },
	}

	for name, mutate := range variants {
		t.Run(name, func(t *testing.T) {
			opts := fullOptions()
			mutate(&opts)
			g, err := Build(opts)
			require.NoError(t, err)

			regions := g.Regions()
			for a, ra := range regions {
				assert.True(t, ra.Within(Unit), "%s outside the figure: %+v", a, ra)
				for b, rb := range regions {
					if a < b {
						assert.False(t, ra.Overlaps(rb), "%s overlaps %s", a, b)
					}
				}
			}
			assert.False(t, g.Heatmap.Empty())
		})
	}
}

func TestBuildPresence(t *testing.T) {
	g, err := Build(Options{LeftDendrogram: true})
	require.NoError(t, err)

	assert.True(t, g.HasLeftDendrogram)
	assert.False(t, g.HasTopDendrogram)
	assert.False(t, g.HasColorbar)
	assert.False(t, g.HasTitle)
	assert.Equal(t, Rect{}, g.TopDendrogram)
	assert.Equal(t, Rect{}, g.Colorbar)

	_, ok := g.Regions()["top_dendrogram"]
	assert.False(t, ok)
	assert.Equal(t, float64(DefaultWidth), g.Width)
	assert.Equal(t, float64(DefaultHeight), g.Height)
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"negative width", Options{Width: -1}},
		{"ratio too large", Options{DendrogramRatio: 0.6}},
		{"negative gutter", Options{RowLabelWidth: -3}},
		{"negative margin", Options{Margin: -1}},
		{"gutters eat the heatmap", Options{Width: 100, Height: 100, RowLabelWidth: 90}},
		{"no vertical room", Options{Width: 100, Height: 100, ColLabelHeight: 80, TopDendrogram: true, DendrogramRatio: 0.4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.opts)
			require.Error(t, err)
			assert.True(t, errors.IsValidation(err))
		})
	}
}

func TestRectScaleRoundTrip(t *testing.T) {
	g, err := Build(fullOptions())
	require.NoError(t, err)

	abs := g.Heatmap.Scale(g.Width, g.Height)
	assert.InDelta(t, 12+DefaultDendrogramRatio*864, abs.Left, 1e-9)
	assert.False(t, math.IsNaN(abs.Top))
}
