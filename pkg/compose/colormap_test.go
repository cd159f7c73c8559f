package compose

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColormaps(t *testing.T) {
	names := Colormaps()
	assert.Contains(t, names, DefaultColormap)
	assert.Contains(t, names, "coolwarm")
	for _, name := range names {
		assert.True(t, ValidColormaps[name])
	}
}

func TestScaleColorMap(t *testing.T) {
	for _, name := range Colormaps() {
		t.Run(name, func(t *testing.T) {
			s := newScale(-2, 6, name)
			cm := s.ColorMap()
			assert.Equal(t, -2.0, cm.Min())
			assert.Equal(t, 6.0, cm.Max())
			for _, v := range []float64{-2, 0, 6} {
				_, err := cm.At(s.Clamp(v))
				require.NoError(t, err)
			}
		})
	}
}

func TestScaleDegenerate(t *testing.T) {
	s := newScale(4, 4, DefaultColormap)
	cm := s.ColorMap()
	assert.Equal(t, 3.5, cm.Min())
	assert.Equal(t, 4.5, cm.Max())
	assert.Equal(t, 0.5, s.Normalize(4))
	_, err := cm.At(s.Clamp(4))
	require.NoError(t, err)
}

func TestScaleNormalizeClamps(t *testing.T) {
	s := newScale(0, 10, DefaultColormap)
	assert.Equal(t, 0.0, s.Normalize(-5))
	assert.Equal(t, 0.25, s.Normalize(2.5))
	assert.Equal(t, 1.0, s.Normalize(50))
	assert.Equal(t, 10.0, s.Clamp(11))
	assert.NotEmpty(t, s.Ticks)
	for _, tick := range s.Ticks {
		assert.NotEmpty(t, tick.Label)
	}
}

func TestTextExtent(t *testing.T) {
	w, h := textExtent("abcd", 10, 0)
	assert.InDelta(t, 24, w, 1e-9)
	assert.InDelta(t, 10, h, 1e-9)

	w, h = textExtent("abcd", 10, 90)
	assert.InDelta(t, 10, w, 1e-9)
	assert.InDelta(t, 24, h, 1e-9)

	assert.Zero(t, labelGutter([]string{"", ""}, 8, 0, false))
	assert.InDelta(t, 4.8*3+tickPad, labelGutter([]string{"a", "abc"}, 8, 0, false), 1e-9)
}
