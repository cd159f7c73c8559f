package compose

import (
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
)

var colormaps = map[string]func() palette.ColorMap{
	"smooth-blue-red":      diverging(moreland.SmoothBlueRed),
	"coolwarm":             diverging(moreland.SmoothBlueRed),
	"smooth-green-red":     diverging(moreland.SmoothGreenRed),
	"smooth-purple-orange": diverging(moreland.SmoothPurpleOrange),
	"kindlmann":            moreland.Kindlmann,
	"extended-kindlmann":   moreland.ExtendedKindlmann,
	"blackbody":            moreland.BlackBody,
	"extended-blackbody":   moreland.ExtendedBlackBody,
}

// diverging adapts a diverging colormap constructor to the map's value type.
func diverging(fn func() palette.DivergingColorMap) func() palette.ColorMap {
	return func() palette.ColorMap { return fn() }
}

// ValidColormaps contains the accepted Colormap names.
var ValidColormaps = func() map[string]bool {
	m := make(map[string]bool, len(colormaps))
	for name := range colormaps {
		m[name] = true
	}
	return m
}()

// Colormaps lists the accepted Colormap names in sorted order.
func Colormaps() []string {
	out := make([]string, 0, len(colormaps))
	for name := range colormaps {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Tick is a labeled position on the colorbar.
type Tick struct {
	Value float64 `json:"value"`
	Label string  `json:"label"`
}

// Scale maps matrix values to colors.
type Scale struct {
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Colormap string  `json:"colormap"`
	// Ticks are the labeled colorbar ticks, minor ticks excluded.
	Ticks []Tick `json:"ticks"`
}

// ColorMap returns a fresh color map spanning the scale. A degenerate range
// is widened so that every value maps to the middle color.
func (s Scale) ColorMap() palette.ColorMap {
	newMap, ok := colormaps[s.Colormap]
	if !ok {
		newMap = colormaps[DefaultColormap]
	}
	cm := newMap()
	lo, hi := s.bounds()
	cm.SetMax(hi)
	cm.SetMin(lo)
	return cm
}

// Normalize maps v into [0, 1], clamping values outside the scale.
func (s Scale) Normalize(v float64) float64 {
	lo, hi := s.bounds()
	t := (v - lo) / (hi - lo)
	switch {
	case t < 0:
		return 0
	case t > 1:
		return 1
	}
	return t
}

// Clamp limits v to the scale range so it can be passed to a ColorMap.
func (s Scale) Clamp(v float64) float64 {
	lo, hi := s.bounds()
	return min(max(v, lo), hi)
}

func (s Scale) bounds() (float64, float64) {
	if s.Min == s.Max {
		return s.Min - 0.5, s.Max + 0.5
	}
	return s.Min, s.Max
}

func newScale(lo, hi float64, name string) Scale {
	s := Scale{Min: lo, Max: hi, Colormap: name}
	blo, bhi := s.bounds()
	for _, t := range (plot.DefaultTicks{}).Ticks(blo, bhi) {
		if t.IsMinor() {
			continue
		}
		s.Ticks = append(s.Ticks, Tick{Value: t.Value, Label: t.Label})
	}
	return s
}
