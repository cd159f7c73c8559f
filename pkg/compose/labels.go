package compose

import (
	"math"
	"strconv"
	"unicode/utf8"
)

// Label extents are estimated from the rune count so the layout does not
// depend on font metrics.
const (
	charWidth  = 0.6 // em
	lineHeight = 1.2 // em
	tickPad    = 4.0 // points
)

func positionalLabels(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = strconv.Itoa(i)
	}
	return out
}

// textExtent returns the bounding box of a rotated single-line label.
func textExtent(s string, size, rotation float64) (w, h float64) {
	tw := float64(utf8.RuneCountInString(s)) * charWidth * size
	th := size
	sin, cos := math.Sincos(rotation * math.Pi / 180)
	sin, cos = math.Abs(sin), math.Abs(cos)
	return tw*cos + th*sin, tw*sin + th*cos
}

// labelGutter returns the space labels need perpendicular to their axis:
// widths for row labels, heights for column labels.
func labelGutter(labels []string, size, rotation float64, vertical bool) float64 {
	var extent float64
	for _, l := range labels {
		if l == "" {
			continue
		}
		w, h := textExtent(l, size, rotation)
		if vertical {
			extent = max(extent, h)
		} else {
			extent = max(extent, w)
		}
	}
	if extent == 0 {
		return 0
	}
	return extent + tickPad
}

func tickGutter(ticks []Tick, size float64) float64 {
	labels := make([]string, len(ticks))
	for i, t := range ticks {
		labels[i] = t.Label
	}
	return labelGutter(labels, size, 0, false)
}
