package compose

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// MaxHistogramBins caps the number of histogram bins.
const MaxHistogramBins = 80

// Histogram is the value distribution drawn inside the colorbar.
type Histogram struct {
	// Edges has len(Counts)+1 bin boundaries in value units.
	Edges  []float64 `json:"edges"`
	Counts []float64 `json:"counts"`
	// MaxCount is the largest bin count; Total is the number of values.
	MaxCount float64 `json:"max_count"`
	Total    int     `json:"total"`
}

// HistogramBins returns the bin count used for size values: one bin per ten
// values, at least 11 and at most MaxHistogramBins.
func HistogramBins(size int) int {
	return min(MaxHistogramBins, max(int(float64(size)/10+0.5), 11))
}

// NewHistogram bins the values into HistogramBins(len(values)) equal-width
// bins spanning their range. The last bin includes its right edge.
func NewHistogram(values []float64) Histogram {
	if len(values) == 0 {
		return Histogram{}
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	lo, hi := sorted[0], sorted[len(sorted)-1]
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}
	bins := HistogramBins(len(values))
	edges := floats.Span(make([]float64, bins+1), lo, hi)

	dividers := append([]float64(nil), edges...)
	dividers[bins] = math.Nextafter(hi, math.Inf(1))
	counts := stat.Histogram(nil, dividers, sorted, nil)

	return Histogram{
		Edges:    edges,
		Counts:   counts,
		MaxCount: floats.Max(counts),
		Total:    len(values),
	}
}

// Normalized returns the counts divided by MaxCount.
func (h Histogram) Normalized() []float64 {
	out := make([]float64, len(h.Counts))
	if h.MaxCount == 0 {
		return out
	}
	for i, c := range h.Counts {
		out[i] = c / h.MaxCount
	}
	return out
}

// MaxLabel is the axis label for the tallest bin, as a share of all values.
func (h Histogram) MaxLabel() string {
	if h.Total == 0 {
		return "0%"
	}
	return fmt.Sprintf("%.2g%%", 100*h.MaxCount/float64(h.Total))
}
