package cluster

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/matzehuels/clustermap/pkg/errors"
)

// Pdist computes the condensed pairwise distance vector between the rows of m.
//
// The result has n*(n-1)/2 entries ordered (0,1), (0,2), ..., (0,n-1), (1,2), ...
// Use condensedIndex to address it.
func Pdist(m mat.Matrix, metric Metric) ([]float64, error) {
	if metric == "" {
		metric = DefaultMetric
	}
	dist, err := distanceFunc(metric)
	if err != nil {
		return nil, err
	}

	r, _ := m.Dims()
	rows := make([][]float64, r)
	for i := range rows {
		rows[i] = mat.Row(nil, i, m)
	}

	out := make([]float64, r*(r-1)/2)
	k := 0
	for i := 0; i < r; i++ {
		for j := i + 1; j < r; j++ {
			d := dist(rows[i], rows[j])
			if math.IsNaN(d) {
				return nil, errors.Clustering("%s distance between rows %d and %d is undefined", metric, i, j)
			}
			out[k] = d
			k++
		}
	}
	return out, nil
}

func distanceFunc(metric Metric) (func(a, b []float64) float64, error) {
	switch metric {
	case Euclidean:
		return func(a, b []float64) float64 { return floats.Distance(a, b, 2) }, nil
	case SqEuclidean:
		return func(a, b []float64) float64 {
			d := floats.Distance(a, b, 2)
			return d * d
		}, nil
	case Cityblock:
		return func(a, b []float64) float64 { return floats.Distance(a, b, 1) }, nil
	case Chebyshev:
		return func(a, b []float64) float64 { return floats.Distance(a, b, math.Inf(1)) }, nil
	case Cosine:
		return cosineDistance, nil
	case Correlation:
		return correlationDistance, nil
	}
	return nil, errors.Validation("unknown metric %q", metric)
}

// cosineDistance is NaN when either vector is all zeros.
func cosineDistance(a, b []float64) float64 {
	na, nb := floats.Norm(a, 2), floats.Norm(b, 2)
	if na == 0 || nb == 0 {
		return math.NaN()
	}
	return clampDistance(1 - floats.Dot(a, b)/(na*nb))
}

// correlationDistance is NaN when either vector is constant.
func correlationDistance(a, b []float64) float64 {
	if len(a) < 2 {
		return math.NaN()
	}
	return clampDistance(1 - stat.Correlation(a, b, nil))
}

// clampDistance removes tiny negative values produced by rounding.
func clampDistance(d float64) float64 {
	if d < 0 && d > -1e-12 {
		return 0
	}
	return d
}

// condensedIndex maps the pair (i, j), i != j, of an n-point set to its
// position in a condensed distance vector.
func condensedIndex(n, i, j int) int {
	if i > j {
		i, j = j, i
	}
	return n*i - i*(i+1)/2 + (j - i - 1)
}
