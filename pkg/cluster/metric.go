package cluster

import (
	"sort"
	"strings"

	"github.com/matzehuels/clustermap/pkg/errors"
)

// Metric names a pairwise distance between observation vectors.
type Metric string

// Supported distance metrics.
const (
	Euclidean   Metric = "euclidean"
	SqEuclidean Metric = "sqeuclidean"
	Cityblock   Metric = "cityblock"
	Chebyshev   Metric = "chebyshev"
	Cosine      Metric = "cosine"
	Correlation Metric = "correlation"
)

// Method names a Lance–Williams update rule used when two clusters merge.
type Method string

// Supported linkage methods.
const (
	Single   Method = "single"
	Complete Method = "complete"
	Average  Method = "average"
	Weighted Method = "weighted"
	Centroid Method = "centroid"
	Median   Method = "median"
	Ward     Method = "ward"
)

// Defaults used when a Metric or Method is left empty.
const (
	DefaultMetric = Euclidean
	DefaultMethod = Average
)

var validMetrics = map[Metric]bool{
	Euclidean: true, SqEuclidean: true, Cityblock: true,
	Chebyshev: true, Cosine: true, Correlation: true,
}

var validMethods = map[Method]bool{
	Single: true, Complete: true, Average: true, Weighted: true,
	Centroid: true, Median: true, Ward: true,
}

// ParseMetric resolves a metric name case-insensitively. "" yields DefaultMetric.
func ParseMetric(s string) (Metric, error) {
	if s == "" {
		return DefaultMetric, nil
	}
	m := Metric(strings.ToLower(strings.TrimSpace(s)))
	if !validMetrics[m] {
		return "", errors.Validation("unknown metric %q (valid: %s)", s, strings.Join(Metrics(), ", "))
	}
	return m, nil
}

// ParseMethod resolves a linkage method name case-insensitively. "" yields DefaultMethod.
func ParseMethod(s string) (Method, error) {
	if s == "" {
		return DefaultMethod, nil
	}
	m := Method(strings.ToLower(strings.TrimSpace(s)))
	if !validMethods[m] {
		return "", errors.Validation("unknown linkage method %q (valid: %s)", s, strings.Join(Methods(), ", "))
	}
	return m, nil
}

// Metrics lists the supported metric names in sorted order.
func Metrics() []string {
	return sortedKeys(validMetrics)
}

// Methods lists the supported method names in sorted order.
func Methods() []string {
	return sortedKeys(validMethods)
}

func sortedKeys[K ~string](m map[K]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, string(k))
	}
	sort.Strings(out)
	return out
}

// reducible reports whether the method satisfies the reducibility property
// required by the nearest-neighbor chain algorithm.
func (m Method) reducible() bool {
	switch m {
	case Centroid, Median:
		return false
	}
	return true
}

func (m Method) String() string { return string(m) }
func (m Metric) String() string { return string(m) }
