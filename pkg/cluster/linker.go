package cluster

import (
	"gonum.org/v1/gonum/mat"
)

// Linker produces a linkage over the rows of a matrix. Column clustering
// passes the transposed matrix.
//
// Implementations must return n-1 merges for an n-row matrix; callers
// validate the result with [Linkage.Validate].
type Linker interface {
	Link(m mat.Matrix) (Linkage, error)
}

// LinkerFunc adapts an ordinary function to the Linker interface.
type LinkerFunc func(m mat.Matrix) (Linkage, error)

// Link calls f(m).
func (f LinkerFunc) Link(m mat.Matrix) (Linkage, error) { return f(m) }

// Agglomerative is the built-in Linker.
type Agglomerative struct {
	Metric Metric
	Method Method
}

// Link implements Linker.
func (a Agglomerative) Link(m mat.Matrix) (Linkage, error) {
	return Link(m, a.Metric, a.Method)
}

// Default returns the default agglomerative linker (average linkage over
// euclidean distances).
func Default() Agglomerative {
	return Agglomerative{Metric: DefaultMetric, Method: DefaultMethod}
}
