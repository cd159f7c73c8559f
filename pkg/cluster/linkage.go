// Package cluster implements agglomerative hierarchical clustering over the
// rows of a matrix.
//
// A clustering run produces a [Linkage]: the ordered list of merges that
// builds the tree bottom-up. Everything the figure needs is derived from that
// one value: the leaf order ([Linkage.Leaves]), flat cluster assignments
// ([Linkage.Cut]) and the drawable tree ([Linkage.Dendrogram]).
//
// # Identifiers
//
// For n observations, ids 0..n-1 denote the leaves and merge i creates the
// cluster with id n+i. Within a merge A < B, and A is drawn on the left.
//
// # Algorithms
//
// Single, complete, average, weighted and ward linkage use the nearest-neighbor
// chain algorithm (O(n²) time). Centroid and median linkage are not reducible
// and use the generic O(n³) pairwise search; their merge heights may decrease
// (inversions), so their merges are kept in execution order.
package cluster

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/matzehuels/clustermap/pkg/errors"
)

// Merge is a single step of an agglomerative clustering.
type Merge struct {
	A        int     `json:"a"`
	B        int     `json:"b"`
	Distance float64 `json:"distance"`
	Size     int     `json:"size"`
}

// Linkage is the ordered merge sequence of a hierarchical clustering.
// A valid linkage over n leaves has exactly n-1 merges.
type Linkage []Merge

// N returns the number of leaves the linkage clusters.
func (l Linkage) N() int { return len(l) + 1 }

// Heights returns the merge distances in linkage order.
func (l Linkage) Heights() []float64 {
	h := make([]float64, len(l))
	for i, m := range l {
		h[i] = m.Distance
	}
	return h
}

// Validate checks that l is a well-formed linkage over n leaves: correct
// length, every id referring to an existing and not yet merged cluster,
// non-negative finite distances and consistent sizes.
func (l Linkage) Validate(n int) error {
	if n < 1 {
		return errors.Clustering("linkage needs at least one leaf")
	}
	if len(l) != n-1 {
		return errors.Clustering("linkage has %d merges, want %d for %d leaves", len(l), n-1, n)
	}
	size := make([]int, 2*n-1)
	used := make([]bool, 2*n-1)
	for i := 0; i < n; i++ {
		size[i] = 1
	}
	for i, m := range l {
		next := n + i
		for _, id := range [2]int{m.A, m.B} {
			if id < 0 || id >= next {
				return errors.Clustering("merge %d: cluster id %d out of range [0, %d)", i, id, next)
			}
			if used[id] {
				return errors.Clustering("merge %d: cluster %d merged twice", i, id)
			}
		}
		if m.A == m.B {
			return errors.Clustering("merge %d: cluster %d merged with itself", i, m.A)
		}
		if math.IsNaN(m.Distance) || math.IsInf(m.Distance, 0) || m.Distance < 0 {
			return errors.Clustering("merge %d: invalid distance %v", i, m.Distance)
		}
		want := size[m.A] + size[m.B]
		if m.Size != want {
			return errors.Clustering("merge %d: size %d, want %d", i, m.Size, want)
		}
		used[m.A], used[m.B] = true, true
		size[next] = want
	}
	return nil
}

// Link clusters the rows of m with the given metric and method.
func Link(m mat.Matrix, metric Metric, method Method) (Linkage, error) {
	if method == "" {
		method = DefaultMethod
	}
	if !validMethods[method] {
		return nil, errors.Validation("unknown linkage method %q", method)
	}
	r, c := m.Dims()
	if r == 0 || c == 0 {
		return nil, errors.Validation("cannot cluster an empty matrix (%dx%d)", r, c)
	}
	d, err := Pdist(m, metric)
	if err != nil {
		return nil, err
	}
	return LinkCondensed(d, r, method)
}

// LinkCondensed clusters n points given their condensed distance vector.
// The vector is not modified.
func LinkCondensed(d []float64, n int, method Method) (Linkage, error) {
	if n < 1 {
		return nil, errors.Validation("cannot cluster %d points", n)
	}
	if len(d) != n*(n-1)/2 {
		return nil, errors.Validation("condensed distance vector has %d entries, want %d", len(d), n*(n-1)/2)
	}
	if n == 1 {
		return Linkage{}, nil
	}
	dist := make([]float64, len(d))
	copy(dist, d)

	var raw Linkage
	if method.reducible() {
		raw = nnChain(dist, n, method)
		sort.SliceStable(raw, func(i, j int) bool { return raw[i].Distance < raw[j].Distance })
	} else {
		raw = generic(dist, n, method)
	}
	return relabel(raw, n), nil
}

// nnChain runs the nearest-neighbor chain algorithm. Merges are recorded in
// slot indices; the merged cluster lives on in the larger slot.
func nnChain(d []float64, n int, method Method) Linkage {
	out := make(Linkage, 0, n-1)
	size := make([]int, n)
	for i := range size {
		size[i] = 1
	}
	chain := make([]int, 0, n)

	for k := 0; k < n-1; k++ {
		if len(chain) == 0 {
			for i := 0; i < n; i++ {
				if size[i] > 0 {
					chain = append(chain, i)
					break
				}
			}
		}

		var x, y int
		var current float64
		for {
			x = chain[len(chain)-1]
			if len(chain) > 1 {
				y = chain[len(chain)-2]
				current = d[condensedIndex(n, x, y)]
			} else {
				current = math.Inf(1)
				y = -1
			}
			for i := 0; i < n; i++ {
				if size[i] == 0 || i == x {
					continue
				}
				if dd := d[condensedIndex(n, x, i)]; dd < current || y < 0 {
					current = dd
					y = i
				}
			}
			if len(chain) > 1 && y == chain[len(chain)-2] {
				break
			}
			chain = append(chain, y)
		}
		chain = chain[:len(chain)-2]

		if x > y {
			x, y = y, x
		}
		nx, ny := size[x], size[y]
		out = append(out, Merge{A: x, B: y, Distance: current, Size: nx + ny})
		size[x] = 0
		size[y] = nx + ny

		for i := 0; i < n; i++ {
			ni := size[i]
			if ni == 0 || i == y {
				continue
			}
			xi, yi := condensedIndex(n, i, x), condensedIndex(n, i, y)
			d[yi] = update(method, d[xi], d[yi], current, nx, ny, ni)
		}
	}
	return out
}

// generic merges the globally closest pair at every step.
func generic(d []float64, n int, method Method) Linkage {
	out := make(Linkage, 0, n-1)
	size := make([]int, n)
	for i := range size {
		size[i] = 1
	}
	for k := 0; k < n-1; k++ {
		x, y := -1, -1
		best := math.Inf(1)
		for i := 0; i < n; i++ {
			if size[i] == 0 {
				continue
			}
			for j := i + 1; j < n; j++ {
				if size[j] == 0 {
					continue
				}
				if dd := d[condensedIndex(n, i, j)]; dd < best || x < 0 {
					best, x, y = dd, i, j
				}
			}
		}
		nx, ny := size[x], size[y]
		out = append(out, Merge{A: x, B: y, Distance: best, Size: nx + ny})
		size[x] = 0
		size[y] = nx + ny
		for i := 0; i < n; i++ {
			ni := size[i]
			if ni == 0 || i == y {
				continue
			}
			xi, yi := condensedIndex(n, i, x), condensedIndex(n, i, y)
			d[yi] = update(method, d[xi], d[yi], best, nx, ny, ni)
		}
	}
	return out
}

// update is the Lance–Williams recurrence: the distance between cluster i
// and the union of clusters x and y.
func update(method Method, dxi, dyi, dxy float64, nx, ny, ni int) float64 {
	fx, fy, fi := float64(nx), float64(ny), float64(ni)
	switch method {
	case Single:
		return math.Min(dxi, dyi)
	case Complete:
		return math.Max(dxi, dyi)
	case Average:
		return (fx*dxi + fy*dyi) / (fx + fy)
	case Weighted:
		return 0.5 * (dxi + dyi)
	case Centroid:
		return sqrtClamped((fx*dxi*dxi + fy*dyi*dyi - fx*fy*dxy*dxy/(fx+fy)) / (fx + fy))
	case Median:
		return sqrtClamped(0.5*(dxi*dxi+dyi*dyi) - 0.25*dxy*dxy)
	case Ward:
		t := 1 / (fx + fy + fi)
		return sqrtClamped((fi+fx)*t*dxi*dxi + (fi+fy)*t*dyi*dyi - fi*t*dxy*dxy)
	}
	panic("cluster: unknown method " + string(method))
}

func sqrtClamped(v float64) float64 {
	if v < 0 {
		return 0
	}
	return math.Sqrt(v)
}

// relabel converts slot indices into cluster ids with a union-find so that
// merge i creates id n+i and A < B.
func relabel(raw Linkage, n int) Linkage {
	uf := newUnionFind(n)
	out := make(Linkage, len(raw))
	for i, m := range raw {
		a, b := uf.find(m.A), uf.find(m.B)
		if a > b {
			a, b = b, a
		}
		out[i] = Merge{A: a, B: b, Distance: m.Distance, Size: uf.merge(a, b)}
	}
	return out
}

type unionFind struct {
	parent []int
	size   []int
	next   int
}

func newUnionFind(n int) *unionFind {
	u := &unionFind{
		parent: make([]int, 2*n-1),
		size:   make([]int, 2*n-1),
		next:   n,
	}
	for i := range u.parent {
		u.parent[i] = i
	}
	for i := 0; i < n; i++ {
		u.size[i] = 1
	}
	return u
}

func (u *unionFind) find(x int) int {
	root := x
	for u.parent[root] != root {
		root = u.parent[root]
	}
	for u.parent[x] != root {
		x, u.parent[x] = u.parent[x], root
	}
	return root
}

func (u *unionFind) merge(a, b int) int {
	id := u.next
	u.parent[a], u.parent[b] = id, id
	u.size[id] = u.size[a] + u.size[b]
	u.next++
	return u.size[id]
}
