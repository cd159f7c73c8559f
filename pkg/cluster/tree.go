package cluster

import (
	"github.com/matzehuels/clustermap/pkg/errors"
)

// Leaves returns the dendrogram leaf order: an in-order traversal of the
// merge tree visiting A before B at every node. The result is a permutation
// of 0..N()-1. The linkage must be valid.
func (l Linkage) Leaves() []int {
	n := l.N()
	if n == 1 {
		return []int{0}
	}
	out := make([]int, 0, n)
	stack := []int{2*n - 2}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id < n {
			out = append(out, id)
			continue
		}
		m := l[id-n]
		stack = append(stack, m.B, m.A)
	}
	return out
}

// Cut is a flat clustering obtained by cutting the tree into K clusters.
type Cut struct {
	// Requested is the cluster count asked for.
	Requested int `json:"requested"`
	// K is the cluster count applied, Requested clamped to [1, N].
	K int `json:"k"`
	// Labels maps each original leaf index to a cluster id in 1..K.
	// Ids are numbered by first appearance along the leaf order.
	Labels []int `json:"labels"`
	// Threshold is a merge height separating the K clusters: the midpoint
	// between the last applied merge and the first skipped one.
	Threshold float64 `json:"threshold"`
}

// Clamped reports whether the requested count could not be honored.
func (c Cut) Clamped() bool { return c.K != c.Requested }

// Cut partitions the leaves into k clusters by applying the first n-k merges
// in linkage order. Requests above the number of leaves are clamped to it and
// reported via [Cut.Clamped]; k < 1 is an error.
//
// Merges of equal height are resolved by linkage order, which makes the
// result deterministic even when several cuts yield the same count.
func (l Linkage) Cut(k int) (Cut, error) {
	n := l.N()
	if k < 1 {
		return Cut{}, errors.Clustering("cannot cut into %d clusters", k)
	}
	c := Cut{Requested: k, K: min(k, n)}

	uf := newUnionFind(n)
	applied := n - c.K
	for i := 0; i < applied; i++ {
		uf.merge(uf.find(l[i].A), uf.find(l[i].B))
	}

	c.Labels = make([]int, n)
	ids := make(map[int]int, c.K)
	for _, leaf := range l.Leaves() {
		root := uf.find(leaf)
		id, ok := ids[root]
		if !ok {
			id = len(ids) + 1
			ids[root] = id
		}
		c.Labels[leaf] = id
	}

	switch {
	case n == 1:
		c.Threshold = 0
	case applied == 0:
		c.Threshold = l[0].Distance / 2
	case applied == n-1:
		c.Threshold = l[n-2].Distance
	default:
		c.Threshold = (l[applied-1].Distance + l[applied].Distance) / 2
	}
	return c, nil
}

// Segment is one drawn piece of a dendrogram: the inverted U joining two
// children at their parent's height. Points run child A bottom, child A top,
// child B top, child B bottom.
type Segment struct {
	X [4]float64 `json:"x"`
	Y [4]float64 `json:"y"`
	// Cluster is the flat cluster id the whole subtree belongs to, or 0 when
	// the segment lies above the cut (or no cut was made).
	Cluster int `json:"cluster"`
}

// Dendrogram is the drawable geometry of a linkage in leaf units: the leaf at
// position p of the leaf order is centered at p+0.5, heights are merge
// distances.
type Dendrogram struct {
	Leaves    []int     `json:"leaves"`
	Segments  []Segment `json:"segments"`
	MaxHeight float64   `json:"max_height"`
}

// Dendrogram computes the tree geometry for the given leaf order. leaves must
// be the order returned by [Linkage.Leaves]; it is passed in so that the
// figure and the heatmap share a single permutation. cut may be nil.
func (l Linkage) Dendrogram(leaves []int, cut *Cut) (Dendrogram, error) {
	n := l.N()
	if len(leaves) != n {
		return Dendrogram{}, errors.Clustering("leaf order has %d entries, want %d", len(leaves), n)
	}
	if cut != nil && len(cut.Labels) != n {
		return Dendrogram{}, errors.Clustering("cut labels have %d entries, want %d", len(cut.Labels), n)
	}

	x := make([]float64, 2*n-1)
	h := make([]float64, 2*n-1)
	rep := make([]int, 2*n-1)
	for p, leaf := range leaves {
		x[leaf] = float64(p) + 0.5
		rep[leaf] = leaf
	}

	d := Dendrogram{Leaves: leaves, Segments: make([]Segment, len(l))}
	colored := 0
	if cut != nil {
		colored = n - cut.K
	}
	for i, m := range l {
		id := n + i
		x[id] = (x[m.A] + x[m.B]) / 2
		h[id] = m.Distance
		rep[id] = rep[m.A]
		link := Segment{
			X: [4]float64{x[m.A], x[m.A], x[m.B], x[m.B]},
			Y: [4]float64{h[m.A], m.Distance, m.Distance, h[m.B]},
		}
		if i < colored {
			link.Cluster = cut.Labels[rep[id]]
		}
		d.Segments[i] = link
		if m.Distance > d.MaxHeight {
			d.MaxHeight = m.Distance
		}
	}
	return d, nil
}
