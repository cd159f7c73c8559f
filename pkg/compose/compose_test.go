package compose

import (
	"context"
	stderrors "errors"
	"math"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/matzehuels/clustermap/pkg/cluster"
	"github.com/matzehuels/clustermap/pkg/errors"
	"github.com/matzehuels/clustermap/pkg/observability"
)

// sixByFour has two well separated groups of three rows.
func sixByFour() *mat.Dense {
	return mat.NewDense(6, 4, []float64{
		1.0, 2.0, 3.0, 4.0,
		9.0, 8.0, 7.0, 6.0,
		1.1, 2.1, 3.1, 4.1,
		9.1, 8.2, 7.0, 6.1,
		1.2, 2.0, 3.0, 4.2,
		8.9, 8.0, 7.1, 6.0,
	})
}

func TestComposeEndToEnd(t *testing.T) {
	f, err := Compose(context.Background(), sixByFour(), Options{NumRowClusters: 2})
	require.NoError(t, err)

	ids := map[int]bool{}
	for _, id := range f.Rows.Clusters() {
		ids[id] = true
	}
	assert.Len(t, ids, 2)
	assert.Len(t, f.Rows.Clusters(), 6)

	require.NotNil(t, f.LeftDendrogram)
	require.NotNil(t, f.Rows.Dendrogram)
	assert.NotEmpty(t, f.Rows.Dendrogram.Segments)
	assert.Nil(t, f.TopDendrogram)
	assert.Nil(t, f.Cols.Dendrogram)
	assert.False(t, f.Cols.Clustered)
	assert.Nil(t, f.Cols.Clusters())

	assertPermutation(t, f.Rows.Leaves, 6)
	assert.Equal(t, []int{0, 1, 2, 3}, f.Cols.Leaves)
	assert.Empty(t, f.Adjustments)

	// Rows of one group share an id.
	c := f.Rows.Clusters()
	assert.Equal(t, c[0], c[2])
	assert.Equal(t, c[0], c[4])
	assert.Equal(t, c[1], c[3])
	assert.NotEqual(t, c[0], c[1])
}

func TestComposeHeatmapFollowsDendrogram(t *testing.T) {
	x := sixByFour()
	f, err := Compose(context.Background(), x, Options{TopDendrogram: true})
	require.NoError(t, err)

	assert.Equal(t, f.Rows.Leaves, f.Rows.Dendrogram.Leaves)
	assert.Equal(t, f.Cols.Leaves, f.Cols.Dendrogram.Leaves)
	for p, i := range f.Rows.Leaves {
		for q, j := range f.Cols.Leaves {
			assert.Equal(t, x.At(i, j), f.Value(p, q))
		}
	}

	// The earliest merged pair sits side by side.
	first := f.Rows.Linkage[0]
	pos := map[int]int{}
	for p, leaf := range f.Rows.Leaves {
		pos[leaf] = p
	}
	d := pos[first.A] - pos[first.B]
	assert.True(t, d == 1 || d == -1)
}

func TestComposeReorderIsPermutation(t *testing.T) {
	x := mat.NewDense(7, 3, []float64{
		5, 1, 3,
		2, 2, 2,
		9, 0, 1,
		4, 4, 8,
		0, 7, 7,
		3, 3, 1,
		6, 5, 2,
	})
	f, err := Compose(context.Background(), x, Options{TopDendrogram: true})
	require.NoError(t, err)

	r, c := f.Dims()
	require.Equal(t, 7, r)
	require.Equal(t, 3, c)

	want := rowSums(x)
	got := rowSums(f.Data)
	sort.Float64s(want)
	sort.Float64s(got)
	assert.InDeltaSlice(t, want, got, 1e-9)
	assertPermutation(t, f.Rows.Leaves, 7)
	assertPermutation(t, f.Cols.Leaves, 3)
}

func TestComposeLabelMismatch(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"short row labels", Options{RowLabels: []string{"a", "b"}}},
		{"long column labels", Options{ColLabels: []string{"a", "b", "c", "d", "e"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recordingHooks{}
			observability.SetPipelineHooks(rec)
			defer observability.Reset()

			f, err := Compose(context.Background(), sixByFour(), tt.opts)
			require.Error(t, err)
			assert.True(t, errors.IsValidation(err))
			assert.Nil(t, f)
			assert.Empty(t, rec.events, "no work may start before validation")
		})
	}
}

func TestComposeValidation(t *testing.T) {
	nan := mat.NewDense(2, 2, []float64{1, 2, 3, math.NaN()})

	tests := []struct {
		name string
		x    mat.Matrix
		opts Options
	}{
		{"nil matrix", nil, Options{}},
		{"empty matrix", &mat.Dense{}, Options{}},
		{"NaN value", nan, Options{}},
		{"negative row clusters", sixByFour(), Options{NumRowClusters: -1}},
		{"negative column clusters", sixByFour(), Options{NumColClusters: -2}},
		{"unknown colormap", sixByFour(), Options{Colormap: "jet"}},
		{"unknown metric", sixByFour(), Options{Metric: "hamming"}},
		{"vmin above vmax", sixByFour(), Options{VMin: Float(2), VMax: Float(1)}},
		{"vmin above data", sixByFour(), Options{VMin: Float(100)}},
		{"bad label", sixByFour(), Options{RowLabels: []string{"a", "b", "c\n", "d", "e", "f"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Compose(context.Background(), tt.x, tt.opts)
			require.Error(t, err)
			assert.True(t, errors.IsValidation(err), "got %v", err)
			assert.Nil(t, f)
		})
	}
}

func TestComposeNoRowClusters(t *testing.T) {
	f, err := Compose(context.Background(), sixByFour(), Options{NumRowClusters: 0})
	require.NoError(t, err)

	assert.Nil(t, f.Rows.Clusters())
	assert.Nil(t, f.Rows.Cut)
	require.NotNil(t, f.LeftDendrogram)
	require.NotNil(t, f.Rows.Dendrogram)
	for _, link := range f.Rows.Dendrogram.Segments {
		assert.Zero(t, link.Cluster)
	}

	// One cluster behaves the same.
	f, err = Compose(context.Background(), sixByFour(), Options{NumRowClusters: 1})
	require.NoError(t, err)
	assert.Nil(t, f.Rows.Clusters())
}

func TestComposeClampsClusterCount(t *testing.T) {
	f, err := Compose(context.Background(), sixByFour(), Options{NumRowClusters: 10, NumColClusters: 9})
	require.NoError(t, err)

	require.Len(t, f.Adjustments, 2)
	assert.Equal(t, Adjustment{Axis: AxisRows, Requested: 10, Applied: 6}, f.Adjustments[0])
	assert.Equal(t, Adjustment{Axis: AxisCols, Requested: 9, Applied: 4}, f.Adjustments[1])
	assert.Equal(t, f.Adjustments[0], *f.Rows.Adjustment)
	assert.Len(t, distinct(f.Rows.Clusters()), 6)

	// Column clusters without a top dendrogram still cluster the columns.
	assert.True(t, f.Cols.Clustered)
	assert.Nil(t, f.TopDendrogram)
}

func TestComposeCustomLinker(t *testing.T) {
	t.Run("used for rows", func(t *testing.T) {
		called := 0
		linker := cluster.LinkerFunc(func(m mat.Matrix) (cluster.Linkage, error) {
			called++
			return cluster.Link(m, cluster.Euclidean, cluster.Single)
		})
		_, err := Compose(context.Background(), sixByFour(), Options{RowLinker: linker})
		require.NoError(t, err)
		assert.Equal(t, 1, called)
	})

	t.Run("column linker sees the transpose", func(t *testing.T) {
		var rows int
		linker := cluster.LinkerFunc(func(m mat.Matrix) (cluster.Linkage, error) {
			rows, _ = m.Dims()
			return cluster.Link(m, cluster.Euclidean, cluster.Average)
		})
		_, err := Compose(context.Background(), sixByFour(), Options{ColLinker: linker, TopDendrogram: true})
		require.NoError(t, err)
		assert.Equal(t, 4, rows)
	})

	t.Run("wrong leaf count", func(t *testing.T) {
		linker := cluster.LinkerFunc(func(mat.Matrix) (cluster.Linkage, error) {
			return cluster.Linkage{{A: 0, B: 1, Distance: 1, Size: 2}}, nil
		})
		f, err := Compose(context.Background(), sixByFour(), Options{RowLinker: linker})
		require.Error(t, err)
		assert.True(t, errors.IsClustering(err))
		assert.Nil(t, f)
		assert.Equal(t, "CLUSTERING: rows linkage is malformed: linkage has 1 merges, want 5 for 6 leaves", err.Error())
	})

	t.Run("errors propagate", func(t *testing.T) {
		boom := stderrors.New("boom")
		linker := cluster.LinkerFunc(func(mat.Matrix) (cluster.Linkage, error) { return nil, boom })
		_, err := Compose(context.Background(), sixByFour(), Options{RowLinker: linker})
		assert.ErrorIs(t, err, boom)
	})
}

func TestComposeColorbarPad(t *testing.T) {
	def, err := Compose(context.Background(), sixByFour(), Options{})
	require.NoError(t, err)
	flush, err := Compose(context.Background(), sixByFour(), Options{ColorbarPad: Float(0)})
	require.NoError(t, err)

	gap := func(f *Figure) float64 { return f.Colorbar.Bounds.Left - f.Grid.RowLabels.Right }
	assert.InDelta(t, 0, gap(flush), 1e-12)
	assert.InDelta(t, 36.0/864, gap(def), 1e-12)

	_, err = Compose(context.Background(), sixByFour(), Options{ColorbarPad: Float(-1)})
	assert.True(t, errors.IsValidation(err))
}

func TestComposeRegions(t *testing.T) {
	f, err := Compose(context.Background(), sixByFour(), Options{TopDendrogram: true, Title: "demo"})
	require.NoError(t, err)

	names := []string{}
	for _, r := range f.Regions() {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{RegionLeftDendrogram, RegionTopDendrogram, RegionHeatmap, RegionColorbar}, names)

	h := f.Heatmap.Bounds
	assert.Equal(t, h.Bottom, f.LeftDendrogram.Bounds.Bottom)
	assert.Equal(t, h.Top, f.LeftDendrogram.Bounds.Top)
	assert.Equal(t, h.Left, f.TopDendrogram.Bounds.Left)
	assert.Equal(t, h.Right, f.TopDendrogram.Bounds.Right)
	assert.True(t, f.Grid.HasTitle)
	assert.Same(t, f.Colorbar, f.Region(RegionColorbar))
	assert.Nil(t, f.Region("legend"))
}

func TestComposeHiddenRegions(t *testing.T) {
	f, err := Compose(context.Background(), sixByFour(), Options{HideLeftDendrogram: true, HideColorbar: true, Histogram: true})
	require.NoError(t, err)

	assert.Nil(t, f.LeftDendrogram)
	assert.Nil(t, f.Colorbar)
	assert.Nil(t, f.Histogram)
	assert.NotNil(t, f.Rows.Dendrogram, "rows are clustered even when the tree is hidden")
	assert.Len(t, f.Regions(), 1)
}

func TestComposeLabels(t *testing.T) {
	rows := []string{"a", "b", "c", "d", "e", "f"}
	cols := []string{"w", "x", "y", "z"}
	orig := append([]string(nil), rows...)

	f, err := Compose(context.Background(), sixByFour(), Options{RowLabels: rows, ColLabels: cols, TopDendrogram: true})
	require.NoError(t, err)

	assert.Equal(t, orig, rows, "input labels are not modified")
	for p, i := range f.Rows.Leaves {
		assert.Equal(t, rows[i], f.Rows.Labels[p])
	}
	for p, j := range f.Cols.Leaves {
		assert.Equal(t, cols[j], f.Cols.Labels[p])
	}

	f, err = Compose(context.Background(), sixByFour(), Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"0", "1", "2", "3"}, f.Cols.Labels)
}

func TestComposeDoesNotMutateInput(t *testing.T) {
	x := sixByFour()
	before := mat.DenseCopyOf(x)
	_, err := Compose(context.Background(), x, Options{TopDendrogram: true, NumRowClusters: 2})
	require.NoError(t, err)
	assert.True(t, mat.Equal(before, x))
}

func TestComposeScale(t *testing.T) {
	f, err := Compose(context.Background(), sixByFour(), Options{})
	require.NoError(t, err)
	assert.Equal(t, 1.0, f.Scale.Min)
	assert.Equal(t, 9.1, f.Scale.Max)
	assert.Equal(t, DefaultColormap, f.Scale.Colormap)
	assert.NotEmpty(t, f.Scale.Ticks)

	f, err = Compose(context.Background(), sixByFour(), Options{VMin: Float(0), VMax: Float(10), Colormap: "blackbody"})
	require.NoError(t, err)
	assert.Equal(t, 0.0, f.Scale.Min)
	assert.Equal(t, 10.0, f.Scale.Max)
	assert.Equal(t, "blackbody", f.Scale.Colormap)
}

func TestComposeHistogram(t *testing.T) {
	f, err := Compose(context.Background(), sixByFour(), Options{Histogram: true})
	require.NoError(t, err)
	require.NotNil(t, f.Histogram)
	assert.Len(t, f.Histogram.Counts, 11)
	assert.Equal(t, 24, f.Histogram.Total)
}

func TestComposeHooks(t *testing.T) {
	rec := &recordingHooks{}
	observability.SetPipelineHooks(rec)
	defer observability.Reset()

	_, err := Compose(context.Background(), sixByFour(), Options{TopDendrogram: true})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"compose:start",
		"cluster:start:rows", "cluster:done:rows",
		"cluster:start:cols", "cluster:done:cols",
		"compose:done",
	}, rec.events)
}

func TestComposeCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Compose(ctx, sixByFour(), Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	events []string
}

func (r *recordingHooks) OnClusterStart(_ context.Context, axis string, _ int) {
	r.events = append(r.events, "cluster:start:"+axis)
}

func (r *recordingHooks) OnClusterComplete(_ context.Context, axis string, _ int, _ time.Duration, _ error) {
	r.events = append(r.events, "cluster:done:"+axis)
}

func (r *recordingHooks) OnComposeStart(context.Context, int, int) {
	r.events = append(r.events, "compose:start")
}

func (r *recordingHooks) OnComposeComplete(context.Context, time.Duration, error) {
	r.events = append(r.events, "compose:done")
}

func assertPermutation(t *testing.T, p []int, n int) {
	t.Helper()
	require.Len(t, p, n)
	sorted := append([]int(nil), p...)
	sort.Ints(sorted)
	for i, v := range sorted {
		require.Equal(t, i, v)
	}
}

func rowSums(m mat.Matrix) []float64 {
	r, _ := m.Dims()
	out := make([]float64, r)
	for i := range out {
		for _, v := range mat.Row(nil, i, m) {
			out[i] += v
		}
	}
	return out
}
