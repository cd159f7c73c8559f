package pipeline

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/matzehuels/clustermap/pkg/cache"
	"github.com/matzehuels/clustermap/pkg/cluster"
	"github.com/matzehuels/clustermap/pkg/compose"
	"github.com/matzehuels/clustermap/pkg/errors"
)

// memCache is an in-memory cache.Cache that counts hits.
type memCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	hits    int
	sets    int
}

func newMemCache() *memCache { return &memCache{entries: map[string][]byte{}} }

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.entries[key]
	if ok {
		c.hits++
	}
	return data, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = data
	c.sets++
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

func (c *memCache) Close() error { return nil }

func testMatrix() *mat.Dense {
	return mat.NewDense(6, 4, []float64{
		1, 2, 1, 2,
		1.1, 2.1, 0.9, 2.2,
		0.9, 1.8, 1.2, 1.9,
		8, 9, 8.5, 9.2,
		8.2, 9.1, 8.3, 9.4,
		7.9, 8.8, 8.6, 9.0,
	})
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"json", false},
		{"dot", false},
		{"tree", false},
		{"csv", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestValidateAndSetDefaults(t *testing.T) {
	var opts Options
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("zero options should validate: %v", err)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatSVG {
		t.Errorf("default formats = %v, want [svg]", opts.Formats)
	}
	if opts.DPI == 0 || opts.Logger == nil {
		t.Error("DPI and Logger should be defaulted")
	}

	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"bad format", Options{Formats: []string{"gif"}}, errors.ErrCodeUnsupported},
		{"negative dpi", Options{DPI: -1}, errors.ErrCodeValidation},
		{"bad background", Options{Background: "#zzzzzz"}, errors.ErrCodeValidation},
		{"bad cluster color", Options{ClusterColors: []string{"#ff0000", "red"}}, errors.ErrCodeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("code = %q, want %q (err %v)", got, tt.code, err)
			}
		})
	}

	ok := Options{Background: "ffffff", ClusterColors: []string{"#ff0000", "#00ff00"}}
	if err := ok.ValidateAndSetDefaults(); err != nil {
		t.Errorf("hex colors without # should be accepted: %v", err)
	}
	if len(ok.style) != 2 {
		t.Errorf("expected 2 style options, got %d", len(ok.style))
	}
}

func TestExtension(t *testing.T) {
	if got := Extension(FormatSVG); got != ".svg" {
		t.Errorf("Extension(svg) = %s", got)
	}
	if got := Extension(FormatTree); got != ".tree.svg" {
		t.Errorf("Extension(tree) = %s", got)
	}
}

func TestExecute(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	result, err := r.Execute(context.Background(), testMatrix(), Options{
		Compose: compose.Options{NumRowClusters: 2, TopDendrogram: true},
		Formats: []string{FormatSVG, FormatJSON, FormatDOT, FormatCSV, FormatPNG},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if result.Stats.Rows != 6 || result.Stats.Cols != 4 {
		t.Errorf("dims = %dx%d, want 6x4", result.Stats.Rows, result.Stats.Cols)
	}
	if result.FigureHash == "" {
		t.Error("FigureHash should be set")
	}
	if !bytes.Contains(result.Artifacts[FormatSVG], []byte("<svg")) {
		t.Error("svg artifact should be an SVG document")
	}
	if !bytes.HasPrefix(result.Artifacts[FormatPNG], []byte("\x89PNG")) {
		t.Error("png artifact should start with the PNG signature")
	}
	if !strings.HasPrefix(string(result.Artifacts[FormatDOT]), "digraph G {") {
		t.Error("dot artifact should be DOT source")
	}
	if !strings.HasPrefix(string(result.Artifacts[FormatCSV]), "axis,position,index,label,cluster\n") {
		t.Error("csv artifact should have a header")
	}
	if result.CacheInfo.RowLinkageHit || result.CacheInfo.RenderHit {
		t.Error("NullCache should never hit")
	}
}

func TestExecuteCaching(t *testing.T) {
	ctx := context.Background()
	c := newMemCache()
	r := NewRunner(c, nil, nil)
	opts := Options{
		Compose: compose.Options{NumRowClusters: 2, TopDendrogram: true},
		Formats: []string{FormatSVG, FormatJSON},
	}

	first, err := r.Execute(ctx, testMatrix(), opts)
	if err != nil {
		t.Fatalf("first Execute: %v", err)
	}
	if first.CacheInfo.RowLinkageHit || first.CacheInfo.ColLinkageHit || first.CacheInfo.RenderHit {
		t.Errorf("first run should miss: %+v", first.CacheInfo)
	}
	// Two linkages plus two artifacts.
	if c.sets != 4 {
		t.Errorf("sets after first run = %d, want 4", c.sets)
	}

	second, err := r.Execute(ctx, testMatrix(), opts)
	if err != nil {
		t.Fatalf("second Execute: %v", err)
	}
	if !second.CacheInfo.RowLinkageHit || !second.CacheInfo.ColLinkageHit || !second.CacheInfo.RenderHit {
		t.Errorf("second run should hit: %+v", second.CacheInfo)
	}
	if second.FigureHash != first.FigureHash {
		t.Error("identical runs should produce the same figure hash")
	}
	if !bytes.Equal(first.Artifacts[FormatSVG], second.Artifacts[FormatSVG]) {
		t.Error("cached svg should equal the rendered one")
	}

	// A different method changes the linkage key.
	opts.Compose.Method = cluster.Complete
	third, err := r.Execute(ctx, testMatrix(), opts)
	if err != nil {
		t.Fatalf("third Execute: %v", err)
	}
	if third.CacheInfo.RowLinkageHit {
		t.Error("changing the method should miss the linkage cache")
	}

	// Refresh bypasses reads.
	opts.Refresh = true
	fourth, err := r.Execute(ctx, testMatrix(), opts)
	if err != nil {
		t.Fatalf("fourth Execute: %v", err)
	}
	if fourth.CacheInfo.RowLinkageHit || fourth.CacheInfo.RenderHit {
		t.Errorf("refresh should not read the cache: %+v", fourth.CacheInfo)
	}
}

func TestComposeCustomLinkerBypassesCache(t *testing.T) {
	c := newMemCache()
	r := NewRunner(c, nil, nil)
	called := 0
	linker := cluster.LinkerFunc(func(m mat.Matrix) (cluster.Linkage, error) {
		called++
		return cluster.Link(m, cluster.Euclidean, cluster.Average)
	})

	for i := 0; i < 2; i++ {
		f, info, err := r.ComposeWithCacheInfo(context.Background(), testMatrix(), Options{
			Compose: compose.Options{RowLinker: linker},
		})
		if err != nil {
			t.Fatalf("Compose: %v", err)
		}
		if f.Rows.Linkage == nil {
			t.Fatal("row linkage should be set")
		}
		if info.RowLinkageHit {
			t.Error("custom linker should not hit the cache")
		}
	}
	if called != 2 {
		t.Errorf("custom linker called %d times, want 2", called)
	}
	if c.sets != 0 {
		t.Errorf("custom linker results should not be cached, got %d sets", c.sets)
	}
}

func TestCorruptLinkageEntryIsRecomputed(t *testing.T) {
	ctx := context.Background()
	c := newMemCache()
	r := NewRunner(c, nil, nil)
	x := testMatrix()

	key := r.Keyer.LinkageKey(cache.HashMatrix(x), cache.LinkageKeyOpts{
		Axis:   compose.AxisRows,
		Metric: string(cluster.DefaultMetric),
		Method: string(cluster.DefaultMethod),
	})
	// Valid JSON, but not a linkage of 6 leaves.
	_ = c.Set(ctx, key, []byte(`[{"a":0,"b":0,"distance":1,"size":2}]`), 0)

	_, info, err := r.ComposeWithCacheInfo(ctx, x, Options{})
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if info.RowLinkageHit {
		t.Error("an invalid cached linkage should not count as a hit")
	}
}

func TestExecuteValidationError(t *testing.T) {
	r := NewRunner(newMemCache(), nil, nil)
	_, err := r.Execute(context.Background(), testMatrix(), Options{
		Compose: compose.Options{RowLabels: []string{"only-one"}},
	})
	if !errors.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}

