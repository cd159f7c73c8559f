package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/clustermap/pkg/compose"
	"github.com/matzehuels/clustermap/pkg/observability"
)

func TestAxisTable(t *testing.T) {
	f := testFigure(t)

	out := axisTable(f.Rows)
	if !strings.Contains(out, "Rows") {
		t.Error("row table should be titled Rows")
	}
	for _, l := range f.Rows.Labels {
		if !strings.Contains(out, l) {
			t.Errorf("row table missing label %q", l)
		}
	}

	if got := axisTitle(f.Cols); got != "Columns" {
		t.Errorf("axisTitle(cols) = %q", got)
	}
}

func TestFirstMergeHeights(t *testing.T) {
	f := testFigure(t)
	heights := firstMergeHeights(f.Rows)
	if len(heights) != 5 {
		t.Fatalf("got %d heights, want 5", len(heights))
	}
	for i, h := range heights {
		if h <= 0 {
			t.Errorf("leaf %d: first merge height %v, want > 0", i, h)
		}
	}
	// Rows 2 and 3 are the closest pair and join first.
	if heights[2] != heights[3] || heights[2] != f.Rows.Linkage[0].Distance {
		t.Errorf("rows 2 and 3 should share the lowest merge: %v", heights)
	}

	if got := firstMergeHeights(compose.Axis{Leaves: []int{0}}); len(got) != 1 || got[0] != 0 {
		t.Errorf("single leaf heights = %v", got)
	}
}

func TestClusterCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.csv")
	csv := ",w,x,y,z\nalpha,1,2,3,4\nbeta,2,3,4,5\ngamma,9,8,7,6\ndelta,8,9,7,6\n"
	if err := os.WriteFile(path, []byte(csv), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	stdout = &out
	t.Cleanup(func() { stdout = os.Stdout })

	root := testCLI().RootCommand()
	root.SetArgs([]string{"cluster", path, "--no-cache", "--row-clusters", "2"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("cluster: %v", err)
	}

	got := out.String()
	for _, want := range []string{"4 rows", "4 cols", "alpha", "delta"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if _, ok := observability.Pipeline().(observability.NoopPipelineHooks); !ok {
		t.Error("cluster should restore the previous pipeline hooks")
	}
}
