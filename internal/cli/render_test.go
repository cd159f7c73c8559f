package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	clio "github.com/matzehuels/clustermap/pkg/io"
	"github.com/matzehuels/clustermap/pkg/pipeline"
)

func testCLI() *CLI {
	c := New(io.Discard, LogInfo)
	c.noCache = true
	return c
}

func TestExpandInputs(t *testing.T) {
	dir := t.TempDir()
	for _, p := range []string{"a.csv", "b.csv", "sub/c.csv", "sub/d.json"} {
		full := filepath.Join(dir, p)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte("1,2\n3,4\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	got, err := expandInputs([]string{
		filepath.Join(dir, "**", "*.csv"),
		filepath.Join(dir, "a.csv"), // duplicate
	})
	if err != nil {
		t.Fatalf("expandInputs: %v", err)
	}
	want := []string{
		filepath.Join(dir, "a.csv"),
		filepath.Join(dir, "b.csv"),
		filepath.Join(dir, "sub", "c.csv"),
	}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("expandInputs = %v, want %v", got, want)
	}

	if _, err := expandInputs([]string{filepath.Join(dir, "*.xlsx")}); err == nil {
		t.Error("a pattern without matches should fail")
	}

	literal, err := expandInputs([]string{"missing.csv"})
	if err != nil || len(literal) != 1 {
		t.Errorf("literal paths should pass through, got %v, %v", literal, err)
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		format string
		output string
		single bool
		want   string
	}{
		{"next to input", "data/m.csv", "svg", "", false, filepath.Join("data", "m.svg")},
		{"tree suffix", "data/m.csv", "tree", "", false, filepath.Join("data", "m.tree.svg")},
		{"explicit file", "m.csv", "png", "out/fig.png", true, "out/fig.png"},
		{"directory", "data/m.csv", "pdf", "out", true, filepath.Join("out", "m.pdf")},
		{"directory for many", "data/m.csv", "svg", "out.d", false, filepath.Join("out.d", "m.svg")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := outputPath(tt.input, tt.format, tt.output, tt.single); got != tt.want {
				t.Errorf("outputPath = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderAll(t *testing.T) {
	dir := t.TempDir()
	var inputs []string
	for _, name := range []string{"one.csv", "two.json"} {
		path := filepath.Join(dir, name)
		if err := clio.Export(clio.Demo(8, 5, 1), path); err != nil {
			t.Fatal(err)
		}
		inputs = append(inputs, path)
	}

	c := testCLI()
	runner, err := c.newRunner(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	outDir := filepath.Join(dir, "out")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		t.Fatal(err)
	}

	popts := pipeline.Options{Formats: []string{"svg", "csv"}}
	popts.Compose.NumRowClusters = 2
	if err := popts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	err = c.renderAll(context.Background(), runner, inputs, popts, renderOpts{output: outDir, jobs: 2}, false)
	if err != nil {
		t.Fatalf("renderAll: %v", err)
	}

	for _, name := range []string{"one.svg", "one.csv", "two.svg", "two.csv"} {
		data, err := os.ReadFile(filepath.Join(outDir, name))
		if err != nil {
			t.Errorf("missing output %s: %v", name, err)
			continue
		}
		if len(data) == 0 {
			t.Errorf("output %s is empty", name)
		}
	}
}

func TestRenderAllReportsBadInput(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.csv")
	if err := os.WriteFile(bad, []byte("1,2\n3\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	c := testCLI()
	runner, _ := c.newRunner(context.Background())
	popts := pipeline.Options{}
	_ = popts.ValidateAndSetDefaults()

	err := c.renderAll(context.Background(), runner, []string{bad}, popts, renderOpts{jobs: 1}, true)
	if err == nil || !strings.Contains(err.Error(), "bad.csv") {
		t.Errorf("expected error naming the input, got %v", err)
	}
}
