package cli

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"gonum.org/v1/gonum/mat"

	"github.com/matzehuels/clustermap/pkg/compose"
)

func testFigure(t *testing.T) *compose.Figure {
	t.Helper()
	x := mat.NewDense(5, 4, []float64{
		1, 2, 3, 4,
		2, 3, 4, 5,
		9, 8, 7, 6,
		8, 9, 7, 6,
		5, 5, 5, 5,
	})
	f, err := compose.Compose(context.Background(), x, compose.Options{
		RowLabels:      []string{"alpha", "beta", "gamma", "delta", "epsilon"},
		ColLabels:      []string{"w", "x", "y", "z"},
		NumRowClusters: 2,
		TopDendrogram:  true,
	})
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	return f
}

func key(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m viewModel, msgs ...tea.Msg) viewModel {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(viewModel)
	}
	return m
}

func TestViewModelCursor(t *testing.T) {
	m, err := newViewModel("test", testFigure(t))
	if err != nil {
		t.Fatalf("newViewModel: %v", err)
	}

	m = update(t, m, key("up"), key("left"))
	if m.row != 0 || m.col != 0 {
		t.Errorf("cursor moved past the origin: %d,%d", m.row, m.col)
	}

	m = update(t, m, key("down"), key("j"), key("right"), key("l"))
	if m.row != 2 || m.col != 2 {
		t.Errorf("cursor = %d,%d, want 2,2", m.row, m.col)
	}

	m = update(t, m, key("G"), key("l"), key("l"), key("l"))
	if m.row != 4 || m.col != 3 {
		t.Errorf("cursor = %d,%d, want clamped to 4,3", m.row, m.col)
	}

	m = update(t, m, key("g"))
	if m.row != 0 {
		t.Errorf("g should jump to the first row, got %d", m.row)
	}
}

func TestViewModelScroll(t *testing.T) {
	m, _ := newViewModel("test", testFigure(t))

	// Only three rows fit.
	m = update(t, m, tea.WindowSizeMsg{Width: 40, Height: 9})
	if m.height != 3 {
		t.Fatalf("height = %d, want 3", m.height)
	}
	m = update(t, m, key("G"))
	if m.rowOff != 2 {
		t.Errorf("rowOff = %d, want 2 to keep the cursor visible", m.rowOff)
	}
	m = update(t, m, key("g"))
	if m.rowOff != 0 {
		t.Errorf("rowOff = %d, want 0", m.rowOff)
	}
}

func TestViewModelQuit(t *testing.T) {
	m, _ := newViewModel("test", testFigure(t))
	if _, cmd := m.Update(key("q")); cmd == nil {
		t.Error("q should return a quit command")
	}
}

func TestViewModelView(t *testing.T) {
	f := testFigure(t)
	m, _ := newViewModel("matrix.csv", f)
	out := m.View()

	if !strings.Contains(out, "matrix.csv") {
		t.Error("view should show the input name")
	}
	if !strings.Contains(out, f.Rows.Labels[0]) {
		t.Errorf("view should show row label %q", f.Rows.Labels[0])
	}
	if !strings.Contains(out, "cluster") {
		t.Error("readout should show the cluster of the selected row")
	}
}

func TestTruncateLabel(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"exactly", 7, "exactly"},
		{"truncated", 5, "trun…"},
		{"ab", 1, "a"},
	}
	for _, tt := range tests {
		if got := truncateLabel(tt.in, tt.n); got != tt.want {
			t.Errorf("truncateLabel(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}
