package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/spf13/cobra"

	"github.com/matzehuels/clustermap/pkg/compose"
	clio "github.com/matzehuels/clustermap/pkg/io"
	"github.com/matzehuels/clustermap/pkg/render"
)

// viewCommand creates the view command, an interactive terminal heatmap.
func (c *CLI) viewCommand() *cobra.Command {
	figure := newFigureFlags()

	cmd := &cobra.Command{
		Use:   "view <file>",
		Short: "Browse a clustered heatmap in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			popts, err := figure.options(cmd)
			if err != nil {
				return err
			}
			ds, err := clio.Import(args[0])
			if err != nil {
				return err
			}
			popts.Compose.RowLabels = ds.RowLabels
			popts.Compose.ColLabels = ds.ColLabels

			runner, err := c.newRunner(cmd.Context())
			if err != nil {
				return err
			}
			defer runner.Close()

			f, err := runner.Compose(cmd.Context(), ds.Data, popts)
			if err != nil {
				return err
			}
			m, err := newViewModel(args[0], f)
			if err != nil {
				return err
			}
			_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}

	figure.register(cmd, false)
	return cmd
}

// Viewer styles
var (
	viewLabelStyle    = lipgloss.NewStyle().Foreground(colorGray)
	viewSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	viewHelpStyle     = lipgloss.NewStyle().Foreground(colorDim)
)

// viewModel is the bubbletea model of the heatmap viewer. Cells are two
// columns wide so they come out roughly square.
type viewModel struct {
	name   string
	fig    *compose.Figure
	colors [][]lipgloss.Color // per cell, display order
	marks  []lipgloss.Color   // row cluster colors, display order

	row, col       int // cursor
	rowOff, colOff int // first visible cell
	height, width  int // visible cells
	labelWidth     int
}

func newViewModel(name string, f *compose.Figure) (viewModel, error) {
	cmap := f.Scale.ColorMap()
	rows, cols := f.Dims()

	colors := make([][]lipgloss.Color, rows)
	for i := range colors {
		colors[i] = make([]lipgloss.Color, cols)
		for j := range colors[i] {
			c, err := cmap.At(f.Scale.Clamp(f.Value(i, j)))
			if err != nil {
				return viewModel{}, fmt.Errorf("color cell %d,%d: %w", i, j, err)
			}
			cf, _ := colorful.MakeColor(c)
			colors[i][j] = lipgloss.Color(cf.Hex())
		}
	}

	marks := make([]lipgloss.Color, rows)
	if ids := f.Rows.Clusters(); ids != nil {
		for pos, idx := range f.Rows.Leaves {
			marks[pos] = lipgloss.Color(render.ClusterColor(ids[idx], f.Rows.Cut.K).Hex())
		}
	}

	labelWidth := 0
	for _, l := range f.Rows.Labels {
		labelWidth = max(labelWidth, lipgloss.Width(l))
	}

	return viewModel{
		name:       name,
		fig:        f,
		colors:     colors,
		marks:      marks,
		height:     20,
		width:      30,
		labelWidth: min(labelWidth, 16),
	}, nil
}

func (m viewModel) Init() tea.Cmd {
	return nil
}

func (m viewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	rows, cols := m.fig.Dims()
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.row = max(m.row-1, 0)
		case "down", "j":
			m.row = min(m.row+1, rows-1)
		case "left", "h":
			m.col = max(m.col-1, 0)
		case "right", "l":
			m.col = min(m.col+1, cols-1)
		case "g", "home":
			m.row = 0
		case "G", "end":
			m.row = rows - 1
		}
	case tea.WindowSizeMsg:
		// Reserve lines for title, help, readout and borders.
		m.height = max(msg.Height-6, 3)
		m.width = max((msg.Width-m.labelWidth-4)/2, 3)
	}

	if m.row < m.rowOff {
		m.rowOff = m.row
	}
	if m.row >= m.rowOff+m.height {
		m.rowOff = m.row - m.height + 1
	}
	if m.col < m.colOff {
		m.colOff = m.col
	}
	if m.col >= m.colOff+m.width {
		m.colOff = m.col - m.width + 1
	}
	return m, nil
}

func (m viewModel) View() string {
	var b strings.Builder
	rows, cols := m.fig.Dims()

	b.WriteString(StyleTitle.Render(m.name))
	b.WriteString(StyleDim.Render(fmt.Sprintf("  %d×%d  %s", rows, cols, m.fig.Scale.Colormap)))
	b.WriteString("\n")
	b.WriteString(viewHelpStyle.Render("↑/↓/←/→ move  g/G top/bottom  q quit"))
	b.WriteString("\n\n")

	rowEnd := min(m.rowOff+m.height, rows)
	colEnd := min(m.colOff+m.width, cols)
	labelStyle := viewLabelStyle.Width(m.labelWidth)
	for i := m.rowOff; i < rowEnd; i++ {
		label := truncateLabel(m.fig.Rows.Labels[i], m.labelWidth)
		if i == m.row {
			b.WriteString(viewSelectedStyle.Width(m.labelWidth).Render(label))
		} else {
			b.WriteString(labelStyle.Render(label))
		}
		b.WriteString(" ")
		if m.marks[i] != "" {
			b.WriteString(lipgloss.NewStyle().Foreground(m.marks[i]).Render("▌"))
		} else {
			b.WriteString(" ")
		}
		for j := m.colOff; j < colEnd; j++ {
			cell := "  "
			if i == m.row && j == m.col {
				cell = "<>"
			}
			b.WriteString(lipgloss.NewStyle().Background(m.colors[i][j]).Foreground(colorWhite).Render(cell))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.readout())
	return b.String()
}

// readout describes the cell under the cursor.
func (m viewModel) readout() string {
	f := m.fig
	parts := []string{
		"row " + StyleHighlight.Render(f.Rows.Labels[m.row]),
		"col " + StyleHighlight.Render(f.Cols.Labels[m.col]),
		"value " + StyleNumber.Render(fmt.Sprintf("%.4g", f.Value(m.row, m.col))),
	}
	if ids := f.Rows.Clusters(); ids != nil {
		parts = append(parts, fmt.Sprintf("cluster %d", ids[f.Rows.Leaves[m.row]]))
	}
	return strings.Join(parts, StyleDim.Render(" · "))
}

func truncateLabel(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
