package cli

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/clustermap/pkg/compose"
	clio "github.com/matzehuels/clustermap/pkg/io"
	"github.com/matzehuels/clustermap/pkg/observability"
	"github.com/matzehuels/clustermap/pkg/render"
)

// clusterCommand creates the cluster command, which prints leaf order and
// cluster assignments instead of drawing.
func (c *CLI) clusterCommand() *cobra.Command {
	figure := newFigureFlags()
	var cols bool

	cmd := &cobra.Command{
		Use:   "cluster <file>",
		Short: "Print the dendrogram leaf order and cluster assignments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			popts, err := figure.options(cmd)
			if err != nil {
				return err
			}
			if !cols {
				popts.Compose.TopDendrogram = false
				popts.Compose.NumColClusters = 0
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

			spinner := newSpinnerWithContext(cmd.Context(), "Reading linkage cache...")
			prev := observability.Pipeline()
			observability.SetPipelineHooks(spinner)
			spinner.Start()
			f, info, err := runner.ComposeWithCacheInfo(cmd.Context(), ds.Data, popts)
			spinner.Stop()
			observability.SetPipelineHooks(prev)
			if err != nil {
				return err
			}

			printSuccess("%s", args[0])
			rows, ncols := f.Dims()
			printStats(rows, ncols, info.RowLinkageHit)
			printNewline()
			printKeyValue("metric", string(popts.Compose.Metric))
			printKeyValue("method", string(popts.Compose.Method))
			printNewline()

			emit(axisTable(f.Rows))
			if cols && f.Cols.Clustered {
				printNewline()
				emit(axisTable(f.Cols))
			}
			for _, adj := range f.Adjustments {
				printWarning("%s clusters clamped from %d to %d", adj.Axis, adj.Requested, adj.Applied)
			}
			return nil
		},
	}

	figure.register(cmd, false)
	cmd.Flags().BoolVar(&cols, "cols", false, "also cluster and list the columns")
	return cmd
}

// axisTable renders one axis in leaf order: position, original index,
// label, cluster id and merge height of the leaf's first merge.
func axisTable(ax compose.Axis) string {
	ids := ax.Clusters()
	k := 0
	if ax.Cut != nil {
		k = ax.Cut.K
	}
	firstMerge := firstMergeHeights(ax)

	rows := make([][]string, len(ax.Leaves))
	for pos, idx := range ax.Leaves {
		id := "—"
		if ids != nil {
			id = strconv.Itoa(ids[idx])
		}
		rows[pos] = []string{
			strconv.Itoa(pos),
			strconv.Itoa(idx),
			ax.Labels[pos],
			id,
			strconv.FormatFloat(firstMerge[idx], 'g', 4, 64),
		}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("#", "Index", "Label", "Cluster", "Joins at").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			style := lipgloss.NewStyle().Padding(0, 1)
			if col == 3 && ids != nil {
				id := ids[ax.Leaves[row]]
				return style.Foreground(lipgloss.Color(render.ClusterColor(id, k).Hex()))
			}
			if col == 0 || col == 1 || col == 4 {
				return style.Foreground(colorDim)
			}
			return style.Foreground(colorWhite)
		})

	return StyleTitle.Render(axisTitle(ax)) + "\n" + t.Render()
}

func axisTitle(ax compose.Axis) string {
	if ax.Name == compose.AxisCols {
		return "Columns"
	}
	return "Rows"
}

// firstMergeHeights returns, per leaf, the height at which it first joins
// another cluster.
func firstMergeHeights(ax compose.Axis) []float64 {
	out := make([]float64, len(ax.Leaves))
	n := len(ax.Leaves)
	for _, m := range ax.Linkage {
		// Each leaf is a direct child of exactly one merge.
		if m.A < n {
			out[m.A] = m.Distance
		}
		if m.B < n {
			out[m.B] = m.Distance
		}
	}
	return out
}
