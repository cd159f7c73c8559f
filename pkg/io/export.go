package io

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"gonum.org/v1/gonum/mat"

	"github.com/matzehuels/clustermap/pkg/compose"
)

// WriteCSV writes d as CSV. Labels, when present, become the header row and
// the first column.
func WriteCSV(d *Dataset, w io.Writer) error {
	return writeDelimited(d, w, ',')
}

// WriteJSON writes d as a matrix document readable by [ReadJSON].
func WriteJSON(d *Dataset, w io.Writer) error {
	rows, _ := d.Dims()
	doc := document{
		RowLabels: d.RowLabels,
		ColLabels: d.ColLabels,
		Data:      make([][]float64, rows),
	}
	for i := range doc.Data {
		doc.Data[i] = mat.Row(nil, i, d.Data)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// Export writes d to path in the format implied by its extension.
func Export(d *Dataset, path string) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	switch format {
	case FormatJSON:
		return WriteJSON(d, f)
	case FormatTSV:
		return writeDelimited(d, f, '\t')
	default:
		return WriteCSV(d, f)
	}
}

func writeDelimited(d *Dataset, w io.Writer, sep rune) error {
	rows, cols := d.Dims()
	cw := csv.NewWriter(w)
	cw.Comma = sep

	hasRowLabels := len(d.RowLabels) == rows
	if len(d.ColLabels) == cols {
		header := make([]string, 0, cols+1)
		if hasRowLabels {
			header = append(header, "")
		}
		header = append(header, d.ColLabels...)
		if err := cw.Write(header); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	rec := make([]string, 0, cols+1)
	for i := 0; i < rows; i++ {
		rec = rec[:0]
		if hasRowLabels {
			rec = append(rec, d.RowLabels[i])
		}
		for j := 0; j < cols; j++ {
			rec = append(rec, formatValue(d.Data.At(i, j)))
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteClusters writes the clustering result of f as CSV with columns
// axis, position, index, label and cluster. Position is the place in the
// dendrogram leaf order, index the original row or column. Cluster is 0 when
// the axis was not cut.
func WriteClusters(f *compose.Figure, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"axis", "position", "index", "label", "cluster"}); err != nil {
		return err
	}
	for _, ax := range []*compose.Axis{&f.Rows, &f.Cols} {
		ids := ax.Clusters()
		for pos, idx := range ax.Leaves {
			id := 0
			if ids != nil {
				id = ids[idx]
			}
			rec := []string{ax.Name, strconv.Itoa(pos), strconv.Itoa(idx), ax.Labels[pos], strconv.Itoa(id)}
			if err := cw.Write(rec); err != nil {
				return fmt.Errorf("write %s %d: %w", ax.Name, idx, err)
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
