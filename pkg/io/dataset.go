package io

import (
	"math"
	"path/filepath"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/matzehuels/clustermap/pkg/errors"
)

// Dataset is a labeled numeric matrix.
type Dataset struct {
	Data      *mat.Dense
	RowLabels []string
	ColLabels []string
}

// Dims returns the number of rows and columns.
func (d *Dataset) Dims() (rows, cols int) {
	if d == nil || d.Data == nil {
		return 0, 0
	}
	return d.Data.Dims()
}

// Format is an input/output file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatTSV  Format = "tsv"
	FormatJSON Format = "json"
)

// FormatOf returns the format implied by a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		return FormatCSV, nil
	case ".tsv", ".tab":
		return FormatTSV, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "cannot infer format of %q (want .csv, .tsv or .json)", path)
}

func newDataset(rows [][]float64, rowLabels, colLabels []string) (*Dataset, error) {
	if len(rows) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "matrix has no rows")
	}
	cols := len(rows[0])
	if cols == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "matrix has no columns")
	}
	data := make([]float64, 0, len(rows)*cols)
	for i, r := range rows {
		if len(r) != cols {
			return nil, errors.New(errors.ErrCodeInvalidInput, "row %d has %d values, want %d", i, len(r), cols)
		}
		for j, v := range r {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, errors.New(errors.ErrCodeInvalidInput, "value at row %d, column %d is not finite", i, j)
			}
		}
		data = append(data, r...)
	}
	if err := errors.ValidateLabels("row", rowLabels, len(rows)); err != nil {
		return nil, err
	}
	if err := errors.ValidateLabels("column", colLabels, cols); err != nil {
		return nil, err
	}
	return &Dataset{
		Data:      mat.NewDense(len(rows), cols, data),
		RowLabels: rowLabels,
		ColLabels: colLabels,
	}, nil
}
