package io

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/matzehuels/clustermap/pkg/errors"
)

// Import reads a dataset from path, choosing the reader by file extension.
func Import(path string) (*Dataset, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	switch format {
	case FormatJSON:
		return ReadJSON(f)
	case FormatTSV:
		return ReadDelimited(f, '\t')
	default:
		return ReadCSV(f)
	}
}

// ReadCSV reads a comma-separated matrix. Header row and label column are
// detected from their content; see the package documentation.
func ReadCSV(r io.Reader) (*Dataset, error) {
	return ReadDelimited(r, ',')
}

// ReadDelimited reads a matrix separated by sep. Lines starting with '#' are
// skipped.
func ReadDelimited(r io.Reader, sep rune) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.Comma = sep
	cr.Comment = '#'
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse csv")
	}
	if len(records) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "input is empty")
	}

	var colLabels []string
	if !allNumeric(records[0]) {
		colLabels = records[0]
		records = records[1:]
	}
	if len(records) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "input has a header but no data rows")
	}

	labelCol := false
	for _, rec := range records {
		if len(rec) > 0 && !isNumber(rec[0]) {
			labelCol = true
			break
		}
	}

	var rowLabels []string
	rows := make([][]float64, len(records))
	for i, rec := range records {
		if labelCol {
			if len(rec) == 0 {
				return nil, errors.New(errors.ErrCodeInvalidInput, "line %d is empty", i+1)
			}
			rowLabels = append(rowLabels, rec[0])
			rec = rec[1:]
		}
		row := make([]float64, len(rec))
		for j, cell := range rec {
			v, err := parseValue(cell)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "row %d, column %d", i, j)
			}
			row[j] = v
		}
		rows[i] = row
	}

	// A header over the label column carries one extra leading cell.
	if labelCol && len(colLabels) == len(rows[0])+1 {
		colLabels = colLabels[1:]
	}
	return newDataset(rows, rowLabels, colLabels)
}

type document struct {
	RowLabels []string    `json:"row_labels,omitempty"`
	ColLabels []string    `json:"col_labels,omitempty"`
	Data      [][]float64 `json:"data"`
}

// ReadJSON reads a matrix document:
//
//	{"row_labels": [...], "col_labels": [...], "data": [[...], ...]}
//
// The label arrays are optional.
func ReadJSON(r io.Reader) (*Dataset, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode json")
	}
	return newDataset(doc.Data, doc.RowLabels, doc.ColLabels)
}

func allNumeric(rec []string) bool {
	for _, cell := range rec {
		if !isNumber(cell) {
			return false
		}
	}
	return true
}

func isNumber(s string) bool {
	_, err := parseValue(s)
	return err == nil
}

func parseValue(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}
