// Package io reads and writes the matrices clustermap works on, and exports
// clustering results.
//
// # Input Formats
//
// CSV input is a grid of numbers. A first row whose cells are not all
// numeric is taken as column labels, and a first column whose cells are not
// all numeric as row labels:
//
//	gene,s1,s2,s3
//	tp53,1.2,0.4,3.3
//	brca1,0.9,2.2,1.7
//
// JSON input is an object with a "data" array of rows and optional label
// arrays:
//
//	{
//	  "row_labels": ["tp53", "brca1"],
//	  "col_labels": ["s1", "s2", "s3"],
//	  "data": [[1.2, 0.4, 3.3], [0.9, 2.2, 1.7]]
//	}
//
// Use [Import] to read a file by extension, or [ReadCSV] and [ReadJSON] for
// any io.Reader. Every import checks that rows are non-ragged and that all
// values are finite.
//
// # Export
//
// [WriteCSV] and [WriteJSON] write a [Dataset] back out in the same formats.
// [WriteClusters] writes the leaf order and cluster ids of a composed figure
// as CSV, one line per row or column.
//
// # Demo Data
//
// [Demo] generates the block-structured random matrix used to try the tool
// without real data.
package io
