package io

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Demo generates a rows×cols matrix with hidden block structure: each row
// copies one of three gamma-distributed column profiles, each column adds
// one of three gamma-distributed row profiles, and Gaussian noise with
// standard deviation 2 is laid on top. Rows are labeled R00, R01, ...
// and columns C00, C01, ....
//
// The same seed always yields the same dataset.
func Demo(rows, cols int, seed uint64) *Dataset {
	src := rand.NewSource(seed)
	rng := rand.New(src)

	gamma := func(shape, scale float64, n int) []float64 {
		g := distuv.Gamma{Alpha: shape, Beta: 1 / scale, Src: src}
		out := make([]float64, n)
		for i := range out {
			out[i] = g.Rand()
		}
		return out
	}

	colProfiles := [][]float64{
		gamma(7, 6, cols),
		gamma(6, 8, cols),
		gamma(5, 6, cols),
	}
	rowProfiles := [][]float64{
		gamma(8, 3, rows),
		gamma(5, 3, rows),
		gamma(6, 2.1, rows),
	}
	rowPick := make([]int, rows)
	for i := range rowPick {
		rowPick[i] = rng.Intn(len(colProfiles))
	}
	colPick := make([]int, cols)
	for j := range colPick {
		colPick[j] = rng.Intn(len(rowProfiles))
	}

	noise := distuv.Normal{Mu: 0, Sigma: 2, Src: src}
	x := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			v := colProfiles[rowPick[i]][j] + 1.1*rowProfiles[colPick[j]][i] + noise.Rand()
			x.Set(i, j, v)
		}
	}

	return &Dataset{
		Data:      x,
		RowLabels: numbered("R", rows),
		ColLabels: numbered("C", cols),
	}
}

func numbered(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s%02d", prefix, i)
	}
	return out
}
