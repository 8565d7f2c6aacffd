// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package values

import (
	"gonum.org/v1/gonum/mat"
)

// Flatten linearizes m in column-major order.
func Flatten(m mat.Matrix) []float64 {
	rows, cols := m.Dims()
	flat := make([]float64, 0, rows*cols)
	for col := range cols {
		for row := range rows {
			flat = append(flat, m.At(row, col))
		}
	}
	return flat
}

// Unflatten is the inverse of Flatten: it builds a rows x cols matrix from column-major data.
func Unflatten(flat []float64, rows, cols int) *mat.Dense {
	m := mat.NewDense(rows, cols, nil)
	for col := range cols {
		for row := range rows {
			m.Set(row, col, flat[col*rows+row])
		}
	}
	return m
}

// Identity returns the n x n identity matrix, the default seed of a differentiation pass.
func Identity(n int) *mat.Dense {
	m := mat.NewDense(n, n, nil)
	for ii := range n {
		m.Set(ii, ii, 1)
	}
	return m
}

// Diagonal returns a square matrix with the given diagonal.
func Diagonal(diagonal []float64) *mat.Dense {
	m := mat.NewDense(len(diagonal), len(diagonal), nil)
	for ii, x := range diagonal {
		m.Set(ii, ii, x)
	}
	return m
}
