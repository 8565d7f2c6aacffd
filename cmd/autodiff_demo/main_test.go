// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestSelectExamples(t *testing.T) {
	all, err := selectExamples("all")
	require.NoError(t, err)
	require.Len(t, all, len(examples))

	selected, err := selectExamples("array, scalar")
	require.NoError(t, err)
	require.Len(t, selected, 2)
	require.Equal(t, "array", selected[0].name)
	require.Equal(t, "scalar", selected[1].name)

	_, err = selectExamples("scalar,unknown")
	require.Error(t, err)
}

func TestRunExamples(t *testing.T) {
	for _, ex := range examples {
		t.Run(ex.name, func(t *testing.T) {
			r, err := runExample(ex, true, true)
			require.NoError(t, err)
			require.True(t, r.modesAgree())
			require.Len(t, r.reverse, 2)
			require.Contains(t, r.Render(), ex.name)
		})
	}
}

func TestScalarExample(t *testing.T) {
	r, err := runExample(examples[0], true, false)
	require.NoError(t, err)
	require.Equal(t, -3.0, r.value.Scalar())
	require.True(t, mat.Equal(mat.NewDense(1, 1, []float64{-2}), r.reverse[0].jacobian))
	require.True(t, mat.Equal(mat.NewDense(1, 1, []float64{1.5}), r.reverse[1].jacobian))
}

func TestArrayExampleSeed(t *testing.T) {
	r, err := runExample(examples[1], true, false)
	require.NoError(t, err)
	require.Equal(t, []float64{4, 10, 18}, r.value.Vector())
	require.True(t, mat.Equal(mat.NewDense(1, 3, []float64{4, 5, 6}), r.reverse[0].jacobian))
	require.True(t, mat.Equal(mat.NewDense(1, 3, []float64{1, 2, 3}), r.reverse[1].jacobian))

	// Without the seed the Jacobians are diagonal.
	r, err = runExample(examples[1], false, false)
	require.NoError(t, err)
	rows, cols := r.reverse[0].jacobian.Dims()
	require.Equal(t, []int{3, 3}, []int{rows, cols})
}
