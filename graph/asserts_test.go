// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package graph_test

import (
	"testing"

	. "github.com/gomlx/autodiff/graph"
	"github.com/gomlx/autodiff/types/shapes"
	"github.com/gomlx/exceptions"
	"github.com/stretchr/testify/require"
)

func TestAsserts(t *testing.T) {
	node := MustVar([][]float64{{1, 2}, {3, 4}, {5, 6}})
	scalar := Sum(node)

	// Verify correct checks.
	require.NotPanics(t, func() { node.AssertDims(shapes.KindMatrix, 3, 2) })
	require.NotPanics(t, func() { node.AssertDims(shapes.KindMatrix, shapes.UncheckedDim, 2) })
	require.NotPanics(t, func() { node.AssertDims(shapes.KindMatrix, 3, shapes.UncheckedDim) })
	require.NotPanics(t, func() { scalar.AssertScalar() })
	require.NotPanics(t, func() { scalar.AssertDims(shapes.KindScalar, 1, 1) })

	// Verify false asserts.
	for name, assertFn := range map[string]func(){
		"wrong kind": func() { node.AssertDims(shapes.KindVector, 3, 2) },
		"wrong rows": func() { node.AssertDims(shapes.KindMatrix, 4, 2) },
		"wrong cols": func() { node.AssertDims(shapes.KindMatrix, -1, 1) },
		"not scalar": func() { node.AssertScalar() },
		"nil node":   func() { (*Node)(nil).AssertScalar() },
	} {
		err := exceptions.TryCatch[error](assertFn)
		require.Errorf(t, err, "%s: should have panicked", name)
		if name != "nil node" {
			require.ErrorIsf(t, err, ErrShapeMismatch, "%s", name)
		}
	}
}
