// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package graphtest holds test utilities for packages that depend on the graph package.
package graphtest

import (
	"testing"

	"github.com/gomlx/autodiff/graph"
	"github.com/gomlx/autodiff/types/values"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// DefaultEpsilon is the step used by finite differences in RunTestGraphFn.
const DefaultEpsilon = 1e-6

// TestGraphFn builds an expression from the given variables and returns its output.
type TestGraphFn func(inputs []*graph.Node) *graph.Node

// NumericJacobian estimates the Jacobian of target with respect to the Variable source using
// central finite differences with step epsilon. It has the layout of the Jacobians returned
// by graph.Function: one row per element of target and one column per element of source,
// both flattened in column-major order.
//
// source is perturbed with Node.Set and restored before returning.
func NumericJacobian(target, source *graph.Node, epsilon float64) (jacobian *mat.Dense, err error) {
	original := source.CachedValue()
	defer func() {
		if restoreErr := source.Set(original); restoreErr != nil && err == nil {
			err = restoreErr
		}
	}()

	targetSize := target.Shape().Size()
	flat := original.Flat()
	jacobian = mat.NewDense(targetSize, len(flat), nil)
	evalAt := func(perturbed []float64) ([]float64, error) {
		value, err := values.FromFlat(source.Shape(), perturbed)
		if err != nil {
			return nil, err
		}
		if err = source.Set(value); err != nil {
			return nil, err
		}
		out, err := target.Value()
		if err != nil {
			return nil, err
		}
		return out.Flat(), nil
	}
	for col := range flat {
		perturbed := append([]float64(nil), flat...)
		perturbed[col] = flat[col] + epsilon
		plus, err := evalAt(perturbed)
		if err != nil {
			return nil, errors.WithMessagef(err, "NumericJacobian: evaluating at +epsilon of element %d", col)
		}
		perturbed[col] = flat[col] - epsilon
		minus, err := evalAt(perturbed)
		if err != nil {
			return nil, errors.WithMessagef(err, "NumericJacobian: evaluating at -epsilon of element %d", col)
		}
		for row := range targetSize {
			jacobian.Set(row, col, (plus[row]-minus[row])/(2*epsilon))
		}
	}
	return jacobian, nil
}

// RequireJacobian checks that the Jacobians of target with respect to each of the sources, computed
// both in reverse mode and in forward mode, match finite differences within delta.
func RequireJacobian(t *testing.T, target *graph.Node, sources []*graph.Node, delta float64) {
	t.Helper()
	fn, err := graph.NewFunction(target, sources...)
	require.NoError(t, err)

	wantJacobians := make([]*mat.Dense, len(sources))
	for ii, source := range sources {
		wantJacobians[ii], err = NumericJacobian(target, source, DefaultEpsilon)
		require.NoErrorf(t, err, "numeric Jacobian with respect to %s", source)
	}

	require.NoError(t, fn.PullGradient())
	for ii, source := range sources {
		got, err := fn.D(source)
		require.NoError(t, err)
		requireDenseInDelta(t, wantJacobians[ii], got, delta, "reverse mode d(%s)/d(%s)", target, source)
	}
	for ii, source := range sources {
		require.NoError(t, fn.PushTangentAt(source))
		got, err := fn.D(target)
		require.NoError(t, err)
		requireDenseInDelta(t, wantJacobians[ii], got, delta, "forward mode d(%s)/d(%s)", target, source)
	}
}

func requireDenseInDelta(t *testing.T, want, got *mat.Dense, delta float64, msgAndArgs ...any) {
	t.Helper()
	wantRows, wantCols := want.Dims()
	gotRows, gotCols := got.Dims()
	require.Equal(t, []int{wantRows, wantCols}, []int{gotRows, gotCols}, msgAndArgs...)
	require.InDeltaSlice(t, values.Flatten(want), values.Flatten(got), delta, msgAndArgs...)
}

// RunTestGraphFn creates one Variable per input literal, builds the expression with graphFn,
// checks that its value is want (within delta, values.FromAny literal) and that its derivatives
// with respect to every input match finite differences.
func RunTestGraphFn(t *testing.T, testName string, graphFn TestGraphFn, inputs []any, want any, delta float64) {
	t.Run(testName, func(t *testing.T) {
		variables := make([]*graph.Node, len(inputs))
		for ii, input := range inputs {
			var err error
			variables[ii], err = graph.Var(input)
			require.NoErrorf(t, err, "inputs[%d]", ii)
		}
		var output *graph.Node
		require.NotPanicsf(t, func() { output = graphFn(variables) }, "%s: failed to build graph", testName)
		got, err := output.Value()
		require.NoError(t, err)
		wantValue, err := values.FromAny(want)
		require.NoError(t, err)
		require.Truef(t, wantValue.EqualApprox(got, delta), "%s: got %s, wanted %s", testName, got, wantValue)
		RequireJacobian(t, output, variables, 1e-4)
	})
}
