// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package values

import (
	"math"
	"testing"

	"github.com/gomlx/autodiff/types/shapes"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestFromAny(t *testing.T) {
	v, err := FromAny(2.5)
	require.NoError(t, err)
	require.True(t, v.Shape().IsScalar())
	require.Equal(t, 2.5, v.Scalar())

	v, err = FromAny(3)
	require.NoError(t, err)
	require.Equal(t, 3.0, v.Scalar())

	v, err = FromAny([]float64{1, 2, 3})
	require.NoError(t, err)
	require.Equal(t, shapes.Vector(3), v.Shape())
	require.Equal(t, []float64{1, 2, 3}, v.Vector())

	v, err = FromAny([][]float64{{1, 2, 3}})
	require.NoError(t, err)
	require.Equal(t, shapes.Matrix(1, 3), v.Shape(), "1xN literals are matrices")

	v, err = FromAny([][]float64{{1}, {2}})
	require.NoError(t, err)
	require.Equal(t, shapes.Matrix(2, 1), v.Shape(), "Nx1 2-D literals are matrices")

	v, err = FromAny(mat.NewVecDense(2, []float64{4, 5}))
	require.NoError(t, err)
	require.Equal(t, []float64{4, 5}, v.Vector())

	v, err = FromAny(mat.NewDense(2, 2, []float64{1, 2, 3, 4}))
	require.NoError(t, err)
	require.Equal(t, [][]float64{{1, 2}, {3, 4}}, v.Matrix())

	v2, err := FromAny(v)
	require.NoError(t, err)
	require.True(t, v.Equal(v2))
}

func TestFromAnyErrors(t *testing.T) {
	for _, literal := range []any{
		"foo",
		[]float64{},
		[][]float64{},
		[][]float64{{1, 2}, {3}},
		Value{},
	} {
		_, err := FromAny(literal)
		require.Errorf(t, err, "literal %#v", literal)
		require.Truef(t, errors.Is(err, ErrInvalidLiteral), "literal %#v: %v", literal, err)
	}
}

func TestFromAnyCopies(t *testing.T) {
	literal := []float64{1, 2}
	v, err := FromAny(literal)
	require.NoError(t, err)
	literal[0] = 100
	require.Equal(t, []float64{1, 2}, v.Vector())

	dense := v.Dense()
	dense.Set(0, 0, 7)
	require.Equal(t, 1.0, v.At(0, 0))
}

func TestFlatColumnMajor(t *testing.T) {
	v, err := FromAny([][]float64{{1, 2, 3}, {4, 5, 6}})
	require.NoError(t, err)
	require.Equal(t, []float64{1, 4, 2, 5, 3, 6}, v.Flat())

	back, err := FromFlat(v.Shape(), v.Flat())
	require.NoError(t, err)
	require.True(t, v.Equal(back))

	_, err = FromFlat(v.Shape(), []float64{1, 2})
	require.Error(t, err)
}

func TestJacobianHelpers(t *testing.T) {
	require.True(t, mat.Equal(mat.NewDense(2, 2, []float64{1, 0, 0, 1}), Identity(2)))
	require.True(t, mat.Equal(mat.NewDense(2, 2, []float64{3, 0, 0, 4}), Diagonal([]float64{3, 4})))
	m := Unflatten([]float64{1, 2, 3, 4, 5, 6}, 3, 2)
	require.Equal(t, 4.0, m.At(0, 1))
	require.Equal(t, []float64{1, 2, 3, 4, 5, 6}, Flatten(m))
}

func TestEqualApproxAndFinite(t *testing.T) {
	a, _ := FromAny([]float64{1, 2})
	b, _ := FromAny([]float64{1 + 1e-9, 2})
	c, _ := FromAny([][]float64{{1}, {2}})
	require.False(t, a.Equal(b))
	require.True(t, a.EqualApprox(b, 1e-6))
	require.False(t, a.EqualApprox(c, 1e-6), "different kinds are never equal")

	require.True(t, a.IsFinite())
	d, _ := FromAny([]float64{1, math.Inf(1)})
	require.False(t, d.IsFinite())
}

func TestString(t *testing.T) {
	v, _ := FromAny(1.5)
	require.Equal(t, "(scalar) 1.5", v.String())
	v, _ = FromAny([]float64{1, 2})
	require.Equal(t, "(vector)[2] [1 2]", v.String())
	require.Equal(t, "Value(invalid)", Value{}.String())
	require.Panics(t, func() { _ = v.Scalar() })
}
