// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package graph_test

import (
	"math"
	"testing"

	. "github.com/gomlx/autodiff/graph"
	"github.com/gomlx/autodiff/graph/graphtest"
	"github.com/gomlx/autodiff/types/shapes"
	"github.com/gomlx/exceptions"
	"github.com/stretchr/testify/require"
)

// Epsilon used when comparing values.
const Epsilon = 1e-9

func TestElementwiseOps(t *testing.T) {
	vec := []float64{0.5, 1.5, 2.5}
	vec2 := []float64{-1.0, 2.0, 0.25}
	mat := [][]float64{{0.5, -1.0}, {2.0, 3.0}}

	graphtest.RunTestGraphFn(t, "Add", func(inputs []*Node) *Node {
		return Add(inputs[0], inputs[1])
	}, []any{vec, vec2}, []float64{-0.5, 3.5, 2.75}, Epsilon)
	graphtest.RunTestGraphFn(t, "Sub", func(inputs []*Node) *Node {
		return Sub(inputs[0], inputs[1])
	}, []any{vec, vec2}, []float64{1.5, -0.5, 2.25}, Epsilon)
	graphtest.RunTestGraphFn(t, "Mul", func(inputs []*Node) *Node {
		return Mul(inputs[0], inputs[1])
	}, []any{vec, vec2}, []float64{-0.5, 3, 0.625}, Epsilon)
	graphtest.RunTestGraphFn(t, "Div", func(inputs []*Node) *Node {
		return Div(inputs[0], inputs[1])
	}, []any{vec, vec2}, []float64{-0.5, 0.75, 10}, Epsilon)
	graphtest.RunTestGraphFn(t, "Pow", func(inputs []*Node) *Node {
		return Pow(inputs[0], inputs[1])
	}, []any{vec, vec2}, []float64{2, 2.25, math.Pow(2.5, 0.25)}, Epsilon)
	graphtest.RunTestGraphFn(t, "Pow with constant exponent", func(inputs []*Node) *Node {
		return Pow(inputs[0], 3.0)
	}, []any{vec2}, []float64{-1, 8, 0.015625}, Epsilon)
	graphtest.RunTestGraphFn(t, "Neg", func(inputs []*Node) *Node {
		return Neg(inputs[0])
	}, []any{mat}, [][]float64{{-0.5, 1.0}, {-2.0, -3.0}}, Epsilon)
	graphtest.RunTestGraphFn(t, "Sin", func(inputs []*Node) *Node {
		return Sin(inputs[0])
	}, []any{vec}, []float64{math.Sin(0.5), math.Sin(1.5), math.Sin(2.5)}, Epsilon)
	graphtest.RunTestGraphFn(t, "Cos", func(inputs []*Node) *Node {
		return Cos(inputs[0])
	}, []any{vec}, []float64{math.Cos(0.5), math.Cos(1.5), math.Cos(2.5)}, Epsilon)
	graphtest.RunTestGraphFn(t, "Exp", func(inputs []*Node) *Node {
		return Exp(inputs[0])
	}, []any{0.5}, math.Exp(0.5), Epsilon)
	graphtest.RunTestGraphFn(t, "Log", func(inputs []*Node) *Node {
		return Log(inputs[0])
	}, []any{vec}, []float64{math.Log(0.5), math.Log(1.5), math.Log(2.5)}, Epsilon)
	graphtest.RunTestGraphFn(t, "Sqrt", func(inputs []*Node) *Node {
		return Sqrt(inputs[0])
	}, []any{[]float64{0.25, 4, 9}}, []float64{0.5, 2, 3}, Epsilon)
	graphtest.RunTestGraphFn(t, "Square", func(inputs []*Node) *Node {
		return Square(inputs[0])
	}, []any{mat}, [][]float64{{0.25, 1.0}, {4.0, 9.0}}, Epsilon)
	graphtest.RunTestGraphFn(t, "Minimum", func(inputs []*Node) *Node {
		return Minimum(inputs[0])
	}, []any{mat}, [][]float64{{0, -1.0}, {0, 0}}, Epsilon)
	graphtest.RunTestGraphFn(t, "Maximum", func(inputs []*Node) *Node {
		return Maximum(inputs[0])
	}, []any{mat}, [][]float64{{0.5, 0}, {2.0, 3.0}}, Epsilon)
}

func TestBroadcasting(t *testing.T) {
	graphtest.RunTestGraphFn(t, "scalar+vector", func(inputs []*Node) *Node {
		return Add(inputs[0], inputs[1])
	}, []any{1.0, []float64{1, 2, 3}}, []float64{2, 3, 4}, Epsilon)
	graphtest.RunTestGraphFn(t, "matrix/scalar", func(inputs []*Node) *Node {
		return Div(inputs[0], inputs[1])
	}, []any{[][]float64{{1, 2}, {3, 4}}, 2.0}, [][]float64{{0.5, 1}, {1.5, 2}}, Epsilon)
	graphtest.RunTestGraphFn(t, "scalar^vector", func(inputs []*Node) *Node {
		return Pow(inputs[0], inputs[1])
	}, []any{2.0, []float64{1, 2, 3}}, []float64{2, 4, 8}, Epsilon)

	// Literal operands become constants.
	x := MustVar([]float64{1, 2, 3})
	y := Mul(2.0, x)
	require.True(t, y.Shape().Equal(shapes.Vector(3)))
	require.Equal(t, []float64{2, 4, 6}, y.CachedValue().Vector())
	z := Sub(x, []float64{1, 1, 1})
	require.Equal(t, []float64{0, 1, 2}, z.CachedValue().Vector())
}

func TestLinearAlgebraOps(t *testing.T) {
	graphtest.RunTestGraphFn(t, "Dot", func(inputs []*Node) *Node {
		return Dot(inputs[0], inputs[1])
	}, []any{[]float64{1, 2, 3}, []float64{4, 5, 6}}, 32.0, Epsilon)
	graphtest.RunTestGraphFn(t, "Outer", func(inputs []*Node) *Node {
		return Outer(inputs[0], inputs[1])
	}, []any{[]float64{1, 2}, []float64{3, 4, 5}}, [][]float64{{3, 4, 5}, {6, 8, 10}}, Epsilon)
	graphtest.RunTestGraphFn(t, "MatMul(matrix, matrix)", func(inputs []*Node) *Node {
		return MatMul(inputs[0], inputs[1])
	}, []any{
		[][]float64{{1, 2}, {3, 4}},
		[][]float64{{1, 0, -1}, {2, 1, 0}},
	}, [][]float64{{5, 2, -1}, {11, 4, -3}}, Epsilon)
	graphtest.RunTestGraphFn(t, "MatMul(matrix, vector)", func(inputs []*Node) *Node {
		return MatMul(inputs[0], inputs[1])
	}, []any{
		[][]float64{{1, 2}, {3, 4}, {5, 6}},
		[]float64{1, -1},
	}, []float64{-1, -1, -1}, Epsilon)

	// Matrix times a 1-column matrix is still a matrix.
	a := MustVar([][]float64{{1, 2}, {3, 4}})
	b := MustVar([][]float64{{1}, {1}})
	require.True(t, MatMul(a, b).Shape().Equal(shapes.Matrix(2, 1)))
}

func TestReductions(t *testing.T) {
	mat := [][]float64{{1, -2}, {3, 4}}
	graphtest.RunTestGraphFn(t, "Sum", func(inputs []*Node) *Node {
		return Sum(inputs[0])
	}, []any{mat}, 6.0, Epsilon)
	graphtest.RunTestGraphFn(t, "Mean", func(inputs []*Node) *Node {
		return Mean(inputs[0])
	}, []any{mat}, 1.5, Epsilon)
	graphtest.RunTestGraphFn(t, "Norm", func(inputs []*Node) *Node {
		return Norm(inputs[0])
	}, []any{[]float64{3, 4}}, 5.0, Epsilon)
	graphtest.RunTestGraphFn(t, "Norm(matrix)", func(inputs []*Node) *Node {
		return Norm(inputs[0])
	}, []any{mat}, math.Sqrt(30), Epsilon)
	graphtest.RunTestGraphFn(t, "SquaredNorm", func(inputs []*Node) *Node {
		return SquaredNorm(inputs[0])
	}, []any{mat}, 30.0, Epsilon)
	graphtest.RunTestGraphFn(t, "Sum(scalar)", func(inputs []*Node) *Node {
		return Sum(inputs[0])
	}, []any{2.0}, 2.0, Epsilon)
}

func TestComposite(t *testing.T) {
	graphtest.RunTestGraphFn(t, "least squares", func(inputs []*Node) *Node {
		a, x, b := inputs[0], inputs[1], inputs[2]
		return Mean(Square(Sub(MatMul(a, x), b)))
	}, []any{
		[][]float64{{1, 2}, {3, 4}, {5, 6}},
		[]float64{0.5, -0.5},
		[]float64{1, 0, -1},
	}, (2.25+0.25+0.25)/3, Epsilon)
	graphtest.RunTestGraphFn(t, "shared operands", func(inputs []*Node) *Node {
		x := inputs[0]
		s := Sin(x)
		return Add(Mul(s, s), Mul(Exp(Neg(x)), s))
	}, []any{[]float64{0.1, 0.7}}, []float64{
		math.Sin(0.1)*math.Sin(0.1) + math.Exp(-0.1)*math.Sin(0.1),
		math.Sin(0.7)*math.Sin(0.7) + math.Exp(-0.7)*math.Sin(0.7),
	}, Epsilon)
}

func TestShapeMismatch(t *testing.T) {
	vec3 := MustVar([]float64{1, 2, 3})
	vec2 := MustVar([]float64{1, 2})
	row := MustVar([][]float64{{1, 2, 3}})
	square := MustVar([][]float64{{1, 2}, {3, 4}})

	for name, build := range map[string]func(){
		"Add(vec3, vec2)":      func() { Add(vec3, vec2) },
		"Mul(vec3, row)":       func() { Mul(vec3, row) },
		"Dot(vec3, vec2)":      func() { Dot(vec3, vec2) },
		"Dot(row, row)":        func() { Dot(row, row) },
		"Outer(vec3, row)":     func() { Outer(vec3, row) },
		"MatMul(square, vec3)": func() { MatMul(square, vec3) },
		"MatMul(vec2, square)": func() { MatMul(vec2, square) },
		"MatMul(square, row)":  func() { MatMul(square, row) },
	} {
		err := exceptions.TryCatch[error](build)
		require.Errorf(t, err, "%s should have failed", name)
		require.ErrorIsf(t, err, ErrShapeMismatch, "%s failed with an unexpected error: %v", name, err)
	}

	// Invalid literals panic too.
	require.Panics(t, func() { Add(vec3, "x") })
}

func TestDomainErrors(t *testing.T) {
	// Construction never fails on domain: the error is reported by the next evaluation.
	y := MustVar(0.0)
	z := Div(1.0, y)
	require.True(t, z.IsDirty())
	_, err := z.Value()
	require.ErrorIs(t, err, ErrDomain)

	// Fixing the input and retrying works.
	require.NoError(t, y.Set(4.0))
	got, err := z.Value()
	require.NoError(t, err)
	require.Equal(t, 0.25, got.Scalar())
	require.False(t, z.IsDirty())

	x := MustVar([]float64{1, 2})
	for name, node := range map[string]*Node{
		"Log":  Log(Neg(x)),
		"Sqrt": Sqrt(Sub(x, 1.0)),
		"Pow":  Pow(Neg(x), 0.5),
		"Div":  Div(x, Sub(x, 2.0)),

		// Finite value but infinite derivative, like Sqrt(0).
		"Pow at zero": Pow(Sub(x, 1.0), 0.5),
	} {
		require.ErrorIsf(t, Evaluate(node), ErrDomain, "%s should fail with a domain error", name)
		require.Truef(t, node.IsDirty(), "%s should be left dirty", name)
	}

	squared := Pow(Sub(x, 1.0), 2.0)
	require.NoError(t, Evaluate(squared))

	// Downstream nodes of a failure fail too.
	w := Add(Log(Neg(x)), 1.0)
	require.ErrorIs(t, Evaluate(w), ErrDomain)
	require.NoError(t, x.Set([]float64{-1, -2}))
	require.NoError(t, Evaluate(w))
}
