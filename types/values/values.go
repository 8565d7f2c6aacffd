// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package values implements Value, the storage of the current value of a node in the autodiff
// graph, and the helpers used to build Jacobian buffers.
//
// A Value is a dense float64 buffer backed by gonum's mat.Dense, tagged with a shapes.Shape
// (scalar, vector or matrix). There are various ways to construct a Value:
//
//   - Zeros(shape): a zero-filled value of the given shape.
//
//   - FromAny(value any): converts a literal. Accepted literals are float64, float32, int
//     (scalars), []float64 (vector), [][]float64 (matrix), *mat.VecDense (vector), *mat.Dense
//     (matrix) and Value itself. 2-D literals must be regular (all rows the same length).
//
//   - FromFlat(shape, flat): from column-major flat data, the inverse of Value.Flat.
//
// Values handed out by this package never share storage with the caller's literal: FromAny
// copies, and Dense/Vector/Matrix return copies.
//
// Jacobians are plain *mat.Dense: see Identity, and the "flattening" convention documented in
// Value.Flat.
package values

import (
	"fmt"
	"math"

	"github.com/gomlx/autodiff/types/shapes"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ErrInvalidLiteral is returned (wrapped) when a literal cannot be converted to a Value.
var ErrInvalidLiteral = errors.New("invalid literal")

// Value holds a scalar, vector or matrix value.
//
// The zero Value is invalid. Values are treated as immutable: use Dense to get a mutable copy.
type Value struct {
	shape shapes.Shape
	data  *mat.Dense
}

// Zeros returns a zero-filled value of the given shape.
func Zeros(shape shapes.Shape) Value {
	return Value{shape: shape, data: mat.NewDense(shape.Rows, shape.Cols, nil)}
}

// FromDense wraps dense as a value of the given shape, taking ownership of dense (it is not
// copied). It returns an error if the dimensions don't match.
func FromDense(shape shapes.Shape, dense *mat.Dense) (Value, error) {
	rows, cols := dense.Dims()
	if rows != shape.Rows || cols != shape.Cols {
		return Value{}, errors.Wrapf(ErrInvalidLiteral, "dense matrix of dimensions %dx%d cannot hold shape %s",
			rows, cols, shape)
	}
	return Value{shape: shape, data: dense}, nil
}

// FromFlat creates a value of the given shape from column-major flat data.
func FromFlat(shape shapes.Shape, flat []float64) (Value, error) {
	if len(flat) != shape.Size() {
		return Value{}, errors.Wrapf(ErrInvalidLiteral, "flat data of length %d cannot hold shape %s",
			len(flat), shape)
	}
	return Value{shape: shape, data: Unflatten(flat, shape.Rows, shape.Cols)}, nil
}

// FromAny converts a literal to a Value. See package documentation for the accepted types.
func FromAny(value any) (Value, error) {
	switch v := value.(type) {
	case Value:
		if !v.shape.Ok() {
			return Value{}, errors.Wrap(ErrInvalidLiteral, "invalid (zero) Value")
		}
		return v, nil
	case float64:
		return scalar(v), nil
	case float32:
		return scalar(float64(v)), nil
	case int:
		return scalar(float64(v)), nil
	case []float64:
		if len(v) == 0 {
			return Value{}, errors.Wrap(ErrInvalidLiteral, "empty 1-D literal")
		}
		data := mat.NewDense(len(v), 1, append([]float64(nil), v...))
		return Value{shape: shapes.Vector(len(v)), data: data}, nil
	case [][]float64:
		return fromRows(v)
	case *mat.VecDense:
		if v == nil || v.Len() == 0 {
			return Value{}, errors.Wrap(ErrInvalidLiteral, "empty *mat.VecDense literal")
		}
		data := mat.NewDense(v.Len(), 1, nil)
		data.Copy(v)
		return Value{shape: shapes.Vector(v.Len()), data: data}, nil
	case *mat.Dense:
		if v == nil || v.IsEmpty() {
			return Value{}, errors.Wrap(ErrInvalidLiteral, "empty *mat.Dense literal")
		}
		return Value{shape: shapes.Matrix(v.Dims()), data: mat.DenseCopyOf(v)}, nil
	}
	return Value{}, errors.Wrapf(ErrInvalidLiteral, "unsupported literal type %T", value)
}

func scalar(v float64) Value {
	return Value{shape: shapes.ScalarShape(), data: mat.NewDense(1, 1, []float64{v})}
}

func fromRows(rows [][]float64) (Value, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return Value{}, errors.Wrap(ErrInvalidLiteral, "empty 2-D literal")
	}
	numCols := len(rows[0])
	flat := make([]float64, 0, len(rows)*numCols)
	for ii, row := range rows {
		if len(row) != numCols {
			return Value{}, errors.Wrapf(ErrInvalidLiteral, "ragged 2-D literal: row %d has %d elements, row 0 has %d",
				ii, len(row), numCols)
		}
		flat = append(flat, row...)
	}
	return Value{shape: shapes.Matrix(len(rows), numCols), data: mat.NewDense(len(rows), numCols, flat)}, nil
}

// Shape of the value. It implements shapes.HasShape.
func (v Value) Shape() shapes.Shape { return v.shape }

// Ok returns whether the value is valid.
func (v Value) Ok() bool { return v.shape.Ok() && v.data != nil }

// Raw returns the underlying buffer. It must not be modified.
func (v Value) Raw() *mat.Dense { return v.data }

// Dense returns a copy of the value as a matrix. Scalars are 1x1 and vectors are rx1.
func (v Value) Dense() *mat.Dense { return mat.DenseCopyOf(v.data) }

// At returns the element at (row, col).
func (v Value) At(row, col int) float64 { return v.data.At(row, col) }

// Scalar returns the value of a scalar. It panics if the value is not a scalar.
func (v Value) Scalar() float64 {
	shapes.AssertKind(v, shapes.KindScalar)
	return v.data.At(0, 0)
}

// Vector returns a copy of the elements of a vector. It panics if the value is not a vector.
func (v Value) Vector() []float64 {
	shapes.AssertKind(v, shapes.KindVector)
	return mat.Col(nil, 0, v.data)
}

// Matrix returns a copy of the value as rows of elements. It works for any kind.
func (v Value) Matrix() [][]float64 {
	rows := make([][]float64, v.shape.Rows)
	for ii := range rows {
		rows[ii] = mat.Row(nil, ii, v.data)
	}
	return rows
}

// Flat returns the elements linearized in column-major order.
//
// This is the convention used for Jacobians: a Jacobian of a target with respect to a
// matrix node has one column per element of the node, in column-major order.
func (v Value) Flat() []float64 {
	return Flatten(v.data)
}

// Equal returns whether both values have the same shape and exactly the same elements.
func (v Value) Equal(other Value) bool {
	if !v.shape.Equal(other.shape) {
		return false
	}
	return mat.Equal(v.data, other.data)
}

// EqualApprox returns whether both values have the same shape and elements within tol.
func (v Value) EqualApprox(other Value, tol float64) bool {
	if !v.shape.Equal(other.shape) {
		return false
	}
	return floats.EqualApprox(v.Flat(), other.Flat(), tol)
}

// IsFinite returns whether all elements are finite (not NaN or infinite).
func (v Value) IsFinite() bool {
	for _, x := range v.data.RawMatrix().Data {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// String implements fmt.Stringer.
func (v Value) String() string {
	if !v.Ok() {
		return "Value(invalid)"
	}
	switch v.shape.Kind {
	case shapes.KindScalar:
		return fmt.Sprintf("%s %g", v.shape, v.data.At(0, 0))
	case shapes.KindVector:
		return fmt.Sprintf("%s %v", v.shape, v.Vector())
	default:
		return fmt.Sprintf("%s %v", v.shape, v.Matrix())
	}
}
