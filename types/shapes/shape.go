// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package shapes defines Shape and the broadcasting rules of the autodiff engine.
//
// A Shape is one of three kinds:
//
//   - Scalar: a single value, always (1, 1).
//   - Vector: a column vector (r, 1). 1-D literals are canonicalized to this.
//   - Matrix: a dense (r, s) matrix. Any 2-D literal is a matrix, including 1xN and Nx1 ones.
//
// The distinction between a Vector (r, 1) and an Nx1 Matrix is part of the shape: they are
// never equal, and operations that accept vectors (Dot, Outer) reject Nx1 matrices.
//
// ## Glossary
//
//   - Size: number of elements, rows*cols.
//   - Flat index: position of an element once the value is linearized in column-major order,
//     which is the order used for Jacobians.
package shapes

import (
	"fmt"

	"github.com/gomlx/exceptions"
)

// Kind of value held by a shape.
type Kind int

//go:generate go tool enumer -type=Kind -trimprefix=Kind -output=gen_kind_enumer.go shape.go

const (
	KindInvalid Kind = iota
	KindScalar
	KindVector
	KindMatrix
)

// Shape of a value or of a node in the computation graph.
//
// The zero value is invalid, use ScalarShape, Vector or Matrix to create one.
type Shape struct {
	Kind Kind
	Rows int
	Cols int
}

// ScalarShape returns the shape of a scalar.
func ScalarShape() Shape {
	return Shape{Kind: KindScalar, Rows: 1, Cols: 1}
}

// Vector returns the shape of a column vector with the given number of rows.
// It panics if rows <= 0.
func Vector(rows int) Shape {
	if rows <= 0 {
		exceptions.Panicf("shapes.Vector(%d): cannot create a vector with dimension <= 0", rows)
	}
	return Shape{Kind: KindVector, Rows: rows, Cols: 1}
}

// Matrix returns the shape of a dense matrix. It panics if rows or cols are <= 0.
func Matrix(rows, cols int) Shape {
	if rows <= 0 || cols <= 0 {
		exceptions.Panicf("shapes.Matrix(%d, %d): cannot create a matrix with a dimension <= 0", rows, cols)
	}
	return Shape{Kind: KindMatrix, Rows: rows, Cols: cols}
}

// Invalid returns an invalid shape.
//
// Invalid().Ok() == false.
func Invalid() Shape {
	return Shape{}
}

// Ok returns whether this is a valid Shape.
func (s Shape) Ok() bool { return s.Kind != KindInvalid }

// IsScalar returns whether the shape represents a scalar.
func (s Shape) IsScalar() bool { return s.Kind == KindScalar }

// IsVector returns whether the shape represents a column vector.
func (s Shape) IsVector() bool { return s.Kind == KindVector }

// IsMatrix returns whether the shape represents a matrix.
func (s Shape) IsMatrix() bool { return s.Kind == KindMatrix }

// Size returns the number of elements, which is also the length of the flattened value.
func (s Shape) Size() int {
	if !s.Ok() {
		return 0
	}
	return s.Rows * s.Cols
}

// Dims returns rows and columns, in the same convention as gonum's mat.Matrix.Dims.
func (s Shape) Dims() (rows, cols int) { return s.Rows, s.Cols }

// Shape returns itself. It implements the HasShape interface.
func (s Shape) Shape() Shape { return s }

// Equal compares kind and dimensions.
func (s Shape) Equal(s2 Shape) bool {
	return s.Kind == s2.Kind && s.Rows == s2.Rows && s.Cols == s2.Cols
}

// String implements stringer, pretty-prints the shape.
func (s Shape) String() string {
	switch s.Kind {
	case KindScalar:
		return "(scalar)"
	case KindVector:
		return fmt.Sprintf("(vector)[%d]", s.Rows)
	case KindMatrix:
		return fmt.Sprintf("(matrix)[%d %d]", s.Rows, s.Cols)
	default:
		return "(invalid)"
	}
}

// FlatIndex returns the column-major position of element (row, col).
func (s Shape) FlatIndex(row, col int) int {
	return col*s.Rows + row
}

// Broadcast returns the shape resulting from an elementwise operation between s1 and s2.
//
// Shapes must be equal, or one of them must be a scalar, in which case it is broadcast to
// the other. It returns false if the shapes are not compatible.
func Broadcast(s1, s2 Shape) (Shape, bool) {
	switch {
	case !s1.Ok() || !s2.Ok():
		return Invalid(), false
	case s1.Equal(s2):
		return s1, true
	case s1.IsScalar():
		return s2, true
	case s2.IsScalar():
		return s1, true
	}
	return Invalid(), false
}
