// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package graph

import (
	"github.com/gomlx/autodiff/types/shapes"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ForwardFn computes the value of node from the values of its operands.
// It returns an error wrapping ErrDomain if the inputs are outside the operation's domain.
type ForwardFn func(node *Node, inputs []*mat.Dense) (*mat.Dense, error)

// VJP computes the Vector Jacobian Product of node: given v, the derivative of some scalar with
// respect to node (with node's dimensions), it returns its derivative with respect to each
// operand (with the operand's dimensions, already reduced if the operand was broadcast).
// A nil entry means a zero contribution.
type VJP func(node *Node, v *mat.Dense) []*mat.Dense

// JVP computes the Jacobian Vector Product of node: given the tangents of the operands (with the
// operands' dimensions, nil meaning zero), it returns the tangent of node.
type JVP func(node *Node, tangents []*mat.Dense) *mat.Dense

// opRule is the catalog entry of one NodeType.
type opRule struct {
	forward ForwardFn
	vjp     VJP
	jvp     JVP
}

// opCatalog holds the rules of every operation. Each rule is registered by an init() function
// of the file that implements it.
var opCatalog = make(map[NodeType]*opRule)

func ruleFor(nodeType NodeType) *opRule {
	rule, found := opCatalog[nodeType]
	if !found {
		rule = &opRule{}
		opCatalog[nodeType] = rule
	}
	return rule
}

// Helpers shared by the rules: everything is computed on row-major []float64 slices.

// rowMajor returns a copy of the elements of m in row-major order.
func rowMajor(m mat.Matrix) []float64 {
	rows, cols := m.Dims()
	data := make([]float64, 0, rows*cols)
	for row := range rows {
		for col := range cols {
			data = append(data, m.At(row, col))
		}
	}
	return data
}

// expandTo returns the row-major elements of m broadcast to rows x cols.
// m must either have the given dimensions or be 1x1.
func expandTo(m mat.Matrix, rows, cols int) []float64 {
	mRows, mCols := m.Dims()
	if mRows == rows && mCols == cols {
		return rowMajor(m)
	}
	data := make([]float64, rows*cols)
	floats.AddConst(m.At(0, 0), data)
	return data
}

// reduceTo converts a row-major gradient with the node's dimensions to the operand's shape,
// summing it if the operand was a broadcast scalar.
func reduceTo(grad []float64, operand shapes.Shape) *mat.Dense {
	if len(grad) == operand.Size() {
		return mat.NewDense(operand.Rows, operand.Cols, grad)
	}
	return mat.NewDense(1, 1, []float64{floats.Sum(grad)})
}

// newLike creates a matrix with the dimensions of the node from row-major data.
func newLike(node *Node, data []float64) *mat.Dense {
	return mat.NewDense(node.shape.Rows, node.shape.Cols, data)
}

// scalarDense returns a 1x1 matrix.
func scalarDense(x float64) *mat.Dense {
	return mat.NewDense(1, 1, []float64{x})
}
