// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package graph

import (
	"time"

	"github.com/gomlx/autodiff/types/values"
	"github.com/gomlx/exceptions"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"k8s.io/klog/v2"
)

// This file implements forward-mode automatic differentiation, using JVPs (Jacobian Vector Products).
//
// It mirrors rev_autodiff.go: the seed is assigned to a source node, with one row per element of
// the source, and tangents are pushed in topological order. The derivative of a node ends up with
// one row per element of the node and one column per column of the seed: with the default
// identity seed it is the Jacobian of the node with respect to the seeded source.
//
// Forward mode is cheaper than reverse mode when the seeded source is smaller than the target.

func init() {
	for nodeType, op := range unaryOps {
		ruleFor(nodeType).jvp = unaryJVP(op)
	}
	for nodeType, op := range binaryOps {
		ruleFor(nodeType).jvp = binaryJVP(op)
	}
	ruleFor(NodeTypeDot).jvp = dotJVP
	ruleFor(NodeTypeOuter).jvp = outerJVP
	ruleFor(NodeTypeMatMul).jvp = matMulJVP
	ruleFor(NodeTypeSum).jvp = sumJVP
	ruleFor(NodeTypeMean).jvp = meanJVP
	ruleFor(NodeTypeNorm).jvp = normJVP
	ruleFor(NodeTypeSquaredNorm).jvp = squaredNormJVP
}

// pushTangent runs the forward pass seeded at the node in position pos of the order.
// The seed must have one row per element of the node, and it is owned by the Function afterwards.
func (f *Function) pushTangent(pos int, seed *mat.Dense) {
	var start time.Time
	if klog.V(2).Enabled() {
		start = time.Now()
	}
	_, numCols := seed.Dims()
	f.resetDerivatives(modeForward, numCols)
	f.derivatives[pos] = seed
	for ii := pos + 1; ii < len(f.order); ii++ {
		node := f.order[ii]
		if node.nodeType.IsLeaf() || f.isSource[ii] {
			continue
		}
		f.forwardTangent(ii, numCols)
	}
	if klog.V(2).Enabled() {
		klog.Infof("forward pass from %s: %d nodes, seed with %d columns, elapsed %s",
			f.order[pos], len(f.order)-pos, numCols, time.Since(start))
	}
}

// forwardTangent computes the derivative of the node at position pos from its operands' derivatives.
// It is left empty (nil) if none of the operands has one.
func (f *Function) forwardTangent(pos, numCols int) {
	node := f.order[pos]
	operandDerivatives := make([]*mat.Dense, len(node.operands))
	var populated bool
	for jj, operand := range node.operands {
		if operand.IsConstant() {
			continue
		}
		if operandPos, found := f.positions[operand]; found && f.derivatives[operandPos] != nil {
			operandDerivatives[jj] = f.derivatives[operandPos]
			populated = true
		}
	}
	if !populated {
		return
	}
	rule := opCatalog[node.nodeType]
	if rule == nil || rule.jvp == nil {
		exceptions.Panicf("no JVP registered for %s", node.nodeType)
	}
	result := mat.NewDense(node.shape.Size(), numCols, nil)
	tangents := make([]*mat.Dense, len(node.operands))
	for col := range numCols {
		for jj, derivative := range operandDerivatives {
			tangents[jj] = nil
			if derivative != nil {
				rows, cols := node.operands[jj].shape.Dims()
				tangents[jj] = values.Unflatten(mat.Col(nil, col, derivative), rows, cols)
			}
		}
		result.SetCol(col, values.Flatten(rule.jvp(node, tangents)))
	}
	f.derivatives[pos] = result
}

func unaryJVP(op elementwiseUnary) JVP {
	return func(node *Node, tangents []*mat.Dense) *mat.Dense {
		if tangents[0] == nil {
			return mat.NewDense(node.shape.Rows, node.shape.Cols, nil)
		}
		x := rowMajor(node.operands[0].value.Raw())
		out := rowMajor(node.value.Raw())
		tangent := rowMajor(tangents[0])
		for ii, t := range tangent {
			if t == 0 {
				continue
			}
			tangent[ii] = t * op.derivative(x[ii], out[ii])
		}
		return newLike(node, tangent)
	}
}

// binaryJVP skips the partial derivatives of operands without tangent, and of zero tangent
// entries, so a NaN partial with respect to a constant doesn't leak.
func binaryJVP(op elementwiseBinary) JVP {
	return func(node *Node, tangents []*mat.Dense) *mat.Dense {
		rows, cols := node.shape.Dims()
		lhs := expandTo(node.operands[0].value.Raw(), rows, cols)
		rhs := expandTo(node.operands[1].value.Raw(), rows, cols)
		out := rowMajor(node.value.Raw())
		var lhsTangent, rhsTangent []float64
		if tangents[0] != nil {
			lhsTangent = expandTo(tangents[0], rows, cols)
		}
		if tangents[1] != nil {
			rhsTangent = expandTo(tangents[1], rows, cols)
		}
		result := make([]float64, len(out))
		for ii := range result {
			da, db := op.partials(lhs[ii], rhs[ii], out[ii])
			if lhsTangent != nil && lhsTangent[ii] != 0 {
				result[ii] += da * lhsTangent[ii]
			}
			if rhsTangent != nil && rhsTangent[ii] != 0 {
				result[ii] += db * rhsTangent[ii]
			}
		}
		return newLike(node, result)
	}
}

// productJVP returns lhsTangent*rhs + lhs*rhsTangent for a bilinear product, where mul computes
// the product into dst. Missing tangents are skipped.
func productJVP(node *Node, tangents []*mat.Dense, mul func(dst *mat.Dense, a, b mat.Matrix)) *mat.Dense {
	lhs, rhs := node.operands[0].value.Raw(), node.operands[1].value.Raw()
	result := mat.NewDense(node.shape.Rows, node.shape.Cols, nil)
	if tangents[0] != nil {
		var term mat.Dense
		mul(&term, tangents[0], rhs)
		result.Add(result, &term)
	}
	if tangents[1] != nil {
		var term mat.Dense
		mul(&term, lhs, tangents[1])
		result.Add(result, &term)
	}
	return result
}

func dotJVP(node *Node, tangents []*mat.Dense) *mat.Dense {
	return productJVP(node, tangents, func(dst *mat.Dense, a, b mat.Matrix) {
		dst.Mul(a.T(), b)
	})
}

func outerJVP(node *Node, tangents []*mat.Dense) *mat.Dense {
	return productJVP(node, tangents, func(dst *mat.Dense, a, b mat.Matrix) {
		dst.Mul(a, b.T())
	})
}

func matMulJVP(node *Node, tangents []*mat.Dense) *mat.Dense {
	return productJVP(node, tangents, func(dst *mat.Dense, a, b mat.Matrix) {
		dst.Mul(a, b)
	})
}

func sumJVP(_ *Node, tangents []*mat.Dense) *mat.Dense {
	if tangents[0] == nil {
		return scalarDense(0)
	}
	return scalarDense(floats.Sum(rowMajor(tangents[0])))
}

func meanJVP(node *Node, tangents []*mat.Dense) *mat.Dense {
	if tangents[0] == nil {
		return scalarDense(0)
	}
	return scalarDense(floats.Sum(rowMajor(tangents[0])) / float64(node.operands[0].shape.Size()))
}

func normJVP(node *Node, tangents []*mat.Dense) *mat.Dense {
	norm := node.value.At(0, 0)
	if tangents[0] == nil || norm == 0 {
		return scalarDense(0)
	}
	return scalarDense(floats.Dot(rowMajor(node.operands[0].value.Raw()), rowMajor(tangents[0])) / norm)
}

func squaredNormJVP(node *Node, tangents []*mat.Dense) *mat.Dense {
	if tangents[0] == nil {
		return scalarDense(0)
	}
	return scalarDense(2 * floats.Dot(rowMajor(node.operands[0].value.Raw()), rowMajor(tangents[0])))
}
