// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package graph

import (
	"time"

	"github.com/gomlx/autodiff/types/shapes"
	"github.com/gomlx/autodiff/types/values"
	"github.com/gomlx/exceptions"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"k8s.io/klog/v2"
)

// This file implements reverse-mode automatic differentiation, using VJPs (Vector Jacobian Products).
//
// Conventions:
//
//   - seed: the derivative assigned to the node where the pass starts, a matrix with one column
//     per element of the node (flattened in column-major order). The default seed is the identity,
//     in which case the derivative of every node ends up being the Jacobian of the seeded node
//     with respect to it.
//   - derivative (or adjoint): the accumulated Jacobian of the seeded node with respect to a node,
//     with the same number of rows as the seed and one column per element of the node.
//     A node consumed by several operations accumulates (sums) the contributions of all of them.
//   - VJP: applied to each row of a node's derivative (reshaped to the node's dimensions), it
//     returns the corresponding row of the contribution to each operand's derivative.

func init() {
	for nodeType, op := range unaryOps {
		ruleFor(nodeType).vjp = unaryVJP(op)
	}
	for nodeType, op := range binaryOps {
		ruleFor(nodeType).vjp = binaryVJP(op)
	}
	ruleFor(NodeTypeDot).vjp = dotVJP
	ruleFor(NodeTypeOuter).vjp = outerVJP
	ruleFor(NodeTypeMatMul).vjp = matMulVJP
	ruleFor(NodeTypeSum).vjp = sumVJP
	ruleFor(NodeTypeMean).vjp = meanVJP
	ruleFor(NodeTypeNorm).vjp = normVJP
	ruleFor(NodeTypeSquaredNorm).vjp = squaredNormVJP
}

// pullGradient runs the reverse pass seeded at the node in position pos of the order.
// The seed must have one column per element of the node, and it is owned by the Function afterwards.
func (f *Function) pullGradient(pos int, seed *mat.Dense) {
	var start time.Time
	if klog.V(2).Enabled() {
		start = time.Now()
	}
	numRows, _ := seed.Dims()
	f.resetDerivatives(modeReverse, numRows)
	f.derivatives[pos] = seed
	for ii := pos; ii >= 0; ii-- {
		node := f.order[ii]
		if f.derivatives[ii] == nil || node.nodeType.IsLeaf() || f.isSource[ii] {
			continue
		}
		f.backward(ii)
	}
	if klog.V(2).Enabled() {
		klog.Infof("reverse pass from %s: %d nodes, seed with %d rows, elapsed %s",
			f.order[pos], pos+1, numRows, time.Since(start))
	}
}

// backward accumulates the contributions of the node at position pos to its operands' derivatives.
func (f *Function) backward(pos int) {
	node := f.order[pos]
	rule := opCatalog[node.nodeType]
	if rule == nil || rule.vjp == nil {
		exceptions.Panicf("no VJP registered for %s", node.nodeType)
	}
	jacobian := f.derivatives[pos]
	numRows, _ := jacobian.Dims()
	rows, cols := node.shape.Dims()
	for row := range numRows {
		v := values.Unflatten(mat.Row(nil, row, jacobian), rows, cols)
		grads := rule.vjp(node, v)
		for jj, operand := range node.operands {
			if grads[jj] == nil || operand.IsConstant() {
				continue
			}
			operandPos, found := f.positions[operand]
			if !found {
				continue
			}
			if f.derivatives[operandPos] == nil {
				f.derivatives[operandPos] = mat.NewDense(numRows, operand.shape.Size(), nil)
			}
			floats.Add(f.derivatives[operandPos].RawRowView(row), values.Flatten(grads[jj]))
		}
	}
}

// unaryVJP skips zero seed entries: an infinite local derivative must not produce NaN for
// elements with no path to it.
func unaryVJP(op elementwiseUnary) VJP {
	return func(node *Node, v *mat.Dense) []*mat.Dense {
		x := rowMajor(node.operands[0].value.Raw())
		out := rowMajor(node.value.Raw())
		grad := rowMajor(v)
		for ii, g := range grad {
			if g == 0 {
				continue
			}
			grad[ii] = g * op.derivative(x[ii], out[ii])
		}
		return []*mat.Dense{newLike(node, grad)}
	}
}

// binaryVJP takes care of broadcasting: a scalar operand gets the sum of its contributions.
func binaryVJP(op elementwiseBinary) VJP {
	return func(node *Node, v *mat.Dense) []*mat.Dense {
		rows, cols := node.shape.Dims()
		lhsNode, rhsNode := node.operands[0], node.operands[1]
		lhs := expandTo(lhsNode.value.Raw(), rows, cols)
		rhs := expandTo(rhsNode.value.Raw(), rows, cols)
		out := rowMajor(node.value.Raw())
		seed := rowMajor(v)
		lhsGrad := make([]float64, len(seed))
		rhsGrad := make([]float64, len(seed))
		for ii, s := range seed {
			if s == 0 {
				continue
			}
			da, db := op.partials(lhs[ii], rhs[ii], out[ii])
			lhsGrad[ii] = s * da
			rhsGrad[ii] = s * db
		}
		return []*mat.Dense{reduceTo(lhsGrad, lhsNode.shape), reduceTo(rhsGrad, rhsNode.shape)}
	}
}

func dotVJP(node *Node, v *mat.Dense) []*mat.Dense {
	s := v.At(0, 0)
	var gradU, gradV mat.Dense
	gradU.Scale(s, node.operands[1].value.Raw())
	gradV.Scale(s, node.operands[0].value.Raw())
	return []*mat.Dense{&gradU, &gradV}
}

func outerVJP(node *Node, v *mat.Dense) []*mat.Dense {
	u, w := node.operands[0].value.Raw(), node.operands[1].value.Raw()
	var gradU, gradW mat.Dense
	gradU.Mul(v, w)
	gradW.Mul(v.T(), u)
	return []*mat.Dense{&gradU, &gradW}
}

func matMulVJP(node *Node, v *mat.Dense) []*mat.Dense {
	lhs, rhs := node.operands[0].value.Raw(), node.operands[1].value.Raw()
	var gradLhs, gradRhs mat.Dense
	gradLhs.Mul(v, rhs.T())
	gradRhs.Mul(lhs.T(), v)
	return []*mat.Dense{&gradLhs, &gradRhs}
}

// filled returns a matrix with the dimensions of shape filled with x.
func filled(shape shapes.Shape, x float64) *mat.Dense {
	data := make([]float64, shape.Size())
	floats.AddConst(x, data)
	return mat.NewDense(shape.Rows, shape.Cols, data)
}

func sumVJP(node *Node, v *mat.Dense) []*mat.Dense {
	return []*mat.Dense{filled(node.operands[0].shape, v.At(0, 0))}
}

func meanVJP(node *Node, v *mat.Dense) []*mat.Dense {
	shape := node.operands[0].shape
	return []*mat.Dense{filled(shape, v.At(0, 0)/float64(shape.Size()))}
}

// normVJP back-propagates 0 at the zero vector, where the norm is not differentiable.
func normVJP(node *Node, v *mat.Dense) []*mat.Dense {
	x := node.operands[0]
	norm := node.value.At(0, 0)
	if norm == 0 {
		return []*mat.Dense{filled(x.shape, 0)}
	}
	var grad mat.Dense
	grad.Scale(v.At(0, 0)/norm, x.value.Raw())
	return []*mat.Dense{&grad}
}

func squaredNormVJP(node *Node, v *mat.Dense) []*mat.Dense {
	var grad mat.Dense
	grad.Scale(2*v.At(0, 0), node.operands[0].value.Raw())
	return []*mat.Dense{&grad}
}
