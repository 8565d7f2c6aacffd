// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package graph

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// This file implements the forward rules (the evaluation) of every operation.

func init() {
	for nodeType, op := range unaryOps {
		ruleFor(nodeType).forward = unaryForward(op)
	}
	for nodeType, op := range binaryOps {
		ruleFor(nodeType).forward = binaryForward(op)
	}
	ruleFor(NodeTypeDot).forward = dotForward
	ruleFor(NodeTypeOuter).forward = outerForward
	ruleFor(NodeTypeMatMul).forward = matMulForward
	ruleFor(NodeTypeSum).forward = sumForward
	ruleFor(NodeTypeMean).forward = meanForward
	ruleFor(NodeTypeNorm).forward = normForward
	ruleFor(NodeTypeSquaredNorm).forward = squaredNormForward
}

// elementwiseUnary describes an elementwise function of one operand.
type elementwiseUnary struct {
	fn func(x float64) float64

	// derivative of fn at x, where out = fn(x).
	derivative func(x, out float64) float64

	// inDomain, if not nil, reports whether x is a valid argument. domain describes it for errors.
	inDomain func(x float64) bool
	domain   string
}

var unaryOps = map[NodeType]elementwiseUnary{
	NodeTypeNeg: {
		fn:         func(x float64) float64 { return -x },
		derivative: func(_, _ float64) float64 { return -1 },
	},
	NodeTypeSin: {
		fn:         math.Sin,
		derivative: func(x, _ float64) float64 { return math.Cos(x) },
	},
	NodeTypeCos: {
		fn:         math.Cos,
		derivative: func(x, _ float64) float64 { return -math.Sin(x) },
	},
	NodeTypeExp: {
		fn:         math.Exp,
		derivative: func(_, out float64) float64 { return out },
	},
	NodeTypeLog: {
		fn:         math.Log,
		derivative: func(x, _ float64) float64 { return 1 / x },
		inDomain:   func(x float64) bool { return x > 0 },
		domain:     "argument must be positive",
	},
	NodeTypeSqrt: {
		fn:         math.Sqrt,
		derivative: func(_, out float64) float64 { return 0.5 / out },
		inDomain:   func(x float64) bool { return x > 0 },
		domain:     "argument must be positive",
	},
	NodeTypeSquare: {
		fn:         func(x float64) float64 { return x * x },
		derivative: func(x, _ float64) float64 { return 2 * x },
	},
	NodeTypeMinimum: {
		fn: func(x float64) float64 { return min(x, 0) },
		derivative: func(x, _ float64) float64 {
			if x < 0 {
				return 1
			}
			return 0
		},
	},
	NodeTypeMaximum: {
		fn: func(x float64) float64 { return max(x, 0) },
		derivative: func(x, _ float64) float64 {
			if x >= 0 {
				return 1
			}
			return 0
		},
	},
}

// elementwiseBinary describes an elementwise function of two operands.
type elementwiseBinary struct {
	fn func(a, b float64) float64

	// partials returns the partial derivatives of fn with respect to a and b, where out = fn(a, b).
	partials func(a, b, out float64) (da, db float64)

	// inDomain, if not nil, reports whether (a, b) are valid arguments, given out = fn(a, b).
	inDomain func(a, b, out float64) bool
	domain   string
}

var binaryOps = map[NodeType]elementwiseBinary{
	NodeTypeAdd: {
		fn:       func(a, b float64) float64 { return a + b },
		partials: func(_, _, _ float64) (float64, float64) { return 1, 1 },
	},
	NodeTypeSub: {
		fn:       func(a, b float64) float64 { return a - b },
		partials: func(_, _, _ float64) (float64, float64) { return 1, -1 },
	},
	NodeTypeMul: {
		fn:       func(a, b float64) float64 { return a * b },
		partials: func(a, b, _ float64) (float64, float64) { return b, a },
	},
	NodeTypeDiv: {
		fn:       func(a, b float64) float64 { return a / b },
		partials: func(a, b, _ float64) (float64, float64) { return 1 / b, -a / (b * b) },
		inDomain: func(_, b, _ float64) bool { return b != 0 },
		domain:   "denominator must be non-zero",
	},
	NodeTypePow: {
		fn:       math.Pow,
		partials: powPartials,
		inDomain: func(a, b, out float64) bool {
			if !isFinite(a) || !isFinite(b) {
				return true
			}
			da, _ := powPartials(a, b, out)
			return isFinite(out) && isFinite(da)
		},
		domain: "result and its derivative must be finite",
	},
}

// powPartials: d/da = p*a^(p-1) and d/dp = a^p*ln(a). The latter is taken as 0 at a == 0
// (the limit for positive powers) and is NaN for negative bases.
func powPartials(a, p, out float64) (da, dp float64) {
	if p == 0 {
		da = 0
	} else {
		da = p * math.Pow(a, p-1)
	}
	if a != 0 {
		dp = out * math.Log(a)
	}
	return
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

func unaryForward(op elementwiseUnary) ForwardFn {
	return func(node *Node, inputs []*mat.Dense) (*mat.Dense, error) {
		data := rowMajor(inputs[0])
		for ii, x := range data {
			if op.inDomain != nil && !op.inDomain(x) {
				return nil, errors.Wrapf(ErrDomain, "%s: %s, got %g at element %d", node.nodeType, op.domain, x, ii)
			}
			data[ii] = op.fn(x)
		}
		return newLike(node, data), nil
	}
}

func binaryForward(op elementwiseBinary) ForwardFn {
	return func(node *Node, inputs []*mat.Dense) (*mat.Dense, error) {
		rows, cols := node.shape.Dims()
		lhs, rhs := expandTo(inputs[0], rows, cols), expandTo(inputs[1], rows, cols)
		out := make([]float64, len(lhs))
		for ii := range out {
			out[ii] = op.fn(lhs[ii], rhs[ii])
			if op.inDomain != nil && !op.inDomain(lhs[ii], rhs[ii], out[ii]) {
				return nil, errors.Wrapf(ErrDomain, "%s: %s, got (%g, %g) at element %d",
					node.nodeType, op.domain, lhs[ii], rhs[ii], ii)
			}
		}
		return newLike(node, out), nil
	}
}

func dotForward(_ *Node, inputs []*mat.Dense) (*mat.Dense, error) {
	return scalarDense(floats.Dot(rowMajor(inputs[0]), rowMajor(inputs[1]))), nil
}

func outerForward(_ *Node, inputs []*mat.Dense) (*mat.Dense, error) {
	var out mat.Dense
	out.Mul(inputs[0], inputs[1].T())
	return &out, nil
}

func matMulForward(_ *Node, inputs []*mat.Dense) (*mat.Dense, error) {
	var out mat.Dense
	out.Mul(inputs[0], inputs[1])
	return &out, nil
}

func sumForward(_ *Node, inputs []*mat.Dense) (*mat.Dense, error) {
	return scalarDense(floats.Sum(rowMajor(inputs[0]))), nil
}

func meanForward(_ *Node, inputs []*mat.Dense) (*mat.Dense, error) {
	data := rowMajor(inputs[0])
	return scalarDense(floats.Sum(data) / float64(len(data))), nil
}

func normForward(_ *Node, inputs []*mat.Dense) (*mat.Dense, error) {
	return scalarDense(floats.Norm(rowMajor(inputs[0]), 2)), nil
}

func squaredNormForward(_ *Node, inputs []*mat.Dense) (*mat.Dense, error) {
	data := rowMajor(inputs[0])
	return scalarDense(floats.Dot(data, data)), nil
}
