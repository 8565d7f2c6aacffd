// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package graph

import (
	"github.com/gomlx/autodiff/types/shapes"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// This file holds the operation constructors. They validate shapes (panicking with an error
// wrapping ErrShapeMismatch, see exceptions.TryCatch) and evaluate the new node right away.
//
// Operands can be *Node or any literal accepted by values.FromAny: literals are converted to
// constants, which don't receive derivatives.

// toNode converts an operand to a node.
func toNode(operand any) *Node {
	return Const(operand)
}

// newOpNode creates the node of an operation and evaluates it eagerly.
//
// A failing evaluation (a domain error) is not reported here: the node stays dirty and
// the error is returned by the next Value or Evaluate.
func newOpNode(nodeType NodeType, shape shapes.Shape, operands ...*Node) *Node {
	node := newNode(nodeType, shape, operands...)
	if err := evaluate(node, currentEpoch()); err != nil {
		klog.V(1).Infof("eager evaluation of %s failed, node left dirty: %v", node, err)
	}
	return node
}

func shapeMismatchf(format string, args ...any) {
	panic(errors.Wrapf(ErrShapeMismatch, format, args...))
}

// elementwiseBinaryOp builds an elementwise operation, broadcasting scalars.
func elementwiseBinaryOp(nodeType NodeType, lhs, rhs any) *Node {
	lhsNode, rhsNode := toNode(lhs), toNode(rhs)
	shape, ok := shapes.Broadcast(lhsNode.shape, rhsNode.shape)
	if !ok {
		shapeMismatchf("%s(%s, %s): operands must have the same shape, or one of them must be a scalar",
			nodeType, lhsNode.shape, rhsNode.shape)
	}
	return newOpNode(nodeType, shape, lhsNode, rhsNode)
}

func elementwiseUnaryOp(nodeType NodeType, x any) *Node {
	xNode := toNode(x)
	return newOpNode(nodeType, xNode.shape, xNode)
}

func reduceOp(nodeType NodeType, x any) *Node {
	xNode := toNode(x)
	return newOpNode(nodeType, shapes.ScalarShape(), xNode)
}

// Add returns the elementwise sum `lhs + rhs`. Scalars are broadcast.
func Add(lhs, rhs any) *Node { return elementwiseBinaryOp(NodeTypeAdd, lhs, rhs) }

// Sub returns the elementwise difference `lhs - rhs`. Scalars are broadcast.
func Sub(lhs, rhs any) *Node { return elementwiseBinaryOp(NodeTypeSub, lhs, rhs) }

// Mul returns the elementwise (Hadamard) product `lhs * rhs`. Scalars are broadcast.
//
// See MatMul and Dot for the matrix and inner products.
func Mul(lhs, rhs any) *Node { return elementwiseBinaryOp(NodeTypeMul, lhs, rhs) }

// Div returns the elementwise division `lhs / rhs`. Scalars are broadcast.
//
// Evaluation fails with ErrDomain if any element of rhs is zero.
func Div(lhs, rhs any) *Node { return elementwiseBinaryOp(NodeTypeDiv, lhs, rhs) }

// Pow returns `base^exponent` elementwise. Scalars are broadcast, so `Pow(x, 3.0)` cubes every element of x.
//
// Evaluation fails with ErrDomain if the result is not finite for finite inputs, e.g. the
// square root of a negative base, or a negative power of zero.
func Pow(base, exponent any) *Node { return elementwiseBinaryOp(NodeTypePow, base, exponent) }

// Neg returns `-x`.
func Neg(x any) *Node { return elementwiseUnaryOp(NodeTypeNeg, x) }

// Sin returns the elementwise sine.
func Sin(x any) *Node { return elementwiseUnaryOp(NodeTypeSin, x) }

// Cos returns the elementwise cosine.
func Cos(x any) *Node { return elementwiseUnaryOp(NodeTypeCos, x) }

// Exp returns the elementwise `e^x`.
func Exp(x any) *Node { return elementwiseUnaryOp(NodeTypeExp, x) }

// Log returns the elementwise natural logarithm. Evaluation fails with ErrDomain for non-positive elements.
func Log(x any) *Node { return elementwiseUnaryOp(NodeTypeLog, x) }

// Sqrt returns the elementwise square root. Evaluation fails with ErrDomain for non-positive
// elements, since the derivative is not defined at 0.
func Sqrt(x any) *Node { return elementwiseUnaryOp(NodeTypeSqrt, x) }

// Square returns `x^2` elementwise.
func Square(x any) *Node { return elementwiseUnaryOp(NodeTypeSquare, x) }

// Minimum returns the elementwise minimum of x and zero.
//
// At x == 0 the gradient is not passed: it is 0.
func Minimum(x any) *Node { return elementwiseUnaryOp(NodeTypeMinimum, x) }

// Maximum returns the elementwise maximum of x and zero, also known as ReLU.
//
// At x == 0 the gradient is passed: it is 1.
func Maximum(x any) *Node { return elementwiseUnaryOp(NodeTypeMaximum, x) }

// Dot returns the scalar inner product of two vectors of the same length.
func Dot(u, v any) *Node {
	uNode, vNode := toNode(u), toNode(v)
	if !uNode.shape.IsVector() || !vNode.shape.Equal(uNode.shape) {
		shapeMismatchf("Dot(%s, %s): operands must be vectors of the same length", uNode.shape, vNode.shape)
	}
	return newOpNode(NodeTypeDot, shapes.ScalarShape(), uNode, vNode)
}

// Outer returns the outer product `u * v^T` of two vectors: a matrix with len(u) rows and len(v) columns.
func Outer(u, v any) *Node {
	uNode, vNode := toNode(u), toNode(v)
	if !uNode.shape.IsVector() || !vNode.shape.IsVector() {
		shapeMismatchf("Outer(%s, %s): operands must be vectors", uNode.shape, vNode.shape)
	}
	return newOpNode(NodeTypeOuter, shapes.Matrix(uNode.shape.Rows, vNode.shape.Rows), uNode, vNode)
}

// MatMul returns the matrix product `lhs * rhs`.
//
// lhs must be a matrix. If rhs is a matrix the result is a matrix, if it is a vector the result
// is a vector. The number of columns of lhs must match the number of rows of rhs.
func MatMul(lhs, rhs any) *Node {
	lhsNode, rhsNode := toNode(lhs), toNode(rhs)
	lhsShape, rhsShape := lhsNode.shape, rhsNode.shape
	if !lhsShape.IsMatrix() || !(rhsShape.IsMatrix() || rhsShape.IsVector()) || lhsShape.Cols != rhsShape.Rows {
		shapeMismatchf("MatMul(%s, %s): requires a matrix times a matrix or vector with matching inner dimensions",
			lhsShape, rhsShape)
	}
	var shape shapes.Shape
	if rhsShape.IsVector() {
		shape = shapes.Vector(lhsShape.Rows)
	} else {
		shape = shapes.Matrix(lhsShape.Rows, rhsShape.Cols)
	}
	return newOpNode(NodeTypeMatMul, shape, lhsNode, rhsNode)
}

// Sum returns the scalar sum of all elements of x.
func Sum(x any) *Node { return reduceOp(NodeTypeSum, x) }

// Mean returns the scalar mean of all elements of x.
func Mean(x any) *Node { return reduceOp(NodeTypeMean, x) }

// Norm returns the L2 norm of x (the Frobenius norm for matrices).
//
// Its gradient at the zero vector is defined as 0.
func Norm(x any) *Node { return reduceOp(NodeTypeNorm, x) }

// SquaredNorm returns the squared L2 norm of x, that is the sum of the squares of its elements.
func SquaredNorm(x any) *Node { return reduceOp(NodeTypeSquaredNorm, x) }
