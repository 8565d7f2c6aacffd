// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package graph implements an automatic differentiation engine over scalar, vector and matrix
// expressions.
//
// The main elements in the package are:
//
//   - Node: a Variable (created with Var), a constant, or the result of an operation (Add, Mul,
//     MatMul, Sin, Sum, ...). Each node has a fixed shape, known when it is created, and always
//     holds a value: operations are evaluated as soon as they are built ("eager" evaluation).
//
//   - Function: captures the subgraph from a set of sources to a target node, and computes
//     derivatives (Jacobians) in reverse mode (PullGradient) or forward mode (PushTangent).
//
// Example:
//
//	x := graph.MustVar(0.5)
//	y := graph.MustVar(-2.5)
//	z := graph.Mul(x, y)
//	f := must.M1(graph.NewFunction(z, x, y))
//	must.M(f.PullGradient())
//	dx := must.M1(f.D(x)) // 1x1 matrix holding -2.5
//
// ## Lazy re-evaluation
//
// Changing a Variable with Node.Set doesn't recompute anything: nodes depending on it become
// dirty (see Node.IsDirty), and are re-evaluated, only once, the next time their value is
// requested with Node.Value, Evaluate or Function.Evaluate.
//
// ## Shapes and Jacobians
//
// Shapes are scalars, vectors (created from 1-D literals) or matrices (created from 2-D
// literals, even if they have a single row or column). Elementwise operations require operands
// of the same shape, or one of them must be a scalar, in which case it is broadcast.
//
// Jacobians are *mat.Dense (from gonum), with one row per element of the differentiated node and
// one column per element of the node it is differentiated with respect to. Matrices are flattened
// in column-major order.
//
// ## Error Handling
//
// Building an operation with incompatible shapes is a programming error: the constructors panic
// with an error wrapping ErrShapeMismatch (use exceptions.TryCatch to recover it). Evaluation
// errors, like a division by zero, are returned (wrapping ErrDomain) by the calls that evaluate
// nodes, and leave the failing node dirty so it can be retried after fixing its inputs.
package graph
