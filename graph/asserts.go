// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package graph

import (
	"github.com/gomlx/autodiff/types/shapes"
	"github.com/pkg/errors"
)

// This file implements various asserts (checks) that can be done on the Node.
// They are derived from the asserts in the shapes package, and panic with an error wrapping
// ErrShapeMismatch, like the operation constructors.

// AssertDims checks whether the node has the given kind and dimensions.
// A value of shapes.UncheckedDim (-1) in rows or cols means it can take any value and is not checked.
//
// This often serves as documentation for the code, allowing the reader to corroborate
// the expected shape of a node.
//
// Example:
//
//	hidden := MatMul(weights, x)
//	hidden.AssertDims(shapes.KindVector, numHidden, 1)
func (n *Node) AssertDims(kind shapes.Kind, rows, cols int) {
	n.AssertValid()
	if err := n.shape.Check(kind, rows, cols); err != nil {
		panic(errors.Wrapf(ErrShapeMismatch, "AssertDims(%s, %d, %d) on %s: %v", kind, rows, cols, n, err))
	}
}

// AssertScalar checks whether the node is a scalar.
//
// It can be used in a similar fashion as AssertDims.
func (n *Node) AssertScalar() {
	n.AssertValid()
	if !n.shape.IsScalar() {
		panic(errors.Wrapf(ErrShapeMismatch, "AssertScalar() on %s", n))
	}
}
