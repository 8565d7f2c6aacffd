// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package shapes

import (
	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
)

// UncheckedDim can be used in Check or AssertDims for a dimension that doesn't matter.
const UncheckedDim = int(-1)

// HasShape is an interface for objects that have an associated Shape.
// `values.Value`, `graph.Node` and Shape itself implement the interface.
type HasShape interface {
	Shape() Shape
}

// Check that the shape has the given kind and dimensions. A value of -1 in rows or cols
// means it can take any value and is not checked.
func (s Shape) Check(kind Kind, rows, cols int) error {
	if s.Kind != kind {
		return errors.Errorf("shape %s has incompatible kind %s (wanted %s)", s, s.Kind, kind)
	}
	if rows != UncheckedDim && s.Rows != rows {
		return errors.Errorf("shape %s has %d rows, wanted %d", s, s.Rows, rows)
	}
	if cols != UncheckedDim && s.Cols != cols {
		return errors.Errorf("shape %s has %d cols, wanted %d", s, s.Cols, cols)
	}
	return nil
}

// AssertDims checks that the shape has the given kind and dimensions, and panics otherwise.
func AssertDims(shaped HasShape, kind Kind, rows, cols int) {
	if err := shaped.Shape().Check(kind, rows, cols); err != nil {
		panic(errors.WithMessagef(err, "shapes.AssertDims(%s, %d, %d)", kind, rows, cols))
	}
}

// AssertKind checks that the shape has one of the given kinds, and panics otherwise.
func AssertKind(shaped HasShape, kinds ...Kind) {
	shape := shaped.Shape()
	for _, kind := range kinds {
		if shape.Kind == kind {
			return
		}
	}
	exceptions.Panicf("shapes.AssertKind(%s): wanted one of %v", shape, kinds)
}
