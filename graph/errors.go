// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package graph

import "github.com/pkg/errors"

// Errors returned (wrapped, with context and a stack trace) by the graph package.
// Check for them with errors.Is.
var (
	// ErrShapeMismatch is raised when operand, output, seed or assignment shapes are incompatible.
	// Operation constructors panic with an error wrapping it, the other calls return it.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrDomain is returned by evaluation when an operation gets an argument outside its domain,
	// like a zero denominator or the logarithm of a non-positive number.
	// The failing node keeps its previous value and stays dirty, so it can be retried.
	ErrDomain = errors.New("domain error")

	// ErrCycleDetected is returned by NewFunction if the graph is not a DAG.
	ErrCycleDetected = errors.New("cycle detected")

	// ErrNoDerivative is returned when querying a derivative before any differentiation pass,
	// or for a node that is not part of the Function.
	ErrNoDerivative = errors.New("no derivative")

	// ErrNotVariable is returned by Node.Set on nodes that are not variables.
	ErrNotVariable = errors.New("node is not a variable")

	// ErrNotInFunction is returned when seeding a differentiation pass at a node that is not
	// part of the Function.
	ErrNotInFunction = errors.New("node is not part of the function")
)
