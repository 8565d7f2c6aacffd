// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package graph

import (
	"fmt"
	"strings"
	"time"

	"github.com/gomlx/autodiff/types/values"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"k8s.io/klog/v2"
)

// derivativeMode is the kind of the last differentiation pass of a Function.
type derivativeMode int

const (
	modeNone derivativeMode = iota
	modeReverse
	modeForward
)

// Function captures the subgraph needed to compute a target node from a set of source nodes,
// and differentiates it.
//
// The topological order of the subgraph is computed once, in NewFunction, and it is frozen:
// a new Function is needed for a different target.
//
// After a differentiation pass (PullGradient, PullGradientAt, PushTangent or PushTangentAt)
// the derivatives of the nodes are available with Derivative. Each pass clears the results
// of the previous one.
type Function struct {
	target  *Node
	sources []*Node

	// order is the topological order: operands come before the nodes that use them.
	order     []*Node
	positions map[*Node]int
	isSource  []bool

	// Results of the last pass, indexed by position in the order. A nil entry means
	// the node is not on any path from the seeded node.
	mode        derivativeMode
	seedDim     int
	derivatives []*mat.Dense
}

// NewFunction creates a Function for target.
//
// If sources are given, the search for the subgraph stops at them: they are treated as
// independent inputs even if they are not Variables, and sources not reachable from target
// are included anyway (their derivatives will be zero). If no sources are given, all the
// Variables reachable from target are used, in topological order.
//
// It returns an error wrapping ErrCycleDetected if the graph is not a DAG.
func NewFunction(target *Node, sources ...*Node) (*Function, error) {
	target.AssertValid()
	if klog.V(1).Enabled() {
		start := time.Now()
		defer func() {
			klog.Infof("NewFunction for %s: %d sources, elapsed %s", target, len(sources), time.Since(start))
		}()
	}

	f := &Function{target: target, positions: make(map[*Node]int)}
	sourcesSet := make(map[*Node]bool, len(sources))
	for _, source := range sources {
		source.AssertValid()
		if sourcesSet[source] {
			continue
		}
		sourcesSet[source] = true
		f.sources = append(f.sources, source)
	}

	reached, err := topologicalOrder(target, sourcesSet)
	if err != nil {
		return nil, errors.WithMessagef(err, "NewFunction(%s)", target)
	}
	if len(sources) > 0 {
		// Sources not reachable from target come first.
		reachedSet := make(map[*Node]bool, len(reached))
		for _, node := range reached {
			reachedSet[node] = true
		}
		for _, source := range f.sources {
			if !reachedSet[source] {
				f.order = append(f.order, source)
			}
		}
	}
	f.order = append(f.order, reached...)
	f.isSource = make([]bool, len(f.order))
	for ii, node := range f.order {
		f.positions[node] = ii
		if len(sources) > 0 {
			f.isSource[ii] = sourcesSet[node]
		} else if node.IsVariable() {
			f.isSource[ii] = true
			f.sources = append(f.sources, node)
		}
	}
	return f, nil
}

// topologicalOrder returns the nodes target depends on (target included), in depth-first
// post-order visiting operands in registration order. The search doesn't go past the
// nodes in stopAt.
func topologicalOrder(target *Node, stopAt map[*Node]bool) ([]*Node, error) {
	const (
		visiting = 1
		done     = 2
	)
	state := make(map[*Node]int)
	var order []*Node
	var visit func(node *Node) error
	visit = func(node *Node) error {
		switch state[node] {
		case done:
			return nil
		case visiting:
			return errors.Wrapf(ErrCycleDetected, "node %s depends on itself", node)
		}
		state[node] = visiting
		if !stopAt[node] {
			for _, operand := range node.operands {
				if err := visit(operand); err != nil {
					return err
				}
			}
		}
		state[node] = done
		order = append(order, node)
		return nil
	}
	if err := visit(target); err != nil {
		return nil, err
	}
	return order, nil
}

// Target of the Function.
func (f *Function) Target() *Node { return f.target }

// Sources of the Function, either the ones given to NewFunction or the inferred Variables.
func (f *Function) Sources() []*Node { return f.sources }

// Order returns the nodes of the Function in topological order. It must not be modified.
func (f *Function) Order() []*Node { return f.order }

// Evaluate recomputes every dirty node of the Function. See the package function Evaluate.
func (f *Function) Evaluate() error {
	var start time.Time
	if klog.V(2).Enabled() {
		start = time.Now()
	}
	epoch := currentEpoch()
	for _, node := range f.order {
		if err := evaluate(node, epoch); err != nil {
			return err
		}
	}
	if klog.V(2).Enabled() {
		klog.Infof("Function.Evaluate of %d nodes: elapsed %s", len(f.order), time.Since(start))
	}
	return nil
}

// PullGradient runs the reverse pass seeded at the target with the identity: afterwards
// Derivative(source) is the Jacobian of the target with respect to source.
func (f *Function) PullGradient() error {
	return f.PullGradientAt(f.target)
}

// PullGradientAt evaluates the Function and runs a reverse pass seeded at node.
//
// The optional seed is the derivative of node, by default the identity. It can be either a
// *mat.Dense with one column per element of node (flattened in column-major order), or a
// literal with the same shape as node, taken as a single row.
//
// It returns an error wrapping ErrNotInFunction if node is not part of the Function,
// ErrShapeMismatch for an invalid seed, or the evaluation error.
func (f *Function) PullGradientAt(node *Node, seed ...any) error {
	pos, found := f.positions[node]
	if !found {
		return errors.Wrapf(ErrNotInFunction, "PullGradientAt(%s)", node)
	}
	seedMatrix, err := parseSeed(node, true, seed)
	if err != nil {
		return errors.WithMessagef(err, "PullGradientAt(%s)", node)
	}
	if err = f.Evaluate(); err != nil {
		return err
	}
	f.pullGradient(pos, seedMatrix)
	return nil
}

// PushTangent runs the forward pass seeded at the only source of the Function with the identity:
// afterwards Derivative(node) is the Jacobian of node with respect to the source.
func (f *Function) PushTangent() error {
	if len(f.sources) != 1 {
		return errors.Errorf("PushTangent requires a Function with exactly one source, got %d: use PushTangentAt",
			len(f.sources))
	}
	return f.PushTangentAt(f.sources[0])
}

// PushTangentAt evaluates the Function and runs a forward pass seeded at source.
//
// The optional seed is the tangent of source, by default the identity. It can be either a
// *mat.Dense with one row per element of source (flattened in column-major order), or a
// literal with the same shape as source, taken as a single column (a directional derivative).
func (f *Function) PushTangentAt(source *Node, seed ...any) error {
	pos, found := f.positions[source]
	if !found {
		return errors.Wrapf(ErrNotInFunction, "PushTangentAt(%s)", source)
	}
	seedMatrix, err := parseSeed(source, false, seed)
	if err != nil {
		return errors.WithMessagef(err, "PushTangentAt(%s)", source)
	}
	if err = f.Evaluate(); err != nil {
		return err
	}
	f.pushTangent(pos, seedMatrix)
	return nil
}

// parseSeed converts the optional seed of a pass at node to a Jacobian seed, laid out as
// rows (reverse mode) or as columns (forward mode).
func parseSeed(node *Node, asRows bool, seed []any) (*mat.Dense, error) {
	size := node.shape.Size()
	switch len(seed) {
	case 0:
		return values.Identity(size), nil
	case 1:
	default:
		return nil, errors.Errorf("at most one seed can be given, got %d", len(seed))
	}
	if jacobian, ok := seed[0].(*mat.Dense); ok {
		if jacobian == nil {
			return nil, errors.Wrap(ErrShapeMismatch, "nil seed matrix")
		}
		rows, cols := jacobian.Dims()
		if (asRows && cols != size) || (!asRows && rows != size) {
			return nil, errors.Wrapf(ErrShapeMismatch, "seed matrix of dimensions %dx%d incompatible with node of %d elements",
				rows, cols, size)
		}
		return mat.DenseCopyOf(jacobian), nil
	}
	value, err := values.FromAny(seed[0])
	if err != nil {
		return nil, err
	}
	if !value.Shape().Equal(node.shape) {
		return nil, errors.Wrapf(ErrShapeMismatch, "seed of shape %s for node of shape %s", value.Shape(), node.shape)
	}
	if asRows {
		return mat.NewDense(1, size, value.Flat()), nil
	}
	return mat.NewDense(size, 1, value.Flat()), nil
}

// resetDerivatives discards the results of the previous pass.
func (f *Function) resetDerivatives(mode derivativeMode, seedDim int) {
	f.mode = mode
	f.seedDim = seedDim
	f.derivatives = make([]*mat.Dense, len(f.order))
}

// Derivative returns a copy of the derivative of node computed by the last pass.
//
// After a reverse pass it has one row per row of the seed and one column per element of node.
// After a forward pass it has one row per element of node and one column per column of the seed.
// Nodes not on any path from the seeded node get zeros.
//
// It returns an error wrapping ErrNoDerivative if no pass was run yet, or if node is not
// part of the Function.
func (f *Function) Derivative(node *Node) (*mat.Dense, error) {
	if f.mode == modeNone {
		return nil, errors.Wrapf(ErrNoDerivative, "Derivative(%s) requested before any differentiation pass", node)
	}
	pos, found := f.positions[node]
	if !found {
		return nil, errors.Wrapf(ErrNoDerivative, "Derivative(%s): node is not part of the function", node)
	}
	if derivative := f.derivatives[pos]; derivative != nil {
		return mat.DenseCopyOf(derivative), nil
	}
	if f.mode == modeReverse {
		return mat.NewDense(f.seedDim, node.shape.Size(), nil), nil
	}
	return mat.NewDense(node.shape.Size(), f.seedDim, nil), nil
}

// D is an alias to Derivative.
func (f *Function) D(node *Node) (*mat.Dense, error) {
	return f.Derivative(node)
}

// String implements fmt.Stringer, listing the nodes in topological order.
func (f *Function) String() string {
	var sb strings.Builder
	_, _ = fmt.Fprintf(&sb, "Function(target=#%d, %d sources, %d nodes):\n", f.target.id, len(f.sources), len(f.order))
	for ii, node := range f.order {
		_, _ = fmt.Fprintf(&sb, "  [%d] %s", ii, node)
		if f.isSource[ii] {
			sb.WriteString(" (source)")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
