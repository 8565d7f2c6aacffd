// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package graph

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/gomlx/autodiff/types/shapes"
	"github.com/gomlx/autodiff/types/values"
	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
)

// NodeId is a unique id of a Node, increasing in construction order.
type NodeId int64

var (
	// lastNodeId is used to assign a new NodeId.
	lastNodeId atomic.Int64

	// lastVersion stamps every change of a node's value.
	lastVersion atomic.Uint64

	// mutationEpoch is bumped on every Variable.Set. A node validated in the current epoch is clean.
	mutationEpoch atomic.Uint64
)

// currentEpoch returns the current mutation epoch. It is never 0, which marks a node never validated.
func currentEpoch() uint64 {
	return mutationEpoch.Load() + 1
}

// Node is a unit of the computation graph: either a leaf (a Variable or a Constant) or the
// result of an operation over its operands.
//
// Nodes always hold a materialized value: it may be stale if an upstream Variable was changed
// (see IsDirty), in which case Value re-evaluates it on demand.
//
// Nodes are not safe for concurrent use. Independent graphs can be used from different goroutines.
type Node struct {
	id       NodeId
	nodeType NodeType
	shape    shapes.Shape

	// operands are the edges of the computation graph, in registration order. They never change.
	operands []*Node

	value values.Value

	// version is a unique stamp of the current value.
	version uint64

	// operandVersions holds the versions of the operands used to compute value. It is nil
	// until the first successful forward computation.
	operandVersions []uint64

	// validatedAt is the epoch at which the node was last known to be clean, 0 if never.
	validatedAt uint64
}

func newNode(nodeType NodeType, shape shapes.Shape, operands ...*Node) *Node {
	return &Node{
		id:       NodeId(lastNodeId.Add(1)),
		nodeType: nodeType,
		shape:    shape,
		operands: operands,
		value:    values.Zeros(shape),
	}
}

func newLeaf(nodeType NodeType, value values.Value) *Node {
	node := newNode(nodeType, value.Shape())
	node.value = value
	node.version = lastVersion.Add(1)
	return node
}

// Var creates a Variable holding the given literal, see values.FromAny for the accepted types.
//
// 1-D literals become vectors, 2-D literals become matrices (even if 1xN or Nx1).
func Var(value any) (*Node, error) {
	v, err := values.FromAny(value)
	if err != nil {
		return nil, errors.WithMessage(err, "graph.Var")
	}
	return newLeaf(NodeTypeVariable, v), nil
}

// MustVar is like Var, but panics on error.
func MustVar(value any) *Node {
	node, err := Var(value)
	if err != nil {
		panic(err)
	}
	return node
}

// Const creates a constant node holding the given literal. Constants don't receive derivatives.
//
// Operations accept literals directly, so there is rarely a need to call Const: `Add(x, 1.0)`
// is the same as `Add(x, Const(1.0))`. It panics if the literal is invalid.
func Const(value any) *Node {
	if node, ok := value.(*Node); ok {
		node.AssertValid()
		return node
	}
	v, err := values.FromAny(value)
	if err != nil {
		panic(errors.WithMessage(err, "graph.Const"))
	}
	return newLeaf(NodeTypeConstant, v)
}

// Id is the unique id of this node.
func (n *Node) Id() NodeId { return n.id }

// Type identify the operation performed by the node.
func (n *Node) Type() NodeType {
	if n == nil {
		return NodeTypeInvalid
	}
	return n.nodeType
}

// Shape of the Node's value. It implements shapes.HasShape.
func (n *Node) Shape() shapes.Shape {
	if n == nil {
		return shapes.Invalid()
	}
	return n.shape
}

// IsScalar returns whether the node's shape is a scalar.
func (n *Node) IsScalar() bool { return n.shape.IsScalar() }

// IsVariable returns whether the node is a Variable, the only kind of node that can be Set.
func (n *Node) IsVariable() bool { return n.nodeType == NodeTypeVariable }

// IsConstant returns whether the node is a constant (a literal operand).
func (n *Node) IsConstant() bool { return n.nodeType == NodeTypeConstant }

// Operands are the nodes this node reads, in registration order.
func (n *Node) Operands() []*Node { return n.operands }

// AssertValid panics if `n` is nil or in an invalid state.
func (n *Node) AssertValid() {
	if n == nil {
		exceptions.Panicf("Node is nil")
	}
	if n.nodeType == NodeTypeInvalid || !n.shape.Ok() {
		exceptions.Panicf("Node in an invalid state")
	}
}

// Value evaluates the node if it is dirty, and returns its value.
//
// It returns an error wrapping ErrDomain if some operation in the way fails to evaluate.
func (n *Node) Value() (values.Value, error) {
	if err := Evaluate(n); err != nil {
		return values.Value{}, err
	}
	return n.value, nil
}

// CachedValue returns the current value without evaluating it: it may be stale if the node is dirty.
func (n *Node) CachedValue() values.Value { return n.value }

// Set assigns a new value to a Variable. The shape of the new value must match the node's shape.
//
// Dependent nodes are not recomputed: they become dirty and are re-evaluated when read.
func (n *Node) Set(value any) error {
	n.AssertValid()
	if !n.IsVariable() {
		return errors.Wrapf(ErrNotVariable, "cannot Set node %s", n)
	}
	v, err := values.FromAny(value)
	if err != nil {
		return errors.WithMessagef(err, "Set(%s)", n)
	}
	if !v.Shape().Equal(n.shape) {
		return errors.Wrapf(ErrShapeMismatch, "Set(%s): new value has shape %s", n, v.Shape())
	}
	n.value = v
	n.version = lastVersion.Add(1)
	mutationEpoch.Add(1)
	return nil
}

// IsDirty returns whether the node's cached value may be stale, that is, whether it would be
// recomputed by Evaluate. It doesn't change any state.
func (n *Node) IsDirty() bool {
	return n.isDirty(currentEpoch(), make(map[*Node]bool))
}

func (n *Node) isDirty(epoch uint64, memo map[*Node]bool) bool {
	if n.nodeType.IsLeaf() || n.validatedAt == epoch {
		return false
	}
	if dirty, found := memo[n]; found {
		return dirty
	}
	dirty := n.isStale()
	for _, operand := range n.operands {
		if dirty {
			break
		}
		dirty = operand.isDirty(epoch, memo)
	}
	memo[n] = dirty
	return dirty
}

// isStale returns whether any operand changed since the last forward computation.
func (n *Node) isStale() bool {
	if n.operandVersions == nil {
		return true
	}
	for ii, operand := range n.operands {
		if operand.version != n.operandVersions[ii] {
			return true
		}
	}
	return false
}

// String implements the `fmt.Stringer` interface.
func (n *Node) String() string {
	if n == nil {
		return "Node(nil)"
	}
	if n.nodeType.IsLeaf() {
		return fmt.Sprintf("#%d %s -> %s", n.id, n.nodeType, n.shape)
	}
	parts := make([]string, 0, len(n.operands))
	for _, operand := range n.operands {
		parts = append(parts, fmt.Sprintf("#%d", operand.id))
	}
	return fmt.Sprintf("#%d %s(%s) -> %s", n.id, n.nodeType, strings.Join(parts, ", "), n.shape)
}
