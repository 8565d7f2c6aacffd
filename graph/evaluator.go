// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package graph

import (
	"github.com/gomlx/autodiff/types/values"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Evaluate recomputes node, and any of its transitive operands, if it is dirty.
// It is a no-op for clean nodes.
//
// Operands are evaluated depth-first in registration order, and an operation is only
// recomputed if the version of one of its operands changed since its last computation.
// So after a Variable.Set, every node that depends on it is recomputed exactly once.
//
// If an operation fails (an error wrapping ErrDomain), it keeps its previous value and stays
// dirty, and so do the nodes depending on it: fixing the input and calling Evaluate again retries.
func Evaluate(node *Node) error {
	node.AssertValid()
	return evaluate(node, currentEpoch())
}

func evaluate(node *Node, epoch uint64) error {
	if node.nodeType.IsLeaf() || node.validatedAt == epoch {
		return nil
	}
	for _, operand := range node.operands {
		if err := evaluate(operand, epoch); err != nil {
			return err
		}
	}
	if node.isStale() {
		if err := node.forward(); err != nil {
			return err
		}
	}
	node.validatedAt = epoch
	return nil
}

// forward recomputes the node's value from its operands' current values.
// The new value is only committed on success.
func (n *Node) forward() error {
	rule, found := opCatalog[n.nodeType]
	if !found || rule.forward == nil {
		return errors.Errorf("no forward rule registered for %s", n.nodeType)
	}
	inputs := make([]*mat.Dense, len(n.operands))
	versions := make([]uint64, len(n.operands))
	for ii, operand := range n.operands {
		inputs[ii] = operand.value.Raw()
		versions[ii] = operand.version
	}
	output, err := rule.forward(n, inputs)
	if err != nil {
		return errors.WithMessagef(err, "evaluating %s", n)
	}
	value, err := values.FromDense(n.shape, output)
	if err != nil {
		return errors.WithMessagef(err, "%s forward rule returned an invalid value", n.nodeType)
	}
	n.value = value
	n.version = lastVersion.Add(1)
	n.operandVersions = versions
	return nil
}
