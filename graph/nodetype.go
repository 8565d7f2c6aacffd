// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package graph

// NodeType identifies the operation performed by a Node. Together with the operands it fully
// defines the node: the set of node types is closed, and each one (other than the leaves
// NodeTypeVariable and NodeTypeConstant) has an entry in the operations catalog.
type NodeType int

//go:generate go tool enumer -type=NodeType -trimprefix=NodeType -output=gen_nodetype_enumer.go nodetype.go

const (
	NodeTypeInvalid NodeType = iota
	NodeTypeVariable
	NodeTypeConstant

	NodeTypeAdd
	NodeTypeSub
	NodeTypeMul
	NodeTypeDiv
	NodeTypePow
	NodeTypeNeg

	NodeTypeSin
	NodeTypeCos
	NodeTypeExp
	NodeTypeLog
	NodeTypeSqrt
	NodeTypeSquare
	NodeTypeMinimum
	NodeTypeMaximum

	NodeTypeDot
	NodeTypeOuter
	NodeTypeMatMul

	NodeTypeSum
	NodeTypeMean
	NodeTypeNorm
	NodeTypeSquaredNorm
)

// IsLeaf returns whether the node type has no operands.
func (t NodeType) IsLeaf() bool {
	return t == NodeTypeVariable || t == NodeTypeConstant
}
