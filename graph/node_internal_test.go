// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package graph

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// forwardCount returns how many node values were computed since the given version.
func forwardCount(since uint64) int {
	return int(lastVersion.Load() - since)
}

func TestRecomputedExactlyOnce(t *testing.T) {
	x := MustVar([]float64{1, 2})
	a := Sin(x)
	b := Add(a, a)
	c := Mul(b, a)
	d := Add(c, b)

	require.NoError(t, x.Set([]float64{3, 4}))
	before := lastVersion.Load()
	require.NoError(t, Evaluate(d))
	require.Equal(t, 4, forwardCount(before), "a, b, c and d must be recomputed once each")

	before = lastVersion.Load()
	require.NoError(t, Evaluate(d))
	require.Equal(t, 0, forwardCount(before), "clean nodes must not be recomputed")
}

func TestOnlyAffectedNodesRecomputed(t *testing.T) {
	x := MustVar(1.0)
	y := MustVar(2.0)
	a := Exp(x)
	b := Exp(y)
	c := Add(a, b)
	bVersion := b.version

	require.NoError(t, x.Set(2.0))
	require.True(t, a.IsDirty())
	require.False(t, b.IsDirty())
	before := lastVersion.Load()
	require.NoError(t, Evaluate(c))
	require.Equal(t, 2, forwardCount(before), "only a and c depend on x")
	require.Equal(t, bVersion, b.version)
}

func TestCycleDetected(t *testing.T) {
	x := MustVar(1.0)
	a := Neg(x)
	b := Neg(a)
	// Nodes can't be built with cycles through the API, so we force one.
	a.operands[0] = b
	_, err := NewFunction(b)
	require.ErrorIs(t, err, ErrCycleDetected)
}

func TestCatalogIsComplete(t *testing.T) {
	for _, nodeType := range NodeTypeValues() {
		if nodeType == NodeTypeInvalid || nodeType.IsLeaf() {
			require.NotContainsf(t, opCatalog, nodeType, "%s must not have a catalog entry", nodeType)
			continue
		}
		rule, found := opCatalog[nodeType]
		require.Truef(t, found, "%s has no catalog entry", nodeType)
		require.NotNilf(t, rule.forward, "%s has no forward rule", nodeType)
		require.NotNilf(t, rule.vjp, "%s has no VJP rule", nodeType)
		require.NotNilf(t, rule.jvp, "%s has no JVP rule", nodeType)
	}
}

func TestFailedForwardKeepsValue(t *testing.T) {
	x := MustVar([]float64{1, 2})
	y := Log(x)
	oldValue := y.value
	oldVersion := y.version
	require.NoError(t, x.Set([]float64{1, -2}))
	require.ErrorIs(t, Evaluate(y), ErrDomain)
	require.True(t, y.value.Equal(oldValue))
	require.Equal(t, oldVersion, y.version)
	require.True(t, y.IsDirty())
}
