// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"slices"
	"strings"
	"time"

	"github.com/gomlx/autodiff/graph"
	"github.com/gomlx/autodiff/types/shapes"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"k8s.io/klog/v2"
)

// example builds an expression: its target and the sources to differentiate with respect to.
type example struct {
	name        string
	description string
	build       func() (target *graph.Node, sources []*graph.Node, err error)

	// seed for the reverse pass, nil for the identity.
	seed func(target *graph.Node) *mat.Dense
}

var examples = []example{
	{
		name:        "scalar",
		description: "z = x * y, with x = 1.5 and y = -2",
		build: func() (*graph.Node, []*graph.Node, error) {
			x, err := graph.Var(1.5)
			if err != nil {
				return nil, nil, err
			}
			y, err := graph.Var(-2.0)
			if err != nil {
				return nil, nil, err
			}
			return graph.Mul(x, y), []*graph.Node{x, y}, nil
		},
	},
	{
		name:        "array",
		description: "z = x * y (elementwise), with x = [1 2 3] and y = [4 5 6], seeded with ones",
		build: func() (*graph.Node, []*graph.Node, error) {
			x, err := graph.Var([]float64{1, 2, 3})
			if err != nil {
				return nil, nil, err
			}
			y, err := graph.Var([]float64{4, 5, 6})
			if err != nil {
				return nil, nil, err
			}
			return graph.Mul(x, y), []*graph.Node{x, y}, nil
		},
		seed: func(target *graph.Node) *mat.Dense {
			ones := make([]float64, target.Shape().Size())
			for ii := range ones {
				ones[ii] = 1
			}
			return mat.NewDense(1, len(ones), ones)
		},
	},
	{
		name:        "matmul",
		description: "z = A @ B, with A 2x2 and B 2x3: Jacobians flattened in column-major order",
		build: func() (*graph.Node, []*graph.Node, error) {
			a, err := graph.Var([][]float64{{1, 2}, {3, 4}})
			if err != nil {
				return nil, nil, err
			}
			b, err := graph.Var([][]float64{{5, 6, 7}, {8, 9, 10}})
			if err != nil {
				return nil, nil, err
			}
			return graph.MatMul(a, b), []*graph.Node{a, b}, nil
		},
	},
	{
		name:        "least_squares",
		description: "loss = mean((A @ x - b)^2)",
		build: func() (*graph.Node, []*graph.Node, error) {
			a, err := graph.Var([][]float64{{1, 2}, {3, 4}, {5, 6}})
			if err != nil {
				return nil, nil, err
			}
			x, err := graph.Var([]float64{0.5, -0.5})
			if err != nil {
				return nil, nil, err
			}
			residual := graph.Sub(graph.MatMul(a, x), []float64{1, 0, -1})
			residual.AssertDims(shapes.KindVector, 3, 1)
			loss := graph.Mean(graph.Square(residual))
			loss.AssertScalar()
			return loss, []*graph.Node{a, x}, nil
		},
	},
}

func exampleNames() []string {
	names := make([]string, 0, len(examples))
	for _, ex := range examples {
		names = append(names, ex.name)
	}
	return names
}

// selectExamples parses the comma-separated list of example names.
func selectExamples(list string) ([]example, error) {
	if list == "" || list == "all" {
		return examples, nil
	}
	var selected []example
	for _, name := range strings.Split(list, ",") {
		name = strings.TrimSpace(name)
		idx := slices.IndexFunc(examples, func(ex example) bool { return ex.name == name })
		if idx < 0 {
			return nil, errors.Errorf("unknown example %q", name)
		}
		selected = append(selected, examples[idx])
	}
	return selected, nil
}

// runExample builds and differentiates the example.
func runExample(ex example, useSeed, forward bool) (*report, error) {
	target, sources, err := ex.build()
	if err != nil {
		return nil, errors.WithMessagef(err, "building example %q", ex.name)
	}
	r := &report{example: ex, target: target}
	if r.value, err = target.Value(); err != nil {
		return nil, err
	}

	start := time.Now()
	fn, err := graph.NewFunction(target, sources...)
	if err != nil {
		return nil, err
	}
	r.numNodes = len(fn.Order())
	var seed []any
	if useSeed && ex.seed != nil {
		seed = append(seed, ex.seed(target))
		r.seeded = true
	}
	if err = fn.PullGradientAt(target, seed...); err != nil {
		return nil, errors.WithMessagef(err, "reverse pass of example %q", ex.name)
	}
	for _, source := range sources {
		jacobian, err := fn.D(source)
		if err != nil {
			return nil, err
		}
		r.reverse = append(r.reverse, jacobianEntry{source: source, jacobian: jacobian})
	}
	r.reverseElapsed = time.Since(start)

	if forward {
		start = time.Now()
		for _, source := range sources {
			if err = fn.PushTangentAt(source); err != nil {
				return nil, errors.WithMessagef(err, "forward pass of example %q", ex.name)
			}
			jacobian, err := fn.D(target)
			if err != nil {
				return nil, err
			}
			r.forward = append(r.forward, jacobianEntry{source: source, jacobian: jacobian})
		}
		r.forwardElapsed = time.Since(start)
	}
	klog.V(1).Infof("example %q: %d nodes, reverse pass in %s", ex.name, r.numNodes, r.reverseElapsed)
	return r, nil
}
