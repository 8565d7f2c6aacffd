// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// autodiff_demo builds a few small expressions, evaluates them and prints their Jacobians
// computed in reverse mode (and optionally in forward mode).
//
// Usage:
//
//	autodiff_demo -examples=scalar,array -forward -v=2
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/janpfeifer/must"
	"github.com/muesli/termenv"
	"k8s.io/klog/v2"
)

var (
	flagExamples = flag.String("examples", "all",
		fmt.Sprintf("Comma-separated list of examples to run, or \"all\". Available: %s.", strings.Join(exampleNames(), ", ")))
	flagForward = flag.Bool("forward", false, "Also compute the Jacobians in forward mode, and compare them "+
		"to the reverse mode ones.")
	flagSeed    = flag.Bool("seed", true, "Use the example's custom seed, if it defines one, instead of the identity.")
	flagNoColor = flag.Bool("no_color", false, "Disable colors and styles in the output.")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	if *flagNoColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	selected, err := selectExamples(*flagExamples)
	if err != nil {
		klog.Errorf("%v. See 'autodiff_demo -help'.", err)
		os.Exit(1)
	}
	for _, ex := range selected {
		r := must.M1(runExample(ex, *flagSeed, *flagForward))
		fmt.Println(r.Render())
	}
}
