// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/gomlx/autodiff/graph"
	"github.com/gomlx/autodiff/types/values"
	"gonum.org/v1/gonum/mat"
)

var (
	headerRowStyle = lipgloss.NewStyle().Reverse(true).
			Padding(0, 2, 0, 2).Align(lipgloss.Center)
	oddRowStyle = lipgloss.NewStyle().Faint(false).
			PaddingLeft(1).PaddingRight(1)
	evenRowStyle = lipgloss.NewStyle().Faint(true).
			PaddingLeft(1).PaddingRight(1)
	cellStyle = lipgloss.NewStyle().Align(lipgloss.Right).
			PaddingLeft(1).PaddingRight(1)

	titleStyle = lipgloss.NewStyle().Bold(true).Padding(1, 4, 0, 4)
	noteStyle  = lipgloss.NewStyle().Faint(true).PaddingLeft(4)
)

func newPlainTable(withHeader bool) *lgtable.Table {
	return lgtable.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("99"))).
		StyleFunc(func(row, col int) (s lipgloss.Style) {
			if withHeader && row < 0 {
				s = headerRowStyle
				return
			}
			switch {
			case row%2 == 0:
				// Even row style.
				s = oddRowStyle
			default:
				// Odd row style
				s = evenRowStyle
			}
			if col == 0 {
				s = s.Align(lipgloss.Right)
			} else {
				s = s.Align(lipgloss.Left)
			}
			return
		})
}

// newMatrixTable renders a matrix, one table row per matrix row.
func newMatrixTable(m mat.Matrix) *lgtable.Table {
	rows, cols := m.Dims()
	table := lgtable.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#705090"))).
		StyleFunc(func(_, _ int) lipgloss.Style { return cellStyle })
	for row := range rows {
		cells := make([]string, cols)
		for col := range cols {
			cells[col] = formatFloat(m.At(row, col))
		}
		table.Row(cells...)
	}
	return table
}

func formatFloat(x float64) string {
	return humanize.FtoaWithDigits(x, 6)
}

type jacobianEntry struct {
	source   *graph.Node
	jacobian *mat.Dense
}

// report holds the results of running an example.
type report struct {
	example  example
	target   *graph.Node
	value    values.Value
	numNodes int

	// seeded is true if the reverse pass used the example's seed instead of the identity.
	seeded bool

	reverse, forward               []jacobianEntry
	reverseElapsed, forwardElapsed time.Duration
}

// Render the report as a string, with one table for the summary and one per Jacobian.
func (r *report) Render() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(fmt.Sprintf("Example %q", r.example.name)))
	sb.WriteString("\n")
	sb.WriteString(noteStyle.Render(r.example.description))
	sb.WriteString("\n")

	summary := newPlainTable(false)
	summary.Row("target", r.target.String())
	summary.Row("# nodes", humanize.Comma(int64(r.numNodes)))
	summary.Row("# sources", humanize.Comma(int64(len(r.reverse))))
	summary.Row("reverse pass", r.reverseElapsed.String())
	if r.forward != nil {
		summary.Row("forward pass", r.forwardElapsed.String())
		summary.Row("modes agree", fmt.Sprintf("%v", r.modesAgree()))
	}
	sb.WriteString(summary.Render())
	sb.WriteString("\n")

	sb.WriteString(titleStyle.Render("value " + r.value.Shape().String()))
	sb.WriteString("\n")
	sb.WriteString(newMatrixTable(r.value.Raw()).Render())
	sb.WriteString("\n")
	for _, entry := range r.reverse {
		rows, cols := entry.jacobian.Dims()
		sb.WriteString(titleStyle.Render(fmt.Sprintf("d(#%d)/d(#%d) [%d x %d]", r.target.Id(), entry.source.Id(), rows, cols)))
		sb.WriteString("\n")
		sb.WriteString(newMatrixTable(entry.jacobian).Render())
		sb.WriteString("\n")
	}
	return sb.String()
}

// modesAgree returns whether forward and reverse mode Jacobians match. It is only meaningful
// if the reverse pass used the identity seed: otherwise it compares only the dimensions.
func (r *report) modesAgree() bool {
	if len(r.forward) != len(r.reverse) {
		return false
	}
	for ii := range r.forward {
		fwdRows, fwdCols := r.forward[ii].jacobian.Dims()
		revRows, revCols := r.reverse[ii].jacobian.Dims()
		if r.seeded {
			if fwdCols != revCols {
				return false
			}
			continue
		}
		if fwdRows != revRows || fwdCols != revCols ||
			!mat.EqualApprox(r.forward[ii].jacobian, r.reverse[ii].jacobian, 1e-9) {
			return false
		}
	}
	return true
}
