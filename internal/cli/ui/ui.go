// Package ui provides terminal rendering helpers for the ArcLang CLI:
// colored status lines, diagnostic lists, and simple tables.
package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/Mbaroudi/arclang-sub001/internal/compiler/incremental"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow)
	detailColor  = color.New(color.FgCyan)
)

// Success prints a green check line.
func Success(w io.Writer, format string, args ...interface{}) {
	successColor.Fprintf(w, "✓ "+format+"\n", args...)
}

// Failure prints a red cross line.
func Failure(w io.Writer, format string, args ...interface{}) {
	errorColor.Fprintf(w, "✗ "+format+"\n", args...)
}

// Detail prints an indented cyan detail line.
func Detail(w io.Writer, format string, args ...interface{}) {
	detailColor.Fprintf(w, "  "+format+"\n", args...)
}

// RenderValidation prints a cache validation report: errors first, then
// warnings, then the verdict.
func RenderValidation(w io.Writer, result incremental.ValidationResult) {
	for _, issue := range result.Issues {
		errorColor.Fprintf(w, "error: %s\n", issue.Message)
	}
	for _, warning := range result.Warnings {
		warningColor.Fprintf(w, "warning: %s\n", warning.Message)
	}

	if result.Valid {
		Success(w, "cache is consistent (%d warning(s))", len(result.Warnings))
	} else {
		Failure(w, "cache has %d issue(s), %d warning(s)", len(result.Issues), len(result.Warnings))
	}
}

// Table renders tabular data with padded columns and a bold header row.
type Table struct {
	writer  io.Writer
	headers []string
	rows    [][]string
}

// NewTable creates a table with the given headers.
func NewTable(w io.Writer, headers ...string) *Table {
	return &Table{
		writer:  w,
		headers: headers,
	}
}

// AddRow appends one row.
func (t *Table) AddRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

// Render writes the table.
func (t *Table) Render() {
	widths := make([]int, len(t.headers))
	for i, header := range t.headers {
		widths[i] = len(header)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	headerColor := color.New(color.Bold)
	parts := make([]string, len(t.headers))
	for i, header := range t.headers {
		parts[i] = pad(header, widths[i])
	}
	headerColor.Fprintln(t.writer, strings.Join(parts, "  "))

	for _, row := range t.rows {
		parts := make([]string, len(row))
		for i, cell := range row {
			width := 0
			if i < len(widths) {
				width = widths[i]
			}
			parts[i] = pad(cell, width)
		}
		fmt.Fprintln(t.writer, strings.Join(parts, "  "))
	}
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
