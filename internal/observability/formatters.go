// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/form-autofill/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 8
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stderr; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// PrintPageFields outputs the page title and the fields found on it.
func (p *Printer) PrintPageFields(page *types.PageContext) {
	if page == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Title:  %s\n", page.Title))
	if page.FormTitle != "" {
		sb.WriteString(fmt.Sprintf("Form:   %s\n", page.FormTitle))
	}
	sb.WriteString(fmt.Sprintf("Fields: %d\n", len(page.Fields)))

	if len(page.Fields) > 0 {
		sb.WriteString("\n")
		count := min(len(page.Fields), maxItemsToShow)
		for i := 0; i < count; i++ {
			f := page.Fields[i]
			sb.WriteString(fmt.Sprintf("  • %-8s %s", f.Kind, f.Selector))
			if f.Label != "" {
				sb.WriteString(fmt.Sprintf(" %q", f.Label))
			}
			if f.Required {
				sb.WriteString(" *")
			}
			sb.WriteString("\n")
		}
		if len(page.Fields) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(page.Fields)-maxItemsToShow))
		}
	}

	p.printBox("EXTRACTED FIELDS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintFillOutcome outputs the filled fields followed by a tally of skipped ones by status.
func (p *Printer) PrintFillOutcome(outcome types.FillOutcome, enriched bool) {
	var sb strings.Builder
	source := "stored profile"
	if enriched {
		source = "AI-completed profile"
	}
	sb.WriteString(fmt.Sprintf("Filled %d, skipped %d (%s)\n", outcome.Filled, outcome.Skipped, source))

	shown := 0
	skipped := map[types.FieldStatus]int{}
	var order []types.FieldStatus
	for _, f := range outcome.Fields {
		if f.Status != types.StatusFilled {
			if skipped[f.Status] == 0 {
				order = append(order, f.Status)
			}
			skipped[f.Status]++
			continue
		}
		if shown == 0 {
			sb.WriteString("\n")
		}
		if shown < maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ✓ %s = %s\n", f.Attribute, f.Value))
		}
		shown++
	}
	if shown > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", shown-maxItemsToShow))
	}

	if len(order) > 0 {
		sb.WriteString("\n")
		for _, status := range order {
			sb.WriteString(fmt.Sprintf("  ✗ %s: %d\n", status, skipped[status]))
		}
	}

	p.printBox("FILL RESULT", strings.TrimSuffix(sb.String(), "\n"))
}
