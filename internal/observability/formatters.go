// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/maren/memoir-builder/internal/content"
	"github.com/maren/memoir-builder/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// truncate shortens s to at most max characters, cutting on rune boundaries
// so multi-byte text never produces invalid UTF-8.
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max-3]) + "..."
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, body string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(body, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintStorySummary outputs a human-readable summary of a raw story record.
func (p *Printer) PrintStorySummary(record *types.StoryRecord) {
	if record == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Title:      %s\n", record.Title))
	sb.WriteString(fmt.Sprintf("Typography: %s\n", record.Typography))
	sb.WriteString(fmt.Sprintf("Drafts:     %d\n", len(record.GeneratedDrafts)))
	sb.WriteString(fmt.Sprintf("Timeline:   %d events\n", len(record.Timeline)))
	sb.WriteString(fmt.Sprintf("Quotes:     %d\n", len(record.FavoriteQuotes)))
	if record.SelectedDraftText != "" {
		sb.WriteString("Narrative:  user-selected draft\n")
	} else if len(record.GeneratedDrafts) > 0 {
		sb.WriteString("Narrative:  latest generated draft\n")
	} else {
		sb.WriteString("Narrative:  structured answers\n")
	}
	if record.ShareSlug != "" {
		sb.WriteString(fmt.Sprintf("Shared as:  %s\n", record.ShareSlug))
	}

	p.printBox("STORY RECORD", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintContentModel outputs the compiled content model: block counts plus the
// first few block headings so the section ordering is visible at a glance.
func (p *Printer) PrintContentModel(model *content.Model) {
	if model == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Title: %s\n\n", model.Title))

	if len(model.QuoteBlock) > 0 {
		sb.WriteString(fmt.Sprintf("Quotes: %d\n", len(model.QuoteBlock)))
	}

	sb.WriteString(fmt.Sprintf("Narrative blocks: %d\n", len(model.NarrativeBlocks)))
	count := min(len(model.NarrativeBlocks), maxItemsToShow)
	for i := 0; i < count; i++ {
		block := model.NarrativeBlocks[i]
		label := block.Heading
		if label == "" {
			label = truncate(block.Text, 40)
		}
		sb.WriteString(fmt.Sprintf("  • %s\n", label))
	}
	if len(model.NarrativeBlocks) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(model.NarrativeBlocks)-maxItemsToShow))
	}

	sb.WriteString(fmt.Sprintf("\nTimeline blocks: %d\n", len(model.TimelineBlocks)))
	count = min(len(model.TimelineBlocks), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  • %s\n", truncate(model.TimelineBlocks[i].Heading, 50)))
	}
	if len(model.TimelineBlocks) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(model.TimelineBlocks)-maxItemsToShow))
	}

	p.printBox("COMPILED CONTENT MODEL", strings.TrimSuffix(sb.String(), "\n"))
}
