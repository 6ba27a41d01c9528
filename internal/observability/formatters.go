// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jonathan/news-digest/internal/ledger"
	"github.com/jonathan/news-digest/internal/llm"
	"github.com/jonathan/news-digest/internal/scrape"
	"github.com/jonathan/news-digest/internal/sections"
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

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-3]) + "..."
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
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

// PrintUsage outputs token usage and the estimated cost of a step.
func (p *Printer) PrintUsage(label, model string, usage llm.Usage) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Model:       %s\n", model))
	sb.WriteString(fmt.Sprintf("Prompt:      %d tokens\n", usage.PromptTokens))
	sb.WriteString(fmt.Sprintf("Completion:  %d tokens\n", usage.CompletionTokens))
	sb.WriteString(fmt.Sprintf("Total:       %d tokens\n", usage.Total()))
	sb.WriteString(fmt.Sprintf("Est. cost:   $%.4f", llm.EstimateCost(usage)))

	p.printBox(strings.ToUpper(label)+" USAGE", sb.String())
}

// PrintDigestPreview outputs the section outline of a digest with the first
// bullets of each section.
func (p *Printer) PrintDigestPreview(lang, markdown string) {
	secs := sections.Parse(markdown)
	if len(secs) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d sections, %d bullets\n", len(secs), sections.BulletCount(secs)))

	for i, sec := range secs {
		sb.WriteString(fmt.Sprintf("\n%s (%d)\n", sec.Name, len(sec.Bullets)))
		count := min(len(sec.Bullets), 2)
		for j := 0; j < count; j++ {
			sb.WriteString(fmt.Sprintf("  %s\n", sec.Bullets[j]))
		}
		if len(sec.Bullets) > count {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(sec.Bullets)-count))
		}
		if i == maxItemsToShow-1 && len(secs) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("\n... and %d more sections\n", len(secs)-maxItemsToShow))
			break
		}
	}

	p.printBox(fmt.Sprintf("DIGEST PREVIEW (%s)", lang), strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRefreshResults outputs the per-source outcome of an article refresh.
func (p *Printer) PrintRefreshResults(results []scrape.Result) {
	if len(results) == 0 {
		return
	}

	var sb strings.Builder
	added := 0
	for _, r := range results {
		if r.Err != nil {
			sb.WriteString(fmt.Sprintf("⚠ %s: %s\n", r.Source, r.Err))
			continue
		}
		added += r.Added
		sb.WriteString(fmt.Sprintf("✓ %s: +%d (%d stored)\n", r.Source, r.Added, r.Total))
	}
	sb.WriteString(fmt.Sprintf("\n%d new articles", added))

	p.printBox("ARTICLE REFRESH", sb.String())
}

// PrintTimings outputs the steps recorded in this run.
func (p *Printer) PrintTimings(entries []ledger.Entry) {
	if len(entries) == 0 {
		return
	}

	var sb strings.Builder
	var total time.Duration
	for _, e := range entries {
		d := time.Duration(e.DurationMs) * time.Millisecond
		total += d
		label := e.Label
		if e.Lang != "" {
			label = fmt.Sprintf("%s [%s]", e.Label, e.Lang)
		}
		mark := "✓"
		switch e.Status {
		case ledger.StatusFailed:
			mark = "✗"
		case ledger.StatusSkipped:
			mark = "-"
		}
		sb.WriteString(fmt.Sprintf("%s %-32s %8s\n", mark, truncate(label, 32), d.Round(100*time.Millisecond)))
	}
	sb.WriteString(fmt.Sprintf("\nTotal: %s", total.Round(100*time.Millisecond)))

	p.printBox("STEP TIMINGS", sb.String())
}
