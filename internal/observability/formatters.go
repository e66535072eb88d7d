// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/martin/tailorproof/internal/types"
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

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintJob outputs a human-readable summary of the loaded job description.
func (p *Printer) PrintJob(job *types.JobDescription) {
	if job == nil {
		return
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Company:  %s\n", job.Company))
	sb.WriteString(fmt.Sprintf("Role:     %s\n", job.Title))

	if len(job.Keywords) > 0 {
		sb.WriteString("\nTop keywords:\n")
		count := min(len(job.Keywords), maxItemsToShow)
		for i := 0; i < count; i++ {
			kw := job.Keywords[i]
			sb.WriteString(fmt.Sprintf("  • %s (%.1f)\n", kw.Term, kw.Weight))
		}
		if len(job.Keywords) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(job.Keywords)-maxItemsToShow))
		}
	}

	p.printBox("JOB DESCRIPTION", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintSelection outputs the selected claims per section with scores.
func (p *Printer) PrintSelection(result *types.SelectionResult) {
	if result == nil || result.Total() == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Selected %d claims:\n", result.Total()))

	for _, section := range types.Sections() {
		picks := result.Sections[section]
		if len(picks) == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("\n%s (%d):\n", strings.ToUpper(string(section)), len(picks)))

		count := min(len(picks), maxItemsToShow)
		for i := 0; i < count; i++ {
			text := picks[i].DisplayText
			if len(text) > 44 {
				text = text[:41] + "..."
			}
			sb.WriteString(fmt.Sprintf("  %.2f  %s\n", picks[i].Score, text))
		}
		if len(picks) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(picks)-maxItemsToShow))
		}
	}

	title := "SELECTED CLAIMS"
	if result.Compact {
		title = "SELECTED CLAIMS (compact)"
	}
	p.printBox(title, strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRewrites outputs the rewrite attempts with their guard decisions.
func (p *Printer) PrintRewrites(attempts []types.RewriteAttempt) {
	if len(attempts) == 0 {
		return
	}

	accepted, reverted, skipped := 0, 0, 0
	for _, a := range attempts {
		switch a.Decision {
		case types.RewriteAccepted:
			accepted++
		case types.RewriteReverted:
			reverted++
		case types.RewriteSkipped:
			skipped++
		}
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d accepted, %d reverted, %d skipped\n\n", accepted, reverted, skipped))

	count := min(len(attempts), maxItemsToShow)
	for i := 0; i < count; i++ {
		a := attempts[i]
		marker := "✓"
		switch a.Decision {
		case types.RewriteReverted:
			marker = "↩"
		case types.RewriteSkipped:
			marker = "~"
		}
		sb.WriteString(fmt.Sprintf("%s %s\n", marker, a.ClaimID))
		if a.Reason != "" {
			reason := a.Reason
			if len(reason) > 48 {
				reason = reason[:45] + "..."
			}
			sb.WriteString(fmt.Sprintf("  %s\n", reason))
		}
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(attempts) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more attempts", len(attempts)-maxItemsToShow))
	}

	p.printBox("REWRITE DECISIONS", sb.String())
}

// PrintEvaluation outputs the coverage report.
func (p *Printer) PrintEvaluation(report *types.EvaluationReport) {
	if report == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Keyword coverage: %.0f%%\n", report.Coverage*100))

	if len(report.MissingKeywords) > 0 {
		sb.WriteString("\nMissing keywords:\n")
		count := min(len(report.MissingKeywords), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", report.MissingKeywords[i]))
		}
		if len(report.MissingKeywords) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(report.MissingKeywords)-maxItemsToShow))
		}
	}

	if len(report.Suggestions) > 0 {
		sb.WriteString("\nSuggestions:\n")
		count := min(len(report.Suggestions), 3)
		for i := 0; i < count; i++ {
			s := report.Suggestions[i]
			if len(s) > 50 {
				s = s[:47] + "..."
			}
			sb.WriteString(fmt.Sprintf("  • %s\n", s))
		}
		if len(report.Suggestions) > 3 {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(report.Suggestions)-3))
		}
	}

	p.printBox("COVERAGE REPORT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintTraceSummary outputs the run identity and index provenance.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintTraceSummary(tr *types.Trace) {
	if tr == nil {
		return
	}

	if tr.IndexFallback {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "⚠ INDEX FELL BACK TO TOKEN OVERLAP")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Run:      %s\n", tr.RunID))
	sb.WriteString(fmt.Sprintf("Backend:  %s\n", tr.IndexBackend))
	sb.WriteString(fmt.Sprintf("Entries:  %d", len(tr.Entries)))

	p.printBox("RUN TRACE", sb.String())
}
