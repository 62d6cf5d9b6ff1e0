// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/marcus/story-validator/internal/types"
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

// PrintStory outputs a human-readable summary of the story under
// validation.
func (p *Printer) PrintStory(story *types.Story) {
	if story == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("ID:    %s\n", story.ID))
	sb.WriteString(fmt.Sprintf("Title: %s\n", story.Title))
	sb.WriteString("\n")

	if len(story.AcceptanceCriteria) > 0 {
		sb.WriteString("Acceptance Criteria:\n")
		count := min(len(story.AcceptanceCriteria), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, story.AcceptanceCriteria[i]))
		}
		if len(story.AcceptanceCriteria) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(story.AcceptanceCriteria)-maxItemsToShow))
		}
	} else {
		sb.WriteString("No acceptance criteria defined\n")
	}

	p.printBox("STORY UNDER VALIDATION", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintContext outputs the chunks assembled for the run, grouped by
// document.
func (p *Printer) PrintContext(ectx *types.ExpandedContext) {
	if ectx == nil || ectx.Empty() {
		p.printBox("RETRIEVED CONTEXT", "No applicable CR context retrieved")
		return
	}

	var sb strings.Builder
	byDoc := map[string]int{}
	order := []string{}
	for _, ch := range ectx.Chunks {
		if _, ok := byDoc[ch.DocID]; !ok {
			order = append(order, ch.DocID)
		}
		byDoc[ch.DocID]++
	}
	versions := ectx.DocVersions()
	for _, docID := range order {
		sb.WriteString(fmt.Sprintf("  • %s v%d (%d chunks)\n", docID, versions[docID], byDoc[docID]))
	}
	sb.WriteString(fmt.Sprintf("\nTotal: %d chunks from %d documents", len(ectx.Chunks), len(order)))

	p.printBox("RETRIEVED CONTEXT", sb.String())
}

// PrintPhaseSummary outputs one line per completed analysis phase.
func (p *Printer) PrintPhaseSummary(results *types.PhaseResults) {
	if results == nil {
		return
	}

	var sb strings.Builder
	if results.Alignment != nil {
		sb.WriteString(fmt.Sprintf("Alignment:      %.0f/100, %d gaps\n",
			results.Alignment.AlignmentScore, len(results.Alignment.CoverageGaps)))
	}
	if results.ACGaps != nil {
		sb.WriteString(fmt.Sprintf("AC:             %d missing, %d covered\n",
			len(results.ACGaps.MissingAC), len(results.ACGaps.CoveredAC)))
	}
	if results.BusinessRules != nil {
		sb.WriteString(fmt.Sprintf("Business rules: %d gaps, %d conflicts\n",
			len(results.BusinessRules.RuleGaps), len(results.BusinessRules.ConflictingRules)))
	}
	if results.NFR != nil {
		sb.WriteString(fmt.Sprintf("NFR:            %d missing, %d implied\n",
			len(results.NFR.MissingNFRs), len(results.NFR.ImpliedNFRs)))
	}
	if results.Ambiguity != nil {
		sb.WriteString(fmt.Sprintf("Ambiguity:      %.0f/100\n", results.Ambiguity.AmbiguityScore))
	}
	if results.Risks != nil {
		sb.WriteString(fmt.Sprintf("Risks:          %d classified\n", len(results.Risks.Risks)))
	}
	if results.Evidence != nil {
		sb.WriteString(fmt.Sprintf("Evidence:       %d checked, %d violations\n",
			results.Evidence.Checked, len(results.Evidence.Violations)))
	}

	p.printBox("PHASE SUMMARY", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintReadiness outputs the weighted readiness breakdown and band.
func (p *Printer) PrintReadiness(score *types.ReadinessScore, band types.RiskBand) {
	if score == nil {
		return
	}

	var sb strings.Builder
	for _, ws := range score.Breakdown {
		marker := ""
		if ws.Dimension.Inverted() {
			marker = " (inverted)"
		}
		sb.WriteString(fmt.Sprintf("  %-22s raw %3.0f → %5.2f%s\n",
			ws.Dimension, ws.Raw, ws.Weighted, marker))
	}
	sb.WriteString(fmt.Sprintf("\nOverall: %.2f/100 → %s", score.Overall, band))

	p.printBox("READINESS SCORE", sb.String())
}
