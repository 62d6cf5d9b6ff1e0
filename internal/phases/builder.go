package phases

import (
	"fmt"
	"strings"

	"github.com/marcus/story-validator/internal/prompts"
	"github.com/marcus/story-validator/internal/types"
)

// BuildPrompt builds the prompt for a generative phase. It is a pure
// function of (phase, story, context, prior results) and fails fast
// with a TemplateError when a required input is absent, rather than
// emitting a prompt with silently missing context.
func BuildPrompt(phase Phase, story *types.Story, ectx *types.ExpandedContext, prior *types.PhaseResults) (string, error) {
	key, ok := templateKeys[phase]
	if !ok {
		return "", &TemplateError{Phase: phase, Missing: "template (phase is not generative)"}
	}
	if story == nil {
		return "", &TemplateError{Phase: phase, Missing: "story"}
	}
	if ectx == nil {
		return "", &TemplateError{Phase: phase, Missing: "context"}
	}

	data := map[string]string{
		"Story":   formatStory(story),
		"Context": formatContext(ectx),
	}

	switch phase {
	case PhaseRiskClassification:
		if err := requireIndependentResults(phase, prior); err != nil {
			return "", err
		}
		data["PriorGaps"] = formatGaps(prior.GapFindings())
	case PhaseReadinessScoring:
		if err := requireIndependentResults(phase, prior); err != nil {
			return "", err
		}
		if prior.Risks == nil {
			return "", &TemplateError{Phase: phase, Missing: "risk classification result"}
		}
		data["AnalysisSummary"] = formatAnalysisSummary(prior)
	}

	template, err := prompts.Get("phases.json", key)
	if err != nil {
		return "", &TemplateError{Phase: phase, Missing: fmt.Sprintf("template %s (%v)", key, err)}
	}
	return prompts.Format(template, data), nil
}

// requireIndependentResults checks that every phase-1-5 result a
// dependent phase consumes is present.
func requireIndependentResults(phase Phase, prior *types.PhaseResults) error {
	if prior == nil {
		return &TemplateError{Phase: phase, Missing: "prior phase results"}
	}
	switch {
	case prior.Alignment == nil:
		return &TemplateError{Phase: phase, Missing: "functional alignment result"}
	case prior.ACGaps == nil:
		return &TemplateError{Phase: phase, Missing: "AC gap result"}
	case prior.BusinessRules == nil:
		return &TemplateError{Phase: phase, Missing: "business rule result"}
	case prior.NFR == nil:
		return &TemplateError{Phase: phase, Missing: "NFR result"}
	case prior.Ambiguity == nil:
		return &TemplateError{Phase: phase, Missing: "ambiguity result"}
	}
	return nil
}

func formatStory(story *types.Story) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "ID: %s\n", story.ID)
	fmt.Fprintf(&sb, "Title: %s\n", story.Title)
	fmt.Fprintf(&sb, "Description: %s\n", story.Description)
	if len(story.AcceptanceCriteria) == 0 {
		sb.WriteString("Acceptance criteria: (none)")
	} else {
		sb.WriteString("Acceptance criteria:\n")
		for i, ac := range story.AcceptanceCriteria {
			fmt.Fprintf(&sb, "  %d. %s\n", i+1, ac)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatContext(ectx *types.ExpandedContext) string {
	if ectx.Empty() {
		return "(no CR context retrieved)"
	}
	var sb strings.Builder
	for _, ch := range ectx.Chunks {
		fmt.Fprintf(&sb, "[%s] (%s, %s v%d)\n%s\n\n", ch.ID, ch.Source, ch.DocID, ch.DocVersion, ch.Content)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatGaps(gaps []types.Finding) string {
	if len(gaps) == 0 {
		return "(no gaps found)"
	}
	var sb strings.Builder
	for _, g := range gaps {
		fmt.Fprintf(&sb, "- [%s] %s", g.Severity, g.Description)
		if len(g.Evidence) > 0 {
			fmt.Fprintf(&sb, " (evidence: %s)", strings.Join(g.Evidence, ", "))
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatAnalysisSummary(prior *types.PhaseResults) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Functional alignment score: %.0f/100\n", prior.Alignment.AlignmentScore)
	fmt.Fprintf(&sb, "Coverage gaps: %d, missing features: %d\n",
		len(prior.Alignment.CoverageGaps), len(prior.Alignment.MissingFeatures))
	fmt.Fprintf(&sb, "Missing AC: %d, covered AC: %d\n",
		len(prior.ACGaps.MissingAC), len(prior.ACGaps.CoveredAC))
	fmt.Fprintf(&sb, "Business rule gaps: %d, conflicts: %d\n",
		len(prior.BusinessRules.RuleGaps), len(prior.BusinessRules.ConflictingRules))
	fmt.Fprintf(&sb, "Missing NFRs: %d, implied NFRs: %d\n",
		len(prior.NFR.MissingNFRs), len(prior.NFR.ImpliedNFRs))
	fmt.Fprintf(&sb, "Ambiguity score: %.0f/100 (%d ambiguous phrases, %d unclear AC)\n",
		prior.Ambiguity.AmbiguityScore, len(prior.Ambiguity.AmbiguousPhrases), len(prior.Ambiguity.UnclearAC))
	if prior.Risks != nil {
		sb.WriteString("Risks:\n")
		if len(prior.Risks.Risks) == 0 {
			sb.WriteString("  (none)\n")
		}
		for _, r := range prior.Risks.Risks {
			fmt.Fprintf(&sb, "  - [%s/%s] %s\n", r.Category, r.Severity, r.Description)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}
