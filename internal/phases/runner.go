package phases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/marcus/story-validator/internal/llm"
	"github.com/marcus/story-validator/internal/types"
)

// Runner executes the generative phases against an LLM client. The
// client is injected so tests supply deterministic fakes.
type Runner struct {
	client llm.Client
}

// NewRunner creates a phase runner.
func NewRunner(client llm.Client) *Runner {
	return &Runner{client: client}
}

// run sends the prompt for a phase, validates the response against the
// phase's schema and unmarshals it into out.
func (r *Runner) run(ctx context.Context, phase Phase, prompt string, out any) error {
	raw, err := r.client.GenerateJSON(ctx, prompt, phase.Tier())
	if err != nil {
		return &LLMError{
			Phase:   phase,
			Timeout: errors.Is(err, context.DeadlineExceeded),
			Cause:   err,
		}
	}

	raw = llm.CleanJSONBlock(raw)
	if err := validateResponse(phase, raw); err != nil {
		return &LLMError{Phase: phase, Cause: err}
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return &LLMError{Phase: phase, Cause: fmt.Errorf("failed to parse response: %w", err)}
	}
	return nil
}

// noContextGap is the maximal-severity finding phases report when the
// run has no applicable CR context.
func noContextGap(description string) types.Finding {
	return types.Finding{
		Description: description,
		Severity:    types.SeverityCritical,
		Confidence:  types.ConfidenceHigh,
	}
}

// clampScore bounds a raw model score to [0,100].
func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// FunctionalAlignment assesses how well the story's functionality
// aligns with the CR context. With no context it short-circuits to a
// deterministic maximal gap without calling the LLM.
func (r *Runner) FunctionalAlignment(ctx context.Context, story *types.Story, ectx *types.ExpandedContext) (*types.AlignmentResult, error) {
	if ectx == nil {
		return nil, &TemplateError{Phase: PhaseFunctionalAlignment, Missing: "context"}
	}
	if ectx.Empty() {
		return &types.AlignmentResult{
			AlignmentScore: 0,
			CoverageGaps: []types.Finding{
				noContextGap("no applicable CR context: story cannot be validated against any selected change request"),
			},
		}, nil
	}

	prompt, err := BuildPrompt(PhaseFunctionalAlignment, story, ectx, nil)
	if err != nil {
		return nil, err
	}

	var result types.AlignmentResult
	if err := r.run(ctx, PhaseFunctionalAlignment, prompt, &result); err != nil {
		return nil, err
	}
	result.AlignmentScore = clampScore(result.AlignmentScore)
	return &result, nil
}

// ACGapDetection reports acceptance criteria missing against the CR
// context and criteria the context covers.
func (r *Runner) ACGapDetection(ctx context.Context, story *types.Story, ectx *types.ExpandedContext) (*types.ACGapResult, error) {
	if ectx == nil {
		return nil, &TemplateError{Phase: PhaseACGapDetection, Missing: "context"}
	}
	if ectx.Empty() {
		result := &types.ACGapResult{
			MissingAC: []types.Finding{
				noContextGap("no applicable CR context: acceptance criteria cannot be checked against any change request"),
			},
		}
		if story != nil && len(story.AcceptanceCriteria) == 0 {
			result.MissingAC = append(result.MissingAC,
				noContextGap("story defines no acceptance criteria"))
		}
		return result, nil
	}

	prompt, err := BuildPrompt(PhaseACGapDetection, story, ectx, nil)
	if err != nil {
		return nil, err
	}

	var result types.ACGapResult
	if err := r.run(ctx, PhaseACGapDetection, prompt, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// BusinessRules checks the story against business rules stated in the
// CR context.
func (r *Runner) BusinessRules(ctx context.Context, story *types.Story, ectx *types.ExpandedContext) (*types.BusinessRuleResult, error) {
	if ectx != nil && ectx.Empty() {
		return &types.BusinessRuleResult{}, nil
	}

	prompt, err := BuildPrompt(PhaseBusinessRules, story, ectx, nil)
	if err != nil {
		return nil, err
	}

	var result types.BusinessRuleResult
	if err := r.run(ctx, PhaseBusinessRules, prompt, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// NFRValidation surfaces implied and missing non-functional
// requirements.
func (r *Runner) NFRValidation(ctx context.Context, story *types.Story, ectx *types.ExpandedContext) (*types.NFRResult, error) {
	if ectx != nil && ectx.Empty() {
		return &types.NFRResult{}, nil
	}

	prompt, err := BuildPrompt(PhaseNFRValidation, story, ectx, nil)
	if err != nil {
		return nil, err
	}

	var result types.NFRResult
	if err := r.run(ctx, PhaseNFRValidation, prompt, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// AmbiguityDetection finds vague phrasing and unverifiable acceptance
// criteria. It runs even with empty context since ambiguity is a
// property of the story text itself.
func (r *Runner) AmbiguityDetection(ctx context.Context, story *types.Story, ectx *types.ExpandedContext) (*types.AmbiguityResult, error) {
	prompt, err := BuildPrompt(PhaseAmbiguityDetection, story, ectx, nil)
	if err != nil {
		return nil, err
	}

	var result types.AmbiguityResult
	if err := r.run(ctx, PhaseAmbiguityDetection, prompt, &result); err != nil {
		return nil, err
	}
	result.AmbiguityScore = clampScore(result.AmbiguityScore)
	return &result, nil
}

// RiskClassification classifies delivery risks from the gaps earlier
// phases found. Requires all independent phase results.
func (r *Runner) RiskClassification(ctx context.Context, story *types.Story, ectx *types.ExpandedContext, prior *types.PhaseResults) (*types.RiskResult, error) {
	prompt, err := BuildPrompt(PhaseRiskClassification, story, ectx, prior)
	if err != nil {
		return nil, err
	}

	var result types.RiskResult
	if err := r.run(ctx, PhaseRiskClassification, prompt, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ReadinessScoring produces one 0-100 score per readiness dimension.
// Requires all independent phase results plus risk classification.
func (r *Runner) ReadinessScoring(ctx context.Context, story *types.Story, ectx *types.ExpandedContext, prior *types.PhaseResults) (*types.ReadinessResult, error) {
	prompt, err := BuildPrompt(PhaseReadinessScoring, story, ectx, prior)
	if err != nil {
		return nil, err
	}

	var result types.ReadinessResult
	if err := r.run(ctx, PhaseReadinessScoring, prompt, &result); err != nil {
		return nil, err
	}
	for i := range result.Scores {
		result.Scores[i].Score = clampScore(result.Scores[i].Score)
	}
	return &result, nil
}
