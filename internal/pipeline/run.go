// Package pipeline orchestrates a full story validation run: story
// fetch, retrieval, the analysis phases, scoring, reporting and
// persistence.
package pipeline

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/marcus/story-validator/internal/embedding"
	"github.com/marcus/story-validator/internal/observability"
	"github.com/marcus/story-validator/internal/phases"
	"github.com/marcus/story-validator/internal/report"
	"github.com/marcus/story-validator/internal/scoring"
	"github.com/marcus/story-validator/internal/types"
)

// ProgressEvent represents a progress update during a validation run.
type ProgressEvent struct {
	Stage        string `json:"stage"`
	Message      string `json:"message"`
	ValidationID string `json:"validation_id,omitempty"`
	Content      any    `json:"content,omitempty"`
}

// ProgressCallback is called as the run advances through its stages.
type ProgressCallback func(event ProgressEvent)

// StorySource loads stories for validation.
type StorySource interface {
	GetStoryByID(ctx context.Context, storyID string) (*types.Story, error)
}

// ContextRetriever produces the expanded CR context for a query vector.
type ContextRetriever interface {
	Retrieve(ctx context.Context, vector []float32, allowedDocIDs []string) ([]types.CRChunk, error)
	ExpandContext(ctx context.Context, chunks []types.CRChunk) (*types.ExpandedContext, error)
}

// PhaseExecutor runs the generative analysis phases.
type PhaseExecutor interface {
	FunctionalAlignment(ctx context.Context, story *types.Story, ectx *types.ExpandedContext) (*types.AlignmentResult, error)
	ACGapDetection(ctx context.Context, story *types.Story, ectx *types.ExpandedContext) (*types.ACGapResult, error)
	BusinessRules(ctx context.Context, story *types.Story, ectx *types.ExpandedContext) (*types.BusinessRuleResult, error)
	NFRValidation(ctx context.Context, story *types.Story, ectx *types.ExpandedContext) (*types.NFRResult, error)
	AmbiguityDetection(ctx context.Context, story *types.Story, ectx *types.ExpandedContext) (*types.AmbiguityResult, error)
	RiskClassification(ctx context.Context, story *types.Story, ectx *types.ExpandedContext, prior *types.PhaseResults) (*types.RiskResult, error)
	ReadinessScoring(ctx context.Context, story *types.Story, ectx *types.ExpandedContext, prior *types.PhaseResults) (*types.ReadinessResult, error)
}

// ResultStore persists completed and failed validation runs.
type ResultStore interface {
	SaveValidation(ctx context.Context, result *types.ValidationResult) error
	MarkFailed(ctx context.Context, validationID uuid.UUID, storyID, stage string) error
}

// AuditLog records append-only audit events for a run.
type AuditLog interface {
	LogAudit(ctx context.Context, validationID uuid.UUID, event string, detail any) error
}

// Options configures one validation run.
type Options struct {
	StoryID    string
	CRDocIDs   []string
	Verbose    bool
	OnProgress ProgressCallback
}

// Pipeline wires the collaborators of a validation run. Results and
// Audit may be nil; the run then completes without persistence and
// reports that in the result's warnings.
type Pipeline struct {
	Stories   StorySource
	Embedder  embedding.Embedder
	Retriever ContextRetriever
	Phases    PhaseExecutor
	Scoring   *scoring.Engine
	Reports   report.Sink
	Results   ResultStore
	Audit     AuditLog
	Printer   *observability.Printer
	Now       func() time.Time
	// Resilience bounds embedding and retrieval calls. Zero value
	// means DefaultResiliencePolicy.
	Resilience ResiliencePolicy
}

func (p *Pipeline) emit(opts *Options, validationID uuid.UUID, stage Stage, message string, content any) {
	if opts.OnProgress != nil {
		opts.OnProgress(ProgressEvent{
			Stage:        string(stage),
			Message:      message,
			ValidationID: validationID.String(),
			Content:      content,
		})
	}
}

func (p *Pipeline) audit(ctx context.Context, validationID uuid.UUID, event string, detail any) {
	if p.Audit != nil {
		_ = p.Audit.LogAudit(ctx, validationID, event, detail)
	}
}

// Run executes a full validation for one story against the selected CR
// documents and returns the immutable result. A persistence failure
// after scoring does not fail the run; it lands in the result's
// warnings instead.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*types.ValidationResult, error) {
	if opts.StoryID == "" {
		return nil, &InputError{Field: "story_id", Reason: "must not be empty"}
	}

	validationID := uuid.New()
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}

	tracker, err := NewStageTracker(validationID.String())
	if err != nil {
		return nil, err
	}

	// fail records the stage the run was attempting when the error
	// occurred, not the last stage it completed.
	fail := func(stage Stage, err error) (*types.ValidationResult, error) {
		tracker.Fail()
		p.audit(ctx, validationID, "run_failed", map[string]string{
			"stage": string(stage),
			"error": err.Error(),
		})
		if p.Results != nil {
			_ = p.Results.MarkFailed(ctx, validationID, opts.StoryID, string(stage))
		}
		return nil, &StageError{Stage: stage, Cause: err}
	}

	// Stage 1: fetch the story
	fmt.Printf("Stage 1/8: Fetching story %s...\n", opts.StoryID)
	story, err := p.Stories.GetStoryByID(ctx, opts.StoryID)
	if err != nil {
		return fail(StageStoryFetched, err)
	}
	_ = tracker.Advance(StageStoryFetched)
	if opts.Verbose && p.Printer != nil {
		p.Printer.PrintStory(story)
	}
	p.emit(&opts, validationID, StageStoryFetched, fmt.Sprintf("Fetched story %q", story.Title), nil)

	// Stage 2: embed the story query text. The memoizer is fresh per
	// run, so identical text embeds once within the run and never
	// leaks across runs.
	fmt.Printf("Stage 2/8: Embedding story...\n")
	embedder := embedding.NewMemoizer(p.Embedder)
	vector, err := callResilient(ctx, p.Resilience, func(ctx context.Context) ([]float32, error) {
		return embedder.Embed(ctx, story.QueryText())
	})
	if err != nil {
		return fail(StageEmbedded, err)
	}
	_ = tracker.Advance(StageEmbedded)
	p.emit(&opts, validationID, StageEmbedded, "Embedded story text", nil)

	// Stage 3: retrieve chunks from the selected CR documents only
	fmt.Printf("Stage 3/8: Retrieving CR context (%d documents selected)...\n", len(opts.CRDocIDs))
	ranked, err := callResilient(ctx, p.Resilience, func(ctx context.Context) ([]types.CRChunk, error) {
		return p.Retriever.Retrieve(ctx, vector, opts.CRDocIDs)
	})
	if err != nil {
		return fail(StageRetrieved, err)
	}
	_ = tracker.Advance(StageRetrieved)
	p.emit(&opts, validationID, StageRetrieved, fmt.Sprintf("Retrieved %d chunks", len(ranked)), nil)

	// Stage 4: expand context through linked tech docs and NFRs
	fmt.Printf("Stage 4/8: Expanding context...\n")
	ectx, err := callResilient(ctx, p.Resilience, func(ctx context.Context) (*types.ExpandedContext, error) {
		return p.Retriever.ExpandContext(ctx, ranked)
	})
	if err != nil {
		return fail(StageContextExpanded, err)
	}
	_ = tracker.Advance(StageContextExpanded)
	if opts.Verbose && p.Printer != nil {
		p.Printer.PrintContext(ectx)
	}
	p.audit(ctx, validationID, "context_assembled", map[string]any{
		"chunk_ids":    ectx.ChunkIDs(),
		"doc_versions": ectx.DocVersions(),
	})
	p.emit(&opts, validationID, StageContextExpanded,
		fmt.Sprintf("Context holds %d chunks", len(ectx.Chunks)), nil)

	// Stage 5: run the analysis phases
	fmt.Printf("Stage 5/8: Running analysis phases...\n")
	results, err := p.runPhases(ctx, story, ectx)
	if err != nil {
		return fail(StagePhasesExecuted, err)
	}

	enforcement := phases.EnforceEvidence(results, ectx)
	results.Evidence = enforcement
	for _, violation := range enforcement.Violations {
		p.audit(ctx, validationID, "citation_violation", violation)
	}
	_ = tracker.Advance(StagePhasesExecuted)
	if opts.Verbose && p.Printer != nil {
		p.Printer.PrintPhaseSummary(results)
	}
	p.emit(&opts, validationID, StagePhasesExecuted,
		fmt.Sprintf("Phases complete, %d citation violations", len(enforcement.Violations)), nil)

	// Stage 6: weighted scoring and risk band
	fmt.Printf("Stage 6/8: Scoring readiness...\n")
	readiness, err := p.Scoring.CalculateReadinessScore(results.Readiness.Scores)
	if err != nil {
		return fail(StageScored, err)
	}
	band := scoring.ClassifyRisk(readiness.Overall)
	_ = tracker.Advance(StageScored)
	if opts.Verbose && p.Printer != nil {
		p.Printer.PrintReadiness(readiness, band)
	}
	p.emit(&opts, validationID, StageScored,
		fmt.Sprintf("Overall %.2f (%s)", readiness.Overall, band), nil)

	result := &types.ValidationResult{
		ID:              validationID,
		StoryID:         story.ID,
		CRSelections:    crSelections(opts.CRDocIDs, ectx),
		Phases:          *results,
		DimensionScores: results.Readiness.Scores,
		OverallScore:    readiness.Overall,
		RiskBand:        band,
		PromptVersions:  phases.TemplateVersions(),
		CreatedAt:       now().UTC(),
	}

	// Stage 7: render and store the report. From here on failures are
	// warnings; the computed result is already authoritative.
	fmt.Printf("Stage 7/8: Rendering report...\n")
	html, err := report.Render(result, story)
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("report rendering failed: %v", err))
	} else if p.Reports != nil {
		path, err := p.Reports.Store(result, html)
		if err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("report storage failed: %v", err))
			p.audit(ctx, validationID, "report_store_failed", map[string]string{"error": err.Error()})
		} else {
			result.ReportPath = path
		}
	}
	_ = tracker.Advance(StageReportReferenced)
	p.emit(&opts, validationID, StageReportReferenced, result.ReportPath, nil)

	// Stage 8: persist the result
	fmt.Printf("Stage 8/8: Persisting result...\n")
	if p.Results != nil {
		if err := p.Results.SaveValidation(ctx, result); err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("persistence failed: %v", err))
			p.audit(ctx, validationID, "persistence_failed", map[string]string{"error": err.Error()})
		}
	} else {
		result.Warnings = append(result.Warnings, "no result store configured; validation not persisted")
	}
	_ = tracker.Advance(StageComplete)
	p.emit(&opts, validationID, StageComplete, "Validation complete", result)

	fmt.Printf("Done! Story %s scored %.2f (%s).\n", story.ID, result.OverallScore, result.RiskBand)
	return result, nil
}

// runPhases executes phases 1-5 concurrently, then risk classification
// and readiness scoring sequentially on the combined outputs. The first
// phase error cancels the remaining concurrent phases.
func (p *Pipeline) runPhases(ctx context.Context, story *types.Story, ectx *types.ExpandedContext) (*types.PhaseResults, error) {
	results := &types.PhaseResults{}
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		r, err := p.Phases.FunctionalAlignment(gCtx, story, ectx)
		if err != nil {
			return err
		}
		results.Alignment = r
		return nil
	})
	g.Go(func() error {
		r, err := p.Phases.ACGapDetection(gCtx, story, ectx)
		if err != nil {
			return err
		}
		results.ACGaps = r
		return nil
	})
	g.Go(func() error {
		r, err := p.Phases.BusinessRules(gCtx, story, ectx)
		if err != nil {
			return err
		}
		results.BusinessRules = r
		return nil
	})
	g.Go(func() error {
		r, err := p.Phases.NFRValidation(gCtx, story, ectx)
		if err != nil {
			return err
		}
		results.NFR = r
		return nil
	})
	g.Go(func() error {
		r, err := p.Phases.AmbiguityDetection(gCtx, story, ectx)
		if err != nil {
			return err
		}
		results.Ambiguity = r
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	risks, err := p.Phases.RiskClassification(ctx, story, ectx, results)
	if err != nil {
		return nil, err
	}
	results.Risks = risks

	readiness, err := p.Phases.ReadinessScoring(ctx, story, ectx, results)
	if err != nil {
		return nil, err
	}
	results.Readiness = readiness

	return results, nil
}

// crSelections pins each requested CR document to the version the run
// actually saw. Documents that yielded no chunks are recorded with
// version 0 so the selection set always mirrors the request.
func crSelections(crDocIDs []string, ectx *types.ExpandedContext) []types.CRSelection {
	versions := ectx.DocVersions()
	selections := make([]types.CRSelection, 0, len(crDocIDs))
	ids := make([]string, len(crDocIDs))
	copy(ids, crDocIDs)
	sort.Strings(ids)
	for _, docID := range ids {
		selections = append(selections, types.CRSelection{
			DocID:   docID,
			Version: versions[docID],
		})
	}
	return selections
}
