package pipeline

import (
	"fmt"

	"github.com/felixgeelhaar/statekit"
)

// Stage names one step of a validation run, in execution order.
type Stage string

// The run stages. A run moves strictly forward; any stage can
// transition to StageFailed and no transition leaves it.
const (
	StagePending          Stage = "pending"
	StageStoryFetched     Stage = "story_fetched"
	StageEmbedded         Stage = "embedded"
	StageRetrieved        Stage = "retrieved"
	StageContextExpanded  Stage = "context_expanded"
	StagePhasesExecuted   Stage = "phases_executed"
	StageScored           Stage = "scored"
	StageReportReferenced Stage = "report_referenced"
	StageComplete         Stage = "complete"
	StageFailed           Stage = "failed"
)

const eventFail = "fail"

// stageOrder is the forward path of a successful run.
var stageOrder = []Stage{
	StagePending,
	StageStoryFetched,
	StageEmbedded,
	StageRetrieved,
	StageContextExpanded,
	StagePhasesExecuted,
	StageScored,
	StageReportReferenced,
	StageComplete,
}

// stageContext carries run identity through the machine.
type stageContext struct {
	ValidationID string
}

// StageTracker enforces the forward-only stage progression of one
// validation run.
type StageTracker struct {
	interpreter *statekit.Interpreter[stageContext]
}

// NewStageTracker builds the stage machine for a run, starting at
// pending.
func NewStageTracker(validationID string) (*StageTracker, error) {
	builder := statekit.NewMachine[stageContext]("validation-run").
		WithInitial(statekit.StateID(StagePending)).
		WithContext(stageContext{ValidationID: validationID})

	for i, stage := range stageOrder {
		state := builder.State(statekit.StateID(stage))
		if i+1 < len(stageOrder) {
			next := stageOrder[i+1]
			state = state.On(statekit.EventType(next)).Target(statekit.StateID(next)).End()
		}
		if stage != StageComplete {
			state = state.On(eventFail).Target(statekit.StateID(StageFailed)).End()
		}
		state.Done()
	}
	builder.State(statekit.StateID(StageFailed)).Done()

	machine, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build stage machine: %w", err)
	}

	interpreter := statekit.NewInterpreter(machine)
	interpreter.Start()

	return &StageTracker{interpreter: interpreter}, nil
}

// Advance moves the run to the given stage. Only the immediate next
// stage is reachable; anything else is a programming error.
func (t *StageTracker) Advance(stage Stage) error {
	before := t.Current()
	t.interpreter.Send(statekit.Event{Type: statekit.EventType(stage)})
	if t.Current() == before {
		return fmt.Errorf("invalid stage transition %s -> %s", before, stage)
	}
	return nil
}

// Fail moves the run to the failed stage from any non-terminal stage.
func (t *StageTracker) Fail() {
	t.interpreter.Send(statekit.Event{Type: eventFail})
}

// Current returns the stage the run is in.
func (t *StageTracker) Current() Stage {
	return Stage(t.interpreter.State().Value)
}
