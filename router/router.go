// Package router contains the pure conditional-routing logic of the research
// pipeline: stateless, deterministic functions that inspect a state value and
// return the identifier of the next stage. Decomposing the decision per
// stage-exit point keeps every branch unit-testable with a literal state
// rather than a live run.
package router

import (
	"fmt"

	"github.com/hupe1980/researchmesh/core"
)

// Next returns the stage to execute after just finished running against st.
// Error short-circuiting applies from every exit point: once the state
// carries an error, the only destination is Terminal.
func Next(just core.Stage, st *core.State) core.Stage {
	if st.Failed() {
		return core.StageTerminal
	}

	switch just {
	case core.StageDispatcher:
		return FromDispatcher(st)
	case core.StageGather, core.StageAnalyze, core.StageReview, core.StageCompose:
		return AfterWorker(just, st)
	case core.StageTerminal:
		return core.StageTerminal
	default:
		// Unknown stages cannot be routed; treat as terminal so a
		// construction-time validation bug cannot loop forever.
		return core.StageTerminal
	}
}

// FromDispatcher resolves the dispatcher's destination. The dispatcher
// records its decision in NextStage; an unset or terminal decision ends the
// run.
func FromDispatcher(st *core.State) core.Stage {
	if st.Status.Terminal() {
		return core.StageTerminal
	}
	if st.NextStage == nil {
		return core.StageTerminal
	}
	return *st.NextStage
}

// AfterWorker routes a finished worker stage. Workers never route to each
// other directly; control always returns to the dispatcher, which owns all
// branching decisions.
func AfterWorker(just core.Stage, st *core.State) core.Stage {
	switch just {
	case core.StageGather, core.StageAnalyze, core.StageReview, core.StageCompose:
		return core.StageDispatcher
	default:
		return core.StageTerminal
	}
}

// CanEnter validates the upstream-field precondition for entering a stage.
// A violation is a programming-error class failure: the caller converts it
// into a fatal Failed terminal state, never a retry.
func CanEnter(stage core.Stage, st *core.State) error {
	switch stage {
	case core.StageDispatcher, core.StageGather, core.StageTerminal:
		return nil
	case core.StageAnalyze:
		if st.GatherOutput == nil {
			return fmt.Errorf("analyze requires gather output: %w", core.ErrPreconditionUnmet)
		}
		return nil
	case core.StageReview:
		if st.AnalyzeOutput == nil {
			return fmt.Errorf("review requires analyze output: %w", core.ErrPreconditionUnmet)
		}
		return nil
	case core.StageCompose:
		if st.AnalyzeOutput == nil || st.ReviewOutput == nil {
			return fmt.Errorf("compose requires analyze and review outputs: %w", core.ErrPreconditionUnmet)
		}
		return nil
	default:
		return fmt.Errorf("unknown stage %s: %w", stage, core.ErrPreconditionUnmet)
	}
}
