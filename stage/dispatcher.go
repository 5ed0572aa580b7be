package stage

import (
	"context"
	"fmt"

	"github.com/hupe1980/researchmesh/core"
	"github.com/hupe1980/researchmesh/logging"
)

// DispatcherHandler coordinates the pipeline: after every worker stage it
// decides the next destination based purely on state contents (field
// presence plus the revision rule), with no stage-specific business logic.
//
// The dispatcher keys its decisions off NextStage, which records the worker
// it last dispatched. A dispatched worker that returned with neither its
// expected output nor an error is a contract violation and terminates the
// run failed, never a silent retry.
type DispatcherHandler struct {
	logger logging.Logger
}

// NewDispatcherHandler creates the coordinating stage handler.
func NewDispatcherHandler(optFns ...func(o *HandlerOptions)) *DispatcherHandler {
	opts := applyHandlerOptions(optFns)
	return &DispatcherHandler{logger: opts.Logger}
}

// Stage implements Handler.
func (h *DispatcherHandler) Stage() core.Stage { return core.StageDispatcher }

// Handle implements Handler.
func (h *DispatcherHandler) Handle(_ context.Context, st *core.State) (core.Update, error) {
	// Error short-circuit: the router sends a failed state to Terminal; the
	// dispatcher contributes nothing further.
	if st.Failed() {
		return core.Update{}, nil
	}

	// First call of a run: nothing dispatched yet.
	if st.NextStage == nil {
		return h.route(core.StageGather, "begin research for "+st.Query), nil
	}

	dispatched := *st.NextStage
	if dispatched.IsWorker() && !st.HasOutput(dispatched) {
		return h.contractViolation(dispatched), nil
	}

	switch dispatched {
	case core.StageGather:
		return h.route(core.StageAnalyze, "analyze gathered material"), nil

	case core.StageAnalyze:
		return h.route(core.StageReview, "review analysis"), nil

	case core.StageReview:
		return h.afterReview(st), nil

	case core.StageCompose:
		completed := core.StatusCompleted
		terminal := core.StageTerminal
		return core.Update{
			Status:    &completed,
			NextStage: &terminal,
			Messages: []core.Message{
				core.NewMessage(core.StageDispatcher, core.StageTerminal, core.KindData,
					"report complete"),
			},
		}, nil

	default:
		// Dispatcher can only have dispatched a worker; anything else is a
		// routing-table bug surfaced as a fatal failure.
		return core.FailureUpdate(core.StageDispatcher,
			fmt.Sprintf("dispatcher cannot resume after %s: %s", dispatched, core.ErrContractViolation)), nil
	}
}

// afterReview applies the revision rule: approval or iteration exhaustion
// proceeds to Compose; otherwise the analysis is cleared and recomputed with
// the reviewer's feedback carried forward.
func (h *DispatcherHandler) afterReview(st *core.State) core.Update {
	review := st.ReviewOutput

	if review.Approved {
		return h.route(core.StageCompose, "analysis approved, compose report")
	}

	if st.IterationCount >= st.MaxIterations {
		// Forced proceed on exhaustion: quality-gating never blocks forward
		// progress indefinitely.
		h.logger.Warn("revision budget exhausted, forcing compose", "iterations", st.IterationCount)
		return h.route(core.StageCompose,
			fmt.Sprintf("revision budget exhausted (%d/%d), composing with current analysis",
				st.IterationCount, st.MaxIterations))
	}

	next := st.IterationCount + 1
	h.logger.Info("review rejected analysis, starting revision", "iteration", next, "max_iterations", st.MaxIterations)

	upd := h.route(core.StageAnalyze, fmt.Sprintf("revise analysis (iteration %d/%d)", next, st.MaxIterations))
	upd.IterationCount = &next
	upd.ClearAnalyze = true
	upd.Messages = append(upd.Messages,
		core.NewMessage(core.StageDispatcher, core.StageAnalyze, core.KindFeedback, review.Feedback()))
	return upd
}

func (h *DispatcherHandler) route(to core.Stage, instruction string) core.Update {
	return core.Update{
		NextStage: &to,
		Messages: []core.Message{
			core.NewMessage(core.StageDispatcher, to, core.KindInstruction, instruction),
		},
	}
}

func (h *DispatcherHandler) contractViolation(worker core.Stage) core.Update {
	msg := fmt.Sprintf("stage %s returned without output or error: %s", worker, core.ErrContractViolation)
	h.logger.Error(msg)
	return core.FailureUpdate(worker, msg)
}
