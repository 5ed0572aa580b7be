package stage

import (
	"context"
	"fmt"

	"github.com/hupe1980/researchmesh/core"
	"github.com/hupe1980/researchmesh/logging"
)

// ReviewHandler runs the Review stage: it asks the review collaborator to
// quality-gate the current analysis.
type ReviewHandler struct {
	collab ReviewCollaborator
	logger logging.Logger
}

// NewReviewHandler wraps a review collaborator in the stage contract.
func NewReviewHandler(collab ReviewCollaborator, optFns ...func(o *HandlerOptions)) *ReviewHandler {
	opts := applyHandlerOptions(optFns)
	return &ReviewHandler{collab: collab, logger: opts.Logger}
}

// Stage implements Handler.
func (h *ReviewHandler) Stage() core.Stage { return core.StageReview }

// Handle implements Handler.
func (h *ReviewHandler) Handle(ctx context.Context, st *core.State) (core.Update, error) {
	h.logger.Debug("review stage starting", "revision", st.IterationCount)

	out, err := h.collab.Review(ctx, st.AnalyzeOutput)
	if err != nil {
		return core.Update{}, fmt.Errorf("review collaborator failed: %w", err)
	}
	if out == nil {
		return core.Update{}, fmt.Errorf("review collaborator returned no output")
	}

	verdict := "approved"
	if !out.Approved {
		verdict = "revision requested"
	}
	h.logger.Info("review stage completed", "verdict", verdict, "quality", out.QualityScore)

	return core.Update{
		ReviewOutput: out,
		Messages: []core.Message{
			core.NewMessage(core.StageReview, core.StageDispatcher, core.KindData,
				fmt.Sprintf("review complete: %s (quality %.2f)", verdict, out.QualityScore)),
		},
	}, nil
}
