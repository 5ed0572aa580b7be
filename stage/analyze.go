package stage

import (
	"context"
	"fmt"

	"github.com/hupe1980/researchmesh/core"
	"github.com/hupe1980/researchmesh/logging"
)

// AnalyzeHandler runs the Analyze stage. On revision passes it forwards the
// reviewer's feedback to the collaborator as additional input context.
type AnalyzeHandler struct {
	collab AnalyzeCollaborator
	logger logging.Logger
}

// NewAnalyzeHandler wraps an analyze collaborator in the stage contract.
func NewAnalyzeHandler(collab AnalyzeCollaborator, optFns ...func(o *HandlerOptions)) *AnalyzeHandler {
	opts := applyHandlerOptions(optFns)
	return &AnalyzeHandler{collab: collab, logger: opts.Logger}
}

// Stage implements Handler.
func (h *AnalyzeHandler) Stage() core.Stage { return core.StageAnalyze }

// Handle implements Handler.
func (h *AnalyzeHandler) Handle(ctx context.Context, st *core.State) (core.Update, error) {
	// Feedback is only present after the dispatcher routed a revision; the
	// review output is the sanctioned carrier per the analyze contract.
	var feedback string
	if st.ReviewOutput != nil {
		feedback = st.ReviewOutput.Feedback()
	}

	h.logger.Debug("analyze stage starting", "revision", st.IterationCount, "has_feedback", feedback != "")

	out, err := h.collab.Analyze(ctx, st.GatherOutput, feedback)
	if err != nil {
		return core.Update{}, fmt.Errorf("analyze collaborator failed: %w", err)
	}
	if out == nil {
		return core.Update{}, fmt.Errorf("analyze collaborator returned no output")
	}
	out.Revision = st.IterationCount

	h.logger.Info("analyze stage completed", "key_points", len(out.KeyPoints), "quality", out.QualityScore)

	return core.Update{
		AnalyzeOutput: out,
		Messages: []core.Message{
			core.NewMessage(core.StageAnalyze, core.StageDispatcher, core.KindData,
				fmt.Sprintf("analysis ready (revision %d, %d key points)", out.Revision, len(out.KeyPoints))),
		},
	}, nil
}
