package stage

import (
	"context"
	"fmt"

	"github.com/hupe1980/researchmesh/core"
	"github.com/hupe1980/researchmesh/logging"
)

// GatherHandler runs the Gather stage: it hands the query to the gather
// collaborator and records the retrieved material.
type GatherHandler struct {
	collab GatherCollaborator
	logger logging.Logger
}

// NewGatherHandler wraps a gather collaborator in the stage contract.
func NewGatherHandler(collab GatherCollaborator, optFns ...func(o *HandlerOptions)) *GatherHandler {
	opts := applyHandlerOptions(optFns)
	return &GatherHandler{collab: collab, logger: opts.Logger}
}

// Stage implements Handler.
func (h *GatherHandler) Stage() core.Stage { return core.StageGather }

// Handle implements Handler.
func (h *GatherHandler) Handle(ctx context.Context, st *core.State) (core.Update, error) {
	h.logger.Debug("gather stage starting", "query", st.Query)

	out, err := h.collab.Gather(ctx, st.Query)
	if err != nil {
		return core.Update{}, fmt.Errorf("gather collaborator failed: %w", err)
	}
	if out == nil {
		return core.Update{}, fmt.Errorf("gather collaborator returned no output")
	}

	h.logger.Info("gather stage completed", "sources", out.SourceCount())

	return core.Update{
		GatherOutput: out,
		Messages: []core.Message{
			core.NewMessage(core.StageGather, core.StageDispatcher, core.KindData,
				fmt.Sprintf("gathered %d sources for %q", out.SourceCount(), st.Query)),
		},
	}, nil
}
