package stage

import (
	"context"
	"fmt"

	"github.com/hupe1980/researchmesh/core"
	"github.com/hupe1980/researchmesh/logging"
)

// ComposeHandler runs the Compose stage: it hands the approved analysis and
// the review verdict to the compose collaborator and records the report.
type ComposeHandler struct {
	collab ComposeCollaborator
	logger logging.Logger
}

// NewComposeHandler wraps a compose collaborator in the stage contract.
func NewComposeHandler(collab ComposeCollaborator, optFns ...func(o *HandlerOptions)) *ComposeHandler {
	opts := applyHandlerOptions(optFns)
	return &ComposeHandler{collab: collab, logger: opts.Logger}
}

// Stage implements Handler.
func (h *ComposeHandler) Stage() core.Stage { return core.StageCompose }

// Handle implements Handler.
func (h *ComposeHandler) Handle(ctx context.Context, st *core.State) (core.Update, error) {
	h.logger.Debug("compose stage starting")

	out, err := h.collab.Compose(ctx, st.AnalyzeOutput, st.ReviewOutput)
	if err != nil {
		return core.Update{}, fmt.Errorf("compose collaborator failed: %w", err)
	}
	if out == nil {
		return core.Update{}, fmt.Errorf("compose collaborator returned no output")
	}
	if len(out.Sources) == 0 && st.GatherOutput != nil {
		for _, src := range st.GatherOutput.Sources {
			out.Sources = append(out.Sources, fmt.Sprintf("%s (%s)", src.Title, src.URL))
		}
	}

	h.logger.Info("compose stage completed", "title", out.Title, "sections", len(out.Sections))

	return core.Update{
		ComposeOutput: out,
		Messages: []core.Message{
			core.NewMessage(core.StageCompose, core.StageDispatcher, core.KindData,
				fmt.Sprintf("report %q ready (%d sections)", out.Title, len(out.Sections))),
		},
	}, nil
}
