package stage

import (
	"context"

	"github.com/hupe1980/researchmesh/core"
	"github.com/hupe1980/researchmesh/logging"
)

// Handler is the uniform contract every stage implements.
//
// Handle receives the current shared state as a read-only view and returns a
// partial update. Implementations must:
//   - Write only their own output field, message additions, and (for the
//     dispatcher) the control fields
//   - Never mutate the state they were handed
//   - Surface internal failures as a returned error; the engine converts it
//     into the fatal Failed update, so a handler never needs to build one
type Handler interface {
	// Stage returns the identifier this handler is bound to.
	Stage() core.Stage

	// Handle executes the stage against a snapshot of the shared state.
	Handle(ctx context.Context, st *core.State) (core.Update, error)
}

// HandlerOptions holds the cross-cutting overrides shared by all handler
// constructors.
type HandlerOptions struct {
	// Logger used for stage-level diagnostics. Defaults to NoOpLogger.
	Logger logging.Logger
}

func applyHandlerOptions(optFns []func(o *HandlerOptions)) HandlerOptions {
	opts := HandlerOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return opts
}

// Collaborator contracts. The engine treats each as an opaque function from
// state inputs to a stage output; prompt design, scoring heuristics and
// retrieval ranking are the collaborator's business, not the pipeline's.

// GatherCollaborator retrieves raw source material for a topic.
type GatherCollaborator interface {
	Gather(ctx context.Context, topic string) (*core.GatherOutput, error)
}

// AnalyzeCollaborator distills gathered material into a structured analysis.
// priorFeedback is empty on the initial pass and carries the reviewer's
// objections on revision passes.
type AnalyzeCollaborator interface {
	Analyze(ctx context.Context, gathered *core.GatherOutput, priorFeedback string) (*core.AnalyzeOutput, error)
}

// ReviewCollaborator quality-gates an analysis.
type ReviewCollaborator interface {
	Review(ctx context.Context, analysis *core.AnalyzeOutput) (*core.ReviewOutput, error)
}

// ComposeCollaborator writes the final report from analysis and review.
type ComposeCollaborator interface {
	Compose(ctx context.Context, analysis *core.AnalyzeOutput, review *core.ReviewOutput) (*core.ComposeOutput, error)
}
