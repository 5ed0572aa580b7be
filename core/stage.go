package core

import "fmt"

// Stage identifies one node of the research pipeline. The set is closed:
// routing logic switches exhaustively over these values so an unhandled
// stage is a construction-time error rather than a silent fall-through.
type Stage int

const (
	// StageDispatcher is the coordinating stage that selects the next worker.
	StageDispatcher Stage = iota
	// StageGather retrieves raw source material for the query.
	StageGather
	// StageAnalyze distills gathered material into a structured analysis.
	StageAnalyze
	// StageReview quality-gates the analysis and may request a revision.
	StageReview
	// StageCompose writes the final report from analysis + review.
	StageCompose
	// StageTerminal marks the end of a run; it has no handler.
	StageTerminal
)

// WorkerStages lists the four non-coordinating stages in pipeline order.
var WorkerStages = []Stage{StageGather, StageAnalyze, StageReview, StageCompose}

// String returns the stable lowercase identifier for the stage.
func (s Stage) String() string {
	switch s {
	case StageDispatcher:
		return "dispatcher"
	case StageGather:
		return "gather"
	case StageAnalyze:
		return "analyze"
	case StageReview:
		return "review"
	case StageCompose:
		return "compose"
	case StageTerminal:
		return "terminal"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// IsWorker reports whether the stage is one of the four work stages.
func (s Stage) IsWorker() bool {
	switch s {
	case StageGather, StageAnalyze, StageReview, StageCompose:
		return true
	default:
		return false
	}
}

// Status describes the lifecycle phase of a run.
type Status int

const (
	// StatusRunning is the initial, in-flight status.
	StatusRunning Status = iota
	// StatusCompleted indicates the run produced a final report.
	StatusCompleted
	// StatusFailed indicates the run terminated with an error recorded.
	StatusFailed
	// StatusAwaitingInput indicates the run is suspended pending caller input.
	StatusAwaitingInput
)

// String returns the stable lowercase identifier for the status.
func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	case StatusAwaitingInput:
		return "awaiting_input"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Terminal reports whether the status ends a run.
func (s Status) Terminal() bool { return s == StatusCompleted || s == StatusFailed }
