package core

import "time"

// State is the single shared record threaded through every stage of a run.
// It carries the immutable inputs, the control pointers the dispatcher and
// engine coordinate through, the per-stage outputs, the append-only message
// log and the error fields.
//
// Contract:
//   - Query and MaxIterations are immutable once the run starts
//   - CurrentStage is set by the engine before each stage invocation;
//     NextStage is set by the dispatcher's routing updates
//   - Stage outputs are written exactly once per stage invocation (Analyze
//     and Review may be overwritten on a revision pass)
//   - Error / ErrorStage are set once on failure and never cleared
//   - The engine never mutates a State handed to a stage; merging an Update
//     produces a fresh instance (see Apply)
type State struct {
	RunID string `json:"run_id"`
	Query string `json:"query"`

	CurrentStage Stage  `json:"current_stage"`
	NextStage    *Stage `json:"next_stage,omitempty"`
	Status       Status `json:"status"`

	IterationCount int `json:"iteration_count"`
	MaxIterations  int `json:"max_iterations"`

	GatherOutput  *GatherOutput  `json:"gather_output,omitempty"`
	AnalyzeOutput *AnalyzeOutput `json:"analyze_output,omitempty"`
	ReviewOutput  *ReviewOutput  `json:"review_output,omitempty"`
	ComposeOutput *ComposeOutput `json:"compose_output,omitempty"`

	Messages []Message `json:"messages"`

	Error      string `json:"error,omitempty"`
	ErrorStage *Stage `json:"error_stage,omitempty"`

	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// NewState creates the initial state for a run: all outputs unset, status
// Running, iteration count zero. The caller validates maxIterations >= 1
// before the run starts.
func NewState(query string, maxIterations int) *State {
	return &State{
		RunID:          NewID(),
		Query:          query,
		CurrentStage:   StageDispatcher,
		Status:         StatusRunning,
		IterationCount: 0,
		MaxIterations:  maxIterations,
		Messages:       []Message{},
		StartedAt:      time.Now().UTC(),
	}
}

// Failed reports whether an error has been recorded.
func (s *State) Failed() bool { return s.Error != "" }

// HasOutput reports whether the named worker stage has produced its output.
// It returns false for non-worker stages.
func (s *State) HasOutput(stage Stage) bool {
	switch stage {
	case StageGather:
		return s.GatherOutput != nil
	case StageAnalyze:
		return s.AnalyzeOutput != nil
	case StageReview:
		return s.ReviewOutput != nil
	case StageCompose:
		return s.ComposeOutput != nil
	default:
		return false
	}
}

// Clone returns a deep-enough copy of the state for divergence: slice and
// pointer fields are re-headed so appends and overwrites on the clone never
// alias the original. Output records themselves are treated as immutable
// once written, so their pointers are shared.
func (s *State) Clone() *State {
	clone := *s
	clone.Messages = make([]Message, len(s.Messages))
	copy(clone.Messages, s.Messages)
	if s.NextStage != nil {
		next := *s.NextStage
		clone.NextStage = &next
	}
	if s.ErrorStage != nil {
		es := *s.ErrorStage
		clone.ErrorStage = &es
	}
	if s.CompletedAt != nil {
		at := *s.CompletedAt
		clone.CompletedAt = &at
	}
	return &clone
}

// Summary returns a compact view of the state for logging and debugging.
func (s *State) Summary() map[string]any {
	return map[string]any{
		"run_id":        s.RunID,
		"query":         s.Query,
		"status":        s.Status.String(),
		"current_stage": s.CurrentStage.String(),
		"iteration":     s.IterationCount,
		"has_gather":    s.GatherOutput != nil,
		"has_analysis":  s.AnalyzeOutput != nil,
		"has_review":    s.ReviewOutput != nil,
		"has_report":    s.ComposeOutput != nil,
		"message_count": len(s.Messages),
		"error":         s.Error,
	}
}
