package core

import "time"

// Update is the partial record a stage returns: only the fields the stage is
// authorized to write are set. Absent fields (nil pointers, empty slices)
// leave the merged state untouched, so absence is distinguishable from a
// zero value.
type Update struct {
	NextStage *Stage
	Status    *Status

	// IterationCount merges with max semantics; duplicate or out-of-order
	// deliveries of the same increment are idempotent.
	IterationCount *int

	GatherOutput  *GatherOutput
	AnalyzeOutput *AnalyzeOutput
	ReviewOutput  *ReviewOutput
	ComposeOutput *ComposeOutput

	// ClearAnalyze drops the current analysis so a revision pass recomputes
	// it. Only the dispatcher sets this, together with the iteration bump.
	ClearAnalyze bool

	// Messages are appended to the log in the order given.
	Messages []Message

	// Error / ErrorStage follow first-write-wins: once the state carries an
	// error it is never overwritten or cleared within the run.
	Error      string
	ErrorStage *Stage

	CompletedAt *time.Time
}

// Empty reports whether the update would leave any merged state unchanged.
func (u Update) Empty() bool {
	return u.NextStage == nil && u.Status == nil && u.IterationCount == nil &&
		u.GatherOutput == nil && u.AnalyzeOutput == nil && u.ReviewOutput == nil &&
		u.ComposeOutput == nil && !u.ClearAnalyze && len(u.Messages) == 0 &&
		u.Error == "" && u.CompletedAt == nil
}

// FailureUpdate builds the canonical fatal update for a stage-level failure:
// error + error stage recorded, status Failed, an error message appended to
// the log. The router short-circuits to Terminal when it sees the error set.
func FailureUpdate(stage Stage, errMsg string) Update {
	failed := StatusFailed
	es := stage
	return Update{
		Status:     &failed,
		Error:      errMsg,
		ErrorStage: &es,
		Messages: []Message{
			NewMessage(stage, StageDispatcher, KindError, errMsg),
		},
	}
}

// Apply merges an update into prev using the field-specific reducers and
// returns a fresh state; prev is never mutated. Reducers:
//
//   - Messages: append-only concatenation preserving order
//   - IterationCount: max(prev, update), monotonically non-decreasing
//   - Error / ErrorStage: first write wins, never reset
//   - everything else: last write wins
func Apply(prev *State, u Update) *State {
	next := prev.Clone()

	if u.NextStage != nil {
		ns := *u.NextStage
		next.NextStage = &ns
	}
	if u.Status != nil {
		next.Status = *u.Status
	}
	if u.IterationCount != nil && *u.IterationCount > next.IterationCount {
		next.IterationCount = *u.IterationCount
	}
	if u.GatherOutput != nil {
		next.GatherOutput = u.GatherOutput
	}
	if u.AnalyzeOutput != nil {
		next.AnalyzeOutput = u.AnalyzeOutput
	}
	if u.ClearAnalyze && u.AnalyzeOutput == nil {
		next.AnalyzeOutput = nil
	}
	if u.ReviewOutput != nil {
		next.ReviewOutput = u.ReviewOutput
	}
	if u.ComposeOutput != nil {
		next.ComposeOutput = u.ComposeOutput
	}
	if len(u.Messages) > 0 {
		next.Messages = append(next.Messages, u.Messages...)
	}
	if u.Error != "" && next.Error == "" {
		next.Error = u.Error
		if u.ErrorStage != nil {
			es := *u.ErrorStage
			next.ErrorStage = &es
		}
	}
	if u.CompletedAt != nil {
		at := *u.CompletedAt
		next.CompletedAt = &at
	}
	return next
}
