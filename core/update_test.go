package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyMessagesAppendOnly(t *testing.T) {
	st := NewState("topic", 3)
	st = Apply(st, Update{Messages: []Message{
		NewMessage(StageDispatcher, StageGather, KindInstruction, "first"),
	}})
	st = Apply(st, Update{Messages: []Message{
		NewMessage(StageGather, StageDispatcher, KindData, "second"),
	}})

	require.Len(t, st.Messages, 2)
	assert.Equal(t, "first", st.Messages[0].Content)
	assert.Equal(t, "second", st.Messages[1].Content)
}

func TestApplyIterationCountMaxMerge(t *testing.T) {
	tests := []struct {
		name     string
		current  int
		update   int
		expected int
	}{
		{name: "increment applies", current: 1, update: 2, expected: 2},
		{name: "duplicate delivery is idempotent", current: 2, update: 2, expected: 2},
		{name: "stale value never decrements", current: 3, update: 1, expected: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := NewState("topic", 5)
			st.IterationCount = tt.current
			st = Apply(st, Update{IterationCount: &tt.update})
			assert.Equal(t, tt.expected, st.IterationCount)
		})
	}
}

func TestApplyErrorFirstWriteWins(t *testing.T) {
	st := NewState("topic", 3)
	st = Apply(st, FailureUpdate(StageGather, "search unavailable"))
	st = Apply(st, FailureUpdate(StageAnalyze, "later failure"))

	assert.Equal(t, "search unavailable", st.Error)
	require.NotNil(t, st.ErrorStage)
	assert.Equal(t, StageGather, *st.ErrorStage)
}

func TestApplyClearAnalyze(t *testing.T) {
	st := NewState("topic", 3)
	st.AnalyzeOutput = &AnalyzeOutput{Topic: "topic", Summary: "v1"}

	st = Apply(st, Update{ClearAnalyze: true})
	assert.Nil(t, st.AnalyzeOutput)
}

func TestApplyClearAnalyzeDoesNotDropFreshOutput(t *testing.T) {
	st := NewState("topic", 3)
	st.AnalyzeOutput = &AnalyzeOutput{Topic: "topic", Summary: "v1"}

	fresh := &AnalyzeOutput{Topic: "topic", Summary: "v2", Revision: 1}
	st = Apply(st, Update{ClearAnalyze: true, AnalyzeOutput: fresh})

	require.NotNil(t, st.AnalyzeOutput)
	assert.Equal(t, "v2", st.AnalyzeOutput.Summary)
}

func TestApplyLastWriteWinsFields(t *testing.T) {
	st := NewState("topic", 3)

	gather := StageGather
	analyze := StageAnalyze
	st = Apply(st, Update{NextStage: &gather})
	st = Apply(st, Update{NextStage: &analyze})
	require.NotNil(t, st.NextStage)
	assert.Equal(t, StageAnalyze, *st.NextStage)

	st = Apply(st, Update{ReviewOutput: &ReviewOutput{Approved: false, QualityScore: 0.4}})
	st = Apply(st, Update{ReviewOutput: &ReviewOutput{Approved: true, QualityScore: 0.9}})
	assert.True(t, st.ReviewOutput.Approved)
}

func TestApplyDoesNotMutatePrev(t *testing.T) {
	prev := NewState("topic", 3)
	prev = Apply(prev, Update{Messages: []Message{
		NewMessage(StageDispatcher, StageGather, KindInstruction, "go"),
	}})

	iter := 2
	next := Apply(prev, Update{
		IterationCount: &iter,
		Messages:       []Message{NewMessage(StageGather, StageDispatcher, KindData, "done")},
		GatherOutput:   &GatherOutput{Topic: "topic"},
	})

	assert.Equal(t, 0, prev.IterationCount)
	assert.Len(t, prev.Messages, 1)
	assert.Nil(t, prev.GatherOutput)

	assert.Equal(t, 2, next.IterationCount)
	assert.Len(t, next.Messages, 2)
	assert.NotNil(t, next.GatherOutput)
}

func TestApplyCompletedAt(t *testing.T) {
	st := NewState("topic", 3)
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	st = Apply(st, Update{CompletedAt: &at})
	require.NotNil(t, st.CompletedAt)
	assert.Equal(t, at, *st.CompletedAt)
}

func TestFailureUpdate(t *testing.T) {
	u := FailureUpdate(StageReview, "model timeout")

	require.NotNil(t, u.Status)
	assert.Equal(t, StatusFailed, *u.Status)
	assert.Equal(t, "model timeout", u.Error)
	require.NotNil(t, u.ErrorStage)
	assert.Equal(t, StageReview, *u.ErrorStage)
	require.Len(t, u.Messages, 1)
	assert.Equal(t, KindError, u.Messages[0].Kind)
}

func TestUpdateEmpty(t *testing.T) {
	assert.True(t, Update{}.Empty())

	s := StageGather
	assert.False(t, Update{NextStage: &s}.Empty())
	assert.False(t, Update{ClearAnalyze: true}.Empty())
	assert.False(t, Update{Error: "x"}.Empty())
}
