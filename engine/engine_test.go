package engine

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/researchmesh/checkpoint"
	"github.com/hupe1980/researchmesh/core"
	"github.com/hupe1980/researchmesh/stage"
)

// Scripted collaborators let each scenario control stage outcomes while the
// real dispatcher and worker handlers run unmodified.

type scriptedGatherer struct {
	calls int
	err   error
}

func (s *scriptedGatherer) Gather(_ context.Context, topic string) (*core.GatherOutput, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &core.GatherOutput{
		Topic:      topic,
		Sources:    []core.Source{{Title: "src", URL: "https://example.com", Content: "content"}},
		RawContent: "content",
	}, nil
}

type scriptedAnalyst struct {
	calls     int
	panicking bool
	feedbacks []string
}

func (s *scriptedAnalyst) Analyze(_ context.Context, gathered *core.GatherOutput, priorFeedback string) (*core.AnalyzeOutput, error) {
	s.calls++
	if s.panicking {
		panic("analyst exploded")
	}
	s.feedbacks = append(s.feedbacks, priorFeedback)
	return &core.AnalyzeOutput{
		Topic:        gathered.Topic,
		Summary:      fmt.Sprintf("analysis pass %d", s.calls),
		KeyPoints:    []core.KeyPoint{{Point: "finding", Confidence: core.ConfidenceHigh}},
		QualityScore: 0.8,
	}, nil
}

type scriptedReviewer struct {
	calls    int
	verdicts []bool // consumed in order; last value repeats
}

func (s *scriptedReviewer) Review(_ context.Context, _ *core.AnalyzeOutput) (*core.ReviewOutput, error) {
	idx := s.calls
	s.calls++
	if idx >= len(s.verdicts) {
		idx = len(s.verdicts) - 1
	}
	approved := s.verdicts[idx]
	out := &core.ReviewOutput{Approved: approved, QualityScore: 0.9}
	if !approved {
		out.QualityScore = 0.4
		out.Weaknesses = []string{"needs depth"}
	}
	return out, nil
}

type scriptedWriter struct {
	calls int
}

func (s *scriptedWriter) Compose(_ context.Context, analysis *core.AnalyzeOutput, _ *core.ReviewOutput) (*core.ComposeOutput, error) {
	s.calls++
	return &core.ComposeOutput{
		Title:            "Report: " + analysis.Topic,
		Topic:            analysis.Topic,
		ExecutiveSummary: analysis.Summary,
	}, nil
}

type pipeline struct {
	gatherer *scriptedGatherer
	analyst  *scriptedAnalyst
	reviewer *scriptedReviewer
	writer   *scriptedWriter
	registry *stage.Registry
}

func newPipeline(verdicts ...bool) *pipeline {
	if len(verdicts) == 0 {
		verdicts = []bool{true}
	}
	p := &pipeline{
		gatherer: &scriptedGatherer{},
		analyst:  &scriptedAnalyst{},
		reviewer: &scriptedReviewer{verdicts: verdicts},
		writer:   &scriptedWriter{},
	}
	p.registry = stage.NewRegistryFromHandlers(
		stage.NewDispatcherHandler(),
		stage.NewGatherHandler(p.gatherer),
		stage.NewAnalyzeHandler(p.analyst),
		stage.NewReviewHandler(p.reviewer),
		stage.NewComposeHandler(p.writer),
	)
	return p
}

func compile(t *testing.T, p *pipeline, optFns ...func(o *Options)) *Executable {
	t.Helper()
	x, err := New(p.registry, optFns...).Compile()
	require.NoError(t, err)
	return x
}

func TestRunApprovedFirstPass(t *testing.T) {
	p := newPipeline(true)
	x := compile(t, p)

	st, err := x.Run(context.Background(), "quantum computing", 3)
	require.NoError(t, err)

	assert.Equal(t, core.StatusCompleted, st.Status)
	assert.Equal(t, 0, st.IterationCount)
	require.NotNil(t, st.ComposeOutput)
	assert.Equal(t, "Report: quantum computing", st.ComposeOutput.Title)
	assert.Empty(t, st.Error)
	assert.NotNil(t, st.CompletedAt)

	assert.Equal(t, 1, p.gatherer.calls)
	assert.Equal(t, 1, p.analyst.calls)
	assert.Equal(t, 1, p.reviewer.calls)
	assert.Equal(t, 1, p.writer.calls)
}

func TestRunSingleRevisionThenApproval(t *testing.T) {
	p := newPipeline(false, true)
	x := compile(t, p)

	st, err := x.Run(context.Background(), "ai regulation", 3)
	require.NoError(t, err)

	assert.Equal(t, core.StatusCompleted, st.Status)
	assert.Equal(t, 1, st.IterationCount)
	assert.Equal(t, 2, p.analyst.calls)
	assert.Equal(t, 2, p.reviewer.calls)
	assert.Equal(t, 1, p.gatherer.calls)

	// The second analysis pass carried the reviewer's objections.
	require.Len(t, p.analyst.feedbacks, 2)
	assert.Empty(t, p.analyst.feedbacks[0])
	assert.Contains(t, p.analyst.feedbacks[1], "needs depth")

	require.NotNil(t, st.AnalyzeOutput)
	assert.Equal(t, 1, st.AnalyzeOutput.Revision)
}

func TestRunForcedComposeAfterExhaustion(t *testing.T) {
	p := newPipeline(false) // reviewer never approves
	x := compile(t, p)

	st, err := x.Run(context.Background(), "fusion energy", 2)
	require.NoError(t, err)

	// Exhaustion forces forward progress: the run still completes.
	assert.Equal(t, core.StatusCompleted, st.Status)
	assert.Equal(t, 2, st.IterationCount)
	require.NotNil(t, st.ComposeOutput)
	assert.Empty(t, st.Error)

	assert.Equal(t, 3, p.analyst.calls)
	assert.Equal(t, 3, p.reviewer.calls)
	assert.Equal(t, 1, p.writer.calls)
}

func TestRunGatherFailure(t *testing.T) {
	p := newPipeline(true)
	p.gatherer.err = fmt.Errorf("search API unavailable")
	x := compile(t, p)

	st, err := x.Run(context.Background(), "doomed query", 3)
	require.NoError(t, err)

	assert.Equal(t, core.StatusFailed, st.Status)
	assert.Contains(t, st.Error, "search API unavailable")
	require.NotNil(t, st.ErrorStage)
	assert.Equal(t, core.StageGather, *st.ErrorStage)
	assert.Nil(t, st.ComposeOutput)
	assert.NotNil(t, st.CompletedAt)

	// Downstream stages never ran.
	assert.Equal(t, 0, p.analyst.calls)
	assert.Equal(t, 0, p.reviewer.calls)
	assert.Equal(t, 0, p.writer.calls)
}

func TestRunPanicIsContained(t *testing.T) {
	p := newPipeline(true)
	p.analyst.panicking = true
	x := compile(t, p)

	st, err := x.Run(context.Background(), "volatile topic", 3)
	require.NoError(t, err)

	assert.Equal(t, core.StatusFailed, st.Status)
	assert.Contains(t, st.Error, "analyst exploded")
	require.NotNil(t, st.ErrorStage)
	assert.Equal(t, core.StageAnalyze, *st.ErrorStage)
}

// noopHandler simulates a worker that returns neither output nor error,
// which the dispatcher must treat as a contract violation.
type noopHandler struct{ s core.Stage }

func (h noopHandler) Stage() core.Stage { return h.s }
func (h noopHandler) Handle(context.Context, *core.State) (core.Update, error) {
	return core.Update{}, nil
}

func TestRunContractViolation(t *testing.T) {
	p := newPipeline(true)
	p.registry.Register(noopHandler{s: core.StageGather})
	x := compile(t, p)

	st, err := x.Run(context.Background(), "silent worker", 3)
	require.NoError(t, err)

	assert.Equal(t, core.StatusFailed, st.Status)
	assert.Contains(t, st.Error, "gather")
	require.NotNil(t, st.ErrorStage)
	assert.Equal(t, core.StageGather, *st.ErrorStage)
}

func TestCompileMissingHandler(t *testing.T) {
	registry := stage.NewRegistryFromHandlers(
		stage.NewDispatcherHandler(),
		// no worker handlers
	)

	_, err := New(registry).Compile()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestRunArgumentValidation(t *testing.T) {
	x := compile(t, newPipeline(true))

	_, err := x.Run(context.Background(), "topic", 0)
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = x.Run(context.Background(), "", 3)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestRunCheckpoints(t *testing.T) {
	store := checkpoint.NewInMemoryStore()
	p := newPipeline(true)
	x := compile(t, p, func(o *Options) { o.Checkpoints = store })

	st, err := x.Run(context.Background(), "checkpointed topic", 3)
	require.NoError(t, err)
	require.Equal(t, core.StatusCompleted, st.Status)

	saved, err := store.Get(st.RunID)
	require.NoError(t, err)
	assert.Equal(t, st.RunID, saved.RunID)
	assert.NotNil(t, saved.ComposeOutput)
}

func TestRunMessageLogOrdering(t *testing.T) {
	p := newPipeline(true)
	x := compile(t, p)

	st, err := x.Run(context.Background(), "ordered topic", 3)
	require.NoError(t, err)

	require.NotEmpty(t, st.Messages)
	// First message is the dispatcher's initial instruction to gather.
	assert.Equal(t, core.StageDispatcher, st.Messages[0].Sender)
	assert.Equal(t, core.StageGather, st.Messages[0].Recipient)
	assert.Equal(t, core.KindInstruction, st.Messages[0].Kind)
	// Last message marks completion.
	last := st.Messages[len(st.Messages)-1]
	assert.Equal(t, core.StageTerminal, last.Recipient)
}

func TestRunStepBudgetGuard(t *testing.T) {
	// A dispatcher that always re-routes to gather would loop forever without
	// the step budget.
	registry := stage.NewRegistryFromHandlers(
		loopingDispatcher{},
		stage.NewGatherHandler(&scriptedGatherer{}),
		stage.NewAnalyzeHandler(&scriptedAnalyst{}),
		stage.NewReviewHandler(&scriptedReviewer{verdicts: []bool{true}}),
		stage.NewComposeHandler(&scriptedWriter{}),
	)
	x, err := New(registry, func(o *Options) { o.MaxSteps = 10 }).Compile()
	require.NoError(t, err)

	st, err := x.Run(context.Background(), "looping topic", 3)
	require.NoError(t, err)
	assert.Equal(t, core.StatusFailed, st.Status)
	assert.Contains(t, st.Error, "step budget")
}

type loopingDispatcher struct{}

func (loopingDispatcher) Stage() core.Stage { return core.StageDispatcher }
func (loopingDispatcher) Handle(_ context.Context, _ *core.State) (core.Update, error) {
	gather := core.StageGather
	return core.Update{NextStage: &gather}, nil
}
