package router

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hupe1980/researchmesh/core"
	"github.com/hupe1980/researchmesh/internal/testutil"
)

func TestNextErrorShortCircuit(t *testing.T) {
	st := testutil.NewStateBuilder().
		Failed(core.StageGather, "search unavailable").
		Build()

	for _, s := range []core.Stage{
		core.StageDispatcher, core.StageGather, core.StageAnalyze,
		core.StageReview, core.StageCompose,
	} {
		assert.Equal(t, core.StageTerminal, Next(s, st), s.String())
	}
}

func TestFromDispatcher(t *testing.T) {
	tests := []struct {
		name     string
		st       *core.State
		expected core.Stage
	}{
		{
			name:     "no decision ends the run",
			st:       testutil.NewStateBuilder().Build(),
			expected: core.StageTerminal,
		},
		{
			name:     "dispatch decision is followed",
			st:       testutil.NewStateBuilder().Dispatched(core.StageGather).Build(),
			expected: core.StageGather,
		},
		{
			name: "completed status wins over decision",
			st: testutil.NewStateBuilder().
				Dispatched(core.StageCompose).
				Status(core.StatusCompleted).
				Build(),
			expected: core.StageTerminal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FromDispatcher(tt.st))
		})
	}
}

func TestAfterWorkerAlwaysReturnsToDispatcher(t *testing.T) {
	st := testutil.NewStateBuilder().Gathered(1).Build()
	for _, s := range core.WorkerStages {
		assert.Equal(t, core.StageDispatcher, AfterWorker(s, st), s.String())
	}
}

func TestCanEnter(t *testing.T) {
	tests := []struct {
		name    string
		stage   core.Stage
		st      *core.State
		wantErr bool
	}{
		{name: "gather needs nothing", stage: core.StageGather, st: testutil.NewStateBuilder().Build()},
		{name: "analyze without gather output", stage: core.StageAnalyze, st: testutil.NewStateBuilder().Build(), wantErr: true},
		{name: "analyze with gather output", stage: core.StageAnalyze, st: testutil.NewStateBuilder().Gathered(1).Build()},
		{name: "review without analysis", stage: core.StageReview, st: testutil.NewStateBuilder().Gathered(1).Build(), wantErr: true},
		{name: "review with analysis", stage: core.StageReview, st: testutil.NewStateBuilder().Gathered(1).Analyzed().Build()},
		{name: "compose without review", stage: core.StageCompose, st: testutil.NewStateBuilder().Gathered(1).Analyzed().Build(), wantErr: true},
		{name: "compose fully provisioned", stage: core.StageCompose, st: testutil.NewStateBuilder().Gathered(1).Analyzed().Reviewed(true).Build()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanEnter(tt.stage, tt.st)
			if tt.wantErr {
				assert.ErrorIs(t, err, core.ErrPreconditionUnmet)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
