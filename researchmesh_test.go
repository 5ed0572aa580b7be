package researchmesh

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/researchmesh/config"
	"github.com/hupe1980/researchmesh/core"
	"github.com/hupe1980/researchmesh/model"
	"github.com/hupe1980/researchmesh/search"
)

type stubSearcher struct{}

func (stubSearcher) Search(_ context.Context, query string) (*search.Response, error) {
	return &search.Response{
		Query: query,
		Results: []search.Result{
			{Title: "Hit", URL: "https://example.com", Content: "strong growth and record profit", Score: 0.9},
		},
	}, nil
}

func approvingModel() *model.MockModel {
	m := model.NewMockModel("mock", "mock")
	m.SetFallback(`{
		"summary": "Material shows growth.",
		"key_points": [{"point": "Growth is real", "confidence": "high"}],
		"approved": true,
		"quality_score": 0.9,
		"title": "Report",
		"executive_summary": "Growth everywhere.",
		"sections": [{"title": "Findings", "content": "Growth."}]
	}`)
	return m
}

func TestEndToEndWithMockBackends(t *testing.T) {
	cfg := config.Default()
	cfg.Provider = config.ProviderMock

	mesh, err := New(func(o *Options) {
		o.Config = cfg
		o.Model = approvingModel()
		o.Searcher = stubSearcher{}
	})
	require.NoError(t, err)

	st, err := mesh.Research(context.Background(), "fusion energy")
	require.NoError(t, err)

	assert.Equal(t, core.StatusCompleted, st.Status)
	require.NotNil(t, st.ComposeOutput)
	assert.NotEmpty(t, st.ComposeOutput.Markdown())
	// Report sources come from the gathered material.
	assert.Contains(t, st.ComposeOutput.Sources[0], "https://example.com")

	// The checkpoint store holds the run's latest snapshot.
	saved, err := mesh.Checkpoints().Get(st.RunID)
	require.NoError(t, err)
	assert.Equal(t, st.RunID, saved.RunID)
}

func TestResearchWithIterationsOverride(t *testing.T) {
	cfg := config.Default()
	cfg.Provider = config.ProviderMock

	mesh, err := New(func(o *Options) {
		o.Config = cfg
		o.Model = approvingModel()
		o.Searcher = stubSearcher{}
	})
	require.NoError(t, err)

	_, err = mesh.ResearchWithIterations(context.Background(), "topic", 0)
	assert.Error(t, err)

	st, err := mesh.ResearchWithIterations(context.Background(), "topic", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, st.MaxIterations)
}

func TestNewRequiresSearchCredentials(t *testing.T) {
	cfg := config.Default()
	cfg.Provider = config.ProviderMock

	mesh, err := New(func(o *Options) {
		o.Config = cfg
		o.Model = approvingModel()
		// no searcher override and no search API key
	})
	require.NoError(t, err) // construction is lazy

	st, err := mesh.Research(context.Background(), "topic")
	require.Error(t, err)
	assert.Nil(t, st)
	assert.Contains(t, err.Error(), "search API key")
}

func TestRegistryResetRebuildsHandlers(t *testing.T) {
	cfg := config.Default()
	cfg.Provider = config.ProviderMock

	mesh, err := New(func(o *Options) {
		o.Config = cfg
		o.Model = approvingModel()
		o.Searcher = stubSearcher{}
	})
	require.NoError(t, err)

	_, err = mesh.Research(context.Background(), "first")
	require.NoError(t, err)

	mesh.Registry().Reset()

	st, err := mesh.Research(context.Background(), "second")
	require.NoError(t, err)
	assert.Equal(t, core.StatusCompleted, st.Status)
}
