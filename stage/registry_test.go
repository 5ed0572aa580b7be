package stage

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/researchmesh/core"
)

func TestRegistryLazyBuildOnce(t *testing.T) {
	builds := 0
	r := NewRegistry(func() (map[core.Stage]Handler, error) {
		builds++
		return map[core.Stage]Handler{
			core.StageDispatcher: NewDispatcherHandler(),
		}, nil
	})

	_, err := r.Handler(core.StageDispatcher)
	require.NoError(t, err)
	_, err = r.Handler(core.StageDispatcher)
	require.NoError(t, err)

	assert.Equal(t, 1, builds)
}

func TestRegistryResetRebuilds(t *testing.T) {
	builds := 0
	r := NewRegistry(func() (map[core.Stage]Handler, error) {
		builds++
		return map[core.Stage]Handler{
			core.StageDispatcher: NewDispatcherHandler(),
		}, nil
	})

	_, err := r.Handlers()
	require.NoError(t, err)
	r.Reset()
	_, err = r.Handlers()
	require.NoError(t, err)

	assert.Equal(t, 2, builds)
}

func TestRegistryBuilderError(t *testing.T) {
	r := NewRegistry(func() (map[core.Stage]Handler, error) {
		return nil, fmt.Errorf("missing credentials")
	})

	_, err := r.Handlers()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing credentials")
}

func TestRegistryRegisterOverrides(t *testing.T) {
	r := NewRegistryFromHandlers(NewDispatcherHandler())

	replacement := NewDispatcherHandler()
	r.Register(replacement)

	h, err := r.Handler(core.StageDispatcher)
	require.NoError(t, err)
	assert.Same(t, replacement, h)
}

func TestRegistryUnknownStage(t *testing.T) {
	r := NewRegistryFromHandlers(NewDispatcherHandler())

	_, err := r.Handler(core.StageGather)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gather")
}

func TestRegistryHandlersReturnsCopy(t *testing.T) {
	r := NewRegistryFromHandlers(NewDispatcherHandler())

	m, err := r.Handlers()
	require.NoError(t, err)
	delete(m, core.StageDispatcher)

	_, err = r.Handler(core.StageDispatcher)
	assert.NoError(t, err)
}
