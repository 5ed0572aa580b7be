package model

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockModelCannedResponse(t *testing.T) {
	m := NewMockModel("test", "mock")
	m.AddResponse("specific prompt", "specific answer")
	m.SetFallback("fallback answer")

	resp, err := m.Complete(context.Background(), Request{Prompt: "specific prompt"})
	require.NoError(t, err)
	assert.Equal(t, "specific answer", resp.Text)
	assert.Equal(t, "stop", resp.FinishReason)

	resp, err = m.Complete(context.Background(), Request{Prompt: "anything else"})
	require.NoError(t, err)
	assert.Equal(t, "fallback answer", resp.Text)
}

func TestMockModelDefaultEcho(t *testing.T) {
	m := NewMockModel("test", "mock")
	resp, err := m.Complete(context.Background(), Request{Prompt: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "Mock response to: hello", resp.Text)
}

func TestMockModelError(t *testing.T) {
	m := NewMockModel("test", "mock")
	m.SetError(fmt.Errorf("quota exceeded"))

	_, err := m.Complete(context.Background(), Request{Prompt: "hello"})
	assert.EqualError(t, err, "quota exceeded")

	m.SetError(nil)
	_, err = m.Complete(context.Background(), Request{Prompt: "hello"})
	assert.NoError(t, err)
}

func TestMockModelContextCancelled(t *testing.T) {
	m := NewMockModel("test", "mock")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Complete(ctx, Request{Prompt: "hello"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMockModelInfo(t *testing.T) {
	m := NewMockModel("test-model", "mock")
	info := m.Info()
	assert.Equal(t, "test-model", info.Name)
	assert.Equal(t, "mock", info.Provider)
}
