// Package model defines the narrow language-model contract the research
// collaborators depend on, decoupled from any vendor SDK. Adapters for the
// Anthropic and OpenAI APIs live in subpackages; tests use MockModel.
package model

import (
	"context"
	"fmt"
)

// Request captures one normalized completion request. Collaborators build a
// system instruction plus a single prompt; multi-turn conversation state is
// out of scope for the pipeline's glue calls.
type Request struct {
	System string `json:"system,omitempty"`
	Prompt string `json:"prompt"`
}

// Usage captures token usage statistics for a response.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is a completed (non-streaming) model turn.
type Response struct {
	Text         string `json:"text"`
	FinishReason string `json:"finish_reason"` // "stop", "length", etc.
	Usage        *Usage `json:"usage,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "openai", "anthropic", "mock", etc.
}

// Model is the minimal interface collaborators require to drive generation.
type Model interface {
	Complete(ctx context.Context, req Request) (*Response, error)

	// Info returns information about the model implementation.
	Info() Info
}

// MockModel is a lightweight in-memory Model useful for tests & examples.
type MockModel struct {
	info      Info
	responses map[string]string
	fallback  string
	err       error
}

// NewMockModel constructs a MockModel identified by name and provider.
func NewMockModel(name, provider string) *MockModel {
	return &MockModel{
		info:      Info{Name: name, Provider: provider},
		responses: make(map[string]string),
	}
}

// AddResponse registers a deterministic canned completion for a prompt.
func (m *MockModel) AddResponse(prompt, response string) { m.responses[prompt] = response }

// SetFallback sets the completion returned for unregistered prompts.
func (m *MockModel) SetFallback(response string) { m.fallback = response }

// SetError makes every Complete call fail with err. Pass nil to clear.
func (m *MockModel) SetError(err error) { m.err = err }

// Complete implements Model.
func (m *MockModel) Complete(ctx context.Context, req Request) (*Response, error) {
	if m.err != nil {
		return nil, m.err
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	text, ok := m.responses[req.Prompt]
	if !ok {
		text = m.fallback
	}
	if text == "" {
		text = fmt.Sprintf("Mock response to: %s", req.Prompt)
	}
	return &Response{Text: text, FinishReason: "stop"}, nil
}

// Info implements Model.
func (m *MockModel) Info() Info { return m.info }
