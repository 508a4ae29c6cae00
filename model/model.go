// Package model defines the boundary to language model providers. Agents
// drive generation through the Model interface; the anthropic and openai
// subpackages adapt the official SDKs to it.
package model

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/teamflow/core"
)

// ToolCall represents a function call request surfaced by a model provider,
// unified across vendors so downstream logic does not need per-provider
// branching.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"` // JSON string of arguments
}

// Request captures the normalized model input produced by an agent's turn.
type Request struct {
	Messages []core.Message `json:"messages"`
	Tools    []core.Tool    `json:"tools,omitempty"`
}

// Response is the completed output of a model invocation.
type Response struct {
	Content   string     `json:"content"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"` // "openai", "anthropic", "mock", etc.
	SupportsTools bool   `json:"supports_tools"`
}

// Model is the minimal interface required by agents to drive generation.
type Model interface {
	Generate(ctx context.Context, req Request) (*Response, error)

	// Info returns information about the model implementation.
	Info() Info
}

// MockModel is a lightweight in-memory Model useful for tests & examples.
// It answers with a canned completion keyed by the last message's content,
// falling back to a deterministic echo. Safe for concurrent use, so it can
// back runs driven through the asynchronous entry points.
type MockModel struct {
	info Info

	mu        sync.Mutex
	responses map[string]string
	requests  []Request
}

// NewMockModel constructs a MockModel.
func NewMockModel(name string) *MockModel {
	return &MockModel{
		info:      Info{Name: name, Provider: "mock", SupportsTools: true},
		responses: map[string]string{},
	}
}

// AddResponse registers a deterministic canned completion for an input.
func (m *MockModel) AddResponse(input, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[input] = response
}

// Requests returns a copy of every request seen so far, in order.
func (m *MockModel) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Request(nil), m.requests...)
}

// Generate implements Model.
func (m *MockModel) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(req.Messages) == 0 {
		return nil, fmt.Errorf("no messages provided")
	}
	last := req.Messages[len(req.Messages)-1]

	m.mu.Lock()
	m.requests = append(m.requests, req)
	canned, ok := m.responses[last.Content]
	m.mu.Unlock()

	if ok {
		return &Response{Content: canned}, nil
	}
	return &Response{Content: fmt.Sprintf("Mock response to: %s", last.Content)}, nil
}

// Info implements Model.
func (m *MockModel) Info() Info { return m.info }
