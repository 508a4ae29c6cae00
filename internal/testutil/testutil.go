// Package testutil provides builders shared by tests: a scripted stub agent
// and shorthand event constructors.
package testutil

import (
	"github.com/hupe1980/teamflow/core"
)

// StubAgent is a minimal core.Agent whose Run only records the call. Its
// identity derives from its name, so two stubs with the same name share an
// identity just like real agents.
type StubAgent struct {
	AgentName string
	Prompt    string
	RunCalls  int
	RunErr    error
	OnRun     func(rc *core.RunContext) error
}

// NewStubAgent creates a stub with the given name.
func NewStubAgent(name string) *StubAgent {
	return &StubAgent{AgentName: name}
}

// ID implements core.Agent.
func (s *StubAgent) ID() string { return core.Identity("stub", s.AgentName) }

// Name implements core.Agent.
func (s *StubAgent) Name() string { return s.AgentName }

// Description implements core.Agent.
func (s *StubAgent) Description() string { return "" }

// GetPrompt implements core.Agent.
func (s *StubAgent) GetPrompt(rc *core.RunContext) (string, error) { return s.Prompt, nil }

// Rules implements core.Agent.
func (s *StubAgent) Rules() core.ModelRules { return core.DefaultRules() }

// Run implements core.Agent.
func (s *StubAgent) Run(rc *core.RunContext) error {
	s.RunCalls++
	if s.OnRun != nil {
		return s.OnRun(rc)
	}
	return s.RunErr
}

// Ref returns the stub's AgentRef.
func (s *StubAgent) Ref() core.AgentRef { return core.Ref(s) }

// MessageEvent builds an agent-message event owned by a.
func MessageEvent(a core.Agent, content string) core.Event {
	return core.NewAgentMessageEvent(core.Ref(a), content)
}

// ToolResultEvent builds a tool-result event owned by a with the given
// end-turn flag.
func ToolResultEvent(a core.Agent, endTurn bool) core.Event {
	return core.NewToolResultEvent(core.Ref(a), core.ToolResult{
		Tool:    "lookup",
		Result:  "42",
		EndTurn: endTurn,
	})
}
