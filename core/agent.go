package core

// Agent is the capability interface shared by every actor in a run: plain
// model-backed agents and teams alike. A team satisfies Agent too, which is
// how nesting works: a team's member list may contain further teams, and
// delegation recurses through the same interface.
//
// Implementations must:
//   - Derive ID deterministically from their semantic fields (see Identity)
//   - Register themselves on the RunContext when they run
//   - Respect cancellation of the RunContext's ambient context.Context
type Agent interface {
	// ID returns the content-derived identifier for this agent. Two agents
	// with identical semantic fields are interchangeable for identity
	// purposes and report the same ID.
	ID() string

	// Name returns the display name.
	Name() string

	// Description returns a short description of the agent's purpose.
	Description() string

	// GetPrompt renders the agent's prompt contribution for the current run.
	// An empty result is dropped from the compiled system prompt.
	GetPrompt(rc *RunContext) (string, error)

	// Rules returns the formatting rules of the model backing this agent.
	// Composite agents that never invoke a model return DefaultRules().
	Rules() ModelRules

	// Run executes one turn for this agent against the given run context.
	Run(rc *RunContext) error
}

// Ref builds an AgentRef for the given agent, for stamping events.
func Ref(a Agent) AgentRef {
	return AgentRef{ID: a.ID(), Name: a.Name()}
}
