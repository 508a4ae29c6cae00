package core

// Role tags a compiled message with its conversational position.
type Role string

const (
	// RoleSystem carries the compiled system prompt.
	RoleSystem Role = "system"
	// RoleUser carries user input and other-agent speech.
	RoleUser Role = "user"
	// RoleAssistant carries the target agent's own prior messages.
	RoleAssistant Role = "assistant"
	// RoleTool carries tool results, where the provider supports the role.
	RoleTool Role = "tool"
)

// Message is a single role-tagged entry in a compiled message sequence,
// ready for a model invocation.
type Message struct {
	Role       Role   `json:"role"`
	Name       string `json:"name,omitempty"`
	Content    string `json:"content"`
	ToolCallID string `json:"tool_call_id,omitempty"`
}

// ModelRules captures the formatting quirks of a model provider that the
// message compiler must respect. They describe capabilities, not policy: the
// compiler decides how to degrade when a capability is absent.
type ModelRules struct {
	// Name labels the rule set, e.g. "anthropic" or "openai".
	Name string
	// SystemRole reports whether the provider accepts a dedicated system
	// message. When false the system prompt is folded into the first user
	// message.
	SystemRole bool
	// RequireUserFirst reports whether the conversation must open with a
	// user message after any system prompt.
	RequireUserFirst bool
	// ToolRole reports whether the provider has a distinct role for tool
	// results. When false they are rendered as user messages.
	ToolRole bool
	// SpeakerNames reports whether per-message speaker names are accepted;
	// when false the compiler prefixes other speakers inline.
	SpeakerNames bool
}

// DefaultRules returns a permissive rule set suitable for tests and for
// composite agents that never reach a model directly.
func DefaultRules() ModelRules {
	return ModelRules{Name: "default", SystemRole: true, ToolRole: true}
}

// MessageCompiler converts an ordered event sequence plus a system prompt
// into the final message sequence for one agent's model invocation. It is
// the single integration point between the event log and the model boundary;
// implementations live outside core so they can be swapped.
type MessageCompiler interface {
	Compile(target Agent, events []Event, rules ModelRules, systemPrompt string) ([]Message, error)
}
