package core

import (
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// Kind discriminates the payload carried by an Event. The scheduler only
// cares about KindToolResult and KindAgentMessage; the remaining kinds exist
// so the full conversation can be reconstructed from the log.
type Kind string

const (
	// KindAgentMessage is a message authored by an agent during its turn.
	KindAgentMessage Kind = "agent-message"
	// KindToolResult records the outcome of a tool call made by an agent.
	KindToolResult Kind = "tool-result"
	// KindUserMessage is input supplied by the user.
	KindUserMessage Kind = "user-message"
	// KindOrchestratorMessage is framing text injected by the run loop.
	KindOrchestratorMessage Kind = "orchestrator-message"
)

// AgentRef identifies the owner of an event without holding a reference to
// the agent object itself, so events stay serializable.
type AgentRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ToolResult is the kind-specific payload of a KindToolResult event. EndTurn
// signals whether the tool call concludes the acting agent's turn; a false
// value forces the scheduler to hand the same agent the next turn so it can
// see the result before yielding the floor.
type ToolResult struct {
	CallID  string `json:"call_id,omitempty"`
	Tool    string `json:"tool"`
	Result  string `json:"result"`
	IsError bool   `json:"is_error,omitempty"`
	EndTurn bool   `json:"end_turn"`
}

// Event is the primary unit of communication between agents, the run context
// and the event log. After emission it must be treated as immutable: all
// enrichment happens on a copy inside RunContext.HandleEvent before any
// handler or store observes it.
//
// The ID is a ULID, so lexicographic order on IDs is chronological order.
type Event struct {
	ID         string      `json:"id"`
	Kind       Kind        `json:"kind"`
	ThreadID   string      `json:"thread_id,omitempty"`
	Agent      AgentRef    `json:"agent"`
	TaskIDs    []string    `json:"task_ids,omitempty"`
	AgentIDs   []string    `json:"agent_ids,omitempty"`
	Persist    bool        `json:"persist"`
	Timestamp  time.Time   `json:"timestamp"`
	Content    string      `json:"content,omitempty"`
	ToolResult *ToolResult `json:"tool_result,omitempty"`
}

// NewEvent creates a bare event of the given kind owned by owner. Events
// default to persistent; callers that want transient events clear Persist or
// pass an explicit override to RunContext.HandleEvent.
func NewEvent(kind Kind, owner AgentRef) Event {
	return Event{
		ID:        NewID(),
		Kind:      kind,
		Agent:     owner,
		Persist:   true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAgentMessageEvent creates an agent-authored message event.
func NewAgentMessageEvent(owner AgentRef, content string) Event {
	ev := NewEvent(KindAgentMessage, owner)
	ev.Content = content
	return ev
}

// NewToolResultEvent records the completion of a tool call made by owner.
func NewToolResultEvent(owner AgentRef, result ToolResult) Event {
	ev := NewEvent(KindToolResult, owner)
	ev.Content = result.Result
	ev.ToolResult = &result
	return ev
}

// NewUserMessageEvent creates a user-authored message event.
func NewUserMessageEvent(content string) Event {
	ev := NewEvent(KindUserMessage, AgentRef{Name: "user"})
	ev.Content = content
	return ev
}

// NewOrchestratorMessageEvent creates a message event authored by the run
// loop itself, e.g. turn framing shown to every agent.
func NewOrchestratorMessageEvent(content string) Event {
	ev := NewEvent(KindOrchestratorMessage, AgentRef{Name: "orchestrator"})
	ev.Content = content
	return ev
}

// EndsTurn reports whether this event concludes its owner's turn. Only a
// tool result explicitly marked EndTurn=false holds the turn open.
func (e Event) EndsTurn() bool {
	if e.Kind != KindToolResult || e.ToolResult == nil {
		return true
	}
	return e.ToolResult.EndTurn
}

// NewID generates a ULID string. ULIDs embed a millisecond timestamp, so ids
// generated in sequence sort in emission order.
func NewID() string { return ulid.Make().String() }

// NewThreadID returns a UUIDv7 identifier for a flow thread, falling back to
// a random UUIDv4 if v7 generation fails.
func NewThreadID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
