package core

// Tool declaratively describes a callable capability available to agents
// this run. Parameters is a JSON Schema object. Execution is the caller's
// concern: a finished call is reported back as a tool-result event through
// RunContext.HandleEvent.
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

// Handler observes every event routed through a RunContext, whether or not
// the event is persisted. Handlers run in registration order, after
// enrichment and before the durable write.
type Handler interface {
	HandleEvent(event Event)
}

// HandlerFunc adapts an ordinary function to the Handler interface.
type HandlerFunc func(Event)

// HandleEvent implements Handler.
func (f HandlerFunc) HandleEvent(ev Event) { f(ev) }
