package core

// Flow is the run-spanning container a RunContext reads events from and
// writes events to. It couples a thread identity with an EventLog and an
// optional flow-level prompt contribution. The concrete implementation lives
// in the flow package; core consumes only this interface.
type Flow interface {
	// ThreadID returns the identifier stamped onto every event routed
	// through contexts bound to this flow.
	ThreadID() string

	// GetPrompt renders the flow-level prompt for the current run. An empty
	// result is dropped from the compiled system prompt.
	GetPrompt(rc *RunContext) (string, error)

	// GetEvents queries the underlying event log.
	GetEvents(filter EventFilter) ([]Event, error)

	// AddEvents appends events to the underlying event log.
	AddEvents(events []Event) error
}
