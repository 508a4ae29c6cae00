package core

// EventFilter narrows the events returned by an EventLog. Empty slices mean
// "no constraint". AgentIDs matches the owning agent of an event, not the
// enrichment associations; TaskIDs matches if the event shares at least one
// task with the filter.
//
// When Limit > 0 the log returns the newest matching events first; with
// Limit == 0 all matching events are returned in chronological order.
type EventFilter struct {
	AgentIDs []string
	TaskIDs  []string
	Kinds    []Kind
	Limit    int
}

// Matches reports whether ev passes the filter, ignoring Limit.
func (f EventFilter) Matches(ev Event) bool {
	if len(f.Kinds) > 0 && !containsKind(f.Kinds, ev.Kind) {
		return false
	}
	if len(f.AgentIDs) > 0 && !containsString(f.AgentIDs, ev.Agent.ID) {
		return false
	}
	if len(f.TaskIDs) > 0 && !intersects(f.TaskIDs, ev.TaskIDs) {
		return false
	}
	return true
}

// EventLog is the append-only store of events for a thread. Implementations
// must reflect every prior AddEvents call in subsequent GetEvents calls; the
// scheduler's continuation query depends on read-your-writes ordering.
type EventLog interface {
	GetEvents(filter EventFilter) ([]Event, error)
	AddEvents(events []Event) error
}

func containsKind(kinds []Kind, k Kind) bool {
	for _, c := range kinds {
		if c == k {
			return true
		}
	}
	return false
}

func containsString(list []string, s string) bool {
	for _, c := range list {
		if c == s {
			return true
		}
	}
	return false
}

func intersects(a, b []string) bool {
	for _, x := range a {
		if containsString(b, x) {
			return true
		}
	}
	return false
}
