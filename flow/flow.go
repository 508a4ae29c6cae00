package flow

import (
	"github.com/hupe1980/teamflow/core"
	"github.com/hupe1980/teamflow/internal/util"
)

// Options configures a Flow.
type Options struct {
	// ThreadID overrides the generated thread identifier, e.g. to resume an
	// existing thread from a durable log.
	ThreadID    string
	Description string
	// Prompt is an optional template contributed to every compiled system
	// prompt, rendered with {{.Flow}} in scope.
	Prompt string
	// Log is the backing event log. Defaults to an in-memory log.
	Log core.EventLog
}

// Flow implements core.Flow. It owns the thread identity and delegates event
// storage to its EventLog.
type Flow struct {
	threadID    string
	description string
	prompt      string
	log         core.EventLog
}

// New creates a flow with a fresh thread id and an in-memory log unless
// overridden.
func New(optFns ...func(o *Options)) *Flow {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.ThreadID == "" {
		opts.ThreadID = core.NewThreadID()
	}
	if opts.Log == nil {
		opts.Log = NewInMemoryLog()
	}
	return &Flow{
		threadID:    opts.ThreadID,
		description: opts.Description,
		prompt:      opts.Prompt,
		log:         opts.Log,
	}
}

// ThreadID returns the thread identifier stamped onto routed events.
func (f *Flow) ThreadID() string { return f.threadID }

// Description returns the flow's description.
func (f *Flow) Description() string { return f.description }

// Log returns the backing event log.
func (f *Flow) Log() core.EventLog { return f.log }

// GetPrompt renders the flow-level prompt; empty when none is configured.
func (f *Flow) GetPrompt(rc *core.RunContext) (string, error) {
	if f.prompt == "" {
		return "", nil
	}
	return util.RenderTemplate(f.prompt, map[string]any{
		"Flow": struct{ ThreadID, Description string }{f.threadID, f.description},
	})
}

// GetEvents queries the backing log.
func (f *Flow) GetEvents(filter core.EventFilter) ([]core.Event, error) {
	return f.log.GetEvents(filter)
}

// AddEvents appends events to the backing log.
func (f *Flow) AddEvents(events []core.Event) error {
	return f.log.AddEvents(events)
}
