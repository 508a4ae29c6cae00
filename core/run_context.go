package core

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/teamflow/logging"
)

// DefaultEventLimit bounds how many recent events are loaded for message
// compilation when the caller does not specify a limit.
const DefaultEventLimit = 100

// RunContextOptions configures a RunContext at construction. All list fields
// can also be appended later through the Add* methods.
type RunContextOptions struct {
	Tasks        []*Task
	Tools        []Tool
	Handlers     []Handler
	Instructions []string
	Compiler     MessageCompiler
	Logger       logging.Logger
}

// RunContext is the scoped aggregation of everything an agent needs to act:
// the flow (thread id + event log), active tasks, available tools, the
// agents that have participated so far, side-effect handlers and ad hoc
// instructions. It is created when a run begins, grows append-only while the
// run executes, and is torn down when the run ends.
//
// The four lists (tasks, tools, agents, instructions) plus handlers are
// append-only for the lifetime of the context; there is no removal
// operation. All list mutation is guarded by a per-instance mutex so sibling
// runs never contend on shared state.
type RunContext struct {
	// Context is the ambient cancellation context for the run. Selection and
	// compilation never block on it; agents consult it inside their own Run.
	Context context.Context

	// Flow is the thread this run reads from and appends to.
	Flow Flow

	// Compiler converts events plus a system prompt into model-ready
	// messages. Required for CompileMessages.
	Compiler MessageCompiler

	// Logger receives structured diagnostics. Never nil.
	Logger logging.Logger

	mu           sync.Mutex
	tasks        []*Task
	tools        []Tool
	agents       []Agent
	agentIDs     map[string]struct{}
	handlers     []Handler
	instructions []string
}

// NewRunContext constructs a RunContext bound to a flow. A nil logger is
// replaced with a no-op logger.
func NewRunContext(ctx context.Context, fl Flow, optFns ...func(o *RunContextOptions)) *RunContext {
	opts := RunContextOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	rc := &RunContext{
		Context:      ctx,
		Flow:         fl,
		Compiler:     opts.Compiler,
		Logger:       opts.Logger,
		tasks:        append([]*Task(nil), opts.Tasks...),
		agentIDs:     map[string]struct{}{},
		handlers:     append([]Handler(nil), opts.Handlers...),
		instructions: append([]string(nil), opts.Instructions...),
	}
	rc.AddTools(opts.Tools...)
	return rc
}

// AddAgent registers an agent as a participant of this run. Registration is
// idempotent: re-adding an agent with the same identity is a no-op, and
// first-appearance order is preserved.
func (rc *RunContext) AddAgent(a Agent) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	id := a.ID()
	if _, ok := rc.agentIDs[id]; ok {
		return
	}
	rc.agentIDs[id] = struct{}{}
	rc.agents = append(rc.agents, a)
}

// AddHandlers appends side-effect handlers; they observe events in
// registration order.
func (rc *RunContext) AddHandlers(handlers ...Handler) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.handlers = append(rc.handlers, handlers...)
}

// AddTools appends tools available for the rest of the run. Registration is
// idempotent by tool name: the context outlives individual turns, and agents
// re-register their tools every time they run.
func (rc *RunContext) AddTools(tools ...Tool) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	for _, t := range tools {
		if rc.hasToolLocked(t.Name) {
			continue
		}
		rc.tools = append(rc.tools, t)
	}
}

func (rc *RunContext) hasToolLocked(name string) bool {
	for _, t := range rc.tools {
		if t.Name == name {
			return true
		}
	}
	return false
}

// AddInstructions appends free-text instructions surfaced in every compiled
// prompt for the rest of the run.
func (rc *RunContext) AddInstructions(instructions ...string) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.instructions = append(rc.instructions, instructions...)
}

// Tasks returns a copy of the active task list.
func (rc *RunContext) Tasks() []*Task {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return append([]*Task(nil), rc.tasks...)
}

// Tools returns a copy of the registered tool list.
func (rc *RunContext) Tools() []Tool {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return append([]Tool(nil), rc.tools...)
}

// Agents returns a copy of the participating agents in first-appearance order.
func (rc *RunContext) Agents() []Agent {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return append([]Agent(nil), rc.agents...)
}

// Instructions returns a copy of the accumulated instructions.
func (rc *RunContext) Instructions() []string {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return append([]string(nil), rc.instructions...)
}

// ActiveTaskIDs returns the ids of the active tasks, for log queries and
// event association.
func (rc *RunContext) ActiveTaskIDs() []string {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	ids := make([]string, 0, len(rc.tasks))
	for _, t := range rc.tasks {
		ids = append(ids, t.ID)
	}
	return ids
}

func (rc *RunContext) participantIDs() []string {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	ids := make([]string, 0, len(rc.agents))
	for _, a := range rc.agents {
		ids = append(ids, a.ID())
	}
	return ids
}

// HandleEvent routes an event through the run: a copy of the event is
// enriched (thread id stamped, active tasks and participating agents
// attached), then every registered handler observes the enriched copy in
// registration order, and finally, if persistence applies, the copy is
// appended to the flow's event log.
//
// persist overrides the event's own Persist preference when non-nil.
// Handlers always observe the event regardless of the persist decision.
// Enrichment operates on a copy, so a failure before the write leaves
// neither the caller's event nor the log in a partial state.
func (rc *RunContext) HandleEvent(ev Event, persist *bool) error {
	p := ev.Persist
	if persist != nil {
		p = *persist
	}

	ev.ThreadID = rc.Flow.ThreadID()
	ev.TaskIDs = appendMissing(append([]string(nil), ev.TaskIDs...), rc.ActiveTaskIDs())
	ev.AgentIDs = appendMissing(append([]string(nil), ev.AgentIDs...), rc.participantIDs())

	rc.mu.Lock()
	handlers := append([]Handler(nil), rc.handlers...)
	rc.mu.Unlock()

	for _, h := range handlers {
		h.HandleEvent(ev)
	}

	if !p {
		return nil
	}
	if err := rc.Flow.AddEvents([]Event{ev}); err != nil {
		return fmt.Errorf("persist event %s: %w", ev.ID, err)
	}
	rc.Logger.Debug("event persisted", "event_id", ev.ID, "kind", string(ev.Kind), "agent", ev.Agent.Name)
	return nil
}

// GetEvents fetches recent events from the flow. A non-positive limit falls
// back to DefaultEventLimit. Results are newest first.
func (rc *RunContext) GetEvents(limit int) ([]Event, error) {
	if limit <= 0 {
		limit = DefaultEventLimit
	}
	return rc.Flow.GetEvents(EventFilter{Limit: limit})
}

// CompilePrompt builds the system prompt for one agent's turn. Sections are
// joined with blank lines, empty sections dropped, in this order:
//
//  1. Every participating agent's rendered prompt, most recently added
//     first, with the target appended (but not registered) when absent.
//     Later, more specific scopes surface above the outermost framing
//     while every ancestor's prompt is still included.
//  2. The flow-level prompt.
//  3. The active task list.
//  4. The tool list.
//  5. The accumulated instructions.
func (rc *RunContext) CompilePrompt(target Agent) (string, error) {
	participants := rc.Agents()
	if !containsAgent(participants, target) {
		participants = append(participants, target)
	}

	var sections []string
	for i := len(participants) - 1; i >= 0; i-- {
		p, err := participants[i].GetPrompt(rc)
		if err != nil {
			return "", fmt.Errorf("render prompt of agent %q: %w", participants[i].Name(), err)
		}
		sections = append(sections, p)
	}

	flowPrompt, err := rc.Flow.GetPrompt(rc)
	if err != nil {
		return "", fmt.Errorf("render flow prompt: %w", err)
	}
	sections = append(sections, flowPrompt)

	tasksSection, err := renderTasks(rc.Tasks())
	if err != nil {
		return "", err
	}
	toolsSection, err := renderTools(rc.Tools())
	if err != nil {
		return "", err
	}
	instructionsSection, err := renderInstructions(rc.Instructions())
	if err != nil {
		return "", err
	}
	sections = append(sections, tasksSection, toolsSection, instructionsSection)

	return joinNonEmpty(sections, "\n\n"), nil
}

// CompileMessages fetches recent events (bounded by DefaultEventLimit) and
// delegates to the configured MessageCompiler with the target agent's model
// rules and the system prompt from CompilePrompt. Compiler errors propagate
// unchanged.
func (rc *RunContext) CompileMessages(target Agent) ([]Message, error) {
	if rc.Compiler == nil {
		return nil, fmt.Errorf("run context has no message compiler configured")
	}
	events, err := rc.GetEvents(0)
	if err != nil {
		return nil, err
	}
	prompt, err := rc.CompilePrompt(target)
	if err != nil {
		return nil, err
	}
	return rc.Compiler.Compile(target, events, target.Rules(), prompt)
}

// Enter installs rc as the innermost ambient run context and returns a
// release func that uninstalls it. The release func is idempotent and safe
// to defer; it runs teardown unconditionally and never masks an in-flight
// error or panic.
func (rc *RunContext) Enter() (release func()) {
	pushAmbient(rc)
	var once sync.Once
	return func() {
		once.Do(func() { popAmbient(rc) })
	}
}

func appendMissing(dst []string, add []string) []string {
	for _, s := range add {
		if !containsString(dst, s) {
			dst = append(dst, s)
		}
	}
	return dst
}

func containsAgent(list []Agent, a Agent) bool {
	id := a.ID()
	for _, c := range list {
		if c.ID() == id {
			return true
		}
	}
	return false
}

func joinNonEmpty(parts []string, sep string) string {
	out := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if out != "" {
			out += sep
		}
		out += p
	}
	return out
}
