package agent

import (
	"fmt"
	"sync"

	"github.com/hupe1980/teamflow/core"
	"github.com/hupe1980/teamflow/internal/util"
	"github.com/hupe1980/teamflow/model"
)

// defaultAgentTemplate is the prompt contribution an agent makes to each
// compiled system prompt unless a custom template is supplied.
const defaultAgentTemplate = `You are "{{.Agent.Name}}".{{if .Agent.Description}} {{.Agent.Description}}{{end}}{{if .Agent.Instructions}}

You must follow these instructions at all times:

- {{.Agent.Instructions}}{{end}}`

// Options configures an Agent. Use functional options with New to override
// defaults.
type Options struct {
	Description  string
	Instructions string
	// Prompt overrides the default prompt template. It is rendered with
	// {{.Agent}} (name, description, instructions) in scope.
	Prompt string
	Rules  core.ModelRules
	Model  model.Model
	Tools  []core.Tool
}

// Agent is a model-backed actor. Its identity is derived from its semantic
// fields, so two agents configured identically are interchangeable for
// identity purposes.
type Agent struct {
	name         string
	description  string
	instructions string
	prompt       string
	rules        core.ModelRules
	model        model.Model
	tools        []core.Tool

	idOnce sync.Once
	id     string
}

// New creates an agent with the given name.
func New(name string, optFns ...func(o *Options)) *Agent {
	opts := Options{
		Rules: core.DefaultRules(),
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Agent{
		name:         name,
		description:  opts.Description,
		instructions: opts.Instructions,
		prompt:       opts.Prompt,
		rules:        opts.Rules,
		model:        opts.Model,
		tools:        opts.Tools,
	}
}

// ID returns the content-derived identifier, a stable hash over the agent's
// semantic fields in fixed order.
func (a *Agent) ID() string {
	a.idOnce.Do(func() {
		a.id = core.Identity("agent", a.name, a.description, a.prompt, a.instructions)
	})
	return a.id
}

// Name returns the display name.
func (a *Agent) Name() string { return a.name }

// Description returns the agent's description.
func (a *Agent) Description() string { return a.description }

// Instructions returns the agent's private instructions.
func (a *Agent) Instructions() string { return a.instructions }

// Rules returns the formatting rules of the backing model.
func (a *Agent) Rules() core.ModelRules { return a.rules }

// Tools returns a copy of the agent's own tools.
func (a *Agent) Tools() []core.Tool { return append([]core.Tool(nil), a.tools...) }

// promptView exposes the fields visible to prompt templates.
type promptView struct {
	Name         string
	Description  string
	Instructions string
}

// GetPrompt renders the agent's prompt contribution.
func (a *Agent) GetPrompt(rc *core.RunContext) (string, error) {
	tmpl := a.prompt
	if tmpl == "" {
		tmpl = defaultAgentTemplate
	}
	return util.RenderTemplate(tmpl, map[string]any{
		"Agent": promptView{Name: a.name, Description: a.description, Instructions: a.instructions},
	})
}

// Run executes one turn: register as participant, expose the agent's tools,
// compile the message sequence, call the model and route the reply back
// through the context as an agent-message event.
func (a *Agent) Run(rc *core.RunContext) error {
	rc.AddAgent(a)
	if len(a.tools) > 0 {
		rc.AddTools(a.tools...)
	}
	if a.model == nil {
		return fmt.Errorf("agent %q has no model configured", a.name)
	}

	messages, err := rc.CompileMessages(a)
	if err != nil {
		return err
	}

	resp, err := a.model.Generate(rc.Context, model.Request{Messages: messages, Tools: rc.Tools()})
	if err != nil {
		return fmt.Errorf("agent %q model call: %w", a.name, err)
	}

	rc.Logger.Debug("agent turn completed", "agent", a.name, "tool_calls", len(resp.ToolCalls))

	ev := core.NewAgentMessageEvent(core.Ref(a), resp.Content)
	return rc.HandleEvent(ev, nil)
}
