package agent

import (
	"errors"
	"fmt"
	"sync"

	"github.com/hupe1980/teamflow/core"
	"github.com/hupe1980/teamflow/internal/util"
)

// ErrNoMembers is returned when a team is constructed with an empty member
// list. The non-empty invariant is what lets SelectNext always return an
// agent.
var ErrNoMembers = errors.New("a team must have at least one member")

const defaultTeamTemplate = `You are a member of the team "{{.Team.Name}}".{{if .Team.Description}} {{.Team.Description}}{{end}} The team has the following members:
{{range .Members}}
- {{.Name}}{{if .Description}}: {{.Description}}{{end}}{{end}}{{if .Team.Instructions}}

All members of this team must follow these instructions:

- {{.Team.Instructions}}{{end}}`

// TeamOptions configures a Team.
type TeamOptions struct {
	Description  string
	Instructions string
	// Prompt overrides the default team prompt template. It is rendered
	// with {{.Team}} and {{.Members}} in scope.
	Prompt string
}

// Team is a group of agents that can be assigned to tasks. A team is itself
// an agent: running a team selects one member for this turn and delegates to
// it, so teams nest to any depth, each level scheduling independently.
//
// Member selection is a continuation-aware round robin: if the most recent
// relevant event in the log is a tool result that did not end its owner's
// turn, that owner acts again; otherwise rotation advances. The turn counter
// is private state that lives for the Team's lifetime, so a team visited
// across multiple runs resumes rotating instead of restarting.
type Team struct {
	name         string
	description  string
	instructions string
	prompt       string
	members      []core.Agent

	idOnce sync.Once
	id     string

	mu    sync.Mutex
	turns int
}

// NewTeam creates a team from an ordered, non-empty member list.
func NewTeam(name string, members []core.Agent, optFns ...func(o *TeamOptions)) (*Team, error) {
	if len(members) == 0 {
		return nil, ErrNoMembers
	}
	opts := TeamOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Team{
		name:         name,
		description:  opts.Description,
		instructions: opts.Instructions,
		prompt:       opts.Prompt,
		members:      append([]core.Agent(nil), members...),
	}, nil
}

// ID returns the content-derived identifier: a stable hash over the team's
// semantic fields and the ordered member identities. Two teams with the same
// metadata and the same members in the same order report the same ID.
func (t *Team) ID() string {
	t.idOnce.Do(func() {
		fields := []string{"team", t.name, t.description, t.prompt, t.instructions}
		for _, m := range t.members {
			fields = append(fields, m.ID())
		}
		t.id = core.Identity(fields...)
	})
	return t.id
}

// Name returns the display name.
func (t *Team) Name() string { return t.name }

// Description returns the team's description.
func (t *Team) Description() string { return t.description }

// Members returns a copy of the ordered member list.
func (t *Team) Members() []core.Agent { return append([]core.Agent(nil), t.members...) }

// Rules returns permissive default rules; a team never reaches a model
// directly, its selected member does.
func (t *Team) Rules() core.ModelRules { return core.DefaultRules() }

// GetPrompt renders the team's prompt contribution to each member's turn.
func (t *Team) GetPrompt(rc *core.RunContext) (string, error) {
	tmpl := t.prompt
	if tmpl == "" {
		tmpl = defaultTeamTemplate
	}
	members := make([]promptView, len(t.members))
	for i, m := range t.members {
		members[i] = promptView{Name: m.Name(), Description: m.Description()}
	}
	return util.RenderTemplate(tmpl, map[string]any{
		"Team":    promptView{Name: t.name, Description: t.description, Instructions: t.instructions},
		"Members": members,
	})
}

// SelectNext decides which member acts this turn.
//
// It queries the log for the single most recent event owned by any member,
// scoped to the run's active tasks and restricted to tool results and agent
// messages. If that event is a tool result whose EndTurn flag is false, the
// member that produced it acts again and the counter is untouched; the
// agent is mid-task and must see the result before yielding. In every other
// case rotation applies: members[counter mod n], then counter+1.
//
// Log read errors propagate unchanged; masking one could silently base a
// scheduling decision on incomplete history.
func (t *Team) SelectNext(rc *core.RunContext) (core.Agent, error) {
	events, err := rc.Flow.GetEvents(core.EventFilter{
		AgentIDs: t.memberIDs(),
		TaskIDs:  rc.ActiveTaskIDs(),
		Kinds:    []core.Kind{core.KindToolResult, core.KindAgentMessage},
		Limit:    1,
	})
	if err != nil {
		return nil, fmt.Errorf("team %q continuation query: %w", t.name, err)
	}

	if len(events) > 0 {
		last := events[0]
		if last.Kind == core.KindToolResult && !last.EndsTurn() {
			if m := t.memberByID(last.Agent.ID); m != nil {
				rc.Logger.Debug("turn continuation", "team", t.name, "agent", last.Agent.Name)
				return m, nil
			}
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	m := t.members[t.turns%len(t.members)]
	t.turns++
	rc.Logger.Debug("turn rotation", "team", t.name, "agent", m.Name(), "turn", t.turns)
	return m, nil
}

// Run registers the team as a participant, selects the next member and
// delegates the turn to it. A member that is itself a team recurses through
// the same path with its own counter and its own member-scoped query.
func (t *Team) Run(rc *core.RunContext) error {
	rc.AddAgent(t)
	m, err := t.SelectNext(rc)
	if err != nil {
		return err
	}
	return m.Run(rc)
}

func (t *Team) memberIDs() []string {
	ids := make([]string, len(t.members))
	for i, m := range t.members {
		ids[i] = m.ID()
	}
	return ids
}

func (t *Team) memberByID(id string) core.Agent {
	for _, m := range t.members {
		if m.ID() == id {
			return m
		}
	}
	return nil
}
