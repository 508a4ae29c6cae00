package teamflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/teamflow/agent"
	"github.com/hupe1980/teamflow/core"
	"github.com/hupe1980/teamflow/flow"
	"github.com/hupe1980/teamflow/model"
)

func newModelAgent(name string) *agent.Agent {
	return agent.New(name, func(o *agent.Options) {
		o.Model = model.NewMockModel("gpt-test")
	})
}

func TestRunSyncAlternatesTeamMembers(t *testing.T) {
	team, err := agent.NewTeam("Pair", []core.Agent{
		newModelAgent("Alice"),
		newModelAgent("Bob"),
	})
	require.NoError(t, err)

	task := core.NewTask("chat for four turns")
	log := flow.NewInMemoryLog()
	turns := 0

	err = RunSync(context.Background(), team, []*core.Task{task}, func(o *Options) {
		o.Log = log
		o.Handlers = []core.Handler{core.HandlerFunc(func(core.Event) {
			turns++
			if turns == 4 {
				task.Complete("done")
			}
		})}
	})
	require.NoError(t, err)

	events, err := log.GetEvents(core.EventFilter{Kinds: []core.Kind{core.KindAgentMessage}})
	require.NoError(t, err)
	require.Len(t, events, 4)

	var speakers []string
	for _, ev := range events {
		speakers = append(speakers, ev.Agent.Name)
	}
	assert.Equal(t, []string{"Alice", "Bob", "Alice", "Bob"}, speakers)
}

func TestRunAsyncDeliversOutcome(t *testing.T) {
	task := core.NewTask("reply once")
	root := agent.New("Alice", func(o *agent.Options) {
		o.Model = model.NewMockModel("gpt-test")
	})

	done := Run(context.Background(), root, []*core.Task{task}, func(o *Options) {
		o.MaxTurns = 1
	})
	err := <-done
	require.Error(t, err, "one turn cannot finish an open task")
	assert.Contains(t, err.Error(), "stopped after 1 turns")
}

func TestRunSyncResumesThread(t *testing.T) {
	log := flow.NewInMemoryLog()
	require.NoError(t, log.AddEvents([]core.Event{core.NewUserMessageEvent("hello again")}))

	task := core.NewTask("pick up where we left off")
	root := agent.New("Alice", func(o *agent.Options) {
		o.Model = model.NewMockModel("gpt-test")
	})
	seen := false

	err := RunSync(context.Background(), root, []*core.Task{task}, func(o *Options) {
		o.Log = log
		o.ThreadID = "thread-42"
		o.Handlers = []core.Handler{core.HandlerFunc(func(ev core.Event) {
			seen = true
			assert.Equal(t, "thread-42", ev.ThreadID)
			task.Complete("done")
		})}
	})
	require.NoError(t, err)
	assert.True(t, seen)
}
