package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/teamflow/core"
	"github.com/hupe1980/teamflow/flow"
	"github.com/hupe1980/teamflow/internal/testutil"
)

func newTestContext(t *testing.T, tasks ...*core.Task) *core.RunContext {
	t.Helper()
	return core.NewRunContext(context.Background(), flow.New(), func(o *core.RunContextOptions) {
		o.Tasks = tasks
	})
}

func TestNewTeamRequiresMembers(t *testing.T) {
	_, err := NewTeam("Empty", nil)
	assert.ErrorIs(t, err, ErrNoMembers)

	_, err = NewTeam("Empty", []core.Agent{})
	assert.ErrorIs(t, err, ErrNoMembers)

	team, err := NewTeam("Solo", []core.Agent{testutil.NewStubAgent("Alice")})
	require.NoError(t, err)
	assert.NotNil(t, team)
}

func TestTeamIdentity(t *testing.T) {
	alice := testutil.NewStubAgent("Alice")
	bob := testutil.NewStubAgent("Bob")

	t1, err := NewTeam("Core", []core.Agent{alice, bob})
	require.NoError(t, err)
	t2, err := NewTeam("Core", []core.Agent{alice, bob})
	require.NoError(t, err)

	// Identical metadata and ordered member identities are interchangeable.
	assert.Equal(t, t1.ID(), t2.ID())

	reordered, err := NewTeam("Core", []core.Agent{bob, alice})
	require.NoError(t, err)
	assert.NotEqual(t, t1.ID(), reordered.ID())

	renamed, err := NewTeam("Edge", []core.Agent{alice, bob})
	require.NoError(t, err)
	assert.NotEqual(t, t1.ID(), renamed.ID())

	described, err := NewTeam("Core", []core.Agent{alice, bob}, func(o *TeamOptions) {
		o.Description = "pair"
	})
	require.NoError(t, err)
	assert.NotEqual(t, t1.ID(), described.ID())
}

func TestRotationVisitsEveryMemberInOrder(t *testing.T) {
	members := []core.Agent{
		testutil.NewStubAgent("Alice"),
		testutil.NewStubAgent("Bob"),
		testutil.NewStubAgent("Carol"),
	}
	team, err := NewTeam("Core", members)
	require.NoError(t, err)
	rc := newTestContext(t)

	var got []string
	for i := 0; i < 6; i++ {
		a, err := team.SelectNext(rc)
		require.NoError(t, err)
		got = append(got, a.Name())
	}
	assert.Equal(t, []string{"Alice", "Bob", "Carol", "Alice", "Bob", "Carol"}, got)
}

func TestContinuationHoldsTurn(t *testing.T) {
	alice := testutil.NewStubAgent("Alice")
	bob := testutil.NewStubAgent("Bob")
	team, err := NewTeam("Core", []core.Agent{alice, bob})
	require.NoError(t, err)
	rc := newTestContext(t)

	// Bob made a tool call that did not end his turn.
	require.NoError(t, rc.HandleEvent(testutil.ToolResultEvent(bob, false), nil))

	for i := 0; i < 3; i++ {
		a, err := team.SelectNext(rc)
		require.NoError(t, err)
		assert.Equal(t, "Bob", a.Name(), "continuation must bypass rotation")
	}

	// The counter was untouched: once Bob ends his turn, rotation starts
	// from the beginning of the member list.
	require.NoError(t, rc.HandleEvent(testutil.ToolResultEvent(bob, true), nil))
	a, err := team.SelectNext(rc)
	require.NoError(t, err)
	assert.Equal(t, "Alice", a.Name())
}

func TestAgentMessageDoesNotHoldTurn(t *testing.T) {
	alice := testutil.NewStubAgent("Alice")
	bob := testutil.NewStubAgent("Bob")
	team, err := NewTeam("Core", []core.Agent{alice, bob})
	require.NoError(t, err)
	rc := newTestContext(t)

	require.NoError(t, rc.HandleEvent(testutil.MessageEvent(bob, "my thoughts"), nil))

	a, err := team.SelectNext(rc)
	require.NoError(t, err)
	assert.Equal(t, "Alice", a.Name())
}

func TestContinuationScopedToActiveTasks(t *testing.T) {
	alice := testutil.NewStubAgent("Alice")
	bob := testutil.NewStubAgent("Bob")
	team, err := NewTeam("Core", []core.Agent{alice, bob})
	require.NoError(t, err)

	// Bob's unfinished tool call belongs to a different task.
	otherTask := core.NewTask("other work")
	otherRC := core.NewRunContext(context.Background(), flow.New(), func(o *core.RunContextOptions) {
		o.Tasks = []*core.Task{otherTask}
	})
	require.NoError(t, otherRC.HandleEvent(testutil.ToolResultEvent(bob, false), nil))

	// A run over a fresh task on the same flow ignores it.
	rc := core.NewRunContext(context.Background(), otherRC.Flow, func(o *core.RunContextOptions) {
		o.Tasks = []*core.Task{core.NewTask("fresh work")}
	})
	a, err := team.SelectNext(rc)
	require.NoError(t, err)
	assert.Equal(t, "Alice", a.Name())
}

func TestCounterPersistsAcrossRuns(t *testing.T) {
	alice := testutil.NewStubAgent("Alice")
	bob := testutil.NewStubAgent("Bob")
	team, err := NewTeam("Core", []core.Agent{alice, bob})
	require.NoError(t, err)

	a, err := team.SelectNext(newTestContext(t))
	require.NoError(t, err)
	assert.Equal(t, "Alice", a.Name())

	// A new run context does not reset rotation.
	a, err = team.SelectNext(newTestContext(t))
	require.NoError(t, err)
	assert.Equal(t, "Bob", a.Name())
}

func TestTeamRunDelegatesAndRegisters(t *testing.T) {
	alice := testutil.NewStubAgent("Alice")
	bob := testutil.NewStubAgent("Bob")
	team, err := NewTeam("Core", []core.Agent{alice, bob})
	require.NoError(t, err)
	rc := newTestContext(t)

	require.NoError(t, team.Run(rc))
	assert.Equal(t, 1, alice.RunCalls)
	assert.Equal(t, 0, bob.RunCalls)

	agents := rc.Agents()
	require.Len(t, agents, 1)
	assert.Equal(t, team.ID(), agents[0].ID())
}

func TestNestedTeamsScheduleIndependently(t *testing.T) {
	inner1 := testutil.NewStubAgent("Inner1")
	inner2 := testutil.NewStubAgent("Inner2")
	inner, err := NewTeam("Inner", []core.Agent{inner1, inner2})
	require.NoError(t, err)

	outer1 := testutil.NewStubAgent("Outer1")
	outer, err := NewTeam("Outer", []core.Agent{inner, outer1})
	require.NoError(t, err)

	rc := newTestContext(t)

	// Turn 1: outer rotates to the inner team, which rotates to Inner1.
	require.NoError(t, outer.Run(rc))
	assert.Equal(t, 1, inner1.RunCalls)

	// Turn 2: outer rotates to Outer1; the inner team's counter is untouched.
	require.NoError(t, outer.Run(rc))
	assert.Equal(t, 1, outer1.RunCalls)

	// Turn 3: outer wraps to the inner team again, which advances to Inner2.
	require.NoError(t, outer.Run(rc))
	assert.Equal(t, 1, inner2.RunCalls)
}

func TestSelectNextPropagatesLogError(t *testing.T) {
	team, err := NewTeam("Core", []core.Agent{testutil.NewStubAgent("Alice")})
	require.NoError(t, err)

	rc := core.NewRunContext(context.Background(), failingFlow{})
	_, err = team.SelectNext(rc)
	assert.ErrorIs(t, err, assert.AnError)
}

type failingFlow struct{}

func (failingFlow) ThreadID() string                                 { return "t" }
func (failingFlow) GetPrompt(*core.RunContext) (string, error)       { return "", nil }
func (failingFlow) GetEvents(core.EventFilter) ([]core.Event, error) { return nil, assert.AnError }
func (failingFlow) AddEvents([]core.Event) error                     { return nil }

// The end-to-end scenario: rotation, continuation, then rotation again.
func TestTurnSequenceWithContinuation(t *testing.T) {
	alice := testutil.NewStubAgent("Alice")
	bob := testutil.NewStubAgent("Bob")
	team, err := NewTeam("Core", []core.Agent{alice, bob})
	require.NoError(t, err)
	rc := newTestContext(t)

	// Fresh counter, no prior events: Alice acts first.
	a, err := team.SelectNext(rc)
	require.NoError(t, err)
	require.Equal(t, "Alice", a.Name())

	// Alice's tool call does not end her turn: she acts again.
	require.NoError(t, rc.HandleEvent(testutil.ToolResultEvent(alice, false), nil))
	a, err = team.SelectNext(rc)
	require.NoError(t, err)
	require.Equal(t, "Alice", a.Name())

	// Alice's next tool call ends her turn: rotation resumes with Bob.
	require.NoError(t, rc.HandleEvent(testutil.ToolResultEvent(alice, true), nil))
	a, err = team.SelectNext(rc)
	require.NoError(t, err)
	require.Equal(t, "Bob", a.Name())
}
