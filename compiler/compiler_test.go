package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/teamflow/core"
	"github.com/hupe1980/teamflow/internal/testutil"
)

func TestCompileRoleMapping(t *testing.T) {
	alice := testutil.NewStubAgent("Alice")
	bob := testutil.NewStubAgent("Bob")

	events := []core.Event{
		testutil.MessageEvent(alice, "I will start."),
		testutil.MessageEvent(bob, "Sounds good."),
		core.NewUserMessageEvent("Please hurry."),
		core.NewToolResultEvent(alice.Ref(), core.ToolResult{CallID: "call-1", Tool: "lookup", Result: "42", EndTurn: true}),
	}

	c := New()
	messages, err := c.Compile(alice, events, core.DefaultRules(), "You are Alice.")
	require.NoError(t, err)
	require.Len(t, messages, 5)

	assert.Equal(t, core.Message{Role: core.RoleSystem, Content: "You are Alice."}, messages[0])
	assert.Equal(t, core.Message{Role: core.RoleAssistant, Content: "I will start."}, messages[1])
	assert.Equal(t, core.Message{Role: core.RoleUser, Content: "Bob: Sounds good."}, messages[2])
	assert.Equal(t, core.Message{Role: core.RoleUser, Content: "Please hurry."}, messages[3])
	assert.Equal(t, core.Message{Role: core.RoleTool, Content: "42", ToolCallID: "call-1"}, messages[4])
}

func TestCompileSortsNewestFirstInput(t *testing.T) {
	alice := testutil.NewStubAgent("Alice")
	first := testutil.MessageEvent(alice, "first")
	second := testutil.MessageEvent(alice, "second")

	// The log returns recency order when a limit is set.
	messages, err := New().Compile(alice, []core.Event{second, first}, core.DefaultRules(), "")
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "first", messages[0].Content)
	assert.Equal(t, "second", messages[1].Content)
}

func TestCompileWithoutSystemRole(t *testing.T) {
	alice := testutil.NewStubAgent("Alice")
	rules := core.ModelRules{Name: "folded"}

	messages, err := New().Compile(alice, nil, rules, "You are Alice.")
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, core.RoleUser, messages[0].Role)
	assert.Equal(t, "You are Alice.", messages[0].Content)
}

func TestCompileToolResultDegradation(t *testing.T) {
	alice := testutil.NewStubAgent("Alice")
	bob := testutil.NewStubAgent("Bob")
	rules := core.ModelRules{Name: "no-tools", SystemRole: true}

	ok := core.NewToolResultEvent(alice.Ref(), core.ToolResult{Tool: "lookup", Result: "42"})
	failed := core.NewToolResultEvent(alice.Ref(), core.ToolResult{Tool: "lookup", Result: "timeout", IsError: true})

	// Without a tool role the target's own results become user messages.
	messages, err := New().Compile(alice, []core.Event{ok, failed}, rules, "")
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, core.Message{Role: core.RoleUser, Content: `Tool "lookup" returned: 42`}, messages[0])
	assert.Equal(t, core.Message{Role: core.RoleUser, Content: `Tool "lookup" failed: timeout`}, messages[1])

	// Another agent's result degrades even when the rules allow a tool role.
	messages, err = New().Compile(bob, []core.Event{ok}, core.DefaultRules(), "")
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, core.RoleUser, messages[0].Role)
}

func TestCompileSpeakerNames(t *testing.T) {
	alice := testutil.NewStubAgent("Alice")
	bob := testutil.NewStubAgent("Bob")
	rules := core.ModelRules{Name: "named", SystemRole: true, SpeakerNames: true}

	messages, err := New().Compile(alice, []core.Event{testutil.MessageEvent(bob, "hi")}, rules, "")
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, core.Message{Role: core.RoleUser, Name: "Bob", Content: "hi"}, messages[0])
}

func TestCompileRequireUserFirst(t *testing.T) {
	alice := testutil.NewStubAgent("Alice")
	rules := core.ModelRules{Name: "strict", SystemRole: true, RequireUserFirst: true, ToolRole: true}

	// A conversation opening with the target's own message gets a synthetic
	// user opener after the system prompt.
	messages, err := New().Compile(alice, []core.Event{testutil.MessageEvent(alice, "done")}, rules, "You are Alice.")
	require.NoError(t, err)
	require.Len(t, messages, 3)
	assert.Equal(t, core.RoleSystem, messages[0].Role)
	assert.Equal(t, core.Message{Role: core.RoleUser, Content: "Begin working on your tasks."}, messages[1])
	assert.Equal(t, core.RoleAssistant, messages[2].Role)

	// No opener is inserted when a user message already leads.
	messages, err = New().Compile(alice, []core.Event{core.NewUserMessageEvent("go")}, rules, "You are Alice.")
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "go", messages[1].Content)
}

func TestCompileSkipsMalformedToolResult(t *testing.T) {
	alice := testutil.NewStubAgent("Alice")
	broken := core.NewEvent(core.KindToolResult, alice.Ref())

	messages, err := New().Compile(alice, []core.Event{broken}, core.DefaultRules(), "")
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestCompileOrchestratorMessage(t *testing.T) {
	alice := testutil.NewStubAgent("Alice")
	ev := core.NewOrchestratorMessageEvent("Alice, it is your turn.")

	messages, err := New().Compile(alice, []core.Event{ev}, core.DefaultRules(), "")
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, core.Message{Role: core.RoleUser, Content: "orchestrator: Alice, it is your turn."}, messages[0])
}
