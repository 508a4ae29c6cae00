// Package compiler provides the default core.MessageCompiler: it turns an
// event sequence plus a compiled system prompt into the role-tagged message
// sequence one agent's model invocation expects, respecting the formatting
// rules of the target's provider.
package compiler

import (
	"fmt"
	"sort"

	"github.com/hupe1980/teamflow/core"
)

// Compiler is the default, stateless message compiler.
type Compiler struct{}

// New creates a Compiler.
func New() *Compiler { return &Compiler{} }

// Compile builds the message sequence for target. Events may arrive newest
// first (the log returns recency order when a limit is set); they are sorted
// into chronological order by id before compilation, which is safe because
// event ids are ULIDs.
//
// Role mapping: the target's own agent messages become assistant messages;
// every other speaker becomes a user message carrying the speaker's name;
// tool results use the tool role where the rules allow it and degrade to a
// user message otherwise. The system prompt leads the sequence, folded into
// a user message when the provider has no system role.
func (c *Compiler) Compile(target core.Agent, events []core.Event, rules core.ModelRules, systemPrompt string) ([]core.Message, error) {
	ordered := append([]core.Event(nil), events...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	var messages []core.Message
	if systemPrompt != "" {
		if rules.SystemRole {
			messages = append(messages, core.Message{Role: core.RoleSystem, Content: systemPrompt})
		} else {
			messages = append(messages, core.Message{Role: core.RoleUser, Content: systemPrompt})
		}
	}

	targetID := target.ID()
	for _, ev := range ordered {
		msg, ok := compileEvent(ev, targetID, rules)
		if ok {
			messages = append(messages, msg)
		}
	}

	if rules.RequireUserFirst {
		messages = ensureUserFirst(messages)
	}
	return messages, nil
}

func compileEvent(ev core.Event, targetID string, rules core.ModelRules) (core.Message, bool) {
	switch ev.Kind {
	case core.KindAgentMessage:
		if ev.Agent.ID == targetID {
			return core.Message{Role: core.RoleAssistant, Content: ev.Content}, true
		}
		return speakerMessage(ev.Agent.Name, ev.Content, rules), true

	case core.KindUserMessage:
		return core.Message{Role: core.RoleUser, Content: ev.Content}, true

	case core.KindOrchestratorMessage:
		return speakerMessage(ev.Agent.Name, ev.Content, rules), true

	case core.KindToolResult:
		if ev.ToolResult == nil {
			return core.Message{}, false
		}
		tr := ev.ToolResult
		if rules.ToolRole && ev.Agent.ID == targetID {
			return core.Message{Role: core.RoleTool, Content: tr.Result, ToolCallID: tr.CallID}, true
		}
		content := fmt.Sprintf("Tool %q returned: %s", tr.Tool, tr.Result)
		if tr.IsError {
			content = fmt.Sprintf("Tool %q failed: %s", tr.Tool, tr.Result)
		}
		return core.Message{Role: core.RoleUser, Content: content}, true
	}
	return core.Message{}, false
}

func speakerMessage(speaker, content string, rules core.ModelRules) core.Message {
	if rules.SpeakerNames {
		return core.Message{Role: core.RoleUser, Name: speaker, Content: content}
	}
	return core.Message{Role: core.RoleUser, Content: fmt.Sprintf("%s: %s", speaker, content)}
}

// ensureUserFirst inserts an opening user message when the conversation
// would otherwise start with an assistant or tool message.
func ensureUserFirst(messages []core.Message) []core.Message {
	idx := 0
	for idx < len(messages) && messages[idx].Role == core.RoleSystem {
		idx++
	}
	if idx < len(messages) && messages[idx].Role == core.RoleUser {
		return messages
	}
	opener := core.Message{Role: core.RoleUser, Content: "Begin working on your tasks."}
	out := make([]core.Message, 0, len(messages)+1)
	out = append(out, messages[:idx]...)
	out = append(out, opener)
	out = append(out, messages[idx:]...)
	return out
}
