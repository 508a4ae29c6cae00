package core

import "github.com/hupe1980/teamflow/internal/util"

// Default section templates for the compiled system prompt. Each renders to
// the empty string when its input is empty, so the section drops out of the
// join in CompilePrompt.

const tasksTemplate = `{{if .Tasks}}# Tasks

You and your collaborators are working on the following tasks:
{{range .Tasks}}
- ({{.Status}}) {{.Objective}}{{end}}{{end}}`

const toolsTemplate = `{{if .Tools}}# Tools

You can use the following tools:
{{range .Tools}}
- {{.Name}}: {{.Description}}{{end}}{{end}}`

const instructionsTemplate = `{{if .Instructions}}# Instructions

You must follow these instructions for this part of the run:
{{range .Instructions}}
- {{.}}{{end}}{{end}}`

func renderTasks(tasks []*Task) (string, error) {
	return util.RenderTemplate(tasksTemplate, map[string]any{"Tasks": tasks})
}

func renderTools(tools []Tool) (string, error) {
	return util.RenderTemplate(toolsTemplate, map[string]any{"Tools": tools})
}

func renderInstructions(instructions []string) (string, error) {
	return util.RenderTemplate(instructionsTemplate, map[string]any{"Instructions": instructions})
}
