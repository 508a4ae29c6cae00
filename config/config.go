// Package config loads declarative agent and team definitions from YAML and
// builds the corresponding object graph. Teams reference their members by
// name; a member may be an agent or a previously defined team, so nested
// teams are expressed by ordering definitions bottom-up.
package config

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/teamflow/agent"
	"github.com/hupe1980/teamflow/core"
	"github.com/hupe1980/teamflow/model"
)

// AgentDef declares a single agent.
type AgentDef struct {
	Name         string `yaml:"name"`
	Description  string `yaml:"description,omitempty"`
	Instructions string `yaml:"instructions,omitempty"`
	Prompt       string `yaml:"prompt,omitempty"`
	// Model names an entry in the model registry passed to Build.
	Model string `yaml:"model,omitempty"`
}

// TeamDef declares a team over previously declared members.
type TeamDef struct {
	Name         string   `yaml:"name"`
	Description  string   `yaml:"description,omitempty"`
	Instructions string   `yaml:"instructions,omitempty"`
	Prompt       string   `yaml:"prompt,omitempty"`
	Members      []string `yaml:"members"`
}

// File is the root of a configuration document.
type File struct {
	Agents []AgentDef `yaml:"agents,omitempty"`
	Teams  []TeamDef  `yaml:"teams,omitempty"`
}

// Parse decodes a configuration document. Unknown fields are rejected so
// typos fail fast instead of being silently dropped.
func Parse(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f File
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &f, nil
}

// Build constructs the declared agents and teams. models maps the Model
// field of agent definitions to concrete implementations; an agent with no
// model entry is built without one (useful when the model is attached
// later). The returned registry maps every declared name to its actor.
func (f *File) Build(models map[string]model.Model) (map[string]core.Agent, error) {
	registry := make(map[string]core.Agent, len(f.Agents)+len(f.Teams))

	for _, def := range f.Agents {
		if def.Name == "" {
			return nil, fmt.Errorf("agent definition with empty name")
		}
		if _, exists := registry[def.Name]; exists {
			return nil, fmt.Errorf("duplicate definition %q", def.Name)
		}
		var mdl model.Model
		if def.Model != "" {
			m, ok := models[def.Model]
			if !ok {
				return nil, fmt.Errorf("agent %q references unknown model %q", def.Name, def.Model)
			}
			mdl = m
		}
		registry[def.Name] = agent.New(def.Name, func(o *agent.Options) {
			o.Description = def.Description
			o.Instructions = def.Instructions
			o.Prompt = def.Prompt
			o.Model = mdl
		})
	}

	for _, def := range f.Teams {
		if def.Name == "" {
			return nil, fmt.Errorf("team definition with empty name")
		}
		if _, exists := registry[def.Name]; exists {
			return nil, fmt.Errorf("duplicate definition %q", def.Name)
		}
		members := make([]core.Agent, 0, len(def.Members))
		for _, name := range def.Members {
			m, ok := registry[name]
			if !ok {
				return nil, fmt.Errorf("team %q references unknown member %q", def.Name, name)
			}
			members = append(members, m)
		}
		team, err := agent.NewTeam(def.Name, members, func(o *agent.TeamOptions) {
			o.Description = def.Description
			o.Instructions = def.Instructions
			o.Prompt = def.Prompt
		})
		if err != nil {
			return nil, fmt.Errorf("team %q: %w", def.Name, err)
		}
		registry[def.Name] = team
	}

	return registry, nil
}
