package agent

import (
	"fmt"

	"github.com/ppiankov/infofact/internal/model"
)

// Definition describes a registrable agent
type Definition struct {
	Name        string
	Description string
	New         func(Deps) (Agent, error)
}

// Registry is an ordered, static set of agent definitions.
// Registration order is listing order.
type Registry struct {
	defs  []Definition
	index map[string]int
}

// NewRegistry builds a registry, rejecting empty and duplicate names
func NewRegistry(defs ...Definition) (*Registry, error) {
	r := &Registry{index: make(map[string]int, len(defs))}
	for _, d := range defs {
		if d.Name == "" || d.New == nil {
			return nil, fmt.Errorf("invalid agent definition %q", d.Name)
		}
		if _, dup := r.index[d.Name]; dup {
			return nil, fmt.Errorf("duplicate agent %q", d.Name)
		}
		r.index[d.Name] = len(r.defs)
		r.defs = append(r.defs, d)
	}
	return r, nil
}

// Default returns the built-in agents
func Default() *Registry {
	r, err := NewRegistry(
		Definition{Name: FactualName, Description: factualDescription, New: NewFactual},
		Definition{Name: MetadataName, Description: metadataDescription, New: NewMetadata},
		Definition{Name: SentimentName, Description: sentimentDescription, New: NewSentiment},
	)
	if err != nil {
		panic(err)
	}
	return r
}

// Lookup returns the definition registered under name
func (r *Registry) Lookup(name string) (Definition, bool) {
	i, ok := r.index[name]
	if !ok {
		return Definition{}, false
	}
	return r.defs[i], true
}

// Names returns agent names in registration order
func (r *Registry) Names() []string {
	names := make([]string, len(r.defs))
	for i, d := range r.defs {
		names[i] = d.Name
	}
	return names
}

// Info lists name/description pairs in registration order
func (r *Registry) Info() []model.AgentInfo {
	info := make([]model.AgentInfo, len(r.defs))
	for i, d := range r.defs {
		info[i] = model.AgentInfo{Name: d.Name, Description: d.Description}
	}
	return info
}

// Build constructs every agent. The first constructor error aborts.
func (r *Registry) Build(deps Deps) ([]Agent, error) {
	agents := make([]Agent, 0, len(r.defs))
	for _, d := range r.defs {
		a, err := d.New(deps)
		if err != nil {
			return nil, fmt.Errorf("construct %s: %w", d.Name, err)
		}
		agents = append(agents, a)
	}
	return agents, nil
}
