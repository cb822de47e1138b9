package cliparser

// FieldDescriptor is a flattened, serialisable view of one option's
// governing definition.
type FieldDescriptor struct {
	Name        string     `json:"name" yaml:"name"`
	Type        OptionType `json:"type" yaml:"type"`
	Mode        string     `json:"mode" yaml:"mode"`
	Switches    []string   `json:"switches,omitempty" yaml:"switches,omitempty"`
	Env         string     `json:"env,omitempty" yaml:"env,omitempty"`
	Required    bool       `json:"required,omitempty" yaml:"required,omitempty"`
	Default     any        `json:"default,omitempty" yaml:"default,omitempty"`
	Silent      bool       `json:"silent,omitempty" yaml:"silent,omitempty"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Definitions int        `json:"definitions" yaml:"definitions"`
	Validators  int        `json:"validators,omitempty" yaml:"validators,omitempty"`
	Handlers    int        `json:"handlers,omitempty" yaml:"handlers,omitempty"`
}

// Describe returns one descriptor per option in first-seen order. Scanning
// fields come from the governing definition; the description is the first
// non-empty one in the chain.
func (r *Registry) Describe() []FieldDescriptor {
	out := make([]FieldDescriptor, 0, len(r.order))
	for _, name := range r.order {
		chain := r.chains[name]
		governing := chain[0].clone()
		field := FieldDescriptor{
			Name:        name,
			Type:        governing.Type,
			Mode:        governing.Arg.Mode.String(),
			Switches:    governing.Arg.Switches,
			Env:         governing.Env,
			Required:    governing.Required,
			Default:     governing.Default,
			Silent:      governing.Silent,
			Definitions: len(chain),
		}
		for _, def := range chain {
			if field.Description == "" {
				field.Description = def.Description
			}
			field.Validators += len(def.Validators)
			field.Handlers += len(def.Handlers)
		}
		if len(field.Switches) == 0 {
			field.Switches = nil
		}
		out = append(out, field)
	}
	return out
}
