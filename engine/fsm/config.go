package fsm

// RootConfig represents the top-level config structure
type RootConfig struct {
	InitialState string                  `yaml:"initial"`
	States       map[string]*StateConfig `yaml:"states"`
}

// StateConfig represents a single state definition
type StateConfig struct {
	Parent      string             `yaml:"parent,omitempty"`
	OnEnter     []ActionConfig     `yaml:"on_enter,omitempty"`
	OnUpdate    []ActionConfig     `yaml:"on_update,omitempty"`
	OnExit      []ActionConfig     `yaml:"on_exit,omitempty"`
	Transitions []TransitionConfig `yaml:"transitions,omitempty"`
}

// TransitionConfig represents a transition definition
type TransitionConfig struct {
	Trigger string         `yaml:"trigger"`         // Event name or "Tick"
	Target  string         `yaml:"target"`          // Target state name, must be a leaf
	Guard   string         `yaml:"guard,omitempty"` // Guard function name
	Actions []ActionConfig `yaml:"actions,omitempty"`
}

// ActionConfig represents an action definition
type ActionConfig struct {
	Action string         `yaml:"action"`
	Args   map[string]any `yaml:"args,omitempty"`
}
