package fsm

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// LoadConfig parses a YAML byte slice and populates the Machine
// Validates all references (states, guards, actions, events)
// Clears existing graph data before loading
func (m *Machine[T]) LoadConfig(data []byte) error {
	var config RootConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return fmt.Errorf("failed to unmarshal FSM config: %w", err)
	}
	return m.LoadRootConfig(&config)
}

// LoadRootConfig builds the graph from an already decoded config
func (m *Machine[T]) LoadRootConfig(config *RootConfig) error {
	if len(config.States) == 0 {
		return fmt.Errorf("FSM config defines no states")
	}

	// Clear existing graph
	m.nodes = make(map[StateID]*Node[T])
	m.names = make(map[string]StateID)
	m.activeStateID = StateNone
	m.activePath = m.activePath[:0]
	m.timeInState = 0

	// First pass: Root node and deterministic IDs
	m.AddState(StateRoot, "Root", StateNone)
	nameToID := map[string]StateID{"Root": StateRoot}

	rootCfg, ok := config.States["Root"]
	if !ok {
		rootCfg = &StateConfig{}
	}

	stateNames := make([]string, 0, len(config.States))
	for name := range config.States {
		if name != "Root" {
			stateNames = append(stateNames, name)
		}
	}
	sort.Strings(stateNames)

	nextID := 2
	for _, name := range stateNames {
		nameToID[name] = StateID(nextID)
		nextID++
	}

	// Second pass: create nodes with parents
	for _, name := range stateNames {
		cfg := config.States[name]
		if cfg == nil {
			cfg = &StateConfig{}
			config.States[name] = cfg
		}
		pName := cfg.Parent
		if pName == "" {
			pName = "Root"
		}
		parentID, ok := nameToID[pName]
		if !ok {
			return fmt.Errorf("state '%s' references unknown parent '%s'", name, pName)
		}
		m.AddState(nameToID[name], name, parentID)
	}

	if err := m.CompilePaths(); err != nil {
		return err
	}

	// Third pass: actions and transitions, targets need child counts
	compile := func(name string, cfg *StateConfig) error {
		node := m.nodes[nameToID[name]]
		var err error
		if node.OnEnter, err = m.compileActions(cfg.OnEnter); err != nil {
			return fmt.Errorf("state '%s' OnEnter: %w", name, err)
		}
		if node.OnUpdate, err = m.compileActions(cfg.OnUpdate); err != nil {
			return fmt.Errorf("state '%s' OnUpdate: %w", name, err)
		}
		if node.OnExit, err = m.compileActions(cfg.OnExit); err != nil {
			return fmt.Errorf("state '%s' OnExit: %w", name, err)
		}
		if err := m.compileTransitions(node, cfg.Transitions, nameToID); err != nil {
			return fmt.Errorf("state '%s' transitions: %w", name, err)
		}
		return nil
	}
	if err := compile("Root", rootCfg); err != nil {
		return err
	}
	for _, name := range stateNames {
		if err := compile(name, config.States[name]); err != nil {
			return err
		}
	}

	// Validate initial state
	initialID, ok := nameToID[config.InitialState]
	if !ok {
		return fmt.Errorf("initial state '%s' not found", config.InitialState)
	}
	if m.nodes[initialID].Children > 0 {
		return fmt.Errorf("initial state '%s' is not a leaf", config.InitialState)
	}
	m.InitialStateID = initialID

	return nil
}

// GetStateID resolves a state name to ID
func (m *Machine[T]) GetStateID(name string) (StateID, bool) {
	id, ok := m.names[name]
	return id, ok
}

func (m *Machine[T]) compileActions(configs []ActionConfig) ([]Action[T], error) {
	actions := make([]Action[T], 0, len(configs))
	for _, cfg := range configs {
		fn, ok := m.actionReg[cfg.Action]
		if !ok {
			return nil, fmt.Errorf("unknown action function '%s'", cfg.Action)
		}
		actions = append(actions, Action[T]{
			Name: cfg.Action,
			Func: fn,
			Args: cfg.Args,
		})
	}
	return actions, nil
}

func (m *Machine[T]) compileTransitions(node *Node[T], configs []TransitionConfig, nameToID map[string]StateID) error {
	for _, cfg := range configs {
		targetID, ok := nameToID[cfg.Target]
		if !ok {
			return fmt.Errorf("unknown target state '%s'", cfg.Target)
		}
		if m.nodes[targetID].Children > 0 {
			return fmt.Errorf("target state '%s' is not a leaf", cfg.Target)
		}

		var event EventType
		if cfg.Trigger != TickTrigger {
			et, ok := m.eventReg[cfg.Trigger]
			if !ok {
				return fmt.Errorf("unknown event '%s'", cfg.Trigger)
			}
			event = et
		}

		var guard GuardFunc[T]
		if cfg.Guard != "" {
			g, ok := m.guardReg[cfg.Guard]
			if !ok {
				return fmt.Errorf("unknown guard '%s'", cfg.Guard)
			}
			guard = g
		}

		actions, err := m.compileActions(cfg.Actions)
		if err != nil {
			return fmt.Errorf("transition to '%s': %w", cfg.Target, err)
		}

		m.AddTransition(node.ID, Transition[T]{
			TargetID:  targetID,
			Event:     event,
			Guard:     guard,
			GuardName: cfg.Guard,
			Actions:   actions,
		})
	}
	return nil
}
