package fsm

import (
	"fmt"
	"sort"
	"time"
)

// NewMachine creates a new FSM instance
func NewMachine[T any]() *Machine[T] {
	return &Machine[T]{
		nodes:     make(map[StateID]*Node[T]),
		names:     make(map[string]StateID),
		eventReg:  make(map[string]EventType),
		guardReg:  make(map[string]GuardFunc[T]),
		actionReg: make(map[string]ActionFunc[T]),
		// Typical depth is Root -> Group -> Leaf
		activePath: make([]StateID, 0, 4),
	}
}

// RegisterEvent binds a config trigger name to an event type, EventTick is reserved
func (m *Machine[T]) RegisterEvent(name string, et EventType) {
	if et == EventTick || name == TickTrigger {
		panic(fmt.Sprintf("FSM: event '%s' collides with the tick trigger", name))
	}
	m.eventReg[name] = et
}

// RegisterGuard adds a predicate function to the registry
func (m *Machine[T]) RegisterGuard(name string, fn GuardFunc[T]) {
	m.guardReg[name] = fn
}

// RegisterAction adds a side-effect function to the registry
func (m *Machine[T]) RegisterAction(name string, fn ActionFunc[T]) {
	m.actionReg[name] = fn
}

// Init enters the initial state, running OnEnter from Root down
func (m *Machine[T]) Init(ctx T) error {
	node, ok := m.nodes[m.InitialStateID]
	if !ok {
		return fmt.Errorf("initial state ID %d not found", m.InitialStateID)
	}

	m.activeStateID = node.ID
	m.timeInState = 0
	m.activePath = append(m.activePath[:0], node.Path...)

	for _, id := range m.activePath {
		runActions(ctx, m.nodes[id].OnEnter)
	}
	return nil
}

// Update advances the FSM by dt, running OnUpdate for the leaf then tick transitions, bubbling up
// Returns true if a transition fired
func (m *Machine[T]) Update(ctx T, dt time.Duration) bool {
	if m.activeStateID == StateNone {
		return false
	}

	m.timeInState += dt

	leaf := m.nodes[m.activeStateID]
	runActions(ctx, leaf.OnUpdate)

	return m.fire(ctx, EventTick)
}

// HandleEvent routes an external event from the active leaf up to Root
// Returns true if the event triggered a transition
func (m *Machine[T]) HandleEvent(ctx T, eventType EventType) bool {
	if m.activeStateID == StateNone || eventType == EventTick {
		return false
	}
	return m.fire(ctx, eventType)
}

// fire takes the first transition matching event whose guard passes
func (m *Machine[T]) fire(ctx T, event EventType) bool {
	currID := m.activeStateID
	for currID != StateNone {
		node := m.nodes[currID]
		for i := range node.Transitions {
			trans := &node.Transitions[i]
			if trans.Event != event {
				continue
			}
			if trans.Guard == nil || trans.Guard(ctx) {
				m.transition(ctx, trans)
				return true
			}
		}
		currID = node.ParentID
	}
	return false
}

// transition performs a state change, a transition back to the active leaf re-enters it
func (m *Machine[T]) transition(ctx T, trans *Transition[T]) {
	targetNode, ok := m.nodes[trans.TargetID]
	if !ok {
		panic(fmt.Sprintf("FSM: Attempted transition to unknown state ID %d", trans.TargetID))
	}

	currentPath := m.activePath
	targetPath := targetNode.Path

	// Find LCA, self-transition exits and re-enters the leaf
	lcaIndex := -1
	minLen := min(len(currentPath), len(targetPath))
	for i := 0; i < minLen; i++ {
		if currentPath[i] != targetPath[i] {
			break
		}
		lcaIndex = i
	}
	if trans.TargetID == m.activeStateID {
		lcaIndex = len(currentPath) - 2
	}

	// Exit phase: leaf up to LCA (exclusive)
	for i := len(currentPath) - 1; i > lcaIndex; i-- {
		runActions(ctx, m.nodes[currentPath[i]].OnExit)
	}

	runActions(ctx, trans.Actions)

	// Commit before enter so OnEnter observes the new state
	m.activeStateID = trans.TargetID
	m.timeInState = 0
	m.activePath = append(m.activePath[:0], targetPath...)

	// Enter phase: LCA (exclusive) down to target leaf
	for i := lcaIndex + 1; i < len(targetPath); i++ {
		runActions(ctx, m.nodes[targetPath[i]].OnEnter)
	}
}

// Reset exits the active path and re-enters the initial state
func (m *Machine[T]) Reset(ctx T) error {
	for i := len(m.activePath) - 1; i >= 0; i-- {
		runActions(ctx, m.nodes[m.activePath[i]].OnExit)
	}
	m.activeStateID = StateNone
	m.activePath = m.activePath[:0]
	return m.Init(ctx)
}

// ActiveState returns the active leaf ID
func (m *Machine[T]) ActiveState() StateID {
	return m.activeStateID
}

// ActiveName returns the active leaf name, empty before Init
func (m *Machine[T]) ActiveName() string {
	return m.StateName(m.activeStateID)
}

// StateName returns the name of id, empty if unknown
func (m *Machine[T]) StateName(id StateID) string {
	if node, ok := m.nodes[id]; ok {
		return node.Name
	}
	return ""
}

// IsIn reports whether id is the active leaf or one of its ancestors
func (m *Machine[T]) IsIn(id StateID) bool {
	for _, p := range m.activePath {
		if p == id {
			return true
		}
	}
	return false
}

// TimeInState returns time accumulated by Update since the last transition
func (m *Machine[T]) TimeInState() time.Duration {
	return m.timeInState
}

// Leaves returns the names of all leaf states, sorted
func (m *Machine[T]) Leaves() []string {
	var leaves []string
	for _, node := range m.nodes {
		if node.Children == 0 && node.ID != StateRoot {
			leaves = append(leaves, node.Name)
		}
	}
	sort.Strings(leaves)
	return leaves
}

// Edges flattens every configured transition in declaration order per source, sources sorted by ID
func (m *Machine[T]) Edges() []Edge {
	ids := make([]int, 0, len(m.nodes))
	for id := range m.nodes {
		ids = append(ids, int(id))
	}
	sort.Ints(ids)

	eventNames := make(map[EventType]string, len(m.eventReg)+1)
	eventNames[EventTick] = TickTrigger
	for name, et := range m.eventReg {
		eventNames[et] = name
	}

	var edges []Edge
	for _, id := range ids {
		node := m.nodes[StateID(id)]
		for _, t := range node.Transitions {
			edges = append(edges, Edge{
				From:    node.Name,
				Trigger: eventNames[t.Event],
				Guard:   t.GuardName,
				To:      m.nodes[t.TargetID].Name,
			})
		}
	}
	return edges
}

func runActions[T any](ctx T, actions []Action[T]) {
	for _, action := range actions {
		action.Func(ctx, action.Args)
	}
}
