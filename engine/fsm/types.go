package fsm

import (
	"time"
)

// StateID is a unique identifier for a node
type StateID int

const (
	StateNone StateID = 0
	StateRoot StateID = 1
)

// EventType identifies an external trigger
// EventTick (0) marks transitions evaluated on every Update
type EventType int

const EventTick EventType = 0

// TickTrigger is the config name of EventTick
const TickTrigger = "Tick"

// Machine is a generic hierarchical finite state machine
// T is the context type passed to actions and guards
type Machine[T any] struct {
	// Graph data, immutable after load
	nodes map[StateID]*Node[T]
	names map[string]StateID

	InitialStateID StateID

	// Runtime state
	activeStateID StateID
	timeInState   time.Duration
	activePath    []StateID // Root -> ... -> Leaf

	// Dependency injection
	eventReg  map[string]EventType
	guardReg  map[string]GuardFunc[T]
	actionReg map[string]ActionFunc[T]
}

// Node represents a state in the hierarchy
type Node[T any] struct {
	ID       StateID
	Name     string
	ParentID StateID

	// Pre-calculated path from Root to this node, used for LCA lookup
	Path []StateID

	// Children counts direct substates, only leaves may be active
	Children int

	OnEnter  []Action[T]
	OnUpdate []Action[T]
	OnExit   []Action[T]

	// Transitions in evaluation priority order
	Transitions []Transition[T]
}

// Transition defines a link between states
type Transition[T any] struct {
	TargetID  StateID
	Event     EventType    // EventTick = evaluated on Update
	Guard     GuardFunc[T] // nil = always true
	GuardName string
	Actions   []Action[T] // Run between source exit and target enter
}

// Action represents a side-effect
type Action[T any] struct {
	Name string
	Func ActionFunc[T]
	Args map[string]any
}

// GuardFunc returns true if the transition should occur
type GuardFunc[T any] func(ctx T) bool

// ActionFunc executes a side effect
type ActionFunc[T any] func(ctx T, args map[string]any)

// Edge is a flattened transition for inspection and tests
type Edge struct {
	From    string
	Trigger string
	Guard   string
	To      string
}
