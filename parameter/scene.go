package parameter

// Scene defaults
const (
	// DefaultSceneName identifies the embedded solar system
	DefaultSceneName = "sol"

	// MaxBodies bounds a scene file; the terminal host assigns focus keys by index
	MaxBodies = 64
)
