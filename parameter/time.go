package parameter

// Global time control
const (
	// MultiplierMin and MultiplierMax bound the signed speed multiplier
	MultiplierMin = -10.0
	MultiplierMax = 10.0

	// MultiplierDefault is real-time visual speed
	MultiplierDefault = 1.0

	// BaseSpeed is simulated days per real second at multiplier 1
	BaseSpeed = 2.0

	// VisualizationFactor converts simulated days into the visual time unit of body speeds
	// BaseSpeed * VisualizationFactor fixes the real-to-visual time ratio
	VisualizationFactor = 0.5
)

// Frame delta handling
const (
	// MaxFrameDelta caps the seconds of body motion a single tick may apply
	// Prevents a jump after the host stalls (suspended window, debugger)
	MaxFrameDelta = 0.25
)
