package scene

import (
	"fmt"
	"math"
	"strings"

	"github.com/lixenwraith/orrery/vmath"
)

// Kind tags bodies that need special handling or visuals
type Kind uint8

const (
	KindPlanet Kind = iota
	KindStar        // Central body, tighter orbit zone
	KindRinged      // Planet drawn with rings
	KindMoon        // Orbits its parent body instead of the system center
)

var kindNames = [...]string{
	KindPlanet: "planet",
	KindStar:   "star",
	KindRinged: "ringed",
	KindMoon:   "moon",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

// ParseKind resolves a kind name, empty string is a planet
func ParseKind(s string) (Kind, error) {
	if s == "" {
		return KindPlanet, nil
	}
	for k, name := range kindNames {
		if strings.EqualFold(s, name) {
			return Kind(k), nil
		}
	}
	return KindPlanet, fmt.Errorf("%w: unknown kind %q", ErrInvalidBody, s)
}

// Handle is an opaque reference into the host's scene graph
type Handle uint32

// Body is one orbiting entity
// Identity and motion constants are fixed after registration, only angles and position change
type Body struct {
	ID     string
	Kind   Kind
	Parent string // Orbit center body id for moons, empty for the system center

	BaseOrbitalSpeed  float64 // rad per visual time unit, negative is retrograde
	BaseRotationSpeed float64 // rad per visual time unit
	OrbitalRadius     float64
	Size              float64

	// MeanLongitude is the orbit angle at J2000 in radians, used by SeedFromEpoch
	MeanLongitude float64

	Handle Handle

	parent *Body

	orbitAngle    float64
	rotationAngle float64
	orbitRate     float64
	rotationRate  float64
	rateScale     float64
	position      vmath.Vec3F
}

// OrbitAngle returns the current orbit angle in [0, 2π)
func (b *Body) OrbitAngle() float64 { return b.orbitAngle }

// RotationAngle returns the current self-rotation angle in [0, 2π)
func (b *Body) RotationAngle() float64 { return b.rotationAngle }

// Position returns the last computed scene-space position
func (b *Body) Position() vmath.Vec3F { return b.position }

// OrbitRate returns the orbital angular speed for the current time scale magnitude
// Direction comes from the sign of the scale at advance time
func (b *Body) OrbitRate() float64 { return b.orbitRate }

// RotationRate returns the self-rotation angular speed for the current time scale magnitude
func (b *Body) RotationRate() float64 { return b.rotationRate }

// setScale derives the per-body rates from |scale|
func (b *Body) setScale(scale float64) {
	mag := math.Abs(scale)
	b.rateScale = mag
	b.orbitRate = b.BaseOrbitalSpeed * mag
	b.rotationRate = b.BaseRotationSpeed * mag
}

// IsCentral reports whether the body is the system's central body
func (b *Body) IsCentral() bool { return b.Kind == KindStar }

// ParentBody returns the resolved orbit center, nil for the system center
func (b *Body) ParentBody() *Body { return b.parent }

// SetOrbitAngle places the body at angle, wrapped to [0, 2π)
func (b *Body) SetOrbitAngle(angle float64) {
	b.orbitAngle = vmath.WrapAngle(angle)
}

func (b *Body) validate() error {
	if b.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidBody)
	}
	for name, v := range map[string]float64{
		"orbital speed":  b.BaseOrbitalSpeed,
		"rotation speed": b.BaseRotationSpeed,
		"orbital radius": b.OrbitalRadius,
		"size":           b.Size,
		"mean longitude": b.MeanLongitude,
	} {
		if !vmath.IsFinite(v) {
			return fmt.Errorf("%w: %s %s is not finite", ErrInvalidBody, b.ID, name)
		}
	}
	if b.Size <= 0 {
		return fmt.Errorf("%w: %s size must be positive", ErrInvalidBody, b.ID)
	}
	if b.OrbitalRadius < 0 {
		return fmt.Errorf("%w: %s orbital radius must not be negative", ErrInvalidBody, b.ID)
	}
	if b.Kind == KindMoon && b.Parent == "" {
		return fmt.Errorf("%w: moon %s has no parent", ErrInvalidBody, b.ID)
	}
	return nil
}
