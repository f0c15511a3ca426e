package scene

import (
	"fmt"
	"math"

	"github.com/lixenwraith/orrery/vmath"
)

// Updater advances body angles and publishes transforms
type Updater struct {
	sink TransformSink
}

// NewUpdater creates an updater writing to sink, nil sink only updates body state
func NewUpdater(sink TransformSink) *Updater {
	return &Updater{sink: sink}
}

// Advance moves one body by dt seconds of motion at the given time scale
// Speeds come from the body's cached rates, refreshed if |scale| changed since the last
// ApplyScale; the sign of scale sets the direction
// Non-finite dt or scale leaves the body untouched and returns ErrNonFiniteDelta
func (u *Updater) Advance(b *Body, dt, scale float64) error {
	if !vmath.IsFinite(dt) || !vmath.IsFinite(scale) {
		return fmt.Errorf("%w: body %s dt=%v scale=%v", ErrNonFiniteDelta, b.ID, dt, scale)
	}
	if math.Abs(scale) != b.rateScale {
		b.setScale(scale)
	}

	dir := 1.0
	if scale < 0 {
		dir = -1
	}
	orbit := b.orbitAngle + dir*b.orbitRate*dt
	spin := b.rotationAngle + dir*b.rotationRate*dt
	if !vmath.IsFinite(orbit) || !vmath.IsFinite(spin) {
		return fmt.Errorf("%w: body %s angle overflow", ErrNonFiniteDelta, b.ID)
	}

	b.orbitAngle = vmath.WrapAngle(orbit)
	b.rotationAngle = vmath.WrapAngle(spin)
	u.place(b)
	return nil
}

// AdvanceAll advances every body in registry order, parents before moons
// Bodies that fail are reported to onSkip and keep their previous state
func (u *Updater) AdvanceAll(reg *Registry, dt, scale float64, onSkip func(*Body, error)) int {
	skipped := 0
	for _, b := range reg.Bodies() {
		if err := u.Advance(b, dt, scale); err != nil {
			skipped++
			if onSkip != nil {
				onSkip(b, err)
			}
		}
	}
	return skipped
}

// Sync recomputes positions from current angles without advancing and publishes them
func (u *Updater) Sync(reg *Registry) {
	for _, b := range reg.Bodies() {
		u.place(b)
	}
}

func (u *Updater) place(b *Body) {
	var center vmath.Vec3F
	if b.parent != nil {
		center = b.parent.position
	}
	b.position = vmath.V3FOnCircle(center, b.OrbitalRadius, b.orbitAngle)
	if u.sink != nil {
		u.sink.SetTransform(b.Handle, b.position, b.rotationAngle)
	}
}
