package scene

import (
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

// J2000 is the julian day of the J2000.0 epoch
const J2000 = 2451545.0

// DaysSinceJ2000 returns fractional days between J2000.0 and t
func DaysSinceJ2000(t time.Time) float64 {
	return julian.TimeToJD(t.UTC()) - J2000
}

// SeedFromEpoch places every body at its mean longitude advanced to t
// Uses unscaled base speeds, so the layout approximates the real sky for circular orbits
func SeedFromEpoch(reg *Registry, t time.Time) {
	days := DaysSinceJ2000(t)
	for _, b := range reg.Bodies() {
		b.SetOrbitAngle(b.MeanLongitude + b.BaseOrbitalSpeed*days)
	}
}
