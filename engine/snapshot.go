package engine

import (
	"github.com/lixenwraith/orrery/camera"
	"github.com/lixenwraith/orrery/timectl"
	"github.com/lixenwraith/orrery/vmath"
)

// BodyState is one body in a Snapshot
type BodyState struct {
	ID            string      `json:"id"`
	Kind          string      `json:"kind"`
	Position      vmath.Vec3F `json:"position"`
	Size          float64     `json:"size"`
	OrbitAngle    float64     `json:"orbit_angle"`
	RotationAngle float64     `json:"rotation_angle"`
}

// Snapshot is a self-contained copy of the simulation state after a frame
type Snapshot struct {
	Frame  uint64        `json:"frame"`
	Time   float64       `json:"time"`
	Clock  timectl.State `json:"clock"`
	Camera camera.State  `json:"camera"`
	Bodies []BodyState   `json:"bodies"`
}

// Snapshot copies the current state, safe to hand to other goroutines
func (s *SimulationContext) Snapshot() Snapshot {
	bodies := s.registry.Bodies()
	snap := Snapshot{
		Frame:  s.frame,
		Time:   s.now,
		Clock:  s.time.State(),
		Camera: s.camera.State(),
		Bodies: make([]BodyState, 0, len(bodies)),
	}
	for _, b := range bodies {
		snap.Bodies = append(snap.Bodies, BodyState{
			ID:            b.ID,
			Kind:          b.Kind.String(),
			Position:      b.Position(),
			Size:          b.Size,
			OrbitAngle:    b.OrbitAngle(),
			RotationAngle: b.RotationAngle(),
		})
	}
	return snap
}

// Body returns the snapshot entry for id
func (sn *Snapshot) Body(id string) (BodyState, bool) {
	for _, b := range sn.Bodies {
		if b.ID == id {
			return b, true
		}
	}
	return BodyState{}, false
}
