package engine

import (
	"bytes"
	"errors"
	"log"
	"math"
	"strings"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"

	"github.com/lixenwraith/orrery/camera"
	"github.com/lixenwraith/orrery/parameter"
	"github.com/lixenwraith/orrery/scene"
	"github.com/lixenwraith/orrery/vmath"
)

func newTestSim(t *testing.T, opts ...Option) *SimulationContext {
	t.Helper()
	sc, err := scene.Default()
	if err != nil {
		t.Fatalf("Failed to load default scene: %v", err)
	}
	sim, err := New(sc.Registry, opts...)
	if err != nil {
		t.Fatalf("Failed to create simulation: %v", err)
	}
	return sim
}

func tickN(sim *SimulationContext, n int, dt float64) {
	for i := 0; i < n; i++ {
		sim.Tick(dt)
	}
}

func orbitAngles(sim *SimulationContext) map[string]float64 {
	angles := make(map[string]float64)
	for _, b := range sim.Registry().Bodies() {
		angles[b.ID] = b.OrbitAngle()
	}
	return angles
}

type recordingObserver struct {
	BaseObserver
	changes []camera.ModeChange
	frames  []Frame
	skipped []string
	focus   []error
}

func (r *recordingObserver) ModeChanged(c camera.ModeChange) { r.changes = append(r.changes, c) }
func (r *recordingObserver) FrameDone(f Frame)               { r.frames = append(r.frames, f) }
func (r *recordingObserver) BodySkipped(id string, _ error)  { r.skipped = append(r.skipped, id) }
func (r *recordingObserver) FocusRequested(_ string, err error) {
	r.focus = append(r.focus, err)
}

func TestScenarioFocusEntersOrbiting(t *testing.T) {
	sim := newTestSim(t)
	if sim.CameraPose() != camera.DefaultPose() {
		t.Fatalf("Expected default pose at start, got %+v", sim.CameraPose())
	}

	if err := sim.FocusOnBody("Mars"); err != nil {
		t.Fatalf("FocusOnBody failed: %v", err)
	}
	if sim.Mode() != camera.ModeTransitioning {
		t.Fatalf("Expected Transitioning, got %v", sim.Mode())
	}

	tickN(sim, 16, 0.1)
	if sim.Mode() != camera.ModeOrbiting {
		t.Errorf("Expected Orbiting after 1.6s, got %v", sim.Mode())
	}
	if sim.FocusedBody() != "Mars" {
		t.Errorf("Expected focus Mars, got %q", sim.FocusedBody())
	}

	mars, _ := sim.Registry().Lookup("Mars")
	pose := sim.CameraPose()
	if vmath.V3FDist(pose.Target, mars.Position()) > 1e-9 {
		t.Errorf("Expected camera aimed at Mars %v, got %v", mars.Position(), pose.Target)
	}
	if !camera.IsInZone(pose.Position, mars.Position(), mars.Size, false) {
		t.Error("Expected camera inside Mars zone")
	}
}

func TestScenarioFocusUnknownBody(t *testing.T) {
	obs := &recordingObserver{}
	sim := newTestSim(t, WithObserver(obs))

	err := sim.FocusOnBody("Unknown")
	if !errors.Is(err, scene.ErrBodyNotFound) {
		t.Errorf("Expected ErrBodyNotFound, got %v", err)
	}
	if sim.Mode() != camera.ModeFree {
		t.Errorf("Expected mode unchanged Free, got %v", sim.Mode())
	}

	sim.FocusOnBody("Earth")
	tickN(sim, 16, 0.1)
	if err := sim.FocusOnBody("Vulcan"); !errors.Is(err, scene.ErrBodyNotFound) {
		t.Errorf("Expected ErrBodyNotFound, got %v", err)
	}
	if sim.Mode() != camera.ModeOrbiting || sim.FocusedBody() != "Earth" {
		t.Errorf("Expected Orbiting Earth unchanged, got %v %q", sim.Mode(), sim.FocusedBody())
	}

	if len(obs.focus) != 3 || obs.focus[1] != nil || !errors.Is(obs.focus[2], scene.ErrBodyNotFound) {
		t.Errorf("Expected focus results [err nil err], got %v", obs.focus)
	}
}

func TestScenarioManualInterrupt(t *testing.T) {
	sim := newTestSim(t)
	sim.FocusOnBody("Mars")
	tickN(sim, 16, 0.1)
	if sim.Mode() != camera.ModeOrbiting {
		t.Fatalf("Expected Orbiting, got %v", sim.Mode())
	}

	sim.NotifyManualCameraInput()
	sim.Tick(0.016)
	if sim.Mode() != camera.ModeFree {
		t.Errorf("Expected Free on the next tick, got %v", sim.Mode())
	}
	if sim.FocusedBody() != "Mars" {
		t.Errorf("Expected focus kept, got %q", sim.FocusedBody())
	}

	sim.ResetCamera()
	tickN(sim, 16, 0.1)
	if sim.Mode() != camera.ModeFree || sim.FocusedBody() != "" {
		t.Errorf("Expected Free without focus after reset, got %v %q", sim.Mode(), sim.FocusedBody())
	}
}

func TestScenarioPauseFreezesBodies(t *testing.T) {
	sim := newTestSim(t)
	tickN(sim, 3, 0.016)
	before := orbitAngles(sim)

	sim.PauseTime()
	tickN(sim, 100, 0.016)

	for id, angle := range orbitAngles(sim) {
		if angle != before[id] {
			t.Errorf("Expected %s frozen at %v, got %v", id, before[id], angle)
		}
	}
	if sim.TimeState().EffectiveScale != 0 {
		t.Errorf("Expected zero scale, got %v", sim.TimeState().EffectiveScale)
	}

	sim.ResumeTime()
	sim.Tick(0.016)
	earth, _ := sim.Registry().Lookup("Earth")
	if earth.OrbitAngle() == before["Earth"] {
		t.Error("Expected Earth to move after resume")
	}
}

func TestScenarioReverseComposition(t *testing.T) {
	sim := newTestSim(t)
	sim.SetTimeMultiplier(5)
	sim.ReverseTime()
	sim.SetTimeMultiplier(-5)

	state := sim.TimeState()
	if state.EffectiveScale <= 0 {
		t.Fatalf("Expected forward motion, got scale %v", state.EffectiveScale)
	}

	earth, _ := sim.Registry().Lookup("Earth")
	before := earth.OrbitAngle()
	sim.Tick(0.1)
	want := vmath.WrapAngle(before + earth.BaseOrbitalSpeed*state.EffectiveScale*0.1)
	if !scalar.EqualWithinAbs(earth.OrbitAngle(), want, 1e-12) {
		t.Errorf("Expected Earth at %v, got %v", want, earth.OrbitAngle())
	}
}

func TestTickRejectsBadDelta(t *testing.T) {
	var buf bytes.Buffer
	obs := &recordingObserver{}
	sim := newTestSim(t, WithLogger(log.New(&buf, "", 0)), WithObserver(obs))
	sim.FocusOnBody("Earth")
	sim.Tick(0.1)

	before := orbitAngles(sim)
	pose := sim.CameraPose()
	now := sim.Now()

	for _, dt := range []float64{math.NaN(), math.Inf(1), math.Inf(-1), -0.5} {
		sim.Tick(dt)
	}

	for id, angle := range orbitAngles(sim) {
		if angle != before[id] {
			t.Errorf("Expected %s untouched, got %v -> %v", id, before[id], angle)
		}
	}
	if sim.CameraPose() != pose || sim.Now() != now {
		t.Error("Expected camera and frame clock untouched")
	}
	if sim.SkippedFrames() != 4 {
		t.Errorf("Expected 4 skipped frames, got %d", sim.SkippedFrames())
	}
	if !strings.Contains(buf.String(), "frame skipped") {
		t.Errorf("Expected skip to be logged, got %q", buf.String())
	}

	last := obs.frames[len(obs.frames)-1]
	if !last.Skipped || last.Number != sim.FrameNumber() {
		t.Errorf("Expected skipped frame notification, got %+v", last)
	}

	// Recovers on the next good frame
	sim.Tick(0.1)
	if sim.Mode() != camera.ModeTransitioning || sim.Now() <= now {
		t.Errorf("Expected simulation to continue, mode %v now %v", sim.Mode(), sim.Now())
	}
}

func TestTickCapsBodyMotion(t *testing.T) {
	sim := newTestSim(t)
	earth, _ := sim.Registry().Lookup("Earth")
	before := earth.OrbitAngle()
	scale := sim.TimeState().EffectiveScale

	sim.Tick(10)

	want := vmath.WrapAngle(before + earth.BaseOrbitalSpeed*scale*parameter.MaxFrameDelta)
	if !scalar.EqualWithinAbs(earth.OrbitAngle(), want, 1e-12) {
		t.Errorf("Expected capped motion to %v, got %v", want, earth.OrbitAngle())
	}
	if sim.Now() != parameter.MaxFrameDelta {
		t.Errorf("Expected frame clock capped to %v, got %v", parameter.MaxFrameDelta, sim.Now())
	}
}

func TestGlitchDeltaDoesNotStallCamera(t *testing.T) {
	sim := newTestSim(t)
	sim.Tick(1e17)
	if err := sim.FocusOnBody("Mars"); err != nil {
		t.Fatalf("Failed to focus: %v", err)
	}

	tickN(sim, 200, 0.016)

	if sim.Mode() == camera.ModeTransitioning {
		t.Errorf("Expected transition to finish, progress %v", sim.Camera().State().Progress)
	}
	want := parameter.MaxFrameDelta + 200*0.016
	if !scalar.EqualWithinAbs(sim.Now(), want, 1e-9) {
		t.Errorf("Expected frame clock %v, got %v", want, sim.Now())
	}
}

func TestTimeMultiplierClamped(t *testing.T) {
	sim := newTestSim(t)
	if got := sim.SetTimeMultiplier(40); got != parameter.MultiplierMax {
		t.Errorf("Expected clamp to %v, got %v", parameter.MultiplierMax, got)
	}
	if got := sim.SetTimeMultiplier(-40); got != parameter.MultiplierMin {
		t.Errorf("Expected clamp to %v, got %v", parameter.MultiplierMin, got)
	}
}

func TestObserverModeChanges(t *testing.T) {
	obs := &recordingObserver{}
	sim := newTestSim(t, WithObserver(obs), WithEngage(camera.EngageFollow))

	sim.FocusOnBody("Jupiter")
	tickN(sim, 16, 0.1)

	if sim.Mode() != camera.ModeFollowing {
		t.Fatalf("Expected Following, got %v", sim.Mode())
	}
	if len(obs.changes) != 2 {
		t.Fatalf("Expected 2 mode changes, got %v", obs.changes)
	}
	if obs.changes[1].To != camera.ModeFollowing || obs.changes[1].Focus != "Jupiter" {
		t.Errorf("Expected change to Following on Jupiter, got %+v", obs.changes[1])
	}
	if len(obs.frames) != 16 {
		t.Errorf("Expected 16 frames, got %d", len(obs.frames))
	}
}

type countingSink struct {
	writes map[scene.Handle]int
}

func (c *countingSink) SetTransform(h scene.Handle, _ vmath.Vec3F, _ float64) {
	c.writes[h]++
}

func TestHostSinkReceivesTransforms(t *testing.T) {
	sink := &countingSink{writes: make(map[scene.Handle]int)}
	sim := newTestSim(t, WithTransformSink(sink))
	tickN(sim, 5, 0.016)

	for _, b := range sim.Registry().Bodies() {
		// One initial sync plus one per tick
		if sink.writes[b.Handle] != 6 {
			t.Errorf("Expected 6 transforms for %s, got %d", b.ID, sink.writes[b.Handle])
		}
	}

	// Camera still tracks through the internal graph
	if err := sim.FocusOnBody("Saturn"); err != nil {
		t.Errorf("Expected focus through internal graph, got %v", err)
	}
}

func TestDispatchRejectsTick(t *testing.T) {
	sim := newTestSim(t)
	if err := sim.Dispatch(camera.Tick(0, 0.1)); err == nil {
		t.Error("Expected Dispatch to reject tick events")
	}
	if err := sim.Dispatch(camera.Reset(0)); err != nil {
		t.Errorf("Expected reset through Dispatch, got %v", err)
	}
	if sim.Mode() != camera.ModeTransitioning {
		t.Errorf("Expected Transitioning, got %v", sim.Mode())
	}
}

func TestNewRejectsUnframeableBody(t *testing.T) {
	reg := scene.NewRegistry()
	if _, err := reg.Add(scene.Body{ID: "Dust", OrbitalRadius: 4, Size: 0.05}); err != nil {
		t.Fatalf("Failed to add body: %v", err)
	}
	if _, err := New(reg); !errors.Is(err, camera.ErrFraming) {
		t.Errorf("Expected ErrFraming, got %v", err)
	}
	if _, err := New(scene.NewRegistry()); err == nil {
		t.Error("Expected error for empty registry")
	}
}

func TestSnapshot(t *testing.T) {
	sim := newTestSim(t)
	sim.FocusOnBody("Earth")
	sim.Tick(0.2)

	snap := sim.Snapshot()
	if snap.Frame != 1 || snap.Time != 0.2 {
		t.Errorf("Expected frame 1 at 0.2s, got %d at %v", snap.Frame, snap.Time)
	}
	if len(snap.Bodies) != sim.Registry().Len() {
		t.Errorf("Expected %d bodies, got %d", sim.Registry().Len(), len(snap.Bodies))
	}
	if snap.Camera.Mode != camera.ModeTransitioning || snap.Camera.Focus != "Earth" {
		t.Errorf("Expected Transitioning on Earth, got %+v", snap.Camera)
	}
	if snap.Camera.Progress <= 0 || snap.Camera.Progress >= 1 {
		t.Errorf("Expected partial progress, got %v", snap.Camera.Progress)
	}

	moon, ok := snap.Body("Moon")
	if !ok || moon.Kind != "moon" {
		t.Errorf("Expected Moon of kind moon, got %+v", moon)
	}
	if _, ok := snap.Body("Pluto"); ok {
		t.Error("Expected no Pluto in snapshot")
	}
}
