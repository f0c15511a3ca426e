package camera

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"

	"github.com/lixenwraith/orrery/scene"
	"github.com/lixenwraith/orrery/vmath"
)

type testInput struct {
	held bool
}

func (i *testInput) IsUserControllingCamera() bool { return i.held }

type fixture struct {
	t     *testing.T
	graph *scene.Graph
	input *testInput
	c     *Controller
	now   float64
	mars  *Target
}

func newFixture(t *testing.T, engage Engage) *fixture {
	t.Helper()
	f := &fixture{
		t:     t,
		graph: scene.NewGraph(),
		input: &testInput{},
		mars:  &Target{ID: "Mars", Handle: 1, Size: 0.6},
	}
	f.graph.SetTransform(1, vmath.Vec3F{X: 36}, 0)

	c, err := New(Config{Positions: f.graph, Input: f.input, Engage: engage})
	if err != nil {
		t.Fatalf("Failed to create controller: %v", err)
	}
	f.c = c
	return f
}

func (f *fixture) tick(n int) {
	f.t.Helper()
	const dt = 0.1
	for i := 0; i < n; i++ {
		f.now += dt
		if err := f.c.Dispatch(Tick(f.now, dt)); err != nil {
			f.t.Fatalf("Tick failed: %v", err)
		}
	}
}

func (f *fixture) focusMars() {
	f.t.Helper()
	if err := f.c.Dispatch(Focus(f.mars, f.now)); err != nil {
		f.t.Fatalf("Focus failed: %v", err)
	}
}

func (f *fixture) expectMode(want Mode) {
	f.t.Helper()
	if got := f.c.Mode(); got != want {
		f.t.Fatalf("Expected mode %v, got %v", want, got)
	}
}

func TestControllerStartsFree(t *testing.T) {
	f := newFixture(t, EngageOrbit)
	f.expectMode(ModeFree)
	if f.c.Pose() != DefaultPose() {
		t.Errorf("Expected default pose, got %+v", f.c.Pose())
	}
	if f.c.FocusedBodyID() != "" {
		t.Errorf("Expected no focus, got %q", f.c.FocusedBodyID())
	}
}

func TestFocusEntersOrbiting(t *testing.T) {
	f := newFixture(t, EngageOrbit)
	f.focusMars()
	f.expectMode(ModeTransitioning)
	if f.c.Transition() == nil {
		t.Fatal("Expected an in-flight transition")
	}

	f.tick(10)
	f.expectMode(ModeTransitioning)

	f.tick(6)
	f.expectMode(ModeOrbiting)
	if f.c.FocusedBodyID() != "Mars" {
		t.Errorf("Expected focus Mars, got %q", f.c.FocusedBodyID())
	}
	if f.c.Transition() != nil {
		t.Error("Expected transition cleared after arrival")
	}
	if !f.c.InsideZone() {
		t.Error("Expected camera inside Mars zone after arrival")
	}
}

func TestOrbitTracksMovingBody(t *testing.T) {
	f := newFixture(t, EngageOrbit)
	f.focusMars()
	f.tick(16)
	f.expectMode(ModeOrbiting)

	mars, _ := f.graph.GetPosition(1)
	radius := vmath.PlanarRadius(vmath.V3FSub(f.c.Pose().Position, mars))
	startAngle := vmath.PlanarAngle(vmath.V3FSub(f.c.Pose().Position, mars))

	moved := vmath.Vec3F{X: 30, Z: 20}
	f.graph.SetTransform(1, moved, 0)
	f.tick(10)

	pose := f.c.Pose()
	if pose.Target != moved {
		t.Errorf("Expected look-at at current body position %v, got %v", moved, pose.Target)
	}
	offset := vmath.V3FSub(pose.Position, moved)
	if !scalar.EqualWithinAbs(vmath.PlanarRadius(offset), radius, 1e-9) {
		t.Errorf("Expected orbit radius %v, got %v", radius, vmath.PlanarRadius(offset))
	}
	wantAngle := vmath.WrapAngle(startAngle + 0.15*1.0)
	if !scalar.EqualWithinAbs(vmath.PlanarAngle(offset), wantAngle, 1e-9) {
		t.Errorf("Expected orbit angle %v, got %v", wantAngle, vmath.PlanarAngle(offset))
	}
}

func TestFocusUnknownPositionKeepsMode(t *testing.T) {
	f := newFixture(t, EngageOrbit)
	ghost := &Target{ID: "Ghost", Handle: 99, Size: 1}
	if err := f.c.Dispatch(Focus(ghost, 0)); !errors.Is(err, ErrNoPosition) {
		t.Errorf("Expected ErrNoPosition, got %v", err)
	}
	f.expectMode(ModeFree)

	if err := f.c.Dispatch(Event{Type: EventFocus}); !errors.Is(err, ErrNoTarget) {
		t.Errorf("Expected ErrNoTarget, got %v", err)
	}
	f.expectMode(ModeFree)
}

func TestManualInputInterruptsOrbit(t *testing.T) {
	f := newFixture(t, EngageOrbit)
	f.focusMars()
	f.tick(16)
	f.expectMode(ModeOrbiting)

	if err := f.c.Dispatch(ManualInput()); err != nil {
		t.Fatalf("ManualInput failed: %v", err)
	}
	f.expectMode(ModeOrbiting)

	pose := f.c.Pose()
	f.tick(1)
	f.expectMode(ModeFree)
	if f.c.Pose() != pose {
		t.Error("Expected the interrupt tick not to move the camera")
	}
	if f.c.FocusedBodyID() != "Mars" {
		t.Errorf("Expected focus kept after interrupt, got %q", f.c.FocusedBodyID())
	}

	// Focus is only cleared by a completed reset
	if err := f.c.Dispatch(Reset(f.now)); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	f.expectMode(ModeTransitioning)
	if f.c.FocusedBodyID() != "Mars" {
		t.Errorf("Expected focus kept during reset transition, got %q", f.c.FocusedBodyID())
	}
	f.tick(16)
	f.expectMode(ModeFree)
	if f.c.FocusedBodyID() != "" {
		t.Errorf("Expected focus cleared after reset, got %q", f.c.FocusedBodyID())
	}
	if vmath.V3FDist(f.c.Pose().Position, DefaultPose().Position) > 1e-9 {
		t.Errorf("Expected default pose after reset, got %+v", f.c.Pose())
	}
}

func TestManualInputDoesNotInterruptTransition(t *testing.T) {
	f := newFixture(t, EngageOrbit)
	f.focusMars()
	f.tick(5)

	f.input.held = true
	f.tick(3)
	f.expectMode(ModeTransitioning)
	f.input.held = false

	if err := f.c.Dispatch(ManualInput()); err != nil {
		t.Fatalf("ManualInput failed: %v", err)
	}
	f.tick(8)
	f.expectMode(ModeOrbiting)

	// Stale interrupts do not carry over into the engaged mode
	f.tick(3)
	f.expectMode(ModeOrbiting)
}

func TestInputSignalInterruptsFollow(t *testing.T) {
	f := newFixture(t, EngageFollow)
	f.focusMars()
	f.tick(16)
	f.expectMode(ModeFollowing)

	f.input.held = true
	f.tick(1)
	f.expectMode(ModeFree)
}

func TestFollowKeepsOffset(t *testing.T) {
	f := newFixture(t, EngageFollow)
	f.focusMars()
	f.tick(16)
	f.expectMode(ModeFollowing)

	mars, _ := f.graph.GetPosition(1)
	offset := vmath.V3FSub(f.c.Pose().Position, mars)

	moved := vmath.Vec3F{X: -12, Y: 1, Z: 33}
	f.graph.SetTransform(1, moved, 0)
	f.tick(4)

	got := vmath.V3FSub(f.c.Pose().Position, moved)
	if vmath.V3FDist(got, offset) > 1e-9 {
		t.Errorf("Expected constant offset %v, got %v", offset, got)
	}
	if f.c.Pose().Target != moved {
		t.Errorf("Expected look-at %v, got %v", moved, f.c.Pose().Target)
	}
}

func TestEngageNoneReleasesOnArrival(t *testing.T) {
	f := newFixture(t, EngageNone)
	f.focusMars()
	f.tick(16)
	f.expectMode(ModeFree)
	if f.c.FocusedBodyID() != "Mars" {
		t.Errorf("Expected focus Mars, got %q", f.c.FocusedBodyID())
	}
}

func TestTransitionTracksMovingTarget(t *testing.T) {
	f := newFixture(t, EngageOrbit)
	f.focusMars()

	pos := vmath.Vec3F{X: 36}
	for i := 0; i < 16; i++ {
		pos = vmath.V3FAdd(pos, vmath.Vec3F{Z: 0.5})
		f.graph.SetTransform(1, pos, 0)
		f.tick(1)
	}
	f.expectMode(ModeOrbiting)

	pose := f.c.Pose()
	if vmath.V3FDist(pose.Target, pos) > 1e-9 {
		t.Errorf("Expected arrival on current body position %v, got %v", pos, pose.Target)
	}
	if !IsInZone(pose.Position, pos, 0.6, false) {
		t.Error("Expected arrival inside the zone of the moved body")
	}
}

func TestZoneExitReleasesCamera(t *testing.T) {
	f := newFixture(t, EngageOrbit)
	f.focusMars()
	f.tick(16)
	f.expectMode(ModeOrbiting)

	f.c.orbitRadius = 100
	f.tick(1)
	f.expectMode(ModeFree)
	if f.c.InsideZone() {
		t.Error("Expected outside zone")
	}
}

func TestZoneReentryEngages(t *testing.T) {
	f := newFixture(t, EngageOrbit)
	f.focusMars()
	f.tick(16)

	f.input.held = true
	f.tick(1)
	f.expectMode(ModeFree)

	// Viewer drags out of the zone
	far := Pose{Position: vmath.Vec3F{X: 36, Y: 20, Z: 40}, Target: vmath.Vec3F{X: 36}}
	if !f.c.SetViewerPose(far) {
		t.Fatal("Expected viewer pose accepted in Free mode")
	}
	f.tick(1)
	f.expectMode(ModeFree)
	if f.c.InsideZone() {
		t.Error("Expected outside zone after drag")
	}

	// Drags back in while still holding, no engagement
	near := Pose{Position: vmath.Vec3F{X: 38, Y: 1}, Target: vmath.Vec3F{X: 36}}
	f.c.SetViewerPose(near)
	f.tick(1)
	f.expectMode(ModeFree)

	// Out and in again after release
	f.c.SetViewerPose(far)
	f.input.held = false
	f.tick(1)
	f.c.SetViewerPose(near)
	f.tick(1)
	f.expectMode(ModeOrbiting)
}

func TestSetViewerPoseSingleWriter(t *testing.T) {
	f := newFixture(t, EngageOrbit)
	p := Pose{Position: vmath.Vec3F{X: 1, Y: 2, Z: 3}}
	if !f.c.SetViewerPose(p) || f.c.Pose() != p {
		t.Error("Expected pose accepted in Free mode")
	}
	if f.c.SetViewerPose(Pose{Position: vmath.Vec3F{X: math.NaN()}}) {
		t.Error("Expected non-finite pose rejected")
	}

	f.focusMars()
	if f.c.SetViewerPose(p) {
		t.Error("Expected pose rejected while Transitioning")
	}
	f.tick(16)
	if f.c.SetViewerPose(p) {
		t.Error("Expected pose rejected while Orbiting")
	}
}

func TestStateReportsDestination(t *testing.T) {
	f := newFixture(t, EngageOrbit)
	if f.c.State().Destination != nil {
		t.Error("Expected no destination in Free mode")
	}

	f.focusMars()
	f.tick(5)
	st := f.c.State()
	if st.Destination == nil {
		t.Fatal("Expected destination while Transitioning")
	}
	if *st.Destination != f.c.Transition().End() {
		t.Errorf("Expected destination %+v, got %+v", f.c.Transition().End(), *st.Destination)
	}
	if st.Progress <= 0 || st.Progress >= 1 {
		t.Errorf("Expected partial progress, got %v", st.Progress)
	}

	f.tick(11)
	f.expectMode(ModeOrbiting)
	if f.c.State().Destination != nil {
		t.Error("Expected destination cleared after arrival")
	}
}

func TestRefocusRestartsTransition(t *testing.T) {
	f := newFixture(t, EngageOrbit)
	f.graph.SetTransform(2, vmath.Vec3F{X: -55}, 0)
	jupiter := &Target{ID: "Jupiter", Handle: 2, Size: 3}

	f.focusMars()
	f.tick(5)
	first := f.c.Transition()

	if err := f.c.Dispatch(Focus(jupiter, f.now)); err != nil {
		t.Fatalf("Focus failed: %v", err)
	}
	f.expectMode(ModeTransitioning)
	if f.c.Transition() == first {
		t.Error("Expected a new transition")
	}
	if f.c.Transition().StartTime != f.now {
		t.Errorf("Expected restart at %v, got %v", f.now, f.c.Transition().StartTime)
	}
	f.tick(16)
	f.expectMode(ModeOrbiting)
	if f.c.FocusedBodyID() != "Jupiter" {
		t.Errorf("Expected focus Jupiter, got %q", f.c.FocusedBodyID())
	}
}

func TestDispatchRejectsNonFiniteTime(t *testing.T) {
	f := newFixture(t, EngageOrbit)
	f.focusMars()
	before := f.c.Pose()

	for _, ev := range []Event{Tick(math.NaN(), 0.1), Tick(1, math.Inf(1)), Focus(f.mars, math.Inf(-1))} {
		if err := f.c.Dispatch(ev); !errors.Is(err, ErrNonFiniteTime) {
			t.Errorf("Expected ErrNonFiniteTime for %+v, got %v", ev, err)
		}
	}
	f.expectMode(ModeTransitioning)
	if f.c.Pose() != before {
		t.Error("Expected pose untouched by rejected events")
	}
}

func TestModeChangeListeners(t *testing.T) {
	f := newFixture(t, EngageOrbit)
	var changes []ModeChange
	f.c.OnModeChange(func(mc ModeChange) { changes = append(changes, mc) })

	f.focusMars()
	f.tick(16)
	f.c.Dispatch(ManualInput())
	f.tick(1)

	want := []ModeChange{
		{From: ModeFree, To: ModeTransitioning, Focus: "Mars"},
		{From: ModeTransitioning, To: ModeOrbiting, Focus: "Mars"},
		{From: ModeOrbiting, To: ModeFree, Focus: "Mars"},
	}
	if len(changes) != len(want) {
		t.Fatalf("Expected %d changes, got %v", len(want), changes)
	}
	for i := range want {
		if changes[i] != want[i] {
			t.Errorf("Change %d: expected %+v, got %+v", i, want[i], changes[i])
		}
	}
}

func TestTableEdges(t *testing.T) {
	f := newFixture(t, EngageOrbit)
	edges := f.c.Edges()

	modes := map[string]bool{"Free": true, "Transitioning": true, "Orbiting": true, "Following": true}
	seen := make(map[string]bool)
	for _, e := range edges {
		if !modes[e.To] {
			t.Errorf("Expected edge target to be a mode, got %+v", e)
		}
		seen[e.From+"/"+e.Trigger+"/"+e.Guard+"/"+e.To] = true
	}

	for _, key := range []string{
		"Root/Focus//Transitioning",
		"Root/Reset//Transitioning",
		"Transitioning/Tick/ArrivedAtReset/Free",
		"Transitioning/Tick/ArrivedOrbit/Orbiting",
		"Transitioning/Tick/ArrivedFollow/Following",
		"Engaged/Tick/ManualInput/Free",
		"Engaged/Tick/OutsideZone/Free",
		"Free/Tick/ZoneEnteredOrbit/Orbiting",
	} {
		if !seen[key] {
			t.Errorf("Expected edge %s in table", key)
		}
	}
}

func TestCustomTableValidation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "camera.yaml")
	table := []byte(`
initial: Free
states:
  Free: {}
  Transitioning: {}
  Orbiting: {}
`)
	if err := os.WriteFile(path, table, 0o644); err != nil {
		t.Fatalf("Failed to write table: %v", err)
	}

	_, err := New(Config{Positions: scene.NewGraph(), TablePath: path})
	if !errors.Is(err, ErrTable) {
		t.Errorf("Expected ErrTable for a table without Following, got %v", err)
	}

	valid := filepath.Join(dir, "default.yaml")
	if err := os.WriteFile(valid, DefaultTable(), 0o644); err != nil {
		t.Fatalf("Failed to write table: %v", err)
	}
	if _, err := New(Config{Positions: scene.NewGraph(), TablePath: valid}); err != nil {
		t.Errorf("Expected default table to load from file: %v", err)
	}

	if _, err := New(Config{}); err == nil {
		t.Error("Expected error without position source")
	}
}
