// Package engine hosts the simulation: a SimulationContext owned by the host and advanced by Tick
package engine

import (
	"errors"
	"fmt"
	"io"
	"log"
	"math"

	"github.com/lixenwraith/orrery/camera"
	"github.com/lixenwraith/orrery/parameter"
	"github.com/lixenwraith/orrery/scene"
	"github.com/lixenwraith/orrery/timectl"
	"github.com/lixenwraith/orrery/vmath"
)

// SimulationContext holds all simulation state for one scene
// Not safe for concurrent use; the host calls every method from its frame loop goroutine
type SimulationContext struct {
	// ===== Immutable After Init =====

	registry  *scene.Registry
	graph     *scene.Graph // Internal transforms, default position source
	updater   *scene.Updater
	time      *timectl.Controller
	camera    *camera.Controller
	logger    *log.Logger
	observers []Observer

	// ===== Frame State =====

	frame         uint64
	now           float64 // Frame clock, sum of accepted deltas
	skippedFrames uint64
}

// New builds a context over reg with bodies placed at their current angles
func New(reg *scene.Registry, opts ...Option) (*SimulationContext, error) {
	if reg == nil || reg.Len() == 0 {
		return nil, fmt.Errorf("%w: empty registry", scene.ErrInvalidBody)
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.New(io.Discard, "", 0)
	}

	for _, b := range reg.Bodies() {
		if err := camera.ValidateFraming(b.ID, b.Size, b.IsCentral()); err != nil {
			return nil, err
		}
	}

	graph := scene.NewGraph()
	var sink scene.TransformSink = graph
	if o.sink != nil {
		sink = teeSink{graph, o.sink}
	}
	positions := o.positions
	if positions == nil {
		positions = graph
	}

	cam, err := camera.New(camera.Config{
		Positions: positions,
		Input:     o.input,
		Engage:    o.engage,
		TablePath: o.cameraTable,
		Duration:  o.duration,
	})
	if err != nil {
		return nil, err
	}

	s := &SimulationContext{
		registry:  reg,
		graph:     graph,
		updater:   scene.NewUpdater(sink),
		time:      timectl.New(reg),
		camera:    cam,
		logger:    o.logger,
		observers: o.observers,
	}
	cam.OnModeChange(s.modeChanged)

	// Publish initial transforms so the first camera read sees placed bodies
	s.updater.Sync(reg)
	return s, nil
}

// Tick advances time, then bodies, then the camera by one frame of dt seconds
// A non-finite or negative dt skips the whole frame and is logged
// Deltas above MaxFrameDelta are clamped for every phase, the frame clock included
func (s *SimulationContext) Tick(dt float64) {
	s.frame++
	if !vmath.IsFinite(dt) || dt < 0 {
		s.skippedFrames++
		s.logger.Printf("tick %d: %v: dt=%v, frame skipped", s.frame, scene.ErrNonFiniteDelta, dt)
		s.frameDone(Frame{Number: s.frame, Now: s.now, Dt: dt, Skipped: true})
		return
	}
	step := math.Min(dt, parameter.MaxFrameDelta)
	if step < dt {
		s.logger.Printf("tick %d: dt=%v clamped to %v", s.frame, dt, step)
	}
	s.now += step

	// Time: scale is current, listeners were updated on every control change
	scale := s.time.Scale()

	// Bodies
	skipped := s.updater.AdvanceAll(s.registry, step, scale, s.bodySkipped)

	// Camera: reads positions written above
	if err := s.camera.Dispatch(camera.Tick(s.now, step)); err != nil {
		s.logger.Printf("tick %d: camera: %v", s.frame, err)
	}

	s.frameDone(Frame{Number: s.frame, Now: s.now, Dt: dt, Scale: scale, BodiesSkipped: skipped})
}

// FocusOnBody starts a camera transition to the body
// Unknown ids return scene.ErrBodyNotFound and leave the camera mode unchanged
func (s *SimulationContext) FocusOnBody(id string) error {
	err := s.focus(id)
	if err != nil {
		s.logger.Printf("focus %s: %v", id, err)
	}
	for _, obs := range s.observers {
		obs.FocusRequested(id, err)
	}
	return err
}

func (s *SimulationContext) focus(id string) error {
	b, err := s.registry.Get(id)
	if err != nil {
		return err
	}
	return s.camera.Dispatch(camera.Focus(camera.TargetFor(b), s.now))
}

// ResetCamera transitions to the default pose and clears focus on arrival
func (s *SimulationContext) ResetCamera() {
	if err := s.camera.Dispatch(camera.Reset(s.now)); err != nil {
		s.logger.Printf("reset camera: %v", err)
	}
}

// NotifyManualCameraInput reports viewer drag or zoom, releasing Orbiting or Following on the next tick
func (s *SimulationContext) NotifyManualCameraInput() {
	_ = s.camera.Dispatch(camera.ManualInput())
}

// Dispatch forwards a raw camera event stamped with the frame clock
// Tick events should go through Tick so bodies advance first
func (s *SimulationContext) Dispatch(ev camera.Event) error {
	if ev.Type == camera.EventTick {
		return errors.New("tick events must go through Tick")
	}
	ev.Now = s.now
	return s.camera.Dispatch(ev)
}

// SetTimeMultiplier clamps v to the multiplier bounds, returns the stored multiplier
func (s *SimulationContext) SetTimeMultiplier(v float64) float64 {
	got := s.time.SetMultiplier(v)
	if got != v {
		s.logger.Printf("time multiplier %v clamped to %v", v, got)
	}
	return got
}

// PauseTime freezes all body motion
func (s *SimulationContext) PauseTime() {
	s.time.Pause()
}

// ResumeTime restores body motion
func (s *SimulationContext) ResumeTime() {
	s.time.Resume()
}

// ReverseTime flips the direction of body motion
func (s *SimulationContext) ReverseTime() {
	s.time.Reverse()
}

// TogglePause switches between paused and running
func (s *SimulationContext) TogglePause() {
	s.time.TogglePause()
}

// CameraPose returns the camera pose for this frame
func (s *SimulationContext) CameraPose() camera.Pose {
	return s.camera.Pose()
}

// SetViewerPose records a viewer-controlled pose, accepted only in Free mode
func (s *SimulationContext) SetViewerPose(p camera.Pose) bool {
	return s.camera.SetViewerPose(p)
}

// Mode returns the camera mode
func (s *SimulationContext) Mode() camera.Mode {
	return s.camera.Mode()
}

// FocusedBody returns the focused body id, empty if none
func (s *SimulationContext) FocusedBody() string {
	return s.camera.FocusedBodyID()
}

// SetEngage changes what the next completed focus enters
func (s *SimulationContext) SetEngage(e camera.Engage) {
	s.camera.SetEngage(e)
}

// TimeState returns the time controller state
func (s *SimulationContext) TimeState() timectl.State {
	return s.time.State()
}

// Registry returns the scene's bodies
func (s *SimulationContext) Registry() *scene.Registry {
	return s.registry
}

// Camera exposes the camera controller for read-only inspection
func (s *SimulationContext) Camera() *camera.Controller {
	return s.camera
}

// Now returns the frame clock in seconds
func (s *SimulationContext) Now() float64 {
	return s.now
}

// FrameNumber returns the number of Tick calls, skipped frames included
func (s *SimulationContext) FrameNumber() uint64 {
	return s.frame
}

// SkippedFrames returns the number of rejected deltas
func (s *SimulationContext) SkippedFrames() uint64 {
	return s.skippedFrames
}

func (s *SimulationContext) bodySkipped(b *scene.Body, err error) {
	s.logger.Printf("tick %d: %v", s.frame, err)
	for _, obs := range s.observers {
		obs.BodySkipped(b.ID, err)
	}
}

func (s *SimulationContext) modeChanged(change camera.ModeChange) {
	s.logger.Printf("camera %v -> %v focus=%q", change.From, change.To, change.Focus)
	for _, obs := range s.observers {
		obs.ModeChanged(change)
	}
}

func (s *SimulationContext) frameDone(f Frame) {
	for _, obs := range s.observers {
		obs.FrameDone(f)
	}
}

// teeSink writes transforms to the internal graph and the host sink
type teeSink struct {
	graph *scene.Graph
	host  scene.TransformSink
}

func (t teeSink) SetTransform(h scene.Handle, position vmath.Vec3F, rotation float64) {
	t.graph.SetTransform(h, position, rotation)
	t.host.SetTransform(h, position, rotation)
}
