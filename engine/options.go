package engine

import (
	"log"
	"time"

	"github.com/lixenwraith/orrery/camera"
	"github.com/lixenwraith/orrery/scene"
)

// Option configures a SimulationContext
type Option func(*options)

type options struct {
	logger      *log.Logger
	sink        scene.TransformSink
	positions   scene.PositionSource
	input       camera.InputSignal
	engage      camera.Engage
	cameraTable string
	duration    time.Duration
	observers   []Observer
}

// WithLogger sets the diagnostic logger, default discards
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithTransformSink forwards body transforms to the host's scene graph
func WithTransformSink(s scene.TransformSink) Option {
	return func(o *options) { o.sink = s }
}

// WithPositionSource reads camera tracking positions from the host instead of the internal graph
func WithPositionSource(p scene.PositionSource) Option {
	return func(o *options) { o.positions = p }
}

// WithInputSignal polls the host for viewer camera control each tick
func WithInputSignal(in camera.InputSignal) Option {
	return func(o *options) { o.input = in }
}

// WithEngage selects what a completed focus enters
func WithEngage(e camera.Engage) Option {
	return func(o *options) { o.engage = e }
}

// WithCameraTable loads the camera transition table from path
func WithCameraTable(path string) Option {
	return func(o *options) { o.cameraTable = path }
}

// WithTransitionDuration overrides the camera transition length
func WithTransitionDuration(d time.Duration) Option {
	return func(o *options) { o.duration = d }
}

// WithObserver adds a notification receiver
func WithObserver(obs Observer) Option {
	return func(o *options) { o.observers = append(o.observers, obs) }
}
