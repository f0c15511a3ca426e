// Package metrics exports simulation counters to Prometheus
package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lixenwraith/orrery/camera"
	"github.com/lixenwraith/orrery/engine"
	"github.com/lixenwraith/orrery/scene"
)

// Focus request results
const (
	resultOK       = "ok"
	resultNotFound = "not_found"
	resultError    = "error"
)

// Collector is an engine.Observer recording frames, skips and camera activity
type Collector struct {
	registry *prometheus.Registry

	framesTotal        prometheus.Counter
	framesSkipped      prometheus.Counter
	frameDelta         prometheus.Histogram
	bodyUpdatesSkipped *prometheus.CounterVec
	modeTransitions    *prometheus.CounterVec
	focusRequests      *prometheus.CounterVec
	timeScale          prometheus.Gauge
	cameraMode         prometheus.Gauge
}

var _ engine.Observer = (*Collector)(nil)

// NewCollector creates a collector with its own registry
func NewCollector() *Collector {
	m := &Collector{
		registry: prometheus.NewRegistry(),
		framesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "orrery_frames_total",
			Help: "Total number of ticks",
		}),
		framesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "orrery_frames_skipped_total",
			Help: "Ticks rejected for a non-finite or negative delta",
		}),
		frameDelta: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "orrery_frame_delta_seconds",
			Help:    "Accepted frame deltas",
			Buckets: []float64{0.004, 0.008, 0.016, 0.033, 0.05, 0.1, 0.25, 1},
		}),
		bodyUpdatesSkipped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orrery_body_updates_skipped_total",
				Help: "Body updates skipped to protect position state",
			},
			[]string{"body"},
		),
		modeTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orrery_camera_mode_transitions_total",
				Help: "Camera mode changes",
			},
			[]string{"from", "to"},
		),
		focusRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orrery_focus_requests_total",
				Help: "Focus requests by result",
			},
			[]string{"result"},
		),
		timeScale: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "orrery_time_scale",
			Help: "Effective signed time scale of the last tick",
		}),
		cameraMode: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "orrery_camera_mode",
			Help: "Current camera mode (0 Free, 1 Transitioning, 2 Orbiting, 3 Following)",
		}),
	}

	m.registry.MustRegister(
		m.framesTotal,
		m.framesSkipped,
		m.frameDelta,
		m.bodyUpdatesSkipped,
		m.modeTransitions,
		m.focusRequests,
		m.timeScale,
		m.cameraMode,
	)
	return m
}

// Registry returns the collector's registry
func (m *Collector) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Collector) ModeChanged(change camera.ModeChange) {
	m.modeTransitions.WithLabelValues(change.From.String(), change.To.String()).Inc()
	m.cameraMode.Set(float64(change.To))
}

func (m *Collector) FrameDone(f engine.Frame) {
	m.framesTotal.Inc()
	if f.Skipped {
		m.framesSkipped.Inc()
		return
	}
	m.frameDelta.Observe(f.Dt)
	m.timeScale.Set(f.Scale)
}

func (m *Collector) BodySkipped(id string, err error) {
	m.bodyUpdatesSkipped.WithLabelValues(id).Inc()
}

func (m *Collector) FocusRequested(id string, err error) {
	switch {
	case err == nil:
		m.focusRequests.WithLabelValues(resultOK).Inc()
	case errors.Is(err, scene.ErrBodyNotFound):
		m.focusRequests.WithLabelValues(resultNotFound).Inc()
	default:
		m.focusRequests.WithLabelValues(resultError).Inc()
	}
}
