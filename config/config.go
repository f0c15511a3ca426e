// Package config loads host settings from ORRERY_* environment variables
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/lixenwraith/orrery/camera"
)

// ErrInvalid is returned for out-of-range settings
var ErrInvalid = errors.New("invalid configuration")

// Config is the environment configuration shared by all commands
// Command-line flags override these values
type Config struct {
	FPS int `env:"ORRERY_FPS" envDefault:"60"`

	// Scene YAML path, empty uses the embedded solar system
	Scene string `env:"ORRERY_SCENE"`

	// Camera transition table override and engagement (orbit, follow or none)
	CameraTable string        `env:"ORRERY_CAMERA_TABLE"`
	CameraMode  string        `env:"ORRERY_CAMERA_MODE" envDefault:"orbit"`
	Transition  time.Duration `env:"ORRERY_TRANSITION" envDefault:"1500ms"`

	// Empty MetricsAddr disables /metrics
	MetricsAddr string  `env:"ORRERY_METRICS_ADDR"`
	StreamAddr  string  `env:"ORRERY_STREAM_ADDR" envDefault:":8080"`
	StreamHz    float64 `env:"ORRERY_STREAM_HZ" envDefault:"20"`
	// Browser origins allowed on /ws, comma separated, empty allows any
	StreamOrigins []string `env:"ORRERY_STREAM_ORIGINS" envSeparator:","`

	Audio  bool   `env:"ORRERY_AUDIO"`
	Debug  bool   `env:"ORRERY_DEBUG"`
	LogDir string `env:"ORRERY_LOG_DIR" envDefault:"logs"`

	// Epoch is RFC3339, seeds body angles from mean longitudes
	Epoch string `env:"ORRERY_EPOCH"`
}

// Load parses the environment and validates the result
func Load() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return c, fmt.Errorf("parse env: %w", err)
	}
	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

// Validate checks ranges and enumerations
func (c Config) Validate() error {
	if c.FPS < 1 || c.FPS > 240 {
		return fmt.Errorf("%w: fps %d not in [1, 240]", ErrInvalid, c.FPS)
	}
	if c.StreamHz < 0 {
		return fmt.Errorf("%w: stream rate %v is negative", ErrInvalid, c.StreamHz)
	}
	if c.Transition < 0 {
		return fmt.Errorf("%w: transition %v is negative", ErrInvalid, c.Transition)
	}
	if _, err := c.Engage(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if _, _, err := c.EpochTime(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// Engage resolves CameraMode
func (c Config) Engage() (camera.Engage, error) {
	return camera.ParseEngage(c.CameraMode)
}

// EpochTime parses Epoch, ok is false when unset
func (c Config) EpochTime() (t time.Time, ok bool, err error) {
	if c.Epoch == "" {
		return time.Time{}, false, nil
	}
	t, err = time.Parse(time.RFC3339, c.Epoch)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("epoch: %w", err)
	}
	return t, true, nil
}

// FrameInterval returns the tick period for FPS
func (c Config) FrameInterval() time.Duration {
	return time.Second / time.Duration(c.FPS)
}
