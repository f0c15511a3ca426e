package scene

import (
	_ "embed"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/lixenwraith/orrery/parameter"
	"github.com/lixenwraith/orrery/vmath"
)

//go:embed sol.yaml
var defaultScene []byte

// File is the on-disk scene description
type File struct {
	Name   string       `yaml:"name"`
	Bodies []BodyConfig `yaml:"bodies"`
}

// BodyConfig describes one body
// Speeds may be given directly (rad per visual unit) or derived from periods in days
// A negative period is retrograde; zero or absent period means no motion
type BodyConfig struct {
	ID     string `yaml:"id"`
	Kind   string `yaml:"kind,omitempty"`
	Parent string `yaml:"parent,omitempty"`

	OrbitalRadius      float64  `yaml:"orbital_radius"`
	OrbitalPeriodDays  float64  `yaml:"orbital_period_days,omitempty"`
	RotationPeriodDays float64  `yaml:"rotation_period_days,omitempty"`
	OrbitalSpeed       *float64 `yaml:"orbital_speed,omitempty"`
	RotationSpeed      *float64 `yaml:"rotation_speed,omitempty"`

	Size             float64 `yaml:"size"`
	MeanLongitudeDeg float64 `yaml:"mean_longitude_deg,omitempty"`
}

// Scene is a loaded registry with its name
type Scene struct {
	Name     string
	Registry *Registry
}

// Default returns a fresh registry of the embedded solar system
func Default() (*Scene, error) {
	return Parse(defaultScene)
}

// LoadFile reads a scene description from a YAML file
func LoadFile(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scene file: %w", err)
	}
	return Parse(data)
}

// Parse builds a registry from YAML scene data
func Parse(data []byte) (*Scene, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing scene YAML: %w", err)
	}
	return f.Build()
}

// Build validates the description and registers every body in file order
func (f *File) Build() (*Scene, error) {
	if len(f.Bodies) == 0 {
		return nil, fmt.Errorf("%w: scene %q has no bodies", ErrInvalidBody, f.Name)
	}
	if len(f.Bodies) > parameter.MaxBodies {
		return nil, fmt.Errorf("%w: scene %q has %d bodies, limit %d", ErrInvalidBody, f.Name, len(f.Bodies), parameter.MaxBodies)
	}

	name := f.Name
	if name == "" {
		name = parameter.DefaultSceneName
	}

	reg := NewRegistry()
	for i, bc := range f.Bodies {
		b, err := bc.body()
		if err != nil {
			return nil, fmt.Errorf("body %d: %w", i, err)
		}
		if _, err := reg.Add(b); err != nil {
			return nil, fmt.Errorf("body %d: %w", i, err)
		}
	}
	return &Scene{Name: name, Registry: reg}, nil
}

func (bc BodyConfig) body() (Body, error) {
	kind, err := ParseKind(bc.Kind)
	if err != nil {
		return Body{}, err
	}

	orbital := speedFromPeriod(bc.OrbitalPeriodDays)
	if bc.OrbitalSpeed != nil {
		orbital = *bc.OrbitalSpeed
	}
	rotation := speedFromPeriod(bc.RotationPeriodDays)
	if bc.RotationSpeed != nil {
		rotation = *bc.RotationSpeed
	}

	lon := bc.MeanLongitudeDeg * math.Pi / 180
	b := Body{
		ID:                bc.ID,
		Kind:              kind,
		Parent:            bc.Parent,
		BaseOrbitalSpeed:  orbital,
		BaseRotationSpeed: rotation,
		OrbitalRadius:     bc.OrbitalRadius,
		Size:              bc.Size,
		MeanLongitude:     lon,
	}
	if vmath.IsFinite(lon) {
		b.orbitAngle = lon
	}
	return b, nil
}

// speedFromPeriod converts a period in days to rad per day
func speedFromPeriod(days float64) float64 {
	if days == 0 {
		return 0
	}
	return vmath.TwoPi / days
}
