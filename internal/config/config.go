package config

import (
	"fmt"
	"math"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/phitop/internal/dynamo"
	"github.com/san-kum/phitop/internal/integrators"
	"github.com/san-kum/phitop/internal/physics"
)

const (
	DefaultDt       = 1e-3
	DefaultDuration = 18.0
	DefaultGravity  = 9.81
	DefaultFriction = 0.3
)

type Config struct {
	Integrator          string          `yaml:"integrator"`
	Dt                  float64         `yaml:"dt"`
	Duration            float64         `yaml:"duration"`
	Body                BodyConfig      `yaml:"body"`
	Physics             PhysicsConfig   `yaml:"physics"`
	InitState           InitStateConfig `yaml:"init_state"`
	ValidateState       bool            `yaml:"validate"`
	NormalizeQuaternion bool            `yaml:"normalize_quaternion"`
}

// BodyConfig gives the semi-axes along the body x, y and z axes and the mass
// of the ellipsoid, plus any masses fixed to it.
type BodyConfig struct {
	A           float64           `yaml:"a"`
	B           float64           `yaml:"b"`
	C           float64           `yaml:"c"`
	Mass        float64           `yaml:"mass"`
	PointMasses []PointMassConfig `yaml:"point_masses,omitempty"`
}

// PointMassConfig places a mass in the body frame, measured from the
// ellipsoid centre.
type PointMassConfig struct {
	Mass     float64    `yaml:"mass"`
	Position [3]float64 `yaml:"position"`
}

type PhysicsConfig struct {
	Gravity         float64 `yaml:"gravity"`
	Friction        float64 `yaml:"friction"`
	RollFriction    float64 `yaml:"roll_friction"`
	ReferenceHeight float64 `yaml:"reference_height"`
}

type InitStateConfig struct {
	Position [3]float64 `yaml:"position"`
	// Orientation is a quaternion in w, x, y, z order.
	Orientation     [4]float64 `yaml:"orientation"`
	AngularVelocity [3]float64 `yaml:"angular_velocity"`
	Velocity        [3]float64 `yaml:"velocity"`
	// RestOnPlane overrides Position and Velocity: the body is lowered onto
	// the plane and given a velocity from ContactVelocity.
	RestOnPlane     bool   `yaml:"rest_on_plane"`
	ContactVelocity string `yaml:"contact_velocity"`
}

func DefaultConfig() *Config {
	return &Config{
		Integrator: "rk4",
		Dt:         DefaultDt,
		Duration:   DefaultDuration,
		Body: BodyConfig{
			A:    physics.Phi,
			B:    1,
			C:    1,
			Mass: 1,
		},
		Physics: PhysicsConfig{
			Gravity:         DefaultGravity,
			Friction:        DefaultFriction,
			ReferenceHeight: 1,
		},
		InitState: InitStateConfig{
			Position:        [3]float64{0, 0, 1},
			Orientation:     [4]float64{1, 0, 0, 0},
			AngularVelocity: [3]float64{4, -1, 25},
			RestOnPlane:     true,
			ContactVelocity: string(physics.ContactVertical),
		},
	}
}

// Load reads a YAML file over the defaults.
func Load(path string) (*Config, error) {
	return LoadOver(DefaultConfig(), path)
}

// LoadOver reads a YAML file over a copy of base; keys absent from the file
// keep base's values.
func LoadOver(base *Config, path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := *base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the run settings. Body and state consistency is checked
// by physics.Validate once the model is built.
func (c *Config) Validate() error {
	if !(c.Dt > 0) || math.IsInf(c.Dt, 0) {
		return &dynamo.DomainError{Quantity: "dt", Value: c.Dt, Reason: "must be positive and finite"}
	}
	if !(c.Duration > 0) || math.IsInf(c.Duration, 0) {
		return &dynamo.DomainError{Quantity: "duration", Value: c.Duration, Reason: "must be positive and finite"}
	}
	if _, err := integrators.Lookup(c.Integrator); err != nil {
		return err
	}
	if _, err := physics.ParseContactMode(c.InitState.ContactVelocity); err != nil {
		return err
	}
	return nil
}

func (c *Config) Shape() physics.Shape {
	shape := physics.NewEllipsoid(c.Body.A, c.Body.B, c.Body.C, c.Body.Mass)
	points := make([]physics.PointMass, len(c.Body.PointMasses))
	for i, pm := range c.Body.PointMasses {
		points[i] = physics.PointMass{Mass: pm.Mass, Position: mgl64.Vec3(pm.Position)}
	}
	return shape.WithPointMasses(points...)
}

func (c *Config) Params() physics.Params {
	return physics.Params{
		Gravity:         c.Physics.Gravity,
		Friction:        c.Physics.Friction,
		RollFriction:    c.Physics.RollFriction,
		ReferenceHeight: c.Physics.ReferenceHeight,
	}
}

func (c *Config) SimConfig() dynamo.Config {
	return dynamo.Config{
		Dt:            c.Dt,
		Duration:      c.Duration,
		ValidateState: c.ValidateState,
		Project:       c.NormalizeQuaternion,
	}
}

// InitialState builds the 13-component start state. A zero orientation is
// kept as is so that physics.Validate can report it.
func (c *Config) InitialState(shape physics.Shape) (dynamo.State, error) {
	s := c.InitState
	q := mgl64.Quat{W: s.Orientation[0], V: mgl64.Vec3{s.Orientation[1], s.Orientation[2], s.Orientation[3]}}
	if n := q.Len(); n > 0 {
		q = q.Scale(1 / n)
	}
	w := mgl64.Vec3(s.AngularVelocity)

	if s.RestOnPlane {
		mode, err := physics.ParseContactMode(s.ContactVelocity)
		if err != nil {
			return nil, err
		}
		return physics.RestingState(shape, q, w, mode), nil
	}

	return physics.BodyState{
		Position:        mgl64.Vec3(s.Position),
		Orientation:     q,
		Velocity:        mgl64.Vec3(s.Velocity),
		AngularVelocity: w,
	}.Pack(), nil
}
