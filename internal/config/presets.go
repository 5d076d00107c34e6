package config

import (
	"math"
	"sort"
)

// Presets are named starting points; each one is a full configuration.
var Presets = map[string]*Config{
	"phitop": DefaultConfig(),
	"frictionless": with(func(c *Config) {
		c.Physics.Friction = 0
	}),
	"sphere": with(func(c *Config) {
		c.Body.A = 1
		c.InitState.AngularVelocity = [3]float64{0, 0, 10}
	}),
	"tilted": with(func(c *Config) {
		c.InitState.Orientation = [4]float64{math.Cos(0.15), 0, math.Sin(0.15), 0}
		c.InitState.ContactVelocity = "rolling"
		c.Duration = 10
	}),
	"rattleback": with(func(c *Config) {
		c.Body.C = 0.5
		c.Body.PointMasses = []PointMassConfig{
			{Mass: 0.2, Position: [3]float64{0.5, 0.5, -0.3}},
			{Mass: 0.2, Position: [3]float64{-0.5, -0.5, -0.3}},
		}
		c.Physics.Friction = 2
		c.InitState.AngularVelocity = [3]float64{0, 0, -3}
		c.Duration = 20
	}),
	"tippe": with(func(c *Config) {
		c.Body.A = 1
		c.Body.PointMasses = []PointMassConfig{
			{Mass: 0.5, Position: [3]float64{0, 0, -0.5}},
		}
		c.Physics.RollFriction = 0.01
		c.InitState.Orientation = [4]float64{math.Cos(0.05), math.Sin(0.05), 0, 0}
		c.InitState.AngularVelocity = [3]float64{0, 0, 40}
		c.InitState.ContactVelocity = "rolling"
		c.Duration = 20
	}),
	"slow": with(func(c *Config) {
		c.InitState.AngularVelocity = [3]float64{1, 0, 6}
		c.Duration = 10
	}),
}

func with(fn func(*Config)) *Config {
	c := DefaultConfig()
	fn(c)
	return c
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	c := *cfg
	return &c
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
