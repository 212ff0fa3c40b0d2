// Package config handles configuration loading and shared data structures.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/truenorth/compassd/internal/compass"
	"github.com/truenorth/compassd/internal/landmark"
	"github.com/truenorth/compassd/internal/orientation"
)

// Source kinds accepted in the configuration file.
const (
	SourceSimulated = "simulated"
	SourceUDP       = "udp"
)

// Config represents the root configuration file structure.
type Config struct {
	// Landmarks is the path to the JSON landmark catalog.
	Landmarks string `yaml:"landmarks,omitempty"`

	NearbyRadiusKm   float64 `yaml:"nearby_radius_km,omitempty"`
	SnapThresholdDeg float64 `yaml:"snap_threshold_deg,omitempty"`
	AnimationMs      int     `yaml:"animation_ms,omitempty"`

	// ArmDisplacementDeg is the mounting offset subtracted from every
	// corrected heading. Unset means the device default.
	ArmDisplacementDeg *float64 `yaml:"arm_displacement_deg,omitempty"`

	// DeclinationDeg, when set, is used as a fixed magnetic declination
	// instead of a geomagnetic model.
	DeclinationDeg *float64 `yaml:"declination_deg,omitempty"`

	Source Source `yaml:"source,omitempty"`
	Speech Speech `yaml:"speech,omitempty"`
}

// Source selects and configures the orientation feed.
type Source struct {
	Kind string `yaml:"kind,omitempty"`

	// UDP feed settings.
	Listen string `yaml:"listen,omitempty"`

	// Simulated feed settings.
	IntervalMs int     `yaml:"interval_ms,omitempty"`
	StepDeg    float64 `yaml:"step_deg,omitempty"`
	HeadingDeg float64 `yaml:"heading_deg,omitempty"`
	Latitude   float64 `yaml:"latitude,omitempty"`
	Longitude  float64 `yaml:"longitude,omitempty"`
	Altitude   float64 `yaml:"altitude,omitempty"`
}

// Speech configures the external text-to-speech command, if any.
type Speech struct {
	Command string   `yaml:"command,omitempty"`
	Args    []string `yaml:"args,omitempty"`
}

// Load reads and parses the YAML configuration file from the specified
// path, then fills in defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ApplyDefaults fills unset fields with their default values.
func (c *Config) ApplyDefaults() {
	if c.NearbyRadiusKm <= 0 {
		c.NearbyRadiusKm = landmark.DefaultRadiusKm
	}
	if c.SnapThresholdDeg <= 0 {
		c.SnapThresholdDeg = compass.DefaultSnapThreshold
	}
	if c.AnimationMs <= 0 {
		c.AnimationMs = int(compass.DefaultDuration.Milliseconds())
	}
	if c.ArmDisplacementDeg == nil {
		arm := orientation.DefaultArmDisplacement
		c.ArmDisplacementDeg = &arm
	}
	if c.Source.Kind == "" {
		c.Source.Kind = SourceSimulated
	}
	if c.Source.Kind == SourceUDP && c.Source.Listen == "" {
		c.Source.Listen = ":7453"
	}
}

// Validate rejects configurations the daemon cannot run with.
func (c *Config) Validate() error {
	switch c.Source.Kind {
	case SourceSimulated, SourceUDP:
	default:
		return fmt.Errorf("unknown source kind %q", c.Source.Kind)
	}
	return nil
}
