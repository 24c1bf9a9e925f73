package config

import (
	"fmt"
	"os"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/pidlab/internal/pid"
)

const (
	DefaultDt       = 0.1
	DefaultDuration = 20.0
	DefaultSubsteps = 10
	DefaultMax      = 100.0
	DefaultMin      = -100.0
	DefaultKp       = 2.0
	DefaultKi       = 1.0
	DefaultKd       = 0.1
	DefaultSetpoint = 1.0
)

type Config struct {
	Plant       string             `yaml:"plant"`
	Integrator  string             `yaml:"integrator"`
	Duration    float64            `yaml:"duration"`
	Substeps    int                `yaml:"substeps"`
	InitState   InitStateConfig    `yaml:"init_state"`
	Setpoint    SetpointConfig     `yaml:"setpoint"`
	Controller  pid.Params         `yaml:"controller"`
	PlantParams map[string]float64 `yaml:"plant_params,omitempty"`
}

type InitStateConfig struct {
	Value    float64 `yaml:"value"`
	Velocity float64 `yaml:"velocity"`
}

// SetpointConfig is a constant setpoint when StepTime is zero, otherwise
// Initial until StepTime and Final after.
type SetpointConfig struct {
	Initial  float64 `yaml:"initial"`
	Final    float64 `yaml:"final"`
	StepTime float64 `yaml:"step_time"`
}

func DefaultConfig() *Config {
	return &Config{
		Plant:      "first_order",
		Integrator: "rk4",
		Duration:   DefaultDuration,
		Substeps:   DefaultSubsteps,
		Setpoint: SetpointConfig{
			Initial: DefaultSetpoint,
			Final:   DefaultSetpoint,
		},
		Controller: pid.Params{
			SampleInterval: DefaultDt,
			OutputMax:      DefaultMax,
			OutputMin:      DefaultMin,
			Kp:             DefaultKp,
			Ki:             DefaultKi,
			Kd:             DefaultKd,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate reports every problem with the config at once.
func (c *Config) Validate() error {
	var err error
	if c.Plant == "" {
		err = multierr.Append(err, fmt.Errorf("plant is required"))
	}
	if c.Integrator == "" {
		err = multierr.Append(err, fmt.Errorf("integrator is required"))
	}
	if c.Duration <= 0 {
		err = multierr.Append(err, fmt.Errorf("duration must be positive, got %g", c.Duration))
	}
	if c.Substeps < 1 {
		err = multierr.Append(err, fmt.Errorf("substeps must be at least 1, got %d", c.Substeps))
	}
	if c.Setpoint.StepTime < 0 {
		err = multierr.Append(err, fmt.Errorf("setpoint step_time must not be negative, got %g", c.Setpoint.StepTime))
	}
	return multierr.Append(err, c.Controller.Validate())
}

func (c *Config) GetInitState() []float64 {
	switch c.Plant {
	case "mass":
		return []float64{c.InitState.Value, c.InitState.Velocity}
	default:
		return []float64{c.InitState.Value}
	}
}

// Clone returns a deep copy of c.
func (c *Config) Clone() *Config {
	out := *c
	if c.PlantParams != nil {
		out.PlantParams = make(map[string]float64, len(c.PlantParams))
		for k, v := range c.PlantParams {
			out.PlantParams[k] = v
		}
	}
	return &out
}
