package config

import (
	"sort"

	"github.com/san-kum/pidlab/internal/pid"
)

var Presets = map[string]map[string]*Config{
	"first_order": {
		"demo": {
			Plant: "first_order", Integrator: "rk4", Duration: 20.0, Substeps: 10,
			InitState:  InitStateConfig{Value: 5},
			Setpoint:   SetpointConfig{Initial: 10, Final: 10},
			Controller: pid.Params{SampleInterval: 0.1, OutputMax: 100, OutputMin: -100, Kp: 0.1, Kd: 0.01, Ki: 0.5},
		},
		"clamping": {
			Plant: "first_order", Integrator: "rk4", Duration: 30.0, Substeps: 10,
			Setpoint:   SetpointConfig{Initial: 100, Final: -100, StepTime: 15},
			Controller: pid.Params{SampleInterval: 1.0, OutputMax: 50, OutputMin: -50, Kp: 10, Kd: 5, Ki: 1},
		},
		"nominal": {
			Plant: "first_order", Integrator: "rk4", Duration: 30.0, Substeps: 10,
			Setpoint:   SetpointConfig{Initial: 10, Final: 10},
			Controller: pid.Params{SampleInterval: 1.0, OutputMax: 100, OutputMin: -100, Kp: 1, Kd: 0.1, Ki: 0.5},
		},
	},
	"mass": {
		"position": {
			Plant: "mass", Integrator: "rk4", Duration: 20.0, Substeps: 10,
			Setpoint:   SetpointConfig{Initial: 1, Final: 1},
			Controller: pid.Params{SampleInterval: 0.05, OutputMax: 20, OutputMin: -20, Kp: 8, Kd: 4, Ki: 0.5},
		},
		"windup": {
			Plant: "mass", Integrator: "rk4", Duration: 30.0, Substeps: 10,
			Setpoint:   SetpointConfig{Initial: 5, Final: 5},
			Controller: pid.Params{SampleInterval: 0.05, OutputMax: 2, OutputMin: -2, Kp: 8, Kd: 3, Ki: 2},
		},
	},
	"thermal": {
		"heat-up": {
			Plant: "thermal", Integrator: "rk4", Duration: 600.0, Substeps: 4,
			InitState:  InitStateConfig{Value: 20},
			Setpoint:   SetpointConfig{Initial: 60, Final: 60},
			Controller: pid.Params{SampleInterval: 1.0, OutputMax: 1, OutputMin: 0, Kp: 0.2, Kd: 0, Ki: 0.01},
		},
		"setback": {
			Plant: "thermal", Integrator: "rk45", Duration: 900.0, Substeps: 4,
			InitState:  InitStateConfig{Value: 20},
			Setpoint:   SetpointConfig{Initial: 60, Final: 40, StepTime: 450},
			Controller: pid.Params{SampleInterval: 1.0, OutputMax: 1, OutputMin: 0, Kp: 0.2, Kd: 0, Ki: 0.01},
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(plant, preset string) *Config {
	plantPresets, ok := Presets[plant]
	if !ok {
		return nil
	}
	cfg, ok := plantPresets[preset]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets(plant string) []string {
	plantPresets, ok := Presets[plant]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(plantPresets))
	for name := range plantPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
