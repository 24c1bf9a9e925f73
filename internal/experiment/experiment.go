package experiment

import (
	"context"
	"fmt"

	"github.com/edaniels/golog"

	"github.com/san-kum/pidlab/internal/config"
	"github.com/san-kum/pidlab/internal/loop"
	"github.com/san-kum/pidlab/internal/pid"
	"github.com/san-kum/pidlab/internal/plant"
)

// Experiment is one configured closed loop, ready to run.
type Experiment struct {
	cfg        *config.Config
	system     plant.System
	integrator plant.Integrator
	controller *pid.Controller
	runner     *loop.Runner
}

// New validates cfg and builds the controller, plant and runner it names.
func New(cfg *config.Config, registry *Registry, logger golog.Logger) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	sys, err := registry.GetPlant(cfg.Plant)
	if err != nil {
		return nil, err
	}
	if c, ok := sys.(plant.Configurable); ok {
		for name, value := range cfg.PlantParams {
			if err := c.SetParam(name, value); err != nil {
				return nil, err
			}
		}
	} else if len(cfg.PlantParams) > 0 {
		return nil, fmt.Errorf("plant %s takes no parameters", cfg.Plant)
	}

	integ, err := registry.GetIntegrator(cfg.Integrator)
	if err != nil {
		return nil, err
	}

	ctrl, err := pid.NewFromParams(cfg.Controller)
	if err != nil {
		return nil, err
	}

	runner := loop.New(sys, integ, ctrl, logger)
	for _, m := range registry.DefaultMetrics(ctrl.SampleInterval()) {
		runner.AddMetric(m)
	}

	return &Experiment{
		cfg:        cfg,
		system:     sys,
		integrator: integ,
		controller: ctrl,
		runner:     runner,
	}, nil
}

// Profile builds the setpoint schedule of the config.
func Profile(sp config.SetpointConfig) loop.Profile {
	if sp.StepTime == 0 {
		return loop.Constant(sp.Initial)
	}
	return loop.StepChange{Before: sp.Initial, After: sp.Final, Time: sp.StepTime}
}

func (e *Experiment) LoopConfig(trace bool) loop.Config {
	return loop.Config{
		Duration:      e.cfg.Duration,
		Substeps:      e.cfg.Substeps,
		Setpoint:      Profile(e.cfg.Setpoint),
		ValidateState: true,
		Trace:         trace,
	}
}

func (e *Experiment) Run(ctx context.Context, trace bool) (*loop.Result, error) {
	return e.runner.Run(ctx, plant.State(e.cfg.GetInitState()), e.LoopConfig(trace))
}

// Session returns a stepwise session over the same controller and plant,
// for interactive use.
func (e *Experiment) Session() *loop.Session {
	return loop.NewSession(e.system, e.integrator, e.controller, plant.State(e.cfg.GetInitState()), Profile(e.cfg.Setpoint), e.cfg.Substeps)
}

// GetRunner returns the underlying runner for adding observers
func (e *Experiment) GetRunner() *loop.Runner {
	return e.runner
}

func (e *Experiment) Config() *config.Config {
	return e.cfg
}
