package loop

import (
	"context"
	"fmt"
	"math"

	"github.com/edaniels/golog"

	"github.com/san-kum/pidlab/internal/pid"
	"github.com/san-kum/pidlab/internal/plant"
)

type Runner struct {
	sys       plant.System
	integ     plant.Integrator
	ctrl      *pid.Controller
	metrics   []Metric
	observers []Observer
	logger    golog.Logger
}

func New(sys plant.System, integ plant.Integrator, ctrl *pid.Controller, logger golog.Logger) *Runner {
	return &Runner{
		sys:       sys,
		integ:     integ,
		ctrl:      ctrl,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		logger:    logger,
	}
}

func (r *Runner) AddMetric(m Metric)     { r.metrics = append(r.metrics, m) }
func (r *Runner) AddObserver(o Observer) { r.observers = append(r.observers, o) }

// Run drives the loop for cfg.Duration, one controller tick per sample
// interval. A diverging plant or a NaN output stops the run early; the
// cause is recorded in Result.Errors. The controller memory is cleared
// first, so repeated runs from the same x0 are identical.
func (r *Runner) Run(ctx context.Context, x0 plant.State, cfg Config) (*Result, error) {
	if err := r.validate(x0, cfg); err != nil {
		return nil, err
	}

	dt := r.ctrl.SampleInterval()
	steps := int(math.Round(cfg.Duration / dt))
	result := &Result{
		Samples: make([]Sample, 0, steps),
		States:  make([]plant.State, 0, steps+1),
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}

	for _, m := range r.metrics {
		m.Reset()
	}
	r.ctrl.Reset()

	sess := NewSession(r.sys, r.integ, r.ctrl, x0, cfg.Setpoint, cfg.Substeps)
	result.States = append(result.States, sess.State().Clone())

	r.logger.Infow("loop started", "steps", steps, "dt", dt, "substeps", cfg.Substeps)

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		sample, err := sess.Step()
		if err != nil {
			r.logger.Warnw("loop stopped", "error", err)
			result.Errors = append(result.Errors, err)
			break
		}

		x := sess.State()
		for _, m := range r.metrics {
			m.Observe(sample)
		}
		for _, obs := range r.observers {
			obs.OnStep(sample, x)
		}
		if cfg.Trace {
			r.logger.Debugw("tick",
				"t", sample.Time,
				"setpoint", sample.Setpoint,
				"pv", sample.ProcessValue,
				"output", sample.Output,
				"saturated", sample.Saturated,
			)
		}

		result.Samples = append(result.Samples, sample)
		result.States = append(result.States, x.Clone())
		result.StepsTaken++

		if cfg.ValidateState && !x.IsValid() {
			err := &SimError{Step: i, Time: sess.Time(), Wrapped: ErrInvalidState}
			r.logger.Warnw("loop stopped", "error", err)
			result.Errors = append(result.Errors, err)
			break
		}
	}

	for _, m := range r.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	r.logger.Infow("loop finished", "steps", result.StepsTaken, "errors", len(result.Errors))
	return result, nil
}

func (r *Runner) validate(x0 plant.State, cfg Config) error {
	if cfg.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f", cfg.Duration)
	}
	if cfg.Substeps < 1 {
		return fmt.Errorf("substeps must be at least 1, got %d", cfg.Substeps)
	}
	if cfg.Setpoint == nil {
		return fmt.Errorf("setpoint profile is required")
	}
	if len(x0) != r.sys.StateDim() {
		return fmt.Errorf("%w: state has %d values, plant wants %d", ErrDimensionMismatch, len(x0), r.sys.StateDim())
	}
	return nil
}
