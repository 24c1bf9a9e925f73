package pid

import (
	"fmt"
	"math"

	"go.uber.org/multierr"
)

// Params holds the construction-time settings of a Controller.
type Params struct {
	SampleInterval float64 `yaml:"dt" json:"dt"`
	OutputMax      float64 `yaml:"max" json:"max"`
	OutputMin      float64 `yaml:"min" json:"min"`
	Kp             float64 `yaml:"kp" json:"kp"`
	Ki             float64 `yaml:"ki" json:"ki"`
	Kd             float64 `yaml:"kd" json:"kd"`
}

// Validate reports every problem with p, combined into one error.
// Output limits may be infinite to leave a side unbounded; they may not be NaN.
func (p Params) Validate() error {
	var err error

	finite := []struct {
		name  string
		value float64
	}{
		{"dt", p.SampleInterval},
		{"kp", p.Kp},
		{"ki", p.Ki},
		{"kd", p.Kd},
	}
	for _, f := range finite {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			err = multierr.Append(err, &ConfigError{Field: f.name, Value: f.value, Err: ErrNonFinite})
		}
	}
	if math.IsNaN(p.OutputMax) {
		err = multierr.Append(err, &ConfigError{Field: "max", Value: p.OutputMax, Err: ErrNonFinite})
	}
	if math.IsNaN(p.OutputMin) {
		err = multierr.Append(err, &ConfigError{Field: "min", Value: p.OutputMin, Err: ErrNonFinite})
	}

	if p.SampleInterval <= 0 {
		err = multierr.Append(err, &ConfigError{Field: "dt", Value: p.SampleInterval, Err: ErrSampleInterval})
	}
	if p.OutputMin > p.OutputMax {
		err = multierr.Append(err, &ConfigError{Field: "min", Value: p.OutputMin, Err: ErrOutputRange})
	}
	return err
}

// Sample is the term breakdown of one Step.
type Sample struct {
	Error     float64
	P         float64
	I         float64
	D         float64
	Raw       float64
	Output    float64
	Saturated bool
}

// Controller is a PID controller with clamped output.
type Controller struct {
	dt       float64
	max      float64
	min      float64
	kp       float64
	ki       float64
	kd       float64
	integral float64
	prevErr  float64
}

// New returns a controller for a loop sampled every dt, with output
// limited to [min, max]. The argument order is dt, max, min, Kp, Kd, Ki.
func New(dt, max, min, kp, kd, ki float64) (*Controller, error) {
	return NewFromParams(Params{
		SampleInterval: dt,
		OutputMax:      max,
		OutputMin:      min,
		Kp:             kp,
		Ki:             ki,
		Kd:             kd,
	})
}

// NewFromParams is New taking a Params value.
func NewFromParams(p Params) (*Controller, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Controller{
		dt:  p.SampleInterval,
		max: p.OutputMax,
		min: p.OutputMin,
		kp:  p.Kp,
		ki:  p.Ki,
		kd:  p.Kd,
	}, nil
}

// Compute returns the clamped control output for one sample.
// A NaN output is returned as is; use Step to detect it.
func (c *Controller) Compute(setpoint, pv float64) float64 {
	s, _ := c.Step(setpoint, pv)
	return s.Output
}

// Step advances the controller by one sample and returns the term breakdown.
// The state is updated even when the output saturates or is NaN.
func (c *Controller) Step(setpoint, pv float64) (Sample, error) {
	e := setpoint - pv

	p := c.kp * e

	c.integral += e * c.dt
	i := c.ki * c.integral

	derivative := (e - c.prevErr) / c.dt
	d := c.kd * derivative

	raw := p + i + d
	out := clamp(raw, c.min, c.max)

	c.prevErr = e

	s := Sample{
		Error:     e,
		P:         p,
		I:         i,
		D:         d,
		Raw:       raw,
		Output:    out,
		Saturated: raw > c.max || raw < c.min,
	}
	if math.IsNaN(out) {
		return s, ErrNonFiniteOutput
	}
	return s, nil
}

func clamp(v, min, max float64) float64 {
	if v > max {
		return max
	}
	if v < min {
		return min
	}
	return v
}

// Reset clears the accumulated and previous error.
func (c *Controller) Reset() {
	c.integral = 0
	c.prevErr = 0
}

// State returns the accumulated error and the previous error.
func (c *Controller) State() (accumulated, previous float64) {
	return c.integral, c.prevErr
}

// SampleInterval returns the interval the controller expects between calls.
func (c *Controller) SampleInterval() float64 {
	return c.dt
}

// Params returns the controller's current settings.
func (c *Controller) Params() Params {
	return Params{
		SampleInterval: c.dt,
		OutputMax:      c.max,
		OutputMin:      c.min,
		Kp:             c.kp,
		Ki:             c.ki,
		Kd:             c.kd,
	}
}

// GetParams returns tunable parameters for live adjustment
func (c *Controller) GetParams() map[string]float64 {
	return map[string]float64{
		"kp":  c.kp,
		"ki":  c.ki,
		"kd":  c.kd,
		"min": c.min,
		"max": c.max,
	}
}

// SetParam adjusts a tunable parameter. The sample interval is fixed at
// construction. Accumulated state is kept.
func (c *Controller) SetParam(name string, value float64) error {
	next := c.Params()
	switch name {
	case "kp":
		next.Kp = value
	case "ki":
		next.Ki = value
	case "kd":
		next.Kd = value
	case "min":
		next.OutputMin = value
	case "max":
		next.OutputMax = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownParam, name)
	}
	if err := next.Validate(); err != nil {
		return err
	}
	c.kp, c.ki, c.kd = next.Kp, next.Ki, next.Kd
	c.min, c.max = next.OutputMin, next.OutputMax
	return nil
}
