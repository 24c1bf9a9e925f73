package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/pidlab/internal/loop"
)

// IAE is the integral of absolute error over the run.
type IAE struct {
	dt     float64
	errors []float64
}

func NewIAE(dt float64) *IAE {
	return &IAE{dt: dt}
}

func (m *IAE) Name() string { return "iae" }

func (m *IAE) Observe(s loop.Sample) {
	m.errors = append(m.errors, math.Abs(s.Error()))
}

func (m *IAE) Value() float64 {
	return floats.Sum(m.errors) * m.dt
}

func (m *IAE) Reset() {
	m.errors = m.errors[:0]
}

// SteadyStateError is the mean absolute error over the trailing window
// of the run, given as a fraction of the samples.
type SteadyStateError struct {
	window float64
	errors []float64
}

func NewSteadyStateError(window float64) *SteadyStateError {
	return &SteadyStateError{window: window}
}

func (m *SteadyStateError) Name() string { return "steady_state_error" }

func (m *SteadyStateError) Observe(s loop.Sample) {
	m.errors = append(m.errors, math.Abs(s.Error()))
}

func (m *SteadyStateError) Value() float64 {
	n := len(m.errors)
	if n == 0 {
		return 0
	}
	k := int(math.Ceil(float64(n) * m.window))
	if k < 1 {
		k = 1
	}
	return stat.Mean(m.errors[n-k:], nil)
}

func (m *SteadyStateError) Reset() {
	m.errors = m.errors[:0]
}

// Overshoot is how far the process value went past the final setpoint,
// as a fraction of the distance from the initial process value.
type Overshoot struct {
	pvs      []float64
	setpoint float64
}

func NewOvershoot() *Overshoot {
	return &Overshoot{}
}

func (m *Overshoot) Name() string { return "overshoot" }

func (m *Overshoot) Observe(s loop.Sample) {
	m.pvs = append(m.pvs, s.ProcessValue)
	m.setpoint = s.Setpoint
}

func (m *Overshoot) Value() float64 {
	if len(m.pvs) == 0 {
		return 0
	}
	span := m.setpoint - m.pvs[0]
	if span == 0 {
		return 0
	}
	var past float64
	if span > 0 {
		past = floats.Max(m.pvs) - m.setpoint
	} else {
		past = m.setpoint - floats.Min(m.pvs)
	}
	if past <= 0 {
		return 0
	}
	return past / math.Abs(span)
}

func (m *Overshoot) Reset() {
	m.pvs = m.pvs[:0]
	m.setpoint = 0
}

// Saturation is the fraction of ticks where the output was clamped.
type Saturation struct {
	name      string
	saturated int
	samples   int
}

func NewSaturation() *Saturation {
	return &Saturation{
		name: "saturation",
	}
}

func (s *Saturation) Name() string {
	return s.name
}

func (s *Saturation) Observe(x loop.Sample) {
	s.samples++
	if x.Saturated {
		s.saturated++
	}
}

func (s *Saturation) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return float64(s.saturated) / float64(s.samples)
}

func (s *Saturation) Reset() {
	s.saturated = 0
	s.samples = 0
}
