package loop

import (
	"github.com/san-kum/pidlab/internal/pid"
	"github.com/san-kum/pidlab/internal/plant"
)

// Session is one controller driving one plant. Not safe for concurrent use.
type Session struct {
	sys      plant.System
	integ    plant.Integrator
	ctrl     *pid.Controller
	profile  Profile
	substeps int

	x0    plant.State
	x     plant.State
	t     float64
	steps int
}

func NewSession(sys plant.System, integ plant.Integrator, ctrl *pid.Controller, x0 plant.State, profile Profile, substeps int) *Session {
	if substeps < 1 {
		substeps = 1
	}
	return &Session{
		sys:      sys,
		integ:    integ,
		ctrl:     ctrl,
		profile:  profile,
		substeps: substeps,
		x0:       x0.Clone(),
		x:        x0.Clone(),
	}
}

// Step computes the controller on the current measurement, then holds
// its output while the plant advances one sample interval.
func (s *Session) Step() (Sample, error) {
	pv := s.sys.Measure(s.x)
	sp := s.profile.At(s.t)

	cs, err := s.ctrl.Step(sp, pv)
	sample := Sample{
		Time:         s.t,
		Setpoint:     sp,
		ProcessValue: pv,
		Output:       cs.Output,
		P:            cs.P,
		I:            cs.I,
		D:            cs.D,
		Saturated:    cs.Saturated,
	}
	if err != nil {
		return sample, &SimError{Step: s.steps, Time: s.t, Wrapped: err}
	}

	dt := s.ctrl.SampleInterval()
	h := dt / float64(s.substeps)
	for i := 0; i < s.substeps; i++ {
		s.x = s.integ.Step(s.sys, s.x, cs.Output, s.t+float64(i)*h, h)
	}

	s.steps++
	s.t = float64(s.steps) * dt

	return sample, nil
}

// Reset restores the initial plant state and clears the controller memory.
func (s *Session) Reset() {
	s.x = s.x0.Clone()
	s.t = 0
	s.steps = 0
	s.ctrl.Reset()
}

func (s *Session) State() plant.State          { return s.x }
func (s *Session) Time() float64               { return s.t }
func (s *Session) Steps() int                  { return s.steps }
func (s *Session) Controller() *pid.Controller { return s.ctrl }
func (s *Session) System() plant.System        { return s.sys }
