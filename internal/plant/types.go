package plant

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrUnknownParam indicates a parameter name the model does not have.
	ErrUnknownParam = errors.New("plant: unknown parameter")

	// ErrParameterBounds indicates a parameter value outside its valid range.
	ErrParameterBounds = errors.New("plant: parameter out of valid bounds")
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// System is a single-input process model.
type System interface {
	Derive(x State, u float64, t float64) State
	// Measure returns the process value the controller observes.
	Measure(x State) float64
	StateDim() int
}

type Integrator interface {
	Step(sys System, x State, u float64, t float64, dt float64) State
}

type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

func positive(name string, value float64) error {
	if !(value > 0) || math.IsInf(value, 0) {
		return fmt.Errorf("%w: %s=%g", ErrParameterBounds, name, value)
	}
	return nil
}
