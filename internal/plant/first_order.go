package plant

import "fmt"

const (
	DefaultGain = 1.0
	DefaultTau  = 2.0
)

// FirstOrder is tau*dy/dt = K*u - y.
type FirstOrder struct {
	Gain float64
	Tau  float64
}

func NewFirstOrder() *FirstOrder {
	return &FirstOrder{Gain: DefaultGain, Tau: DefaultTau}
}

func (f *FirstOrder) StateDim() int { return 1 }

func (f *FirstOrder) Derive(x State, u float64, t float64) State {
	return State{(f.Gain*u - x[0]) / f.Tau}
}

func (f *FirstOrder) Measure(x State) float64 { return x[0] }

func (f *FirstOrder) GetParams() map[string]float64 {
	return map[string]float64{
		"gain": f.Gain,
		"tau":  f.Tau,
	}
}

func (f *FirstOrder) SetParam(name string, value float64) error {
	switch name {
	case "gain":
		f.Gain = value
	case "tau":
		if err := positive(name, value); err != nil {
			return err
		}
		f.Tau = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownParam, name)
	}
	return nil
}
