package plant

import "fmt"

const (
	DefaultMass    = 1.0
	DefaultDamping = 0.5
)

// Mass is a damped point mass driven by a force. State is [position, velocity].
type Mass struct {
	Mass    float64
	Damping float64
}

func NewMass() *Mass {
	return &Mass{Mass: DefaultMass, Damping: DefaultDamping}
}

func (m *Mass) StateDim() int { return 2 }

func (m *Mass) Derive(x State, u float64, t float64) State {
	vel := x[1]
	acc := (u - m.Damping*vel) / m.Mass
	return State{vel, acc}
}

func (m *Mass) Measure(x State) float64 { return x[0] }

func (m *Mass) GetParams() map[string]float64 {
	return map[string]float64{
		"mass":    m.Mass,
		"damping": m.Damping,
	}
}

func (m *Mass) SetParam(name string, value float64) error {
	switch name {
	case "mass":
		if err := positive(name, value); err != nil {
			return err
		}
		m.Mass = value
	case "damping":
		if value < 0 {
			return fmt.Errorf("%w: damping=%g", ErrParameterBounds, value)
		}
		m.Damping = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownParam, name)
	}
	return nil
}
