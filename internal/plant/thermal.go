package plant

import "fmt"

const (
	DefaultHeaterPower = 50.0
	DefaultLoss        = 2.0
	DefaultCapacity    = 20.0
	DefaultAmbient     = 20.0
)

// Thermal is a heated body: C*dT/dt = P*u - k*(T - ambient).
// The heater only adds heat, so negative control is treated as zero.
type Thermal struct {
	Power    float64
	Loss     float64
	Capacity float64
	Ambient  float64
}

func NewThermal() *Thermal {
	return &Thermal{
		Power:    DefaultHeaterPower,
		Loss:     DefaultLoss,
		Capacity: DefaultCapacity,
		Ambient:  DefaultAmbient,
	}
}

func (h *Thermal) StateDim() int { return 1 }

func (h *Thermal) Derive(x State, u float64, t float64) State {
	if u < 0 {
		u = 0
	}
	return State{(h.Power*u - h.Loss*(x[0]-h.Ambient)) / h.Capacity}
}

func (h *Thermal) Measure(x State) float64 { return x[0] }

func (h *Thermal) GetParams() map[string]float64 {
	return map[string]float64{
		"power":    h.Power,
		"loss":     h.Loss,
		"capacity": h.Capacity,
		"ambient":  h.Ambient,
	}
}

func (h *Thermal) SetParam(name string, value float64) error {
	switch name {
	case "power":
		h.Power = value
	case "loss":
		if value < 0 {
			return fmt.Errorf("%w: loss=%g", ErrParameterBounds, value)
		}
		h.Loss = value
	case "capacity":
		if err := positive(name, value); err != nil {
			return err
		}
		h.Capacity = value
	case "ambient":
		h.Ambient = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownParam, name)
	}
	return nil
}
