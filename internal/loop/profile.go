package loop

// Profile is a setpoint schedule.
type Profile interface {
	At(t float64) float64
}

// Constant holds the setpoint at one value.
type Constant float64

func (c Constant) At(float64) float64 { return float64(c) }

// StepChange switches from Before to After at Time.
type StepChange struct {
	Before float64
	After  float64
	Time   float64
}

func (s StepChange) At(t float64) float64 {
	if t < s.Time {
		return s.Before
	}
	return s.After
}
