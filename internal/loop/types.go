package loop

import "github.com/san-kum/pidlab/internal/plant"

// Sample records one controller tick.
type Sample struct {
	Time         float64 `json:"t"`
	Setpoint     float64 `json:"setpoint"`
	ProcessValue float64 `json:"pv"`
	Output       float64 `json:"output"`
	P            float64 `json:"p"`
	I            float64 `json:"i"`
	D            float64 `json:"d"`
	Saturated    bool    `json:"saturated"`
}

// Error is the control error of the sample.
func (s Sample) Error() float64 {
	return s.Setpoint - s.ProcessValue
}

type Metric interface {
	Name() string
	Observe(s Sample)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(s Sample, x plant.State)
}

type Config struct {
	Duration      float64
	Substeps      int
	Setpoint      Profile
	ValidateState bool
	// Trace logs every tick at debug level.
	Trace bool
}

func DefaultConfig() Config {
	return Config{
		Duration:      10.0,
		Substeps:      10,
		Setpoint:      Constant(1.0),
		ValidateState: true,
	}
}

type Result struct {
	Samples    []Sample
	States     []plant.State
	Metrics    map[string]float64
	StepsTaken int
	Errors     []error
}
