package metrics

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/pidlab/internal/loop"
)

// ControlEffort is the mean absolute controller output.
type ControlEffort struct {
	name    string
	outputs []float64
}

func NewControlEffort() *ControlEffort {
	return &ControlEffort{
		name: "control_effort",
	}
}

func (c *ControlEffort) Name() string {
	return c.name
}

func (c *ControlEffort) Observe(s loop.Sample) {
	c.outputs = append(c.outputs, math.Abs(s.Output))
}

func (c *ControlEffort) Value() float64 {
	if len(c.outputs) == 0 {
		return 0
	}
	return stat.Mean(c.outputs, nil)
}

func (c *ControlEffort) Reset() {
	c.outputs = c.outputs[:0]
}

// OutputStdDev is the standard deviation of the controller output, a
// measure of actuator chatter.
type OutputStdDev struct {
	outputs []float64
}

func NewOutputStdDev() *OutputStdDev {
	return &OutputStdDev{}
}

func (o *OutputStdDev) Name() string { return "output_stddev" }

func (o *OutputStdDev) Observe(s loop.Sample) {
	o.outputs = append(o.outputs, s.Output)
}

func (o *OutputStdDev) Value() float64 {
	if len(o.outputs) < 2 {
		return 0
	}
	return stat.StdDev(o.outputs, nil)
}

func (o *OutputStdDev) Reset() {
	o.outputs = o.outputs[:0]
}
