package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/pidlab/internal/loop"
)

func feed(m loop.Metric, samples ...loop.Sample) float64 {
	for _, s := range samples {
		m.Observe(s)
	}
	return m.Value()
}

func TestControlEffort(t *testing.T) {
	m := NewControlEffort()
	got := feed(m, loop.Sample{Output: 2}, loop.Sample{Output: -4})
	if got != 3 {
		t.Errorf("expected 3, got %f", got)
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero effort after reset")
	}
}

func TestOutputStdDev(t *testing.T) {
	m := NewOutputStdDev()
	if got := feed(m, loop.Sample{Output: 1}, loop.Sample{Output: 1}, loop.Sample{Output: 1}); got != 0 {
		t.Errorf("expected 0 for constant output, got %f", got)
	}
	m.Reset()
	if got := feed(m, loop.Sample{Output: 1}, loop.Sample{Output: 3}); math.Abs(got-math.Sqrt2) > 1e-12 {
		t.Errorf("expected sqrt(2), got %f", got)
	}
}

func TestIAE(t *testing.T) {
	m := NewIAE(0.5)
	got := feed(m,
		loop.Sample{Setpoint: 1, ProcessValue: 0},
		loop.Sample{Setpoint: 1, ProcessValue: 3},
	)
	if got != 1.5 {
		t.Errorf("expected 1.5, got %f", got)
	}
}

func TestSteadyStateError(t *testing.T) {
	m := NewSteadyStateError(0.1)
	samples := make([]loop.Sample, 0, 20)
	for i := 0; i < 18; i++ {
		samples = append(samples, loop.Sample{Setpoint: 10, ProcessValue: 0})
	}
	samples = append(samples, loop.Sample{Setpoint: 10, ProcessValue: 9}, loop.Sample{Setpoint: 10, ProcessValue: 11})

	if got := feed(m, samples...); got != 1 {
		t.Errorf("expected 1 over the last two samples, got %f", got)
	}
}

func TestOvershoot(t *testing.T) {
	tests := []struct {
		name string
		pvs  []float64
		sp   float64
		want float64
	}{
		{"rising with overshoot", []float64{0, 5, 12, 10}, 10, 0.2},
		{"rising without overshoot", []float64{0, 5, 9, 10}, 10, 0},
		{"falling with overshoot", []float64{10, 4, -1, 0}, 0, 0.1},
		{"no step", []float64{3, 3}, 3, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewOvershoot()
			for _, pv := range tt.pvs {
				m.Observe(loop.Sample{Setpoint: tt.sp, ProcessValue: pv})
			}
			if got := m.Value(); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("expected %f, got %f", tt.want, got)
			}
		})
	}
}

func TestSaturation(t *testing.T) {
	m := NewSaturation()
	if m.Value() != 0 {
		t.Error("expected zero with no samples")
	}
	got := feed(m, loop.Sample{Saturated: true}, loop.Sample{}, loop.Sample{}, loop.Sample{Saturated: true})
	if got != 0.5 {
		t.Errorf("expected 0.5, got %f", got)
	}
}
