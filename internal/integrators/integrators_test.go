package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/pidlab/internal/plant"
)

type decay struct{}

func (d *decay) Derive(x plant.State, u float64, t float64) plant.State {
	return plant.State{u - x[0]}
}

func (d *decay) Measure(x plant.State) float64 { return x[0] }
func (d *decay) StateDim() int                 { return 1 }

func run(integ plant.Integrator, steps int, dt float64) float64 {
	x := plant.State{1.0}
	for i := 0; i < steps; i++ {
		x = integ.Step(&decay{}, x, 0, float64(i)*dt, dt)
	}
	return x[0]
}

func TestRK4Accuracy(t *testing.T) {
	got := run(NewRK4(), 100, 0.01)
	expected := math.Exp(-1.0)

	if math.Abs(got-expected) > 1e-8 {
		t.Errorf("error too large: got %.10f, expected %.10f", got, expected)
	}
}

func TestEulerAccuracy(t *testing.T) {
	got := run(NewEuler(), 100, 0.01)
	expected := math.Exp(-1.0)

	if math.Abs(got-expected) > 5e-3 {
		t.Errorf("error too large: got %.6f, expected %.6f", got, expected)
	}
}

func TestHeldControl(t *testing.T) {
	x := plant.State{0}
	integ := NewRK4()
	for i := 0; i < 1000; i++ {
		x = integ.Step(&decay{}, x, 3, float64(i)*0.01, 0.01)
	}
	if math.Abs(x[0]-3) > 1e-3 {
		t.Errorf("expected state to settle at held control 3, got %f", x[0])
	}
}

func TestRK45Accuracy(t *testing.T) {
	got := run(NewRK45(), 10, 0.1)
	expected := math.Exp(-1.0)

	if math.Abs(got-expected) > 1e-6 {
		t.Errorf("error too large: got %.10f, expected %.10f", got, expected)
	}
}

func TestRK45CoversInterval(t *testing.T) {
	// one coarse interval must still land on the analytic solution
	integ := NewRK45()
	x := integ.Step(&decay{}, plant.State{1.0}, 0, 0, 2.0)
	if math.Abs(x[0]-math.Exp(-2.0)) > 1e-6 {
		t.Errorf("got %.10f, expected %.10f", x[0], math.Exp(-2.0))
	}
}

func TestRK45ZeroInterval(t *testing.T) {
	x := NewRK45().Step(&decay{}, plant.State{0.5}, 1, 0, 0)
	if x[0] != 0.5 {
		t.Errorf("expected unchanged state, got %f", x[0])
	}
}
