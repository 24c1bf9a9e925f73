package integrators

import (
	"math"

	"github.com/san-kum/pidlab/internal/plant"
)

// Dormand-Prince 5(4) tableau.
var (
	a2 = 1.0 / 5.0
	a3 = 3.0 / 10.0
	a4 = 4.0 / 5.0
	a5 = 8.0 / 9.0

	b21 = 1.0 / 5.0
	b31 = 3.0 / 40.0
	b32 = 9.0 / 40.0
	b41 = 44.0 / 45.0
	b42 = -56.0 / 15.0
	b43 = 32.0 / 9.0
	b51 = 19372.0 / 6561.0
	b52 = -25360.0 / 2187.0
	b53 = 64448.0 / 6561.0
	b54 = -212.0 / 729.0
	b61 = 9017.0 / 3168.0
	b62 = -355.0 / 33.0
	b63 = 46732.0 / 5247.0
	b64 = 49.0 / 176.0
	b65 = -5103.0 / 18656.0

	c1 = 35.0 / 384.0
	c3 = 500.0 / 1113.0
	c4 = 125.0 / 192.0
	c5 = -2187.0 / 6784.0
	c6 = 11.0 / 84.0

	e1 = c1 - 5179.0/57600.0
	e3 = c3 - 7571.0/16695.0
	e4 = c4 - 393.0/640.0
	e5 = c5 + 92097.0/339200.0
	e6 = c6 - 187.0/2100.0
	e7 = -1.0 / 40.0
)

// RK45 integrates one control interval with embedded error control. The
// interval is always covered exactly: rejected steps are retried with a
// smaller h, and the last internal step is shortened to land on t+dt.
// The controller output is held constant across the whole interval.
type RK45 struct {
	Tol      float64
	MinStep  float64
	safety   float64
	minScale float64
	maxScale float64
}

func NewRK45() *RK45 {
	return &RK45{
		Tol:      1e-8,
		MinStep:  1e-9,
		safety:   0.9,
		minScale: 0.2,
		maxScale: 5.0,
	}
}

func (r *RK45) Step(sys plant.System, x plant.State, u float64, t, dt float64) plant.State {
	end := t + dt
	h := dt
	cur := x.Clone()
	if dt <= 0 {
		return cur
	}

	for end-t > 1e-12*dt {
		if t+h > end {
			h = end - t
		}
		next, errNorm := r.attempt(sys, cur, u, t, h)

		if errNorm <= r.Tol || h <= r.MinStep {
			t += h
			cur = next
			if errNorm > 0 {
				h *= math.Min(r.maxScale, r.safety*math.Pow(r.Tol/errNorm, 0.2))
			} else {
				h *= r.maxScale
			}
			continue
		}

		scale := math.Max(r.minScale, r.safety*math.Pow(r.Tol/errNorm, 0.25))
		h = math.Max(h*scale, r.MinStep)
	}

	return cur
}

// attempt takes a single Dormand-Prince step of size h and returns the
// fifth-order solution with the max-norm of the embedded error estimate.
func (r *RK45) attempt(sys plant.System, x plant.State, u float64, t, h float64) (plant.State, float64) {
	n := len(x)
	tmp := make(plant.State, n)

	k1 := sys.Derive(x, u, t)

	for i := range tmp {
		tmp[i] = x[i] + h*b21*k1[i]
	}
	k2 := sys.Derive(tmp, u, t+a2*h)

	for i := range tmp {
		tmp[i] = x[i] + h*(b31*k1[i]+b32*k2[i])
	}
	k3 := sys.Derive(tmp, u, t+a3*h)

	for i := range tmp {
		tmp[i] = x[i] + h*(b41*k1[i]+b42*k2[i]+b43*k3[i])
	}
	k4 := sys.Derive(tmp, u, t+a4*h)

	for i := range tmp {
		tmp[i] = x[i] + h*(b51*k1[i]+b52*k2[i]+b53*k3[i]+b54*k4[i])
	}
	k5 := sys.Derive(tmp, u, t+a5*h)

	for i := range tmp {
		tmp[i] = x[i] + h*(b61*k1[i]+b62*k2[i]+b63*k3[i]+b64*k4[i]+b65*k5[i])
	}
	k6 := sys.Derive(tmp, u, t+h)

	next := make(plant.State, n)
	for i := range next {
		next[i] = x[i] + h*(c1*k1[i]+c3*k3[i]+c4*k4[i]+c5*k5[i]+c6*k6[i])
	}

	k7 := sys.Derive(next, u, t+h)

	var errNorm float64
	for i := range next {
		e := h * (e1*k1[i] + e3*k3[i] + e4*k4[i] + e5*k5[i] + e6*k6[i] + e7*k7[i])
		scale := 1 + math.Max(math.Abs(x[i]), math.Abs(next[i]))
		errNorm = math.Max(errNorm, math.Abs(e)/scale)
	}
	if math.IsNaN(errNorm) {
		errNorm = 0
	}

	return next, errNorm
}
