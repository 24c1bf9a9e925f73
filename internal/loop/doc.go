// Package loop closes a PID loop around a plant model.
//
// A [Session] holds one controller, one plant and the plant state, and
// advances them one sample interval per [Session.Step]: the controller
// is computed once, its output is held while the plant is integrated
// over the interval. A [Runner] drives a session for a fixed duration,
// feeding [Metric] and [Observer] implementations on every tick.
//
//	ctrl, _ := pid.New(0.1, 100, -100, 2, 0.1, 1)
//	r := loop.New(plant.NewFirstOrder(), integrators.NewRK4(), ctrl, logger)
//	result, err := r.Run(ctx, plant.State{0}, cfg)
package loop
