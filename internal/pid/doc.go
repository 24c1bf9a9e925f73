// Package pid implements a single-loop Proportional-Integral-Derivative
// controller with output clamping.
//
// A [Controller] is built once per control loop with a fixed sample
// interval, output limits and gains, then driven at that cadence:
//
//	c, err := pid.New(0.1, 100, -100, 0.1, 0.01, 0.5) // dt, max, min, Kp, Kd, Ki
//	if err != nil {
//		return err
//	}
//	u := c.Compute(setpoint, pv)
//
// The controller keeps exactly two scalars of memory: the accumulated
// error and the error of the previous call. The integral accumulates
// unconditionally; clamping applies to the output only.
//
// # Thread Safety
//
// Controller instances are NOT thread-safe. Callers that share one
// instance across goroutines must serialize access themselves.
package pid
