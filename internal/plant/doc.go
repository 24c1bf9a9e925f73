// Package plant provides process models for closing a PID loop in simulation.
//
// A [System] describes dX/dt = f(X, u, t) for a single scalar control
// input u, plus the measurement the controller sees:
//
//   - [FirstOrder]: first-order lag, the textbook process
//   - [Mass]: damped point mass pushed by a force, measured by position
//   - [Thermal]: heated body losing heat to ambient, measured by temperature
//
// Models implementing [Configurable] support live tuning.
package plant
