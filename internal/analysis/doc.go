// Package analysis inspects recorded loop signals after a run.
//
// The main use is spotting a loop that never settles: an aggressive
// tuning or a saturating actuator often leaves the tracking error in a
// sustained oscillation. [DominantOscillation] finds the strongest
// periodic component of a signal:
//
//	osc, err := analysis.DominantOscillation(errs, dt)
//	if err == nil && osc.Sustained(0.5, 0.01) {
//	    // limit cycle around osc.Period seconds
//	}
package analysis
