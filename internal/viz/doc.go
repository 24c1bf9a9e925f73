// Package viz renders PID loop runs in the terminal.
//
// [Plot] draws a stored run with asciigraph; [Model] is a Bubble Tea
// program that drives a [loop.Session] live and lets the gains be tuned
// while the loop runs.
package viz
