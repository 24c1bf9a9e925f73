// Package metrics scores closed-loop runs. Every metric implements
// [loop.Metric] and is fed one [loop.Sample] per controller tick.
package metrics
