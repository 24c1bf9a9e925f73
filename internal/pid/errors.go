package pid

import (
	"errors"
	"fmt"
)

// Configuration errors reported by New and SetParam.
var (
	// ErrSampleInterval indicates a sample interval that is zero or negative.
	ErrSampleInterval = errors.New("pid: sample interval must be positive")

	// ErrOutputRange indicates output limits with min above max.
	ErrOutputRange = errors.New("pid: output min exceeds output max")

	// ErrNonFinite indicates a NaN or infinite parameter.
	ErrNonFinite = errors.New("pid: parameter is NaN or infinite")

	// ErrUnknownParam indicates SetParam was called with a name the controller does not tune.
	ErrUnknownParam = errors.New("pid: unknown parameter")
)

// ErrNonFiniteOutput is returned by Step when the computed output is NaN.
var ErrNonFiniteOutput = errors.New("pid: output is NaN")

// ConfigError reports the parameter that failed validation.
type ConfigError struct {
	Field string
	Value float64
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s=%g: %v", e.Field, e.Value, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
