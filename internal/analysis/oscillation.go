package analysis

import (
	"errors"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const minSignal = 8

var (
	ErrShortSignal    = errors.New("analysis: signal too short")
	ErrSampleInterval = errors.New("analysis: sample interval must be positive")
)

type Oscillation struct {
	Frequency float64 `json:"frequency"`
	Period    float64 `json:"period"`
	// Amplitude is the peak amplitude of a sine with the same RMS as the
	// detrended signal.
	Amplitude float64 `json:"amplitude"`
	// Concentration is the share of non-DC spectral power in the dominant
	// bin and its two neighbours.
	Concentration float64 `json:"concentration"`
}

// Sustained reports whether the signal looks like a limit cycle rather
// than noise or a decaying transient.
func (o Oscillation) Sustained(minConcentration, minAmplitude float64) bool {
	return o.Frequency > 0 && o.Concentration >= minConcentration && o.Amplitude >= minAmplitude
}

// PowerSpectrum returns |X_k|^2 for k = 0..n/2 of the mean-removed,
// Hann-windowed signal.
func PowerSpectrum(signal []float64) []float64 {
	n := len(signal)
	if n == 0 {
		return nil
	}

	mean := stat.Mean(signal, nil)
	seq := make([]float64, n)
	for i, v := range signal {
		w := 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n))
		seq[i] = (v - mean) * w
	}

	coeffs := fourier.NewFFT(n).Coefficients(nil, seq)
	ps := make([]float64, len(coeffs))
	for i, c := range coeffs {
		a := cmplx.Abs(c)
		ps[i] = a * a
	}
	return ps
}

func DominantOscillation(signal []float64, dt float64) (Oscillation, error) {
	if !(dt > 0) {
		return Oscillation{}, ErrSampleInterval
	}
	if len(signal) < minSignal {
		return Oscillation{}, ErrShortSignal
	}

	ps := PowerSpectrum(signal)
	ac := ps[1:]
	total := floats.Sum(ac)
	if total == 0 || math.IsNaN(total) {
		return Oscillation{}, nil
	}

	k := floats.MaxIdx(ac)
	lo, hi := k-1, k+2
	if lo < 0 {
		lo = 0
	}
	if hi > len(ac) {
		hi = len(ac)
	}

	n := float64(len(signal))
	freq := float64(k+1) / (n * dt)

	return Oscillation{
		Frequency:     freq,
		Period:        1 / freq,
		Amplitude:     math.Sqrt2 * stat.PopStdDev(signal, nil),
		Concentration: floats.Sum(ac[lo:hi]) / total,
	}, nil
}
