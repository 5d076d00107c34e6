package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// Spectrum returns the one-sided amplitude spectrum of samples taken every
// dt. The mean is removed first so bin 0 carries no offset. freqs[k] is in
// Hz.
func Spectrum(samples []float64, dt float64) (freqs, amps []float64) {
	n := len(samples)
	if n < 2 || dt <= 0 {
		return nil, nil
	}

	mean := 0.0
	for _, v := range samples {
		mean += v
	}
	mean /= float64(n)

	centered := make([]float64, n)
	for i, v := range samples {
		centered[i] = v - mean
	}

	coeffs := fft.FFTReal(centered)

	half := n/2 + 1
	freqs = make([]float64, half)
	amps = make([]float64, half)
	for k := 0; k < half; k++ {
		freqs[k] = float64(k) / (float64(n) * dt)
		amps[k] = cmplx.Abs(coeffs[k]) / float64(n)
	}
	return freqs, amps
}

// DominantFrequency is the frequency of the largest non-zero spectral bin,
// or 0 when the signal is constant.
func DominantFrequency(samples []float64, dt float64) float64 {
	freqs, amps := Spectrum(samples, dt)

	best, peak := 0, 0.0
	for k := 1; k < len(amps); k++ {
		if amps[k] > peak {
			best, peak = k, amps[k]
		}
	}
	if peak <= 1e-12*math.Max(1, maxAbs(samples)) {
		return 0
	}
	return freqs[best]
}

func maxAbs(xs []float64) float64 {
	m := 0.0
	for _, v := range xs {
		m = math.Max(m, math.Abs(v))
	}
	return m
}
