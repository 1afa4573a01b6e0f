package analysis

import (
	"math"

	"github.com/linuxmatters/soundcheck/internal/audio"
)

// Test signal builders shared across the analysis tests.

// makeRecording wraps channel slices in a Recording.
func makeRecording(rate int, channels ...[]float32) *audio.Recording {
	return &audio.Recording{Channels: channels, SampleRate: rate}
}

// sineWave generates n samples of a sine at freq Hz with the given peak
// amplitude.
func sineWave(freq float64, rate, n int, amplitude float64) []float32 {
	samples := make([]float32, n)
	for i := range samples {
		samples[i] = float32(amplitude * math.Sin(2*math.Pi*freq*float64(i)/float64(rate)))
	}
	return samples
}

// constant generates n samples at a fixed value.
func constant(value float64, n int) []float32 {
	samples := make([]float32, n)
	for i := range samples {
		samples[i] = float32(value)
	}
	return samples
}

// silence generates n zero samples.
func silence(n int) []float32 {
	return make([]float32, n)
}

// concat joins sample slices.
func concat(parts ...[]float32) []float32 {
	var out []float32
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// scaled returns a copy of samples multiplied by factor.
func scaled(samples []float32, factor float64) []float32 {
	out := make([]float32, len(samples))
	for i, s := range samples {
		out[i] = float32(float64(s) * factor)
	}
	return out
}

// approxEqual reports whether two floats are within epsilon.
func approxEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) <= epsilon
}
