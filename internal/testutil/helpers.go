// Package testutil provides reusable test helpers for convolution tests.
package testutil

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Default tolerances for various test scenarios.
const (
	// DefaultTolerance covers round-off from one forward/inverse FFT pair.
	DefaultTolerance = 1e-10

	// LongTolerance covers long impulse responses where rounding accumulates.
	LongTolerance = 1e-8
)

// AssertSlicesInDelta verifies element-wise equality within tolerance.
func AssertSlicesInDelta(t *testing.T, expected, actual []float64, tolerance float64, msgAndArgs ...any) bool {
	t.Helper()
	if !assert.Len(t, actual, len(expected), msgAndArgs...) {
		return false
	}
	for i := range expected {
		if math.Abs(expected[i]-actual[i]) > tolerance {
			return assert.Fail(t, "slices differ",
				"index %d: expected %g, got %g (tolerance %g)", i, expected[i], actual[i], tolerance)
		}
	}
	return true
}

// AssertAllZero verifies that every element is within tolerance of zero.
func AssertAllZero(t *testing.T, s []float64, tolerance float64, msgAndArgs ...any) bool {
	t.Helper()
	for i, v := range s {
		if math.Abs(v) > tolerance {
			return assert.Fail(t, "non-zero sample", "s[%d]=%g", i, v)
		}
	}
	return true
}

// AssertNoNaNOrInf verifies that no elements in the slice are NaN or Inf.
func AssertNoNaNOrInf(t *testing.T, s []float64, msgAndArgs ...any) bool {
	t.Helper()
	for i, v := range s {
		if math.IsNaN(v) {
			return assert.Fail(t, "found NaN", "s[%d] is NaN", i)
		}
		if math.IsInf(v, 0) {
			return assert.Fail(t, "found Inf", "s[%d] is Inf", i)
		}
	}
	return true
}

// AssertRelativeError verifies that the relative error between actual and expected is within tolerance.
func AssertRelativeError(t *testing.T, expected, actual, tolerance float64, msgAndArgs ...any) bool {
	t.Helper()
	if expected == 0 {
		return assert.InDelta(t, expected, actual, tolerance, msgAndArgs...)
	}
	relError := math.Abs(actual-expected) / math.Abs(expected)
	return assert.LessOrEqual(t, relError, tolerance,
		"relative error %e exceeds tolerance %e (expected=%f, actual=%f)",
		relError, tolerance, expected, actual)
}

// Impulse returns n samples that are zero except for 1 at index at.
func Impulse(n, at int) []float64 {
	s := make([]float64, n)
	if at >= 0 && at < n {
		s[at] = 1
	}
	return s
}

// Sine returns n samples of a unit sine at freq Hz.
func Sine(n int, freq, sampleRate float64) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = math.Sin(2 * math.Pi * freq * float64(i) / sampleRate)
	}
	return s
}

// Noise returns n uniform samples in [-1, 1). The same seed gives the same samples.
func Noise(n int, seed uint64) []float64 {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	s := make([]float64, n)
	for i := range s {
		s[i] = 2*r.Float64() - 1
	}
	return s
}

// DecayingNoise returns noise shaped by exp(-i/tau), a cheap stand-in for a
// reverb impulse response.
func DecayingNoise(n int, tau float64, seed uint64) []float64 {
	s := Noise(n, seed)
	for i := range s {
		s[i] *= math.Exp(-float64(i) / tau)
	}
	return s
}

// DirectConvolve returns the full linear convolution of x and h,
// of length len(x)+len(h)-1, computed term by term.
func DirectConvolve(x, h []float64) []float64 {
	if len(x) == 0 || len(h) == 0 {
		return nil
	}
	y := make([]float64, len(x)+len(h)-1)
	for i, xv := range x {
		if xv == 0 {
			continue
		}
		for j, hv := range h {
			y[i+j] += xv * hv
		}
	}
	return y
}

// StreamBlocks feeds x through process in blocks of size block and returns
// the concatenated output.
func StreamBlocks(x []float64, block int, process func([]float64) []float64) []float64 {
	out := make([]float64, 0, len(x))
	for start := 0; start < len(x); start += block {
		end := min(start+block, len(x))
		out = append(out, process(x[start:end])...)
	}
	return out
}

// AssertInRange verifies that a value is within [min, max].
func AssertInRange(t *testing.T, value, minVal, maxVal float64, msgAndArgs ...any) bool {
	t.Helper()
	if value < minVal || value > maxVal {
		return assert.Fail(t, "value out of range",
			"value %f is outside range [%f, %f]", value, minVal, maxVal)
	}
	return true
}
