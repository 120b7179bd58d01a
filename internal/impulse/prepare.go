package impulse

import (
	"fmt"
	"math"

	resampler "github.com/tphakala/go-audio-resampler"

	"github.com/tphakala/go-audio-convolver/internal/mathutil"
	"github.com/tphakala/go-audio-convolver/internal/simdops"
)

// Fade and trim defaults.
const (
	// DefaultFadeAttenuation sets the Kaiser β of truncation fades.
	DefaultFadeAttenuation = 60.0

	// DefaultSilenceThreshold is -80 dB relative to the peak.
	DefaultSilenceThreshold = 1e-4
)

// Resample converts samples from one rate to another with the high quality
// preset. Equal rates return a copy.
func Resample(samples []float64, from, to int) ([]float64, error) {
	if from <= 0 || to <= 0 {
		return nil, fmt.Errorf("%w: %d -> %d", ErrInvalidRate, from, to)
	}
	if from == to {
		return append([]float64(nil), samples...), nil
	}
	out, err := resampler.ResampleMono(samples, float64(from), float64(to), resampler.QualityHigh)
	if err != nil {
		return nil, fmt.Errorf("impulse: resample %d -> %d Hz: %w", from, to, err)
	}
	return out, nil
}

// Peak returns max |x|.
func Peak(samples []float64) float64 {
	var peak float64
	for _, v := range samples {
		peak = max(peak, math.Abs(v))
	}
	return peak
}

// NormalizePeak scales samples in place so that max |x| == target and
// returns the gain applied. Silent input is left alone with gain 1.
func NormalizePeak(samples []float64, target float64) float64 {
	peak := Peak(samples)
	if peak == 0 {
		return 1
	}
	gain := target / peak
	simdops.For[float64]().Scale(samples, samples, gain)
	return gain
}

// NormalizeEnergy scales samples in place so that sum x² == target and
// returns the gain applied. A response normalized to unit energy passes
// white noise at unchanged power.
func NormalizeEnergy(samples []float64, target float64) float64 {
	ops := simdops.For[float64]()
	energy := ops.DotProductUnsafe(samples, samples)
	if energy == 0 {
		return 1
	}
	gain := math.Sqrt(target / energy)
	ops.Scale(samples, samples, gain)
	return gain
}

// RemoveDC subtracts the mean in place and returns it.
func RemoveDC(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	mean := simdops.For[float64]().Sum(samples) / float64(len(samples))
	for i := range samples {
		samples[i] -= mean
	}
	return mean
}

// TrimSilence drops the trailing samples whose magnitude stays below
// threshold times the peak. Leading silence is kept since it is part of
// the response's pre-delay. The result shares storage with samples.
func TrimSilence(samples []float64, threshold float64) []float64 {
	limit := Peak(samples) * threshold
	end := len(samples)
	for end > 0 && math.Abs(samples[end-1]) <= limit {
		end--
	}
	return samples[:end]
}

// Truncate returns at most maxLen samples, tapering the last fadeLen of
// them with the falling half of a Kaiser window. maxLen <= 0 keeps the
// full length. The result is a fresh slice.
func Truncate(samples []float64, maxLen, fadeLen int) []float64 {
	n := len(samples)
	if maxLen > 0 {
		n = min(n, maxLen)
	}
	out := append([]float64(nil), samples[:n]...)

	fadeLen = min(fadeLen, n)
	if fadeLen <= 0 {
		return out
	}
	fade := mathutil.FadeOut(fadeLen, mathutil.KaiserBeta(DefaultFadeAttenuation))
	tail := out[n-fadeLen:]
	for i, g := range fade {
		tail[i] *= g
	}
	return out
}
