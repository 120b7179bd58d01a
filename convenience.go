package convolver

import (
	"github.com/tphakala/go-audio-convolver/internal/engine"
	"github.com/tphakala/go-audio-convolver/internal/simdops"
)

// NewMono creates a single-channel convolver with default settings.
func NewMono(ir []float64) (Convolver, error) {
	cfg := DefaultConfig(monoChannels)
	return New(&cfg, ir)
}

// NewStereo creates a two-channel convolver sharing one impulse response.
func NewStereo(ir []float64) (Convolver, error) {
	cfg := DefaultConfig(stereoChannels)
	return New(&cfg, ir)
}

// ConvolveMono returns the full linear convolution of input and ir,
// len(input)+len(ir)-1 samples, computed with the partitioned engine.
func ConvolveMono(input, ir []float64) ([]float64, error) {
	e, err := engine.New(ir, DefaultFFTSize, engine.BackendGonum)
	if err != nil {
		return nil, err
	}
	if len(input) == 0 {
		return []float64{}, nil
	}

	// A single call is exact for any length; only the split across calls
	// needs segment alignment.
	out := make([]float64, len(input)+len(ir)-1)
	copy(out, input)
	if err := e.ProcessTo(out, out); err != nil {
		return nil, err
	}
	return out, nil
}

// ConvolveStereo convolves both channels with the same impulse response.
func ConvolveStereo(left, right, ir []float64) (leftOut, rightOut []float64, err error) {
	leftOut, err = ConvolveMono(left, ir)
	if err != nil {
		return nil, nil, err
	}

	rightOut, err = ConvolveMono(right, ir)
	if err != nil {
		return nil, nil, err
	}

	return leftOut, rightOut, nil
}

// ConvolveDirect is the time-domain reference for ConvolveMono. It costs
// O(len(input)·len(ir)) and suits short kernels and verification.
func ConvolveDirect(input, ir []float64) ([]float64, error) {
	return convolveDirect(input, ir)
}

// ConvolveDirectFloat32 is ConvolveDirect for float32 samples.
func ConvolveDirectFloat32(input, ir []float32) ([]float32, error) {
	return convolveDirect(input, ir)
}

func convolveDirect[F simdops.Float](input, ir []F) ([]F, error) {
	if len(ir) == 0 {
		return nil, ErrEmptyImpulseResponse
	}
	if len(input) == 0 {
		return []F{}, nil
	}

	m := len(ir)
	reversed := make([]F, m)
	for i, v := range ir {
		reversed[m-1-i] = v
	}

	padded := make([]F, len(input)+2*(m-1))
	copy(padded[m-1:], input)

	out := make([]F, len(input)+m-1)
	simdops.For[F]().ConvolveValid(out, padded, reversed)
	return out, nil
}

// InterleaveToStereo converts two mono channels to interleaved stereo.
// Output format: [L0, R0, L1, R1, L2, R2, ...]
func InterleaveToStereo(left, right []float64) []float64 {
	return interleave(left, right)
}

// DeinterleaveFromStereo converts interleaved stereo to two mono channels.
// Input format: [L0, R0, L1, R1, L2, R2, ...]
func DeinterleaveFromStereo(interleaved []float64) (left, right []float64) {
	return deinterleave(interleaved)
}

// =============================================================================
// Float32 API
// =============================================================================
//
// The engine computes in float64. These wrappers convert at the edges for
// callers whose audio is already float32.

// ConvolveMonoFloat32 is ConvolveMono for float32 samples.
func ConvolveMonoFloat32(input, ir []float32) ([]float32, error) {
	out, err := ConvolveMono(toFloat64(input), toFloat64(ir))
	if err != nil {
		return nil, err
	}
	return toFloat32(out), nil
}

// InterleaveToStereoFloat32 is InterleaveToStereo for float32 samples.
func InterleaveToStereoFloat32(left, right []float32) []float32 {
	return interleave(left, right)
}

// DeinterleaveFromStereoFloat32 is DeinterleaveFromStereo for float32 samples.
func DeinterleaveFromStereoFloat32(interleaved []float32) (left, right []float32) {
	return deinterleave(interleaved)
}

func interleave[F simdops.Float](left, right []F) []F {
	n := min(len(left), len(right))
	result := make([]F, n*stereoChannels)
	simdops.For[F]().Interleave2(result, left[:n], right[:n])
	return result
}

func deinterleave[F simdops.Float](interleaved []F) (left, right []F) {
	n := len(interleaved) / stereoChannels
	left = make([]F, n)
	right = make([]F, n)
	simdops.Deinterleave2(left, right, interleaved)
	return left, right
}

func toFloat64(s []float32) []float64 {
	out := make([]float64, len(s))
	for i, v := range s {
		out[i] = float64(v)
	}
	return out
}

func toFloat32(s []float64) []float32 {
	out := make([]float32, len(s))
	for i, v := range s {
		out[i] = float32(v)
	}
	return out
}
