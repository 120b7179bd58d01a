package engine

import (
	"errors"
	"fmt"
)

// ErrEmptyImpulseResponse is returned when a filter bank is built from no samples.
var ErrEmptyImpulseResponse = errors.New("engine: impulse response is empty")

// FilterBank holds the pre-transformed impulse response segments.
// It is immutable once built and safe to read from any number of engines.
type FilterBank struct {
	spectra   [][]complex128
	fftSize   int
	kernelLen int
}

// NewFilterBank segments ir with t. This runs once, off the audio path.
func NewFilterBank(ir []float64, t Transform) (*FilterBank, error) {
	if t == nil {
		return nil, ErrNilTransform
	}
	if len(ir) == 0 {
		return nil, ErrEmptyImpulseResponse
	}
	if err := validateFFTSize(t.Len()); err != nil {
		return nil, fmt.Errorf("engine: filter bank: %w", err)
	}

	return &FilterBank{
		spectra:   NewSegmenter(t).Segment(ir),
		fftSize:   t.Len(),
		kernelLen: len(ir),
	}, nil
}

// Len returns K, the number of segments.
func (b *FilterBank) Len() int { return len(b.spectra) }

// Segment returns the k-th segment spectrum. Callers must not modify it.
func (b *FilterBank) Segment(k int) []complex128 { return b.spectra[k] }

// FFTSize returns the transform size the bank was built with.
func (b *FilterBank) FFTSize() int { return b.fftSize }

// KernelLen returns the impulse response length in samples.
func (b *FilterBank) KernelLen() int { return b.kernelLen }

// MemoryUsage returns the spectrum storage size in bytes.
func (b *FilterBank) MemoryUsage() int64 {
	return int64(len(b.spectra)) * int64(b.fftSize) * bytesPerComplex128
}
