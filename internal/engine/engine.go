// Package engine implements uniformly partitioned overlap-add convolution
// against a long, fixed impulse response.
//
// The impulse response is split into K segments of fftSize/2 samples and
// transformed once. Each input chunk is transformed, pushed into a ring of
// the K most recent input spectra, multiplied against the bank, summed,
// inverse transformed and overlap-added onto the carried tail:
//
//	Y_n = sum_{k=0}^{K-1} X_{n-k} * H_k
//
// After construction, Process and ProcessTo never allocate (Process allocates
// only its return slice).
package engine

import (
	"errors"
	"fmt"
)

// ErrLengthMismatch is returned by ProcessTo when dst and src differ in length.
var ErrLengthMismatch = errors.New("engine: dst and src lengths differ")

// Engine convolves one channel against a fixed impulse response.
// An Engine is not safe for concurrent use; use one per channel.
type Engine struct {
	transform Transform
	bank      *FilterBank
	segmenter *Segmenter
	ring      *HistoryRing
	acc       *Accumulator
	adder     *OverlapAdder

	// spectrum receives the accumulated output spectrum of one chunk.
	spectrum []complex128
}

// New builds an engine for ir with its own transform of fftSize points.
func New(ir []float64, fftSize int, backend Backend) (*Engine, error) {
	t, err := NewTransform(backend, fftSize)
	if err != nil {
		return nil, err
	}
	return NewWithTransform(ir, t)
}

// NewWithTransform builds an engine around an existing transform. Several
// engines may share t as long as their calls never overlap in time.
func NewWithTransform(ir []float64, t Transform) (*Engine, error) {
	bank, err := NewFilterBank(ir, t)
	if err != nil {
		return nil, err
	}
	return newEngine(bank, t), nil
}

// NewFromBank builds an engine on a prebuilt bank. The bank is read-only and
// may back any number of engines; t must match its transform size.
func NewFromBank(bank *FilterBank, t Transform) (*Engine, error) {
	if bank == nil || t == nil {
		return nil, ErrNilTransform
	}
	if t.Len() != bank.FFTSize() {
		return nil, fmt.Errorf("%w: transform has %d points, bank needs %d",
			ErrInvalidFFTSize, t.Len(), bank.FFTSize())
	}
	return newEngine(bank, t), nil
}

func newEngine(bank *FilterBank, t Transform) *Engine {
	n := t.Len()
	return &Engine{
		transform: t,
		bank:      bank,
		segmenter: NewSegmenter(t),
		ring:      NewHistoryRing(bank.Len(), n),
		acc:       NewAccumulator(n),
		adder:     NewOverlapAdder(t),
		spectrum:  make([]complex128, n),
	}
}

// Process convolves input and returns a new slice of the same length.
func (e *Engine) Process(input []float64) []float64 {
	out := make([]float64, len(input))
	e.process(out, input)
	return out
}

// ProcessTo convolves src into dst without allocating. dst may alias src.
func (e *Engine) ProcessTo(dst, src []float64) error {
	if len(dst) != len(src) {
		return fmt.Errorf("%w: dst %d, src %d", ErrLengthMismatch, len(dst), len(src))
	}
	e.process(dst, src)
	return nil
}

// process runs push, accumulate and reconstruct once per chunk, in order.
// Each chunk is read before its output range is written, so aliasing is safe.
func (e *Engine) process(dst, src []float64) {
	seg := e.segmenter.SegmentSize()
	for start := 0; start < len(src); start += seg {
		end := min(start+seg, len(src))
		e.segmenter.TransformChunk(e.ring.Advance(), src[start:end])
		e.acc.Accumulate(e.spectrum, e.ring, e.bank)
		e.adder.Reconstruct(dst[start:end], e.spectrum)
	}
}

// Reset clears the history ring and tail. The filter bank is kept.
func (e *Engine) Reset() {
	e.ring.Reset()
	e.adder.Reset()
}

// FFTSize returns the transform size.
func (e *Engine) FFTSize() int { return e.transform.Len() }

// SegmentSize returns FFTSize()/2, the chunk length.
func (e *Engine) SegmentSize() int { return e.segmenter.SegmentSize() }

// Segments returns K, the number of filter bank segments.
func (e *Engine) Segments() int { return e.bank.Len() }

// RingIn returns the number of full blocks before every segment of the
// impulse response contributes to the output.
func (e *Engine) RingIn() int { return e.bank.Len() }

// KernelLen returns the impulse response length.
func (e *Engine) KernelLen() int { return e.bank.KernelLen() }

// Normalized reports whether the transform normalizes its inverse.
func (e *Engine) Normalized() bool { return e.transform.Normalized() }

// MemoryUsage returns approximate retained memory in bytes.
func (e *Engine) MemoryUsage() int64 {
	return e.bank.MemoryUsage() +
		e.ring.MemoryUsage() +
		e.adder.MemoryUsage() +
		int64(cap(e.spectrum)+cap(e.acc.product)+cap(e.segmenter.frame))*bytesPerComplex128
}
