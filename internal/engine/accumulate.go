package engine

import "github.com/tphakala/simd/c128"

// Accumulator computes Y = sum_k history[k] * bank[k], bin by bin.
type Accumulator struct {
	product []complex128
}

// NewAccumulator creates an Accumulator for spectra of fftSize bins.
func NewAccumulator(fftSize int) *Accumulator {
	return &Accumulator{product: make([]complex128, fftSize)}
}

// Accumulate writes the multiply-accumulate of ring against bank into dst.
// Slots that still hold initial silence are skipped since they add nothing.
func (a *Accumulator) Accumulate(dst []complex128, ring *HistoryRing, bank *FilterBank) {
	clear(dst)
	n := min(ring.Filled(), bank.Len())
	for k := range n {
		c128.Mul(a.product, ring.At(k), bank.Segment(k))
		for i, p := range a.product {
			dst[i] += p
		}
	}
}
