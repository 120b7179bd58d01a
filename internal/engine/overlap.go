package engine

import "github.com/tphakala/simd/f64"

// OverlapAdder turns output spectra back into samples and carries the second
// half of every frame into the next one.
type OverlapAdder struct {
	t       Transform
	segSize int

	// scale is 1/fftSize for backends whose inverse is unnormalized.
	scale float64

	frame []complex128
	block []float64
	tail  []float64
}

// NewOverlapAdder creates an OverlapAdder bound to t with a zeroed tail.
func NewOverlapAdder(t Transform) *OverlapAdder {
	n := t.Len()
	scale := 1.0
	if !t.Normalized() {
		scale = 1.0 / float64(n)
	}
	return &OverlapAdder{
		t:       t,
		segSize: n / segmentDivisor,
		scale:   scale,
		frame:   make([]complex128, n),
		block:   make([]float64, n),
		tail:    make([]float64, n/segmentDivisor),
	}
}

// Reconstruct inverse transforms spectrum, adds the carried tail onto its
// head, writes the first len(dst) samples to dst and keeps the next
// SegmentSize samples as the new tail. len(dst) must not exceed SegmentSize.
func (o *OverlapAdder) Reconstruct(dst []float64, spectrum []complex128) {
	o.t.Inverse(o.frame, spectrum)

	block := o.block
	for i, c := range o.frame {
		block[i] = real(c)
	}
	if o.scale != 1 {
		f64.Scale(block, block, o.scale)
	}

	for i, v := range o.tail {
		block[i] += v
	}

	n := len(dst)
	copy(dst, block[:n])
	copy(o.tail, block[n:n+o.segSize])
}

// Scale returns the factor applied after the inverse transform.
func (o *OverlapAdder) Scale() float64 { return o.scale }

// Tail returns the carried samples. Callers must not modify it.
func (o *OverlapAdder) Tail() []float64 { return o.tail }

// Reset zeroes the tail.
func (o *OverlapAdder) Reset() {
	clear(o.tail)
}

// MemoryUsage returns the retained buffer size in bytes.
func (o *OverlapAdder) MemoryUsage() int64 {
	return int64(cap(o.frame))*bytesPerComplex128 +
		int64(cap(o.block)+cap(o.tail))*bytesPerFloat64
}
