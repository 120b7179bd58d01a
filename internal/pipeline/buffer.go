package pipeline

import "fmt"

// RingBuffer is a single-threaded FIFO of samples with a capacity fixed at
// construction. Capacity is rounded up to a power of two so positions wrap
// with a mask. Nothing allocates after NewRingBuffer and the buffer never
// grows: writing past capacity fails with ErrBufferOverflow.
type RingBuffer struct {
	data     []float64
	mask     int
	size     int
	readPos  int
	writePos int
}

// NewRingBuffer creates a ring buffer holding at least capacity samples.
func NewRingBuffer(capacity int) *RingBuffer {
	cap2 := 1
	for cap2 < capacity {
		cap2 <<= 1
	}
	return &RingBuffer{
		data: make([]float64, cap2),
		mask: cap2 - 1,
	}
}

// Write appends samples. Nothing is written if they do not all fit.
func (b *RingBuffer) Write(samples []float64) error {
	if len(samples) > b.Space() {
		return fmt.Errorf("%w: need %d, have %d", ErrBufferOverflow, len(samples), b.Space())
	}
	n := copy(b.data[b.writePos:], samples)
	copy(b.data, samples[n:])
	b.advanceWrite(len(samples))
	return nil
}

// WriteZeros appends n zero samples.
func (b *RingBuffer) WriteZeros(n int) error {
	if n > b.Space() {
		return fmt.Errorf("%w: need %d, have %d", ErrBufferOverflow, n, b.Space())
	}
	for i := range n {
		b.data[(b.writePos+i)&b.mask] = 0
	}
	b.advanceWrite(n)
	return nil
}

func (b *RingBuffer) advanceWrite(n int) {
	b.writePos = (b.writePos + n) & b.mask
	b.size += n
}

// ReadInto moves up to len(dst) samples into dst and returns the count.
func (b *RingBuffer) ReadInto(dst []float64) int {
	n := min(len(dst), b.size)
	first := copy(dst[:n], b.data[b.readPos:])
	copy(dst[first:n], b.data)
	b.readPos = (b.readPos + n) & b.mask
	b.size -= n
	return n
}

// Available returns the number of samples available for reading.
func (b *RingBuffer) Available() int { return b.size }

// Space returns the available space for writing.
func (b *RingBuffer) Space() int { return len(b.data) - b.size }

// Capacity returns the fixed buffer capacity.
func (b *RingBuffer) Capacity() int { return len(b.data) }

// Clear removes all samples from the buffer.
func (b *RingBuffer) Clear() {
	b.size = 0
	b.readPos = 0
	b.writePos = 0
}
