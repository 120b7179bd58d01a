// Package pipeline holds the streaming plumbing around convolution stages:
// the Stage interface, a fixed-capacity real-time ring buffer and a block
// aligner that feeds stages in the block size they are exact for.
package pipeline

import "errors"

// Errors returned by pipeline components.
var (
	ErrBufferOverflow = errors.New("pipeline: ring buffer full")
	ErrBlockTooLarge  = errors.New("pipeline: host block exceeds configured maximum")
	ErrLengthMismatch = errors.New("pipeline: dst and src lengths differ")
	ErrInvalidBlock   = errors.New("pipeline: block size must be positive")
)

// Stage represents a single streaming processing stage.
type Stage interface {
	// ProcessTo transforms src into dst, which has the same length.
	// dst may alias src.
	ProcessTo(dst, src []float64) error

	// Reset clears internal state.
	Reset()

	// GetLatency returns the stage latency in samples.
	GetLatency() int

	// GetBlockSize returns the block length the stage is exact for,
	// or 0 when any length works.
	GetBlockSize() int

	// GetMemoryUsage returns approximate memory usage in bytes.
	GetMemoryUsage() int64
}
