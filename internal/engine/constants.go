package engine

// Transform size limits.
const (
	// minFFTSize is the smallest transform that still yields a segment of one sample.
	minFFTSize = 2

	// maxFFTSize bounds per-engine memory. 2^20 bins is ~16 MiB per spectrum.
	maxFFTSize = 1 << 20

	// DefaultFFTSize gives 512-sample segments, matching common host block sizes.
	DefaultFFTSize = 1024
)

// segmentDivisor splits the transform size into the raw chunk length.
// The other half of every transform frame is zero padding.
const segmentDivisor = 2

// Byte sizes used by memory accounting.
const (
	bytesPerFloat64    = 8
	bytesPerComplex128 = 16
)
