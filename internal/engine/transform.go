package engine

import (
	"errors"
	"fmt"

	algofft "github.com/cwbudde/algo-fft"
	"gonum.org/v1/gonum/dsp/fourier"
)

// Errors returned by transform construction.
var (
	ErrInvalidFFTSize = errors.New("engine: FFT size must be a power of two")
	ErrUnknownBackend = errors.New("engine: unknown FFT backend")
	ErrNilTransform   = errors.New("engine: nil transform")
)

// Backend selects the FFT implementation behind a Transform.
type Backend int

const (
	// BackendGonum uses gonum's complex FFT. Its inverse is unnormalized.
	BackendGonum Backend = iota

	// BackendAlgoFFT uses algo-fft plans. Its inverse is normalized by 1/N.
	BackendAlgoFFT
)

// String returns the flag-friendly backend name.
func (b Backend) String() string {
	switch b {
	case BackendGonum:
		return "gonum"
	case BackendAlgoFFT:
		return "algofft"
	default:
		return fmt.Sprintf("Backend(%d)", int(b))
	}
}

// ParseBackend maps a backend name back to its Backend value.
func ParseBackend(name string) (Backend, error) {
	switch name {
	case "gonum", "":
		return BackendGonum, nil
	case "algofft", "algo-fft":
		return BackendAlgoFFT, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
}

// Transform is a fixed-length complex FFT.
//
// Forward and Inverse write len(dst) == Len() values and never allocate.
// dst and src must not overlap. Implementations keep scratch state, so a
// Transform may be shared between engines only when their calls never run
// at the same time.
type Transform interface {
	Len() int
	Forward(dst, src []complex128)
	Inverse(dst, src []complex128)

	// Normalized reports whether Inverse already divides by Len().
	Normalized() bool
}

// NewTransform builds a Transform of size n for the given backend.
func NewTransform(backend Backend, n int) (Transform, error) {
	if err := validateFFTSize(n); err != nil {
		return nil, err
	}

	switch backend {
	case BackendGonum:
		return &gonumTransform{fft: fourier.NewCmplxFFT(n), n: n}, nil
	case BackendAlgoFFT:
		plan, err := algofft.NewPlan64(n)
		if err != nil {
			return nil, fmt.Errorf("engine: algo-fft plan of size %d: %w", n, err)
		}
		return &algoTransform{plan: plan, n: n}, nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownBackend, backend)
	}
}

func validateFFTSize(n int) error {
	if n < minFFTSize || n > maxFFTSize || n&(n-1) != 0 {
		return fmt.Errorf("%w: got %d (want %d..%d)", ErrInvalidFFTSize, n, minFFTSize, maxFFTSize)
	}
	return nil
}

type gonumTransform struct {
	fft *fourier.CmplxFFT
	n   int
}

func (g *gonumTransform) Len() int         { return g.n }
func (g *gonumTransform) Normalized() bool { return false }

func (g *gonumTransform) Forward(dst, src []complex128) {
	g.fft.Coefficients(dst, src)
}

func (g *gonumTransform) Inverse(dst, src []complex128) {
	g.fft.Sequence(dst, src)
}

type algoTransform struct {
	plan *algofft.Plan[complex128]
	n    int
}

func (a *algoTransform) Len() int         { return a.n }
func (a *algoTransform) Normalized() bool { return true }

// The plan only fails on length mismatches, which callers rule out by sizing
// every buffer from Len(). A failure here is a programming error.
func (a *algoTransform) Forward(dst, src []complex128) {
	if err := a.plan.Forward(dst, src); err != nil {
		panic(fmt.Sprintf("engine: algo-fft forward: %v", err))
	}
}

func (a *algoTransform) Inverse(dst, src []complex128) {
	if err := a.plan.Inverse(dst, src); err != nil {
		panic(fmt.Sprintf("engine: algo-fft inverse: %v", err))
	}
}
