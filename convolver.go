package convolver

import (
	"errors"
	"fmt"

	"github.com/tphakala/go-audio-convolver/internal/engine"
)

// Convolver streams audio through a fixed impulse response.
// Each channel owns its own engine; channels share only the read-only
// filter bank.
type Convolver interface {
	// Process convolves a block of channel 0 and returns a block of the
	// same length.
	Process(input []float64) ([]float64, error)

	// ProcessTo convolves src into dst for one channel without allocating.
	// dst may alias src.
	ProcessTo(channel int, dst, src []float64) error

	// ProcessFloat32 is like Process but for float32 samples.
	ProcessFloat32(input []float32) ([]float32, error)

	// ProcessMulti processes one block per channel.
	ProcessMulti(input [][]float64) ([][]float64, error)

	// Flush returns the remaining reverb tail of channel 0 by feeding
	// silence: KernelLen-1 samples plus any alignment latency.
	Flush() ([]float64, error)

	// FlushMulti is Flush for every channel.
	FlushMulti() ([][]float64, error)

	// GetLatency returns the delay in samples between input and output.
	GetLatency() int

	// Reset clears all streaming state. The impulse response is kept.
	Reset()

	// GetInfo describes the convolver's configuration.
	GetInfo() Info
}

// Backend selects the FFT implementation.
type Backend int

const (
	// BackendGonum uses gonum's complex FFT.
	BackendGonum Backend = iota

	// BackendAlgoFFT uses algo-fft plans.
	BackendAlgoFFT
)

// String returns the backend name accepted by ParseBackend.
func (b Backend) String() string { return b.toEngine().String() }

func (b Backend) toEngine() engine.Backend {
	switch b {
	case BackendAlgoFFT:
		return engine.BackendAlgoFFT
	case BackendGonum:
		return engine.BackendGonum
	default:
		return engine.Backend(b)
	}
}

// ParseBackend maps "gonum" or "algofft" to a Backend.
func ParseBackend(name string) (Backend, error) {
	b, err := engine.ParseBackend(name)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if b == engine.BackendAlgoFFT {
		return BackendAlgoFFT, nil
	}
	return BackendGonum, nil
}

// Config holds convolver configuration.
type Config struct {
	// FFTSize is the transform length, a power of two >= 2. Blocks of
	// FFTSize/2 samples are convolved exactly. Zero selects DefaultFFTSize.
	FFTSize int

	// Channels is the number of independent audio channels.
	Channels int

	// Backend selects the FFT implementation.
	Backend Backend

	// Aligned re-blocks host buffers of any size into FFTSize/2 blocks.
	// Output is then exact for every host block size at the cost of
	// FFTSize/2 samples of latency. Without it, blocks that are not a
	// multiple of FFTSize/2 are zero padded and the result is approximate.
	Aligned bool

	// MaxBlockSize is the largest host block accepted in aligned mode and
	// by Processor. Zero selects DefaultMaxBlockSize.
	MaxBlockSize int

	// EnableParallel processes channels concurrently in ProcessMulti.
	EnableParallel bool

	// ShareTransform lets all channels use one FFT instance. Calls must
	// never overlap in time, so it cannot be combined with EnableParallel.
	ShareTransform bool
}

// DefaultConfig returns a configuration for the given channel count.
func DefaultConfig(channels int) Config {
	return Config{
		FFTSize:      DefaultFFTSize,
		Channels:     channels,
		Backend:      BackendGonum,
		MaxBlockSize: DefaultMaxBlockSize,
	}
}

// Info describes a convolver.
type Info struct {
	FFTSize     int
	SegmentSize int
	Segments    int
	KernelLen   int
	Channels    int
	Latency     int
	Backend     string
	Aligned     bool
	MemoryBytes int64
	SIMDType    string
}

// Common errors returned by the convolver.
var (
	// ErrInvalidConfig indicates invalid configuration parameters.
	ErrInvalidConfig = errors.New("invalid convolver configuration")

	// ErrChannelMismatch indicates the wrong number of channel buffers.
	ErrChannelMismatch = errors.New("channel count mismatch")

	// ErrBlockTooLarge indicates a host block above MaxBlockSize.
	ErrBlockTooLarge = errors.New("block exceeds maximum block size")

	// ErrEmptyImpulseResponse indicates an impulse response with no samples.
	ErrEmptyImpulseResponse = engine.ErrEmptyImpulseResponse
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.FFTSize < minFFTSize || c.FFTSize&(c.FFTSize-1) != 0 {
		return fmt.Errorf("%w: FFT size must be a power of two >= %d, got %d", ErrInvalidConfig, minFFTSize, c.FFTSize)
	}

	if c.Channels < 1 {
		return fmt.Errorf("%w: channels must be at least 1", ErrInvalidConfig)
	}

	if c.Channels > maxChannels {
		return fmt.Errorf("%w: too many channels (max %d)", ErrInvalidConfig, maxChannels)
	}

	if c.MaxBlockSize < 0 {
		return fmt.Errorf("%w: max block size must not be negative", ErrInvalidConfig)
	}

	if c.Backend != BackendGonum && c.Backend != BackendAlgoFFT {
		return fmt.Errorf("%w: unknown backend %d", ErrInvalidConfig, int(c.Backend))
	}

	if c.ShareTransform && c.EnableParallel {
		return fmt.Errorf("%w: a shared transform cannot be used by parallel channels", ErrInvalidConfig)
	}

	return nil
}

// withDefaults fills zero values.
func (c Config) withDefaults() Config {
	if c.FFTSize == 0 {
		c.FFTSize = DefaultFFTSize
	}
	if c.MaxBlockSize == 0 {
		c.MaxBlockSize = DefaultMaxBlockSize
	}
	return c
}

// New creates a Convolver for ir.
func New(config *Config, ir []float64) (Convolver, error) {
	if config == nil {
		return nil, fmt.Errorf("%w: nil config", ErrInvalidConfig)
	}
	cfg := config.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return newMultiChannel(&cfg, ir)
}
