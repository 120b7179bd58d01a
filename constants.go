package convolver

import "github.com/tphakala/go-audio-convolver/internal/engine"

// Channel constants
const (
	monoChannels   = 1
	stereoChannels = 2   // Stereo channel count (used by interleave functions)
	maxChannels    = 256 // Maximum supported channel count
)

// Block sizes
const (
	// DefaultFFTSize gives 512-sample segments.
	DefaultFFTSize = engine.DefaultFFTSize

	// DefaultMaxBlockSize covers common host buffer sizes.
	DefaultMaxBlockSize = 4096

	minFFTSize = 2
)

// Processor parameters
const (
	// defaultQueueSize bounds pending parameter updates.
	defaultQueueSize = 64

	// outputGainScale maps a knob at 1/sqrt(2) to unity gain: gain = 2·v².
	outputGainScale = 2.0

	defaultMix  = 1.0
	defaultGain = 1.0
)
