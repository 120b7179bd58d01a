// Package impulse prepares impulse responses for the convolution engine:
// decoding WAV and AIFF assets, channel selection, sample-rate matching,
// level normalization, trimming with a Kaiser fade, synthetic spring
// responses and conversion into embeddable Go source.
package impulse

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/aiff"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/tphakala/go-audio-convolver/internal/simdops"
)

// Errors returned while loading and preparing impulse responses.
var (
	ErrUnsupportedFormat = errors.New("impulse: unsupported file format")
	ErrInvalidFile       = errors.New("impulse: invalid audio file")
	ErrChannelRange      = errors.New("impulse: channel out of range")
	ErrInvalidRate       = errors.New("impulse: sample rate must be positive")
	ErrInvalidConfig     = errors.New("impulse: invalid configuration")
	ErrNonFinite         = errors.New("impulse: sample is NaN or Inf")
)

// Format identifies a container format.
type Format int

const (
	FormatWAV Format = iota
	FormatAIFF
)

// MixDown selects the average of all channels in IR.Mono.
const MixDown = -1

// IR is a decoded impulse response, one float slice per channel in [-1, 1].
type IR struct {
	Samples    [][]float64
	SampleRate int
	BitDepth   int
}

// Channels returns the channel count.
func (ir *IR) Channels() int { return len(ir.Samples) }

// Len returns the number of frames.
func (ir *IR) Len() int {
	if len(ir.Samples) == 0 {
		return 0
	}
	return len(ir.Samples[0])
}

// Mono returns one channel, or the average of all channels for MixDown.
// The result is a fresh slice.
func (ir *IR) Mono(channel int) ([]float64, error) {
	if channel == MixDown {
		out := make([]float64, ir.Len())
		if ir.Channels() == 0 {
			return out, nil
		}
		for _, ch := range ir.Samples {
			for i, v := range ch {
				out[i] += v
			}
		}
		simdops.For[float64]().Scale(out, out, 1/float64(ir.Channels()))
		return out, nil
	}
	if channel < 0 || channel >= ir.Channels() {
		return nil, fmt.Errorf("%w: %d of %d", ErrChannelRange, channel, ir.Channels())
	}
	return append([]float64(nil), ir.Samples[channel]...), nil
}

// FormatFromPath picks the container format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".wav", ".wave":
		return FormatWAV, nil
	case ".aif", ".aiff":
		return FormatAIFF, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// Load decodes the impulse response stored at path.
func Load(path string) (*IR, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("impulse: open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	ir, err := Decode(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return ir, nil
}

// Decode reads a whole WAV or AIFF stream into an IR.
func Decode(r io.ReadSeeker, format Format) (*IR, error) {
	var (
		buf *audio.IntBuffer
		err error
	)
	switch format {
	case FormatWAV:
		dec := wav.NewDecoder(r)
		if !dec.IsValidFile() {
			return nil, fmt.Errorf("%w: not a WAV file", ErrInvalidFile)
		}
		buf, err = dec.FullPCMBuffer()
	case FormatAIFF:
		dec := aiff.NewDecoder(r)
		if !dec.IsValidFile() {
			return nil, fmt.Errorf("%w: not an AIFF file", ErrInvalidFile)
		}
		buf, err = dec.FullPCMBuffer()
	default:
		return nil, fmt.Errorf("%w: format %d", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("impulse: decode PCM: %w", err)
	}
	return FromIntBuffer(buf)
}

// FromIntBuffer converts interleaved PCM into per-channel samples in [-1, 1].
func FromIntBuffer(buf *audio.IntBuffer) (*IR, error) {
	if buf == nil || buf.Format == nil || buf.Format.NumChannels < 1 {
		return nil, fmt.Errorf("%w: missing format", ErrInvalidFile)
	}
	if buf.SourceBitDepth < 1 {
		return nil, fmt.Errorf("%w: bit depth %d", ErrInvalidFile, buf.SourceBitDepth)
	}

	channels := buf.Format.NumChannels
	frames := len(buf.Data) / channels
	scale := 1 / math.Pow(2, float64(buf.SourceBitDepth-1))

	ir := &IR{
		Samples:    make([][]float64, channels),
		SampleRate: buf.Format.SampleRate,
		BitDepth:   buf.SourceBitDepth,
	}
	for ch := range ir.Samples {
		s := make([]float64, frames)
		for i := range s {
			s[i] = float64(buf.Data[i*channels+ch]) * scale
		}
		ir.Samples[ch] = s
	}
	return ir, nil
}
