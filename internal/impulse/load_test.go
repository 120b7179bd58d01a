package impulse

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/aiff"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stereoBuffer holds left = 0.5, -0.25 and right = 0.25, 0 at 16 bits.
func stereoBuffer(rate int) *audio.IntBuffer {
	return &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 2, SampleRate: rate},
		Data:           []int{16384, 8192, -8192, 0},
		SourceBitDepth: 16,
	}
}

func writeWAV(t *testing.T, path string, buf *audio.IntBuffer) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	enc := wav.NewEncoder(f, buf.Format.SampleRate, buf.SourceBitDepth, buf.Format.NumChannels, 1)
	require.NoError(t, enc.Write(buf))
	require.NoError(t, enc.Close())
	require.NoError(t, f.Close())
}

func writeAIFF(t *testing.T, path string, buf *audio.IntBuffer) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	enc := aiff.NewEncoder(f, buf.Format.SampleRate, buf.SourceBitDepth, buf.Format.NumChannels)
	require.NoError(t, enc.Write(buf))
	require.NoError(t, enc.Close())
	require.NoError(t, f.Close())
}

func assertStereoIR(t *testing.T, ir *IR, rate int) {
	t.Helper()
	assert.Equal(t, 2, ir.Channels())
	assert.Equal(t, 2, ir.Len())
	assert.Equal(t, rate, ir.SampleRate)
	assert.Equal(t, 16, ir.BitDepth)
	assert.InDeltaSlice(t, []float64{0.5, -0.25}, ir.Samples[0], 1e-12)
	assert.InDeltaSlice(t, []float64{0.25, 0}, ir.Samples[1], 1e-12)
}

func TestLoad_WAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spring.wav")
	writeWAV(t, path, stereoBuffer(44100))

	ir, err := Load(path)
	require.NoError(t, err)
	assertStereoIR(t, ir, 44100)
}

func TestLoad_AIFF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spring.aiff")
	writeAIFF(t, path, stereoBuffer(48000))

	ir, err := Load(path)
	require.NoError(t, err)
	assertStereoIR(t, ir, 48000)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load("response.mp3")
	require.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Load(filepath.Join(t.TempDir(), "missing.wav"))
	require.ErrorIs(t, err, os.ErrNotExist)

	_, err = Decode(bytes.NewReader([]byte("definitely not RIFF data")), FormatWAV)
	require.ErrorIs(t, err, ErrInvalidFile)

	_, err = Decode(bytes.NewReader(nil), Format(5))
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestFormatFromPath(t *testing.T) {
	for path, want := range map[string]Format{
		"a.wav": FormatWAV, "b.WAV": FormatWAV, "c.wave": FormatWAV,
		"d.aif": FormatAIFF, "e.AIFF": FormatAIFF,
	} {
		got, err := FormatFromPath(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, got, path)
	}
}

func TestFromIntBuffer_Invalid(t *testing.T) {
	_, err := FromIntBuffer(nil)
	require.ErrorIs(t, err, ErrInvalidFile)

	_, err = FromIntBuffer(&audio.IntBuffer{Format: &audio.Format{NumChannels: 1}})
	require.ErrorIs(t, err, ErrInvalidFile)
}

func TestIR_Mono(t *testing.T) {
	ir, err := FromIntBuffer(stereoBuffer(48000))
	require.NoError(t, err)

	left, err := ir.Mono(0)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.5, -0.25}, left, 1e-12)

	left[0] = 9
	assert.InDelta(t, 0.5, ir.Samples[0][0], 0, "Mono must copy")

	mix, err := ir.Mono(MixDown)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.375, -0.125}, mix, 1e-12)

	_, err = ir.Mono(2)
	require.ErrorIs(t, err, ErrChannelRange)
	_, err = ir.Mono(-2)
	require.ErrorIs(t, err, ErrChannelRange)
}
