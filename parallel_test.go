package convolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-audio-convolver/internal/testutil"
)

// TestProcessMultiParallel tests that parallel processing produces bit-exact results.
func TestProcessMultiParallel(t *testing.T) {
	const (
		channels   = 2
		numSamples = 4096
	)

	ir := testutil.DecayingNoise(3000, 600, 1)

	input := make([][]float64, channels)
	for ch := range channels {
		input[ch] = testutil.Noise(numSamples, uint64(10+ch))
	}

	configSeq := DefaultConfig(channels)
	configPar := DefaultConfig(channels)
	configPar.EnableParallel = true

	seq, err := New(&configSeq, ir)
	require.NoError(t, err)
	par, err := New(&configPar, ir)
	require.NoError(t, err)

	// Stream in two halves so the parallel path carries state across calls.
	for _, half := range [][2]int{{0, numSamples / 2}, {numSamples / 2, numSamples}} {
		block := make([][]float64, channels)
		for ch := range channels {
			block[ch] = input[ch][half[0]:half[1]]
		}

		outSeq, err := seq.ProcessMulti(block)
		require.NoError(t, err)
		outPar, err := par.ProcessMulti(block)
		require.NoError(t, err)

		require.Len(t, outPar, channels)
		for ch := range channels {
			assert.Equal(t, outSeq[ch], outPar[ch], "channel %d differs", ch)
		}
	}
}

// TestProcessMultiChannelIndependence verifies channels are processed independently.
func TestProcessMultiChannelIndependence(t *testing.T) {
	const numSamples = 2048

	ir := testutil.DecayingNoise(1500, 300, 2)
	config := DefaultConfig(2)
	config.EnableParallel = true

	c, err := New(&config, ir)
	require.NoError(t, err)

	input := [][]float64{
		make([]float64, numSamples),
		testutil.Sine(numSamples, 440, 48000),
	}

	output, err := c.ProcessMulti(input)
	require.NoError(t, err)

	testutil.AssertAllZero(t, output[0], 0, "silent channel picked up signal")

	want := testutil.DirectConvolve(input[1], ir)[:numSamples]
	testutil.AssertSlicesInDelta(t, want, output[1], testutil.LongTolerance)
}

// TestProcessMultiMonoFallback verifies mono processing works with parallel enabled.
func TestProcessMultiMonoFallback(t *testing.T) {
	config := DefaultConfig(1)
	config.EnableParallel = true

	c, err := New(&config, []float64{1, 0.5})
	require.NoError(t, err)

	output, err := c.ProcessMulti([][]float64{{1, 0, 0, 0}})
	require.NoError(t, err)
	require.Len(t, output, 1)
	testutil.AssertSlicesInDelta(t, []float64{1, 0.5, 0, 0}, output[0], testutil.DefaultTolerance)
}

func TestProcessMulti_ChannelMismatch(t *testing.T) {
	config := DefaultConfig(2)
	config.EnableParallel = true
	c, err := New(&config, []float64{1})
	require.NoError(t, err)

	_, err = c.ProcessMulti([][]float64{{1}})
	require.ErrorIs(t, err, ErrChannelMismatch)
}

func TestProcessMulti_ParallelErrorsJoined(t *testing.T) {
	config := DefaultConfig(2)
	config.Aligned = true
	config.MaxBlockSize = 16
	config.EnableParallel = true
	c, err := New(&config, []float64{1})
	require.NoError(t, err)

	_, err = c.ProcessMulti([][]float64{make([]float64, 32), make([]float64, 32)})
	require.ErrorIs(t, err, ErrBlockTooLarge)
	assert.Contains(t, err.Error(), "channel 0")
	assert.Contains(t, err.Error(), "channel 1")
}
