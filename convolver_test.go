package convolver

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-audio-convolver/internal/testutil"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"default", func(*Config) {}, false},
		{"fft not power of two", func(c *Config) { c.FFTSize = 1000 }, true},
		{"fft too small", func(c *Config) { c.FFTSize = 1 }, true},
		{"no channels", func(c *Config) { c.Channels = 0 }, true},
		{"too many channels", func(c *Config) { c.Channels = maxChannels + 1 }, true},
		{"negative block", func(c *Config) { c.MaxBlockSize = -1 }, true},
		{"unknown backend", func(c *Config) { c.Backend = Backend(7) }, true},
		{"shared transform in parallel", func(c *Config) {
			c.ShareTransform = true
			c.EnableParallel = true
		}, true},
		{"shared transform", func(c *Config) { c.ShareTransform = true }, false},
		{"algo-fft", func(c *Config) { c.Backend = BackendAlgoFFT }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig(stereoChannels)
			tt.modify(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestNew_Errors(t *testing.T) {
	_, err := New(nil, []float64{1})
	require.ErrorIs(t, err, ErrInvalidConfig)

	cfg := DefaultConfig(1)
	_, err = New(&cfg, nil)
	require.ErrorIs(t, err, ErrEmptyImpulseResponse)

	cfg.FFTSize = 3
	_, err = New(&cfg, []float64{1})
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestNew_ZeroValuesUseDefaults(t *testing.T) {
	c, err := New(&Config{Channels: 1}, []float64{1})
	require.NoError(t, err)

	info := c.GetInfo()
	assert.Equal(t, DefaultFFTSize, info.FFTSize)
	assert.Equal(t, DefaultFFTSize/2, info.SegmentSize)
	assert.Equal(t, "gonum", info.Backend)
}

func TestParseBackend(t *testing.T) {
	b, err := ParseBackend("algofft")
	require.NoError(t, err)
	assert.Equal(t, BackendAlgoFFT, b)

	b, err = ParseBackend("gonum")
	require.NoError(t, err)
	assert.Equal(t, BackendGonum, b)

	_, err = ParseBackend("fftw")
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestGetInfo(t *testing.T) {
	cfg := DefaultConfig(stereoChannels)
	cfg.FFTSize = 256
	cfg.Aligned = true
	cfg.Backend = BackendAlgoFFT

	c, err := New(&cfg, make([]float64, 1000))
	require.NoError(t, err)

	info := c.GetInfo()
	assert.Equal(t, 256, info.FFTSize)
	assert.Equal(t, 128, info.SegmentSize)
	assert.Equal(t, 8, info.Segments)
	assert.Equal(t, 1000, info.KernelLen)
	assert.Equal(t, stereoChannels, info.Channels)
	assert.Equal(t, 128, info.Latency)
	assert.Equal(t, "algofft", info.Backend)
	assert.True(t, info.Aligned)
	assert.Positive(t, info.MemoryBytes)
	assert.NotEmpty(t, info.SIMDType)
}

func TestGetInfo_SharedBankCountedOnce(t *testing.T) {
	ir := make([]float64, 4096)

	mono, err := New(&Config{Channels: 1}, ir)
	require.NoError(t, err)
	stereo, err := New(&Config{Channels: 2}, ir)
	require.NoError(t, err)

	perChannel := mono.GetInfo().MemoryBytes
	// The second channel adds its own ring and buffers but not a second bank.
	assert.Less(t, stereo.GetInfo().MemoryBytes, 2*perChannel)
}

// =============================================================================
// Streaming
// =============================================================================

func TestProcess_SegmentBlocksAreExact(t *testing.T) {
	ir := testutil.DecayingNoise(700, 150, 3)
	x := testutil.Noise(2048, 4)

	cfg := DefaultConfig(1)
	cfg.FFTSize = 256
	c, err := New(&cfg, ir)
	require.NoError(t, err)

	got := testutil.StreamBlocks(x, 128, func(block []float64) []float64 {
		out, err := c.Process(block)
		require.NoError(t, err)
		return out
	})

	want := testutil.DirectConvolve(x, ir)[:len(x)]
	testutil.AssertSlicesInDelta(t, want, got, testutil.LongTolerance)
}

func TestProcess_AlignedIsExactForAnyHostBlock(t *testing.T) {
	ir := testutil.DecayingNoise(900, 200, 5)
	x := testutil.Noise(3000, 6)
	full := testutil.DirectConvolve(x, ir)

	for _, backend := range []Backend{BackendGonum, BackendAlgoFFT} {
		for _, host := range []int{1, 37, 100, 128, 333} {
			cfg := DefaultConfig(1)
			cfg.FFTSize = 256
			cfg.Aligned = true
			cfg.MaxBlockSize = 512
			cfg.Backend = backend

			c, err := New(&cfg, ir)
			require.NoError(t, err)
			latency := c.GetLatency()
			require.Equal(t, 128, latency)

			got := testutil.StreamBlocks(x, host, func(block []float64) []float64 {
				out, err := c.Process(block)
				require.NoError(t, err)
				return out
			})

			testutil.AssertAllZero(t, got[:latency], 0, "%s host %d: latency region", backend, host)
			testutil.AssertSlicesInDelta(t, full[:len(x)-latency], got[latency:], testutil.LongTolerance,
				"%s host %d", backend, host)
		}
	}
}

func TestProcess_AlignedBlockTooLarge(t *testing.T) {
	cfg := DefaultConfig(1)
	cfg.Aligned = true
	cfg.MaxBlockSize = 64

	c, err := New(&cfg, []float64{1})
	require.NoError(t, err)

	_, err = c.Process(make([]float64, 65))
	require.ErrorIs(t, err, ErrBlockTooLarge)
}

func TestProcessTo_ChannelRange(t *testing.T) {
	c, err := NewStereo([]float64{1})
	require.NoError(t, err)

	buf := make([]float64, 4)
	require.ErrorIs(t, c.ProcessTo(2, buf, buf), ErrChannelMismatch)
	require.ErrorIs(t, c.ProcessTo(-1, buf, buf), ErrChannelMismatch)
	require.NoError(t, c.ProcessTo(1, buf, buf))
}

func TestProcessTo_NoAllocs(t *testing.T) {
	cfg := DefaultConfig(stereoChannels)
	cfg.Aligned = true
	cfg.MaxBlockSize = 256
	c, err := New(&cfg, testutil.DecayingNoise(3000, 500, 7))
	require.NoError(t, err)

	src := testutil.Noise(200, 8)
	dst := make([]float64, len(src))

	allocs := testing.AllocsPerRun(50, func() {
		_ = c.ProcessTo(0, dst, src)
		_ = c.ProcessTo(1, dst, src)
	})
	assert.Zero(t, allocs)
}

func TestProcessFloat32(t *testing.T) {
	c, err := NewMono([]float64{1, 0.5, 0.25})
	require.NoError(t, err)

	out, err := c.ProcessFloat32([]float32{1, 0, 0, 0})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float32{1, 0.5, 0.25, 0}, out, 1e-6)
}

// =============================================================================
// Flush and Reset
// =============================================================================

func TestFlush_CompletesConvolution(t *testing.T) {
	ir := testutil.DecayingNoise(1000, 250, 9)
	x := testutil.Noise(1536, 10)
	full := testutil.DirectConvolve(x, ir)

	tests := []struct {
		name    string
		aligned bool
		host    int
	}{
		{"segment blocks", false, 512},
		{"aligned odd blocks", true, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig(1)
			cfg.Aligned = tt.aligned
			cfg.MaxBlockSize = 256
			c, err := New(&cfg, ir)
			require.NoError(t, err)

			got := testutil.StreamBlocks(x, tt.host, func(block []float64) []float64 {
				out, err := c.Process(block)
				require.NoError(t, err)
				return out
			})
			tail, err := c.Flush()
			require.NoError(t, err)
			got = append(got, tail...)

			latency := c.GetLatency()
			require.Len(t, got, len(full)+latency)
			testutil.AssertSlicesInDelta(t, full, got[latency:], testutil.LongTolerance)
		})
	}
}

func TestFlushMulti(t *testing.T) {
	c, err := NewStereo([]float64{1, 0.5, 0.25})
	require.NoError(t, err)

	_, err = c.ProcessMulti([][]float64{{1, 0, 0, 0}, {0, 0, 0, 2}})
	require.NoError(t, err)

	tails, err := c.FlushMulti()
	require.NoError(t, err)
	require.Len(t, tails, stereoChannels)
	testutil.AssertSlicesInDelta(t, []float64{0, 0}, tails[0], testutil.DefaultTolerance)
	testutil.AssertSlicesInDelta(t, []float64{1, 0.5}, tails[1], testutil.DefaultTolerance)
}

func TestReset(t *testing.T) {
	ir := testutil.DecayingNoise(800, 200, 11)
	x := testutil.Noise(512, 12)

	cfg := DefaultConfig(1)
	cfg.Aligned = true
	c, err := New(&cfg, ir)
	require.NoError(t, err)

	first, err := c.Process(x)
	require.NoError(t, err)
	_, err = c.Process(testutil.Noise(512, 13))
	require.NoError(t, err)

	c.Reset()
	again, err := c.Process(x)
	require.NoError(t, err)
	assert.Equal(t, first, again)
}

func TestProcess_NaNPropagates(t *testing.T) {
	c, err := NewMono([]float64{1, 0.5})
	require.NoError(t, err)

	in := make([]float64, 512)
	in[3] = math.NaN()
	out, err := c.Process(in)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(out[3]))
}
