package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-audio-convolver/internal/testutil"
)

func newGonum(t testing.TB, n int) Transform {
	t.Helper()
	tr, err := NewTransform(BackendGonum, n)
	require.NoError(t, err)
	return tr
}

// inverseReal returns the normalized real part of the inverse transform.
func inverseReal(tr Transform, spec []complex128) []float64 {
	frame := make([]complex128, tr.Len())
	tr.Inverse(frame, spec)
	scale := 1.0
	if !tr.Normalized() {
		scale = 1.0 / float64(tr.Len())
	}
	out := make([]float64, len(frame))
	for i, c := range frame {
		out[i] = real(c) * scale
	}
	return out
}

func TestSegmenter_SegmentCount(t *testing.T) {
	s := NewSegmenter(newGonum(t, 8))
	assert.Equal(t, 4, s.SegmentSize())

	tests := []struct{ n, want int }{
		{0, 0}, {1, 1}, {4, 1}, {5, 2}, {8, 2}, {9, 3},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, s.SegmentCount(tt.n), "n=%d", tt.n)
	}
}

// TestSegmenter_ZeroPadsSecondHalf verifies every spectrum is a chunk
// followed by fftSize/2 zeros, and the short final chunk is zero padded.
func TestSegmenter_ZeroPadsSecondHalf(t *testing.T) {
	tr := newGonum(t, 8)
	spectra := NewSegmenter(tr).Segment([]float64{1, 2, 3, 4, 5})
	require.Len(t, spectra, 2)

	for _, spec := range spectra {
		assert.Len(t, spec, 8)
	}

	testutil.AssertSlicesInDelta(t, []float64{1, 2, 3, 4, 0, 0, 0, 0},
		inverseReal(tr, spectra[0]), testutil.DefaultTolerance)
	testutil.AssertSlicesInDelta(t, []float64{5, 0, 0, 0, 0, 0, 0, 0},
		inverseReal(tr, spectra[1]), testutil.DefaultTolerance)

	// DC bin is the chunk sum.
	assert.InDelta(t, 10, real(spectra[0][0]), testutil.DefaultTolerance)
	assert.InDelta(t, 5, real(spectra[1][0]), testutil.DefaultTolerance)
}

func TestSegment_PackageFunc(t *testing.T) {
	spectra, err := Segment(make([]float64, 1000), 256)
	require.NoError(t, err)
	assert.Len(t, spectra, 8)

	_, err = Segment([]float64{1}, 12)
	require.ErrorIs(t, err, ErrInvalidFFTSize)

	spectra, err = Segment(nil, 8)
	require.NoError(t, err)
	assert.Empty(t, spectra)
}

// TestSegmenter_TransformChunkClearsStaleData checks that a short chunk does
// not pick up samples left in the scratch frame by a previous longer one.
func TestSegmenter_TransformChunkClearsStaleData(t *testing.T) {
	tr := newGonum(t, 8)
	s := NewSegmenter(tr)
	dst := make([]complex128, 8)

	s.TransformChunk(dst, []float64{9, 9, 9, 9})
	s.TransformChunk(dst, []float64{1})
	testutil.AssertSlicesInDelta(t, []float64{1, 0, 0, 0, 0, 0, 0, 0},
		inverseReal(tr, dst), testutil.DefaultTolerance)
}

func TestSegmenter_TransformChunkNoAlloc(t *testing.T) {
	s := NewSegmenter(newGonum(t, 256))
	dst := make([]complex128, 256)
	chunk := testutil.Noise(128, 1)

	allocs := testing.AllocsPerRun(100, func() {
		s.TransformChunk(dst, chunk)
	})
	assert.Zero(t, allocs)
}
