package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-audio-convolver/internal/testutil"
)

// TestEngine_MultipleResets verifies repeated resets give identical output.
func TestEngine_MultipleResets(t *testing.T) {
	ir := testutil.DecayingNoise(300, 60, 1)
	x := testutil.Noise(256, 2)

	for _, backend := range allBackends {
		e := mustEngine(t, ir, 64, backend)
		first := e.Process(x)

		for i := range 3 {
			e.Reset()
			e.Reset()
			assert.Equal(t, first, e.Process(x), "%s reset %d", backend, i)
		}
	}
}

// TestEngine_ResetMidStream verifies no tail or history leaks across Reset.
func TestEngine_ResetMidStream(t *testing.T) {
	ir := testutil.DecayingNoise(500, 100, 3)
	e := mustEngine(t, ir, 64, BackendGonum)

	// Leave a long tail and a full ring behind
	e.Process(testutil.Noise(96, 4))
	e.Reset()

	out := e.Process(make([]float64, 1024))
	testutil.AssertAllZero(t, out, 0, "silence after reset must be exact zero")
}

// TestEngine_ResetKeepsBank verifies Reset does not touch the filter bank.
func TestEngine_ResetKeepsBank(t *testing.T) {
	ir := []float64{1, 0.5, 0.25}
	e := mustEngine(t, ir, 4, BackendGonum)
	before := append([]complex128(nil), e.bank.Segment(1)...)

	e.Process(testutil.Noise(10, 5))
	e.Reset()

	require.Equal(t, 2, e.Segments())
	assert.Equal(t, before, e.bank.Segment(1))
	testutil.AssertSlicesInDelta(t, []float64{1, 0.5, 0.25, 0}, e.Process([]float64{1, 0, 0, 0}), testutil.DefaultTolerance)
}
