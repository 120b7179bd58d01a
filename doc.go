// Package convolver provides real-time convolution reverb in pure Go.
//
// A long, fixed impulse response (a spring reverb measured over thousands of
// samples) is applied to a live stream with uniformly partitioned,
// frequency-domain overlap-add convolution. Work per block is proportional
// to the number of impulse-response segments, not its length squared, and
// the streaming path never allocates.
//
// # Features
//
//   - Uniformly partitioned overlap-add engine with a fixed history of input spectra
//   - Pluggable FFT backends: gonum (default) and algo-fft
//   - Optional SIMD acceleration via github.com/tphakala/simd
//   - Exact results for any host block size in aligned mode
//   - Independent per-channel engines over one shared, read-only filter bank
//   - Stereo [Processor] with a lock-free parameter queue for plugin hosts
//   - Pure Go implementation with no CGO dependencies
//
// # Quick Start
//
// For one-shot convolution of a whole buffer:
//
//	wet, err := convolver.ConvolveMono(input, ir)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// For streaming with a reusable convolver:
//
//	config := convolver.DefaultConfig(2)
//	config.Aligned = true
//	c, err := convolver.New(&config, ir)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for block := range hostBlocks {
//	    out, err := c.ProcessMulti(block)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    writeOutput(out)
//	}
//
//	// Remaining reverb tail
//	tail, _ := c.FlushMulti()
//
// # Block Sizes
//
// The engine works in segments of FFTSize/2 samples. Blocks whose length is
// a multiple of the segment size are convolved exactly. Other sizes are zero
// padded per call, which is close but not exact across calls. Set
// [Config.Aligned] to re-block host buffers of any size internally; output is
// then exact and delayed by one segment ([Convolver.GetLatency]).
//
// # Architecture
//
//	input -> segmenter -> history ring -> multiply-accumulate -> inverse FFT -> overlap-add -> output
//	                                          ^
//	                                     filter bank (IR spectra, built once)
//
// The first K blocks ring in the impulse response while the history fills
// with real input; this is steady-state behavior of a causal convolver.
//
// # Thread Safety
//
// Channels share no mutable state, so [Convolver.ProcessMulti] may run them
// concurrently ([Config.EnableParallel]). Calls on the same channel must be
// serialized. With [Config.ShareTransform] all channels use one FFT instance
// and no two calls may overlap.
package convolver
