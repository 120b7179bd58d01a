// Command convolve-wav renders an audio file through a convolution reverb.
//
// Usage:
//
//	convolve-wav -ir spring.wav input.wav output.wav
//	convolve-wav -ir spring.wav -mix 0.3 -normalize input.wav output.wav
//	convolve-wav -ir spring.aiff -backend algofft -fft 2048 input.wav out.wav
//
// The impulse response is mixed down (or one channel is picked with
// -channel) and resampled to the input rate when the rates differ. Every
// input channel gets its own engine. The output carries the full reverb
// tail and keeps the input's sample rate and bit depth.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime/pprof"
	"time"

	convolver "github.com/tphakala/go-audio-convolver"
)

const (
	// Host block size used to stream the input through the engines
	defaultBlockSize = 4096

	// CLI defaults
	defaultFFTSize  = convolver.DefaultFFTSize
	defaultMix      = 1.0
	defaultChannel  = -1 // mix down
	minRequiredArgs = 2

	// Headroom applied after peak normalization
	normalizeHeadroom = 0.99

	// Channel count constants for fast paths
	monoChannels   = 1
	stereoChannels = 2

	progressInterval = 10 // Print progress every N%
	percentScale     = 100
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	irPath := flag.String("ir", "", "Impulse response file (WAV or AIFF)")
	fftSize := flag.Int("fft", defaultFFTSize, "FFT size, a power of two (segment size is half)")
	mix := flag.Float64("mix", defaultMix, "Wet/dry mix from 0 (dry) to 1 (wet)")
	channel := flag.Int("channel", defaultChannel, "Impulse response channel, -1 mixes all channels down")
	normalize := flag.Bool("normalize", false, "Normalize output peak instead of clipping")
	parallel := flag.Bool("parallel", true, "Enable parallel channel processing (faster for stereo/multichannel)")
	backend := flag.String("backend", "gonum", "FFT backend: gonum, algofft")
	block := flag.Int("block", defaultBlockSize, "Host block size in samples")
	verbose := flag.Bool("v", false, "Verbose output")
	cpuprofile := flag.String("cpuprofile", "", "Write CPU profile to file (for PGO)")
	flag.Parse()

	args := flag.Args()
	if len(args) < minRequiredArgs || *irPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s -ir ir.wav [options] input.wav output.wav\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -ir spring.wav dry.wav wet.wav           # Full wet reverb\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -ir spring.wav -mix 0.3 dry.wav mixed.wav # Blend with dry signal\n", os.Args[0])
		return fmt.Errorf("insufficient arguments")
	}

	if *mix < 0 || *mix > 1 {
		return fmt.Errorf("mix must be within [0, 1], got %g", *mix)
	}
	if *block <= 0 {
		return fmt.Errorf("block size must be positive, got %d", *block)
	}
	fftBackend, err := convolver.ParseBackend(*backend)
	if err != nil {
		return err
	}

	// Start CPU profiling if requested (for PGO)
	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			return fmt.Errorf("could not create CPU profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return fmt.Errorf("could not start CPU profile: %w", err)
		}
		defer func() {
			pprof.StopCPUProfile()
			_ = f.Close()
		}()
	}

	opts := renderOptions{
		irChannel: *channel,
		fftSize:   *fftSize,
		backend:   fftBackend,
		blockSize: *block,
		mix:       *mix,
		normalize: *normalize,
		parallel:  *parallel,
		verbose:   *verbose,
	}

	inputPath := args[0]
	outputPath := args[1]

	if *verbose {
		log.Printf("Input: %s", inputPath)
		log.Printf("Output: %s", outputPath)
		log.Printf("Impulse response: %s (channel %d)", *irPath, *channel)
		log.Printf("FFT: %d (%s), host block: %d", *fftSize, fftBackend, *block)
		log.Printf("Mix: %.2f, normalize: %t", *mix, *normalize)
		if *parallel {
			log.Printf("Parallel: enabled (concurrent channel processing)")
		} else {
			log.Printf("Parallel: disabled (sequential processing)")
		}
	}

	start := time.Now()
	stats, err := convolveFile(inputPath, *irPath, outputPath, opts)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("Convolved %s with %s -> %s\n",
		filepath.Base(inputPath), filepath.Base(*irPath), filepath.Base(outputPath))
	fmt.Printf("  %d Hz, %d channels, %d-bit\n", stats.sampleRate, stats.channels, stats.bitDepth)
	fmt.Printf("  IR: %d samples in %d segments of %d\n", stats.irSamples, stats.segments, stats.segmentSize)
	fmt.Printf("  %d samples -> %d samples\n", stats.inputSamples, stats.outputSamples)
	fmt.Printf("  Duration: %.2fs, Speed: %.1fx realtime\n",
		elapsed.Seconds(),
		float64(stats.inputSamples)/float64(stats.sampleRate)/elapsed.Seconds())

	return nil
}
