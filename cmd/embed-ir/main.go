// Command embed-ir converts an impulse response file into Go source so the
// response can be compiled into a binary.
//
// Usage:
//
//	embed-ir -pkg reverb -var SpringIR spring.wav spring_ir.go
//	embed-ir -pkg reverb -var SpringIR -rate 48000 -trim -max 16384 spring.aiff spring_ir.go
//	embed-ir -pkg reverb -var SpringIR spring.wav -       # write to stdout
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/tphakala/go-audio-convolver/internal/impulse"
)

const (
	// CLI defaults
	defaultPackage  = "main"
	defaultVar      = "ImpulseResponse"
	defaultChannel  = impulse.MixDown
	defaultFadeLen  = 256
	minRequiredArgs = 2

	stdoutPath = "-"
)

// embedOptions holds the preparation steps taken from flags.
type embedOptions struct {
	pkg       string
	varName   string
	channel   int
	rate      int
	maxLen    int
	fadeLen   int
	trim      bool
	normalize float64
	verbose   bool
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	var opts embedOptions
	flag.StringVar(&opts.pkg, "pkg", defaultPackage, "Package name of the generated file")
	flag.StringVar(&opts.varName, "var", defaultVar, "Name of the generated []float64 variable")
	flag.IntVar(&opts.channel, "channel", defaultChannel, "Channel to embed, -1 mixes all channels down")
	flag.IntVar(&opts.rate, "rate", 0, "Resample to this rate in Hz (0 keeps the file's rate)")
	flag.IntVar(&opts.maxLen, "max", 0, "Keep at most this many samples (0 keeps all)")
	flag.IntVar(&opts.fadeLen, "fade", defaultFadeLen, "Fade-out length applied when -max truncates")
	flag.BoolVar(&opts.trim, "trim", false, "Drop trailing samples below -80 dB of the peak")
	flag.Float64Var(&opts.normalize, "normalize", 0, "Scale to this peak level (0 leaves the level alone)")
	flag.BoolVar(&opts.verbose, "v", false, "Verbose output")
	flag.Parse()

	args := flag.Args()
	if len(args) < minRequiredArgs {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] ir.wav out.go\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		return fmt.Errorf("insufficient arguments")
	}

	inputPath, outputPath := args[0], args[1]

	samples, rate, err := prepareIR(inputPath, opts)
	if err != nil {
		return err
	}

	emit := impulse.EmitOptions{
		Package:    opts.pkg,
		Var:        opts.varName,
		SampleRate: rate,
		Source:     filepath.Base(inputPath),
	}

	if outputPath == stdoutPath {
		return impulse.EmitGo(os.Stdout, emit, samples)
	}
	if err := writeFile(outputPath, emit, samples); err != nil {
		return err
	}

	fmt.Printf("Embedded %s -> %s (%d samples at %d Hz)\n",
		filepath.Base(inputPath), filepath.Base(outputPath), len(samples), rate)
	return nil
}

// prepareIR loads the file and applies the requested steps in order:
// channel selection, resampling, trimming, truncation and normalization.
func prepareIR(path string, opts embedOptions) (samples []float64, rate int, err error) {
	ir, err := impulse.Load(path)
	if err != nil {
		return nil, 0, err
	}
	if opts.verbose {
		log.Printf("Loaded %s: %d Hz, %d channels, %d-bit, %d samples",
			path, ir.SampleRate, ir.Channels(), ir.BitDepth, ir.Len())
	}

	samples, err = ir.Mono(opts.channel)
	if err != nil {
		return nil, 0, err
	}

	rate = ir.SampleRate
	if opts.rate > 0 && opts.rate != rate {
		if samples, err = impulse.Resample(samples, rate, opts.rate); err != nil {
			return nil, 0, err
		}
		rate = opts.rate
		if opts.verbose {
			log.Printf("Resampled to %d Hz: %d samples", rate, len(samples))
		}
	}

	if opts.trim {
		samples = impulse.TrimSilence(samples, impulse.DefaultSilenceThreshold)
		if opts.verbose {
			log.Printf("Trimmed to %d samples", len(samples))
		}
	}

	if opts.maxLen > 0 && len(samples) > opts.maxLen {
		samples = impulse.Truncate(samples, opts.maxLen, opts.fadeLen)
		if opts.verbose {
			log.Printf("Truncated to %d samples with a %d sample fade", len(samples), opts.fadeLen)
		}
	}

	if opts.normalize > 0 {
		gain := impulse.NormalizePeak(samples, opts.normalize)
		if opts.verbose {
			log.Printf("Normalized with gain %.4f", gain)
		}
	}

	if len(samples) == 0 {
		return nil, 0, fmt.Errorf("impulse response is empty after preparation: %s", path)
	}
	return samples, rate, nil
}

func writeFile(path string, emit impulse.EmitOptions, samples []float64) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}()

	return impulse.EmitGo(f, emit, samples)
}
