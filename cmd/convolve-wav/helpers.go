package main

import (
	"fmt"
	"log"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/transforms"
	"github.com/go-audio/wav"

	convolver "github.com/tphakala/go-audio-convolver"
	"github.com/tphakala/go-audio-convolver/internal/impulse"
)

// renderOptions holds the processing settings taken from flags.
type renderOptions struct {
	irChannel int
	fftSize   int
	backend   convolver.Backend
	blockSize int
	mix       float64
	normalize bool
	parallel  bool
	verbose   bool
}

type convolveStats struct {
	sampleRate    int
	channels      int
	bitDepth      int
	irSamples     int
	segments      int
	segmentSize   int
	inputSamples  int64
	outputSamples int64
}

// convolveFile decodes input, renders every channel through the impulse
// response and writes a WAV file with the input's rate and bit depth.
func convolveFile(inputPath, irPath, outputPath string, opts renderOptions) (*convolveStats, error) {
	input, err := impulse.Load(inputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load input: %w", err)
	}
	if input.Channels() == 0 {
		return nil, fmt.Errorf("input has no channels: %s", inputPath)
	}
	if opts.verbose {
		log.Printf("Input format: %d Hz, %d channels, %d-bit", input.SampleRate, input.Channels(), input.BitDepth)
	}

	ir, err := loadIR(irPath, opts.irChannel, input.SampleRate, opts.verbose)
	if err != nil {
		return nil, err
	}

	conv, err := newFileConvolver(input.Channels(), ir, opts)
	if err != nil {
		return nil, err
	}
	info := conv.GetInfo()
	if opts.verbose {
		log.Printf("Engine: %d segments of %d samples, latency %d, %d KiB, SIMD %s",
			info.Segments, info.SegmentSize, info.Latency, info.MemoryBytes/1024, info.SIMDType)
	}

	wet, err := renderChannels(conv, input.Samples, opts.blockSize, opts.verbose)
	if err != nil {
		return nil, err
	}
	mixDry(wet, input.Samples, opts.mix)

	if err := writeWAV(outputPath, wet, input.SampleRate, input.BitDepth, opts.normalize); err != nil {
		return nil, err
	}

	return &convolveStats{
		sampleRate:    input.SampleRate,
		channels:      input.Channels(),
		bitDepth:      input.BitDepth,
		irSamples:     len(ir),
		segments:      info.Segments,
		segmentSize:   info.SegmentSize,
		inputSamples:  int64(input.Len()),
		outputSamples: int64(len(wet[0])),
	}, nil
}

// loadIR reads an impulse response, selects or mixes down a channel and
// matches its sample rate to the input.
func loadIR(path string, channel, sampleRate int, verbose bool) ([]float64, error) {
	ir, err := impulse.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load impulse response: %w", err)
	}

	samples, err := ir.Mono(channel)
	if err != nil {
		return nil, err
	}

	if ir.SampleRate != sampleRate {
		if verbose {
			log.Printf("Resampling impulse response %d Hz -> %d Hz", ir.SampleRate, sampleRate)
		}
		if samples, err = impulse.Resample(samples, ir.SampleRate, sampleRate); err != nil {
			return nil, err
		}
	}

	if len(samples) == 0 {
		return nil, fmt.Errorf("impulse response is empty: %s", path)
	}
	return samples, nil
}

// newFileConvolver creates an aligned convolver so any host block size
// gives exact output.
func newFileConvolver(channels int, ir []float64, opts renderOptions) (convolver.Convolver, error) {
	cfg := convolver.DefaultConfig(channels)
	cfg.FFTSize = opts.fftSize
	cfg.Backend = opts.backend
	cfg.Aligned = true
	cfg.MaxBlockSize = opts.blockSize
	cfg.EnableParallel = opts.parallel && channels > monoChannels

	conv, err := convolver.New(&cfg, ir)
	if err != nil {
		return nil, fmt.Errorf("failed to create convolver: %w", err)
	}
	return conv, nil
}

// renderChannels streams every channel through conv in host blocks,
// appends the reverb tail and drops the alignment latency. Each result
// holds len(input)+len(ir)-1 samples.
func renderChannels(conv convolver.Convolver, channels [][]float64, blockSize int, verbose bool) ([][]float64, error) {
	numChannels := len(channels)
	frames := len(channels[0])
	latency := conv.GetLatency()
	tailLen := conv.GetInfo().KernelLen - 1 + latency

	out := make([][]float64, numChannels)
	for ch := range out {
		out[ch] = make([]float64, 0, frames+tailLen)
	}

	block := make([][]float64, numChannels)
	progress := newProgressTracker(int64(frames), verbose)

	for start := 0; start < frames; start += blockSize {
		end := min(start+blockSize, frames)
		for ch := range channels {
			block[ch] = channels[ch][start:end]
		}

		rendered, err := conv.ProcessMulti(block)
		if err != nil {
			return nil, fmt.Errorf("convolution failed at sample %d: %w", start, err)
		}
		for ch := range out {
			out[ch] = append(out[ch], rendered[ch]...)
		}
		progress.reportIfNeeded(int64(end))
	}

	tails, err := conv.FlushMulti()
	if err != nil {
		return nil, fmt.Errorf("failed to flush reverb tail: %w", err)
	}
	for ch := range out {
		out[ch] = append(out[ch], tails[ch]...)[latency:]
	}
	return out, nil
}

// mixDry blends the dry input into wet in place: wet = mix·wet + (1-mix)·dry.
func mixDry(wet, dry [][]float64, mix float64) {
	if mix == 1 {
		return
	}
	for ch := range wet {
		w := wet[ch]
		for i := range w {
			w[i] *= mix
		}
		for i, v := range dry[ch] {
			w[i] += (1 - mix) * v
		}
	}
}

// writeWAV encodes channels as interleaved PCM at the given bit depth.
func writeWAV(path string, channels [][]float64, sampleRate, bitDepth int, normalize bool) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}()

	format := &audio.Format{SampleRate: sampleRate, NumChannels: len(channels)}

	var buf *audio.IntBuffer
	if normalize {
		buf = normalizedPCM(channels, format, bitDepth)
	} else {
		buf = &audio.IntBuffer{
			Format:         format,
			Data:           interleavePCM(channels, pcmMax(bitDepth)),
			SourceBitDepth: bitDepth,
		}
	}

	enc := wav.NewEncoder(f, sampleRate, bitDepth, len(channels), 1)
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("failed to write audio data: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finalize WAV file: %w", err)
	}
	return nil
}

// normalizedPCM scales the loudest sample to just below full scale and
// converts to integer PCM.
func normalizedPCM(channels [][]float64, format *audio.Format, bitDepth int) *audio.IntBuffer {
	fb := &audio.FloatBuffer{Format: format, Data: interleaveFloat(channels)}

	transforms.NormalizeMax(fb)
	for i := range fb.Data {
		fb.Data[i] *= normalizeHeadroom
	}
	transforms.PCMScale(fb, bitDepth)

	buf := fb.AsIntBuffer()
	buf.SourceBitDepth = bitDepth
	return buf
}

// pcmMax returns the largest positive sample value for the bit depth.
func pcmMax(bitDepth int) float64 {
	return math.Exp2(float64(bitDepth-1)) - 1
}

// interleaveFloat interleaves per-channel slices of equal length.
func interleaveFloat(channels [][]float64) []float64 {
	numChannels := len(channels)
	if numChannels == stereoChannels {
		return convolver.InterleaveToStereo(channels[0], channels[1])
	}

	frames := len(channels[0])
	out := make([]float64, frames*numChannels)
	for i := range frames {
		for ch := range numChannels {
			out[i*numChannels+ch] = channels[ch][i]
		}
	}
	return out
}

// interleavePCM interleaves and converts to integers, clipping to [-1, 1].
func interleavePCM(channels [][]float64, maxVal float64) []int {
	data := interleaveFloat(channels)
	out := make([]int, len(data))
	for i, v := range data {
		out[i] = int(math.Round(min(max(v, -1), 1) * maxVal))
	}
	return out
}

// progressTracker handles progress reporting.
type progressTracker struct {
	totalSamples int64
	lastProgress int
	verbose      bool
}

// newProgressTracker creates a new progress tracker.
func newProgressTracker(totalSamples int64, verbose bool) *progressTracker {
	return &progressTracker{
		totalSamples: totalSamples,
		verbose:      verbose,
	}
}

// reportIfNeeded reports progress if threshold crossed.
func (p *progressTracker) reportIfNeeded(currentSamples int64) {
	if !p.verbose || p.totalSamples == 0 {
		return
	}

	progress := int(float64(currentSamples) / float64(p.totalSamples) * percentScale)
	if progress >= p.lastProgress+progressInterval {
		log.Printf("Progress: %d%%", progress)
		p.lastProgress = progress
	}
}
