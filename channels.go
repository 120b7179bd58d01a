package convolver

import (
	"errors"
	"fmt"
	"sync"

	"github.com/tphakala/go-audio-convolver/internal/engine"
	"github.com/tphakala/go-audio-convolver/internal/pipeline"
	"github.com/tphakala/simd/cpu"
)

// multiChannelConvolver runs one engine per channel over a shared,
// read-only filter bank.
type multiChannelConvolver struct {
	config Config
	bank   *engine.FilterBank

	// Per-channel state
	channels []*channelState
}

// channelState holds per-channel state.
type channelState struct {
	engine *engine.Engine
	stage  pipeline.Stage
}

func newMultiChannel(config *Config, ir []float64) (*multiChannelConvolver, error) {
	backend := config.Backend.toEngine()

	first, err := engine.NewTransform(backend, config.FFTSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	bank, err := engine.NewFilterBank(ir, first)
	if err != nil {
		return nil, err
	}

	c := &multiChannelConvolver{
		config:   *config,
		bank:     bank,
		channels: make([]*channelState, config.Channels),
	}

	for i := range config.Channels {
		t := first
		if i > 0 && !config.ShareTransform {
			if t, err = engine.NewTransform(backend, config.FFTSize); err != nil {
				return nil, fmt.Errorf("channel %d: %w", i, err)
			}
		}

		e, err := engine.NewFromBank(bank, t)
		if err != nil {
			return nil, fmt.Errorf("channel %d: %w", i, err)
		}

		var stage pipeline.Stage = engine.NewStageAdapter(e)
		if config.Aligned {
			if stage, err = pipeline.NewBlockAligner(stage, config.MaxBlockSize); err != nil {
				return nil, fmt.Errorf("channel %d: %w", i, err)
			}
		}

		c.channels[i] = &channelState{engine: e, stage: stage}
	}

	return c, nil
}

// Process convolves a block of channel 0.
func (c *multiChannelConvolver) Process(input []float64) ([]float64, error) {
	return c.processChannel(0, input)
}

// ProcessTo convolves src into dst for one channel.
func (c *multiChannelConvolver) ProcessTo(channel int, dst, src []float64) error {
	if channel < 0 || channel >= len(c.channels) {
		return fmt.Errorf("%w: channel %d out of range", ErrChannelMismatch, channel)
	}
	return mapStageError(c.channels[channel].stage.ProcessTo(dst, src))
}

// ProcessFloat32 converts to float64, processes channel 0 and converts back.
func (c *multiChannelConvolver) ProcessFloat32(input []float32) ([]float32, error) {
	output, err := c.Process(toFloat64(input))
	if err != nil {
		return nil, err
	}
	return toFloat32(output), nil
}

// ProcessMulti processes one block per channel, concurrently when
// EnableParallel is set. Channels share no mutable state, so no locking
// is needed.
func (c *multiChannelConvolver) ProcessMulti(input [][]float64) ([][]float64, error) {
	if len(input) != len(c.channels) {
		return nil, fmt.Errorf("%w: expected %d channels, got %d", ErrChannelMismatch, len(c.channels), len(input))
	}

	output := make([][]float64, len(input))

	if !c.config.EnableParallel || len(input) <= 1 {
		for ch := range input {
			result, err := c.processChannel(ch, input[ch])
			if err != nil {
				return nil, fmt.Errorf("channel %d: %w", ch, err)
			}
			output[ch] = result
		}
		return output, nil
	}

	var wg sync.WaitGroup
	errs := make([]error, len(input))
	for ch := range input {
		wg.Go(func() {
			result, err := c.processChannel(ch, input[ch])
			if err != nil {
				errs[ch] = fmt.Errorf("channel %d: %w", ch, err)
				return
			}
			output[ch] = result
		})
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return output, nil
}

func (c *multiChannelConvolver) processChannel(channel int, input []float64) ([]float64, error) {
	out := make([]float64, len(input))
	if err := c.ProcessTo(channel, out, input); err != nil {
		return nil, err
	}
	return out, nil
}

// Flush returns the remaining tail of channel 0.
func (c *multiChannelConvolver) Flush() ([]float64, error) {
	return c.flushChannel(0)
}

// FlushMulti returns the remaining tail of every channel.
func (c *multiChannelConvolver) FlushMulti() ([][]float64, error) {
	out := make([][]float64, len(c.channels))
	for ch := range c.channels {
		tail, err := c.flushChannel(ch)
		if err != nil {
			return nil, fmt.Errorf("channel %d: %w", ch, err)
		}
		out[ch] = tail
	}
	return out, nil
}

// flushChannel feeds silence until every past input sample has passed
// through the whole impulse response. An engine takes the whole tail in
// one call; an aligned stage takes it in chunks of at most MaxBlockSize.
func (c *multiChannelConvolver) flushChannel(channel int) ([]float64, error) {
	stage := c.channels[channel].stage
	tail := make([]float64, c.bank.KernelLen()-1+stage.GetLatency())

	chunk := len(tail)
	if c.config.Aligned {
		chunk = c.config.MaxBlockSize
	}
	for start := 0; start < len(tail); start += chunk {
		end := min(start+chunk, len(tail))
		if err := stage.ProcessTo(tail[start:end], tail[start:end]); err != nil {
			return nil, mapStageError(err)
		}
	}
	return tail, nil
}

// GetLatency returns the delay in samples added by block alignment.
func (c *multiChannelConvolver) GetLatency() int {
	return c.channels[0].stage.GetLatency()
}

// Reset clears all channels.
func (c *multiChannelConvolver) Reset() {
	for _, ch := range c.channels {
		ch.stage.Reset()
	}
}

// GetInfo describes the convolver.
func (c *multiChannelConvolver) GetInfo() Info {
	var mem int64
	for _, ch := range c.channels {
		mem += ch.stage.GetMemoryUsage()
	}
	// the bank is counted once per engine above but stored once
	mem -= int64(len(c.channels)-1) * c.bank.MemoryUsage()

	e := c.channels[0].engine
	return Info{
		FFTSize:     e.FFTSize(),
		SegmentSize: e.SegmentSize(),
		Segments:    e.Segments(),
		KernelLen:   e.KernelLen(),
		Channels:    len(c.channels),
		Latency:     c.GetLatency(),
		Backend:     c.config.Backend.String(),
		Aligned:     c.config.Aligned,
		MemoryBytes: mem,
		SIMDType:    cpu.Info(),
	}
}

func mapStageError(err error) error {
	if errors.Is(err, pipeline.ErrBlockTooLarge) {
		return fmt.Errorf("%w: %w", ErrBlockTooLarge, err)
	}
	return err
}
