package convolver

import (
	"fmt"
	"math"
)

// ParamID identifies a Processor parameter.
type ParamID int

const (
	// ParamMix blends dry (0) and wet (1) signal.
	ParamMix ParamID = iota

	// ParamOutputGain scales the output with a square-law taper:
	// gain = 2·v², so v = 1/sqrt(2) is unity and v = 1 is +6 dB.
	ParamOutputGain
)

// String returns the parameter name.
func (p ParamID) String() string {
	switch p {
	case ParamMix:
		return "mix"
	case ParamOutputGain:
		return "output-gain"
	default:
		return fmt.Sprintf("ParamID(%d)", int(p))
	}
}

// ParamUpdate carries a normalized parameter value in [0, 1] from a
// control thread to the audio thread.
type ParamUpdate struct {
	Param ParamID
	Value float64
}

// Processor is the stereo audio-thread side of a spring reverb: two
// independent convolution engines plus mix and output gain driven by
// parameter updates.
//
// Updates arrive over a bounded channel. ProcessStereo drains it without
// blocking before rendering each block, so a control thread can never
// stall audio and an empty queue costs one failed receive.
type Processor struct {
	conv    Convolver
	updates chan ParamUpdate

	mix  float64
	gain float64

	maxBlock   int
	wetL, wetR []float64
}

// NewProcessor creates a stereo Processor. Channels is forced to 2.
// queueSize bounds pending updates; zero selects a default.
func NewProcessor(config *Config, ir []float64, queueSize int) (*Processor, error) {
	if config == nil {
		return nil, fmt.Errorf("%w: nil config", ErrInvalidConfig)
	}
	cfg := config.withDefaults()
	cfg.Channels = stereoChannels
	if queueSize < 0 {
		return nil, fmt.Errorf("%w: queue size must not be negative", ErrInvalidConfig)
	}
	if queueSize == 0 {
		queueSize = defaultQueueSize
	}

	conv, err := New(&cfg, ir)
	if err != nil {
		return nil, err
	}

	return &Processor{
		conv:     conv,
		updates:  make(chan ParamUpdate, queueSize),
		mix:      defaultMix,
		gain:     defaultGain,
		maxBlock: cfg.MaxBlockSize,
		wetL:     make([]float64, cfg.MaxBlockSize),
		wetR:     make([]float64, cfg.MaxBlockSize),
	}, nil
}

// Updates returns the send side of the parameter queue.
func (p *Processor) Updates() chan<- ParamUpdate { return p.updates }

// Send queues an update without blocking and reports whether it fit.
func (p *Processor) Send(u ParamUpdate) bool {
	select {
	case p.updates <- u:
		return true
	default:
		return false
	}
}

// drainUpdates applies pending updates. It stops when the queue is empty
// and never takes more than the queue capacity, so a producer that keeps
// sending cannot hold the audio thread.
func (p *Processor) drainUpdates() {
	for range cap(p.updates) {
		select {
		case u := <-p.updates:
			p.apply(u)
		default:
			return
		}
	}
}

func (p *Processor) apply(u ParamUpdate) {
	if math.IsNaN(u.Value) {
		return
	}
	v := min(max(u.Value, 0), 1)
	switch u.Param {
	case ParamMix:
		p.mix = v
	case ParamOutputGain:
		p.gain = outputGainScale * v * v
	}
}

// ProcessStereo renders one stereo block. Outputs may alias inputs.
func (p *Processor) ProcessStereo(inL, inR, outL, outR []float64) error {
	p.drainUpdates()

	n := len(inL)
	if len(inR) != n || len(outL) != n || len(outR) != n {
		return fmt.Errorf("%w: block lengths %d/%d/%d/%d", ErrChannelMismatch, len(inL), len(inR), len(outL), len(outR))
	}
	if n > p.maxBlock {
		return fmt.Errorf("%w: %d > %d", ErrBlockTooLarge, n, p.maxBlock)
	}

	wetL, wetR := p.wetL[:n], p.wetR[:n]
	if err := p.conv.ProcessTo(0, wetL, inL); err != nil {
		return err
	}
	if err := p.conv.ProcessTo(1, wetR, inR); err != nil {
		return err
	}

	dry := (1 - p.mix) * p.gain
	wet := p.mix * p.gain
	for i := range n {
		outL[i] = dry*inL[i] + wet*wetL[i]
		outR[i] = dry*inR[i] + wet*wetR[i]
	}
	return nil
}

// Mix returns the current wet/dry mix in [0, 1].
func (p *Processor) Mix() float64 { return p.mix }

// Gain returns the current linear output gain.
func (p *Processor) Gain() float64 { return p.gain }

// Latency returns the processing delay in samples.
func (p *Processor) Latency() int { return p.conv.GetLatency() }

// Reset clears the convolution state. Parameters are kept.
func (p *Processor) Reset() { p.conv.Reset() }
