package impulse

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/tphakala/go-audio-convolver/internal/mathutil"
)

// SpringConfig controls synthetic spring reverb generation.
//
// A spring tank returns the input as a train of echoes spaced by the
// round-trip time of the spring. Dispersion smears each echo into a
// falling chirp, and every trip loses energy.
type SpringConfig struct {
	SampleRate int
	DurationS  float64
	Seed       uint64

	// EchoPeriodS is the round-trip delay between successive echoes.
	EchoPeriodS float64

	// ChirpS is how long each dispersed echo rings.
	ChirpS      float64
	ChirpHighHz float64
	ChirpLowHz  float64

	// DecayS is the time for the echo train to fall by 60 dB.
	DecayS float64

	// Diffusion mixes in decaying noise, 0 for a pure echo train.
	Diffusion float64

	NormalizePeak float64
}

// DefaultSpringConfig returns a response resembling a small two-spring tank.
func DefaultSpringConfig() SpringConfig {
	return SpringConfig{
		SampleRate:    48000,
		DurationS:     2.5,
		Seed:          1,
		EchoPeriodS:   0.033,
		ChirpS:        0.018,
		ChirpHighHz:   4500,
		ChirpLowHz:    180,
		DecayS:        2.2,
		Diffusion:     0.15,
		NormalizePeak: 0.9,
	}
}

// Validate checks the configuration.
func (c *SpringConfig) Validate() error {
	switch {
	case c.SampleRate < minSpringRate:
		return fmt.Errorf("%w: sample rate too low: %d", ErrInvalidConfig, c.SampleRate)
	case c.DurationS <= 0:
		return fmt.Errorf("%w: duration must be > 0", ErrInvalidConfig)
	case c.EchoPeriodS <= 0 || c.ChirpS <= 0:
		return fmt.Errorf("%w: echo period and chirp length must be > 0", ErrInvalidConfig)
	case c.ChirpLowHz <= 0 || c.ChirpHighHz <= c.ChirpLowHz:
		return fmt.Errorf("%w: chirp must fall from a higher to a lower positive frequency", ErrInvalidConfig)
	case c.ChirpHighHz >= float64(c.SampleRate)/2:
		return fmt.Errorf("%w: chirp start %.0f Hz is above Nyquist", ErrInvalidConfig, c.ChirpHighHz)
	case c.DecayS <= 0:
		return fmt.Errorf("%w: decay must be > 0", ErrInvalidConfig)
	case c.Diffusion < 0:
		return fmt.Errorf("%w: diffusion must be >= 0", ErrInvalidConfig)
	case c.NormalizePeak <= 0:
		return fmt.Errorf("%w: normalize peak must be > 0", ErrInvalidConfig)
	}
	return nil
}

// SynthSpring renders a mono spring reverb response. The same config,
// seed included, always yields the same samples.
func SynthSpring(cfg SpringConfig) ([]float64, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rate := float64(cfg.SampleRate)
	n := max(1, int(math.Round(cfg.DurationS*rate)))
	out := make([]float64, n)

	chirp := springChirp(cfg)
	period := max(1, int(math.Round(cfg.EchoPeriodS*rate)))
	for start := 0; start < n; start += period {
		gain := rt60Gain(float64(start)/rate, cfg.DecayS)
		for i, v := range chirp {
			if start+i >= n {
				break
			}
			// echoes alternate polarity at each reflection
			if (start/period)%2 == 1 {
				v = -v
			}
			out[start+i] += gain * v
		}
	}

	if cfg.Diffusion > 0 {
		rng := rand.New(rand.NewPCG(cfg.Seed, springSeedSalt))
		var lp float64
		for i := range out {
			lp += diffusionSmoothing * (rng.NormFloat64() - lp)
			out[i] += cfg.Diffusion * rt60Gain(float64(i)/rate, cfg.DecayS) * lp
		}
	}

	NormalizePeak(out, cfg.NormalizePeak)
	return out, nil
}

// springChirp renders one dispersed echo: an exponential sweep from
// ChirpHighHz down to ChirpLowHz under a Kaiser envelope.
func springChirp(cfg SpringConfig) []float64 {
	rate := float64(cfg.SampleRate)
	n := max(1, int(math.Round(cfg.ChirpS*rate)))
	env := mathutil.KaiserWindow(n, chirpBeta)

	k := math.Log(cfg.ChirpLowHz / cfg.ChirpHighHz)
	dur := float64(n) / rate
	chirp := make([]float64, n)
	for i := range chirp {
		t := float64(i) / rate
		// phase of f(t) = high * exp(k t / dur), integrated
		phase := 2 * math.Pi * cfg.ChirpHighHz * dur / k * (math.Exp(k*t/dur) - 1)
		chirp[i] = env[i] * math.Sin(phase)
	}
	return chirp
}

// rt60Gain returns the amplitude after t seconds when the level falls
// 60 dB every decay seconds.
func rt60Gain(t, decay float64) float64 {
	return math.Pow(10, -rt60Decades*t/decay)
}

const (
	minSpringRate      = 8000
	chirpBeta          = 6.0
	rt60Decades        = 3.0 // 60 dB = 3 decades of amplitude
	diffusionSmoothing = 0.05
	springSeedSalt     = 0x5eed5be11
)
