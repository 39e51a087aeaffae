// ABOUTME: Basic waveform generator resource
// ABOUTME: Sine, square, saw, triangle and noise tones from a config value
package builtin

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/mleml/mleml-go/pkg/resource"
	"github.com/mleml/mleml-go/pkg/sound"
)

// DefaultSampleRate is used when a config does not pick a rate.
const DefaultSampleRate = 48000

// Tone generates one cycle-accurate waveform.
//
// Config fields: "frequency" (Hz, required), "seconds" or "frames" (one
// required), "wave" ("sine", "square", "saw", "triangle", "noise"; default
// "sine"), "amplitude" (default 1), "sample_rate" (default 48000),
// "layout" ("mono" or "stereo", default "stereo").
type Tone struct{}

func (Tone) Name() string { return "tone" }

func (Tone) Produce(cfg resource.Config) (sound.Sound, error) {
	freq, err := cfg.Float("frequency")
	if err != nil {
		return sound.Sound{}, err
	}
	rate, err := cfg.IntOr("sample_rate", DefaultSampleRate)
	if err != nil {
		return sound.Sound{}, err
	}
	amp, err := cfg.FloatOr("amplitude", 1)
	if err != nil {
		return sound.Sound{}, err
	}
	wave, err := cfg.StringOr("wave", "sine")
	if err != nil {
		return sound.Sound{}, err
	}
	layout, err := layoutFromConfig(cfg)
	if err != nil {
		return sound.Sound{}, err
	}
	frames, err := framesFromConfig(cfg, rate)
	if err != nil {
		return sound.Sound{}, err
	}
	if freq <= 0 || freq >= float64(rate)/2 {
		return sound.Sound{}, &resource.ConfigError{Field: "frequency",
			Reason: fmt.Sprintf("%v Hz not in (0, %d)", freq, rate/2)}
	}

	gen, err := oscillator(wave)
	if err != nil {
		return sound.Sound{}, err
	}

	ch := layout.Channels()
	samples := make([]float32, frames*ch)
	step := freq / float64(rate)
	phase := 0.0
	for f := 0; f < frames; f++ {
		v := float32(gen(phase) * amp)
		for c := 0; c < ch; c++ {
			samples[f*ch+c] = v
		}
		phase += step
		if phase >= 1 {
			phase -= 1
		}
	}
	return sound.New(samples, rate, layout)
}

// oscillator returns a unit-amplitude wave function over phase in [0, 1).
func oscillator(wave string) (func(float64) float64, error) {
	switch wave {
	case "sine":
		return func(p float64) float64 { return math.Sin(2 * math.Pi * p) }, nil
	case "square":
		return func(p float64) float64 {
			if p < 0.5 {
				return 1
			}
			return -1
		}, nil
	case "saw":
		return func(p float64) float64 { return 2*p - 1 }, nil
	case "triangle":
		return func(p float64) float64 {
			if p < 0.5 {
				return 4*p - 1
			}
			return 3 - 4*p
		}, nil
	case "noise":
		return func(float64) float64 { return rand.Float64()*2 - 1 }, nil
	default:
		return nil, &resource.ConfigError{Field: "wave",
			Reason: fmt.Sprintf("unknown waveform %q", wave)}
	}
}

func layoutFromConfig(cfg resource.Config) (sound.Layout, error) {
	name, err := cfg.StringOr("layout", "stereo")
	if err != nil {
		return 0, err
	}
	switch name {
	case "mono":
		return sound.Mono, nil
	case "stereo":
		return sound.Stereo, nil
	default:
		return 0, &resource.ConfigError{Field: "layout",
			Reason: fmt.Sprintf("unknown layout %q", name)}
	}
}

// framesFromConfig resolves the output length from either "frames" or
// "seconds".
func framesFromConfig(cfg resource.Config, rate int) (int, error) {
	if _, ok := cfg["frames"]; ok {
		frames, err := cfg.Int("frames")
		if err != nil {
			return 0, err
		}
		if frames < 0 {
			return 0, &resource.ConfigError{Field: "frames", Reason: "negative length"}
		}
		return frames, nil
	}
	secs, err := cfg.Float("seconds")
	if err != nil {
		return 0, &resource.ConfigError{Field: "seconds",
			Reason: "either frames or seconds is required"}
	}
	if secs < 0 {
		return 0, &resource.ConfigError{Field: "seconds", Reason: "negative length"}
	}
	return int(math.Ceil(secs * float64(rate))), nil
}
