// ABOUTME: Utility mods: gain, fades, ADSR envelope, resample, quantize
// ABOUTME: Every transform copies; inputs are never written to
package builtin

import (
	"fmt"
	"math"

	"github.com/mleml/mleml-go/pkg/resource"
	"github.com/mleml/mleml-go/pkg/sound"
)

// Gain scales every sample by the "gain" config field and clamps the result
// to the valid range.
type Gain struct{}

func (Gain) Name() string { return "gain" }

func (Gain) Apply(in sound.Sound, cfg resource.Config) (sound.Sound, error) {
	g, err := cfg.Float("gain")
	if err != nil {
		return sound.Sound{}, err
	}
	if g < 0 {
		return sound.Sound{}, &resource.ConfigError{Field: "gain", Reason: "negative gain"}
	}
	src := in.Samples()
	out := make([]float32, len(src))
	gf := float32(g)
	for i, s := range src {
		v := s * gf
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}
		out[i] = v
	}
	return sound.New(out, in.SampleRate(), in.Layout())
}

// Fade applies linear fade-in and fade-out ramps. Config fields:
// "in_seconds" and "out_seconds", both optional, both default 0.
type Fade struct{}

func (Fade) Name() string { return "fade" }

func (Fade) Apply(in sound.Sound, cfg resource.Config) (sound.Sound, error) {
	fadeIn, err := cfg.FloatOr("in_seconds", 0)
	if err != nil {
		return sound.Sound{}, err
	}
	fadeOut, err := cfg.FloatOr("out_seconds", 0)
	if err != nil {
		return sound.Sound{}, err
	}
	if fadeIn < 0 {
		return sound.Sound{}, &resource.ConfigError{Field: "in_seconds", Reason: "negative fade"}
	}
	if fadeOut < 0 {
		return sound.Sound{}, &resource.ConfigError{Field: "out_seconds", Reason: "negative fade"}
	}

	rate := in.SampleRate()
	frames := in.Frames()
	ch := in.Layout().Channels()
	inFrames := int(fadeIn * float64(rate))
	outFrames := int(fadeOut * float64(rate))

	src := in.Samples()
	out := make([]float32, len(src))
	copy(out, src)
	for f := 0; f < inFrames && f < frames; f++ {
		w := float32(f) / float32(inFrames)
		for c := 0; c < ch; c++ {
			out[f*ch+c] *= w
		}
	}
	for f := 0; f < outFrames && f < frames; f++ {
		w := float32(f) / float32(outFrames)
		idx := frames - 1 - f
		for c := 0; c < ch; c++ {
			out[idx*ch+c] *= w
		}
	}
	return sound.New(out, rate, in.Layout())
}

// Envelope shapes an existing sound with a linear ADSR curve. Config
// fields: "attack", "decay", "release" (seconds, default 0) and
// "sustain_level" (0-1, default 1). The release ramp occupies the final
// "release" seconds of the input.
type Envelope struct{}

func (Envelope) Name() string { return "envelope" }

func (Envelope) Apply(in sound.Sound, cfg resource.Config) (sound.Sound, error) {
	attack, err := cfg.FloatOr("attack", 0)
	if err != nil {
		return sound.Sound{}, err
	}
	decay, err := cfg.FloatOr("decay", 0)
	if err != nil {
		return sound.Sound{}, err
	}
	release, err := cfg.FloatOr("release", 0)
	if err != nil {
		return sound.Sound{}, err
	}
	level, err := cfg.FloatOr("sustain_level", 1)
	if err != nil {
		return sound.Sound{}, err
	}
	for field, v := range map[string]float64{
		"attack": attack, "decay": decay, "release": release,
	} {
		if v < 0 {
			return sound.Sound{}, &resource.ConfigError{Field: field, Reason: "negative stage length"}
		}
	}
	if level < 0 || level > 1 {
		return sound.Sound{}, &resource.ConfigError{Field: "sustain_level",
			Reason: fmt.Sprintf("%v not in 0-1", level)}
	}

	rate := float64(in.SampleRate())
	frames := in.Frames()
	ch := in.Layout().Channels()
	aF := attack * rate
	dF := decay * rate
	rStart := float64(frames) - release*rate

	src := in.Samples()
	out := make([]float32, len(src))
	for f := 0; f < frames; f++ {
		t := float64(f)
		var w float64
		switch {
		case t < aF:
			w = t / aF
		case t < aF+dF:
			w = 1 - (t-aF)/dF*(1-level)
		default:
			w = level
		}
		if t >= rStart && rStart < float64(frames) {
			w *= (float64(frames) - t) / (float64(frames) - rStart)
		}
		for c := 0; c < ch; c++ {
			out[f*ch+c] = src[f*ch+c] * float32(w)
		}
	}
	return sound.New(out, in.SampleRate(), in.Layout())
}

// Resample converts a sound to the "sample_rate" config field using linear
// interpolation between neighboring frames.
type Resample struct{}

func (Resample) Name() string { return "resample" }

func (Resample) Apply(in sound.Sound, cfg resource.Config) (sound.Sound, error) {
	target, err := cfg.Int("sample_rate")
	if err != nil {
		return sound.Sound{}, err
	}
	if target <= 0 {
		return sound.Sound{}, &resource.ConfigError{Field: "sample_rate",
			Reason: fmt.Sprintf("%d is not positive", target)}
	}
	if target == in.SampleRate() {
		return in, nil
	}

	frames := in.Frames()
	ch := in.Layout().Channels()
	if frames == 0 {
		return sound.Silence(0, target, in.Layout()), nil
	}

	ratio := float64(in.SampleRate()) / float64(target)
	outFrames := int(math.Ceil(float64(frames) / ratio))
	out := make([]float32, outFrames*ch)
	for f := 0; f < outFrames; f++ {
		pos := float64(f) * ratio
		i0 := int(pos)
		i1 := i0 + 1
		if i1 >= frames {
			i1 = frames - 1
		}
		frac := float32(pos - float64(i0))
		for c := 0; c < ch; c++ {
			a := in.Sample(i0, c)
			b := in.Sample(i1, c)
			out[f*ch+c] = a + (b-a)*frac
		}
	}
	return sound.New(out, target, in.Layout())
}

// Quantize crushes samples to the bit depth given by the "bits" config
// field (1-16).
type Quantize struct{}

func (Quantize) Name() string { return "quantize" }

func (Quantize) Apply(in sound.Sound, cfg resource.Config) (sound.Sound, error) {
	bits, err := cfg.Int("bits")
	if err != nil {
		return sound.Sound{}, err
	}
	if bits < 1 || bits > 16 {
		return sound.Sound{}, &resource.ConfigError{Field: "bits",
			Reason: fmt.Sprintf("%d not in 1-16", bits)}
	}
	steps := float64(int(1) << (bits - 1))
	src := in.Samples()
	out := make([]float32, len(src))
	for i, s := range src {
		q := math.Trunc(float64(s) * steps)
		if q > steps-1 {
			q = steps - 1
		} else if q < -steps {
			q = -steps
		}
		out[i] = float32(q / steps)
	}
	return sound.New(out, in.SampleRate(), in.Layout())
}
