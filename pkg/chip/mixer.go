// ABOUTME: Mixer capability combining multiple streams into one
// ABOUTME: Linear summation with gain, pan weights and clamp clipping
package chip

import (
	"fmt"

	"github.com/mleml/mleml-go/pkg/sound"
)

// Input is one stream handed to a Mixer, with its per-input levels.
// Pan runs from -1 (left only) through 0 (center) to +1 (right only).
type Input struct {
	Sound sound.Sound
	Gain  float64
	Pan   float64
}

// Mixer combines multiple streams into one output stream. Inputs are
// combined in the order given, which matters for clipping behavior. All
// inputs must share one sample rate; mismatches fail with
// sound.ErrFormatMismatch. An empty input slice yields a zero-length
// silence, not an error.
type Mixer interface {
	Combine(inputs []Input) (sound.Sound, error)
}

// Linear is a Mixer doing per-sample linear combination: each input is
// scaled by its gain and pan weights, summed into a stereo output, then
// clamped to [-1, 1]. Mono inputs are spread across both output channels;
// inputs shorter than the longest are padded with silence.
type Linear struct {
	rate int
}

// NewLinear creates a linear mixer. rate is only the format reported for an
// empty combine; actual output follows the inputs' shared rate.
func NewLinear(rate int) *Linear {
	return &Linear{rate: rate}
}

func (m *Linear) Combine(inputs []Input) (sound.Sound, error) {
	if len(inputs) == 0 {
		return sound.Silence(0, m.rate, sound.Stereo), nil
	}

	rate := inputs[0].Sound.SampleRate()
	frames := 0
	layout := sound.Mono
	for i, in := range inputs {
		if in.Sound.SampleRate() != rate {
			return sound.Sound{}, fmt.Errorf("%w: input %d is %dHz, input 0 is %dHz",
				sound.ErrFormatMismatch, i, in.Sound.SampleRate(), rate)
		}
		if in.Sound.Layout() == sound.Stereo || in.Pan != 0 {
			layout = sound.Stereo
		}
		if n := in.Sound.Frames(); n > frames {
			frames = n
		}
	}

	if layout == sound.Mono {
		out := make([]float32, frames)
		for _, in := range inputs {
			g := float32(in.Gain)
			for f := 0; f < in.Sound.Frames(); f++ {
				out[f] += in.Sound.Sample(f, 0) * g
			}
		}
		clamp(out)
		return sound.New(out, rate, sound.Mono)
	}

	out := make([]float32, frames*2)
	for _, in := range inputs {
		lw, rw := panWeights(in.Pan)
		lw *= float32(in.Gain)
		rw *= float32(in.Gain)
		n := in.Sound.Frames()
		switch in.Sound.Layout() {
		case sound.Mono:
			for f := 0; f < n; f++ {
				s := in.Sound.Sample(f, 0)
				out[f*2] += s * lw
				out[f*2+1] += s * rw
			}
		case sound.Stereo:
			for f := 0; f < n; f++ {
				out[f*2] += in.Sound.Sample(f, 0) * lw
				out[f*2+1] += in.Sound.Sample(f, 1) * rw
			}
		}
	}
	clamp(out)
	return sound.New(out, rate, sound.Stereo)
}

// panWeights maps pan to per-side weights with a linear law: center keeps
// both sides at unity so that a single centered unity-gain input passes
// through sample-equal.
func panWeights(pan float64) (left, right float32) {
	if pan < -1 {
		pan = -1
	}
	if pan > 1 {
		pan = 1
	}
	l, r := 1.0, 1.0
	if pan > 0 {
		l = 1.0 - pan
	}
	if pan < 0 {
		r = 1.0 + pan
	}
	return float32(l), float32(r)
}

func clamp(samples []float32) {
	for i, s := range samples {
		if s > 1 {
			samples[i] = 1
		} else if s < -1 {
			samples[i] = -1
		}
	}
}
