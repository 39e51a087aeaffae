// ABOUTME: Four-operator FM synthesis resource
// ABOUTME: YM-style operator algorithms with exponential envelope stages
package builtin

import (
	"fmt"
	"math"

	"github.com/mleml/mleml-go/pkg/resource"
	"github.com/mleml/mleml-go/pkg/sound"
)

// FM is a four-operator frequency-modulation synthesizer. The operator
// chaining algorithms 0-7 follow the YM2608 datasheet.
//
// Config fields: "frequency" (Hz, required), "seconds" (required),
// "decay_seconds" (tail after release, default 0), "algorithm" (0-7,
// default 0), "saw" (first operator sawtooth instead of sine, default
// false), "sample_rate" (default 48000), and "operators": an array of
// exactly four objects with fields "attack", "decay", "sustain", "release"
// (0-511), "sustain_level", "total_level" (0-127), "multiplier" (0-31,
// 0 meaning one half) and "detune" (-511 to 511, 1/32 cent units).
type FM struct{}

func (FM) Name() string { return "fm" }

type opParams struct {
	ar, dr, sr, rr int
	sl, tl         int
	ml             int
	dt             int
}

func (FM) Produce(cfg resource.Config) (sound.Sound, error) {
	freq, err := cfg.Float("frequency")
	if err != nil {
		return sound.Sound{}, err
	}
	secs, err := cfg.Float("seconds")
	if err != nil {
		return sound.Sound{}, err
	}
	decaySecs, err := cfg.FloatOr("decay_seconds", 0)
	if err != nil {
		return sound.Sound{}, err
	}
	rate, err := cfg.IntOr("sample_rate", DefaultSampleRate)
	if err != nil {
		return sound.Sound{}, err
	}
	alg, err := cfg.IntOr("algorithm", 0)
	if err != nil {
		return sound.Sound{}, err
	}
	if alg < 0 || alg > 7 {
		return sound.Sound{}, &resource.ConfigError{Field: "algorithm",
			Reason: fmt.Sprintf("%d not in 0-7", alg)}
	}
	saw, err := cfg.BoolOr("saw", false)
	if err != nil {
		return sound.Sound{}, err
	}
	ops, err := operatorParams(cfg)
	if err != nil {
		return sound.Sound{}, err
	}
	if freq <= 0 {
		return sound.Sound{}, &resource.ConfigError{Field: "frequency",
			Reason: fmt.Sprintf("%v Hz is not positive", freq)}
	}
	if secs < 0 || decaySecs < 0 {
		return sound.Sound{}, &resource.ConfigError{Field: "seconds", Reason: "negative length"}
	}

	noteFrames := int(secs * float64(rate))
	total := int((secs + decaySecs) * float64(rate))

	render := func(i int, isSaw bool, mod []float64) []float64 {
		return renderOperator(ops[i], freq, noteFrames, total, rate, isSaw, mod)
	}

	var out []float64
	switch alg {
	case 0:
		// Operators chained one after another.
		op0 := render(0, saw, nil)
		op1 := render(1, false, op0)
		op2 := render(2, false, op1)
		out = render(3, false, op2)
	case 1:
		// Operators 0 and 1 both modulate 2, which goes into 3.
		op0 := render(0, saw, nil)
		op1 := render(1, false, nil)
		op2 := render(2, false, sum(op0, op1))
		out = render(3, false, op2)
	case 2:
		// Operator 1 modulates 2; 0 and 2 go into 3.
		op0 := render(0, saw, nil)
		op1 := render(1, false, nil)
		op2 := render(2, false, op1)
		out = render(3, false, sum(op0, op2))
	case 3:
		// Operator 0 modulates 1; 1 and 2 go into 3.
		op0 := render(0, saw, nil)
		op1 := render(1, false, op0)
		op2 := render(2, false, nil)
		out = render(3, false, sum(op1, op2))
	case 4:
		// Two lines: 0 into 1, 2 into 3.
		op0 := render(0, saw, nil)
		op1 := render(1, false, op0)
		op2 := render(2, false, nil)
		op3 := render(3, false, op2)
		out = mix(op1, op3)
	case 5:
		// 0 fans out into 1, 2 and 3.
		op0 := render(0, saw, nil)
		op1 := render(1, false, half(op0))
		op2 := render(2, false, half(op0))
		op3 := render(3, false, half(op0))
		out = mix(op1, op2, op3)
	case 6:
		// 0 goes into 1; 2 and 3 run free.
		op0 := render(0, saw, nil)
		op1 := render(1, false, half(op0))
		op2 := render(2, false, nil)
		op3 := render(3, false, nil)
		out = mix(op1, op2, op3)
	case 7:
		// No modulation at all.
		op0 := render(0, saw, nil)
		op1 := render(1, false, nil)
		op2 := render(2, false, nil)
		op3 := render(3, false, nil)
		out = mix(op0, op1, op2, op3)
	}

	samples := make([]float32, total*2)
	for i, v := range out {
		q := quantize512(v)
		samples[i*2] = q
		samples[i*2+1] = q
	}
	return sound.New(samples, rate, sound.Stereo)
}

// renderOperator produces one operator's output: an enveloped wave whose
// instantaneous frequency follows base * multiplier * detune, scaled per
// sample by (1 + mod) when a modulator is present.
func renderOperator(p opParams, base float64, noteFrames, total, rate int, saw bool, mod []float64) []float64 {
	mult := float64(p.ml)
	if p.ml == 0 {
		mult = 0.5
	}
	// Detune is 1/32 of a cent.
	detune := math.Pow(2, float64(p.dt)/3200)
	f := base * mult * detune

	env := envelope(p, noteFrames, total)

	out := make([]float64, total)
	phase := 0.0
	for i := 0; i < total; i++ {
		step := f / float64(rate)
		if mod != nil {
			step *= 1 + mod[i]
		}
		phase += step
		var v float64
		if saw {
			v = 2*(phase-math.Floor(phase)) - 1
		} else {
			v = math.Sin(2 * math.Pi * phase)
		}
		out[i] = v * env[i]
	}
	return out
}

// envelope computes the per-frame amplitude. Stage lengths are exponential
// in the rate parameters; release level depends on where in the envelope
// the note ends.
func envelope(p opParams, noteFrames, total int) []float64 {
	attack := math.Pow(2, float64(p.ar)/16)
	decay := math.Pow(2, float64(p.dr)/16)
	sustain := math.Pow(2, float64(p.sr)/16)
	release := math.Pow(2, float64(p.rr)/16)

	sustainLevel := float64(p.sl) / 127
	sustainMul := float64(127-p.sl) / 127
	totalLevel := float64(p.tl) / 127

	var releaseLevel float64
	switch n := float64(noteFrames); {
	case n <= attack:
		releaseLevel = n / attack
	case n <= attack+decay:
		releaseLevel = (n - attack) / decay * sustainMul
	default:
		releaseLevel = sustainLevel
	}

	env := make([]float64, total)
	for i := range env {
		t := float64(i)
		var v float64
		switch {
		case t < attack:
			v = t / attack
		case t < attack+decay:
			v = 1 - (t-attack)/decay*sustainMul
		case t < attack+decay+sustain:
			v = sustainLevel
		case t < attack+decay+sustain+release:
			v = (1 - (t-attack-decay-sustain)/release) * releaseLevel
		default:
			v = 0
		}
		env[i] = v * totalLevel
	}
	return env
}

func operatorParams(cfg resource.Config) ([4]opParams, error) {
	var ops [4]opParams
	list, err := cfg.List("operators")
	if err != nil {
		return ops, err
	}
	if len(list) != 4 {
		return ops, &resource.ConfigError{Field: "operators",
			Reason: fmt.Sprintf("expected 4 operators, got %d", len(list))}
	}
	for i, raw := range list {
		m, ok := raw.(map[string]any)
		if !ok {
			return ops, &resource.ConfigError{Field: "operators",
				Reason: fmt.Sprintf("operator %d is not an object", i)}
		}
		oc := resource.Config(m)
		if ops[i].ar, err = intInRange(oc, "attack", 0, 511); err != nil {
			return ops, err
		}
		if ops[i].dr, err = intInRange(oc, "decay", 0, 511); err != nil {
			return ops, err
		}
		if ops[i].sr, err = intInRange(oc, "sustain", 0, 511); err != nil {
			return ops, err
		}
		if ops[i].rr, err = intInRange(oc, "release", 0, 511); err != nil {
			return ops, err
		}
		if ops[i].sl, err = intInRange(oc, "sustain_level", 0, 127); err != nil {
			return ops, err
		}
		if ops[i].tl, err = intInRange(oc, "total_level", 0, 127); err != nil {
			return ops, err
		}
		if ops[i].ml, err = intInRange(oc, "multiplier", 0, 31); err != nil {
			return ops, err
		}
		if ops[i].dt, err = intInRange(oc, "detune", -511, 511); err != nil {
			return ops, err
		}
	}
	return ops, nil
}

func intInRange(cfg resource.Config, key string, lo, hi int) (int, error) {
	v, err := cfg.Int(key)
	if err != nil {
		return 0, err
	}
	if v < lo || v > hi {
		return 0, &resource.ConfigError{Field: key,
			Reason: fmt.Sprintf("value %d is outside of range %d - %d", v, lo, hi)}
	}
	return v, nil
}

func sum(a, b []float64) []float64 {
	out := make([]float64, len(a))
	for i := range out {
		out[i] = a[i] + b[i]
	}
	return out
}

// half rescales a fan-out modulator so the carrier's frequency factor is
// 0.5 + 0.5*mod: half the base frequency at silence, swinging up to the
// base frequency at full modulation.
func half(a []float64) []float64 {
	out := make([]float64, len(a))
	for i := range out {
		out[i] = a[i]*0.5 - 0.5
	}
	return out
}

// mix averages parallel carrier lines.
func mix(lines ...[]float64) []float64 {
	out := make([]float64, len(lines[0]))
	scale := 1 / float64(len(lines))
	for _, line := range lines {
		for i := range out {
			out[i] += line[i] * scale
		}
	}
	return out
}

// quantize512 crushes a sample to signed 8-bit steps of 1/512, the chip-ish
// grit the synth is meant to have.
func quantize512(v float64) float32 {
	q := v * 512
	if q > 127 {
		q = 127
	} else if q < -128 {
		q = -128
	}
	return float32(math.Trunc(q)) / 512
}
