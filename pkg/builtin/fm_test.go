// ABOUTME: Tests for the four-operator FM resource
// ABOUTME: Output length, audibility and operator config validation
package builtin

import (
	"errors"
	"testing"

	"github.com/mleml/mleml-go/pkg/resource"
	"github.com/mleml/mleml-go/pkg/sound"
)

func fmOperator() map[string]any {
	return map[string]any{
		"attack": 0, "decay": 0, "sustain": 400, "release": 64,
		"sustain_level": 127, "total_level": 127,
		"multiplier": 1, "detune": 0,
	}
}

func fmConfig() resource.Config {
	return resource.Config{
		"frequency": 220.0,
		"seconds":   0.1,
		"operators": []any{fmOperator(), fmOperator(), fmOperator(), fmOperator()},
	}
}

func TestFMOutputFormat(t *testing.T) {
	cfg := fmConfig()
	cfg["decay_seconds"] = 0.05
	cfg["sample_rate"] = 8000

	out, err := FM{}.Produce(cfg)
	if err != nil {
		t.Fatalf("produce: %v", err)
	}
	if out.Layout() != sound.Stereo {
		t.Errorf("expected stereo, got %v", out.Layout())
	}
	if out.SampleRate() != 8000 {
		t.Errorf("expected rate 8000, got %d", out.SampleRate())
	}
	// 0.1s note plus 0.05s decay tail.
	if out.Frames() != 1200 {
		t.Errorf("expected 1200 frames, got %d", out.Frames())
	}
	for f := 0; f < out.Frames(); f++ {
		if out.Sample(f, 0) != out.Sample(f, 1) {
			t.Fatalf("frame %d: channels differ", f)
		}
	}
}

func TestFMProducesSignal(t *testing.T) {
	for alg := 0; alg <= 7; alg++ {
		cfg := fmConfig()
		cfg["algorithm"] = alg
		out, err := FM{}.Produce(cfg)
		if err != nil {
			t.Fatalf("algorithm %d: %v", alg, err)
		}
		var peak float32
		for _, s := range out.Samples() {
			if s > 1 || s < -1 {
				t.Fatalf("algorithm %d: sample out of range: %v", alg, s)
			}
			if s > peak {
				peak = s
			}
		}
		if peak == 0 {
			t.Errorf("algorithm %d: output is silent", alg)
		}
	}
}

func TestFMQuantizedSteps(t *testing.T) {
	out, err := FM{}.Produce(fmConfig())
	if err != nil {
		t.Fatalf("produce: %v", err)
	}
	// Every sample sits on a 1/512 grid.
	for i, s := range out.Samples() {
		scaled := s * 512
		if scaled != float32(int(scaled)) {
			t.Fatalf("sample %d: %v is off the quantization grid", i, s)
		}
	}
}

func TestFMFanOutHalvesCarrierFrequency(t *testing.T) {
	// Silence everything but one carrier: with the fan-out modulator muted
	// the carrier's frequency factor bottoms out at one half, so algorithm
	// 6 must oscillate at half the rate of the unmodulated algorithm 7.
	build := func(alg int) resource.Config {
		silent := fmOperator()
		silent["total_level"] = 0
		carrier := fmOperator()
		rest1 := fmOperator()
		rest1["total_level"] = 0
		rest2 := fmOperator()
		rest2["total_level"] = 0
		return resource.Config{
			"frequency": 220.0,
			"seconds":   0.1,
			"algorithm": alg,
			"operators": []any{silent, carrier, rest1, rest2},
		}
	}

	halved, err := FM{}.Produce(build(6))
	if err != nil {
		t.Fatalf("algorithm 6: %v", err)
	}
	full, err := FM{}.Produce(build(7))
	if err != nil {
		t.Fatalf("algorithm 7: %v", err)
	}

	h := zeroCrossings(halved)
	f := zeroCrossings(full)
	if h == 0 || f == 0 {
		t.Fatalf("expected oscillation, got %d and %d crossings", h, f)
	}
	ratio := float64(f) / float64(h)
	if ratio < 1.8 || ratio > 2.2 {
		t.Errorf("expected algorithm 7 to cross twice as often, got %d vs %d", f, h)
	}
}

func zeroCrossings(s sound.Sound) int {
	count := 0
	prev := 0
	for f := 0; f < s.Frames(); f++ {
		v := s.Sample(f, 0)
		sign := 0
		if v > 0 {
			sign = 1
		} else if v < 0 {
			sign = -1
		}
		if sign != 0 && prev != 0 && sign != prev {
			count++
		}
		if sign != 0 {
			prev = sign
		}
	}
	return count
}

func TestFMConfigErrors(t *testing.T) {
	badAlg := fmConfig()
	badAlg["algorithm"] = 8

	badCount := fmConfig()
	badCount["operators"] = []any{fmOperator()}

	badRange := fmConfig()
	op := fmOperator()
	op["total_level"] = 128
	badRange["operators"] = []any{op, fmOperator(), fmOperator(), fmOperator()}

	missingOps := resource.Config{"frequency": 220.0, "seconds": 0.1}

	negative := fmConfig()
	negative["seconds"] = -1.0

	for name, cfg := range map[string]resource.Config{
		"algorithm out of range": badAlg,
		"wrong operator count":   badCount,
		"operator field range":   badRange,
		"missing operators":      missingOps,
		"negative length":        negative,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := FM{}.Produce(cfg)
			var ce *resource.ConfigError
			if !errors.As(err, &ce) {
				t.Fatalf("expected *ConfigError, got %v", err)
			}
		})
	}
}
