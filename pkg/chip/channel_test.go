// ABOUTME: Tests for the voice channel state machine
// ABOUTME: Covers binding, advancing, looping, stopping and drain behavior
package chip

import (
	"errors"
	"testing"

	"github.com/mleml/mleml-go/pkg/resource"
	"github.com/mleml/mleml-go/pkg/sound"
)

// rampResource produces a mono ramp 1..n so tests can check positions.
type rampResource struct {
	frames int
	rate   int
}

func (rampResource) Name() string { return "ramp" }

func (r rampResource) Produce(resource.Config) (sound.Sound, error) {
	data := make([]float32, r.frames)
	for i := range data {
		data[i] = float32(i+1) / float32(r.frames)
	}
	return sound.New(data, r.rate, sound.Mono)
}

// failingResource always fails to produce.
type failingResource struct{}

func (failingResource) Name() string { return "failing" }

func (failingResource) Produce(resource.Config) (sound.Sound, error) {
	return sound.Sound{}, &resource.SynthesisError{Resource: "failing", Err: errors.New("boom")}
}

func TestAdvanceUnboundFails(t *testing.T) {
	v := NewVoice(48000, sound.Mono)
	if _, err := v.Advance(10); !errors.Is(err, ErrNotBound) {
		t.Errorf("expected ErrNotBound, got %v", err)
	}
	if v.State() != Idle {
		t.Errorf("expected Idle, got %v", v.State())
	}
}

func TestBindTransitionsToPlaying(t *testing.T) {
	v := NewVoice(48000, sound.Mono)
	v.Bind(rampResource{frames: 4, rate: 48000}, nil, nil)
	if v.State() != Playing {
		t.Errorf("expected Playing, got %v", v.State())
	}

	// Binding nil detaches back to Idle.
	v.Bind(nil, nil, nil)
	if v.State() != Idle {
		t.Errorf("expected Idle after detach, got %v", v.State())
	}
}

func TestAdvanceWalksTheSource(t *testing.T) {
	v := NewVoice(48000, sound.Mono)
	v.Bind(rampResource{frames: 4, rate: 48000}, nil, nil)

	first, err := v.Advance(2)
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if first.Frames() != 2 || first.Sample(0, 0) != 0.25 {
		t.Errorf("unexpected first chunk: %v", first.Samples())
	}
	if v.State() != Playing {
		t.Errorf("expected Playing mid-source, got %v", v.State())
	}

	second, err := v.Advance(2)
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if second.Frames() != 2 || second.Sample(0, 0) != 0.75 {
		t.Errorf("unexpected second chunk: %v", second.Samples())
	}
	if v.State() != Finished {
		t.Errorf("expected Finished after exhaustion, got %v", v.State())
	}
}

func TestAdvanceAfterFinishedDrainsEmpty(t *testing.T) {
	v := NewVoice(48000, sound.Mono)
	v.Bind(rampResource{frames: 2, rate: 48000}, nil, nil)
	if _, err := v.Advance(5); err != nil {
		t.Fatalf("advance: %v", err)
	}

	// Idempotent drain: no error, zero frames, valid format.
	for i := 0; i < 3; i++ {
		out, err := v.Advance(5)
		if err != nil {
			t.Fatalf("drain %d: %v", i, err)
		}
		if out.Frames() != 0 {
			t.Errorf("drain %d: expected 0 frames, got %d", i, out.Frames())
		}
		if out.SampleRate() != 48000 {
			t.Errorf("drain %d: expected valid format, got %dHz", i, out.SampleRate())
		}
	}
}

func TestShortFinalChunk(t *testing.T) {
	v := NewVoice(48000, sound.Mono)
	v.Bind(rampResource{frames: 3, rate: 48000}, nil, nil)

	out, err := v.Advance(5)
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if out.Frames() != 3 {
		t.Errorf("expected clipped chunk of 3 frames, got %d", out.Frames())
	}
	if v.State() != Finished {
		t.Errorf("expected Finished, got %v", v.State())
	}
}

func TestLoopingWraps(t *testing.T) {
	v := NewVoice(48000, sound.Mono)
	v.Bind(rampResource{frames: 3, rate: 48000}, nil, nil)
	v.SetLoop(true)

	out, err := v.Advance(7)
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if out.Frames() != 7 {
		t.Fatalf("expected 7 frames, got %d", out.Frames())
	}
	want := []float32{1. / 3, 2. / 3, 1, 1. / 3, 2. / 3, 1, 1. / 3}
	for i, w := range want {
		if out.Sample(i, 0) != w {
			t.Errorf("frame %d: got %v, want %v", i, out.Sample(i, 0), w)
		}
	}
	if v.State() != Playing {
		t.Errorf("looping voice should stay Playing, got %v", v.State())
	}
}

func TestStopForcesFinished(t *testing.T) {
	v := NewVoice(48000, sound.Mono)
	v.Bind(rampResource{frames: 10, rate: 48000}, nil, nil)
	v.Stop()
	if v.State() != Finished {
		t.Errorf("expected Finished, got %v", v.State())
	}
	out, err := v.Advance(4)
	if err != nil {
		t.Fatalf("advance after stop: %v", err)
	}
	if out.Frames() != 0 {
		t.Errorf("expected empty output after stop, got %d frames", out.Frames())
	}
}

func TestRenderFailureDoesNotCorruptState(t *testing.T) {
	v := NewVoice(48000, sound.Mono)
	v.Bind(failingResource{}, nil, nil)

	if _, err := v.Advance(4); err == nil {
		t.Fatal("expected render error")
	}
	if v.State() != Playing {
		t.Errorf("failed render should leave the voice Playing, got %v", v.State())
	}

	// Rebinding a working source recovers.
	v.Bind(rampResource{frames: 2, rate: 48000}, nil, nil)
	out, err := v.Advance(2)
	if err != nil {
		t.Fatalf("advance after rebind: %v", err)
	}
	if out.Frames() != 2 {
		t.Errorf("expected 2 frames, got %d", out.Frames())
	}
}

func TestChainAppliesDuringRender(t *testing.T) {
	v := NewVoice(48000, sound.Mono)
	chain := resource.Chain{{Mod: halfMod{}, Config: nil}}
	v.Bind(rampResource{frames: 2, rate: 48000}, nil, chain)

	out, err := v.Advance(2)
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if out.Sample(0, 0) != 0.25 || out.Sample(1, 0) != 0.5 {
		t.Errorf("chain not applied: %v", out.Samples())
	}
}

// halfMod halves every sample regardless of config.
type halfMod struct{}

func (halfMod) Name() string { return "half" }

func (halfMod) Apply(in sound.Sound, _ resource.Config) (sound.Sound, error) {
	src := in.Samples()
	out := make([]float32, len(src))
	for i, s := range src {
		out[i] = s / 2
	}
	return sound.New(out, in.SampleRate(), in.Layout())
}
