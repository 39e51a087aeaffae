// ABOUTME: Immutable PCM buffer type shared by every capability
// ABOUTME: Defines channel layouts, format validation and windowed access
package sound

import (
	"errors"
	"fmt"
)

// Layout describes the channel arrangement of a Sound.
type Layout int

const (
	Mono Layout = iota + 1
	Stereo
)

// Channels returns the number of interleaved channels for the layout.
func (l Layout) Channels() int {
	switch l {
	case Mono:
		return 1
	case Stereo:
		return 2
	default:
		return 0
	}
}

func (l Layout) String() string {
	switch l {
	case Mono:
		return "mono"
	case Stereo:
		return "stereo"
	default:
		return fmt.Sprintf("layout(%d)", int(l))
	}
}

var (
	// ErrInvalidFormat reports a nonsensical sample rate or layout.
	ErrInvalidFormat = errors.New("invalid sound format")

	// ErrFormatMismatch reports incompatible formats between combined sounds.
	ErrFormatMismatch = errors.New("sound format mismatch")
)

// Sound is an immutable slice of interleaved float32 PCM samples in [-1, 1]
// together with its sample rate and channel layout.
//
// A Sound is a value: the sample slice header sits inline in the handle, so
// sharing a Sound shares the single underlying allocation with no extra
// indirection. Once a Sound is published its samples are never mutated;
// every transform produces a new Sound.
type Sound struct {
	samples []float32
	rate    int
	layout  Layout
}

// New wraps interleaved samples as a Sound. The slice is owned by the Sound
// from this point on and must not be written to again by the caller.
func New(samples []float32, rate int, layout Layout) (Sound, error) {
	if rate <= 0 {
		return Sound{}, fmt.Errorf("%w: sample rate %d", ErrInvalidFormat, rate)
	}
	ch := layout.Channels()
	if ch == 0 {
		return Sound{}, fmt.Errorf("%w: unknown layout %d", ErrInvalidFormat, int(layout))
	}
	if len(samples)%ch != 0 {
		return Sound{}, fmt.Errorf("%w: %d samples do not divide into %d channels",
			ErrInvalidFormat, len(samples), ch)
	}
	return Sound{samples: samples, rate: rate, layout: layout}, nil
}

// Silence returns a Sound of the given length containing only zero samples.
// frames may be zero; the result still carries a valid format.
func Silence(frames, rate int, layout Layout) Sound {
	s, err := New(make([]float32, frames*layout.Channels()), rate, layout)
	if err != nil {
		panic(err)
	}
	return s
}

// Frames returns the length of the sound in frames.
func (s Sound) Frames() int {
	ch := s.layout.Channels()
	if ch == 0 {
		return 0
	}
	return len(s.samples) / ch
}

// SampleRate returns the sample rate in Hz.
func (s Sound) SampleRate() int { return s.rate }

// Layout returns the channel layout.
func (s Sound) Layout() Layout { return s.layout }

// Sample returns one sample. frame must be < Frames() and ch < channel count.
func (s Sound) Sample(frame, ch int) float32 {
	return s.samples[frame*s.layout.Channels()+ch]
}

// Samples exposes the interleaved sample data. The slice is shared, not
// copied; callers must treat it as read-only.
func (s Sound) Samples() []float32 {
	return s.samples
}

// Window returns a view of frames [start, start+frames) sharing the same
// storage. Out-of-range requests are clipped to the available data.
func (s Sound) Window(start, frames int) Sound {
	total := s.Frames()
	if start < 0 {
		start = 0
	}
	if start > total {
		start = total
	}
	if start+frames > total {
		frames = total - start
	}
	if frames < 0 {
		frames = 0
	}
	ch := s.layout.Channels()
	return Sound{
		samples: s.samples[start*ch : (start+frames)*ch],
		rate:    s.rate,
		layout:  s.layout,
	}
}

// Concat joins two sounds of identical format into a new Sound.
func Concat(a, b Sound) (Sound, error) {
	if a.rate != b.rate || a.layout != b.layout {
		return Sound{}, fmt.Errorf("%w: %dHz %s vs %dHz %s",
			ErrFormatMismatch, a.rate, a.layout, b.rate, b.layout)
	}
	joined := make([]float32, 0, len(a.samples)+len(b.samples))
	joined = append(joined, a.samples...)
	joined = append(joined, b.samples...)
	return Sound{samples: joined, rate: a.rate, layout: a.layout}, nil
}
