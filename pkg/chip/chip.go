// ABOUTME: Chip capability bundling voices and a mixer as one device
// ABOUTME: Sequential flush with per-voice levels and all-or-nothing errors
package chip

import (
	"errors"
	"fmt"

	"github.com/mleml/mleml-go/pkg/sound"
)

// ErrOutOfRange reports a voice index at or beyond the chip's voice count.
var ErrOutOfRange = errors.New("voice index out of range")

// ChipError wraps a per-channel failure during Flush, tagged with the index
// of the failing voice. No partial output accompanies it.
type ChipError struct {
	Channel int
	Err     error
}

func (e *ChipError) Error() string {
	return fmt.Sprintf("chip: channel %d: %v", e.Channel, e.Err)
}

func (e *ChipError) Unwrap() error { return e.Err }

// Chip models a multi-voice sound device: a fixed set of Channels behind
// one Mixer. Every operation is expressible through this interface alone;
// callers never need the concrete type or its voice count at compile time.
//
// A Chip is not internally synchronized. Within one Flush the voices are
// advanced sequentially in index order, so no locking is needed as long as
// callers keep a single-writer discipline per Chip instance.
type Chip interface {
	// Voices reports the number of channels on the device.
	Voices() int

	// Channel returns the voice at index for binding and sequencing.
	// Fails with ErrOutOfRange when index >= Voices().
	Channel(index int) (Channel, error)

	// SetLevel adjusts one voice's mixing gain and pan.
	SetLevel(index int, gain, pan float64) error

	// Flush advances every voice by frames, combines the results through
	// the mixer and returns the chunk. Consecutive calls never replay
	// frames. If any voice fails the whole call fails with *ChipError and
	// no output.
	Flush(frames int) (sound.Sound, error)
}

type level struct {
	gain float64
	pan  float64
}

// Device is the default Chip implementation.
type Device struct {
	channels []Channel
	mixer    Mixer
	levels   []level
}

// NewDevice bundles channels and a mixer into a Chip. Every voice starts at
// unity gain, centered.
func NewDevice(mixer Mixer, channels ...Channel) *Device {
	levels := make([]level, len(channels))
	for i := range levels {
		levels[i] = level{gain: 1}
	}
	return &Device{channels: channels, mixer: mixer, levels: levels}
}

func (d *Device) Voices() int { return len(d.channels) }

func (d *Device) Channel(index int) (Channel, error) {
	if index < 0 || index >= len(d.channels) {
		return nil, fmt.Errorf("%w: %d of %d", ErrOutOfRange, index, len(d.channels))
	}
	return d.channels[index], nil
}

func (d *Device) SetLevel(index int, gain, pan float64) error {
	if index < 0 || index >= len(d.channels) {
		return fmt.Errorf("%w: %d of %d", ErrOutOfRange, index, len(d.channels))
	}
	d.levels[index] = level{gain: gain, pan: pan}
	return nil
}

func (d *Device) Flush(frames int) (sound.Sound, error) {
	inputs := make([]Input, 0, len(d.channels))
	for i, ch := range d.channels {
		out, err := ch.Advance(frames)
		if err != nil {
			return sound.Sound{}, &ChipError{Channel: i, Err: err}
		}
		if out.Frames() == 0 {
			continue
		}
		inputs = append(inputs, Input{
			Sound: out,
			Gain:  d.levels[i].gain,
			Pan:   d.levels[i].pan,
		})
	}
	mixed, err := d.mixer.Combine(inputs)
	if err != nil {
		return sound.Sound{}, &ChipError{Channel: -1, Err: err}
	}
	return mixed, nil
}
