// ABOUTME: Abstract note model and pitch derivation
// ABOUTME: Converts tick/semitone notes into seconds/Hz ready notes
package resource

import "math"

// Platform limits shared by channels and the hosts that drive them.
const (
	// CCCC is the frequency of octocontra C (C-1) in Hz. All other pitches
	// are derived from it; this value makes A above middle C equal 440Hz.
	CCCC = 8.175799

	MaxTick     = 256
	MaxVolume   = 100
	MaxTempo    = 256.0
	MaxChannels = 256
)

// Note is a note in abstract, platform-defined units: length in ticks and
// pitch in semitones above C of the current octave.
type Note struct {
	// Len is the note length in ticks. Zero means the channel's default
	// length applies.
	Len int

	// Pitch in semitones relative to C. Ignored when Rest is set.
	Pitch int

	// Rest marks a note that produces silence.
	Rest bool

	// Cents is a pitch offset of 1/100th of a semitone.
	Cents int

	// Natural indicates the pitch should not be affected by the key
	// signature.
	Natural bool

	// Velocity of the note, MIDI-like 0-255. Zero means default (128).
	Velocity int
}

// ReadyNote is a note resolved to SI units: seconds and Hz.
type ReadyNote struct {
	// Len is the note length in seconds.
	Len float64

	// DecayTime is how long the sound keeps decaying after release,
	// in seconds.
	DecayTime float64

	// Pitch in Hz. Ignored when Rest is set.
	Pitch float64

	// Rest marks silence.
	Rest bool

	// Velocity of the note, 0-255.
	Velocity int
}

// Ready resolves the note against channel settings: tickLen is the length
// of one tick in seconds, octave counts octaves above C-1, defaultLen is
// the tick count used when the note has none, and postRelease is the decay
// tail in ticks.
func (n Note) Ready(tickLen float64, octave, defaultLen, postRelease int) ReadyNote {
	ticks := n.Len
	if ticks == 0 {
		ticks = defaultLen
	}
	out := ReadyNote{
		Len:       float64(ticks) * tickLen,
		DecayTime: float64(postRelease) * tickLen,
		Rest:      n.Rest,
		Velocity:  n.Velocity,
	}
	if out.Velocity == 0 {
		out.Velocity = 128
	}
	if !n.Rest {
		out.Pitch = Pitch(n.Pitch, n.Cents, octave)
	}
	return out
}

// Pitch converts semitones above C plus a cent offset at the given octave
// (octaves above C-1) into Hz.
func Pitch(semitones, cents, octave int) float64 {
	exp := 1.0 + float64(semitones)/12.0 + float64(cents)/1200.0 + float64(octave)
	return CCCC * math.Pow(2, exp)
}

// NoteMod transforms notes before synthesis, the way a Mod transforms
// sounds after it. Implementations must not retain or modify the input.
type NoteMod interface {
	Name() string
	ApplyNote(n Note, cfg Config) (Note, error)
}
