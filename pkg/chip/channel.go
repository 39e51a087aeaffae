// ABOUTME: Channel capability sequencing one voice over time
// ABOUTME: Idle/Playing/Finished state machine with optional looping
package chip

import (
	"errors"
	"fmt"

	"github.com/mleml/mleml-go/pkg/resource"
	"github.com/mleml/mleml-go/pkg/sound"
)

// ErrNotBound reports a Channel advanced before anything was bound to it.
var ErrNotBound = errors.New("channel has nothing bound")

// State of a Channel's playback lifecycle.
type State int

const (
	Idle State = iota
	Playing
	Finished
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Playing:
		return "playing"
	case Finished:
		return "finished"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Channel sequences one bound Resource and its Mod chain over time, holding
// per-voice playback position. A Channel is mutated only by its own
// operations; callers sharing one across goroutines must serialize access.
type Channel interface {
	// Bind attaches a sound source and transform chain, moving the channel
	// to Playing. Binding a nil Resource detaches the channel back to Idle.
	Bind(r resource.Resource, cfg resource.Config, chain resource.Chain)

	// SetLoop makes playback wrap instead of finishing when the source is
	// exhausted.
	SetLoop(loop bool)

	// Advance produces the next frames of output and moves the playback
	// position. After Finished it returns a zero-length Sound and no error.
	Advance(frames int) (sound.Sound, error)

	// Stop forces the channel to Finished regardless of remaining data.
	Stop()

	// State reports the current lifecycle state.
	State() State
}

// Voice is the default Channel implementation. It renders the bound
// Resource through its chain once, on first Advance, then serves successive
// windows of the rendered Sound.
type Voice struct {
	res   resource.Resource
	cfg   resource.Config
	chain resource.Chain

	rendered sound.Sound
	haveData bool
	pos      int
	loop     bool
	state    State

	// Format for empty output before/after the voice has data.
	rate   int
	layout sound.Layout
}

// NewVoice creates an idle channel. rate and layout define the format of
// output produced while nothing is rendered.
func NewVoice(rate int, layout sound.Layout) *Voice {
	return &Voice{rate: rate, layout: layout, state: Idle}
}

func (v *Voice) Bind(r resource.Resource, cfg resource.Config, chain resource.Chain) {
	v.res = r
	v.cfg = cfg
	v.chain = chain
	v.rendered = sound.Sound{}
	v.haveData = false
	v.pos = 0
	if r == nil {
		v.state = Idle
		return
	}
	v.state = Playing
}

func (v *Voice) SetLoop(loop bool) { v.loop = loop }

func (v *Voice) State() State { return v.state }

func (v *Voice) Stop() { v.state = Finished }

// render pulls the full Sound out of the bound resource and chain. Failure
// leaves the voice Playing and unrendered so a later Advance can retry once
// the cause is removed.
func (v *Voice) render() error {
	out, err := v.res.Produce(v.cfg)
	if err != nil {
		return err
	}
	out, err = v.chain.Apply(out)
	if err != nil {
		return err
	}
	v.rendered = out
	v.haveData = true
	v.rate = out.SampleRate()
	v.layout = out.Layout()
	return nil
}

func (v *Voice) Advance(frames int) (sound.Sound, error) {
	switch v.state {
	case Idle:
		return sound.Sound{}, ErrNotBound
	case Finished:
		return sound.Silence(0, v.rate, v.layout), nil
	}

	if !v.haveData {
		if err := v.render(); err != nil {
			return sound.Sound{}, err
		}
	}

	total := v.rendered.Frames()
	if total == 0 {
		v.state = Finished
		return sound.Silence(0, v.rate, v.layout), nil
	}

	if !v.loop {
		out := v.rendered.Window(v.pos, frames)
		v.pos += out.Frames()
		if v.pos >= total {
			v.state = Finished
		}
		return out, nil
	}

	// Looping: stitch windows together, wrapping position.
	ch := v.layout.Channels()
	buf := make([]float32, 0, frames*ch)
	remaining := frames
	for remaining > 0 {
		w := v.rendered.Window(v.pos, remaining)
		buf = append(buf, w.Samples()...)
		remaining -= w.Frames()
		v.pos += w.Frames()
		if v.pos >= total {
			v.pos = 0
		}
	}
	out, err := sound.New(buf, v.rate, v.layout)
	if err != nil {
		return sound.Sound{}, err
	}
	return out, nil
}
