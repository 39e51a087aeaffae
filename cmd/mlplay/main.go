// ABOUTME: Entry point for live composition playback
// ABOUTME: Builds the pipeline and streams flushed chunks through oto
package main

import (
	"encoding/binary"
	"flag"
	"io"
	"log"
	"os"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/mleml/mleml-go/pkg/builtin"
	"github.com/mleml/mleml-go/pkg/chip"
	"github.com/mleml/mleml-go/pkg/pipeline"
	"github.com/mleml/mleml-go/pkg/sound"
)

var (
	inPath = flag.String("in", "", "Composition description JSON (required)")
	chunk  = flag.Int("chunk", 4096, "Frames per flush")
)

func main() {
	flag.Parse()

	if *inPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	data, err := os.ReadFile(*inPath)
	if err != nil {
		log.Fatalf("error reading composition: %v", err)
	}
	desc, err := pipeline.ParseDescription(data)
	if err != nil {
		log.Fatalf("error parsing composition: %v", err)
	}

	reg := pipeline.NewRegistry()
	builtin.Register(reg)

	comp, err := pipeline.Build(reg, desc)
	if err != nil {
		log.Fatalf("error building composition: %v", err)
	}

	op := &oto.NewContextOptions{
		SampleRate:   desc.Mixer.SampleRate,
		ChannelCount: 2,
		Format:       oto.FormatSignedInt16LE,
	}
	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		log.Fatalf("failed to create oto context: %v", err)
	}
	<-readyChan
	log.Printf("Audio output initialized: %dHz, 2 channels", desc.Mixer.SampleRate)

	player := ctx.NewPlayer(&chipReader{chip: comp.Chip, frames: *chunk})
	player.Play()
	for player.IsPlaying() {
		time.Sleep(50 * time.Millisecond)
	}
	if err := player.Close(); err != nil {
		log.Printf("error closing player: %v", err)
	}
}

// chipReader adapts Chip.Flush to the io.Reader the oto player pulls from,
// emitting stereo int16 little-endian PCM.
type chipReader struct {
	chip    chip.Chip
	frames  int
	pending []byte
}

func (r *chipReader) Read(p []byte) (int, error) {
	for len(r.pending) == 0 {
		out, err := r.chip.Flush(r.frames)
		if err != nil {
			return 0, err
		}
		if out.Frames() == 0 {
			return 0, io.EOF
		}
		r.pending = toPCM16(out)
	}
	n := copy(p, r.pending)
	r.pending = r.pending[n:]
	return n, nil
}

func toPCM16(s sound.Sound) []byte {
	frames := s.Frames()
	out := make([]byte, frames*4)
	for f := 0; f < frames; f++ {
		l := s.Sample(f, 0)
		rs := l
		if s.Layout() == sound.Stereo {
			rs = s.Sample(f, 1)
		}
		binary.LittleEndian.PutUint16(out[f*4:], uint16(int16(l*32767)))
		binary.LittleEndian.PutUint16(out[f*4+2:], uint16(int16(rs*32767)))
	}
	return out
}
