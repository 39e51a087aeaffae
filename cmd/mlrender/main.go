// ABOUTME: Entry point for offline composition rendering
// ABOUTME: Parses CLI flags, builds the pipeline and writes a WAV file
package main

import (
	"flag"
	"log"
	"os"

	"github.com/mleml/mleml-go/internal/wavio"
	"github.com/mleml/mleml-go/pkg/builtin"
	"github.com/mleml/mleml-go/pkg/pipeline"
	"github.com/mleml/mleml-go/pkg/sound"
)

var (
	inPath  = flag.String("in", "", "Composition description JSON (required)")
	outPath = flag.String("out", "out.wav", "Output WAV path")
	seconds = flag.Float64("seconds", 0, "Maximum render length; 0 renders until all voices finish")
	chunk   = flag.Int("chunk", 4096, "Frames per flush")
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
	log.Printf("Built composition: %d voices at %dHz", comp.Chip.Voices(), desc.Mixer.SampleRate)

	maxFrames := 0
	if *seconds > 0 {
		maxFrames = int(*seconds * float64(desc.Mixer.SampleRate))
	}

	var out sound.Sound
	rendered := 0
	for {
		n := *chunk
		if maxFrames > 0 && rendered+n > maxFrames {
			n = maxFrames - rendered
		}
		if n == 0 {
			break
		}
		part, err := comp.Chip.Flush(n)
		if err != nil {
			log.Fatalf("error rendering: %v", err)
		}
		if part.Frames() == 0 {
			break
		}
		if rendered == 0 {
			out = part
		} else if out, err = sound.Concat(out, part); err != nil {
			log.Fatalf("error assembling output: %v", err)
		}
		rendered += part.Frames()
	}

	if rendered == 0 {
		out = sound.Silence(0, desc.Mixer.SampleRate, sound.Stereo)
	}

	log.Printf("Rendered %d frames (%.2fs)", rendered,
		float64(rendered)/float64(desc.Mixer.SampleRate))

	if err := wavio.Write(*outPath, out); err != nil {
		log.Fatalf("error writing %s: %v", *outPath, err)
	}
	log.Printf("Wrote %s", *outPath)
}
