// ABOUTME: WAV file writing for rendered Sounds
// ABOUTME: Converts float32 frames to 16-bit PCM via go-audio
package wavio

import (
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/mleml/mleml-go/pkg/sound"
)

// Write stores a Sound as a 16-bit PCM WAV file.
func Write(path string, s sound.Sound) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	channels := s.Layout().Channels()
	enc := wav.NewEncoder(f, s.SampleRate(), 16, channels, 1)

	src := s.Samples()
	data := make([]int, len(src))
	for i, v := range src {
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}
		data[i] = int(v * 32767)
	}

	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: channels,
			SampleRate:  s.SampleRate(),
		},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("failed to write WAV data: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finalize WAV: %w", err)
	}
	return nil
}
