// ABOUTME: Sample-playback resource decoding audio files into Sounds
// ABOUTME: WAV, MP3, FLAC and Ogg Vorbis support behind one config surface
package builtin

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	mp3 "github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	"github.com/mewkiz/flac"

	"github.com/mleml/mleml-go/pkg/resource"
	"github.com/mleml/mleml-go/pkg/sound"
)

// Sampler loads a Sound from an audio file.
//
// Config fields: "path" (required), "format" ("wav", "mp3", "flac", "ogg";
// default derived from the file extension).
type Sampler struct{}

func (Sampler) Name() string { return "sampler" }

func (Sampler) Produce(cfg resource.Config) (sound.Sound, error) {
	path, err := cfg.String("path")
	if err != nil {
		return sound.Sound{}, err
	}
	format, err := cfg.StringOr("format", strings.TrimPrefix(filepath.Ext(path), "."))
	if err != nil {
		return sound.Sound{}, err
	}

	// Config problems are reported before the filesystem is touched.
	var decode func(*os.File) ([]float32, int, int, error)
	switch strings.ToLower(format) {
	case "wav":
		decode = decodeWAV
	case "mp3":
		decode = func(f *os.File) ([]float32, int, int, error) { return decodeMP3(f) }
	case "flac":
		decode = func(f *os.File) ([]float32, int, int, error) { return decodeFLAC(f) }
	case "ogg":
		decode = func(f *os.File) ([]float32, int, int, error) { return decodeOgg(f) }
	default:
		return sound.Sound{}, &resource.ConfigError{Field: "format",
			Reason: fmt.Sprintf("unsupported format %q (supported: wav, mp3, flac, ogg)", format)}
	}

	f, err := os.Open(path)
	if err != nil {
		return sound.Sound{}, &resource.SynthesisError{Resource: "sampler", Err: err}
	}
	defer f.Close()

	samples, rate, channels, err := decode(f)
	if err != nil {
		return sound.Sound{}, &resource.SynthesisError{Resource: "sampler",
			Err: fmt.Errorf("decode %s: %w", path, err)}
	}

	layout, err := layoutForChannels(channels)
	if err != nil {
		return sound.Sound{}, &resource.SynthesisError{Resource: "sampler", Err: err}
	}
	return sound.New(samples, rate, layout)
}

func layoutForChannels(channels int) (sound.Layout, error) {
	switch channels {
	case 1:
		return sound.Mono, nil
	case 2:
		return sound.Stereo, nil
	default:
		return 0, fmt.Errorf("unsupported channel count %d", channels)
	}
}

func decodeWAV(f *os.File) ([]float32, int, int, error) {
	d := wav.NewDecoder(f)
	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to decode WAV: %w", err)
	}
	scale := float32(int64(1) << (d.BitDepth - 1))
	samples := make([]float32, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = float32(v) / scale
	}
	return samples, buf.Format.SampleRate, buf.Format.NumChannels, nil
}

func decodeMP3(r io.Reader) ([]float32, int, int, error) {
	d, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to decode MP3: %w", err)
	}
	raw, err := io.ReadAll(d)
	if err != nil {
		return nil, 0, 0, err
	}
	// The decoder always outputs stereo int16 little-endian.
	samples := make([]float32, len(raw)/2)
	for i := range samples {
		s := int16(binary.LittleEndian.Uint16(raw[i*2:]))
		samples[i] = float32(s) / 32768
	}
	return samples, d.SampleRate(), 2, nil
}

func decodeFLAC(r io.Reader) ([]float32, int, int, error) {
	stream, err := flac.New(r)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to decode FLAC: %w", err)
	}
	info := stream.Info
	channels := int(info.NChannels)
	scale := float32(int64(1) << (info.BitsPerSample - 1))

	var samples []float32
	for {
		frame, err := stream.ParseNext()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, 0, err
		}
		n := len(frame.Subframes[0].Samples)
		for i := 0; i < n; i++ {
			for ch := 0; ch < channels; ch++ {
				samples = append(samples, float32(frame.Subframes[ch].Samples[i])/scale)
			}
		}
	}
	return samples, int(info.SampleRate), channels, nil
}

func decodeOgg(r io.Reader) ([]float32, int, int, error) {
	data, format, err := oggvorbis.ReadAll(r)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to decode Ogg Vorbis: %w", err)
	}
	return data, format.SampleRate, format.Channels, nil
}
