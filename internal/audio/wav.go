// internal/audio/wav.go
package audio

import (
	"fmt"
	"io"
	"math"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	// wavFormatPCM is the WAVE_FORMAT_PCM tag
	wavFormatPCM = 1
	// WriteBitDepth is the sample size used by WriteWAV
	WriteBitDepth = 16
)

// ReadWAV decodes an integer PCM WAV stream into a mono waveform scaled to
// [-1, 1]. Multi-channel files are reduced with mode.
func ReadWAV(r io.ReadSeeker, mode DownmixMode) (Waveform, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return Waveform{}, fmt.Errorf("%w: not a valid WAV file", ErrUnsupportedFormat)
	}
	if dec.WavAudioFormat != wavFormatPCM {
		return Waveform{}, fmt.Errorf("%w: WAV audio format %d, only integer PCM is supported",
			ErrUnsupportedFormat, dec.WavAudioFormat)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return Waveform{}, fmt.Errorf("read wav samples: %w", err)
	}
	if buf == nil || buf.Format == nil {
		return Waveform{}, fmt.Errorf("%w: WAV file has no format chunk", ErrUnsupportedFormat)
	}

	bitDepth := int(dec.BitDepth)
	if bitDepth == 0 {
		bitDepth = buf.SourceBitDepth
	}
	data, err := scalePCM(buf.Data, bitDepth)
	if err != nil {
		return Waveform{}, err
	}

	return FromInterleaved(data, buf.Format.NumChannels, buf.Format.SampleRate, mode)
}

// scalePCM converts integer samples of the given bit depth to [-1, 1].
// 8-bit WAV is unsigned with a 128 midpoint.
func scalePCM(data []int, bitDepth int) ([]float64, error) {
	switch bitDepth {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: %d-bit samples", ErrUnsupportedFormat, bitDepth)
	}

	fullScale := math.Ldexp(1, bitDepth-1)
	out := make([]float64, len(data))
	for i, v := range data {
		if bitDepth == 8 {
			out[i] = float64(v-128) / fullScale
		} else {
			out[i] = float64(v) / fullScale
		}
	}
	return out, nil
}

// WriteWAV encodes w as 16-bit mono PCM. Samples outside [-1, 1] are clipped.
func WriteWAV(ws io.WriteSeeker, w Waveform) error {
	if err := w.Validate(); err != nil {
		return err
	}

	data := make([]int, len(w.Samples))
	for i, s := range w.Samples {
		s = math.Max(-1, math.Min(1, s))
		data[i] = int(math.Round(s * math.MaxInt16))
	}

	enc := wav.NewEncoder(ws, w.SampleRate, WriteBitDepth, 1, wavFormatPCM)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: w.SampleRate},
		Data:           data,
		SourceBitDepth: WriteBitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("write wav samples: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalise wav: %w", err)
	}
	return nil
}
