// internal/audio/waveform.go
// Package audio holds the single-channel waveform model and its file and
// device sources.
package audio

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrEmptyInput indicates a waveform with no samples
	ErrEmptyInput = errors.New("waveform has no samples")
	// ErrUnsupportedFormat indicates a bad sample rate or malformed channel layout
	ErrUnsupportedFormat = errors.New("unsupported audio format")
)

// DownmixMode selects how interleaved multi-channel data becomes one channel.
type DownmixMode int

const (
	// DownmixFirst keeps the first channel and discards the rest
	DownmixFirst DownmixMode = iota
	// DownmixAverage takes the mean of all channels
	DownmixAverage
)

// ParseDownmixMode maps a config value to a DownmixMode.
func ParseDownmixMode(s string) (DownmixMode, error) {
	switch s {
	case "first", "":
		return DownmixFirst, nil
	case "average":
		return DownmixAverage, nil
	}
	return DownmixFirst, fmt.Errorf("unknown downmix mode %q", s)
}

func (m DownmixMode) String() string {
	if m == DownmixAverage {
		return "average"
	}
	return "first"
}

// Waveform is a mono recording. Consumers treat Samples as read-only.
type Waveform struct {
	Samples    []float64
	SampleRate int
}

// NewWaveform validates and wraps mono samples.
func NewWaveform(samples []float64, sampleRate int) (Waveform, error) {
	w := Waveform{Samples: samples, SampleRate: sampleRate}
	if err := w.Validate(); err != nil {
		return Waveform{}, err
	}
	return w, nil
}

// FromInterleaved builds a mono waveform from interleaved frames.
func FromInterleaved(data []float64, channels, sampleRate int, mode DownmixMode) (Waveform, error) {
	mono, err := Downmix(data, channels, mode)
	if err != nil {
		return Waveform{}, err
	}
	return NewWaveform(mono, sampleRate)
}

// Validate reports ErrUnsupportedFormat for a non-positive sample rate and
// ErrEmptyInput when there are no samples.
func (w Waveform) Validate() error {
	if w.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate %d", ErrUnsupportedFormat, w.SampleRate)
	}
	if len(w.Samples) == 0 {
		return ErrEmptyInput
	}
	return nil
}

// Duration returns the playing time of the waveform.
func (w Waveform) Duration() time.Duration {
	if w.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(len(w.Samples)) / float64(w.SampleRate) * float64(time.Second))
}

// Downmix reduces interleaved frames to a single channel.
func Downmix(data []float64, channels int, mode DownmixMode) ([]float64, error) {
	if channels < 1 {
		return nil, fmt.Errorf("%w: %d channels", ErrUnsupportedFormat, channels)
	}
	if len(data)%channels != 0 {
		return nil, fmt.Errorf("%w: %d samples is not a whole number of %d-channel frames",
			ErrUnsupportedFormat, len(data), channels)
	}

	frames := len(data) / channels
	mono := make([]float64, frames)
	if channels == 1 {
		copy(mono, data)
		return mono, nil
	}

	for i := 0; i < frames; i++ {
		frame := data[i*channels : (i+1)*channels]
		if mode == DownmixAverage {
			sum := 0.0
			for _, v := range frame {
				sum += v
			}
			mono[i] = sum / float64(channels)
		} else {
			mono[i] = frame[0]
		}
	}
	return mono, nil
}
