// internal/dsp/goertzel.go
package dsp

import (
	"errors"
	"math"
)

var (
	// ErrInvalidBlockSize indicates block size must be positive
	ErrInvalidBlockSize = errors.New("block size must be positive")
	// ErrInvalidSampleRate indicates sample rate must be positive
	ErrInvalidSampleRate = errors.New("sample rate must be positive")
	// ErrInvalidFrequency indicates frequency must be positive and below Nyquist
	ErrInvalidFrequency = errors.New("frequency must be positive and less than Nyquist frequency")
	// ErrInsufficientSamples indicates not enough samples for the configured block size
	ErrInsufficientSamples = errors.New("insufficient samples for block size")
)

// GoertzelConfig holds configuration for the Goertzel algorithm.
type GoertzelConfig struct {
	// TargetFrequency is the frequency to measure in Hz
	TargetFrequency float64
	// SampleRate is the audio sample rate in Hz
	SampleRate float64
	// BlockSize is the number of samples per measurement window
	BlockSize int
}

// Goertzel measures the level of one frequency bin, which is cheaper than a
// full FFT when only a handful of frequencies are of interest.
type Goertzel struct {
	config      GoertzelConfig
	coefficient float64 // 2 * cos(2π * f / fs)
	normalizer  float64 // 2 / blockSize
}

// NewGoertzel creates a new Goertzel detector with the given configuration.
func NewGoertzel(cfg GoertzelConfig) (*Goertzel, error) {
	if cfg.BlockSize <= 0 {
		return nil, ErrInvalidBlockSize
	}
	if cfg.SampleRate <= 0 {
		return nil, ErrInvalidSampleRate
	}
	if cfg.TargetFrequency <= 0 || cfg.TargetFrequency >= cfg.SampleRate/2 {
		return nil, ErrInvalidFrequency
	}

	omega := 2 * math.Pi * cfg.TargetFrequency / cfg.SampleRate
	return &Goertzel{
		config:      cfg,
		coefficient: 2 * math.Cos(omega),
		normalizer:  2 / float64(cfg.BlockSize),
	}, nil
}

// Magnitude returns the normalised magnitude of the target frequency in the
// first BlockSize samples. A full-scale sine at the target gives about 1.0.
func (g *Goertzel) Magnitude(samples []float64) (float64, error) {
	if len(samples) < g.config.BlockSize {
		return 0, ErrInsufficientSamples
	}

	var s0, s1, s2 float64
	coeff := g.coefficient
	for _, x := range samples[:g.config.BlockSize] {
		s0 = x + coeff*s1 - s2
		s2 = s1
		s1 = s0
	}

	power := s1*s1 + s2*s2 - coeff*s1*s2
	if power < 0 {
		power = 0
	}
	return math.Sqrt(power) * g.normalizer, nil
}

// MeanMagnitude averages Magnitude over consecutive whole blocks; a short
// trailing block is ignored.
func (g *Goertzel) MeanMagnitude(samples []float64) float64 {
	bs := g.config.BlockSize
	blocks := len(samples) / bs
	if blocks == 0 {
		return 0
	}
	sum := 0.0
	for b := 0; b < blocks; b++ {
		m, _ := g.Magnitude(samples[b*bs : (b+1)*bs])
		sum += m
	}
	return sum / float64(blocks)
}

// BlockSize returns the configured block size
func (g *Goertzel) BlockSize() int {
	return g.config.BlockSize
}

// FindTone sweeps [minHz, maxHz] in stepHz increments and returns the
// frequency with the highest mean Goertzel magnitude. Blocks are sized so
// one bin spans roughly one step. ok is false when nothing rises above the
// floor, e.g. for silence.
func FindTone(samples []float64, sampleRate, minHz, maxHz, stepHz float64) (freq float64, ok bool) {
	if sampleRate <= 0 || stepHz <= 0 || len(samples) == 0 {
		return 0, false
	}
	maxHz = math.Min(maxHz, sampleRate/2-stepHz)

	blockSize := int(math.Round(sampleRate / stepHz))
	blockSize = min(max(blockSize, 1), len(samples))

	const floor = 1e-9
	best := floor
	for f := minHz; f <= maxHz; f += stepHz {
		g, err := NewGoertzel(GoertzelConfig{TargetFrequency: f, SampleRate: sampleRate, BlockSize: blockSize})
		if err != nil {
			continue
		}
		if m := g.MeanMagnitude(samples); m > best {
			best, freq, ok = m, f, true
		}
	}
	return freq, ok
}
