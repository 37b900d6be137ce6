// internal/dsp/conditioner.go
// Package dsp turns raw tone-keyed audio into a smooth, non-negative
// activity envelope.
package dsp

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/ColonelBlimp/cwtranslate/internal/audio"
)

// Conditioner defaults
const (
	DefaultCenterFrequency = 550.0
	DefaultBandwidth       = 100.0
	DefaultFilterOrder     = 4
	DefaultPadMs           = 50.0
	DefaultSmoothingMs     = 5.0
	DefaultAutoMinHz       = 300.0
	DefaultAutoMaxHz       = 1200.0
	DefaultAutoStepHz      = 10.0
)

var (
	// ErrInvalidBandwidth indicates bandwidth must be positive
	ErrInvalidBandwidth = errors.New("bandwidth must be positive")
	// ErrInvalidDuration indicates pad and smoothing lengths must be non-negative
	ErrInvalidDuration = errors.New("pad and smoothing durations must be non-negative")
)

// Demodulation selects how the band-limited signal becomes an envelope.
type Demodulation int

const (
	// DemodHilbert uses the analytic-signal magnitude
	DemodHilbert Demodulation = iota
	// DemodRectify uses the absolute value
	DemodRectify
)

// ParseDemodulation maps a config value to a Demodulation.
func ParseDemodulation(s string) (Demodulation, error) {
	switch s {
	case "hilbert", "":
		return DemodHilbert, nil
	case "rectify":
		return DemodRectify, nil
	}
	return DemodHilbert, fmt.Errorf("unknown demodulation %q", s)
}

func (d Demodulation) String() string {
	if d == DemodRectify {
		return "rectify"
	}
	return "hilbert"
}

// ConditionerConfig configures the signal conditioner.
type ConditionerConfig struct {
	// CenterFrequency is the band-pass centre in Hz; 0 detects the tone
	CenterFrequency float64
	// Bandwidth is the width of the pass band in Hz
	Bandwidth float64
	// FilterOrder is the Butterworth order of each band edge (even)
	FilterOrder int
	// Demodulation selects the envelope detector
	Demodulation Demodulation
	// PadMs is the silence added before and after the samples
	PadMs float64
	// SmoothingMs is the moving-average window length
	SmoothingMs float64
	// AutoMinHz, AutoMaxHz and AutoStepHz bound the tone search when
	// CenterFrequency is 0
	AutoMinHz  float64
	AutoMaxHz  float64
	AutoStepHz float64
}

// DefaultConditionerConfig returns a 500-600 Hz pass band with 5 ms smoothing.
func DefaultConditionerConfig() ConditionerConfig {
	return ConditionerConfig{
		CenterFrequency: DefaultCenterFrequency,
		Bandwidth:       DefaultBandwidth,
		FilterOrder:     DefaultFilterOrder,
		Demodulation:    DemodHilbert,
		PadMs:           DefaultPadMs,
		SmoothingMs:     DefaultSmoothingMs,
		AutoMinHz:       DefaultAutoMinHz,
		AutoMaxHz:       DefaultAutoMaxHz,
		AutoStepHz:      DefaultAutoStepHz,
	}
}

// Envelope is the conditioner output for one waveform.
type Envelope struct {
	// Values has one entry per padded sample, all >= 0
	Values []float64
	// SampleRate of Values in Hz
	SampleRate int
	// ToneFrequency is the band-pass centre actually used
	ToneFrequency float64
	// Pad is the number of silent samples added at each end
	Pad int
}

// Conditioner band-limits, demodulates and smooths waveforms. It holds only
// configuration and is safe for concurrent use.
type Conditioner struct {
	config ConditionerConfig
}

// NewConditioner validates cfg and returns a Conditioner.
func NewConditioner(cfg ConditionerConfig) (*Conditioner, error) {
	if cfg.Bandwidth <= 0 {
		return nil, ErrInvalidBandwidth
	}
	if cfg.FilterOrder < 2 || cfg.FilterOrder%2 != 0 {
		return nil, ErrInvalidFilterOrder
	}
	if cfg.CenterFrequency < 0 || (cfg.CenterFrequency > 0 && cfg.CenterFrequency-cfg.Bandwidth/2 <= 0) {
		return nil, ErrInvalidFrequency
	}
	if cfg.PadMs < 0 || cfg.SmoothingMs < 0 {
		return nil, ErrInvalidDuration
	}
	if cfg.CenterFrequency == 0 && (cfg.AutoStepHz <= 0 || cfg.AutoMinHz <= 0 || cfg.AutoMaxHz < cfg.AutoMinHz) {
		return nil, ErrInvalidFrequency
	}
	return &Conditioner{config: cfg}, nil
}

// Config returns the current configuration
func (c *Conditioner) Config() ConditionerConfig {
	return c.config
}

// Condition converts w into an activity envelope.
func (c *Conditioner) Condition(w audio.Waveform) ([]float64, error) {
	env, err := c.Process(w)
	if err != nil {
		return nil, err
	}
	return env.Values, nil
}

// Process converts w into an activity envelope and reports the tone used.
// The input slice is never modified.
func (c *Conditioner) Process(w audio.Waveform) (*Envelope, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	fs := float64(w.SampleRate)

	normalized := Normalize(w.Samples)

	center := c.config.CenterFrequency
	if center == 0 {
		found, ok := FindTone(normalized, fs, c.config.AutoMinHz, c.config.AutoMaxHz, c.config.AutoStepHz)
		if ok {
			center = found
		} else {
			center = DefaultCenterFrequency
		}
	}

	low := center - c.config.Bandwidth/2
	high := center + c.config.Bandwidth/2
	if low <= 0 {
		low = c.config.Bandwidth / 2
	}
	bp, err := NewBandPass(c.config.FilterOrder, fs, low, high)
	if err != nil {
		return nil, fmt.Errorf("%w: %d Hz sample rate cannot carry a %.0f-%.0f Hz pass band: %w",
			audio.ErrUnsupportedFormat, w.SampleRate, low, high, err)
	}

	pad := msToSamples(c.config.PadMs, fs)
	padded := make([]float64, len(normalized)+2*pad)
	copy(padded[pad:], normalized)

	filtered := bp.FilterZeroPhase(padded)

	var raw []float64
	if c.config.Demodulation == DemodRectify {
		raw = Rectify(filtered)
	} else {
		raw = AnalyticMagnitude(filtered)
	}

	return &Envelope{
		Values:        MovingAverage(raw, msToSamples(c.config.SmoothingMs, fs)),
		SampleRate:    w.SampleRate,
		ToneFrequency: center,
		Pad:           pad,
	}, nil
}

// Normalize scales a copy of x so its absolute peak is 1. All-zero input
// is returned as zeros.
func Normalize(x []float64) []float64 {
	out := make([]float64, len(x))
	copy(out, x)
	if len(out) == 0 {
		return out
	}
	peak := math.Max(math.Abs(floats.Max(out)), math.Abs(floats.Min(out)))
	if peak == 0 {
		return out
	}
	floats.Scale(1/peak, out)
	return out
}

func msToSamples(ms, sampleRate float64) int {
	return int(math.Round(ms * sampleRate / 1000))
}
