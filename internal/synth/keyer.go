// internal/synth/keyer.go
// Package synth keys Morse strings into tone audio.
package synth

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/ColonelBlimp/cwtranslate/internal/audio"
	"github.com/ColonelBlimp/cwtranslate/internal/codec"
)

// Keyer defaults
const (
	DefaultWPM        = 15.0
	DefaultFrequency  = 600.0
	DefaultSampleRate = 8000
	DefaultAmplitude  = 0.8
	DefaultRampMs     = 2.0
	DefaultLeadMs     = 100.0
	DefaultTailMs     = 100.0
)

var (
	// ErrInvalidSpeed indicates a non-positive WPM or a Farnsworth speed above WPM
	ErrInvalidSpeed = errors.New("wpm must be positive and farnsworth wpm must not exceed it")
	// ErrInvalidFrequency indicates a tone at or above the Nyquist frequency
	ErrInvalidFrequency = errors.New("tone frequency must be positive and below half the sample rate")
	// ErrInvalidSampleRate indicates a non-positive sample rate
	ErrInvalidSampleRate = errors.New("sample rate must be positive")
	// ErrInvalidAmplitude indicates an amplitude outside (0, 1]
	ErrInvalidAmplitude = errors.New("amplitude must be in (0, 1]")
	// ErrInvalidDuration indicates a negative ramp, lead or tail
	ErrInvalidDuration = errors.New("ramp, lead and tail durations must be non-negative")
	// ErrEmptyMessage indicates nothing to key
	ErrEmptyMessage = errors.New("nothing to key")
	// ErrInvalidMorse indicates a character other than '.', '-', ' ' or '/'
	ErrInvalidMorse = errors.New("invalid morse character")
)

// Config holds keyer configuration.
type Config struct {
	WPM float64
	// FarnsworthWPM stretches letter and word gaps to this overall speed; 0 disables
	FarnsworthWPM float64
	Frequency     float64
	SampleRate    int
	Amplitude     float64
	// RampMs is the raised-cosine rise and fall time of each element
	RampMs float64
	LeadMs float64
	TailMs float64
	// UnitSamples, when positive, sets the dot length exactly and overrides WPM
	UnitSamples int
}

// DefaultConfig returns a 15 WPM, 600 Hz keyer at 8000 Hz.
func DefaultConfig() Config {
	return Config{
		WPM:        DefaultWPM,
		Frequency:  DefaultFrequency,
		SampleRate: DefaultSampleRate,
		Amplitude:  DefaultAmplitude,
		RampMs:     DefaultRampMs,
		LeadMs:     DefaultLeadMs,
		TailMs:     DefaultTailMs,
	}
}

// Keyer converts Morse strings to waveforms. It is safe for concurrent use.
type Keyer struct {
	config    Config
	unit      int
	letterGap int
	wordGap   int
	ramp      int
}

// NewKeyer validates cfg and precomputes element lengths.
func NewKeyer(cfg Config) (*Keyer, error) {
	if cfg.SampleRate <= 0 {
		return nil, ErrInvalidSampleRate
	}
	if cfg.UnitSamples <= 0 && cfg.WPM <= 0 {
		return nil, ErrInvalidSpeed
	}
	if cfg.FarnsworthWPM < 0 || (cfg.FarnsworthWPM > 0 && cfg.WPM > 0 && cfg.FarnsworthWPM > cfg.WPM) {
		return nil, ErrInvalidSpeed
	}
	if cfg.Frequency <= 0 || cfg.Frequency >= float64(cfg.SampleRate)/2 {
		return nil, ErrInvalidFrequency
	}
	if cfg.Amplitude <= 0 || cfg.Amplitude > 1 {
		return nil, ErrInvalidAmplitude
	}
	if cfg.RampMs < 0 || cfg.LeadMs < 0 || cfg.TailMs < 0 {
		return nil, ErrInvalidDuration
	}

	fs := float64(cfg.SampleRate)
	k := &Keyer{config: cfg, ramp: msToSamples(cfg.RampMs, fs)}

	if cfg.UnitSamples > 0 {
		k.unit = cfg.UnitSamples
	} else {
		k.unit = max(1, int(math.Round(codec.DotDuration(cfg.WPM).Seconds()*fs)))
	}
	k.letterGap = int(codec.InterCharSpaceRatio) * k.unit
	k.wordGap = int(codec.WordSpaceRatio) * k.unit

	if cfg.FarnsworthWPM > 0 && cfg.WPM > 0 && cfg.FarnsworthWPM < cfg.WPM {
		// ARRL: the extra time per word is spread over 19 gap units
		// (3 per letter gap in PARIS plus 7 for the word gap).
		c, s := cfg.WPM, cfg.FarnsworthWPM
		delay := (60*c - 37.2*s) / (s * c)
		gapUnit := delay / 19 * fs
		k.letterGap = int(math.Round(codec.InterCharSpaceRatio * gapUnit))
		k.wordGap = int(math.Round(codec.WordSpaceRatio * gapUnit))
	}
	return k, nil
}

// Config returns the current configuration
func (k *Keyer) Config() Config {
	return k.config
}

// UnitSamples returns the dot length in samples
func (k *Keyer) UnitSamples() int {
	return k.unit
}

// Key renders a Morse string (". - / " notation) as a waveform. Runs of
// spaces separate letters and " / " separates words.
func (k *Keyer) Key(morse string) (audio.Waveform, error) {
	words, err := parse(morse)
	if err != nil {
		return audio.Waveform{}, err
	}
	if len(words) == 0 {
		return audio.Waveform{}, ErrEmptyMessage
	}

	fs := float64(k.config.SampleRate)
	b := &builder{keyer: k}
	b.silence(msToSamples(k.config.LeadMs, fs))
	for wi, word := range words {
		if wi > 0 {
			b.silence(k.wordGap)
		}
		for li, letter := range word {
			if li > 0 {
				b.silence(k.letterGap)
			}
			for ei, el := range letter {
				if ei > 0 {
					b.silence(k.unit * int(codec.IntraCharSpaceRatio))
				}
				if el == codec.Dash {
					b.tone(k.unit * int(codec.DahDitRatio))
				} else {
					b.tone(k.unit)
				}
			}
		}
	}
	b.silence(msToSamples(k.config.TailMs, fs))

	return audio.NewWaveform(b.samples, k.config.SampleRate)
}

// KeyText encodes text and keys the result.
func (k *Keyer) KeyText(text string) (audio.Waveform, error) {
	return k.Key(codec.Encode(text))
}

// parse splits Morse into words of letters, dropping empty words.
func parse(morse string) ([][]string, error) {
	if i := strings.IndexFunc(morse, func(r rune) bool {
		return r != codec.Dot && r != codec.Dash && r != '/' && r != ' ' && r != '\t'
	}); i >= 0 {
		return nil, fmt.Errorf("%w %q at offset %d", ErrInvalidMorse, morse[i], i)
	}

	var words [][]string
	for _, w := range strings.Split(morse, "/") {
		if letters := strings.Fields(w); len(letters) > 0 {
			words = append(words, letters)
		}
	}
	return words, nil
}

// builder appends elements with a phase-continuous carrier.
type builder struct {
	keyer   *Keyer
	samples []float64
}

func (b *builder) silence(n int) {
	b.samples = append(b.samples, make([]float64, n)...)
}

func (b *builder) tone(n int) {
	cfg := b.keyer.config
	omega := 2 * math.Pi * cfg.Frequency / float64(cfg.SampleRate)
	ramp := min(b.keyer.ramp, n/2)
	start := len(b.samples)

	for i := 0; i < n; i++ {
		gain := cfg.Amplitude
		switch {
		case i < ramp:
			gain *= raisedCosine(i, ramp)
		case i >= n-ramp:
			gain *= raisedCosine(n-1-i, ramp)
		}
		b.samples = append(b.samples, gain*math.Sin(omega*float64(start+i)))
	}
}

// raisedCosine rises from 0 at i = 0 towards 1 at i = n
func raisedCosine(i, n int) float64 {
	return 0.5 - 0.5*math.Cos(math.Pi*float64(i)/float64(n))
}

func msToSamples(ms, sampleRate float64) int {
	return int(math.Round(ms * sampleRate / 1000))
}
