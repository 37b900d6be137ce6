// internal/cw/decoder.go
package cw

import (
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/ColonelBlimp/cwtranslate/internal/audio"
	"github.com/ColonelBlimp/cwtranslate/internal/codec"
	"github.com/ColonelBlimp/cwtranslate/internal/dsp"
)

// DefaultMinPulseMs is the debounce length; runs shorter than this are glitches
const DefaultMinPulseMs = 10.0

// ErrInvalidMinPulse indicates a negative debounce length
var ErrInvalidMinPulse = errors.New("min pulse duration must be non-negative")

// Stage is a step of the decode pipeline.
type Stage int

const (
	StageRaw Stage = iota
	StageConditioned
	StageThresholded
	StageSegmented
	StageClassified
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StageRaw:
		return "RAW"
	case StageConditioned:
		return "CONDITIONED"
	case StageThresholded:
		return "THRESHOLDED"
	case StageSegmented:
		return "SEGMENTED"
	case StageClassified:
		return "CLASSIFIED"
	case StageDone:
		return "DONE"
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// StageError reports which stage a decode failed to reach.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// FailedStage returns the stage recorded in err, if any.
func FailedStage(err error) (Stage, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return 0, false
}

// DecoderConfig configures the whole pipeline.
type DecoderConfig struct {
	Conditioner dsp.ConditionerConfig
	Threshold   ThresholdConfig
	// MinPulseMs is the debounce length; 0 disables debouncing
	MinPulseMs float64
	// UnitPolicy estimates the dot length; nil means MinimumPulse
	UnitPolicy UnitPolicy
	Classify   ClassifyConfig
}

// DefaultDecoderConfig returns the defaults of every stage.
func DefaultDecoderConfig() DecoderConfig {
	return DecoderConfig{
		Conditioner: dsp.DefaultConditionerConfig(),
		Threshold:   DefaultThresholdConfig(),
		MinPulseMs:  DefaultMinPulseMs,
		UnitPolicy:  MinimumPulse{},
		Classify:    DefaultClassifyConfig(),
	}
}

// Result is the outcome of one decode.
type Result struct {
	Morse   string
	Symbols []Symbol
	// Runs are the debounced runs of the padded envelope
	Runs []Run
	// Unit is the estimated dot length in samples
	Unit         float64
	UnitDuration time.Duration
	// WPM is the PARIS speed implied by the unit
	WPM           float64
	ToneFrequency float64
}

// Option configures a Decoder
type Option func(*Decoder)

// WithLogger sets the logger used for stage tracing
func WithLogger(l *zap.Logger) Option {
	return func(d *Decoder) {
		if l != nil {
			d.logger = l
		}
	}
}

// Decoder turns waveforms into Morse strings. It holds only configuration
// and is safe for concurrent use.
type Decoder struct {
	config      DecoderConfig
	conditioner *dsp.Conditioner
	logger      *zap.Logger
}

// NewDecoder validates cfg and returns a Decoder.
func NewDecoder(cfg DecoderConfig, opts ...Option) (*Decoder, error) {
	conditioner, err := dsp.NewConditioner(cfg.Conditioner)
	if err != nil {
		return nil, err
	}
	if err := cfg.Threshold.validate(); err != nil {
		return nil, err
	}
	if cfg.MinPulseMs < 0 {
		return nil, ErrInvalidMinPulse
	}
	if err := cfg.Classify.Validate(); err != nil {
		return nil, err
	}
	if cfg.UnitPolicy == nil {
		cfg.UnitPolicy = MinimumPulse{}
	}

	d := &Decoder{config: cfg, conditioner: conditioner, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Config returns the current configuration
func (d *Decoder) Config() DecoderConfig {
	return d.config
}

// Decode runs w through every stage. Failures are *StageError values that
// unwrap to the detecting sentinel.
func (d *Decoder) Decode(w audio.Waveform) (*Result, error) {
	stage := StageRaw
	fail := func(err error) (*Result, error) {
		d.logger.Debug("decode failed", zap.Stringer("stage", stage), zap.Error(err))
		return nil, &StageError{Stage: stage, Err: err}
	}
	advance := func(next Stage) {
		stage = next
		d.logger.Debug("decode stage", zap.Stringer("stage", stage))
	}

	if err := w.Validate(); err != nil {
		return fail(err)
	}

	advance(StageConditioned)
	env, err := d.conditioner.Process(w)
	if err != nil {
		return fail(err)
	}

	advance(StageThresholded)
	minLen := int(math.Round(d.config.MinPulseMs * float64(env.SampleRate) / 1000))
	tc := d.config.Threshold
	if tc.HoldSamples == 0 {
		tc.HoldSamples = max(minLen, int(math.Round(DefaultMinPulseMs*float64(env.SampleRate)/1000)))
	}
	activity, err := Threshold(env.Values, tc)
	if err != nil {
		return fail(err)
	}

	advance(StageSegmented)
	runs := Debounce(RunLengthEncode(activity), minLen)
	unit, err := EstimateUnit(runs, d.config.UnitPolicy)
	if err != nil {
		return fail(err)
	}
	d.logger.Debug("unit estimated",
		zap.String("policy", d.config.UnitPolicy.Name()),
		zap.Float64("samples", unit),
		zap.Int("runs", len(runs)))

	advance(StageClassified)
	symbols := Classify(runs, unit, d.config.Classify)

	advance(StageDone)
	unitDuration := time.Duration(unit / float64(env.SampleRate) * float64(time.Second))
	return &Result{
		Morse:         Render(symbols),
		Symbols:       symbols,
		Runs:          runs,
		Unit:          unit,
		UnitDuration:  unitDuration,
		WPM:           codec.WPM(unitDuration),
		ToneFrequency: env.ToneFrequency,
	}, nil
}

// DecodeText decodes w and translates the Morse to text.
func (d *Decoder) DecodeText(w audio.Waveform) (string, *Result, error) {
	res, err := d.Decode(w)
	if err != nil {
		return "", nil, err
	}
	return codec.Decode(res.Morse), res, nil
}
