// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"github.com/ColonelBlimp/cwtranslate/internal/audio"
	"github.com/ColonelBlimp/cwtranslate/internal/cw"
	"github.com/ColonelBlimp/cwtranslate/internal/dsp"
	"github.com/ColonelBlimp/cwtranslate/internal/ocr"
	"github.com/ColonelBlimp/cwtranslate/internal/synth"
)

const (
	AppName       = "cwtranslate"
	ConfigType    = "yaml"
	DefaultConfig = `# CW Translate Configuration

# Signal conditioning
center_frequency: 550       # Band-pass centre in Hz (0 = detect the tone), below the file's Nyquist
bandwidth: 100              # Band-pass width in Hz
filter_order: 4             # Butterworth order of each band edge (even, 2-10)
demodulation: "hilbert"     # Envelope detector: hilbert or rectify
pad_ms: 50                  # Silence added before and after the recording
smoothing_window_ms: 5      # Moving-average window over the envelope

# Thresholding
threshold_mode: "percentile" # Reference level: percentile or peak
threshold_percentile: 99     # Percentile used as the reference level
threshold_noise_percentile: 10 # Percentile taken as the noise floor
threshold_fraction: 0.5      # Cutoff position between noise floor and reference
min_pulse_ms: 10             # Runs shorter than this are glitches (0 = off)

# Timing
unit_policy: "minimum"      # Dot length estimate: minimum, percentile or median_interval
unit_percentile: 10         # Percentile of pulse lengths for the percentile policy
max_units_per_run: 7        # Longest run, in units
dot_dash_cutoff: 2          # Pulses up to this many units are dots
letter_gap_cutoff: 3        # Gaps from this many units separate letters
word_gap_cutoff: 7          # Gaps from this many units separate words

# Audio input
downmix: "first"            # Multi-channel WAV: first or average
device_index: -1            # -1 for default device
buffer_size: 512            # Frames per device callback

# Keyer
wpm: 15                     # Character speed
farnsworth_wpm: 0           # Overall speed with stretched gaps (0 = off)
tone_frequency: 600         # Keyed tone in Hz
sample_rate: 8000           # Keyer and recorder sample rate in Hz

# OCR
ocr_endpoint: "https://api.ocr.space/parse/image"
ocr_api_key: "helloworld"
ocr_language: "eng"

# Output
log_level: "info"           # debug, info, warn or error
debug: false                # Enable debug output
`
)

// Settings holds all application configuration
type Settings struct {
	// Signal conditioning
	CenterFrequency   float64 `mapstructure:"center_frequency"`
	Bandwidth         float64 `mapstructure:"bandwidth"`
	FilterOrder       int     `mapstructure:"filter_order"`
	Demodulation      string  `mapstructure:"demodulation"`
	PadMs             float64 `mapstructure:"pad_ms"`
	SmoothingWindowMs float64 `mapstructure:"smoothing_window_ms"`

	// Thresholding
	ThresholdMode       string  `mapstructure:"threshold_mode"`
	ThresholdPercentile float64 `mapstructure:"threshold_percentile"`
	ThresholdNoise      float64 `mapstructure:"threshold_noise_percentile"`
	ThresholdFraction   float64 `mapstructure:"threshold_fraction"`
	MinPulseMs          float64 `mapstructure:"min_pulse_ms"`

	// Timing
	UnitPolicy      string  `mapstructure:"unit_policy"`
	UnitPercentile  float64 `mapstructure:"unit_percentile"`
	MaxUnitsPerRun  int     `mapstructure:"max_units_per_run"`
	DotDashCutoff   int     `mapstructure:"dot_dash_cutoff"`
	LetterGapCutoff int     `mapstructure:"letter_gap_cutoff"`
	WordGapCutoff   int     `mapstructure:"word_gap_cutoff"`

	// Audio input
	Downmix     string `mapstructure:"downmix"`
	DeviceIndex int    `mapstructure:"device_index"`
	BufferSize  int    `mapstructure:"buffer_size"`

	// Keyer
	WPM           int     `mapstructure:"wpm"`
	FarnsworthWPM int     `mapstructure:"farnsworth_wpm"`
	ToneFrequency float64 `mapstructure:"tone_frequency"`
	SampleRate    int     `mapstructure:"sample_rate"`

	// OCR
	OCREndpoint string `mapstructure:"ocr_endpoint"`
	OCRAPIKey   string `mapstructure:"ocr_api_key"`
	OCRLanguage string `mapstructure:"ocr_language"`

	// Output
	LogLevel string `mapstructure:"log_level"`
	Debug    bool   `mapstructure:"debug"`
}

// setDefaults mirrors DefaultConfig
func setDefaults() {
	viper.SetDefault("center_frequency", 550)
	viper.SetDefault("bandwidth", 100)
	viper.SetDefault("filter_order", 4)
	viper.SetDefault("demodulation", "hilbert")
	viper.SetDefault("pad_ms", 50)
	viper.SetDefault("smoothing_window_ms", 5)
	viper.SetDefault("threshold_mode", "percentile")
	viper.SetDefault("threshold_percentile", 99)
	viper.SetDefault("threshold_noise_percentile", 10)
	viper.SetDefault("threshold_fraction", 0.5)
	viper.SetDefault("min_pulse_ms", 10)
	viper.SetDefault("unit_policy", "minimum")
	viper.SetDefault("unit_percentile", 10)
	viper.SetDefault("max_units_per_run", 7)
	viper.SetDefault("dot_dash_cutoff", 2)
	viper.SetDefault("letter_gap_cutoff", 3)
	viper.SetDefault("word_gap_cutoff", 7)
	viper.SetDefault("downmix", "first")
	viper.SetDefault("device_index", -1)
	viper.SetDefault("buffer_size", 512)
	viper.SetDefault("wpm", 15)
	viper.SetDefault("farnsworth_wpm", 0)
	viper.SetDefault("tone_frequency", 600)
	viper.SetDefault("sample_rate", 8000)
	viper.SetDefault("ocr_endpoint", ocr.DefaultEndpoint)
	viper.SetDefault("ocr_api_key", ocr.DefaultAPIKey)
	viper.SetDefault("ocr_language", ocr.DefaultLanguage)
	viper.SetDefault("log_level", "info")
	viper.SetDefault("debug", false)
}

// Init initializes Viper with defaults and config file.
// Config file search order: current directory, then ~/.config/cwtranslate/
func Init() error {
	setDefaults()

	// Support both config.yaml and .config.yaml
	viper.SetConfigType(ConfigType)

	// Priority order: current directory first, then XDG config
	viper.AddConfigPath(".")

	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	viper.AddConfigPath(filepath.Join(configDir, AppName))

	// Try .config.yaml first (hidden file), then config.yaml
	viper.SetConfigName(".config")
	if err = viper.ReadInConfig(); err != nil {
		viper.SetConfigName("config")
		err = viper.ReadInConfig()
	}

	// Read config file - if not found, create default in XDG config dir
	if err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("read config: %w", err)
		}
		if err = ensureConfigExists(filepath.Join(configDir, AppName)); err != nil {
			return err
		}
		if err = viper.ReadInConfig(); err != nil {
			return fmt.Errorf("read config: %w", err)
		}
	}

	return nil
}

func ensureConfigExists(configPath string) error {
	configFile := filepath.Join(configPath, "config.yaml")

	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		if err = os.MkdirAll(configPath, 0755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
		if err = os.WriteFile(configFile, []byte(DefaultConfig), 0644); err != nil {
			return fmt.Errorf("write default config: %w", err)
		}
	}
	return nil
}

// Get returns the current settings
func Get() (*Settings, error) {
	var s Settings
	if err := viper.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &s, nil
}

// Validate checks that all settings are within acceptable ranges
func (s *Settings) Validate() error {
	var errs []error

	// Signal conditioning
	// the pass band is checked against each recording's own rate when decoding
	if s.CenterFrequency != 0 && (s.CenterFrequency < 100 || s.CenterFrequency > 20000) {
		errs = append(errs, fmt.Errorf("center_frequency must be 0 or between 100 and 20000 Hz, got %v", s.CenterFrequency))
	}
	if s.Bandwidth < 10 || s.Bandwidth > 1000 {
		errs = append(errs, fmt.Errorf("bandwidth must be between 10 and 1000 Hz, got %v", s.Bandwidth))
	}
	if s.CenterFrequency != 0 && s.CenterFrequency-s.Bandwidth/2 <= 0 {
		errs = append(errs, fmt.Errorf("center_frequency (%v Hz) must exceed half the bandwidth (%v Hz)", s.CenterFrequency, s.Bandwidth/2))
	}
	if s.FilterOrder < 2 || s.FilterOrder > 10 || s.FilterOrder%2 != 0 {
		errs = append(errs, fmt.Errorf("filter_order must be even and between 2 and 10, got %d", s.FilterOrder))
	}
	if _, err := dsp.ParseDemodulation(s.Demodulation); err != nil {
		errs = append(errs, fmt.Errorf("demodulation must be hilbert or rectify, got %q", s.Demodulation))
	}
	if s.PadMs < 0 || s.PadMs > 1000 {
		errs = append(errs, fmt.Errorf("pad_ms must be between 0 and 1000, got %v", s.PadMs))
	}
	if s.SmoothingWindowMs < 0 || s.SmoothingWindowMs > 100 {
		errs = append(errs, fmt.Errorf("smoothing_window_ms must be between 0 and 100, got %v", s.SmoothingWindowMs))
	}

	// Thresholding
	if _, err := cw.ParseThresholdMode(s.ThresholdMode); err != nil {
		errs = append(errs, fmt.Errorf("threshold_mode must be percentile or peak, got %q", s.ThresholdMode))
	}
	if s.ThresholdPercentile < 0 || s.ThresholdPercentile > 100 {
		errs = append(errs, fmt.Errorf("threshold_percentile must be between 0 and 100, got %v", s.ThresholdPercentile))
	}
	if s.ThresholdNoise < 0 || s.ThresholdNoise > s.ThresholdPercentile {
		errs = append(errs, fmt.Errorf("threshold_noise_percentile must be between 0 and threshold_percentile (%v), got %v", s.ThresholdPercentile, s.ThresholdNoise))
	}
	if s.ThresholdFraction <= 0 || s.ThresholdFraction >= 1 {
		errs = append(errs, fmt.Errorf("threshold_fraction must be between 0 and 1 exclusive, got %v", s.ThresholdFraction))
	}
	if s.MinPulseMs < 0 || s.MinPulseMs > 100 {
		errs = append(errs, fmt.Errorf("min_pulse_ms must be between 0 and 100, got %v", s.MinPulseMs))
	}

	// Timing
	if _, err := cw.ParseUnitPolicy(s.UnitPolicy, cw.DefaultUnitPercentile); err != nil {
		errs = append(errs, fmt.Errorf("unit_policy must be minimum, percentile or median_interval, got %q", s.UnitPolicy))
	}
	if s.UnitPercentile < 0 || s.UnitPercentile > 100 {
		errs = append(errs, fmt.Errorf("unit_percentile must be between 0 and 100, got %v", s.UnitPercentile))
	}
	if s.MaxUnitsPerRun < 3 || s.MaxUnitsPerRun > 20 {
		errs = append(errs, fmt.Errorf("max_units_per_run must be between 3 and 20, got %d", s.MaxUnitsPerRun))
	}
	if s.DotDashCutoff < 1 || s.DotDashCutoff >= s.LetterGapCutoff ||
		s.LetterGapCutoff >= s.WordGapCutoff || s.WordGapCutoff > s.MaxUnitsPerRun {
		errs = append(errs, fmt.Errorf("cutoffs must satisfy 1 <= dot_dash_cutoff (%d) < letter_gap_cutoff (%d) < word_gap_cutoff (%d) <= max_units_per_run (%d)",
			s.DotDashCutoff, s.LetterGapCutoff, s.WordGapCutoff, s.MaxUnitsPerRun))
	}

	// Audio input
	if _, err := audio.ParseDownmixMode(s.Downmix); err != nil {
		errs = append(errs, fmt.Errorf("downmix must be first or average, got %q", s.Downmix))
	}
	if s.DeviceIndex < -1 {
		errs = append(errs, fmt.Errorf("device_index must be -1 or a device index, got %d", s.DeviceIndex))
	}
	if s.BufferSize < 64 || s.BufferSize > 8192 {
		errs = append(errs, fmt.Errorf("buffer_size must be between 64 and 8192, got %d", s.BufferSize))
	}
	// Buffer size should be power of 2 for the audio backend
	if s.BufferSize&(s.BufferSize-1) != 0 {
		errs = append(errs, fmt.Errorf("buffer_size should be a power of 2, got %d", s.BufferSize))
	}

	// Keyer
	if s.WPM < 5 || s.WPM > 60 {
		errs = append(errs, fmt.Errorf("wpm must be between 5 and 60, got %d", s.WPM))
	}
	if s.FarnsworthWPM < 0 || s.FarnsworthWPM > s.WPM {
		errs = append(errs, fmt.Errorf("farnsworth_wpm must be between 0 and wpm (%d), got %d", s.WPM, s.FarnsworthWPM))
	}
	if s.ToneFrequency < 100 || s.ToneFrequency > 3000 {
		errs = append(errs, fmt.Errorf("tone_frequency must be between 100 and 3000 Hz, got %v", s.ToneFrequency))
	}
	if s.SampleRate < 8000 || s.SampleRate > 192000 {
		errs = append(errs, fmt.Errorf("sample_rate must be between 8000 and 192000 Hz, got %d", s.SampleRate))
	}

	// Nyquist check: the keyed tone must sit below half the keyer rate
	nyquist := float64(s.SampleRate) / 2
	if s.ToneFrequency >= nyquist {
		errs = append(errs, fmt.Errorf("tone_frequency (%v Hz) must be less than Nyquist frequency (%v Hz)", s.ToneFrequency, nyquist))
	}

	// OCR
	if u, err := url.Parse(s.OCREndpoint); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("ocr_endpoint must be an http(s) URL, got %q", s.OCREndpoint))
	}
	if s.OCRLanguage == "" {
		errs = append(errs, errors.New("ocr_language must not be empty"))
	}

	// Output
	if _, err := zapcore.ParseLevel(s.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level must be debug, info, warn or error, got %q", s.LogLevel))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// DecoderConfig maps the settings onto the decode pipeline.
func (s *Settings) DecoderConfig() (cw.DecoderConfig, error) {
	demod, err := dsp.ParseDemodulation(s.Demodulation)
	if err != nil {
		return cw.DecoderConfig{}, err
	}
	mode, err := cw.ParseThresholdMode(s.ThresholdMode)
	if err != nil {
		return cw.DecoderConfig{}, err
	}
	policy, err := cw.ParseUnitPolicy(s.UnitPolicy, s.UnitPercentile)
	if err != nil {
		return cw.DecoderConfig{}, err
	}

	cond := dsp.DefaultConditionerConfig()
	cond.CenterFrequency = s.CenterFrequency
	cond.Bandwidth = s.Bandwidth
	cond.FilterOrder = s.FilterOrder
	cond.Demodulation = demod
	cond.PadMs = s.PadMs
	cond.SmoothingMs = s.SmoothingWindowMs

	return cw.DecoderConfig{
		Conditioner: cond,
		Threshold: cw.ThresholdConfig{
			Mode:            mode,
			Percentile:      s.ThresholdPercentile,
			NoisePercentile: s.ThresholdNoise,
			Fraction:        s.ThresholdFraction,
		},
		MinPulseMs: s.MinPulseMs,
		UnitPolicy: policy,
		Classify: cw.ClassifyConfig{
			MaxUnits:        s.MaxUnitsPerRun,
			DotDashCutoff:   s.DotDashCutoff,
			LetterGapCutoff: s.LetterGapCutoff,
			WordGapCutoff:   s.WordGapCutoff,
		},
	}, nil
}

// KeyerConfig maps the settings onto the keyer.
func (s *Settings) KeyerConfig() synth.Config {
	cfg := synth.DefaultConfig()
	cfg.WPM = float64(s.WPM)
	cfg.FarnsworthWPM = float64(s.FarnsworthWPM)
	cfg.Frequency = s.ToneFrequency
	cfg.SampleRate = s.SampleRate
	return cfg
}

// DeviceConfig maps the settings onto the audio device.
func (s *Settings) DeviceConfig() audio.DeviceConfig {
	return audio.DeviceConfig{
		DeviceIndex: s.DeviceIndex,
		SampleRate:  uint32(s.SampleRate),
		BufferSize:  uint32(s.BufferSize),
	}
}

// DownmixMode returns the parsed downmix setting.
func (s *Settings) DownmixMode() (audio.DownmixMode, error) {
	return audio.ParseDownmixMode(s.Downmix)
}

// OCRConfig maps the settings onto the OCR client.
func (s *Settings) OCRConfig() ocr.SpaceConfig {
	cfg := ocr.DefaultSpaceConfig()
	cfg.Endpoint = s.OCREndpoint
	cfg.APIKey = s.OCRAPIKey
	cfg.Language = s.OCRLanguage
	return cfg
}
