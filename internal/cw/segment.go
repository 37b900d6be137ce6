// internal/cw/segment.go
package cw

import (
	"errors"
	"fmt"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var (
	// ErrSilentSignal indicates the envelope has nothing above the noise floor
	ErrSilentSignal = errors.New("no signal above noise floor")
	// ErrInvalidThreshold indicates a percentile outside 0-100 or fraction outside (0, 1)
	ErrInvalidThreshold = errors.New("threshold percentile must be in [0, 100] and fraction in (0, 1)")
)

// silenceFloor is the reference level below which an envelope counts as silent
const silenceFloor = 1e-9

// ThresholdMode selects the reference level the cutoff is taken from.
type ThresholdMode int

const (
	// ThresholdPercentile uses a high percentile of the envelope, which
	// ignores a few loud clicks
	ThresholdPercentile ThresholdMode = iota
	// ThresholdPeak uses the envelope maximum
	ThresholdPeak
)

// ParseThresholdMode maps a config value to a ThresholdMode.
func ParseThresholdMode(s string) (ThresholdMode, error) {
	switch s {
	case "percentile", "":
		return ThresholdPercentile, nil
	case "peak":
		return ThresholdPeak, nil
	}
	return ThresholdPercentile, fmt.Errorf("unknown threshold mode %q", s)
}

func (m ThresholdMode) String() string {
	if m == ThresholdPeak {
		return "peak"
	}
	return "percentile"
}

// ThresholdConfig sets the on/off cutoff. The cutoff sits Fraction of the
// way from the noise floor to the reference level.
type ThresholdConfig struct {
	Mode ThresholdMode
	// Percentile of the envelope used as reference, 0-100
	Percentile float64
	// NoisePercentile of the envelope taken as the noise floor, 0-100
	NoisePercentile float64
	// Fraction of the floor-to-reference span a sample must exceed
	Fraction float64
	// HoldSamples is the shortest stretch that counts as a pulse. In
	// percentile mode the reference never drops below the highest level
	// held this long, so sparse keying is not lost in long silence.
	// Values <= 1 disable the hold.
	HoldSamples int
}

// DefaultThresholdConfig returns half way from the 10th to the 99th percentile.
func DefaultThresholdConfig() ThresholdConfig {
	return ThresholdConfig{Mode: ThresholdPercentile, Percentile: 99, NoisePercentile: 10, Fraction: 0.5}
}

func (c ThresholdConfig) validate() error {
	if c.Percentile < 0 || c.Percentile > 100 || c.Fraction <= 0 || c.Fraction >= 1 {
		return ErrInvalidThreshold
	}
	if c.NoisePercentile < 0 || c.NoisePercentile > 100 || c.HoldSamples < 0 {
		return ErrInvalidThreshold
	}
	if c.Mode == ThresholdPercentile && c.NoisePercentile > c.Percentile {
		return ErrInvalidThreshold
	}
	return nil
}

// ReferenceLevel returns the signal level the cutoff is measured against.
func ReferenceLevel(envelope []float64, cfg ThresholdConfig) float64 {
	if len(envelope) == 0 {
		return 0
	}
	if cfg.Mode == ThresholdPeak {
		return floats.Max(envelope)
	}
	ref := percentile(envelope, cfg.Percentile)
	if cfg.HoldSamples > 1 {
		ref = max(ref, SustainedPeak(envelope, cfg.HoldSamples))
	}
	return ref
}

// NoiseFloor returns the NoisePercentile-th percentile of the envelope.
func NoiseFloor(envelope []float64, cfg ThresholdConfig) float64 {
	if len(envelope) == 0 {
		return 0
	}
	return percentile(envelope, cfg.NoisePercentile)
}

// SustainedPeak returns the highest level the envelope holds for hold
// consecutive samples. Clicks shorter than hold do not reach it.
func SustainedPeak(envelope []float64, hold int) float64 {
	hold = min(max(hold, 1), len(envelope))
	var peak float64
	// indices of a sliding-window minimum, values increasing
	window := make([]int, 0, hold)
	for i, v := range envelope {
		for len(window) > 0 && envelope[window[len(window)-1]] >= v {
			window = window[:len(window)-1]
		}
		window = append(window, i)
		if window[0] <= i-hold {
			window = window[1:]
		}
		if i >= hold-1 {
			peak = max(peak, envelope[window[0]])
		}
	}
	return peak
}

func percentile(envelope []float64, p float64) float64 {
	sorted := slices.Clone(envelope)
	slices.Sort(sorted)
	return stat.Quantile(p/100, stat.Empirical, sorted, nil)
}

// Threshold marks each envelope sample on when it is strictly above the
// cutoff. It fails with ErrSilentSignal when the reference level is zero.
func Threshold(envelope []float64, cfg ThresholdConfig) ([]bool, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	ref := ReferenceLevel(envelope, cfg)
	if ref <= silenceFloor {
		return nil, ErrSilentSignal
	}
	floor := min(NoiseFloor(envelope, cfg), ref)

	cutoff := floor + cfg.Fraction*(ref-floor)
	activity := make([]bool, len(envelope))
	for i, v := range envelope {
		activity[i] = v > cutoff
	}
	return activity, nil
}

// RunLengthEncode groups consecutive equal values. Run lengths sum to
// len(activity) and adjacent runs always differ in On.
func RunLengthEncode(activity []bool) []Run {
	var runs []Run
	for _, on := range activity {
		if n := len(runs); n > 0 && runs[n-1].On == on {
			runs[n-1].Length++
			continue
		}
		runs = append(runs, Run{On: on, Length: 1})
	}
	return runs
}

// Debounce absorbs interior runs shorter than minLen into their
// neighbours, so a click inside a gap or a dropout inside a pulse does not
// split the surrounding run. The first and last runs are never absorbed.
// Totals and alternation are preserved.
func Debounce(runs []Run, minLen int) []Run {
	if minLen <= 1 || len(runs) < 3 {
		return slices.Clone(runs)
	}

	out := make([]Run, 0, len(runs))
	for i, r := range runs {
		interior := i > 0 && i < len(runs)-1
		n := len(out)
		switch {
		case interior && r.Length < minLen && n > 0:
			out[n-1].Length += r.Length
		case n > 0 && out[n-1].On == r.On:
			out[n-1].Length += r.Length
		default:
			out = append(out, r)
		}
	}
	return out
}

// TotalLength sums run lengths.
func TotalLength(runs []Run) int {
	total := 0
	for _, r := range runs {
		total += r.Length
	}
	return total
}
