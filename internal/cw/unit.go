// internal/cw/unit.go
package cw

import (
	"errors"
	"fmt"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// ErrNoPulsesDetected indicates the activity contained no on-runs
var ErrNoPulsesDetected = errors.New("no pulses detected")

// UnitPolicy estimates the dot length, in samples, from a run sequence.
// Implementations return ErrNoPulsesDetected when runs has no on-run.
type UnitPolicy interface {
	Unit(runs []Run) (float64, error)
	Name() string
}

// Policy names accepted by ParseUnitPolicy
const (
	PolicyMinimum        = "minimum"
	PolicyPercentile     = "percentile"
	PolicyMedianInterval = "median_interval"
)

// DefaultUnitPercentile is the PercentilePulse default
const DefaultUnitPercentile = 10.0

// ParseUnitPolicy maps a config value to a UnitPolicy. percentile is only
// used by the percentile policy.
func ParseUnitPolicy(name string, percentile float64) (UnitPolicy, error) {
	switch name {
	case PolicyMinimum, "":
		return MinimumPulse{}, nil
	case PolicyPercentile:
		if percentile < 0 || percentile > 100 {
			return nil, fmt.Errorf("unit percentile %v outside [0, 100]", percentile)
		}
		return PercentilePulse{Percentile: percentile}, nil
	case PolicyMedianInterval:
		return MedianInterval{}, nil
	}
	return nil, fmt.Errorf("unknown unit policy %q", name)
}

// EstimateUnit applies policy to runs.
func EstimateUnit(runs []Run, policy UnitPolicy) (float64, error) {
	if policy == nil {
		policy = MinimumPulse{}
	}
	return policy.Unit(runs)
}

// MinimumPulse takes the shortest on-run as one unit. Exact on clean
// signals; a single clipped dot shrinks the estimate.
type MinimumPulse struct{}

func (MinimumPulse) Name() string { return PolicyMinimum }

func (MinimumPulse) Unit(runs []Run) (float64, error) {
	lengths := onLengths(runs)
	if len(lengths) == 0 {
		return 0, ErrNoPulsesDetected
	}
	return float64(slices.Min(lengths)), nil
}

// PercentilePulse takes a low percentile of on-run lengths, which tolerates
// a few clipped pulses.
type PercentilePulse struct {
	Percentile float64
}

func (p PercentilePulse) Name() string { return PolicyPercentile }

func (p PercentilePulse) Unit(runs []Run) (float64, error) {
	lengths := onLengths(runs)
	if len(lengths) == 0 {
		return 0, ErrNoPulsesDetected
	}
	sorted := toSortedFloats(lengths)
	return stat.Quantile(p.Percentile/100, stat.Empirical, sorted, nil), nil
}

// MedianInterval takes the median of all interior runs no longer than twice
// the shortest on-run: dots and the gaps inside characters.
type MedianInterval struct{}

func (MedianInterval) Name() string { return PolicyMedianInterval }

func (MedianInterval) Unit(runs []Run) (float64, error) {
	lengths := onLengths(runs)
	if len(lengths) == 0 {
		return 0, ErrNoPulsesDetected
	}
	limit := 2 * slices.Min(lengths)

	var short []int
	for i, r := range runs {
		interior := i > 0 && i < len(runs)-1
		if (r.On || interior) && r.Length <= limit {
			short = append(short, r.Length)
		}
	}
	return stat.Quantile(0.5, stat.Empirical, toSortedFloats(short), nil), nil
}

func onLengths(runs []Run) []int {
	var lengths []int
	for _, r := range runs {
		if r.On {
			lengths = append(lengths, r.Length)
		}
	}
	return lengths
}

func toSortedFloats(v []int) []float64 {
	out := make([]float64, len(v))
	for i, n := range v {
		out[i] = float64(n)
	}
	slices.Sort(out)
	return out
}
