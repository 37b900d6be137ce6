// internal/cw/classify.go
package cw

import (
	"errors"
	"math"
)

// Classifier defaults, in units
const (
	DefaultMaxUnits        = 7
	DefaultDotDashCutoff   = 2
	DefaultLetterGapCutoff = 3
	DefaultWordGapCutoff   = 7
)

// ErrInvalidCutoffs indicates cutoffs that are not 0 < dot < letter < word <= max
var ErrInvalidCutoffs = errors.New("cutoffs must satisfy 0 < dot_dash < letter_gap < word_gap <= max_units")

// ClassifyConfig holds the unit-count boundaries between symbols.
type ClassifyConfig struct {
	// MaxUnits clamps the unit count of any single run
	MaxUnits int
	// DotDashCutoff is the largest on-run unit count read as a dot
	DotDashCutoff int
	// LetterGapCutoff is the smallest off-run unit count read as a letter gap
	LetterGapCutoff int
	// WordGapCutoff is the smallest off-run unit count read as a word gap
	WordGapCutoff int
}

// DefaultClassifyConfig returns the ITU boundaries: dash at 3 units,
// letter gap at 3, word gap at 7.
func DefaultClassifyConfig() ClassifyConfig {
	return ClassifyConfig{
		MaxUnits:        DefaultMaxUnits,
		DotDashCutoff:   DefaultDotDashCutoff,
		LetterGapCutoff: DefaultLetterGapCutoff,
		WordGapCutoff:   DefaultWordGapCutoff,
	}
}

// Validate checks the cutoff ordering
func (c ClassifyConfig) Validate() error {
	if c.DotDashCutoff <= 0 || c.DotDashCutoff >= c.LetterGapCutoff ||
		c.LetterGapCutoff >= c.WordGapCutoff || c.WordGapCutoff > c.MaxUnits {
		return ErrInvalidCutoffs
	}
	return nil
}

// Units converts a run length into a whole number of units, clamped to
// [0, maxUnits].
func Units(length int, unit float64, maxUnits int) int {
	if unit <= 0 {
		return maxUnits
	}
	n := int(math.Round(float64(length) / unit))
	return max(0, min(n, maxUnits))
}

// Classify maps runs to symbols. Off-runs before the first and after the
// last on-run carry no information and are dropped; intra-character gaps
// emit nothing.
func Classify(runs []Run, unit float64, cfg ClassifyConfig) []Symbol {
	first, last := -1, -1
	for i, r := range runs {
		if r.On {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	if first < 0 {
		return nil
	}

	var symbols []Symbol
	for _, r := range runs[first : last+1] {
		n := Units(r.Length, unit, cfg.MaxUnits)
		switch {
		case r.On && n <= cfg.DotDashCutoff:
			symbols = append(symbols, Dot)
		case r.On:
			symbols = append(symbols, Dash)
		case n < cfg.LetterGapCutoff:
		case n < cfg.WordGapCutoff:
			symbols = append(symbols, LetterGap)
		default:
			symbols = append(symbols, WordGap)
		}
	}
	return symbols
}
