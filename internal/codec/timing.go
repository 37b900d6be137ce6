// internal/codec/timing.go
package codec

import "time"

// Morse code timing ratios (ITU standard), in dot units
const (
	// DahDitRatio is the ratio of dash duration to dot duration
	DahDitRatio = 3.0
	// IntraCharSpaceRatio is the space between elements of one character
	IntraCharSpaceRatio = 1.0
	// InterCharSpaceRatio is the space between characters
	InterCharSpaceRatio = 3.0
	// WordSpaceRatio is the space between words
	WordSpaceRatio = 7.0

	// DitsPerWord is the standard word "PARIS" = 50 dot units
	DitsPerWord = 50.0
)

// DotDuration returns the dot length for a PARIS words-per-minute speed.
func DotDuration(wpm float64) time.Duration {
	if wpm <= 0 {
		return 0
	}
	return time.Duration(float64(time.Minute) / (wpm * DitsPerWord))
}

// WPM returns the PARIS speed for a dot length.
func WPM(dot time.Duration) float64 {
	if dot <= 0 {
		return 0
	}
	return float64(time.Minute) / (float64(dot) * DitsPerWord)
}
