// internal/dsp/hilbert.go
package dsp

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

const (
	// hilbertBlock is the FFT length for long inputs. A power of two keeps
	// go-dsp on its radix-2 path, so memory stays bounded.
	hilbertBlock = 1 << 14
	// hilbertMargin is discarded at each block edge
	hilbertMargin = 1 << 11
)

// AnalyticMagnitude returns |x + jH{x}|, the instantaneous amplitude of a
// narrow-band signal, computed in the frequency domain. Inputs longer than
// one block are processed in overlapping blocks.
func AnalyticMagnitude(x []float64) []float64 {
	n := len(x)
	if n <= hilbertBlock {
		return analyticMagnitude(x)
	}

	out := make([]float64, n)
	core := hilbertBlock - 2*hilbertMargin
	block := make([]float64, hilbertBlock)
	for start := 0; start < n; start += core {
		lo := start - hilbertMargin
		clear(block)
		for i := range block {
			if j := lo + i; j >= 0 && j < n {
				block[i] = x[j]
			}
		}
		mag := analyticMagnitude(block)
		end := min(start+core, n)
		copy(out[start:end], mag[hilbertMargin:hilbertMargin+end-start])
	}
	return out
}

func analyticMagnitude(x []float64) []float64 {
	n := len(x)
	if n == 0 {
		return nil
	}

	spectrum := fft.FFTReal(x)

	// Keep DC (and Nyquist for even n), double positive frequencies, zero
	// the negative ones.
	half := n / 2
	for k := 1; k < n; k++ {
		switch {
		case n%2 == 0 && k == half:
		case k <= (n-1)/2:
			spectrum[k] *= 2
		default:
			spectrum[k] = 0
		}
	}

	analytic := fft.IFFT(spectrum)
	out := make([]float64, n)
	for i, v := range analytic {
		out[i] = cmplx.Abs(v)
	}
	return out
}

// Rectify returns |x|.
func Rectify(x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = math.Abs(v)
	}
	return out
}

// MovingAverage smooths x with a centred window of the given length.
// Windows are truncated at the edges. Meant for envelopes: round-off
// below zero is clamped to 0.
func MovingAverage(x []float64, window int) []float64 {
	out := make([]float64, len(x))
	if window <= 1 {
		copy(out, x)
		return out
	}

	left := window / 2
	right := window - 1 - left

	prefix := make([]float64, len(x)+1)
	for i, v := range x {
		prefix[i+1] = prefix[i] + v
	}

	for i := range x {
		lo := max(0, i-left)
		hi := min(len(x), i+right+1)
		v := (prefix[hi] - prefix[lo]) / float64(hi-lo)
		if v < 0 {
			v = 0
		}
		out[i] = v
	}
	return out
}
