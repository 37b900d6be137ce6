// internal/dsp/filter.go
package dsp

import (
	"errors"
	"math"
)

var (
	// ErrInvalidFilterOrder indicates the Butterworth order must be even and at least 2
	ErrInvalidFilterOrder = errors.New("filter order must be an even number >= 2")
)

// biquad is one second-order section in transposed direct form II.
// Coefficients are normalised so a0 == 1.
type biquad struct {
	b0, b1, b2 float64
	a1, a2     float64
}

// biquadState is the delay line for one section; kept apart from the
// coefficients so a filter can be shared between calls.
type biquadState struct {
	z1, z2 float64
}

func (f *biquad) process(s *biquadState, in float64) float64 {
	out := f.b0*in + s.z1
	s.z1 = f.b1*in - f.a1*out + s.z2
	s.z2 = f.b2*in - f.a2*out
	return out
}

// butterworthQ returns the Q of each second-order section of an order-n
// Butterworth prototype.
func butterworthQ(order int) []float64 {
	qs := make([]float64, order/2)
	for k := range qs {
		theta := math.Pi * float64(2*k+1) / float64(2*order)
		qs[k] = 1 / (2 * math.Cos(theta))
	}
	return qs
}

// lowpassSection and highpassSection use the bilinear transform with the
// cutoff pre-warped, so cascading the Butterworth Qs gives an exact
// Butterworth response.
func lowpassSection(sampleRate, cutoff, q float64) biquad {
	w0 := 2 * math.Pi * cutoff / sampleRate
	cosw := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * q)
	a0 := 1 + alpha
	return biquad{
		b0: (1 - cosw) / 2 / a0,
		b1: (1 - cosw) / a0,
		b2: (1 - cosw) / 2 / a0,
		a1: -2 * cosw / a0,
		a2: (1 - alpha) / a0,
	}
}

func highpassSection(sampleRate, cutoff, q float64) biquad {
	w0 := 2 * math.Pi * cutoff / sampleRate
	cosw := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * q)
	a0 := 1 + alpha
	return biquad{
		b0: (1 + cosw) / 2 / a0,
		b1: -(1 + cosw) / a0,
		b2: (1 + cosw) / 2 / a0,
		a1: -2 * cosw / a0,
		a2: (1 - alpha) / a0,
	}
}

// BandPass is a Butterworth band-pass made of an order-n high-pass at the
// lower edge cascaded with an order-n low-pass at the upper edge.
// It holds no per-call state and is safe for concurrent use.
type BandPass struct {
	sections []biquad
	low      float64
	high     float64
}

// NewBandPass designs a band-pass passing [low, high] Hz.
func NewBandPass(order int, sampleRate, low, high float64) (*BandPass, error) {
	if order < 2 || order%2 != 0 {
		return nil, ErrInvalidFilterOrder
	}
	if sampleRate <= 0 {
		return nil, ErrInvalidSampleRate
	}
	nyquist := sampleRate / 2
	if low <= 0 || high <= low || high >= nyquist {
		return nil, ErrInvalidFrequency
	}

	qs := butterworthQ(order)
	sections := make([]biquad, 0, order)
	for _, q := range qs {
		sections = append(sections, highpassSection(sampleRate, low, q))
	}
	for _, q := range qs {
		sections = append(sections, lowpassSection(sampleRate, high, q))
	}
	return &BandPass{sections: sections, low: low, high: high}, nil
}

// Edges returns the lower and upper cutoff in Hz
func (b *BandPass) Edges() (float64, float64) {
	return b.low, b.high
}

// Filter runs the cascade once, front to back.
func (b *BandPass) Filter(in []float64) []float64 {
	out := make([]float64, len(in))
	states := make([]biquadState, len(b.sections))
	for i, x := range in {
		for s := range b.sections {
			x = b.sections[s].process(&states[s], x)
		}
		out[i] = x
	}
	return out
}

// FilterZeroPhase filters forward then backward, cancelling the phase
// delay so pulse edges stay where they were.
func (b *BandPass) FilterZeroPhase(in []float64) []float64 {
	fwd := b.Filter(in)
	reverse(fwd)
	out := b.Filter(fwd)
	reverse(out)
	return out
}

func reverse(x []float64) {
	for i, j := 0, len(x)-1; i < j; i, j = i+1, j-1 {
		x[i], x[j] = x[j], x[i]
	}
}
