package dsp

import "math"

// Test configuration constants - these mirror config file defaults
const (
	testSampleRate    = 8000.0
	testToneFrequency = 550.0
	tolerancePercent  = 0.05
)

// generateSineWave creates a sine wave at the specified frequency
func generateSineWave(frequency, sampleRate float64, numSamples int, amplitude float64) []float64 {
	samples := make([]float64, numSamples)
	for i := range samples {
		samples[i] = amplitude * math.Sin(2*math.Pi*frequency*float64(i)/sampleRate)
	}
	return samples
}

// toneBurst places a tone between start and end (samples) inside silence
func toneBurst(total, start, end int, frequency, sampleRate, amplitude float64) []float64 {
	samples := make([]float64, total)
	for i := start; i < end; i++ {
		samples[i] = amplitude * math.Sin(2*math.Pi*frequency*float64(i)/sampleRate)
	}
	return samples
}

func rms(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range x {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(x)))
}
