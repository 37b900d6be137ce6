// internal/dsp/goertzel_test.go
package dsp

import (
	"math"
	"testing"
)

// 800 samples at 8 kHz holds a whole number of 550 Hz cycles
const testBlockSize = 800

func TestNewGoertzel_ValidConfig(t *testing.T) {
	cfg := GoertzelConfig{
		TargetFrequency: testToneFrequency,
		SampleRate:      testSampleRate,
		BlockSize:       testBlockSize,
	}

	g, err := NewGoertzel(cfg)
	if err != nil {
		t.Fatalf("NewGoertzel failed with valid config: %v", err)
	}
	if g.BlockSize() != testBlockSize {
		t.Errorf("BlockSize() = %d, want %d", g.BlockSize(), testBlockSize)
	}
}

func TestNewGoertzel_InvalidConfig(t *testing.T) {
	testCases := []struct {
		name    string
		cfg     GoertzelConfig
		wantErr error
	}{
		{"zero block", GoertzelConfig{testToneFrequency, testSampleRate, 0}, ErrInvalidBlockSize},
		{"negative block", GoertzelConfig{testToneFrequency, testSampleRate, -1}, ErrInvalidBlockSize},
		{"zero sample rate", GoertzelConfig{testToneFrequency, 0, testBlockSize}, ErrInvalidSampleRate},
		{"negative sample rate", GoertzelConfig{testToneFrequency, -8000, testBlockSize}, ErrInvalidSampleRate},
		{"zero frequency", GoertzelConfig{0, testSampleRate, testBlockSize}, ErrInvalidFrequency},
		{"at nyquist", GoertzelConfig{testSampleRate / 2, testSampleRate, testBlockSize}, ErrInvalidFrequency},
		{"above nyquist", GoertzelConfig{5000, testSampleRate, testBlockSize}, ErrInvalidFrequency},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewGoertzel(tc.cfg)
			if err != tc.wantErr {
				t.Errorf("expected %v, got: %v", tc.wantErr, err)
			}
		})
	}
}

func TestGoertzel_Magnitude_PureSineWave(t *testing.T) {
	g, _ := NewGoertzel(GoertzelConfig{testToneFrequency, testSampleRate, testBlockSize})

	for _, amplitude := range []float64{1.0, 0.5, 0.1} {
		samples := generateSineWave(testToneFrequency, testSampleRate, testBlockSize, amplitude)
		mag, err := g.Magnitude(samples)
		if err != nil {
			t.Fatalf("Magnitude() error = %v", err)
		}
		if math.Abs(mag-amplitude) > amplitude*tolerancePercent {
			t.Errorf("Magnitude() for amplitude %v = %v", amplitude, mag)
		}
	}
}

func TestGoertzel_Magnitude_Silence(t *testing.T) {
	g, _ := NewGoertzel(GoertzelConfig{testToneFrequency, testSampleRate, testBlockSize})

	mag, err := g.Magnitude(make([]float64, testBlockSize))
	if err != nil {
		t.Fatalf("Magnitude() error = %v", err)
	}
	if mag != 0 {
		t.Errorf("Magnitude(silence) = %v, want 0", mag)
	}
}

func TestGoertzel_Magnitude_OffFrequency(t *testing.T) {
	g, _ := NewGoertzel(GoertzelConfig{testToneFrequency, testSampleRate, testBlockSize})

	samples := generateSineWave(1000, testSampleRate, testBlockSize, 1.0)
	mag, _ := g.Magnitude(samples)
	if mag > 0.05 {
		t.Errorf("Magnitude() for off-frequency tone = %v, want < 0.05", mag)
	}
}

func TestGoertzel_Magnitude_InsufficientSamples(t *testing.T) {
	g, _ := NewGoertzel(GoertzelConfig{testToneFrequency, testSampleRate, testBlockSize})

	if _, err := g.Magnitude(make([]float64, testBlockSize-1)); err != ErrInsufficientSamples {
		t.Errorf("expected ErrInsufficientSamples, got: %v", err)
	}
}

func TestGoertzel_MeanMagnitude(t *testing.T) {
	g, _ := NewGoertzel(GoertzelConfig{testToneFrequency, testSampleRate, testBlockSize})

	samples := generateSineWave(testToneFrequency, testSampleRate, 3*testBlockSize+10, 0.8)
	if m := g.MeanMagnitude(samples); math.Abs(m-0.8) > 0.8*tolerancePercent {
		t.Errorf("MeanMagnitude() = %v, want about 0.8", m)
	}
	if m := g.MeanMagnitude(samples[:10]); m != 0 {
		t.Errorf("MeanMagnitude(short) = %v, want 0", m)
	}
}

func TestFindTone(t *testing.T) {
	for _, freq := range []float64{450, 700, 1000} {
		samples := toneBurst(16000, 2000, 12000, freq, testSampleRate, 0.6)
		got, ok := FindTone(samples, testSampleRate, DefaultAutoMinHz, DefaultAutoMaxHz, DefaultAutoStepHz)
		if !ok {
			t.Fatalf("FindTone(%v Hz) found nothing", freq)
		}
		if math.Abs(got-freq) > DefaultAutoStepHz {
			t.Errorf("FindTone(%v Hz) = %v", freq, got)
		}
	}
}

func TestFindTone_Silence(t *testing.T) {
	if _, ok := FindTone(make([]float64, 8000), testSampleRate, 300, 1200, 10); ok {
		t.Error("FindTone(silence) ok = true, want false")
	}
	if _, ok := FindTone(nil, testSampleRate, 300, 1200, 10); ok {
		t.Error("FindTone(nil) ok = true, want false")
	}
}

func BenchmarkGoertzel_Magnitude(b *testing.B) {
	g, _ := NewGoertzel(GoertzelConfig{testToneFrequency, testSampleRate, testBlockSize})
	samples := generateSineWave(testToneFrequency, testSampleRate, testBlockSize, 1.0)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = g.Magnitude(samples)
	}
}
