package audio

import (
	"errors"
	"testing"
	"time"
)

func TestNewWaveform(t *testing.T) {
	tests := []struct {
		name       string
		samples    []float64
		sampleRate int
		wantErr    error
	}{
		{"valid", []float64{0, 0.5, -0.5}, 8000, nil},
		{"empty", nil, 8000, ErrEmptyInput},
		{"zero rate", []float64{1}, 0, ErrUnsupportedFormat},
		{"negative rate", []float64{1}, -44100, ErrUnsupportedFormat},
		{"zero rate and empty", nil, 0, ErrUnsupportedFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewWaveform(tt.samples, tt.sampleRate)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("NewWaveform() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("NewWaveform() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestWaveform_Duration(t *testing.T) {
	w := Waveform{Samples: make([]float64, 4000), SampleRate: 8000}
	if got := w.Duration(); got != 500*time.Millisecond {
		t.Errorf("Duration() = %v, want 500ms", got)
	}
	if got := (Waveform{Samples: make([]float64, 10)}).Duration(); got != 0 {
		t.Errorf("Duration() with zero rate = %v, want 0", got)
	}
}

func TestDownmix(t *testing.T) {
	stereo := []float64{1, 0, 0.5, -0.5, -1, 1}

	first, err := Downmix(stereo, 2, DownmixFirst)
	if err != nil {
		t.Fatalf("Downmix(first) error = %v", err)
	}
	wantFirst := []float64{1, 0.5, -1}
	for i := range wantFirst {
		if first[i] != wantFirst[i] {
			t.Errorf("first[%d] = %v, want %v", i, first[i], wantFirst[i])
		}
	}

	avg, err := Downmix(stereo, 2, DownmixAverage)
	if err != nil {
		t.Fatalf("Downmix(average) error = %v", err)
	}
	wantAvg := []float64{0.5, 0, 0}
	for i := range wantAvg {
		if avg[i] != wantAvg[i] {
			t.Errorf("avg[%d] = %v, want %v", i, avg[i], wantAvg[i])
		}
	}
}

func TestDownmix_MonoCopies(t *testing.T) {
	in := []float64{0.1, 0.2}
	out, err := Downmix(in, 1, DownmixAverage)
	if err != nil {
		t.Fatalf("Downmix() error = %v", err)
	}
	out[0] = 9
	if in[0] != 0.1 {
		t.Error("Downmix() returned a slice aliasing its input")
	}
}

func TestDownmix_Malformed(t *testing.T) {
	tests := []struct {
		name     string
		data     []float64
		channels int
	}{
		{"zero channels", []float64{1, 2}, 0},
		{"negative channels", []float64{1, 2}, -2},
		{"partial frame", []float64{1, 2, 3}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Downmix(tt.data, tt.channels, DownmixFirst)
			if !errors.Is(err, ErrUnsupportedFormat) {
				t.Errorf("Downmix() error = %v, want %v", err, ErrUnsupportedFormat)
			}
		})
	}
}

func TestFromInterleaved(t *testing.T) {
	w, err := FromInterleaved([]float64{0.2, 0.4, 0.6, 0.8}, 2, 16000, DownmixAverage)
	if err != nil {
		t.Fatalf("FromInterleaved() error = %v", err)
	}
	if w.SampleRate != 16000 || len(w.Samples) != 2 {
		t.Fatalf("FromInterleaved() = %+v", w)
	}

	if _, err := FromInterleaved(nil, 2, 16000, DownmixFirst); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("FromInterleaved(nil) error = %v, want %v", err, ErrEmptyInput)
	}
}

func TestParseDownmixMode(t *testing.T) {
	tests := []struct {
		in      string
		want    DownmixMode
		wantErr bool
	}{
		{"first", DownmixFirst, false},
		{"", DownmixFirst, false},
		{"average", DownmixAverage, false},
		{"left", DownmixFirst, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDownmixMode(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDownmixMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseDownmixMode(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
