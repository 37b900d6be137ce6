package dsp

import (
	"math"
	"testing"
)

func TestAnalyticMagnitude_SteadyTone(t *testing.T) {
	// 55 whole cycles, so the tone sits exactly on an FFT bin
	in := generateSineWave(testToneFrequency, testSampleRate, 800, 0.7)
	env := AnalyticMagnitude(in)

	if len(env) != len(in) {
		t.Fatalf("len(env) = %d, want %d", len(env), len(in))
	}
	for i, v := range env {
		if math.Abs(v-0.7) > 1e-6 {
			t.Fatalf("env[%d] = %v, want 0.7", i, v)
		}
	}
}

func TestAnalyticMagnitude_Edges(t *testing.T) {
	if got := AnalyticMagnitude(nil); got != nil {
		t.Errorf("AnalyticMagnitude(nil) = %v, want nil", got)
	}

	got := AnalyticMagnitude([]float64{-2})
	if len(got) != 1 || math.Abs(got[0]-2) > 1e-12 {
		t.Errorf("AnalyticMagnitude([-2]) = %v, want [2]", got)
	}

	for _, v := range AnalyticMagnitude(make([]float64, 7)) {
		if v != 0 {
			t.Fatalf("AnalyticMagnitude(zeros) contains %v", v)
		}
	}
}

func TestAnalyticMagnitude_LongInputInBlocks(t *testing.T) {
	in := generateSineWave(testToneFrequency, testSampleRate, 5*hilbertBlock+123, 0.7)
	env := AnalyticMagnitude(in)

	if len(env) != len(in) {
		t.Fatalf("len(env) = %d, want %d", len(env), len(in))
	}
	for i := hilbertMargin; i < len(env)-hilbertMargin; i++ {
		if math.Abs(env[i]-0.7) > 0.01 {
			t.Fatalf("env[%d] = %v, want about 0.7", i, env[i])
		}
	}
}

func TestAnalyticMagnitude_BlocksMatchWholeSignal(t *testing.T) {
	// burst edges fall inside blocks and on either side of a block seam
	in := toneBurst(50000, 10000, 30000, testToneFrequency, testSampleRate, 0.5)
	blocked := AnalyticMagnitude(in)
	whole := analyticMagnitude(in)

	for i := hilbertMargin; i < len(in)-hilbertMargin; i++ {
		if math.Abs(blocked[i]-whole[i]) > 0.01 {
			t.Fatalf("env[%d] = %v, whole-signal %v", i, blocked[i], whole[i])
		}
	}
}

func TestRectify(t *testing.T) {
	got := Rectify([]float64{-1, 0.5, 0})
	want := []float64{1, 0.5, 0}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Rectify()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestMovingAverage(t *testing.T) {
	tests := []struct {
		name   string
		in     []float64
		window int
		want   []float64
	}{
		{"centred", []float64{0, 0, 3, 0, 0}, 3, []float64{0, 1, 1, 1, 0}},
		{"window one copies", []float64{1, 2, 3}, 1, []float64{1, 2, 3}},
		{"window zero copies", []float64{1, 2}, 0, []float64{1, 2}},
		{"even window", []float64{4, 0, 0, 0}, 2, []float64{4, 2, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MovingAverage(tt.in, tt.window)
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.want))
			}
			for i := range tt.want {
				if math.Abs(got[i]-tt.want[i]) > 1e-12 {
					t.Errorf("got[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestMovingAverage_NonNegative(t *testing.T) {
	in := []float64{1e16, 1, 0, 0, 0, 0}
	for i, v := range MovingAverage(in, 3) {
		if v < 0 {
			t.Errorf("MovingAverage()[%d] = %v, want >= 0", i, v)
		}
	}
}
