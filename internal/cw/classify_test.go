package cw

import (
	"errors"
	"slices"
	"testing"
)

func TestUnits(t *testing.T) {
	tests := []struct {
		length int
		unit   float64
		want   int
	}{
		{60, 60, 1},
		{89, 60, 1},
		{91, 60, 2},
		{180, 60, 3},
		{1000, 60, 7},
		{10, 60, 0},
		{100, 0, 7},
	}

	for _, tt := range tests {
		if got := Units(tt.length, tt.unit, DefaultMaxUnits); got != tt.want {
			t.Errorf("Units(%d, %v) = %d, want %d", tt.length, tt.unit, got, tt.want)
		}
	}
}

func TestClassify(t *testing.T) {
	cfg := DefaultClassifyConfig()

	tests := []struct {
		name string
		runs []Run
		want []Symbol
	}{
		{
			name: "edges dropped",
			runs: runsFor(900, 60, 900),
			want: []Symbol{Dot},
		},
		{
			name: "letter A",
			runs: runsFor(10, 60, 60, 180, 10),
			want: []Symbol{Dot, Dash},
		},
		{
			name: "letter gap",
			runs: runsFor(10, 60, 180, 60, 10),
			want: []Symbol{Dot, LetterGap, Dot},
		},
		{
			name: "word gap",
			runs: runsFor(10, 60, 420, 180, 10),
			want: []Symbol{Dot, WordGap, Dash},
		},
		{
			name: "long gap clamps to word gap",
			runs: runsFor(10, 60, 6000, 60, 10),
			want: []Symbol{Dot, WordGap, Dot},
		},
		{
			name: "two-unit pulse is a dot",
			runs: runsFor(10, 120, 10),
			want: []Symbol{Dot},
		},
		{
			name: "two-unit gap is intra-character",
			runs: runsFor(10, 60, 120, 60, 10),
			want: []Symbol{Dot, Dot},
		},
		{
			name: "six-unit gap is a letter gap",
			runs: runsFor(10, 60, 360, 60, 10),
			want: []Symbol{Dot, LetterGap, Dot},
		},
		{
			name: "starts on",
			runs: []Run{{true, 180}, {false, 60}, {true, 60}},
			want: []Symbol{Dash, Dot},
		},
		{
			name: "no pulses",
			runs: runsFor(100),
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.runs, 60, cfg)
			if !slices.Equal(got, tt.want) {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassify_NoSeparatorsAtEnds(t *testing.T) {
	got := Classify(runsFor(5000, 60, 60, 60, 5000), 60, DefaultClassifyConfig())
	if len(got) == 0 {
		t.Fatal("Classify() returned nothing")
	}
	for _, s := range []Symbol{got[0], got[len(got)-1]} {
		if s == LetterGap || s == WordGap {
			t.Errorf("Classify() = %v starts or ends with a separator", got)
		}
	}
}

func TestClassifyConfig_Validate(t *testing.T) {
	if err := DefaultClassifyConfig().Validate(); err != nil {
		t.Errorf("default Validate() error = %v", err)
	}

	bad := []ClassifyConfig{
		{MaxUnits: 7, DotDashCutoff: 3, LetterGapCutoff: 3, WordGapCutoff: 7},
		{MaxUnits: 7, DotDashCutoff: 2, LetterGapCutoff: 7, WordGapCutoff: 7},
		{MaxUnits: 6, DotDashCutoff: 2, LetterGapCutoff: 3, WordGapCutoff: 7},
		{MaxUnits: 7, DotDashCutoff: 0, LetterGapCutoff: 3, WordGapCutoff: 7},
	}
	for _, cfg := range bad {
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidCutoffs) {
			t.Errorf("Validate(%+v) error = %v, want %v", cfg, err, ErrInvalidCutoffs)
		}
	}
}
