package curve_test

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/myrjola/formcoach/internal/curve"
)

func TestNormalize(t *testing.T) {
	points := []curve.Point{
		{DurationSeconds: 300, Watts: 310},
		{DurationSeconds: 60, Watts: 420},
		{DurationSeconds: 300, Watts: 290}, // worse duplicate, dropped
		{DurationSeconds: 600, Watts: 330}, // violates mean-maximal shape
		{DurationSeconds: 0, Watts: 500},   // junk
		{DurationSeconds: 1200, Watts: -1}, // junk
	}

	want := []curve.Point{
		{DurationSeconds: 60, Watts: 420},
		{DurationSeconds: 300, Watts: 330}, // raised to the 600s ceiling
		{DurationSeconds: 600, Watts: 330},
	}

	if diff := cmp.Diff(want, curve.Normalize(points)); diff != "" {
		t.Errorf("normalize mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalyze_CriticalPowerRegression(t *testing.T) {
	// Synthetic athlete obeying work = 250·t + 20000 exactly.
	cp, wPrime := 250.0, 20000.0
	var points []curve.Point
	for _, secs := range []int{120, 180, 300, 600, 900, 1200} {
		points = append(points, curve.Point{
			DurationSeconds: secs,
			Watts:           cp + wPrime/float64(secs),
		})
	}

	estimate := curve.Analyze(points, 0)

	if estimate.Method != curve.MethodCriticalPower {
		t.Fatalf("want method %s, got %s", curve.MethodCriticalPower, estimate.Method)
	}
	if math.Abs(estimate.ThresholdWatts-cp) > 1 {
		t.Errorf("want threshold ≈ %f, got %f", cp, estimate.ThresholdWatts)
	}
	if math.Abs(estimate.AnaerobicCapacityJoules-wPrime) > 200 {
		t.Errorf("want W′ ≈ %f, got %f", wPrime, estimate.AnaerobicCapacityJoules)
	}
	if estimate.MaxWatts != points[0].Watts {
		t.Errorf("max sustained output should be the highest point, got %f", estimate.MaxWatts)
	}
}

func TestAnalyze_FallbackChain(t *testing.T) {
	tests := []struct {
		name            string
		points          []curve.Point
		manualThreshold float64
		wantMethod      string
		wantThreshold   float64
	}{
		{
			name: "too few regression points fall back to best 20 minutes",
			points: []curve.Point{
				{DurationSeconds: 60, Watts: 400},
				{DurationSeconds: 1200, Watts: 300},
			},
			wantMethod:    curve.MethodBest20,
			wantThreshold: 285, // 95% of 300
		},
		{
			name: "no 20-minute point falls back to best hour",
			points: []curve.Point{
				{DurationSeconds: 3600, Watts: 250},
			},
			wantMethod:    curve.MethodBest60,
			wantThreshold: 250,
		},
		{
			name:            "empty curve falls back to manual threshold",
			points:          nil,
			manualThreshold: 240,
			wantMethod:      curve.MethodManual,
			wantThreshold:   240,
		},
		{
			name:          "nothing available stamps none",
			points:        nil,
			wantMethod:    curve.MethodNone,
			wantThreshold: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			estimate := curve.Analyze(tt.points, tt.manualThreshold)
			if estimate.Method != tt.wantMethod {
				t.Errorf("want method %s, got %s", tt.wantMethod, estimate.Method)
			}
			if math.Abs(estimate.ThresholdWatts-tt.wantThreshold) > 0.01 {
				t.Errorf("want threshold %f, got %f", tt.wantThreshold, estimate.ThresholdWatts)
			}
		})
	}
}

func TestAnalyze_AnaerobicFromOneMinuteSurplus(t *testing.T) {
	points := []curve.Point{
		{DurationSeconds: 60, Watts: 400},
		{DurationSeconds: 1200, Watts: 300},
	}

	estimate := curve.Analyze(points, 0)

	// Threshold is 285 via best-20; a minute at 400W gives 60·(400−285).
	want := 60 * (400 - 285.0)
	if math.Abs(estimate.AnaerobicCapacityJoules-want) > 1 {
		t.Errorf("want anaerobic capacity %f, got %f", want, estimate.AnaerobicCapacityJoules)
	}
}
