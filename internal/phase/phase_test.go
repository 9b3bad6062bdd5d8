package phase_test

import (
	"testing"
	"time"

	"github.com/myrjola/formcoach/internal/phase"
)

func TestForDate_Ladder(t *testing.T) {
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		weeksOut  int
		want      phase.Name
		wantWeeks int
	}{
		{name: "race week", weeksOut: 0, want: phase.RaceWeek, wantWeeks: 0},
		{name: "taper near", weeksOut: 1, want: phase.Taper, wantWeeks: 1},
		{name: "taper far", weeksOut: 2, want: phase.Taper, wantWeeks: 2},
		{name: "specialty near", weeksOut: 3, want: phase.Specialty, wantWeeks: 3},
		{name: "specialty far", weeksOut: 7, want: phase.Specialty, wantWeeks: 7},
		{name: "build near", weeksOut: 8, want: phase.Build, wantWeeks: 8},
		{name: "build far", weeksOut: 15, want: phase.Build, wantWeeks: 15},
		{name: "base", weeksOut: 16, want: phase.Base, wantWeeks: 16},
		{name: "deep base", weeksOut: 30, want: phase.Base, wantWeeks: 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := date.AddDate(0, 0, tt.weeksOut*7)
			state := phase.ForDate(date, &target)
			if state.Name != tt.want {
				t.Errorf("want phase %s, got %s", tt.want, state.Name)
			}
			if state.WeeksToTarget != tt.wantWeeks {
				t.Errorf("want %d weeks to target, got %d", tt.wantWeeks, state.WeeksToTarget)
			}
			if state.Focus == "" {
				t.Error("every phase carries a focus text")
			}
		})
	}
}

func TestForDate_NoTargetIsOpenEndedBase(t *testing.T) {
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	state := phase.ForDate(date, nil)
	if state.Name != phase.Base {
		t.Errorf("no target should yield Base, got %s", state.Name)
	}
	if state.WeeksToTarget != -1 {
		t.Errorf("no target should report -1 weeks, got %d", state.WeeksToTarget)
	}

	// A target in the past is treated the same.
	past := date.AddDate(0, 0, -7)
	state = phase.ForDate(date, &past)
	if state.Name != phase.Base || state.WeeksToTarget != -1 {
		t.Errorf("past target should yield open-ended Base, got %s/%d", state.Name, state.WeeksToTarget)
	}
}

func TestOverride(t *testing.T) {
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	target := date.AddDate(0, 0, 70)
	derived := phase.ForDate(date, &target)

	overridden := derived.Override("Specialty", "Sharpen race efforts", "fatigue trending down", 0.8)
	if overridden.Name != phase.Specialty {
		t.Errorf("well-formed override should apply, got %s", overridden.Name)
	}
	if overridden.Confidence != 0.8 || overridden.Reasoning == "" {
		t.Error("override should attach reasoning and confidence")
	}
	// Weeks to target stay date-derived.
	if overridden.WeeksToTarget != derived.WeeksToTarget {
		t.Error("override must not alter weeks to target")
	}

	malformed := derived.Override("Peak", "", "", 0.9)
	if malformed != derived {
		t.Errorf("malformed phase name must leave the state unchanged, got %+v", malformed)
	}
}
