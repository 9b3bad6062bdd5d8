package workout_test

import (
	"testing"

	"github.com/myrjola/formcoach/internal/workout"
)

func loadCatalog(t *testing.T) workout.Catalog {
	t.Helper()
	catalog, err := workout.LoadCatalog()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	return catalog
}

func TestCeiling(t *testing.T) {
	tests := []struct {
		name string
		in   workout.SelectionInputs
		want int
	}{
		{
			name: "no constraint defaults conservatively",
			in:   workout.SelectionInputs{Form: 5, Recovery: workout.RecoveryHigh},
			want: 3,
		},
		{
			name: "A event tomorrow forces easy",
			in:   workout.SelectionInputs{Form: 0, Recovery: workout.RecoveryHigh, EventTomorrow: "A"},
			want: 2,
		},
		{
			name: "C event tomorrow allows moderate",
			in:   workout.SelectionInputs{Form: 0, Recovery: workout.RecoveryHigh, EventTomorrow: "C"},
			want: 3,
		},
		{
			name: "B event yesterday forces easy",
			in:   workout.SelectionInputs{Form: 0, Recovery: workout.RecoveryHigh, EventYesterday: "B"},
			want: 2,
		},
		{
			name: "deep fatigue forces easy",
			in:   workout.SelectionInputs{Form: -25, Recovery: workout.RecoveryHigh},
			want: 2,
		},
		{
			name: "mild fatigue caps at moderate",
			in:   workout.SelectionInputs{Form: -15, Recovery: workout.RecoveryHigh},
			want: 3,
		},
		{
			name: "hard session yesterday caps at moderate",
			in:   workout.SelectionInputs{Form: 5, Recovery: workout.RecoveryHigh, LastIntensity: 5},
			want: 3,
		},
		{
			name: "low recovery caps at moderate",
			in:   workout.SelectionInputs{Form: 5, Recovery: workout.RecoveryLow},
			want: 3,
		},
		{
			name: "minimum over all active constraints wins",
			in: workout.SelectionInputs{
				Form:          -25,
				Recovery:      workout.RecoveryLow,
				EventTomorrow: "C",
				LastIntensity: 4,
			},
			want: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ceiling, justification := workout.Ceiling(tt.in)
			if ceiling != tt.want {
				t.Errorf("want ceiling %d, got %d", tt.want, ceiling)
			}
			if len(justification) == 0 {
				t.Error("ceiling must always be justified")
			}
		})
	}
}

func TestSelect_DeepFatigueNeverExceedsIntensityTwo(t *testing.T) {
	catalog := loadCatalog(t)

	// Sweep phases and recovery tiers, form -25 must pin everything to easy.
	for _, phase := range []string{"Base", "Build", "Specialty", "Taper", "Race-Week"} {
		for _, recovery := range []workout.Recovery{workout.RecoveryLow, workout.RecoveryModerate, workout.RecoveryHigh} {
			selection := catalog.Select(workout.SelectionInputs{
				Form:     -25,
				Recovery: recovery,
				Phase:    phase,
			})
			if selection.Candidate.Intensity > 2 {
				t.Errorf("phase %s recovery %s: form -25 selected intensity %d",
					phase, recovery, selection.Candidate.Intensity)
			}
		}
	}
}

func TestSelect_NeverReturnsEmpty(t *testing.T) {
	catalog := loadCatalog(t)

	// Hostile inputs across the board still yield a recommendation.
	inputs := []workout.SelectionInputs{
		{Form: -90, Recovery: workout.RecoveryLow, Phase: "Race-Week", EventTomorrow: "A", EventYesterday: "A"},
		{Form: 60, Recovery: workout.RecoveryLow, Phase: "Base", LastIntensity: 5},
		{Form: 0, Recovery: "", Phase: "Taper"},
		{Form: 0, Recovery: workout.RecoveryHigh, Phase: ""},
	}

	for _, in := range inputs {
		selection := catalog.Select(in)
		if selection.Candidate.ID == "" {
			t.Errorf("inputs %+v: selector returned no candidate", in)
		}
		if selection.Candidate.Intensity > selection.Ceiling {
			t.Errorf("inputs %+v: intensity %d exceeds ceiling %d",
				in, selection.Candidate.Intensity, selection.Ceiling)
		}
	}
}

func TestSelect_FreshAthleteGetsQualityWork(t *testing.T) {
	catalog := loadCatalog(t)

	selection := catalog.Select(workout.SelectionInputs{
		Form:     5,
		Recovery: workout.RecoveryHigh,
		Phase:    "Build",
	})

	// Form 5, Build phase, high recovery, no events: a moderate or hard
	// session, not the injected easy default.
	if selection.Candidate.ID == catalog.EasyDefault().ID {
		t.Errorf("fresh athlete should not get the easy default, got %s", selection.Candidate.ID)
	}
	if selection.Candidate.Intensity < 3 || selection.Candidate.Intensity > 4 {
		t.Errorf("want intensity 3-4, got %d (%s)", selection.Candidate.Intensity, selection.Candidate.ID)
	}
}

func TestSelect_EventTomorrowOverridesEverything(t *testing.T) {
	catalog := loadCatalog(t)

	selection := catalog.Select(workout.SelectionInputs{
		Form:          0,
		Recovery:      workout.RecoveryHigh,
		Phase:         "Build",
		EventTomorrow: "A",
	})

	if selection.Ceiling != 2 {
		t.Errorf("A event tomorrow must force ceiling 2, got %d", selection.Ceiling)
	}
	if selection.Candidate.Intensity > 2 {
		t.Errorf("selected intensity %d exceeds the event-eve ceiling", selection.Candidate.Intensity)
	}
}

func TestSelect_VarietyPrefersLeastRecentStimulus(t *testing.T) {
	catalog := loadCatalog(t)

	in := workout.SelectionInputs{
		Form:     5,
		Recovery: workout.RecoveryHigh,
		Phase:    "Build",
		StimulusCounts: map[string]int{
			"sweetspot": 4,
			"tempo":     3,
			"endurance": 0,
		},
	}

	selection := catalog.Select(in)
	if selection.Candidate.Stimulus != "endurance" {
		t.Errorf("want the least-recently-used stimulus, got %s (%s)",
			selection.Candidate.Stimulus, selection.Candidate.ID)
	}
}

func TestSelect_AlternatesStayWithinCeiling(t *testing.T) {
	catalog := loadCatalog(t)

	selection := catalog.Select(workout.SelectionInputs{
		Form:     5,
		Recovery: workout.RecoveryHigh,
		Phase:    "Build",
	})

	if len(selection.Alternates) == 0 {
		t.Fatal("a permissive day should leave alternates")
	}
	for _, alternate := range selection.Alternates {
		if alternate.Intensity > selection.Ceiling {
			t.Errorf("alternate %s intensity %d exceeds ceiling %d",
				alternate.ID, alternate.Intensity, selection.Ceiling)
		}
	}
}
