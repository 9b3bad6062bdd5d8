package zone_test

import (
	"testing"
	"time"

	"github.com/myrjola/formcoach/internal/zone"
)

func TestClassify_RejectsShortSessions(t *testing.T) {
	cfg := zone.DefaultConfig()

	// Any zone distribution is irrelevant below the minimum moving time.
	tests := []struct {
		name    string
		session zone.Session
	}{
		{
			name:    "empty session",
			session: zone.Session{MovingTimeSeconds: 0},
		},
		{
			name: "hard but short",
			session: zone.Session{
				MovingTimeSeconds: 599,
				ZoneSeconds:       [7]int{0, 0, 0, 0, 0, 0, 599},
			},
		},
		{
			name: "just under the limit",
			session: zone.Session{
				MovingTimeSeconds: 599,
				ZoneSeconds:       [7]int{599},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := cfg.Classify(tt.session); ok {
				t.Error("session under 600s moving time must not classify")
			}
		})
	}
}

func TestClassify_Stimulus(t *testing.T) {
	cfg := zone.DefaultConfig()

	tests := []struct {
		name      string
		zones     [7]int
		sweetSpot int
		want      zone.Stimulus
	}{
		{
			name:  "short burst in the highest zone is vo2max regardless of total",
			zones: [7]int{0, 0, 0, 0, 0, 0, 400},
			want:  zone.StimulusVO2Max,
		},
		{
			name:  "zone 5 over the high-intensity threshold",
			zones: [7]int{1800, 600, 0, 0, 400, 0, 0},
			want:  zone.StimulusVO2Max,
		},
		{
			name:  "long zone 4 block",
			zones: [7]int{1200, 600, 0, 700, 0, 0, 0},
			want:  zone.StimulusThreshold,
		},
		{
			name:      "zone 4 plus sweet spot combine into threshold",
			zones:     [7]int{1200, 600, 0, 400, 0, 0, 0},
			sweetSpot: 300,
			want:      zone.StimulusThreshold,
		},
		{
			name:      "sweet spot alone",
			zones:     [7]int{1800, 600, 0, 0, 0, 0, 0},
			sweetSpot: 400,
			want:      zone.StimulusSweetSpot,
		},
		{
			name:  "tempo when zone 3 outweighs half of zone 2",
			zones: [7]int{600, 1000, 700, 0, 0, 0, 0},
			want:  zone.StimulusTempo,
		},
		{
			name:  "steady endurance ride",
			zones: [7]int{600, 2400, 600, 0, 0, 0, 0},
			want:  zone.StimulusEndurance,
		},
		{
			name:  "easy spin is recovery",
			zones: [7]int{3000, 500, 0, 0, 0, 0, 0},
			want:  zone.StimulusRecovery,
		},
		{
			name:  "nothing distinctive defaults to endurance",
			zones: [7]int{900, 600, 200, 200, 0, 0, 0},
			want:  zone.StimulusEndurance,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exposure, ok := cfg.Classify(zone.Session{
				ID:                1,
				Date:              time.Now(),
				MovingTimeSeconds: 3600,
				ZoneSeconds:       tt.zones,
				SweetSpotSeconds:  tt.sweetSpot,
			})
			if !ok {
				t.Fatal("session should classify")
			}
			if exposure.Stimulus != tt.want {
				t.Errorf("want stimulus %q, got %q", tt.want, exposure.Stimulus)
			}
		})
	}
}

func TestClassify_DominantZoneTieFavorsLower(t *testing.T) {
	cfg := zone.DefaultConfig()

	exposure, ok := cfg.Classify(zone.Session{
		MovingTimeSeconds: 3600,
		ZoneSeconds:       [7]int{0, 1200, 1200, 0, 0, 0, 0},
	})
	if !ok {
		t.Fatal("session should classify")
	}
	if exposure.DominantZone != 2 {
		t.Errorf("tie should favor the lower zone, got %d", exposure.DominantZone)
	}
}

func TestClassify_TotalsAndIdentity(t *testing.T) {
	cfg := zone.DefaultConfig()

	session := zone.Session{
		ID:                42,
		Date:              time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		MovingTimeSeconds: 3600,
		ZoneSeconds:       [7]int{1000, 2000, 300, 0, 0, 0, 0},
		SweetSpotSeconds:  100,
		Load:              85,
	}

	exposure, ok := cfg.Classify(session)
	if !ok {
		t.Fatal("session should classify")
	}
	if exposure.SessionID != 42 || !exposure.Date.Equal(session.Date) {
		t.Error("exposure must carry the session identity")
	}
	if exposure.TotalSeconds != 3300 {
		t.Errorf("total should sum zone seconds, got %d", exposure.TotalSeconds)
	}
	if exposure.Load != 85 {
		t.Errorf("exposure should carry the session load, got %f", exposure.Load)
	}
}
