package zone_test

import (
	"testing"
	"time"

	"github.com/myrjola/formcoach/internal/zone"
)

var scoringNow = time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)

// thresholdExposure builds an exposure whose zone 4 time attributes it to the
// threshold category.
func thresholdExposure(id int64, daysAgo int, zone4Seconds int, load float64) zone.Exposure {
	return zone.Exposure{
		SessionID:    id,
		Date:         scoringNow.AddDate(0, 0, -daysAgo),
		ZoneSeconds:  [7]int{600, 600, 0, zone4Seconds, 0, 0, 0},
		TotalSeconds: 1200 + zone4Seconds,
		DominantZone: 4,
		Stimulus:     zone.StimulusThreshold,
		Load:         load,
	}
}

func TestScore_EmptyWindowIsColdStart(t *testing.T) {
	result := zone.Score(nil, 28, nil, scoringNow)

	for _, cat := range zone.Categories() {
		prog, ok := result[cat]
		if !ok {
			t.Fatalf("category %s missing from result", cat)
		}
		if prog.Level != 1.0 {
			t.Errorf("category %s: empty window level must be exactly 1.0, got %f", cat, prog.Level)
		}
		if prog.Trend != zone.TrendStable {
			t.Errorf("category %s: empty window trend must be stable, got %s", cat, prog.Trend)
		}
	}
}

func TestScore_LevelStaysClamped(t *testing.T) {
	// Pile up far more threshold volume than the baseline asks for.
	var exposures []zone.Exposure
	for i := range 28 {
		exposures = append(exposures, thresholdExposure(int64(i), i, 3600, 120))
	}

	result := zone.Score(exposures, 28, nil, scoringNow)

	for _, cat := range zone.Categories() {
		level := result[cat].Level
		if level < 1.0 || level > 10.0 {
			t.Errorf("category %s: level %f outside [1,10]", cat, level)
		}
	}
}

func TestScore_AttributionNeedsMappedTime(t *testing.T) {
	// 200s of zone 4 is under the attribution cutoff: minutes still count,
	// but the session does not.
	exposures := []zone.Exposure{thresholdExposure(1, 3, 200, 50)}

	result := zone.Score(exposures, 28, nil, scoringNow)

	if got := result[zone.CategoryThreshold].Sessions; got != 0 {
		t.Errorf("sub-attribution session must not count, got %d sessions", got)
	}
	// The same exposure fully counts toward endurance through zones 1-2.
	if got := result[zone.CategoryEndurance].Sessions; got != 1 {
		t.Errorf("endurance should count the session, got %d", got)
	}
}

func TestScore_Trend(t *testing.T) {
	tests := []struct {
		name      string
		exposures []zone.Exposure
		want      zone.Trend
	}{
		{
			name: "two recent sessions improve",
			exposures: []zone.Exposure{
				thresholdExposure(1, 2, 1200, 80),
				thresholdExposure(2, 9, 1200, 80),
			},
			want: zone.TrendImproving,
		},
		{
			name:      "single recent session is stable",
			exposures: []zone.Exposure{thresholdExposure(1, 5, 1200, 80)},
			want:      zone.TrendStable,
		},
		{
			name:      "stale category declines",
			exposures: []zone.Exposure{thresholdExposure(1, 20, 1200, 80)},
			want:      zone.TrendDeclining,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := zone.Score(tt.exposures, 28, nil, scoringNow)
			if got := result[zone.CategoryThreshold].Trend; got != tt.want {
				t.Errorf("want trend %s, got %s", tt.want, got)
			}
		})
	}
}

func TestScore_PlateauNeedsPriorAndContinuedTraining(t *testing.T) {
	exposures := []zone.Exposure{
		thresholdExposure(1, 2, 1200, 80),
		thresholdExposure(2, 9, 1200, 80),
	}

	first := zone.Score(exposures, 28, nil, scoringNow)
	if first[zone.CategoryThreshold].Trend != zone.TrendImproving {
		t.Fatalf("without a prior run the trend should improve, got %s", first[zone.CategoryThreshold].Trend)
	}

	// Re-scoring the unchanged window against the first run's levels turns
	// the stuck level into a plateau.
	second := zone.Score(exposures, 28, first, scoringNow)
	if second[zone.CategoryThreshold].Trend != zone.TrendPlateaued {
		t.Errorf("unchanged level with continued training should plateau, got %s",
			second[zone.CategoryThreshold].Trend)
	}

	// A declining category never reports a plateau even with a matching
	// prior level.
	stale := []zone.Exposure{thresholdExposure(1, 20, 1200, 80)}
	staleFirst := zone.Score(stale, 28, nil, scoringNow)
	staleSecond := zone.Score(stale, 28, staleFirst, scoringNow)
	if got := staleSecond[zone.CategoryThreshold].Trend; got != zone.TrendDeclining {
		t.Errorf("stale category must keep declining, got %s", got)
	}
}

func TestScore_AverageLoad(t *testing.T) {
	exposures := []zone.Exposure{
		thresholdExposure(1, 2, 1200, 60),
		thresholdExposure(2, 9, 1200, 100),
	}

	result := zone.Score(exposures, 28, nil, scoringNow)

	prog := result[zone.CategoryThreshold]
	if prog.Sessions != 2 {
		t.Fatalf("want 2 sessions, got %d", prog.Sessions)
	}
	if prog.AvgLoad != 80 {
		t.Errorf("want average load 80, got %f", prog.AvgLoad)
	}
	if !prog.LastTrained.Equal(scoringNow.AddDate(0, 0, -2)) {
		t.Errorf("last trained should be the most recent session, got %s", prog.LastTrained)
	}
}
