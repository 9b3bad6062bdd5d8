package zone

import (
	"math"
	"time"
)

// Category is one of the five physiological training categories progression
// is tracked for.
type Category string

const (
	CategoryEndurance Category = "endurance"
	CategoryTempo     Category = "tempo"
	CategoryThreshold Category = "threshold"
	CategoryVO2Max    Category = "vo2max"
	CategoryAnaerobic Category = "anaerobic"
)

// Categories lists all tracked categories in reporting order.
func Categories() []Category {
	return []Category{
		CategoryEndurance,
		CategoryTempo,
		CategoryThreshold,
		CategoryVO2Max,
		CategoryAnaerobic,
	}
}

// Trend describes how a category's progression is moving.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendStable    Trend = "stable"
	TrendDeclining Trend = "declining"
	TrendPlateaued Trend = "plateaued"
)

// Progression scoring constants.
const (
	MinLevel = 1.0
	MaxLevel = 10.0

	// volumeLevelCap bounds the volume component so frequency and recency
	// bonuses always matter.
	volumeLevelCap = 7.0
	volumeScale    = 5.0

	// frequencyBonusCap bounds the bonus for training a category often.
	frequencyBonusCap       = 2.0
	frequencyBonusPerWeekly = 0.5

	// attributionSeconds is the minimum mapped time for a session to count
	// toward a category.
	attributionSeconds = 300

	// recentWindowDays is the lookback for trend and plateau decisions.
	recentWindowDays = 14
)

// baselineMinutes is the per-category volume over a 28-day window that earns
// the full volume component. Lower-intensity categories need far more time
// for the same stimulus.
var baselineMinutes = map[Category]float64{
	CategoryEndurance: 480,
	CategoryTempo:     180,
	CategoryThreshold: 120,
	CategoryVO2Max:    60,
	CategoryAnaerobic: 30,
}

const baselineWindowDays = 28

// Progression is the bounded per-category score of recent volume, frequency,
// and recency.
type Progression struct {
	Category    Category
	Level       float64
	Trend       Trend
	LastTrained time.Time
	Sessions    int
	AvgLoad     float64
}

// categorySeconds maps an exposure's zone split onto the category it loads:
// zones 1-2 feed endurance, zone 3 tempo, zone 4 plus sweet-spot threshold,
// zone 5 vo2max, zones 6-7 anaerobic.
func categorySeconds(e Exposure, cat Category) int {
	z := e.ZoneSeconds
	switch cat {
	case CategoryEndurance:
		return z[0] + z[1]
	case CategoryTempo:
		return z[2]
	case CategoryThreshold:
		return z[3] + e.SweetSpotSeconds
	case CategoryVO2Max:
		return z[4]
	case CategoryAnaerobic:
		return z[5] + z[6]
	default:
		return 0
	}
}

// Score recomputes the progression of every category from the exposures in
// the rolling window ending at now.
//
// prior carries the previous scoring run's progressions for plateau
// detection; the caller is responsible for only passing a snapshot recent
// enough to compare against. An empty window yields level exactly 1.0 and a
// stable trend for every category.
func Score(
	exposures []Exposure,
	windowDays int,
	prior map[Category]Progression,
	now time.Time,
) map[Category]Progression {
	windowStart := now.AddDate(0, 0, -windowDays)
	recentStart := now.AddDate(0, 0, -recentWindowDays)

	result := make(map[Category]Progression, len(Categories()))
	for _, cat := range Categories() {
		var (
			minutes     float64
			sessions    int
			recent      int
			loadSum     float64
			lastTrained time.Time
		)
		for _, e := range exposures {
			if e.Date.Before(windowStart) || e.Date.After(now) {
				continue
			}
			secs := categorySeconds(e, cat)
			minutes += float64(secs) / 60
			if secs < attributionSeconds {
				continue
			}
			sessions++
			loadSum += e.Load
			if e.Date.After(lastTrained) {
				lastTrained = e.Date
			}
			if !e.Date.Before(recentStart) {
				recent++
			}
		}

		prog := Progression{
			Category:    cat,
			Level:       MinLevel,
			Trend:       TrendStable,
			LastTrained: lastTrained,
			Sessions:    sessions,
			AvgLoad:     0,
		}
		if sessions > 0 {
			prog.AvgLoad = loadSum / float64(sessions)
			prog.Level = level(cat, minutes, sessions, windowDays, now.Sub(lastTrained))
			prog.Trend = trend(recent, now.Sub(lastTrained))

			// A level stuck at the previous run's value despite continued
			// training is a plateau, not stability.
			if previous, ok := prior[cat]; ok && recent > 0 && prog.Trend != TrendDeclining &&
				roundLevel(prog.Level) == roundLevel(previous.Level) {
				prog.Trend = TrendPlateaued
			}
		}
		result[cat] = prog
	}

	return result
}

func level(cat Category, minutes float64, sessions, windowDays int, sinceLast time.Duration) float64 {
	baseline := baselineMinutes[cat] * float64(windowDays) / baselineWindowDays

	volume := math.Min(volumeLevelCap, volumeScale*minutes/baseline)

	perWeek := float64(sessions) / (float64(windowDays) / 7)
	frequency := math.Min(frequencyBonusCap, frequencyBonusPerWeekly*perWeek)

	return clampLevel(volume + frequency + recencyBonus(sinceLast))
}

// recencyBonus rewards having touched the category lately, decaying in
// weekly buckets.
func recencyBonus(sinceLast time.Duration) float64 {
	days := sinceLast.Hours() / 24
	switch {
	case days <= 7:
		return 1.0
	case days <= 14:
		return 0.5
	case days <= 21:
		return 0.25
	default:
		return 0
	}
}

func trend(recentSessions int, sinceLast time.Duration) Trend {
	switch {
	case recentSessions >= 2:
		return TrendImproving
	case sinceLast.Hours()/24 > recentWindowDays:
		return TrendDeclining
	default:
		return TrendStable
	}
}

func clampLevel(v float64) float64 {
	return math.Min(MaxLevel, math.Max(MinLevel, v))
}

// roundLevel compares levels at the 0.1 precision they are reported with.
func roundLevel(v float64) float64 {
	return math.Round(v*10) / 10
}
