// Package zone classifies a session's time-in-zone distribution into a
// dominant training stimulus and scores per-category progression over a
// rolling window.
package zone

import "time"

// Stimulus is the inferred physiological effect of a session.
type Stimulus string

const (
	StimulusRecovery  Stimulus = "recovery"
	StimulusEndurance Stimulus = "endurance"
	StimulusTempo     Stimulus = "tempo"
	StimulusSweetSpot Stimulus = "sweetspot"
	StimulusThreshold Stimulus = "threshold"
	StimulusVO2Max    Stimulus = "vo2max"
)

// ZoneCount is the number of discrete intensity bands. The sweet-spot
// sub-band between zones 3 and 4 is tracked separately.
const ZoneCount = 7

// Config holds the classification thresholds in seconds.
type Config struct {
	// MinSessionSeconds is the moving time below which a session does not
	// qualify for classification.
	MinSessionSeconds int
	// HighIntensitySeconds of zone 5-7 time marks a vo2max session.
	HighIntensitySeconds int
	// ThresholdBlockSeconds of zone 4 plus sweet-spot time marks a
	// threshold session.
	ThresholdBlockSeconds int
	// SweetSpotBlockSeconds of sweet-spot time alone marks a sweet-spot
	// session.
	SweetSpotBlockSeconds int
}

// DefaultConfig returns the standard classification thresholds.
func DefaultConfig() Config {
	return Config{
		MinSessionSeconds:     600,
		HighIntensitySeconds:  300,
		ThresholdBlockSeconds: 600,
		SweetSpotBlockSeconds: 300,
	}
}

// Session is a recorded training session with its time-in-zone split.
type Session struct {
	ID                int64
	Date              time.Time
	MovingTimeSeconds int
	// ZoneSeconds[i] is the time spent in zone i+1.
	ZoneSeconds      [ZoneCount]int
	SweetSpotSeconds int
	// Load is the session's training stress.
	Load float64
}

// Exposure is the classification of one qualifying session. It is created
// once and never modified.
type Exposure struct {
	SessionID        int64
	Date             time.Time
	ZoneSeconds      [ZoneCount]int
	SweetSpotSeconds int
	TotalSeconds     int
	// DominantZone is 1-based.
	DominantZone int
	Stimulus     Stimulus
	Load         float64
}

// Classify turns a session into a zone exposure. The second return value is
// false when the session is too short to qualify.
func (c Config) Classify(s Session) (Exposure, bool) {
	if s.MovingTimeSeconds < c.MinSessionSeconds {
		return Exposure{}, false
	}

	total := 0
	for _, secs := range s.ZoneSeconds {
		total += secs
	}

	// Ties favor the lower zone, reflecting the larger aerobic base.
	dominant := 1
	for i := 1; i < ZoneCount; i++ {
		if s.ZoneSeconds[i] > s.ZoneSeconds[dominant-1] {
			dominant = i + 1
		}
	}

	return Exposure{
		SessionID:        s.ID,
		Date:             s.Date,
		ZoneSeconds:      s.ZoneSeconds,
		SweetSpotSeconds: s.SweetSpotSeconds,
		TotalSeconds:     total,
		DominantZone:     dominant,
		Stimulus:         c.stimulus(s, total),
		Load:             s.Load,
	}, true
}

// stimulus applies the priority-ordered threshold rules. Earlier rules
// describe rarer, more specific sessions, so they win.
func (c Config) stimulus(s Session, total int) Stimulus {
	z := s.ZoneSeconds

	switch {
	case z[4]+z[5]+z[6] > c.HighIntensitySeconds:
		return StimulusVO2Max
	case z[3]+s.SweetSpotSeconds > c.ThresholdBlockSeconds:
		return StimulusThreshold
	case s.SweetSpotSeconds > c.SweetSpotBlockSeconds:
		return StimulusSweetSpot
	case z[2] > z[1]/2:
		return StimulusTempo
	case z[1]+z[2] > total/2:
		return StimulusEndurance
	case z[0] > total/2:
		return StimulusRecovery
	default:
		return StimulusEndurance
	}
}
