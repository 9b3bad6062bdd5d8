package coach

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/myrjola/formcoach/internal/advisory"
	"github.com/myrjola/formcoach/internal/errors"
	"github.com/myrjola/formcoach/internal/oracle"
	"github.com/myrjola/formcoach/internal/phase"
	"github.com/myrjola/formcoach/internal/workout"
	"github.com/myrjola/formcoach/internal/zone"
)

// stimulusIntensity maps a session's stimulus to the 1-5 intensity scale the
// ceiling rules reason about.
var stimulusIntensity = map[zone.Stimulus]int{
	zone.StimulusRecovery:  1,
	zone.StimulusEndurance: 2,
	zone.StimulusTempo:     3,
	zone.StimulusSweetSpot: 3,
	zone.StimulusThreshold: 4,
	zone.StimulusVO2Max:    5,
}

// advice is the resolved workout decision before persistence.
type advice struct {
	typeID        string
	intensity     int
	justification []string
	alternates    []Alternate
}

// Recommend resolves exactly one workout recommendation for the date. The
// oracle ranks catalog candidates against the assembled engine context; on
// any failure the deterministic selector decides instead. The decision and a
// progression snapshot are persisted before returning.
func (s *Service) Recommend(ctx context.Context, date time.Time) (Recommendation, error) {
	date = normalizeDate(date)

	state, err := s.currentState(ctx, date)
	if err != nil {
		return Recommendation{}, err
	}

	wellness, err := s.repo.wellness.List(ctx, date.AddDate(0, 0, -wellnessLookbackDays), date)
	if err != nil {
		return Recommendation{}, errors.Wrap(err, "load wellness")
	}
	recovery := recoveryTier(wellness)

	exposures, err := s.repo.exposures.List(ctx, date.AddDate(0, 0, -exposureLookbackDays))
	if err != nil {
		return Recommendation{}, errors.Wrap(err, "load exposures")
	}

	phaseState, err := s.phaseWithAdvice(ctx, date, state.Form())
	if err != nil {
		return Recommendation{}, err
	}

	eventTomorrow, eventYesterday, err := s.adjacentEventPriorities(ctx, date)
	if err != nil {
		return Recommendation{}, err
	}

	inputs := workout.SelectionInputs{
		Form:           state.Form(),
		Recovery:       recovery,
		Phase:          string(phaseState.Name),
		EventTomorrow:  eventTomorrow,
		EventYesterday: eventYesterday,
		StimulusCounts: stimulusCounts(exposures, date),
	}
	inputs.DaysSinceLast, inputs.LastIntensity = lastSession(exposures, date)

	if err = s.recordProgression(ctx, date, exposures); err != nil {
		return Recommendation{}, err
	}

	ceiling, _ := workout.Ceiling(inputs)
	engineContext := oracle.EngineContext{
		Date:              formatDate(date),
		FormScore:         state.Form(),
		LongAverage:       state.Long,
		ShortAverage:      state.Short,
		Recovery:          string(recovery),
		DaysSinceLast:     inputs.DaysSinceLast,
		LastIntensity:     inputs.LastIntensity,
		StimulusCounts:    inputs.StimulusCounts,
		Phase:             string(phaseState.Name),
		PhaseFocus:        phaseState.Focus,
		EventTomorrow:     eventTomorrow,
		EventYesterday:    eventYesterday,
		IntensityCeiling:  ceiling,
		TargetDurationMin: defaultDurationMin,
		TargetDurationMax: defaultDurationMax,
		CatalogSummary:    s.catalog.Summary(),
	}

	result := advisory.Resolve(ctx, s.logger, s.advisoryOpts,
		func(ctx context.Context) (advice, error) {
			candidates, consultErr := s.advisor.RankWorkouts(ctx, engineContext, s.catalog)
			if consultErr != nil {
				return advice{}, consultErr
			}
			return adviceFromCandidates(candidates), nil
		},
		func(a advice) error {
			if _, ok := s.catalog.Get(a.typeID); !ok {
				return errors.New("advised workout not in catalog")
			}
			return nil
		},
		func() advice {
			return adviceFromSelection(s.catalog.Select(inputs))
		},
	)

	recommendation := Recommendation{
		ID:               uuid.NewString(),
		ForDate:          date,
		TypeID:           result.Value.typeID,
		Intensity:        result.Value.intensity,
		IntensityCeiling: ceiling,
		Source:           result.Source,
		Justification:    result.Value.justification,
		Alternates:       result.Value.alternates,
	}
	if err = s.repo.recommendations.Create(ctx, recommendation); err != nil {
		return Recommendation{}, errors.Wrap(err, "store recommendation")
	}

	s.logger.LogAttrs(ctx, slog.LevelInfo, "workout recommended",
		slog.String("date", formatDate(date)),
		slog.String("type_id", recommendation.TypeID),
		slog.String("source", string(recommendation.Source)),
		slog.Int("intensity", recommendation.Intensity),
		slog.Int("ceiling", ceiling))
	return recommendation, nil
}

// RecommendationForDate returns the stored recommendation for the date, or
// resolves a fresh one when none exists yet.
func (s *Service) RecommendationForDate(ctx context.Context, date time.Time) (Recommendation, error) {
	date = normalizeDate(date)
	stored, err := s.repo.recommendations.GetByDate(ctx, date)
	if err == nil {
		return stored, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Recommendation{}, errors.Wrap(err, "load recommendation")
	}
	return s.Recommend(ctx, date)
}

// phaseWithAdvice derives the date-based phase and lets the oracle override
// it. A failed or malformed suggestion keeps the derived state.
func (s *Service) phaseWithAdvice(ctx context.Context, date time.Time, form float64) (phase.State, error) {
	derived, err := s.Phase(ctx, date)
	if err != nil {
		return phase.State{}, err
	}

	result := advisory.Resolve(ctx, s.logger, s.advisoryOpts,
		func(ctx context.Context) (phase.State, error) {
			override, consultErr := s.advisor.SuggestPhase(ctx, oracle.PhaseContext{
				Date:          formatDate(date),
				DerivedPhase:  string(derived.Name),
				WeeksToTarget: derived.WeeksToTarget,
				FormScore:     form,
			})
			if consultErr != nil {
				return derived, consultErr
			}
			return derived.Override(override.Phase, override.Focus, override.Reasoning, override.Confidence), nil
		},
		func(phase.State) error { return nil },
		func() phase.State { return derived },
	)
	return result.Value, nil
}

// adjacentEventPriorities returns the priority tier of goal events on the
// days immediately after and before the date, "" when there is none. The
// highest tier wins when several events share a day.
func (s *Service) adjacentEventPriorities(ctx context.Context, date time.Time) (tomorrow, yesterday string, err error) {
	events, err := s.repo.events.List(ctx, date.AddDate(0, 0, -1))
	if err != nil {
		return "", "", errors.Wrap(err, "load adjacent events")
	}
	for _, event := range events {
		switch {
		case event.Date.Equal(date.AddDate(0, 0, 1)):
			tomorrow = higherPriority(tomorrow, event.Priority)
		case event.Date.Equal(date.AddDate(0, 0, -1)):
			yesterday = higherPriority(yesterday, event.Priority)
		}
	}
	return tomorrow, yesterday, nil
}

func higherPriority(a, b string) string {
	if a == "" || (b != "" && b < a) {
		return b
	}
	return a
}

// stimulusCounts tallies sessions per stimulus over the variety window.
func stimulusCounts(exposures []zone.Exposure, date time.Time) map[string]int {
	start := date.AddDate(0, 0, -stimulusWindowDays)
	counts := make(map[string]int)
	for _, exposure := range exposures {
		if exposure.Date.Before(start) || exposure.Date.After(date) {
			continue
		}
		counts[string(exposure.Stimulus)]++
	}
	return counts
}

// lastSession finds the most recent exposure on or before the date.
func lastSession(exposures []zone.Exposure, date time.Time) (daysSince, intensity int) {
	var (
		last  zone.Exposure
		found bool
	)
	for _, exposure := range exposures {
		if exposure.Date.After(date) {
			continue
		}
		if !found || exposure.Date.After(last.Date) {
			last = exposure
			found = true
		}
	}
	if !found {
		// Cold start: a long layoff, not a hard yesterday.
		return exposureLookbackDays, 0
	}
	return int(date.Sub(last.Date).Hours() / 24), stimulusIntensity[last.Stimulus]
}

// recordProgression scores the rolling window and persists a snapshot for
// the next run's plateau comparison. Retention and the snapshot stamp both
// use the run date, so a backdated run stays a pure function of its inputs.
func (s *Service) recordProgression(ctx context.Context, date time.Time, exposures []zone.Exposure) error {
	prior, err := s.repo.progression.Latest(ctx, date.AddDate(0, 0, -snapshotRetentionDays))
	if err != nil {
		return errors.Wrap(err, "load prior progression")
	}
	scored := zone.Score(exposures, progressionWindowDays, prior, date)
	if err = s.repo.progression.Record(ctx, date, scored); err != nil {
		return errors.Wrap(err, "record progression snapshot")
	}
	return nil
}

func adviceFromCandidates(candidates []oracle.Candidate) advice {
	best := candidates[0]
	for _, candidate := range candidates[1:] {
		if candidate.Score > best.Score {
			best = candidate
		}
	}

	a := advice{
		typeID:    best.TypeID,
		intensity: best.Intensity,
	}
	if best.Rationale != "" {
		a.justification = []string{best.Rationale}
	}
	for _, candidate := range candidates {
		if candidate.TypeID == best.TypeID {
			continue
		}
		a.alternates = append(a.alternates, Alternate{
			TypeID:    candidate.TypeID,
			Intensity: candidate.Intensity,
			Rationale: candidate.Rationale,
		})
	}
	return a
}

func adviceFromSelection(selection workout.Selection) advice {
	a := advice{
		typeID:        selection.Candidate.ID,
		intensity:     selection.Candidate.Intensity,
		justification: selection.Justification,
	}
	for _, alternate := range selection.Alternates {
		a.alternates = append(a.alternates, Alternate{
			TypeID:    alternate.ID,
			Intensity: alternate.Intensity,
		})
	}
	return a
}
