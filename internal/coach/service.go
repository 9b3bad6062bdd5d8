// Package coach orchestrates the training state engine: it syncs athlete
// data from the provider into sqlite, maintains the fitness and progression
// state, and resolves the daily workout recommendation through the advisory
// oracle with a deterministic fallback.
package coach

import (
	"context"
	"log/slog"
	"time"

	"github.com/myrjola/formcoach/internal/advisory"
	"github.com/myrjola/formcoach/internal/curve"
	"github.com/myrjola/formcoach/internal/errors"
	"github.com/myrjola/formcoach/internal/fitness"
	"github.com/myrjola/formcoach/internal/intervals"
	"github.com/myrjola/formcoach/internal/oracle"
	"github.com/myrjola/formcoach/internal/phase"
	"github.com/myrjola/formcoach/internal/sqlite"
	"github.com/myrjola/formcoach/internal/workout"
	"github.com/myrjola/formcoach/internal/zone"
	"golang.org/x/sync/errgroup"
)

// ErrInvalidInput marks a caller-supplied value that fails a precondition.
// Handlers map it to a 400 instead of a 500.
var ErrInvalidInput = errors.NewSentinel("invalid input")

// Lookback windows, all in days.
const (
	syncLookbackDays         = 120
	wellnessLookbackDays     = hrvBaselineDays
	exposureLookbackDays     = 42
	stimulusWindowDays       = 14
	progressionWindowDays    = 28
	snapshotRetentionDays    = 14
	defaultDurationMin       = 60
	defaultDurationMax       = 120
	maxProjectionHorizonDays = 365
)

// Provider is the athlete data source. *intervals.Client satisfies it; tests
// substitute a stub.
type Provider interface {
	Activities(ctx context.Context, oldest, newest time.Time) ([]intervals.Activity, error)
	Wellness(ctx context.Context, oldest, newest time.Time) ([]intervals.WellnessDay, error)
	PowerCurve(ctx context.Context, oldest, newest time.Time) (intervals.PowerCurve, error)
	Events(ctx context.Context, oldest, newest time.Time) ([]intervals.Event, error)
}

// Advisor is the advisory oracle. *oracle.Client satisfies it.
type Advisor interface {
	RankWorkouts(ctx context.Context, engineContext oracle.EngineContext, catalog workout.Catalog) ([]oracle.Candidate, error)
	SuggestPhase(ctx context.Context, phaseContext oracle.PhaseContext) (oracle.PhaseOverride, error)
}

// Service is the engine facade the HTTP layer talks to.
type Service struct {
	repo         *repository
	logger       *slog.Logger
	provider     Provider
	advisor      Advisor
	catalog      workout.Catalog
	model        fitness.Model
	classifier   zone.Config
	advisoryOpts advisory.Options
}

// NewService wires the engine together.
func NewService(
	db *sqlite.Database,
	logger *slog.Logger,
	provider Provider,
	advisor Advisor,
) (*Service, error) {
	catalog, err := workout.LoadCatalog()
	if err != nil {
		return nil, errors.Wrap(err, "load workout catalog")
	}
	model, err := fitness.NewModel(fitness.DefaultConfig())
	if err != nil {
		return nil, errors.Wrap(err, "configure fitness model")
	}
	return &Service{
		repo:         newRepository(db, logger),
		logger:       logger,
		provider:     provider,
		advisor:      advisor,
		catalog:      catalog,
		model:        model,
		classifier:   zone.DefaultConfig(),
		advisoryOpts: advisory.DefaultOptions(),
	}, nil
}

// Catalog exposes the validated workout catalog for read endpoints.
func (s *Service) Catalog() workout.Catalog {
	return s.catalog
}

// Sync pulls the athlete's recent data from the provider and folds it into
// local state. The four fetches run concurrently; persistence is sequential
// so a partial provider outage degrades to a partial sync instead of a
// corrupt one.
func (s *Service) Sync(ctx context.Context) error {
	now := normalizeDate(time.Now())
	oldest := now.AddDate(0, 0, -syncLookbackDays)

	var (
		activities []intervals.Activity
		wellness   []intervals.WellnessDay
		powerCurve intervals.PowerCurve
		events     []intervals.Event
	)
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() (err error) {
		activities, err = s.provider.Activities(groupCtx, oldest, now)
		return err
	})
	group.Go(func() (err error) {
		wellness, err = s.provider.Wellness(groupCtx, oldest, now)
		return err
	})
	group.Go(func() (err error) {
		powerCurve, err = s.provider.PowerCurve(groupCtx, oldest, now)
		return err
	})
	group.Go(func() (err error) {
		events, err = s.provider.Events(groupCtx, now, now.AddDate(1, 0, 0))
		return err
	})
	if err := group.Wait(); err != nil {
		return errors.Wrap(err, "fetch provider data")
	}

	if err := s.storeActivities(ctx, activities); err != nil {
		return err
	}
	if err := s.storeWellness(ctx, wellness); err != nil {
		return err
	}
	if err := s.storeCurve(ctx, now, powerCurve); err != nil {
		return err
	}
	if err := s.storeEvents(ctx, now, events); err != nil {
		return err
	}

	s.logger.LogAttrs(ctx, slog.LevelInfo, "sync complete",
		slog.Int("activities", len(activities)),
		slog.Int("wellness_days", len(wellness)),
		slog.Int("curve_points", len(powerCurve.Secs)),
		slog.Int("events", len(events)))
	return nil
}

// storeActivities sums daily load and classifies qualifying sessions into
// zone exposures.
func (s *Service) storeActivities(ctx context.Context, activities []intervals.Activity) error {
	daily := make(map[time.Time]float64, len(activities))
	var exposures []zone.Exposure
	for _, activity := range activities {
		date, err := activity.Date()
		if err != nil {
			s.logger.LogAttrs(ctx, slog.LevelWarn, "skipping activity with bad date",
				slog.Int64("id", activity.ID), errors.SlogError(err))
			continue
		}
		date = normalizeDate(date)
		if activity.TrainingLoad > 0 {
			daily[date] += activity.TrainingLoad
		}

		session := zone.Session{
			ID:                activity.ID,
			Date:              date,
			MovingTimeSeconds: activity.MovingTime,
			SweetSpotSeconds:  activity.SweetSpotTime,
			Load:              activity.TrainingLoad,
		}
		for i := 0; i < len(activity.ZoneTimes) && i < zone.ZoneCount; i++ {
			session.ZoneSeconds[i] = activity.ZoneTimes[i]
		}
		if exposure, ok := s.classifier.Classify(session); ok {
			exposures = append(exposures, exposure)
		}
	}

	if err := s.repo.loads.ReplaceDays(ctx, daily); err != nil {
		return errors.Wrap(err, "store daily loads")
	}
	for _, exposure := range exposures {
		if err := s.repo.exposures.Create(ctx, exposure); err != nil {
			return errors.Wrap(err, "store zone exposure")
		}
	}
	return nil
}

func (s *Service) storeWellness(ctx context.Context, raw []intervals.WellnessDay) error {
	days := make([]WellnessDay, 0, len(raw))
	for _, day := range raw {
		date, err := parseDate(day.Date)
		if err != nil {
			s.logger.LogAttrs(ctx, slog.LevelWarn, "skipping wellness day with bad date",
				slog.String("date", day.Date), errors.SlogError(err))
			continue
		}
		converted := WellnessDay{
			Date:          date,
			HRV:           day.HRV,
			RestingHR:     day.RestingHR,
			RecoveryScore: day.RecoveryScore,
		}
		if day.SleepSeconds != nil {
			hours := float64(*day.SleepSeconds) / 3600
			converted.SleepHours = &hours
		}
		days = append(days, converted)
	}
	if err := s.repo.wellness.Upsert(ctx, days); err != nil {
		return errors.Wrap(err, "store wellness")
	}
	return nil
}

// storeCurve merges the fetched best efforts and refreshes the profile
// estimate from the merged curve, so a stale partial fetch never regresses
// the stored bests.
func (s *Service) storeCurve(ctx context.Context, now time.Time, powerCurve intervals.PowerCurve) error {
	points := make([]curve.Point, 0, len(powerCurve.Secs))
	for i, secs := range powerCurve.Secs {
		if i >= len(powerCurve.Watts) {
			break
		}
		points = append(points, curve.Point{DurationSeconds: secs, Watts: powerCurve.Watts[i]})
	}
	if err := s.repo.curve.Merge(ctx, now, points); err != nil {
		return errors.Wrap(err, "merge power curve")
	}

	stored, err := s.repo.curve.List(ctx)
	if err != nil {
		return errors.Wrap(err, "load stored curve")
	}
	profile, err := s.repo.profile.Get(ctx)
	if err != nil {
		return errors.Wrap(err, "load athlete profile")
	}
	estimate := curve.Analyze(stored, float64(profile.ManualThresholdWatts))
	if err = s.repo.profile.UpdateEstimate(ctx, estimate); err != nil {
		return errors.Wrap(err, "update profile estimate")
	}
	return nil
}

func (s *Service) storeEvents(ctx context.Context, now time.Time, raw []intervals.Event) error {
	var events []Event
	for _, event := range raw {
		priority, ok := event.PriorityTier()
		if !ok {
			continue
		}
		date, err := parseDate(event.StartDate[:min(len(event.StartDate), len(dateFormat))])
		if err != nil {
			s.logger.LogAttrs(ctx, slog.LevelWarn, "skipping event with bad date",
				slog.Int64("id", event.ID), errors.SlogError(err))
			continue
		}
		events = append(events, Event{Date: date, Priority: priority, Description: event.Name})
	}
	if err := s.repo.events.ReplaceFuture(ctx, now, events); err != nil {
		return errors.Wrap(err, "replace future events")
	}
	return nil
}

// FitnessState is the presented load state for a date.
type FitnessState struct {
	Date  time.Time
	Long  float64
	Short float64
	Form  float64
}

// FitnessState folds the stored load history into the averages on the given
// date. Rest days between the last sample and the date count as zero load.
func (s *Service) FitnessState(ctx context.Context, date time.Time) (FitnessState, error) {
	state, err := s.currentState(ctx, date)
	if err != nil {
		return FitnessState{}, err
	}
	return FitnessState{
		Date:  state.Date,
		Long:  state.Long,
		Short: state.Short,
		Form:  state.Form(),
	}, nil
}

func (s *Service) currentState(ctx context.Context, date time.Time) (fitness.State, error) {
	date = normalizeDate(date)
	samples, err := s.repo.loads.List(ctx, date)
	if err != nil {
		return fitness.State{}, errors.Wrap(err, "load history")
	}
	if len(samples) > 0 {
		// Run the recurrence through the requested date, so trailing rest
		// days decay the averages.
		samples = append(samples, fitness.Sample{Date: date, Load: 0})
	}
	state, err := s.model.CurrentState(samples)
	if err != nil {
		return fitness.State{}, errors.Wrap(err, "fold load history")
	}
	if state.Date.IsZero() {
		state.Date = date
	}
	return state, nil
}

// PlannedLoad is one forecast day of planned training stress.
type PlannedLoad struct {
	Date time.Time
	Load float64
}

// ProjectionPoint is one projected day.
type ProjectionPoint struct {
	Date  time.Time
	Long  float64
	Short float64
	Form  float64
}

// Projection rolls the fitness state forward from the given date over the
// planned loads. Forecast days outside (date, date+horizon] are ignored.
func (s *Service) Projection(
	ctx context.Context,
	date time.Time,
	horizonDays int,
	planned []PlannedLoad,
) ([]ProjectionPoint, error) {
	if horizonDays < 0 || horizonDays > maxProjectionHorizonDays {
		return nil, errors.Wrap(ErrInvalidInput, "projection horizon out of range",
			slog.Int("horizon_days", horizonDays))
	}
	date = normalizeDate(date)

	loads := make([]float64, horizonDays)
	for _, p := range planned {
		if p.Load < 0 {
			return nil, errors.Wrap(ErrInvalidInput, "negative planned load",
				slog.String("date", formatDate(p.Date)))
		}
		offset := int(normalizeDate(p.Date).Sub(date).Hours() / 24)
		if offset >= 1 && offset <= horizonDays {
			loads[offset-1] += p.Load
		}
	}

	seed, err := s.currentState(ctx, date)
	if err != nil {
		return nil, err
	}
	states, err := s.model.Project(seed, loads, horizonDays)
	if err != nil {
		return nil, errors.Wrap(errors.Join(ErrInvalidInput, err), "project fitness")
	}

	points := make([]ProjectionPoint, len(states))
	for i, state := range states {
		points[i] = ProjectionPoint{
			Date:  state.Date,
			Long:  state.Long,
			Short: state.Short,
			Form:  state.Form(),
		}
	}
	return points, nil
}

// SessionImpact compares projections with and without a planned session.
type SessionImpact struct {
	With      []ProjectionPoint
	Without   []ProjectionPoint
	FormDelta float64
}

// Impact projects the horizon twice, with the session on day one and
// without it. The two projections are independent pure evaluations, so they
// run concurrently.
func (s *Service) Impact(
	ctx context.Context,
	date time.Time,
	horizonDays int,
	sessionLoad float64,
) (SessionImpact, error) {
	if sessionLoad < 0 {
		return SessionImpact{}, errors.Wrap(ErrInvalidInput, "negative session load",
			slog.Float64("load", sessionLoad))
	}
	if horizonDays < 1 {
		return SessionImpact{}, errors.Wrap(ErrInvalidInput, "impact horizon must be positive",
			slog.Int("horizon_days", horizonDays))
	}
	date = normalizeDate(date)

	var impact SessionImpact
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() (err error) {
		impact.With, err = s.Projection(groupCtx, date, horizonDays,
			[]PlannedLoad{{Date: date.AddDate(0, 0, 1), Load: sessionLoad}})
		return err
	})
	group.Go(func() (err error) {
		impact.Without, err = s.Projection(groupCtx, date, horizonDays, nil)
		return err
	})
	if err := group.Wait(); err != nil {
		return SessionImpact{}, err
	}

	last := horizonDays - 1
	impact.FormDelta = impact.With[last].Form - impact.Without[last].Form
	return impact, nil
}

// Progression scores the five training categories over the rolling window
// ending at the given date.
func (s *Service) Progression(ctx context.Context, date time.Time) ([]zone.Progression, error) {
	date = normalizeDate(date)
	exposures, err := s.repo.exposures.List(ctx, date.AddDate(0, 0, -progressionWindowDays))
	if err != nil {
		return nil, errors.Wrap(err, "load exposures")
	}
	prior, err := s.repo.progression.Latest(ctx, date.AddDate(0, 0, -snapshotRetentionDays))
	if err != nil {
		return nil, errors.Wrap(err, "load prior progression")
	}

	scored := zone.Score(exposures, progressionWindowDays, prior, date)
	result := make([]zone.Progression, 0, len(scored))
	for _, category := range zone.Categories() {
		result = append(result, scored[category])
	}
	return result, nil
}

// Phase derives the phase state for a date from the goal event calendar.
// This read surface is deterministic; only Recommend consults the oracle for
// an override.
func (s *Service) Phase(ctx context.Context, date time.Time) (phase.State, error) {
	date = normalizeDate(date)
	target, err := s.repo.events.Target(ctx, date)
	if errors.Is(err, ErrNotFound) {
		return phase.ForDate(date, nil), nil
	}
	if err != nil {
		return phase.State{}, errors.Wrap(err, "load target event")
	}
	return phase.ForDate(date, &target.Date), nil
}

// Profile returns the athlete profile.
func (s *Service) Profile(ctx context.Context) (Profile, error) {
	profile, err := s.repo.profile.Get(ctx)
	if err != nil {
		return Profile{}, errors.Wrap(err, "load profile")
	}
	return profile, nil
}

// UpdateProfile stores the hand-configured profile fields and refreshes the
// threshold estimate, since a manual threshold participates in the fallback
// chain.
func (s *Service) UpdateProfile(ctx context.Context, weightKg float64, manualThresholdWatts int) error {
	if weightKg < 0 || manualThresholdWatts < 0 {
		return errors.Wrap(ErrInvalidInput, "profile values must be non-negative")
	}
	if err := s.repo.profile.UpdateManual(ctx, weightKg, manualThresholdWatts); err != nil {
		return errors.Wrap(err, "update profile")
	}
	stored, err := s.repo.curve.List(ctx)
	if err != nil {
		return errors.Wrap(err, "load stored curve")
	}
	estimate := curve.Analyze(stored, float64(manualThresholdWatts))
	if err = s.repo.profile.UpdateEstimate(ctx, estimate); err != nil {
		return errors.Wrap(err, "update profile estimate")
	}
	return nil
}

// Events lists upcoming goal events.
func (s *Service) Events(ctx context.Context) ([]Event, error) {
	events, err := s.repo.events.List(ctx, normalizeDate(time.Now()))
	if err != nil {
		return nil, errors.Wrap(err, "list events")
	}
	return events, nil
}

// AddEvent stores a goal event.
func (s *Service) AddEvent(ctx context.Context, event Event) (Event, error) {
	if !validPriorities[event.Priority] {
		return Event{}, errors.Wrap(ErrInvalidInput, "event priority must be A, B, or C",
			slog.String("priority", event.Priority))
	}
	added, err := s.repo.events.Add(ctx, event)
	if err != nil {
		return Event{}, errors.Wrap(err, "add event")
	}
	return added, nil
}

// RemoveEvent deletes a goal event.
func (s *Service) RemoveEvent(ctx context.Context, id int64) error {
	if err := s.repo.events.Remove(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return errors.Wrap(err, "remove event")
	}
	return nil
}

func normalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
