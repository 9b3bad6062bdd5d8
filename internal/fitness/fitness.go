// Package fitness maintains the chronic/acute training load model: two
// exponentially weighted averages of daily training stress and their
// difference, plus a projector that rolls the same recurrence forward over a
// planned load forecast.
package fitness

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"
)

// Model update constants.
const (
	DefaultLongDays  = 42
	DefaultShortDays = 7

	// presentationPrecision rounds projected values to one decimal.
	presentationPrecision = 10.0
)

// ErrNegativeLoad marks a training stress value below zero. Negative load has
// no physical meaning, so it is rejected instead of clamped to surface caller
// bugs.
var ErrNegativeLoad = errors.New("negative training load")

// ErrNegativeHorizon marks a projection request with a horizon below zero.
var ErrNegativeHorizon = errors.New("negative projection horizon")

// Config holds the averaging time constants in days.
type Config struct {
	LongDays  int
	ShortDays int
}

// DefaultConfig returns the conventional 42/7-day time constants.
func DefaultConfig() Config {
	return Config{
		LongDays:  DefaultLongDays,
		ShortDays: DefaultShortDays,
	}
}

// Sample is one day's accumulated training stress.
type Sample struct {
	Date time.Time
	Load float64
}

// State captures the load averages on a given date.
type State struct {
	Date  time.Time
	Long  float64
	Short float64
}

// Form is the long average minus the short average. Positive means fresh,
// strongly negative means fatigued.
func (s State) Form() float64 {
	return s.Long - s.Short
}

// Model evaluates the load recurrence. It is stateless, all methods are pure.
type Model struct {
	cfg Config
}

// NewModel validates the configuration and returns a model.
func NewModel(cfg Config) (Model, error) {
	if cfg.LongDays < 1 || cfg.ShortDays < 1 {
		return Model{}, fmt.Errorf("time constants must be at least one day (long: %d, short: %d)",
			cfg.LongDays, cfg.ShortDays)
	}
	return Model{cfg: cfg}, nil
}

// CurrentState folds the load history into today's averages.
//
// The recurrence avg' = avg + (load − avg)/constant runs once per calendar
// day in date order, seeded from the previous day. Days without a sample
// contribute load 0, they are rest days, not missing data. Samples sharing a
// date are summed. An empty history yields the zero state: cold start is a
// defined default, not an error.
func (m Model) CurrentState(history []Sample) (State, error) {
	if len(history) == 0 {
		return State{}, nil
	}

	daily := make(map[time.Time]float64, len(history))
	for _, sample := range history {
		if sample.Load < 0 {
			return State{}, fmt.Errorf("sample on %s: %w (load: %f)",
				sample.Date.Format(time.DateOnly), ErrNegativeLoad, sample.Load)
		}
		daily[normalizeDate(sample.Date)] += sample.Load
	}

	dates := make([]time.Time, 0, len(daily))
	for date := range daily {
		dates = append(dates, date)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	state := State{Date: dates[0].AddDate(0, 0, -1)}
	for day := dates[0]; !day.After(dates[len(dates)-1]); day = day.AddDate(0, 0, 1) {
		state = m.step(state, day, daily[day])
	}

	return state, nil
}

// Project applies the recurrence over a caller-supplied forecast and returns
// one state per horizon day, values rounded for presentation.
//
// planned[i] is the load for the day i+1 after the seed; days beyond the
// forecast count as 0. Horizon 0 yields an empty sequence. The function is
// pure, comparative projections may run in any order or concurrently.
func (m Model) Project(seed State, planned []float64, horizonDays int) ([]State, error) {
	if horizonDays < 0 {
		return nil, fmt.Errorf("%w: %d", ErrNegativeHorizon, horizonDays)
	}
	for i, load := range planned {
		if load < 0 {
			return nil, fmt.Errorf("planned day %d: %w (load: %f)", i+1, ErrNegativeLoad, load)
		}
	}

	projection := make([]State, 0, horizonDays)
	state := seed
	for i := range horizonDays {
		load := 0.0
		if i < len(planned) {
			load = planned[i]
		}
		state = m.step(state, state.Date.AddDate(0, 0, 1), load)
		projection = append(projection, State{
			Date:  state.Date,
			Long:  roundForPresentation(state.Long),
			Short: roundForPresentation(state.Short),
		})
	}

	return projection, nil
}

// step advances both averages by one day. With non-negative seeds and loads
// the averages stay non-negative: each update is a convex combination.
func (m Model) step(prev State, day time.Time, load float64) State {
	return State{
		Date:  day,
		Long:  prev.Long + (load-prev.Long)/float64(m.cfg.LongDays),
		Short: prev.Short + (load-prev.Short)/float64(m.cfg.ShortDays),
	}
}

func roundForPresentation(v float64) float64 {
	return math.Round(v*presentationPrecision) / presentationPrecision
}

func normalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
