// Package phase maps the time remaining until the goal event to a named
// periodization phase with a training focus. The date-based result is the
// guaranteed fallback; an advisory override may replace name and focus but
// the selector itself never fails.
package phase

import (
	"slices"
	"time"
)

// Name is a periodization phase.
type Name string

const (
	Base      Name = "Base"
	Build     Name = "Build"
	Specialty Name = "Specialty"
	Taper     Name = "Taper"
	RaceWeek  Name = "Race-Week"
)

// Phase boundaries in weeks to the goal event.
const (
	taperMaxWeeks     = 2
	specialtyMaxWeeks = 7
	buildMaxWeeks     = 15
)

// focus texts are fixed per phase.
var focuses = map[Name]string{
	Base:      "Aerobic volume and durability",
	Build:     "Progressive intensity toward race demands",
	Specialty: "Race-specific efforts and sharpening",
	Taper:     "Shed fatigue, keep touches of intensity",
	RaceWeek:  "Rest, openers, and execution",
}

const maintenanceFocus = "Maintain aerobic fitness, no event on the calendar"

// State is the derived phase for a date. It is recomputed per run, never
// persisted.
type State struct {
	Name          Name
	WeeksToTarget int
	Focus         string
	// Reasoning and Confidence are only set when an advisory override was
	// applied.
	Reasoning  string
	Confidence float64
}

// ForDate derives the phase from pure date arithmetic. A nil target means no
// goal event is on the calendar, which yields an open-ended Base phase with
// WeeksToTarget -1.
func ForDate(date time.Time, target *time.Time) State {
	if target == nil || target.Before(date) {
		return State{
			Name:          Base,
			WeeksToTarget: -1,
			Focus:         maintenanceFocus,
		}
	}

	weeks := int(target.Sub(date).Hours() / 24 / 7)

	var name Name
	switch {
	case weeks == 0:
		name = RaceWeek
	case weeks <= taperMaxWeeks:
		name = Taper
	case weeks <= specialtyMaxWeeks:
		name = Specialty
	case weeks <= buildMaxWeeks:
		name = Build
	default:
		name = Base
	}

	return State{
		Name:          name,
		WeeksToTarget: weeks,
		Focus:         focuses[name],
	}
}

// Valid reports whether s is a well-formed phase name. Advisory overrides
// carrying anything else are discarded.
func Valid(s string) bool {
	return slices.Contains([]Name{Base, Build, Specialty, Taper, RaceWeek}, Name(s))
}

// Override applies an advisory phase suggestion on top of the date-based
// state. Malformed names leave the state untouched.
func (s State) Override(name, focus, reasoning string, confidence float64) State {
	if !Valid(name) {
		return s
	}
	s.Name = Name(name)
	if focus != "" {
		s.Focus = focus
	}
	s.Reasoning = reasoning
	s.Confidence = confidence
	return s
}
