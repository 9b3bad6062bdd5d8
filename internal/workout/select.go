package workout

import (
	"fmt"
	"sort"
)

// Event proximity priority tiers.
const (
	PriorityA = "A"
	PriorityB = "B"
	PriorityC = "C"
)

// Ceiling constraint thresholds.
const (
	defaultCeiling = 3

	deepFatigueForm = -20
	mildFatigueForm = -10

	hardSessionIntensity = 4

	// preferredIntensity anchors the tie-break: neither junk miles nor
	// unplanned smashfests.
	preferredIntensity = 3
)

// SelectionInputs is everything the deterministic selector looks at. It is a
// plain value, so the selection is a pure function of it.
type SelectionInputs struct {
	Form          float64
	Recovery      Recovery
	DaysSinceLast int
	LastIntensity int
	// StimulusCounts is the 14-day session count per stimulus, the variety
	// signal.
	StimulusCounts map[string]int
	Phase          string
	// EventTomorrow and EventYesterday hold the priority tier of an
	// adjacent goal event, or "" when there is none.
	EventTomorrow  string
	EventYesterday string
}

// Selection is the selector's decision.
type Selection struct {
	Candidate     Candidate
	Ceiling       int
	Justification []string
	Alternates    []Candidate
}

// Ceiling computes the day's intensity ceiling as the minimum over active
// constraints, together with the justification fragment of each one. With no
// constraint active the ceiling defaults conservatively: the selector only
// runs when the oracle is unavailable, and uncertainty argues for caution.
func Ceiling(in SelectionInputs) (int, []string) {
	ceiling := defaultCeiling

	var justification []string
	apply := func(limit int, reason string) {
		if limit < ceiling {
			ceiling = limit
		}
		justification = append(justification, reason)
	}

	switch in.EventTomorrow {
	case PriorityA, PriorityB:
		apply(2, fmt.Sprintf("priority %s event tomorrow", in.EventTomorrow))
	case PriorityC:
		apply(3, "priority C event tomorrow")
	}
	switch in.EventYesterday {
	case PriorityA, PriorityB:
		apply(2, fmt.Sprintf("priority %s event yesterday", in.EventYesterday))
	case PriorityC:
		apply(3, "priority C event yesterday")
	}
	if in.Form < deepFatigueForm {
		apply(2, fmt.Sprintf("deeply fatigued (form %.1f)", in.Form))
	} else if in.Form < mildFatigueForm {
		apply(3, fmt.Sprintf("fatigued (form %.1f)", in.Form))
	}
	if in.LastIntensity >= hardSessionIntensity {
		apply(3, fmt.Sprintf("hard session yesterday (intensity %d)", in.LastIntensity))
	}
	if recoveryRank(in.Recovery) < recoveryRank(RecoveryModerate) {
		apply(3, "recovery below moderate")
	}

	if len(justification) == 0 {
		justification = append(justification, "no constraint active, conservative default")
	}
	return ceiling, justification
}

// Select is the deterministic fallback decision procedure: filter the
// catalog against the day's constraints, prefer variety, and never come back
// empty-handed.
func (c Catalog) Select(in SelectionInputs) Selection {
	ceiling, justification := Ceiling(in)

	var candidates []Candidate
	for _, entry := range c.entries {
		if entry.Intensity > ceiling {
			continue
		}
		if !entryAppliesToPhase(entry, in.Phase) {
			continue
		}
		if in.Form < entry.FormMin || in.Form > entry.FormMax {
			continue
		}
		if recoveryRank(in.Recovery) < recoveryRank(entry.MinRecovery) {
			continue
		}
		candidates = append(candidates, entry)
	}

	// Guarantee an easy option whenever the ceiling permits one, so the
	// athlete always has a low-cost out.
	easy := c.EasyDefault()
	if easy.Intensity <= ceiling && !containsEasy(candidates) {
		candidates = append(candidates, easy)
	}

	if len(candidates) == 0 {
		return Selection{
			Candidate:     easy,
			Ceiling:       ceiling,
			Justification: append(justification, "no catalog entry satisfied every constraint"),
			Alternates:    nil,
		}
	}

	// Variety tie-break: least-recently-used stimulus first, then intensity
	// closest to the preferred middle, then catalog order for stability.
	sort.SliceStable(candidates, func(i, j int) bool {
		ci, cj := in.StimulusCounts[candidates[i].Stimulus], in.StimulusCounts[candidates[j].Stimulus]
		if ci != cj {
			return ci < cj
		}
		return intensityDistance(candidates[i]) < intensityDistance(candidates[j])
	})

	return Selection{
		Candidate:     candidates[0],
		Ceiling:       ceiling,
		Justification: justification,
		Alternates:    candidates[1:],
	}
}

func containsEasy(candidates []Candidate) bool {
	for _, entry := range candidates {
		if entry.Intensity <= 2 {
			return true
		}
	}
	return false
}

func intensityDistance(entry Candidate) int {
	d := entry.Intensity - preferredIntensity
	if d < 0 {
		return -d
	}
	return d
}
