// Package workout holds the static workout catalog and the deterministic
// fallback selector that picks from it when the advisory oracle cannot.
package workout

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	_ "embed"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Recovery is the athlete's recovery tier for the day.
type Recovery string

const (
	RecoveryLow      Recovery = "low"
	RecoveryModerate Recovery = "moderate"
	RecoveryHigh     Recovery = "high"
)

// recoveryRank orders tiers for precondition checks.
func recoveryRank(r Recovery) int {
	switch r {
	case RecoveryLow:
		return 0
	case RecoveryModerate:
		return 1
	case RecoveryHigh:
		return 2
	default:
		return -1
	}
}

// Intensity bounds for catalog entries and recommendations.
const (
	MinIntensity = 1
	MaxIntensity = 5
)

// Candidate is one catalog entry: a workout type with the constraint facts
// the selector evaluates.
type Candidate struct {
	ID                  string   `yaml:"id"`
	Name                string   `yaml:"name"`
	Stimulus            string   `yaml:"stimulus"`
	Intensity           int      `yaml:"intensity"`
	DurationMinMinutes  int      `yaml:"duration_min_minutes"`
	DurationMaxMinutes  int      `yaml:"duration_max_minutes"`
	Phases              []string `yaml:"phases"`
	FormMin             float64  `yaml:"form_min"`
	FormMax             float64  `yaml:"form_max"`
	MinRecovery         Recovery `yaml:"min_recovery"`
	DescriptionMarkdown string   `yaml:"description"`
}

type catalogFile struct {
	DefaultEasyID string      `yaml:"default_easy_id"`
	Workouts      []Candidate `yaml:"workouts"`
}

// Catalog is the validated, immutable workout rule table.
type Catalog struct {
	entries       []Candidate
	byID          map[string]Candidate
	defaultEasyID string
}

// LoadCatalog parses and validates the embedded catalog. It is called once
// at startup; a malformed catalog is a build defect, not a runtime state.
func LoadCatalog() (Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(catalogYAML, &file); err != nil {
		return Catalog{}, fmt.Errorf("parse catalog: %w", err)
	}

	catalog := Catalog{
		entries:       file.Workouts,
		byID:          make(map[string]Candidate, len(file.Workouts)),
		defaultEasyID: file.DefaultEasyID,
	}
	for _, entry := range file.Workouts {
		if err := validateEntry(entry); err != nil {
			return Catalog{}, fmt.Errorf("catalog entry %q: %w", entry.ID, err)
		}
		if _, duplicate := catalog.byID[entry.ID]; duplicate {
			return Catalog{}, fmt.Errorf("duplicate catalog id %q", entry.ID)
		}
		catalog.byID[entry.ID] = entry
	}

	easy, ok := catalog.byID[file.DefaultEasyID]
	if !ok {
		return Catalog{}, fmt.Errorf("default easy id %q not in catalog", file.DefaultEasyID)
	}
	if easy.Intensity > 2 {
		return Catalog{}, fmt.Errorf("default easy workout %q must have intensity <= 2", easy.ID)
	}

	if err := validatePhaseCoverage(catalog.entries); err != nil {
		return Catalog{}, err
	}

	return catalog, nil
}

func validateEntry(entry Candidate) error {
	if entry.ID == "" || entry.Name == "" {
		return errors.New("id and name are required")
	}
	if entry.Intensity < MinIntensity || entry.Intensity > MaxIntensity {
		return fmt.Errorf("intensity %d outside [%d,%d]", entry.Intensity, MinIntensity, MaxIntensity)
	}
	if entry.DurationMinMinutes <= 0 || entry.DurationMaxMinutes < entry.DurationMinMinutes {
		return fmt.Errorf("invalid duration range %d-%d", entry.DurationMinMinutes, entry.DurationMaxMinutes)
	}
	if entry.FormMin > entry.FormMax {
		return fmt.Errorf("invalid form range %f-%f", entry.FormMin, entry.FormMax)
	}
	if recoveryRank(entry.MinRecovery) < 0 {
		return fmt.Errorf("unknown recovery tier %q", entry.MinRecovery)
	}
	if len(entry.Phases) == 0 {
		return errors.New("at least one applicable phase is required")
	}
	for _, p := range entry.Phases {
		if !knownPhase(p) {
			return fmt.Errorf("unknown phase %q", p)
		}
	}
	return nil
}

// validatePhaseCoverage ensures the selector can never face a phase with an
// empty catalog.
func validatePhaseCoverage(entries []Candidate) error {
	for _, p := range []string{"Base", "Build", "Specialty", "Taper", "Race-Week"} {
		covered := false
		for _, entry := range entries {
			if entryAppliesToPhase(entry, p) {
				covered = true
				break
			}
		}
		if !covered {
			return fmt.Errorf("no catalog entry applies to phase %s", p)
		}
	}
	return nil
}

func knownPhase(p string) bool {
	switch p {
	case "Base", "Build", "Specialty", "Taper", "Race-Week":
		return true
	default:
		return false
	}
}

func entryAppliesToPhase(entry Candidate, p string) bool {
	for _, applicable := range entry.Phases {
		if applicable == p {
			return true
		}
	}
	return false
}

// Get looks up a catalog entry by id.
func (c Catalog) Get(id string) (Candidate, bool) {
	entry, ok := c.byID[id]
	return entry, ok
}

// Entries returns all catalog entries in declaration order.
func (c Catalog) Entries() []Candidate {
	entries := make([]Candidate, len(c.entries))
	copy(entries, c.entries)
	return entries
}

// EasyDefault returns the guaranteed easy entry the selector falls back to.
func (c Catalog) EasyDefault() Candidate {
	return c.byID[c.defaultEasyID]
}

// Summary renders a compact one-line-per-entry view of the catalog for the
// advisory oracle's context.
func (c Catalog) Summary() string {
	var b strings.Builder
	for _, entry := range c.entries {
		fmt.Fprintf(&b, "%s: %s, stimulus %s, intensity %d/5, %d-%d min, phases %s, form %g..%g, recovery >= %s\n",
			entry.ID, entry.Name, entry.Stimulus, entry.Intensity,
			entry.DurationMinMinutes, entry.DurationMaxMinutes,
			strings.Join(entry.Phases, "/"), entry.FormMin, entry.FormMax, entry.MinRecovery)
	}
	return b.String()
}
