package workout_test

import (
	"strings"
	"testing"

	"github.com/myrjola/formcoach/internal/workout"
)

func TestLoadCatalog(t *testing.T) {
	catalog, err := workout.LoadCatalog()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}

	entries := catalog.Entries()
	if len(entries) == 0 {
		t.Fatal("catalog must not be empty")
	}

	seen := map[string]bool{}
	for _, entry := range entries {
		if seen[entry.ID] {
			t.Errorf("duplicate id %q", entry.ID)
		}
		seen[entry.ID] = true

		if entry.Intensity < workout.MinIntensity || entry.Intensity > workout.MaxIntensity {
			t.Errorf("%s: intensity %d out of bounds", entry.ID, entry.Intensity)
		}
		if entry.DurationMinMinutes <= 0 || entry.DurationMaxMinutes < entry.DurationMinMinutes {
			t.Errorf("%s: invalid duration range", entry.ID)
		}
		if len(entry.Phases) == 0 {
			t.Errorf("%s: no applicable phases", entry.ID)
		}
	}

	easy := catalog.EasyDefault()
	if easy.ID == "" {
		t.Fatal("catalog must declare an easy default")
	}
	if easy.Intensity > 2 {
		t.Errorf("easy default %s must be intensity <= 2, got %d", easy.ID, easy.Intensity)
	}

	if _, ok := catalog.Get(easy.ID); !ok {
		t.Error("easy default must be resolvable through Get")
	}
}

func TestCatalogSummary(t *testing.T) {
	catalog, err := workout.LoadCatalog()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}

	summary := catalog.Summary()
	for _, entry := range catalog.Entries() {
		if !strings.Contains(summary, entry.ID) {
			t.Errorf("summary should mention %s", entry.ID)
		}
	}
	if lines := strings.Count(summary, "\n"); lines != len(catalog.Entries()) {
		t.Errorf("summary should hold one line per entry, got %d lines", lines)
	}
}
