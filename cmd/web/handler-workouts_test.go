package main

import (
	"net/http"
	"strings"
	"testing"
)

func TestWorkouts(t *testing.T) {
	t.Parallel()
	server := startTestServer(t)
	ctx := t.Context()

	var workouts []workoutSummaryJSON
	if err := server.Client().GetJSON(ctx, "/api/workouts", &workouts); err != nil {
		t.Fatalf("list workouts: %v", err)
	}
	if len(workouts) == 0 {
		t.Fatal("catalog is empty")
	}

	var detail workoutDetailJSON
	if err := server.Client().GetJSON(ctx, "/api/workouts/"+workouts[0].ID, &detail); err != nil {
		t.Fatalf("workout detail: %v", err)
	}
	if !strings.Contains(detail.DescriptionHTML, "<") {
		t.Errorf("description = %q, want rendered HTML", detail.DescriptionHTML)
	}

	resp, err := server.Client().Get(ctx, "/api/workouts/nonexistent")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown workout status = %d, want 404", resp.StatusCode)
	}
}

func TestProgressionEndpoint(t *testing.T) {
	t.Parallel()
	server := startTestServer(t)
	ctx := t.Context()

	if err := server.Client().PostJSON(ctx, "/api/sync", nil, http.StatusOK, nil); err != nil {
		t.Fatalf("sync: %v", err)
	}

	var progressions []progressionJSON
	if err := server.Client().GetJSON(ctx, "/api/progression", &progressions); err != nil {
		t.Fatalf("get progression: %v", err)
	}
	if len(progressions) != 5 {
		t.Fatalf("got %d categories, want 5", len(progressions))
	}
	byCategory := make(map[string]progressionJSON, len(progressions))
	for _, progression := range progressions {
		byCategory[progression.Category] = progression
	}
	// A week of endurance riding registers in the endurance category.
	if byCategory["endurance"].Sessions == 0 {
		t.Errorf("endurance sessions = 0 after a training week: %+v", byCategory["endurance"])
	}
	if byCategory["anaerobic"].Level != 1.0 {
		t.Errorf("anaerobic level = %f, want untouched 1.0", byCategory["anaerobic"].Level)
	}
}

func TestProfileEndpoint(t *testing.T) {
	t.Parallel()
	server := startTestServer(t)
	ctx := t.Context()

	var updated profileResponse
	if err := server.Client().PostJSON(ctx, "/api/profile", profileRequest{
		WeightKg:             72.5,
		ManualThresholdWatts: 250,
	}, http.StatusOK, &updated); err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if updated.WeightKg != 72.5 || updated.ManualThresholdWatts != 250 {
		t.Errorf("profile = %+v, want stored manual values", updated)
	}
	// With no curve data the manual threshold is the estimate of record.
	if updated.ThresholdMethod != "manual" {
		t.Errorf("method = %q, want manual", updated.ThresholdMethod)
	}
	if updated.ThresholdWatts != 250 {
		t.Errorf("threshold = %d, want 250", updated.ThresholdWatts)
	}
}
