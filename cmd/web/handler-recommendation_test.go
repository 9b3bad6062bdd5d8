package main

import (
	"net/http"
	"testing"
)

func TestRecommendation(t *testing.T) {
	t.Parallel()
	server := startTestServer(t)
	ctx := t.Context()

	if err := server.Client().PostJSON(ctx, "/api/sync", nil, http.StatusOK, nil); err != nil {
		t.Fatalf("sync: %v", err)
	}

	var recommendation recommendationResponse
	if err := server.Client().GetJSON(ctx, "/api/recommendation", &recommendation); err != nil {
		t.Fatalf("get recommendation: %v", err)
	}

	// No oracle key is configured, so the deterministic fallback decides.
	if recommendation.Source != "fallback" {
		t.Errorf("source = %q, want fallback", recommendation.Source)
	}
	if recommendation.TypeID == "" || recommendation.Name == "" {
		t.Errorf("recommendation missing workout: %+v", recommendation)
	}
	if recommendation.Intensity > recommendation.IntensityCeiling {
		t.Errorf("intensity %d exceeds ceiling %d", recommendation.Intensity, recommendation.IntensityCeiling)
	}
	if len(recommendation.Justification) == 0 {
		t.Error("recommendation has no justification")
	}

	// A second read returns the stored decision.
	var again recommendationResponse
	if err := server.Client().GetJSON(ctx, "/api/recommendation", &again); err != nil {
		t.Fatalf("get recommendation again: %v", err)
	}
	if again.ID != recommendation.ID {
		t.Errorf("second read id = %s, want %s", again.ID, recommendation.ID)
	}
}

func TestRecommendation_badDate(t *testing.T) {
	t.Parallel()
	server := startTestServer(t)

	resp, err := server.Client().Get(t.Context(), "/api/recommendation?date=not-a-date")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}
