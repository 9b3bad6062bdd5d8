package main

import (
	"net/http"
	"testing"
)

func TestFitness(t *testing.T) {
	t.Parallel()
	server := startTestServer(t)
	ctx := t.Context()

	// Cold start: zero state, not an error.
	var cold fitnessResponse
	if err := server.Client().GetJSON(ctx, "/api/fitness", &cold); err != nil {
		t.Fatalf("get fitness: %v", err)
	}
	if cold.Long != 0 || cold.Short != 0 {
		t.Errorf("cold start fitness = %+v, want zeroes", cold)
	}

	if err := server.Client().PostJSON(ctx, "/api/sync", nil, http.StatusOK, nil); err != nil {
		t.Fatalf("sync: %v", err)
	}

	var state fitnessResponse
	if err := server.Client().GetJSON(ctx, "/api/fitness", &state); err != nil {
		t.Fatalf("get fitness after sync: %v", err)
	}
	if state.Long <= 0 || state.Short <= 0 {
		t.Errorf("fitness after a training week = %+v, want positive averages", state)
	}
	if state.Form != state.Long-state.Short {
		t.Errorf("form = %f, want fitness minus fatigue %f", state.Form, state.Long-state.Short)
	}
}

func TestProjection(t *testing.T) {
	t.Parallel()
	server := startTestServer(t)
	ctx := t.Context()

	var projection projectionResponse
	if err := server.Client().GetJSON(ctx, "/api/projection?days=7", &projection); err != nil {
		t.Fatalf("get projection: %v", err)
	}
	if len(projection.Points) != 7 {
		t.Fatalf("got %d points, want 7", len(projection.Points))
	}

	resp, err := server.Client().Get(ctx, "/api/projection?days=-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("negative horizon status = %d, want 400", resp.StatusCode)
	}
}

func TestImpact(t *testing.T) {
	t.Parallel()
	server := startTestServer(t)
	ctx := t.Context()

	if err := server.Client().PostJSON(ctx, "/api/sync", nil, http.StatusOK, nil); err != nil {
		t.Fatalf("sync: %v", err)
	}

	var impact impactResponse
	if err := server.Client().GetJSON(ctx, "/api/impact?load=150&days=7", &impact); err != nil {
		t.Fatalf("get impact: %v", err)
	}
	if len(impact.With) != 7 || len(impact.Without) != 7 {
		t.Fatalf("projection lengths = %d/%d, want 7/7", len(impact.With), len(impact.Without))
	}
	if impact.FormDelta >= 0 {
		t.Errorf("form delta = %f, want negative after an added session", impact.FormDelta)
	}
}
