package main

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/myrjola/formcoach/internal/e2etest"
)

func TestEvents(t *testing.T) {
	t.Parallel()
	server := startTestServer(t)
	ctx := t.Context()

	// Mutations without the token are rejected.
	unauthenticated := e2etest.NewClient(server.URL(), "")
	err := unauthenticated.PostJSON(ctx, "/api/events", eventRequest{
		Date:     time.Now().AddDate(0, 0, 30).Format(time.DateOnly),
		Priority: "A",
	}, http.StatusCreated, nil)
	if err == nil {
		t.Fatal("expected unauthorized error without bearer token")
	}

	var created eventJSON
	if err = server.Client().PostJSON(ctx, "/api/events", eventRequest{
		Date:        time.Now().AddDate(0, 0, 30).Format(time.DateOnly),
		Priority:    "A",
		Description: "goal race",
	}, http.StatusCreated, &created); err != nil {
		t.Fatalf("create event: %v", err)
	}
	if created.ID == 0 {
		t.Error("created event has no id")
	}

	// An upcoming A event puts the phase on the ladder.
	var phase phaseResponse
	if err = server.Client().GetJSON(ctx, "/api/phase", &phase); err != nil {
		t.Fatalf("get phase: %v", err)
	}
	if phase.Phase != "Specialty" {
		t.Errorf("phase = %q, want Specialty four weeks out", phase.Phase)
	}
	if phase.WeeksToTarget != 4 {
		t.Errorf("weeks to target = %d, want 4", phase.WeeksToTarget)
	}

	var events []eventJSON
	if err = server.Client().GetJSON(ctx, "/api/events", &events); err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(events) != 1 || events[0].ID != created.ID {
		t.Fatalf("events = %+v, want the created one", events)
	}

	if err = server.Client().Delete(ctx,
		fmt.Sprintf("/api/events/%d", created.ID), http.StatusNoContent); err != nil {
		t.Fatalf("delete event: %v", err)
	}
	if err = server.Client().Delete(ctx,
		fmt.Sprintf("/api/events/%d", created.ID), http.StatusNotFound); err != nil {
		t.Fatalf("second delete: %v", err)
	}
}

func TestEvents_invalidPriority(t *testing.T) {
	t.Parallel()
	server := startTestServer(t)

	err := server.Client().PostJSON(t.Context(), "/api/events", eventRequest{
		Date:     time.Now().Format(time.DateOnly),
		Priority: "X",
	}, http.StatusBadRequest, nil)
	if err != nil {
		t.Fatalf("post event: %v", err)
	}
}
