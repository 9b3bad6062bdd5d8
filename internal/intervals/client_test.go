package intervals_test

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/myrjola/formcoach/internal/intervals"
	"github.com/myrjola/formcoach/internal/testhelpers"
)

func dateRange() (time.Time, time.Time) {
	newest := time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)
	return newest.AddDate(0, 0, -42), newest
}

func TestActivities(t *testing.T) {
	var gotPath, gotQuery, gotUser string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotUser, _, _ = r.BasicAuth()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id": 101, "start_date_local": "2026-08-20T09:15:00", "moving_time": 5400,
			 "icu_training_load": 85, "icu_zone_times": [600, 3000, 1200, 600, 0, 0, 0],
			 "sweet_spot_time": 400}
		]`))
	}))
	defer server.Close()

	client := intervals.NewClient(server.URL, "test-key", "i12345",
		testhelpers.NewLogger(testhelpers.NewWriter(t)))

	oldest, newest := dateRange()
	activities, err := client.Activities(t.Context(), oldest, newest)
	if err != nil {
		t.Fatalf("activities: %v", err)
	}

	if gotPath != "/athlete/i12345/activities" {
		t.Errorf("want athlete-scoped path, got %s", gotPath)
	}
	if gotQuery != "newest=2026-08-25&oldest=2026-07-14" {
		t.Errorf("want inclusive date range query, got %s", gotQuery)
	}
	if gotUser != "test-key" {
		t.Errorf("want API key as basic auth username, got %q", gotUser)
	}

	if len(activities) != 1 {
		t.Fatalf("want 1 activity, got %d", len(activities))
	}
	activity := activities[0]
	if activity.ID != 101 || activity.TrainingLoad != 85 || activity.MovingTime != 5400 {
		t.Errorf("unexpected activity %+v", activity)
	}
	date, err := activity.Date()
	if err != nil {
		t.Fatalf("parse date: %v", err)
	}
	if date.Format(time.DateOnly) != "2026-08-20" {
		t.Errorf("want date 2026-08-20, got %s", date)
	}
}

func TestWellness_MissingFieldsStayNil(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id": "2026-08-24", "sleepSecs": 27000, "hrv": 62.5, "restingHR": 44, "readiness": 80},
			{"id": "2026-08-25"}
		]`))
	}))
	defer server.Close()

	client := intervals.NewClient(server.URL, "test-key", "i12345",
		testhelpers.NewLogger(testhelpers.NewWriter(t)))

	oldest, newest := dateRange()
	days, err := client.Wellness(t.Context(), oldest, newest)
	if err != nil {
		t.Fatalf("wellness: %v", err)
	}
	if len(days) != 2 {
		t.Fatalf("want 2 days, got %d", len(days))
	}
	if days[0].RecoveryScore == nil || *days[0].RecoveryScore != 80 {
		t.Errorf("want readiness 80, got %+v", days[0].RecoveryScore)
	}
	if days[1].RecoveryScore != nil || days[1].HRV != nil {
		t.Error("unreported telemetry must stay nil, not zero")
	}
}

func TestRetry_TransientServerErrorRecovers(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "upstream unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"secs": [60, 300], "watts": [410, 330]}`))
	}))
	defer server.Close()

	client := intervals.NewClient(server.URL, "test-key", "i12345",
		testhelpers.NewLogger(testhelpers.NewWriter(t)))

	oldest, newest := dateRange()
	curve, err := client.PowerCurve(t.Context(), oldest, newest)
	if err != nil {
		t.Fatalf("power curve should succeed after transient failures: %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("want 3 attempts, got %d", calls.Load())
	}
	if len(curve.Secs) != 2 || curve.Watts[0] != 410 {
		t.Errorf("unexpected curve %+v", curve)
	}
}

func TestRetry_ClientErrorFailsFast(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, "unknown athlete", http.StatusNotFound)
	}))
	defer server.Close()

	client := intervals.NewClient(server.URL, "test-key", "i12345",
		testhelpers.NewLogger(testhelpers.NewWriter(t)))

	oldest, newest := dateRange()
	if _, err := client.Events(t.Context(), oldest, newest); err == nil {
		t.Fatal("404 should surface as an error")
	}
	if calls.Load() != 1 {
		t.Errorf("client errors must not retry, got %d calls", calls.Load())
	}
}

func TestEventPriorityTier(t *testing.T) {
	tests := []struct {
		category string
		want     string
		isGoal   bool
	}{
		{category: "RACE_A", want: "A", isGoal: true},
		{category: "RACE_B", want: "B", isGoal: true},
		{category: "RACE_C", want: "C", isGoal: true},
		{category: "NOTE", want: "", isGoal: false},
		{category: "", want: "", isGoal: false},
	}

	for _, tt := range tests {
		event := intervals.Event{Category: tt.category}
		tier, ok := event.PriorityTier()
		if tier != tt.want || ok != tt.isGoal {
			t.Errorf("category %q: want (%q,%v), got (%q,%v)", tt.category, tt.want, tt.isGoal, tier, ok)
		}
	}
}
