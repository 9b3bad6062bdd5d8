// Package intervals is the athlete data provider client. It speaks the
// intervals.icu-style REST API: basic auth with the API key as username,
// inclusive date-range queries, JSON payloads. All calls run behind the
// advisory package's bounded retry; the provider is assumed eventually
// consistent.
package intervals

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/gregjones/httpcache"
	"github.com/myrjola/formcoach/internal/advisory"
)

// Client queries one athlete's data.
type Client struct {
	baseURL    string
	apiKey     string
	athleteID  string
	httpClient *http.Client
	logger     *slog.Logger
	retry      advisory.Options
}

// NewClient creates a provider client. The caching transport spares the
// provider repeated identical range queries within a run.
func NewClient(baseURL, apiKey, athleteID string, logger *slog.Logger) *Client {
	transport := httpcache.NewMemoryCacheTransport()
	return &Client{
		baseURL:   baseURL,
		apiKey:    apiKey,
		athleteID: athleteID,
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   30 * time.Second,
		},
		logger: logger,
		retry:  advisory.DefaultOptions(),
	}
}

// Activity is a recorded session with its training load and time-in-zone
// split.
type Activity struct {
	ID             int64   `json:"id"`
	StartDateLocal string  `json:"start_date_local"`
	MovingTime     int     `json:"moving_time"`
	TrainingLoad   float64 `json:"icu_training_load"`
	ZoneTimes      []int   `json:"icu_zone_times"`
	SweetSpotTime  int     `json:"sweet_spot_time"`
}

// Date parses the activity's local start date.
func (a Activity) Date() (time.Time, error) {
	date, err := time.Parse("2006-01-02T15:04:05", a.StartDateLocal)
	if err != nil {
		// Some payloads carry a date only.
		date, err = time.Parse(time.DateOnly, a.StartDateLocal)
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("parse activity start date %q: %w", a.StartDateLocal, err)
	}
	return date, nil
}

// WellnessDay is one day of recovery telemetry. Pointer fields distinguish
// "not reported" from zero.
type WellnessDay struct {
	Date          string   `json:"id"`
	SleepSeconds  *int     `json:"sleepSecs"`
	HRV           *float64 `json:"hrv"`
	RestingHR     *int     `json:"restingHR"`
	RecoveryScore *int     `json:"readiness"`
}

// PowerCurve is the season's best-effort curve as parallel arrays.
type PowerCurve struct {
	Secs  []int     `json:"secs"`
	Watts []float64 `json:"watts"`
}

// Event is a dated goal event with its priority tier.
type Event struct {
	ID          int64  `json:"id"`
	StartDate   string `json:"start_date_local"`
	Category    string `json:"category"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// PriorityTier maps the provider's RACE_A/RACE_B/RACE_C categories to the
// engine's A/B/C tiers; anything else is not a goal event.
func (e Event) PriorityTier() (string, bool) {
	switch e.Category {
	case "RACE_A":
		return "A", true
	case "RACE_B":
		return "B", true
	case "RACE_C":
		return "C", true
	default:
		return "", false
	}
}

// Activities lists activities in the inclusive date range.
func (c *Client) Activities(ctx context.Context, oldest, newest time.Time) ([]Activity, error) {
	var activities []Activity
	err := c.getJSON(ctx, "/activities", oldest, newest, &activities)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	return activities, nil
}

// Wellness lists recovery telemetry in the inclusive date range.
func (c *Client) Wellness(ctx context.Context, oldest, newest time.Time) ([]WellnessDay, error) {
	var days []WellnessDay
	err := c.getJSON(ctx, "/wellness", oldest, newest, &days)
	if err != nil {
		return nil, fmt.Errorf("list wellness: %w", err)
	}
	return days, nil
}

// PowerCurve fetches the best-effort curve over the inclusive date range.
func (c *Client) PowerCurve(ctx context.Context, oldest, newest time.Time) (PowerCurve, error) {
	var curve PowerCurve
	err := c.getJSON(ctx, "/power-curve", oldest, newest, &curve)
	if err != nil {
		return PowerCurve{}, fmt.Errorf("fetch power curve: %w", err)
	}
	return curve, nil
}

// Events lists calendar events in the inclusive date range.
func (c *Client) Events(ctx context.Context, oldest, newest time.Time) ([]Event, error) {
	var events []Event
	err := c.getJSON(ctx, "/events", oldest, newest, &events)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// getJSON performs one authenticated range query with bounded retries.
func (c *Client) getJSON(ctx context.Context, path string, oldest, newest time.Time, out any) error {
	query := url.Values{}
	query.Set("oldest", oldest.Format(time.DateOnly))
	query.Set("newest", newest.Format(time.DateOnly))
	requestURL := fmt.Sprintf("%s/athlete/%s%s?%s", c.baseURL, url.PathEscape(c.athleteID), path, query.Encode())

	return advisory.Do(ctx, c.logger, c.retry, "provider "+path, func(ctx context.Context) error {
		request, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		// Basic auth with the API key as username and no password, per the
		// provider's convention.
		request.SetBasicAuth(c.apiKey, "")

		response, err := c.httpClient.Do(request)
		if err != nil {
			return fmt.Errorf("execute request: %w", err)
		}
		defer func() {
			_ = response.Body.Close()
		}()

		if response.StatusCode >= http.StatusBadRequest {
			body, _ := io.ReadAll(io.LimitReader(response.Body, 512))
			return fmt.Errorf("API error %d: %s", response.StatusCode, body)
		}

		if err = json.NewDecoder(response.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	})
}
