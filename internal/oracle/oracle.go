// Package oracle is the advisory oracle client: it asks an OpenAI model for
// a ranked set of workout candidates or a periodization phase suggestion,
// under strict JSON-schema response formats. Everything it returns is
// advisory; callers own their deterministic fallback.
package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/myrjola/formcoach/internal/workout"
	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// ErrDisabled is returned by every operation when no API key is configured.
// Callers treat it exactly like an unavailable oracle.
var ErrDisabled = errors.New("oracle disabled: no API key configured")

// ErrNoValidCandidates is returned when strict validation discards the whole
// response.
var ErrNoValidCandidates = errors.New("oracle returned no valid candidates")

// Client wraps the OpenAI chat completions API.
type Client struct {
	client  openai.Client
	logger  *slog.Logger
	enabled bool
}

// New creates an oracle client. An empty API key yields a disabled client
// whose calls fail with ErrDisabled, which keeps every call site on its
// fallback path without special-casing configuration.
func New(apiKey string, logger *slog.Logger) *Client {
	return &Client{
		client:  openai.NewClient(option.WithAPIKey(apiKey)),
		logger:  logger,
		enabled: apiKey != "",
	}
}

// EngineContext is the structured decision context sent to the oracle for
// workout ranking.
type EngineContext struct {
	Date              string         `json:"date"`
	FormScore         float64        `json:"form"`
	LongAverage       float64        `json:"fitness_long_average"`
	ShortAverage      float64        `json:"fatigue_short_average"`
	Recovery          string         `json:"recovery_tier"`
	DaysSinceLast     int            `json:"days_since_last_session"`
	LastIntensity     int            `json:"last_session_intensity"`
	StimulusCounts    map[string]int `json:"stimulus_counts_14d"`
	Phase             string         `json:"phase"`
	PhaseFocus        string         `json:"phase_focus"`
	EventTomorrow     string         `json:"event_tomorrow_priority,omitempty"`
	EventYesterday    string         `json:"event_yesterday_priority,omitempty"`
	IntensityCeiling  int            `json:"intensity_ceiling"`
	TargetDurationMin int            `json:"target_duration_min_minutes"`
	TargetDurationMax int            `json:"target_duration_max_minutes"`
	CatalogSummary    string         `json:"catalog"`
}

// Candidate is one ranked workout suggestion from the oracle.
type Candidate struct {
	TypeID    string  `json:"type_id"`
	Intensity int     `json:"intensity"`
	Score     float64 `json:"score"`
	Rationale string  `json:"rationale"`
}

type rankingResponse struct {
	Candidates []Candidate `json:"candidates"`
}

const rankingPrompt = `You are an endurance cycling coach choosing today's workout.
Rank up to 4 workouts from the catalog for the athlete's situation below.
Only use type_id values that appear in the catalog. Never rank a workout whose
intensity exceeds the intensity ceiling. Score each candidate 0-1 by fit.
Athlete context (JSON):
%s`

// RankWorkouts asks the oracle for ranked candidates and validates them one
// by one against the catalog: an unknown type id, an intensity disagreeing
// with the catalog entry or exceeding the day's ceiling, or a score out of
// range discards that candidate alone, never the whole response.
func (c *Client) RankWorkouts(
	ctx context.Context,
	engineContext EngineContext,
	catalog workout.Catalog,
) ([]Candidate, error) {
	if !c.enabled {
		return nil, ErrDisabled
	}

	contextJSON, err := json.Marshal(engineContext)
	if err != nil {
		return nil, fmt.Errorf("marshal engine context: %w", err)
	}

	var response rankingResponse
	if err = c.complete(ctx,
		fmt.Sprintf(rankingPrompt, contextJSON),
		"workout_ranking",
		rankingSchema(catalog),
		&response,
	); err != nil {
		return nil, err
	}

	valid := make([]Candidate, 0, len(response.Candidates))
	for _, candidate := range response.Candidates {
		if reason := c.invalidCandidate(candidate, engineContext.IntensityCeiling, catalog); reason != "" {
			c.logger.LogAttrs(ctx, slog.LevelWarn, "discarding oracle candidate",
				slog.String("type_id", candidate.TypeID),
				slog.String("reason", reason))
			continue
		}
		valid = append(valid, candidate)
	}
	if len(valid) == 0 {
		return nil, ErrNoValidCandidates
	}

	return valid, nil
}

// invalidCandidate returns a non-empty reason when the candidate must be
// discarded.
func (c *Client) invalidCandidate(candidate Candidate, ceiling int, catalog workout.Catalog) string {
	entry, ok := catalog.Get(candidate.TypeID)
	if !ok {
		return "type id not in catalog"
	}
	if candidate.Intensity != entry.Intensity {
		return fmt.Sprintf("intensity %d disagrees with catalog entry %d", candidate.Intensity, entry.Intensity)
	}
	if candidate.Intensity > ceiling {
		return fmt.Sprintf("intensity %d exceeds ceiling %d", candidate.Intensity, ceiling)
	}
	if candidate.Score < 0 || candidate.Score > 1 {
		return fmt.Sprintf("score %f outside [0,1]", candidate.Score)
	}
	return ""
}

// PhaseContext is the structured context for a phase suggestion.
type PhaseContext struct {
	Date           string  `json:"date"`
	DerivedPhase   string  `json:"derived_phase"`
	WeeksToTarget  int     `json:"weeks_to_target"`
	FormScore      float64 `json:"form"`
	FormTrend      string  `json:"form_trend,omitempty"`
	RecentLoadDrop bool    `json:"recent_load_drop,omitempty"`
}

// PhaseOverride is the oracle's phase suggestion. The phase name must be one
// of the five well-formed names or the caller discards the override.
type PhaseOverride struct {
	Phase      string  `json:"phase"`
	Focus      string  `json:"focus"`
	Reasoning  string  `json:"reasoning"`
	Confidence float64 `json:"confidence"`
}

const phasePrompt = `You are an endurance coach reviewing a date-derived periodization phase.
Suggest the phase that best fits the athlete's trajectory, with a short
reasoning and your confidence 0-1. Phase must be one of Base, Build,
Specialty, Taper, Race-Week.
Context (JSON):
%s`

// SuggestPhase asks the oracle whether the date-derived phase should be
// overridden.
func (c *Client) SuggestPhase(ctx context.Context, phaseContext PhaseContext) (PhaseOverride, error) {
	if !c.enabled {
		return PhaseOverride{}, ErrDisabled
	}

	contextJSON, err := json.Marshal(phaseContext)
	if err != nil {
		return PhaseOverride{}, fmt.Errorf("marshal phase context: %w", err)
	}

	var override PhaseOverride
	if err = c.complete(ctx,
		fmt.Sprintf(phasePrompt, contextJSON),
		"phase_suggestion",
		phaseSchema(),
		&override,
	); err != nil {
		return PhaseOverride{}, err
	}

	return override, nil
}

// complete runs one strict-schema chat completion and unmarshals the answer.
func (c *Client) complete(ctx context.Context, prompt, schemaName string, schema map[string]any, out any) error {
	completion, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModelGPT4o,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   schemaName,
					Strict: openai.Bool(true),
					Schema: schema,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("chat completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return errors.New("chat completion returned no choices")
	}

	if err = json.Unmarshal([]byte(completion.Choices[0].Message.Content), out); err != nil {
		return fmt.Errorf("parse %s response: %w", schemaName, err)
	}
	return nil
}

// rankingSchema constrains type ids to the catalog, mirroring how the
// catalog itself bounds the fallback selector.
func rankingSchema(catalog workout.Catalog) map[string]any {
	ids := make([]string, 0, len(catalog.Entries()))
	for _, entry := range catalog.Entries() {
		ids = append(ids, entry.ID)
	}

	return map[string]any{
		"type":                 "object",
		"required":             []string{"candidates"},
		"additionalProperties": false,
		"properties": map[string]any{
			"candidates": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":                 "object",
					"required":             []string{"type_id", "intensity", "score", "rationale"},
					"additionalProperties": false,
					"properties": map[string]any{
						"type_id":   map[string]any{"type": "string", "enum": ids},
						"intensity": map[string]any{"type": "integer", "minimum": 1, "maximum": 5},
						"score":     map[string]any{"type": "number", "minimum": 0, "maximum": 1},
						"rationale": map[string]any{"type": "string"},
					},
				},
			},
		},
	}
}

func phaseSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"required":             []string{"phase", "focus", "reasoning", "confidence"},
		"additionalProperties": false,
		"properties": map[string]any{
			"phase": map[string]any{
				"type": "string",
				"enum": []string{"Base", "Build", "Specialty", "Taper", "Race-Week"},
			},
			"focus":      map[string]any{"type": "string"},
			"reasoning":  map[string]any{"type": "string"},
			"confidence": map[string]any{"type": "number", "minimum": 0, "maximum": 1},
		},
	}
}
