package coach

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/myrjola/formcoach/internal/advisory"
)

// Alternate is a runner-up workout the athlete can swap in.
type Alternate struct {
	TypeID    string `json:"type_id"`
	Intensity int    `json:"intensity"`
	Rationale string `json:"rationale,omitempty"`
}

// Recommendation is a persisted workout decision for a date.
type Recommendation struct {
	ID               string
	ForDate          time.Time
	TypeID           string
	Intensity        int
	IntensityCeiling int
	Source           advisory.Source
	Justification    []string
	Alternates       []Alternate
}

// recommendationRepository persists workout decisions for later review.
type recommendationRepository struct {
	baseRepository
}

// Create stores a recommendation.
func (r *recommendationRepository) Create(ctx context.Context, rec Recommendation) error {
	justification, err := json.Marshal(rec.Justification)
	if err != nil {
		return fmt.Errorf("marshal justification: %w", err)
	}
	alternates, err := json.Marshal(rec.Alternates)
	if err != nil {
		return fmt.Errorf("marshal alternates: %w", err)
	}
	if _, err = r.db.ReadWrite.ExecContext(ctx, `
		INSERT INTO recommendations
			(id, for_date, type_id, intensity, intensity_ceiling, source, justification, alternates)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, formatDate(rec.ForDate), rec.TypeID, rec.Intensity, rec.IntensityCeiling,
		string(rec.Source), string(justification), string(alternates)); err != nil {
		return fmt.Errorf("insert recommendation: %w", err)
	}
	return nil
}

// GetByDate returns the latest recommendation made for the given date, or
// ErrNotFound when none exists.
func (r *recommendationRepository) GetByDate(ctx context.Context, date time.Time) (Recommendation, error) {
	var (
		rec           Recommendation
		dateStr       string
		source        string
		justification string
		alternates    string
	)
	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT id, for_date, type_id, intensity, intensity_ceiling, source, justification, alternates
		FROM recommendations
		WHERE for_date = ?
		ORDER BY created_at DESC
		LIMIT 1`,
		formatDate(date)).Scan(&rec.ID, &dateStr, &rec.TypeID, &rec.Intensity,
		&rec.IntensityCeiling, &source, &justification, &alternates)
	if errors.Is(err, sql.ErrNoRows) {
		return Recommendation{}, ErrNotFound
	}
	if err != nil {
		return Recommendation{}, fmt.Errorf("query recommendation: %w", err)
	}
	if rec.ForDate, err = parseDate(dateStr); err != nil {
		return Recommendation{}, fmt.Errorf("parse recommendation date: %w", err)
	}
	rec.Source = advisory.Source(source)
	if justification != "" {
		if err = json.Unmarshal([]byte(justification), &rec.Justification); err != nil {
			return Recommendation{}, fmt.Errorf("unmarshal justification: %w", err)
		}
	}
	if alternates != "" {
		if err = json.Unmarshal([]byte(alternates), &rec.Alternates); err != nil {
			return Recommendation{}, fmt.Errorf("unmarshal alternates: %w", err)
		}
	}
	return rec, nil
}
