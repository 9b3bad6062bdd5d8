package coach

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/myrjola/formcoach/internal/zone"
)

// exposureRepository persists zone exposures. Exposures are immutable:
// created once per qualifying session and never updated.
type exposureRepository struct {
	baseRepository
}

// Create stores an exposure unless the session was already classified.
func (r *exposureRepository) Create(ctx context.Context, e zone.Exposure) error {
	z := e.ZoneSeconds
	if _, err := r.db.ReadWrite.ExecContext(ctx, `
		INSERT INTO zone_exposures (
			session_id, session_date,
			zone1_seconds, zone2_seconds, zone3_seconds, zone4_seconds,
			zone5_seconds, zone6_seconds, zone7_seconds,
			sweet_spot_seconds, total_seconds, dominant_zone, stimulus, session_load
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (session_id) DO NOTHING`,
		e.SessionID, formatDate(e.Date),
		z[0], z[1], z[2], z[3], z[4], z[5], z[6],
		e.SweetSpotSeconds, e.TotalSeconds, e.DominantZone, string(e.Stimulus), e.Load); err != nil {
		return fmt.Errorf("insert zone exposure %d: %w", e.SessionID, err)
	}
	return nil
}

// List returns exposures on or after the given date, oldest first.
func (r *exposureRepository) List(ctx context.Context, since time.Time) (_ []zone.Exposure, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT session_id, session_date,
			zone1_seconds, zone2_seconds, zone3_seconds, zone4_seconds,
			zone5_seconds, zone6_seconds, zone7_seconds,
			sweet_spot_seconds, total_seconds, dominant_zone, stimulus, session_load
		FROM zone_exposures
		WHERE session_date >= ?
		ORDER BY session_date`,
		formatDate(since))
	if err != nil {
		return nil, fmt.Errorf("query zone exposures: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var exposures []zone.Exposure
	for rows.Next() {
		var (
			e        zone.Exposure
			dateStr  string
			stimulus string
		)
		if err = rows.Scan(&e.SessionID, &dateStr,
			&e.ZoneSeconds[0], &e.ZoneSeconds[1], &e.ZoneSeconds[2], &e.ZoneSeconds[3],
			&e.ZoneSeconds[4], &e.ZoneSeconds[5], &e.ZoneSeconds[6],
			&e.SweetSpotSeconds, &e.TotalSeconds, &e.DominantZone, &stimulus, &e.Load); err != nil {
			return nil, fmt.Errorf("scan zone exposure: %w", err)
		}
		if e.Date, err = parseDate(dateStr); err != nil {
			return nil, fmt.Errorf("parse exposure date: %w", err)
		}
		e.Stimulus = zone.Stimulus(stimulus)
		exposures = append(exposures, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate zone exposures: %w", err)
	}

	return exposures, nil
}
