package coach

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/myrjola/formcoach/internal/zone"
)

// progressionRepository retains per-run progression snapshots so the scorer
// can detect plateaus against the previous run.
type progressionRepository struct {
	baseRepository
}

// Record stores one scoring run's progressions under a shared timestamp.
func (r *progressionRepository) Record(
	ctx context.Context,
	recordedAt time.Time,
	progressions map[zone.Category]zone.Progression,
) error {
	tx, err := r.db.ReadWrite.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	recordedAtStr := recordedAt.UTC().Format(timestampFormat)
	for category, progression := range progressions {
		var lastTrained *string
		if !progression.LastTrained.IsZero() {
			s := formatDate(progression.LastTrained)
			lastTrained = &s
		}
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO progression_snapshots
				(recorded_at, category, level, trend, last_trained, sessions, avg_load)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (recorded_at, category) DO UPDATE SET
				level = excluded.level,
				trend = excluded.trend,
				last_trained = excluded.last_trained,
				sessions = excluded.sessions,
				avg_load = excluded.avg_load`,
			recordedAtStr, string(category), progression.Level, string(progression.Trend),
			lastTrained, progression.Sessions, progression.AvgLoad); err != nil {
			return fmt.Errorf("insert progression snapshot %s: %w", category, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Latest returns the most recent snapshot recorded at or after notOlderThan.
// Staler snapshots are not comparable for plateau detection, so they are
// ignored and nil is returned.
func (r *progressionRepository) Latest(
	ctx context.Context,
	notOlderThan time.Time,
) (_ map[zone.Category]zone.Progression, err error) {
	var recordedAtStr string
	err = r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT recorded_at
		FROM progression_snapshots
		WHERE recorded_at >= ?
		ORDER BY recorded_at DESC
		LIMIT 1`,
		notOlderThan.UTC().Format(timestampFormat)).Scan(&recordedAtStr)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query latest snapshot timestamp: %w", err)
	}

	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT category, level, trend, last_trained, sessions, avg_load
		FROM progression_snapshots
		WHERE recorded_at = ?`,
		recordedAtStr)
	if err != nil {
		return nil, fmt.Errorf("query progression snapshot: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	progressions := make(map[zone.Category]zone.Progression)
	for rows.Next() {
		var (
			progression zone.Progression
			category    string
			trend       string
			lastTrained sql.NullString
		)
		if err = rows.Scan(&category, &progression.Level, &trend,
			&lastTrained, &progression.Sessions, &progression.AvgLoad); err != nil {
			return nil, fmt.Errorf("scan progression snapshot: %w", err)
		}
		progression.Category = zone.Category(category)
		progression.Trend = zone.Trend(trend)
		if lastTrained.Valid {
			if progression.LastTrained, err = parseDate(lastTrained.String); err != nil {
				return nil, fmt.Errorf("parse last trained date: %w", err)
			}
		}
		progressions[progression.Category] = progression
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate progression snapshot: %w", err)
	}

	return progressions, nil
}
