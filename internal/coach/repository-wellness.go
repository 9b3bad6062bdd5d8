package coach

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// WellnessDay is one day of recovery telemetry. Nil fields mean the athlete
// did not report that signal.
type WellnessDay struct {
	Date          time.Time
	SleepHours    *float64
	HRV           *float64
	RestingHR     *int
	RecoveryScore *int
}

// wellnessRepository persists recovery telemetry.
type wellnessRepository struct {
	baseRepository
}

// Upsert stores the given days, overwriting earlier values for the same
// date. The provider is eventually consistent, the freshest fetch wins.
func (r *wellnessRepository) Upsert(ctx context.Context, days []WellnessDay) error {
	tx, err := r.db.ReadWrite.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, day := range days {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO wellness (wellness_date, sleep_hours, hrv, resting_hr, recovery_score)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (wellness_date) DO UPDATE SET
				sleep_hours = excluded.sleep_hours,
				hrv = excluded.hrv,
				resting_hr = excluded.resting_hr,
				recovery_score = excluded.recovery_score`,
			formatDate(day.Date), day.SleepHours, day.HRV, day.RestingHR, day.RecoveryScore); err != nil {
			return fmt.Errorf("upsert wellness %s: %w", formatDate(day.Date), err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// List returns telemetry in the inclusive date range, oldest first.
func (r *wellnessRepository) List(ctx context.Context, oldest, newest time.Time) (_ []WellnessDay, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT wellness_date, sleep_hours, hrv, resting_hr, recovery_score
		FROM wellness
		WHERE wellness_date BETWEEN ? AND ?
		ORDER BY wellness_date`,
		formatDate(oldest), formatDate(newest))
	if err != nil {
		return nil, fmt.Errorf("query wellness: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var days []WellnessDay
	for rows.Next() {
		var (
			dateStr string
			day     WellnessDay
		)
		if err = rows.Scan(&dateStr, &day.SleepHours, &day.HRV, &day.RestingHR, &day.RecoveryScore); err != nil {
			return nil, fmt.Errorf("scan wellness row: %w", err)
		}
		if day.Date, err = parseDate(dateStr); err != nil {
			return nil, fmt.Errorf("parse wellness date: %w", err)
		}
		days = append(days, day)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wellness: %w", err)
	}

	return days, nil
}
