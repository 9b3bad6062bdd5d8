package coach

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/myrjola/formcoach/internal/curve"
)

// curveRepository persists the athlete's mean-max power curve.
type curveRepository struct {
	baseRepository
}

// Merge folds fetched curve points into the stored curve. A stored point is
// only replaced when the new effort produced more watts, so the curve keeps
// the season's bests across partial syncs.
func (r *curveRepository) Merge(ctx context.Context, effortDate time.Time, points []curve.Point) error {
	tx, err := r.db.ReadWrite.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, p := range points {
		if p.DurationSeconds <= 0 || p.Watts <= 0 {
			continue
		}
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO power_curve (duration_seconds, watts, effort_date)
			VALUES (?, ?, ?)
			ON CONFLICT (duration_seconds) DO UPDATE SET
				watts = excluded.watts,
				effort_date = excluded.effort_date
			WHERE excluded.watts > power_curve.watts`,
			p.DurationSeconds, p.Watts, formatDate(effortDate)); err != nil {
			return fmt.Errorf("merge curve point %ds: %w", p.DurationSeconds, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// List returns the stored curve points ordered by duration.
func (r *curveRepository) List(ctx context.Context) (_ []curve.Point, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT duration_seconds, watts
		FROM power_curve
		ORDER BY duration_seconds`)
	if err != nil {
		return nil, fmt.Errorf("query power curve: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var points []curve.Point
	for rows.Next() {
		var p curve.Point
		if err = rows.Scan(&p.DurationSeconds, &p.Watts); err != nil {
			return nil, fmt.Errorf("scan curve point: %w", err)
		}
		points = append(points, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate power curve: %w", err)
	}

	return points, nil
}
