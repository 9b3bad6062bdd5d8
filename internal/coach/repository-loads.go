package coach

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/myrjola/formcoach/internal/fitness"
)

// loadRepository persists the daily training stress history.
type loadRepository struct {
	baseRepository
}

// ReplaceDays overwrites the stress value for every given day. Sync computes
// the per-date sums from the fetched range first, so re-syncing the same
// range is idempotent instead of double-counting.
func (r *loadRepository) ReplaceDays(ctx context.Context, daily map[time.Time]float64) error {
	tx, err := r.db.ReadWrite.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for date, stress := range daily {
		if stress < 0 {
			return fmt.Errorf("negative stress %f on %s", stress, formatDate(date))
		}
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO load_samples (sample_date, stress)
			VALUES (?, ?)
			ON CONFLICT (sample_date) DO UPDATE SET stress = excluded.stress`,
			formatDate(date), stress); err != nil {
			return fmt.Errorf("upsert load sample %s: %w", formatDate(date), err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// List returns all samples up to and including the given date, in date
// order.
func (r *loadRepository) List(ctx context.Context, until time.Time) (_ []fitness.Sample, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT sample_date, stress
		FROM load_samples
		WHERE sample_date <= ?
		ORDER BY sample_date`,
		formatDate(until))
	if err != nil {
		return nil, fmt.Errorf("query load samples: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var samples []fitness.Sample
	for rows.Next() {
		var (
			dateStr string
			stress  float64
		)
		if err = rows.Scan(&dateStr, &stress); err != nil {
			return nil, fmt.Errorf("scan load sample: %w", err)
		}
		date, parseErr := parseDate(dateStr)
		if parseErr != nil {
			return nil, fmt.Errorf("parse sample date: %w", parseErr)
		}
		samples = append(samples, fitness.Sample{Date: date, Load: stress})
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate load samples: %w", err)
	}

	return samples, nil
}
