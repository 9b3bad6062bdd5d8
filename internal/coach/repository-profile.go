package coach

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/myrjola/formcoach/internal/curve"
)

// Profile holds the athlete's physiological numbers. Estimated fields come
// from curve analysis, the rest are configured by hand.
type Profile struct {
	WeightKg             float64
	ManualThresholdWatts int
	ThresholdWatts       int
	SeasonBestThresholdW int
	AnaerobicCapacityJ   int
	MaxPowerWatts        int
	ThresholdMethod      string
}

// profileRepository persists the singleton athlete profile.
type profileRepository struct {
	baseRepository
}

// Get returns the profile, or a zero-valued one when nothing is stored yet.
func (r *profileRepository) Get(ctx context.Context) (Profile, error) {
	var p Profile
	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT weight_kg, manual_threshold_w, estimated_threshold_w,
			season_best_threshold_w, anaerobic_capacity_j, max_power_w, threshold_method
		FROM athlete_profile
		WHERE id = 1`).Scan(
		&p.WeightKg, &p.ManualThresholdWatts, &p.ThresholdWatts,
		&p.SeasonBestThresholdW, &p.AnaerobicCapacityJ, &p.MaxPowerWatts, &p.ThresholdMethod)
	if errors.Is(err, sql.ErrNoRows) {
		return Profile{ThresholdMethod: curve.MethodNone}, nil
	}
	if err != nil {
		return Profile{}, fmt.Errorf("query athlete profile: %w", err)
	}
	return p, nil
}

// UpdateEstimate records a fresh curve analysis. The season-best threshold
// only moves up, so a detraining dip never erases the peak.
func (r *profileRepository) UpdateEstimate(ctx context.Context, estimate curve.Estimate) error {
	threshold := int(estimate.ThresholdWatts + 0.5)
	if _, err := r.db.ReadWrite.ExecContext(ctx, `
		INSERT INTO athlete_profile
			(id, estimated_threshold_w, season_best_threshold_w,
			 anaerobic_capacity_j, max_power_w, threshold_method, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, datetime('now'))
		ON CONFLICT (id) DO UPDATE SET
			estimated_threshold_w = excluded.estimated_threshold_w,
			season_best_threshold_w = MAX(athlete_profile.season_best_threshold_w, excluded.season_best_threshold_w),
			anaerobic_capacity_j = excluded.anaerobic_capacity_j,
			max_power_w = excluded.max_power_w,
			threshold_method = excluded.threshold_method,
			updated_at = excluded.updated_at`,
		threshold, threshold,
		int(estimate.AnaerobicCapacityJoules+0.5), int(estimate.MaxWatts+0.5),
		estimate.Method); err != nil {
		return fmt.Errorf("update profile estimate: %w", err)
	}
	return nil
}

// UpdateManual stores the hand-configured fields without touching the
// estimated ones.
func (r *profileRepository) UpdateManual(ctx context.Context, weightKg float64, manualThresholdWatts int) error {
	if weightKg < 0 || manualThresholdWatts < 0 {
		return fmt.Errorf("negative profile value")
	}
	if _, err := r.db.ReadWrite.ExecContext(ctx, `
		INSERT INTO athlete_profile (id, weight_kg, manual_threshold_w, updated_at)
		VALUES (1, ?, ?, datetime('now'))
		ON CONFLICT (id) DO UPDATE SET
			weight_kg = excluded.weight_kg,
			manual_threshold_w = excluded.manual_threshold_w,
			updated_at = excluded.updated_at`,
		weightKg, manualThresholdWatts); err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}
