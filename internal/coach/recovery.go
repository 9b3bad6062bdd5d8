package coach

import (
	"github.com/myrjola/formcoach/internal/workout"
)

// Recovery score cut points and the HRV deviation band used when no score is
// reported.
const (
	highRecoveryScore     = 70
	moderateRecoveryScore = 40

	hrvDeviationFraction = 0.05
	hrvBaselineDays      = 28
)

// recoveryTier derives today's recovery tier from telemetry. The device's
// own recovery score wins when present; otherwise today's HRV is compared
// against its recent mean, a deviation beyond 5% either way deciding the
// tier. With neither signal the tier is moderate: no data is not evidence of
// poor recovery, and the intensity ceiling stays conservative elsewhere.
func recoveryTier(days []WellnessDay) workout.Recovery {
	if len(days) == 0 {
		return workout.RecoveryModerate
	}

	today := days[len(days)-1]
	if today.RecoveryScore != nil {
		switch {
		case *today.RecoveryScore >= highRecoveryScore:
			return workout.RecoveryHigh
		case *today.RecoveryScore >= moderateRecoveryScore:
			return workout.RecoveryModerate
		default:
			return workout.RecoveryLow
		}
	}

	if today.HRV == nil {
		return workout.RecoveryModerate
	}
	var (
		sum   float64
		count int
	)
	for _, day := range days[:len(days)-1] {
		if day.HRV != nil {
			sum += *day.HRV
			count++
		}
	}
	if count == 0 {
		return workout.RecoveryModerate
	}
	mean := sum / float64(count)
	switch {
	case *today.HRV >= mean*(1+hrvDeviationFraction):
		return workout.RecoveryHigh
	case *today.HRV <= mean*(1-hrvDeviationFraction):
		return workout.RecoveryLow
	default:
		return workout.RecoveryModerate
	}
}
