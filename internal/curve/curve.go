// Package curve normalizes raw best-effort power curves into a duration-
// indexed mean-maximal shape and estimates threshold and anaerobic capacity
// through a documented model-priority fallback chain.
package curve

import (
	"math"
	"sort"
)

// Estimation method names, in fallback priority order.
const (
	MethodCriticalPower = "critical-power"
	MethodBest20        = "best-20min"
	MethodBest60        = "best-60min"
	MethodManual        = "manual"
	MethodNone          = "none"
)

// Critical-power regression window. Points much shorter than two minutes are
// dominated by anaerobic capacity, points past twenty minutes by fatigue
// beyond the model's reach.
const (
	regressionMinSeconds = 120
	regressionMaxSeconds = 1200
	regressionMinPoints  = 3
)

const (
	best20Seconds = 1200
	best60Seconds = 3600

	// best20Fraction scales a 20-minute best effort down to threshold.
	best20Fraction = 0.95
)

// Point is one duration/output sample of a best-effort curve.
type Point struct {
	DurationSeconds int
	Watts           float64
}

// Estimate is the analyzer's output, stamped with the method that produced
// the threshold figure.
type Estimate struct {
	ThresholdWatts          float64
	AnaerobicCapacityJoules float64
	MaxWatts                float64
	Method                  string
}

// Normalize sorts points by duration, keeps the best output per duration,
// and enforces the non-increasing mean-maximal shape: no longer effort can
// exceed a shorter one.
func Normalize(points []Point) []Point {
	best := make(map[int]float64, len(points))
	for _, p := range points {
		if p.DurationSeconds <= 0 || p.Watts <= 0 {
			continue
		}
		if p.Watts > best[p.DurationSeconds] {
			best[p.DurationSeconds] = p.Watts
		}
	}

	normalized := make([]Point, 0, len(best))
	for duration, watts := range best {
		normalized = append(normalized, Point{DurationSeconds: duration, Watts: watts})
	}
	sort.Slice(normalized, func(i, j int) bool {
		return normalized[i].DurationSeconds < normalized[j].DurationSeconds
	})

	// A longer effort can never out-power a shorter one on a mean-maximal
	// curve; propagate the ceiling left to right.
	for i := len(normalized) - 2; i >= 0; i-- {
		if normalized[i].Watts < normalized[i+1].Watts {
			normalized[i].Watts = normalized[i+1].Watts
		}
	}

	return normalized
}

// Analyze estimates threshold, anaerobic capacity, and max sustained output
// from a normalized curve.
//
// The threshold fallback chain, in priority order: critical-power regression
// when enough mid-duration points exist, 95% of the best 20-minute output,
// the best 60-minute output, the manually configured threshold, and finally
// a zero value stamped "none".
func Analyze(points []Point, manualThresholdWatts float64) Estimate {
	normalized := Normalize(points)

	estimate := Estimate{Method: MethodNone}
	for _, p := range normalized {
		if p.Watts > estimate.MaxWatts {
			estimate.MaxWatts = p.Watts
		}
	}

	cp, wPrime, ok := criticalPower(normalized)
	switch {
	case ok:
		estimate.ThresholdWatts = cp
		estimate.AnaerobicCapacityJoules = wPrime
		estimate.Method = MethodCriticalPower
	case wattsAt(normalized, best20Seconds) > 0:
		estimate.ThresholdWatts = best20Fraction * wattsAt(normalized, best20Seconds)
		estimate.Method = MethodBest20
	case wattsAt(normalized, best60Seconds) > 0:
		estimate.ThresholdWatts = wattsAt(normalized, best60Seconds)
		estimate.Method = MethodBest60
	case manualThresholdWatts > 0:
		estimate.ThresholdWatts = manualThresholdWatts
		estimate.Method = MethodManual
	}

	if estimate.Method != MethodCriticalPower {
		estimate.AnaerobicCapacityJoules = anaerobicFromOneMinute(normalized, estimate.ThresholdWatts)
	}

	return estimate
}

// criticalPower fits work = CP·t + W′ by least squares over the regression
// window. The fit is rejected when the window is thin or the parameters come
// out non-physical.
func criticalPower(normalized []Point) (cp, wPrime float64, ok bool) {
	var xs, ys []float64
	for _, p := range normalized {
		if p.DurationSeconds < regressionMinSeconds || p.DurationSeconds > regressionMaxSeconds {
			continue
		}
		xs = append(xs, float64(p.DurationSeconds))
		ys = append(ys, p.Watts*float64(p.DurationSeconds))
	}
	if len(xs) < regressionMinPoints {
		return 0, 0, false
	}

	n := float64(len(xs))
	var sumX, sumY, sumXY, sumXX float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
		sumXY += xs[i] * ys[i]
		sumXX += xs[i] * xs[i]
	}

	denominator := n*sumXX - sumX*sumX
	if math.Abs(denominator) < 1e-9 {
		return 0, 0, false
	}
	cp = (n*sumXY - sumX*sumY) / denominator
	wPrime = (sumY - cp*sumX) / n

	if cp <= 0 || wPrime <= 0 {
		return 0, 0, false
	}
	return cp, wPrime, true
}

// anaerobicFromOneMinute approximates W′ as a minute's worth of output above
// threshold, when that difference is positive.
func anaerobicFromOneMinute(normalized []Point, thresholdWatts float64) float64 {
	oneMinute := wattsAt(normalized, 60)
	if thresholdWatts <= 0 || oneMinute <= thresholdWatts {
		return 0
	}
	return 60 * (oneMinute - thresholdWatts)
}

// wattsAt returns the output at the shortest duration of at least seconds,
// which on a normalized curve is the best effort for that duration.
func wattsAt(normalized []Point, seconds int) float64 {
	for _, p := range normalized {
		if p.DurationSeconds >= seconds {
			return p.Watts
		}
	}
	return 0
}
