package metric

import (
	"math"

	"github.com/heartbeatai/heartbeat/internal/models"
)

// Classification thresholds, expressed as the relative distance from target.
// These are fixed policy, not per-call configuration.
const (
	aheadThreshold         = 0.10
	onTrackThreshold       = -0.05
	fallingBehindThreshold = -0.20
)

// Classify maps a measured value against target and baseline. Compliance
// metrics and metrics without a usable target collapse to the binary
// actual-vs-baseline policy; there is no "ahead" or "behind" gradient for
// them. A zero target counts as no target, never as a ratio singularity.
func Classify(actual float64, target *float64, baseline float64, kpi models.KPIType) models.Status {
	if kpi == models.KPICompliance || !usableTarget(target) {
		if actual >= baseline {
			return models.StatusOnTrack
		}
		return models.StatusOffTrack
	}

	diff := (actual - *target) / *target
	switch {
	case diff >= aheadThreshold:
		return models.StatusAhead
	case diff >= onTrackThreshold:
		return models.StatusOnTrack
	case actual >= baseline:
		return models.StatusSlightlyBehind
	case diff >= fallingBehindThreshold:
		return models.StatusFallingBehind
	default:
		return models.StatusOffTrack
	}
}

// usableTarget guards the ratio: the target must be present, finite, and
// strictly positive before it may appear in a denominator.
func usableTarget(t *float64) bool {
	return t != nil && !math.IsNaN(*t) && !math.IsInf(*t, 0) && *t > 0
}
