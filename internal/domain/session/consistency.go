package session

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// NeutralConsistency is reported when there is not enough history.
const NeutralConsistency = 70.0

// maxPenalty caps how much variance can cost, so the score never drops
// below 60 from a single outlier.
const maxPenalty = 40.0

// ConsistencyScore rates how stable per-session average confidence has
// been. history holds one average confidence per past session.
func ConsistencyScore(history []float64) float64 {
	if len(history) < 2 {
		return NeutralConsistency
	}
	_, std := stat.PopMeanStdDev(history, nil)
	return math.Max(0, 100-math.Min(std*100, maxPenalty))
}
