// Package session folds classification results into running per-shot
// statistics and the scores derived from them.
package session

import (
	"math"
	"sort"
	"sync"

	"github.com/Gagan-341/NeuraSentinel/internal/domain/model"
)

// ShotStats accumulates results for one shot type.
type ShotStats struct {
	Count          int
	SumConfidence  float64
	SumSpeed       float64
	SumTechnique   float64
	TechniqueCount int
}

// ShotSummary is the read view of ShotStats.
type ShotSummary struct {
	ShotType          string  `json:"shot_type"`
	Count             int     `json:"count"`
	AverageConfidence float64 `json:"average_confidence"`
	AverageSpeedMps   float64 `json:"average_speed_mps"`
	AverageTechnique  float64 `json:"average_technique,omitempty"`
}

// Aggregator holds per-shot statistics for one session. It is safe for
// concurrent use.
type Aggregator struct {
	mu    sync.RWMutex
	shots map[string]*ShotStats
}

// NewAggregator creates an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{shots: make(map[string]*ShotStats)}
}

// Record adds one result to the statistics of its shot type.
func (a *Aggregator) Record(r model.ClassificationResult) {
	a.mu.Lock()
	defer a.mu.Unlock()

	s, ok := a.shots[r.ShotType]
	if !ok {
		s = &ShotStats{}
		a.shots[r.ShotType] = s
	}
	s.Count++
	s.SumConfidence += r.Confidence
	s.SumSpeed += r.SpeedMps
	if r.TechniqueScore != nil {
		s.SumTechnique += float64(*r.TechniqueScore)
		s.TechniqueCount++
	}
}

// Reset drops all statistics.
func (a *Aggregator) Reset() {
	a.mu.Lock()
	a.shots = make(map[string]*ShotStats)
	a.mu.Unlock()
}

// AverageConfidence returns the mean confidence for shot, or 0.
func (a *Aggregator) AverageConfidence(shot string) float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if s, ok := a.shots[shot]; ok && s.Count > 0 {
		return s.SumConfidence / float64(s.Count)
	}
	return 0
}

// AverageSpeed returns the mean speed for shot, or 0.
func (a *Aggregator) AverageSpeed(shot string) float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if s, ok := a.shots[shot]; ok && s.Count > 0 {
		return s.SumSpeed / float64(s.Count)
	}
	return 0
}

// AverageTechnique returns the mean technique score for shot over the
// results that carried one, or 0.
func (a *Aggregator) AverageTechnique(shot string) float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if s, ok := a.shots[shot]; ok && s.TechniqueCount > 0 {
		return s.SumTechnique / float64(s.TechniqueCount)
	}
	return 0
}

// TotalSwings returns the number of recorded results.
func (a *Aggregator) TotalSwings() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	total := 0
	for _, s := range a.shots {
		total += s.Count
	}
	return total
}

// OverallAccuracy is the count-weighted mean confidence across shots.
func (a *Aggregator) OverallAccuracy() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	var sum float64
	var n int
	for _, s := range a.shots {
		sum += s.SumConfidence
		n += s.Count
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// OverallAvgSpeed is the count-weighted mean speed across shots.
func (a *Aggregator) OverallAvgSpeed() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	var sum float64
	var n int
	for _, s := range a.shots {
		sum += s.SumSpeed
		n += s.Count
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// Shots returns one summary per shot type, sorted by name.
func (a *Aggregator) Shots() []ShotSummary {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]ShotSummary, 0, len(a.shots))
	for name, s := range a.shots {
		if s.Count <= 0 {
			continue
		}
		sum := ShotSummary{
			ShotType:          name,
			Count:             s.Count,
			AverageConfidence: s.SumConfidence / float64(s.Count),
			AverageSpeedMps:   s.SumSpeed / float64(s.Count),
		}
		if s.TechniqueCount > 0 {
			sum.AverageTechnique = s.SumTechnique / float64(s.TechniqueCount)
		}
		out = append(out, sum)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ShotType < out[j].ShotType })
	return out
}

// Performance is the headline score of a session.
type Performance struct {
	Score int    `json:"score"`
	Label string `json:"label"`
}

// Performance labels.
const (
	LabelElite        = "Elite"
	LabelAdvanced     = "Advanced"
	LabelIntermediate = "Intermediate"
	LabelFoundation   = "Foundation"
)

const (
	speedSaturation  = 35.0 // m/s
	volumeSaturation = 80.0 // swings
)

// PerformanceScore weighs accuracy 60%, power 25% and volume 15%. Power and
// volume saturate at 35 m/s and 80 swings.
func (a *Aggregator) PerformanceScore() Performance {
	acc := a.OverallAccuracy() * 100
	power := math.Min(a.OverallAvgSpeed()/speedSaturation, 1) * 100
	volume := math.Min(float64(a.TotalSwings())/volumeSaturation, 1) * 100
	score := int(math.Round(0.6*acc + 0.25*power + 0.15*volume))
	return Performance{Score: score, Label: PerformanceLabel(score)}
}

// PerformanceLabel buckets a performance score.
func PerformanceLabel(score int) string {
	switch {
	case score >= 85:
		return LabelElite
	case score >= 70:
		return LabelAdvanced
	case score >= 50:
		return LabelIntermediate
	default:
		return LabelFoundation
	}
}
