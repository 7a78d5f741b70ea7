package session

import "math"

// Challenge statuses.
const (
	StatusNotStarted = "not_started"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

// Challenge is an accuracy goal for one shot type.
type Challenge struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	TargetShot      string   `json:"target_shot"`
	TargetAccuracy  float64  `json:"target_accuracy"`
	Status          string   `json:"status"`
	Progress        float64  `json:"progress"`
	CurrentAccuracy *float64 `json:"current_accuracy,omitempty"`
	CurrentSwings   int      `json:"current_swings"`
}

// DefaultChallenges returns the built-in challenge set.
func DefaultChallenges() []Challenge {
	return []Challenge{
		{
			ID:             "c1",
			Title:          "Forehand Accuracy",
			Description:    "Hit 20 consistent forehands above 80% accuracy.",
			TargetShot:     "Forehand",
			TargetAccuracy: 0.8,
		},
		{
			ID:             "c2",
			Title:          "Backhand Power",
			Description:    "Perform 10 strong backhands with high racket speed.",
			TargetShot:     "Backhand",
			TargetAccuracy: 0.75,
		},
	}
}

// Challenges evaluates defs against the recorded statistics. A nil defs
// uses DefaultChallenges.
func (a *Aggregator) Challenges(defs []Challenge) []Challenge {
	if defs == nil {
		defs = DefaultChallenges()
	}
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]Challenge, len(defs))
	for i, ch := range defs {
		ch.Status, ch.Progress, ch.CurrentAccuracy, ch.CurrentSwings = StatusNotStarted, 0, nil, 0
		if s, ok := a.shots[ch.TargetShot]; ok && s.Count > 0 {
			acc := s.SumConfidence / float64(s.Count)
			ch.CurrentAccuracy = &acc
			ch.CurrentSwings = s.Count
			if acc >= ch.TargetAccuracy {
				ch.Status, ch.Progress = StatusCompleted, 1
			} else {
				ch.Status = StatusInProgress
				ch.Progress = math.Max(0, math.Min(1, acc/ch.TargetAccuracy))
			}
		}
		out[i] = ch
	}
	return out
}

// Challenge evaluates a single challenge by id.
func (a *Aggregator) Challenge(id string) (Challenge, error) {
	for _, ch := range a.Challenges(nil) {
		if ch.ID == id {
			return ch, nil
		}
	}
	return Challenge{}, ErrUnknownChallenge
}
