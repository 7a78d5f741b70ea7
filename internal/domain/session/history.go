package session

import (
	"sync"
	"time"
)

// Summary is the per-shot breakdown of one finished session.
type Summary struct {
	SessionID       string        `json:"session_id"`
	EndedAt         time.Time     `json:"ended_at"`
	TotalSwings     int           `json:"total_swings"`
	OverallAccuracy float64       `json:"overall_accuracy"`
	Shots           []ShotSummary `json:"shots"`
}

// Summarize snapshots a for the session sessionID.
func Summarize(sessionID string, endedAt time.Time, a *Aggregator) Summary {
	return Summary{
		SessionID:       sessionID,
		EndedAt:         endedAt,
		TotalSwings:     a.TotalSwings(),
		OverallAccuracy: a.OverallAccuracy(),
		Shots:           a.Shots(),
	}
}

// History keeps finished sessions of one player, newest last.
type History struct {
	mu       sync.Mutex
	sessions []Summary
	limit    int
}

// NewHistory keeps at most limit entries; limit <= 0 keeps all.
func NewHistory(limit int) *History {
	return &History{limit: limit}
}

// Add appends one finished session.
func (h *History) Add(s Summary) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sessions = append(h.sessions, s)
	if h.limit > 0 && len(h.sessions) > h.limit {
		h.sessions = append([]Summary(nil), h.sessions[len(h.sessions)-h.limit:]...)
	}
}

// Sessions returns a copy of the stored sessions.
func (h *History) Sessions() []Summary {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Summary(nil), h.sessions...)
}

// Values returns the overall accuracy of each stored session.
func (h *History) Values() []float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]float64, len(h.sessions))
	for i, s := range h.sessions {
		out[i] = s.OverallAccuracy
	}
	return out
}

// Consistency scores the stored history.
func (h *History) Consistency() float64 {
	return ConsistencyScore(h.Values())
}
