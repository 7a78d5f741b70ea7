// Package model contains domain models passed between layers.
package model

import (
	"math"
	"time"
)

// MotionSample is one inertial reading: acceleration in m/s², angular rate
// in the sensor's native unit, and T in seconds since the stream started.
type MotionSample struct {
	AX float64 `json:"ax"`
	AY float64 `json:"ay"`
	AZ float64 `json:"az"`
	GX float64 `json:"gx"`
	GY float64 `json:"gy"`
	GZ float64 `json:"gz"`
	T  float64 `json:"t"`
}

// AccelNorm returns the Euclidean norm of the three acceleration axes.
func (s MotionSample) AccelNorm() float64 {
	return math.Sqrt(s.AX*s.AX + s.AY*s.AY + s.AZ*s.AZ)
}

// SwingWindow is an immutable snapshot of samples around a detected swing.
type SwingWindow []MotionSample

// Clone returns an independent copy of the window.
func (w SwingWindow) Clone() SwingWindow {
	if w == nil {
		return nil
	}
	out := make(SwingWindow, len(w))
	copy(out, w)
	return out
}

// PeakNorm returns the largest acceleration norm inside the window.
func (w SwingWindow) PeakNorm() float64 {
	var peak float64
	for _, s := range w {
		if n := s.AccelNorm(); n > peak {
			peak = n
		}
	}
	return peak
}

// SwingEvent marks a detected swing for the duration of one
// detection-to-dispatch cycle.
type SwingEvent struct {
	TriggerIndex int       // buffer index of the triggering sample
	Start        int       // window start (inclusive), clamped
	End          int       // window end (exclusive), clamped
	Peak         float64   // acceleration norm at the trigger
	SampleT      float64   // stream timestamp of the trigger
	DetectedAt   time.Time // wall clock at detection
}

// ClassificationResult is what the external classifier returns for a window.
type ClassificationResult struct {
	ShotType        string  `json:"shot_type"`
	Confidence      float64 `json:"confidence"`
	SpeedMps        float64 `json:"speed_mps"`
	AccuracyScore   float64 `json:"accuracy_score"`
	TechniqueScore  *int    `json:"technique_score,omitempty"`
	CoachingMessage *string `json:"coaching_message,omitempty"`
}

// Coaching returns the coaching message or "" when none was sent.
func (r ClassificationResult) Coaching() string {
	if r.CoachingMessage == nil {
		return ""
	}
	return *r.CoachingMessage
}

// SwingRequest is the payload sent to the classifier.
type SwingRequest struct {
	PlayerID       string         `json:"player_id"`
	SessionID      *string        `json:"session_id,omitempty"`
	SamplingRateHz float64        `json:"sampling_rate_hz"`
	Samples        []MotionSample `json:"samples"`
	Source         string         `json:"source,omitempty"`
	TargetShot     *string        `json:"target_shot,omitempty"`
}

// SwingResponse wraps a classification result with its request context.
type SwingResponse struct {
	PlayerID  string               `json:"player_id"`
	SessionID *string              `json:"session_id,omitempty"`
	Result    ClassificationResult `json:"result"`
	Source    *string              `json:"source,omitempty"`
}

// Metadata is the contextual information attached to a classification.
type Metadata struct {
	PlayerID   string
	SessionID  string // empty means no session
	TargetShot string // empty unless in focused-practice mode
	Source     string
}

// Request builds a SwingRequest for window sampled at rateHz.
func (m Metadata) Request(window SwingWindow, rateHz float64) SwingRequest {
	req := SwingRequest{
		PlayerID:       m.PlayerID,
		SamplingRateHz: rateHz,
		Samples:        []MotionSample(window.Clone()),
		Source:         m.Source,
	}
	if m.SessionID != "" {
		sid := m.SessionID
		req.SessionID = &sid
	}
	if m.TargetShot != "" {
		ts := m.TargetShot
		req.TargetShot = &ts
	}
	return req
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string { return &s }

// IntPtr returns a pointer to i.
func IntPtr(i int) *int { return &i }
