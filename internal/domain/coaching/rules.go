package coaching

import (
	"math"
	"strings"
)

// Feedback is the per-swing coaching outcome.
type Feedback struct {
	TechniqueScore int
	Message        string
}

const (
	excellentConfidence = 0.85
	goodConfidence      = 0.60

	slowPace = 8.0
	fastPace = 22.0
)

// Evaluate scores a swing and composes its message. intended may be empty,
// in which case the detected shot is assumed to be intended. features may be
// nil when no motion data is available.
func Evaluate(intended, detected string, confidence, speed float64, features *Features) Feedback {
	detected = strings.TrimSpace(detected)
	intended = strings.TrimSpace(intended)
	if intended == "" {
		intended = detected
	}

	fb := Feedback{TechniqueScore: int(math.Round(math.Max(0, math.Min(confidence, 1)) * 100))}

	switch {
	case detected == intended && confidence >= excellentConfidence:
		fb.Message = "Excellent! Your technique is strong for this shot."
	case detected == intended && confidence >= goodConfidence:
		fb.Message = "Good attempt – technique is recognisable but a bit inconsistent. " +
			"Focus on clean contact and full follow-through."
	default:
		fb.Message = Correction(intended, detected) + paceHint(speed)
	}

	if features != nil {
		fb.Message += " " + Biomechanics(intended, *features)
	}
	return fb
}

func paceHint(speed float64) string {
	switch {
	case speed < slowPace:
		return " Swing speed is quite low – drive more from legs and hips."
	case speed > fastPace:
		return " Pace is high – make sure you stay balanced and in control."
	}
	return ""
}

// Biomechanics checks speed, swing plane, wrist rotation and follow-through
// against simple thresholds for the intended shot.
func Biomechanics(intended string, f Features) string {
	var msg []string

	switch {
	case f.Speed < 12:
		msg = append(msg, "Swing too weak. Use more body rotation and weight transfer.")
	case f.Speed > 20:
		msg = append(msg, "Good power – strong acceleration through the stroke.")
	}

	if intended == Forehand || intended == Backhand {
		if f.DownwardPower > f.UpwardPower {
			msg = append(msg, "Your stroke is too downward. Lift your swing slightly upward.")
		}
		if f.HorizontalPower < 6 {
			msg = append(msg, "Insufficient forward motion – extend your arm more forward.")
		}
	}

	if intended == Forehand || intended == Flick || intended == Backhand {
		if f.WristRotation < 8 {
			msg = append(msg, "Increase your wrist rotation for better spin and control.")
		}
	}

	if f.FollowThrough < 5 {
		msg = append(msg, "Your follow-through is too short. Continue the swing after impact.")
	}

	if len(msg) == 0 {
		return "Great technique – motion matches expected biomechanics."
	}
	return strings.Join(msg, " ")
}
