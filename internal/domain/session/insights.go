package session

import "fmt"

// Flag issues.
const (
	IssueRushedSwing         = "rushed_swing"
	IssueWeakPace            = "weak_pace"
	IssueInconsistentContact = "inconsistent_contact"
)

// Flag marks a per-shot weakness.
type Flag struct {
	ShotType string `json:"shot_type"`
	Issue    string `json:"issue"`
	Label    string `json:"label"`
	Severity string `json:"severity"`
}

// Insights is the session-level coaching summary.
type Insights struct {
	PrimaryTip   string  `json:"primary_tip"`
	SecondaryTip *string `json:"secondary_tip,omitempty"`
	Flags        []Flag  `json:"flags"`
}

const (
	noSwingsTip = "No swings logged yet for this session. Hit a few balls to unlock coaching insights."
	sparseTip   = "Session data is too sparse for detailed coaching. Keep rallying a bit longer."
)

// Insights flags weak shots and builds tips around the least accurate one.
func (a *Aggregator) Insights() Insights {
	shots := a.Shots()
	if len(shots) == 0 {
		return Insights{PrimaryTip: noSwingsTip, Flags: []Flag{}}
	}

	flags := []Flag{}
	var worst *ShotSummary
	worstAcc := 1.0
	for i := range shots {
		s := &shots[i]
		acc, speed := s.AverageConfidence, s.AverageSpeedMps
		if acc < worstAcc {
			worstAcc = acc
			worst = s
		}
		if f, ok := flagFor(s.ShotType, acc, speed); ok {
			flags = append(flags, f)
		}
	}

	if worst == nil {
		return Insights{PrimaryTip: sparseTip, Flags: flags}
	}

	primary, secondary := tipsFor(worst.ShotType, worst.AverageConfidence, worst.AverageSpeedMps)
	return Insights{PrimaryTip: primary, SecondaryTip: &secondary, Flags: flags}
}

func flagFor(shot string, acc, speed float64) (Flag, bool) {
	switch {
	case acc < 0.6 && speed > 20:
		return Flag{ShotType: shot, Issue: IssueRushedSwing, Label: "Rushed swing – pace is high but control drops.", Severity: "warning"}, true
	case acc < 0.6 && speed < 10:
		return Flag{ShotType: shot, Issue: IssueWeakPace, Label: "Weak pace – add more acceleration through the ball.", Severity: "info"}, true
	case acc >= 0.6 && acc < 0.75:
		return Flag{ShotType: shot, Issue: IssueInconsistentContact, Label: "Inconsistent contact – base is good, needs more repetition.", Severity: "info"}, true
	}
	return Flag{}, false
}

func tipsFor(shot string, acc, speed float64) (primary, secondary string) {
	pct := acc * 100
	switch {
	case acc < 0.6 && speed > 20:
		return fmt.Sprintf("Your %s is powerful but wild (%.1f%% accuracy). Slow the first half of the swing and focus on clean contact, then re-add speed.", shot, pct),
			"Try 10 medium-pace swings first, then 10 at match pace while keeping the same contact point."
	case acc < 0.6:
		return fmt.Sprintf("Your %s needs more stability (%.1f%% accuracy). Stay lower on the legs and exaggerate a smooth follow-through.", shot, pct),
			"Aim for 3 sets of 10 relaxed swings where the ball lands safely before adding more pace."
	case acc < 0.75:
		return fmt.Sprintf("Solid base on the %s (%.1f%% accuracy). Lock in your rhythm, then start experimenting with placement.", shot, pct),
			"Use cross-court then down-the-line patterns while keeping the same swing tempo."
	default:
		return fmt.Sprintf("Your %s is a clear strength (%.1f%% accuracy). Start using it as your go-to finishing shot in points.", shot, pct),
			"Mix in deeper, faster versions of this shot to pressure opponents once you are comfortable."
	}
}
