// Package coaching turns a single classified swing into a technique score
// and a short coaching message.
package coaching

// Shot types known to the classifier.
const (
	Forehand = "Forehand"
	Backhand = "Backhand"
	Smash    = "Smash"
	Push     = "Push"
	Block    = "Block"
	Flick    = "Flick"
	Serve    = "Serve"
	Chop     = "Chop"
)

// Shots lists every shot type in label order.
var Shots = []string{Forehand, Backhand, Smash, Push, Block, Flick, Serve, Chop}

// IsShot reports whether name is a known shot type.
func IsShot(name string) bool {
	for _, s := range Shots {
		if s == name {
			return true
		}
	}
	return false
}

// corrections maps intended shot -> detected shot -> what to fix.
var corrections = map[string]map[string]string{
	Forehand: {
		Push:  "Your racket angle is too vertical. A forehand should brush forward and slightly upward.",
		Chop:  "Your swing is too downward. Lift your stroke and swing forward instead of only cutting down.",
		Block: "Your motion is too short and stiff. Extend your arm and follow through across your body.",
		Smash: "You are swinging too vertically. Flatten your contact point for a proper forehand topspin.",
	},
	Backhand: {
		Push:  "Your stroke resembles a push. Stay closer to the table, keep the elbow in front, and guide the ball forward.",
		Chop:  "You are cutting downward. For a backhand drive, keep the bat higher and swing forward with a stable wrist.",
		Block: "Motion is very short like a block. Add a bit more forearm rotation for a full backhand swing.",
		Smash: "You are over-hitting. A backhand drive is compact and horizontal, not a full smash arc.",
	},
	Flick: {
		Push:  "Lift your wrist more. A flick needs a quick upward acceleration, not a flat push.",
		Chop:  "Avoid downward cutting. A flick uses an upward wrist snap over the ball.",
		Block: "Use more wrist acceleration and a sharper contact to turn this into a true flick.",
		Serve: "This motion looks like a serve. For a flick, use a short, sharp upward motion off the bounce.",
	},
	Smash: {
		Forehand: "Power is too low for a smash. Load more with legs and shoulder, then accelerate through the ball.",
		Chop:     "Avoid slicing downward. A smash is a direct, explosive stroke through the ball.",
		Push:     "Motion is too soft. A smash requires high acceleration and a committed hit.",
	},
	Push: {
		Forehand: "Push is a soft, forward motion. Reduce power and keep the racket angle more open.",
		Backhand: "Reduce wrist rotation and keep the contact short and forward for a proper push.",
	},
	Block: {
		Forehand: "You are swinging too much. A block should be short and firm, using the opponent's pace.",
		Backhand: "Minimise wrist movement. Keep the bat stable and guide the ball back with a compact stroke.",
	},
	Serve: {
		Forehand: "Too much rally-style motion. Serve requires a distinct toss and sharp wrist action.",
		Backhand: "Wrist angle does not match serve mechanics. Focus on a consistent toss and contact point.",
	},
	Chop: {
		Forehand: "Swing is too forward. A chop should move more downward with a slicing motion.",
		Backhand: "Use more downward slicing with a relaxed wrist to generate heavy backspin.",
	},
}

const genericCorrection = "Your motion does not fully match the selected shot. Review the tutorial and focus on racket angle and swing path."

// Correction returns the fix for playing detected when intended was meant.
func Correction(intended, detected string) string {
	if msg, ok := corrections[intended][detected]; ok {
		return msg
	}
	return genericCorrection
}
