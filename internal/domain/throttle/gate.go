package throttle

import (
	"strings"
	"sync"
)

// DefaultMinSwings is how many swings must pass before an unchanged tip is
// repeated.
const DefaultMinSwings = 3

// SwingGate sits in front of the Throttle for automated per-swing coaching.
// A new tip passes immediately; the same tip passes again only after
// MinSwings swings.
type SwingGate struct {
	mu          sync.Mutex
	minSwings   int
	lastSpoken  string
	swingsSince int
}

// NewSwingGate creates a gate. minSwings < 1 falls back to DefaultMinSwings.
func NewSwingGate(minSwings int) *SwingGate {
	if minSwings < 1 {
		minSwings = DefaultMinSwings
	}
	return &SwingGate{minSwings: minSwings}
}

// ObserveSwing counts one classified swing.
func (g *SwingGate) ObserveSwing() {
	g.mu.Lock()
	g.swingsSince++
	g.mu.Unlock()
}

// Allow reports whether text may be handed to the throttle.
func (g *SwingGate) Allow(text string) bool {
	text = strings.TrimSpace(text)
	g.mu.Lock()
	defer g.mu.Unlock()
	return text != g.lastSpoken || g.swingsSince >= g.minSwings
}

// Spoken records that text was actually emitted.
func (g *SwingGate) Spoken(text string) {
	g.mu.Lock()
	g.lastSpoken = strings.TrimSpace(text)
	g.swingsSince = 0
	g.mu.Unlock()
}

// Reset forgets the last spoken tip.
func (g *SwingGate) Reset() {
	g.mu.Lock()
	g.lastSpoken = ""
	g.swingsSince = 0
	g.mu.Unlock()
}
