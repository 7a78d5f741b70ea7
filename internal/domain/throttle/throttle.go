// Package throttle rate-limits coaching output so a user is never flooded
// with repeated or overlapping messages.
package throttle

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// DefaultCooldown is the minimum gap between two emissions.
const DefaultCooldown = 1800 * time.Millisecond

// Outcome reports what Speak did with a message.
type Outcome int

const (
	// Emitted means the message was handed to the emitter.
	Emitted Outcome = iota
	// SuppressedEmpty means the message was blank.
	SuppressedEmpty
	// SuppressedRepeat means the message equals the last emitted one.
	SuppressedRepeat
	// SuppressedCooling means the cooldown had not elapsed.
	SuppressedCooling
	// SuppressedSpeaking means a previous message was still being emitted.
	SuppressedSpeaking
)

func (o Outcome) String() string {
	switch o {
	case Emitted:
		return "emitted"
	case SuppressedEmpty:
		return "suppressed_empty"
	case SuppressedRepeat:
		return "suppressed_repeat"
	case SuppressedCooling:
		return "suppressed_cooling"
	case SuppressedSpeaking:
		return "suppressed_speaking"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Emitter is the external output channel (speech, toast, log).
type Emitter interface {
	// Emit delivers text and calls done once delivery finished or was
	// abandoned. It must not block.
	Emit(ctx context.Context, text string, done func())
	// CancelQueued drops emissions that have not started yet.
	CancelQueued()
}

// State is a snapshot of the throttle.
type State struct {
	LastMessage   string    `json:"last_message,omitempty"`
	LastEmittedAt time.Time `json:"last_emitted_at,omitempty"`
	Cooling       bool      `json:"cooling"`
	Speaking      bool      `json:"speaking"`
}

// Throttle guards an Emitter. It is safe for concurrent use; emission
// completion arrives from the emitter's goroutine.
type Throttle struct {
	mu       sync.Mutex
	emitter  Emitter
	cooldown time.Duration
	now      func() time.Time

	lastMessage   string
	lastEmittedAt time.Time
	coolingUntil  time.Time
	speaking      bool
	seq           uint64 // identifies the emission that owns speaking
}

// New creates a throttle in front of emitter.
func New(emitter Emitter, opts ...Option) *Throttle {
	t := &Throttle{
		emitter:  emitter,
		cooldown: DefaultCooldown,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Speak emits text unless it is blank, a repeat of the last message, inside
// the cooldown, or overlapping a message still being emitted.
func (t *Throttle) Speak(ctx context.Context, text string) Outcome {
	text = strings.TrimSpace(text)
	if text == "" {
		return SuppressedEmpty
	}

	t.mu.Lock()
	if text == t.lastMessage {
		t.mu.Unlock()
		return SuppressedRepeat
	}
	now := t.now()
	if now.Before(t.coolingUntil) {
		t.mu.Unlock()
		return SuppressedCooling
	}
	t.coolingUntil = now.Add(t.cooldown)
	if t.speaking {
		t.mu.Unlock()
		return SuppressedSpeaking
	}
	t.speaking = true
	t.seq++
	seq := t.seq
	t.lastMessage = text
	t.lastEmittedAt = now
	t.mu.Unlock()

	t.emitter.CancelQueued()
	t.emitter.Emit(ctx, text, func() { t.finished(seq) })
	return Emitted
}

func (t *Throttle) finished(seq uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if seq == t.seq {
		t.speaking = false
	}
}

// State returns a snapshot of the throttle.
func (t *Throttle) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return State{
		LastMessage:   t.lastMessage,
		LastEmittedAt: t.lastEmittedAt,
		Cooling:       t.now().Before(t.coolingUntil),
		Speaking:      t.speaking,
	}
}

// Reset returns the throttle to Idle and forgets the last message. Any
// outstanding completion callback becomes a no-op.
func (t *Throttle) Reset() {
	t.mu.Lock()
	t.lastMessage = ""
	t.lastEmittedAt = time.Time{}
	t.coolingUntil = time.Time{}
	t.speaking = false
	t.seq++
	t.mu.Unlock()
	t.emitter.CancelQueued()
}
