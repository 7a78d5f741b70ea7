package throttle

import "time"

// Option applies a configuration option to the Throttle.
type Option func(*Throttle)

// WithCooldown sets the minimum time between two emissions.
func WithCooldown(d time.Duration) Option {
	return func(t *Throttle) {
		if d >= 0 {
			t.cooldown = d
		}
	}
}

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) Option {
	return func(t *Throttle) {
		if now != nil {
			t.now = now
		}
	}
}
