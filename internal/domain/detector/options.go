package detector

import "time"

// Option applies a configuration option to the Detector.
type Option func(*Detector)

// WithThreshold sets the acceleration norm (m/s²) a sample must exceed.
func WithThreshold(threshold float64) Option {
	return func(d *Detector) {
		d.threshold = threshold
	}
}

// WithCooldown sets the minimum stream time between two triggers.
func WithCooldown(cooldown time.Duration) Option {
	return func(d *Detector) {
		d.cooldown = cooldown
	}
}

// WithWindow sets how many samples before and after the trigger are cut.
func WithWindow(pre, post int) Option {
	return func(d *Detector) {
		d.pre = pre
		d.post = post
	}
}

// WithMinSamples sets the buffered history required before evaluating.
func WithMinSamples(n int) Option {
	return func(d *Detector) {
		d.minSamples = n
	}
}

// WithDeferredPostWindow delays the event until the post-trigger samples
// have arrived.
func WithDeferredPostWindow(enabled bool) Option {
	return func(d *Detector) {
		d.deferPost = enabled
	}
}

// WithClock overrides the wall clock used to stamp events.
func WithClock(now func() time.Time) Option {
	return func(d *Detector) {
		if now != nil {
			d.now = now
		}
	}
}
