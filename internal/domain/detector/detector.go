// Package detector finds swing events in a stream of motion samples.
package detector

import (
	"fmt"
	"time"

	"github.com/Gagan-341/NeuraSentinel/internal/domain/model"
)

// Default calibration values.
const (
	DefaultThreshold   = 12.0
	DefaultCooldown    = 500 * time.Millisecond
	DefaultPreSamples  = 50
	DefaultPostSamples = 50
	DefaultMinSamples  = 20
)

// Decision describes what happened when the newest sample was evaluated.
type Decision int

const (
	// InsufficientData means too little history is buffered.
	InsufficientData Decision = iota
	// CoolingDown means a trigger happened less than one cooldown ago.
	CoolingDown
	// BelowThreshold means the newest sample is not a swing peak.
	BelowThreshold
	// Pending means a trigger is waiting for its post-window samples.
	Pending
	// Triggered means a SwingEvent was produced.
	Triggered
)

func (d Decision) String() string {
	switch d {
	case InsufficientData:
		return "insufficient_data"
	case CoolingDown:
		return "cooling_down"
	case BelowThreshold:
		return "below_threshold"
	case Pending:
		return "pending"
	case Triggered:
		return "triggered"
	default:
		return fmt.Sprintf("decision(%d)", int(d))
	}
}

// Samples is the read view of the buffer the detector needs.
type Samples interface {
	Len() int
	Capacity() int
	At(i int) (model.MotionSample, bool)
}

// Detector applies a magnitude threshold with a hard cooldown measured on
// sample timestamps. It keeps no reference to the buffer between calls.
type Detector struct {
	threshold  float64
	cooldown   time.Duration
	pre, post  int
	minSamples int
	deferPost  bool
	now        func() time.Time

	armed       bool    // a trigger happened in this epoch
	lastTrigger float64 // sample timestamp of the last trigger

	pending *pendingTrigger
}

type pendingTrigger struct {
	event model.SwingEvent
	since int // samples pushed after the trigger
}

// New creates a detector with default calibration overridden by opts.
func New(opts ...Option) *Detector {
	d := &Detector{
		threshold:  DefaultThreshold,
		cooldown:   DefaultCooldown,
		pre:        DefaultPreSamples,
		post:       DefaultPostSamples,
		minSamples: DefaultMinSamples,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Validate reports whether the calibration is usable.
func (d *Detector) Validate() error {
	switch {
	case d.threshold <= 0:
		return ErrInvalidThreshold
	case d.cooldown < 0:
		return ErrInvalidCooldown
	case d.pre <= 0 || d.post <= 0:
		return ErrInvalidWindow
	case d.minSamples <= 0:
		return ErrInvalidMinSamples
	}
	return nil
}

// WindowSize returns PRE+POST, the maximum window length.
func (d *Detector) WindowSize() int { return d.pre + d.post }

// Reset forgets the last trigger and any pending window. Called when a new
// stream epoch starts.
func (d *Detector) Reset() {
	d.armed = false
	d.lastTrigger = 0
	d.pending = nil
}

// Evaluate inspects the newest buffered sample. It must be called once per
// pushed sample.
func (d *Detector) Evaluate(buf Samples) (model.SwingEvent, Decision) {
	n := buf.Len()

	if d.pending != nil {
		return d.advancePending(buf)
	}

	if n < d.minSamples {
		return model.SwingEvent{}, InsufficientData
	}
	newest, _ := buf.At(n - 1)

	if d.armed && newest.T-d.lastTrigger < d.cooldown.Seconds() {
		return model.SwingEvent{}, CoolingDown
	}

	peak := newest.AccelNorm()
	if peak <= d.threshold {
		return model.SwingEvent{}, BelowThreshold
	}

	d.armed = true
	d.lastTrigger = newest.T

	idx := n - 1
	ev := model.SwingEvent{
		TriggerIndex: idx,
		Peak:         peak,
		SampleT:      newest.T,
		DetectedAt:   d.now(),
	}

	if d.deferPost && d.post > 1 && n < buf.Capacity() {
		d.pending = &pendingTrigger{event: ev}
		return model.SwingEvent{}, Pending
	}
	d.bounds(&ev, n)
	return ev, Triggered
}

// advancePending tracks the trigger as new samples arrive and releases the
// event once the post window is complete or the trigger is about to be
// evicted.
func (d *Detector) advancePending(buf Samples) (model.SwingEvent, Decision) {
	p := d.pending
	p.since++
	n := buf.Len()
	if n == buf.Capacity() {
		// Once full, every push shifts the trigger one slot towards the front.
		p.event.TriggerIndex = n - 1 - p.since
	}
	if p.since < d.post-1 && p.event.TriggerIndex > 0 {
		return model.SwingEvent{}, Pending
	}
	ev := p.event
	d.pending = nil
	d.bounds(&ev, n)
	return ev, Triggered
}

func (d *Detector) bounds(ev *model.SwingEvent, n int) {
	ev.Start = max(ev.TriggerIndex-d.pre, 0)
	ev.End = min(ev.TriggerIndex+d.post, n)
}
