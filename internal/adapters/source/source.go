// Package source reads motion samples from sensor transports.
package source

import (
	"context"
	"sync"
	"time"

	"github.com/Gagan-341/NeuraSentinel/internal/domain/model"
)

// PushFunc receives decoded samples in arrival order.
type PushFunc func(model.MotionSample)

// Source produces samples until ctx is done or the transport fails.
type Source interface {
	Name() string
	Run(ctx context.Context, push PushFunc) error
	// Reset restarts the stream clock so the next sample is stamped 0.
	Reset(ctx context.Context) error
}

// stamper turns device or arrival time into stream seconds starting at 0.
// Stamps never go backwards: a device clock that restarts mid-stream is
// rebased onto the last stamp.
type stamper struct {
	mu       sync.Mutex
	now      func() time.Time
	origin   time.Time
	base     float64
	haveBase bool
	last     float64
}

func newStamper(now func() time.Time) *stamper {
	if now == nil {
		now = time.Now
	}
	return &stamper{now: now}
}

// stamp sets s.T. device is the device clock in seconds when ok.
func (st *stamper) stamp(s *model.MotionSample, device float64, ok bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if ok {
		switch {
		case !st.haveBase:
			st.base = device
			st.haveBase = true
		case device-st.base < st.last:
			// device rebooted
			st.base = device - st.last
		}
		s.T = device - st.base
		st.last = s.T
		return
	}
	if st.origin.IsZero() {
		st.origin = st.now()
	}
	s.T = st.now().Sub(st.origin).Seconds()
	st.last = s.T
}

// reset makes the next sample the new zero.
func (st *stamper) reset() {
	st.mu.Lock()
	st.origin = time.Time{}
	st.base = 0
	st.haveBase = false
	st.last = 0
	st.mu.Unlock()
}
