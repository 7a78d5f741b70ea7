// Package buffer holds the most recent motion history in a fixed-capacity ring.
package buffer

import (
	"time"

	"github.com/Gagan-341/NeuraSentinel/internal/domain/model"
)

// DefaultCapacity keeps about 4 seconds of history at 100 Hz.
const DefaultCapacity = 400

// SampleBuffer is a bounded FIFO of motion samples. Index 0 is the oldest
// retained sample and Len()-1 the newest.
//
// SampleBuffer is not safe for concurrent use; the owning pipeline serializes
// access.
type SampleBuffer struct {
	data   []model.MotionSample
	head   int // position of the oldest sample
	count  int
	origin time.Time
}

// New creates a buffer holding at most capacity samples.
func New(capacity int) *SampleBuffer {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &SampleBuffer{data: make([]model.MotionSample, capacity)}
}

// Push appends s, evicting the oldest sample when the buffer is full.
func (b *SampleBuffer) Push(s model.MotionSample) {
	capacity := len(b.data)
	if b.count < capacity {
		b.data[(b.head+b.count)%capacity] = s
		b.count++
		return
	}
	b.data[b.head] = s
	b.head = (b.head + 1) % capacity
}

// Len returns the number of retained samples.
func (b *SampleBuffer) Len() int { return b.count }

// Capacity returns the retention bound.
func (b *SampleBuffer) Capacity() int { return len(b.data) }

// At returns the i-th retained sample; ok is false when i is out of range.
func (b *SampleBuffer) At(i int) (model.MotionSample, bool) {
	if i < 0 || i >= b.count {
		return model.MotionSample{}, false
	}
	return b.data[(b.head+i)%len(b.data)], true
}

// Latest returns the newest sample.
func (b *SampleBuffer) Latest() (model.MotionSample, bool) {
	return b.At(b.count - 1)
}

// SnapshotRange copies the samples in [start, end), clamped to the buffer.
func (b *SampleBuffer) SnapshotRange(start, end int) model.SwingWindow {
	start = max(start, 0)
	end = min(end, b.count)
	if start >= end {
		return model.SwingWindow{}
	}
	out := make(model.SwingWindow, 0, end-start)
	for i := start; i < end; i++ {
		out = append(out, b.data[(b.head+i)%len(b.data)])
	}
	return out
}

// Reset drops all samples and moves the timestamp origin to origin.
func (b *SampleBuffer) Reset(origin time.Time) {
	clear(b.data)
	b.head = 0
	b.count = 0
	b.origin = origin
}

// Origin returns the wall-clock start of the current epoch.
func (b *SampleBuffer) Origin() time.Time { return b.origin }

// Elapsed returns seconds between the epoch origin and now. Sources without a
// device clock use it to stamp samples.
func (b *SampleBuffer) Elapsed(now time.Time) float64 {
	if b.origin.IsZero() {
		return 0
	}
	return now.Sub(b.origin).Seconds()
}
