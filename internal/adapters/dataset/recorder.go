// Package dataset collects labelled swing windows and reads and writes them
// as CSV.
package dataset

import (
	"sync"

	"github.com/Gagan-341/NeuraSentinel/internal/domain/model"
	"github.com/Gagan-341/NeuraSentinel/internal/domain/window"
	"github.com/Gagan-341/NeuraSentinel/pkg/metrics"
)

// DefaultWindowSize is the fixed length every recorded window is resampled to.
const DefaultWindowSize = 100

// Recorder keeps fixed-length copies of detected windows.
type Recorder struct {
	size int

	mu      sync.Mutex
	windows []model.SwingWindow
}

// NewRecorder creates a recorder resampling to size samples.
func NewRecorder(size int) *Recorder {
	if size < 1 {
		size = DefaultWindowSize
	}
	return &Recorder{size: size}
}

// Add stores a resampled copy of w. Empty windows are ignored.
func (r *Recorder) Add(w model.SwingWindow) bool {
	if len(w) == 0 {
		return false
	}
	fixed := window.Resample(w, r.size)

	r.mu.Lock()
	r.windows = append(r.windows, fixed)
	r.mu.Unlock()
	metrics.RecordDatasetWindow()
	return true
}

// Windows returns the recorded windows in arrival order.
func (r *Recorder) Windows() []model.SwingWindow {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.SwingWindow, len(r.windows))
	copy(out, r.windows)
	return out
}

// Len returns the number of recorded windows.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.windows)
}

// Size returns the fixed window length.
func (r *Recorder) Size() int { return r.size }

// Reset drops every recorded window.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.windows = nil
	r.mu.Unlock()
}
