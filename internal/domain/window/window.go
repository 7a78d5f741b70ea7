// Package window cuts and normalizes the sample windows sent for
// classification.
package window

import (
	"math"

	"github.com/Gagan-341/NeuraSentinel/internal/domain/model"
)

// Source is anything that can copy out a contiguous range of samples.
type Source interface {
	SnapshotRange(start, end int) model.SwingWindow
}

// Extract returns an ordered copy of src[start:end). The result may be
// shorter than end-start when the range is clamped.
func Extract(src Source, start, end int) model.SwingWindow {
	return src.SnapshotRange(start, end)
}

// ExtractEvent cuts the window recorded on ev.
func ExtractEvent(src Source, ev model.SwingEvent) model.SwingWindow {
	return Extract(src, ev.Start, ev.End)
}

// Resample maps w onto exactly n samples by nearest index: slot i takes
// source index round(i*(len-1)/(n-1)). It never interpolates.
func Resample(w model.SwingWindow, n int) model.SwingWindow {
	if n <= 0 || len(w) == 0 {
		return model.SwingWindow{}
	}
	if n == len(w) {
		return w.Clone()
	}
	last := len(w) - 1
	if n == 1 {
		return model.SwingWindow{w[roundIndex(float64(last)/2)]}
	}
	out := make(model.SwingWindow, n)
	step := float64(last) / float64(n-1)
	for i := range out {
		out[i] = w[min(roundIndex(float64(i)*step), last)]
	}
	return out
}

func roundIndex(x float64) int {
	return int(math.Round(x))
}
