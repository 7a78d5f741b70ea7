package window_test

import (
	"testing"

	"github.com/Gagan-341/NeuraSentinel/internal/domain/buffer"
	"github.com/Gagan-341/NeuraSentinel/internal/domain/model"
	"github.com/Gagan-341/NeuraSentinel/internal/domain/window"
	"github.com/google/go-cmp/cmp"
	. "github.com/smartystreets/goconvey/convey"
)

func seq(n int) model.SwingWindow {
	w := make(model.SwingWindow, n)
	for i := range w {
		w[i] = model.MotionSample{AX: float64(i), T: float64(i) / 100}
	}
	return w
}

func xs(w model.SwingWindow) []float64 {
	out := make([]float64, len(w))
	for i, s := range w {
		out[i] = s.AX
	}
	return out
}

func TestExtract(t *testing.T) {
	Convey("Given a buffer with ten samples", t, func() {
		b := buffer.New(20)
		for _, s := range seq(10) {
			b.Push(s)
		}

		Convey("When extracting an in-range window", func() {
			w := window.Extract(b, 2, 6)
			So(cmp.Diff([]float64{2, 3, 4, 5}, xs(w)), ShouldBeEmpty)
		})

		Convey("When extracting around an event near the edges", func() {
			w := window.ExtractEvent(b, model.SwingEvent{Start: -4, End: 14})
			So(len(w), ShouldEqual, 10)
		})
	})
}

func TestResample(t *testing.T) {
	Convey("Given resampling rules", t, func() {
		Convey("When the target length equals the input length", func() {
			in := seq(7)
			out := window.Resample(in, 7)

			Convey("Then the output equals the input", func() {
				So(cmp.Diff(in, out), ShouldBeEmpty)
			})

			Convey("And it is a copy", func() {
				out[0].AX = 42
				So(in[0].AX, ShouldEqual, 0)
			})
		})

		Convey("When the input is empty", func() {
			for _, n := range []int{0, 1, 5, 100} {
				So(window.Resample(model.SwingWindow{}, n), ShouldBeEmpty)
			}
		})

		Convey("When the target length is one", func() {
			So(cmp.Diff([]float64{2}, xs(window.Resample(seq(5), 1))), ShouldBeEmpty)
			So(cmp.Diff([]float64{2}, xs(window.Resample(seq(4), 1))), ShouldBeEmpty) // round(1.5)
			So(cmp.Diff([]float64{0}, xs(window.Resample(seq(1), 1))), ShouldBeEmpty)
		})

		Convey("When upsampling", func() {
			out := window.Resample(seq(3), 5)
			So(cmp.Diff([]float64{0, 1, 1, 2, 2}, xs(out)), ShouldBeEmpty)
		})

		Convey("When downsampling", func() {
			out := window.Resample(seq(10), 4)
			So(cmp.Diff([]float64{0, 3, 6, 9}, xs(out)), ShouldBeEmpty)
		})

		Convey("When the target length is not positive", func() {
			So(window.Resample(seq(3), 0), ShouldBeEmpty)
			So(window.Resample(seq(3), -1), ShouldBeEmpty)
		})
	})
}
