package buffer_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/Gagan-341/NeuraSentinel/internal/domain/buffer"
	"github.com/Gagan-341/NeuraSentinel/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func sample(t float64) model.MotionSample {
	return model.MotionSample{AX: t, T: t}
}

func TestSampleBuffer(t *testing.T) {
	Convey("Given a buffer with capacity 5", t, func() {
		b := buffer.New(5)

		Convey("When it is empty", func() {
			_, ok := b.Latest()
			So(ok, ShouldBeFalse)
			So(b.Len(), ShouldEqual, 0)
			So(b.SnapshotRange(0, 10), ShouldBeEmpty)
		})

		Convey("When fewer samples than capacity are pushed", func() {
			for i := 0; i < 3; i++ {
				b.Push(sample(float64(i)))
			}

			Convey("Then all are retained in insertion order", func() {
				So(b.Len(), ShouldEqual, 3)
				first, _ := b.At(0)
				last, _ := b.Latest()
				So(first.T, ShouldEqual, 0)
				So(last.T, ShouldEqual, 2)
			})
		})

		Convey("When more samples than capacity are pushed", func() {
			for i := 0; i < 12; i++ {
				b.Push(sample(float64(i)))
			}

			Convey("Then the oldest are evicted first", func() {
				So(b.Len(), ShouldEqual, 5)
				first, _ := b.At(0)
				So(first.T, ShouldEqual, 7)
				last, _ := b.Latest()
				So(last.T, ShouldEqual, 11)
			})

			Convey("And snapshots are clamped copies", func() {
				snap := b.SnapshotRange(-3, 2)
				So(len(snap), ShouldEqual, 2)
				So(snap[0].T, ShouldEqual, 7)
				So(snap[1].T, ShouldEqual, 8)

				snap[0].T = 100
				again, _ := b.At(0)
				So(again.T, ShouldEqual, 7)

				So(len(b.SnapshotRange(3, 99)), ShouldEqual, 2)
				So(b.SnapshotRange(4, 1), ShouldBeEmpty)
			})

			Convey("And out of range indices are rejected", func() {
				_, ok := b.At(5)
				So(ok, ShouldBeFalse)
				_, ok = b.At(-1)
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When the buffer is reset", func() {
			for i := 0; i < 4; i++ {
				b.Push(sample(float64(i)))
			}
			origin := time.Unix(1_700_000_000, 0)
			b.Reset(origin)

			Convey("Then samples are gone and the origin moves", func() {
				So(b.Len(), ShouldEqual, 0)
				So(b.Origin(), ShouldEqual, origin)
				So(b.Elapsed(origin.Add(1500*time.Millisecond)), ShouldAlmostEqual, 1.5, 1e-9)
			})
		})

		Convey("When no origin was set", func() {
			So(b.Elapsed(time.Now()), ShouldEqual, 0)
		})
	})

	Convey("Given a non-positive capacity", t, func() {
		So(buffer.New(0).Capacity(), ShouldEqual, buffer.DefaultCapacity)
	})
}

func TestSampleBufferBoundHolds(t *testing.T) {
	Convey("Given random push sequences", t, func() {
		rng := rand.New(rand.NewSource(7))
		for trial := 0; trial < 50; trial++ {
			capacity := 1 + rng.Intn(20)
			b := buffer.New(capacity)
			pushes := rng.Intn(100)
			for i := 0; i < pushes; i++ {
				b.Push(sample(float64(i)))
				So(b.Len(), ShouldBeLessThanOrEqualTo, capacity)
			}
			if pushes > 0 {
				last, _ := b.Latest()
				So(last.T, ShouldEqual, float64(pushes-1))
			}
		}
	})
}
