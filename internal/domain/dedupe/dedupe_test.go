package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	dedupe "github.com/Gagan-341/NeuraSentinel/internal/domain/dedupe"
	"github.com/Gagan-341/NeuraSentinel/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	ctx := context.Background()

	Convey("Given a new InMemoryDeduper", t, func() {
		d := dedupe.NewInMemoryDeduper()
		So(d.Size(), ShouldEqual, 0)

		Convey("When the same fingerprint arrives twice for a key", func() {
			first := d.SeenAndRecord(ctx, "p1|", "A")
			second := d.SeenAndRecord(ctx, "p1|", "A")

			Convey("Then only the first is new", func() {
				So(first, ShouldBeFalse)
				So(second, ShouldBeTrue)
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When the fingerprint changes and changes back", func() {
			d.SeenAndRecord(ctx, "p1|", "A")
			So(d.SeenAndRecord(ctx, "p1|", "B"), ShouldBeFalse)
			So(d.SeenAndRecord(ctx, "p1|", "A"), ShouldBeFalse)
			So(d.Size(), ShouldEqual, 1)
		})

		Convey("When keys differ", func() {
			So(d.SeenAndRecord(ctx, "p1|", "A"), ShouldBeFalse)
			So(d.SeenAndRecord(ctx, "p2|", "A"), ShouldBeFalse)
			So(d.Size(), ShouldEqual, 2)
		})

		Convey("When a key is unrecorded", func() {
			d.SeenAndRecord(ctx, "p1|", "A")
			d.Unrecord(ctx, "p1|")
			d.Unrecord(ctx, "missing")

			Convey("Then the same fingerprint is new again", func() {
				So(d.Size(), ShouldEqual, 0)
				So(d.SeenAndRecord(ctx, "p1|", "A"), ShouldBeFalse)
			})
		})
	})

	Convey("Given a bounded deduper", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(2))

		d.SeenAndRecord(ctx, "a", "1")
		d.SeenAndRecord(ctx, "b", "1")
		d.SeenAndRecord(ctx, "a", "2") // refresh a
		d.SeenAndRecord(ctx, "c", "1") // evicts b

		Convey("Then the least recently updated key is evicted", func() {
			So(d.Size(), ShouldEqual, 2)
			So(d.SeenAndRecord(ctx, "a", "2"), ShouldBeTrue)
			So(d.SeenAndRecord(ctx, "b", "1"), ShouldBeFalse)
		})
	})

	Convey("Given concurrent callers", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(0))
		var wg sync.WaitGroup
		var mu sync.Mutex
		fresh := 0
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				if !d.SeenAndRecord(ctx, fmt.Sprintf("k%d", i%5), "same") {
					mu.Lock()
					fresh++
					mu.Unlock()
				}
			}(i)
		}
		wg.Wait()

		Convey("Then each key is new exactly once", func() {
			So(fresh, ShouldEqual, 5)
			So(d.Size(), ShouldEqual, 5)
		})
	})
}

func TestFingerprint(t *testing.T) {
	Convey("Given classification results", t, func() {
		a := model.ClassificationResult{ShotType: "Forehand", Confidence: 0.8, SpeedMps: 14}
		b := a

		fa, err := dedupe.Fingerprint(a)
		So(err, ShouldBeNil)
		fb, _ := dedupe.Fingerprint(b)
		So(fa, ShouldEqual, fb)

		b.CoachingMessage = model.StringPtr("Rotate more.")
		fc, _ := dedupe.Fingerprint(b)
		So(fc, ShouldNotEqual, fa)

		_, err = dedupe.Fingerprint(make(chan int))
		So(err, ShouldNotBeNil)

		So(dedupe.Key("p1", ""), ShouldEqual, "p1|")
	})
}
