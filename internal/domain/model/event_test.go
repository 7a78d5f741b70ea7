package model_test

import (
	"errors"
	"testing"

	model "github.com/Gagan-341/NeuraSentinel/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestMotionSample(t *testing.T) {
	convey.Convey("Given a motion sample", t, func() {
		s := model.MotionSample{AX: 3, AY: 4, AZ: 12, GX: 1, GY: 2, GZ: 3, T: 0.5}

		convey.Convey("Then the acceleration norm ignores the gyro axes", func() {
			convey.So(s.AccelNorm(), convey.ShouldAlmostEqual, 13.0, 1e-9)
		})

		convey.Convey("When the sample is at rest", func() {
			rest := model.MotionSample{}
			convey.So(rest.AccelNorm(), convey.ShouldEqual, 0)
		})
	})
}

func TestSwingWindow(t *testing.T) {
	convey.Convey("Given a swing window", t, func() {
		w := model.SwingWindow{{AX: 1}, {AX: 15}, {AY: 2}}

		convey.Convey("When cloning it", func() {
			c := w.Clone()
			c[0].AX = 99

			convey.Convey("Then the original is untouched", func() {
				convey.So(w[0].AX, convey.ShouldEqual, 1)
				convey.So(len(c), convey.ShouldEqual, len(w))
			})
		})

		convey.Convey("Then the peak norm is the largest sample norm", func() {
			convey.So(w.PeakNorm(), convey.ShouldEqual, 15)
		})

		convey.Convey("And a nil window clones to nil", func() {
			var empty model.SwingWindow
			convey.So(empty.Clone(), convey.ShouldBeNil)
		})
	})
}

func TestMetadataRequest(t *testing.T) {
	convey.Convey("Given classification metadata", t, func() {
		convey.Convey("When session and target shot are set", func() {
			meta := model.Metadata{PlayerID: "p1", SessionID: "s1", TargetShot: "Forehand", Source: "phone"}
			req := meta.Request(model.SwingWindow{{AX: 1}}, 100)

			convey.Convey("Then optional fields are populated", func() {
				convey.So(req.PlayerID, convey.ShouldEqual, "p1")
				convey.So(*req.SessionID, convey.ShouldEqual, "s1")
				convey.So(*req.TargetShot, convey.ShouldEqual, "Forehand")
				convey.So(req.SamplingRateHz, convey.ShouldEqual, 100)
				convey.So(len(req.Samples), convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When only the player is known", func() {
			req := model.Metadata{PlayerID: "p1"}.Request(nil, 50)

			convey.Convey("Then optional fields are omitted", func() {
				convey.So(req.SessionID, convey.ShouldBeNil)
				convey.So(req.TargetShot, convey.ShouldBeNil)
			})
		})
	})
}

func TestClassificationResultCoaching(t *testing.T) {
	convey.Convey("Given classification results", t, func() {
		convey.So(model.ClassificationResult{}.Coaching(), convey.ShouldEqual, "")
		r := model.ClassificationResult{CoachingMessage: model.StringPtr("Stay low.")}
		convey.So(r.Coaching(), convey.ShouldEqual, "Stay low.")
	})
}

func TestMalformedInputError(t *testing.T) {
	convey.Convey("Given a malformed input error", t, func() {
		err := &model.MalformedInputError{Field: "gz", Row: 4, Err: errors.New("empty")}
		convey.So(err.Error(), convey.ShouldEqual, `malformed input: field "gz" (row 4): empty`)
		convey.So(errors.Unwrap(err), convey.ShouldNotBeNil)
		convey.So((&model.MalformedInputError{Field: "ax"}).Error(), convey.ShouldEqual, `malformed input: field "ax"`)
	})
}
