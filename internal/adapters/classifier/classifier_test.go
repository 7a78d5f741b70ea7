package classifier_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Gagan-341/NeuraSentinel/internal/adapters/classifier"
	"github.com/Gagan-341/NeuraSentinel/internal/domain/coaching"
	"github.com/Gagan-341/NeuraSentinel/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func window(n int, s model.MotionSample) []model.MotionSample {
	out := make([]model.MotionSample, n)
	for i := range out {
		out[i] = s
		out[i].T = float64(i) / 100
	}
	return out
}

func TestHTTPClassify(t *testing.T) {
	Convey("Given a classification service", t, func() {
		var got model.SwingRequest
		var requestID string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case classifier.ClassifyPath:
				requestID = r.Header.Get("X-Request-ID")
				_ = json.NewDecoder(r.Body).Decode(&got)
				_ = json.NewEncoder(w).Encode(model.SwingResponse{
					PlayerID:  got.PlayerID,
					SessionID: got.SessionID,
					Result: model.ClassificationResult{
						ShotType:        "Forehand",
						Confidence:      0.9,
						SpeedMps:        14,
						AccuracyScore:   0.9,
						CoachingMessage: model.StringPtr("Nice."),
					},
				})
			case classifier.LastSwingPath:
				if r.URL.Query().Get("player_id") != "p1" {
					w.WriteHeader(http.StatusNotFound)
					_, _ = w.Write([]byte(`{"detail":"No swings yet for this session."}`))
					return
				}
				_ = json.NewEncoder(w).Encode(model.SwingResponse{
					PlayerID: "p1",
					Result:   model.ClassificationResult{ShotType: "Smash", Confidence: 0.8},
				})
			}
		}))
		defer srv.Close()

		c := classifier.NewHTTPClient(srv.URL+"/", classifier.WithTimeout(time.Second))
		ctx := context.Background()

		Convey("When a window is classified", func() {
			meta := model.Metadata{PlayerID: "p1", SessionID: "s1", TargetShot: "Forehand", Source: "sensor"}
			resp, err := c.Classify(ctx, meta.Request(window(5, model.MotionSample{AZ: 9.8}), 100))

			Convey("Then the request and response round trip", func() {
				So(err, ShouldBeNil)
				So(got.PlayerID, ShouldEqual, "p1")
				So(*got.SessionID, ShouldEqual, "s1")
				So(*got.TargetShot, ShouldEqual, "Forehand")
				So(len(got.Samples), ShouldEqual, 5)
				So(requestID, ShouldNotBeEmpty)
				So(resp.Result.ShotType, ShouldEqual, "Forehand")
				So(resp.Result.Coaching(), ShouldEqual, "Nice.")
			})
		})

		Convey("When the last swing is requested", func() {
			resp, err := c.LastSwing(ctx, "p1", "")
			So(err, ShouldBeNil)
			So(resp.Result.ShotType, ShouldEqual, "Smash")

			_, err = c.LastSwing(ctx, "nobody", "s1")
			So(errors.Is(err, classifier.ErrNotFound), ShouldBeTrue)
			So(classifier.Kind(err), ShouldEqual, "not_found")
		})
	})

	Convey("Given a failing service", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "model not loaded", http.StatusServiceUnavailable)
		}))
		defer srv.Close()
		c := classifier.NewHTTPClient(srv.URL)

		Convey("When classifying", func() {
			_, err := c.Classify(context.Background(), model.SwingRequest{PlayerID: "p1"})

			Convey("Then a ServerError carries status and body", func() {
				var se *classifier.ServerError
				So(errors.As(err, &se), ShouldBeTrue)
				So(se.Status, ShouldEqual, http.StatusServiceUnavailable)
				So(se.Body, ShouldEqual, "model not loaded")
				So(classifier.Kind(err), ShouldEqual, "server_error")
			})
		})

		Convey("When classify answers 404 it is a server error, not an empty state", func() {
			notFound := httptest.NewServer(http.NotFoundHandler())
			defer notFound.Close()
			_, err := classifier.NewHTTPClient(notFound.URL).Classify(context.Background(), model.SwingRequest{})
			var se *classifier.ServerError
			So(errors.As(err, &se), ShouldBeTrue)
		})
	})

	Convey("Given a service answering 200 with a body that is not JSON", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("<html>proxy error</html>"))
		}))
		defer srv.Close()

		_, err := classifier.NewHTTPClient(srv.URL).Classify(context.Background(), model.SwingRequest{})

		Convey("Then it is a server error that keeps the status", func() {
			var se *classifier.ServerError
			So(errors.As(err, &se), ShouldBeTrue)
			So(se.Status, ShouldEqual, http.StatusOK)
			So(se.Body, ShouldEqual, "<html>proxy error</html>")
			So(se.Err, ShouldNotBeNil)
			So(classifier.Kind(err), ShouldEqual, "server_error")

			var te *classifier.TransportError
			So(errors.As(err, &te), ShouldBeFalse)
		})
	})

	Convey("Given an unreachable service", t, func() {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		_, err := classifier.NewHTTPClient(url).Classify(context.Background(), model.SwingRequest{})

		Convey("Then a TransportError is returned", func() {
			var te *classifier.TransportError
			So(errors.As(err, &te), ShouldBeTrue)
			So(te.Op, ShouldEqual, "classify")
			So(classifier.Kind(err), ShouldEqual, "transport_error")
		})
	})

	Convey("Given a slow service and a short timeout", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			time.Sleep(200 * time.Millisecond)
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		_, err := classifier.NewHTTPClient(srv.URL, classifier.WithTimeout(20*time.Millisecond)).
			Classify(context.Background(), model.SwingRequest{})
		var te *classifier.TransportError
		So(errors.As(err, &te), ShouldBeTrue)
	})
}

func TestLocalClassifier(t *testing.T) {
	Convey("Given a local classifier without latency", t, func() {
		l := classifier.NewLocal(classifier.WithLatencyRange(0, time.Millisecond), classifier.WithSeed(1))
		ctx := context.Background()

		Convey("When nothing was classified", func() {
			_, err := l.LastSwing(ctx, "p1", "")
			So(err, ShouldEqual, classifier.ErrNotFound)
		})

		Convey("When an empty window is classified", func() {
			resp, err := l.Classify(ctx, model.SwingRequest{PlayerID: "p1"})

			Convey("Then the fallback label is returned", func() {
				So(err, ShouldBeNil)
				So(resp.Result.ShotType, ShouldEqual, coaching.Forehand)
				So(resp.Result.Confidence, ShouldEqual, 0.75)
				So(resp.Result.AccuracyScore, ShouldEqual, 0.75)
			})
		})

		Convey("When a fast downward window is classified", func() {
			meta := model.Metadata{PlayerID: "p1", SessionID: "s1", Source: "sensor"}
			resp, err := l.Classify(ctx, meta.Request(window(30, model.MotionSample{AX: 3, AZ: -28, GZ: 50}), 100))

			Convey("Then it is labelled a smash with coaching", func() {
				So(err, ShouldBeNil)
				So(resp.Result.ShotType, ShouldEqual, coaching.Smash)
				So(resp.Result.SpeedMps, ShouldBeGreaterThan, 20)
				So(resp.Result.Confidence, ShouldBeBetweenOrEqual, 0.55, 0.95)
				So(resp.Result.AccuracyScore, ShouldEqual, resp.Result.Confidence)
				So(resp.Result.TechniqueScore, ShouldNotBeNil)
				So(resp.Result.Coaching(), ShouldNotBeEmpty)
				So(*resp.Source, ShouldEqual, "sensor")
			})

			Convey("And it becomes the last swing of that session only", func() {
				last, err := l.LastSwing(ctx, "p1", "s1")
				So(err, ShouldBeNil)
				So(last.Result.ShotType, ShouldEqual, coaching.Smash)

				_, err = l.LastSwing(ctx, "p1", "")
				So(err, ShouldEqual, classifier.ErrNotFound)
			})
		})

		Convey("When the context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			slow := classifier.NewLocal(classifier.WithLatencyRange(time.Second, 2*time.Second))
			_, err := slow.Classify(cctx, model.SwingRequest{})
			So(classifier.Kind(err), ShouldEqual, "transport_error")
		})
	})
}

func TestLabel(t *testing.T) {
	Convey("Given characteristic windows", t, func() {
		cases := []struct {
			sample model.MotionSample
			want   string
		}{
			{model.MotionSample{AX: 12, AZ: 1, GZ: 120}, coaching.Forehand},
			{model.MotionSample{AX: 12, AZ: 1, GZ: -120}, coaching.Backhand},
			{model.MotionSample{AX: 2, AZ: -6, GZ: 10}, coaching.Chop},
			{model.MotionSample{AX: 5, AZ: 1, GZ: 400}, coaching.Flick},
			{model.MotionSample{AX: 3, AZ: 1, GX: 80, GZ: 10}, coaching.Block},
			{model.MotionSample{AX: 3, AZ: 1, GX: 5, GZ: 10}, coaching.Push},
			{model.MotionSample{AX: 2, AZ: 9, GY: 90, GZ: 10}, coaching.Serve},
		}
		for _, c := range cases {
			w := model.SwingWindow(window(20, c.sample))
			f, ok := coaching.ExtractFeatures(w)
			So(ok, ShouldBeTrue)
			shot, conf := classifier.Label(w, f)
			So(shot, ShouldEqual, c.want)
			So(conf, ShouldBeBetweenOrEqual, 0.55, 0.95)
		}
	})
}
