package replay_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Gagan-341/NeuraSentinel/internal/adapters/classifier"
	"github.com/Gagan-341/NeuraSentinel/internal/domain/model"
	"github.com/Gagan-341/NeuraSentinel/internal/replay"
	. "github.com/smartystreets/goconvey/convey"
)

type stubClassifier struct {
	shot string
	err  error
}

func (s stubClassifier) Classify(_ context.Context, req model.SwingRequest) (model.SwingResponse, error) {
	if s.err != nil {
		return model.SwingResponse{}, s.err
	}
	return model.SwingResponse{
		PlayerID: req.PlayerID,
		Result:   model.ClassificationResult{ShotType: s.shot, Confidence: 0.8, SpeedMps: float64(len(req.Samples))},
	}, nil
}

func (s stubClassifier) LastSwing(context.Context, string, string) (model.SwingResponse, error) {
	return model.SwingResponse{}, classifier.ErrNotFound
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

const rawCSV = `acc_x,acc_y,acc_z,gyro_x,gyro_y,gyro_z
1,2,3,4,5,6
1,2,3,4,5,6
1,2,3,4,5,6
`

const exportedCSV = `swing_index,sample_index,shot_label,ax,ay,az,gx,gy,gz
0,0,Smash,1,2,3,4,5,6
0,1,Smash,1,2,3,4,5,6
1,0,Forehand,1,2,3,4,5,6
`

func TestRun(t *testing.T) {
	Convey("Given a raw recording and an exported dataset", t, func() {
		raw := writeFile(t, "backhand_001.csv", rawCSV)
		exported := writeFile(t, "session.csv", exportedCSV)
		var out bytes.Buffer

		Convey("When replaying against a classifier that always says Smash", func() {
			cfg := &replay.Config{Files: []string{raw, exported}, Label: "Backhand", Workers: 3}
			results, stats, err := replay.Run(context.Background(), cfg, stubClassifier{shot: "Smash"}, &out)

			Convey("Then every swing is classified once", func() {
				So(err, ShouldBeNil)
				So(len(results), ShouldEqual, 3)
				So(stats.Swings, ShouldEqual, 3)
				So(stats.Succeeded, ShouldEqual, 3)
				So(stats.Failed, ShouldEqual, 0)
			})

			Convey("And the CSV label wins over the default label", func() {
				So(stats.Labelled, ShouldEqual, 3)
				So(stats.Matched, ShouldEqual, 1)
				So(stats.Accuracy(), ShouldAlmostEqual, 1.0/3, 1e-9)
			})

			Convey("And the report lists swings and totals", func() {
				report := out.String()
				So(report, ShouldContainSubstring, "backhand_001.csv #0 (3 samples): Smash confidence=0.80")
				So(report, ShouldContainSubstring, "expected=Backhand miss")
				So(report, ShouldContainSubstring, "expected=Smash ok")
				So(report, ShouldContainSubstring, "swings=3 succeeded=3 failed=0 accuracy=33.3% (1/3)")
			})
		})

		Convey("When the classifier is unreachable", func() {
			cls := stubClassifier{err: &classifier.TransportError{Op: "classify", Err: errors.New("refused")}}
			_, stats, err := replay.Run(context.Background(), &replay.Config{Files: []string{raw}}, cls, &out)

			Convey("Then failures are counted, not fatal", func() {
				So(err, ShouldBeNil)
				So(stats.Failed, ShouldEqual, 1)
				So(stats.Labelled, ShouldEqual, 0)
				So(out.String(), ShouldContainSubstring, "error [transport_error]")
			})
		})

		Convey("When replaying against the in-process classifier", func() {
			cls := classifier.NewLocal(classifier.WithLatencyRange(0, time.Millisecond))
			results, _, err := replay.Run(context.Background(), &replay.Config{Files: []string{exported}, Verbose: true}, cls, &out)

			Convey("Then each swing gets a known shot type", func() {
				So(err, ShouldBeNil)
				for _, r := range results {
					So(r.Err, ShouldBeNil)
					So(r.ShotType, ShouldNotBeEmpty)
				}
			})
		})
	})

	Convey("Given inputs that cannot be replayed", t, func() {
		var out bytes.Buffer

		Convey("When a file is missing", func() {
			_, _, err := replay.Run(context.Background(), &replay.Config{Files: []string{"/nonexistent.csv"}}, stubClassifier{}, &out)
			So(err, ShouldNotBeNil)
		})

		Convey("When a column is missing", func() {
			bad := writeFile(t, "bad.csv", "ax,ay,az,gx,gy\n1,2,3,4,5\n")
			_, _, err := replay.Run(context.Background(), &replay.Config{Files: []string{bad}}, stubClassifier{}, &out)
			var mie *model.MalformedInputError
			So(errors.As(err, &mie), ShouldBeTrue)
			So(mie.Field, ShouldEqual, "gz")
		})

		Convey("When the file holds only a header", func() {
			empty := writeFile(t, "empty.csv", "ax,ay,az,gx,gy,gz\n")
			_, _, err := replay.Run(context.Background(), &replay.Config{Files: []string{empty}}, stubClassifier{}, &out)
			So(errors.Is(err, replay.ErrNoSwings), ShouldBeTrue)
		})

		Convey("When the context is already cancelled", func() {
			path := writeFile(t, "one.csv", rawCSV)
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, _, err := replay.Run(ctx, &replay.Config{Files: []string{path}}, stubClassifier{shot: "Push"}, &out)
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
			So(strings.TrimSpace(out.String()), ShouldBeEmpty)
		})
	})
}
