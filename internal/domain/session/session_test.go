package session_test

import (
	"sync"
	"testing"
	"time"

	"github.com/Gagan-341/NeuraSentinel/internal/domain/model"
	"github.com/Gagan-341/NeuraSentinel/internal/domain/session"
	. "github.com/smartystreets/goconvey/convey"
)

func result(shot string, conf, speed float64) model.ClassificationResult {
	return model.ClassificationResult{ShotType: shot, Confidence: conf, SpeedMps: speed, AccuracyScore: conf}
}

func TestAggregator(t *testing.T) {
	Convey("Given an empty aggregator", t, func() {
		a := session.NewAggregator()

		Convey("Then every average is zero", func() {
			So(a.AverageConfidence("Forehand"), ShouldEqual, 0)
			So(a.AverageSpeed("Forehand"), ShouldEqual, 0)
			So(a.AverageTechnique("Forehand"), ShouldEqual, 0)
			So(a.OverallAccuracy(), ShouldEqual, 0)
			So(a.OverallAvgSpeed(), ShouldEqual, 0)
			So(a.Shots(), ShouldBeEmpty)
		})

		Convey("When 3 Forehands at 0.9 and 1 Backhand at 0.5 are recorded", func() {
			for i := 0; i < 3; i++ {
				a.Record(result("Forehand", 0.9, 20))
			}
			a.Record(result("Backhand", 0.5, 10))

			Convey("Then overall accuracy is the count-weighted mean", func() {
				So(a.OverallAccuracy(), ShouldAlmostEqual, 0.80, 1e-9)
				So(a.OverallAvgSpeed(), ShouldAlmostEqual, 17.5, 1e-9)
				So(a.TotalSwings(), ShouldEqual, 4)
			})

			Convey("And per-shot averages are exact", func() {
				So(a.AverageConfidence("Forehand"), ShouldAlmostEqual, 0.9, 1e-9)
				So(a.AverageConfidence("Backhand"), ShouldAlmostEqual, 0.5, 1e-9)
				So(a.AverageSpeed("Backhand"), ShouldAlmostEqual, 10, 1e-9)
			})

			Convey("And summaries are sorted by shot type", func() {
				shots := a.Shots()
				So(len(shots), ShouldEqual, 2)
				So(shots[0].ShotType, ShouldEqual, "Backhand")
				So(shots[1].Count, ShouldEqual, 3)
			})

			Convey("And reset clears everything", func() {
				a.Reset()
				So(a.TotalSwings(), ShouldEqual, 0)
			})
		})

		Convey("When only some results carry a technique score", func() {
			r := result("Smash", 0.7, 25)
			r.TechniqueScore = model.IntPtr(80)
			a.Record(r)
			a.Record(result("Smash", 0.7, 25))

			So(a.AverageTechnique("Smash"), ShouldEqual, 80)
			So(a.Shots()[0].AverageTechnique, ShouldEqual, 80)
		})

		Convey("When results are recorded concurrently", func() {
			var wg sync.WaitGroup
			for i := 0; i < 40; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					a.Record(result("Push", 0.6, 5))
				}()
			}
			wg.Wait()
			So(a.TotalSwings(), ShouldEqual, 40)
		})
	})
}

func TestPerformanceScore(t *testing.T) {
	Convey("Given recorded sessions", t, func() {
		a := session.NewAggregator()

		Convey("When accuracy, speed and volume saturate", func() {
			for i := 0; i < 80; i++ {
				a.Record(result("Forehand", 1.0, 40))
			}
			p := a.PerformanceScore()
			So(p.Score, ShouldEqual, 100)
			So(p.Label, ShouldEqual, session.LabelElite)
		})

		Convey("When the session is small", func() {
			// 0.6*80 + 0.25*(14/35)*100 + 0.15*(4/80)*100 = 48 + 10 + 0.75 = 58.75
			for i := 0; i < 4; i++ {
				a.Record(result("Forehand", 0.8, 14))
			}
			p := a.PerformanceScore()
			So(p.Score, ShouldEqual, 59)
			So(p.Label, ShouldEqual, session.LabelIntermediate)
		})

		Convey("When nothing was recorded", func() {
			p := a.PerformanceScore()
			So(p.Score, ShouldEqual, 0)
			So(p.Label, ShouldEqual, session.LabelFoundation)
		})
	})

	Convey("Labels follow the score buckets", t, func() {
		So(session.PerformanceLabel(85), ShouldEqual, session.LabelElite)
		So(session.PerformanceLabel(84), ShouldEqual, session.LabelAdvanced)
		So(session.PerformanceLabel(70), ShouldEqual, session.LabelAdvanced)
		So(session.PerformanceLabel(50), ShouldEqual, session.LabelIntermediate)
		So(session.PerformanceLabel(49), ShouldEqual, session.LabelFoundation)
	})
}

func TestConsistencyScore(t *testing.T) {
	Convey("Given per-session accuracy history", t, func() {
		Convey("When fewer than two points exist", func() {
			So(session.ConsistencyScore(nil), ShouldEqual, session.NeutralConsistency)
			So(session.ConsistencyScore([]float64{0.4}), ShouldEqual, session.NeutralConsistency)
		})

		Convey("When accuracy is perfectly stable", func() {
			So(session.ConsistencyScore([]float64{0.8, 0.8, 0.8}), ShouldAlmostEqual, 100, 1e-9)
		})

		Convey("When accuracy varies a little", func() {
			// population std-dev of {0.7, 0.9} is 0.1
			So(session.ConsistencyScore([]float64{0.7, 0.9}), ShouldAlmostEqual, 90, 1e-9)
		})

		Convey("When accuracy varies wildly", func() {
			So(session.ConsistencyScore([]float64{0, 1, 0, 1}), ShouldEqual, 60)
		})
	})

	Convey("Given a bounded history", t, func() {
		h := session.NewHistory(2)
		h.Add(session.Summary{SessionID: "a", OverallAccuracy: 0.1})
		h.Add(session.Summary{SessionID: "b", OverallAccuracy: 0.8})
		h.Add(session.Summary{SessionID: "c", OverallAccuracy: 0.8})
		So(h.Values(), ShouldResemble, []float64{0.8, 0.8})
		So(h.Consistency(), ShouldAlmostEqual, 100, 1e-9)
		So(h.Sessions()[0].SessionID, ShouldEqual, "b")
	})

	Convey("Given a finished session", t, func() {
		a := session.NewAggregator()
		a.Record(result("Smash", 0.6, 20))
		a.Record(result("Forehand", 0.9, 10))
		end := time.Unix(1_700_000_000, 0)

		s := session.Summarize("s1", end, a)

		Convey("Then the summary carries its per-shot breakdown", func() {
			So(s.SessionID, ShouldEqual, "s1")
			So(s.EndedAt, ShouldEqual, end)
			So(s.TotalSwings, ShouldEqual, 2)
			So(s.OverallAccuracy, ShouldAlmostEqual, 0.75, 1e-9)
			So(len(s.Shots), ShouldEqual, 2)
			So(s.Shots[0].ShotType, ShouldEqual, "Forehand")
		})
	})
}

func TestInsights(t *testing.T) {
	Convey("Given an aggregator", t, func() {
		a := session.NewAggregator()

		Convey("When no swings were logged", func() {
			in := a.Insights()
			So(in.PrimaryTip, ShouldStartWith, "No swings logged yet")
			So(in.SecondaryTip, ShouldBeNil)
			So(in.Flags, ShouldBeEmpty)
		})

		Convey("When one shot is fast but inaccurate", func() {
			a.Record(result("Smash", 0.5, 25))
			a.Record(result("Forehand", 0.9, 15))
			in := a.Insights()

			Convey("Then it is flagged as rushed and targeted by the tip", func() {
				So(len(in.Flags), ShouldEqual, 1)
				So(in.Flags[0].Issue, ShouldEqual, session.IssueRushedSwing)
				So(in.Flags[0].Severity, ShouldEqual, "warning")
				So(in.PrimaryTip, ShouldStartWith, "Your Smash is powerful but wild (50.0% accuracy).")
				So(in.SecondaryTip, ShouldNotBeNil)
			})
		})

		Convey("When shots are slow or inconsistent", func() {
			a.Record(result("Push", 0.4, 5))
			a.Record(result("Block", 0.7, 12))
			in := a.Insights()

			So(len(in.Flags), ShouldEqual, 2)
			So(in.Flags[0].Issue, ShouldEqual, session.IssueInconsistentContact)
			So(in.Flags[1].Issue, ShouldEqual, session.IssueWeakPace)
			So(in.PrimaryTip, ShouldStartWith, "Your Push needs more stability")
		})

		Convey("When every shot is perfect", func() {
			a.Record(result("Forehand", 1.0, 15))
			So(a.Insights().PrimaryTip, ShouldStartWith, "Session data is too sparse")
		})

		Convey("When the weakest shot is still strong", func() {
			a.Record(result("Serve", 0.8, 15))
			So(a.Insights().PrimaryTip, ShouldStartWith, "Your Serve is a clear strength")
		})
	})
}

func TestChallenges(t *testing.T) {
	Convey("Given the default challenges", t, func() {
		a := session.NewAggregator()

		Convey("When nothing is recorded", func() {
			for _, ch := range a.Challenges(nil) {
				So(ch.Status, ShouldEqual, session.StatusNotStarted)
				So(ch.CurrentAccuracy, ShouldBeNil)
			}
		})

		Convey("When forehands beat the target and backhands fall short", func() {
			a.Record(result("Forehand", 0.85, 15))
			a.Record(result("Backhand", 0.6, 15))
			chs := a.Challenges(nil)

			So(chs[0].Status, ShouldEqual, session.StatusCompleted)
			So(chs[0].Progress, ShouldEqual, 1)
			So(chs[1].Status, ShouldEqual, session.StatusInProgress)
			So(chs[1].Progress, ShouldAlmostEqual, 0.8, 1e-9)
			So(chs[1].CurrentSwings, ShouldEqual, 1)
		})

		Convey("When looking up a challenge by id", func() {
			ch, err := a.Challenge("c2")
			So(err, ShouldBeNil)
			So(ch.TargetShot, ShouldEqual, "Backhand")

			_, err = a.Challenge("nope")
			So(err, ShouldEqual, session.ErrUnknownChallenge)
		})
	})
}
