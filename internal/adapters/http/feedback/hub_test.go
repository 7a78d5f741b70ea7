package feedback_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Gagan-341/NeuraSentinel/internal/adapters/http/feedback"
	"github.com/Gagan-341/NeuraSentinel/internal/domain/model"
	"github.com/gorilla/websocket"
	. "github.com/smartystreets/goconvey/convey"
)

func TestHub(t *testing.T) {
	Convey("Given a running hub behind a test server", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		hub := feedback.NewHub()
		go hub.Run(ctx)
		srv := httptest.NewServer(hub)
		defer srv.Close()

		url := "ws" + strings.TrimPrefix(srv.URL, "http")
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		So(err, ShouldBeNil)
		defer conn.Close()

		deadline := time.Now().Add(time.Second)
		for hub.Clients() == 0 && time.Now().Before(deadline) {
			time.Sleep(5 * time.Millisecond)
		}
		So(hub.Clients(), ShouldEqual, 1)

		read := func() feedback.Event {
			_ = conn.SetReadDeadline(time.Now().Add(time.Second))
			_, data, err := conn.ReadMessage()
			So(err, ShouldBeNil)
			var ev feedback.Event
			So(json.Unmarshal(data, &ev), ShouldBeNil)
			return ev
		}

		Convey("When a coaching message is delivered", func() {
			So(hub.Deliver(ctx, "Keep your wrist loose."), ShouldBeNil)

			Convey("Then the client receives it", func() {
				ev := read()
				So(ev.Type, ShouldEqual, feedback.TypeCoaching)
				So(ev.Message, ShouldEqual, "Keep your wrist loose.")
			})
		})

		Convey("When a swing is published", func() {
			resp := model.SwingResponse{
				PlayerID: "p1",
				Result:   model.ClassificationResult{ShotType: "Forehand", Confidence: 0.8},
			}
			So(hub.PublishSwing(ctx, resp), ShouldBeNil)

			Convey("Then the client receives the result", func() {
				ev := read()
				So(ev.Type, ShouldEqual, feedback.TypeSwing)
				So(ev.Swing, ShouldNotBeNil)
				So(ev.Swing.Result.ShotType, ShouldEqual, "Forehand")
			})
		})

		Convey("When the client disconnects", func() {
			_ = conn.Close()
			deadline := time.Now().Add(time.Second)
			for hub.Clients() != 0 && time.Now().Before(deadline) {
				time.Sleep(5 * time.Millisecond)
			}
			So(hub.Clients(), ShouldEqual, 0)
		})
	})

	Convey("Given a stopped hub", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		hub := feedback.NewHub()
		done := make(chan struct{})
		go func() {
			hub.Run(ctx)
			close(done)
		}()
		cancel()
		<-done

		Convey("Then delivery fails fast", func() {
			So(hub.Deliver(context.Background(), "late"), ShouldEqual, feedback.ErrHubStopped)
		})
	})
}
