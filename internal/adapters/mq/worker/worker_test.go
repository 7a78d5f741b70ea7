package worker_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	queue "github.com/Gagan-341/NeuraSentinel/internal/adapters/mq/queue"
	worker "github.com/Gagan-341/NeuraSentinel/internal/adapters/mq/worker"
	logging "github.com/Gagan-341/NeuraSentinel/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

type recordingSink struct {
	mu    sync.Mutex
	texts []string
	err   error
}

func (s *recordingSink) Deliver(_ context.Context, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.texts = append(s.texts, text)
	return s.err
}

func (s *recordingSink) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *recordingSink) got() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.texts...)
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a worker draining an emission queue", t, func() {
		_ = logging.Init()

		q := queue.NewInMemoryQueue(queue.WithCapacity(8))
		first := &recordingSink{}
		second := &recordingSink{}
		w := worker.NewInMemoryWorker(q,
			worker.WithName("coach"),
			worker.WithSinks(first, nil, second, worker.LogSink(logging.Get())),
		)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Run(ctx)

		convey.Convey("When messages are emitted", func() {
			var finished atomic.Int32
			q.Emit(ctx, "Rotate your hips.", func() { finished.Add(1) })
			q.Emit(ctx, "Follow through.", func() { finished.Add(1) })

			convey.Convey("Then every sink receives them in order and each finishes", func() {
				convey.So(waitFor(func() bool { return finished.Load() == 2 }), convey.ShouldBeTrue)
				convey.So(first.got(), convey.ShouldResemble, []string{"Rotate your hips.", "Follow through."})
				convey.So(second.got(), convey.ShouldResemble, first.got())
			})
		})

		convey.Convey("When a sink fails", func() {
			first.fail(errors.New("socket closed"))
			var finished atomic.Bool
			q.Emit(ctx, "Stay low.", func() { finished.Store(true) })

			convey.Convey("Then the other sinks still deliver and the message finishes", func() {
				convey.So(waitFor(finished.Load), convey.ShouldBeTrue)
				convey.So(second.got(), convey.ShouldResemble, []string{"Stay low."})
			})
		})

		convey.Convey("When shutting down", func() {
			sctx, scancel := context.WithTimeout(context.Background(), time.Second)
			defer scancel()
			convey.So(w.Shutdown(sctx), convey.ShouldBeNil)
			convey.So(w.Shutdown(sctx), convey.ShouldBeNil)
		})
	})

	convey.Convey("Given a worker that holds per word", t, func() {
		q := queue.NewInMemoryQueue()
		w := worker.NewInMemoryWorker(q, worker.WithWordDuration(30*time.Millisecond))
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Run(ctx)

		var finished atomic.Bool
		start := time.Now()
		q.Emit(ctx, "one two three four", func() { finished.Store(true) })

		convey.So(waitFor(finished.Load), convey.ShouldBeTrue)
		convey.So(time.Since(start), convey.ShouldBeGreaterThanOrEqualTo, 120*time.Millisecond)
	})

	convey.Convey("Given a closed queue", t, func() {
		q := queue.NewInMemoryQueue()
		w := worker.NewInMemoryWorker(q)
		_ = q.Close()

		done := make(chan struct{})
		go func() {
			w.Run(context.Background())
			close(done)
		}()

		convey.Convey("Then Run returns", func() {
			select {
			case <-done:
			case <-time.After(time.Second):
				convey.So("worker still running", convey.ShouldBeEmpty)
			}
		})
	})
}
