package worker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Gagan-341/NeuraSentinel/internal/adapters/mq/queue"
	"github.com/Gagan-341/NeuraSentinel/pkg/logger"
	"github.com/Gagan-341/NeuraSentinel/pkg/metrics"
)

// Sink is one output for coaching text: a log line, a websocket broadcast.
type Sink interface {
	Deliver(ctx context.Context, text string) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, text string) error

// Deliver calls f.
func (f SinkFunc) Deliver(ctx context.Context, text string) error { return f(ctx, text) }

// Queue defines how workers receive messages.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Message
}

// Worker drains a queue until stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown stops the worker and waits for the in-flight message.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker delivers one message at a time so emissions never overlap.
type InMemoryWorker struct {
	queue        Queue
	sinks        []Sink
	name         string
	wordDuration time.Duration

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)
	metrics.UpdateWorkerActiveCount(1)
	defer metrics.UpdateWorkerActiveCount(0)

	messages := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case m, ok := <-messages:
			if !ok {
				return
			}
			metrics.RecordQueueDequeue()
			if err := w.process(ctx, m); err != nil {
				w.logger.Error(ctx, "error delivering message", logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// process delivers m to every sink, then holds for the speaking time and
// finally releases the emitter.
func (w *InMemoryWorker) process(ctx context.Context, m queue.Message) error {
	defer m.Finish()

	if !m.EnqueuedAt.IsZero() {
		metrics.RecordQueueProcessingLatency(float64(time.Since(m.EnqueuedAt).Milliseconds()))
	}
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	var errs []error
	for _, s := range w.sinks {
		if err := s.Deliver(ctx, m.Text); err != nil {
			metrics.RecordWorkerError()
			metrics.RecordErrorByComponent("worker", "sink_error")
			errs = append(errs, err)
		}
	}

	if hold := w.holdFor(m.Text); hold > 0 {
		timer := time.NewTimer(hold)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
		case <-w.shutdown:
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("deliver %q: %w", m.Text, err)
	}
	return nil
}

func (w *InMemoryWorker) holdFor(text string) time.Duration {
	if w.wordDuration == 0 {
		return 0
	}
	return time.Duration(len(strings.Fields(text))) * w.wordDuration
}

// LogSink writes every message as an info log line.
func LogSink(l logger.Logger) Sink {
	return SinkFunc(func(ctx context.Context, text string) error {
		l.Info(ctx, "coaching", logger.String("message", text))
		return nil
	})
}
