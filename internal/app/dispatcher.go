package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Gagan-341/NeuraSentinel/internal/adapters/classifier"
	"github.com/Gagan-341/NeuraSentinel/internal/domain/model"
	"github.com/Gagan-341/NeuraSentinel/pkg/metrics"
)

// Purpose separates independent kinds of classifier traffic. At most one
// request per purpose is in flight.
type Purpose string

const (
	PurposeClassify Purpose = "classify"
	PurposePoll     Purpose = "poll"
)

// Job performs one classifier call.
type Job func(ctx context.Context) (model.SwingResponse, error)

// DoneFunc receives the outcome of a Job.
type DoneFunc func(resp model.SwingResponse, err error)

// Dispatcher runs classifier jobs in the background.
type Dispatcher struct {
	mu       sync.Mutex
	inflight map[Purpose]*atomic.Bool
	onError  func(Purpose, error)
	wg       sync.WaitGroup
}

// NewDispatcher creates a dispatcher. onError, if set, is called for every
// failed job except ErrNotFound.
func NewDispatcher(onError func(Purpose, error)) *Dispatcher {
	return &Dispatcher{
		inflight: make(map[Purpose]*atomic.Bool),
		onError:  onError,
	}
}

func (d *Dispatcher) flag(p Purpose) *atomic.Bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	f, ok := d.inflight[p]
	if !ok {
		f = &atomic.Bool{}
		d.inflight[p] = f
	}
	return f
}

// Submit starts job unless one for the same purpose is still running, in
// which case it returns false without doing anything. onDone runs on the
// job's goroutine.
func (d *Dispatcher) Submit(ctx context.Context, p Purpose, job Job, onDone DoneFunc) bool {
	busy := d.flag(p)
	if !busy.CompareAndSwap(false, true) {
		metrics.RecordClassification(string(p), "busy")
		return false
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer busy.Store(false)

		start := time.Now()
		resp, err := job(ctx)
		metrics.RecordClassificationLatency(float64(time.Since(start).Milliseconds()))
		metrics.RecordClassification(string(p), classifier.Kind(err))

		if err != nil && !isNotFound(err) {
			metrics.RecordErrorByComponent("classifier", classifier.Kind(err))
			if d.onError != nil {
				d.onError(p, err)
			}
		}
		if onDone != nil {
			onDone(resp, err)
		}
	}()
	return true
}

// InFlight reports whether a job for p is running.
func (d *Dispatcher) InFlight(p Purpose) bool {
	return d.flag(p).Load()
}

// Wait blocks until every submitted job has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
