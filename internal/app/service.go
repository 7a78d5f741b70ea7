// Package service wires sample ingestion, swing detection, classification
// and coaching into one session pipeline.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Gagan-341/NeuraSentinel/internal/adapters/classifier"
	"github.com/Gagan-341/NeuraSentinel/internal/adapters/dataset"
	"github.com/Gagan-341/NeuraSentinel/internal/domain/buffer"
	"github.com/Gagan-341/NeuraSentinel/internal/domain/coaching"
	"github.com/Gagan-341/NeuraSentinel/internal/domain/dedupe"
	"github.com/Gagan-341/NeuraSentinel/internal/domain/detector"
	"github.com/Gagan-341/NeuraSentinel/internal/domain/model"
	"github.com/Gagan-341/NeuraSentinel/internal/domain/session"
	"github.com/Gagan-341/NeuraSentinel/internal/domain/throttle"
	"github.com/Gagan-341/NeuraSentinel/internal/domain/window"
	"github.com/Gagan-341/NeuraSentinel/pkg/logger"
	"github.com/Gagan-341/NeuraSentinel/pkg/metrics"
	"github.com/google/uuid"
)

// Defaults.
const (
	DefaultPlayerID     = "practice_player"
	DefaultSourceName   = "sensor"
	DefaultSamplingRate = 100.0
	defaultDedupeSize   = 1024
	defaultHistoryLimit = 20
)

// Service is the session pipeline. All pipeline state is guarded by one
// mutex; the classifier calls are the only background work.
type Service struct {
	mu sync.Mutex

	classifier classifier.Classifier
	dispatcher *Dispatcher
	throttle   *throttle.Throttle
	gate       *throttle.SwingGate
	agg        *session.Aggregator
	history    *session.History
	deduper    dedupe.Deduper
	recorder   *dataset.Recorder
	publisher  Publisher

	buf *buffer.SampleBuffer
	det *detector.Detector

	// configuration
	meta             model.Metadata
	rateHz           float64
	bufferCapacity   int
	detectorOpts     []detector.Option
	pollInterval     time.Duration
	dedupeSize       int
	coachingCooldown time.Duration
	minSwings        int
	historyLimit     int
	challenges       []session.Challenge
	now              func() time.Time
	startHooks       []func(context.Context) error

	// stream state
	streaming  bool
	epoch      uint64
	cancel     context.CancelFunc
	startedAt  time.Time
	lastResult *model.SwingResponse
	lastError  error
	pollDone   chan struct{}

	logger logger.Logger
}

// New constructs a Service around a classifier and a coaching emitter.
func New(cls classifier.Classifier, emitter throttle.Emitter, opts ...Option) (*Service, error) {
	if cls == nil {
		return nil, ErrNilClassifier
	}
	if emitter == nil {
		return nil, ErrNilEmitter
	}

	s := &Service{
		classifier:       cls,
		meta:             model.Metadata{PlayerID: DefaultPlayerID, Source: DefaultSourceName},
		rateHz:           DefaultSamplingRate,
		bufferCapacity:   buffer.DefaultCapacity,
		dedupeSize:       defaultDedupeSize,
		coachingCooldown: throttle.DefaultCooldown,
		minSwings:        throttle.DefaultMinSwings,
		historyLimit:     defaultHistoryLimit,
		challenges:       session.DefaultChallenges(),
		now:              time.Now,
		logger:           logger.Get().Named("service"),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.meta.TargetShot != "" && !coaching.IsShot(s.meta.TargetShot) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownShot, s.meta.TargetShot)
	}
	s.det = detector.New(append([]detector.Option{detector.WithClock(s.now)}, s.detectorOpts...)...)
	if err := s.det.Validate(); err != nil {
		return nil, fmt.Errorf("detector: %w", err)
	}

	s.buf = buffer.New(s.bufferCapacity)
	s.throttle = throttle.New(emitter,
		throttle.WithCooldown(s.coachingCooldown),
		throttle.WithClock(s.now),
	)
	s.gate = throttle.NewSwingGate(s.minSwings)
	s.agg = session.NewAggregator()
	s.history = session.NewHistory(s.historyLimit)
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.dispatcher = NewDispatcher(s.reportError)
	return s, nil
}

// Start begins a new session: fresh session id, empty buffer, reset
// detector, throttle and stats. It is a no-op while already streaming.
func (s *Service) Start(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.streaming {
		return s.meta.SessionID, nil
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.streaming = true
	s.epoch++
	s.startedAt = s.now()
	s.meta.SessionID = uuid.NewString()
	s.buf.Reset(s.startedAt)
	s.det.Reset()
	s.throttle.Reset()
	s.gate.Reset()
	s.agg.Reset()
	s.lastResult = nil
	s.lastError = nil
	for _, hook := range s.startHooks {
		if err := hook(ctx); err != nil {
			s.logger.Warn(ctx, "start hook failed", logger.Error(err))
		}
	}

	if s.pollInterval > 0 {
		s.pollDone = make(chan struct{})
		go s.pollLoop(runCtx, s.epoch, s.pollDone)
	}

	metrics.UpdateStreaming(true)
	metrics.UpdateSession(0, 0, 0)
	metrics.UpdateSampleBufferLength(0)
	s.logger.Info(ctx, "session started",
		logger.String("player", s.meta.PlayerID),
		logger.String("session", s.meta.SessionID),
		logger.String("target_shot", s.meta.TargetShot),
		logger.Bool("polling", s.pollInterval > 0),
	)
	return s.meta.SessionID, nil
}

// OnStart registers fn to run on every Start once pipeline state is reset.
// Sample sources use it to restart their stream clock.
func (s *Service) OnStart(fn func(ctx context.Context) error) {
	s.mu.Lock()
	s.startHooks = append(s.startHooks, fn)
	s.mu.Unlock()
}

// Stop ends the session. In-flight classifications finish but their results
// are dropped.
func (s *Service) Stop(ctx context.Context) {
	s.mu.Lock()
	if !s.streaming {
		s.mu.Unlock()
		return
	}
	s.cancel()
	s.cancel = nil
	s.streaming = false
	s.epoch++
	pollDone := s.pollDone
	s.pollDone = nil
	if s.agg.TotalSwings() > 0 {
		s.history.Add(session.Summarize(s.meta.SessionID, s.now(), s.agg))
	}
	s.buf.Reset(time.Time{})
	s.det.Reset()
	swings := s.agg.TotalSwings()
	s.mu.Unlock()

	if pollDone != nil {
		<-pollDone
	}
	metrics.UpdateStreaming(false)
	metrics.UpdateSampleBufferLength(0)
	s.logger.Info(ctx, "session stopped", logger.Int("swings", swings))
}

// Streaming reports whether a session is active.
func (s *Service) Streaming() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.streaming
}

// Push ingests one sample and runs detection on it. A triggered swing is
// dispatched for classification.
func (s *Service) Push(ctx context.Context, sample model.MotionSample) (detector.Decision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.streaming {
		return detector.InsufficientData, ErrNotStreaming
	}

	if last, ok := s.buf.Latest(); ok && sample.T < last.T {
		// the source clock restarted; detection starts over on the new timeline
		s.buf.Reset(s.buf.Origin())
		s.det.Reset()
		metrics.RecordErrorByComponent("detector", "clock_backwards")
		s.logger.Info(ctx, "sample clock went backwards, detection restarted",
			logger.Float64("last_t", last.T),
			logger.Float64("t", sample.T),
		)
	}

	s.buf.Push(sample)
	metrics.UpdateSampleBufferLength(s.buf.Len())

	ev, dec := s.det.Evaluate(s.buf)
	metrics.RecordDetectorDecision(dec.String())
	if dec != detector.Triggered {
		return dec, nil
	}

	win := window.ExtractEvent(s.buf, ev)
	metrics.RecordSwingDetected(len(win))
	s.logger.Debug(ctx, "swing detected",
		logger.Float64("peak", ev.Peak),
		logger.Float64("t", ev.SampleT),
		logger.Int("window", len(win)),
	)
	if s.recorder != nil {
		s.recorder.Add(win)
	}

	req := s.meta.Request(win, s.rateHz)
	epoch := s.epoch
	submitted := s.dispatcher.Submit(context.WithoutCancel(ctx), PurposeClassify,
		func(ctx context.Context) (model.SwingResponse, error) {
			return s.classifier.Classify(ctx, req)
		},
		func(resp model.SwingResponse, err error) {
			s.applyClassification(epoch, resp, err)
		},
	)
	if !submitted {
		s.logger.Debug(ctx, "classification busy, swing skipped")
	}
	return dec, nil
}

// PushFunc adapts Push for sample sources, which do not care about the
// decision.
func (s *Service) PushFunc(ctx context.Context) func(model.MotionSample) {
	return func(sample model.MotionSample) {
		_, _ = s.Push(ctx, sample)
	}
}

func (s *Service) applyClassification(epoch uint64, resp model.SwingResponse, err error) {
	ctx := context.Background()

	s.mu.Lock()
	if epoch != s.epoch {
		s.mu.Unlock()
		metrics.RecordStaleResultDropped()
		return
	}
	if err != nil {
		s.lastError = err
		s.mu.Unlock()
		return
	}
	s.lastError = nil
	s.markSeen(ctx, resp)
	s.applyLocked(ctx, resp)
	s.mu.Unlock()

	s.publish(ctx, resp)
}

// markSeen stores the fingerprint of a classified result so a poll that
// returns the same result does not record the swing again. s.mu must be held.
func (s *Service) markSeen(ctx context.Context, resp model.SwingResponse) {
	fp, err := dedupe.Fingerprint(resp.Result)
	if err != nil {
		s.logger.Warn(ctx, "fingerprint failed", logger.Error(err))
		return
	}
	s.deduper.SeenAndRecord(ctx, dedupe.Key(s.meta.PlayerID, s.meta.SessionID), fp)
}

// applyLocked folds resp into stats and coaching. s.mu must be held.
func (s *Service) applyLocked(ctx context.Context, resp model.SwingResponse) {
	r := resp.Result
	s.lastResult = &resp
	s.agg.Record(r)
	s.gate.ObserveSwing()

	perf := s.agg.PerformanceScore()
	metrics.UpdateSession(s.agg.TotalSwings(), s.agg.OverallAccuracy(), perf.Score)

	text := r.Coaching()
	if text == "" {
		text = coaching.Evaluate(s.meta.TargetShot, r.ShotType, r.Confidence, r.SpeedMps, nil).Message
	}
	if !s.gate.Allow(text) {
		metrics.RecordCoachingOutcome("gated")
		return
	}
	outcome := s.throttle.Speak(ctx, text)
	metrics.RecordCoachingOutcome(outcome.String())
	if outcome == throttle.Emitted {
		s.gate.Spoken(text)
	}
	s.logger.Debug(ctx, "swing applied",
		logger.String("shot", r.ShotType),
		logger.Float64("confidence", r.Confidence),
		logger.String("coaching", outcome.String()),
	)
}

func (s *Service) publish(ctx context.Context, resp model.SwingResponse) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishSwing(ctx, resp); err != nil {
		s.logger.Warn(ctx, "publish swing failed", logger.Error(err))
	}
}

func (s *Service) reportError(p Purpose, err error) {
	s.logger.Warn(context.Background(), "classification failed",
		logger.String("purpose", string(p)),
		logger.String("kind", classifier.Kind(err)),
		logger.Error(err),
	)
}

// Coach speaks a free-form tip through the throttle, bypassing the swing
// gate. Used for insight tips requested by the user.
func (s *Service) Coach(ctx context.Context, text string) throttle.Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	outcome := s.throttle.Speak(ctx, text)
	metrics.RecordCoachingOutcome(outcome.String())
	return outcome
}

// SetTargetShot switches focused-practice mode. An empty shot turns it off.
func (s *Service) SetTargetShot(shot string) error {
	if shot != "" && !coaching.IsShot(shot) {
		return fmt.Errorf("%w: %q", ErrUnknownShot, shot)
	}
	s.mu.Lock()
	s.meta.TargetShot = shot
	s.mu.Unlock()
	return nil
}

// LastResult returns the most recent classification of this session.
func (s *Service) LastResult() (model.SwingResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastResult == nil {
		return model.SwingResponse{}, ErrNoResult
	}
	return *s.lastResult, nil
}

// LastError returns the most recent classification failure of this
// session, or nil after a success.
func (s *Service) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}

// Insights returns coaching insights for the current session.
func (s *Service) Insights() session.Insights {
	return s.agg.Insights()
}

// Challenges returns challenge progress for the current session.
func (s *Service) Challenges() []session.Challenge {
	return s.agg.Challenges(s.challenges)
}

// PlayerHistory lists the finished sessions of one player.
type PlayerHistory struct {
	PlayerID string            `json:"player_id"`
	Sessions []session.Summary `json:"sessions"`
}

// PlayerHistory returns the finished sessions that had at least one swing,
// oldest first.
func (s *Service) PlayerHistory() PlayerHistory {
	s.mu.Lock()
	player := s.meta.PlayerID
	s.mu.Unlock()

	sessions := s.history.Sessions()
	if sessions == nil {
		sessions = []session.Summary{}
	}
	return PlayerHistory{PlayerID: player, Sessions: sessions}
}

// Windows returns the recorded dataset windows.
func (s *Service) Windows() ([]model.SwingWindow, error) {
	if s.recorder == nil {
		return nil, ErrNoDatasetSink
	}
	return s.recorder.Windows(), nil
}

// Wait blocks until in-flight classifier calls complete.
func (s *Service) Wait() {
	s.dispatcher.Wait()
}

// Stats is a snapshot of the session.
type Stats struct {
	Streaming       bool                  `json:"streaming"`
	PlayerID        string                `json:"player_id"`
	SessionID       string                `json:"session_id,omitempty"`
	TargetShot      string                `json:"target_shot,omitempty"`
	ElapsedSeconds  float64               `json:"elapsed_seconds"`
	BufferedSamples int                   `json:"buffered_samples"`
	TotalSwings     int                   `json:"total_swings"`
	OverallAccuracy float64               `json:"overall_accuracy"`
	OverallAvgSpeed float64               `json:"overall_avg_speed_mps"`
	Performance     session.Performance   `json:"performance"`
	Consistency     float64               `json:"consistency"`
	Shots           []session.ShotSummary `json:"shots"`
	Coaching        throttle.State        `json:"coaching"`
	LastError       string                `json:"last_error,omitempty"`
}

// Stats returns a snapshot of the session.
func (s *Service) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Stats{
		Streaming:       s.streaming,
		PlayerID:        s.meta.PlayerID,
		SessionID:       s.meta.SessionID,
		TargetShot:      s.meta.TargetShot,
		BufferedSamples: s.buf.Len(),
		TotalSwings:     s.agg.TotalSwings(),
		OverallAccuracy: s.agg.OverallAccuracy(),
		OverallAvgSpeed: s.agg.OverallAvgSpeed(),
		Performance:     s.agg.PerformanceScore(),
		Consistency:     s.history.Consistency(),
		Shots:           s.agg.Shots(),
		Coaching:        s.throttle.State(),
	}
	if s.streaming {
		st.ElapsedSeconds = s.buf.Elapsed(s.now())
	}
	if s.lastError != nil {
		st.LastError = s.lastError.Error()
	}
	return st
}

// IsTransient reports whether err is a transport or server failure that the
// next swing may not hit.
func IsTransient(err error) bool {
	var te *classifier.TransportError
	var se *classifier.ServerError
	return errors.As(err, &te) || errors.As(err, &se)
}
