package service

import (
	"context"
	"time"

	"github.com/Gagan-341/NeuraSentinel/internal/domain/dedupe"
	"github.com/Gagan-341/NeuraSentinel/internal/domain/model"
	"github.com/Gagan-341/NeuraSentinel/pkg/logger"
	"github.com/Gagan-341/NeuraSentinel/pkg/metrics"
)

// pollLoop asks the classifier for the latest result every interval until
// ctx is cancelled.
func (s *Service) pollLoop(ctx context.Context, epoch uint64, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.poll(ctx, epoch)
		}
	}
}

// Poll submits one last-swing request for the current session. It returns
// false when not streaming or a previous poll is still in flight.
func (s *Service) Poll(ctx context.Context) bool {
	s.mu.Lock()
	epoch := s.epoch
	s.mu.Unlock()
	return s.poll(ctx, epoch)
}

func (s *Service) poll(ctx context.Context, epoch uint64) bool {
	s.mu.Lock()
	if epoch != s.epoch || !s.streaming {
		s.mu.Unlock()
		return false
	}
	player, sessionID := s.meta.PlayerID, s.meta.SessionID
	s.mu.Unlock()

	return s.dispatcher.Submit(context.WithoutCancel(ctx), PurposePoll,
		func(ctx context.Context) (model.SwingResponse, error) {
			return s.classifier.LastSwing(ctx, player, sessionID)
		},
		func(resp model.SwingResponse, err error) {
			s.applyPoll(epoch, resp, err)
		},
	)
}

// applyPoll always refreshes the displayed result, but only a result with an
// unseen fingerprint reaches stats and coaching.
func (s *Service) applyPoll(epoch uint64, resp model.SwingResponse, err error) {
	ctx := context.Background()
	if isNotFound(err) {
		return
	}

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

	fp, ferr := dedupe.Fingerprint(resp.Result)
	if ferr != nil {
		s.mu.Unlock()
		s.logger.Warn(ctx, "fingerprint failed", logger.Error(ferr))
		return
	}
	if s.deduper.SeenAndRecord(ctx, dedupe.Key(s.meta.PlayerID, s.meta.SessionID), fp) {
		s.lastResult = &resp
		s.mu.Unlock()
		metrics.RecordPollDuplicate()
		return
	}
	s.applyLocked(ctx, resp)
	s.mu.Unlock()

	s.publish(ctx, resp)
}
