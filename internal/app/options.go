package service

import (
	"context"
	"time"

	"github.com/Gagan-341/NeuraSentinel/internal/adapters/dataset"
	"github.com/Gagan-341/NeuraSentinel/internal/domain/detector"
	"github.com/Gagan-341/NeuraSentinel/internal/domain/model"
	"github.com/Gagan-341/NeuraSentinel/internal/domain/session"
	"github.com/Gagan-341/NeuraSentinel/pkg/logger"
)

// Publisher receives every applied classification, e.g. a live UI feed.
type Publisher interface {
	PublishSwing(ctx context.Context, resp model.SwingResponse) error
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithPlayer sets the player id sent with every request.
func WithPlayer(id string) Option {
	return func(s *Service) {
		if id != "" {
			s.meta.PlayerID = id
		}
	}
}

// WithSourceName labels requests with the sample source.
func WithSourceName(name string) Option {
	return func(s *Service) {
		if name != "" {
			s.meta.Source = name
		}
	}
}

// WithTargetShot starts in focused-practice mode for shot.
func WithTargetShot(shot string) Option {
	return func(s *Service) {
		s.meta.TargetShot = shot
	}
}

// WithSamplingRate sets the nominal sensor rate reported to the classifier.
func WithSamplingRate(hz float64) Option {
	return func(s *Service) {
		if hz > 0 {
			s.rateHz = hz
		}
	}
}

// WithBufferCapacity bounds the sample buffer.
func WithBufferCapacity(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.bufferCapacity = n
		}
	}
}

// WithDetectorOptions configures the swing detector.
func WithDetectorOptions(opts ...detector.Option) Option {
	return func(s *Service) {
		s.detectorOpts = append(s.detectorOpts, opts...)
	}
}

// WithPolling enables last-swing polling at interval.
func WithPolling(interval time.Duration) Option {
	return func(s *Service) {
		if interval > 0 {
			s.pollInterval = interval
		}
	}
}

// WithDedupeSize bounds the poll fingerprint cache.
func WithDedupeSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.dedupeSize = n
		}
	}
}

// WithCoachingCooldown sets the throttle cooldown.
func WithCoachingCooldown(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.coachingCooldown = d
		}
	}
}

// WithCoachingMinSwings sets how many swings pass before a tip repeats.
func WithCoachingMinSwings(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.minSwings = n
		}
	}
}

// WithRecorder keeps a resampled copy of every detected window.
func WithRecorder(r *dataset.Recorder) Option {
	return func(s *Service) {
		s.recorder = r
	}
}

// WithPublisher forwards applied results to p.
func WithPublisher(p Publisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

// WithHistoryLimit bounds how many finished sessions feed the consistency
// score.
func WithHistoryLimit(n int) Option {
	return func(s *Service) {
		s.historyLimit = n
	}
}

// WithChallenges replaces the default challenge set.
func WithChallenges(defs []session.Challenge) Option {
	return func(s *Service) {
		if len(defs) > 0 {
			s.challenges = defs
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}
