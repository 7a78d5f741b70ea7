package classifier

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/Gagan-341/NeuraSentinel/internal/domain/coaching"
	"github.com/Gagan-341/NeuraSentinel/internal/domain/model"
)

// Local classifier defaults.
const (
	defaultMinLatency = 80 * time.Millisecond
	defaultMaxLatency = 150 * time.Millisecond
	defaultRandomSeed = 42

	// Returned when a window carries no motion.
	fallbackShot       = coaching.Forehand
	fallbackConfidence = 0.75
)

// Heuristic thresholds, m/s^2 and deg/s.
const (
	smashSpeed    = 20.0
	softSpeed     = 8.0
	flickRotation = 250.0
	chopDownward  = 4.0
	serveUpward   = 6.0
)

// LocalOption configures a Local classifier.
type LocalOption func(*Local)

// WithLatencyRange sets the simulated service latency.
func WithLatencyRange(minLatency, maxLatency time.Duration) LocalOption {
	return func(l *Local) {
		if minLatency >= 0 && maxLatency > minLatency {
			l.minLatency = minLatency
			l.maxLatency = maxLatency
		}
	}
}

// WithSeed makes the latency sequence reproducible.
func WithSeed(seed int64) LocalOption {
	return func(l *Local) {
		l.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // simulated latency only
	}
}

// Local is an in-process Classifier that labels windows with a threshold
// heuristic. It stands in for the remote service during offline practice.
type Local struct {
	minLatency time.Duration
	maxLatency time.Duration

	mu   sync.Mutex
	rng  *rand.Rand
	last map[string]model.SwingResponse
}

// NewLocal creates a local classifier.
func NewLocal(opts ...LocalOption) *Local {
	l := &Local{
		minLatency: defaultMinLatency,
		maxLatency: defaultMaxLatency,
		rng:        rand.New(rand.NewSource(defaultRandomSeed)), //nolint:gosec // deterministic for tests
		last:       make(map[string]model.SwingResponse),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Classify labels req after a simulated delay and records the result.
func (l *Local) Classify(ctx context.Context, req model.SwingRequest) (model.SwingResponse, error) {
	if err := l.wait(ctx); err != nil {
		return model.SwingResponse{}, &TransportError{Op: "classify", Err: err}
	}

	window := model.SwingWindow(req.Samples)
	intended := ""
	if req.TargetShot != nil {
		intended = *req.TargetShot
	}

	var result model.ClassificationResult
	features, ok := coaching.ExtractFeatures(window)
	if ok {
		shot, confidence := Label(window, features)
		fb := coaching.Evaluate(intended, shot, confidence, features.Speed, &features)
		result = model.ClassificationResult{
			ShotType:        shot,
			Confidence:      confidence,
			SpeedMps:        features.Speed,
			AccuracyScore:   confidence,
			TechniqueScore:  model.IntPtr(fb.TechniqueScore),
			CoachingMessage: model.StringPtr(fb.Message),
		}
	} else {
		fb := coaching.Evaluate(intended, fallbackShot, fallbackConfidence, 0, nil)
		result = model.ClassificationResult{
			ShotType:        fallbackShot,
			Confidence:      fallbackConfidence,
			AccuracyScore:   fallbackConfidence,
			TechniqueScore:  model.IntPtr(fb.TechniqueScore),
			CoachingMessage: model.StringPtr(fb.Message),
		}
	}

	resp := model.SwingResponse{
		PlayerID:  req.PlayerID,
		SessionID: req.SessionID,
		Result:    result,
	}
	if req.Source != "" {
		resp.Source = model.StringPtr(req.Source)
	}

	sid := ""
	if req.SessionID != nil {
		sid = *req.SessionID
	}
	l.mu.Lock()
	l.last[lastKey(req.PlayerID, sid)] = resp
	l.mu.Unlock()

	return resp, nil
}

// LastSwing returns the last result classified for playerID and sessionID.
func (l *Local) LastSwing(ctx context.Context, playerID, sessionID string) (model.SwingResponse, error) {
	if err := ctx.Err(); err != nil {
		return model.SwingResponse{}, &TransportError{Op: "last-swing", Err: err}
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	resp, ok := l.last[lastKey(playerID, sessionID)]
	if !ok {
		return model.SwingResponse{}, ErrNotFound
	}
	return resp, nil
}

func (l *Local) wait(ctx context.Context) error {
	l.mu.Lock()
	latency := l.minLatency
	if spread := int64(l.maxLatency - l.minLatency); spread > 0 {
		latency += time.Duration(l.rng.Int63n(spread))
	}
	l.mu.Unlock()

	timer := time.NewTimer(latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("context cancelled: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}

func lastKey(playerID, sessionID string) string {
	return playerID + "|" + sessionID
}

// Label picks a shot type for w from its peak gyro and acceleration profile.
// The confidence grows with how far the deciding measure clears its threshold.
func Label(w model.SwingWindow, f coaching.Features) (string, float64) {
	var peakGX, peakGY, peakGZ float64
	for _, s := range w {
		peakGX = math.Max(peakGX, math.Abs(s.GX))
		peakGY = math.Max(peakGY, math.Abs(s.GY))
		peakGZ = math.Max(peakGZ, math.Abs(s.GZ))
	}
	var meanGZ float64
	for _, s := range w {
		meanGZ += s.GZ
	}
	meanGZ /= float64(len(w))

	switch {
	case f.Speed >= smashSpeed && f.DownwardPower > f.UpwardPower:
		return coaching.Smash, margin(f.Speed, smashSpeed)
	case f.UpwardPower >= serveUpward && f.Speed < smashSpeed && peakGY > peakGZ:
		return coaching.Serve, margin(f.UpwardPower, serveUpward)
	case f.DownwardPower >= chopDownward && f.Speed < smashSpeed:
		return coaching.Chop, margin(f.DownwardPower, chopDownward)
	case peakGZ >= flickRotation && f.Speed < smashSpeed:
		return coaching.Flick, margin(peakGZ, flickRotation)
	case f.Speed < softSpeed && peakGX >= peakGZ:
		return coaching.Block, margin(softSpeed, f.Speed+1)
	case f.Speed < softSpeed:
		return coaching.Push, margin(softSpeed, f.Speed+1)
	case meanGZ >= 0:
		return coaching.Forehand, margin(f.Speed, softSpeed)
	default:
		return coaching.Backhand, margin(f.Speed, softSpeed)
	}
}

// margin maps value/threshold onto [0.55, 0.95].
func margin(value, threshold float64) float64 {
	if threshold <= 0 {
		return 0.55
	}
	ratio := value/threshold - 1
	c := 0.55 + 0.4*math.Tanh(math.Max(ratio, 0))
	return math.Round(c*100) / 100
}
