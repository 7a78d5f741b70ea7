// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	service "github.com/Gagan-341/NeuraSentinel/internal/app"
	"github.com/Gagan-341/NeuraSentinel/internal/domain/detector"
	"github.com/Gagan-341/NeuraSentinel/internal/domain/model"
	"github.com/Gagan-341/NeuraSentinel/internal/domain/session"
	"github.com/Gagan-341/NeuraSentinel/internal/domain/throttle"
)

const defaultMaxBatch = 1000

// Dependencies required by HTTP handlers. *service.Service satisfies it.
type Dependencies interface {
	Start(ctx context.Context) (string, error)
	Stop(ctx context.Context)
	Push(ctx context.Context, sample model.MotionSample) (detector.Decision, error)
	SetTargetShot(shot string) error
	Coach(ctx context.Context, text string) throttle.Outcome

	Stats() service.Stats
	LastResult() (model.SwingResponse, error)
	Insights() session.Insights
	Challenges() []session.Challenge
	PlayerHistory() service.PlayerHistory
	Windows() ([]model.SwingWindow, error)
}

// Option configures the Server.
type Option func(*Server)

// WithFeedback mounts the live feedback socket handler at /feedback/ws.
func WithFeedback(h http.Handler) Option {
	return func(s *Server) {
		s.feedback = h
	}
}

// WithMaxBatch bounds how many samples POST /samples accepts at once.
func WithMaxBatch(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.samplesHandler.maxBatch = n
		}
	}
}

// WithDatasetLabel sets the label used by GET /dataset.csv when the request
// does not name one.
func WithDatasetLabel(label string) Option {
	return func(s *Server) {
		s.datasetHandler.label = label
	}
}

// Server wires HTTP routes for the session API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	samplesHandler  *SamplesHandler
	sessionHandler  *SessionHandler
	coachingHandler *CoachingHandler
	datasetHandler  *DatasetHandler
	feedback        http.Handler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(deps),
		samplesHandler:  NewSamplesHandler(deps, defaultMaxBatch),
		sessionHandler:  NewSessionHandler(deps),
		coachingHandler: NewCoachingHandler(deps),
		datasetHandler:  NewDatasetHandler(deps, ""),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/samples", MetricsMiddleware(s.samplesHandler.HandlePostSamples, "samples"))
	mux.HandleFunc("/session/start", MetricsMiddleware(s.sessionHandler.HandleStart, "session_start"))
	mux.HandleFunc("/session/stop", MetricsMiddleware(s.sessionHandler.HandleStop, "session_stop"))
	mux.HandleFunc("/session/target", MetricsMiddleware(s.sessionHandler.HandleTarget, "session_target"))
	mux.HandleFunc("/last-result", MetricsMiddleware(s.coachingHandler.HandleLastResult, "last_result"))
	mux.HandleFunc("/insights", MetricsMiddleware(s.coachingHandler.HandleInsights, "insights"))
	mux.HandleFunc("/challenges", MetricsMiddleware(s.coachingHandler.HandleChallenges, "challenges"))
	mux.HandleFunc("/player-history", MetricsMiddleware(s.coachingHandler.HandlePlayerHistory, "player_history"))
	mux.HandleFunc("/coaching", MetricsMiddleware(s.coachingHandler.HandleCoach, "coaching"))
	mux.HandleFunc("/dataset.csv", MetricsMiddleware(s.datasetHandler.HandleExport, "dataset"))
	if s.feedback != nil {
		// no middleware: the wrapped writer would hide http.Hijacker
		mux.Handle("/feedback/ws", s.feedback)
	}
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	const maxBody = 4 << 20
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(v)
}
