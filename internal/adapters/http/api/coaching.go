package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	service "github.com/Gagan-341/NeuraSentinel/internal/app"
	"github.com/Gagan-341/NeuraSentinel/internal/domain/model"
	"github.com/Gagan-341/NeuraSentinel/internal/domain/session"
	"github.com/Gagan-341/NeuraSentinel/internal/domain/throttle"
)

const noSwingsDetail = "No swings yet for this session."

// CoachingReader exposes classification results and coaching state.
type CoachingReader interface {
	LastResult() (model.SwingResponse, error)
	Insights() session.Insights
	Challenges() []session.Challenge
	PlayerHistory() service.PlayerHistory
	Coach(ctx context.Context, text string) throttle.Outcome
}

type coachRequest struct {
	Text string `json:"text"`
}

type coachResponse struct {
	Outcome string `json:"outcome"`
}

type challengesResponse struct {
	Challenges []session.Challenge `json:"challenges"`
}

// CoachingHandler serves results, insights and manual coaching.
type CoachingHandler struct {
	reader CoachingReader
}

// NewCoachingHandler creates a coaching handler.
func NewCoachingHandler(reader CoachingReader) *CoachingHandler {
	return &CoachingHandler{reader: reader}
}

// HandleLastResult handles GET /last-result.
func (h *CoachingHandler) HandleLastResult(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	resp, err := h.reader.LastResult()
	if err != nil {
		if errors.Is(err, service.ErrNoResult) {
			writeError(w, http.StatusNotFound, "not_found", errors.New(noSwingsDetail))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleInsights handles GET /insights.
func (h *CoachingHandler) HandleInsights(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.reader.Insights())
}

// HandleChallenges handles GET /challenges.
func (h *CoachingHandler) HandleChallenges(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, challengesResponse{Challenges: h.reader.Challenges()})
}

// HandlePlayerHistory handles GET /player-history. A player_id other than
// the service's player has no sessions.
func (h *CoachingHandler) HandlePlayerHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	hist := h.reader.PlayerHistory()
	if id := strings.TrimSpace(r.URL.Query().Get("player_id")); id != "" && id != hist.PlayerID {
		hist = service.PlayerHistory{PlayerID: id, Sessions: []session.Summary{}}
	}
	writeJSON(w, http.StatusOK, hist)
}

// HandleCoach handles POST /coaching. The text goes through the coaching
// throttle like any other message and the outcome is reported back.
func (h *CoachingHandler) HandleCoach(w http.ResponseWriter, r *http.Request) {
	const op = "api.coach"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req coachRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("missing text")))
		return
	}
	writeJSON(w, http.StatusOK, coachResponse{Outcome: h.reader.Coach(r.Context(), text).String()})
}
