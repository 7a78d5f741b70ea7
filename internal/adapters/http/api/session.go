package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	service "github.com/Gagan-341/NeuraSentinel/internal/app"
)

// SessionControl starts and stops the stream and switches practice mode.
type SessionControl interface {
	Start(ctx context.Context) (string, error)
	Stop(ctx context.Context)
	SetTargetShot(shot string) error
	Stats() service.Stats
}

type startResponse struct {
	SessionID string `json:"session_id"`
}

type targetRequest struct {
	TargetShot string `json:"target_shot"`
}

// SessionHandler handles the session lifecycle routes.
type SessionHandler struct {
	ctl SessionControl
}

// NewSessionHandler creates a session handler.
func NewSessionHandler(ctl SessionControl) *SessionHandler {
	return &SessionHandler{ctl: ctl}
}

// HandleStart handles POST /session/start. Starting twice returns the
// running session.
func (h *SessionHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	id, err := h.ctl.Start(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", err)
		return
	}
	writeJSON(w, http.StatusOK, startResponse{SessionID: id})
}

// HandleStop handles POST /session/stop and returns the final snapshot.
func (h *SessionHandler) HandleStop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	h.ctl.Stop(r.Context())
	writeJSON(w, http.StatusOK, h.ctl.Stats())
}

// HandleTarget handles POST /session/target. An empty shot leaves
// focused-practice mode.
func (h *SessionHandler) HandleTarget(w http.ResponseWriter, r *http.Request) {
	const op = "api.set_target"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req targetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	shot := strings.TrimSpace(req.TargetShot)
	if err := h.ctl.SetTargetShot(shot); err != nil {
		if errors.Is(err, service.ErrUnknownShot) {
			writeError(w, http.StatusBadRequest, "unknown_shot", WrapKind(op, ErrBadRequest, err))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal", err)
		return
	}
	writeJSON(w, http.StatusOK, targetRequest{TargetShot: shot})
}
