package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	service "github.com/Gagan-341/NeuraSentinel/internal/app"
	"github.com/Gagan-341/NeuraSentinel/internal/domain/detector"
	"github.com/Gagan-341/NeuraSentinel/internal/domain/model"
	"github.com/Gagan-341/NeuraSentinel/pkg/metrics"
)

// SampleSink ingests motion samples.
type SampleSink interface {
	Push(ctx context.Context, sample model.MotionSample) (detector.Decision, error)
}

// samplesRequest is the body of POST /samples.
type samplesRequest struct {
	Samples []model.MotionSample `json:"samples"`
}

type samplesResponse struct {
	Accepted int `json:"accepted"`
	Swings   int `json:"swings"`
}

// SamplesHandler accepts batches of samples from phones and test rigs.
type SamplesHandler struct {
	sink     SampleSink
	maxBatch int
}

// NewSamplesHandler creates a samples handler.
func NewSamplesHandler(sink SampleSink, maxBatch int) *SamplesHandler {
	return &SamplesHandler{sink: sink, maxBatch: maxBatch}
}

// HandlePostSamples handles POST /samples requests. Samples are pushed in
// order; the response counts accepted samples and triggered swings.
func (h *SamplesHandler) HandlePostSamples(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_samples"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req samplesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	switch {
	case len(req.Samples) == 0:
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("missing samples")))
		return
	case len(req.Samples) > h.maxBatch:
		err := fmt.Errorf("%d samples, limit %d", len(req.Samples), h.maxBatch)
		writeError(w, http.StatusRequestEntityTooLarge, "too_large", WrapKind(op, ErrTooLarge, err))
		return
	}

	var resp samplesResponse
	for _, s := range req.Samples {
		dec, err := h.sink.Push(r.Context(), s)
		if err != nil {
			if errors.Is(err, service.ErrNotStreaming) {
				writeError(w, http.StatusConflict, "not_streaming", WrapKind(op, ErrConflict, err))
				return
			}
			writeError(w, http.StatusInternalServerError, "internal", err)
			return
		}
		metrics.RecordSampleIngested("http")
		resp.Accepted++
		if dec == detector.Triggered {
			resp.Swings++
		}
	}
	writeJSON(w, http.StatusAccepted, resp)
}
