package api

import (
	"bytes"
	"errors"
	"net/http"
	"strings"

	"github.com/Gagan-341/NeuraSentinel/internal/adapters/dataset"
	service "github.com/Gagan-341/NeuraSentinel/internal/app"
	"github.com/Gagan-341/NeuraSentinel/internal/domain/model"
)

// WindowSource returns the recorded training windows.
type WindowSource interface {
	Windows() ([]model.SwingWindow, error)
}

// DatasetHandler exports recorded swings as a labelled CSV.
type DatasetHandler struct {
	windows WindowSource
	label   string
}

// NewDatasetHandler creates a dataset handler using label as the default
// shot label.
func NewDatasetHandler(windows WindowSource, label string) *DatasetHandler {
	return &DatasetHandler{windows: windows, label: label}
}

// HandleExport handles GET /dataset.csv?label=forehand.
func (h *DatasetHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	const op = "api.export_dataset"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	label := strings.TrimSpace(r.URL.Query().Get("label"))
	if label == "" {
		label = h.label
	}
	if label == "" {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("missing label")))
		return
	}

	windows, err := h.windows.Windows()
	if err != nil {
		if errors.Is(err, service.ErrNoDatasetSink) {
			writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrNotAvailable, err))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal", err)
		return
	}

	// buffer first so a write failure can still become a 500
	var buf bytes.Buffer
	if err := dataset.Export(&buf, windows, label); err != nil {
		writeError(w, http.StatusInternalServerError, "internal", err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+label+`_swings.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
