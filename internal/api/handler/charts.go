package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/newthinker/tickertalk/internal/api/response"
	"github.com/newthinker/tickertalk/internal/chart"
	"github.com/newthinker/tickertalk/internal/core"
	"github.com/newthinker/tickertalk/internal/storage/archive"
)

// ChartOpener reads rendered chart bytes by storage path.
type ChartOpener interface {
	Open(ctx context.Context, path string) ([]byte, error)
}

// ChartsHandler serves rendered chart images.
type ChartsHandler struct {
	charts ChartOpener
}

// NewChartsHandler creates a new charts handler.
func NewChartsHandler(charts ChartOpener) *ChartsHandler {
	return &ChartsHandler{charts: charts}
}

// Get streams one PNG from the scope's chart directory.
func (h *ChartsHandler) Get(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	p := chart.ScopeDir(vars["scope"]) + "/" + vars["file"]

	data, err := h.charts.Open(r.Context(), p)
	if errors.Is(err, archive.ErrNotFound) {
		response.Fail(w, core.WrapError(core.ErrChartNotFound, errors.New(p)))
		return
	}
	if err != nil {
		response.Fail(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
