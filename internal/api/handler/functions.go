package handler

import (
	"net/http"

	"github.com/newthinker/tickertalk/internal/api/response"
	"github.com/newthinker/tickertalk/internal/core"
)

// Catalogue exposes the function specifications advertised to the model.
type Catalogue interface {
	Specs() []core.FunctionSpec
}

// FunctionsHandler serves the function catalogue.
type FunctionsHandler struct {
	catalogue Catalogue
}

// NewFunctionsHandler creates a new functions handler.
func NewFunctionsHandler(catalogue Catalogue) *FunctionsHandler {
	return &FunctionsHandler{catalogue: catalogue}
}

// List returns every registered function in registration order.
func (h *FunctionsHandler) List(w http.ResponseWriter, r *http.Request) {
	specs := h.catalogue.Specs()
	response.JSON(w, http.StatusOK, map[string]any{
		"functions": specs,
		"count":     len(specs),
	})
}
