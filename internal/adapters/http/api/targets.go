package api

import (
	"net/http"

	"github.com/okian/padmixer/internal/domain/types"
)

// TargetsProvider exposes the registry and mapping views.
type TargetsProvider interface {
	Targets() []types.TargetStatus
	Bindings() []types.Binding
}

// TargetsHandler serves the registry snapshot and the mapping table.
type TargetsHandler struct {
	provider TargetsProvider
}

// NewTargetsHandler creates a new targets handler.
func NewTargetsHandler(p TargetsProvider) *TargetsHandler {
	return &TargetsHandler{provider: p}
}

// HandleTargets handles GET /targets requests.
func (h *TargetsHandler) HandleTargets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", ErrMethodNotAllowed)
		return
	}
	targets := h.provider.Targets()
	if targets == nil {
		targets = []types.TargetStatus{}
	}
	writeJSON(w, http.StatusOK, targets)
}

// HandleBindings handles GET /bindings requests.
func (h *TargetsHandler) HandleBindings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", ErrMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, h.provider.Bindings())
}
