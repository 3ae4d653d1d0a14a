package handler

import (
	"net/http"

	"github.com/replyhq/reply/internal/middleware"
	"github.com/replyhq/reply/internal/syncer"
)

// StateHandler exposes the per-device application snapshot.
type StateHandler struct {
	sync *syncer.Orchestrator
}

// NewStateHandler creates a new state handler.
func NewStateHandler(sync *syncer.Orchestrator) *StateHandler {
	return &StateHandler{sync: sync}
}

// Get handles GET /api/v1/state
func (h *StateHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	st := h.sync.State(middleware.GetDeviceID(ctx), middleware.GetUserID(ctx) != "")
	writeJSON(w, http.StatusOK, st.Snapshot())
}
