package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/replyhq/reply/internal/events"
	"github.com/replyhq/reply/internal/middleware"
	"github.com/replyhq/reply/internal/model"
	"github.com/replyhq/reply/internal/syncer"
	"github.com/replyhq/reply/pkg/logger"
)

// HistoryHandler handles the conversation history endpoints.
type HistoryHandler struct {
	sync   *syncer.Orchestrator
	store  syncer.Store
	bus    events.Publisher
	logger *logger.Logger
}

// NewHistoryHandler creates a new history handler.
func NewHistoryHandler(sync *syncer.Orchestrator, store syncer.Store, bus events.Publisher, log *logger.Logger) *HistoryHandler {
	return &HistoryHandler{
		sync:   sync,
		store:  store,
		bus:    bus,
		logger: log,
	}
}

// List handles GET /api/v1/history
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	st := h.sync.State(middleware.GetDeviceID(ctx), middleware.GetUserID(ctx) != "")
	writeJSON(w, http.StatusOK, st.History())
}

// Select handles POST /api/v1/history/{id}/select. The entry's snapshot
// becomes the working state.
func (h *HistoryHandler) Select(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	if err := middleware.ValidateConversationID(id); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	st := h.sync.State(middleware.GetDeviceID(ctx), middleware.GetUserID(ctx) != "")
	if err := st.SelectConversation(id); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st.Snapshot())
}

// Delete handles DELETE /api/v1/history/{id}
func (h *HistoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	deviceID := middleware.GetDeviceID(ctx)
	userID := middleware.GetUserID(ctx)
	id := chi.URLParam(r, "id")
	if err := middleware.ValidateConversationID(id); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	st := h.sync.State(deviceID, userID != "")
	if !st.DeleteConversation(id) {
		writeError(w, http.StatusNotFound, "conversation not found")
		return
	}

	if userID != "" {
		if err := h.store.DeleteConversation(ctx, userID, id); err != nil {
			h.logger.Error("failed to delete remote conversation",
				zap.String("conversation_id", id),
				zap.Error(err),
			)
		}
	}
	h.bus.PublishConversation(ctx, model.ConversationEvent{
		Type:           model.ConversationDeleted,
		ConversationID: id,
		DeviceID:       deviceID,
		UserID:         userID,
		CreatedAt:      time.Now(),
	})

	w.WriteHeader(http.StatusNoContent)
}
