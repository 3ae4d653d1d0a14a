package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/replyhq/reply/internal/app"
	"github.com/replyhq/reply/internal/middleware"
	"github.com/replyhq/reply/internal/model"
	"github.com/replyhq/reply/internal/syncer"
)

// ThreadHandler handles the working thread endpoints.
type ThreadHandler struct {
	sync *syncer.Orchestrator
}

// NewThreadHandler creates a new thread handler.
func NewThreadHandler(sync *syncer.Orchestrator) *ThreadHandler {
	return &ThreadHandler{sync: sync}
}

func (h *ThreadHandler) state(r *http.Request) *app.State {
	ctx := r.Context()
	return h.sync.State(middleware.GetDeviceID(ctx), middleware.GetUserID(ctx) != "")
}

// AddMessage handles POST /api/v1/thread/messages
func (h *ThreadHandler) AddMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Sender model.Sender `json:"sender"`
		Text   string       `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := middleware.ValidateSender(req.Sender); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := middleware.ValidateMessageText(req.Text); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	msg := model.ChatMessage{
		Sender:    req.Sender,
		Text:      req.Text,
		Timestamp: time.Now().UnixMilli(),
	}
	h.state(r).AddMessage(msg)

	writeJSON(w, http.StatusCreated, msg)
}

// RemoveMessage handles DELETE /api/v1/thread/messages/{index}
func (h *ThreadHandler) RemoveMessage(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid message index")
		return
	}

	if err := h.state(r).RemoveMessage(index); err != nil {
		writeAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Clear handles DELETE /api/v1/thread
func (h *ThreadHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.state(r).ClearThread()
	w.WriteHeader(http.StatusNoContent)
}

// ReplyUsed handles POST /api/v1/thread/reply-used. The chosen suggestion
// becomes an outgoing message and status mode flips back to chat.
func (h *ThreadHandler) ReplyUsed(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := middleware.ValidateMessageText(req.Text); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	msg := h.state(r).ReplyUsed(req.Text)
	writeJSON(w, http.StatusCreated, msg)
}
