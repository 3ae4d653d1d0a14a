package handler

import (
	"encoding/json"
	"net/http"

	"github.com/replyhq/reply/internal/middleware"
	"github.com/replyhq/reply/internal/session"
	"github.com/replyhq/reply/pkg/logger"
)

// SessionHandler handles sign-in and sign-out for a device.
type SessionHandler struct {
	sessions *session.Manager
	logger   *logger.Logger
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(sessions *session.Manager, log *logger.Logger) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		logger:   log,
	}
}

// SignIn handles POST /api/v1/session. The token comes from the request
// body, falling back to the Authorization header. Sign-in triggers the
// full state reconciliation before the response is written.
func (h *SessionHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	deviceID := middleware.GetDeviceID(ctx)

	var req struct {
		Token string `json:"token"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	if req.Token == "" {
		req.Token = middleware.GetBearerToken(ctx)
	}
	if req.Token == "" {
		writeError(w, http.StatusBadRequest, "missing token")
		return
	}

	sess, err := h.sessions.SignIn(ctx, deviceID, req.Token)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"userId": sess.UserID,
	})
}

// SignOut handles DELETE /api/v1/session.
func (h *SessionHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	h.sessions.SignOut(r.Context(), middleware.GetDeviceID(r.Context()))
	w.WriteHeader(http.StatusNoContent)
}
