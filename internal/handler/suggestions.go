package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/replyhq/reply/internal/engine"
	"github.com/replyhq/reply/internal/events"
	"github.com/replyhq/reply/internal/middleware"
	"github.com/replyhq/reply/internal/model"
	"github.com/replyhq/reply/internal/syncer"
	"github.com/replyhq/reply/pkg/logger"
)

// SuggestionHandler handles reply generation and the social review.
type SuggestionHandler struct {
	sync   *syncer.Orchestrator
	store  syncer.Store
	engine *engine.Engine
	bus    events.Publisher
	logger *logger.Logger
}

// NewSuggestionHandler creates a new suggestion handler.
func NewSuggestionHandler(sync *syncer.Orchestrator, store syncer.Store, eng *engine.Engine, bus events.Publisher, log *logger.Logger) *SuggestionHandler {
	return &SuggestionHandler{
		sync:   sync,
		store:  store,
		engine: eng,
		bus:    bus,
		logger: log,
	}
}

// Generate handles POST /api/v1/suggestions. Every completion enters
// history; the displayed suggestion set only moves for the most recently
// issued request, so a slow response cannot clobber a newer one.
func (h *SuggestionHandler) Generate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	deviceID := middleware.GetDeviceID(ctx)
	userID := middleware.GetUserID(ctx)

	var req struct {
		Mode                 model.ContextMode `json:"mode,omitempty"`
		InitialStatusContext string            `json:"initialStatusContext,omitempty"`
		AudioBase64          string            `json:"audioBase64,omitempty"`
		ImageBase64          string            `json:"imageBase64,omitempty"`
		VideoBase64          string            `json:"videoBase64,omitempty"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	st := h.sync.State(deviceID, userID != "")
	if req.Mode == model.ModeChat || req.Mode == model.ModeStatus {
		st.SetMode(req.Mode)
	}

	gen := st.BeginGeneration()
	mctx := st.Context()
	mctx.InitialStatusContext = req.InitialStatusContext
	mctx.AudioBase64 = req.AudioBase64
	mctx.ImageBase64 = req.ImageBase64
	mctx.VideoBase64 = req.VideoBase64

	suggestions, err := h.engine.GenerateReplies(ctx, gen.Settings, mctx)
	if err != nil {
		writeAppError(w, err)
		return
	}

	conv := model.Conversation{
		ID:          uuid.NewString(),
		Timestamp:   time.Now().UnixMilli(),
		Settings:    gen.Settings,
		Context:     mctx,
		Suggestions: suggestions,
		Summary:     summarize(gen.Settings, mctx),
	}

	latest := st.ApplyGeneration(gen, conv)
	h.persist(ctx, deviceID, userID, gen.ReplaceID, conv)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"conversation": conv,
		"latest":       latest,
	})
}

// Review handles POST /api/v1/review. The review attaches to the active
// conversation when one exists.
func (h *SuggestionHandler) Review(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	deviceID := middleware.GetDeviceID(ctx)
	userID := middleware.GetUserID(ctx)

	st := h.sync.State(deviceID, userID != "")

	review, err := h.engine.GenerateReview(ctx, st.Settings(), st.Context())
	if err != nil {
		writeAppError(w, err)
		return
	}

	updated := st.AttachReview(review)
	if updated != nil {
		if userID != "" {
			if err := h.store.SaveConversation(ctx, userID, *updated); err != nil {
				h.logger.Error("failed to persist reviewed conversation",
					zap.String("conversation_id", updated.ID),
					zap.Error(err),
				)
			}
		}
		h.bus.PublishConversation(ctx, model.ConversationEvent{
			Type:           model.ConversationReviewed,
			ConversationID: updated.ID,
			DeviceID:       deviceID,
			UserID:         userID,
			CreatedAt:      time.Now(),
		})
	}

	writeJSON(w, http.StatusOK, review)
}

// persist mirrors a completed generation to the backend when a session is
// attached, removing the history entry it replaced. Failures are logged,
// not surfaced.
func (h *SuggestionHandler) persist(ctx context.Context, deviceID, userID, replacedID string, conv model.Conversation) {
	if userID != "" {
		if replacedID != "" && replacedID != conv.ID {
			if err := h.store.DeleteConversation(ctx, userID, replacedID); err != nil {
				h.logger.Error("failed to remove replaced conversation",
					zap.String("conversation_id", replacedID),
					zap.Error(err),
				)
			}
		}
		if err := h.store.SaveConversation(ctx, userID, conv); err != nil {
			h.logger.Error("failed to persist conversation",
				zap.String("conversation_id", conv.ID),
				zap.Error(err),
			)
		}
	}

	h.bus.PublishConversation(ctx, model.ConversationEvent{
		Type:           model.ConversationCreated,
		ConversationID: conv.ID,
		DeviceID:       deviceID,
		UserID:         userID,
		CreatedAt:      time.Now(),
	})
}

// summarize derives a short history label from the latest incoming
// message, falling back to the situation.
func summarize(settings model.UserSettings, mctx model.MessageContext) string {
	var text string
	if last, ok := mctx.LastFromThem(); ok {
		text = last.Text
	}
	if text == "" {
		text = settings.Situation
	}
	if text == "" {
		text = "New conversation"
	}
	const max = 80
	if len(text) > max {
		return text[:max] + "..."
	}
	return text
}
