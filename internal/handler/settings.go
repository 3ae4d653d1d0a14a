package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/replyhq/reply/internal/engine"
	"github.com/replyhq/reply/internal/middleware"
	"github.com/replyhq/reply/internal/model"
	"github.com/replyhq/reply/internal/syncer"
	"github.com/replyhq/reply/pkg/logger"
)

// SettingsHandler handles persona configuration endpoints.
type SettingsHandler struct {
	sync   *syncer.Orchestrator
	store  syncer.Store
	engine *engine.Engine
	logger *logger.Logger
}

// NewSettingsHandler creates a new settings handler.
func NewSettingsHandler(sync *syncer.Orchestrator, store syncer.Store, eng *engine.Engine, log *logger.Logger) *SettingsHandler {
	return &SettingsHandler{
		sync:   sync,
		store:  store,
		engine: eng,
		logger: log,
	}
}

// Get handles GET /api/v1/settings
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	st := h.sync.State(middleware.GetDeviceID(ctx), middleware.GetUserID(ctx) != "")
	writeJSON(w, http.StatusOK, st.Settings())
}

// Update handles PUT /api/v1/settings. Last write wins; no merge.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	deviceID := middleware.GetDeviceID(ctx)
	userID := middleware.GetUserID(ctx)

	var settings model.UserSettings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := middleware.ValidateSettings(settings); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	st := h.sync.State(deviceID, userID != "")
	st.UpdateSettings(settings)
	h.persist(ctx, userID, settings)

	writeJSON(w, http.StatusOK, settings)
}

// Finalize handles POST /api/v1/settings/finalize. Setup is marked
// complete and the view moves to the main app.
func (h *SettingsHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	deviceID := middleware.GetDeviceID(ctx)
	userID := middleware.GetUserID(ctx)

	st := h.sync.State(deviceID, userID != "")
	settings := st.FinalizeProfile()
	h.persist(ctx, userID, settings)

	writeJSON(w, http.StatusOK, settings)
}

// Refine handles POST /api/v1/settings/refine. The raw free-text
// description is distilled into a strategic situation and goal, which are
// applied to the current settings.
func (h *SettingsHandler) Refine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	deviceID := middleware.GetDeviceID(ctx)
	userID := middleware.GetUserID(ctx)

	var req struct {
		Input string `json:"input"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Input == "" {
		writeError(w, http.StatusBadRequest, "input cannot be empty")
		return
	}

	situation, goal, err := h.engine.RefineSituation(ctx, req.Input)
	if err != nil {
		writeAppError(w, err)
		return
	}

	st := h.sync.State(deviceID, userID != "")
	settings := st.Settings()
	settings.Situation = situation
	settings.Goal = goal
	st.UpdateSettings(settings)
	h.persist(ctx, userID, settings)

	writeJSON(w, http.StatusOK, map[string]string{
		"situation": situation,
		"goal":      goal,
	})
}

// Catalog handles GET /api/v1/catalog. The option lists are static.
func (h *SettingsHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"vibes":         model.VibeOptions,
		"goals":         model.GoalTemplates,
		"agents":        model.AgentOptions,
		"genders":       model.Genders,
		"relationships": model.Relationships,
	})
}

// persist mirrors a settings change to the backend when a session is
// attached. Persistence failures are logged, not surfaced.
func (h *SettingsHandler) persist(ctx context.Context, userID string, settings model.UserSettings) {
	if userID == "" {
		return
	}
	if err := h.store.SaveProfile(ctx, userID, settings); err != nil {
		h.logger.Error("failed to persist profile",
			zap.String("user_id", userID),
			zap.Error(err),
		)
	}
}
