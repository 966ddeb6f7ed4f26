package handlers

import (
	"encoding/json"
	"net/http"

	"qrscanner/internal/contextutil"
	"qrscanner/internal/prefs"
	"qrscanner/internal/service"
)

// SettingsHandler handles HTTP requests for preferences.
type SettingsHandler struct {
	settingsService service.SettingsService
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(settingsService service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

// Get handles GET /api/settings.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	p, err := h.settingsService.Get(ctx)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to read settings")
		return
	}
	writeJSON(ctx, w, http.StatusOK, p)
}

// Update handles PATCH /api/settings. Only the flags present in the body change.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var patch prefs.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	p, err := h.settingsService.Update(ctx, patch)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to update settings")
		return
	}
	writeJSON(ctx, w, http.StatusOK, p)
}
