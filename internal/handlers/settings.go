package handlers

import (
	"net/http"

	"taxi-booking/internal/logger"
	"taxi-booking/internal/models"
)

// SettingsHandler общие настройки надбавок
type SettingsHandler struct {
	settings SettingsService
	log      *logger.Logger
}

// NewSettingsHandler создает обработчик настроек
func NewSettingsHandler(settings SettingsService, log *logger.Logger) *SettingsHandler {
	return &SettingsHandler{settings: settings, log: log}
}

// Get GET /api/v1/common-settings
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.GetSettings(r.Context())
	if err != nil {
		writeServiceError(w, h.log, err, "Common settings are not available")
		return
	}
	writeSuccess(w, http.StatusOK, "", settings)
}

// Upsert PUT /api/v1/common-settings; единственная строка создаётся один раз и дальше обновляется
func (h *SettingsHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	var req models.CommonSettings
	if err := decodeJSON(r, &req); err != nil {
		writeErrorResponse(w, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}
	settings, err := h.settings.UpsertSettings(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to save common settings")
		return
	}
	writeSuccess(w, http.StatusOK, "Common settings saved successfully.", settings)
}
