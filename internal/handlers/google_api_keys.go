package handlers

import (
	"net/http"
	"time"

	"taxi-booking/internal/logger"
	"taxi-booking/internal/models"
)

// GoogleAPIKeyHandler CRUD ключей Google Maps; ключи наружу отдаются только замаскированными
type GoogleAPIKeyHandler struct {
	keys GoogleAPIKeyService
	log  *logger.Logger
}

// NewGoogleAPIKeyHandler создает обработчик ключей
func NewGoogleAPIKeyHandler(keys GoogleAPIKeyService, log *logger.Logger) *GoogleAPIKeyHandler {
	return &GoogleAPIKeyHandler{keys: keys, log: log}
}

type googleAPIKeyView struct {
	ID        int64     `json:"id"`
	APIKey    string    `json:"api_key"`
	Label     string    `json:"label"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func maskKey(k *models.GoogleAPIKey) googleAPIKeyView {
	return googleAPIKeyView{
		ID:        k.ID,
		APIKey:    k.Masked(),
		Label:     k.Label,
		Active:    k.Active,
		CreatedAt: k.CreatedAt,
		UpdatedAt: k.UpdatedAt,
	}
}

// List GET /api/v1/google-api-keys
func (h *GoogleAPIKeyHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	keys, err := h.keys.ListKeys(r.Context(), limit, offset)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to list google api keys")
		return
	}
	views := make([]googleAPIKeyView, 0, len(keys))
	for _, k := range keys {
		views = append(views, maskKey(k))
	}
	writeSuccess(w, http.StatusOK, "", views)
}

// Get GET /api/v1/google-api-keys/:id
func (h *GoogleAPIKeyHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeErrorResponse(w, http.StatusNotFound, "Google API key not found.")
		return
	}
	key, err := h.keys.GetKey(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to get google api key")
		return
	}
	writeSuccess(w, http.StatusOK, "", maskKey(key))
}

// Create POST /api/v1/google-api-keys
func (h *GoogleAPIKeyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.GoogleAPIKeyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorResponse(w, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}
	key, err := h.keys.CreateKey(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to create google api key")
		return
	}
	writeSuccess(w, http.StatusCreated, "Google API key created successfully.", maskKey(key))
}

// Update PUT /api/v1/google-api-keys/:id
func (h *GoogleAPIKeyHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeErrorResponse(w, http.StatusNotFound, "Google API key not found.")
		return
	}
	var req models.GoogleAPIKeyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorResponse(w, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}
	key, err := h.keys.UpdateKey(r.Context(), id, &req)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to update google api key")
		return
	}
	writeSuccess(w, http.StatusOK, "Google API key updated successfully.", maskKey(key))
}

// Delete DELETE /api/v1/google-api-keys/:id
func (h *GoogleAPIKeyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeErrorResponse(w, http.StatusNotFound, "Google API key not found.")
		return
	}
	if err := h.keys.DeleteKey(r.Context(), id); err != nil {
		writeServiceError(w, h.log, err, "Failed to delete google api key")
		return
	}
	writeSuccess(w, http.StatusOK, "Google API key deleted successfully.", nil)
}
