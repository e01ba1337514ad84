package handlers

import (
	"net/http"

	"taxi-booking/internal/logger"
	"taxi-booking/internal/models"
)

// SMSNumberHandler CRUD номеров для SMS уведомлений
type SMSNumberHandler struct {
	numbers SMSNumberService
	log     *logger.Logger
}

// NewSMSNumberHandler создает обработчик номеров
func NewSMSNumberHandler(numbers SMSNumberService, log *logger.Logger) *SMSNumberHandler {
	return &SMSNumberHandler{numbers: numbers, log: log}
}

// List GET /api/v1/sms-numbers
func (h *SMSNumberHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	numbers, err := h.numbers.ListSMSNumbers(r.Context(), limit, offset)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to list sms numbers")
		return
	}
	writeSuccess(w, http.StatusOK, "", numbers)
}

// Get GET /api/v1/sms-numbers/:id
func (h *SMSNumberHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeErrorResponse(w, http.StatusNotFound, "SMS number not found.")
		return
	}
	number, err := h.numbers.GetSMSNumber(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to get sms number")
		return
	}
	writeSuccess(w, http.StatusOK, "", number)
}

// Create POST /api/v1/sms-numbers
func (h *SMSNumberHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.SMSNumberRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorResponse(w, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}
	number, err := h.numbers.CreateSMSNumber(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to create sms number")
		return
	}
	writeSuccess(w, http.StatusCreated, "SMS number created successfully.", number)
}

// Update PUT /api/v1/sms-numbers/:id
func (h *SMSNumberHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeErrorResponse(w, http.StatusNotFound, "SMS number not found.")
		return
	}
	var req models.SMSNumberRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorResponse(w, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}
	number, err := h.numbers.UpdateSMSNumber(r.Context(), id, &req)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to update sms number")
		return
	}
	writeSuccess(w, http.StatusOK, "SMS number updated successfully.", number)
}

// Delete DELETE /api/v1/sms-numbers/:id
func (h *SMSNumberHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeErrorResponse(w, http.StatusNotFound, "SMS number not found.")
		return
	}
	if err := h.numbers.DeleteSMSNumber(r.Context(), id); err != nil {
		writeServiceError(w, h.log, err, "Failed to delete sms number")
		return
	}
	writeSuccess(w, http.StatusOK, "SMS number deleted successfully.", nil)
}
