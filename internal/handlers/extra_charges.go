package handlers

import (
	"net/http"

	"taxi-booking/internal/logger"
	"taxi-booking/internal/models"
)

// ExtraChargeHandler CRUD районных доплат
type ExtraChargeHandler struct {
	charges ExtraChargeService
	log     *logger.Logger
}

// NewExtraChargeHandler создает обработчик доплат
func NewExtraChargeHandler(charges ExtraChargeService, log *logger.Logger) *ExtraChargeHandler {
	return &ExtraChargeHandler{charges: charges, log: log}
}

// List GET /api/v1/extra-charges
func (h *ExtraChargeHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	charges, err := h.charges.ListExtraCharges(r.Context(), limit, offset)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to list extra charges")
		return
	}
	writeSuccess(w, http.StatusOK, "", charges)
}

// Get GET /api/v1/extra-charges/:id
func (h *ExtraChargeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeErrorResponse(w, http.StatusNotFound, "Extra charge not found.")
		return
	}
	charge, err := h.charges.GetExtraCharge(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to get extra charge")
		return
	}
	writeSuccess(w, http.StatusOK, "", charge)
}

// Create POST /api/v1/extra-charges
func (h *ExtraChargeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.ExtraChargeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorResponse(w, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}
	charge, err := h.charges.CreateExtraCharge(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to create extra charge")
		return
	}
	writeSuccess(w, http.StatusCreated, "Extra charge created successfully.", charge)
}

// Update PUT /api/v1/extra-charges/:id
func (h *ExtraChargeHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeErrorResponse(w, http.StatusNotFound, "Extra charge not found.")
		return
	}
	var req models.ExtraChargeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorResponse(w, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}
	charge, err := h.charges.UpdateExtraCharge(r.Context(), id, &req)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to update extra charge")
		return
	}
	writeSuccess(w, http.StatusOK, "Extra charge updated successfully.", charge)
}

// Delete DELETE /api/v1/extra-charges/:id
func (h *ExtraChargeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeErrorResponse(w, http.StatusNotFound, "Extra charge not found.")
		return
	}
	if err := h.charges.DeleteExtraCharge(r.Context(), id); err != nil {
		writeServiceError(w, h.log, err, "Failed to delete extra charge")
		return
	}
	writeSuccess(w, http.StatusOK, "Extra charge deleted successfully.", nil)
}
