package handlers

import (
	"net/http"

	"taxi-booking/internal/logger"
	"taxi-booking/internal/models"
)

// AirportHandler CRUD аэропортов
type AirportHandler struct {
	airports AirportService
	log      *logger.Logger
}

// NewAirportHandler создает обработчик аэропортов
func NewAirportHandler(airports AirportService, log *logger.Logger) *AirportHandler {
	return &AirportHandler{airports: airports, log: log}
}

// List GET /api/v1/airports
func (h *AirportHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	airports, err := h.airports.ListAirports(r.Context(), limit, offset)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to list airports")
		return
	}
	writeSuccess(w, http.StatusOK, "", airports)
}

// Get GET /api/v1/airports/:id
func (h *AirportHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeErrorResponse(w, http.StatusNotFound, "Airport not found.")
		return
	}
	airport, err := h.airports.GetAirport(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to get airport")
		return
	}
	writeSuccess(w, http.StatusOK, "", airport)
}

// Create POST /api/v1/airports
func (h *AirportHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.AirportRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorResponse(w, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}
	airport, err := h.airports.CreateAirport(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to create airport")
		return
	}
	writeSuccess(w, http.StatusCreated, "Airport created successfully.", airport)
}

// Update PUT /api/v1/airports/:id
func (h *AirportHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeErrorResponse(w, http.StatusNotFound, "Airport not found.")
		return
	}
	var req models.AirportRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorResponse(w, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}
	airport, err := h.airports.UpdateAirport(r.Context(), id, &req)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to update airport")
		return
	}
	writeSuccess(w, http.StatusOK, "Airport updated successfully.", airport)
}

// Delete DELETE /api/v1/airports/:id
func (h *AirportHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeErrorResponse(w, http.StatusNotFound, "Airport not found.")
		return
	}
	if err := h.airports.DeleteAirport(r.Context(), id); err != nil {
		writeServiceError(w, h.log, err, "Failed to delete airport")
		return
	}
	writeSuccess(w, http.StatusOK, "Airport deleted successfully.", nil)
}
