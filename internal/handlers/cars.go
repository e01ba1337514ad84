package handlers

import (
	"net/http"

	"taxi-booking/internal/logger"
	"taxi-booking/internal/models"
)

// CarHandler CRUD автомобилей и их тарифных сеток
type CarHandler struct {
	cars CarService
	log  *logger.Logger
}

// NewCarHandler создает обработчик автомобилей
func NewCarHandler(cars CarService, log *logger.Logger) *CarHandler {
	return &CarHandler{cars: cars, log: log}
}

// List GET /api/v1/cars
func (h *CarHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	cars, err := h.cars.ListCars(r.Context(), limit, offset)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to list cars")
		return
	}
	writeSuccess(w, http.StatusOK, "", cars)
}

// Get GET /api/v1/cars/:id
func (h *CarHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeErrorResponse(w, http.StatusNotFound, "Car not found.")
		return
	}
	car, err := h.cars.GetCar(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to get car")
		return
	}
	writeSuccess(w, http.StatusOK, "", car)
}

// Create POST /api/v1/cars
func (h *CarHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CarRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorResponse(w, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}
	car, err := h.cars.CreateCar(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to create car")
		return
	}
	writeSuccess(w, http.StatusCreated, "Car created successfully.", car)
}

// Update PUT /api/v1/cars/:id; slabs заменяются только если переданы
func (h *CarHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeErrorResponse(w, http.StatusNotFound, "Car not found.")
		return
	}
	var req models.CarRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorResponse(w, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}
	car, err := h.cars.UpdateCar(r.Context(), id, &req)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to update car")
		return
	}
	writeSuccess(w, http.StatusOK, "Car updated successfully.", car)
}

// Delete DELETE /api/v1/cars/:id
func (h *CarHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeErrorResponse(w, http.StatusNotFound, "Car not found.")
		return
	}
	if err := h.cars.DeleteCar(r.Context(), id); err != nil {
		writeServiceError(w, h.log, err, "Failed to delete car")
		return
	}
	writeSuccess(w, http.StatusOK, "Car deleted successfully.", nil)
}

// ListSlabs GET /api/v1/cars/:id/slabs
func (h *CarHandler) ListSlabs(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeErrorResponse(w, http.StatusNotFound, "Car not found.")
		return
	}
	slabs, err := h.cars.ListSlabs(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to list fare slabs")
		return
	}
	writeSuccess(w, http.StatusOK, "", slabs)
}

// ReplaceSlabs PUT /api/v1/cars/:id/slabs
func (h *CarHandler) ReplaceSlabs(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeErrorResponse(w, http.StatusNotFound, "Car not found.")
		return
	}
	var req models.ReplaceSlabsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorResponse(w, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}
	slabs, err := h.cars.ReplaceSlabs(r.Context(), id, &req)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to replace fare slabs")
		return
	}
	writeSuccess(w, http.StatusOK, "Fare slabs updated successfully.", slabs)
}
