package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/renthub/laptop-bookings/internal/domain"
	"github.com/renthub/laptop-bookings/internal/http/response"
)

// ListLaptops returns the full inventory, availability flags included.
func (h *Handlers) ListLaptops(w http.ResponseWriter, r *http.Request) {
	laptops, err := h.laptopService.List(r.Context())
	if err != nil {
		response.InternalError(w, "Failed to list laptops")
		return
	}

	writeJSON(w, http.StatusOK, laptops)
}

// AddLaptop handles adding a laptop to inventory (admin only).
func (h *Handlers) AddLaptop(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateLaptopRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	laptop, err := h.laptopService.Add(r.Context(), &req)
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Laptop added successfully",
		"laptop":  laptop,
	})
}

// DeleteLaptop handles removing a laptop from inventory (admin only).
func (h *Handlers) DeleteLaptop(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid laptop ID")
		return
	}

	if err := h.laptopService.Remove(r.Context(), id); err != nil {
		response.WriteDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Laptop deleted successfully",
	})
}
