package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/salesledger/api/internal/database"
	"github.com/salesledger/api/internal/enum"
)

// CityStore defines the database methods needed by city handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type CityStore interface {
	ListCities(ctx context.Context) ([]database.City, error)
	CreateCity(ctx context.Context, arg database.CreateCityParams) (database.City, error)
	UpdateCity(ctx context.Context, arg database.UpdateCityParams) (database.City, error)
	DeleteCity(ctx context.Context, id uuid.UUID) error
}

// CityHandler handles city reference data endpoints.
type CityHandler struct {
	store CityStore
}

// NewCityHandler creates a new CityHandler.
func NewCityHandler(store CityStore) *CityHandler {
	return &CityHandler{store: store}
}

// RegisterRoutes registers city endpoints on the given Chi router.
func (h *CityHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

type cityRequest struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}

type cityResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// List handles GET /admin/cities.
func (h *CityHandler) List(w http.ResponseWriter, r *http.Request) {
	cities, err := h.store.ListCities(r.Context())
	if err != nil {
		log.Printf("ERROR: list cities: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]cityResponse, len(cities))
	for i, c := range cities {
		resp[i] = toCityResponse(c)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create handles POST /admin/cities.
func (h *CityHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCityRequest(w, r)
	if !ok {
		return
	}

	city, err := h.store.CreateCity(r.Context(), database.CreateCityParams{
		Name:   req.Name,
		Status: req.Status,
	})
	if err != nil {
		log.Printf("ERROR: create city: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toCityResponse(city))
}

// Update handles PUT /admin/cities/{id}.
func (h *CityHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid city ID"})
		return
	}

	req, ok := decodeCityRequest(w, r)
	if !ok {
		return
	}

	city, err := h.store.UpdateCity(r.Context(), database.UpdateCityParams{
		ID:     id,
		Name:   req.Name,
		Status: req.Status,
	})
	if err != nil {
		log.Printf("ERROR: update city: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toCityResponse(city))
}

// Delete handles DELETE /admin/cities/{id}.
func (h *CityHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid city ID"})
		return
	}

	if err := h.store.DeleteCity(r.Context(), id); err != nil {
		log.Printf("ERROR: delete city: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "city deleted"})
}

func decodeCityRequest(w http.ResponseWriter, r *http.Request) (cityRequest, bool) {
	var req cityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return req, false
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return req, false
	}
	if req.Status == "" {
		req.Status = enum.StatusActive
	}
	if req.Status != enum.StatusActive && req.Status != enum.StatusInactive {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status"})
		return req, false
	}
	return req, true
}

func toCityResponse(c database.City) cityResponse {
	return cityResponse{
		ID:        c.ID,
		Name:      c.Name,
		Status:    c.Status,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
