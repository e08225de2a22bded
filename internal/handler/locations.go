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

// LocationStore defines the database methods needed by location
// handlers. Satisfied by *database.Queries.
type LocationStore interface {
	ListLocations(ctx context.Context) ([]database.ListLocationsRow, error)
	CreateLocation(ctx context.Context, arg database.CreateLocationParams) (database.Location, error)
	UpdateLocation(ctx context.Context, arg database.UpdateLocationParams) (database.Location, error)
	DeleteLocation(ctx context.Context, id uuid.UUID) error
}

// LocationHandler handles location reference data endpoints.
type LocationHandler struct {
	store LocationStore
}

// NewLocationHandler creates a new LocationHandler.
func NewLocationHandler(store LocationStore) *LocationHandler {
	return &LocationHandler{store: store}
}

// RegisterRoutes registers location endpoints on the given Chi router.
func (h *LocationHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

type locationRequest struct {
	Name   string `json:"name"`
	CityID string `json:"city_id"`
	Status string `json:"status"`
}

type locationResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CityID    uuid.UUID `json:"city_id"`
	CityName  string    `json:"city_name,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// List handles GET /admin/locations.
func (h *LocationHandler) List(w http.ResponseWriter, r *http.Request) {
	locations, err := h.store.ListLocations(r.Context())
	if err != nil {
		log.Printf("ERROR: list locations: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]locationResponse, len(locations))
	for i, l := range locations {
		resp[i] = locationResponse{
			ID:        l.ID,
			Name:      l.Name,
			CityID:    l.CityID,
			CityName:  l.CityName,
			Status:    l.Status,
			CreatedAt: l.CreatedAt,
			UpdatedAt: l.UpdatedAt,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create handles POST /admin/locations.
func (h *LocationHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, cityID, ok := decodeLocationRequest(w, r)
	if !ok {
		return
	}

	location, err := h.store.CreateLocation(r.Context(), database.CreateLocationParams{
		Name:   req.Name,
		CityID: cityID,
		Status: req.Status,
	})
	if err != nil {
		log.Printf("ERROR: create location: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toLocationResponse(location))
}

// Update handles PUT /admin/locations/{id}.
func (h *LocationHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid location ID"})
		return
	}

	req, cityID, ok := decodeLocationRequest(w, r)
	if !ok {
		return
	}

	location, err := h.store.UpdateLocation(r.Context(), database.UpdateLocationParams{
		ID:     id,
		Name:   req.Name,
		CityID: cityID,
		Status: req.Status,
	})
	if err != nil {
		log.Printf("ERROR: update location: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toLocationResponse(location))
}

// Delete handles DELETE /admin/locations/{id}.
func (h *LocationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid location ID"})
		return
	}

	if err := h.store.DeleteLocation(r.Context(), id); err != nil {
		log.Printf("ERROR: delete location: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "location deleted"})
}

func decodeLocationRequest(w http.ResponseWriter, r *http.Request) (locationRequest, uuid.UUID, bool) {
	var req locationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return req, uuid.Nil, false
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return req, uuid.Nil, false
	}
	cityID, err := uuid.Parse(req.CityID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid city_id"})
		return req, uuid.Nil, false
	}
	if req.Status == "" {
		req.Status = enum.StatusActive
	}
	if req.Status != enum.StatusActive && req.Status != enum.StatusInactive {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status"})
		return req, uuid.Nil, false
	}
	return req, cityID, true
}

func toLocationResponse(l database.Location) locationResponse {
	return locationResponse{
		ID:        l.ID,
		Name:      l.Name,
		CityID:    l.CityID,
		Status:    l.Status,
		CreatedAt: l.CreatedAt,
		UpdatedAt: l.UpdatedAt,
	}
}
