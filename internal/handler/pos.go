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
	"github.com/salesledger/api/internal/middleware"
)

// PosStore defines the database methods needed by POS terminal
// handlers. Satisfied by *database.Queries.
type PosStore interface {
	ListPosTerminals(ctx context.Context) ([]database.ListPosTerminalsRow, error)
	CreatePosTerminal(ctx context.Context, arg database.CreatePosTerminalParams) (database.PosTerminal, error)
	UpdatePosTerminal(ctx context.Context, arg database.UpdatePosTerminalParams) (database.PosTerminal, error)
	DeletePosTerminal(ctx context.Context, id uuid.UUID) error
	ListPosAssignments(ctx context.Context, posID uuid.UUID) ([]uuid.UUID, error)
	ClearPosAssignments(ctx context.Context, posID uuid.UUID) error
	AssignUserToPos(ctx context.Context, arg database.AssignUserToPosParams) error
	ListUserPos(ctx context.Context, userID uuid.UUID) ([]database.ListUserPosRow, error)
}

// PosHandler handles POS terminal endpoints.
type PosHandler struct {
	store PosStore
}

// NewPosHandler creates a new PosHandler.
func NewPosHandler(store PosStore) *PosHandler {
	return &PosHandler{store: store}
}

// RegisterAdminRoutes registers terminal management endpoints.
func (h *PosHandler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Get("/{id}/assignments", h.ListAssignments)
	r.Put("/{id}/assignments", h.ReplaceAssignments)
}

type posRequest struct {
	Name       string `json:"name"`
	LocationID string `json:"location_id"`
	CityID     string `json:"city_id"`
	Status     string `json:"status"`
}

type posResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	LocationID   uuid.UUID `json:"location_id"`
	CityID       uuid.UUID `json:"city_id"`
	LocationName string    `json:"location_name,omitempty"`
	CityName     string    `json:"city_name,omitempty"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type assignmentsRequest struct {
	UserIDs []string `json:"user_ids"`
}

type userPosResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	LocationName string    `json:"location_name"`
	CityName     string    `json:"city_name"`
}

// List handles GET /admin/pos.
func (h *PosHandler) List(w http.ResponseWriter, r *http.Request) {
	terminals, err := h.store.ListPosTerminals(r.Context())
	if err != nil {
		log.Printf("ERROR: list pos terminals: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]posResponse, len(terminals))
	for i, p := range terminals {
		resp[i] = posResponse{
			ID:           p.ID,
			Name:         p.Name,
			LocationID:   p.LocationID,
			CityID:       p.CityID,
			LocationName: p.LocationName,
			CityName:     p.CityName,
			Status:       p.Status,
			CreatedAt:    p.CreatedAt,
			UpdatedAt:    p.UpdatedAt,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create handles POST /admin/pos.
func (h *PosHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, locationID, cityID, ok := decodePosRequest(w, r)
	if !ok {
		return
	}

	pos, err := h.store.CreatePosTerminal(r.Context(), database.CreatePosTerminalParams{
		Name:       req.Name,
		LocationID: locationID,
		CityID:     cityID,
		Status:     req.Status,
	})
	if err != nil {
		log.Printf("ERROR: create pos terminal: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toPosResponse(pos))
}

// Update handles PUT /admin/pos/{id}.
func (h *PosHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid pos ID"})
		return
	}

	req, locationID, cityID, ok := decodePosRequest(w, r)
	if !ok {
		return
	}

	pos, err := h.store.UpdatePosTerminal(r.Context(), database.UpdatePosTerminalParams{
		ID:         id,
		Name:       req.Name,
		LocationID: locationID,
		CityID:     cityID,
		Status:     req.Status,
	})
	if err != nil {
		log.Printf("ERROR: update pos terminal: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toPosResponse(pos))
}

// Delete handles DELETE /admin/pos/{id}.
func (h *PosHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid pos ID"})
		return
	}

	if err := h.store.DeletePosTerminal(r.Context(), id); err != nil {
		log.Printf("ERROR: delete pos terminal: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "pos terminal deleted"})
}

// ListAssignments handles GET /admin/pos/{id}/assignments.
func (h *PosHandler) ListAssignments(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid pos ID"})
		return
	}

	userIDs, err := h.store.ListPosAssignments(r.Context(), id)
	if err != nil {
		log.Printf("ERROR: list pos assignments: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if userIDs == nil {
		userIDs = []uuid.UUID{}
	}

	writeJSON(w, http.StatusOK, map[string][]uuid.UUID{"user_ids": userIDs})
}

// ReplaceAssignments handles PUT /admin/pos/{id}/assignments. The whole
// assignment set is replaced in one call.
func (h *PosHandler) ReplaceAssignments(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid pos ID"})
		return
	}

	var req assignmentsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	userIDs := make([]uuid.UUID, len(req.UserIDs))
	for i, s := range req.UserIDs {
		userID, err := uuid.Parse(s)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid user ID"})
			return
		}
		userIDs[i] = userID
	}

	if err := h.store.ClearPosAssignments(r.Context(), id); err != nil {
		log.Printf("ERROR: clear pos assignments: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	for _, userID := range userIDs {
		if err := h.store.AssignUserToPos(r.Context(), database.AssignUserToPosParams{
			UserID: userID,
			PosID:  id,
		}); err != nil {
			log.Printf("ERROR: assign user to pos: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "assignments updated"})
}

// UserPos handles GET /pos/user-pos. Lists the active terminals
// assigned to the caller, for the submission form.
func (h *PosHandler) UserPos(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	terminals, err := h.store.ListUserPos(r.Context(), claims.UserID)
	if err != nil {
		log.Printf("ERROR: list user pos: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]userPosResponse, len(terminals))
	for i, p := range terminals {
		resp[i] = userPosResponse{
			ID:           p.ID,
			Name:         p.Name,
			LocationName: p.LocationName,
			CityName:     p.CityName,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func decodePosRequest(w http.ResponseWriter, r *http.Request) (posRequest, uuid.UUID, uuid.UUID, bool) {
	var req posRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return req, uuid.Nil, uuid.Nil, false
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return req, uuid.Nil, uuid.Nil, false
	}
	locationID, err := uuid.Parse(req.LocationID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid location_id"})
		return req, uuid.Nil, uuid.Nil, false
	}
	cityID, err := uuid.Parse(req.CityID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid city_id"})
		return req, uuid.Nil, uuid.Nil, false
	}
	if req.Status == "" {
		req.Status = enum.StatusActive
	}
	if req.Status != enum.StatusActive && req.Status != enum.StatusInactive {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status"})
		return req, uuid.Nil, uuid.Nil, false
	}
	return req, locationID, cityID, true
}

func toPosResponse(p database.PosTerminal) posResponse {
	return posResponse{
		ID:         p.ID,
		Name:       p.Name,
		LocationID: p.LocationID,
		CityID:     p.CityID,
		Status:     p.Status,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}
