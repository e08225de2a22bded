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

// SalesTypeStore defines the database methods needed by sales type
// handlers. Satisfied by *database.Queries.
type SalesTypeStore interface {
	ListSalesTypes(ctx context.Context) ([]database.SalesType, error)
	ListActiveSalesTypes(ctx context.Context) ([]database.SalesType, error)
	CreateSalesType(ctx context.Context, arg database.CreateSalesTypeParams) (database.SalesType, error)
	UpdateSalesType(ctx context.Context, arg database.UpdateSalesTypeParams) (database.SalesType, error)
	DeleteSalesType(ctx context.Context, id uuid.UUID) error
}

// SalesTypeHandler handles sales type endpoints.
type SalesTypeHandler struct {
	store SalesTypeStore
}

// NewSalesTypeHandler creates a new SalesTypeHandler.
func NewSalesTypeHandler(store SalesTypeStore) *SalesTypeHandler {
	return &SalesTypeHandler{store: store}
}

// RegisterAdminRoutes registers catalog management endpoints.
func (h *SalesTypeHandler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

type salesTypeRequest struct {
	Name                 string `json:"name"`
	AttachmentApplicable bool   `json:"attachment_applicable"`
	AttachmentRequired   bool   `json:"attachment_required"`
	Status               string `json:"status"`
}

type salesTypeResponse struct {
	ID                   uuid.UUID `json:"id"`
	Name                 string    `json:"name"`
	AttachmentApplicable bool      `json:"attachment_applicable"`
	AttachmentRequired   bool      `json:"attachment_required"`
	Status               string    `json:"status"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// ListActive handles GET /sales-types/active. Feeds the submission
// form with the current catalog snapshot.
func (h *SalesTypeHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	types, err := h.store.ListActiveSalesTypes(r.Context())
	if err != nil {
		log.Printf("ERROR: list active sales types: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, toSalesTypeResponses(types))
}

// List handles GET /admin/sales-types.
func (h *SalesTypeHandler) List(w http.ResponseWriter, r *http.Request) {
	types, err := h.store.ListSalesTypes(r.Context())
	if err != nil {
		log.Printf("ERROR: list sales types: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, toSalesTypeResponses(types))
}

// Create handles POST /admin/sales-types.
func (h *SalesTypeHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeSalesTypeRequest(w, r)
	if !ok {
		return
	}

	st, err := h.store.CreateSalesType(r.Context(), database.CreateSalesTypeParams{
		Name:                 req.Name,
		AttachmentApplicable: req.AttachmentApplicable,
		AttachmentRequired:   req.AttachmentRequired,
		Status:               req.Status,
	})
	if err != nil {
		log.Printf("ERROR: create sales type: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toSalesTypeResponse(st))
}

// Update handles PUT /admin/sales-types/{id}. Deactivating a type only
// affects future submissions; recorded entries keep their lines.
func (h *SalesTypeHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid sales type ID"})
		return
	}

	req, ok := decodeSalesTypeRequest(w, r)
	if !ok {
		return
	}

	st, err := h.store.UpdateSalesType(r.Context(), database.UpdateSalesTypeParams{
		ID:                   id,
		Name:                 req.Name,
		AttachmentApplicable: req.AttachmentApplicable,
		AttachmentRequired:   req.AttachmentRequired,
		Status:               req.Status,
	})
	if err != nil {
		log.Printf("ERROR: update sales type: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toSalesTypeResponse(st))
}

// Delete handles DELETE /admin/sales-types/{id}.
func (h *SalesTypeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid sales type ID"})
		return
	}

	if err := h.store.DeleteSalesType(r.Context(), id); err != nil {
		log.Printf("ERROR: delete sales type: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "sales type deleted"})
}

func decodeSalesTypeRequest(w http.ResponseWriter, r *http.Request) (salesTypeRequest, bool) {
	var req salesTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return req, false
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return req, false
	}
	// A required attachment implies the type takes attachments at all.
	if req.AttachmentRequired && !req.AttachmentApplicable {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "attachment_required needs attachment_applicable"})
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

func toSalesTypeResponse(st database.SalesType) salesTypeResponse {
	return salesTypeResponse{
		ID:                   st.ID,
		Name:                 st.Name,
		AttachmentApplicable: st.AttachmentApplicable,
		AttachmentRequired:   st.AttachmentRequired,
		Status:               st.Status,
		CreatedAt:            st.CreatedAt,
		UpdatedAt:            st.UpdatedAt,
	}
}

func toSalesTypeResponses(types []database.SalesType) []salesTypeResponse {
	resp := make([]salesTypeResponse, len(types))
	for i, st := range types {
		resp[i] = toSalesTypeResponse(st)
	}
	return resp
}
