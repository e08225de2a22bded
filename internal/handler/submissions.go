package handler

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/salesledger/api/internal/database"
)

// TrackerStore defines the database methods needed by the tracker
// handler. Satisfied by *database.Queries.
type TrackerStore interface {
	GetSubmissionTracker(ctx context.Context, entryDate pgtype.Date) ([]database.GetSubmissionTrackerRow, error)
}

// SubmissionHandler serves the per-terminal submission tracker.
type SubmissionHandler struct {
	store TrackerStore
}

// NewSubmissionHandler creates a new SubmissionHandler.
func NewSubmissionHandler(store TrackerStore) *SubmissionHandler {
	return &SubmissionHandler{store: store}
}

type trackerRowResponse struct {
	PosID        uuid.UUID  `json:"pos_id"`
	PosName      string     `json:"pos_name"`
	LocationName string     `json:"location_name"`
	CityName     string     `json:"city_name"`
	UserName     *string    `json:"user_name"`
	EntryID      *uuid.UUID `json:"entry_id"`
	SubmittedAt  *time.Time `json:"submitted_at"`
	Status       string     `json:"status"`
	TotalAmount  string     `json:"total_amount"`
}

type trackerResponse struct {
	Date string               `json:"date"`
	Rows []trackerRowResponse `json:"rows"`
}

// Tracker handles GET /submissions/tracker. One row per active
// terminal for the requested date, defaulting to today.
func (h *SubmissionHandler) Tracker(w http.ResponseWriter, r *http.Request) {
	date, err := parseDateParam(r, "date")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid date format, use YYYY-MM-DD"})
		return
	}

	rows, err := h.store.GetSubmissionTracker(r.Context(), pgtype.Date{Time: date, Valid: true})
	if err != nil {
		log.Printf("ERROR: get submission tracker: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := trackerResponse{
		Date: date.Format("2006-01-02"),
		Rows: make([]trackerRowResponse, len(rows)),
	}
	for i, row := range rows {
		tr := trackerRowResponse{
			PosID:        row.PosID,
			PosName:      row.PosName,
			LocationName: row.LocationName,
			CityName:     row.CityName,
			Status:       row.Status,
			TotalAmount:  numericToString(row.TotalAmount),
		}
		if row.UserName.Valid {
			tr.UserName = &row.UserName.String
		}
		if row.EntryID.Valid {
			id := uuid.UUID(row.EntryID.Bytes)
			tr.EntryID = &id
		}
		if row.SubmittedAt.Valid {
			tr.SubmittedAt = &row.SubmittedAt.Time
		}
		resp.Rows[i] = tr
	}

	writeJSON(w, http.StatusOK, resp)
}
