package handler

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/salesledger/api/internal/database"
)

// ReportStore defines the database methods needed by report handlers.
// Satisfied by *database.Queries.
type ReportStore interface {
	ListSalesByType(ctx context.Context, limit int32) ([]database.ListSalesByTypeRow, error)
}

// ReportHandler serves flat per-line exports for external analysis.
type ReportHandler struct {
	store ReportStore
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(store ReportStore) *ReportHandler {
	return &ReportHandler{store: store}
}

type salesDataRow struct {
	EntryDate     string    `json:"entry_date"`
	SubmittedAt   time.Time `json:"submitted_at"`
	PosName       string    `json:"pos_name"`
	SalesTypeName string    `json:"sales_type_name"`
	Amount        string    `json:"amount"`
}

// SalesData handles GET /reports/sales-data. One row per entry line,
// newest first.
func (h *ReportHandler) SalesData(w http.ResponseWriter, r *http.Request) {
	limit := 500
	if s := r.URL.Query().Get("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			limit = v
		}
	}
	if limit > 5000 {
		limit = 5000
	}

	rows, err := h.store.ListSalesByType(r.Context(), int32(limit))
	if err != nil {
		log.Printf("ERROR: list sales by type: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]salesDataRow, len(rows))
	for i, row := range rows {
		resp[i] = salesDataRow{
			EntryDate:     row.EntryDate.Time.Format("2006-01-02"),
			SubmittedAt:   row.SubmittedAt,
			PosName:       row.PosName,
			SalesTypeName: row.SalesTypeName,
			Amount:        numericToString(row.Amount),
		}
	}

	writeJSON(w, http.StatusOK, map[string][]salesDataRow{"rows": resp})
}
