package handler

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/salesledger/api/internal/database"
	"github.com/salesledger/api/internal/middleware"
	"github.com/salesledger/api/internal/policy"
)

// DashboardStore defines the database methods needed by dashboard
// handlers. Satisfied by *database.Queries.
type DashboardStore interface {
	GetDailySalesTotal(ctx context.Context, arg database.GetDailySalesTotalParams) (pgtype.Numeric, error)
	GetSalesTotalSince(ctx context.Context, arg database.GetSalesTotalSinceParams) (pgtype.Numeric, error)
	GetMonthlySalesTotal(ctx context.Context, arg database.GetMonthlySalesTotalParams) (pgtype.Numeric, error)
	CountPendingSubmissions(ctx context.Context, entryDate pgtype.Date) (int64, error)
	ListRecentEntries(ctx context.Context, arg database.ListRecentEntriesParams) ([]database.ListRecentEntriesRow, error)
}

// DashboardHandler serves the aggregate widgets. Regular users see only
// their own figures; elevated roles see everyone's.
type DashboardHandler struct {
	store DashboardStore
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(store DashboardStore) *DashboardHandler {
	return &DashboardHandler{store: store}
}

type statsResponse struct {
	Date               string `json:"date"`
	TodayTotal         string `json:"today_total"`
	WeekTotal          string `json:"week_total"`
	MonthTotal         string `json:"month_total"`
	PendingSubmissions *int64 `json:"pending_submissions,omitempty"`
}

type recentEntryResponse struct {
	ID           uuid.UUID `json:"id"`
	EntryDate    string    `json:"entry_date"`
	SubmittedAt  time.Time `json:"submitted_at"`
	PosName      string    `json:"pos_name"`
	LocationName string    `json:"location_name"`
	CityName     string    `json:"city_name"`
	UserName     string    `json:"user_name"`
	TotalAmount  string    `json:"total_amount"`
}

// Stats handles GET /dashboard/stats. Totals cover the requested day,
// the trailing seven days, and the calendar month containing it.
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	date, err := parseDateParam(r, "date")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid date format, use YYYY-MM-DD"})
		return
	}

	userFilter := scopeFilter(claims.UserID, claims.Role)
	entryDate := pgtype.Date{Time: date, Valid: true}

	today, err := h.store.GetDailySalesTotal(r.Context(), database.GetDailySalesTotalParams{
		EntryDate: entryDate,
		UserID:    userFilter,
	})
	if err != nil {
		log.Printf("ERROR: get daily sales total: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	week, err := h.store.GetSalesTotalSince(r.Context(), database.GetSalesTotalSinceParams{
		StartDate: pgtype.Date{Time: date.AddDate(0, 0, -6), Valid: true},
		UserID:    userFilter,
	})
	if err != nil {
		log.Printf("ERROR: get weekly sales total: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	month, err := h.store.GetMonthlySalesTotal(r.Context(), database.GetMonthlySalesTotalParams{
		EntryDate: entryDate,
		UserID:    userFilter,
	})
	if err != nil {
		log.Printf("ERROR: get monthly sales total: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := statsResponse{
		Date:       date.Format("2006-01-02"),
		TodayTotal: numericToString(today),
		WeekTotal:  numericToString(week),
		MonthTotal: numericToString(month),
	}

	// The pending count only means anything to roles that can see all
	// terminals.
	if policy.Allowed(claims.Role, policy.CapViewReports) {
		pending, err := h.store.CountPendingSubmissions(r.Context(), entryDate)
		if err != nil {
			log.Printf("ERROR: count pending submissions: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			return
		}
		resp.PendingSubmissions = &pending
	}

	writeJSON(w, http.StatusOK, resp)
}

// RecentEntries handles GET /dashboard/recent-entries.
func (h *DashboardHandler) RecentEntries(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	limit := 5
	if s := r.URL.Query().Get("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			limit = v
		}
	}
	if limit > 20 {
		limit = 20
	}

	entries, err := h.store.ListRecentEntries(r.Context(), database.ListRecentEntriesParams{
		UserID: scopeFilter(claims.UserID, claims.Role),
		Limit:  int32(limit),
	})
	if err != nil {
		log.Printf("ERROR: list recent entries: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]recentEntryResponse, len(entries))
	for i, e := range entries {
		resp[i] = recentEntryResponse{
			ID:           e.ID,
			EntryDate:    e.EntryDate.Time.Format("2006-01-02"),
			SubmittedAt:  e.SubmittedAt,
			PosName:      e.PosName,
			LocationName: e.LocationName,
			CityName:     e.CityName,
			UserName:     e.UserName,
			TotalAmount:  numericToString(e.TotalAmount),
		}
	}

	writeJSON(w, http.StatusOK, map[string][]recentEntryResponse{"entries": resp})
}

// scopeFilter maps the caller's role to the optional user filter the
// dashboard queries take. An invalid UUID means no filter.
func scopeFilter(userID uuid.UUID, role string) pgtype.UUID {
	if policy.ScopeFor(role) == policy.ScopeAll {
		return pgtype.UUID{}
	}
	return pgtype.UUID{Bytes: userID, Valid: true}
}
