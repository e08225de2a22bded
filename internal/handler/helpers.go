package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/salesledger/api/internal/service"
	"github.com/shopspring/decimal"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("ERROR: failed to encode JSON response: %v", err)
	}
}

// isLedgerValidationError checks if the error is a known validation
// error from the ledger service that should result in 400 Bad Request.
func isLedgerValidationError(err error) bool {
	return errors.Is(err, service.ErrFutureDate) ||
		errors.Is(err, service.ErrNoActiveSalesTypes) ||
		errors.Is(err, service.ErrMissingAmount) ||
		errors.Is(err, service.ErrInvalidAmount) ||
		errors.Is(err, service.ErrNegativeAmount) ||
		errors.Is(err, service.ErrMissingAttachment) ||
		errors.Is(err, service.ErrAttachmentType) ||
		errors.Is(err, service.ErrAttachmentTooLarge)
}

// parseDateParam reads a YYYY-MM-DD query parameter, defaulting to
// today when absent.
func parseDateParam(r *http.Request, name string) (time.Time, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return time.Now(), nil
	}
	return time.Parse("2006-01-02", s)
}

func numericToString(n pgtype.Numeric) string {
	if !n.Valid {
		return "0.00"
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return "0.00"
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return "0.00"
	}
	return d.StringFixed(2)
}
