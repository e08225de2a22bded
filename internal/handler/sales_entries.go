package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/salesledger/api/internal/middleware"
	"github.com/salesledger/api/internal/service"
	"github.com/salesledger/api/internal/storage"
)

// maxSubmitFormSize bounds the whole multipart submission, attachments
// included.
const maxSubmitFormSize = 64 << 20

// Ledger defines the service methods needed by sales entry handlers.
// Satisfied by *service.LedgerService; narrow interface for testability.
type Ledger interface {
	Submit(ctx context.Context, req service.SubmitRequest) (uuid.UUID, error)
	Amend(ctx context.Context, entryID uuid.UUID, amounts map[uuid.UUID]string) error
	FetchForEdit(ctx context.Context, entryID uuid.UUID) (*service.Entry, error)
	FetchForView(ctx context.Context, entryID uuid.UUID) (*service.Entry, error)
}

// SubmissionNotifier receives a notification after each successful
// submission. Satisfied by *ws.Hub.
type SubmissionNotifier interface {
	NotifySubmission(entryID, posID uuid.UUID, entryDate string)
}

// SalesEntryHandler handles sales entry endpoints.
type SalesEntryHandler struct {
	svc      Ledger
	notifier SubmissionNotifier
}

// NewSalesEntryHandler creates a new SalesEntryHandler. notifier may be
// nil when no live feed is wired.
func NewSalesEntryHandler(svc Ledger, notifier SubmissionNotifier) *SalesEntryHandler {
	return &SalesEntryHandler{svc: svc, notifier: notifier}
}

// --- Request / Response types ---

type submitEntryLine struct {
	SalesTypeID string `json:"sales_type_id"`
	Amount      string `json:"amount"`
}

type submitResponse struct {
	ID      uuid.UUID `json:"id"`
	Message string    `json:"message"`
}

type amendRequest struct {
	Entries []submitEntryLine `json:"entries"`
}

type entryLineResponse struct {
	SalesTypeID    uuid.UUID `json:"sales_type_id"`
	SalesTypeName  string    `json:"sales_type_name"`
	Amount         string    `json:"amount"`
	AttachmentPath string    `json:"attachment_path,omitempty"`
	AttachmentURL  string    `json:"attachment_url,omitempty"`
}

type entryResponse struct {
	ID          uuid.UUID           `json:"id"`
	PosID       uuid.UUID           `json:"pos_id"`
	PosName     string              `json:"pos_name"`
	UserID      uuid.UUID           `json:"user_id"`
	UserName    string              `json:"user_name"`
	EntryDate   string              `json:"entry_date"`
	Status      string              `json:"status"`
	SubmittedAt *time.Time          `json:"submitted_at,omitempty"`
	Entries     []entryLineResponse `json:"entries"`
}

// --- Handlers ---

// Submit handles POST /sales-entries/submit. The body is multipart form
// data: pos_id, entry_date, an entries JSON array of
// {sales_type_id, amount}, and one file part per attachment named
// attachment_<sales_type_id>.
func (h *SalesEntryHandler) Submit(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	if err := r.ParseMultipartForm(maxSubmitFormSize); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart form"})
		return
	}

	posID, err := uuid.Parse(r.FormValue("pos_id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid pos_id"})
		return
	}

	entryDate, err := time.Parse("2006-01-02", r.FormValue("entry_date"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid entry_date format, use YYYY-MM-DD"})
		return
	}

	var lines []submitEntryLine
	if err := json.Unmarshal([]byte(r.FormValue("entries")), &lines); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid entries payload"})
		return
	}
	if len(lines) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "entries are required"})
		return
	}

	amounts := make(map[uuid.UUID]string, len(lines))
	for _, line := range lines {
		typeID, err := uuid.Parse(line.SalesTypeID)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid sales_type_id"})
			return
		}
		amounts[typeID] = line.Amount
	}

	attachments, err := h.readAttachments(r)
	if err != nil {
		if errors.Is(err, service.ErrAttachmentTooLarge) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		log.Printf("ERROR: read attachments: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	entryID, err := h.svc.Submit(r.Context(), service.SubmitRequest{
		ActorID:     claims.UserID,
		PosID:       posID,
		EntryDate:   entryDate,
		Amounts:     amounts,
		Attachments: attachments,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDuplicateEntry):
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		case errors.Is(err, service.ErrPosNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		case isLedgerValidationError(err):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		default:
			log.Printf("ERROR: submit sales entry: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		return
	}

	if h.notifier != nil {
		h.notifier.NotifySubmission(entryID, posID, entryDate.Format("2006-01-02"))
	}

	writeJSON(w, http.StatusCreated, submitResponse{
		ID:      entryID,
		Message: "sales entry submitted",
	})
}

// GetForEdit handles GET /sales-entries/entry/{id}. Returns the entry
// without its submission timestamp, feeding the amendment form.
func (h *SalesEntryHandler) GetForEdit(w http.ResponseWriter, r *http.Request) {
	entryID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid entry ID"})
		return
	}

	entry, err := h.svc.FetchForEdit(r.Context(), entryID)
	if err != nil {
		h.writeFetchError(w, err, "fetch entry for edit")
		return
	}

	writeJSON(w, http.StatusOK, toEntryResponse(entry))
}

// GetForView handles GET /sales-entries/view/{id}.
func (h *SalesEntryHandler) GetForView(w http.ResponseWriter, r *http.Request) {
	entryID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid entry ID"})
		return
	}

	entry, err := h.svc.FetchForView(r.Context(), entryID)
	if err != nil {
		h.writeFetchError(w, err, "fetch entry for view")
		return
	}

	writeJSON(w, http.StatusOK, toEntryResponse(entry))
}

// Update handles PUT /sales-entries/update/{id}. Only amounts change;
// attachments and the entry header are untouched.
func (h *SalesEntryHandler) Update(w http.ResponseWriter, r *http.Request) {
	entryID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid entry ID"})
		return
	}

	var req amendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if len(req.Entries) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "entries are required"})
		return
	}

	amounts := make(map[uuid.UUID]string, len(req.Entries))
	for _, line := range req.Entries {
		typeID, err := uuid.Parse(line.SalesTypeID)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid sales_type_id"})
			return
		}
		amounts[typeID] = line.Amount
	}

	if err := h.svc.Amend(r.Context(), entryID, amounts); err != nil {
		switch {
		case errors.Is(err, service.ErrEntryNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		case isLedgerValidationError(err):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		default:
			log.Printf("ERROR: update sales entry: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "sales entry updated"})
}

// --- Helpers ---

// readAttachments collects the attachment_<sales_type_id> file parts.
// Size is enforced here so an oversized upload is rejected before the
// service opens a transaction.
func (h *SalesEntryHandler) readAttachments(r *http.Request) (map[uuid.UUID]service.Upload, error) {
	attachments := make(map[uuid.UUID]service.Upload)
	if r.MultipartForm == nil {
		return attachments, nil
	}

	for field, headers := range r.MultipartForm.File {
		if !strings.HasPrefix(field, "attachment_") {
			continue
		}
		typeID, err := uuid.Parse(strings.TrimPrefix(field, "attachment_"))
		if err != nil {
			continue
		}
		if len(headers) == 0 {
			continue
		}

		fh := headers[0]
		if fh.Size > storage.MaxAttachmentSize {
			return nil, service.ErrAttachmentTooLarge
		}

		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		content, err := io.ReadAll(io.LimitReader(f, storage.MaxAttachmentSize+1))
		f.Close()
		if err != nil {
			return nil, err
		}
		if int64(len(content)) > storage.MaxAttachmentSize {
			return nil, service.ErrAttachmentTooLarge
		}

		attachments[typeID] = service.Upload{
			Filename: fh.Filename,
			Size:     int64(len(content)),
			Content:  content,
		}
	}

	return attachments, nil
}

func (h *SalesEntryHandler) writeFetchError(w http.ResponseWriter, err error, op string) {
	if errors.Is(err, service.ErrEntryNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "sales entry not found"})
		return
	}
	log.Printf("ERROR: %s: %v", op, err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
}

func toEntryResponse(e *service.Entry) entryResponse {
	resp := entryResponse{
		ID:        e.ID,
		PosID:     e.PosID,
		PosName:   e.PosName,
		UserID:    e.UserID,
		UserName:  e.UserName,
		EntryDate: e.EntryDate.Format("2006-01-02"),
		Status:    e.Status,
	}
	if !e.SubmittedAt.IsZero() {
		t := e.SubmittedAt
		resp.SubmittedAt = &t
	}

	resp.Entries = make([]entryLineResponse, len(e.Lines))
	for i, line := range e.Lines {
		resp.Entries[i] = entryLineResponse{
			SalesTypeID:    line.SalesTypeID,
			SalesTypeName:  line.SalesTypeName,
			Amount:         line.Amount,
			AttachmentPath: line.AttachmentPath,
			AttachmentURL:  line.AttachmentURL,
		}
	}
	return resp
}
