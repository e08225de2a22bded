package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/salesledger/api/internal/enum"
	"github.com/salesledger/api/internal/handler"
	mw "github.com/salesledger/api/internal/middleware"
	"github.com/salesledger/api/internal/policy"
	"github.com/salesledger/api/internal/service"
)

// --- Mock ledger ---

type mockLedger struct {
	submitFn       func(ctx context.Context, req service.SubmitRequest) (uuid.UUID, error)
	amendFn        func(ctx context.Context, entryID uuid.UUID, amounts map[uuid.UUID]string) error
	fetchForEditFn func(ctx context.Context, entryID uuid.UUID) (*service.Entry, error)
	fetchForViewFn func(ctx context.Context, entryID uuid.UUID) (*service.Entry, error)
}

func (m *mockLedger) Submit(ctx context.Context, req service.SubmitRequest) (uuid.UUID, error) {
	return m.submitFn(ctx, req)
}
func (m *mockLedger) Amend(ctx context.Context, entryID uuid.UUID, amounts map[uuid.UUID]string) error {
	return m.amendFn(ctx, entryID, amounts)
}
func (m *mockLedger) FetchForEdit(ctx context.Context, entryID uuid.UUID) (*service.Entry, error) {
	return m.fetchForEditFn(ctx, entryID)
}
func (m *mockLedger) FetchForView(ctx context.Context, entryID uuid.UUID) (*service.Entry, error) {
	return m.fetchForViewFn(ctx, entryID)
}

type mockNotifier struct {
	calls int
}

func (m *mockNotifier) NotifySubmission(entryID, posID uuid.UUID, entryDate string) {
	m.calls++
}

func entryRouter(svc *mockLedger, notifier *mockNotifier) chi.Router {
	h := handler.NewSalesEntryHandler(svc, notifier)
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(testSecret))
		r.With(mw.RequireCapability(policy.CapSubmit)).Post("/sales-entries/submit", h.Submit)
		r.With(mw.RequireCapability(policy.CapAmend)).Get("/sales-entries/entry/{id}", h.GetForEdit)
		r.With(mw.RequireCapability(policy.CapAmend)).Put("/sales-entries/update/{id}", h.Update)
		r.With(mw.RequireCapability(policy.CapViewOthers)).Get("/sales-entries/view/{id}", h.GetForView)
	})
	return r
}

// submitForm builds a multipart submission with an optional attachment.
func submitForm(t *testing.T, posID uuid.UUID, date string, lines []map[string]string, attachField, attachName string, attachContent []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	w.WriteField("pos_id", posID.String())
	w.WriteField("entry_date", date)

	entries, err := json.Marshal(lines)
	if err != nil {
		t.Fatalf("marshal entries: %v", err)
	}
	w.WriteField("entries", string(entries))

	if attachField != "" {
		fw, err := w.CreateFormFile(attachField, attachName)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		fw.Write(attachContent)
	}

	if err := w.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return body, w.FormDataContentType()
}

func postForm(t *testing.T, router http.Handler, path, token string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", path, body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

// --- Submit tests ---

func TestSubmitEndpoint_Success(t *testing.T) {
	userID := uuid.New()
	posID := uuid.New()
	cashType := uuid.New()
	cardType := uuid.New()
	entryID := uuid.New()

	var captured service.SubmitRequest
	svc := &mockLedger{
		submitFn: func(ctx context.Context, req service.SubmitRequest) (uuid.UUID, error) {
			captured = req
			return entryID, nil
		},
	}
	notifier := &mockNotifier{}
	r := entryRouter(svc, notifier)

	body, contentType := submitForm(t, posID, "2024-03-15",
		[]map[string]string{
			{"sales_type_id": cashType.String(), "amount": "500"},
			{"sales_type_id": cardType.String(), "amount": "300"},
		},
		"attachment_"+cardType.String(), "slip.pdf", []byte("pdfbytes"),
	)

	token := mintToken(t, userID, "Clerk", enum.RoleRegularUser)
	rr := postForm(t, r, "/sales-entries/submit", token, body, contentType)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}

	if captured.ActorID != userID {
		t.Errorf("actor: got %s, want %s", captured.ActorID, userID)
	}
	if captured.PosID != posID {
		t.Errorf("pos: got %s, want %s", captured.PosID, posID)
	}
	if captured.EntryDate.Format("2006-01-02") != "2024-03-15" {
		t.Errorf("entry date: got %v", captured.EntryDate)
	}
	if captured.Amounts[cashType] != "500" || captured.Amounts[cardType] != "300" {
		t.Errorf("amounts: got %v", captured.Amounts)
	}
	up, ok := captured.Attachments[cardType]
	if !ok {
		t.Fatal("card attachment missing from the service request")
	}
	if up.Filename != "slip.pdf" || string(up.Content) != "pdfbytes" {
		t.Errorf("attachment: got %q (%d bytes)", up.Filename, len(up.Content))
	}

	if notifier.calls != 1 {
		t.Errorf("notifier calls: got %d, want 1", notifier.calls)
	}

	resp := decodeResponse(t, rr)
	if resp["id"] != entryID.String() {
		t.Errorf("response id: got %v, want %s", resp["id"], entryID)
	}
}

func TestSubmitEndpoint_Duplicate(t *testing.T) {
	svc := &mockLedger{
		submitFn: func(ctx context.Context, req service.SubmitRequest) (uuid.UUID, error) {
			return uuid.Nil, service.ErrDuplicateEntry
		},
	}
	notifier := &mockNotifier{}
	r := entryRouter(svc, notifier)

	body, contentType := submitForm(t, uuid.New(), "2024-03-15",
		[]map[string]string{{"sales_type_id": uuid.New().String(), "amount": "1"}},
		"", "", nil,
	)
	token := mintToken(t, uuid.New(), "Clerk", enum.RoleRegularUser)
	rr := postForm(t, r, "/sales-entries/submit", token, body, contentType)

	if rr.Code != http.StatusConflict {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusConflict)
	}
	if notifier.calls != 0 {
		t.Errorf("notifier must not fire for a rejected submit, got %d calls", notifier.calls)
	}
}

func TestSubmitEndpoint_ValidationError(t *testing.T) {
	svc := &mockLedger{
		submitFn: func(ctx context.Context, req service.SubmitRequest) (uuid.UUID, error) {
			return uuid.Nil, service.ErrMissingAttachment
		},
	}
	r := entryRouter(svc, &mockNotifier{})

	body, contentType := submitForm(t, uuid.New(), "2024-03-15",
		[]map[string]string{{"sales_type_id": uuid.New().String(), "amount": "1"}},
		"", "", nil,
	)
	token := mintToken(t, uuid.New(), "Clerk", enum.RoleRegularUser)
	rr := postForm(t, r, "/sales-entries/submit", token, body, contentType)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestSubmitEndpoint_BadDate(t *testing.T) {
	r := entryRouter(&mockLedger{}, &mockNotifier{})

	body, contentType := submitForm(t, uuid.New(), "15-03-2024",
		[]map[string]string{{"sales_type_id": uuid.New().String(), "amount": "1"}},
		"", "", nil,
	)
	token := mintToken(t, uuid.New(), "Clerk", enum.RoleRegularUser)
	rr := postForm(t, r, "/sales-entries/submit", token, body, contentType)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestSubmitEndpoint_Unauthenticated(t *testing.T) {
	r := entryRouter(&mockLedger{}, &mockNotifier{})

	body, contentType := submitForm(t, uuid.New(), "2024-03-15",
		[]map[string]string{{"sales_type_id": uuid.New().String(), "amount": "1"}},
		"", "", nil,
	)
	req := httptest.NewRequest("POST", "/sales-entries/submit", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

// --- Capability gating ---

func TestEntryEndpoints_CapabilityGating(t *testing.T) {
	entry := &service.Entry{ID: uuid.New(), Status: enum.EntryStatusSubmitted}
	svc := &mockLedger{
		amendFn: func(ctx context.Context, entryID uuid.UUID, amounts map[uuid.UUID]string) error {
			return nil
		},
		fetchForEditFn: func(ctx context.Context, entryID uuid.UUID) (*service.Entry, error) {
			return entry, nil
		},
		fetchForViewFn: func(ctx context.Context, entryID uuid.UUID) (*service.Entry, error) {
			return entry, nil
		},
	}
	r := entryRouter(svc, &mockNotifier{})
	id := uuid.New().String()

	cases := []struct {
		name   string
		method string
		path   string
		role   string
		want   int
	}{
		{"regular user cannot view others", "GET", "/sales-entries/view/" + id, enum.RoleRegularUser, http.StatusForbidden},
		{"administrator can view", "GET", "/sales-entries/view/" + id, enum.RoleAdministrator, http.StatusOK},
		{"administrator cannot edit", "GET", "/sales-entries/entry/" + id, enum.RoleAdministrator, http.StatusForbidden},
		{"super admin can edit", "GET", "/sales-entries/entry/" + id, enum.RoleSuperAdmin, http.StatusOK},
		{"administrator cannot amend", "PUT", "/sales-entries/update/" + id, enum.RoleAdministrator, http.StatusForbidden},
		{"super admin can amend", "PUT", "/sales-entries/update/" + id, enum.RoleSuperAdmin, http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			token := mintToken(t, uuid.New(), "Someone", tc.role)
			var body interface{}
			if tc.method == "PUT" {
				body = map[string]interface{}{
					"entries": []map[string]string{
						{"sales_type_id": uuid.New().String(), "amount": "10"},
					},
				}
			}
			rr := doAuthed(t, r, tc.method, tc.path, token, body)
			if rr.Code != tc.want {
				t.Errorf("status: got %d, want %d; body: %s", rr.Code, tc.want, rr.Body.String())
			}
		})
	}
}

// --- Fetch tests ---

func TestGetForView_IncludesSubmittedAt(t *testing.T) {
	submittedAt := time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)
	entry := &service.Entry{
		ID:          uuid.New(),
		PosName:     "POS 1",
		EntryDate:   time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		Status:      enum.EntryStatusSubmitted,
		SubmittedAt: submittedAt,
		Lines: []service.EntryLine{
			{SalesTypeID: uuid.New(), SalesTypeName: "Cash", Amount: "500.00"},
		},
	}
	svc := &mockLedger{
		fetchForViewFn: func(ctx context.Context, entryID uuid.UUID) (*service.Entry, error) {
			return entry, nil
		},
	}
	r := entryRouter(svc, &mockNotifier{})

	token := mintToken(t, uuid.New(), "Admin", enum.RoleAdministrator)
	rr := doAuthed(t, r, "GET", "/sales-entries/view/"+entry.ID.String(), token, nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d; body: %s", rr.Code, rr.Body.String())
	}
	resp := decodeResponse(t, rr)
	if resp["submitted_at"] == nil {
		t.Error("view projection should include submitted_at")
	}
	if resp["entry_date"] != "2024-03-15" {
		t.Errorf("entry_date: got %v", resp["entry_date"])
	}
}

func TestGetForEdit_OmitsSubmittedAt(t *testing.T) {
	entry := &service.Entry{
		ID:        uuid.New(),
		EntryDate: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		Status:    enum.EntryStatusSubmitted,
	}
	svc := &mockLedger{
		fetchForEditFn: func(ctx context.Context, entryID uuid.UUID) (*service.Entry, error) {
			return entry, nil
		},
	}
	r := entryRouter(svc, &mockNotifier{})

	token := mintToken(t, uuid.New(), "Root", enum.RoleSuperAdmin)
	rr := doAuthed(t, r, "GET", "/sales-entries/entry/"+entry.ID.String(), token, nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d; body: %s", rr.Code, rr.Body.String())
	}
	resp := decodeResponse(t, rr)
	if _, present := resp["submitted_at"]; present {
		t.Error("edit projection must omit submitted_at")
	}
}

func TestGetForView_NotFound(t *testing.T) {
	svc := &mockLedger{
		fetchForViewFn: func(ctx context.Context, entryID uuid.UUID) (*service.Entry, error) {
			return nil, service.ErrEntryNotFound
		},
	}
	r := entryRouter(svc, &mockNotifier{})

	token := mintToken(t, uuid.New(), "Admin", enum.RoleAdministrator)
	rr := doAuthed(t, r, "GET", "/sales-entries/view/"+uuid.New().String(), token, nil)

	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

// --- Update tests ---

func TestUpdateEndpoint_PassesAmounts(t *testing.T) {
	entryID := uuid.New()
	typeID := uuid.New()

	var gotEntryID uuid.UUID
	var gotAmounts map[uuid.UUID]string
	svc := &mockLedger{
		amendFn: func(ctx context.Context, id uuid.UUID, amounts map[uuid.UUID]string) error {
			gotEntryID = id
			gotAmounts = amounts
			return nil
		},
	}
	r := entryRouter(svc, &mockNotifier{})

	token := mintToken(t, uuid.New(), "Root", enum.RoleSuperAdmin)
	rr := doAuthed(t, r, "PUT", "/sales-entries/update/"+entryID.String(), token, map[string]interface{}{
		"entries": []map[string]string{
			{"sales_type_id": typeID.String(), "amount": "750.50"},
		},
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d; body: %s", rr.Code, rr.Body.String())
	}
	if gotEntryID != entryID {
		t.Errorf("entry id: got %s, want %s", gotEntryID, entryID)
	}
	if gotAmounts[typeID] != "750.50" {
		t.Errorf("amounts: got %v", gotAmounts)
	}
}

func TestUpdateEndpoint_NotFound(t *testing.T) {
	svc := &mockLedger{
		amendFn: func(ctx context.Context, id uuid.UUID, amounts map[uuid.UUID]string) error {
			return service.ErrEntryNotFound
		},
	}
	r := entryRouter(svc, &mockNotifier{})

	token := mintToken(t, uuid.New(), "Root", enum.RoleSuperAdmin)
	rr := doAuthed(t, r, "PUT", "/sales-entries/update/"+uuid.New().String(), token, map[string]interface{}{
		"entries": []map[string]string{
			{"sales_type_id": uuid.New().String(), "amount": "10"},
		},
	})

	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestUpdateEndpoint_EmptyBody(t *testing.T) {
	r := entryRouter(&mockLedger{}, &mockNotifier{})

	token := mintToken(t, uuid.New(), "Root", enum.RoleSuperAdmin)
	rr := doAuthed(t, r, "PUT", "/sales-entries/update/"+uuid.New().String(), token, map[string]interface{}{
		"entries": []map[string]string{},
	})

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}
