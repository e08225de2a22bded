package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/salesledger/api/internal/database"
	"github.com/salesledger/api/internal/enum"
	"github.com/salesledger/api/internal/storage"
	"github.com/shopspring/decimal"
)

// Errors returned by the ledger service.
var (
	ErrDuplicateEntry     = errors.New("entry already exists for this terminal and date")
	ErrEntryNotFound      = errors.New("entry not found")
	ErrPosNotFound        = errors.New("pos terminal not found or inactive")
	ErrFutureDate         = errors.New("entry_date must not be in the future")
	ErrNoActiveSalesTypes = errors.New("no active sales types configured")
	ErrMissingAmount      = errors.New("amount is required for every active sales type")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrNegativeAmount     = errors.New("amount must not be negative")
	ErrMissingAttachment  = errors.New("attachment is required")
	ErrAttachmentType     = errors.New("attachment must be an image or PDF")
	ErrAttachmentTooLarge = errors.New("attachment exceeds the size limit")
)

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// LedgerStore defines the DB methods the ledger needs.
// Satisfied by *database.Queries (and its WithTx variant).
type LedgerStore interface {
	GetActivePosTerminal(ctx context.Context, id uuid.UUID) (database.PosTerminal, error)
	ListActiveSalesTypes(ctx context.Context) ([]database.SalesType, error)
	GetSalesEntryIDByPosAndDate(ctx context.Context, arg database.GetSalesEntryIDByPosAndDateParams) (uuid.UUID, error)
	CreateSalesEntry(ctx context.Context, arg database.CreateSalesEntryParams) (database.SalesEntry, error)
	CreateSalesEntryDetail(ctx context.Context, arg database.CreateSalesEntryDetailParams) (database.SalesEntryDetail, error)
	GetSalesEntryID(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
	UpdateSalesEntryDetailAmount(ctx context.Context, arg database.UpdateSalesEntryDetailAmountParams) (int64, error)
	GetSalesEntry(ctx context.Context, id uuid.UUID) (database.GetSalesEntryRow, error)
	ListSalesEntryDetails(ctx context.Context, salesEntryID uuid.UUID) ([]database.ListSalesEntryDetailsRow, error)
}

// NewLedgerStore creates a LedgerStore from a DBTX (pool or tx), so the
// service can run the multi-step submit inside one transaction.
type NewLedgerStore func(db database.DBTX) LedgerStore

// Upload is one attachment file received with a submission.
type Upload struct {
	Filename string
	Size     int64
	Content  []byte
}

// SubmitRequest is the validated input for submitting a daily entry.
// Amounts and Attachments are keyed by sales type id; every active type
// must have an amount, and every attachment-required type an upload.
type SubmitRequest struct {
	ActorID     uuid.UUID
	PosID       uuid.UUID
	EntryDate   time.Time
	Amounts     map[uuid.UUID]string
	Attachments map[uuid.UUID]Upload
}

// EntryLine is one sales type's figure within an entry.
type EntryLine struct {
	SalesTypeID    uuid.UUID
	SalesTypeName  string
	Amount         string
	AttachmentPath string
	AttachmentURL  string
}

// Entry is the header + ordered line items projection returned by the
// fetch operations. SubmittedAt is only populated by FetchForView.
type Entry struct {
	ID          uuid.UUID
	PosID       uuid.UUID
	PosName     string
	UserID      uuid.UUID
	UserName    string
	EntryDate   time.Time
	Status      string
	SubmittedAt time.Time
	Lines       []EntryLine
}

// LedgerService owns sales entries and their details; nothing else
// writes those tables.
type LedgerService struct {
	pool        TxBeginner
	store       LedgerStore
	newStore    NewLedgerStore
	attachments storage.Store
}

// NewLedgerService creates a new LedgerService. store is pool-backed
// and serves the read paths; newStore creates per-transaction stores.
func NewLedgerService(pool TxBeginner, store LedgerStore, newStore NewLedgerStore, attachments storage.Store) *LedgerService {
	return &LedgerService{pool: pool, store: store, newStore: newStore, attachments: attachments}
}

// preparedLine holds one validated detail row waiting for insert.
type preparedLine struct {
	salesType  database.SalesType
	amount     decimal.Decimal
	attachment *Upload
}

// Submit records one terminal's figures for one calendar day in a
// single transaction. The sales-type catalog is snapshotted at the
// start of the call; attachments are written to the attachment store
// before the detail row that references them. A concurrent duplicate
// loses on the (pos_id, entry_date) unique constraint and surfaces as
// ErrDuplicateEntry.
func (s *LedgerService) Submit(ctx context.Context, req SubmitRequest) (uuid.UUID, error) {
	if req.EntryDate.Format("2006-01-02") > time.Now().Format("2006-01-02") {
		return uuid.Nil, ErrFutureDate
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	if _, err := store.GetActivePosTerminal(ctx, req.PosID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, ErrPosNotFound
		}
		return uuid.Nil, fmt.Errorf("get pos terminal: %w", err)
	}

	salesTypes, err := store.ListActiveSalesTypes(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("list active sales types: %w", err)
	}
	if len(salesTypes) == 0 {
		return uuid.Nil, ErrNoActiveSalesTypes
	}

	entryDate := pgtype.Date{Time: req.EntryDate, Valid: true}

	// Friendly duplicate check; the unique constraint below is what
	// actually closes the race.
	if _, err := store.GetSalesEntryIDByPosAndDate(ctx, database.GetSalesEntryIDByPosAndDateParams{
		PosID:     req.PosID,
		EntryDate: entryDate,
	}); err == nil {
		return uuid.Nil, ErrDuplicateEntry
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, fmt.Errorf("check existing entry: %w", err)
	}

	lines := make([]preparedLine, 0, len(salesTypes))
	for _, st := range salesTypes {
		raw, ok := req.Amounts[st.ID]
		if !ok {
			return uuid.Nil, fmt.Errorf("%s: %w", st.Name, ErrMissingAmount)
		}
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return uuid.Nil, fmt.Errorf("%s: %w", st.Name, ErrInvalidAmount)
		}
		if amount.IsNegative() {
			return uuid.Nil, fmt.Errorf("%s: %w", st.Name, ErrNegativeAmount)
		}

		line := preparedLine{salesType: st, amount: amount}
		if st.AttachmentApplicable || st.AttachmentRequired {
			if up, ok := req.Attachments[st.ID]; ok && len(up.Content) > 0 {
				if !storage.AllowedExt(up.Filename) {
					return uuid.Nil, fmt.Errorf("%s: %w", st.Name, ErrAttachmentType)
				}
				if len(up.Content) > storage.MaxAttachmentSize {
					return uuid.Nil, fmt.Errorf("%s: %w", st.Name, ErrAttachmentTooLarge)
				}
				line.attachment = &up
			} else if st.AttachmentRequired {
				return uuid.Nil, fmt.Errorf("%s: %w", st.Name, ErrMissingAttachment)
			}
		}
		lines = append(lines, line)
	}

	entry, err := store.CreateSalesEntry(ctx, database.CreateSalesEntryParams{
		UserID:    req.ActorID,
		PosID:     req.PosID,
		EntryDate: entryDate,
		Status:    enum.EntryStatusSubmitted,
	})
	if err != nil {
		if isDuplicateEntryConflict(err) {
			return uuid.Nil, ErrDuplicateEntry
		}
		return uuid.Nil, fmt.Errorf("create sales entry: %w", err)
	}

	for _, line := range lines {
		attachmentPath := pgtype.Text{}
		if line.attachment != nil {
			key := storage.NewKey("attachment_"+line.salesType.ID.String(), line.attachment.Filename)
			ref, err := s.attachments.Put(ctx, key, bytes.NewReader(line.attachment.Content))
			if err != nil {
				return uuid.Nil, fmt.Errorf("store attachment for %s: %w", line.salesType.Name, err)
			}
			attachmentPath = pgtype.Text{String: ref, Valid: true}
		}

		if _, err := store.CreateSalesEntryDetail(ctx, database.CreateSalesEntryDetailParams{
			SalesEntryID:   entry.ID,
			SalesTypeID:    line.salesType.ID,
			Amount:         decimalToNumeric(line.amount),
			AttachmentPath: attachmentPath,
		}); err != nil {
			return uuid.Nil, fmt.Errorf("create entry detail for %s: %w", line.salesType.Name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		if isDuplicateEntryConflict(err) {
			return uuid.Nil, ErrDuplicateEntry
		}
		return uuid.Nil, fmt.Errorf("commit tx: %w", err)
	}

	return entry.ID, nil
}

// Amend overwrites amounts on existing detail rows, atomically. Pairs
// naming a sales type with no detail row in the entry are skipped; no
// new rows are created, attachments and the entry header are untouched.
func (s *LedgerService) Amend(ctx context.Context, entryID uuid.UUID, amounts map[uuid.UUID]string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	if _, err := store.GetSalesEntryID(ctx, entryID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrEntryNotFound
		}
		return fmt.Errorf("get sales entry: %w", err)
	}

	for typeID, raw := range amounts {
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", typeID, ErrInvalidAmount)
		}
		if amount.IsNegative() {
			return fmt.Errorf("%s: %w", typeID, ErrNegativeAmount)
		}
		if _, err := store.UpdateSalesEntryDetailAmount(ctx, database.UpdateSalesEntryDetailAmountParams{
			SalesEntryID: entryID,
			SalesTypeID:  typeID,
			Amount:       decimalToNumeric(amount),
		}); err != nil {
			return fmt.Errorf("update detail %s: %w", typeID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// FetchForEdit returns the header and line items without the submission
// timestamp, for the amendment form.
func (s *LedgerService) FetchForEdit(ctx context.Context, entryID uuid.UUID) (*Entry, error) {
	entry, err := s.fetch(ctx, entryID)
	if err != nil {
		return nil, err
	}
	entry.SubmittedAt = time.Time{}
	return entry, nil
}

// FetchForView returns the full read-only projection including the
// submission timestamp.
func (s *LedgerService) FetchForView(ctx context.Context, entryID uuid.UUID) (*Entry, error) {
	return s.fetch(ctx, entryID)
}

func (s *LedgerService) fetch(ctx context.Context, entryID uuid.UUID) (*Entry, error) {
	header, err := s.store.GetSalesEntry(ctx, entryID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("get sales entry: %w", err)
	}

	details, err := s.store.ListSalesEntryDetails(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("list entry details: %w", err)
	}

	lines := make([]EntryLine, len(details))
	for i, d := range details {
		line := EntryLine{
			SalesTypeID:   d.SalesTypeID,
			SalesTypeName: d.SalesTypeName.String,
			Amount:        numericToDecimal(d.Amount).StringFixed(2),
		}
		if d.AttachmentPath.Valid {
			line.AttachmentPath = d.AttachmentPath.String
			line.AttachmentURL = s.attachments.URL(d.AttachmentPath.String)
		}
		lines[i] = line
	}

	return &Entry{
		ID:          header.ID,
		PosID:       header.PosID,
		PosName:     header.PosName.String,
		UserID:      header.UserID,
		UserName:    header.UserName.String,
		EntryDate:   header.EntryDate.Time,
		Status:      header.Status,
		SubmittedAt: header.SubmittedAt,
		Lines:       lines,
	}, nil
}

// isDuplicateEntryConflict checks for a unique constraint violation on
// (pos_id, entry_date) (pgconn error code 23505).
func isDuplicateEntryConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == "sales_entries_pos_id_entry_date_key"
	}
	return false
}

// --- Helpers ---

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n
}
