package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const getSalesEntryIDByPosAndDate = `
SELECT id FROM sales_entries
WHERE pos_id = $1 AND entry_date = $2
`

type GetSalesEntryIDByPosAndDateParams struct {
	PosID     uuid.UUID
	EntryDate pgtype.Date
}

func (q *Queries) GetSalesEntryIDByPosAndDate(ctx context.Context, arg GetSalesEntryIDByPosAndDateParams) (uuid.UUID, error) {
	row := q.db.QueryRow(ctx, getSalesEntryIDByPosAndDate, arg.PosID, arg.EntryDate)
	var id uuid.UUID
	err := row.Scan(&id)
	return id, err
}

// The UNIQUE (pos_id, entry_date) constraint backs this insert; a
// concurrent duplicate surfaces as pgcode 23505, not a second row.
const createSalesEntry = `
INSERT INTO sales_entries (user_id, pos_id, entry_date, status)
VALUES ($1, $2, $3, $4)
RETURNING id, user_id, pos_id, entry_date, status, submitted_at
`

type CreateSalesEntryParams struct {
	UserID    uuid.UUID
	PosID     uuid.UUID
	EntryDate pgtype.Date
	Status    string
}

func (q *Queries) CreateSalesEntry(ctx context.Context, arg CreateSalesEntryParams) (SalesEntry, error) {
	row := q.db.QueryRow(ctx, createSalesEntry, arg.UserID, arg.PosID, arg.EntryDate, arg.Status)
	var e SalesEntry
	err := row.Scan(&e.ID, &e.UserID, &e.PosID, &e.EntryDate, &e.Status, &e.SubmittedAt)
	return e, err
}

const createSalesEntryDetail = `
INSERT INTO sales_entry_details (sales_entry_id, sales_type_id, amount, attachment_path)
VALUES ($1, $2, $3, $4)
RETURNING id, sales_entry_id, sales_type_id, amount, attachment_path
`

type CreateSalesEntryDetailParams struct {
	SalesEntryID   uuid.UUID
	SalesTypeID    uuid.UUID
	Amount         pgtype.Numeric
	AttachmentPath pgtype.Text
}

func (q *Queries) CreateSalesEntryDetail(ctx context.Context, arg CreateSalesEntryDetailParams) (SalesEntryDetail, error) {
	row := q.db.QueryRow(ctx, createSalesEntryDetail, arg.SalesEntryID, arg.SalesTypeID, arg.Amount, arg.AttachmentPath)
	var d SalesEntryDetail
	err := row.Scan(&d.ID, &d.SalesEntryID, &d.SalesTypeID, &d.Amount, &d.AttachmentPath)
	return d, err
}

const getSalesEntryID = `
SELECT id FROM sales_entries WHERE id = $1
`

func (q *Queries) GetSalesEntryID(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	row := q.db.QueryRow(ctx, getSalesEntryID, id)
	var entryID uuid.UUID
	err := row.Scan(&entryID)
	return entryID, err
}

const getSalesEntry = `
SELECT se.id, se.user_id, se.pos_id, se.entry_date, se.status, se.submitted_at,
       p.name AS pos_name, u.name AS user_name
FROM sales_entries se
LEFT JOIN pos_terminals p ON se.pos_id = p.id
LEFT JOIN users u ON se.user_id = u.id
WHERE se.id = $1
`

type GetSalesEntryRow struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	PosID       uuid.UUID
	EntryDate   pgtype.Date
	Status      string
	SubmittedAt time.Time
	PosName     pgtype.Text
	UserName    pgtype.Text
}

func (q *Queries) GetSalesEntry(ctx context.Context, id uuid.UUID) (GetSalesEntryRow, error) {
	row := q.db.QueryRow(ctx, getSalesEntry, id)
	var e GetSalesEntryRow
	err := row.Scan(&e.ID, &e.UserID, &e.PosID, &e.EntryDate, &e.Status, &e.SubmittedAt, &e.PosName, &e.UserName)
	return e, err
}

const listSalesEntryDetails = `
SELECT sed.sales_type_id, st.name AS sales_type_name, sed.amount, sed.attachment_path
FROM sales_entry_details sed
LEFT JOIN sales_types st ON sed.sales_type_id = st.id
WHERE sed.sales_entry_id = $1
ORDER BY st.name
`

type ListSalesEntryDetailsRow struct {
	SalesTypeID    uuid.UUID
	SalesTypeName  pgtype.Text
	Amount         pgtype.Numeric
	AttachmentPath pgtype.Text
}

func (q *Queries) ListSalesEntryDetails(ctx context.Context, salesEntryID uuid.UUID) ([]ListSalesEntryDetailsRow, error) {
	rows, err := q.db.Query(ctx, listSalesEntryDetails, salesEntryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var details []ListSalesEntryDetailsRow
	for rows.Next() {
		var d ListSalesEntryDetailsRow
		if err := rows.Scan(&d.SalesTypeID, &d.SalesTypeName, &d.Amount, &d.AttachmentPath); err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, rows.Err()
}

// Amendment only adjusts rows that already exist; a zero rows-affected
// result means the type had no line in this entry and is skipped.
const updateSalesEntryDetailAmount = `
UPDATE sales_entry_details
SET amount = $3
WHERE sales_entry_id = $1 AND sales_type_id = $2
`

type UpdateSalesEntryDetailAmountParams struct {
	SalesEntryID uuid.UUID
	SalesTypeID  uuid.UUID
	Amount       pgtype.Numeric
}

func (q *Queries) UpdateSalesEntryDetailAmount(ctx context.Context, arg UpdateSalesEntryDetailAmountParams) (int64, error) {
	tag, err := q.db.Exec(ctx, updateSalesEntryDetailAmount, arg.SalesEntryID, arg.SalesTypeID, arg.Amount)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const listSalesByType = `
SELECT se.entry_date, se.submitted_at, p.name AS pos_name, st.name AS sales_type_name, sed.amount
FROM sales_entry_details sed
JOIN sales_entries se ON sed.sales_entry_id = se.id
JOIN pos_terminals p ON se.pos_id = p.id
JOIN sales_types st ON sed.sales_type_id = st.id
ORDER BY se.entry_date DESC, p.name, st.name
LIMIT $1
`

type ListSalesByTypeRow struct {
	EntryDate     pgtype.Date
	SubmittedAt   time.Time
	PosName       string
	SalesTypeName string
	Amount        pgtype.Numeric
}

func (q *Queries) ListSalesByType(ctx context.Context, limit int32) ([]ListSalesByTypeRow, error) {
	rows, err := q.db.Query(ctx, listSalesByType, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []ListSalesByTypeRow
	for rows.Next() {
		var r ListSalesByTypeRow
		if err := rows.Scan(&r.EntryDate, &r.SubmittedAt, &r.PosName, &r.SalesTypeName, &r.Amount); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}
