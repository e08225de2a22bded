package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// Dashboard sums take an optional user filter: a NULL user id means the
// caller's role reads everyone's entries, otherwise only their own.

const getDailySalesTotal = `
SELECT COALESCE(SUM(sed.amount), 0)
FROM sales_entries se
JOIN sales_entry_details sed ON se.id = sed.sales_entry_id
WHERE se.entry_date = $1
  AND ($2::uuid IS NULL OR se.user_id = $2)
`

type GetDailySalesTotalParams struct {
	EntryDate pgtype.Date
	UserID    pgtype.UUID
}

func (q *Queries) GetDailySalesTotal(ctx context.Context, arg GetDailySalesTotalParams) (pgtype.Numeric, error) {
	row := q.db.QueryRow(ctx, getDailySalesTotal, arg.EntryDate, arg.UserID)
	var total pgtype.Numeric
	err := row.Scan(&total)
	return total, err
}

const getSalesTotalSince = `
SELECT COALESCE(SUM(sed.amount), 0)
FROM sales_entries se
JOIN sales_entry_details sed ON se.id = sed.sales_entry_id
WHERE se.entry_date >= $1
  AND ($2::uuid IS NULL OR se.user_id = $2)
`

type GetSalesTotalSinceParams struct {
	StartDate pgtype.Date
	UserID    pgtype.UUID
}

func (q *Queries) GetSalesTotalSince(ctx context.Context, arg GetSalesTotalSinceParams) (pgtype.Numeric, error) {
	row := q.db.QueryRow(ctx, getSalesTotalSince, arg.StartDate, arg.UserID)
	var total pgtype.Numeric
	err := row.Scan(&total)
	return total, err
}

const getMonthlySalesTotal = `
SELECT COALESCE(SUM(sed.amount), 0)
FROM sales_entries se
JOIN sales_entry_details sed ON se.id = sed.sales_entry_id
WHERE date_trunc('month', se.entry_date) = date_trunc('month', $1::date)
  AND ($2::uuid IS NULL OR se.user_id = $2)
`

type GetMonthlySalesTotalParams struct {
	EntryDate pgtype.Date
	UserID    pgtype.UUID
}

func (q *Queries) GetMonthlySalesTotal(ctx context.Context, arg GetMonthlySalesTotalParams) (pgtype.Numeric, error) {
	row := q.db.QueryRow(ctx, getMonthlySalesTotal, arg.EntryDate, arg.UserID)
	var total pgtype.Numeric
	err := row.Scan(&total)
	return total, err
}

const countPendingSubmissions = `
SELECT COUNT(DISTINCT p.id)
FROM pos_terminals p
LEFT JOIN sales_entries se ON p.id = se.pos_id AND se.entry_date = $1
WHERE p.status = 'active' AND se.id IS NULL
`

func (q *Queries) CountPendingSubmissions(ctx context.Context, entryDate pgtype.Date) (int64, error) {
	row := q.db.QueryRow(ctx, countPendingSubmissions, entryDate)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const listRecentEntries = `
SELECT se.id, se.entry_date, se.submitted_at,
       p.name AS pos_name, l.name AS location_name, c.name AS city_name,
       u.name AS user_name,
       COALESCE((SELECT SUM(sed.amount)
                 FROM sales_entry_details sed
                 WHERE sed.sales_entry_id = se.id), 0) AS total_amount
FROM sales_entries se
JOIN pos_terminals p ON se.pos_id = p.id
JOIN locations l ON p.location_id = l.id
JOIN cities c ON p.city_id = c.id
JOIN users u ON se.user_id = u.id
WHERE ($1::uuid IS NULL OR se.user_id = $1)
ORDER BY se.submitted_at DESC
LIMIT $2
`

type ListRecentEntriesParams struct {
	UserID pgtype.UUID
	Limit  int32
}

type ListRecentEntriesRow struct {
	ID           uuid.UUID
	EntryDate    pgtype.Date
	SubmittedAt  time.Time
	PosName      string
	LocationName string
	CityName     string
	UserName     string
	TotalAmount  pgtype.Numeric
}

func (q *Queries) ListRecentEntries(ctx context.Context, arg ListRecentEntriesParams) ([]ListRecentEntriesRow, error) {
	rows, err := q.db.Query(ctx, listRecentEntries, arg.UserID, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []ListRecentEntriesRow
	for rows.Next() {
		var e ListRecentEntriesRow
		if err := rows.Scan(&e.ID, &e.EntryDate, &e.SubmittedAt, &e.PosName, &e.LocationName, &e.CityName, &e.UserName, &e.TotalAmount); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
