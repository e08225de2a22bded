package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// One row per active terminal, whether or not it reported. The UNIQUE
// (pos_id, entry_date) constraint guarantees the left join matches at
// most one entry. A terminal can carry several assigned users; the
// projection shows the first by name so output stays deterministic.
const getSubmissionTracker = `
SELECT p.id AS pos_id,
       p.name AS pos_name,
       l.name AS location_name,
       c.name AS city_name,
       (SELECT u.name
        FROM user_pos up
        JOIN users u ON up.user_id = u.id
        WHERE up.pos_id = p.id
        ORDER BY u.name
        LIMIT 1) AS user_name,
       se.id AS entry_id,
       se.submitted_at,
       CASE WHEN se.id IS NULL THEN 'not_submitted' ELSE 'submitted' END AS status,
       COALESCE((SELECT SUM(sed.amount)
                 FROM sales_entry_details sed
                 WHERE sed.sales_entry_id = se.id), 0) AS total_amount
FROM pos_terminals p
JOIN locations l ON p.location_id = l.id
JOIN cities c ON p.city_id = c.id
LEFT JOIN sales_entries se ON p.id = se.pos_id AND se.entry_date = $1
WHERE p.status = 'active'
ORDER BY c.name, l.name, p.name
`

type GetSubmissionTrackerRow struct {
	PosID        uuid.UUID
	PosName      string
	LocationName string
	CityName     string
	UserName     pgtype.Text
	EntryID      pgtype.UUID
	SubmittedAt  pgtype.Timestamptz
	Status       string
	TotalAmount  pgtype.Numeric
}

func (q *Queries) GetSubmissionTracker(ctx context.Context, entryDate pgtype.Date) ([]GetSubmissionTrackerRow, error) {
	rows, err := q.db.Query(ctx, getSubmissionTracker, entryDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []GetSubmissionTrackerRow
	for rows.Next() {
		var r GetSubmissionTrackerRow
		if err := rows.Scan(&r.PosID, &r.PosName, &r.LocationName, &r.CityName, &r.UserName, &r.EntryID, &r.SubmittedAt, &r.Status, &r.TotalAmount); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}
