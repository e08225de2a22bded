package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type City struct {
	ID        uuid.UUID
	Name      string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Location struct {
	ID        uuid.UUID
	Name      string
	CityID    uuid.UUID
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type PosTerminal struct {
	ID         uuid.UUID
	Name       string
	LocationID uuid.UUID
	CityID     uuid.UUID
	Status     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type User struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PasswordHash string
	Role         string
	Status       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type SalesType struct {
	ID                   uuid.UUID
	Name                 string
	AttachmentApplicable bool
	AttachmentRequired   bool
	Status               string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

type SalesEntry struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	PosID       uuid.UUID
	EntryDate   pgtype.Date
	Status      string
	SubmittedAt time.Time
}

type SalesEntryDetail struct {
	ID             uuid.UUID
	SalesEntryID   uuid.UUID
	SalesTypeID    uuid.UUID
	Amount         pgtype.Numeric
	AttachmentPath pgtype.Text
}
