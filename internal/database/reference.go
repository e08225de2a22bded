package database

import (
	"context"

	"github.com/google/uuid"
)

// ── Cities ──

const listCities = `
SELECT id, name, status, created_at, updated_at
FROM cities
ORDER BY name
`

func (q *Queries) ListCities(ctx context.Context) ([]City, error) {
	rows, err := q.db.Query(ctx, listCities)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var cities []City
	for rows.Next() {
		var c City
		if err := rows.Scan(&c.ID, &c.Name, &c.Status, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		cities = append(cities, c)
	}
	return cities, rows.Err()
}

const createCity = `
INSERT INTO cities (name, status)
VALUES ($1, $2)
RETURNING id, name, status, created_at, updated_at
`

type CreateCityParams struct {
	Name   string
	Status string
}

func (q *Queries) CreateCity(ctx context.Context, arg CreateCityParams) (City, error) {
	row := q.db.QueryRow(ctx, createCity, arg.Name, arg.Status)
	var c City
	err := row.Scan(&c.ID, &c.Name, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

const updateCity = `
UPDATE cities
SET name = $2, status = $3, updated_at = now()
WHERE id = $1
RETURNING id, name, status, created_at, updated_at
`

type UpdateCityParams struct {
	ID     uuid.UUID
	Name   string
	Status string
}

func (q *Queries) UpdateCity(ctx context.Context, arg UpdateCityParams) (City, error) {
	row := q.db.QueryRow(ctx, updateCity, arg.ID, arg.Name, arg.Status)
	var c City
	err := row.Scan(&c.ID, &c.Name, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

const deleteCity = `
DELETE FROM cities WHERE id = $1
`

func (q *Queries) DeleteCity(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, deleteCity, id)
	return err
}

// ── Locations ──

const listLocations = `
SELECT l.id, l.name, l.city_id, l.status, l.created_at, l.updated_at, c.name AS city_name
FROM locations l
JOIN cities c ON l.city_id = c.id
ORDER BY c.name, l.name
`

type ListLocationsRow struct {
	Location
	CityName string
}

func (q *Queries) ListLocations(ctx context.Context) ([]ListLocationsRow, error) {
	rows, err := q.db.Query(ctx, listLocations)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var locations []ListLocationsRow
	for rows.Next() {
		var l ListLocationsRow
		if err := rows.Scan(&l.ID, &l.Name, &l.CityID, &l.Status, &l.CreatedAt, &l.UpdatedAt, &l.CityName); err != nil {
			return nil, err
		}
		locations = append(locations, l)
	}
	return locations, rows.Err()
}

const createLocation = `
INSERT INTO locations (name, city_id, status)
VALUES ($1, $2, $3)
RETURNING id, name, city_id, status, created_at, updated_at
`

type CreateLocationParams struct {
	Name   string
	CityID uuid.UUID
	Status string
}

func (q *Queries) CreateLocation(ctx context.Context, arg CreateLocationParams) (Location, error) {
	row := q.db.QueryRow(ctx, createLocation, arg.Name, arg.CityID, arg.Status)
	var l Location
	err := row.Scan(&l.ID, &l.Name, &l.CityID, &l.Status, &l.CreatedAt, &l.UpdatedAt)
	return l, err
}

const updateLocation = `
UPDATE locations
SET name = $2, city_id = $3, status = $4, updated_at = now()
WHERE id = $1
RETURNING id, name, city_id, status, created_at, updated_at
`

type UpdateLocationParams struct {
	ID     uuid.UUID
	Name   string
	CityID uuid.UUID
	Status string
}

func (q *Queries) UpdateLocation(ctx context.Context, arg UpdateLocationParams) (Location, error) {
	row := q.db.QueryRow(ctx, updateLocation, arg.ID, arg.Name, arg.CityID, arg.Status)
	var l Location
	err := row.Scan(&l.ID, &l.Name, &l.CityID, &l.Status, &l.CreatedAt, &l.UpdatedAt)
	return l, err
}

const deleteLocation = `
DELETE FROM locations WHERE id = $1
`

func (q *Queries) DeleteLocation(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, deleteLocation, id)
	return err
}

// ── POS terminals ──

const listPosTerminals = `
SELECT p.id, p.name, p.location_id, p.city_id, p.status, p.created_at, p.updated_at,
       l.name AS location_name, c.name AS city_name
FROM pos_terminals p
JOIN locations l ON p.location_id = l.id
JOIN cities c ON p.city_id = c.id
ORDER BY c.name, l.name, p.name
`

type ListPosTerminalsRow struct {
	PosTerminal
	LocationName string
	CityName     string
}

func (q *Queries) ListPosTerminals(ctx context.Context) ([]ListPosTerminalsRow, error) {
	rows, err := q.db.Query(ctx, listPosTerminals)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var terminals []ListPosTerminalsRow
	for rows.Next() {
		var p ListPosTerminalsRow
		if err := rows.Scan(&p.ID, &p.Name, &p.LocationID, &p.CityID, &p.Status, &p.CreatedAt, &p.UpdatedAt, &p.LocationName, &p.CityName); err != nil {
			return nil, err
		}
		terminals = append(terminals, p)
	}
	return terminals, rows.Err()
}

const getActivePosTerminal = `
SELECT id, name, location_id, city_id, status, created_at, updated_at
FROM pos_terminals
WHERE id = $1 AND status = 'active'
`

func (q *Queries) GetActivePosTerminal(ctx context.Context, id uuid.UUID) (PosTerminal, error) {
	row := q.db.QueryRow(ctx, getActivePosTerminal, id)
	var p PosTerminal
	err := row.Scan(&p.ID, &p.Name, &p.LocationID, &p.CityID, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

const createPosTerminal = `
INSERT INTO pos_terminals (name, location_id, city_id, status)
VALUES ($1, $2, $3, $4)
RETURNING id, name, location_id, city_id, status, created_at, updated_at
`

type CreatePosTerminalParams struct {
	Name       string
	LocationID uuid.UUID
	CityID     uuid.UUID
	Status     string
}

func (q *Queries) CreatePosTerminal(ctx context.Context, arg CreatePosTerminalParams) (PosTerminal, error) {
	row := q.db.QueryRow(ctx, createPosTerminal, arg.Name, arg.LocationID, arg.CityID, arg.Status)
	var p PosTerminal
	err := row.Scan(&p.ID, &p.Name, &p.LocationID, &p.CityID, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

const updatePosTerminal = `
UPDATE pos_terminals
SET name = $2, location_id = $3, city_id = $4, status = $5, updated_at = now()
WHERE id = $1
RETURNING id, name, location_id, city_id, status, created_at, updated_at
`

type UpdatePosTerminalParams struct {
	ID         uuid.UUID
	Name       string
	LocationID uuid.UUID
	CityID     uuid.UUID
	Status     string
}

func (q *Queries) UpdatePosTerminal(ctx context.Context, arg UpdatePosTerminalParams) (PosTerminal, error) {
	row := q.db.QueryRow(ctx, updatePosTerminal, arg.ID, arg.Name, arg.LocationID, arg.CityID, arg.Status)
	var p PosTerminal
	err := row.Scan(&p.ID, &p.Name, &p.LocationID, &p.CityID, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

const deletePosTerminal = `
DELETE FROM pos_terminals WHERE id = $1
`

func (q *Queries) DeletePosTerminal(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, deletePosTerminal, id)
	return err
}

// ── User/POS assignment ──

const listPosAssignments = `
SELECT user_id FROM user_pos WHERE pos_id = $1
`

func (q *Queries) ListPosAssignments(ctx context.Context, posID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := q.db.Query(ctx, listPosAssignments, posID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var userIDs []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		userIDs = append(userIDs, id)
	}
	return userIDs, rows.Err()
}

const clearPosAssignments = `
DELETE FROM user_pos WHERE pos_id = $1
`

func (q *Queries) ClearPosAssignments(ctx context.Context, posID uuid.UUID) error {
	_, err := q.db.Exec(ctx, clearPosAssignments, posID)
	return err
}

const assignUserToPos = `
INSERT INTO user_pos (user_id, pos_id)
VALUES ($1, $2)
ON CONFLICT DO NOTHING
`

type AssignUserToPosParams struct {
	UserID uuid.UUID
	PosID  uuid.UUID
}

func (q *Queries) AssignUserToPos(ctx context.Context, arg AssignUserToPosParams) error {
	_, err := q.db.Exec(ctx, assignUserToPos, arg.UserID, arg.PosID)
	return err
}

const listUserPos = `
SELECT p.id, p.name, l.name AS location_name, c.name AS city_name
FROM pos_terminals p
JOIN user_pos up ON p.id = up.pos_id
JOIN locations l ON p.location_id = l.id
JOIN cities c ON p.city_id = c.id
WHERE up.user_id = $1 AND p.status = 'active'
ORDER BY c.name, l.name, p.name
`

type ListUserPosRow struct {
	ID           uuid.UUID
	Name         string
	LocationName string
	CityName     string
}

// ListUserPos returns the active terminals assigned to a user, in the
// same city/location/terminal order the tracker uses.
func (q *Queries) ListUserPos(ctx context.Context, userID uuid.UUID) ([]ListUserPosRow, error) {
	rows, err := q.db.Query(ctx, listUserPos, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var terminals []ListUserPosRow
	for rows.Next() {
		var p ListUserPosRow
		if err := rows.Scan(&p.ID, &p.Name, &p.LocationName, &p.CityName); err != nil {
			return nil, err
		}
		terminals = append(terminals, p)
	}
	return terminals, rows.Err()
}

// ── Sales types ──

const listSalesTypes = `
SELECT id, name, attachment_applicable, attachment_required, status, created_at, updated_at
FROM sales_types
ORDER BY name
`

func (q *Queries) ListSalesTypes(ctx context.Context) ([]SalesType, error) {
	rows, err := q.db.Query(ctx, listSalesTypes)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var types []SalesType
	for rows.Next() {
		var st SalesType
		if err := rows.Scan(&st.ID, &st.Name, &st.AttachmentApplicable, &st.AttachmentRequired, &st.Status, &st.CreatedAt, &st.UpdatedAt); err != nil {
			return nil, err
		}
		types = append(types, st)
	}
	return types, rows.Err()
}

const listActiveSalesTypes = `
SELECT id, name, attachment_applicable, attachment_required, status, created_at, updated_at
FROM sales_types
WHERE status = 'active'
ORDER BY name
`

func (q *Queries) ListActiveSalesTypes(ctx context.Context) ([]SalesType, error) {
	rows, err := q.db.Query(ctx, listActiveSalesTypes)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var types []SalesType
	for rows.Next() {
		var st SalesType
		if err := rows.Scan(&st.ID, &st.Name, &st.AttachmentApplicable, &st.AttachmentRequired, &st.Status, &st.CreatedAt, &st.UpdatedAt); err != nil {
			return nil, err
		}
		types = append(types, st)
	}
	return types, rows.Err()
}

const createSalesType = `
INSERT INTO sales_types (name, attachment_applicable, attachment_required, status)
VALUES ($1, $2, $3, $4)
RETURNING id, name, attachment_applicable, attachment_required, status, created_at, updated_at
`

type CreateSalesTypeParams struct {
	Name                 string
	AttachmentApplicable bool
	AttachmentRequired   bool
	Status               string
}

func (q *Queries) CreateSalesType(ctx context.Context, arg CreateSalesTypeParams) (SalesType, error) {
	row := q.db.QueryRow(ctx, createSalesType, arg.Name, arg.AttachmentApplicable, arg.AttachmentRequired, arg.Status)
	var st SalesType
	err := row.Scan(&st.ID, &st.Name, &st.AttachmentApplicable, &st.AttachmentRequired, &st.Status, &st.CreatedAt, &st.UpdatedAt)
	return st, err
}

const updateSalesType = `
UPDATE sales_types
SET name = $2, attachment_applicable = $3, attachment_required = $4, status = $5, updated_at = now()
WHERE id = $1
RETURNING id, name, attachment_applicable, attachment_required, status, created_at, updated_at
`

type UpdateSalesTypeParams struct {
	ID                   uuid.UUID
	Name                 string
	AttachmentApplicable bool
	AttachmentRequired   bool
	Status               string
}

func (q *Queries) UpdateSalesType(ctx context.Context, arg UpdateSalesTypeParams) (SalesType, error) {
	row := q.db.QueryRow(ctx, updateSalesType, arg.ID, arg.Name, arg.AttachmentApplicable, arg.AttachmentRequired, arg.Status)
	var st SalesType
	err := row.Scan(&st.ID, &st.Name, &st.AttachmentApplicable, &st.AttachmentRequired, &st.Status, &st.CreatedAt, &st.UpdatedAt)
	return st, err
}

const deleteSalesType = `
DELETE FROM sales_types WHERE id = $1
`

func (q *Queries) DeleteSalesType(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, deleteSalesType, id)
	return err
}
