// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const eventColumns = `id, org_id, title, description, day_of_week, starts_on, ends_on, status, created_at, updated_at`

func scanEvent(row rowScanner) (Event, error) {
	var i Event
	err := row.Scan(
		&i.ID,
		&i.OrgID,
		&i.Title,
		&i.Description,
		&i.DayOfWeek,
		&i.StartsOn,
		&i.EndsOn,
		&i.Status,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createEvent = `-- name: CreateEvent :one
INSERT INTO events (org_id, title, description, day_of_week, starts_on, ends_on, status, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + eventColumns

type CreateEventParams struct {
	OrgID       int64          `json:"org_id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	DayOfWeek   sql.NullInt64  `json:"day_of_week"`
	StartsOn    sql.NullString `json:"starts_on"`
	EndsOn      sql.NullString `json:"ends_on"`
	Status      string         `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func (q *Queries) CreateEvent(ctx context.Context, arg CreateEventParams) (Event, error) {
	row := q.db.QueryRowContext(ctx, createEvent,
		arg.OrgID,
		arg.Title,
		arg.Description,
		arg.DayOfWeek,
		arg.StartsOn,
		arg.EndsOn,
		arg.Status,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return scanEvent(row)
}

const getEvent = `-- name: GetEvent :one
SELECT ` + eventColumns + ` FROM events WHERE id = ? AND org_id = ?`

func (q *Queries) GetEvent(ctx context.Context, id, orgID int64) (Event, error) {
	return scanEvent(q.db.QueryRowContext(ctx, getEvent, id, orgID))
}

const listEvents = `-- name: ListEvents :many
SELECT ` + eventColumns + ` FROM events WHERE org_id = ? ORDER BY title, id`

func (q *Queries) ListEvents(ctx context.Context, orgID int64) ([]Event, error) {
	return queryList(ctx, q.db, listEvents, scanEvent, orgID)
}

const updateEvent = `-- name: UpdateEvent :one
UPDATE events SET title = ?, description = ?, day_of_week = ?, starts_on = ?, ends_on = ?, status = ?, updated_at = ?
WHERE id = ? AND org_id = ?
RETURNING ` + eventColumns

type UpdateEventParams struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	DayOfWeek   sql.NullInt64  `json:"day_of_week"`
	StartsOn    sql.NullString `json:"starts_on"`
	EndsOn      sql.NullString `json:"ends_on"`
	Status      string         `json:"status"`
	UpdatedAt   time.Time      `json:"updated_at"`
	ID          int64          `json:"id"`
	OrgID       int64          `json:"org_id"`
}

func (q *Queries) UpdateEvent(ctx context.Context, arg UpdateEventParams) (Event, error) {
	row := q.db.QueryRowContext(ctx, updateEvent,
		arg.Title,
		arg.Description,
		arg.DayOfWeek,
		arg.StartsOn,
		arg.EndsOn,
		arg.Status,
		arg.UpdatedAt,
		arg.ID,
		arg.OrgID,
	)
	return scanEvent(row)
}

const deleteEvent = `-- name: DeleteEvent :execrows
DELETE FROM events WHERE id = ? AND org_id = ?`

func (q *Queries) DeleteEvent(ctx context.Context, id, orgID int64) (int64, error) {
	return execAffected(ctx, q.db, deleteEvent, id, orgID)
}

const eventInstanceColumns = `id, event_id, instance_date, status, created_at`

func scanEventInstance(row rowScanner) (EventInstance, error) {
	var i EventInstance
	err := row.Scan(&i.ID, &i.EventID, &i.InstanceDate, &i.Status, &i.CreatedAt)
	return i, err
}

const createEventInstance = `-- name: CreateEventInstance :one
INSERT INTO event_instances (event_id, instance_date, status, created_at)
VALUES (?, ?, ?, ?)
RETURNING ` + eventInstanceColumns

type CreateEventInstanceParams struct {
	EventID      int64     `json:"event_id"`
	InstanceDate string    `json:"instance_date"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

func (q *Queries) CreateEventInstance(ctx context.Context, arg CreateEventInstanceParams) (EventInstance, error) {
	row := q.db.QueryRowContext(ctx, createEventInstance, arg.EventID, arg.InstanceDate, arg.Status, arg.CreatedAt)
	return scanEventInstance(row)
}

const listEventInstances = `-- name: ListEventInstances :many
SELECT ` + eventInstanceColumns + ` FROM event_instances WHERE event_id = ? ORDER BY instance_date`

func (q *Queries) ListEventInstances(ctx context.Context, eventID int64) ([]EventInstance, error) {
	return queryList(ctx, q.db, listEventInstances, scanEventInstance, eventID)
}

const countUpcomingInstances = `-- name: CountUpcomingInstances :one
SELECT COUNT(*) FROM event_instances ei
JOIN events e ON e.id = ei.event_id
WHERE e.org_id = ? AND ei.instance_date >= ? AND ei.status != 'cancelled'`

func (q *Queries) CountUpcomingInstances(ctx context.Context, orgID int64, fromDate string) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countUpcomingInstances, orgID, fromDate).Scan(&count)
	return count, err
}
