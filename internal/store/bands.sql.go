// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

const bandColumns = `id, org_id, name, genre, website, created_at, updated_at`

func scanBand(row rowScanner) (Band, error) {
	var i Band
	err := row.Scan(&i.ID, &i.OrgID, &i.Name, &i.Genre, &i.Website, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const createBand = `-- name: CreateBand :one
INSERT INTO bands (org_id, name, genre, website, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING ` + bandColumns

type CreateBandParams struct {
	OrgID     int64     `json:"org_id"`
	Name      string    `json:"name"`
	Genre     string    `json:"genre"`
	Website   string    `json:"website"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (q *Queries) CreateBand(ctx context.Context, arg CreateBandParams) (Band, error) {
	row := q.db.QueryRowContext(ctx, createBand,
		arg.OrgID,
		arg.Name,
		arg.Genre,
		arg.Website,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return scanBand(row)
}

const getBand = `-- name: GetBand :one
SELECT ` + bandColumns + ` FROM bands WHERE id = ? AND org_id = ?`

func (q *Queries) GetBand(ctx context.Context, id, orgID int64) (Band, error) {
	return scanBand(q.db.QueryRowContext(ctx, getBand, id, orgID))
}

const listBands = `-- name: ListBands :many
SELECT ` + bandColumns + ` FROM bands WHERE org_id = ? ORDER BY name, id`

func (q *Queries) ListBands(ctx context.Context, orgID int64) ([]Band, error) {
	return queryList(ctx, q.db, listBands, scanBand, orgID)
}

const updateBand = `-- name: UpdateBand :one
UPDATE bands SET name = ?, genre = ?, website = ?, updated_at = ?
WHERE id = ? AND org_id = ?
RETURNING ` + bandColumns

type UpdateBandParams struct {
	Name      string    `json:"name"`
	Genre     string    `json:"genre"`
	Website   string    `json:"website"`
	UpdatedAt time.Time `json:"updated_at"`
	ID        int64     `json:"id"`
	OrgID     int64     `json:"org_id"`
}

func (q *Queries) UpdateBand(ctx context.Context, arg UpdateBandParams) (Band, error) {
	row := q.db.QueryRowContext(ctx, updateBand,
		arg.Name,
		arg.Genre,
		arg.Website,
		arg.UpdatedAt,
		arg.ID,
		arg.OrgID,
	)
	return scanBand(row)
}

const deleteBand = `-- name: DeleteBand :execrows
DELETE FROM bands WHERE id = ? AND org_id = ?`

func (q *Queries) DeleteBand(ctx context.Context, id, orgID int64) (int64, error) {
	return execAffected(ctx, q.db, deleteBand, id, orgID)
}
