// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const previewTokenColumns = `id, org_id, page_id, section_id, user_id, expires_at, created_at`

func scanPreviewToken(row rowScanner) (PreviewToken, error) {
	var i PreviewToken
	err := row.Scan(
		&i.ID,
		&i.OrgID,
		&i.PageID,
		&i.SectionID,
		&i.UserID,
		&i.ExpiresAt,
		&i.CreatedAt,
	)
	return i, err
}

const createPreviewToken = `-- name: CreatePreviewToken :one
INSERT INTO preview_tokens (id, org_id, page_id, section_id, user_id, expires_at, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
RETURNING ` + previewTokenColumns

type CreatePreviewTokenParams struct {
	ID        string        `json:"id"`
	OrgID     int64         `json:"org_id"`
	PageID    int64         `json:"page_id"`
	SectionID sql.NullInt64 `json:"section_id"`
	UserID    sql.NullInt64 `json:"user_id"`
	ExpiresAt time.Time     `json:"expires_at"`
	CreatedAt time.Time     `json:"created_at"`
}

func (q *Queries) CreatePreviewToken(ctx context.Context, arg CreatePreviewTokenParams) (PreviewToken, error) {
	row := q.db.QueryRowContext(ctx, createPreviewToken,
		arg.ID,
		arg.OrgID,
		arg.PageID,
		arg.SectionID,
		arg.UserID,
		arg.ExpiresAt,
		arg.CreatedAt,
	)
	return scanPreviewToken(row)
}

const getActivePreviewToken = `-- name: GetActivePreviewToken :one
SELECT ` + previewTokenColumns + ` FROM preview_tokens WHERE id = ? AND expires_at > ?`

func (q *Queries) GetActivePreviewToken(ctx context.Context, id string, now time.Time) (PreviewToken, error) {
	return scanPreviewToken(q.db.QueryRowContext(ctx, getActivePreviewToken, id, now))
}

const deleteExpiredPreviewTokens = `-- name: DeleteExpiredPreviewTokens :execrows
DELETE FROM preview_tokens WHERE expires_at <= ?`

func (q *Queries) DeleteExpiredPreviewTokens(ctx context.Context, now time.Time) (int64, error) {
	return execAffected(ctx, q.db, deleteExpiredPreviewTokens, now)
}
