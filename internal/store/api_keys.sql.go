// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const apiKeyColumns = `id, business_id, name, key_hash, key_prefix, is_active, expires_at, last_used_at, created_by, created_at`

func scanApiKey(row rowScanner) (ApiKey, error) {
	var i ApiKey
	err := row.Scan(
		&i.ID,
		&i.BusinessID,
		&i.Name,
		&i.KeyHash,
		&i.KeyPrefix,
		&i.IsActive,
		&i.ExpiresAt,
		&i.LastUsedAt,
		&i.CreatedBy,
		&i.CreatedAt,
	)
	return i, err
}

const createAPIKey = `-- name: CreateAPIKey :one
INSERT INTO api_keys (business_id, name, key_hash, key_prefix, is_active, expires_at, created_by, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + apiKeyColumns

type CreateAPIKeyParams struct {
	BusinessID int64         `json:"business_id"`
	Name       string        `json:"name"`
	KeyHash    string        `json:"key_hash"`
	KeyPrefix  string        `json:"key_prefix"`
	IsActive   bool          `json:"is_active"`
	ExpiresAt  sql.NullTime  `json:"expires_at"`
	CreatedBy  sql.NullInt64 `json:"created_by"`
	CreatedAt  time.Time     `json:"created_at"`
}

func (q *Queries) CreateAPIKey(ctx context.Context, arg CreateAPIKeyParams) (ApiKey, error) {
	row := q.db.QueryRowContext(ctx, createAPIKey,
		arg.BusinessID,
		arg.Name,
		arg.KeyHash,
		arg.KeyPrefix,
		arg.IsActive,
		arg.ExpiresAt,
		arg.CreatedBy,
		arg.CreatedAt,
	)
	return scanApiKey(row)
}

const getAPIKeyByHash = `-- name: GetAPIKeyByHash :one
SELECT ` + apiKeyColumns + ` FROM api_keys WHERE key_hash = ?`

func (q *Queries) GetAPIKeyByHash(ctx context.Context, keyHash string) (ApiKey, error) {
	return scanApiKey(q.db.QueryRowContext(ctx, getAPIKeyByHash, keyHash))
}

const listAPIKeys = `-- name: ListAPIKeys :many
SELECT ` + apiKeyColumns + ` FROM api_keys WHERE business_id = ? ORDER BY created_at DESC, id DESC`

func (q *Queries) ListAPIKeys(ctx context.Context, businessID int64) ([]ApiKey, error) {
	return queryList(ctx, q.db, listAPIKeys, scanApiKey, businessID)
}

const deleteAPIKey = `-- name: DeleteAPIKey :execrows
DELETE FROM api_keys WHERE id = ? AND business_id = ?`

func (q *Queries) DeleteAPIKey(ctx context.Context, id, businessID int64) (int64, error) {
	return execAffected(ctx, q.db, deleteAPIKey, id, businessID)
}

const updateAPIKeyLastUsed = `-- name: UpdateAPIKeyLastUsed :exec
UPDATE api_keys SET last_used_at = ? WHERE id = ?`

type UpdateAPIKeyLastUsedParams struct {
	LastUsedAt sql.NullTime `json:"last_used_at"`
	ID         int64        `json:"id"`
}

func (q *Queries) UpdateAPIKeyLastUsed(ctx context.Context, arg UpdateAPIKeyLastUsedParams) error {
	_, err := q.db.ExecContext(ctx, updateAPIKeyLastUsed, arg.LastUsedAt, arg.ID)
	return err
}
