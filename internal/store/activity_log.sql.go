// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const activityLogColumns = `id, level, category, message, user_id, org_id, metadata, ip_address, created_at`

func scanActivityLog(row rowScanner) (ActivityLog, error) {
	var i ActivityLog
	err := row.Scan(
		&i.ID,
		&i.Level,
		&i.Category,
		&i.Message,
		&i.UserID,
		&i.OrgID,
		&i.Metadata,
		&i.IpAddress,
		&i.CreatedAt,
	)
	return i, err
}

const createActivityLog = `-- name: CreateActivityLog :one
INSERT INTO activity_log (level, category, message, user_id, org_id, metadata, ip_address, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + activityLogColumns

type CreateActivityLogParams struct {
	Level     string        `json:"level"`
	Category  string        `json:"category"`
	Message   string        `json:"message"`
	UserID    sql.NullInt64 `json:"user_id"`
	OrgID     sql.NullInt64 `json:"org_id"`
	Metadata  string        `json:"metadata"`
	IpAddress string        `json:"ip_address"`
	CreatedAt time.Time     `json:"created_at"`
}

func (q *Queries) CreateActivityLog(ctx context.Context, arg CreateActivityLogParams) (ActivityLog, error) {
	row := q.db.QueryRowContext(ctx, createActivityLog,
		arg.Level,
		arg.Category,
		arg.Message,
		arg.UserID,
		arg.OrgID,
		arg.Metadata,
		arg.IpAddress,
		arg.CreatedAt,
	)
	return scanActivityLog(row)
}

const listActivityLog = `-- name: ListActivityLog :many
SELECT ` + activityLogColumns + ` FROM activity_log
WHERE (? IS NULL OR org_id = ?)
ORDER BY created_at DESC, id DESC
LIMIT ? OFFSET ?`

type ListActivityLogParams struct {
	OrgID  sql.NullInt64 `json:"org_id"`
	Limit  int64         `json:"limit"`
	Offset int64         `json:"offset"`
}

func (q *Queries) ListActivityLog(ctx context.Context, arg ListActivityLogParams) ([]ActivityLog, error) {
	return queryList(ctx, q.db, listActivityLog, scanActivityLog, arg.OrgID, arg.OrgID, arg.Limit, arg.Offset)
}

const deleteActivityLogBefore = `-- name: DeleteActivityLogBefore :execrows
DELETE FROM activity_log WHERE created_at < ?`

func (q *Queries) DeleteActivityLogBefore(ctx context.Context, before time.Time) (int64, error) {
	return execAffected(ctx, q.db, deleteActivityLogBefore, before)
}
