// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

const pageColumns = `id, org_id, name, slug, template, status, published_at, created_at, updated_at`

func scanPage(row rowScanner) (Page, error) {
	var i Page
	err := row.Scan(
		&i.ID,
		&i.OrgID,
		&i.Name,
		&i.Slug,
		&i.Template,
		&i.Status,
		&i.PublishedAt,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createPage = `-- name: CreatePage :one
INSERT INTO pages (org_id, name, slug, template, status, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
RETURNING ` + pageColumns

type CreatePageParams struct {
	OrgID     int64     `json:"org_id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Template  string    `json:"template"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (q *Queries) CreatePage(ctx context.Context, arg CreatePageParams) (Page, error) {
	row := q.db.QueryRowContext(ctx, createPage,
		arg.OrgID,
		arg.Name,
		arg.Slug,
		arg.Template,
		arg.Status,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return scanPage(row)
}

const getPage = `-- name: GetPage :one
SELECT ` + pageColumns + ` FROM pages WHERE id = ? AND org_id = ?`

func (q *Queries) GetPage(ctx context.Context, id, orgID int64) (Page, error) {
	return scanPage(q.db.QueryRowContext(ctx, getPage, id, orgID))
}

const getPageBySlug = `-- name: GetPageBySlug :one
SELECT ` + pageColumns + ` FROM pages WHERE org_id = ? AND slug = ?`

func (q *Queries) GetPageBySlug(ctx context.Context, orgID int64, slug string) (Page, error) {
	return scanPage(q.db.QueryRowContext(ctx, getPageBySlug, orgID, slug))
}

const listPages = `-- name: ListPages :many
SELECT ` + pageColumns + ` FROM pages WHERE org_id = ? ORDER BY name, id`

func (q *Queries) ListPages(ctx context.Context, orgID int64) ([]Page, error) {
	return queryList(ctx, q.db, listPages, scanPage, orgID)
}

const updatePage = `-- name: UpdatePage :one
UPDATE pages SET name = ?, slug = ?, template = ?, status = ?, updated_at = ?
WHERE id = ? AND org_id = ?
RETURNING ` + pageColumns

type UpdatePageParams struct {
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Template  string    `json:"template"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
	ID        int64     `json:"id"`
	OrgID     int64     `json:"org_id"`
}

func (q *Queries) UpdatePage(ctx context.Context, arg UpdatePageParams) (Page, error) {
	row := q.db.QueryRowContext(ctx, updatePage,
		arg.Name,
		arg.Slug,
		arg.Template,
		arg.Status,
		arg.UpdatedAt,
		arg.ID,
		arg.OrgID,
	)
	return scanPage(row)
}

const updatePageStatus = `-- name: UpdatePageStatus :exec
UPDATE pages SET status = ?, updated_at = ? WHERE id = ?`

type UpdatePageStatusParams struct {
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
	ID        int64     `json:"id"`
}

func (q *Queries) UpdatePageStatus(ctx context.Context, arg UpdatePageStatusParams) error {
	_, err := q.db.ExecContext(ctx, updatePageStatus, arg.Status, arg.UpdatedAt, arg.ID)
	return err
}

const markPagePublished = `-- name: MarkPagePublished :exec
UPDATE pages
SET published_at = CASE WHEN status = 'published' AND published_at IS NOT NULL THEN published_at ELSE ? END,
    status = 'published', updated_at = ?
WHERE id = ?`

type MarkPagePublishedParams struct {
	PublishedAt time.Time `json:"published_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	ID          int64     `json:"id"`
}

func (q *Queries) MarkPagePublished(ctx context.Context, arg MarkPagePublishedParams) error {
	_, err := q.db.ExecContext(ctx, markPagePublished, arg.PublishedAt, arg.UpdatedAt, arg.ID)
	return err
}

const deletePage = `-- name: DeletePage :execrows
DELETE FROM pages WHERE id = ? AND org_id = ?`

func (q *Queries) DeletePage(ctx context.Context, id, orgID int64) (int64, error) {
	return execAffected(ctx, q.db, deletePage, id, orgID)
}

const countPagesByStatus = `-- name: CountPagesByStatus :many
SELECT status, COUNT(*) FROM pages WHERE org_id = ? GROUP BY status`

type CountPagesByStatusRow struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

func (q *Queries) CountPagesByStatus(ctx context.Context, orgID int64) ([]CountPagesByStatusRow, error) {
	return queryList(ctx, q.db, countPagesByStatus, func(row rowScanner) (CountPagesByStatusRow, error) {
		var i CountPagesByStatusRow
		err := row.Scan(&i.Status, &i.Count)
		return i, err
	}, orgID)
}
