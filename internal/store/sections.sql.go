// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const sectionColumns = `id, page_id, org_id, key, label, component, position, draft_content, published_content, status, version, created_at, updated_at`

func scanPageSection(row rowScanner) (PageSection, error) {
	var i PageSection
	err := row.Scan(
		&i.ID,
		&i.PageID,
		&i.OrgID,
		&i.Key,
		&i.Label,
		&i.Component,
		&i.Position,
		&i.DraftContent,
		&i.PublishedContent,
		&i.Status,
		&i.Version,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createSection = `-- name: CreateSection :one
INSERT INTO page_sections_v2 (page_id, org_id, key, label, component, position, draft_content, status, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + sectionColumns

type CreateSectionParams struct {
	PageID       int64     `json:"page_id"`
	OrgID        int64     `json:"org_id"`
	Key          string    `json:"key"`
	Label        string    `json:"label"`
	Component    string    `json:"component"`
	Position     int64     `json:"position"`
	DraftContent string    `json:"draft_content"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (q *Queries) CreateSection(ctx context.Context, arg CreateSectionParams) (PageSection, error) {
	row := q.db.QueryRowContext(ctx, createSection,
		arg.PageID,
		arg.OrgID,
		arg.Key,
		arg.Label,
		arg.Component,
		arg.Position,
		arg.DraftContent,
		arg.Status,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return scanPageSection(row)
}

const getSection = `-- name: GetSection :one
SELECT ` + sectionColumns + ` FROM page_sections_v2 WHERE id = ? AND org_id = ?`

func (q *Queries) GetSection(ctx context.Context, id, orgID int64) (PageSection, error) {
	return scanPageSection(q.db.QueryRowContext(ctx, getSection, id, orgID))
}

const listSectionsByPage = `-- name: ListSectionsByPage :many
SELECT ` + sectionColumns + ` FROM page_sections_v2 WHERE page_id = ? ORDER BY position, id`

func (q *Queries) ListSectionsByPage(ctx context.Context, pageID int64) ([]PageSection, error) {
	return queryList(ctx, q.db, listSectionsByPage, scanPageSection, pageID)
}

const listDirtySectionsByPage = `-- name: ListDirtySectionsByPage :many
SELECT ` + sectionColumns + ` FROM page_sections_v2 WHERE page_id = ? AND status = 'dirty' ORDER BY position, id`

func (q *Queries) ListDirtySectionsByPage(ctx context.Context, pageID int64) ([]PageSection, error) {
	return queryList(ctx, q.db, listDirtySectionsByPage, scanPageSection, pageID)
}

const countUnpublishedSections = `-- name: CountUnpublishedSections :one
SELECT COUNT(*) FROM page_sections_v2 WHERE page_id = ? AND status != 'published'`

func (q *Queries) CountUnpublishedSections(ctx context.Context, pageID int64) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countUnpublishedSections, pageID).Scan(&count)
	return count, err
}

const countDirtySectionsForOrg = `-- name: CountDirtySectionsForOrg :one
SELECT COUNT(*) FROM page_sections_v2 WHERE org_id = ? AND status = 'dirty'`

func (q *Queries) CountDirtySectionsForOrg(ctx context.Context, orgID int64) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countDirtySectionsForOrg, orgID).Scan(&count)
	return count, err
}

// ExpectedVersion, when valid, turns the write into a compare-and-set:
// no row matches if the stored version moved on.
const updateSectionDraft = `-- name: UpdateSectionDraft :one
UPDATE page_sections_v2
SET draft_content = ?, status = ?, version = version + 1, updated_at = ?
WHERE id = ? AND (? IS NULL OR version = ?)
RETURNING ` + sectionColumns

type UpdateSectionDraftParams struct {
	DraftContent    string        `json:"draft_content"`
	Status          string        `json:"status"`
	UpdatedAt       time.Time     `json:"updated_at"`
	ID              int64         `json:"id"`
	ExpectedVersion sql.NullInt64 `json:"expected_version"`
}

func (q *Queries) UpdateSectionDraft(ctx context.Context, arg UpdateSectionDraftParams) (PageSection, error) {
	row := q.db.QueryRowContext(ctx, updateSectionDraft,
		arg.DraftContent,
		arg.Status,
		arg.UpdatedAt,
		arg.ID,
		arg.ExpectedVersion,
		arg.ExpectedVersion,
	)
	return scanPageSection(row)
}

const publishSection = `-- name: PublishSection :one
UPDATE page_sections_v2
SET published_content = draft_content, status = 'published', version = version + 1, updated_at = ?
WHERE id = ?
RETURNING ` + sectionColumns

func (q *Queries) PublishSection(ctx context.Context, id int64, updatedAt time.Time) (PageSection, error) {
	return scanPageSection(q.db.QueryRowContext(ctx, publishSection, updatedAt, id))
}

const discardSection = `-- name: DiscardSection :one
UPDATE page_sections_v2
SET draft_content = COALESCE(published_content, 'null'),
    published_content = COALESCE(published_content, 'null'),
    status = 'published', version = version + 1, updated_at = ?
WHERE id = ?
RETURNING ` + sectionColumns

func (q *Queries) DiscardSection(ctx context.Context, id int64, updatedAt time.Time) (PageSection, error) {
	return scanPageSection(q.db.QueryRowContext(ctx, discardSection, updatedAt, id))
}

const updateSectionMeta = `-- name: UpdateSectionMeta :one
UPDATE page_sections_v2 SET label = ?, component = ?, position = ?, version = version + 1, updated_at = ?
WHERE id = ? AND org_id = ?
RETURNING ` + sectionColumns

type UpdateSectionMetaParams struct {
	Label     string    `json:"label"`
	Component string    `json:"component"`
	Position  int64     `json:"position"`
	UpdatedAt time.Time `json:"updated_at"`
	ID        int64     `json:"id"`
	OrgID     int64     `json:"org_id"`
}

func (q *Queries) UpdateSectionMeta(ctx context.Context, arg UpdateSectionMetaParams) (PageSection, error) {
	row := q.db.QueryRowContext(ctx, updateSectionMeta,
		arg.Label,
		arg.Component,
		arg.Position,
		arg.UpdatedAt,
		arg.ID,
		arg.OrgID,
	)
	return scanPageSection(row)
}

const deleteSection = `-- name: DeleteSection :execrows
DELETE FROM page_sections_v2 WHERE id = ? AND org_id = ?`

func (q *Queries) DeleteSection(ctx context.Context, id, orgID int64) (int64, error) {
	return execAffected(ctx, q.db, deleteSection, id, orgID)
}
