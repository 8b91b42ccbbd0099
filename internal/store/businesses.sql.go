// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

const businessColumns = `id, name, slug, created_at, updated_at`

func scanBusiness(row rowScanner) (Business, error) {
	var i Business
	err := row.Scan(&i.ID, &i.Name, &i.Slug, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const createBusiness = `-- name: CreateBusiness :one
INSERT INTO businesses (name, slug, created_at, updated_at)
VALUES (?, ?, ?, ?)
RETURNING ` + businessColumns

type CreateBusinessParams struct {
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (q *Queries) CreateBusiness(ctx context.Context, arg CreateBusinessParams) (Business, error) {
	row := q.db.QueryRowContext(ctx, createBusiness, arg.Name, arg.Slug, arg.CreatedAt, arg.UpdatedAt)
	return scanBusiness(row)
}

const getBusinessByID = `-- name: GetBusinessByID :one
SELECT ` + businessColumns + ` FROM businesses WHERE id = ?`

func (q *Queries) GetBusinessByID(ctx context.Context, id int64) (Business, error) {
	return scanBusiness(q.db.QueryRowContext(ctx, getBusinessByID, id))
}

const getBusinessBySlug = `-- name: GetBusinessBySlug :one
SELECT ` + businessColumns + ` FROM businesses WHERE slug = ?`

func (q *Queries) GetBusinessBySlug(ctx context.Context, slug string) (Business, error) {
	return scanBusiness(q.db.QueryRowContext(ctx, getBusinessBySlug, slug))
}

const listBusinessesForUser = `-- name: ListBusinessesForUser :many
SELECT b.id, b.name, b.slug, b.created_at, b.updated_at
FROM businesses b
JOIN memberships m ON m.business_id = b.id
WHERE m.user_id = ?
ORDER BY b.name`

func (q *Queries) ListBusinessesForUser(ctx context.Context, userID int64) ([]Business, error) {
	return queryList(ctx, q.db, listBusinessesForUser, scanBusiness, userID)
}

const membershipColumns = `id, business_id, user_id, role, created_at`

func scanMembership(row rowScanner) (Membership, error) {
	var i Membership
	err := row.Scan(&i.ID, &i.BusinessID, &i.UserID, &i.Role, &i.CreatedAt)
	return i, err
}

const createMembership = `-- name: CreateMembership :one
INSERT INTO memberships (business_id, user_id, role, created_at)
VALUES (?, ?, ?, ?)
RETURNING ` + membershipColumns

type CreateMembershipParams struct {
	BusinessID int64     `json:"business_id"`
	UserID     int64     `json:"user_id"`
	Role       string    `json:"role"`
	CreatedAt  time.Time `json:"created_at"`
}

func (q *Queries) CreateMembership(ctx context.Context, arg CreateMembershipParams) (Membership, error) {
	row := q.db.QueryRowContext(ctx, createMembership, arg.BusinessID, arg.UserID, arg.Role, arg.CreatedAt)
	return scanMembership(row)
}

const getMembership = `-- name: GetMembership :one
SELECT ` + membershipColumns + ` FROM memberships WHERE business_id = ? AND user_id = ?`

type GetMembershipParams struct {
	BusinessID int64 `json:"business_id"`
	UserID     int64 `json:"user_id"`
}

func (q *Queries) GetMembership(ctx context.Context, arg GetMembershipParams) (Membership, error) {
	return scanMembership(q.db.QueryRowContext(ctx, getMembership, arg.BusinessID, arg.UserID))
}
