// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const menuColumns = `id, org_id, name, description, position, created_at, updated_at`

func scanMenu(row rowScanner) (Menu, error) {
	var i Menu
	err := row.Scan(&i.ID, &i.OrgID, &i.Name, &i.Description, &i.Position, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const createMenu = `-- name: CreateMenu :one
INSERT INTO menus (org_id, name, description, position, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING ` + menuColumns

type CreateMenuParams struct {
	OrgID       int64     `json:"org_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Position    int64     `json:"position"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (q *Queries) CreateMenu(ctx context.Context, arg CreateMenuParams) (Menu, error) {
	row := q.db.QueryRowContext(ctx, createMenu,
		arg.OrgID,
		arg.Name,
		arg.Description,
		arg.Position,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return scanMenu(row)
}

const getMenu = `-- name: GetMenu :one
SELECT ` + menuColumns + ` FROM menus WHERE id = ? AND org_id = ?`

func (q *Queries) GetMenu(ctx context.Context, id, orgID int64) (Menu, error) {
	return scanMenu(q.db.QueryRowContext(ctx, getMenu, id, orgID))
}

const listMenus = `-- name: ListMenus :many
SELECT ` + menuColumns + ` FROM menus WHERE org_id = ? ORDER BY position, id`

func (q *Queries) ListMenus(ctx context.Context, orgID int64) ([]Menu, error) {
	return queryList(ctx, q.db, listMenus, scanMenu, orgID)
}

const updateMenu = `-- name: UpdateMenu :one
UPDATE menus SET name = ?, description = ?, position = ?, updated_at = ?
WHERE id = ? AND org_id = ?
RETURNING ` + menuColumns

type UpdateMenuParams struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Position    int64     `json:"position"`
	UpdatedAt   time.Time `json:"updated_at"`
	ID          int64     `json:"id"`
	OrgID       int64     `json:"org_id"`
}

func (q *Queries) UpdateMenu(ctx context.Context, arg UpdateMenuParams) (Menu, error) {
	row := q.db.QueryRowContext(ctx, updateMenu,
		arg.Name,
		arg.Description,
		arg.Position,
		arg.UpdatedAt,
		arg.ID,
		arg.OrgID,
	)
	return scanMenu(row)
}

const deleteMenu = `-- name: DeleteMenu :execrows
DELETE FROM menus WHERE id = ? AND org_id = ?`

func (q *Queries) DeleteMenu(ctx context.Context, id, orgID int64) (int64, error) {
	return execAffected(ctx, q.db, deleteMenu, id, orgID)
}

const menuCategoryColumns = `id, menu_id, org_id, name, position`

func scanMenuCategory(row rowScanner) (MenuCategory, error) {
	var i MenuCategory
	err := row.Scan(&i.ID, &i.MenuID, &i.OrgID, &i.Name, &i.Position)
	return i, err
}

const createMenuCategory = `-- name: CreateMenuCategory :one
INSERT INTO menu_categories (menu_id, org_id, name, position)
VALUES (?, ?, ?, ?)
RETURNING ` + menuCategoryColumns

type CreateMenuCategoryParams struct {
	MenuID   int64  `json:"menu_id"`
	OrgID    int64  `json:"org_id"`
	Name     string `json:"name"`
	Position int64  `json:"position"`
}

func (q *Queries) CreateMenuCategory(ctx context.Context, arg CreateMenuCategoryParams) (MenuCategory, error) {
	row := q.db.QueryRowContext(ctx, createMenuCategory, arg.MenuID, arg.OrgID, arg.Name, arg.Position)
	return scanMenuCategory(row)
}

const getMenuCategory = `-- name: GetMenuCategory :one
SELECT ` + menuCategoryColumns + ` FROM menu_categories WHERE id = ? AND org_id = ?`

func (q *Queries) GetMenuCategory(ctx context.Context, id, orgID int64) (MenuCategory, error) {
	return scanMenuCategory(q.db.QueryRowContext(ctx, getMenuCategory, id, orgID))
}

const listMenuCategories = `-- name: ListMenuCategories :many
SELECT ` + menuCategoryColumns + ` FROM menu_categories WHERE menu_id = ? ORDER BY position, id`

func (q *Queries) ListMenuCategories(ctx context.Context, menuID int64) ([]MenuCategory, error) {
	return queryList(ctx, q.db, listMenuCategories, scanMenuCategory, menuID)
}

const deleteMenuCategory = `-- name: DeleteMenuCategory :execrows
DELETE FROM menu_categories WHERE id = ? AND org_id = ?`

func (q *Queries) DeleteMenuCategory(ctx context.Context, id, orgID int64) (int64, error) {
	return execAffected(ctx, q.db, deleteMenuCategory, id, orgID)
}

const menuItemColumns = `id, menu_id, category_id, org_id, name, description, price_cents, position, is_available`

func scanMenuItem(row rowScanner) (MenuItem, error) {
	var i MenuItem
	err := row.Scan(
		&i.ID,
		&i.MenuID,
		&i.CategoryID,
		&i.OrgID,
		&i.Name,
		&i.Description,
		&i.PriceCents,
		&i.Position,
		&i.IsAvailable,
	)
	return i, err
}

const createMenuItem = `-- name: CreateMenuItem :one
INSERT INTO menu_items (menu_id, category_id, org_id, name, description, price_cents, position, is_available)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + menuItemColumns

type CreateMenuItemParams struct {
	MenuID      int64         `json:"menu_id"`
	CategoryID  sql.NullInt64 `json:"category_id"`
	OrgID       int64         `json:"org_id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	PriceCents  int64         `json:"price_cents"`
	Position    int64         `json:"position"`
	IsAvailable bool          `json:"is_available"`
}

func (q *Queries) CreateMenuItem(ctx context.Context, arg CreateMenuItemParams) (MenuItem, error) {
	row := q.db.QueryRowContext(ctx, createMenuItem,
		arg.MenuID,
		arg.CategoryID,
		arg.OrgID,
		arg.Name,
		arg.Description,
		arg.PriceCents,
		arg.Position,
		arg.IsAvailable,
	)
	return scanMenuItem(row)
}

const getMenuItem = `-- name: GetMenuItem :one
SELECT ` + menuItemColumns + ` FROM menu_items WHERE id = ? AND org_id = ?`

func (q *Queries) GetMenuItem(ctx context.Context, id, orgID int64) (MenuItem, error) {
	return scanMenuItem(q.db.QueryRowContext(ctx, getMenuItem, id, orgID))
}

const listMenuItems = `-- name: ListMenuItems :many
SELECT ` + menuItemColumns + ` FROM menu_items WHERE menu_id = ? ORDER BY position, id`

func (q *Queries) ListMenuItems(ctx context.Context, menuID int64) ([]MenuItem, error) {
	return queryList(ctx, q.db, listMenuItems, scanMenuItem, menuID)
}

const updateMenuItem = `-- name: UpdateMenuItem :one
UPDATE menu_items SET category_id = ?, name = ?, description = ?, price_cents = ?, position = ?, is_available = ?
WHERE id = ? AND org_id = ?
RETURNING ` + menuItemColumns

type UpdateMenuItemParams struct {
	CategoryID  sql.NullInt64 `json:"category_id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	PriceCents  int64         `json:"price_cents"`
	Position    int64         `json:"position"`
	IsAvailable bool          `json:"is_available"`
	ID          int64         `json:"id"`
	OrgID       int64         `json:"org_id"`
}

func (q *Queries) UpdateMenuItem(ctx context.Context, arg UpdateMenuItemParams) (MenuItem, error) {
	row := q.db.QueryRowContext(ctx, updateMenuItem,
		arg.CategoryID,
		arg.Name,
		arg.Description,
		arg.PriceCents,
		arg.Position,
		arg.IsAvailable,
		arg.ID,
		arg.OrgID,
	)
	return scanMenuItem(row)
}

const deleteMenuItem = `-- name: DeleteMenuItem :execrows
DELETE FROM menu_items WHERE id = ? AND org_id = ?`

func (q *Queries) DeleteMenuItem(ctx context.Context, id, orgID int64) (int64, error) {
	return execAffected(ctx, q.db, deleteMenuItem, id, orgID)
}

const countMenuItemsForOrg = `-- name: CountMenuItemsForOrg :one
SELECT COUNT(*) FROM menu_items WHERE org_id = ?`

func (q *Queries) CountMenuItemsForOrg(ctx context.Context, orgID int64) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countMenuItemsForOrg, orgID).Scan(&count)
	return count, err
}
