// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const webhookColumns = `id, org_id, name, url, secret, events, is_active, created_at, updated_at`

func scanWebhook(row rowScanner) (Webhook, error) {
	var i Webhook
	err := row.Scan(
		&i.ID,
		&i.OrgID,
		&i.Name,
		&i.Url,
		&i.Secret,
		&i.Events,
		&i.IsActive,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createWebhook = `-- name: CreateWebhook :one
INSERT INTO webhooks (org_id, name, url, secret, events, is_active, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + webhookColumns

type CreateWebhookParams struct {
	OrgID     int64     `json:"org_id"`
	Name      string    `json:"name"`
	Url       string    `json:"url"`
	Secret    string    `json:"secret"`
	Events    string    `json:"events"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (q *Queries) CreateWebhook(ctx context.Context, arg CreateWebhookParams) (Webhook, error) {
	row := q.db.QueryRowContext(ctx, createWebhook,
		arg.OrgID,
		arg.Name,
		arg.Url,
		arg.Secret,
		arg.Events,
		arg.IsActive,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return scanWebhook(row)
}

const listWebhooks = `-- name: ListWebhooks :many
SELECT ` + webhookColumns + ` FROM webhooks WHERE org_id = ? ORDER BY name, id`

func (q *Queries) ListWebhooks(ctx context.Context, orgID int64) ([]Webhook, error) {
	return queryList(ctx, q.db, listWebhooks, scanWebhook, orgID)
}

// The LIKE match is coarse; callers re-check the decoded event list.
const listWebhooksForEvent = `-- name: ListWebhooksForEvent :many
SELECT ` + webhookColumns + ` FROM webhooks
WHERE org_id = ? AND is_active = 1 AND events LIKE '%"' || ? || '"%'`

func (q *Queries) ListWebhooksForEvent(ctx context.Context, orgID int64, event string) ([]Webhook, error) {
	return queryList(ctx, q.db, listWebhooksForEvent, scanWebhook, orgID, event)
}

const getWebhookByID = `-- name: GetWebhookByID :one
SELECT ` + webhookColumns + ` FROM webhooks WHERE id = ?`

func (q *Queries) GetWebhookByID(ctx context.Context, id int64) (Webhook, error) {
	return scanWebhook(q.db.QueryRowContext(ctx, getWebhookByID, id))
}

const deleteWebhook = `-- name: DeleteWebhook :execrows
DELETE FROM webhooks WHERE id = ? AND org_id = ?`

func (q *Queries) DeleteWebhook(ctx context.Context, id, orgID int64) (int64, error) {
	return execAffected(ctx, q.db, deleteWebhook, id, orgID)
}

const deliveryColumns = `id, webhook_id, event, payload, status, attempts, response_code, response_body, last_error, next_retry_at, delivered_at, created_at, updated_at`

func scanWebhookDelivery(row rowScanner) (WebhookDelivery, error) {
	var i WebhookDelivery
	err := row.Scan(
		&i.ID,
		&i.WebhookID,
		&i.Event,
		&i.Payload,
		&i.Status,
		&i.Attempts,
		&i.ResponseCode,
		&i.ResponseBody,
		&i.LastError,
		&i.NextRetryAt,
		&i.DeliveredAt,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createWebhookDelivery = `-- name: CreateWebhookDelivery :one
INSERT INTO webhook_deliveries (webhook_id, event, payload, status, created_at, updated_at)
VALUES (?, ?, ?, 'pending', ?, ?)
RETURNING ` + deliveryColumns

type CreateWebhookDeliveryParams struct {
	WebhookID int64     `json:"webhook_id"`
	Event     string    `json:"event"`
	Payload   string    `json:"payload"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (q *Queries) CreateWebhookDelivery(ctx context.Context, arg CreateWebhookDeliveryParams) (WebhookDelivery, error) {
	row := q.db.QueryRowContext(ctx, createWebhookDelivery,
		arg.WebhookID,
		arg.Event,
		arg.Payload,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return scanWebhookDelivery(row)
}

const getWebhookDelivery = `-- name: GetWebhookDelivery :one
SELECT ` + deliveryColumns + ` FROM webhook_deliveries WHERE id = ?`

func (q *Queries) GetWebhookDelivery(ctx context.Context, id int64) (WebhookDelivery, error) {
	return scanWebhookDelivery(q.db.QueryRowContext(ctx, getWebhookDelivery, id))
}

const listDueDeliveries = `-- name: ListDueDeliveries :many
SELECT ` + deliveryColumns + ` FROM webhook_deliveries
WHERE status = 'pending' AND next_retry_at IS NOT NULL AND next_retry_at <= ?
ORDER BY next_retry_at
LIMIT ?`

func (q *Queries) ListDueDeliveries(ctx context.Context, now time.Time, limit int64) ([]WebhookDelivery, error) {
	return queryList(ctx, q.db, listDueDeliveries, scanWebhookDelivery, now, limit)
}

const updateDeliverySuccess = `-- name: UpdateDeliverySuccess :exec
UPDATE webhook_deliveries
SET status = 'delivered', attempts = attempts + 1, response_code = ?, response_body = ?,
    delivered_at = ?, next_retry_at = NULL, updated_at = ?
WHERE id = ?`

type UpdateDeliverySuccessParams struct {
	ResponseCode sql.NullInt64 `json:"response_code"`
	ResponseBody string        `json:"response_body"`
	DeliveredAt  sql.NullTime  `json:"delivered_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
	ID           int64         `json:"id"`
}

func (q *Queries) UpdateDeliverySuccess(ctx context.Context, arg UpdateDeliverySuccessParams) error {
	_, err := q.db.ExecContext(ctx, updateDeliverySuccess,
		arg.ResponseCode,
		arg.ResponseBody,
		arg.DeliveredAt,
		arg.UpdatedAt,
		arg.ID,
	)
	return err
}

const updateDeliveryRetry = `-- name: UpdateDeliveryRetry :exec
UPDATE webhook_deliveries
SET attempts = attempts + 1, response_code = ?, response_body = ?, last_error = ?,
    next_retry_at = ?, updated_at = ?
WHERE id = ?`

type UpdateDeliveryRetryParams struct {
	ResponseCode sql.NullInt64 `json:"response_code"`
	ResponseBody string        `json:"response_body"`
	LastError    string        `json:"last_error"`
	NextRetryAt  sql.NullTime  `json:"next_retry_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
	ID           int64         `json:"id"`
}

func (q *Queries) UpdateDeliveryRetry(ctx context.Context, arg UpdateDeliveryRetryParams) error {
	_, err := q.db.ExecContext(ctx, updateDeliveryRetry,
		arg.ResponseCode,
		arg.ResponseBody,
		arg.LastError,
		arg.NextRetryAt,
		arg.UpdatedAt,
		arg.ID,
	)
	return err
}

const updateDeliveryDead = `-- name: UpdateDeliveryDead :exec
UPDATE webhook_deliveries
SET status = 'dead', attempts = attempts + 1, last_error = ?, next_retry_at = NULL, updated_at = ?
WHERE id = ?`

type UpdateDeliveryDeadParams struct {
	LastError string    `json:"last_error"`
	UpdatedAt time.Time `json:"updated_at"`
	ID        int64     `json:"id"`
}

func (q *Queries) UpdateDeliveryDead(ctx context.Context, arg UpdateDeliveryDeadParams) error {
	_, err := q.db.ExecContext(ctx, updateDeliveryDead, arg.LastError, arg.UpdatedAt, arg.ID)
	return err
}

const scheduleDelivery = `-- name: ScheduleDelivery :exec
UPDATE webhook_deliveries SET next_retry_at = ?, updated_at = ? WHERE id = ? AND status = 'pending'`

func (q *Queries) ScheduleDelivery(ctx context.Context, id int64, at time.Time) error {
	_, err := q.db.ExecContext(ctx, scheduleDelivery, at, at, id)
	return err
}

const listDeliveries = `-- name: ListDeliveries :many
SELECT d.id, d.webhook_id, d.event, d.payload, d.status, d.attempts, d.response_code, d.response_body,
       d.last_error, d.next_retry_at, d.delivered_at, d.created_at, d.updated_at
FROM webhook_deliveries d JOIN webhooks w ON w.id = d.webhook_id
WHERE d.webhook_id = ? AND w.org_id = ?
ORDER BY d.id DESC
LIMIT ?`

func (q *Queries) ListDeliveries(ctx context.Context, webhookID, orgID, limit int64) ([]WebhookDelivery, error) {
	return queryList(ctx, q.db, listDeliveries, scanWebhookDelivery, webhookID, orgID, limit)
}
