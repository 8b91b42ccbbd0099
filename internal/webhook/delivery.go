// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package webhook

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/olegiv/agencyhub/internal/model"
	"github.com/olegiv/agencyhub/internal/store"
)

// Delivery configuration constants
const (
	MaxAttempts    = 5                // Maximum number of delivery attempts
	InitialBackoff = 1 * time.Minute  // Initial backoff delay
	MaxBackoff     = 24 * time.Hour   // Maximum backoff delay
	RequestTimeout = 30 * time.Second // HTTP request timeout
	MaxResponseLen = 10 * 1024        // Maximum response body to store (10KB)
	UserAgent      = "AgencyHub/1.0"
	retryBatchSize = 50
)

// Request headers set on every delivery.
const (
	HeaderSignature  = "X-Webhook-Signature"
	HeaderEvent      = "X-Webhook-Event"
	HeaderDeliveryID = "X-Webhook-Delivery-ID"
)

// DeliveryResult represents the result of a delivery attempt.
type DeliveryResult struct {
	Success      bool
	StatusCode   int
	ResponseBody string
	Error        error
	ShouldRetry  bool
}

// processDelivery attempts one delivery and records the outcome.
func (d *Dispatcher) processDelivery(ctx context.Context, delivery *QueuedDelivery) {
	record, err := d.queries.GetWebhookDelivery(ctx, delivery.DeliveryID)
	if err != nil {
		d.logger.Error("failed to get delivery record",
			"error", err,
			"delivery_id", delivery.DeliveryID)
		return
	}

	if record.Status != model.DeliveryStatusPending {
		d.logger.Debug("delivery already processed",
			"delivery_id", delivery.DeliveryID,
			"status", record.Status)
		return
	}

	result := d.attemptDelivery(ctx, delivery)
	now := d.timestamp()
	code := sql.NullInt64{Int64: int64(result.StatusCode), Valid: result.StatusCode > 0}

	if result.Success {
		err = d.queries.UpdateDeliverySuccess(ctx, store.UpdateDeliverySuccessParams{
			ResponseCode: code,
			ResponseBody: result.ResponseBody,
			DeliveredAt:  sql.NullTime{Time: now, Valid: true},
			UpdatedAt:    now,
			ID:           delivery.DeliveryID,
		})
		if err != nil {
			d.logger.Error("failed to update delivery success",
				"error", err,
				"delivery_id", delivery.DeliveryID)
		} else {
			d.logger.Info("webhook delivered",
				"delivery_id", delivery.DeliveryID,
				"webhook_id", delivery.WebhookID,
				"status_code", result.StatusCode)
		}
		return
	}

	errMsg := ""
	if result.Error != nil {
		errMsg = result.Error.Error()
	}
	attempts := record.Attempts + 1

	if !result.ShouldRetry || attempts >= MaxAttempts {
		err = d.queries.UpdateDeliveryDead(ctx, store.UpdateDeliveryDeadParams{
			LastError: errMsg,
			UpdatedAt: now,
			ID:        delivery.DeliveryID,
		})
		if err != nil {
			d.logger.Error("failed to update delivery as dead",
				"error", err,
				"delivery_id", delivery.DeliveryID)
		} else {
			d.logger.Warn("webhook delivery marked as dead",
				"delivery_id", delivery.DeliveryID,
				"webhook_id", delivery.WebhookID,
				"attempts", attempts,
				"reason", errMsg)
		}
		return
	}

	backoff := calculateBackoff(attempts)
	nextRetry := now.Add(backoff)
	err = d.queries.UpdateDeliveryRetry(ctx, store.UpdateDeliveryRetryParams{
		ResponseCode: code,
		ResponseBody: result.ResponseBody,
		LastError:    errMsg,
		NextRetryAt:  sql.NullTime{Time: nextRetry, Valid: true},
		UpdatedAt:    now,
		ID:           delivery.DeliveryID,
	})
	if err != nil {
		d.logger.Error("failed to schedule delivery retry",
			"error", err,
			"delivery_id", delivery.DeliveryID)
	} else {
		d.logger.Info("webhook delivery scheduled for retry",
			"delivery_id", delivery.DeliveryID,
			"webhook_id", delivery.WebhookID,
			"attempt", attempts,
			"next_retry_at", nextRetry.Format(time.RFC3339),
			"backoff", backoff.String())
	}
}

// attemptDelivery performs the signed HTTP POST.
func (d *Dispatcher) attemptDelivery(ctx context.Context, delivery *QueuedDelivery) DeliveryResult {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, delivery.URL, bytes.NewReader(delivery.Payload))
	if err != nil {
		return DeliveryResult{
			Error:       fmt.Errorf("failed to create request: %w", err),
			ShouldRetry: false,
		}
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set(HeaderSignature, GenerateSignature(delivery.Payload, delivery.Secret))
	req.Header.Set(HeaderEvent, delivery.Event)
	req.Header.Set(HeaderDeliveryID, strconv.FormatInt(delivery.DeliveryID, 10))

	resp, err := d.client.Do(req)
	if err != nil {
		return DeliveryResult{
			Error:       fmt.Errorf("request failed: %w", err),
			ShouldRetry: true,
		}
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, MaxResponseLen))
	responseBody := string(body)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return DeliveryResult{
			Success:      true,
			StatusCode:   resp.StatusCode,
			ResponseBody: responseBody,
		}
	}

	// 4xx is permanent except for timeouts and rate limiting.
	shouldRetry := true
	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		shouldRetry = resp.StatusCode == http.StatusRequestTimeout || resp.StatusCode == http.StatusTooManyRequests
	}
	return DeliveryResult{
		StatusCode:   resp.StatusCode,
		ResponseBody: responseBody,
		Error:        fmt.Errorf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
		ShouldRetry:  shouldRetry,
	}
}

// RetryDue sends every pending delivery whose retry time has passed and
// returns how many were attempted. It runs synchronously.
func (d *Dispatcher) RetryDue(ctx context.Context) (int, error) {
	due, err := d.queries.ListDueDeliveries(ctx, d.timestamp(), retryBatchSize)
	if err != nil {
		return 0, fmt.Errorf("listing due deliveries: %w", err)
	}

	attempted := 0
	for _, rec := range due {
		if err := ctx.Err(); err != nil {
			return attempted, err
		}

		wh, err := d.queries.GetWebhookByID(ctx, rec.WebhookID)
		if errors.Is(err, sql.ErrNoRows) || (err == nil && !wh.IsActive) {
			now := d.timestamp()
			if err := d.queries.UpdateDeliveryDead(ctx, store.UpdateDeliveryDeadParams{
				LastError: "webhook inactive or deleted",
				UpdatedAt: now,
				ID:        rec.ID,
			}); err != nil {
				d.logger.Error("failed to update delivery as dead", "error", err, "delivery_id", rec.ID)
			}
			continue
		}
		if err != nil {
			return attempted, fmt.Errorf("loading webhook %d: %w", rec.WebhookID, err)
		}

		d.processDelivery(ctx, &QueuedDelivery{
			DeliveryID: rec.ID,
			WebhookID:  wh.ID,
			Event:      rec.Event,
			Payload:    []byte(rec.Payload),
			URL:        wh.Url,
			Secret:     wh.Secret,
		})
		attempted++
	}

	if attempted > 0 {
		d.logger.Info("retried webhook deliveries", "count", attempted)
	}
	return attempted, nil
}

// calculateBackoff calculates the exponential backoff duration for a given attempt.
// Attempt 1 = 1 min, Attempt 2 = 2 min, Attempt 3 = 4 min, Attempt 4 = 8 min, etc.
func calculateBackoff(attempt int64) time.Duration {
	if attempt <= 0 {
		attempt = 1
	}

	backoff := time.Duration(float64(InitialBackoff) * math.Pow(2, float64(attempt-1)))
	if backoff > MaxBackoff {
		backoff = MaxBackoff
	}

	return backoff
}
