// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"log/slog"
	"time"
)

// Default schedules of the maintenance jobs.
const (
	PurgePreviewTokensSchedule = "@every 1h"
	PruneActivitySchedule      = "30 3 * * *"
	RetryDeliveriesSchedule    = "* * * * *"

	DefaultActivityRetention = 90 * 24 * time.Hour
)

// PreviewTokenPurger deletes expired preview tokens.
type PreviewTokenPurger interface {
	PurgeExpiredPreviewTokens(ctx context.Context) (int64, error)
}

// ActivityPruner deletes old activity log entries.
type ActivityPruner interface {
	Prune(ctx context.Context, olderThan time.Duration) (int64, error)
}

// DeliveryRetrier re-sends webhook deliveries whose retry time has passed.
type DeliveryRetrier interface {
	RetryDue(ctx context.Context) (int, error)
}

// PurgePreviewTokensJob removes preview tokens past their expiry.
func PurgePreviewTokensJob(p PreviewTokenPurger, logger *slog.Logger) Job {
	return Job{
		Name:        "purge-preview-tokens",
		Description: "Delete expired preview tokens",
		Schedule:    PurgePreviewTokensSchedule,
		Run: func(ctx context.Context) error {
			n, err := p.PurgeExpiredPreviewTokens(ctx)
			if err != nil {
				return err
			}
			if n > 0 {
				logger.Info("purged expired preview tokens", "count", n)
			}
			return nil
		},
	}
}

// PruneActivityJob removes activity log entries older than retention.
func PruneActivityJob(p ActivityPruner, retention time.Duration, logger *slog.Logger) Job {
	if retention <= 0 {
		retention = DefaultActivityRetention
	}
	return Job{
		Name:        "prune-activity-log",
		Description: "Delete old activity log entries",
		Schedule:    PruneActivitySchedule,
		Run: func(ctx context.Context) error {
			n, err := p.Prune(ctx, retention)
			if err != nil {
				return err
			}
			if n > 0 {
				logger.Info("pruned activity log", "count", n, "retention", retention.String())
			}
			return nil
		},
	}
}

// RetryDeliveriesJob re-sends due webhook deliveries.
func RetryDeliveriesJob(r DeliveryRetrier) Job {
	return Job{
		Name:        "retry-webhook-deliveries",
		Description: "Re-send pending webhook deliveries whose backoff elapsed",
		Schedule:    RetryDeliveriesSchedule,
		Run: func(ctx context.Context) error {
			_, err := r.RetryDue(ctx)
			return err
		},
	}
}
