// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service provides the business logic of agencyhub: the page and
// section publishing workflow, preview tokens, recurring events, menus and
// the activity log. Every operation is scoped to the business of its Actor.
package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/olegiv/agencyhub/internal/model"
	"github.com/olegiv/agencyhub/internal/store"
)

// DefaultActivityPageSize is used when List is called without a limit.
const DefaultActivityPageSize = 50

// ActivityEntry is one record for the activity log.
type ActivityEntry struct {
	Level     string
	Category  string
	Message   string
	UserID    *int64
	OrgID     *int64
	IPAddress string
	Metadata  map[string]any
}

// ActivityService records and lists audit entries.
type ActivityService struct {
	queries *store.Queries
	now     func() time.Time
}

// NewActivityService creates a new ActivityService.
func NewActivityService(db *sql.DB) *ActivityService {
	return &ActivityService{
		queries: store.New(db),
		now:     time.Now,
	}
}

// Log writes an entry to the activity log.
func (s *ActivityService) Log(ctx context.Context, e ActivityEntry) error {
	var userID, orgID sql.NullInt64
	if e.UserID != nil {
		userID = sql.NullInt64{Int64: *e.UserID, Valid: true}
	}
	if e.OrgID != nil {
		orgID = sql.NullInt64{Int64: *e.OrgID, Valid: true}
	}

	metadataJSON := "{}"
	if e.Metadata != nil {
		jsonBytes, err := json.Marshal(e.Metadata)
		if err == nil {
			metadataJSON = string(jsonBytes)
		}
	}
	if e.Level == "" {
		e.Level = model.ActivityLevelInfo
	}
	if e.Category == "" {
		e.Category = model.ActivityCategorySystem
	}

	_, err := s.queries.CreateActivityLog(ctx, store.CreateActivityLogParams{
		Level:     e.Level,
		Category:  e.Category,
		Message:   e.Message,
		UserID:    userID,
		OrgID:     orgID,
		Metadata:  metadataJSON,
		IpAddress: e.IPAddress,
		CreatedAt: stamp(s.now),
	})
	if err != nil {
		// The slog bridge writes through this service, so a failure here
		// must not go back through slog.
		log.Printf("Failed to write activity log: %v", err)
		return err
	}
	return nil
}

// LogAuthEvent logs an authentication event.
func (s *ActivityService) LogAuthEvent(ctx context.Context, level, message string, userID *int64, ipAddress string, metadata map[string]any) error {
	return s.Log(ctx, ActivityEntry{
		Level:     level,
		Category:  model.ActivityCategoryAuth,
		Message:   message,
		UserID:    userID,
		IPAddress: ipAddress,
		Metadata:  metadata,
	})
}

// List returns the newest entries of the actor's business.
func (s *ActivityService) List(ctx context.Context, actor Actor, limit, offset int64) ([]store.ActivityLog, error) {
	if err := actor.require(model.ActionAdmin); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 500 {
		limit = DefaultActivityPageSize
	}
	if offset < 0 {
		offset = 0
	}
	entries, err := s.queries.ListActivityLog(ctx, store.ListActivityLogParams{
		OrgID:  sql.NullInt64{Int64: actor.OrgID, Valid: true},
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, fmt.Errorf("listing activity log: %w", err)
	}
	return entries, nil
}

// Prune removes entries older than the given duration.
func (s *ActivityService) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := stamp(s.now).Add(-olderThan)
	n, err := s.queries.DeleteActivityLogBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning activity log: %w", err)
	}
	return n, nil
}
