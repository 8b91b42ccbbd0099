// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/olegiv/agencyhub/internal/model"
	"github.com/olegiv/agencyhub/internal/store"
)

// Dashboard holds per-business counters.
type Dashboard struct {
	PagesByStatus     map[string]int64 `json:"pages_by_status"`
	DirtySections     int64            `json:"dirty_sections"`
	UpcomingInstances int64            `json:"upcoming_instances"`
	MenuItems         int64            `json:"menu_items"`
}

// DashboardService computes dashboard counters.
type DashboardService struct {
	queries *store.Queries
	now     func() time.Time
}

// NewDashboardService creates a DashboardService.
func NewDashboardService(db *sql.DB) *DashboardService {
	return &DashboardService{queries: store.New(db), now: time.Now}
}

// Get loads all counters for the actor's business concurrently.
func (s *DashboardService) Get(ctx context.Context, actor Actor) (*Dashboard, error) {
	if err := actor.require(model.ActionRead); err != nil {
		return nil, err
	}

	d := &Dashboard{PagesByStatus: map[string]int64{
		model.PageStatusDraft:     0,
		model.PageStatusDirty:     0,
		model.PageStatusPublished: 0,
	}}
	today := s.now().Format(DateLayout)

	g, gctx := errgroup.WithContext(ctx)
	var byStatus []store.CountPagesByStatusRow
	g.Go(func() error {
		var err error
		byStatus, err = s.queries.CountPagesByStatus(gctx, actor.OrgID)
		if err != nil {
			return fmt.Errorf("counting pages: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		d.DirtySections, err = s.queries.CountDirtySectionsForOrg(gctx, actor.OrgID)
		if err != nil {
			return fmt.Errorf("counting dirty sections: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		d.UpcomingInstances, err = s.queries.CountUpcomingInstances(gctx, actor.OrgID, today)
		if err != nil {
			return fmt.Errorf("counting upcoming instances: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		d.MenuItems, err = s.queries.CountMenuItemsForOrg(gctx, actor.OrgID)
		if err != nil {
			return fmt.Errorf("counting menu items: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for _, row := range byStatus {
		d.PagesByStatus[row.Status] = row.Count
	}
	return d, nil
}
