// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/olegiv/agencyhub/internal/model"
	"github.com/olegiv/agencyhub/internal/store"
)

// BandService manages the bands booked by a business.
type BandService struct {
	queries *store.Queries
	logger  *slog.Logger
	now     func() time.Time
}

// NewBandService creates a BandService.
func NewBandService(db *sql.DB, logger *slog.Logger) *BandService {
	if logger == nil {
		logger = slog.Default()
	}
	return &BandService{queries: store.New(db), logger: logger, now: time.Now}
}

// BandInput holds the fields of a band.
type BandInput struct {
	Name    string
	Genre   string
	Website string
}

func (in BandInput) validate() error {
	v := validation{}
	if in.Name == "" {
		v.add("name", "is required")
	}
	if in.Website != "" {
		if u, err := url.Parse(in.Website); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			v.add("website", "must be an http or https URL")
		}
	}
	return v.err()
}

// CreateBand creates a band.
func (s *BandService) CreateBand(ctx context.Context, actor Actor, in BandInput) (store.Band, error) {
	if err := actor.require(model.ActionWrite); err != nil {
		return store.Band{}, err
	}
	if err := in.validate(); err != nil {
		return store.Band{}, err
	}
	now := stamp(s.now)
	band, err := s.queries.CreateBand(ctx, store.CreateBandParams{
		OrgID:     actor.OrgID,
		Name:      in.Name,
		Genre:     in.Genre,
		Website:   in.Website,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return store.Band{}, fmt.Errorf("creating band: %w", err)
	}
	return band, nil
}

// ListBands returns the actor's bands.
func (s *BandService) ListBands(ctx context.Context, actor Actor) ([]store.Band, error) {
	if err := actor.require(model.ActionRead); err != nil {
		return nil, err
	}
	bands, err := s.queries.ListBands(ctx, actor.OrgID)
	if err != nil {
		return nil, fmt.Errorf("listing bands: %w", err)
	}
	return bands, nil
}

// GetBand returns one band.
func (s *BandService) GetBand(ctx context.Context, actor Actor, bandID int64) (store.Band, error) {
	if err := actor.require(model.ActionRead); err != nil {
		return store.Band{}, err
	}
	band, err := s.queries.GetBand(ctx, bandID, actor.OrgID)
	if err != nil {
		return store.Band{}, notFoundOr(err, "band")
	}
	return band, nil
}

// UpdateBand replaces a band's fields.
func (s *BandService) UpdateBand(ctx context.Context, actor Actor, bandID int64, in BandInput) (store.Band, error) {
	if err := actor.require(model.ActionWrite); err != nil {
		return store.Band{}, err
	}
	if err := in.validate(); err != nil {
		return store.Band{}, err
	}
	band, err := s.queries.UpdateBand(ctx, store.UpdateBandParams{
		Name:      in.Name,
		Genre:     in.Genre,
		Website:   in.Website,
		UpdatedAt: stamp(s.now),
		ID:        bandID,
		OrgID:     actor.OrgID,
	})
	if err != nil {
		return store.Band{}, notFoundOr(err, "band")
	}
	return band, nil
}

// DeleteBand removes a band.
func (s *BandService) DeleteBand(ctx context.Context, actor Actor, bandID int64) error {
	if err := actor.require(model.ActionWrite); err != nil {
		return err
	}
	n, err := s.queries.DeleteBand(ctx, bandID, actor.OrgID)
	return deleted(n, err, "band")
}
