// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/olegiv/agencyhub/internal/model"
	"github.com/olegiv/agencyhub/internal/store"
)

// MaxPreviewTTL bounds the lifetime of a preview token.
const MaxPreviewTTL = 30 * 24 * time.Hour

// PreviewScope narrows ValidatePreviewToken. Zero or nil fields are not
// checked.
type PreviewScope struct {
	OrgID     int64
	PageID    int64
	SectionID *int64
}

// PreviewValidation is the outcome of ValidatePreviewToken.
type PreviewValidation struct {
	Valid bool                `json:"valid"`
	Token *store.PreviewToken `json:"token,omitempty"`
}

// CreatePreviewToken issues a token that unlocks the draft render of a page,
// optionally tied to one of its sections. A ttl of zero uses the service
// default.
func (s *PageService) CreatePreviewToken(ctx context.Context, actor Actor, pageID int64, sectionID *int64, ttl time.Duration) (store.PreviewToken, error) {
	if err := actor.require(model.ActionWrite); err != nil {
		return store.PreviewToken{}, err
	}
	if ttl < 0 {
		return store.PreviewToken{}, fieldError("ttl", "must not be negative")
	}
	if ttl > MaxPreviewTTL {
		return store.PreviewToken{}, fieldError("ttl", "must not exceed 30 days")
	}
	if ttl == 0 {
		ttl = s.previewTTL
	}
	page, err := s.queries.GetPage(ctx, pageID, actor.OrgID)
	if err != nil {
		return store.PreviewToken{}, notFoundOr(err, "page")
	}

	var section sql.NullInt64
	if sectionID != nil {
		sec, err := s.queries.GetSection(ctx, *sectionID, actor.OrgID)
		if err != nil {
			return store.PreviewToken{}, notFoundOr(err, "section")
		}
		if sec.PageID != page.ID {
			return store.PreviewToken{}, fieldError("section_id", "does not belong to the page")
		}
		section = sql.NullInt64{Int64: sec.ID, Valid: true}
	}

	now := s.timestamp()
	token, err := s.queries.CreatePreviewToken(ctx, store.CreatePreviewTokenParams{
		ID:        uuid.NewString(),
		OrgID:     actor.OrgID,
		PageID:    page.ID,
		SectionID: section,
		UserID:    actor.nullUserID(),
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	})
	if err != nil {
		return store.PreviewToken{}, fmt.Errorf("creating preview token: %w", err)
	}
	return token, nil
}

// ResolvePreviewToken returns the token when it exists and has not expired,
// and nil otherwise.
func (s *PageService) ResolvePreviewToken(ctx context.Context, tokenID string) (*store.PreviewToken, error) {
	if tokenID == "" {
		return nil, nil
	}
	token, err := s.queries.GetActivePreviewToken(ctx, tokenID, s.timestamp())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolving preview token: %w", err)
	}
	return &token, nil
}

// ValidatePreviewToken resolves a token and checks it against scope. Any
// scoped field that differs from the token makes it invalid.
func (s *PageService) ValidatePreviewToken(ctx context.Context, tokenID string, scope PreviewScope) (PreviewValidation, error) {
	token, err := s.ResolvePreviewToken(ctx, tokenID)
	if err != nil || token == nil {
		return PreviewValidation{}, err
	}
	if scope.OrgID != 0 && token.OrgID != scope.OrgID {
		return PreviewValidation{}, nil
	}
	if scope.PageID != 0 && token.PageID != scope.PageID {
		return PreviewValidation{}, nil
	}
	if scope.SectionID != nil && (!token.SectionID.Valid || token.SectionID.Int64 != *scope.SectionID) {
		return PreviewValidation{}, nil
	}
	return PreviewValidation{Valid: true, Token: token}, nil
}

// PurgeExpiredPreviewTokens deletes tokens past their expiry.
func (s *PageService) PurgeExpiredPreviewTokens(ctx context.Context) (int64, error) {
	n, err := s.queries.DeleteExpiredPreviewTokens(ctx, s.timestamp())
	if err != nil {
		return 0, fmt.Errorf("purging preview tokens: %w", err)
	}
	return n, nil
}
