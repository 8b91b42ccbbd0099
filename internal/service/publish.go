// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/olegiv/agencyhub/internal/content"
	"github.com/olegiv/agencyhub/internal/model"
	"github.com/olegiv/agencyhub/internal/store"
)

// UpdateSectionDraft stores new draft content for a section. The section is
// dirty unless the draft equals its published snapshot; a dirty section
// makes its page dirty. With expectedVersion set the write fails with
// ErrConflict when the stored version differs.
func (s *PageService) UpdateSectionDraft(ctx context.Context, actor Actor, sectionID int64, raw json.RawMessage, expectedVersion *int64) (store.PageSection, error) {
	if err := actor.require(model.ActionWrite); err != nil {
		return store.PageSection{}, err
	}
	draft, err := content.Normalize(raw)
	if err != nil {
		return store.PageSection{}, fieldError("content", "must be valid JSON")
	}

	sec, err := s.queries.GetSection(ctx, sectionID, actor.OrgID)
	if err != nil {
		return store.PageSection{}, notFoundOr(err, "section")
	}
	if expectedVersion != nil && *expectedVersion != sec.Version {
		return store.PageSection{}, ErrConflict
	}

	status := model.SectionStatusDirty
	if sec.PublishedContent.Valid {
		same, err := content.Equal([]byte(draft), []byte(sec.PublishedContent.String))
		if err != nil {
			return store.PageSection{}, fmt.Errorf("comparing section content: %w", err)
		}
		if same {
			status = model.SectionStatusPublished
		}
	}

	var expected sql.NullInt64
	if expectedVersion != nil {
		expected = sql.NullInt64{Int64: *expectedVersion, Valid: true}
	}
	updated, err := s.queries.UpdateSectionDraft(ctx, store.UpdateSectionDraftParams{
		DraftContent:    draft,
		Status:          status,
		UpdatedAt:       s.timestamp(),
		ID:              sec.ID,
		ExpectedVersion: expected,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) && expected.Valid {
			return store.PageSection{}, ErrConflict
		}
		return store.PageSection{}, notFoundOr(err, "section")
	}

	if status == model.SectionStatusDirty {
		if err := s.setPageStatus(ctx, sec.PageID, model.PageStatusDirty); err != nil {
			return store.PageSection{}, err
		}
	}
	return updated, nil
}

// PublishSection copies a section's draft into its published snapshot and
// marks the page published once no section is left dirty.
func (s *PageService) PublishSection(ctx context.Context, actor Actor, sectionID int64) (store.PageSection, error) {
	if err := actor.require(model.ActionPublish); err != nil {
		return store.PageSection{}, err
	}
	sec, err := s.queries.GetSection(ctx, sectionID, actor.OrgID)
	if err != nil {
		return store.PageSection{}, notFoundOr(err, "section")
	}
	published, err := s.publishOne(ctx, sec.ID, s.timestamp())
	if err != nil {
		return store.PageSection{}, notFoundOr(err, "section")
	}
	if err := s.recomputePageStatus(ctx, sec.PageID); err != nil {
		return store.PageSection{}, err
	}

	s.invalidatePage(ctx, actor.OrgID, sec.PageID)
	s.dispatch(ctx, actor.OrgID, model.EventSectionPublished, map[string]any{
		"section_id": published.ID,
		"page_id":    published.PageID,
		"key":        published.Key,
		"version":    published.Version,
	})
	s.logger.Info("section published", "section_id", published.ID, "page_id", published.PageID, "org_id", actor.OrgID)
	return published, nil
}

// PublishAllSectionsForPage publishes every dirty section of a page. Each
// section is published on its own; a failure is recorded in the result and
// the rest carry on. The page ends published, or dirty in strict mode when
// anything failed.
func (s *PageService) PublishAllSectionsForPage(ctx context.Context, actor Actor, pageID int64) (BatchResult, error) {
	result := newBatchResult()
	if err := actor.require(model.ActionPublish); err != nil {
		return result, err
	}
	page, err := s.queries.GetPage(ctx, pageID, actor.OrgID)
	if err != nil {
		return result, notFoundOr(err, "page")
	}
	dirty, err := s.queries.ListDirtySectionsByPage(ctx, page.ID)
	if err != nil {
		return result, fmt.Errorf("listing dirty sections: %w", err)
	}

	for _, sec := range dirty {
		if _, err := s.publishOne(ctx, sec.ID, s.timestamp()); err != nil {
			s.logger.Warn("failed to publish section",
				"section_id", sec.ID, "page_id", page.ID, "org_id", actor.OrgID, "error", err)
			result.Failed = append(result.Failed, BatchFailure{ID: sec.ID, Key: sec.Key, Err: err})
			continue
		}
		result.Succeeded = append(result.Succeeded, sec.ID)
	}

	if s.strict && !result.OK() {
		if err := s.setPageStatus(ctx, page.ID, model.PageStatusDirty); err != nil {
			return result, err
		}
	} else {
		if err := s.markPublished(ctx, page.ID); err != nil {
			return result, err
		}
	}

	s.invalidate(ctx, actor.OrgID, page.Slug)
	s.dispatch(ctx, actor.OrgID, model.EventPagePublished, map[string]any{
		"page_id":   page.ID,
		"slug":      page.Slug,
		"published": result.Succeeded,
		"failed":    len(result.Failed),
	})
	s.logger.Info("page published",
		"page_id", page.ID, "org_id", actor.OrgID,
		"published", len(result.Succeeded), "failed", len(result.Failed))
	return result, nil
}

// DiscardSectionChanges resets a section's draft to its published
// snapshot. A section that was never published discards to JSON null.
func (s *PageService) DiscardSectionChanges(ctx context.Context, actor Actor, sectionID int64) (store.PageSection, error) {
	if err := actor.require(model.ActionWrite); err != nil {
		return store.PageSection{}, err
	}
	sec, err := s.queries.GetSection(ctx, sectionID, actor.OrgID)
	if err != nil {
		return store.PageSection{}, notFoundOr(err, "section")
	}
	discarded, err := s.queries.DiscardSection(ctx, sec.ID, s.timestamp())
	if err != nil {
		return store.PageSection{}, notFoundOr(err, "section")
	}
	if err := s.recomputePageStatus(ctx, sec.PageID); err != nil {
		return store.PageSection{}, err
	}

	s.invalidatePage(ctx, actor.OrgID, sec.PageID)
	s.dispatch(ctx, actor.OrgID, model.EventSectionDiscarded, map[string]any{
		"section_id": discarded.ID,
		"page_id":    discarded.PageID,
		"key":        discarded.Key,
	})
	return discarded, nil
}

// recomputePageStatus promotes the page to published when every section is
// published. It never demotes.
func (s *PageService) recomputePageStatus(ctx context.Context, pageID int64) error {
	remaining, err := s.queries.CountUnpublishedSections(ctx, pageID)
	if err != nil {
		return fmt.Errorf("counting unpublished sections: %w", err)
	}
	if remaining > 0 {
		return nil
	}
	return s.markPublished(ctx, pageID)
}

func (s *PageService) markPublished(ctx context.Context, pageID int64) error {
	now := s.timestamp()
	if err := s.queries.MarkPagePublished(ctx, store.MarkPagePublishedParams{
		PublishedAt: now,
		UpdatedAt:   now,
		ID:          pageID,
	}); err != nil {
		return fmt.Errorf("marking page published: %w", err)
	}
	return nil
}

func (s *PageService) dispatch(ctx context.Context, orgID int64, event string, data any) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.DispatchEvent(ctx, orgID, event, data); err != nil {
		s.logger.Error("failed to dispatch webhook event", "event", event, "org_id", orgID, "error", err)
	}
}
