// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/olegiv/agencyhub/internal/content"
	"github.com/olegiv/agencyhub/internal/model"
	"github.com/olegiv/agencyhub/internal/store"
	"github.com/olegiv/agencyhub/internal/util"
)

// DefaultPreviewTTL is the lifetime of a preview token when none is given.
const DefaultPreviewTTL = 24 * time.Hour

// RenderCache stores rendered published pages. cache.Cacher satisfies it.
type RenderCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// EventDispatcher fans domain events out to subscribed webhooks.
type EventDispatcher interface {
	DispatchEvent(ctx context.Context, orgID int64, eventType string, data any) error
}

// PageService owns pages, their sections, the draft/publish workflow,
// preview tokens and page rendering.
type PageService struct {
	db         *sql.DB
	queries    *store.Queries
	logger     *slog.Logger
	cache      RenderCache
	cacheTTL   time.Duration
	dispatcher EventDispatcher
	strict     bool
	previewTTL time.Duration
	now        func() time.Time

	// publishOne promotes one section; swapped in tests to inject failures.
	publishOne func(ctx context.Context, id int64, at time.Time) (store.PageSection, error)
}

// PageOption configures a PageService.
type PageOption func(*PageService)

// WithRenderCache enables caching of published renders.
func WithRenderCache(c RenderCache, ttl time.Duration) PageOption {
	return func(s *PageService) {
		s.cache = c
		s.cacheTTL = ttl
	}
}

// WithDispatcher sets the webhook dispatcher.
func WithDispatcher(d EventDispatcher) PageOption {
	return func(s *PageService) { s.dispatcher = d }
}

// WithStrictPublish makes a page-wide publish leave the page dirty when any
// section failed to publish.
func WithStrictPublish(strict bool) PageOption {
	return func(s *PageService) { s.strict = strict }
}

// WithPreviewTTL overrides DefaultPreviewTTL.
func WithPreviewTTL(ttl time.Duration) PageOption {
	return func(s *PageService) {
		if ttl > 0 {
			s.previewTTL = ttl
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) PageOption {
	return func(s *PageService) { s.now = now }
}

// NewPageService creates a PageService.
func NewPageService(db *sql.DB, logger *slog.Logger, opts ...PageOption) *PageService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &PageService{
		db:         db,
		queries:    store.New(db),
		logger:     logger,
		previewTTL: DefaultPreviewTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.publishOne = s.queries.PublishSection
	return s
}

// timestamp is the write time stored on rows. Second precision in UTC keeps
// stored values lexically comparable.
func (s *PageService) timestamp() time.Time {
	return stamp(s.now)
}

// PageInput holds the fields of a new page.
type PageInput struct {
	Name     string
	Slug     string
	Template string
}

// PageUpdate holds optional page changes. Nil fields are left unchanged.
type PageUpdate struct {
	Name     *string
	Slug     *string
	Template *string
	Status   *string
}

// CreatePage creates a draft page. An empty slug is derived from the name.
func (s *PageService) CreatePage(ctx context.Context, actor Actor, in PageInput) (store.Page, error) {
	if err := actor.require(model.ActionWrite); err != nil {
		return store.Page{}, err
	}

	v := validation{}
	if in.Name == "" {
		v.add("name", "is required")
	}
	slug := in.Slug
	if slug == "" {
		slug = util.Slugify(in.Name)
	}
	if !util.IsValidSlug(slug) {
		v.add("slug", "must contain only lowercase letters, numbers and hyphens")
	}
	if err := v.err(); err != nil {
		return store.Page{}, err
	}
	if err := s.ensureSlugFree(ctx, actor.OrgID, slug, 0); err != nil {
		return store.Page{}, err
	}

	template := in.Template
	if template == "" {
		template = "default"
	}
	now := s.timestamp()
	page, err := s.queries.CreatePage(ctx, store.CreatePageParams{
		OrgID:     actor.OrgID,
		Name:      in.Name,
		Slug:      slug,
		Template:  template,
		Status:    model.PageStatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return store.Page{}, fmt.Errorf("creating page: %w", err)
	}
	s.logger.Info("page created", "page_id", page.ID, "org_id", actor.OrgID, "slug", slug)
	return page, nil
}

func (s *PageService) ensureSlugFree(ctx context.Context, orgID int64, slug string, exceptID int64) error {
	existing, err := s.queries.GetPageBySlug(ctx, orgID, slug)
	if err == nil && existing.ID != exceptID {
		return fieldError("slug", "is already in use")
	}
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("checking slug: %w", err)
	}
	return nil
}

// ListPages returns the actor's pages.
func (s *PageService) ListPages(ctx context.Context, actor Actor) ([]store.Page, error) {
	if err := actor.require(model.ActionRead); err != nil {
		return nil, err
	}
	pages, err := s.queries.ListPages(ctx, actor.OrgID)
	if err != nil {
		return nil, fmt.Errorf("listing pages: %w", err)
	}
	return pages, nil
}

// GetPage returns one page of the actor's business.
func (s *PageService) GetPage(ctx context.Context, actor Actor, pageID int64) (store.Page, error) {
	if err := actor.require(model.ActionRead); err != nil {
		return store.Page{}, err
	}
	page, err := s.queries.GetPage(ctx, pageID, actor.OrgID)
	if err != nil {
		return store.Page{}, notFoundOr(err, "page")
	}
	return page, nil
}

// UpdatePage applies a partial update. Changing the status directly needs
// the admin action.
func (s *PageService) UpdatePage(ctx context.Context, actor Actor, pageID int64, in PageUpdate) (store.Page, error) {
	if err := actor.require(model.ActionWrite); err != nil {
		return store.Page{}, err
	}
	page, err := s.queries.GetPage(ctx, pageID, actor.OrgID)
	if err != nil {
		return store.Page{}, notFoundOr(err, "page")
	}
	oldSlug, oldStatus := page.Slug, page.Status

	v := validation{}
	if in.Name != nil {
		if *in.Name == "" {
			v.add("name", "cannot be empty")
		}
		page.Name = *in.Name
	}
	if in.Slug != nil {
		if !util.IsValidSlug(*in.Slug) {
			v.add("slug", "must contain only lowercase letters, numbers and hyphens")
		}
		page.Slug = *in.Slug
	}
	if in.Template != nil && *in.Template != "" {
		page.Template = *in.Template
	}
	if in.Status != nil && *in.Status != page.Status {
		if !actor.Can(model.ActionAdmin) {
			return store.Page{}, ErrForbidden
		}
		if !model.ValidPageStatus(*in.Status) {
			v.add("status", "must be draft, dirty or published")
		}
		page.Status = *in.Status
	}
	if err := v.err(); err != nil {
		return store.Page{}, err
	}
	if page.Slug != oldSlug {
		if err := s.ensureSlugFree(ctx, actor.OrgID, page.Slug, page.ID); err != nil {
			return store.Page{}, err
		}
	}

	updated, err := s.queries.UpdatePage(ctx, store.UpdatePageParams{
		Name:      page.Name,
		Slug:      page.Slug,
		Template:  page.Template,
		Status:    page.Status,
		UpdatedAt: s.timestamp(),
		ID:        page.ID,
		OrgID:     actor.OrgID,
	})
	if err != nil {
		return store.Page{}, notFoundOr(err, "page")
	}
	if updated.Status == model.PageStatusPublished && oldStatus != model.PageStatusPublished {
		if err := s.markPublished(ctx, updated.ID); err != nil {
			return store.Page{}, err
		}
		if updated, err = s.queries.GetPage(ctx, updated.ID, actor.OrgID); err != nil {
			return store.Page{}, notFoundOr(err, "page")
		}
	}
	s.invalidate(ctx, actor.OrgID, oldSlug)
	if updated.Slug != oldSlug {
		s.invalidate(ctx, actor.OrgID, updated.Slug)
	}
	return updated, nil
}

// DeletePage removes a page and its sections.
func (s *PageService) DeletePage(ctx context.Context, actor Actor, pageID int64) error {
	if err := actor.require(model.ActionWrite); err != nil {
		return err
	}
	page, err := s.queries.GetPage(ctx, pageID, actor.OrgID)
	if err != nil {
		return notFoundOr(err, "page")
	}
	n, err := s.queries.DeletePage(ctx, pageID, actor.OrgID)
	if err := deleted(n, err, "page"); err != nil {
		return err
	}
	s.invalidate(ctx, actor.OrgID, page.Slug)
	s.logger.Info("page deleted", "page_id", pageID, "org_id", actor.OrgID)
	return nil
}

// SectionInput holds the fields of a new section.
type SectionInput struct {
	Key       string
	Label     string
	Component string
	Position  *int64
	Content   json.RawMessage
}

// SectionUpdate holds optional metadata changes for a section.
type SectionUpdate struct {
	Label     *string
	Component *string
	Position  *int64
}

// CreateSection adds a section to a page. The new section is dirty with no
// published snapshot, and a published page becomes dirty.
func (s *PageService) CreateSection(ctx context.Context, actor Actor, pageID int64, in SectionInput) (store.PageSection, error) {
	if err := actor.require(model.ActionWrite); err != nil {
		return store.PageSection{}, err
	}
	page, err := s.queries.GetPage(ctx, pageID, actor.OrgID)
	if err != nil {
		return store.PageSection{}, notFoundOr(err, "page")
	}

	v := validation{}
	if !util.IsValidSlug(in.Key) {
		v.add("key", "must contain only lowercase letters, numbers and hyphens")
	}
	draft, err := content.Normalize(in.Content)
	if err != nil {
		v.add("content", "must be valid JSON")
	}
	if err := v.err(); err != nil {
		return store.PageSection{}, err
	}

	existing, err := s.queries.ListSectionsByPage(ctx, page.ID)
	if err != nil {
		return store.PageSection{}, fmt.Errorf("listing sections: %w", err)
	}
	position := int64(len(existing))
	for _, sec := range existing {
		if sec.Key == in.Key {
			return store.PageSection{}, fieldError("key", "is already used on this page")
		}
	}
	if in.Position != nil {
		position = *in.Position
	}
	component := in.Component
	if component == "" {
		component = model.ComponentText
	}

	now := s.timestamp()
	sec, err := s.queries.CreateSection(ctx, store.CreateSectionParams{
		PageID:       page.ID,
		OrgID:        actor.OrgID,
		Key:          in.Key,
		Label:        in.Label,
		Component:    component,
		Position:     position,
		DraftContent: draft,
		Status:       model.SectionStatusDirty,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return store.PageSection{}, fmt.Errorf("creating section: %w", err)
	}

	if page.Status == model.PageStatusPublished {
		if err := s.setPageStatus(ctx, page.ID, model.PageStatusDirty); err != nil {
			return store.PageSection{}, err
		}
	}
	return sec, nil
}

// ListSections returns the sections of a page ordered by position.
func (s *PageService) ListSections(ctx context.Context, actor Actor, pageID int64) ([]store.PageSection, error) {
	if err := actor.require(model.ActionRead); err != nil {
		return nil, err
	}
	if _, err := s.queries.GetPage(ctx, pageID, actor.OrgID); err != nil {
		return nil, notFoundOr(err, "page")
	}
	sections, err := s.queries.ListSectionsByPage(ctx, pageID)
	if err != nil {
		return nil, fmt.Errorf("listing sections: %w", err)
	}
	return sections, nil
}

// GetSection returns one section of the actor's business.
func (s *PageService) GetSection(ctx context.Context, actor Actor, sectionID int64) (store.PageSection, error) {
	if err := actor.require(model.ActionRead); err != nil {
		return store.PageSection{}, err
	}
	sec, err := s.queries.GetSection(ctx, sectionID, actor.OrgID)
	if err != nil {
		return store.PageSection{}, notFoundOr(err, "section")
	}
	return sec, nil
}

// UpdateSection changes label, component or position. Content is only
// written through UpdateSectionDraft.
func (s *PageService) UpdateSection(ctx context.Context, actor Actor, sectionID int64, in SectionUpdate) (store.PageSection, error) {
	if err := actor.require(model.ActionWrite); err != nil {
		return store.PageSection{}, err
	}
	sec, err := s.queries.GetSection(ctx, sectionID, actor.OrgID)
	if err != nil {
		return store.PageSection{}, notFoundOr(err, "section")
	}
	if in.Label != nil {
		sec.Label = *in.Label
	}
	if in.Component != nil && *in.Component != "" {
		sec.Component = *in.Component
	}
	if in.Position != nil {
		sec.Position = *in.Position
	}
	updated, err := s.queries.UpdateSectionMeta(ctx, store.UpdateSectionMetaParams{
		Label:     sec.Label,
		Component: sec.Component,
		Position:  sec.Position,
		UpdatedAt: s.timestamp(),
		ID:        sec.ID,
		OrgID:     actor.OrgID,
	})
	if err != nil {
		return store.PageSection{}, notFoundOr(err, "section")
	}
	s.invalidatePage(ctx, actor.OrgID, sec.PageID)
	return updated, nil
}

// DeleteSection removes a section. The page status is left as it is.
func (s *PageService) DeleteSection(ctx context.Context, actor Actor, sectionID int64) error {
	if err := actor.require(model.ActionWrite); err != nil {
		return err
	}
	sec, err := s.queries.GetSection(ctx, sectionID, actor.OrgID)
	if err != nil {
		return notFoundOr(err, "section")
	}
	n, err := s.queries.DeleteSection(ctx, sectionID, actor.OrgID)
	if err := deleted(n, err, "section"); err != nil {
		return err
	}
	s.invalidatePage(ctx, actor.OrgID, sec.PageID)
	return nil
}

func (s *PageService) setPageStatus(ctx context.Context, pageID int64, status string) error {
	if err := s.queries.UpdatePageStatus(ctx, store.UpdatePageStatusParams{
		Status:    status,
		UpdatedAt: s.timestamp(),
		ID:        pageID,
	}); err != nil {
		return fmt.Errorf("setting page status: %w", err)
	}
	return nil
}
