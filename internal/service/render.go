// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/olegiv/agencyhub/internal/content"
	"github.com/olegiv/agencyhub/internal/model"
	"github.com/olegiv/agencyhub/internal/store"
)

// RenderMode selects which snapshot of each section is rendered.
type RenderMode string

const (
	RenderPublished RenderMode = "published"
	RenderDraft     RenderMode = "draft"
)

// RenderedSection is one section of a rendered page.
type RenderedSection struct {
	ID        int64           `json:"id"`
	Key       string          `json:"key"`
	Label     string          `json:"label"`
	Component string          `json:"component"`
	Position  int64           `json:"position"`
	Status    string          `json:"status"`
	Content   json.RawMessage `json:"content"`
	HTML      string          `json:"html,omitempty"`
}

// RenderedPage is the public shape of a page.
type RenderedPage struct {
	ID          int64             `json:"id"`
	OrgID       int64             `json:"org_id"`
	Name        string            `json:"name"`
	Slug        string            `json:"slug"`
	Template    string            `json:"template"`
	Status      string            `json:"status"`
	Mode        RenderMode        `json:"mode"`
	PublishedAt *time.Time        `json:"published_at,omitempty"`
	Sections    []RenderedSection `json:"sections"`
}

func renderCacheKey(orgID int64, slug string) string {
	return "render:" + strconv.FormatInt(orgID, 10) + ":" + slug
}

// RenderPage renders a page of orgID by slug. Published mode serves only
// pages that were published at least once and skips sections that never
// were; its result is cached. Draft mode renders every section's draft.
func (s *PageService) RenderPage(ctx context.Context, orgID int64, slug string, mode RenderMode) (*RenderedPage, error) {
	if mode == RenderPublished && s.cache != nil {
		if cached, err := s.cache.Get(ctx, renderCacheKey(orgID, slug)); err == nil {
			var page RenderedPage
			if err := json.Unmarshal(cached, &page); err == nil {
				return &page, nil
			}
		}
	}

	page, err := s.queries.GetPageBySlug(ctx, orgID, slug)
	if err != nil {
		return nil, notFoundOr(err, "page")
	}
	rendered, err := s.render(ctx, page, mode)
	if err != nil {
		return nil, err
	}

	if mode == RenderPublished && s.cache != nil {
		if data, err := json.Marshal(rendered); err == nil {
			if err := s.cache.Set(ctx, renderCacheKey(orgID, slug), data, s.cacheTTL); err != nil {
				s.logger.Warn("failed to cache rendered page", "org_id", orgID, "slug", slug, "error", err)
			}
		}
	}
	return rendered, nil
}

// RenderPageByID renders a page of the actor's business. Draft mode needs
// the write action.
func (s *PageService) RenderPageByID(ctx context.Context, actor Actor, pageID int64, mode RenderMode) (*RenderedPage, error) {
	action := model.ActionRead
	if mode == RenderDraft {
		action = model.ActionWrite
	}
	if err := actor.require(action); err != nil {
		return nil, err
	}
	page, err := s.queries.GetPage(ctx, pageID, actor.OrgID)
	if err != nil {
		return nil, notFoundOr(err, "page")
	}
	return s.RenderPage(ctx, actor.OrgID, page.Slug, mode)
}

// RenderPublicPage renders the published page of a business addressed by
// its slug.
func (s *PageService) RenderPublicPage(ctx context.Context, orgSlug, slug string) (*RenderedPage, error) {
	biz, err := s.queries.GetBusinessBySlug(ctx, orgSlug)
	if err != nil {
		return nil, notFoundOr(err, "business")
	}
	return s.RenderPage(ctx, biz.ID, slug, RenderPublished)
}

// RenderPreview renders the drafts of the page a preview token points at.
func (s *PageService) RenderPreview(ctx context.Context, tokenID string) (*RenderedPage, error) {
	token, err := s.ResolvePreviewToken(ctx, tokenID)
	if err != nil {
		return nil, err
	}
	if token == nil {
		return nil, fmt.Errorf("preview token: %w", ErrNotFound)
	}
	page, err := s.queries.GetPage(ctx, token.PageID, token.OrgID)
	if err != nil {
		return nil, notFoundOr(err, "page")
	}
	return s.render(ctx, page, RenderDraft)
}

func (s *PageService) render(ctx context.Context, page store.Page, mode RenderMode) (*RenderedPage, error) {
	if mode == RenderPublished && !page.PublishedAt.Valid {
		return nil, fmt.Errorf("page: %w", ErrNotFound)
	}
	sections, err := s.queries.ListSectionsByPage(ctx, page.ID)
	if err != nil {
		return nil, fmt.Errorf("listing sections: %w", err)
	}

	out := &RenderedPage{
		ID:       page.ID,
		OrgID:    page.OrgID,
		Name:     page.Name,
		Slug:     page.Slug,
		Template: page.Template,
		Status:   page.Status,
		Mode:     mode,
		Sections: make([]RenderedSection, 0, len(sections)),
	}
	if page.PublishedAt.Valid {
		t := page.PublishedAt.Time
		out.PublishedAt = &t
	}

	for _, sec := range sections {
		raw := sec.DraftContent
		if mode == RenderPublished {
			if !sec.PublishedContent.Valid {
				continue
			}
			raw = sec.PublishedContent.String
		}
		rs := RenderedSection{
			ID:        sec.ID,
			Key:       sec.Key,
			Label:     sec.Label,
			Component: sec.Component,
			Position:  sec.Position,
			Status:    sec.Status,
			Content:   json.RawMessage(raw),
		}
		if sec.Component == model.ComponentMarkdown {
			html, err := renderMarkdownSection(raw)
			if err != nil {
				s.logger.Warn("failed to render markdown section", "section_id", sec.ID, "error", err)
			}
			rs.HTML = html
		}
		out.Sections = append(out.Sections, rs)
	}
	return out, nil
}

func renderMarkdownSection(raw string) (string, error) {
	doc, err := content.Decode([]byte(raw))
	if err != nil {
		return "", err
	}
	src, ok := content.MarkdownSource(doc)
	if !ok || src == "" {
		return "", nil
	}
	return content.RenderMarkdown(src)
}

func (s *PageService) invalidate(ctx context.Context, orgID int64, slug string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, renderCacheKey(orgID, slug)); err != nil {
		s.logger.Warn("failed to invalidate render cache", "org_id", orgID, "slug", slug, "error", err)
	}
}

func (s *PageService) invalidatePage(ctx context.Context, orgID, pageID int64) {
	if s.cache == nil {
		return
	}
	page, err := s.queries.GetPage(ctx, pageID, orgID)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			s.logger.Warn("failed to load page for cache invalidation", "page_id", pageID, "error", err)
		}
		return
	}
	s.invalidate(ctx, orgID, page.Slug)
}
