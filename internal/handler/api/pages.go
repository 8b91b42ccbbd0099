// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/agencyhub/internal/content"
	"github.com/olegiv/agencyhub/internal/service"
	"github.com/olegiv/agencyhub/internal/store"
	"github.com/olegiv/agencyhub/internal/util"
)

// PageResponse represents a page in API responses.
type PageResponse struct {
	ID          int64      `json:"id"`
	OrgID       int64      `json:"org_id"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	Template    string     `json:"template"`
	Status      string     `json:"status"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// SectionResponse represents a section in API responses. PublishedContent
// is null until the first publish.
type SectionResponse struct {
	ID               int64           `json:"id"`
	PageID           int64           `json:"page_id"`
	Key              string          `json:"key"`
	Label            string          `json:"label"`
	Component        string          `json:"component"`
	Position         int64           `json:"position"`
	DraftContent     json.RawMessage `json:"draft_content"`
	PublishedContent json.RawMessage `json:"published_content"`
	Status           string          `json:"status"`
	Version          int64           `json:"version"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// CreatePageRequest represents the request body for creating a page.
type CreatePageRequest struct {
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	Template string `json:"template"`
}

// UpdatePageRequest represents the request body for updating a page.
type UpdatePageRequest struct {
	Name     *string `json:"name,omitempty"`
	Slug     *string `json:"slug,omitempty"`
	Template *string `json:"template,omitempty"`
	Status   *string `json:"status,omitempty"`
}

// CreateSectionRequest represents the request body for creating a section.
type CreateSectionRequest struct {
	Key       string          `json:"key"`
	Label     string          `json:"label"`
	Component string          `json:"component"`
	Position  *int64          `json:"position,omitempty"`
	Content   json.RawMessage `json:"content,omitempty"`
}

// UpdateSectionRequest represents the request body for editing section
// metadata.
type UpdateSectionRequest struct {
	Label     *string `json:"label,omitempty"`
	Component *string `json:"component,omitempty"`
	Position  *int64  `json:"position,omitempty"`
}

// SectionDraftRequest is the body of PUT /sections/{id}/draft. Without
// ExpectedVersion the last write wins.
type SectionDraftRequest struct {
	Content         json.RawMessage `json:"content"`
	ExpectedVersion *int64          `json:"expected_version,omitempty"`
}

// PublishPageResponse reports a page-wide publish.
type PublishPageResponse struct {
	Page   PageResponse        `json:"page"`
	Result service.BatchResult `json:"result"`
}

func pageToResponse(p store.Page) PageResponse {
	return PageResponse{
		ID:          p.ID,
		OrgID:       p.OrgID,
		Name:        p.Name,
		Slug:        p.Slug,
		Template:    p.Template,
		Status:      p.Status,
		PublishedAt: util.PtrFromNullTime(p.PublishedAt),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func sectionToResponse(s store.PageSection) SectionResponse {
	resp := SectionResponse{
		ID:           s.ID,
		PageID:       s.PageID,
		Key:          s.Key,
		Label:        s.Label,
		Component:    s.Component,
		Position:     s.Position,
		DraftContent: json.RawMessage(s.DraftContent),
		Status:       s.Status,
		Version:      s.Version,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
	if len(resp.DraftContent) == 0 {
		resp.DraftContent = json.RawMessage(content.Null)
	}
	if s.PublishedContent.Valid {
		resp.PublishedContent = json.RawMessage(s.PublishedContent.String)
	}
	return resp
}

func mapSlice[T, R any](items []T, fn func(T) R) []R {
	out := make([]R, 0, len(items))
	for _, it := range items {
		out = append(out, fn(it))
	}
	return out
}

// sanitizeContent strips unsafe markup from editor input. It writes a 422
// and returns false when raw is not JSON.
func sanitizeContent(w http.ResponseWriter, raw json.RawMessage) (json.RawMessage, bool) {
	if raw == nil {
		return nil, true
	}
	clean, err := content.Sanitize(raw)
	if err != nil {
		WriteValidationError(w, map[string]string{"content": "must be valid JSON"})
		return nil, false
	}
	return clean, true
}

// ListPages handles GET /pages.
func (h *Handler) ListPages(w http.ResponseWriter, r *http.Request) {
	pages, err := h.pages.ListPages(r.Context(), actor(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, mapSlice(pages, pageToResponse), nil)
}

// GetPage handles GET /pages/{pageID}.
func (h *Handler) GetPage(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, paramPage)
	if !ok {
		return
	}
	page, err := h.pages.GetPage(r.Context(), actor(r), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, pageToResponse(page), nil)
}

// CreatePage handles POST /pages.
func (h *Handler) CreatePage(w http.ResponseWriter, r *http.Request) {
	var req CreatePageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	page, err := h.pages.CreatePage(r.Context(), actor(r), service.PageInput{
		Name:     req.Name,
		Slug:     req.Slug,
		Template: req.Template,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteCreated(w, pageToResponse(page))
}

// UpdatePage handles PUT /pages/{pageID}.
func (h *Handler) UpdatePage(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, paramPage)
	if !ok {
		return
	}
	var req UpdatePageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	page, err := h.pages.UpdatePage(r.Context(), actor(r), id, service.PageUpdate{
		Name:     req.Name,
		Slug:     req.Slug,
		Template: req.Template,
		Status:   req.Status,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, pageToResponse(page), nil)
}

// DeletePage handles DELETE /pages/{pageID}.
func (h *Handler) DeletePage(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, paramPage)
	if !ok {
		return
	}
	if err := h.pages.DeletePage(r.Context(), actor(r), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteNoContent(w)
}

// PublishPage handles POST /pages/{pageID}/publish. Partial failures are
// reported in the result; the request itself succeeds.
func (h *Handler) PublishPage(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, paramPage)
	if !ok {
		return
	}
	a := actor(r)
	result, err := h.pages.PublishAllSectionsForPage(r.Context(), a, id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	page, err := h.pages.GetPage(r.Context(), a, id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, PublishPageResponse{Page: pageToResponse(page), Result: result}, nil)
}

// RenderPage handles GET /pages/{pageID}/render. draft=1 renders every
// section's draft and needs the write action.
func (h *Handler) RenderPage(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, paramPage)
	if !ok {
		return
	}
	mode := service.RenderPublished
	if draft, _ := strconv.ParseBool(r.URL.Query().Get("draft")); draft {
		mode = service.RenderDraft
	}
	page, err := h.pages.RenderPageByID(r.Context(), actor(r), id, mode)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, page, nil)
}

// ListSections handles GET /pages/{pageID}/sections.
func (h *Handler) ListSections(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, paramPage)
	if !ok {
		return
	}
	sections, err := h.pages.ListSections(r.Context(), actor(r), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, mapSlice(sections, sectionToResponse), nil)
}

// CreateSection handles POST /pages/{pageID}/sections.
func (h *Handler) CreateSection(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, paramPage)
	if !ok {
		return
	}
	var req CreateSectionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	body, ok := sanitizeContent(w, req.Content)
	if !ok {
		return
	}
	sec, err := h.pages.CreateSection(r.Context(), actor(r), id, service.SectionInput{
		Key:       req.Key,
		Label:     req.Label,
		Component: req.Component,
		Position:  req.Position,
		Content:   body,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteCreated(w, sectionToResponse(sec))
}

// GetSection handles GET /sections/{sectionID}.
func (h *Handler) GetSection(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, paramSection)
	if !ok {
		return
	}
	sec, err := h.pages.GetSection(r.Context(), actor(r), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, sectionToResponse(sec), nil)
}

// UpdateSection handles PATCH /sections/{sectionID}.
func (h *Handler) UpdateSection(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, paramSection)
	if !ok {
		return
	}
	var req UpdateSectionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	sec, err := h.pages.UpdateSection(r.Context(), actor(r), id, service.SectionUpdate{
		Label:     req.Label,
		Component: req.Component,
		Position:  req.Position,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, sectionToResponse(sec), nil)
}

// DeleteSection handles DELETE /sections/{sectionID}.
func (h *Handler) DeleteSection(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, paramSection)
	if !ok {
		return
	}
	if err := h.pages.DeleteSection(r.Context(), actor(r), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteNoContent(w)
}

// UpdateSectionDraft handles PUT /sections/{sectionID}/draft.
func (h *Handler) UpdateSectionDraft(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, paramSection)
	if !ok {
		return
	}
	var req SectionDraftRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Content == nil {
		WriteValidationError(w, map[string]string{"content": "is required"})
		return
	}
	body, ok := sanitizeContent(w, req.Content)
	if !ok {
		return
	}
	sec, err := h.pages.UpdateSectionDraft(r.Context(), actor(r), id, body, req.ExpectedVersion)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, sectionToResponse(sec), nil)
}

// PublishSection handles POST /sections/{sectionID}/publish.
func (h *Handler) PublishSection(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, paramSection)
	if !ok {
		return
	}
	sec, err := h.pages.PublishSection(r.Context(), actor(r), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, sectionToResponse(sec), nil)
}

// DiscardSection handles POST /sections/{sectionID}/discard.
func (h *Handler) DiscardSection(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, paramSection)
	if !ok {
		return
	}
	sec, err := h.pages.DiscardSectionChanges(r.Context(), actor(r), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, sectionToResponse(sec), nil)
}

// PublicPage handles GET /api/public/{orgSlug}/pages/{slug}.
func (h *Handler) PublicPage(w http.ResponseWriter, r *http.Request) {
	page, err := h.pages.RenderPublicPage(r.Context(), chi.URLParam(r, paramOrgSlug), chi.URLParam(r, paramSlug))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Cache-Control", "public, max-age=60")
	WriteSuccess(w, page, nil)
}
