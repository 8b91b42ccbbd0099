// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/agencyhub/internal/service"
)

func sectionPath(id int64, suffix string) string {
	return "/sections/" + strconv.FormatInt(id, 10) + suffix
}

func pagePath(id int64, suffix string) string {
	return "/pages/" + strconv.FormatInt(id, 10) + suffix
}

// createPageWithSection creates page slug with a single hero section.
func (e *testEnv) createPageWithSection(cookie *http.Cookie, slug string) (PageResponse, SectionResponse) {
	e.t.Helper()

	rec := e.do(http.MethodPost, e.biz("/pages"), map[string]string{"name": "Home", "slug": slug}, cookie)
	require.Equal(e.t, http.StatusCreated, rec.Code, rec.Body.String())
	var page PageResponse
	decodeData(e.t, rec, &page)

	rec = e.do(http.MethodPost, e.biz(pagePath(page.ID, "/sections")), map[string]any{
		"key":     "hero",
		"label":   "Hero",
		"content": map[string]string{"title": "Hello"},
	}, cookie)
	require.Equal(e.t, http.StatusCreated, rec.Code, rec.Body.String())
	var sec SectionResponse
	decodeData(e.t, rec, &sec)
	return page, sec
}

func TestPageDraftPublishFlow(t *testing.T) {
	env := newTestEnv(t)
	editor := env.member("ed@example.com", "editor")

	page, sec := env.createPageWithSection(editor, "home")
	assert.Equal(t, "draft", page.Status)
	assert.Nil(t, page.PublishedAt)
	assert.JSONEq(t, `{"title":"Hello"}`, string(sec.DraftContent))
	assert.Equal(t, "null", string(sec.PublishedContent))

	// Never published pages are not public.
	rec := env.do(http.MethodGet, "/api/public/blue-door/pages/home", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(http.MethodPut, env.biz(sectionPath(sec.ID, "/draft")), map[string]any{
		"content":          map[string]string{"title": "Welcome"},
		"expected_version": sec.Version,
	}, editor)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated SectionResponse
	decodeData(t, rec, &updated)
	assert.Equal(t, sec.Version+1, updated.Version)
	assert.Equal(t, "dirty", updated.Status)

	rec = env.do(http.MethodPost, env.biz(pagePath(page.ID, "/publish")), nil, editor)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var published PublishPageResponse
	decodeData(t, rec, &published)
	assert.Equal(t, []int64{sec.ID}, published.Result.Succeeded)
	assert.Empty(t, published.Result.Failed)
	assert.Equal(t, "published", published.Page.Status)
	assert.NotNil(t, published.Page.PublishedAt)

	rec = env.do(http.MethodGet, "/api/public/blue-door/pages/home", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "public, max-age=60", rec.Header().Get("Cache-Control"))
	var public service.RenderedPage
	decodeData(t, rec, &public)
	require.Len(t, public.Sections, 1)
	assert.JSONEq(t, `{"title":"Welcome"}`, string(public.Sections[0].Content))

	// A new draft stays private until published.
	rec = env.do(http.MethodPut, env.biz(sectionPath(sec.ID, "/draft")), map[string]any{
		"content": map[string]string{"title": "Changed"},
	}, editor)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(http.MethodGet, "/api/public/blue-door/pages/home", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &public)
	assert.JSONEq(t, `{"title":"Welcome"}`, string(public.Sections[0].Content))

	rec = env.do(http.MethodGet, env.biz(pagePath(page.ID, "/render?draft=1")), nil, editor)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var draft service.RenderedPage
	decodeData(t, rec, &draft)
	assert.Equal(t, service.RenderDraft, draft.Mode)
	assert.JSONEq(t, `{"title":"Changed"}`, string(draft.Sections[0].Content))

	rec = env.do(http.MethodGet, env.biz(pagePath(page.ID, "")), nil, editor)
	require.Equal(t, http.StatusOK, rec.Code)
	var dirty PageResponse
	decodeData(t, rec, &dirty)
	assert.Equal(t, "dirty", dirty.Status)

	// Discard restores the published snapshot.
	rec = env.do(http.MethodPost, env.biz(sectionPath(sec.ID, "/discard")), nil, editor)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var discarded SectionResponse
	decodeData(t, rec, &discarded)
	assert.JSONEq(t, `{"title":"Welcome"}`, string(discarded.DraftContent))
	assert.Equal(t, "published", discarded.Status)
}

func TestSectionDraftVersionConflict(t *testing.T) {
	env := newTestEnv(t)
	editor := env.member("ed@example.com", "editor")
	_, sec := env.createPageWithSection(editor, "home")

	body := map[string]any{
		"content":          map[string]string{"title": "First"},
		"expected_version": sec.Version,
	}
	rec := env.do(http.MethodPut, env.biz(sectionPath(sec.ID, "/draft")), body, editor)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(http.MethodPut, env.biz(sectionPath(sec.ID, "/draft")), body, editor)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "conflict", errorCode(t, rec))
}

func TestSectionDraftRequiresContent(t *testing.T) {
	env := newTestEnv(t)
	editor := env.member("ed@example.com", "editor")
	_, sec := env.createPageWithSection(editor, "home")

	rec := env.do(http.MethodPut, env.biz(sectionPath(sec.ID, "/draft")), map[string]any{}, editor)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = env.do(http.MethodPut, env.biz(sectionPath(sec.ID, "/draft")), `{"content":{"a":1}} {}`, editor)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSectionContentIsSanitized(t *testing.T) {
	env := newTestEnv(t)
	editor := env.member("ed@example.com", "editor")
	_, sec := env.createPageWithSection(editor, "home")

	rec := env.do(http.MethodPut, env.biz(sectionPath(sec.ID, "/draft")), map[string]any{
		"content": map[string]string{"body": `<p onclick="x()">Hi</p><script>alert(1)</script>`},
	}, editor)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated SectionResponse
	decodeData(t, rec, &updated)
	var doc map[string]string
	require.NoError(t, json.Unmarshal(updated.DraftContent, &doc))
	assert.Equal(t, "<p>Hi</p>", doc["body"])
}

func TestViewerCannotPublish(t *testing.T) {
	env := newTestEnv(t)
	editor := env.member("ed@example.com", "editor")
	viewer := env.member("vi@example.com", "viewer")
	page, sec := env.createPageWithSection(editor, "home")

	rec := env.do(http.MethodPost, env.biz(sectionPath(sec.ID, "/publish")), nil, viewer)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(http.MethodPost, env.biz(pagePath(page.ID, "/publish")), nil, viewer)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Viewers can read but not render drafts.
	rec = env.do(http.MethodGet, env.biz(pagePath(page.ID, "/sections")), nil, viewer)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(http.MethodGet, env.biz(pagePath(page.ID, "/render?draft=true")), nil, viewer)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestPageCRUD(t *testing.T) {
	env := newTestEnv(t)
	editor := env.member("ed@example.com", "editor")
	page, _ := env.createPageWithSection(editor, "home")

	rec := env.do(http.MethodPost, env.biz("/pages"), map[string]string{"name": "Other", "slug": "home"}, editor)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = env.do(http.MethodPut, env.biz(pagePath(page.ID, "")), map[string]string{"name": "Start"}, editor)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var renamed PageResponse
	decodeData(t, rec, &renamed)
	assert.Equal(t, "Start", renamed.Name)
	assert.Equal(t, "home", renamed.Slug)

	rec = env.do(http.MethodGet, env.biz("/pages"), nil, editor)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []PageResponse
	decodeData(t, rec, &list)
	assert.Len(t, list, 1)

	rec = env.do(http.MethodDelete, env.biz(pagePath(page.ID, "")), nil, editor)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(http.MethodGet, env.biz(pagePath(page.ID, "")), nil, editor)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(http.MethodGet, env.biz("/pages/abc"), nil, editor)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
