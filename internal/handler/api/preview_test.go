// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/agencyhub/internal/service"
)

func TestPreviewTokenRendersDrafts(t *testing.T) {
	env := newTestEnv(t)
	editor := env.member("ed@example.com", "editor")
	page, sec := env.createPageWithSection(editor, "home")

	rec := env.do(http.MethodPost, env.biz("/preview-tokens"), map[string]any{"page_id": page.ID, "ttl_hours": 2}, editor)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var token PreviewTokenResponse
	decodeData(t, rec, &token)
	require.NotEmpty(t, token.Token)
	assert.Equal(t, env.org.ID, token.OrgID)
	assert.Equal(t, "/api/preview/"+token.Token, token.PreviewURL)
	assert.WithinDuration(t, time.Now().Add(2*time.Hour), token.ExpiresAt, time.Minute)

	// No session needed: the token is the credential.
	rec = env.do(http.MethodGet, token.PreviewURL, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "noindex", rec.Header().Get("X-Robots-Tag"))
	var rendered service.RenderedPage
	decodeData(t, rec, &rendered)
	assert.Equal(t, service.RenderDraft, rendered.Mode)
	require.Len(t, rendered.Sections, 1)
	assert.Equal(t, sec.ID, rendered.Sections[0].ID)
	assert.JSONEq(t, `{"title":"Hello"}`, string(rendered.Sections[0].Content))

	rec = env.do(http.MethodGet, "/api/preview/does-not-exist", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestValidatePreview(t *testing.T) {
	env := newTestEnv(t)
	editor := env.member("ed@example.com", "editor")
	page, sec := env.createPageWithSection(editor, "home")

	rec := env.do(http.MethodPost, env.biz("/preview-tokens"), map[string]any{"page_id": page.ID, "section_id": sec.ID}, editor)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var token PreviewTokenResponse
	decodeData(t, rec, &token)
	require.NotNil(t, token.SectionID)

	base := "/api/preview/" + token.Token + "/validate"
	pageID := strconv.FormatInt(page.ID, 10)
	tests := []struct {
		name  string
		query string
		valid bool
	}{
		{"no scope", "", true},
		{"matching page and section", "?page_id=" + pageID + "&section_id=" + strconv.FormatInt(sec.ID, 10), true},
		{"matching org", "?org_id=" + strconv.FormatInt(env.org.ID, 10), true},
		{"other org", "?org_id=" + strconv.FormatInt(env.other.ID, 10), false},
		{"other page", "?page_id=" + strconv.FormatInt(page.ID+100, 10), false},
		{"other section", "?section_id=" + strconv.FormatInt(sec.ID+100, 10), false},
		{"unparsable page", "?page_id=abc", false},
		{"zero org", "?org_id=0", false},
		{"negative page", "?page_id=-" + pageID, false},
		{"overflowing page", "?page_id=999999999999999999999", false},
		{"empty section", "?section_id=", false},
		{"bad org with matching page", "?org_id=x&page_id=" + pageID, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(http.MethodGet, base+tt.query, nil, nil)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			var got PreviewValidationResponse
			decodeData(t, rec, &got)
			assert.Equal(t, tt.valid, got.Valid)
			assert.Equal(t, tt.valid, got.Token != nil)
		})
	}

	rec = env.do(http.MethodGet, "/api/preview/unknown/validate", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got PreviewValidationResponse
	decodeData(t, rec, &got)
	assert.False(t, got.Valid)
}

func TestCreatePreviewTokenValidation(t *testing.T) {
	env := newTestEnv(t)
	editor := env.member("ed@example.com", "editor")
	viewer := env.member("vi@example.com", "viewer")
	page, _ := env.createPageWithSection(editor, "home")

	rec := env.do(http.MethodPost, env.biz("/preview-tokens"), map[string]any{}, editor)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = env.do(http.MethodPost, env.biz("/preview-tokens"), map[string]any{"page_id": page.ID, "ttl_hours": -1}, editor)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = env.do(http.MethodPost, env.biz("/preview-tokens"), map[string]any{"page_id": page.ID, "ttl_hours": 721}, editor)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	rec = env.do(http.MethodPost, env.biz("/preview-tokens"), map[string]any{"page_id": page.ID, "ttl_hours": 3000000}, editor)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "must not exceed 720")

	rec = env.do(http.MethodPost, env.biz("/preview-tokens"), map[string]any{"page_id": page.ID + 100}, editor)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(http.MethodPost, env.biz("/preview-tokens"), map[string]any{"page_id": page.ID}, viewer)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
