// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/agencyhub/internal/service"
	"github.com/olegiv/agencyhub/internal/store"
	"github.com/olegiv/agencyhub/internal/util"
)

const maxPreviewTTLHours = int(service.MaxPreviewTTL / time.Hour)

// PreviewTokenRequest is the body of POST /preview-tokens. A missing
// TTLHours uses the configured default.
type PreviewTokenRequest struct {
	PageID    int64  `json:"page_id"`
	SectionID *int64 `json:"section_id,omitempty"`
	TTLHours  *int   `json:"ttl_hours,omitempty"`
}

// PreviewTokenResponse represents a preview token in API responses.
type PreviewTokenResponse struct {
	Token      string    `json:"token"`
	OrgID      int64     `json:"org_id"`
	PageID     int64     `json:"page_id"`
	SectionID  *int64    `json:"section_id,omitempty"`
	UserID     *int64    `json:"user_id,omitempty"`
	ExpiresAt  time.Time `json:"expires_at"`
	PreviewURL string    `json:"preview_url"`
}

// PreviewValidationResponse is the result of a token check.
type PreviewValidationResponse struct {
	Valid bool                  `json:"valid"`
	Token *PreviewTokenResponse `json:"token,omitempty"`
}

func previewTokenToResponse(t store.PreviewToken) PreviewTokenResponse {
	return PreviewTokenResponse{
		Token:      t.ID,
		OrgID:      t.OrgID,
		PageID:     t.PageID,
		SectionID:  util.PtrFromNullInt64(t.SectionID),
		UserID:     util.PtrFromNullInt64(t.UserID),
		ExpiresAt:  t.ExpiresAt,
		PreviewURL: "/api/preview/" + t.ID,
	}
}

// CreatePreviewToken handles POST /preview-tokens.
func (h *Handler) CreatePreviewToken(w http.ResponseWriter, r *http.Request) {
	var req PreviewTokenRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.PageID <= 0 {
		WriteValidationError(w, map[string]string{"page_id": "is required"})
		return
	}
	var ttl time.Duration
	if req.TTLHours != nil {
		if *req.TTLHours <= 0 {
			WriteValidationError(w, map[string]string{"ttl_hours": "must be positive"})
			return
		}
		if *req.TTLHours > maxPreviewTTLHours {
			WriteValidationError(w, map[string]string{"ttl_hours": "must not exceed " + strconv.Itoa(maxPreviewTTLHours)})
			return
		}
		ttl = time.Duration(*req.TTLHours) * time.Hour
	}
	token, err := h.pages.CreatePreviewToken(r.Context(), actor(r), req.PageID, req.SectionID, ttl)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteCreated(w, previewTokenToResponse(token))
}

// Preview handles GET /api/preview/{token}: the draft render of the page
// the token points at. Unknown and expired tokens are 404.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	page, err := h.pages.RenderPreview(r.Context(), chi.URLParam(r, paramToken))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("X-Robots-Tag", "noindex")
	WriteSuccess(w, page, nil)
}

// ValidatePreview handles GET /api/preview/{token}/validate. The optional
// org_id, page_id and section_id query parameters must all match the token.
// A parameter that is not a positive id matches nothing.
func (h *Handler) ValidatePreview(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")

	var scope service.PreviewScope
	for name, dst := range map[string]*int64{"org_id": &scope.OrgID, "page_id": &scope.PageID} {
		id, present, ok := queryID(r, name)
		if !ok {
			WriteSuccess(w, PreviewValidationResponse{}, nil)
			return
		}
		if present {
			*dst = id
		}
	}
	sectionID, present, ok := queryID(r, "section_id")
	if !ok {
		WriteSuccess(w, PreviewValidationResponse{}, nil)
		return
	}
	if present {
		scope.SectionID = &sectionID
	}

	result, err := h.pages.ValidatePreviewToken(r.Context(), chi.URLParam(r, paramToken), scope)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	resp := PreviewValidationResponse{Valid: result.Valid}
	if result.Token != nil {
		t := previewTokenToResponse(*result.Token)
		resp.Token = &t
	}
	WriteSuccess(w, resp, nil)
}
