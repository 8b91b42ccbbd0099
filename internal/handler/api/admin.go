// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/olegiv/agencyhub/internal/model"
	"github.com/olegiv/agencyhub/internal/service"
	"github.com/olegiv/agencyhub/internal/store"
	"github.com/olegiv/agencyhub/internal/util"
)

// WebhookRequest is the body of POST /webhooks. An empty Secret is
// generated.
type WebhookRequest struct {
	Name   string   `json:"name"`
	URL    string   `json:"url"`
	Secret string   `json:"secret"`
	Events []string `json:"events"`
}

// WebhookResponse represents a webhook in API responses. Secret is only
// set in the creation response.
type WebhookResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	Events    []string  `json:"events"`
	IsActive  bool      `json:"is_active"`
	Secret    string    `json:"secret,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DeliveryResponse represents one webhook delivery in API responses.
type DeliveryResponse struct {
	ID           int64      `json:"id"`
	WebhookID    int64      `json:"webhook_id"`
	Event        string     `json:"event"`
	Status       string     `json:"status"`
	Attempts     int64      `json:"attempts"`
	ResponseCode *int64     `json:"response_code,omitempty"`
	LastError    string     `json:"last_error,omitempty"`
	NextRetryAt  *time.Time `json:"next_retry_at,omitempty"`
	DeliveredAt  *time.Time `json:"delivered_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// APIKeyRequest is the body of POST /api-keys. A missing ExpiresInDays
// never expires.
type APIKeyRequest struct {
	Name          string `json:"name"`
	ExpiresInDays *int   `json:"expires_in_days,omitempty"`
}

// APIKeyResponse represents an API key in API responses. Key is only set
// in the creation response.
type APIKeyResponse struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	KeyPrefix  string     `json:"key_prefix"`
	IsActive   bool       `json:"is_active"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	Key        string     `json:"key,omitempty"`
}

// ActivityResponse represents an activity log entry in API responses.
type ActivityResponse struct {
	ID        int64           `json:"id"`
	Level     string          `json:"level"`
	Category  string          `json:"category"`
	Message   string          `json:"message"`
	UserID    *int64          `json:"user_id,omitempty"`
	IPAddress string          `json:"ip_address,omitempty"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

func webhookToResponse(w store.Webhook) WebhookResponse {
	return WebhookResponse{
		ID:        w.ID,
		Name:      w.Name,
		URL:       w.Url,
		Events:    model.ParseEvents(w.Events),
		IsActive:  w.IsActive,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}

func deliveryToResponse(d store.WebhookDelivery) DeliveryResponse {
	return DeliveryResponse{
		ID:           d.ID,
		WebhookID:    d.WebhookID,
		Event:        d.Event,
		Status:       d.Status,
		Attempts:     d.Attempts,
		ResponseCode: util.PtrFromNullInt64(d.ResponseCode),
		LastError:    d.LastError,
		NextRetryAt:  util.PtrFromNullTime(d.NextRetryAt),
		DeliveredAt:  util.PtrFromNullTime(d.DeliveredAt),
		CreatedAt:    d.CreatedAt,
	}
}

func apiKeyToResponse(k store.ApiKey) APIKeyResponse {
	return APIKeyResponse{
		ID:         k.ID,
		Name:       k.Name,
		KeyPrefix:  k.KeyPrefix,
		IsActive:   k.IsActive,
		ExpiresAt:  util.PtrFromNullTime(k.ExpiresAt),
		LastUsedAt: util.PtrFromNullTime(k.LastUsedAt),
		CreatedAt:  k.CreatedAt,
	}
}

func activityToResponse(e store.ActivityLog) ActivityResponse {
	resp := ActivityResponse{
		ID:        e.ID,
		Level:     e.Level,
		Category:  e.Category,
		Message:   e.Message,
		UserID:    util.PtrFromNullInt64(e.UserID),
		IPAddress: e.IpAddress,
		CreatedAt: e.CreatedAt,
	}
	if e.Metadata != "" && json.Valid([]byte(e.Metadata)) {
		resp.Metadata = json.RawMessage(e.Metadata)
	}
	return resp
}

// Dashboard handles GET /dashboard.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.dashboard.Get(r.Context(), actor(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, d, nil)
}

// ListWebhooks handles GET /webhooks.
func (h *Handler) ListWebhooks(w http.ResponseWriter, r *http.Request) {
	hooks, err := h.webhooks.ListWebhooks(r.Context(), actor(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, mapSlice(hooks, webhookToResponse), nil)
}

// CreateWebhook handles POST /webhooks.
func (h *Handler) CreateWebhook(w http.ResponseWriter, r *http.Request) {
	var req WebhookRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	created, err := h.webhooks.CreateWebhook(r.Context(), actor(r), service.WebhookInput(req))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	resp := webhookToResponse(created.Webhook)
	resp.Secret = created.Secret
	WriteCreated(w, resp)
}

// DeleteWebhook handles DELETE /webhooks/{webhookID}.
func (h *Handler) DeleteWebhook(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, paramWebhook)
	if !ok {
		return
	}
	if err := h.webhooks.DeleteWebhook(r.Context(), actor(r), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteNoContent(w)
}

// ListDeliveries handles GET /webhooks/{webhookID}/deliveries?limit=N.
func (h *Handler) ListDeliveries(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, paramWebhook)
	if !ok {
		return
	}
	deliveries, err := h.webhooks.ListDeliveries(r.Context(), actor(r), id, queryInt(r, "limit"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, mapSlice(deliveries, deliveryToResponse), nil)
}

// ListAPIKeys handles GET /api-keys.
func (h *Handler) ListAPIKeys(w http.ResponseWriter, r *http.Request) {
	keys, err := h.auth.ListAPIKeys(r.Context(), actor(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, mapSlice(keys, apiKeyToResponse), nil)
}

// CreateAPIKey handles POST /api-keys. The raw key is only returned here.
func (h *Handler) CreateAPIKey(w http.ResponseWriter, r *http.Request) {
	var req APIKeyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	in := service.APIKeyInput{Name: req.Name}
	if req.ExpiresInDays != nil {
		if *req.ExpiresInDays <= 0 {
			WriteValidationError(w, map[string]string{"expires_in_days": "must be positive"})
			return
		}
		in.ExpiresIn = time.Duration(*req.ExpiresInDays) * 24 * time.Hour
	}
	created, err := h.auth.CreateAPIKey(r.Context(), actor(r), in)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	resp := apiKeyToResponse(created.ApiKey)
	resp.Key = created.Key
	WriteCreated(w, resp)
}

// DeleteAPIKey handles DELETE /api-keys/{keyID}.
func (h *Handler) DeleteAPIKey(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, paramAPIKey)
	if !ok {
		return
	}
	if err := h.auth.DeleteAPIKey(r.Context(), actor(r), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteNoContent(w)
}

// ListActivity handles GET /activity?limit=N&offset=M.
func (h *Handler) ListActivity(w http.ResponseWriter, r *http.Request) {
	limit, offset := queryInt(r, "limit"), queryInt(r, "offset")
	entries, err := h.activity.List(r.Context(), actor(r), limit, offset)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if limit <= 0 || limit > 500 {
		limit = service.DefaultActivityPageSize
	}
	WriteSuccess(w, mapSlice(entries, activityToResponse), &Meta{Limit: limit, Offset: max(offset, 0)})
}
