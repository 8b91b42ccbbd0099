// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/olegiv/agencyhub/internal/model"
	"github.com/olegiv/agencyhub/internal/store"
	"github.com/olegiv/agencyhub/internal/util"
)

// URLValidator rejects webhook targets that must not be called.
type URLValidator func(ctx context.Context, rawURL string) error

// WebhookService manages webhook subscriptions of a business.
type WebhookService struct {
	queries     *store.Queries
	logger      *slog.Logger
	validateURL URLValidator
	now         func() time.Time
}

// NewWebhookService creates a WebhookService. A nil validator uses
// util.ValidateWebhookURL.
func NewWebhookService(db *sql.DB, logger *slog.Logger, validator URLValidator) *WebhookService {
	if logger == nil {
		logger = slog.Default()
	}
	if validator == nil {
		validator = util.ValidateWebhookURL
	}
	return &WebhookService{queries: store.New(db), logger: logger, validateURL: validator, now: time.Now}
}

// WebhookInput holds the fields of a new webhook. An empty Secret is
// generated.
type WebhookInput struct {
	Name   string
	URL    string
	Secret string
	Events []string
}

// CreatedWebhook is a stored webhook together with its signing secret,
// which is only returned at creation.
type CreatedWebhook struct {
	store.Webhook
	Secret string `json:"secret"`
}

// CreateWebhook subscribes a URL to events of the actor's business.
func (s *WebhookService) CreateWebhook(ctx context.Context, actor Actor, in WebhookInput) (CreatedWebhook, error) {
	if err := actor.require(model.ActionAdmin); err != nil {
		return CreatedWebhook{}, err
	}

	v := validation{}
	if in.Name == "" {
		v.add("name", "is required")
	}
	if in.URL == "" {
		v.add("url", "is required")
	} else if err := s.validateURL(ctx, in.URL); err != nil {
		v.add("url", err.Error())
	}
	if len(in.Events) == 0 {
		v.add("events", "at least one event is required")
	}
	for _, ev := range in.Events {
		if !model.IsKnownWebhookEvent(ev) {
			v.add("events", fmt.Sprintf("unknown event %q", ev))
		}
	}
	if err := v.err(); err != nil {
		return CreatedWebhook{}, err
	}

	secret := in.Secret
	if secret == "" {
		var err error
		if secret, err = model.GenerateWebhookSecret(); err != nil {
			return CreatedWebhook{}, fmt.Errorf("generating webhook secret: %w", err)
		}
	}
	now := stamp(s.now)
	hook, err := s.queries.CreateWebhook(ctx, store.CreateWebhookParams{
		OrgID:     actor.OrgID,
		Name:      in.Name,
		Url:       in.URL,
		Secret:    secret,
		Events:    model.EventsToJSON(in.Events),
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return CreatedWebhook{}, fmt.Errorf("creating webhook: %w", err)
	}
	s.logger.Info("webhook created", "webhook_id", hook.ID, "org_id", actor.OrgID)
	return CreatedWebhook{Webhook: hook, Secret: secret}, nil
}

// ListWebhooks returns the actor's webhooks.
func (s *WebhookService) ListWebhooks(ctx context.Context, actor Actor) ([]store.Webhook, error) {
	if err := actor.require(model.ActionAdmin); err != nil {
		return nil, err
	}
	hooks, err := s.queries.ListWebhooks(ctx, actor.OrgID)
	if err != nil {
		return nil, fmt.Errorf("listing webhooks: %w", err)
	}
	return hooks, nil
}

// DeleteWebhook removes a webhook and its delivery history.
func (s *WebhookService) DeleteWebhook(ctx context.Context, actor Actor, webhookID int64) error {
	if err := actor.require(model.ActionAdmin); err != nil {
		return err
	}
	n, err := s.queries.DeleteWebhook(ctx, webhookID, actor.OrgID)
	return deleted(n, err, "webhook")
}

// DefaultDeliveryPageSize bounds ListDeliveries when no limit is given.
const DefaultDeliveryPageSize = 50

// ListDeliveries returns the most recent delivery attempts of a webhook.
func (s *WebhookService) ListDeliveries(ctx context.Context, actor Actor, webhookID, limit int64) ([]store.WebhookDelivery, error) {
	if err := actor.require(model.ActionAdmin); err != nil {
		return nil, err
	}
	hook, err := s.queries.GetWebhookByID(ctx, webhookID)
	if err != nil {
		return nil, notFoundOr(err, "webhook")
	}
	if hook.OrgID != actor.OrgID {
		return nil, fmt.Errorf("webhook: %w", ErrNotFound)
	}
	if limit <= 0 || limit > 200 {
		limit = DefaultDeliveryPageSize
	}
	deliveries, err := s.queries.ListDeliveries(ctx, webhookID, actor.OrgID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing deliveries: %w", err)
	}
	return deliveries, nil
}
