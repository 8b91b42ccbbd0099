// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package webhook delivers signed domain events to subscribed URLs.
package webhook

import (
	"time"
)

// Event is the JSON body POSTed to a webhook.
type Event struct {
	Type      string    `json:"type"`
	OrgID     int64     `json:"org_id"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// NewEvent creates an event for a business.
func NewEvent(orgID int64, eventType string, data any) *Event {
	return &Event{
		Type:      eventType,
		OrgID:     orgID,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}
