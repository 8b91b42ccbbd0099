// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"slices"
)

// Webhook event types.
const (
	EventPagePublished      = "page.published"
	EventSectionPublished   = "section.published"
	EventSectionDiscarded   = "section.discarded"
	EventInstancesGenerated = "event.instances_generated"
)

// Webhook delivery statuses.
const (
	DeliveryStatusPending   = "pending"
	DeliveryStatusDelivered = "delivered"
	DeliveryStatusDead      = "dead"
)

// WebhookEventInfo contains an event type and its description.
type WebhookEventInfo struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

// AllWebhookEvents returns every event a webhook may subscribe to.
func AllWebhookEvents() []WebhookEventInfo {
	return []WebhookEventInfo{
		{EventPagePublished, "When every section of a page is published"},
		{EventSectionPublished, "When a single section is published"},
		{EventSectionDiscarded, "When draft changes of a section are discarded"},
		{EventInstancesGenerated, "When weekly event instances are generated"},
	}
}

// IsKnownWebhookEvent reports whether event is a supported event type.
func IsKnownWebhookEvent(event string) bool {
	for _, e := range AllWebhookEvents() {
		if e.Type == event {
			return true
		}
	}
	return false
}

// GenerateWebhookSecret generates a random secret for payload signing.
func GenerateWebhookSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// ParseEvents decodes the JSON event list stored on a webhook row.
func ParseEvents(raw string) []string {
	var events []string
	if raw == "" || raw == "[]" {
		return events
	}
	_ = json.Unmarshal([]byte(raw), &events)
	return events
}

// SubscribedTo reports whether the stored event list contains event.
func SubscribedTo(raw, event string) bool {
	return slices.Contains(ParseEvents(raw), event)
}

// EventsToJSON converts a slice of events to a JSON string.
func EventsToJSON(events []string) string {
	if len(events) == 0 {
		return "[]"
	}
	data, _ := json.Marshal(events)
	return string(data)
}
