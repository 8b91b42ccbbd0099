// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines domain constants and small value types shared by
// the store, service and HTTP layers.
package model

// Page statuses.
const (
	PageStatusDraft     = "draft"
	PageStatusDirty     = "dirty"
	PageStatusPublished = "published"
)

// Section statuses. A section that was never published is dirty with a
// NULL published snapshot.
const (
	SectionStatusDirty     = "dirty"
	SectionStatusPublished = "published"
)

// Event and event instance statuses.
const (
	EventStatusDraft     = "draft"
	EventStatusPublished = "published"
	EventStatusCancelled = "cancelled"
)

// Section components with server-side rendering.
const (
	ComponentMarkdown = "markdown"
	ComponentText     = "text"
)

// ValidPageStatus reports whether s is a known page status.
func ValidPageStatus(s string) bool {
	switch s {
	case PageStatusDraft, PageStatusDirty, PageStatusPublished:
		return true
	}
	return false
}

// ValidEventStatus reports whether s is a known event status.
func ValidEventStatus(s string) bool {
	switch s {
	case EventStatusDraft, EventStatusPublished, EventStatusCancelled:
		return true
	}
	return false
}
