// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package logging provides a slog handler that also persists WARN and ERROR
// records to the activity log.
package logging

import (
	"context"
	"log/slog"
	"strings"

	"github.com/olegiv/agencyhub/internal/model"
	"github.com/olegiv/agencyhub/internal/service"
)

// Recorder persists activity entries.
type Recorder interface {
	Log(ctx context.Context, e service.ActivityEntry) error
}

// Attribute keys with a dedicated activity log column.
const (
	AttrCategory = "category"
	AttrOrgID    = "org_id"
	AttrUserID   = "user_id"
)

// ActivityLogHandler wraps another handler and copies records at or above
// its level into the activity log.
type ActivityLogHandler struct {
	inner    slog.Handler
	recorder Recorder
	level    slog.Level
	attrs    []slog.Attr
}

// NewActivityLogHandler creates a handler that persists WARN and above.
func NewActivityLogHandler(inner slog.Handler, recorder Recorder) *ActivityLogHandler {
	return NewActivityLogHandlerWithLevel(inner, recorder, slog.LevelWarn)
}

// NewActivityLogHandlerWithLevel creates a handler with a custom minimum level.
func NewActivityLogHandlerWithLevel(inner slog.Handler, recorder Recorder, level slog.Level) *ActivityLogHandler {
	return &ActivityLogHandler{
		inner:    inner,
		recorder: recorder,
		level:    level,
	}
}

// Enabled implements slog.Handler. Records at the persist level are wanted
// even when the inner handler filters them out.
func (h *ActivityLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.level || h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *ActivityLogHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.inner.Enabled(ctx, r.Level) {
		if err := h.inner.Handle(ctx, r); err != nil {
			return err
		}
	}

	if r.Level >= h.level {
		h.record(ctx, r)
	}
	return nil
}

// WithAttrs implements slog.Handler.
func (h *ActivityLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ActivityLogHandler{
		inner:    h.inner.WithAttrs(attrs),
		recorder: h.recorder,
		level:    h.level,
		attrs:    append(h.attrs[:len(h.attrs):len(h.attrs)], attrs...),
	}
}

// WithGroup implements slog.Handler. Grouped attributes are still
// persisted under their own keys.
func (h *ActivityLogHandler) WithGroup(name string) slog.Handler {
	return &ActivityLogHandler{
		inner:    h.inner.WithGroup(name),
		recorder: h.recorder,
		level:    h.level,
		attrs:    h.attrs,
	}
}

func (h *ActivityLogHandler) record(ctx context.Context, r slog.Record) {
	entry := service.ActivityEntry{
		Level:    activityLevel(r.Level),
		Message:  r.Message,
		Metadata: make(map[string]any),
	}

	collect := func(a slog.Attr) bool {
		v := a.Value.Resolve()
		switch a.Key {
		case AttrCategory:
			entry.Category = v.String()
		case AttrOrgID:
			if id, ok := int64Value(v); ok {
				entry.OrgID = &id
			}
		case AttrUserID:
			if id, ok := int64Value(v); ok {
				entry.UserID = &id
			}
		default:
			entry.Metadata[a.Key] = metadataValue(v)
		}
		return true
	}
	for _, a := range h.attrs {
		collect(a)
	}
	r.Attrs(collect)

	if entry.Category == "" {
		entry.Category = inferCategory(r.Message)
	}

	// Keep the entry even if the request that logged it is cancelled.
	_ = h.recorder.Log(context.WithoutCancel(ctx), entry)
}

func activityLevel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return model.ActivityLevelError
	case level >= slog.LevelWarn:
		return model.ActivityLevelWarning
	default:
		return model.ActivityLevelInfo
	}
}

// inferCategory guesses a category from the message text.
func inferCategory(message string) string {
	msg := strings.ToLower(message)
	switch {
	case strings.Contains(msg, "auth") || strings.Contains(msg, "login") || strings.Contains(msg, "logout"):
		return model.ActivityCategoryAuth
	case strings.Contains(msg, "webhook") || strings.Contains(msg, "deliver"):
		return model.ActivityCategoryWebhook
	case strings.Contains(msg, "page") || strings.Contains(msg, "section") || strings.Contains(msg, "publish"):
		return model.ActivityCategoryPage
	case strings.Contains(msg, "event") || strings.Contains(msg, "instance"):
		return model.ActivityCategoryEvent
	case strings.Contains(msg, "menu"):
		return model.ActivityCategoryMenu
	case strings.Contains(msg, "cache") || strings.Contains(msg, "redis"):
		return model.ActivityCategoryCache
	default:
		return model.ActivityCategorySystem
	}
}

func int64Value(v slog.Value) (int64, bool) {
	switch v.Kind() {
	case slog.KindInt64:
		return v.Int64(), true
	case slog.KindUint64:
		return int64(v.Uint64()), true
	default:
		return 0, false
	}
}

func metadataValue(v slog.Value) any {
	switch v.Kind() {
	case slog.KindString:
		return v.String()
	case slog.KindInt64:
		return v.Int64()
	case slog.KindUint64:
		return v.Uint64()
	case slog.KindFloat64:
		return v.Float64()
	case slog.KindBool:
		return v.Bool()
	default:
		return v.String()
	}
}
