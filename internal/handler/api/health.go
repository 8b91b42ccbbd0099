// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/olegiv/agencyhub/internal/cache"
)

var startTime = time.Now()

// HealthStatus represents the overall health status.
type HealthStatus struct {
	Status    string           `json:"status"`
	Timestamp time.Time        `json:"timestamp"`
	Uptime    string           `json:"uptime"`
	Version   string           `json:"version"`
	Checks    map[string]Check `json:"checks"`
	Cache     *cache.Stats     `json:"cache,omitempty"`
}

// Check represents a single health check result.
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

type pinger interface {
	Ping(ctx context.Context) error
}

// Health handles GET /api/health. It answers 503 when a dependency is down.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]Check{"database": timedCheck(func() error { return h.db.PingContext(ctx) })}
	var stats *cache.Stats
	if h.cache != nil {
		s := h.cache.Stats()
		stats = &s
		if p, ok := h.cache.(pinger); ok {
			checks["cache"] = timedCheck(func() error { return p.Ping(ctx) })
		}
	}

	status := "healthy"
	code := http.StatusOK
	for _, c := range checks {
		if c.Status != "healthy" {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
	}

	WriteJSON(w, code, HealthStatus{
		Status:    status,
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(startTime).Round(time.Second).String(),
		Version:   h.version,
		Checks:    checks,
		Cache:     stats,
	})
}

func timedCheck(fn func() error) Check {
	start := time.Now()
	err := fn()
	latency := time.Since(start).String()
	if err != nil {
		return Check{Status: "unhealthy", Message: err.Error(), Latency: latency}
	}
	return Check{Status: "healthy", Latency: latency}
}
