// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package api provides the JSON API handlers: auth, business-scoped
// resources, and the public and preview page renders.
package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"

	"github.com/olegiv/agencyhub/internal/cache"
	"github.com/olegiv/agencyhub/internal/middleware"
	"github.com/olegiv/agencyhub/internal/service"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// Config holds the dependencies of the API handlers.
type Config struct {
	DB       *sql.DB
	Sessions *scs.SessionManager
	Logger   *slog.Logger

	Auth      *service.AuthService
	Pages     *service.PageService
	Events    *service.EventService
	Bands     *service.BandService
	Menus     *service.MenuService
	Webhooks  *service.WebhookService
	Activity  *service.ActivityService
	Dashboard *service.DashboardService

	// Cache is reported by the health endpoint. Optional.
	Cache cache.Cache

	LoginProtection *middleware.LoginProtection

	// RateLimit and RateBurst configure per-caller limits on /api.
	// Zero disables rate limiting.
	RateLimit float64
	RateBurst int

	Version string
}

// Handler serves the JSON API.
type Handler struct {
	db       *sql.DB
	sessions *scs.SessionManager
	logger   *slog.Logger

	auth      *service.AuthService
	pages     *service.PageService
	events    *service.EventService
	bands     *service.BandService
	menus     *service.MenuService
	webhooks  *service.WebhookService
	activity  *service.ActivityService
	dashboard *service.DashboardService
	cache     cache.Cache

	loginProtection *middleware.LoginProtection
	rateLimit       float64
	rateBurst       int
	version         string
}

// NewHandler creates a new API handler.
func NewHandler(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	lp := cfg.LoginProtection
	if lp == nil {
		lp = middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	}
	version := cfg.Version
	if version == "" {
		version = "dev"
	}
	return &Handler{
		db:              cfg.DB,
		sessions:        cfg.Sessions,
		logger:          logger,
		auth:            cfg.Auth,
		pages:           cfg.Pages,
		events:          cfg.Events,
		bands:           cfg.Bands,
		menus:           cfg.Menus,
		webhooks:        cfg.Webhooks,
		activity:        cfg.Activity,
		dashboard:       cfg.Dashboard,
		cache:           cfg.Cache,
		loginProtection: lp,
		rateLimit:       cfg.RateLimit,
		rateBurst:       cfg.RateBurst,
		version:         version,
	}
}

// Response is the standard API response wrapper.
type Response struct {
	Data any   `json:"data"`
	Meta *Meta `json:"meta,omitempty"`
}

// Meta contains pagination metadata.
type Meta struct {
	Limit  int64 `json:"limit,omitempty"`
	Offset int64 `json:"offset,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a successful JSON response.
func WriteSuccess(w http.ResponseWriter, data any, meta *Meta) {
	WriteJSON(w, http.StatusOK, Response{Data: data, Meta: meta})
}

// WriteCreated writes a 201 Created JSON response.
func WriteCreated(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusCreated, Response{Data: data})
}

// WriteNoContent writes a 204 No Content response.
func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// WriteBadRequest writes a 400 Bad Request response.
func WriteBadRequest(w http.ResponseWriter, message string, details map[string]string) {
	middleware.WriteAPIError(w, http.StatusBadRequest, "bad_request", message, details)
}

// WriteNotFound writes a 404 Not Found response.
func WriteNotFound(w http.ResponseWriter, message string) {
	middleware.WriteAPIError(w, http.StatusNotFound, "not_found", message, nil)
}

// WriteUnauthorized writes a 401 Unauthorized response.
func WriteUnauthorized(w http.ResponseWriter, message string) {
	middleware.WriteAPIError(w, http.StatusUnauthorized, "unauthorized", message, nil)
}

// WriteValidationError writes a 422 Unprocessable Entity response with field errors.
func WriteValidationError(w http.ResponseWriter, fieldErrors map[string]string) {
	middleware.WriteAPIError(w, http.StatusUnprocessableEntity, "validation_error", "Validation failed", fieldErrors)
}

// WriteInternalError writes a 500 Internal Server Error response.
func WriteInternalError(w http.ResponseWriter, message string) {
	middleware.WriteAPIError(w, http.StatusInternalServerError, "internal_error", message, nil)
}

// writeServiceError maps a service error onto the API error envelope.
// Unexpected errors are logged and reported as 500 without detail.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		WriteValidationError(w, verr.Fields)
	case errors.Is(err, service.ErrValidation):
		WriteValidationError(w, nil)
	case errors.Is(err, service.ErrNotFound):
		WriteNotFound(w, "Resource not found")
	case errors.Is(err, service.ErrForbidden):
		middleware.WriteAPIError(w, http.StatusForbidden, "forbidden", "Insufficient permissions", nil)
	case errors.Is(err, service.ErrConflict):
		middleware.WriteAPIError(w, http.StatusConflict, "conflict", "The resource was modified by someone else", nil)
	case errors.Is(err, service.ErrInvalidCredentials):
		WriteUnauthorized(w, "Invalid credentials")
	default:
		h.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		WriteInternalError(w, "Internal server error")
	}
}

// decodeJSON reads a JSON body into dst. On failure a 400 is written and
// false returned.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		WriteBadRequest(w, "Invalid JSON body", map[string]string{"body": err.Error()})
		return false
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		WriteBadRequest(w, "Request body must contain a single JSON object", nil)
		return false
	}
	return true
}

// idParam parses a positive integer route parameter. On failure a 404 is
// written and false returned.
func idParam(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		WriteNotFound(w, "Resource not found")
		return 0, false
	}
	return id, true
}

// queryInt parses an optional integer query parameter.
func queryInt(r *http.Request, name string) int64 {
	n, err := strconv.ParseInt(r.URL.Query().Get(name), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// queryID parses an optional id query parameter. ok is false when the
// parameter is present but not a positive int64.
func queryID(r *http.Request, name string) (id int64, present, ok bool) {
	q := r.URL.Query()
	if !q.Has(name) {
		return 0, false, true
	}
	id, err := strconv.ParseInt(q.Get(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, true, false
	}
	return id, true, true
}

// actor returns the actor resolved by middleware.RequireOrg.
func actor(r *http.Request) service.Actor {
	a, _ := middleware.GetActor(r)
	return a
}
