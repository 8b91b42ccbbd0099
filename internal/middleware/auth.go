// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for authentication,
// business scoping, rate limiting and request hardening of the JSON API.
package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"

	"github.com/olegiv/agencyhub/internal/model"
	"github.com/olegiv/agencyhub/internal/service"
	"github.com/olegiv/agencyhub/internal/session"
	"github.com/olegiv/agencyhub/internal/store"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// Context keys for caller data.
const (
	ContextKeyUser  ContextKey = "user"
	ContextKeyActor ContextKey = "actor"
)

// OrgIDParam is the route parameter naming the business.
const OrgIDParam = "orgID"

// Authenticator resolves sessions, memberships and API keys.
type Authenticator interface {
	GetUser(ctx context.Context, userID int64) (store.User, error)
	ResolveRole(ctx context.Context, userID, orgID int64) (model.Role, error)
	AuthenticateAPIKey(ctx context.Context, rawKey string) (service.Actor, error)
}

// Authenticate requires either a bearer API key or a logged-in session.
// A valid API key puts its service actor into the context; a session puts
// the user.
func Authenticate(sm *scs.SessionManager, auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if header := r.Header.Get("Authorization"); header != "" {
				rawKey, ok := bearerToken(header)
				if !ok {
					WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Invalid Authorization header format. Use: Bearer <api_key>", nil)
					return
				}
				actor, err := auth.AuthenticateAPIKey(r.Context(), rawKey)
				if err != nil {
					if !errors.Is(err, service.ErrInvalidCredentials) {
						slog.Error("failed to validate API key", "error", err)
						WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to validate API key", nil)
						return
					}
					WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired API key", nil)
					return
				}
				ctx := context.WithValue(r.Context(), ContextKeyActor, actor)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			userID := session.UserID(sm, r.Context())
			if userID == 0 {
				WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Authentication required", nil)
				return
			}

			user, err := auth.GetUser(r.Context(), userID)
			if err != nil {
				if !errors.Is(err, service.ErrNotFound) {
					slog.Error("failed to load session user", "user_id", userID, "error", err)
					WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to load user", nil)
					return
				}
				_ = session.Logout(sm, r.Context())
				WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Authentication required", nil)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUser, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireOrg resolves the caller's actor for the {orgID} route parameter.
// Non-members and API keys of another business get 404 so that foreign
// businesses are indistinguishable from missing ones.
func RequireOrg(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			orgID, err := strconv.ParseInt(chi.URLParam(r, OrgIDParam), 10, 64)
			if err != nil || orgID <= 0 {
				WriteAPIError(w, http.StatusNotFound, "not_found", "Business not found", nil)
				return
			}

			if actor, ok := GetActor(r); ok {
				if actor.OrgID != orgID {
					WriteAPIError(w, http.StatusNotFound, "not_found", "Business not found", nil)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			user := GetUser(r)
			if user == nil {
				WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Authentication required", nil)
				return
			}

			role, err := auth.ResolveRole(r.Context(), user.ID, orgID)
			if errors.Is(err, service.ErrNotFound) {
				WriteAPIError(w, http.StatusNotFound, "not_found", "Business not found", nil)
				return
			}
			if err != nil {
				slog.Error("failed to resolve membership", "user_id", user.ID, "org_id", orgID, "error", err)
				WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to resolve membership", nil)
				return
			}

			actor := service.UserActor(orgID, user.ID, role)
			ctx := context.WithValue(r.Context(), ContextKeyActor, actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAction rejects actors whose role lacks action. Use after
// RequireOrg.
func RequireAction(action model.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := GetActor(r)
			if !ok {
				WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Authentication required", nil)
				return
			}
			if !actor.Can(action) {
				slog.Warn("access denied",
					"status", http.StatusForbidden,
					"method", r.Method,
					"path", r.URL.Path,
					"user_id", actor.UserID,
					"org_id", actor.OrgID,
					"role", string(actor.Role),
					"required_action", string(action),
					"category", model.ActivityCategoryAuth,
				)
				WriteAPIError(w, http.StatusForbidden, "forbidden", "Insufficient permissions", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetUser retrieves the session user from the request context.
// Returns nil for API key requests and anonymous requests.
func GetUser(r *http.Request) *store.User {
	user, ok := r.Context().Value(ContextKeyUser).(store.User)
	if !ok {
		return nil
	}
	return &user
}

// GetActor retrieves the resolved actor from the request context.
func GetActor(r *http.Request) (service.Actor, bool) {
	actor, ok := r.Context().Value(ContextKeyActor).(service.Actor)
	return actor, ok
}

// IsAPIKeyRequest reports whether the request carries a bearer credential.
func IsAPIKeyRequest(r *http.Request) bool {
	_, ok := bearerToken(r.Header.Get("Authorization"))
	return ok
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
