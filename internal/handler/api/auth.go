// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/olegiv/agencyhub/internal/middleware"
	"github.com/olegiv/agencyhub/internal/model"
	"github.com/olegiv/agencyhub/internal/service"
	"github.com/olegiv/agencyhub/internal/session"
	"github.com/olegiv/agencyhub/internal/store"
	"github.com/olegiv/agencyhub/internal/util"
)

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse represents a user in API responses.
type UserResponse struct {
	ID          int64      `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// MeResponse describes the caller.
type MeResponse struct {
	User       *UserResponse    `json:"user,omitempty"`
	Businesses []store.Business `json:"businesses,omitempty"`
	BusinessID int64            `json:"business_id,omitempty"`
	APIKeyID   int64            `json:"api_key_id,omitempty"`
}

func userToResponse(u store.User) *UserResponse {
	return &UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		LastLoginAt: util.PtrFromNullTime(u.LastLoginAt),
	}
}

// Login handles POST /api/auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		WriteValidationError(w, map[string]string{"email": "email and password are required"})
		return
	}

	clientIP := middleware.ClientIP(r)

	if locked, remaining := h.loginProtection.IsAccountLocked(email); locked {
		_ = h.activity.LogAuthEvent(r.Context(), model.ActivityLevelWarning, "Login attempt on locked account", nil, clientIP, map[string]any{"email": email})
		w.Header().Set("Retry-After", strconv.Itoa(int(remaining.Seconds())+1))
		middleware.WriteAPIError(w, http.StatusTooManyRequests, "account_locked", "Account temporarily locked. Try again later.", nil)
		return
	}

	user, err := h.auth.Authenticate(r.Context(), email, req.Password)
	if err != nil {
		if !errors.Is(err, service.ErrInvalidCredentials) {
			h.writeServiceError(w, r, err)
			return
		}
		_ = h.activity.LogAuthEvent(r.Context(), model.ActivityLevelWarning, "Login failed", nil, clientIP, map[string]any{"email": email})
		if locked, lockDuration := h.loginProtection.RecordFailedAttempt(email); locked {
			_ = h.activity.LogAuthEvent(r.Context(), model.ActivityLevelWarning, "Account locked due to failed attempts", nil, clientIP, map[string]any{"email": email, "duration": lockDuration.String()})
			w.Header().Set("Retry-After", strconv.Itoa(int(lockDuration.Seconds())))
			middleware.WriteAPIError(w, http.StatusTooManyRequests, "account_locked", "Too many failed attempts. Account temporarily locked.", nil)
			return
		}
		details := map[string]string{"remaining_attempts": strconv.Itoa(h.loginProtection.GetRemainingAttempts(email))}
		middleware.WriteAPIError(w, http.StatusUnauthorized, "invalid_credentials", "Invalid email or password", details)
		return
	}

	h.loginProtection.RecordSuccessfulLogin(email)

	if err := session.Login(h.sessions, r.Context(), user.ID); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.logger.Info("user logged in", "user_id", user.ID)
	_ = h.activity.LogAuthEvent(r.Context(), model.ActivityLevelInfo, "User logged in", &user.ID, clientIP, nil)

	businesses, err := h.auth.ListBusinesses(r.Context(), user.ID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, MeResponse{User: userToResponse(user), Businesses: businesses}, nil)
}

// Logout handles POST /api/auth/logout.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	userID := session.UserID(h.sessions, r.Context())
	if err := session.Logout(h.sessions, r.Context()); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if userID != 0 {
		_ = h.activity.LogAuthEvent(r.Context(), model.ActivityLevelInfo, "User logged out", &userID, middleware.ClientIP(r), nil)
	}
	WriteNoContent(w)
}

// Me handles GET /api/auth/me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	if a, ok := middleware.GetActor(r); ok && a.APIKeyID != 0 {
		WriteSuccess(w, MeResponse{BusinessID: a.OrgID, APIKeyID: a.APIKeyID}, nil)
		return
	}

	user := middleware.GetUser(r)
	if user == nil {
		WriteUnauthorized(w, "Authentication required")
		return
	}
	businesses, err := h.auth.ListBusinesses(r.Context(), user.ID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, MeResponse{User: userToResponse(*user), Businesses: businesses}, nil)
}
