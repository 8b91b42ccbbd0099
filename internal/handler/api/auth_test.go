// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginMeLogout(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.member("ed@example.com", "editor")

	rec := env.do(http.MethodGet, "/api/auth/me", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var me MeResponse
	decodeData(t, rec, &me)
	require.NotNil(t, me.User)
	assert.Equal(t, "ed@example.com", me.User.Email)
	require.Len(t, me.Businesses, 1)
	assert.Equal(t, env.org.ID, me.Businesses[0].ID)

	rec = env.do(http.MethodPost, "/api/auth/logout", nil, cookie)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(http.MethodGet, "/api/auth/me", nil, cookie)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginValidation(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/api/auth/login", map[string]string{"email": "", "password": ""}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "validation_error", errorCode(t, rec))

	rec = env.do(http.MethodPost, "/api/auth/login", `{"email":"a@b.c","password":"x","extra":1}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "bad_request", errorCode(t, rec))
}

func TestLoginLockout(t *testing.T) {
	env := newTestEnv(t)
	env.member("owner@example.com", "owner")

	wrong := map[string]string{"email": "owner@example.com", "password": "nope"}

	for range 2 {
		rec := env.do(http.MethodPost, "/api/auth/login", wrong, nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "invalid_credentials", errorCode(t, rec))
	}

	rec := env.do(http.MethodPost, "/api/auth/login", wrong, nil)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "account_locked", errorCode(t, rec))
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// The right password is refused while locked.
	rec = env.do(http.MethodPost, "/api/auth/login", map[string]string{"email": "owner@example.com", "password": testPassword}, nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestBusinessRoutesRequireMembership(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.member("viewer@example.com", "viewer")

	rec := env.do(http.MethodGet, env.biz("/pages"), nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(http.MethodGet, env.biz("/pages"), nil, cookie)
	assert.Equal(t, http.StatusOK, rec.Code)

	// A business the user does not belong to looks absent.
	rec = env.do(http.MethodGet, bizOf(env.other.ID, "/pages"), nil, cookie)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(http.MethodPost, env.biz("/pages"), map[string]string{"name": "Home"}, cookie)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "forbidden", errorCode(t, rec))
}

func TestAPIKeyAuthentication(t *testing.T) {
	env := newTestEnv(t)
	owner := env.member("owner@example.com", "owner")

	rec := env.do(http.MethodPost, env.biz("/api-keys"), map[string]any{"name": "deploy", "expires_in_days": 30}, owner)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var key APIKeyResponse
	decodeData(t, rec, &key)
	require.NotEmpty(t, key.Key)
	require.NotNil(t, key.ExpiresAt)

	rec = env.do(http.MethodGet, "/api/auth/me", nil, nil, "Authorization", "Bearer "+key.Key)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var me MeResponse
	decodeData(t, rec, &me)
	assert.Equal(t, env.org.ID, me.BusinessID)
	assert.Equal(t, key.ID, me.APIKeyID)

	rec = env.do(http.MethodGet, env.biz("/pages"), nil, nil, "Authorization", "Bearer "+key.Key)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Keys are bound to their business.
	rec = env.do(http.MethodGet, bizOf(env.other.ID, "/pages"), nil, nil, "Authorization", "Bearer "+key.Key)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(http.MethodGet, env.biz("/pages"), nil, nil, "Authorization", "Bearer nope")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(http.MethodPost, env.biz("/api-keys"), map[string]any{"name": "bad", "expires_in_days": 0}, owner)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
