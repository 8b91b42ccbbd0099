// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/agencyhub/internal/auth"
	"github.com/olegiv/agencyhub/internal/model"
	"github.com/olegiv/agencyhub/internal/testutil"
)

func TestAuthenticate(t *testing.T) {
	env := newTestEnv(t)
	svc := NewAuthService(env.db, testutil.TestLoggerSilent())
	ctx := context.Background()

	hash, err := auth.HashPassword("correct horse")
	require.NoError(t, err)
	user := testutil.CreateUser(t, env.db, "ana@example.com", hash)

	got, err := svc.Authenticate(ctx, " Ana@Example.com ", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.True(t, got.LastLoginAt.Valid)

	_, err = svc.Authenticate(ctx, "ana@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, "nobody@example.com", "correct horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestResolveRole(t *testing.T) {
	env := newTestEnv(t)
	svc := NewAuthService(env.db, testutil.TestLoggerSilent())
	ctx := context.Background()

	user := testutil.CreateUser(t, env.db, "ed@example.com", "")
	testutil.AddMember(t, env.db, env.org.ID, user.ID, string(model.RoleEditor))

	role, err := svc.ResolveRole(ctx, user.ID, env.org.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleEditor, role)

	_, err = svc.ResolveRole(ctx, user.ID, env.other.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	list, err := svc.ListBusinesses(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, env.org.ID, list[0].ID)
}

func TestAPIKeys(t *testing.T) {
	env := newTestEnv(t)
	svc := NewAuthService(env.db, testutil.TestLoggerSilent())
	ctx := context.Background()

	_, err := svc.CreateAPIKey(ctx, env.editor, APIKeyInput{Name: "ci"})
	assert.ErrorIs(t, err, ErrForbidden)

	created, err := svc.CreateAPIKey(ctx, env.admin, APIKeyInput{Name: "ci"})
	require.NoError(t, err)
	assert.Equal(t, created.Key[:model.APIKeyPrefixLen], created.KeyPrefix)

	actor, err := svc.AuthenticateAPIKey(ctx, created.Key)
	require.NoError(t, err)
	assert.Equal(t, env.org.ID, actor.OrgID)
	assert.True(t, actor.Elevated)
	assert.Equal(t, created.ID, actor.APIKeyID)
	assert.True(t, actor.Can(model.ActionAdmin))

	_, err = svc.AuthenticateAPIKey(ctx, "not-a-key")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	keys, err := svc.ListAPIKeys(ctx, env.admin)
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.True(t, keys[0].LastUsedAt.Valid)

	require.NoError(t, svc.DeleteAPIKey(ctx, env.admin, created.ID))
	_, err = svc.AuthenticateAPIKey(ctx, created.Key)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestExpiredAPIKey(t *testing.T) {
	env := newTestEnv(t)
	svc := NewAuthService(env.db, testutil.TestLoggerSilent())
	ctx := context.Background()

	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return clock }

	created, err := svc.CreateAPIKey(ctx, env.admin, APIKeyInput{Name: "temp", ExpiresIn: time.Hour})
	require.NoError(t, err)
	_, err = svc.AuthenticateAPIKey(ctx, created.Key)
	require.NoError(t, err)

	clock = clock.Add(2 * time.Hour)
	_, err = svc.AuthenticateAPIKey(ctx, created.Key)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
