// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/olegiv/agencyhub/internal/auth"
	"github.com/olegiv/agencyhub/internal/model"
	"github.com/olegiv/agencyhub/internal/store"
)

// AuthService authenticates users and API keys and resolves membership
// roles.
type AuthService struct {
	queries *store.Queries
	logger  *slog.Logger
	now     func() time.Time
}

// NewAuthService creates an AuthService.
func NewAuthService(db *sql.DB, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{queries: store.New(db), logger: logger, now: time.Now}
}

// Authenticate checks an email and password. Unknown emails and wrong
// passwords both return ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (store.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.queries.GetUserByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		return store.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return store.User{}, fmt.Errorf("loading user: %w", err)
	}

	ok, err := auth.CheckPassword(password, user.PasswordHash)
	if err != nil {
		s.logger.Warn("stored password hash is unreadable", "user_id", user.ID, "error", err)
		return store.User{}, ErrInvalidCredentials
	}
	if !ok {
		return store.User{}, ErrInvalidCredentials
	}

	now := stamp(s.now)
	if auth.NeedsRehash(user.PasswordHash) {
		if hash, err := auth.HashPassword(password); err == nil {
			if err := s.queries.UpdateUserPassword(ctx, store.UpdateUserPasswordParams{
				PasswordHash: hash,
				UpdatedAt:    now,
				ID:           user.ID,
			}); err != nil {
				s.logger.Warn("failed to upgrade password hash", "user_id", user.ID, "error", err)
			}
		}
	}
	if err := s.queries.UpdateUserLastLogin(ctx, store.UpdateUserLastLoginParams{
		LastLoginAt: sql.NullTime{Time: now, Valid: true},
		ID:          user.ID,
	}); err != nil {
		s.logger.Warn("failed to record last login", "user_id", user.ID, "error", err)
	}
	user.LastLoginAt = sql.NullTime{Time: now, Valid: true}
	return user, nil
}

// GetUser loads a user by id.
func (s *AuthService) GetUser(ctx context.Context, userID int64) (store.User, error) {
	user, err := s.queries.GetUserByID(ctx, userID)
	if err != nil {
		return store.User{}, notFoundOr(err, "user")
	}
	return user, nil
}

// ResolveRole returns the role of userID inside orgID. A user who is not a
// member gets ErrNotFound, so foreign businesses look absent.
func (s *AuthService) ResolveRole(ctx context.Context, userID, orgID int64) (model.Role, error) {
	m, err := s.queries.GetMembership(ctx, store.GetMembershipParams{BusinessID: orgID, UserID: userID})
	if err != nil {
		return "", notFoundOr(err, "business")
	}
	return model.NormalizeRole(m.Role), nil
}

// ListBusinesses returns the businesses a user belongs to.
func (s *AuthService) ListBusinesses(ctx context.Context, userID int64) ([]store.Business, error) {
	list, err := s.queries.ListBusinessesForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing businesses: %w", err)
	}
	return list, nil
}

// AuthenticateAPIKey resolves a raw bearer key into a service actor for the
// key's business.
func (s *AuthService) AuthenticateAPIKey(ctx context.Context, rawKey string) (Actor, error) {
	if rawKey == "" {
		return Actor{}, ErrInvalidCredentials
	}
	key, err := s.queries.GetAPIKeyByHash(ctx, model.HashAPIKey(rawKey))
	if errors.Is(err, sql.ErrNoRows) {
		return Actor{}, ErrInvalidCredentials
	}
	if err != nil {
		return Actor{}, fmt.Errorf("loading api key: %w", err)
	}
	now := stamp(s.now)
	if !model.APIKeyUsable(key, now) {
		return Actor{}, ErrInvalidCredentials
	}
	if err := s.queries.UpdateAPIKeyLastUsed(ctx, store.UpdateAPIKeyLastUsedParams{
		LastUsedAt: sql.NullTime{Time: now, Valid: true},
		ID:         key.ID,
	}); err != nil {
		s.logger.Warn("failed to record api key use", "api_key_id", key.ID, "error", err)
	}
	actor := ServiceActor(key.BusinessID)
	actor.APIKeyID = key.ID
	return actor, nil
}

// APIKeyInput holds the fields of a new API key. A zero ExpiresIn never
// expires.
type APIKeyInput struct {
	Name      string
	ExpiresIn time.Duration
}

// CreatedAPIKey is a stored key together with its raw value, which is only
// available at creation.
type CreatedAPIKey struct {
	store.ApiKey
	Key string `json:"key"`
}

// CreateAPIKey issues a key for the actor's business.
func (s *AuthService) CreateAPIKey(ctx context.Context, actor Actor, in APIKeyInput) (CreatedAPIKey, error) {
	if err := actor.require(model.ActionAdmin); err != nil {
		return CreatedAPIKey{}, err
	}
	if strings.TrimSpace(in.Name) == "" {
		return CreatedAPIKey{}, fieldError("name", "is required")
	}
	if in.ExpiresIn < 0 {
		return CreatedAPIKey{}, fieldError("expires_in", "must not be negative")
	}

	raw, prefix, err := model.GenerateAPIKey()
	if err != nil {
		return CreatedAPIKey{}, fmt.Errorf("generating api key: %w", err)
	}
	now := stamp(s.now)
	var expires sql.NullTime
	if in.ExpiresIn > 0 {
		expires = sql.NullTime{Time: now.Add(in.ExpiresIn), Valid: true}
	}
	key, err := s.queries.CreateAPIKey(ctx, store.CreateAPIKeyParams{
		BusinessID: actor.OrgID,
		Name:       in.Name,
		KeyHash:    model.HashAPIKey(raw),
		KeyPrefix:  prefix,
		IsActive:   true,
		ExpiresAt:  expires,
		CreatedBy:  actor.nullUserID(),
		CreatedAt:  now,
	})
	if err != nil {
		return CreatedAPIKey{}, fmt.Errorf("creating api key: %w", err)
	}
	s.logger.Info("api key created", "api_key_id", key.ID, "org_id", actor.OrgID, "prefix", prefix)
	return CreatedAPIKey{ApiKey: key, Key: raw}, nil
}

// ListAPIKeys returns the keys of the actor's business.
func (s *AuthService) ListAPIKeys(ctx context.Context, actor Actor) ([]store.ApiKey, error) {
	if err := actor.require(model.ActionAdmin); err != nil {
		return nil, err
	}
	keys, err := s.queries.ListAPIKeys(ctx, actor.OrgID)
	if err != nil {
		return nil, fmt.Errorf("listing api keys: %w", err)
	}
	return keys, nil
}

// DeleteAPIKey revokes a key.
func (s *AuthService) DeleteAPIKey(ctx context.Context, actor Actor, keyID int64) error {
	if err := actor.require(model.ActionAdmin); err != nil {
		return err
	}
	n, err := s.queries.DeleteAPIKey(ctx, keyID, actor.OrgID)
	return deleted(n, err, "api key")
}
