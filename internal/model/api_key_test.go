// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/olegiv/agencyhub/internal/store"
)

func TestGenerateAPIKey(t *testing.T) {
	rawKey, prefix, err := GenerateAPIKey()
	if err != nil {
		t.Fatalf("GenerateAPIKey() error = %v", err)
	}

	if len(rawKey) < 32 {
		t.Errorf("GenerateAPIKey() rawKey length = %d, want >= 32", len(rawKey))
	}
	if len(prefix) != APIKeyPrefixLen {
		t.Errorf("GenerateAPIKey() prefix length = %d, want %d", len(prefix), APIKeyPrefixLen)
	}
	if !strings.HasPrefix(rawKey, prefix) {
		t.Errorf("GenerateAPIKey() prefix %q is not prefix of rawKey %q", prefix, rawKey)
	}

	rawKey2, _, err := GenerateAPIKey()
	if err != nil {
		t.Fatalf("GenerateAPIKey() second call error = %v", err)
	}
	if rawKey == rawKey2 {
		t.Error("GenerateAPIKey() generated identical keys")
	}
}

func TestHashAPIKey(t *testing.T) {
	hash := HashAPIKey("test-api-key-12345")
	if len(hash) != 64 {
		t.Errorf("HashAPIKey() length = %d, want 64", len(hash))
	}
	if hash != HashAPIKey("test-api-key-12345") {
		t.Error("HashAPIKey() is not deterministic")
	}
	if hash == HashAPIKey("different-key") {
		t.Error("HashAPIKey() produced same hash for different inputs")
	}
}

func TestAPIKeyUsable(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		key  store.ApiKey
		want bool
	}{
		{"active no expiry", store.ApiKey{IsActive: true}, true},
		{"inactive", store.ApiKey{IsActive: false}, false},
		{"expired", store.ApiKey{IsActive: true, ExpiresAt: sql.NullTime{Time: now.Add(-time.Minute), Valid: true}}, false},
		{"future expiry", store.ApiKey{IsActive: true, ExpiresAt: sql.NullTime{Time: now.Add(time.Hour), Valid: true}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := APIKeyUsable(tt.key, now); got != tt.want {
				t.Errorf("APIKeyUsable() = %v, want %v", got, tt.want)
			}
		})
	}
}
