// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"time"

	"github.com/olegiv/agencyhub/internal/store"
)

// APIKeyPrefixLen is the number of leading key characters kept in clear
// text so users can tell keys apart.
const APIKeyPrefixLen = 8

// GenerateAPIKey generates a new random API key.
// Returns the raw key (shown to the user once) and its prefix.
func GenerateAPIKey() (rawKey string, prefix string, err error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", "", err
	}
	rawKey = base64.RawURLEncoding.EncodeToString(buf)
	return rawKey, rawKey[:APIKeyPrefixLen], nil
}

// HashAPIKey returns the SHA-256 hex digest stored for a raw key.
func HashAPIKey(key string) string {
	hash := sha256.Sum256([]byte(key))
	return hex.EncodeToString(hash[:])
}

// APIKeyUsable reports whether a stored key is active and unexpired at now.
func APIKeyUsable(k store.ApiKey, now time.Time) bool {
	if !k.IsActive {
		return false
	}
	return !k.ExpiresAt.Valid || now.Before(k.ExpiresAt.Time)
}
