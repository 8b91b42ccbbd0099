// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package webhook

import (
	"testing"
	"time"
)

func TestGenerateSignature(t *testing.T) {
	tests := []struct {
		name     string
		payload  []byte
		secret   string
		expected string
	}{
		{
			name:     "empty payload",
			payload:  []byte{},
			secret:   "secret",
			expected: "f9e66e179b6747ae54108f82f8ade8b3c25d76fd30afde6c395822c530196169",
		},
		{
			name:     "event payload",
			payload:  []byte(`{"type":"page.published"}`),
			secret:   "mysecret",
			expected: "dc67899bd0dc83f714eab9527fc5d5906defaa0b672872e881a4307a331c83f5",
		},
		{
			name:     "empty secret",
			payload:  []byte(`test`),
			secret:   "",
			expected: "43b0cef99265f9e34c10ea9d3501926d27b39f57c6d674561d8ba236e7a819fb",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GenerateSignature(tt.payload, tt.secret); got != tt.expected {
				t.Errorf("GenerateSignature() = %s, want %s", got, tt.expected)
			}
		})
	}
}

func TestVerifySignature(t *testing.T) {
	tests := []struct {
		name      string
		payload   []byte
		secret    string
		wantValid bool
	}{
		{
			name:      "valid signature",
			payload:   []byte(`{"event":"test"}`),
			secret:    "mysecret",
			wantValid: true,
		},
		{
			name:      "empty payload valid signature",
			payload:   []byte{},
			secret:    "secret",
			wantValid: true,
		},
		{
			name:      "valid with unicode payload",
			payload:   []byte(`{"title":"Тест","content":"日本語"}`),
			secret:    "unicode-secret-ключ",
			wantValid: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Generate signature with secret
			signature := GenerateSignature(tt.payload, tt.secret)

			// Verify with correct secret
			if valid := VerifySignature(tt.payload, signature, tt.secret); valid != tt.wantValid {
				t.Errorf("VerifySignature() = %v, want %v", valid, tt.wantValid)
			}

			// Verify fails with wrong secret
			if tt.wantValid {
				wrongSig := VerifySignature(tt.payload, signature, "wrong-secret")
				if wrongSig {
					t.Error("VerifySignature() should return false with wrong secret")
				}
			}
		})
	}
}

func TestVerifySignature_InvalidSignature(t *testing.T) {
	payload := []byte(`{"test":"data"}`)
	secret := "mysecret"

	tests := []struct {
		name      string
		signature string
	}{
		{"empty signature", ""},
		{"invalid hex", "not-a-valid-hex-string"},
		{"wrong length", "abc123"},
		{"tampered signature", "0000000000000000000000000000000000000000000000000000000000000000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if VerifySignature(payload, tt.signature, secret) {
				t.Error("VerifySignature() should return false for invalid signature")
			}
		})
	}
}

func TestCalculateBackoff(t *testing.T) {
	tests := []struct {
		name     string
		attempt  int64
		expected time.Duration
	}{
		{"attempt 0", 0, 1 * time.Minute},     // Treated as attempt 1
		{"attempt 1", 1, 1 * time.Minute},     // 1 min * 2^0 = 1 min
		{"attempt 2", 2, 2 * time.Minute},     // 1 min * 2^1 = 2 min
		{"attempt 3", 3, 4 * time.Minute},     // 1 min * 2^2 = 4 min
		{"attempt 4", 4, 8 * time.Minute},     // 1 min * 2^3 = 8 min
		{"attempt 5", 5, 16 * time.Minute},    // 1 min * 2^4 = 16 min
		{"attempt 10", 10, 512 * time.Minute}, // 1 min * 2^9 = 512 min (~8.5 hours)
		{"attempt 15", 15, 24 * time.Hour},    // Would be >24 hours, capped at MaxBackoff
		{"attempt 20", 20, 24 * time.Hour},    // Capped at MaxBackoff
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := calculateBackoff(tt.attempt)
			if result != tt.expected {
				t.Errorf("calculateBackoff(%d) = %v, want %v", tt.attempt, result, tt.expected)
			}
		})
	}
}

func TestCalculateBackoff_NeverExceedsMax(t *testing.T) {
	// Test that no matter how many attempts, backoff never exceeds MaxBackoff
	for attempt := int64(1); attempt <= 100; attempt++ {
		result := calculateBackoff(attempt)
		if result > MaxBackoff {
			t.Errorf("calculateBackoff(%d) = %v, exceeds MaxBackoff %v", attempt, result, MaxBackoff)
		}
	}
}
