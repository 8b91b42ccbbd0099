// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

var testCSRFKey = []byte("12345678901234567890123456789012")

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestDefaultCSRFConfig(t *testing.T) {
	dev := DefaultCSRFConfig(testCSRFKey, true)
	if len(dev.TrustedOrigins) != 3 {
		t.Fatalf("dev TrustedOrigins = %v, want 3 entries", dev.TrustedOrigins)
	}
	for _, origin := range dev.TrustedOrigins {
		if origin == "" || strings.Contains(origin, "://") {
			t.Errorf("trusted origin %q should be host:port without scheme", origin)
		}
	}

	prod := DefaultCSRFConfig(testCSRFKey, false)
	if len(prod.TrustedOrigins) != 0 {
		t.Errorf("prod TrustedOrigins = %v, want none", prod.TrustedOrigins)
	}
	if len(prod.AuthKey) != 32 {
		t.Errorf("AuthKey length = %d, want 32", len(prod.AuthKey))
	}
}

func TestCSRFAllowsSafeAndSameOrigin(t *testing.T) {
	h := CSRF(DefaultCSRFConfig(testCSRFKey, false))(okHandler())

	tests := []struct {
		name    string
		method  string
		headers map[string]string
	}{
		{name: "GET cross-site", method: http.MethodGet, headers: map[string]string{"Sec-Fetch-Site": "cross-site"}},
		{name: "POST same-origin", method: http.MethodPost, headers: map[string]string{"Sec-Fetch-Site": "same-origin"}},
		{name: "POST non-browser client", method: http.MethodPost},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/businesses/1/pages", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			if rr.Code != http.StatusOK {
				t.Errorf("status = %d, want 200", rr.Code)
			}
		})
	}
}

func TestCSRFRejectsCrossSitePost(t *testing.T) {
	h := CSRF(DefaultCSRFConfig(testCSRFKey, false))(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/api/businesses/1/pages", nil)
	req.Header.Set("Sec-Fetch-Site", "cross-site")
	req.Header.Set("Origin", "https://evil.example")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rr.Code)
	}
	if code := errorCode(t, rr); code != "csrf_failed" {
		t.Errorf("code = %q, want csrf_failed", code)
	}
}

func TestCSRFCustomErrorHandler(t *testing.T) {
	called := false
	cfg := DefaultCSRFConfig(testCSRFKey, false)
	cfg.ErrorHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusTeapot)
	})
	h := CSRF(cfg)(okHandler())

	req := httptest.NewRequest(http.MethodDelete, "/api/businesses/1/pages/2", nil)
	req.Header.Set("Sec-Fetch-Site", "cross-site")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if !called || rr.Code != http.StatusTeapot {
		t.Errorf("custom handler called = %v, status = %d", called, rr.Code)
	}
}

func TestSkipCSRFForAPIKeys(t *testing.T) {
	h := SkipCSRFForAPIKeys(CSRF(DefaultCSRFConfig(testCSRFKey, false))(okHandler()))

	withKey := httptest.NewRequest(http.MethodPost, "/api/businesses/1/pages", nil)
	withKey.Header.Set("Sec-Fetch-Site", "cross-site")
	withKey.Header.Set("Authorization", "Bearer ak_test")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, withKey)
	if rr.Code != http.StatusOK {
		t.Errorf("bearer request status = %d, want 200", rr.Code)
	}

	withoutKey := httptest.NewRequest(http.MethodPost, "/api/businesses/1/pages", nil)
	withoutKey.Header.Set("Sec-Fetch-Site", "cross-site")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, withoutKey)
	if rr.Code != http.StatusForbidden {
		t.Errorf("cookie request status = %d, want 403", rr.Code)
	}
}
