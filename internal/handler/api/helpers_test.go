// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/agencyhub/internal/auth"
	"github.com/olegiv/agencyhub/internal/middleware"
	"github.com/olegiv/agencyhub/internal/service"
	"github.com/olegiv/agencyhub/internal/store"
	"github.com/olegiv/agencyhub/internal/testutil"
)

const testPassword = "correct horse battery"

// testEnv is a full API stack over a migrated SQLite database.
type testEnv struct {
	t      *testing.T
	db     *sql.DB
	router http.Handler
	org    store.Business
	other  store.Business
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)

	logger := testutil.TestLoggerSilent()
	sm := scs.New()
	lp := middleware.NewLoginProtection(middleware.LoginProtectionConfig{
		IPRateLimit:       100,
		IPBurst:           100,
		MaxFailedAttempts: 3,
	})
	t.Cleanup(lp.Stop)

	h := NewHandler(Config{
		DB:              db,
		Sessions:        sm,
		Logger:          logger,
		Auth:            service.NewAuthService(db, logger),
		Pages:           service.NewPageService(db, logger),
		Events:          service.NewEventService(db, logger, nil),
		Bands:           service.NewBandService(db, logger),
		Menus:           service.NewMenuService(db, logger),
		Webhooks:        service.NewWebhookService(db, logger, func(context.Context, string) error { return nil }),
		Activity:        service.NewActivityService(db),
		Dashboard:       service.NewDashboardService(db),
		LoginProtection: lp,
		Version:         "test",
	})

	r := chi.NewRouter()
	r.Use(sm.LoadAndSave)
	h.Routes(r)

	return &testEnv{
		t:      t,
		db:     db,
		router: r,
		org:    testutil.CreateBusiness(t, db, "blue-door"),
		other:  testutil.CreateBusiness(t, db, "red-lion"),
	}
}

// member creates a user with role in env.org and returns its session cookie.
func (e *testEnv) member(email, role string) *http.Cookie {
	e.t.Helper()

	hash, err := auth.HashPassword(testPassword)
	require.NoError(e.t, err)
	user := testutil.CreateUser(e.t, e.db, email, hash)
	testutil.AddMember(e.t, e.db, e.org.ID, user.ID, role)
	return e.login(email, testPassword)
}

func (e *testEnv) login(email, password string) *http.Cookie {
	e.t.Helper()

	rec := e.do(http.MethodPost, "/api/auth/login", map[string]string{"email": email, "password": password}, nil)
	require.Equal(e.t, http.StatusOK, rec.Code, rec.Body.String())
	for _, c := range rec.Result().Cookies() {
		if c.Name == "session" {
			return c
		}
	}
	e.t.Fatalf("login for %s set no session cookie", email)
	return nil
}

// biz prefixes path with the business route of env.org.
func (e *testEnv) biz(path string) string {
	return bizOf(e.org.ID, path)
}

// bizOf prefixes path with the business route of orgID.
func bizOf(orgID int64, path string) string {
	return "/api/businesses/" + strconv.FormatInt(orgID, 10) + path
}

// do sends a request with an optional JSON body. cookie may be nil.
func (e *testEnv) do(method, path string, body any, cookie *http.Cookie, headers ...string) *httptest.ResponseRecorder {
	e.t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(e.t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// decodeData decodes the "data" member of a success envelope into dst.
func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()

	var env struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, dst), string(env.Data))
}

// errorCode returns the "error.code" member of an error envelope.
func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var env struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env.Error.Code
}

// decodeEnvelope decodes the whole response body into dst.
func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst), rec.Body.String())
}
