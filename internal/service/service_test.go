// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/olegiv/agencyhub/internal/model"
	"github.com/olegiv/agencyhub/internal/store"
	"github.com/olegiv/agencyhub/internal/testutil"
)

type testEnv struct {
	db     *sql.DB
	org    store.Business
	other  store.Business
	editor Actor
	viewer Actor
	admin  Actor
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)

	org := testutil.CreateBusiness(t, db, "blue-door")
	other := testutil.CreateBusiness(t, db, "red-lion")
	return &testEnv{
		db:     db,
		org:    org,
		other:  other,
		editor: UserActor(org.ID, 0, model.RoleEditor),
		viewer: UserActor(org.ID, 0, model.RoleViewer),
		admin:  UserActor(org.ID, 0, model.RoleAdmin),
	}
}

func (e *testEnv) pages(t *testing.T, opts ...PageOption) *PageService {
	t.Helper()
	return NewPageService(e.db, testutil.TestLoggerSilent(), opts...)
}

func raw(s string) json.RawMessage { return json.RawMessage(s) }

// createPage makes a draft page with one section per key.
func createPage(t *testing.T, svc *PageService, actor Actor, slug string, keys ...string) (store.Page, []store.PageSection) {
	t.Helper()
	ctx := context.Background()

	page, err := svc.CreatePage(ctx, actor, PageInput{Name: slug, Slug: slug})
	require.NoError(t, err)

	sections := make([]store.PageSection, 0, len(keys))
	for _, key := range keys {
		sec, err := svc.CreateSection(ctx, actor, page.ID, SectionInput{Key: key, Label: key})
		require.NoError(t, err)
		sections = append(sections, sec)
	}
	return page, sections
}

func reloadPage(t *testing.T, svc *PageService, actor Actor, id int64) store.Page {
	t.Helper()
	page, err := svc.GetPage(context.Background(), actor, id)
	require.NoError(t, err)
	return page
}

func reloadSection(t *testing.T, svc *PageService, actor Actor, id int64) store.PageSection {
	t.Helper()
	sec, err := svc.GetSection(context.Background(), actor, id)
	require.NoError(t, err)
	return sec
}

// recordingDispatcher captures dispatched events.
type recordingDispatcher struct {
	mu     sync.Mutex
	events []string
}

func (d *recordingDispatcher) DispatchEvent(_ context.Context, _ int64, eventType string, _ any) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, eventType)
	return nil
}

func (d *recordingDispatcher) seen() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.events...)
}
