// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/agencyhub/internal/model"
	"github.com/olegiv/agencyhub/internal/store"
	"github.com/olegiv/agencyhub/internal/testutil"
)

func newEventService(t *testing.T, env *testEnv, d EventDispatcher) *EventService {
	t.Helper()
	return NewEventService(env.db, testutil.TestLoggerSilent(), d)
}

func instanceDates(instances []store.EventInstance) []string {
	dates := make([]string, 0, len(instances))
	for _, inst := range instances {
		dates = append(dates, inst.InstanceDate)
	}
	return dates
}

func TestGenerateEventInstancesWednesdays(t *testing.T) {
	env := newTestEnv(t)
	d := &recordingDispatcher{}
	svc := newEventService(t, env, d)
	ctx := context.Background()

	ev, err := svc.CreateEvent(ctx, env.editor, EventInput{Title: "Jazz Wednesday"})
	require.NoError(t, err)

	created, res, err := svc.GenerateEventInstances(ctx, env.editor, ev.ID, 3, "2024-01-01", "2024-01-31")
	require.NoError(t, err)
	assert.True(t, res.OK())
	assert.Equal(t, []string{"2024-01-03", "2024-01-10", "2024-01-17", "2024-01-24", "2024-01-31"}, instanceDates(created))
	for _, inst := range created {
		assert.Equal(t, model.EventStatusDraft, inst.Status)
		assert.Equal(t, ev.ID, inst.EventID)
	}
	assert.Equal(t, []string{model.EventInstancesGenerated}, d.seen())

	stored, err := svc.ListInstances(ctx, env.viewer, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, instanceDates(created), instanceDates(stored))
}

func TestGenerateEventInstancesSkipsDuplicates(t *testing.T) {
	env := newTestEnv(t)
	svc := newEventService(t, env, nil)
	ctx := context.Background()

	ev, err := svc.CreateEvent(ctx, env.editor, EventInput{Title: "Quiz"})
	require.NoError(t, err)
	_, _, err = svc.GenerateEventInstances(ctx, env.editor, ev.ID, 2, "2024-01-01", "2024-01-14")
	require.NoError(t, err)

	created, res, err := svc.GenerateEventInstances(ctx, env.editor, ev.ID, 2, "2024-01-01", "2024-01-21")
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-16"}, instanceDates(created))
	require.Len(t, res.Failed, 2)
	assert.Equal(t, "2024-01-02", res.Failed[0].Key)
	assert.Equal(t, "2024-01-09", res.Failed[1].Key)

	stored, err := svc.ListInstances(ctx, env.editor, ev.ID)
	require.NoError(t, err)
	assert.Len(t, stored, 3)
}

func TestGenerateEventInstancesBoundaries(t *testing.T) {
	env := newTestEnv(t)
	svc := newEventService(t, env, nil)
	ctx := context.Background()

	ev, err := svc.CreateEvent(ctx, env.editor, EventInput{Title: "Open mic"})
	require.NoError(t, err)

	tests := []struct {
		name       string
		dow        int
		start, end string
		want       []string
	}{
		{"start on weekday", 1, "2024-01-01", "2024-01-15", []string{"2024-01-01", "2024-01-08", "2024-01-15"}},
		{"single day miss", 0, "2024-02-01", "2024-02-01", []string{}},
		{"leap day", 4, "2024-02-27", "2024-03-01", []string{"2024-02-29"}},
		{"saturday", 6, "2024-03-01", "2024-03-10", []string{"2024-03-02", "2024-03-09"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			created, res, err := svc.GenerateEventInstances(ctx, env.editor, ev.ID, tt.dow, tt.start, tt.end)
			require.NoError(t, err)
			assert.True(t, res.OK())
			assert.Equal(t, tt.want, instanceDates(created))
		})
	}
}

func TestGenerateEventInstancesValidation(t *testing.T) {
	env := newTestEnv(t)
	svc := newEventService(t, env, nil)
	ctx := context.Background()

	ev, err := svc.CreateEvent(ctx, env.editor, EventInput{Title: "Open mic"})
	require.NoError(t, err)

	tests := []struct {
		name       string
		dow        int
		start, end string
		field      string
	}{
		{"day too large", 7, "2024-01-01", "2024-01-31", "day_of_week"},
		{"negative day", -1, "2024-01-01", "2024-01-31", "day_of_week"},
		{"bad start", 3, "01/01/2024", "2024-01-31", "start_date"},
		{"bad end", 3, "2024-01-01", "2024-02-30", "end_date"},
		{"end before start", 3, "2024-02-01", "2024-01-01", "end_date"},
		{"range too long", 3, "2024-01-01", "2026-01-02", "end_date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.GenerateEventInstances(ctx, env.editor, ev.ID, tt.dow, tt.start, tt.end)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tt.field)
		})
	}

	_, _, err = svc.GenerateEventInstances(ctx, env.editor, ev.ID+100, 3, "2024-01-01", "2024-01-31")
	assert.ErrorIs(t, err, ErrNotFound)
	_, _, err = svc.GenerateEventInstances(ctx, env.viewer, ev.ID, 3, "2024-01-01", "2024-01-31")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestWeeklyDatesAcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, loc)
	end := time.Date(2024, 3, 31, 0, 0, 0, 0, loc)

	var got []string
	for _, d := range WeeklyDates(time.Sunday, start, end) {
		assert.Equal(t, 0, d.Hour(), "dates stay at local midnight")
		got = append(got, d.Format(DateLayout))
	}
	assert.Equal(t, []string{"2024-03-03", "2024-03-10", "2024-03-17", "2024-03-24", "2024-03-31"}, got)
}

func TestEventCRUD(t *testing.T) {
	env := newTestEnv(t)
	svc := newEventService(t, env, nil)
	ctx := context.Background()

	dow := int64(5)
	starts, ends := "2024-01-01", "2024-06-30"
	ev, err := svc.CreateEvent(ctx, env.editor, EventInput{Title: "Friday Blues", DayOfWeek: &dow, StartsOn: &starts, EndsOn: &ends})
	require.NoError(t, err)
	assert.Equal(t, model.EventStatusDraft, ev.Status)
	assert.Equal(t, int64(5), ev.DayOfWeek.Int64)

	bad := int64(9)
	_, err = svc.CreateEvent(ctx, env.editor, EventInput{Title: "x", DayOfWeek: &bad})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.CreateEvent(ctx, env.editor, EventInput{Title: "x", StartsOn: &ends, EndsOn: &starts})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.CreateEvent(ctx, env.editor, EventInput{Title: "x", Status: "archived"})
	assert.ErrorIs(t, err, ErrValidation)

	updated, err := svc.UpdateEvent(ctx, env.editor, ev.ID, EventInput{Title: "Friday Blues", Status: model.EventStatusPublished})
	require.NoError(t, err)
	assert.Equal(t, model.EventStatusPublished, updated.Status)
	assert.False(t, updated.DayOfWeek.Valid)

	list, err := svc.ListEvents(ctx, env.viewer)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = svc.GetEvent(ctx, UserActor(env.other.ID, 0, model.RoleOwner), ev.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, svc.DeleteEvent(ctx, env.editor, ev.ID))
	assert.ErrorIs(t, svc.DeleteEvent(ctx, env.editor, ev.ID), ErrNotFound)
}
