// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/olegiv/agencyhub/internal/model"
	"github.com/olegiv/agencyhub/internal/store"
	"github.com/olegiv/agencyhub/internal/util"
)

// DateLayout is the format of calendar dates such as instance dates.
const DateLayout = "2006-01-02"

// MaxInstanceSpanDays bounds the date range of one generation run.
const MaxInstanceSpanDays = 731

// EventService manages recurring events and their dated instances.
type EventService struct {
	queries    *store.Queries
	logger     *slog.Logger
	dispatcher EventDispatcher
	now        func() time.Time
}

// NewEventService creates an EventService. dispatcher may be nil.
func NewEventService(db *sql.DB, logger *slog.Logger, dispatcher EventDispatcher) *EventService {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventService{
		queries:    store.New(db),
		logger:     logger,
		dispatcher: dispatcher,
		now:        time.Now,
	}
}

// EventInput holds the fields of an event. On update nil pointers clear the
// stored value.
type EventInput struct {
	Title       string
	Description string
	DayOfWeek   *int64
	StartsOn    *string
	EndsOn      *string
	Status      string
}

func (in *EventInput) validate() error {
	v := validation{}
	if in.Title == "" {
		v.add("title", "is required")
	}
	if in.DayOfWeek != nil && (*in.DayOfWeek < 0 || *in.DayOfWeek > 6) {
		v.add("day_of_week", "must be between 0 (Sunday) and 6 (Saturday)")
	}
	var start, end time.Time
	var err error
	if in.StartsOn != nil {
		if start, err = time.Parse(DateLayout, *in.StartsOn); err != nil {
			v.add("starts_on", "must be a YYYY-MM-DD date")
		}
	}
	if in.EndsOn != nil {
		if end, err = time.Parse(DateLayout, *in.EndsOn); err != nil {
			v.add("ends_on", "must be a YYYY-MM-DD date")
		}
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		v.add("ends_on", "must not be before starts_on")
	}
	if in.Status == "" {
		in.Status = model.EventStatusDraft
	}
	if !model.ValidEventStatus(in.Status) {
		v.add("status", "must be draft, published or cancelled")
	}
	return v.err()
}

// CreateEvent creates an event.
func (s *EventService) CreateEvent(ctx context.Context, actor Actor, in EventInput) (store.Event, error) {
	if err := actor.require(model.ActionWrite); err != nil {
		return store.Event{}, err
	}
	if err := in.validate(); err != nil {
		return store.Event{}, err
	}
	now := stamp(s.now)
	ev, err := s.queries.CreateEvent(ctx, store.CreateEventParams{
		OrgID:       actor.OrgID,
		Title:       in.Title,
		Description: in.Description,
		DayOfWeek:   util.NullInt64FromPtr(in.DayOfWeek),
		StartsOn:    util.NullStringFromPtr(in.StartsOn),
		EndsOn:      util.NullStringFromPtr(in.EndsOn),
		Status:      in.Status,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return store.Event{}, fmt.Errorf("creating event: %w", err)
	}
	return ev, nil
}

// ListEvents returns the actor's events.
func (s *EventService) ListEvents(ctx context.Context, actor Actor) ([]store.Event, error) {
	if err := actor.require(model.ActionRead); err != nil {
		return nil, err
	}
	events, err := s.queries.ListEvents(ctx, actor.OrgID)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	return events, nil
}

// GetEvent returns one event.
func (s *EventService) GetEvent(ctx context.Context, actor Actor, eventID int64) (store.Event, error) {
	if err := actor.require(model.ActionRead); err != nil {
		return store.Event{}, err
	}
	ev, err := s.queries.GetEvent(ctx, eventID, actor.OrgID)
	if err != nil {
		return store.Event{}, notFoundOr(err, "event")
	}
	return ev, nil
}

// UpdateEvent replaces an event's fields.
func (s *EventService) UpdateEvent(ctx context.Context, actor Actor, eventID int64, in EventInput) (store.Event, error) {
	if err := actor.require(model.ActionWrite); err != nil {
		return store.Event{}, err
	}
	if err := in.validate(); err != nil {
		return store.Event{}, err
	}
	ev, err := s.queries.UpdateEvent(ctx, store.UpdateEventParams{
		Title:       in.Title,
		Description: in.Description,
		DayOfWeek:   util.NullInt64FromPtr(in.DayOfWeek),
		StartsOn:    util.NullStringFromPtr(in.StartsOn),
		EndsOn:      util.NullStringFromPtr(in.EndsOn),
		Status:      in.Status,
		UpdatedAt:   stamp(s.now),
		ID:          eventID,
		OrgID:       actor.OrgID,
	})
	if err != nil {
		return store.Event{}, notFoundOr(err, "event")
	}
	return ev, nil
}

// DeleteEvent removes an event and its instances.
func (s *EventService) DeleteEvent(ctx context.Context, actor Actor, eventID int64) error {
	if err := actor.require(model.ActionWrite); err != nil {
		return err
	}
	n, err := s.queries.DeleteEvent(ctx, eventID, actor.OrgID)
	return deleted(n, err, "event")
}

// ListInstances returns the instances of an event ordered by date.
func (s *EventService) ListInstances(ctx context.Context, actor Actor, eventID int64) ([]store.EventInstance, error) {
	if err := actor.require(model.ActionRead); err != nil {
		return nil, err
	}
	if _, err := s.queries.GetEvent(ctx, eventID, actor.OrgID); err != nil {
		return nil, notFoundOr(err, "event")
	}
	instances, err := s.queries.ListEventInstances(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("listing event instances: %w", err)
	}
	return instances, nil
}

// WeeklyDates returns every date from start to end inclusive that falls on
// dayOfWeek (0 is Sunday). Dates are local midnights.
func WeeklyDates(dayOfWeek time.Weekday, start, end time.Time) []time.Time {
	offset := (int(dayOfWeek) - int(start.Weekday()) + 7) % 7
	var dates []time.Time
	for d := start.AddDate(0, 0, offset); !d.After(end); d = d.AddDate(0, 0, 7) {
		dates = append(dates, d)
	}
	return dates
}

// GenerateEventInstances creates one draft instance of an event for every
// matching weekday between startDate and endDate (YYYY-MM-DD, inclusive).
// A date that cannot be inserted, such as one that already exists, is
// logged and reported as a failure without stopping the run.
func (s *EventService) GenerateEventInstances(ctx context.Context, actor Actor, eventID int64, dayOfWeek int, startDate, endDate string) ([]store.EventInstance, BatchResult, error) {
	result := newBatchResult()
	if err := actor.require(model.ActionWrite); err != nil {
		return nil, result, err
	}

	v := validation{}
	if dayOfWeek < 0 || dayOfWeek > 6 {
		v.add("day_of_week", "must be between 0 (Sunday) and 6 (Saturday)")
	}
	start, err := time.ParseInLocation(DateLayout, startDate, time.Local)
	if err != nil {
		v.add("start_date", "must be a YYYY-MM-DD date")
	}
	end, err := time.ParseInLocation(DateLayout, endDate, time.Local)
	if err != nil {
		v.add("end_date", "must be a YYYY-MM-DD date")
	}
	if len(v) == 0 {
		if end.Before(start) {
			v.add("end_date", "must not be before start_date")
		} else if end.After(start.AddDate(0, 0, MaxInstanceSpanDays)) {
			v.add("end_date", fmt.Sprintf("range must not exceed %d days", MaxInstanceSpanDays))
		}
	}
	if err := v.err(); err != nil {
		return nil, result, err
	}

	ev, err := s.queries.GetEvent(ctx, eventID, actor.OrgID)
	if err != nil {
		return nil, result, notFoundOr(err, "event")
	}

	created := []store.EventInstance{}
	now := stamp(s.now)
	for _, d := range WeeklyDates(time.Weekday(dayOfWeek), start, end) {
		date := d.Format(DateLayout)
		inst, err := s.queries.CreateEventInstance(ctx, store.CreateEventInstanceParams{
			EventID:      ev.ID,
			InstanceDate: date,
			Status:       model.EventStatusDraft,
			CreatedAt:    now,
		})
		if err != nil {
			s.logger.Warn("failed to create event instance",
				"event_id", ev.ID, "date", date, "org_id", actor.OrgID, "error", err)
			result.Failed = append(result.Failed, BatchFailure{Key: date, Err: err})
			continue
		}
		created = append(created, inst)
		result.Succeeded = append(result.Succeeded, inst.ID)
	}

	if s.dispatcher != nil && len(created) > 0 {
		if err := s.dispatcher.DispatchEvent(ctx, actor.OrgID, model.EventInstancesGenerated, map[string]any{
			"event_id": ev.ID,
			"created":  len(created),
			"failed":   len(result.Failed),
		}); err != nil {
			s.logger.Error("failed to dispatch webhook event", "event", model.EventInstancesGenerated, "error", err)
		}
	}
	s.logger.Info("event instances generated",
		"event_id", ev.ID, "org_id", actor.OrgID, "created", len(created), "failed", len(result.Failed))
	return created, result, nil
}

// stamp returns now in UTC at second precision, the form rows store.
func stamp(now func() time.Time) time.Time {
	return now().UTC().Truncate(time.Second)
}
