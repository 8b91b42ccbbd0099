// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"time"

	"github.com/olegiv/agencyhub/internal/service"
	"github.com/olegiv/agencyhub/internal/store"
	"github.com/olegiv/agencyhub/internal/util"
)

// EventResponse represents an event in API responses.
type EventResponse struct {
	ID          int64     `json:"id"`
	OrgID       int64     `json:"org_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DayOfWeek   *int64    `json:"day_of_week"`
	StartsOn    *string   `json:"starts_on"`
	EndsOn      *string   `json:"ends_on"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// EventRequest is the body for creating or replacing an event.
type EventRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	DayOfWeek   *int64  `json:"day_of_week"`
	StartsOn    *string `json:"starts_on"`
	EndsOn      *string `json:"ends_on"`
	Status      string  `json:"status"`
}

// GenerateInstancesRequest is the body of POST /events/{id}/instances. A
// missing DayOfWeek falls back to the event's own weekday.
type GenerateInstancesRequest struct {
	DayOfWeek *int   `json:"day_of_week"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// GenerateInstancesResponse lists the created instances and any dates that
// were skipped.
type GenerateInstancesResponse struct {
	Instances []store.EventInstance `json:"instances"`
	Result    service.BatchResult   `json:"result"`
}

func eventToResponse(e store.Event) EventResponse {
	return EventResponse{
		ID:          e.ID,
		OrgID:       e.OrgID,
		Title:       e.Title,
		Description: e.Description,
		DayOfWeek:   util.PtrFromNullInt64(e.DayOfWeek),
		StartsOn:    util.PtrFromNullString(e.StartsOn),
		EndsOn:      util.PtrFromNullString(e.EndsOn),
		Status:      e.Status,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func (req EventRequest) input() service.EventInput {
	return service.EventInput{
		Title:       req.Title,
		Description: req.Description,
		DayOfWeek:   req.DayOfWeek,
		StartsOn:    req.StartsOn,
		EndsOn:      req.EndsOn,
		Status:      req.Status,
	}
}

// ListEvents handles GET /events.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.events.ListEvents(r.Context(), actor(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, mapSlice(events, eventToResponse), nil)
}

// GetEvent handles GET /events/{eventID}.
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, paramEvent)
	if !ok {
		return
	}
	ev, err := h.events.GetEvent(r.Context(), actor(r), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, eventToResponse(ev), nil)
}

// CreateEvent handles POST /events.
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req EventRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ev, err := h.events.CreateEvent(r.Context(), actor(r), req.input())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteCreated(w, eventToResponse(ev))
}

// UpdateEvent handles PUT /events/{eventID}.
func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, paramEvent)
	if !ok {
		return
	}
	var req EventRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ev, err := h.events.UpdateEvent(r.Context(), actor(r), id, req.input())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, eventToResponse(ev), nil)
}

// DeleteEvent handles DELETE /events/{eventID}.
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, paramEvent)
	if !ok {
		return
	}
	if err := h.events.DeleteEvent(r.Context(), actor(r), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteNoContent(w)
}

// ListInstances handles GET /events/{eventID}/instances.
func (h *Handler) ListInstances(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, paramEvent)
	if !ok {
		return
	}
	instances, err := h.events.ListInstances(r.Context(), actor(r), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, instances, nil)
}

// GenerateInstances handles POST /events/{eventID}/instances.
func (h *Handler) GenerateInstances(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, paramEvent)
	if !ok {
		return
	}
	var req GenerateInstancesRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	a := actor(r)

	var day int
	if req.DayOfWeek != nil {
		day = *req.DayOfWeek
	} else {
		ev, err := h.events.GetEvent(r.Context(), a, id)
		if err != nil {
			h.writeServiceError(w, r, err)
			return
		}
		if !ev.DayOfWeek.Valid {
			WriteValidationError(w, map[string]string{"day_of_week": "is required when the event has no weekday"})
			return
		}
		day = int(ev.DayOfWeek.Int64)
	}

	instances, result, err := h.events.GenerateEventInstances(r.Context(), a, id, day, req.StartDate, req.EndDate)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteCreated(w, GenerateInstancesResponse{Instances: instances, Result: result})
}
