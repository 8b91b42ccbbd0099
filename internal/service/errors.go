// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

var (
	// ErrNotFound covers missing rows and rows owned by another business.
	ErrNotFound = errors.New("not found")
	// ErrForbidden is returned when the actor's role lacks the action.
	ErrForbidden = errors.New("forbidden")
	// ErrConflict is returned when an expected version no longer matches.
	ErrConflict = errors.New("version conflict")
	// ErrValidation is wrapped by every *ValidationError.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidCredentials is returned by a failed login.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// ValidationError carries per-field messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := slices.Sorted(maps.Keys(e.Fields))
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// validation collects field errors; err returns nil when nothing was added.
type validation map[string]string

func (v validation) add(field, msg string) {
	if _, exists := v[field]; !exists {
		v[field] = msg
	}
}

func (v validation) err() error {
	if len(v) == 0 {
		return nil
	}
	return &ValidationError{Fields: v}
}

func fieldError(field, msg string) error {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// notFoundOr translates sql.ErrNoRows into ErrNotFound and wraps anything
// else as a load failure of what.
func notFoundOr(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("loading %s: %w", what, err)
}

// deleted maps an affected-row count from an org-scoped delete.
func deleted(n int64, err error, what string) error {
	if err != nil {
		return fmt.Errorf("deleting %s: %w", what, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return nil
}

// BatchFailure is one item of a best-effort batch that did not apply.
type BatchFailure struct {
	ID  int64  `json:"id,omitempty"`
	Key string `json:"key,omitempty"`
	Err error  `json:"-"`
}

// Message returns the failure text, or "" when Err is nil.
func (f BatchFailure) Message() string {
	if f.Err == nil {
		return ""
	}
	return f.Err.Error()
}

// MarshalJSON renders Err as a string field.
func (f BatchFailure) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID    int64  `json:"id,omitempty"`
		Key   string `json:"key,omitempty"`
		Error string `json:"error"`
	}{f.ID, f.Key, f.Message()})
}

// BatchResult reports which items of a best-effort batch applied.
type BatchResult struct {
	Succeeded []int64        `json:"succeeded"`
	Failed    []BatchFailure `json:"failed"`
}

// OK reports whether no item failed.
func (r BatchResult) OK() bool { return len(r.Failed) == 0 }

func newBatchResult() BatchResult {
	return BatchResult{Succeeded: []int64{}, Failed: []BatchFailure{}}
}
