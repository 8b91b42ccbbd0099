// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package testutil provides shared test helpers for agencyhub.
package testutil

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/olegiv/agencyhub/internal/store"

	_ "github.com/mattn/go-sqlite3"
)

// TestLogger creates a silent test logger that only outputs warnings and errors.
func TestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
}

// TestLoggerSilent creates a completely silent test logger (error level only).
func TestLoggerSilent() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// TestDB creates a temporary test database with all migrations applied.
// Returns the database and a cleanup function that should be deferred.
func TestDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()

	f, err := os.CreateTemp(t.TempDir(), "agencyhub-test-*.db")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	dbPath := f.Name()
	_ = f.Close()

	db, err := store.NewDB(dbPath)
	if err != nil {
		_ = os.Remove(dbPath)
		t.Fatalf("NewDB: %v", err)
	}

	if err := store.Migrate(db); err != nil {
		_ = db.Close()
		_ = os.Remove(dbPath)
		t.Fatalf("Migrate: %v", err)
	}

	return db, func() {
		_ = db.Close()
		_ = os.Remove(dbPath)
	}
}

// TestMemoryDB creates an in-memory SQLite database for testing.
// Useful for tests that don't need persistent storage or migrations.
func TestMemoryDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	db.SetMaxOpenConns(1)
	return db
}

// CreateBusiness inserts a business with the given slug.
func CreateBusiness(t *testing.T, db *sql.DB, slug string) store.Business {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Second)
	biz, err := store.New(db).CreateBusiness(context.Background(), store.CreateBusinessParams{
		Name:      slug,
		Slug:      slug,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateBusiness(%q): %v", slug, err)
	}
	return biz
}

// CreateUser inserts a user. passwordHash may be empty when the test does
// not log in.
func CreateUser(t *testing.T, db *sql.DB, email, passwordHash string) store.User {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Second)
	user, err := store.New(db).CreateUser(context.Background(), store.CreateUserParams{
		Email:        email,
		PasswordHash: passwordHash,
		Name:         email,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("CreateUser(%q): %v", email, err)
	}
	return user
}

// AddMember grants user the role in business.
func AddMember(t *testing.T, db *sql.DB, businessID, userID int64, role string) {
	t.Helper()

	_, err := store.New(db).CreateMembership(context.Background(), store.CreateMembershipParams{
		BusinessID: businessID,
		UserID:     userID,
		Role:       role,
		CreatedAt:  time.Now().UTC().Truncate(time.Second),
	})
	if err != nil {
		t.Fatalf("CreateMembership: %v", err)
	}
}
