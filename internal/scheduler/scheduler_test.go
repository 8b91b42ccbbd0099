// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/olegiv/agencyhub/internal/testutil"
)

func TestScheduler_StartStop(t *testing.T) {
	s := New(testutil.TestLoggerSilent())
	if err := s.Add(Job{Name: "noop", Schedule: "@every 1h", Run: func(context.Context) error { return nil }}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	s.Start()
	jobs := s.List()
	s.Stop()

	if len(jobs) != 1 {
		t.Fatalf("List() returned %d jobs, want 1", len(jobs))
	}
	if jobs[0].NextRun.IsZero() {
		t.Error("NextRun should be set once the scheduler is running")
	}
}

func TestScheduler_AddRejectsInvalidJobs(t *testing.T) {
	s := New(testutil.TestLoggerSilent())
	run := func(context.Context) error { return nil }

	if err := s.Add(Job{Name: "a", Schedule: "not a schedule", Run: run}); err == nil {
		t.Error("expected error for invalid schedule")
	}
	if err := s.Add(Job{Name: "", Schedule: "@daily", Run: run}); err == nil {
		t.Error("expected error for missing name")
	}
	if err := s.Add(Job{Name: "b", Schedule: "@daily"}); err == nil {
		t.Error("expected error for missing run function")
	}
	if err := s.Add(Job{Name: "c", Schedule: "@daily", Run: run}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := s.Add(Job{Name: "c", Schedule: "@hourly", Run: run}); err == nil {
		t.Error("expected error for duplicate name")
	}
}

func TestScheduler_TriggerRecordsOutcome(t *testing.T) {
	s := New(testutil.TestLoggerSilent())
	boom := errors.New("boom")
	calls := 0

	_ = s.Add(Job{Name: "ok", Schedule: "@daily", Run: func(context.Context) error { calls++; return nil }})
	_ = s.Add(Job{Name: "fail", Schedule: "@daily", Run: func(ctx context.Context) error {
		if _, ok := ctx.Deadline(); !ok {
			t.Error("job context has no deadline")
		}
		return boom
	}})

	if err := s.Trigger(context.Background(), "ok"); err != nil {
		t.Fatalf("Trigger(ok) error = %v", err)
	}
	if err := s.Trigger(context.Background(), "fail"); !errors.Is(err, boom) {
		t.Fatalf("Trigger(fail) error = %v, want boom", err)
	}
	if err := s.Trigger(context.Background(), "missing"); !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("Trigger(missing) error = %v, want ErrJobNotFound", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}

	jobs := s.List()
	if len(jobs) != 2 || jobs[0].Name != "fail" || jobs[1].Name != "ok" {
		t.Fatalf("List() = %+v, want fail and ok sorted", jobs)
	}
	if jobs[0].LastError != "boom" || jobs[0].LastRun.IsZero() {
		t.Errorf("fail job info = %+v", jobs[0])
	}
	if jobs[1].LastError != "" || jobs[1].LastRun.IsZero() {
		t.Errorf("ok job info = %+v", jobs[1])
	}
}

type fakeMaintenance struct {
	purged    int
	retention time.Duration
	retried   int
}

func (f *fakeMaintenance) PurgeExpiredPreviewTokens(context.Context) (int64, error) {
	f.purged++
	return 3, nil
}

func (f *fakeMaintenance) Prune(_ context.Context, olderThan time.Duration) (int64, error) {
	f.retention = olderThan
	return 0, nil
}

func (f *fakeMaintenance) RetryDue(context.Context) (int, error) {
	f.retried++
	return 0, errors.New("db down")
}

func TestMaintenanceJobs(t *testing.T) {
	logger := testutil.TestLoggerSilent()
	f := &fakeMaintenance{}
	s := New(logger)

	for _, job := range []Job{
		PurgePreviewTokensJob(f, logger),
		PruneActivityJob(f, 0, logger),
		RetryDeliveriesJob(f),
	} {
		if err := s.Add(job); err != nil {
			t.Fatalf("Add(%s) error = %v", job.Name, err)
		}
	}

	if err := s.Trigger(context.Background(), "purge-preview-tokens"); err != nil {
		t.Errorf("purge error = %v", err)
	}
	if err := s.Trigger(context.Background(), "prune-activity-log"); err != nil {
		t.Errorf("prune error = %v", err)
	}
	if err := s.Trigger(context.Background(), "retry-webhook-deliveries"); err == nil {
		t.Error("retry error should propagate")
	}

	if f.purged != 1 || f.retried != 1 {
		t.Errorf("purged = %d, retried = %d", f.purged, f.retried)
	}
	if f.retention != DefaultActivityRetention {
		t.Errorf("retention = %v, want default", f.retention)
	}
}
