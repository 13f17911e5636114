package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/easyukapp/easyuk-backend/internal/marketplace"
	"github.com/easyukapp/easyuk-backend/pkg/logger"
)

type fakeExpirer struct {
	result marketplace.SweepResult
	err    error
	calls  int
	gotNow time.Time
}

func (f *fakeExpirer) ExpireTrials(_ context.Context, now time.Time) (marketplace.SweepResult, error) {
	f.calls++
	f.gotNow = now
	return f.result, f.err
}

func TestTrialExpiryJobRunsSweepWithInjectedClock(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "cron-test"})
	fixed := time.Date(2026, 2, 14, 3, 0, 0, 0, time.FixedZone("BST", 3600))
	expirer := &fakeExpirer{result: marketplace.SweepResult{Inspected: 5, Cancelled: 3, Skipped: 1}}

	job, err := NewTrialExpiryJob(TrialExpiryJobParams{
		Logger:      logg,
		Marketplace: expirer,
		Now:         func() time.Time { return fixed },
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	if job.Name() != "trial-expiry-sweep" {
		t.Fatalf("unexpected job name %q", job.Name())
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if expirer.calls != 1 {
		t.Fatalf("expected one sweep, got %d", expirer.calls)
	}
	if !expirer.gotNow.Equal(fixed) {
		t.Fatalf("expected the injected clock value, got %v", expirer.gotNow)
	}
	if expirer.gotNow.Location() != time.UTC {
		t.Fatal("sweep time should be normalized to UTC")
	}
}

func TestTrialExpiryJobPropagatesSweepError(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "cron-test"})
	expirer := &fakeExpirer{err: errors.New("store down")}

	job, err := NewTrialExpiryJob(TrialExpiryJobParams{Logger: logg, Marketplace: expirer})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected the sweep error to surface")
	}
}

func TestNewTrialExpiryJobValidatesParams(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "cron-test"})
	if _, err := NewTrialExpiryJob(TrialExpiryJobParams{Marketplace: &fakeExpirer{}}); err == nil {
		t.Fatal("expected missing logger to fail")
	}
	if _, err := NewTrialExpiryJob(TrialExpiryJobParams{Logger: logg}); err == nil {
		t.Fatal("expected missing marketplace service to fail")
	}
}
