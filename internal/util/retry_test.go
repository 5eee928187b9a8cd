package util

import (
	"errors"
	"testing"
	"time"
)

func TestIsRetryableError(t *testing.T) {
	cases := []struct {
		err       error
		retryable bool
	}{
		{nil, false},
		{errors.New("database is locked"), true},
		{errors.New("database table is locked"), true},
		{errors.New("SQLITE_BUSY: database busy"), true},
		{errors.New("disk I/O error"), true},
		{errors.New("UNIQUE constraint failed: staging_track_cleaned.track_id"), false},
		{errors.New("no such table: tracks"), false},
	}

	for _, c := range cases {
		if got := IsRetryableError(c.err); got != c.retryable {
			t.Errorf("IsRetryableError(%v) = %v, want %v", c.err, got, c.retryable)
		}
	}
}

func TestRetrySucceedsAfterTransientFailures(t *testing.T) {
	cfg := &RetryConfig{
		MaxAttempts: 3,
		InitialWait: time.Millisecond,
		MaxWait:     time.Millisecond,
	}

	attempts := 0
	err := Retry(cfg, func() error {
		attempts++
		if attempts < 3 {
			return errors.New("database is locked")
		}
		return nil
	}, "test op")

	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestRetryStopsOnNonRetryableError(t *testing.T) {
	cfg := &RetryConfig{
		MaxAttempts: 5,
		InitialWait: time.Millisecond,
		MaxWait:     time.Millisecond,
	}

	permanent := errors.New("UNIQUE constraint failed")
	attempts := 0
	err := Retry(cfg, func() error {
		attempts++
		return permanent
	}, "test op")

	if !errors.Is(err, permanent) {
		t.Errorf("expected the permanent error back, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("expected exactly 1 attempt, got %d", attempts)
	}
}

func TestRetryGivesUpAfterMaxAttempts(t *testing.T) {
	cfg := &RetryConfig{
		MaxAttempts: 3,
		InitialWait: time.Millisecond,
		MaxWait:     time.Millisecond,
	}

	transient := errors.New("database is locked")
	attempts := 0
	err := Retry(cfg, func() error {
		attempts++
		return transient
	}, "test op")

	if err == nil {
		t.Fatal("expected failure after exhausting retries")
	}
	if !errors.Is(err, transient) {
		t.Errorf("expected wrapped transient error, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestRetryNilConfigUsesDefaults(t *testing.T) {
	if err := Retry(nil, func() error { return nil }, "test op"); err != nil {
		t.Errorf("expected immediate success, got %v", err)
	}
}
