// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"testing"
	"time"
)

func TestFakeNowAdvances(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	fake := Fake(start)

	if got := fake.Now(); !got.Equal(start) {
		t.Errorf("Now() = %v, want %v", got, start)
	}

	fake.Advance(90 * time.Second)
	if got, want := fake.Now(), start.Add(90*time.Second); !got.Equal(want) {
		t.Errorf("Now() after Advance = %v, want %v", got, want)
	}
}

func TestFakeAfterFiresOnAdvance(t *testing.T) {
	t.Parallel()

	fake := Fake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	ch := fake.After(time.Minute)

	select {
	case <-ch:
		t.Fatal("After fired before the clock advanced")
	default:
	}

	fake.Advance(30 * time.Second)
	select {
	case <-ch:
		t.Fatal("After fired at half the deadline")
	default:
	}

	fake.Advance(30 * time.Second)
	select {
	case <-ch:
	default:
		t.Fatal("After did not fire once the deadline passed")
	}
}

func TestFakeAfterNonPositiveFiresImmediately(t *testing.T) {
	t.Parallel()

	fake := Fake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	select {
	case <-fake.After(0):
	default:
		t.Fatal("After(0) did not fire immediately")
	}
}

func TestFakePendingWaiters(t *testing.T) {
	t.Parallel()

	fake := Fake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	if got := fake.PendingWaiters(); got != 0 {
		t.Fatalf("PendingWaiters() = %d, want 0", got)
	}

	_ = fake.After(time.Minute)
	if got := fake.PendingWaiters(); got != 1 {
		t.Fatalf("PendingWaiters() = %d, want 1", got)
	}

	fake.Advance(time.Minute)
	if got := fake.PendingWaiters(); got != 0 {
		t.Fatalf("PendingWaiters() after Advance = %d, want 0", got)
	}
}

func TestRealAfterNonPositive(t *testing.T) {
	t.Parallel()

	select {
	case <-Real().After(-1):
	case <-time.After(time.Second):
		t.Fatal("Real().After(-1) did not fire immediately")
	}
}
