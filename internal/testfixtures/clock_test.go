package testfixtures

import (
	"testing"
	"time"
)

func TestClock(t *testing.T) {
	t.Parallel()

	t.Run("defaults to the reference time", func(t *testing.T) {
		t.Parallel()

		clock := NewClock(time.Time{})
		if !clock.Now().Equal(ReferenceTime()) {
			t.Fatalf("expected reference time, got %v", clock.Now())
		}
	})

	t.Run("advance moves the tracked instant", func(t *testing.T) {
		t.Parallel()

		start := time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)
		clock := NewClock(start)

		updated := clock.Advance(90 * time.Minute)
		if !updated.Equal(start.Add(90 * time.Minute)) {
			t.Fatalf("unexpected advanced time: %v", updated)
		}
		if !clock.Now().Equal(updated) {
			t.Fatalf("Now diverged from Advance result: %v vs %v", clock.Now(), updated)
		}
	})

	t.Run("set replaces the tracked instant", func(t *testing.T) {
		t.Parallel()

		clock := NewClock(time.Time{})
		target := time.Date(2025, time.July, 1, 12, 0, 0, 0, time.UTC)
		clock.Set(target)
		if !clock.Now().Equal(target) {
			t.Fatalf("expected %v, got %v", target, clock.Now())
		}
	})

	t.Run("NowFunc of a nil clock falls back to the wall clock", func(t *testing.T) {
		t.Parallel()

		var clock *Clock
		if clock.NowFunc()().IsZero() {
			t.Fatal("expected a non-zero wall clock time")
		}
	})
}
