package schedule

import (
	"testing"
	"time"
)

func TestMonthRange(t *testing.T) {
	t.Parallel()

	start, end := MonthRange(2025, time.February)
	if !start.Equal(time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected start: %v", start)
	}
	if !end.Equal(time.Date(2025, time.February, 28, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected end: %v", end)
	}
}

func TestMonthAvailability(t *testing.T) {
	t.Parallel()

	year, month := 2025, time.April

	t.Run("realized visit before noon blocks the morning", func(t *testing.T) {
		t.Parallel()

		visitDate := time.Date(2025, time.April, 7, 0, 0, 0, 0, time.UTC)
		start := time.Date(2025, time.April, 7, 8, 0, 0, 0, time.UTC)
		realized := Visit{ID: "visit-1", VisitDate: &visitDate, StartTime: &start}

		days := MonthAvailability(year, month, []Visit{realized}, nil, nil)
		if len(days) != 1 {
			t.Fatalf("expected 1 busy day, got %d", len(days))
		}
		if !days[0].MorningBusy || days[0].AfternoonBusy {
			t.Fatalf("expected morning only: %+v", days[0])
		}
	})

	t.Run("realized visit from noon onwards blocks the afternoon", func(t *testing.T) {
		t.Parallel()

		visitDate := time.Date(2025, time.April, 7, 0, 0, 0, 0, time.UTC)
		start := time.Date(2025, time.April, 7, 12, 0, 0, 0, time.UTC)
		realized := Visit{ID: "visit-1", VisitDate: &visitDate, StartTime: &start}

		days := MonthAvailability(year, month, []Visit{realized}, nil, nil)
		if len(days) != 1 || days[0].MorningBusy || !days[0].AfternoonBusy {
			t.Fatalf("expected afternoon only: %+v", days)
		}
	})

	t.Run("projection and manual event fill the whole day", func(t *testing.T) {
		t.Parallel()

		day := time.Date(2025, time.April, 15, 0, 0, 0, 0, time.UTC)
		scheduled := Visit{ID: "visit-1", NextVisitDate: &day, NextVisitShift: ShiftMorning}
		manual := Event{ID: "event-1", Date: day, Shift: ShiftAfternoon, Status: StatusConfirmed}

		days := MonthAvailability(year, month, nil, []Visit{scheduled}, []Event{manual})
		if len(days) != 1 {
			t.Fatalf("expected 1 busy day, got %d", len(days))
		}
		if !days[0].FullDayBusy {
			t.Fatalf("expected full day busy: %+v", days[0])
		}
	})

	t.Run("cancelled and visit linked events are skipped", func(t *testing.T) {
		t.Parallel()

		day := time.Date(2025, time.April, 20, 0, 0, 0, 0, time.UTC)
		cancelled := Event{ID: "event-1", Date: day, Shift: ShiftMorning, Status: StatusCancelled}
		linked := Event{
			ID:     "event-2",
			Date:   day,
			Shift:  ShiftAfternoon,
			Status: StatusConfirmed,
			Visit:  &Visit{ID: "visit-1"},
		}

		days := MonthAvailability(year, month, nil, nil, []Event{cancelled, linked})
		if len(days) != 0 {
			t.Fatalf("expected no busy days, got %+v", days)
		}
	})

	t.Run("free days are omitted", func(t *testing.T) {
		t.Parallel()

		days := MonthAvailability(year, month, nil, nil, nil)
		if len(days) != 0 {
			t.Fatalf("expected empty result, got %d days", len(days))
		}
	})
}
