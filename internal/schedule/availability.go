package schedule

import "time"

// DayAvailability reports which shifts of one day are taken for a
// technician. Days with both shifts free are omitted from results.
type DayAvailability struct {
	Date          time.Time
	MorningBusy   bool
	AfternoonBusy bool
	FullDayBusy   bool
}

// MonthRange returns the first and last civil day of a month.
func MonthRange(year int, month time.Month) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	return start, end
}

// MonthAvailability derives per-day busy flags from realized visits,
// scheduled next-visit projections and manual events. Cancelled events are
// skipped, as are events linked to a visit (the visit entry already counts
// the slot).
func MonthAvailability(year int, month time.Month, realized []Visit, scheduled []Visit, events []Event) []DayAvailability {
	start, end := MonthRange(year, month)

	days := make([]DayAvailability, 0)
	for date := start; !date.After(end); date = date.AddDate(0, 0, 1) {
		morning := false
		afternoon := false

		for _, visit := range realized {
			if visit.VisitDate == nil || !SameDay(*visit.VisitDate, date) {
				continue
			}
			if visit.StartTime != nil && visit.StartTime.Hour() < 12 {
				morning = true
			} else {
				afternoon = true
			}
		}

		for _, visit := range scheduled {
			if visit.NextVisitDate == nil || !SameDay(*visit.NextVisitDate, date) {
				continue
			}
			switch visit.NextVisitShift {
			case ShiftMorning:
				morning = true
			case ShiftAfternoon:
				afternoon = true
			}
		}

		for _, event := range events {
			if !SameDay(event.Date, date) {
				continue
			}
			if event.Status == StatusCancelled {
				continue
			}
			if event.Visit != nil {
				continue
			}
			switch event.Shift {
			case ShiftMorning:
				morning = true
			case ShiftAfternoon:
				afternoon = true
			}
		}

		if morning || afternoon {
			days = append(days, DayAvailability{
				Date:          date,
				MorningBusy:   morning,
				AfternoonBusy: afternoon,
				FullDayBusy:   morning && afternoon,
			})
		}
	}
	return days
}
