package schedule

import "time"

// SlotKey identifies one real-world commitment slot: a civil date, a shift
// and the company occupying it. It is used as a set key during aggregation so
// a persisted event and the projection derived from the same visit collapse
// into a single visible entry. A structured key avoids the ambiguity of
// string concatenation (company "10" vs "1_0").
type SlotKey struct {
	Date      string
	Shift     Shift
	CompanyID string
}

// NewSlotKey builds a key from a commitment's date, shift and company.
// CompanyID is empty when the company is unknown.
func NewSlotKey(date time.Time, shift Shift, companyID string) SlotKey {
	return SlotKey{
		Date:      date.Format(time.DateOnly),
		Shift:     shift,
		CompanyID: companyID,
	}
}

// DateOnly truncates a timestamp to its civil date in UTC. All agenda dates
// are compared at day granularity.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether two timestamps fall on the same civil date.
func SameDay(a, b time.Time) bool {
	return DateOnly(a).Equal(DateOnly(b))
}
