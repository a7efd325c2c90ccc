package schedule

import (
	"sort"
	"time"
)

// Event is the persisted-agenda view consumed by aggregation. It carries the
// linked visit (when any) already resolved, so aggregation stays a pure
// computation with no repository access.
type Event struct {
	ID                string
	Title             string
	Description       string
	Date              time.Time
	Shift             Shift
	Type              EventType
	Status            Status
	RescheduledTo     *time.Time
	OriginalVisitDate *time.Time
	TechnicianName    string
	CompanyID         string
	CompanyName       string
	ClientName        string
	ManualObservation string
	Visit             *Visit
}

// Visit is the technical-visit view consumed by aggregation and availability.
// NextVisitDate/NextVisitShift form the forward-looking projection; both are
// set or both are absent.
type Visit struct {
	ID             string
	CompanyID      string
	CompanyName    string
	UnitName       string
	SectorName     string
	TechnicianID   string
	TechnicianName string
	VisitDate      *time.Time
	StartTime      *time.Time
	NextVisitDate  *time.Time
	NextVisitShift Shift
}

// EntryKind tags where an agenda entry came from, so callers never mistake a
// projected visit's reference id for a persisted event id.
type EntryKind string

const (
	// KindPersisted entries reference an AgendaEvent row.
	KindPersisted EntryKind = "persisted"
	// KindProjected entries are computed from a visit's next-visit slot and
	// reference the TechnicalVisit.
	KindProjected EntryKind = "projected"
)

// Entry is the unified agenda read model.
type Entry struct {
	Kind              EntryKind
	ReferenceID       string
	SourceVisitID     string
	Title             string
	Date              time.Time
	Type              EventType
	Description       string
	Shift             Shift
	Status            Status
	StatusDescricao   string
	ClientName        string
	UnitName          string
	SectorName        string
	ResponsibleName   string
	OriginalVisitDate *time.Time
}

// Aggregate merges persisted events and projected visits into one list
// ordered by date. Persisted entries always appear; a projection is
// suppressed when a persisted non-trail event already represents the same
// (date, shift, company) slot. Reschedule trails sit at the superseded date
// and therefore never suppress the visit's future projection.
func Aggregate(events []Event, visits []Visit) []Entry {
	entries := make([]Entry, 0, len(events)+len(visits))
	represented := make(map[SlotKey]struct{})

	for _, event := range events {
		entries = append(entries, EntryFromEvent(event))

		if event.Visit == nil || event.Visit.NextVisitDate == nil {
			continue
		}
		if !SameDay(event.Date, *event.Visit.NextVisitDate) {
			continue
		}
		companyID := event.CompanyID
		if companyID == "" {
			companyID = event.Visit.CompanyID
		}
		represented[NewSlotKey(event.Date, event.Shift, companyID)] = struct{}{}
	}

	for _, visit := range visits {
		if visit.NextVisitDate == nil {
			continue
		}
		key := NewSlotKey(*visit.NextVisitDate, visit.NextVisitShift, visit.CompanyID)
		if _, ok := represented[key]; ok {
			continue
		}
		entries = append(entries, EntryFromVisit(visit))
		represented[key] = struct{}{}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.Before(entries[j].Date)
	})
	return entries
}

// EntryFromEvent maps a persisted event to the read model.
func EntryFromEvent(event Event) Entry {
	entry := Entry{
		Kind:              KindPersisted,
		ReferenceID:       event.ID,
		Title:             event.Title,
		Date:              event.Date,
		Type:              event.Type,
		Description:       event.Description,
		Shift:             event.Shift,
		ResponsibleName:   event.TechnicianName,
		OriginalVisitDate: event.OriginalVisitDate,
	}

	status := event.Status
	if status == "" {
		status = StatusToConfirm
	}
	entry.Status = status
	if status == StatusRescheduled && event.RescheduledTo != nil {
		entry.StatusDescricao = "Reagendado p/ " + event.RescheduledTo.Format("02/01")
	} else {
		entry.StatusDescricao = status.Descricao()
	}

	if event.Visit != nil {
		entry.SourceVisitID = event.Visit.ID
		entry.ClientName = event.Visit.CompanyName
		entry.UnitName = event.Visit.UnitName
		entry.SectorName = event.Visit.SectorName
	} else {
		entry.ClientName = event.ClientName
		if event.ManualObservation != "" {
			if entry.Description != "" {
				entry.Description += " | "
			}
			entry.Description += event.ManualObservation
		}
	}
	return entry
}

// EntryFromVisit maps a visit's next-visit slot to a provisional virtual
// entry. The reference id is the visit's id, not an event id.
func EntryFromVisit(visit Visit) Entry {
	companyName := visit.CompanyName
	if companyName == "" {
		companyName = "Empresa N/A"
	}

	title := "Próxima Visita: " + companyName
	if visit.UnitName != "" {
		title += " (" + visit.UnitName + ")"
	}

	entry := Entry{
		Kind:            KindProjected,
		ReferenceID:     visit.ID,
		SourceVisitID:   visit.ID,
		Title:           title,
		Type:            EventTechnicalVisit,
		Shift:           visit.NextVisitShift,
		Status:          StatusToConfirm,
		StatusDescricao: StatusToConfirm.Descricao(),
		ClientName:      companyName,
		UnitName:        visit.UnitName,
		SectorName:      visit.SectorName,
		ResponsibleName: visit.TechnicianName,
	}
	if visit.NextVisitDate != nil {
		entry.Date = *visit.NextVisitDate
	}
	return entry
}

// EffectiveCompanyID resolves which company an event blocks a slot for:
// the linked visit's company first, then the direct company link, and empty
// when neither is known.
func EffectiveCompanyID(event Event) string {
	if event.Visit != nil && event.Visit.CompanyID != "" {
		return event.Visit.CompanyID
	}
	return event.CompanyID
}

// EffectiveClientName resolves the display name for the company an event
// blocks a slot for, falling back to "Outro Cliente" when unknown.
func EffectiveClientName(event Event) string {
	if event.Visit != nil && event.Visit.CompanyName != "" {
		return event.Visit.CompanyName
	}
	if event.CompanyName != "" {
		return event.CompanyName
	}
	return "Outro Cliente"
}
