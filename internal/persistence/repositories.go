package persistence

import (
	"context"
	"time"
)

// AgendaEventRepository stores agenda events and answers the availability
// queries. All list methods order by event date ascending unless noted.
type AgendaEventRepository interface {
	// CreateEvent inserts an event without capacity checks. Used for
	// reschedule trails and other historical entries.
	CreateEvent(ctx context.Context, event AgendaEvent) error
	// CreateEventIfAvailable inserts an event and re-runs the per-day and
	// per-shift capacity counts inside the same transaction, failing with
	// ErrSlotTaken when the slot is no longer free.
	CreateEventIfAvailable(ctx context.Context, event AgendaEvent) error
	UpdateEvent(ctx context.Context, event AgendaEvent) error
	GetEvent(ctx context.Context, id string) (AgendaEvent, error)
	DeleteEvent(ctx context.Context, id string) error

	ListEventsByUser(ctx context.Context, userID string) ([]AgendaEvent, error)
	ListAllEvents(ctx context.Context) ([]AgendaEvent, error)
	ListByDateRange(ctx context.Context, start, end time.Time) ([]AgendaEvent, error)
	ListByUserAndDateRange(ctx context.Context, userID string, start, end time.Time) ([]AgendaEvent, error)
	ListByUserAndDateAndShift(ctx context.Context, userID string, date time.Time, shift string) ([]AgendaEvent, error)
	ListByDateAndShift(ctx context.Context, date time.Time, shift string) ([]AgendaEvent, error)
	// ListByCompanyIDs returns events linked to any of the companies, either
	// directly or through their visit, newest first.
	ListByCompanyIDs(ctx context.Context, companyIDs []string) ([]AgendaEvent, error)
	CountByUserAndDate(ctx context.Context, userID string, date time.Time) (int64, error)
	CountByUserAndDateAndShift(ctx context.Context, userID string, date time.Time, shift string) (int64, error)
	// FindBySourceVisit returns the event linked to a visit, or ErrNotFound.
	FindBySourceVisit(ctx context.Context, visitID string) (AgendaEvent, error)
}

// TechnicalVisitRepository reads visit records and applies reschedules. The
// agenda core only ever writes a visit's next-visit fields.
type TechnicalVisitRepository interface {
	GetVisit(ctx context.Context, id string) (TechnicalVisit, error)
	ListVisitsByIDs(ctx context.Context, ids []string) ([]TechnicalVisit, error)

	// ListScheduled* return visits whose next-visit date is set, ordered by
	// that date ascending.
	ListScheduled(ctx context.Context) ([]TechnicalVisit, error)
	ListScheduledByTechnician(ctx context.Context, technicianID string) ([]TechnicalVisit, error)
	ListScheduledByDateRange(ctx context.Context, start, end time.Time) ([]TechnicalVisit, error)
	ListScheduledByTechnicianAndDateRange(ctx context.Context, technicianID string, start, end time.Time) ([]TechnicalVisit, error)
	ListScheduledByDateAndShift(ctx context.Context, date time.Time, shift string) ([]TechnicalVisit, error)
	// ListRealizedByTechnicianAndDateRange returns visits whose visit date
	// falls inside the range.
	ListRealizedByTechnicianAndDateRange(ctx context.Context, technicianID string, start, end time.Time) ([]TechnicalVisit, error)

	// ApplyReschedule persists the trail event and moves the visit's
	// next-visit date in one transaction.
	ApplyReschedule(ctx context.Context, trail AgendaEvent, visitID string, newDate time.Time) error
}

// UserRepository exposes technician lookup and credential access.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
}

// CompanyRepository exposes client company lookup.
type CompanyRepository interface {
	CreateCompany(ctx context.Context, company Company) error
	GetCompany(ctx context.Context, id string) (Company, error)
	ListCompanies(ctx context.Context) ([]Company, error)
}

// SessionRepository stores authentication session state.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) (Session, error)
	GetSession(ctx context.Context, token string) (Session, error)
	RevokeSession(ctx context.Context, token string, revokedAt time.Time) (Session, error)
	DeleteExpiredSessions(ctx context.Context, reference time.Time) error
}
