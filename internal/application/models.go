package application

import (
	"time"

	"github.com/example/gotree-agenda/internal/schedule"
)

// Principal represents the authenticated technician invoking a service
// method.
type Principal struct {
	UserID  string
	IsAdmin bool
}

// EventInput captures caller provided fields for a manual agenda event.
// Shift and EventType are parsed at the HTTP boundary; services never see
// raw enum strings.
type EventInput struct {
	Title             string
	Description       string
	EventDate         time.Time
	Shift             schedule.Shift
	EventType         schedule.EventType
	CompanyID         string
	ClientName        string
	ManualObservation string
}

// CreateEventParams wraps the data required to create a manual event.
type CreateEventParams struct {
	Principal Principal
	Input     EventInput
}

// UpdateEventParams wraps the data required to update an existing event.
type UpdateEventParams struct {
	Principal Principal
	EventID   string
	Input     EventInput
}

// RescheduleParams wraps the data required to move a visit's next-visit
// slot.
type RescheduleParams struct {
	Principal Principal
	VisitID   string
	NewDate   time.Time
	Reason    string
}

// User represents a technician account exposed by the application services.
type User struct {
	ID      string
	Email   string
	Name    string
	IsAdmin bool
}

// Session represents an authenticated session issued to a technician.
type Session struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}

// AuthenticateParams captures the data required to authenticate a
// technician.
type AuthenticateParams struct {
	Email    string
	Password string
}

// AuthenticateResult captures the outcome of a successful authentication
// attempt.
type AuthenticateResult struct {
	User    User
	Session Session
}
