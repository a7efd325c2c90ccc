package persistence

import "time"

// User represents a technician account.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Company represents a client company served by the consultancy.
type Company struct {
	ID          string
	Name        string
	ClientEmail *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TechnicalVisit represents a visit record. NextVisitDate and NextVisitShift
// carry the forward-looking projection; both are set or both are null.
// CompanyName, UnitName, SectorName and TechnicianName are populated by the
// repository joins for read paths.
type TechnicalVisit struct {
	ID             string
	CompanyID      string
	CompanyName    string
	UnitName       *string
	SectorName     *string
	TechnicianID   string
	TechnicianName string
	VisitDate      *time.Time
	StartTime      *time.Time
	NextVisitDate  *time.Time
	NextVisitShift *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// AgendaEvent represents a persisted agenda entry: a manual commitment or a
// reschedule trail. Enum fields are stored as their wire strings and parsed
// at the application boundary.
type AgendaEvent struct {
	ID                string
	Title             string
	Description       *string
	EventDate         time.Time
	Shift             string
	UserID            string
	UserName          string
	TechnicalVisitID  *string
	CompanyID         *string
	CompanyName       *string
	EventType         string
	Status            string
	RescheduledToDate *time.Time
	OriginalVisitDate *time.Time
	ClientName        *string
	ManualObservation *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Session represents an authentication session issued to a technician.
type Session struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}
