package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/gotree-agenda/internal/application"
	"github.com/example/gotree-agenda/internal/persistence"
	"github.com/example/gotree-agenda/internal/schedule"
)

var (
	userCounter    uint64
	companyCounter uint64
	visitCounter   uint64
	eventCounter   uint64
	sessionCounter uint64
)

var referenceTime = time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ----------------------------- User fixtures -----------------------------

// UserFixture represents a deterministic technician record.
type UserFixture struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserOption configures the generated user fixture.
type UserOption func(*UserFixture)

// NewUserFixture returns a deterministic user fixture with optional
// overrides.
func NewUserFixture(opts ...UserOption) UserFixture {
	idx := atomic.AddUint64(&userCounter, 1)
	id := fmt.Sprintf("user-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := UserFixture{
		ID:           id,
		Email:        fmt.Sprintf("%s@gotree.com.br", id),
		Name:         fmt.Sprintf("Técnico %03d", idx),
		PasswordHash: fmt.Sprintf("hash-%03d", idx),
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithUserID overrides the generated user ID.
func WithUserID(id string) UserOption {
	return func(f *UserFixture) { f.ID = id }
}

// WithUserName overrides the generated display name.
func WithUserName(name string) UserOption {
	return func(f *UserFixture) { f.Name = name }
}

// WithUserEmail overrides the generated email address.
func WithUserEmail(email string) UserOption {
	return func(f *UserFixture) { f.Email = email }
}

// WithUserPasswordHash overrides the generated password hash.
func WithUserPasswordHash(hash string) UserOption {
	return func(f *UserFixture) { f.PasswordHash = hash }
}

// WithUserAdmin sets the admin flag on the generated fixture.
func WithUserAdmin(isAdmin bool) UserOption {
	return func(f *UserFixture) { f.IsAdmin = isAdmin }
}

// Persistence returns the fixture as a persistence.User value.
func (f UserFixture) Persistence() persistence.User {
	return persistence.User{
		ID:           f.ID,
		Email:        f.Email,
		Name:         f.Name,
		PasswordHash: f.PasswordHash,
		IsAdmin:      f.IsAdmin,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

// Principal returns an application.Principal derived from the fixture.
func (f UserFixture) Principal() application.Principal {
	return application.Principal{UserID: f.ID, IsAdmin: f.IsAdmin}
}

// --------------------------- Company fixtures ----------------------------

// CompanyFixture represents a deterministic client company record.
type CompanyFixture struct {
	ID          string
	Name        string
	ClientEmail *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CompanyOption configures the generated company fixture.
type CompanyOption func(*CompanyFixture)

// NewCompanyFixture returns a deterministic company fixture with optional
// overrides.
func NewCompanyFixture(opts ...CompanyOption) CompanyFixture {
	idx := atomic.AddUint64(&companyCounter, 1)
	id := fmt.Sprintf("company-%03d", idx)
	fixture := CompanyFixture{
		ID:        id,
		Name:      fmt.Sprintf("Empresa %03d", idx),
		CreatedAt: referenceTime,
		UpdatedAt: referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithCompanyID overrides the generated company ID.
func WithCompanyID(id string) CompanyOption {
	return func(f *CompanyFixture) { f.ID = id }
}

// WithCompanyName overrides the generated company name.
func WithCompanyName(name string) CompanyOption {
	return func(f *CompanyFixture) { f.Name = name }
}

// WithCompanyClientEmail sets the client login email on the fixture.
func WithCompanyClientEmail(email string) CompanyOption {
	return func(f *CompanyFixture) {
		value := email
		f.ClientEmail = &value
	}
}

// Persistence returns the fixture as a persistence.Company value.
func (f CompanyFixture) Persistence() persistence.Company {
	return persistence.Company{
		ID:          f.ID,
		Name:        f.Name,
		ClientEmail: copyStringPtr(f.ClientEmail),
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// ----------------------------- Visit fixtures ----------------------------

// VisitFixture represents a deterministic technical visit record. By
// default the visit carries a next-visit projection one week after the
// reference time, morning shift.
type VisitFixture struct {
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

// VisitOption configures the generated visit fixture.
type VisitOption func(*VisitFixture)

// NewVisitFixture returns a deterministic visit fixture with optional
// overrides.
func NewVisitFixture(opts ...VisitOption) VisitFixture {
	idx := atomic.AddUint64(&visitCounter, 1)
	id := fmt.Sprintf("visit-%03d", idx)
	next := schedule.DateOnly(referenceTime.AddDate(0, 0, 7))
	shift := string(schedule.ShiftMorning)
	fixture := VisitFixture{
		ID:             id,
		CompanyID:      fmt.Sprintf("company-%03d", idx),
		CompanyName:    fmt.Sprintf("Empresa %03d", idx),
		TechnicianID:   fmt.Sprintf("user-%03d", idx),
		TechnicianName: fmt.Sprintf("Técnico %03d", idx),
		NextVisitDate:  &next,
		NextVisitShift: &shift,
		CreatedAt:      referenceTime,
		UpdatedAt:      referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithVisitID overrides the generated visit ID.
func WithVisitID(id string) VisitOption {
	return func(f *VisitFixture) { f.ID = id }
}

// WithVisitCompany sets the company link and display name.
func WithVisitCompany(id, name string) VisitOption {
	return func(f *VisitFixture) {
		f.CompanyID = id
		f.CompanyName = name
	}
}

// WithVisitUnit sets the unit display name.
func WithVisitUnit(unit string) VisitOption {
	return func(f *VisitFixture) {
		value := unit
		f.UnitName = &value
	}
}

// WithVisitSector sets the sector display name.
func WithVisitSector(sector string) VisitOption {
	return func(f *VisitFixture) {
		value := sector
		f.SectorName = &value
	}
}

// WithVisitTechnician sets the technician link and display name.
func WithVisitTechnician(id, name string) VisitOption {
	return func(f *VisitFixture) {
		f.TechnicianID = id
		f.TechnicianName = name
	}
}

// WithVisitRealized sets the realized visit date and start time.
func WithVisitRealized(date, start time.Time) VisitOption {
	return func(f *VisitFixture) {
		d := schedule.DateOnly(date)
		s := start
		f.VisitDate = &d
		f.StartTime = &s
	}
}

// WithVisitProjection sets the next-visit date and shift.
func WithVisitProjection(date time.Time, shift schedule.Shift) VisitOption {
	return func(f *VisitFixture) {
		d := schedule.DateOnly(date)
		s := string(shift)
		f.NextVisitDate = &d
		f.NextVisitShift = &s
	}
}

// WithoutVisitProjection clears the next-visit fields.
func WithoutVisitProjection() VisitOption {
	return func(f *VisitFixture) {
		f.NextVisitDate = nil
		f.NextVisitShift = nil
	}
}

// Persistence returns the fixture as a persistence.TechnicalVisit value.
func (f VisitFixture) Persistence() persistence.TechnicalVisit {
	return persistence.TechnicalVisit{
		ID:             f.ID,
		CompanyID:      f.CompanyID,
		CompanyName:    f.CompanyName,
		UnitName:       copyStringPtr(f.UnitName),
		SectorName:     copyStringPtr(f.SectorName),
		TechnicianID:   f.TechnicianID,
		TechnicianName: f.TechnicianName,
		VisitDate:      copyTimePtr(f.VisitDate),
		StartTime:      copyTimePtr(f.StartTime),
		NextVisitDate:  copyTimePtr(f.NextVisitDate),
		NextVisitShift: copyStringPtr(f.NextVisitShift),
		CreatedAt:      f.CreatedAt,
		UpdatedAt:      f.UpdatedAt,
	}
}

// Schedule returns the fixture as a schedule.Visit value, the shape the
// aggregation core consumes.
func (f VisitFixture) Schedule() schedule.Visit {
	visit := schedule.Visit{
		ID:             f.ID,
		CompanyID:      f.CompanyID,
		CompanyName:    f.CompanyName,
		TechnicianID:   f.TechnicianID,
		TechnicianName: f.TechnicianName,
		VisitDate:      copyTimePtr(f.VisitDate),
		StartTime:      copyTimePtr(f.StartTime),
		NextVisitDate:  copyTimePtr(f.NextVisitDate),
	}
	if f.UnitName != nil {
		visit.UnitName = *f.UnitName
	}
	if f.SectorName != nil {
		visit.SectorName = *f.SectorName
	}
	if f.NextVisitShift != nil {
		visit.NextVisitShift = schedule.Shift(*f.NextVisitShift)
	}
	return visit
}

// ----------------------------- Event fixtures ----------------------------

// EventFixture represents a deterministic agenda event record.
type EventFixture struct {
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

// EventOption configures the generated event fixture.
type EventOption func(*EventFixture)

// NewEventFixture returns a deterministic event fixture with optional
// overrides. By default the event is a confirmed meeting one day after the
// reference time, morning shift.
func NewEventFixture(opts ...EventOption) EventFixture {
	idx := atomic.AddUint64(&eventCounter, 1)
	id := fmt.Sprintf("event-%03d", idx)
	fixture := EventFixture{
		ID:        id,
		Title:     fmt.Sprintf("Evento %03d", idx),
		EventDate: schedule.DateOnly(referenceTime.AddDate(0, 0, 1)),
		Shift:     string(schedule.ShiftMorning),
		UserID:    fmt.Sprintf("user-%03d", idx),
		UserName:  fmt.Sprintf("Técnico %03d", idx),
		EventType: string(schedule.EventMeeting),
		Status:    string(schedule.StatusConfirmed),
		CreatedAt: referenceTime,
		UpdatedAt: referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithEventID overrides the generated event ID.
func WithEventID(id string) EventOption {
	return func(f *EventFixture) { f.ID = id }
}

// WithEventTitle overrides the generated title.
func WithEventTitle(title string) EventOption {
	return func(f *EventFixture) { f.Title = title }
}

// WithEventSlot sets the event date and shift.
func WithEventSlot(date time.Time, shift schedule.Shift) EventOption {
	return func(f *EventFixture) {
		f.EventDate = schedule.DateOnly(date)
		f.Shift = string(shift)
	}
}

// WithEventOwner sets the owning technician and display name.
func WithEventOwner(id, name string) EventOption {
	return func(f *EventFixture) {
		f.UserID = id
		f.UserName = name
	}
}

// WithEventType sets the event type.
func WithEventType(eventType schedule.EventType) EventOption {
	return func(f *EventFixture) { f.EventType = string(eventType) }
}

// WithEventStatus sets the event status.
func WithEventStatus(status schedule.Status) EventOption {
	return func(f *EventFixture) { f.Status = string(status) }
}

// WithEventVisit links the event to a technical visit.
func WithEventVisit(visitID string) EventOption {
	return func(f *EventFixture) {
		value := visitID
		f.TechnicalVisitID = &value
	}
}

// WithEventCompany links the event to a company.
func WithEventCompany(id, name string) EventOption {
	return func(f *EventFixture) {
		cid, cname := id, name
		f.CompanyID = &cid
		f.CompanyName = &cname
	}
}

// WithEventClientName sets the free-text client name.
func WithEventClientName(name string) EventOption {
	return func(f *EventFixture) {
		value := name
		f.ClientName = &value
	}
}

// WithEventObservation sets the manual observation text.
func WithEventObservation(text string) EventOption {
	return func(f *EventFixture) {
		value := text
		f.ManualObservation = &value
	}
}

// WithEventRescheduled marks the event as a reschedule trail pointing at
// the new date.
func WithEventRescheduled(newDate time.Time) EventOption {
	return func(f *EventFixture) {
		d := schedule.DateOnly(newDate)
		original := f.EventDate
		f.Status = string(schedule.StatusRescheduled)
		f.RescheduledToDate = &d
		f.OriginalVisitDate = &original
	}
}

// Persistence returns the fixture as a persistence.AgendaEvent value.
func (f EventFixture) Persistence() persistence.AgendaEvent {
	return persistence.AgendaEvent{
		ID:                f.ID,
		Title:             f.Title,
		Description:       copyStringPtr(f.Description),
		EventDate:         f.EventDate,
		Shift:             f.Shift,
		UserID:            f.UserID,
		UserName:          f.UserName,
		TechnicalVisitID:  copyStringPtr(f.TechnicalVisitID),
		CompanyID:         copyStringPtr(f.CompanyID),
		CompanyName:       copyStringPtr(f.CompanyName),
		EventType:         f.EventType,
		Status:            f.Status,
		RescheduledToDate: copyTimePtr(f.RescheduledToDate),
		OriginalVisitDate: copyTimePtr(f.OriginalVisitDate),
		ClientName:        copyStringPtr(f.ClientName),
		ManualObservation: copyStringPtr(f.ManualObservation),
		CreatedAt:         f.CreatedAt,
		UpdatedAt:         f.UpdatedAt,
	}
}

// ---------------------------- Session fixtures ---------------------------

// SessionFixture represents a deterministic session record.
type SessionFixture struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}

// SessionOption configures the generated session fixture.
type SessionOption func(*SessionFixture)

// NewSessionFixture returns a deterministic session fixture with optional
// overrides.
func NewSessionFixture(opts ...SessionOption) SessionFixture {
	idx := atomic.AddUint64(&sessionCounter, 1)
	fixture := SessionFixture{
		ID:        fmt.Sprintf("session-%03d", idx),
		UserID:    fmt.Sprintf("user-%03d", idx),
		Token:     fmt.Sprintf("token-%03d", idx),
		ExpiresAt: referenceTime.Add(24 * time.Hour),
		CreatedAt: referenceTime,
		UpdatedAt: referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithSessionUserID sets the user ID.
func WithSessionUserID(id string) SessionOption {
	return func(f *SessionFixture) { f.UserID = id }
}

// WithSessionToken overrides the token value.
func WithSessionToken(token string) SessionOption {
	return func(f *SessionFixture) { f.Token = token }
}

// WithSessionExpiresAt sets the expiration timestamp.
func WithSessionExpiresAt(t time.Time) SessionOption {
	return func(f *SessionFixture) { f.ExpiresAt = t }
}

// WithSessionRevokedAt sets the optional revoked timestamp.
func WithSessionRevokedAt(t time.Time) SessionOption {
	return func(f *SessionFixture) {
		revoked := t
		f.RevokedAt = &revoked
	}
}

// Persistence returns the fixture as a persistence.Session value.
func (f SessionFixture) Persistence() persistence.Session {
	return persistence.Session{
		ID:        f.ID,
		UserID:    f.UserID,
		Token:     f.Token,
		ExpiresAt: f.ExpiresAt,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
		RevokedAt: copyTimePtr(f.RevokedAt),
	}
}

func copyStringPtr(src *string) *string {
	if src == nil {
		return nil
	}
	value := *src
	return &value
}

func copyTimePtr(src *time.Time) *time.Time {
	if src == nil {
		return nil
	}
	value := *src
	return &value
}
