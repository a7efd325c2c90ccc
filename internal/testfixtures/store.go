package testfixtures

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/example/gotree-agenda/internal/persistence"
	"github.com/example/gotree-agenda/internal/schedule"
)

// Store is an in-memory stand-in for the sqlite repositories. It implements
// the repository interfaces the application services depend on, including
// the transactional capacity check of CreateEventIfAvailable, so service
// tests exercise the same conflict paths as the real database.
type Store struct {
	mu        sync.Mutex
	users     map[string]persistence.User
	companies map[string]persistence.Company
	visits    map[string]persistence.TechnicalVisit
	events    map[string]persistence.AgendaEvent
	sessions  map[string]persistence.Session

	// FailNext, when set, is returned by the next repository call and then
	// cleared. It simulates storage failures.
	FailNext error
}

// NewStore returns an empty in-memory store.
func NewStore() *Store {
	return &Store{
		users:     make(map[string]persistence.User),
		companies: make(map[string]persistence.Company),
		visits:    make(map[string]persistence.TechnicalVisit),
		events:    make(map[string]persistence.AgendaEvent),
		sessions:  make(map[string]persistence.Session),
	}
}

func (s *Store) failure() error {
	if s.FailNext != nil {
		err := s.FailNext
		s.FailNext = nil
		return err
	}
	return nil
}

// SeedUser stores a user record.
func (s *Store) SeedUser(user persistence.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = user
}

// SeedCompany stores a company record.
func (s *Store) SeedCompany(company persistence.Company) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.companies[company.ID] = company
}

// SeedVisit stores a visit record.
func (s *Store) SeedVisit(visit persistence.TechnicalVisit) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visits[visit.ID] = visit
}

// SeedEvent stores an event record.
func (s *Store) SeedEvent(event persistence.AgendaEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.ID] = event
}

// SeedSession stores a session record.
func (s *Store) SeedSession(session persistence.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
}

// hydrateEvent fills the join-populated display fields the way the sqlite
// queries do.
func (s *Store) hydrateEvent(event persistence.AgendaEvent) persistence.AgendaEvent {
	if user, ok := s.users[event.UserID]; ok {
		event.UserName = user.Name
	}
	if event.CompanyID != nil {
		if company, ok := s.companies[*event.CompanyID]; ok {
			name := company.Name
			event.CompanyName = &name
		}
	}
	return event
}

func (s *Store) hydrateVisit(visit persistence.TechnicalVisit) persistence.TechnicalVisit {
	if company, ok := s.companies[visit.CompanyID]; ok {
		visit.CompanyName = company.Name
	}
	if user, ok := s.users[visit.TechnicianID]; ok {
		visit.TechnicianName = user.Name
	}
	return visit
}

// --------------------------- event repository ----------------------------

// CreateEvent inserts an event without capacity checks.
func (s *Store) CreateEvent(_ context.Context, event persistence.AgendaEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure(); err != nil {
		return err
	}
	if _, ok := s.events[event.ID]; ok {
		return persistence.ErrDuplicate
	}
	s.events[event.ID] = event
	return nil
}

// CreateEventIfAvailable inserts an event after re-running the capacity
// counts under the store lock.
func (s *Store) CreateEventIfAvailable(_ context.Context, event persistence.AgendaEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure(); err != nil {
		return err
	}

	var inDay, inShift int
	for _, existing := range s.events {
		if existing.UserID != event.UserID || !schedule.SameDay(existing.EventDate, event.EventDate) {
			continue
		}
		inDay++
		if existing.Shift == event.Shift {
			inShift++
		}
	}
	if inDay >= 2 || inShift > 0 {
		return persistence.ErrSlotTaken
	}

	if _, ok := s.events[event.ID]; ok {
		return persistence.ErrDuplicate
	}
	s.events[event.ID] = event
	return nil
}

// UpdateEvent rewrites an existing event.
func (s *Store) UpdateEvent(_ context.Context, event persistence.AgendaEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure(); err != nil {
		return err
	}
	if _, ok := s.events[event.ID]; !ok {
		return persistence.ErrNotFound
	}
	s.events[event.ID] = event
	return nil
}

// GetEvent returns the event by id.
func (s *Store) GetEvent(_ context.Context, id string) (persistence.AgendaEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure(); err != nil {
		return persistence.AgendaEvent{}, err
	}
	event, ok := s.events[id]
	if !ok {
		return persistence.AgendaEvent{}, persistence.ErrNotFound
	}
	return s.hydrateEvent(event), nil
}

// DeleteEvent removes the event by id.
func (s *Store) DeleteEvent(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure(); err != nil {
		return err
	}
	if _, ok := s.events[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.events, id)
	return nil
}

func (s *Store) listEvents(match func(persistence.AgendaEvent) bool) []persistence.AgendaEvent {
	result := make([]persistence.AgendaEvent, 0)
	for _, event := range s.events {
		if match(event) {
			result = append(result, s.hydrateEvent(event))
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].EventDate.Equal(result[j].EventDate) {
			return result[i].ID < result[j].ID
		}
		return result[i].EventDate.Before(result[j].EventDate)
	})
	return result
}

// ListEventsByUser returns the user's events ordered by date.
func (s *Store) ListEventsByUser(_ context.Context, userID string) ([]persistence.AgendaEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure(); err != nil {
		return nil, err
	}
	return s.listEvents(func(e persistence.AgendaEvent) bool {
		return e.UserID == userID
	}), nil
}

// ListAllEvents returns every event ordered by date.
func (s *Store) ListAllEvents(_ context.Context) ([]persistence.AgendaEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure(); err != nil {
		return nil, err
	}
	return s.listEvents(func(persistence.AgendaEvent) bool { return true }), nil
}

func withinRange(date, start, end time.Time) bool {
	day := schedule.DateOnly(date)
	return !day.Before(schedule.DateOnly(start)) && !day.After(schedule.DateOnly(end))
}

// ListByDateRange returns events whose date falls inside [start, end].
func (s *Store) ListByDateRange(_ context.Context, start, end time.Time) ([]persistence.AgendaEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure(); err != nil {
		return nil, err
	}
	return s.listEvents(func(e persistence.AgendaEvent) bool {
		return withinRange(e.EventDate, start, end)
	}), nil
}

// ListByUserAndDateRange returns the user's events inside [start, end].
func (s *Store) ListByUserAndDateRange(_ context.Context, userID string, start, end time.Time) ([]persistence.AgendaEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure(); err != nil {
		return nil, err
	}
	return s.listEvents(func(e persistence.AgendaEvent) bool {
		return e.UserID == userID && withinRange(e.EventDate, start, end)
	}), nil
}

// ListByUserAndDateAndShift returns the user's events at (date, shift).
func (s *Store) ListByUserAndDateAndShift(_ context.Context, userID string, date time.Time, shift string) ([]persistence.AgendaEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure(); err != nil {
		return nil, err
	}
	return s.listEvents(func(e persistence.AgendaEvent) bool {
		return e.UserID == userID && schedule.SameDay(e.EventDate, date) && e.Shift == shift
	}), nil
}

// ListByDateAndShift returns every technician's events at (date, shift).
func (s *Store) ListByDateAndShift(_ context.Context, date time.Time, shift string) ([]persistence.AgendaEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure(); err != nil {
		return nil, err
	}
	return s.listEvents(func(e persistence.AgendaEvent) bool {
		return schedule.SameDay(e.EventDate, date) && e.Shift == shift
	}), nil
}

// ListByCompanyIDs returns events linked to any of the companies, directly
// or through their visit, newest first.
func (s *Store) ListByCompanyIDs(_ context.Context, companyIDs []string) ([]persistence.AgendaEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure(); err != nil {
		return nil, err
	}

	wanted := make(map[string]struct{}, len(companyIDs))
	for _, id := range companyIDs {
		wanted[id] = struct{}{}
	}

	result := s.listEvents(func(e persistence.AgendaEvent) bool {
		if e.CompanyID != nil {
			if _, ok := wanted[*e.CompanyID]; ok {
				return true
			}
		}
		if e.TechnicalVisitID != nil {
			if visit, ok := s.visits[*e.TechnicalVisitID]; ok {
				if _, ok := wanted[visit.CompanyID]; ok {
					return true
				}
			}
		}
		return false
	})

	// Newest first for the client portal.
	for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
		result[i], result[j] = result[j], result[i]
	}
	return result, nil
}

// CountByUserAndDate counts the user's events on the date, all statuses.
func (s *Store) CountByUserAndDate(_ context.Context, userID string, date time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure(); err != nil {
		return 0, err
	}
	var count int64
	for _, event := range s.events {
		if event.UserID == userID && schedule.SameDay(event.EventDate, date) {
			count++
		}
	}
	return count, nil
}

// CountByUserAndDateAndShift counts the user's events at (date, shift).
func (s *Store) CountByUserAndDateAndShift(_ context.Context, userID string, date time.Time, shift string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure(); err != nil {
		return 0, err
	}
	var count int64
	for _, event := range s.events {
		if event.UserID == userID && schedule.SameDay(event.EventDate, date) && event.Shift == shift {
			count++
		}
	}
	return count, nil
}

// FindBySourceVisit returns the event linked to the visit, or ErrNotFound.
func (s *Store) FindBySourceVisit(_ context.Context, visitID string) (persistence.AgendaEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure(); err != nil {
		return persistence.AgendaEvent{}, err
	}
	for _, event := range s.events {
		if event.TechnicalVisitID != nil && *event.TechnicalVisitID == visitID {
			return s.hydrateEvent(event), nil
		}
	}
	return persistence.AgendaEvent{}, persistence.ErrNotFound
}

// --------------------------- visit repository ----------------------------

// GetVisit returns the visit by id.
func (s *Store) GetVisit(_ context.Context, id string) (persistence.TechnicalVisit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure(); err != nil {
		return persistence.TechnicalVisit{}, err
	}
	visit, ok := s.visits[id]
	if !ok {
		return persistence.TechnicalVisit{}, persistence.ErrNotFound
	}
	return s.hydrateVisit(visit), nil
}

// ListVisitsByIDs returns the visits matching the ids.
func (s *Store) ListVisitsByIDs(_ context.Context, ids []string) ([]persistence.TechnicalVisit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure(); err != nil {
		return nil, err
	}
	result := make([]persistence.TechnicalVisit, 0, len(ids))
	for _, id := range ids {
		if visit, ok := s.visits[id]; ok {
			result = append(result, s.hydrateVisit(visit))
		}
	}
	return result, nil
}

func (s *Store) listVisits(match func(persistence.TechnicalVisit) bool) []persistence.TechnicalVisit {
	result := make([]persistence.TechnicalVisit, 0)
	for _, visit := range s.visits {
		if match(visit) {
			result = append(result, s.hydrateVisit(visit))
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		di, dj := result[i].NextVisitDate, result[j].NextVisitDate
		switch {
		case di == nil && dj == nil:
			return result[i].ID < result[j].ID
		case di == nil:
			return true
		case dj == nil:
			return false
		case di.Equal(*dj):
			return result[i].ID < result[j].ID
		default:
			return di.Before(*dj)
		}
	})
	return result
}

// ListScheduled returns visits carrying a next-visit projection.
func (s *Store) ListScheduled(_ context.Context) ([]persistence.TechnicalVisit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure(); err != nil {
		return nil, err
	}
	return s.listVisits(func(v persistence.TechnicalVisit) bool {
		return v.NextVisitDate != nil
	}), nil
}

// ListScheduledByTechnician returns the technician's projected visits.
func (s *Store) ListScheduledByTechnician(_ context.Context, technicianID string) ([]persistence.TechnicalVisit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure(); err != nil {
		return nil, err
	}
	return s.listVisits(func(v persistence.TechnicalVisit) bool {
		return v.NextVisitDate != nil && v.TechnicianID == technicianID
	}), nil
}

// ListScheduledByDateRange returns projected visits inside [start, end].
func (s *Store) ListScheduledByDateRange(_ context.Context, start, end time.Time) ([]persistence.TechnicalVisit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure(); err != nil {
		return nil, err
	}
	return s.listVisits(func(v persistence.TechnicalVisit) bool {
		return v.NextVisitDate != nil && withinRange(*v.NextVisitDate, start, end)
	}), nil
}

// ListScheduledByTechnicianAndDateRange returns the technician's projected
// visits inside [start, end].
func (s *Store) ListScheduledByTechnicianAndDateRange(_ context.Context, technicianID string, start, end time.Time) ([]persistence.TechnicalVisit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure(); err != nil {
		return nil, err
	}
	return s.listVisits(func(v persistence.TechnicalVisit) bool {
		return v.NextVisitDate != nil && v.TechnicianID == technicianID && withinRange(*v.NextVisitDate, start, end)
	}), nil
}

// ListScheduledByDateAndShift returns projected visits at (date, shift).
func (s *Store) ListScheduledByDateAndShift(_ context.Context, date time.Time, shift string) ([]persistence.TechnicalVisit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure(); err != nil {
		return nil, err
	}
	return s.listVisits(func(v persistence.TechnicalVisit) bool {
		return v.NextVisitDate != nil && v.NextVisitShift != nil &&
			schedule.SameDay(*v.NextVisitDate, date) && *v.NextVisitShift == shift
	}), nil
}

// ListRealizedByTechnicianAndDateRange returns the technician's realized
// visits inside [start, end].
func (s *Store) ListRealizedByTechnicianAndDateRange(_ context.Context, technicianID string, start, end time.Time) ([]persistence.TechnicalVisit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure(); err != nil {
		return nil, err
	}
	return s.listVisits(func(v persistence.TechnicalVisit) bool {
		return v.TechnicianID == technicianID && v.VisitDate != nil && withinRange(*v.VisitDate, start, end)
	}), nil
}

// ApplyReschedule persists the trail and moves the visit's next-visit date
// under one lock, mirroring the sqlite transaction.
func (s *Store) ApplyReschedule(_ context.Context, trail persistence.AgendaEvent, visitID string, newDate time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure(); err != nil {
		return err
	}

	visit, ok := s.visits[visitID]
	if !ok {
		return persistence.ErrNotFound
	}
	if _, ok := s.events[trail.ID]; ok {
		return persistence.ErrDuplicate
	}

	s.events[trail.ID] = trail
	moved := schedule.DateOnly(newDate)
	visit.NextVisitDate = &moved
	s.visits[visitID] = visit
	return nil
}

// ---------------------------- user repository ----------------------------

// CreateUser stores a user record.
func (s *Store) CreateUser(_ context.Context, user persistence.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure(); err != nil {
		return err
	}
	if _, ok := s.users[user.ID]; ok {
		return persistence.ErrDuplicate
	}
	s.users[user.ID] = user
	return nil
}

// GetUser returns the user by id.
func (s *Store) GetUser(_ context.Context, id string) (persistence.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure(); err != nil {
		return persistence.User{}, err
	}
	user, ok := s.users[id]
	if !ok {
		return persistence.User{}, persistence.ErrNotFound
	}
	return user, nil
}

// GetUserByEmail returns the user matching the email, case-insensitively.
func (s *Store) GetUserByEmail(_ context.Context, email string) (persistence.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure(); err != nil {
		return persistence.User{}, err
	}
	for _, user := range s.users {
		if strings.EqualFold(user.Email, email) {
			return user, nil
		}
	}
	return persistence.User{}, persistence.ErrNotFound
}

// ListUsers returns every user ordered by name.
func (s *Store) ListUsers(_ context.Context) ([]persistence.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure(); err != nil {
		return nil, err
	}
	result := make([]persistence.User, 0, len(s.users))
	for _, user := range s.users {
		result = append(result, user)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result, nil
}

// -------------------------- company repository ---------------------------

// CreateCompany stores a company record.
func (s *Store) CreateCompany(_ context.Context, company persistence.Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure(); err != nil {
		return err
	}
	if _, ok := s.companies[company.ID]; ok {
		return persistence.ErrDuplicate
	}
	s.companies[company.ID] = company
	return nil
}

// GetCompany returns the company by id.
func (s *Store) GetCompany(_ context.Context, id string) (persistence.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure(); err != nil {
		return persistence.Company{}, err
	}
	company, ok := s.companies[id]
	if !ok {
		return persistence.Company{}, persistence.ErrNotFound
	}
	return company, nil
}

// ListCompanies returns every company ordered by name.
func (s *Store) ListCompanies(_ context.Context) ([]persistence.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure(); err != nil {
		return nil, err
	}
	result := make([]persistence.Company, 0, len(s.companies))
	for _, company := range s.companies {
		result = append(result, company)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result, nil
}

// -------------------------- session repository ---------------------------

// CreateSession stores a session record.
func (s *Store) CreateSession(_ context.Context, session persistence.Session) (persistence.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure(); err != nil {
		return persistence.Session{}, err
	}
	if _, ok := s.sessions[session.ID]; ok {
		return persistence.Session{}, persistence.ErrDuplicate
	}
	s.sessions[session.ID] = session
	return session, nil
}

// GetSession returns the session matching the token.
func (s *Store) GetSession(_ context.Context, token string) (persistence.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure(); err != nil {
		return persistence.Session{}, err
	}
	for _, session := range s.sessions {
		if session.Token == token {
			return session, nil
		}
	}
	return persistence.Session{}, persistence.ErrNotFound
}

// RevokeSession marks the session revoked and returns the updated record.
func (s *Store) RevokeSession(_ context.Context, token string, revokedAt time.Time) (persistence.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure(); err != nil {
		return persistence.Session{}, err
	}
	for id, session := range s.sessions {
		if session.Token != token {
			continue
		}
		if session.RevokedAt == nil {
			revoked := revokedAt
			session.RevokedAt = &revoked
			session.UpdatedAt = revokedAt
			s.sessions[id] = session
		}
		return session, nil
	}
	return persistence.Session{}, persistence.ErrNotFound
}

// DeleteExpiredSessions removes sessions past their expiry.
func (s *Store) DeleteExpiredSessions(_ context.Context, reference time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure(); err != nil {
		return err
	}
	for id, session := range s.sessions {
		if !session.ExpiresAt.After(reference) {
			delete(s.sessions, id)
		}
	}
	return nil
}
