package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/gotree-agenda/internal/persistence"
	"github.com/example/gotree-agenda/internal/schedule"
)

// EventRepository captures the agenda-event persistence interactions needed
// by the service.
type EventRepository interface {
	CreateEvent(ctx context.Context, event persistence.AgendaEvent) error
	CreateEventIfAvailable(ctx context.Context, event persistence.AgendaEvent) error
	UpdateEvent(ctx context.Context, event persistence.AgendaEvent) error
	GetEvent(ctx context.Context, id string) (persistence.AgendaEvent, error)
	DeleteEvent(ctx context.Context, id string) error
	ListEventsByUser(ctx context.Context, userID string) ([]persistence.AgendaEvent, error)
	ListAllEvents(ctx context.Context) ([]persistence.AgendaEvent, error)
	ListByDateRange(ctx context.Context, start, end time.Time) ([]persistence.AgendaEvent, error)
	ListByUserAndDateRange(ctx context.Context, userID string, start, end time.Time) ([]persistence.AgendaEvent, error)
	ListByUserAndDateAndShift(ctx context.Context, userID string, date time.Time, shift string) ([]persistence.AgendaEvent, error)
	ListByDateAndShift(ctx context.Context, date time.Time, shift string) ([]persistence.AgendaEvent, error)
	ListByCompanyIDs(ctx context.Context, companyIDs []string) ([]persistence.AgendaEvent, error)
	CountByUserAndDate(ctx context.Context, userID string, date time.Time) (int64, error)
	CountByUserAndDateAndShift(ctx context.Context, userID string, date time.Time, shift string) (int64, error)
	FindBySourceVisit(ctx context.Context, visitID string) (persistence.AgendaEvent, error)
}

// VisitRepository captures the technical-visit persistence interactions
// needed by the service.
type VisitRepository interface {
	GetVisit(ctx context.Context, id string) (persistence.TechnicalVisit, error)
	ListVisitsByIDs(ctx context.Context, ids []string) ([]persistence.TechnicalVisit, error)
	ListScheduled(ctx context.Context) ([]persistence.TechnicalVisit, error)
	ListScheduledByTechnician(ctx context.Context, technicianID string) ([]persistence.TechnicalVisit, error)
	ListScheduledByDateRange(ctx context.Context, start, end time.Time) ([]persistence.TechnicalVisit, error)
	ListScheduledByTechnicianAndDateRange(ctx context.Context, technicianID string, start, end time.Time) ([]persistence.TechnicalVisit, error)
	ListScheduledByDateAndShift(ctx context.Context, date time.Time, shift string) ([]persistence.TechnicalVisit, error)
	ListRealizedByTechnicianAndDateRange(ctx context.Context, technicianID string, start, end time.Time) ([]persistence.TechnicalVisit, error)
	ApplyReschedule(ctx context.Context, trail persistence.AgendaEvent, visitID string, newDate time.Time) error
}

// UserDirectory exposes technician lookup operations.
type UserDirectory interface {
	GetUser(ctx context.Context, id string) (persistence.User, error)
}

// CompanyDirectory exposes client company lookup operations.
type CompanyDirectory interface {
	ListCompanies(ctx context.Context) ([]persistence.Company, error)
}

// AgendaService unifies persisted agenda events with visit projections and
// enforces the booking rules around them.
type AgendaService struct {
	events      EventRepository
	visits      VisitRepository
	users       UserDirectory
	companies   CompanyDirectory
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewAgendaService wires dependencies for agenda operations.
func NewAgendaService(events EventRepository, visits VisitRepository, users UserDirectory, companies CompanyDirectory, idGenerator func() string, now func() time.Time) *AgendaService {
	return NewAgendaServiceWithLogger(events, visits, users, companies, idGenerator, now, nil)
}

// NewAgendaServiceWithLogger constructs an AgendaService with a specified
// logger.
func NewAgendaServiceWithLogger(events EventRepository, visits VisitRepository, users UserDirectory, companies CompanyDirectory, idGenerator func() string, now func() time.Time, logger *slog.Logger) *AgendaService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &AgendaService{
		events:      events,
		visits:      visits,
		users:       users,
		companies:   companies,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *AgendaService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AgendaService", operation, attrs...)
}

// CheckAvailability decides whether a technician can take a new commitment
// at (date, shift). It returns nil when the slot is free and a ConflictError
// describing the first violated rule otherwise. Counts include historical
// entries on purpose, matching the per-day capacity rule.
func (s *AgendaService) CheckAvailability(ctx context.Context, technicianID string, date time.Time, shift schedule.Shift) (*ConflictError, error) {
	if s == nil || s.events == nil {
		return nil, fmt.Errorf("event repository not configured")
	}

	inDay, err := s.events.CountByUserAndDate(ctx, technicianID, date)
	if err != nil {
		return nil, err
	}
	if inDay >= 2 {
		return &ConflictError{Message: "Você já possui visitas agendadas para os turnos manhã e tarde nesta data. Escolha outra data."}, nil
	}

	inShift, err := s.events.CountByUserAndDateAndShift(ctx, technicianID, date, string(shift))
	if err != nil {
		return nil, err
	}
	if inShift > 0 {
		return &ConflictError{Message: fmt.Sprintf("Você já possui uma visita agendada neste turno (%s). Escolha outro turno.", shift)}, nil
	}

	return nil, nil
}

// ValidateReportSubmission blocks finalizing a report when the technician
// already holds an active commitment for a different company in the same
// shift. Events belonging to the visit being finalized and historical
// (cancelled or rescheduled) entries never block; commitments for the target
// company itself are allowed.
func (s *AgendaService) ValidateReportSubmission(ctx context.Context, visitID, technicianID string, date time.Time, shift schedule.Shift, targetCompanyID string) error {
	if s == nil || s.events == nil {
		return fmt.Errorf("event repository not configured")
	}

	rows, err := s.events.ListByUserAndDateAndShift(ctx, technicianID, date, string(shift))
	if err != nil {
		return err
	}

	conflicting, err := s.resolveEvents(ctx, rows)
	if err != nil {
		return err
	}

	for _, event := range conflicting {
		if event.Visit != nil && event.Visit.ID == visitID {
			continue
		}
		if !event.Status.Active() {
			continue
		}

		companyID := schedule.EffectiveCompanyID(event)
		if targetCompanyID != "" && companyID != "" && targetCompanyID == companyID {
			continue
		}

		return &ConflictError{Message: fmt.Sprintf(
			"BLOQUEIO DE AGENDA: Você já possui um compromisso na empresa '%s' neste turno (%s). Agendamentos simultâneos só são permitidos na mesma empresa.",
			schedule.EffectiveClientName(event), shift)}
	}

	return nil
}

// CheckGlobalConflicts returns an advisory warning naming other technicians
// already committed at (date, shift). It never blocks.
func (s *AgendaService) CheckGlobalConflicts(ctx context.Context, date time.Time, shift schedule.Shift, principal Principal) (string, error) {
	if s == nil || s.events == nil || s.visits == nil {
		return "", fmt.Errorf("repositories not configured")
	}

	var busy []string

	events, err := s.events.ListByDateAndShift(ctx, date, string(shift))
	if err != nil {
		return "", err
	}
	for _, event := range events {
		if schedule.Status(event.Status) == schedule.StatusCancelled {
			continue
		}
		if event.UserID == principal.UserID {
			continue
		}
		busy = append(busy, event.UserName)
	}

	visits, err := s.visits.ListScheduledByDateAndShift(ctx, date, string(shift))
	if err != nil {
		return "", err
	}
	for _, visit := range visits {
		if visit.TechnicianID == principal.UserID {
			continue
		}
		busy = append(busy, visit.TechnicianName)
	}

	busy = uniqueNames(busy)
	if len(busy) == 0 {
		return "", nil
	}
	return "Atenção: Os seguintes técnicos já possuem agendamento nesta data/turno: " + strings.Join(busy, ", "), nil
}

// CreateEvent validates availability before persisting a manual agenda
// event. The insert re-checks capacity transactionally, so a concurrent
// booking surfaces as the same conflict instead of a double booking.
func (s *AgendaService) CreateEvent(ctx context.Context, params CreateEventParams) (entry schedule.Entry, err error) {
	if s == nil || s.events == nil {
		return schedule.Entry{}, fmt.Errorf("event repository not configured")
	}

	input := params.Input
	logger := s.loggerWith(ctx, "CreateEvent", "user_id", params.Principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "create event failed", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	vErr := &ValidationError{}
	validateEventInput(input, vErr)
	if vErr.HasErrors() {
		return schedule.Entry{}, vErr
	}

	conflict, err := s.CheckAvailability(ctx, params.Principal.UserID, input.EventDate, input.Shift)
	if err != nil {
		return schedule.Entry{}, err
	}
	if conflict != nil {
		return schedule.Entry{}, conflict
	}

	event := persistence.AgendaEvent{
		ID:        s.idGenerator(),
		Title:     strings.TrimSpace(input.Title),
		EventDate: schedule.DateOnly(input.EventDate),
		Shift:     string(input.Shift),
		UserID:    params.Principal.UserID,
		EventType: string(input.EventType),
		// Manual entries are booked by the technician directly.
		Status: string(schedule.StatusConfirmed),
	}
	if input.Description != "" {
		event.Description = &input.Description
	}
	if input.CompanyID != "" {
		event.CompanyID = &input.CompanyID
	}
	if input.ClientName != "" {
		event.ClientName = &input.ClientName
	}
	if input.ManualObservation != "" {
		event.ManualObservation = &input.ManualObservation
	}

	if err = s.events.CreateEventIfAvailable(ctx, event); err != nil {
		if errors.Is(err, persistence.ErrSlotTaken) {
			conflict, cerr := s.CheckAvailability(ctx, params.Principal.UserID, input.EventDate, input.Shift)
			if cerr == nil && conflict != nil {
				return schedule.Entry{}, conflict
			}
			return schedule.Entry{}, &ConflictError{Message: fmt.Sprintf("Você já possui uma visita agendada neste turno (%s). Escolha outro turno.", input.Shift)}
		}
		return schedule.Entry{}, mapEventRepoError(err)
	}

	persisted, err := s.events.GetEvent(ctx, event.ID)
	if err != nil {
		return schedule.Entry{}, mapEventRepoError(err)
	}

	resolved, err := s.resolveEvents(ctx, []persistence.AgendaEvent{persisted})
	if err != nil {
		return schedule.Entry{}, err
	}
	logger.InfoContext(ctx, "event created", "event_id", event.ID)
	return schedule.EntryFromEvent(resolved[0]), nil
}

// UpdateEvent applies ownership checks before rewriting an event's caller
// editable fields.
func (s *AgendaService) UpdateEvent(ctx context.Context, params UpdateEventParams) (schedule.Entry, error) {
	if s == nil || s.events == nil {
		return schedule.Entry{}, fmt.Errorf("event repository not configured")
	}

	existing, err := s.events.GetEvent(ctx, params.EventID)
	if err != nil {
		return schedule.Entry{}, mapEventRepoError(err)
	}
	if existing.UserID != params.Principal.UserID {
		return schedule.Entry{}, ErrForbidden
	}

	input := params.Input
	vErr := &ValidationError{}
	validateEventInput(input, vErr)
	if vErr.HasErrors() {
		return schedule.Entry{}, vErr
	}

	updated := existing
	updated.Title = strings.TrimSpace(input.Title)
	updated.EventDate = schedule.DateOnly(input.EventDate)
	updated.Description = nil
	if input.Description != "" {
		updated.Description = &input.Description
	}
	updated.ClientName = nil
	if input.ClientName != "" {
		updated.ClientName = &input.ClientName
	}
	updated.ManualObservation = nil
	if input.ManualObservation != "" {
		updated.ManualObservation = &input.ManualObservation
	}

	if err := s.events.UpdateEvent(ctx, updated); err != nil {
		return schedule.Entry{}, mapEventRepoError(err)
	}

	persisted, err := s.events.GetEvent(ctx, params.EventID)
	if err != nil {
		return schedule.Entry{}, mapEventRepoError(err)
	}
	resolved, err := s.resolveEvents(ctx, []persistence.AgendaEvent{persisted})
	if err != nil {
		return schedule.Entry{}, err
	}
	return schedule.EntryFromEvent(resolved[0]), nil
}

// DeleteEvent removes an event owned by the principal.
func (s *AgendaService) DeleteEvent(ctx context.Context, principal Principal, eventID string) error {
	if s == nil || s.events == nil {
		return fmt.Errorf("event repository not configured")
	}

	existing, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		return mapEventRepoError(err)
	}
	if existing.UserID != principal.UserID {
		return ErrForbidden
	}

	if err := s.events.DeleteEvent(ctx, eventID); err != nil {
		return mapEventRepoError(err)
	}
	return nil
}

// RescheduleVisit moves a visit's next-visit slot to a new date, leaving a
// permanent trail event pinned at the old date. Rescheduling performs no
// availability check: it moves an existing commitment rather than creating a
// new one. A busy target slot is logged as a warning only.
func (s *AgendaService) RescheduleVisit(ctx context.Context, params RescheduleParams) (err error) {
	if s == nil || s.visits == nil {
		return fmt.Errorf("visit repository not configured")
	}

	logger := s.loggerWith(ctx, "RescheduleVisit", "visit_id", params.VisitID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "reschedule failed", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	visit, err := s.visits.GetVisit(ctx, params.VisitID)
	if err != nil {
		return mapEventRepoError(err)
	}

	if visit.NextVisitDate == nil || visit.NextVisitShift == nil {
		vErr := &ValidationError{}
		vErr.add("visit", "visita não possui próxima visita agendada")
		return vErr
	}
	if params.NewDate.IsZero() {
		vErr := &ValidationError{}
		vErr.add("new_date", "a nova data não pode ser nula")
		return vErr
	}

	oldDate := schedule.DateOnly(*visit.NextVisitDate)
	newDate := schedule.DateOnly(params.NewDate)

	companyName := visit.CompanyName
	if companyName == "" {
		companyName = "N/A"
	}

	trail := persistence.AgendaEvent{
		ID:                s.idGenerator(),
		Title:             "Visita: " + companyName,
		EventDate:         oldDate,
		Shift:             *visit.NextVisitShift,
		UserID:            params.Principal.UserID,
		TechnicalVisitID:  &params.VisitID,
		EventType:         string(schedule.EventTechnicalVisit),
		Status:            string(schedule.StatusRescheduled),
		RescheduledToDate: &newDate,
		OriginalVisitDate: &oldDate,
	}
	if reason := strings.TrimSpace(params.Reason); reason != "" {
		trail.Description = &reason
	}

	if s.events != nil {
		inShift, cerr := s.events.CountByUserAndDateAndShift(ctx, visit.TechnicianID, newDate, *visit.NextVisitShift)
		if cerr == nil && inShift > 0 {
			logger.WarnContext(ctx, "reschedule target slot already busy",
				"technician_id", visit.TechnicianID,
				"new_date", newDate.Format(time.DateOnly),
				"shift", *visit.NextVisitShift)
		}
	}

	if err = s.visits.ApplyReschedule(ctx, trail, params.VisitID, newDate); err != nil {
		return mapEventRepoError(err)
	}

	logger.InfoContext(ctx, "visit rescheduled",
		"old_date", oldDate.Format(time.DateOnly),
		"new_date", newDate.Format(time.DateOnly))
	return nil
}

// ListEventsForUser returns the technician's unified agenda: persisted
// events merged with the visit projections assigned to them.
func (s *AgendaService) ListEventsForUser(ctx context.Context, principal Principal) ([]schedule.Entry, error) {
	if s == nil || s.events == nil || s.visits == nil {
		return nil, fmt.Errorf("repositories not configured")
	}

	rows, err := s.events.ListEventsByUser(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}
	visits, err := s.visits.ListScheduledByTechnician(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}
	return s.aggregate(ctx, rows, visits)
}

// ListEventsForAdmin returns every technician's unified agenda, optionally
// filtered to one technician. Admin only.
func (s *AgendaService) ListEventsForAdmin(ctx context.Context, principal Principal, userIDFilter string) ([]schedule.Entry, error) {
	if s == nil || s.events == nil || s.visits == nil {
		return nil, fmt.Errorf("repositories not configured")
	}
	if !principal.IsAdmin {
		return nil, ErrForbidden
	}

	var (
		rows   []persistence.AgendaEvent
		visits []persistence.TechnicalVisit
		err    error
	)

	if userIDFilter != "" {
		if s.users != nil {
			if _, err = s.users.GetUser(ctx, userIDFilter); err != nil {
				return nil, mapEventRepoError(err)
			}
		}
		rows, err = s.events.ListEventsByUser(ctx, userIDFilter)
		if err != nil {
			return nil, err
		}
		visits, err = s.visits.ListScheduledByTechnician(ctx, userIDFilter)
		if err != nil {
			return nil, err
		}
	} else {
		rows, err = s.events.ListAllEvents(ctx)
		if err != nil {
			return nil, err
		}
		visits, err = s.visits.ListScheduled(ctx)
		if err != nil {
			return nil, err
		}
	}

	return s.aggregate(ctx, rows, visits)
}

// GlobalEvents returns the unified agenda of every technician inside
// [start, end].
func (s *AgendaService) GlobalEvents(ctx context.Context, start, end time.Time) ([]schedule.Entry, error) {
	if s == nil || s.events == nil || s.visits == nil {
		return nil, fmt.Errorf("repositories not configured")
	}
	if end.Before(start) {
		vErr := &ValidationError{}
		vErr.add("period", "data final anterior à data inicial")
		return nil, vErr
	}

	rows, err := s.events.ListByDateRange(ctx, start, end)
	if err != nil {
		return nil, err
	}
	visits, err := s.visits.ListScheduledByDateRange(ctx, start, end)
	if err != nil {
		return nil, err
	}
	return s.aggregate(ctx, rows, visits)
}

// GetReportData feeds the PDF report generator: the global agenda for the
// period with every entry guaranteed to carry a status.
func (s *AgendaService) GetReportData(ctx context.Context, start, end time.Time) ([]schedule.Entry, error) {
	entries, err := s.GlobalEvents(ctx, start, end)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		if entries[i].Status == "" {
			entries[i].Status = schedule.StatusToConfirm
			entries[i].StatusDescricao = schedule.StatusToConfirm.Descricao()
		}
	}
	return entries, nil
}

// MonthAvailability reports which shifts of each day in the month are busy
// for the technician, for calendar rendering.
func (s *AgendaService) MonthAvailability(ctx context.Context, principal Principal, year int, month time.Month) ([]schedule.DayAvailability, error) {
	if s == nil || s.events == nil || s.visits == nil {
		return nil, fmt.Errorf("repositories not configured")
	}

	start, end := schedule.MonthRange(year, month)

	realizedRows, err := s.visits.ListRealizedByTechnicianAndDateRange(ctx, principal.UserID, start, end)
	if err != nil {
		return nil, err
	}
	scheduledRows, err := s.visits.ListScheduledByTechnicianAndDateRange(ctx, principal.UserID, start, end)
	if err != nil {
		return nil, err
	}
	eventRows, err := s.events.ListByUserAndDateRange(ctx, principal.UserID, start, end)
	if err != nil {
		return nil, err
	}

	events, err := s.resolveEvents(ctx, eventRows)
	if err != nil {
		return nil, err
	}

	realized := make([]schedule.Visit, 0, len(realizedRows))
	for _, row := range realizedRows {
		realized = append(realized, toScheduleVisit(row))
	}
	scheduled := make([]schedule.Visit, 0, len(scheduledRows))
	for _, row := range scheduledRows {
		scheduled = append(scheduled, toScheduleVisit(row))
	}

	return schedule.MonthAvailability(year, month, realized, scheduled, events), nil
}

// FindEventsByCompanies returns the events tied to any of the companies,
// newest first, for the client portal.
func (s *AgendaService) FindEventsByCompanies(ctx context.Context, companyIDs []string) ([]schedule.Entry, error) {
	if s == nil || s.events == nil {
		return nil, fmt.Errorf("event repository not configured")
	}

	rows, err := s.events.ListByCompanyIDs(ctx, companyIDs)
	if err != nil {
		return nil, err
	}
	events, err := s.resolveEvents(ctx, rows)
	if err != nil {
		return nil, err
	}

	entries := make([]schedule.Entry, 0, len(events))
	for _, event := range events {
		entries = append(entries, schedule.EntryFromEvent(event))
	}
	return entries, nil
}

// FindEventsByClientEmail resolves the companies registered under a client
// portal email and returns their events, newest first.
func (s *AgendaService) FindEventsByClientEmail(ctx context.Context, email string) ([]schedule.Entry, error) {
	if s == nil || s.companies == nil {
		return nil, fmt.Errorf("company directory not configured")
	}

	email = strings.TrimSpace(email)
	if email == "" {
		vErr := &ValidationError{}
		vErr.add("email", "o e-mail do cliente é obrigatório")
		return nil, vErr
	}

	companies, err := s.companies.ListCompanies(ctx)
	if err != nil {
		return nil, err
	}

	var ids []string
	for _, company := range companies {
		if company.ClientEmail != nil && strings.EqualFold(*company.ClientEmail, email) {
			ids = append(ids, company.ID)
		}
	}
	if len(ids) == 0 {
		return []schedule.Entry{}, nil
	}
	return s.FindEventsByCompanies(ctx, ids)
}

// aggregate resolves visit links and merges both sources into the unified
// chronological agenda.
func (s *AgendaService) aggregate(ctx context.Context, rows []persistence.AgendaEvent, visitRows []persistence.TechnicalVisit) ([]schedule.Entry, error) {
	events, err := s.resolveEvents(ctx, rows)
	if err != nil {
		return nil, err
	}

	visits := make([]schedule.Visit, 0, len(visitRows))
	for _, row := range visitRows {
		visits = append(visits, toScheduleVisit(row))
	}

	return schedule.Aggregate(events, visits), nil
}

// resolveEvents converts persistence rows into schedule events with their
// linked visits attached, fetching all linked visits in one query.
func (s *AgendaService) resolveEvents(ctx context.Context, rows []persistence.AgendaEvent) ([]schedule.Event, error) {
	visitIDs := make([]string, 0)
	seen := make(map[string]struct{})
	for _, row := range rows {
		if row.TechnicalVisitID == nil {
			continue
		}
		if _, ok := seen[*row.TechnicalVisitID]; ok {
			continue
		}
		seen[*row.TechnicalVisitID] = struct{}{}
		visitIDs = append(visitIDs, *row.TechnicalVisitID)
	}

	visitsByID := make(map[string]schedule.Visit, len(visitIDs))
	if len(visitIDs) > 0 && s.visits != nil {
		visitRows, err := s.visits.ListVisitsByIDs(ctx, visitIDs)
		if err != nil {
			return nil, err
		}
		for _, row := range visitRows {
			visitsByID[row.ID] = toScheduleVisit(row)
		}
	}

	events := make([]schedule.Event, 0, len(rows))
	for _, row := range rows {
		event := schedule.Event{
			ID:                row.ID,
			Title:             row.Title,
			Date:              row.EventDate,
			Shift:             schedule.Shift(row.Shift),
			Type:              schedule.EventType(row.EventType),
			Status:            schedule.Status(row.Status),
			RescheduledTo:     row.RescheduledToDate,
			OriginalVisitDate: row.OriginalVisitDate,
			TechnicianName:    row.UserName,
		}
		if row.Description != nil {
			event.Description = *row.Description
		}
		if row.CompanyID != nil {
			event.CompanyID = *row.CompanyID
		}
		if row.CompanyName != nil {
			event.CompanyName = *row.CompanyName
		}
		if row.ClientName != nil {
			event.ClientName = *row.ClientName
		}
		if row.ManualObservation != nil {
			event.ManualObservation = *row.ManualObservation
		}
		if row.TechnicalVisitID != nil {
			if visit, ok := visitsByID[*row.TechnicalVisitID]; ok {
				event.Visit = &visit
			}
		}
		events = append(events, event)
	}
	return events, nil
}

func toScheduleVisit(row persistence.TechnicalVisit) schedule.Visit {
	visit := schedule.Visit{
		ID:             row.ID,
		CompanyID:      row.CompanyID,
		CompanyName:    row.CompanyName,
		TechnicianID:   row.TechnicianID,
		TechnicianName: row.TechnicianName,
		VisitDate:      row.VisitDate,
		StartTime:      row.StartTime,
		NextVisitDate:  row.NextVisitDate,
	}
	if row.UnitName != nil {
		visit.UnitName = *row.UnitName
	}
	if row.SectorName != nil {
		visit.SectorName = *row.SectorName
	}
	if row.NextVisitShift != nil {
		visit.NextVisitShift = schedule.Shift(*row.NextVisitShift)
	}
	return visit
}

func validateEventInput(input EventInput, vErr *ValidationError) {
	if strings.TrimSpace(input.Title) == "" {
		vErr.add("title", "o título é obrigatório")
	}
	if input.EventDate.IsZero() {
		vErr.add("event_date", "a data do evento é obrigatória")
	}
	if input.Shift == "" {
		vErr.add("shift", "o turno é obrigatório")
	}
	if input.EventType == "" {
		vErr.add("event_type", "o tipo de evento é obrigatório")
	}
}

func uniqueNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	result := make([]string, 0, len(names))
	for _, name := range names {
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		result = append(result, name)
	}
	return result
}

func mapEventRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrForeignKeyViolation) {
		vErr := &ValidationError{}
		vErr.add("references", "registro relacionado não encontrado")
		return vErr
	}
	return err
}
