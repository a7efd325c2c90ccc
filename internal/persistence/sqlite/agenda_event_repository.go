package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/example/gotree-agenda/internal/persistence"
)

// AgendaEventRepository implements persistence.AgendaEventRepository using
// SQLite.
type AgendaEventRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewAgendaEventRepository creates a new SQLite agenda event repository.
func NewAgendaEventRepository(pool *ConnectionPool) *AgendaEventRepository {
	return &AgendaEventRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

const agendaEventColumns = `
	e.id, e.title, e.description, e.event_date, e.shift, e.user_id, u.name,
	e.technical_visit_id, e.company_id, c.name, e.event_type, e.status,
	e.rescheduled_to_date, e.original_visit_date, e.client_name,
	e.manual_observation, e.created_at, e.updated_at`

const agendaEventFrom = `
	FROM agenda_events e
	JOIN users u ON u.id = e.user_id
	LEFT JOIN companies c ON c.id = e.company_id`

// CreateEvent inserts an event without capacity checks. Reschedule trails use
// this path: they land on the superseded date where an active event may
// legitimately remain.
func (r *AgendaEventRepository) CreateEvent(ctx context.Context, event persistence.AgendaEvent) error {
	if event.ID == "" {
		return persistence.ErrConstraintViolation
	}
	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		return r.insertEvent(tx, event)
	})
}

// CreateEventIfAvailable inserts an event and re-runs the capacity counts
// inside the same transaction, so two requests that both passed the
// application-level availability check cannot both commit.
func (r *AgendaEventRepository) CreateEventIfAvailable(ctx context.Context, event persistence.AgendaEvent) error {
	if event.ID == "" {
		return persistence.ErrConstraintViolation
	}
	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		var inDay, inShift int64
		day := formatDate(event.EventDate)

		err := r.helper.QueryRowTx(tx,
			"SELECT COUNT(*) FROM agenda_events WHERE user_id = ? AND event_date = ?",
			event.UserID, day).Scan(&inDay)
		if err != nil {
			return r.mapper.MapError(err)
		}
		err = r.helper.QueryRowTx(tx,
			"SELECT COUNT(*) FROM agenda_events WHERE user_id = ? AND event_date = ? AND shift = ?",
			event.UserID, day, event.Shift).Scan(&inShift)
		if err != nil {
			return r.mapper.MapError(err)
		}
		if inDay >= 2 || inShift > 0 {
			return persistence.ErrSlotTaken
		}
		return r.insertEvent(tx, event)
	})
}

func (r *AgendaEventRepository) insertEvent(tx *sql.Tx, event persistence.AgendaEvent) error {
	now := time.Now().UTC()
	if event.CreatedAt.IsZero() {
		event.CreatedAt = now
	}
	event.UpdatedAt = now

	query := `
		INSERT INTO agenda_events (
			id, title, description, event_date, shift, user_id,
			technical_visit_id, company_id, event_type, status,
			rescheduled_to_date, original_visit_date, client_name,
			manual_observation, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.helper.ExecTx(tx, query,
		event.ID,
		event.Title,
		nullString(event.Description),
		formatDate(event.EventDate),
		event.Shift,
		event.UserID,
		nullString(event.TechnicalVisitID),
		nullString(event.CompanyID),
		event.EventType,
		event.Status,
		nullDate(event.RescheduledToDate),
		nullDate(event.OriginalVisitDate),
		nullString(event.ClientName),
		nullString(event.ManualObservation),
		formatTimestamp(event.CreatedAt),
		formatTimestamp(event.UpdatedAt),
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return nil
}

// UpdateEvent rewrites the mutable fields of an existing event.
func (r *AgendaEventRepository) UpdateEvent(ctx context.Context, event persistence.AgendaEvent) error {
	if event.ID == "" {
		return persistence.ErrNotFound
	}

	query := `
		UPDATE agenda_events
		SET title = ?, description = ?, event_date = ?, shift = ?,
			company_id = ?, event_type = ?, status = ?,
			rescheduled_to_date = ?, original_visit_date = ?,
			client_name = ?, manual_observation = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.helper.Exec(ctx, query,
		event.Title,
		nullString(event.Description),
		formatDate(event.EventDate),
		event.Shift,
		nullString(event.CompanyID),
		event.EventType,
		event.Status,
		nullDate(event.RescheduledToDate),
		nullDate(event.OriginalVisitDate),
		nullString(event.ClientName),
		nullString(event.ManualObservation),
		formatTimestamp(time.Now().UTC()),
		event.ID,
	)
	if err != nil {
		return r.mapper.MapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// GetEvent retrieves an event by ID.
func (r *AgendaEventRepository) GetEvent(ctx context.Context, id string) (persistence.AgendaEvent, error) {
	if id == "" {
		return persistence.AgendaEvent{}, persistence.ErrNotFound
	}

	query := "SELECT" + agendaEventColumns + agendaEventFrom + " WHERE e.id = ?"
	row := r.helper.QueryRow(ctx, query, id)
	event, err := scanAgendaEvent(row)
	if err != nil {
		return persistence.AgendaEvent{}, r.mapper.MapError(err)
	}
	return event, nil
}

// DeleteEvent removes an event by ID.
func (r *AgendaEventRepository) DeleteEvent(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	result, err := r.helper.Exec(ctx, "DELETE FROM agenda_events WHERE id = ?", id)
	if err != nil {
		return r.mapper.MapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// ListEventsByUser returns a technician's events ordered by date.
func (r *AgendaEventRepository) ListEventsByUser(ctx context.Context, userID string) ([]persistence.AgendaEvent, error) {
	query := "SELECT" + agendaEventColumns + agendaEventFrom +
		" WHERE e.user_id = ? ORDER BY e.event_date ASC, e.id ASC"
	return r.listEvents(ctx, query, userID)
}

// ListAllEvents returns every event ordered by date.
func (r *AgendaEventRepository) ListAllEvents(ctx context.Context) ([]persistence.AgendaEvent, error) {
	query := "SELECT" + agendaEventColumns + agendaEventFrom +
		" ORDER BY e.event_date ASC, e.id ASC"
	return r.listEvents(ctx, query)
}

// ListByDateRange returns all technicians' events inside [start, end].
func (r *AgendaEventRepository) ListByDateRange(ctx context.Context, start, end time.Time) ([]persistence.AgendaEvent, error) {
	query := "SELECT" + agendaEventColumns + agendaEventFrom +
		" WHERE e.event_date BETWEEN ? AND ? ORDER BY e.event_date ASC, e.id ASC"
	return r.listEvents(ctx, query, formatDate(start), formatDate(end))
}

// ListByUserAndDateRange returns a technician's events inside [start, end].
func (r *AgendaEventRepository) ListByUserAndDateRange(ctx context.Context, userID string, start, end time.Time) ([]persistence.AgendaEvent, error) {
	query := "SELECT" + agendaEventColumns + agendaEventFrom +
		" WHERE e.user_id = ? AND e.event_date BETWEEN ? AND ? ORDER BY e.event_date ASC, e.id ASC"
	return r.listEvents(ctx, query, userID, formatDate(start), formatDate(end))
}

// ListByUserAndDateAndShift returns a technician's events at one slot.
func (r *AgendaEventRepository) ListByUserAndDateAndShift(ctx context.Context, userID string, date time.Time, shift string) ([]persistence.AgendaEvent, error) {
	query := "SELECT" + agendaEventColumns + agendaEventFrom +
		" WHERE e.user_id = ? AND e.event_date = ? AND e.shift = ? ORDER BY e.id ASC"
	return r.listEvents(ctx, query, userID, formatDate(date), shift)
}

// ListByDateAndShift returns every technician's events at one slot.
func (r *AgendaEventRepository) ListByDateAndShift(ctx context.Context, date time.Time, shift string) ([]persistence.AgendaEvent, error) {
	query := "SELECT" + agendaEventColumns + agendaEventFrom +
		" WHERE e.event_date = ? AND e.shift = ? ORDER BY e.id ASC"
	return r.listEvents(ctx, query, formatDate(date), shift)
}

// ListByCompanyIDs returns events tied to any of the companies, directly or
// through their visit, newest first.
func (r *AgendaEventRepository) ListByCompanyIDs(ctx context.Context, companyIDs []string) ([]persistence.AgendaEvent, error) {
	if len(companyIDs) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(companyIDs)), ",")
	query := "SELECT" + agendaEventColumns + agendaEventFrom + `
		LEFT JOIN technical_visits tv ON tv.id = e.technical_visit_id
		WHERE tv.company_id IN (` + placeholders + `) OR e.company_id IN (` + placeholders + `)
		ORDER BY e.event_date DESC, e.id ASC`

	args := make([]any, 0, len(companyIDs)*2)
	for _, id := range companyIDs {
		args = append(args, id)
	}
	for _, id := range companyIDs {
		args = append(args, id)
	}
	return r.listEvents(ctx, query, args...)
}

// CountByUserAndDate counts a technician's events on a date, both shifts.
func (r *AgendaEventRepository) CountByUserAndDate(ctx context.Context, userID string, date time.Time) (int64, error) {
	var count int64
	err := r.helper.QueryRow(ctx,
		"SELECT COUNT(*) FROM agenda_events WHERE user_id = ? AND event_date = ?",
		userID, formatDate(date)).Scan(&count)
	if err != nil {
		return 0, r.mapper.MapError(err)
	}
	return count, nil
}

// CountByUserAndDateAndShift counts a technician's events at one slot.
func (r *AgendaEventRepository) CountByUserAndDateAndShift(ctx context.Context, userID string, date time.Time, shift string) (int64, error) {
	var count int64
	err := r.helper.QueryRow(ctx,
		"SELECT COUNT(*) FROM agenda_events WHERE user_id = ? AND event_date = ? AND shift = ?",
		userID, formatDate(date), shift).Scan(&count)
	if err != nil {
		return 0, r.mapper.MapError(err)
	}
	return count, nil
}

// FindBySourceVisit returns the event linked to a visit, or ErrNotFound.
func (r *AgendaEventRepository) FindBySourceVisit(ctx context.Context, visitID string) (persistence.AgendaEvent, error) {
	query := "SELECT" + agendaEventColumns + agendaEventFrom +
		" WHERE e.technical_visit_id = ? ORDER BY e.created_at DESC LIMIT 1"
	row := r.helper.QueryRow(ctx, query, visitID)
	event, err := scanAgendaEvent(row)
	if err != nil {
		return persistence.AgendaEvent{}, r.mapper.MapError(err)
	}
	return event, nil
}

func (r *AgendaEventRepository) listEvents(ctx context.Context, query string, args ...any) ([]persistence.AgendaEvent, error) {
	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var events []persistence.AgendaEvent
	for rows.Next() {
		event, err := scanAgendaEvent(rows)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return events, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAgendaEvent(row rowScanner) (persistence.AgendaEvent, error) {
	var event persistence.AgendaEvent
	var description, visitID, companyID, companyName sql.NullString
	var rescheduledTo, originalVisit, clientName, observation sql.NullString
	var eventDateStr, createdAtStr, updatedAtStr string

	err := row.Scan(
		&event.ID,
		&event.Title,
		&description,
		&eventDateStr,
		&event.Shift,
		&event.UserID,
		&event.UserName,
		&visitID,
		&companyID,
		&companyName,
		&event.EventType,
		&event.Status,
		&rescheduledTo,
		&originalVisit,
		&clientName,
		&observation,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		return persistence.AgendaEvent{}, err
	}

	event.Description = stringPtr(description)
	event.TechnicalVisitID = stringPtr(visitID)
	event.CompanyID = stringPtr(companyID)
	event.CompanyName = stringPtr(companyName)
	event.ClientName = stringPtr(clientName)
	event.ManualObservation = stringPtr(observation)

	if event.EventDate, err = parseDate(eventDateStr); err != nil {
		return persistence.AgendaEvent{}, err
	}
	if event.RescheduledToDate, err = datePtr(rescheduledTo); err != nil {
		return persistence.AgendaEvent{}, err
	}
	if event.OriginalVisitDate, err = datePtr(originalVisit); err != nil {
		return persistence.AgendaEvent{}, err
	}
	if event.CreatedAt, err = parseTimestamp(createdAtStr); err != nil {
		return persistence.AgendaEvent{}, err
	}
	if event.UpdatedAt, err = parseTimestamp(updatedAtStr); err != nil {
		return persistence.AgendaEvent{}, err
	}
	return event, nil
}
