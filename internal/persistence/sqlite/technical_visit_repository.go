package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/example/gotree-agenda/internal/persistence"
)

// TechnicalVisitRepository implements persistence.TechnicalVisitRepository
// using SQLite.
type TechnicalVisitRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
	events *AgendaEventRepository
}

// NewTechnicalVisitRepository creates a new SQLite technical visit
// repository.
func NewTechnicalVisitRepository(pool *ConnectionPool) *TechnicalVisitRepository {
	return &TechnicalVisitRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
		events: NewAgendaEventRepository(pool),
	}
}

const visitColumns = `
	v.id, v.company_id, c.name, v.unit_name, v.sector_name,
	v.technician_id, u.name, v.visit_date, v.start_time,
	v.next_visit_date, v.next_visit_shift, v.created_at, v.updated_at`

const visitFrom = `
	FROM technical_visits v
	JOIN companies c ON c.id = v.company_id
	JOIN users u ON u.id = v.technician_id`

// CreateVisit inserts a visit record. Exposed for fixtures and the report
// pipeline; the agenda core itself never creates visits.
func (r *TechnicalVisitRepository) CreateVisit(ctx context.Context, visit persistence.TechnicalVisit) error {
	if visit.ID == "" {
		return persistence.ErrConstraintViolation
	}
	now := time.Now().UTC()
	if visit.CreatedAt.IsZero() {
		visit.CreatedAt = now
	}
	visit.UpdatedAt = now

	query := `
		INSERT INTO technical_visits (
			id, company_id, unit_name, sector_name, technician_id,
			visit_date, start_time, next_visit_date, next_visit_shift,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.helper.Exec(ctx, query,
		visit.ID,
		visit.CompanyID,
		nullString(visit.UnitName),
		nullString(visit.SectorName),
		visit.TechnicianID,
		nullDate(visit.VisitDate),
		nullTimestamp(visit.StartTime),
		nullDate(visit.NextVisitDate),
		nullString(visit.NextVisitShift),
		formatTimestamp(visit.CreatedAt),
		formatTimestamp(visit.UpdatedAt),
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return nil
}

// GetVisit retrieves a visit by ID.
func (r *TechnicalVisitRepository) GetVisit(ctx context.Context, id string) (persistence.TechnicalVisit, error) {
	if id == "" {
		return persistence.TechnicalVisit{}, persistence.ErrNotFound
	}
	query := "SELECT" + visitColumns + visitFrom + " WHERE v.id = ?"
	visit, err := scanVisit(r.helper.QueryRow(ctx, query, id))
	if err != nil {
		return persistence.TechnicalVisit{}, r.mapper.MapError(err)
	}
	return visit, nil
}

// ListVisitsByIDs retrieves the visits with the given ids, skipping missing
// ones.
func (r *TechnicalVisitRepository) ListVisitsByIDs(ctx context.Context, ids []string) ([]persistence.TechnicalVisit, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	query := "SELECT" + visitColumns + visitFrom + " WHERE v.id IN (" + placeholders + ")"
	args := make([]any, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}
	return r.listVisits(ctx, query, args...)
}

// ListScheduled returns every visit with a next-visit projection.
func (r *TechnicalVisitRepository) ListScheduled(ctx context.Context) ([]persistence.TechnicalVisit, error) {
	query := "SELECT" + visitColumns + visitFrom +
		" WHERE v.next_visit_date IS NOT NULL ORDER BY v.next_visit_date ASC, v.id ASC"
	return r.listVisits(ctx, query)
}

// ListScheduledByTechnician returns a technician's projected visits.
func (r *TechnicalVisitRepository) ListScheduledByTechnician(ctx context.Context, technicianID string) ([]persistence.TechnicalVisit, error) {
	query := "SELECT" + visitColumns + visitFrom +
		" WHERE v.technician_id = ? AND v.next_visit_date IS NOT NULL ORDER BY v.next_visit_date ASC, v.id ASC"
	return r.listVisits(ctx, query, technicianID)
}

// ListScheduledByDateRange returns projections landing inside [start, end].
func (r *TechnicalVisitRepository) ListScheduledByDateRange(ctx context.Context, start, end time.Time) ([]persistence.TechnicalVisit, error) {
	query := "SELECT" + visitColumns + visitFrom +
		" WHERE v.next_visit_date BETWEEN ? AND ? ORDER BY v.next_visit_date ASC, v.id ASC"
	return r.listVisits(ctx, query, formatDate(start), formatDate(end))
}

// ListScheduledByTechnicianAndDateRange returns a technician's projections
// inside [start, end].
func (r *TechnicalVisitRepository) ListScheduledByTechnicianAndDateRange(ctx context.Context, technicianID string, start, end time.Time) ([]persistence.TechnicalVisit, error) {
	query := "SELECT" + visitColumns + visitFrom +
		" WHERE v.technician_id = ? AND v.next_visit_date BETWEEN ? AND ? ORDER BY v.next_visit_date ASC, v.id ASC"
	return r.listVisits(ctx, query, technicianID, formatDate(start), formatDate(end))
}

// ListScheduledByDateAndShift returns every technician's projection at one
// slot.
func (r *TechnicalVisitRepository) ListScheduledByDateAndShift(ctx context.Context, date time.Time, shift string) ([]persistence.TechnicalVisit, error) {
	query := "SELECT" + visitColumns + visitFrom +
		" WHERE v.next_visit_date = ? AND v.next_visit_shift = ? ORDER BY v.id ASC"
	return r.listVisits(ctx, query, formatDate(date), shift)
}

// ListRealizedByTechnicianAndDateRange returns visits performed inside
// [start, end].
func (r *TechnicalVisitRepository) ListRealizedByTechnicianAndDateRange(ctx context.Context, technicianID string, start, end time.Time) ([]persistence.TechnicalVisit, error) {
	query := "SELECT" + visitColumns + visitFrom +
		" WHERE v.technician_id = ? AND v.visit_date BETWEEN ? AND ? ORDER BY v.visit_date ASC, v.id ASC"
	return r.listVisits(ctx, query, technicianID, formatDate(start), formatDate(end))
}

// ApplyReschedule persists the trail event and moves the visit's next-visit
// date inside one transaction, so a failure leaves neither half behind.
func (r *TechnicalVisitRepository) ApplyReschedule(ctx context.Context, trail persistence.AgendaEvent, visitID string, newDate time.Time) error {
	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		if err := r.events.insertEvent(tx, trail); err != nil {
			return err
		}

		result, err := r.helper.ExecTx(tx,
			"UPDATE technical_visits SET next_visit_date = ?, updated_at = ? WHERE id = ?",
			formatDate(newDate), formatTimestamp(time.Now().UTC()), visitID)
		if err != nil {
			return r.mapper.MapError(err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return persistence.ErrNotFound
		}
		return nil
	})
}

func (r *TechnicalVisitRepository) listVisits(ctx context.Context, query string, args ...any) ([]persistence.TechnicalVisit, error) {
	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var visits []persistence.TechnicalVisit
	for rows.Next() {
		visit, err := scanVisit(rows)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		visits = append(visits, visit)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return visits, nil
}

func scanVisit(row rowScanner) (persistence.TechnicalVisit, error) {
	var visit persistence.TechnicalVisit
	var unitName, sectorName, visitDate, startTime, nextDate, nextShift sql.NullString
	var createdAtStr, updatedAtStr string

	err := row.Scan(
		&visit.ID,
		&visit.CompanyID,
		&visit.CompanyName,
		&unitName,
		&sectorName,
		&visit.TechnicianID,
		&visit.TechnicianName,
		&visitDate,
		&startTime,
		&nextDate,
		&nextShift,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		return persistence.TechnicalVisit{}, err
	}

	visit.UnitName = stringPtr(unitName)
	visit.SectorName = stringPtr(sectorName)
	visit.NextVisitShift = stringPtr(nextShift)

	if visit.VisitDate, err = datePtr(visitDate); err != nil {
		return persistence.TechnicalVisit{}, err
	}
	if visit.StartTime, err = timestampPtr(startTime); err != nil {
		return persistence.TechnicalVisit{}, err
	}
	if visit.NextVisitDate, err = datePtr(nextDate); err != nil {
		return persistence.TechnicalVisit{}, err
	}
	if visit.CreatedAt, err = parseTimestamp(createdAtStr); err != nil {
		return persistence.TechnicalVisit{}, err
	}
	if visit.UpdatedAt, err = parseTimestamp(updatedAtStr); err != nil {
		return persistence.TechnicalVisit{}, err
	}
	return visit, nil
}
