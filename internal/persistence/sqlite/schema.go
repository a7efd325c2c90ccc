package sqlite

import (
	"context"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            TEXT PRIMARY KEY,
		email         TEXT NOT NULL UNIQUE COLLATE NOCASE,
		name          TEXT NOT NULL,
		password_hash TEXT NOT NULL DEFAULT '',
		is_admin      INTEGER NOT NULL DEFAULT 0,
		created_at    TEXT NOT NULL,
		updated_at    TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS companies (
		id           TEXT PRIMARY KEY,
		name         TEXT NOT NULL,
		client_email TEXT,
		created_at   TEXT NOT NULL,
		updated_at   TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS technical_visits (
		id               TEXT PRIMARY KEY,
		company_id       TEXT NOT NULL REFERENCES companies(id),
		unit_name        TEXT,
		sector_name      TEXT,
		technician_id    TEXT NOT NULL REFERENCES users(id),
		visit_date       TEXT,
		start_time       TEXT,
		next_visit_date  TEXT,
		next_visit_shift TEXT CHECK (next_visit_shift IN ('MANHA', 'TARDE')),
		created_at       TEXT NOT NULL,
		updated_at       TEXT NOT NULL,
		CHECK ((next_visit_date IS NULL) = (next_visit_shift IS NULL))
	)`,
	`CREATE TABLE IF NOT EXISTS agenda_events (
		id                  TEXT PRIMARY KEY,
		title               TEXT NOT NULL,
		description         TEXT,
		event_date          TEXT NOT NULL,
		shift               TEXT NOT NULL CHECK (shift IN ('MANHA', 'TARDE')),
		user_id             TEXT NOT NULL REFERENCES users(id),
		technical_visit_id  TEXT REFERENCES technical_visits(id),
		company_id          TEXT REFERENCES companies(id),
		event_type          TEXT NOT NULL,
		status              TEXT NOT NULL DEFAULT 'A_CONFIRMAR'
			CHECK (status IN ('A_CONFIRMAR', 'CONFIRMADO', 'CANCELADO', 'REAGENDADO')),
		rescheduled_to_date TEXT,
		original_visit_date TEXT,
		client_name         TEXT,
		manual_observation  TEXT,
		created_at          TEXT NOT NULL,
		updated_at          TEXT NOT NULL,
		CHECK ((status = 'REAGENDADO') = (rescheduled_to_date IS NOT NULL))
	)`,
	`CREATE INDEX IF NOT EXISTS idx_agenda_events_user_date
		ON agenda_events (user_id, event_date)`,
	`CREATE INDEX IF NOT EXISTS idx_agenda_events_date_shift
		ON agenda_events (event_date, shift)`,
	`CREATE INDEX IF NOT EXISTS idx_agenda_events_visit
		ON agenda_events (technical_visit_id)`,
	`CREATE INDEX IF NOT EXISTS idx_technical_visits_next_date
		ON technical_visits (next_visit_date)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL REFERENCES users(id),
		token      TEXT NOT NULL UNIQUE,
		expires_at TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		revoked_at TEXT
	)`,
}

// Migrate creates the agenda schema. Statements are idempotent so startup can
// run them unconditionally.
func Migrate(ctx context.Context, pool *ConnectionPool) error {
	for _, stmt := range schemaStatements {
		if _, err := pool.DB().ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
