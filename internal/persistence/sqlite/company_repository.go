package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/example/gotree-agenda/internal/persistence"
)

// CompanyRepository implements persistence.CompanyRepository using SQLite.
type CompanyRepository struct {
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewCompanyRepository creates a new SQLite company repository.
func NewCompanyRepository(pool *ConnectionPool) *CompanyRepository {
	return &CompanyRepository{
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

const companyColumns = "id, name, client_email, created_at, updated_at"

// CreateCompany inserts a new client company.
func (r *CompanyRepository) CreateCompany(ctx context.Context, company persistence.Company) error {
	if company.ID == "" {
		return persistence.ErrConstraintViolation
	}
	now := time.Now().UTC()
	if company.CreatedAt.IsZero() {
		company.CreatedAt = now
	}
	company.UpdatedAt = now

	_, err := r.helper.Exec(ctx,
		"INSERT INTO companies ("+companyColumns+") VALUES (?, ?, ?, ?, ?)",
		company.ID, company.Name, nullString(company.ClientEmail),
		formatTimestamp(company.CreatedAt), formatTimestamp(company.UpdatedAt))
	if err != nil {
		return r.mapper.MapError(err)
	}
	return nil
}

// GetCompany retrieves a company by ID.
func (r *CompanyRepository) GetCompany(ctx context.Context, id string) (persistence.Company, error) {
	if id == "" {
		return persistence.Company{}, persistence.ErrNotFound
	}
	row := r.helper.QueryRow(ctx, "SELECT "+companyColumns+" FROM companies WHERE id = ?", id)
	company, err := scanCompany(row)
	if err != nil {
		return persistence.Company{}, r.mapper.MapError(err)
	}
	return company, nil
}

// ListCompanies returns all companies ordered by name.
func (r *CompanyRepository) ListCompanies(ctx context.Context) ([]persistence.Company, error) {
	rows, err := r.helper.Query(ctx, "SELECT "+companyColumns+" FROM companies ORDER BY name ASC, id ASC")
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var companies []persistence.Company
	for rows.Next() {
		company, err := scanCompany(rows)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		companies = append(companies, company)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return companies, nil
}

func scanCompany(row rowScanner) (persistence.Company, error) {
	var company persistence.Company
	var clientEmail sql.NullString
	var createdAtStr, updatedAtStr string

	err := row.Scan(&company.ID, &company.Name, &clientEmail, &createdAtStr, &updatedAtStr)
	if err != nil {
		return persistence.Company{}, err
	}
	company.ClientEmail = stringPtr(clientEmail)

	if company.CreatedAt, err = parseTimestamp(createdAtStr); err != nil {
		return persistence.Company{}, err
	}
	if company.UpdatedAt, err = parseTimestamp(updatedAtStr); err != nil {
		return persistence.Company{}, err
	}
	return company, nil
}
