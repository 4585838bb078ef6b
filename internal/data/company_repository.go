package data

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// CompanyRepository reads and writes the companies stories can link to.
type CompanyRepository struct {
	DB *sqlx.DB
}

// NewCompanyRepository creates a new CompanyRepository.
func NewCompanyRepository(db *sqlx.DB) *CompanyRepository {
	return &CompanyRepository{DB: db}
}

// GetByID finds a company by its ID.
func (r *CompanyRepository) GetByID(ctx context.Context, id int64) (*Company, error) {
	var company Company
	err := r.DB.GetContext(ctx, &company, "SELECT id, name, slug, url FROM companies WHERE id = ?", id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get company by id: %w", err)
	}
	return &company, nil
}

// GetBySlug finds a company by its slug.
func (r *CompanyRepository) GetBySlug(ctx context.Context, slug string) (*Company, error) {
	var company Company
	err := r.DB.GetContext(ctx, &company, "SELECT id, name, slug, url FROM companies WHERE slug = ?", slug)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get company by slug: %w", err)
	}
	return &company, nil
}

// Save creates a new company and returns its ID.
func (r *CompanyRepository) Save(ctx context.Context, company *Company) (int64, error) {
	res, err := r.DB.NamedExecContext(ctx, `INSERT INTO companies (name, slug, url) VALUES (:name, :slug, :url)`, company)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("company %q: %w", company.Slug, ErrDuplicateSlug)
		}
		return 0, fmt.Errorf("failed to insert company: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	company.ID = id
	return id, nil
}
