package data

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// BoxRepository stores labelled HTML fragments.
type BoxRepository struct {
	DB *sqlx.DB
}

// NewBoxRepository creates a new BoxRepository.
func NewBoxRepository(db *sqlx.DB) *BoxRepository {
	return &BoxRepository{DB: db}
}

// GetByLabel finds a box by its label.
func (r *BoxRepository) GetByLabel(ctx context.Context, label string) (*Box, error) {
	var box Box
	err := r.DB.GetContext(ctx, &box, "SELECT id, label, content, created_at, updated_at FROM boxes WHERE label = ?", label)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get box by label: %w", err)
	}
	return &box, nil
}

// Upsert creates the box if it does not exist, then overwrites its content.
// Concurrent writers are not serialized; the last write wins.
func (r *BoxRepository) Upsert(ctx context.Context, label, content string) (*Box, bool, error) {
	box, err := r.GetByLabel(ctx, label)
	if err != nil {
		return nil, false, err
	}
	now := time.Now().UTC()

	created := false
	if box == nil {
		box = &Box{Label: label, CreatedAt: now, UpdatedAt: now}
		res, err := r.DB.NamedExecContext(ctx,
			`INSERT INTO boxes (label, content, created_at, updated_at) VALUES (:label, :content, :created_at, :updated_at)`, box)
		if err != nil && !isUniqueViolation(err) {
			return nil, false, fmt.Errorf("failed to create box: %w", err)
		}
		if err == nil {
			created = true
			if box.ID, err = res.LastInsertId(); err != nil {
				return nil, false, err
			}
		}
	}

	box.Content = content
	box.UpdatedAt = now
	if _, err := r.DB.ExecContext(ctx, `UPDATE boxes SET content = ?, updated_at = ? WHERE label = ?`, content, now, label); err != nil {
		return nil, false, fmt.Errorf("failed to update box content: %w", err)
	}
	return box, created, nil
}
