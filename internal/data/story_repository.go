package data

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// SQLStoryRepository stores success stories using sqlx.
type SQLStoryRepository struct {
	db *sqlx.DB
}

// NewSQLStoryRepository creates a new SQLStoryRepository.
func NewSQLStoryRepository(db *sqlx.DB) *SQLStoryRepository {
	return &SQLStoryRepository{db: db}
}

const storyColumns = `id, name, slug, company_name, company_url, company_id, category_id, author, author_email,
	pull_quote, content, content_markup_type, content_rendered, is_published, featured, weight, image,
	created_at, updated_at`

// CreateStory inserts a new story and sets its ID and timestamps.
func (r *SQLStoryRepository) CreateStory(ctx context.Context, story *Story) error {
	now := time.Now().UTC()
	story.CreatedAt = now
	story.UpdatedAt = now
	query := `INSERT INTO stories (name, slug, company_name, company_url, company_id, category_id, author, author_email,
		pull_quote, content, content_markup_type, content_rendered, is_published, featured, weight, image, created_at, updated_at)
		VALUES (:name, :slug, :company_name, :company_url, :company_id, :category_id, :author, :author_email,
		:pull_quote, :content, :content_markup_type, :content_rendered, :is_published, :featured, :weight, :image, :created_at, :updated_at)`
	res, err := r.db.NamedExecContext(ctx, query, story)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("story %q: %w", story.Slug, ErrDuplicateSlug)
		}
		return fmt.Errorf("failed to execute create story query: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get story id: %w", err)
	}
	story.ID = id
	return nil
}

// UpdateStory writes every mutable column of an existing story.
func (r *SQLStoryRepository) UpdateStory(ctx context.Context, story *Story) error {
	story.UpdatedAt = time.Now().UTC()
	query := `UPDATE stories SET name = :name, slug = :slug, company_name = :company_name, company_url = :company_url,
		company_id = :company_id, category_id = :category_id, author = :author, author_email = :author_email,
		pull_quote = :pull_quote, content = :content, content_markup_type = :content_markup_type,
		content_rendered = :content_rendered, is_published = :is_published, featured = :featured, weight = :weight,
		image = :image, updated_at = :updated_at WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, story)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("story %q: %w", story.Slug, ErrDuplicateSlug)
		}
		return fmt.Errorf("failed to update story: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("no story found to update with id %d", story.ID)
	}
	return nil
}

// GetStoryBySlug retrieves a single story by its slug, published or not.
func (r *SQLStoryRepository) GetStoryBySlug(ctx context.Context, slug string) (*Story, error) {
	var story Story
	query := `SELECT ` + storyColumns + ` FROM stories WHERE slug = ?`
	if err := r.db.GetContext(ctx, &story, query, slug); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get story by slug: %w", err)
	}
	return &story, nil
}

// ListPublished returns published stories, newest first.
func (r *SQLStoryRepository) ListPublished(ctx context.Context) ([]*Story, error) {
	var stories []*Story
	query := `SELECT ` + storyColumns + ` FROM stories WHERE is_published = ? ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &stories, query, true); err != nil {
		return nil, fmt.Errorf("failed to list published stories: %w", err)
	}
	return stories, nil
}

// ListPublishedByCategory returns the published stories of one category, newest first.
func (r *SQLStoryRepository) ListPublishedByCategory(ctx context.Context, categoryID int64) ([]*Story, error) {
	var stories []*Story
	query := `SELECT ` + storyColumns + ` FROM stories WHERE is_published = ? AND category_id = ? ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &stories, query, true, categoryID); err != nil {
		return nil, fmt.Errorf("failed to list stories by category: %w", err)
	}
	return stories, nil
}

// ListFeatured returns published, featured stories.
func (r *SQLStoryRepository) ListFeatured(ctx context.Context) ([]*Story, error) {
	var stories []*Story
	query := `SELECT ` + storyColumns + ` FROM stories WHERE is_published = ? AND featured = ? ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &stories, query, true, true); err != nil {
		return nil, fmt.Errorf("failed to list featured stories: %w", err)
	}
	return stories, nil
}

// ListAll returns every story regardless of state, newest first.
func (r *SQLStoryRepository) ListAll(ctx context.Context) ([]*Story, error) {
	var stories []*Story
	query := `SELECT ` + storyColumns + ` FROM stories ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &stories, query); err != nil {
		return nil, fmt.Errorf("failed to list stories: %w", err)
	}
	return stories, nil
}
