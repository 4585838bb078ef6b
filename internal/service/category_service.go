package service

import (
	"context"
	"go-success-stories/internal/data"
)

// CategoryServicer defines the interface the HTTP layer uses for categories.
type CategoryServicer interface {
	List(ctx context.Context) ([]*data.StoryCategory, error)
	GetBySlug(ctx context.Context, slug string) (*data.StoryCategory, error)
}

// CategoryService manages story categories.
type CategoryService struct {
	repo CategoryRepository
}

// NewCategoryService creates a new CategoryService.
func NewCategoryService(repo CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

// Create adds a category. The slug is derived from the name when empty.
func (s *CategoryService) Create(ctx context.Context, name, slug string) (*data.StoryCategory, error) {
	if slug == "" {
		slug = data.Slugify(name)
	}
	if slug == "" {
		return nil, &data.ValidationError{Message: data.ErrMsgEmptySlug}
	}
	category := &data.StoryCategory{Name: name, Slug: slug}
	if _, err := s.repo.Save(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// List returns all categories ordered by name.
func (s *CategoryService) List(ctx context.Context) ([]*data.StoryCategory, error) {
	return s.repo.GetAll(ctx)
}

// GetBySlug returns the category or ErrNotFound.
func (s *CategoryService) GetBySlug(ctx context.Context, slug string) (*data.StoryCategory, error) {
	category, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrNotFound
	}
	return category, nil
}
