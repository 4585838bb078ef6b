package service

import (
	"context"
	"fmt"
	"go-success-stories/internal/data"
	"go-success-stories/internal/logger"
	"time"
)

// BoxRepository defines the database operations on boxes.
type BoxRepository interface {
	GetByLabel(ctx context.Context, label string) (*data.Box, error)
	Upsert(ctx context.Context, label, content string) (*data.Box, bool, error)
}

// FragmentCache is the local cache in front of box reads.
type FragmentCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// BoxServicer defines the interface the HTTP layer uses for boxes.
type BoxServicer interface {
	Content(ctx context.Context, label string) (string, error)
}

// BoxService serves boxes through the fragment cache and keeps it fresh on writes.
type BoxService struct {
	repo  BoxRepository
	cache FragmentCache
	log   logger.Logger
}

// NewBoxService creates a new BoxService.
func NewBoxService(repo BoxRepository, cache FragmentCache, log logger.Logger) *BoxService {
	return &BoxService{repo: repo, cache: cache, log: log.With(map[string]interface{}{"component": "boxes"})}
}

func boxCacheKey(label string) string {
	return "box:" + label
}

// Upsert creates or overwrites the box and drops its cached copy.
func (s *BoxService) Upsert(ctx context.Context, label, content string) (*data.Box, bool, error) {
	box, created, err := s.repo.Upsert(ctx, label, content)
	if err != nil {
		return nil, false, err
	}
	if err := s.cache.Delete(ctx, boxCacheKey(label)); err != nil {
		// The entry expires on its own; a stale read is acceptable.
		s.log.Error(err, fmt.Sprintf("Failed to invalidate cached box %q", label))
	}
	return box, created, nil
}

// Content returns the HTML of the box with the given label.
func (s *BoxService) Content(ctx context.Context, label string) (string, error) {
	key := boxCacheKey(label)
	if cached, err := s.cache.Get(ctx, key); err != nil {
		s.log.Error(err, fmt.Sprintf("Failed to read cached box %q", label))
	} else if cached != nil {
		return string(cached), nil
	}

	box, err := s.repo.GetByLabel(ctx, label)
	if err != nil {
		return "", err
	}
	if box == nil {
		return "", ErrNotFound
	}
	if err := s.cache.Set(ctx, key, []byte(box.Content), 0); err != nil {
		s.log.Error(err, fmt.Sprintf("Failed to cache box %q", label))
	}
	return box.Content, nil
}
