package service

import (
	"context"
	"errors"
	"fmt"
	"go-success-stories/internal/data"
	"go-success-stories/internal/logger"
	"go-success-stories/internal/notify"
	"math/rand/v2"
)

var (
	// ErrNotFound is returned when a story or category does not exist or is not public.
	ErrNotFound = errors.New("not found")
	// ErrCategoryNotFound is returned when a story references a missing category.
	ErrCategoryNotFound = errors.New("story category does not exist")
	// ErrCompanyNotFound is returned when a story references a missing company.
	ErrCompanyNotFound = errors.New("company does not exist")
)

// StoryRepository defines the interface for database operations on stories.
type StoryRepository interface {
	CreateStory(ctx context.Context, story *data.Story) error
	UpdateStory(ctx context.Context, story *data.Story) error
	GetStoryBySlug(ctx context.Context, slug string) (*data.Story, error)
	ListPublished(ctx context.Context) ([]*data.Story, error)
	ListPublishedByCategory(ctx context.Context, categoryID int64) ([]*data.Story, error)
	ListFeatured(ctx context.Context) ([]*data.Story, error)
	ListAll(ctx context.Context) ([]*data.Story, error)
}

// CategoryRepository defines the interface for database operations on story categories.
type CategoryRepository interface {
	GetBySlug(ctx context.Context, slug string) (*data.StoryCategory, error)
	GetByID(ctx context.Context, id int64) (*data.StoryCategory, error)
	GetAll(ctx context.Context) ([]*data.StoryCategory, error)
	Save(ctx context.Context, category *data.StoryCategory) (int64, error)
}

// CompanyRepository defines the lookups stories need on companies.
type CompanyRepository interface {
	GetByID(ctx context.Context, id int64) (*data.Company, error)
}

// ContentRenderer turns story content into HTML.
type ContentRenderer interface {
	Render(markupType, content string) (string, error)
	DefaultType() string
}

// Notifier runs the post-save workflow.
type Notifier interface {
	StorySaved(ctx context.Context, story *data.Story, opts notify.Options) (*notify.Result, error)
}

// StoryServicer defines the interface the HTTP layer uses for stories.
type StoryServicer interface {
	Save(ctx context.Context, story *data.Story, opts SaveOptions) (*notify.Result, error)
	Submit(ctx context.Context, sub Submission) (*data.Story, error)
	UpdateFlags(ctx context.Context, slug string, flags Flags) (*data.Story, error)
	GetPublished(ctx context.Context, slug string) (*data.Story, error)
	ListPublished(ctx context.Context) ([]*data.Story, error)
	ListPublishedByCategory(ctx context.Context, categorySlug string) (*data.StoryCategory, []*data.Story, error)
	ListAll(ctx context.Context) ([]*data.Story, error)
	Featured(ctx context.Context) (*data.Story, error)
}

// SaveOptions controls a single save.
type SaveOptions struct {
	// Raw marks bulk or fixture loads, which skip notifications.
	Raw bool
}

// Submission is a story sent in through the public form.
type Submission struct {
	Name         string
	CompanyName  string
	CompanyURL   string
	CategorySlug string
	Author       string
	AuthorEmail  string
	PullQuote    string
	Content      string
}

// Flags are the editor-controlled publication fields.
type Flags struct {
	Published bool
	Featured  bool
	Weight    int
}

// StoryService provides business logic for managing success stories.
type StoryService struct {
	stories    StoryRepository
	categories CategoryRepository
	companies  CompanyRepository
	renderer   ContentRenderer
	notifier   Notifier
	log        logger.Logger
	intN       func(n int) int
}

// NewStoryService creates a new StoryService.
func NewStoryService(stories StoryRepository, categories CategoryRepository, companies CompanyRepository,
	renderer ContentRenderer, notifier Notifier, log logger.Logger) *StoryService {
	return &StoryService{
		stories:    stories,
		categories: categories,
		companies:  companies,
		renderer:   renderer,
		notifier:   notifier,
		log:        log.With(map[string]interface{}{"component": "stories"}),
		intN:       rand.IntN,
	}
}

// Save validates, persists and then notifies about story. Stories without an
// ID are created. When the notification fails the story is already stored
// and the error is returned anyway.
func (s *StoryService) Save(ctx context.Context, story *data.Story, opts SaveOptions) (*notify.Result, error) {
	if err := story.Validate(); err != nil {
		return nil, err
	}
	if story.Slug == "" {
		story.Slug = data.Slugify(story.Name)
	}
	if story.Slug == "" {
		return nil, &data.ValidationError{Message: data.ErrMsgEmptySlug}
	}

	if err := s.resolveRelations(ctx, story); err != nil {
		return nil, err
	}

	if story.ContentMarkupType == "" {
		story.ContentMarkupType = s.renderer.DefaultType()
	}
	rendered, err := s.renderer.Render(story.ContentMarkupType, story.Content)
	if err != nil {
		return nil, err
	}
	story.ContentRendered = rendered

	if story.ID == 0 {
		if err := s.stories.CreateStory(ctx, story); err != nil {
			return nil, err
		}
	} else {
		if err := s.stories.UpdateStory(ctx, story); err != nil {
			return nil, err
		}
	}

	res, err := s.notifier.StorySaved(ctx, story, notify.Options{Raw: opts.Raw})
	if err != nil {
		s.log.Error(err, fmt.Sprintf("Story %q saved but notification failed", story.Slug))
		return res, err
	}
	return res, nil
}

// Submit stores a public submission as an unpublished story, which emails the maintainers.
func (s *StoryService) Submit(ctx context.Context, sub Submission) (*data.Story, error) {
	category, err := s.categories.GetBySlug(ctx, sub.CategorySlug)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}

	story := &data.Story{
		Name:        sub.Name,
		CompanyName: sub.CompanyName,
		CompanyURL:  sub.CompanyURL,
		CategoryID:  category.ID,
		Author:      sub.Author,
		AuthorEmail: sub.AuthorEmail,
		PullQuote:   sub.PullQuote,
		Content:     sub.Content,
	}
	if _, err := s.Save(ctx, story, SaveOptions{}); err != nil {
		return story, err
	}
	return story, nil
}

// UpdateFlags changes publication state of the story with the given slug and saves it.
func (s *StoryService) UpdateFlags(ctx context.Context, slug string, flags Flags) (*data.Story, error) {
	story, err := s.stories.GetStoryBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if story == nil {
		return nil, ErrNotFound
	}
	story.IsPublished = flags.Published
	story.Featured = flags.Featured
	story.Weight = flags.Weight

	if _, err := s.Save(ctx, story, SaveOptions{}); err != nil {
		return story, err
	}
	return story, nil
}

// GetPublished returns a published story with its relations loaded.
func (s *StoryService) GetPublished(ctx context.Context, slug string) (*data.Story, error) {
	story, err := s.stories.GetStoryBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if story == nil || !story.IsPublished {
		return nil, ErrNotFound
	}
	if err := s.resolveRelations(ctx, story); err != nil {
		return nil, err
	}
	return story, nil
}

// ListPublished returns every published story, newest first.
func (s *StoryService) ListPublished(ctx context.Context) ([]*data.Story, error) {
	stories, err := s.stories.ListPublished(ctx)
	if err != nil {
		return nil, err
	}
	return stories, s.resolveAll(ctx, stories)
}

// ListPublishedByCategory returns the category and its published stories.
func (s *StoryService) ListPublishedByCategory(ctx context.Context, categorySlug string) (*data.StoryCategory, []*data.Story, error) {
	category, err := s.categories.GetBySlug(ctx, categorySlug)
	if err != nil {
		return nil, nil, err
	}
	if category == nil {
		return nil, nil, ErrNotFound
	}
	stories, err := s.stories.ListPublishedByCategory(ctx, category.ID)
	if err != nil {
		return nil, nil, err
	}
	return category, stories, s.resolveAll(ctx, stories)
}

// ListAll returns every story, including unpublished submissions.
func (s *StoryService) ListAll(ctx context.Context) ([]*data.Story, error) {
	stories, err := s.stories.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return stories, s.resolveAll(ctx, stories)
}

// Featured picks one published featured story, each story's weight being its
// percentage share of picks. It returns nil when no story is featured.
func (s *StoryService) Featured(ctx context.Context) (*data.Story, error) {
	stories, err := s.stories.ListFeatured(ctx)
	if err != nil {
		return nil, err
	}
	story := pickWeighted(stories, s.intN)
	if story == nil {
		return nil, nil
	}
	if err := s.resolveRelations(ctx, story); err != nil {
		return nil, err
	}
	return story, nil
}

// pickWeighted selects a story with probability proportional to its weight.
func pickWeighted(stories []*data.Story, intN func(int) int) *data.Story {
	total := 0
	for _, st := range stories {
		if st.Weight > 0 {
			total += st.Weight
		}
	}
	if total == 0 {
		return nil
	}
	n := intN(total)
	for _, st := range stories {
		if st.Weight <= 0 {
			continue
		}
		if n < st.Weight {
			return st
		}
		n -= st.Weight
	}
	return nil
}

func (s *StoryService) resolveRelations(ctx context.Context, story *data.Story) error {
	if story.Category == nil || story.Category.ID != story.CategoryID {
		category, err := s.categories.GetByID(ctx, story.CategoryID)
		if err != nil {
			return err
		}
		if category == nil {
			return ErrCategoryNotFound
		}
		story.Category = category
	}

	story.Company = nil
	if story.CompanyID != nil {
		company, err := s.companies.GetByID(ctx, *story.CompanyID)
		if err != nil {
			return err
		}
		if company == nil {
			return ErrCompanyNotFound
		}
		story.Company = company
	}
	return nil
}

func (s *StoryService) resolveAll(ctx context.Context, stories []*data.Story) error {
	for _, story := range stories {
		if err := s.resolveRelations(ctx, story); err != nil {
			return err
		}
	}
	return nil
}
