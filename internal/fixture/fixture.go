// Package fixture loads categories, companies and stories from YAML files.
// Stories are saved raw, so loading never sends email or touches caches.
package fixture

import (
	"context"
	"errors"
	"fmt"
	"go-success-stories/internal/data"
	"go-success-stories/internal/logger"
	"go-success-stories/internal/notify"
	"go-success-stories/internal/service"
	"io"

	"gopkg.in/yaml.v3"
)

// ErrInvalidFixture is returned for documents that cannot be decoded or reference unknown rows.
var ErrInvalidFixture = errors.New("invalid fixture")

// Set is a decoded fixture document.
type Set struct {
	Categories []Category `yaml:"categories"`
	Companies  []Company  `yaml:"companies"`
	Stories    []Story    `yaml:"stories"`
}

// Category is a story category entry.
type Category struct {
	Name string `yaml:"name"`
	Slug string `yaml:"slug"`
}

// Company is a company entry.
type Company struct {
	Name string `yaml:"name"`
	Slug string `yaml:"slug"`
	URL  string `yaml:"url"`
}

// Story is a story entry. Category and Company hold slugs.
type Story struct {
	Name        string `yaml:"name"`
	Slug        string `yaml:"slug"`
	CompanyName string `yaml:"company_name"`
	CompanyURL  string `yaml:"company_url"`
	Company     string `yaml:"company"`
	Category    string `yaml:"category"`
	Author      string `yaml:"author"`
	AuthorEmail string `yaml:"author_email"`
	PullQuote   string `yaml:"pull_quote"`
	Content     string `yaml:"content"`
	MarkupType  string `yaml:"markup_type"`
	IsPublished bool   `yaml:"is_published"`
	Featured    bool   `yaml:"featured"`
	Weight      int    `yaml:"weight"`
	Image       string `yaml:"image"`
}

// Decode reads a fixture document. Unknown keys are rejected.
func Decode(r io.Reader) (*Set, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	set := &Set{}
	if err := dec.Decode(set); err != nil {
		if errors.Is(err, io.EOF) {
			return set, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidFixture, err)
	}
	return set, nil
}

// CategoryStore reads and creates categories. GetBySlug returns
// service.ErrNotFound for unknown slugs.
type CategoryStore interface {
	GetBySlug(ctx context.Context, slug string) (*data.StoryCategory, error)
	Create(ctx context.Context, name, slug string) (*data.StoryCategory, error)
}

// CompanyStore reads and creates companies.
type CompanyStore interface {
	GetBySlug(ctx context.Context, slug string) (*data.Company, error)
	Save(ctx context.Context, company *data.Company) (int64, error)
}

// StoryLookup finds existing stories so reloading a fixture updates them.
type StoryLookup interface {
	GetStoryBySlug(ctx context.Context, slug string) (*data.Story, error)
}

// StorySaver persists stories through the normal save path.
type StorySaver interface {
	Save(ctx context.Context, story *data.Story, opts service.SaveOptions) (*notify.Result, error)
}

// Summary counts what a load did.
type Summary struct {
	CategoriesCreated int
	CompaniesCreated  int
	StoriesCreated    int
	StoriesUpdated    int
}

// Loader writes fixture sets into the database.
type Loader struct {
	categories CategoryStore
	companies  CompanyStore
	lookup     StoryLookup
	stories    StorySaver
	log        logger.Logger
}

// NewLoader creates a Loader.
func NewLoader(categories CategoryStore, companies CompanyStore, lookup StoryLookup, stories StorySaver, log logger.Logger) *Loader {
	return &Loader{
		categories: categories,
		companies:  companies,
		lookup:     lookup,
		stories:    stories,
		log:        log.With(map[string]interface{}{"component": "fixture"}),
	}
}

// Load applies set. Categories and companies are created when their slug is
// new; stories are created or overwritten by slug. Loading stops at the first error.
func (l *Loader) Load(ctx context.Context, set *Set) (*Summary, error) {
	sum := &Summary{}

	categoryIDs := map[string]int64{}
	for _, c := range set.Categories {
		slug := c.Slug
		if slug == "" {
			slug = data.Slugify(c.Name)
		}
		existing, err := l.findCategory(ctx, slug)
		if err != nil {
			return sum, err
		}
		if existing != nil {
			categoryIDs[slug] = existing.ID
			continue
		}
		created, err := l.categories.Create(ctx, c.Name, slug)
		if err != nil {
			return sum, fmt.Errorf("failed to load category %q: %w", c.Name, err)
		}
		categoryIDs[created.Slug] = created.ID
		sum.CategoriesCreated++
	}

	companyIDs := map[string]int64{}
	for _, c := range set.Companies {
		slug := c.Slug
		if slug == "" {
			slug = data.Slugify(c.Name)
		}
		existing, err := l.companies.GetBySlug(ctx, slug)
		if err != nil {
			return sum, err
		}
		if existing != nil {
			companyIDs[slug] = existing.ID
			continue
		}
		id, err := l.companies.Save(ctx, &data.Company{Name: c.Name, Slug: slug, URL: c.URL})
		if err != nil {
			return sum, err
		}
		companyIDs[slug] = id
		sum.CompaniesCreated++
	}

	for _, s := range set.Stories {
		story, err := l.buildStory(ctx, s, categoryIDs, companyIDs)
		if err != nil {
			return sum, err
		}
		created := story.ID == 0
		if _, err := l.stories.Save(ctx, story, service.SaveOptions{Raw: true}); err != nil {
			return sum, fmt.Errorf("failed to load story %q: %w", story.Slug, err)
		}
		if created {
			sum.StoriesCreated++
		} else {
			sum.StoriesUpdated++
		}
		l.log.Debug(fmt.Sprintf("Loaded story %q", story.Slug))
	}

	return sum, nil
}

// findCategory returns nil when no category has slug.
func (l *Loader) findCategory(ctx context.Context, slug string) (*data.StoryCategory, error) {
	category, err := l.categories.GetBySlug(ctx, slug)
	if errors.Is(err, service.ErrNotFound) {
		return nil, nil
	}
	return category, err
}

func (l *Loader) buildStory(ctx context.Context, s Story, categoryIDs, companyIDs map[string]int64) (*data.Story, error) {
	slug := s.Slug
	if slug == "" {
		slug = data.Slugify(s.Name)
	}

	categoryID, ok := categoryIDs[s.Category]
	if !ok {
		category, err := l.findCategory(ctx, s.Category)
		if err != nil {
			return nil, err
		}
		if category == nil {
			return nil, fmt.Errorf("%w: story %q references unknown category %q", ErrInvalidFixture, slug, s.Category)
		}
		categoryID = category.ID
	}

	story := &data.Story{}
	existing, err := l.lookup.GetStoryBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		story.ID = existing.ID
		story.CreatedAt = existing.CreatedAt
	}

	story.Name = s.Name
	story.Slug = slug
	story.CompanyName = s.CompanyName
	story.CompanyURL = s.CompanyURL
	story.CategoryID = categoryID
	story.Author = s.Author
	story.AuthorEmail = s.AuthorEmail
	story.PullQuote = s.PullQuote
	story.Content = s.Content
	story.ContentMarkupType = s.MarkupType
	story.IsPublished = s.IsPublished
	story.Featured = s.Featured
	story.Weight = s.Weight
	story.Image = s.Image

	if s.Company != "" {
		id, ok := companyIDs[s.Company]
		if !ok {
			company, err := l.companies.GetBySlug(ctx, s.Company)
			if err != nil {
				return nil, err
			}
			if company == nil {
				return nil, fmt.Errorf("%w: story %q references unknown company %q", ErrInvalidFixture, slug, s.Company)
			}
			id = company.ID
		}
		story.CompanyID = &id
	}
	return story, nil
}
