package data

import (
	"fmt"
	"html/template"
	"time"
)

// Markup types understood by the content renderer.
const (
	MarkupMarkdown         = "markdown"
	MarkupHTML             = "html"
	MarkupPlain            = "plain"
	MarkupRestructuredText = "restructuredtext"
)

// StoryCategory groups success stories, e.g. "Software Development".
type StoryCategory struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	Slug      string    `db:"slug"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// AbsoluteURL returns the public path listing the category's stories.
func (c *StoryCategory) AbsoluteURL() string {
	return fmt.Sprintf("/success-stories/category/%s/", c.Slug)
}

// Company is the minimal view of a company a story can link to.
type Company struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
	Slug string `db:"slug"`
	URL  string `db:"url"`
}

// Story is a single success story.
type Story struct {
	ID                int64     `db:"id"`
	Name              string    `db:"name"`
	Slug              string    `db:"slug"`
	CompanyName       string    `db:"company_name"`
	CompanyURL        string    `db:"company_url"`
	CompanyID         *int64    `db:"company_id"`
	CategoryID        int64     `db:"category_id"`
	Author            string    `db:"author"`
	AuthorEmail       string    `db:"author_email"`
	PullQuote         string    `db:"pull_quote"`
	Content           string    `db:"content"`
	ContentMarkupType string    `db:"content_markup_type"`
	ContentRendered   string    `db:"content_rendered"`
	IsPublished       bool      `db:"is_published"`
	Featured          bool      `db:"featured"`
	Weight            int       `db:"weight"`
	Image             string    `db:"image"`
	CreatedAt         time.Time `db:"created_at"`
	UpdatedAt         time.Time `db:"updated_at"`

	// Populated by the service layer, not stored.
	Company  *Company       `db:"-"`
	Category *StoryCategory `db:"-"`
}

// AbsoluteURL returns the public detail path of the story.
func (s *Story) AbsoluteURL() string {
	return fmt.Sprintf("/success-stories/%s/", s.Slug)
}

// CompanyDisplayName prefers the linked company over the inline company name.
func (s *Story) CompanyDisplayName() string {
	if s.Company != nil {
		return s.Company.Name
	}
	return s.CompanyName
}

// CompanyDisplayURL prefers the linked company over the inline company URL.
func (s *Story) CompanyDisplayURL() string {
	if s.Company != nil {
		return s.Company.URL
	}
	return s.CompanyURL
}

// WeightDisplay formats the weight as a percentage, e.g. "11 %".
func (s *Story) WeightDisplay() string {
	return fmt.Sprintf("%d %%", s.Weight)
}

// ContentHTML exposes the rendered content to templates. The content is
// sanitized when it is rendered, before it is stored.
func (s *Story) ContentHTML() template.HTML {
	return template.HTML(s.ContentRendered)
}

// CategoryName returns the category name, or "" when the category is not loaded.
func (s *Story) CategoryName() string {
	if s.Category == nil {
		return ""
	}
	return s.Category.Name
}

// Box is a labelled HTML fragment consumed by other parts of the site.
type Box struct {
	ID        int64     `db:"id"`
	Label     string    `db:"label"`
	Content   string    `db:"content"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// AbsoluteURL returns the public path serving the box content.
func (b *Box) AbsoluteURL() string {
	return fmt.Sprintf("/box/%s/", b.Label)
}
