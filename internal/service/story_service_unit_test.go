//go:build unit

package service

import (
	"context"
	"errors"
	"go-success-stories/internal/data"
	"go-success-stories/internal/logger"
	"go-success-stories/internal/notify"
	"testing"
)

// mockStoryRepository is an in-memory implementation of StoryRepository.
type mockStoryRepository struct {
	stories      map[string]*data.Story
	nextID       int64
	createCalled int
	updateCalled int
	errToReturn  error
}

var _ StoryRepository = (*mockStoryRepository)(nil)

func newMockStoryRepository() *mockStoryRepository {
	return &mockStoryRepository{stories: map[string]*data.Story{}}
}

func (m *mockStoryRepository) CreateStory(ctx context.Context, story *data.Story) error {
	m.createCalled++
	if m.errToReturn != nil {
		return m.errToReturn
	}
	if _, ok := m.stories[story.Slug]; ok {
		return data.ErrDuplicateSlug
	}
	m.nextID++
	story.ID = m.nextID
	m.stories[story.Slug] = story
	return nil
}

func (m *mockStoryRepository) UpdateStory(ctx context.Context, story *data.Story) error {
	m.updateCalled++
	if m.errToReturn != nil {
		return m.errToReturn
	}
	m.stories[story.Slug] = story
	return nil
}

func (m *mockStoryRepository) GetStoryBySlug(ctx context.Context, slug string) (*data.Story, error) {
	return m.stories[slug], nil
}

func (m *mockStoryRepository) filter(keep func(*data.Story) bool) []*data.Story {
	var out []*data.Story
	for _, s := range m.stories {
		if keep(s) {
			out = append(out, s)
		}
	}
	return out
}

func (m *mockStoryRepository) ListPublished(ctx context.Context) ([]*data.Story, error) {
	return m.filter(func(s *data.Story) bool { return s.IsPublished }), nil
}

func (m *mockStoryRepository) ListPublishedByCategory(ctx context.Context, categoryID int64) ([]*data.Story, error) {
	return m.filter(func(s *data.Story) bool { return s.IsPublished && s.CategoryID == categoryID }), nil
}

func (m *mockStoryRepository) ListFeatured(ctx context.Context) ([]*data.Story, error) {
	return m.filter(func(s *data.Story) bool { return s.IsPublished && s.Featured }), nil
}

func (m *mockStoryRepository) ListAll(ctx context.Context) ([]*data.Story, error) {
	return m.filter(func(s *data.Story) bool { return true }), nil
}

// mockCategoryRepository is a mock implementation of the CategoryRepository interface.
type mockCategoryRepository struct {
	categories  []*data.StoryCategory
	saveCalled  int
	lastSaved   *data.StoryCategory
	errToReturn error
}

var _ CategoryRepository = (*mockCategoryRepository)(nil)

func (m *mockCategoryRepository) GetBySlug(ctx context.Context, slug string) (*data.StoryCategory, error) {
	for _, c := range m.categories {
		if c.Slug == slug {
			return c, nil
		}
	}
	return nil, nil
}

func (m *mockCategoryRepository) GetByID(ctx context.Context, id int64) (*data.StoryCategory, error) {
	for _, c := range m.categories {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, nil
}

func (m *mockCategoryRepository) GetAll(ctx context.Context) ([]*data.StoryCategory, error) {
	return m.categories, nil
}

func (m *mockCategoryRepository) Save(ctx context.Context, category *data.StoryCategory) (int64, error) {
	m.saveCalled++
	m.lastSaved = category
	if m.errToReturn != nil {
		return 0, m.errToReturn
	}
	category.ID = int64(len(m.categories) + 1)
	m.categories = append(m.categories, category)
	return category.ID, nil
}

type mockCompanyRepository struct {
	companies map[int64]*data.Company
}

func (m *mockCompanyRepository) GetByID(ctx context.Context, id int64) (*data.Company, error) {
	return m.companies[id], nil
}

type mockRenderer struct {
	lastType string
	err      error
}

func (m *mockRenderer) Render(markupType, content string) (string, error) {
	m.lastType = markupType
	if m.err != nil {
		return "", m.err
	}
	return "<p>" + content + "</p>", nil
}

func (m *mockRenderer) DefaultType() string { return data.MarkupMarkdown }

type mockNotifier struct {
	calls       int
	lastStory   *data.Story
	lastOpts    notify.Options
	errToReturn error
}

func (m *mockNotifier) StorySaved(ctx context.Context, story *data.Story, opts notify.Options) (*notify.Result, error) {
	m.calls++
	m.lastStory = story
	m.lastOpts = opts
	if m.errToReturn != nil {
		return &notify.Result{}, m.errToReturn
	}
	return &notify.Result{EmailSent: !story.IsPublished && !opts.Raw}, nil
}

type serviceFixture struct {
	stories    *mockStoryRepository
	categories *mockCategoryRepository
	companies  *mockCompanyRepository
	renderer   *mockRenderer
	notifier   *mockNotifier
	service    *StoryService
}

func newServiceFixture() *serviceFixture {
	f := &serviceFixture{
		stories: newMockStoryRepository(),
		categories: &mockCategoryRepository{categories: []*data.StoryCategory{
			{ID: 1, Name: "Software Development", Slug: "software-development"},
			{ID: 2, Name: "Science", Slug: "science"},
		}},
		companies: &mockCompanyRepository{companies: map[int64]*data.Company{
			7: {ID: 7, Name: "Linked Co", URL: "https://linked.example"},
		}},
		renderer: &mockRenderer{},
		notifier: &mockNotifier{},
	}
	f.service = NewStoryService(f.stories, f.categories, f.companies, f.renderer, f.notifier, logger.Nop())
	return f
}

func acmeStory() *data.Story {
	return &data.Story{
		Name:        "Acme",
		CompanyName: "Acme Corp",
		CompanyURL:  "https://acme.example",
		CategoryID:  1,
		Author:      "Jane",
		AuthorEmail: "jane@acme.example",
		PullQuote:   "Quote",
		Content:     "Body",
	}
}

func TestStoryService_Save_Create(t *testing.T) {
	f := newServiceFixture()
	story := acmeStory()

	res, err := f.service.Save(context.Background(), story, SaveOptions{})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if story.ID == 0 || f.stories.createCalled != 1 {
		t.Error("expected story to be created")
	}
	if story.Slug != "acme" {
		t.Errorf("expected derived slug 'acme', got %q", story.Slug)
	}
	if story.ContentMarkupType != data.MarkupMarkdown || story.ContentRendered != "<p>Body</p>" {
		t.Errorf("expected rendered markdown content, got %q / %q", story.ContentMarkupType, story.ContentRendered)
	}
	if story.Category == nil || story.Category.Name != "Software Development" {
		t.Errorf("expected category to be loaded, got %v", story.Category)
	}
	if f.notifier.calls != 1 || f.notifier.lastOpts.Raw {
		t.Errorf("expected one non-raw notification, got %d calls (%+v)", f.notifier.calls, f.notifier.lastOpts)
	}
	if !res.EmailSent {
		t.Error("expected the notifier result to be returned")
	}
}

func TestStoryService_Save_Update(t *testing.T) {
	f := newServiceFixture()
	story := acmeStory()
	if _, err := f.service.Save(context.Background(), story, SaveOptions{}); err != nil {
		t.Fatal(err)
	}

	story.IsPublished = true
	if _, err := f.service.Save(context.Background(), story, SaveOptions{}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if f.stories.updateCalled != 1 || f.stories.createCalled != 1 {
		t.Errorf("expected one create and one update, got %d / %d", f.stories.createCalled, f.stories.updateCalled)
	}
	if f.notifier.calls != 2 {
		t.Errorf("expected a notification per save, got %d", f.notifier.calls)
	}
}

func TestStoryService_Save_ValidationStopsPersistence(t *testing.T) {
	testCases := []struct {
		name     string
		featured bool
		weight   int
	}{
		{"featured zero weight", true, 0},
		{"weight over 100", false, 101},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newServiceFixture()
			story := acmeStory()
			story.Featured = tc.featured
			story.Weight = tc.weight

			_, err := f.service.Save(context.Background(), story, SaveOptions{})
			var vErr *data.ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if f.stories.createCalled != 0 || f.notifier.calls != 0 {
				t.Error("expected nothing to be persisted or notified")
			}
		})
	}
}

func TestStoryService_Save_RejectsNameWithoutSlug(t *testing.T) {
	for _, name := range []string{"!!!", "---", " ? "} {
		t.Run(name, func(t *testing.T) {
			f := newServiceFixture()
			story := acmeStory()
			story.Name = name

			_, err := f.service.Save(context.Background(), story, SaveOptions{})
			var vErr *data.ValidationError
			if !errors.As(err, &vErr) || vErr.Message != data.ErrMsgEmptySlug {
				t.Fatalf("expected empty slug ValidationError, got %v", err)
			}
			if f.stories.createCalled != 0 || f.notifier.calls != 0 {
				t.Error("expected nothing to be persisted or notified")
			}
		})
	}

	f := newServiceFixture()
	_, err := f.service.Submit(context.Background(), Submission{Name: "!!!", CategorySlug: "science"})
	var vErr *data.ValidationError
	if !errors.As(err, &vErr) {
		t.Errorf("expected Submit to return a ValidationError, got %v", err)
	}
	if len(f.stories.stories) != 0 {
		t.Error("expected no story to be stored")
	}
}

func TestStoryService_Save_Raw(t *testing.T) {
	f := newServiceFixture()
	if _, err := f.service.Save(context.Background(), acmeStory(), SaveOptions{Raw: true}); err != nil {
		t.Fatal(err)
	}
	if !f.notifier.lastOpts.Raw {
		t.Error("expected Raw to be passed to the notifier")
	}
}

func TestStoryService_Save_MissingRelations(t *testing.T) {
	f := newServiceFixture()
	story := acmeStory()
	story.CategoryID = 99
	if _, err := f.service.Save(context.Background(), story, SaveOptions{}); !errors.Is(err, ErrCategoryNotFound) {
		t.Errorf("expected ErrCategoryNotFound, got %v", err)
	}

	story = acmeStory()
	missing := int64(42)
	story.CompanyID = &missing
	if _, err := f.service.Save(context.Background(), story, SaveOptions{}); !errors.Is(err, ErrCompanyNotFound) {
		t.Errorf("expected ErrCompanyNotFound, got %v", err)
	}
	if f.stories.createCalled != 0 {
		t.Error("expected nothing to be persisted")
	}
}

func TestStoryService_Save_LinkedCompany(t *testing.T) {
	f := newServiceFixture()
	story := acmeStory()
	linked := int64(7)
	story.CompanyID = &linked

	if _, err := f.service.Save(context.Background(), story, SaveOptions{}); err != nil {
		t.Fatal(err)
	}
	if story.CompanyDisplayName() != "Linked Co" {
		t.Errorf("expected linked company name, got %q", story.CompanyDisplayName())
	}
}

func TestStoryService_Save_NotificationErrorAfterPersist(t *testing.T) {
	f := newServiceFixture()
	f.notifier.errToReturn = errors.New("smtp down")
	story := acmeStory()

	if _, err := f.service.Save(context.Background(), story, SaveOptions{}); err == nil {
		t.Fatal("expected notification error")
	}
	if _, ok := f.stories.stories["acme"]; !ok {
		t.Error("expected story to stay persisted after a notification failure")
	}
}

func TestStoryService_Submit(t *testing.T) {
	f := newServiceFixture()

	story, err := f.service.Submit(context.Background(), Submission{
		Name:         "Acme",
		CompanyName:  "Acme Corp",
		CompanyURL:   "https://acme.example",
		CategorySlug: "science",
		Author:       "Jane",
		AuthorEmail:  "jane@acme.example",
		PullQuote:    "Quote",
		Content:      "Body",
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if story.IsPublished || story.Featured || story.Weight != 0 {
		t.Errorf("expected an unpublished, unfeatured submission, got %+v", story)
	}
	if story.CategoryID != 2 {
		t.Errorf("expected category 2, got %d", story.CategoryID)
	}
	if f.notifier.calls != 1 || f.notifier.lastStory != story {
		t.Error("expected the submission to be notified")
	}

	if _, err := f.service.Submit(context.Background(), Submission{Name: "X", CategorySlug: "nope"}); !errors.Is(err, ErrCategoryNotFound) {
		t.Errorf("expected ErrCategoryNotFound, got %v", err)
	}
}

func TestStoryService_UpdateFlags(t *testing.T) {
	f := newServiceFixture()
	if _, err := f.service.Save(context.Background(), acmeStory(), SaveOptions{}); err != nil {
		t.Fatal(err)
	}

	story, err := f.service.UpdateFlags(context.Background(), "acme", Flags{Published: true, Featured: true, Weight: 30})
	if err != nil {
		t.Fatalf("UpdateFlags failed: %v", err)
	}
	if !story.IsPublished || !story.Featured || story.Weight != 30 {
		t.Errorf("flags not applied: %+v", story)
	}

	if _, err := f.service.UpdateFlags(context.Background(), "acme", Flags{Featured: true}); err == nil {
		t.Error("expected validation error for featured story with zero weight")
	}

	if _, err := f.service.UpdateFlags(context.Background(), "missing", Flags{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStoryService_GetPublished(t *testing.T) {
	f := newServiceFixture()
	draft := acmeStory()
	if _, err := f.service.Save(context.Background(), draft, SaveOptions{}); err != nil {
		t.Fatal(err)
	}

	if _, err := f.service.GetPublished(context.Background(), "acme"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected unpublished story to be hidden, got %v", err)
	}

	draft.IsPublished = true
	story, err := f.service.GetPublished(context.Background(), "acme")
	if err != nil {
		t.Fatalf("GetPublished failed: %v", err)
	}
	if story.Category == nil {
		t.Error("expected category to be loaded")
	}
}

func TestStoryService_ListPublishedByCategory(t *testing.T) {
	f := newServiceFixture()
	story := acmeStory()
	story.IsPublished = true
	if _, err := f.service.Save(context.Background(), story, SaveOptions{}); err != nil {
		t.Fatal(err)
	}

	category, stories, err := f.service.ListPublishedByCategory(context.Background(), "software-development")
	if err != nil {
		t.Fatalf("ListPublishedByCategory failed: %v", err)
	}
	if category.ID != 1 || len(stories) != 1 {
		t.Errorf("unexpected result: %v, %d stories", category, len(stories))
	}

	if _, _, err := f.service.ListPublishedByCategory(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPickWeighted(t *testing.T) {
	a := &data.Story{Slug: "a", Weight: 25}
	b := &data.Story{Slug: "b", Weight: 75}
	zero := &data.Story{Slug: "zero", Weight: 0}
	stories := []*data.Story{zero, a, b}

	testCases := []struct {
		n    int
		want string
	}{
		{0, "a"},
		{24, "a"},
		{25, "b"},
		{99, "b"},
	}
	for _, tc := range testCases {
		got := pickWeighted(stories, func(total int) int {
			if total != 100 {
				t.Fatalf("expected total weight 100, got %d", total)
			}
			return tc.n
		})
		if got == nil || got.Slug != tc.want {
			t.Errorf("pickWeighted(n=%d) = %v, want %s", tc.n, got, tc.want)
		}
	}

	if got := pickWeighted([]*data.Story{zero}, func(int) int { return 0 }); got != nil {
		t.Errorf("expected nil when all weights are zero, got %v", got)
	}
	if got := pickWeighted(nil, func(int) int { return 0 }); got != nil {
		t.Errorf("expected nil for no stories, got %v", got)
	}
}

func TestStoryService_Featured(t *testing.T) {
	f := newServiceFixture()
	story := acmeStory()
	story.IsPublished = true
	story.Featured = true
	story.Weight = 100
	if _, err := f.service.Save(context.Background(), story, SaveOptions{}); err != nil {
		t.Fatal(err)
	}

	got, err := f.service.Featured(context.Background())
	if err != nil {
		t.Fatalf("Featured failed: %v", err)
	}
	if got == nil || got.Slug != "acme" {
		t.Errorf("expected featured story 'acme', got %v", got)
	}
}

func TestCategoryService_Create(t *testing.T) {
	repo := &mockCategoryRepository{}
	svc := NewCategoryService(repo)

	category, err := svc.Create(context.Background(), "Web Development", "")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if category.Slug != "web-development" {
		t.Errorf("expected derived slug, got %q", category.Slug)
	}
	if repo.saveCalled != 1 {
		t.Errorf("expected Save to be called once, got %d", repo.saveCalled)
	}

	var vErr *data.ValidationError
	if _, err := svc.Create(context.Background(), "!!!", ""); !errors.As(err, &vErr) {
		t.Errorf("expected ValidationError, got %v", err)
	}
	if repo.saveCalled != 1 {
		t.Error("expected an empty slug not to be saved")
	}

	if _, err := svc.GetBySlug(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
