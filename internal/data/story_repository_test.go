//go:build integration

package data

import (
	"context"
	"errors"
	"testing"
)

func seedCategory(t *testing.T, repo *CategoryRepository, name string) *StoryCategory {
	t.Helper()
	category := &StoryCategory{Name: name, Slug: Slugify(name)}
	if _, err := repo.Save(context.Background(), category); err != nil {
		t.Fatalf("failed to seed category: %v", err)
	}
	return category
}

func newStory(name string, categoryID int64) *Story {
	return &Story{
		Name:              name,
		Slug:              Slugify(name),
		CompanyName:       name + " Inc.",
		CompanyURL:        "https://example.com",
		CategoryID:        categoryID,
		Author:            "Jane Doe",
		AuthorEmail:       "jane@example.com",
		PullQuote:         "Python made it possible.",
		Content:           "We use *Python* everywhere.",
		ContentMarkupType: MarkupMarkdown,
		ContentRendered:   "<p>We use <em>Python</em> everywhere.</p>",
	}
}

func TestStoryRepository_CreateAndGet(t *testing.T) {
	db, teardown := newTestDB(t)
	defer teardown()
	category := seedCategory(t, NewCategoryRepository(db), "Science")
	repo := NewSQLStoryRepository(db)
	ctx := context.Background()

	story := newStory("Acme", category.ID)
	story.Weight = 10
	story.Featured = true
	if err := repo.CreateStory(ctx, story); err != nil {
		t.Fatalf("CreateStory failed: %v", err)
	}
	if story.ID == 0 {
		t.Fatal("expected story id to be set")
	}

	found, err := repo.GetStoryBySlug(ctx, "acme")
	if err != nil {
		t.Fatalf("GetStoryBySlug failed: %v", err)
	}
	if found == nil {
		t.Fatal("expected story, got nil")
	}
	if found.Name != "Acme" || !found.Featured || found.Weight != 10 || found.IsPublished {
		t.Errorf("unexpected story read back: %+v", found)
	}
	if found.CompanyID != nil {
		t.Errorf("expected nil company id, got %v", *found.CompanyID)
	}

	if found.ID != story.ID {
		t.Errorf("expected id %d, got %d", story.ID, found.ID)
	}

	missing, err := repo.GetStoryBySlug(ctx, "missing")
	if err != nil || missing != nil {
		t.Errorf("expected nil, nil for missing story, got %v, %v", missing, err)
	}
}

func TestStoryRepository_DuplicateSlug(t *testing.T) {
	db, teardown := newTestDB(t)
	defer teardown()
	category := seedCategory(t, NewCategoryRepository(db), "Science")
	repo := NewSQLStoryRepository(db)
	ctx := context.Background()

	if err := repo.CreateStory(ctx, newStory("Acme", category.ID)); err != nil {
		t.Fatal(err)
	}
	err := repo.CreateStory(ctx, newStory("Acme", category.ID))
	if !errors.Is(err, ErrDuplicateSlug) {
		t.Errorf("expected ErrDuplicateSlug, got %v", err)
	}
}

func TestStoryRepository_UpdateStory(t *testing.T) {
	db, teardown := newTestDB(t)
	defer teardown()
	category := seedCategory(t, NewCategoryRepository(db), "Science")
	repo := NewSQLStoryRepository(db)
	ctx := context.Background()

	story := newStory("Acme", category.ID)
	if err := repo.CreateStory(ctx, story); err != nil {
		t.Fatal(err)
	}

	story.IsPublished = true
	story.PullQuote = "Updated quote"
	if err := repo.UpdateStory(ctx, story); err != nil {
		t.Fatalf("UpdateStory failed: %v", err)
	}

	found, err := repo.GetStoryBySlug(ctx, story.Slug)
	if err != nil {
		t.Fatal(err)
	}
	if !found.IsPublished || found.PullQuote != "Updated quote" {
		t.Errorf("update not persisted: %+v", found)
	}

	ghost := newStory("Ghost", category.ID)
	ghost.ID = 999
	if err := repo.UpdateStory(ctx, ghost); err == nil {
		t.Error("expected error when updating a missing story")
	}
}

func TestStoryRepository_Listings(t *testing.T) {
	db, teardown := newTestDB(t)
	defer teardown()
	categories := NewCategoryRepository(db)
	science := seedCategory(t, categories, "Science")
	arts := seedCategory(t, categories, "Arts")
	repo := NewSQLStoryRepository(db)
	ctx := context.Background()

	published := newStory("Published Science", science.ID)
	published.IsPublished = true
	featured := newStory("Featured Arts", arts.ID)
	featured.IsPublished = true
	featured.Featured = true
	featured.Weight = 50
	draft := newStory("Draft", science.ID)
	for _, s := range []*Story{published, featured, draft} {
		if err := repo.CreateStory(ctx, s); err != nil {
			t.Fatal(err)
		}
	}

	all, err := repo.ListAll(ctx)
	if err != nil || len(all) != 3 {
		t.Errorf("ListAll = %d stories, %v; want 3", len(all), err)
	}

	pub, err := repo.ListPublished(ctx)
	if err != nil || len(pub) != 2 {
		t.Errorf("ListPublished = %d stories, %v; want 2", len(pub), err)
	}

	byCategory, err := repo.ListPublishedByCategory(ctx, science.ID)
	if err != nil || len(byCategory) != 1 || byCategory[0].Slug != "published-science" {
		t.Errorf("ListPublishedByCategory = %v, %v", byCategory, err)
	}

	feat, err := repo.ListFeatured(ctx)
	if err != nil || len(feat) != 1 || feat[0].Slug != "featured-arts" {
		t.Errorf("ListFeatured = %v, %v", feat, err)
	}
}

func TestStoryRepository_RequiresCategory(t *testing.T) {
	db, teardown := newTestDB(t)
	defer teardown()
	repo := NewSQLStoryRepository(db)

	if err := repo.CreateStory(context.Background(), newStory("Orphan", 42)); err == nil {
		t.Error("expected foreign key error for a missing category")
	}
}

func TestCompanyRepository_SaveAndGet(t *testing.T) {
	db, teardown := newTestDB(t)
	defer teardown()
	repo := NewCompanyRepository(db)
	ctx := context.Background()

	id, err := repo.Save(ctx, &Company{Name: "Initech", Slug: "initech", URL: "https://initech.example"})
	if err != nil {
		t.Fatal(err)
	}
	found, err := repo.GetByID(ctx, id)
	if err != nil || found == nil || found.URL != "https://initech.example" {
		t.Errorf("GetByID = %v, %v", found, err)
	}
	bySlug, err := repo.GetBySlug(ctx, "initech")
	if err != nil || bySlug == nil || bySlug.ID != id {
		t.Errorf("GetBySlug = %v, %v", bySlug, err)
	}
	missing, err := repo.GetByID(ctx, 404)
	if err != nil || missing != nil {
		t.Errorf("expected nil, nil for missing company, got %v, %v", missing, err)
	}
}

func TestBoxRepository_Upsert(t *testing.T) {
	db, teardown := newTestDB(t)
	defer teardown()
	repo := NewBoxRepository(db)
	ctx := context.Background()

	box, created, err := repo.Upsert(ctx, "supernav-python-success-stories", "<p>first</p>")
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if !created {
		t.Error("expected first upsert to create the box")
	}
	if box.Content != "<p>first</p>" {
		t.Errorf("unexpected content %q", box.Content)
	}

	_, created, err = repo.Upsert(ctx, "supernav-python-success-stories", "<p>second</p>")
	if err != nil {
		t.Fatalf("second Upsert failed: %v", err)
	}
	if created {
		t.Error("expected second upsert to update the existing box")
	}

	found, err := repo.GetByLabel(ctx, "supernav-python-success-stories")
	if err != nil || found == nil {
		t.Fatalf("GetByLabel = %v, %v", found, err)
	}
	if found.Content != "<p>second</p>" {
		t.Errorf("expected last write to win, got %q", found.Content)
	}
}
