package handler

import (
	"errors"
	"fmt"
	"go-success-stories/internal/data"
	"go-success-stories/internal/logger"
	"go-success-stories/internal/middleware"
	"go-success-stories/internal/service"
	"go-success-stories/internal/view"
	"net/http"
	"net/mail"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

// StoryHandler holds the dependencies for the story handlers.
type StoryHandler struct {
	stories    service.StoryServicer
	categories service.CategoryServicer
	view       *view.View
	log        logger.Logger
}

// NewStoryHandler creates a new StoryHandler with the given dependencies.
func NewStoryHandler(ss service.StoryServicer, cs service.CategoryServicer, v *view.View, log logger.Logger) *StoryHandler {
	return &StoryHandler{
		stories:    ss,
		categories: cs,
		view:       v,
		log:        log,
	}
}

func internalError(err error, message string) *middleware.AppError {
	return &middleware.AppError{Error: err, Message: message, Code: http.StatusInternalServerError}
}

// listHandler renders every published story together with a featured pick.
func (h *StoryHandler) listHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	stories, err := h.stories.ListPublished(r.Context())
	if err != nil {
		return internalError(err, "Failed to retrieve stories")
	}
	return h.renderList(w, r, nil, stories)
}

// categoryHandler renders the published stories of one category.
func (h *StoryHandler) categoryHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	slug := chi.URLParam(r, "slug")
	category, stories, err := h.stories.ListPublishedByCategory(r.Context(), slug)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return &middleware.AppError{Error: err, Message: "Category not found", Code: http.StatusNotFound}
		}
		return internalError(err, "Failed to retrieve stories")
	}
	return h.renderList(w, r, category, stories)
}

func (h *StoryHandler) renderList(w http.ResponseWriter, r *http.Request, category *data.StoryCategory, stories []*data.Story) *middleware.AppError {
	categories, err := h.categories.List(r.Context())
	if err != nil {
		return internalError(err, "Failed to retrieve categories")
	}
	featured, err := h.stories.Featured(r.Context())
	if err != nil {
		// The list is still useful without the featured story.
		h.log.Error(err, "Failed to pick featured story")
	}

	data := map[string]interface{}{
		"Category":   category,
		"Categories": categories,
		"Stories":    stories,
	}
	if featured != nil {
		data["Featured"] = featured
	}
	if err := h.view.Render(w, r, "story_list.html", data); err != nil {
		return internalError(err, "Failed to render story list")
	}
	return nil
}

// detailHandler renders a single published story.
func (h *StoryHandler) detailHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	slug := chi.URLParam(r, "slug")
	story, err := h.stories.GetPublished(r.Context(), slug)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return &middleware.AppError{Error: err, Message: "Story not found", Code: http.StatusNotFound}
		}
		return internalError(err, "Failed to retrieve story")
	}

	data := map[string]interface{}{
		"Story": story,
	}
	if err := h.view.Render(w, r, "story_detail.html", data); err != nil {
		return internalError(err, "Failed to render story")
	}
	return nil
}

// submitFormHandler displays the public submission form.
func (h *StoryHandler) submitFormHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	return h.renderSubmitForm(w, r, http.StatusOK, service.Submission{}, nil)
}

func (h *StoryHandler) renderSubmitForm(w http.ResponseWriter, r *http.Request, status int, form service.Submission, formErrors []string) *middleware.AppError {
	categories, err := h.categories.List(r.Context())
	if err != nil {
		return internalError(err, "Failed to retrieve categories")
	}
	data := map[string]interface{}{
		"Form":       form,
		"Errors":     formErrors,
		"Categories": categories,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.view.Render(w, r, "submit.html", data); err != nil {
		h.log.Error(err, "Failed to render submission form")
	}
	return nil
}

// submitHandler stores a public submission as an unpublished story.
func (h *StoryHandler) submitHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	if err := r.ParseForm(); err != nil {
		return &middleware.AppError{Error: err, Message: "Invalid form", Code: http.StatusBadRequest}
	}
	form := service.Submission{
		Name:         strings.TrimSpace(r.PostFormValue("name")),
		CompanyName:  strings.TrimSpace(r.PostFormValue("company_name")),
		CompanyURL:   strings.TrimSpace(r.PostFormValue("company_url")),
		CategorySlug: r.PostFormValue("category"),
		Author:       strings.TrimSpace(r.PostFormValue("author")),
		AuthorEmail:  strings.TrimSpace(r.PostFormValue("author_email")),
		PullQuote:    strings.TrimSpace(r.PostFormValue("pull_quote")),
		Content:      r.PostFormValue("content"),
	}
	if formErrors := validateSubmission(form); len(formErrors) > 0 {
		return h.renderSubmitForm(w, r, http.StatusBadRequest, form, formErrors)
	}

	story, err := h.stories.Submit(r.Context(), form)
	if err != nil {
		var vErr *data.ValidationError
		switch {
		case errors.As(err, &vErr):
			return h.renderSubmitForm(w, r, http.StatusBadRequest, form, []string{vErr.Message})
		case errors.Is(err, service.ErrCategoryNotFound):
			return h.renderSubmitForm(w, r, http.StatusBadRequest, form, []string{"Select a valid category."})
		case errors.Is(err, data.ErrDuplicateSlug):
			return h.renderSubmitForm(w, r, http.StatusBadRequest, form, []string{"A story with this name already exists."})
		}
		return internalError(err, "Failed to submit story")
	}

	h.log.Info(fmt.Sprintf("Story %q submitted", story.Slug))
	if err := h.view.Render(w, r, "submit_thanks.html", map[string]interface{}{"Story": story}); err != nil {
		return internalError(err, "Failed to render confirmation")
	}
	return nil
}

func validateSubmission(form service.Submission) []string {
	var errs []string
	required := []struct {
		value, label string
	}{
		{form.Name, "Story name"},
		{form.CompanyName, "Company name"},
		{form.CompanyURL, "Company URL"},
		{form.CategorySlug, "Category"},
		{form.Author, "Author"},
		{form.PullQuote, "Pull quote"},
		{strings.TrimSpace(form.Content), "Content"},
	}
	for _, field := range required {
		if field.value == "" {
			errs = append(errs, field.label+" is required.")
		}
	}
	if form.Name != "" && data.Slugify(form.Name) == "" {
		errs = append(errs, "Story name must contain letters or digits.")
	}
	if len(form.Name) > data.MaxNameLength {
		errs = append(errs, fmt.Sprintf("Story name must be at most %d characters.", data.MaxNameLength))
	}
	if form.CompanyURL != "" && !strings.HasPrefix(form.CompanyURL, "http://") && !strings.HasPrefix(form.CompanyURL, "https://") {
		errs = append(errs, "Company URL must start with http:// or https://.")
	}
	if form.AuthorEmail != "" {
		if _, err := mail.ParseAddress(form.AuthorEmail); err != nil {
			errs = append(errs, "Author email is not a valid address.")
		}
	}
	return errs
}

// editorListHandler lists every story, including unpublished submissions.
func (h *StoryHandler) editorListHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	stories, err := h.stories.ListAll(r.Context())
	if err != nil {
		return internalError(err, "Failed to retrieve stories")
	}
	data := map[string]interface{}{
		"Stories":  stories,
		"UserInfo": middleware.GetUserInfo(r.Context()),
	}
	if err := h.view.Render(w, r, "editor_stories.html", data); err != nil {
		return internalError(err, "Failed to render story list")
	}
	return nil
}

// editorUpdateHandler changes the publication flags of a story.
func (h *StoryHandler) editorUpdateHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	slug := chi.URLParam(r, "slug")
	if err := r.ParseForm(); err != nil {
		return &middleware.AppError{Error: err, Message: "Invalid form", Code: http.StatusBadRequest}
	}

	weight := 0
	if raw := strings.TrimSpace(r.PostFormValue("weight")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return &middleware.AppError{Error: err, Message: "Weight must be a whole number", Code: http.StatusBadRequest}
		}
		weight = n
	}
	flags := service.Flags{
		Published: r.PostFormValue("is_published") == "true",
		Featured:  r.PostFormValue("featured") == "true",
		Weight:    weight,
	}

	story, err := h.stories.UpdateFlags(r.Context(), slug, flags)
	if err != nil {
		var vErr *data.ValidationError
		switch {
		case errors.As(err, &vErr):
			return &middleware.AppError{Error: err, Message: vErr.Message, Code: http.StatusBadRequest}
		case errors.Is(err, service.ErrNotFound):
			return &middleware.AppError{Error: err, Message: "Story not found", Code: http.StatusNotFound}
		}
		return internalError(err, "Failed to update story")
	}

	user := middleware.GetUserInfo(r.Context())
	h.log.Info(fmt.Sprintf("Story %q updated by %s: published=%t featured=%t weight=%d",
		story.Slug, user.Subject, story.IsPublished, story.Featured, story.Weight))
	http.Redirect(w, r, "/editor/stories", http.StatusFound)
	return nil
}
